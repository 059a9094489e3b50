package service

import (
	"context"

	"github.com/hongminglow/finance-tracker/internal/models"
	"github.com/hongminglow/finance-tracker/internal/storage"
)

// CategoryService exposes the read-only category list.
type CategoryService struct {
	categories storage.CategoryStore
}

func NewCategoryService(categories storage.CategoryStore) *CategoryService {
	return &CategoryService{categories: categories}
}

func (s *CategoryService) List(ctx context.Context) ([]models.Category, error) {
	categories, err := s.categories.ListCategories(ctx)
	if err != nil {
		return nil, Internal("failed to retrieve categories", err)
	}
	return categories, nil
}
