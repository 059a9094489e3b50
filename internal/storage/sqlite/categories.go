package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hongminglow/finance-tracker/internal/models"
)

// ListCategories returns every category ordered by id.
func (s *Store) ListCategories(ctx context.Context) ([]models.Category, error) {
	categories := []models.Category{}
	err := s.withConn(ctx, func(conn *sql.Conn) error {
		rows, err := conn.QueryContext(ctx, `SELECT id, name, image FROM categories ORDER BY id`)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var (
				c     models.Category
				image sql.NullString
			)
			if err := rows.Scan(&c.ID, &c.Name, &image); err != nil {
				return err
			}
			c.ImageURL = nullable(image)
			categories = append(categories, c)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

func nullable(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}
