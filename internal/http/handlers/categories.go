package handlers

import (
	"net/http"

	"github.com/hongminglow/finance-tracker/internal/http/respond"
	applog "github.com/hongminglow/finance-tracker/internal/log"
	"github.com/hongminglow/finance-tracker/internal/service"
)

type CategoryHandler struct {
	errorWriter
	categories *service.CategoryService
}

func NewCategoryHandler(categories *service.CategoryService, exposeErrors bool) *CategoryHandler {
	return &CategoryHandler{errorWriter: errorWriter{exposeErrors: exposeErrors, component: applog.ComponentExpense}, categories: categories}
}

func (h *CategoryHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/categories", h.handleList)
}

func (h *CategoryHandler) handleList(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categories.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.logger(r).Debug("categories listed", applog.FieldOperation, applog.OpList, "count", len(categories))
	respond.JSON(w, http.StatusOK, categories)
}
