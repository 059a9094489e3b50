package service

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/hongminglow/finance-tracker/internal/auth"
	"github.com/hongminglow/finance-tracker/internal/models"
	"github.com/hongminglow/finance-tracker/internal/models/dto"
	"github.com/hongminglow/finance-tracker/internal/storage"
)

// Summary builds the dashboard aggregate for the session user. Month
// buckets only cover year; totals and category breakdown cover everything.
func (s *ExpenseService) Summary(ctx context.Context, session auth.Session, year int) (dto.Summary, error) {
	var (
		expenses   []models.Expense
		categories []models.Category
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		uid := session.UserID
		expenses, err = s.expenses.ListExpenses(gctx, storage.ExpenseFilter{UserID: &uid})
		return err
	})
	g.Go(func() error {
		var err error
		categories, err = s.categories.ListCategories(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return dto.Summary{}, Internal("failed to build summary", err)
	}
	return Summarize(expenses, categories, year), nil
}

// Summarize aggregates expenses. Categories missing from the lookup are
// reported as "Unknown".
func Summarize(expenses []models.Expense, categories []models.Category, year int) dto.Summary {
	names := make(map[int64]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}

	out := dto.Summary{Year: year, Total: decimal.Zero, Categories: []dto.CategoryTotal{}}
	for i := range out.Months {
		out.Months[i] = decimal.Zero
	}

	byCategory := map[int64]*dto.CategoryTotal{}
	for _, e := range expenses {
		out.Total = out.Total.Add(e.Amount)
		out.Count++
		if e.Date.Year() == year {
			m := e.Date.Month() - 1
			out.Months[m] = out.Months[m].Add(e.Amount)
		}

		ct, ok := byCategory[e.CategoryID]
		if !ok {
			name, known := names[e.CategoryID]
			if !known {
				name = e.CategoryName()
			}
			ct = &dto.CategoryTotal{CategoryID: e.CategoryID, Name: name, Total: decimal.Zero}
			byCategory[e.CategoryID] = ct
		}
		ct.Total = ct.Total.Add(e.Amount)
		ct.Count++
	}

	for _, ct := range byCategory {
		out.Categories = append(out.Categories, *ct)
	}
	sort.Slice(out.Categories, func(i, j int) bool {
		if c := out.Categories[i].Total.Cmp(out.Categories[j].Total); c != 0 {
			return c > 0
		}
		return out.Categories[i].CategoryID < out.Categories[j].CategoryID
	})
	out.CategoryCount = len(out.Categories)
	return out
}
