package client

import (
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hongminglow/finance-tracker/internal/models"
)

// DefaultPerPage is the page size of expense listings.
const DefaultPerPage = 10

// Range selects a date window for FilterByRange.
type Range int

const (
	RangeAll Range = iota
	RangeThisWeek
	RangeThisMonth
	RangeCustom
)

// ParseRange maps the CLI names onto Range values.
func ParseRange(s string) (Range, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return RangeAll, true
	case "week", "thisweek":
		return RangeThisWeek, true
	case "month", "thismonth":
		return RangeThisMonth, true
	case "custom":
		return RangeCustom, true
	default:
		return RangeAll, false
	}
}

// Stats is the dashboard headline for a list of expenses.
type Stats struct {
	Total              decimal.Decimal
	Count              int
	DistinctCategories int
}

// Totals sums the list. Categories are told apart by their joined name so
// every orphaned expense counts as the one "Unknown" category.
func Totals(expenses []models.Expense) Stats {
	st := Stats{Total: decimal.Zero}
	seen := map[string]struct{}{}
	for _, e := range expenses {
		st.Total = st.Total.Add(e.Amount)
		st.Count++
		seen[e.CategoryName()] = struct{}{}
	}
	st.DistinctCategories = len(seen)
	return st
}

// MonthlyTotals buckets the amounts of year by calendar month.
func MonthlyTotals(expenses []models.Expense, year int) [12]decimal.Decimal {
	var out [12]decimal.Decimal
	for i := range out {
		out[i] = decimal.Zero
	}
	for _, e := range expenses {
		if e.Date.Year() != year {
			continue
		}
		m := e.Date.Month() - 1
		out[m] = out[m].Add(e.Amount)
	}
	return out
}

// FilterByName keeps expenses whose category name contains text, ignoring
// case. Empty text keeps everything.
func FilterByName(expenses []models.Expense, text string) []models.Expense {
	needle := strings.ToLower(strings.TrimSpace(text))
	if needle == "" {
		return expenses
	}
	out := make([]models.Expense, 0, len(expenses))
	for _, e := range expenses {
		if strings.Contains(strings.ToLower(e.CategoryName()), needle) {
			out = append(out, e)
		}
	}
	return out
}

// FilterByRange keeps expenses dated inside the window chosen by r. Weeks
// start on Monday; a custom window includes both end days. from and to
// are only read for RangeCustom, where a zero bound leaves that side open.
func FilterByRange(expenses []models.Expense, r Range, now time.Time, from, to models.Date) []models.Expense {
	var lo, hi time.Time
	today := models.NewDate(now).Time
	switch r {
	case RangeThisWeek:
		offset := (int(today.Weekday()) + 6) % 7
		lo = today.AddDate(0, 0, -offset)
		hi = lo.AddDate(0, 0, 6)
	case RangeThisMonth:
		lo = time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
		hi = lo.AddDate(0, 1, -1)
	case RangeCustom:
		lo, hi = from.Time, to.Time
	default:
		return expenses
	}

	out := make([]models.Expense, 0, len(expenses))
	for _, e := range expenses {
		d := e.Date.Time
		if !lo.IsZero() && d.Before(lo) {
			continue
		}
		if !hi.IsZero() && d.After(hi) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Page is one slice of a paginated listing. Page numbers start at 1.
type Page struct {
	Items      []models.Expense
	Page       int
	TotalPages int
}

// Paginate returns page of expenses. Out-of-range pages are clamped and a
// non-positive perPage means DefaultPerPage. An empty list is one empty page.
func Paginate(expenses []models.Expense, page, perPage int) Page {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	total := max(1, (len(expenses)+perPage-1)/perPage)
	page = min(max(page, 1), total)

	start := (page - 1) * perPage
	end := min(start+perPage, len(expenses))
	return Page{Items: expenses[start:end], Page: page, TotalPages: total}
}

// RemoveByID drops the expense with id from the list.
func RemoveByID(expenses []models.Expense, id int64) []models.Expense {
	return slices.DeleteFunc(slices.Clone(expenses), func(e models.Expense) bool { return e.ID == id })
}

// ReplaceByID swaps in updated for the entry with the same id, keeping
// the joined category fields when updated lacks them.
func ReplaceByID(expenses []models.Expense, updated models.Expense) []models.Expense {
	out := slices.Clone(expenses)
	for i, e := range out {
		if e.ID != updated.ID {
			continue
		}
		if updated.Name == nil && updated.CategoryID == e.CategoryID {
			updated.Name = e.Name
			updated.CategoryImageURL = e.CategoryImageURL
		}
		out[i] = updated
	}
	return out
}
