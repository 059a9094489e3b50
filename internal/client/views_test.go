package client

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/finance-tracker/internal/models"
)

func expense(id int64, name string, amount string, day string) models.Expense {
	d, err := models.ParseDate(day)
	if err != nil {
		panic(err)
	}
	e := models.Expense{ID: id, CategoryID: id, Amount: decimal.RequireFromString(amount), Date: d}
	if name != "" {
		e.Name = &name
	}
	return e
}

func sample() []models.Expense {
	return []models.Expense{
		expense(1, "Food", "10.50", "2024-05-06"),
		expense(2, "Transport", "4", "2024-05-12"),
		expense(3, "", "1.25", "2024-04-30"),
		expense(4, "Food", "2", "2023-05-01"),
	}
}

func TestTotals(t *testing.T) {
	st := Totals(sample())
	assert.True(t, st.Total.Equal(decimal.RequireFromString("17.75")))
	assert.Equal(t, 4, st.Count)
	assert.Equal(t, 3, st.DistinctCategories)

	empty := Totals(nil)
	assert.True(t, empty.Total.IsZero())
	assert.Zero(t, empty.DistinctCategories)
}

func TestMonthlyTotals(t *testing.T) {
	months := MonthlyTotals(sample(), 2024)
	assert.True(t, months[3].Equal(decimal.RequireFromString("1.25")))
	assert.True(t, months[4].Equal(decimal.RequireFromString("14.5")))
	assert.True(t, months[0].IsZero())
}

func TestFilterByName(t *testing.T) {
	got := FilterByName(sample(), "fOO")
	require.Len(t, got, 2)

	got = FilterByName(sample(), "unknown")
	require.Len(t, got, 1)
	assert.Equal(t, int64(3), got[0].ID)

	assert.Len(t, FilterByName(sample(), "  "), 4)
}

func TestFilterByRange(t *testing.T) {
	// Sunday 12 May 2024: the Monday-started week is 6..12 May.
	now := time.Date(2024, 5, 12, 18, 30, 0, 0, time.UTC)

	week := FilterByRange(sample(), RangeThisWeek, now, models.Date{}, models.Date{})
	assert.ElementsMatch(t, []int64{1, 2}, ids(week))

	month := FilterByRange(sample(), RangeThisMonth, now, models.Date{}, models.Date{})
	assert.ElementsMatch(t, []int64{1, 2}, ids(month))

	from, _ := models.ParseDate("2024-04-30")
	to, _ := models.ParseDate("2024-05-06")
	custom := FilterByRange(sample(), RangeCustom, now, from, to)
	assert.ElementsMatch(t, []int64{1, 3}, ids(custom), "both end days are inclusive")

	openEnded := FilterByRange(sample(), RangeCustom, now, from, models.Date{})
	assert.ElementsMatch(t, []int64{1, 2, 3}, ids(openEnded))

	assert.Len(t, FilterByRange(sample(), RangeAll, now, models.Date{}, models.Date{}), 4)
}

func TestParseRange(t *testing.T) {
	r, ok := ParseRange("Week")
	assert.True(t, ok)
	assert.Equal(t, RangeThisWeek, r)

	_, ok = ParseRange("fortnight")
	assert.False(t, ok)
}

func TestPaginate(t *testing.T) {
	var list []models.Expense
	for i := int64(1); i <= 23; i++ {
		list = append(list, expense(i, "Food", "1", "2024-01-01"))
	}

	p := Paginate(list, 1, 0)
	assert.Equal(t, 3, p.TotalPages)
	assert.Len(t, p.Items, 10)

	p = Paginate(list, 3, 10)
	assert.Len(t, p.Items, 3)
	assert.Equal(t, int64(21), p.Items[0].ID)

	p = Paginate(list, 99, 10)
	assert.Equal(t, 3, p.Page)

	p = Paginate(list, -1, 10)
	assert.Equal(t, 1, p.Page)

	p = Paginate(nil, 2, 10)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 1, p.TotalPages)
	assert.Empty(t, p.Items)
}

func TestRemoveAndReplace(t *testing.T) {
	list := sample()

	removed := RemoveByID(list, 2)
	assert.Equal(t, []int64{1, 3, 4}, ids(removed))
	assert.Len(t, list, 4, "input is not mutated")

	updated := expense(1, "", "99", "2024-05-07")
	replaced := ReplaceByID(list, updated)
	assert.True(t, replaced[0].Amount.Equal(decimal.NewFromInt(99)))
	assert.Equal(t, "Food", replaced[0].CategoryName(), "joined name carried over")
	assert.True(t, list[0].Amount.Equal(decimal.RequireFromString("10.5")))
}

func ids(list []models.Expense) []int64 {
	out := make([]int64, 0, len(list))
	for _, e := range list {
		out = append(out, e.ID)
	}
	return out
}
