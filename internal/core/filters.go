package core

import (
	"strconv"
	"strings"
)

// TypeFilter restricts transactions by type. The zero value matches everything.
type TypeFilter string

const (
	AllTypes     TypeFilter = "all"
	IncomeOnly   TypeFilter = TypeFilter(Income)
	ExpensesOnly TypeFilter = TypeFilter(Expense)
)

// DateRange is an inclusive pair of optional bounds.
type DateRange struct {
	StartDate Date
	EndDate   Date
}

// TransactionFilters is the active view state narrowing which transactions
// are considered. The zero value filters nothing.
type TransactionFilters struct {
	SelectedMember  string
	DateRange       DateRange
	TransactionType TypeFilter
	SearchText      string
}

func (f TypeFilter) IsValid() bool {
	switch f {
	case "", AllTypes, IncomeOnly, ExpensesOnly:
		return true
	}
	return false
}

// matches reports whether the filter lets transactions of type t through.
func (f TypeFilter) matches(t TransactionType) bool {
	if f == "" || f == AllTypes {
		return true
	}
	return TransactionType(f) == t
}

// Key is a canonical string for the filter value, usable as a cache key.
// Free-text fields are quoted so no member or search value can forge a
// separator.
func (f TransactionFilters) Key() string {
	tf := f.TransactionType
	if tf == "" {
		tf = AllTypes
	}
	var b strings.Builder
	b.WriteString("m=")
	b.WriteString(strconv.Quote(f.SelectedMember))
	b.WriteString("|from=")
	b.WriteString(f.DateRange.StartDate.String())
	b.WriteString("|to=")
	b.WriteString(f.DateRange.EndDate.String())
	b.WriteString("|type=")
	b.WriteString(string(tf))
	b.WriteString("|q=")
	b.WriteString(strconv.Quote(strings.ToLower(strings.TrimSpace(f.SearchText))))
	return b.String()
}

func (f TransactionFilters) match(t Transaction, search string) bool {
	// An unassigned transaction never matches a selected member.
	if f.SelectedMember != "" && t.MemberID != f.SelectedMember {
		return false
	}
	if !f.TransactionType.matches(t.Type) {
		return false
	}
	if !f.DateRange.StartDate.IsEmpty() && t.Date.Before(f.DateRange.StartDate.Time) {
		return false
	}
	if !f.DateRange.EndDate.IsEmpty() && t.Date.After(f.DateRange.EndDate.Time) {
		return false
	}
	if search != "" &&
		!strings.Contains(strings.ToLower(t.Description), search) &&
		!strings.Contains(strings.ToLower(t.Category), search) {
		return false
	}
	return true
}

// ApplyFilters returns the transactions passing all active filters, in input
// order. The input slice is never modified.
func ApplyFilters(transactions []Transaction, filters TransactionFilters) []Transaction {
	search := strings.ToLower(strings.TrimSpace(filters.SearchText))
	out := make([]Transaction, 0, len(transactions))
	for _, t := range transactions {
		if filters.match(t, search) {
			out = append(out, t)
		}
	}
	return out
}
