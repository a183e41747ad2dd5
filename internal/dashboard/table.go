package dashboard

import (
	"sort"

	"mycash/internal/core"
)

// DefaultPerPage matches the transactions table on the dashboard.
const DefaultPerPage = 5

// Page is one slice of a sorted transaction list.
type Page struct {
	Items      []core.Transaction
	Page       int
	PerPage    int
	Total      int
	TotalPages int
}

// SortByDateDesc returns a copy ordered newest first. Same-day transactions
// keep their input order.
func SortByDateDesc(transactions []core.Transaction) []core.Transaction {
	out := append([]core.Transaction(nil), transactions...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date.Time)
	})
	return out
}

// Paginate cuts the 1-based page out of transactions. Out of range pages are
// clamped so the result is always a valid page, possibly empty.
func Paginate(transactions []core.Transaction, page, perPage int) Page {
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	total := len(transactions)
	totalPages := (total + perPage - 1) / perPage
	if totalPages == 0 {
		totalPages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	start := (page - 1) * perPage
	end := start + perPage
	if end > total {
		end = total
	}
	items := make([]core.Transaction, 0, end-start)
	items = append(items, transactions[start:end]...)

	return Page{
		Items:      items,
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
	}
}
