package http

import (
	"errors"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"mycash/internal/core"
)

func TestParseFilters(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		want    core.TransactionFilters
		wantErr bool
	}{
		{name: "empty", query: "", want: core.TransactionFilters{}},
		{
			name:  "all fields",
			query: "member=member_1&from=2025-01-01&to=2025-01-31&type=Expense&q=%20Food%20",
			want: core.TransactionFilters{
				SelectedMember:  "member_1",
				DateRange:       core.DateRange{StartDate: core.NewDate(2025, 1, 1), EndDate: core.NewDate(2025, 1, 31)},
				TransactionType: core.ExpensesOnly,
				SearchText:      "Food",
			},
		},
		{name: "type all", query: "type=all", want: core.TransactionFilters{TransactionType: core.AllTypes}},
		{name: "bad type", query: "type=transfer", wantErr: true},
		{name: "bad from", query: "from=01/02/2025", wantErr: true},
		{name: "bad to", query: "to=2025-13-01", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, _ := url.ParseQuery(tt.query)
			got, err := ParseFilters(q)
			if tt.wantErr {
				if !errors.Is(err, errMalformed) {
					t.Fatalf("err = %v, want malformed", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Key() != tt.want.Key() {
				t.Errorf("filters key = %q, want %q", got.Key(), tt.want.Key())
			}
		})
	}
}

func TestParsePagination(t *testing.T) {
	tests := []struct {
		query         string
		page, perPage int
	}{
		{"", 1, 5},
		{"page=3&per_page=20", 3, 20},
		{"page=0&per_page=-1", 1, 5},
		{"page=abc", 1, 5},
		{"per_page=1000", 1, 100},
	}
	for _, tt := range tests {
		q, _ := url.ParseQuery(tt.query)
		page, perPage := ParsePagination(q, 5)
		if page != tt.page || perPage != tt.perPage {
			t.Errorf("ParsePagination(%q) = %d, %d; want %d, %d", tt.query, page, perPage, tt.page, tt.perPage)
		}
	}
}

func TestParseYear(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		query   string
		want    int
		wantErr bool
	}{
		{"", 2025, false},
		{"year=2024", 2024, false},
		{"year=abc", 0, true},
		{"year=1200", 0, true},
	}
	for _, tt := range tests {
		q, _ := url.ParseQuery(tt.query)
		got, err := ParseYear(q, now)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseYear(%q) = %d, %v", tt.query, got, err)
		}
	}
}

func TestParseLimit(t *testing.T) {
	q := url.Values{"limit": {"500"}}
	if got := ParseLimit(q, 5, 100); got != 100 {
		t.Errorf("capped limit = %d", got)
	}
	if got := ParseLimit(url.Values{}, 5, 100); got != 5 {
		t.Errorf("default limit = %d", got)
	}
}

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"valid", `{"type":"expense","amount":"10"}`, false},
		{"unknown field", `{"typo":"x"}`, true},
		{"not json", `type=expense`, true},
		{"two objects", `{"type":"expense"}{"type":"income"}`, true},
		{"empty", ``, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("POST", "/api/transactions", strings.NewReader(tt.body))
			var req TransactionRequest
			err := decodeJSON(r, &req)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, errMalformed) {
				t.Errorf("err = %v is not malformed", err)
			}
		})
	}
}

func TestTransactionRequest(t *testing.T) {
	req := TransactionRequest{
		Type:        " Expense ",
		Amount:      "1.234,56",
		Description: "  Rent\x00 ",
		Category:    "Housing",
		Date:        "2025-02-01",
		AccountID:   " account_1 ",
	}
	tx, err := req.Transaction()
	if err != nil {
		t.Fatalf("Transaction(): %v", err)
	}
	if tx.Type != core.Expense || !tx.Amount.Equal(decimal.RequireFromString("1234.56")) {
		t.Errorf("type/amount = %s/%s", tx.Type, tx.Amount)
	}
	if tx.Description != "Rent" || tx.AccountID != "account_1" || !tx.Date.Equal(core.NewDate(2025, 2, 1).Time) {
		t.Errorf("tx = %+v", tx)
	}

	req.Amount = "-5"
	if _, err := req.Transaction(); !errors.Is(err, core.ErrInvalidAmount) {
		t.Errorf("negative amount err = %v", err)
	}
	req.Amount, req.Date = "5", "tomorrow"
	if _, err := req.Transaction(); !errors.Is(err, core.ErrInvalidDate) {
		t.Errorf("bad date err = %v", err)
	}
}

func TestPatchRequest(t *testing.T) {
	amount, status, member := "99,90", "Cancelled", ""
	p, err := PatchRequest{Amount: &amount, Status: &status, MemberID: &member}.Patch()
	if err != nil {
		t.Fatalf("Patch(): %v", err)
	}
	if p.Amount == nil || !p.Amount.Equal(decimal.RequireFromString("99.90")) {
		t.Errorf("amount = %v", p.Amount)
	}
	if p.Status == nil || *p.Status != core.Cancelled {
		t.Errorf("status = %v", p.Status)
	}
	if p.MemberID == nil || *p.MemberID != "" {
		t.Errorf("member should be cleared, got %v", p.MemberID)
	}
	if p.Description != nil || p.Type != nil {
		t.Error("absent fields must stay nil")
	}

	if p, _ := (PatchRequest{}).Patch(); !p.IsEmpty() {
		t.Error("empty request should give an empty patch")
	}
	bad := "x"
	if _, err := (PatchRequest{Amount: &bad}).Patch(); !errors.Is(err, core.ErrInvalidAmount) {
		t.Errorf("bad amount err = %v", err)
	}
}

func TestEntityPatchRequests(t *testing.T) {
	name := "  Gold\x00 "
	theme := " LIME "
	bill := decimal.Zero
	cp := CreditCardPatchRequest{Name: &name, Theme: &theme, CurrentBill: &bill}.Patch()
	if *cp.Name != "Gold" || *cp.Theme != core.ThemeLime || !cp.CurrentBill.IsZero() || cp.Limit != nil {
		t.Errorf("card patch = %+v", cp)
	}
	if !(BankAccountPatchRequest{}).Patch().IsEmpty() || !(MemberPatchRequest{}).Patch().IsEmpty() {
		t.Error("empty requests should give empty patches")
	}
	email := " ana@example.com "
	if mp := (MemberPatchRequest{Email: &email}).Patch(); *mp.Email != "ana@example.com" || mp.Name != nil {
		t.Errorf("member patch = %+v", mp)
	}
}

func TestGoalRequests(t *testing.T) {
	g, err := GoalRequest{Title: " Bike ", TargetAmount: decimal.NewFromInt(10)}.Goal()
	if err != nil {
		t.Fatalf("Goal: %v", err)
	}
	if g.Title != "Bike" || !g.Deadline.IsEmpty() {
		t.Errorf("goal = %+v", g)
	}
	if _, err := (GoalRequest{Title: "x", Deadline: "2030-13-01"}).Goal(); !errors.Is(err, core.ErrInvalidDate) {
		t.Errorf("bad deadline err = %v", err)
	}

	none := ""
	p, err := GoalPatchRequest{Deadline: &none}.Patch()
	if err != nil || p.Deadline == nil || !p.Deadline.IsEmpty() {
		t.Errorf("clearing patch = %+v, %v", p, err)
	}
	set := "2030-01-31"
	if p, err := (GoalPatchRequest{Deadline: &set}).Patch(); err != nil || p.Deadline.String() != "2030-01-31" {
		t.Errorf("deadline patch = %+v, %v", p, err)
	}
}

func TestSanitizeInput(t *testing.T) {
	tests := map[string]string{
		"  hello  ":       "hello",
		"a\x00b\x07c":     "abc",
		"line\nbreak\tok": "line\nbreak\tok",
	}
	for in, want := range tests {
		if got := sanitizeInput(in); got != want {
			t.Errorf("sanitizeInput(%q) = %q, want %q", in, got, want)
		}
	}
}
