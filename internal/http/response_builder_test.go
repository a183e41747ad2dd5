package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"mycash/internal/core"
	"mycash/internal/dashboard"
	"mycash/internal/ledger"
	"mycash/internal/services"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{malformed("bad"), http.StatusBadRequest},
		{fmt.Errorf("%w: %w", services.ErrValidation, core.ErrEmptyCategory), http.StatusUnprocessableEntity},
		{core.ErrInvalidAmount, http.StatusUnprocessableEntity},
		{core.ErrDescriptionTooLong, http.StatusUnprocessableEntity},
		{fmt.Errorf("get: %w", ledger.ErrNotFound), http.StatusNotFound},
		{ledger.ErrDuplicate, http.StatusConflict},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestWriteErrorHidesInternalErrors(t *testing.T) {
	rr := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)
	writeError(rr, r, errors.New("sql: connection refused"))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rr.Code)
	}
	var body errorBody
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Error != "internal server error" {
		t.Errorf("error = %q", body.Error)
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Errorf("content type = %q", ct)
	}
}

func TestTransactionDTOEncodesDecimalsAsStrings(t *testing.T) {
	tx := core.Transaction{
		ID:           "t1",
		Type:         core.Expense,
		Amount:       decimal.RequireFromString("1234.50"),
		Description:  "Rent",
		Category:     "Housing",
		Date:         core.NewDate(2025, 2, 1),
		Installments: 1,
		Status:       core.Completed,
		CreatedAt:    time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC),
	}
	raw, err := json.Marshal(toTransactionDTO(tx))
	if err != nil {
		t.Fatal(err)
	}
	s := string(raw)
	for _, want := range []string{`"amount":"1234.5"`, `"date":"2025-02-01"`, `"status":"completed"`} {
		if !strings.Contains(s, want) {
			t.Errorf("missing %s in %s", want, s)
		}
	}
	if strings.Contains(s, "account_id") || strings.Contains(s, "member_id") {
		t.Errorf("empty references should be omitted: %s", s)
	}
}

func TestToFlowDTOs(t *testing.T) {
	flow := dashboard.MonthlyFlow([]core.Transaction{
		{Type: core.Income, Amount: decimal.NewFromInt(100), Date: core.NewDate(2025, 1, 5), Status: core.Completed},
		{Type: core.Income, Amount: decimal.NewFromInt(150), Date: core.NewDate(2025, 2, 5), Status: core.Completed},
	}, 2025)

	got := toFlowDTOs(flow)
	if len(got) != 12 || got[0].IncomeGrowth != nil {
		t.Fatalf("january should carry no growth: %+v", got[0])
	}
	if got[1].IncomeGrowth == nil || !got[1].IncomeGrowth.Equal(decimal.NewFromInt(50)) {
		t.Errorf("february income growth = %v", got[1].IncomeGrowth)
	}
	if !got[2].IncomeGrowth.Equal(decimal.NewFromInt(-100)) {
		t.Errorf("march income growth = %v", got[2].IncomeGrowth)
	}
	if !got[1].ExpensesGrowth.IsZero() {
		t.Errorf("expense growth from zero to zero = %v", got[1].ExpensesGrowth)
	}
}

func TestToDashboardDTO(t *testing.T) {
	snap := dashboard.Build(dashboard.Input{
		Transactions: []core.Transaction{
			{ID: "1", Type: core.Income, Amount: decimal.NewFromInt(3000), Category: "Salary", Date: core.NewDate(2025, 1, 1), Status: core.Completed},
			{ID: "2", Type: core.Expense, Amount: decimal.NewFromInt(1000), Category: "Food", Date: core.NewDate(2025, 1, 2), Status: core.Completed},
		},
	})
	dto := toDashboardDTO(snap)
	if dto.Filters.Type != "all" || dto.Count != 2 {
		t.Errorf("dto = %+v", dto)
	}
	if !dto.SavingsRate.Equal(decimal.RequireFromString("66.67")) {
		t.Errorf("savings rate = %s", dto.SavingsRate)
	}
	if len(dto.Shares) != 1 || !dto.Shares[0].Percentage.Equal(decimal.RequireFromString("33.33")) {
		t.Errorf("shares = %+v", dto.Shares)
	}
}
