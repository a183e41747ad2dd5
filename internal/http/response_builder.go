// This file holds the JSON shapes returned by the API and the helpers that
// write them. Decimals are encoded as strings.

package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"mycash/internal/core"
	"mycash/internal/dashboard"
	"mycash/internal/ledger"
	applog "mycash/internal/log"
	"mycash/internal/services"
)

type TransactionDTO struct {
	ID                 string          `json:"id"`
	Type               string          `json:"type"`
	Amount             decimal.Decimal `json:"amount"`
	Description        string          `json:"description"`
	Category           string          `json:"category"`
	Date               string          `json:"date"`
	AccountID          string          `json:"account_id,omitempty"`
	MemberID           string          `json:"member_id,omitempty"`
	Installments       int             `json:"installments"`
	CurrentInstallment int             `json:"current_installment,omitempty"`
	Status             string          `json:"status"`
	IsRecurring        bool            `json:"is_recurring"`
	IsPaid             bool            `json:"is_paid"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

func toTransactionDTO(t core.Transaction) TransactionDTO {
	return TransactionDTO{
		ID:                 t.ID,
		Type:               string(t.Type),
		Amount:             t.Amount,
		Description:        t.Description,
		Category:           t.Category,
		Date:               t.Date.String(),
		AccountID:          t.AccountID,
		MemberID:           t.MemberID,
		Installments:       t.Installments,
		CurrentInstallment: t.CurrentInstallment,
		Status:             string(t.Status),
		IsRecurring:        t.IsRecurring,
		IsPaid:             t.IsPaid,
		CreatedAt:          t.CreatedAt,
		UpdatedAt:          t.UpdatedAt,
	}
}

func toTransactionDTOs(txns []core.Transaction) []TransactionDTO {
	out := make([]TransactionDTO, len(txns))
	for i, t := range txns {
		out[i] = toTransactionDTO(t)
	}
	return out
}

type FiltersDTO struct {
	Member string `json:"member,omitempty"`
	From   string `json:"from,omitempty"`
	To     string `json:"to,omitempty"`
	Type   string `json:"type"`
	Search string `json:"q,omitempty"`
}

func toFiltersDTO(f core.TransactionFilters) FiltersDTO {
	typ := string(f.TransactionType)
	if typ == "" {
		typ = string(core.AllTypes)
	}
	return FiltersDTO{
		Member: f.SelectedMember,
		From:   f.DateRange.StartDate.String(),
		To:     f.DateRange.EndDate.String(),
		Type:   typ,
		Search: f.SearchText,
	}
}

type CategoryDTO struct {
	Category   string           `json:"category"`
	Amount     decimal.Decimal  `json:"amount"`
	Count      int              `json:"count,omitempty"`
	Percentage *decimal.Decimal `json:"percentage,omitempty"`
}

type MemberDTO struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Role          string          `json:"role"`
	AvatarURL     string          `json:"avatar_url,omitempty"`
	Email         string          `json:"email,omitempty"`
	MonthlyIncome decimal.Decimal `json:"monthly_income"`
}

func toMemberDTOs(members []core.FamilyMember) []MemberDTO {
	out := make([]MemberDTO, len(members))
	for i, m := range members {
		out[i] = MemberDTO{
			ID:            m.ID,
			Name:          m.Name,
			Role:          m.Role,
			AvatarURL:     m.AvatarURL,
			Email:         m.Email,
			MonthlyIncome: m.MonthlyIncome,
		}
	}
	return out
}

type DashboardDTO struct {
	Filters      FiltersDTO      `json:"filters"`
	TotalBalance decimal.Decimal `json:"total_balance"`
	Income       decimal.Decimal `json:"income"`
	Expenses     decimal.Decimal `json:"expenses"`
	SavingsRate  decimal.Decimal `json:"savings_rate"`
	ByCategory   []CategoryDTO   `json:"expenses_by_category"`
	Shares       []CategoryDTO   `json:"category_percentage"`
	Count        int             `json:"transaction_count"`
	Members      []MemberDTO     `json:"members"`
}

func toDashboardDTO(s dashboard.Snapshot) DashboardDTO {
	dto := DashboardDTO{
		Filters:      toFiltersDTO(s.Filters),
		TotalBalance: s.TotalBalance,
		Income:       s.Income,
		Expenses:     s.Expenses,
		SavingsRate:  s.SavingsRate.Round(2),
		ByCategory:   make([]CategoryDTO, len(s.ByCategory)),
		Shares:       make([]CategoryDTO, len(s.Shares)),
		Count:        len(s.Transactions),
		Members:      toMemberDTOs(s.Members),
	}
	for i, c := range s.ByCategory {
		dto.ByCategory[i] = CategoryDTO{Category: c.Category, Amount: c.Amount, Count: c.Count}
	}
	for i, c := range s.Shares {
		pct := c.Percentage.Round(2)
		dto.Shares[i] = CategoryDTO{Category: c.Category, Amount: c.Amount, Percentage: &pct}
	}
	return dto
}

type PageDTO struct {
	Items      []TransactionDTO `json:"items"`
	Page       int              `json:"page"`
	PerPage    int              `json:"per_page"`
	Total      int              `json:"total"`
	TotalPages int              `json:"total_pages"`
}

func toPageDTO(p dashboard.Page) PageDTO {
	return PageDTO{
		Items:      toTransactionDTOs(p.Items),
		Page:       p.Page,
		PerPage:    p.PerPage,
		Total:      p.Total,
		TotalPages: p.TotalPages,
	}
}

type UpcomingDTO struct {
	Transaction  TransactionDTO `json:"transaction"`
	AccountKind  string         `json:"account_kind"`
	AccountLabel string         `json:"account_label"`
}

func toUpcomingDTOs(items []dashboard.UpcomingExpense) []UpcomingDTO {
	out := make([]UpcomingDTO, len(items))
	for i, u := range items {
		out[i] = UpcomingDTO{
			Transaction:  toTransactionDTO(u.Transaction),
			AccountKind:  string(u.Account.Kind),
			AccountLabel: u.Account.Label,
		}
	}
	return out
}

// FlowDTO is one month of the chart. Growth compares against the previous
// month of the same year and is omitted for January.
type FlowDTO struct {
	Month          int              `json:"month"`
	Income         decimal.Decimal  `json:"income"`
	Expenses       decimal.Decimal  `json:"expenses"`
	IncomeGrowth   *decimal.Decimal `json:"income_growth,omitempty"`
	ExpensesGrowth *decimal.Decimal `json:"expenses_growth,omitempty"`
}

func toFlowDTOs(flow []dashboard.MonthFlow) []FlowDTO {
	out := make([]FlowDTO, len(flow))
	for i, m := range flow {
		out[i] = FlowDTO{Month: int(m.Month), Income: m.Income, Expenses: m.Expenses}
		if i > 0 {
			ig := dashboard.Growth(m.Income, flow[i-1].Income).Round(2)
			eg := dashboard.Growth(m.Expenses, flow[i-1].Expenses).Round(2)
			out[i].IncomeGrowth, out[i].ExpensesGrowth = &ig, &eg
		}
	}
	return out
}

type BankAccountDTO struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Bank          string          `json:"bank"`
	HolderID      string          `json:"holder_id,omitempty"`
	Balance       decimal.Decimal `json:"balance"`
	AccountType   string          `json:"account_type,omitempty"`
	AccountNumber string          `json:"account_number,omitempty"`
	Agency        string          `json:"agency,omitempty"`
}

func toBankAccountDTO(a core.BankAccount) BankAccountDTO {
	return BankAccountDTO{
		ID:            a.ID,
		Name:          a.Name,
		Bank:          a.Bank,
		HolderID:      a.HolderID,
		Balance:       a.Balance,
		AccountType:   a.AccountType,
		AccountNumber: a.AccountNumber,
		Agency:        a.Agency,
	}
}

type CreditCardDTO struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Bank        string          `json:"bank"`
	HolderID    string          `json:"holder_id,omitempty"`
	Limit       decimal.Decimal `json:"limit"`
	CurrentBill decimal.Decimal `json:"current_bill"`
	Available   decimal.Decimal `json:"available"`
	Usage       decimal.Decimal `json:"usage_percent"`
	ClosingDay  int             `json:"closing_day"`
	DueDay      int             `json:"due_day"`
	LastDigits  string          `json:"last_digits,omitempty"`
	Theme       string          `json:"theme"`
}

func toCreditCardDTO(s dashboard.CardSummary) CreditCardDTO {
	c := s.Card
	return CreditCardDTO{
		ID:          c.ID,
		Name:        c.Name,
		Bank:        c.Bank,
		HolderID:    c.HolderID,
		Limit:       c.Limit,
		CurrentBill: c.CurrentBill,
		Available:   s.Available,
		Usage:       s.Usage.Round(2),
		ClosingDay:  c.ClosingDay,
		DueDay:      c.DueDay,
		LastDigits:  c.LastDigits,
		Theme:       string(c.Theme),
	}
}

type GoalDTO struct {
	ID            string          `json:"id"`
	Title         string          `json:"title"`
	Description   string          `json:"description,omitempty"`
	TargetAmount  decimal.Decimal `json:"target_amount"`
	CurrentAmount decimal.Decimal `json:"current_amount"`
	Remaining     decimal.Decimal `json:"remaining"`
	Progress      decimal.Decimal `json:"progress_percent"`
	Deadline      string          `json:"deadline,omitempty"`
	Category      string          `json:"category,omitempty"`
	MemberID      string          `json:"member_id,omitempty"`
	IsCompleted   bool            `json:"is_completed"`
}

func toGoalDTO(g core.Goal) GoalDTO {
	remaining := g.TargetAmount.Sub(g.CurrentAmount)
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}
	dto := GoalDTO{
		ID:            g.ID,
		Title:         g.Title,
		Description:   g.Description,
		TargetAmount:  g.TargetAmount,
		CurrentAmount: g.CurrentAmount,
		Remaining:     remaining,
		Progress:      core.Percent(g.CurrentAmount, g.TargetAmount).Round(2),
		Category:      g.Category,
		MemberID:      g.MemberID,
		IsCompleted:   g.IsCompleted,
	}
	if !g.Deadline.IsEmpty() {
		dto.Deadline = g.Deadline.String()
	}
	return dto
}

func toGoalDTOs(goals []core.Goal) []GoalDTO {
	out := make([]GoalDTO, len(goals))
	for i, g := range goals {
		out[i] = toGoalDTO(g)
	}
	return out
}

type AccountsDTO struct {
	BankAccounts []BankAccountDTO `json:"bank_accounts"`
	CreditCards  []CreditCardDTO  `json:"credit_cards"`
	TotalBalance decimal.Decimal  `json:"total_balance"`
}

type errorBody struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// writeJSON encodes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps service and store errors to HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errMalformed):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrValidation), isCoreValidation(err):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ledger.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ledger.ErrDuplicate):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func isCoreValidation(err error) bool {
	for _, target := range []error{
		core.ErrInvalidAmount, core.ErrInvalidDate, core.ErrInvalidType, core.ErrInvalidStatus,
		core.ErrEmptyDescription, core.ErrDescriptionTooLong, core.ErrEmptyCategory, core.ErrInvalidInstallments,
		core.ErrEmptyName, core.ErrEmptyTitle, core.ErrInvalidDay,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// writeError logs server-side failures and writes a {"error": ...} body.
// Internal error text is never sent to the client.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := err.Error()
	logger := applog.FromContext(r.Context())
	if status == http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "Request failed", applog.FieldError, err, applog.FieldPath, r.URL.Path)
		msg = "internal server error"
	} else {
		logger.DebugContext(r.Context(), "Request rejected", applog.FieldError, err, applog.FieldStatusCode, status)
	}
	writeJSON(w, status, errorBody{Error: msg, RequestID: w.Header().Get("X-Request-ID")})
}
