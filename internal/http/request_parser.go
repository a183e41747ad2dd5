// Package http exposes the ledger and the dashboard aggregates as a JSON API.
//
// This file turns query strings and request bodies into core values.
package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"mycash/internal/core"
)

const maxBodyBytes = 1 << 20

// errMalformed marks requests that cannot be decoded at all. Handlers map it to 400.
var errMalformed = errors.New("malformed request")

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errMalformed, fmt.Sprintf(format, args...))
}

// ParseFilters reads member, from, to, type and q from the query string.
func ParseFilters(query url.Values) (core.TransactionFilters, error) {
	f := core.TransactionFilters{
		SelectedMember: strings.TrimSpace(query.Get("member")),
		SearchText:     sanitizeInput(query.Get("q")),
	}

	var err error
	if f.DateRange.StartDate, err = optionalDate(query, "from"); err != nil {
		return core.TransactionFilters{}, err
	}
	if f.DateRange.EndDate, err = optionalDate(query, "to"); err != nil {
		return core.TransactionFilters{}, err
	}

	f.TransactionType = core.TypeFilter(strings.ToLower(strings.TrimSpace(query.Get("type"))))
	if !f.TransactionType.IsValid() {
		return core.TransactionFilters{}, malformed("type must be one of all, income, expense")
	}
	return f, nil
}

func optionalDate(query url.Values, key string) (core.Date, error) {
	v := strings.TrimSpace(query.Get(key))
	if v == "" {
		return core.Date{}, nil
	}
	d, err := core.ParseDate(v)
	if err != nil {
		return core.Date{}, malformed("%s must be YYYY-MM-DD", key)
	}
	return d, nil
}

// ParsePagination reads page and per_page. Missing or invalid values fall
// back to the first page and the dashboard default size; per_page is capped.
func ParsePagination(query url.Values, defaultPerPage int) (page, perPage int) {
	page = positiveInt(query.Get("page"), 1)
	perPage = positiveInt(query.Get("per_page"), defaultPerPage)
	if perPage > 100 {
		perPage = 100
	}
	return page, perPage
}

// ParseYear reads year, defaulting to the year of now.
func ParseYear(query url.Values, now time.Time) (int, error) {
	v := strings.TrimSpace(query.Get("year"))
	if v == "" {
		return now.Year(), nil
	}
	y, err := strconv.Atoi(v)
	if err != nil || y < 1970 || y > 9999 {
		return 0, malformed("year must be between 1970 and 9999")
	}
	return y, nil
}

// ParseLimit reads limit with a default and an upper bound.
func ParseLimit(query url.Values, def, max int) int {
	n := positiveInt(query.Get("limit"), def)
	if n > max {
		n = max
	}
	return n
}

func positiveInt(v string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 1 {
		return def
	}
	return n
}

// decodeJSON reads a single JSON object into dst, rejecting unknown fields.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return malformed("invalid JSON body: %v", err)
	}
	if dec.More() {
		return malformed("body must contain a single JSON object")
	}
	return nil
}

// TransactionRequest is the body of POST /api/transactions. Amount is a
// string so both "1234.56" and "1.234,56" are accepted.
type TransactionRequest struct {
	Type               string `json:"type"`
	Amount             string `json:"amount"`
	Description        string `json:"description"`
	Category           string `json:"category"`
	Date               string `json:"date"`
	AccountID          string `json:"account_id"`
	MemberID           string `json:"member_id"`
	Installments       int    `json:"installments"`
	CurrentInstallment int    `json:"current_installment"`
	Status             string `json:"status"`
	IsRecurring        bool   `json:"is_recurring"`
	IsPaid             bool   `json:"is_paid"`
}

// Transaction converts the request. Parse failures of amount and date are
// reported with the core sentinels so they surface as validation errors.
func (req TransactionRequest) Transaction() (core.Transaction, error) {
	amount, err := core.ParseAmount(req.Amount)
	if err != nil {
		return core.Transaction{}, err
	}
	date, err := core.ParseDate(req.Date)
	if err != nil {
		return core.Transaction{}, err
	}
	return core.Transaction{
		Type:               core.TransactionType(strings.ToLower(strings.TrimSpace(req.Type))),
		Amount:             amount,
		Description:        sanitizeInput(req.Description),
		Category:           sanitizeInput(req.Category),
		Date:               date,
		AccountID:          strings.TrimSpace(req.AccountID),
		MemberID:           strings.TrimSpace(req.MemberID),
		Installments:       req.Installments,
		CurrentInstallment: req.CurrentInstallment,
		Status:             core.TransactionStatus(strings.ToLower(strings.TrimSpace(req.Status))),
		IsRecurring:        req.IsRecurring,
		IsPaid:             req.IsPaid,
	}, nil
}

// PatchRequest is the body of PATCH /api/transactions/{id}. Absent fields
// are left untouched; an empty string clears account_id or member_id.
type PatchRequest struct {
	Type               *string `json:"type"`
	Amount             *string `json:"amount"`
	Description        *string `json:"description"`
	Category           *string `json:"category"`
	Date               *string `json:"date"`
	AccountID          *string `json:"account_id"`
	MemberID           *string `json:"member_id"`
	Installments       *int    `json:"installments"`
	CurrentInstallment *int    `json:"current_installment"`
	Status             *string `json:"status"`
	IsRecurring        *bool   `json:"is_recurring"`
	IsPaid             *bool   `json:"is_paid"`
}

func (req PatchRequest) Patch() (core.TransactionPatch, error) {
	p := core.TransactionPatch{
		Installments:       req.Installments,
		CurrentInstallment: req.CurrentInstallment,
		IsRecurring:        req.IsRecurring,
		IsPaid:             req.IsPaid,
	}
	if req.Type != nil {
		t := core.TransactionType(strings.ToLower(strings.TrimSpace(*req.Type)))
		p.Type = &t
	}
	if req.Amount != nil {
		a, err := core.ParseAmount(*req.Amount)
		if err != nil {
			return core.TransactionPatch{}, err
		}
		p.Amount = &a
	}
	if req.Description != nil {
		d := sanitizeInput(*req.Description)
		p.Description = &d
	}
	if req.Category != nil {
		c := sanitizeInput(*req.Category)
		p.Category = &c
	}
	if req.Date != nil {
		d, err := core.ParseDate(*req.Date)
		if err != nil {
			return core.TransactionPatch{}, err
		}
		p.Date = &d
	}
	if req.AccountID != nil {
		a := strings.TrimSpace(*req.AccountID)
		p.AccountID = &a
	}
	if req.MemberID != nil {
		m := strings.TrimSpace(*req.MemberID)
		p.MemberID = &m
	}
	if req.Status != nil {
		s := core.TransactionStatus(strings.ToLower(strings.TrimSpace(*req.Status)))
		p.Status = &s
	}
	return p, nil
}

type BankAccountRequest struct {
	Name          string          `json:"name"`
	Bank          string          `json:"bank"`
	HolderID      string          `json:"holder_id"`
	Balance       decimal.Decimal `json:"balance"`
	AccountType   string          `json:"account_type"`
	AccountNumber string          `json:"account_number"`
	Agency        string          `json:"agency"`
}

func (req BankAccountRequest) BankAccount() core.BankAccount {
	return core.BankAccount{
		Name:          sanitizeInput(req.Name),
		Bank:          sanitizeInput(req.Bank),
		HolderID:      strings.TrimSpace(req.HolderID),
		Balance:       req.Balance,
		AccountType:   sanitizeInput(req.AccountType),
		AccountNumber: sanitizeInput(req.AccountNumber),
		Agency:        sanitizeInput(req.Agency),
	}
}

type CreditCardRequest struct {
	Name        string          `json:"name"`
	Bank        string          `json:"bank"`
	HolderID    string          `json:"holder_id"`
	Limit       decimal.Decimal `json:"limit"`
	CurrentBill decimal.Decimal `json:"current_bill"`
	ClosingDay  int             `json:"closing_day"`
	DueDay      int             `json:"due_day"`
	LastDigits  string          `json:"last_digits"`
	Theme       string          `json:"theme"`
}

func (req CreditCardRequest) CreditCard() core.CreditCard {
	return core.CreditCard{
		Name:        sanitizeInput(req.Name),
		Bank:        sanitizeInput(req.Bank),
		HolderID:    strings.TrimSpace(req.HolderID),
		Limit:       req.Limit,
		CurrentBill: req.CurrentBill,
		ClosingDay:  req.ClosingDay,
		DueDay:      req.DueDay,
		LastDigits:  strings.TrimSpace(req.LastDigits),
		Theme:       core.CardTheme(strings.ToLower(strings.TrimSpace(req.Theme))),
	}
}

type MemberRequest struct {
	Name          string          `json:"name"`
	Role          string          `json:"role"`
	AvatarURL     string          `json:"avatar_url"`
	Email         string          `json:"email"`
	MonthlyIncome decimal.Decimal `json:"monthly_income"`
}

func (req MemberRequest) Member() core.FamilyMember {
	return core.FamilyMember{
		Name:          sanitizeInput(req.Name),
		Role:          sanitizeInput(req.Role),
		AvatarURL:     strings.TrimSpace(req.AvatarURL),
		Email:         strings.TrimSpace(req.Email),
		MonthlyIncome: req.MonthlyIncome,
	}
}

// BankAccountPatchRequest is the body of PATCH /api/accounts/{id}.
type BankAccountPatchRequest struct {
	Name          *string          `json:"name"`
	Bank          *string          `json:"bank"`
	HolderID      *string          `json:"holder_id"`
	Balance       *decimal.Decimal `json:"balance"`
	AccountType   *string          `json:"account_type"`
	AccountNumber *string          `json:"account_number"`
	Agency        *string          `json:"agency"`
}

func (req BankAccountPatchRequest) Patch() core.BankAccountPatch {
	return core.BankAccountPatch{
		Name:          sanitized(req.Name),
		Bank:          sanitized(req.Bank),
		HolderID:      trimmed(req.HolderID),
		Balance:       req.Balance,
		AccountType:   sanitized(req.AccountType),
		AccountNumber: sanitized(req.AccountNumber),
		Agency:        sanitized(req.Agency),
	}
}

// CreditCardPatchRequest is the body of PATCH /api/cards/{id}. Sending
// current_bill is how a paid bill is recorded.
type CreditCardPatchRequest struct {
	Name        *string          `json:"name"`
	Bank        *string          `json:"bank"`
	HolderID    *string          `json:"holder_id"`
	Limit       *decimal.Decimal `json:"limit"`
	CurrentBill *decimal.Decimal `json:"current_bill"`
	ClosingDay  *int             `json:"closing_day"`
	DueDay      *int             `json:"due_day"`
	LastDigits  *string          `json:"last_digits"`
	Theme       *string          `json:"theme"`
}

func (req CreditCardPatchRequest) Patch() core.CreditCardPatch {
	p := core.CreditCardPatch{
		Name:        sanitized(req.Name),
		Bank:        sanitized(req.Bank),
		HolderID:    trimmed(req.HolderID),
		Limit:       req.Limit,
		CurrentBill: req.CurrentBill,
		ClosingDay:  req.ClosingDay,
		DueDay:      req.DueDay,
		LastDigits:  trimmed(req.LastDigits),
	}
	if req.Theme != nil {
		t := core.CardTheme(strings.ToLower(strings.TrimSpace(*req.Theme)))
		p.Theme = &t
	}
	return p
}

type MemberPatchRequest struct {
	Name          *string          `json:"name"`
	Role          *string          `json:"role"`
	AvatarURL     *string          `json:"avatar_url"`
	Email         *string          `json:"email"`
	MonthlyIncome *decimal.Decimal `json:"monthly_income"`
}

func (req MemberPatchRequest) Patch() core.MemberPatch {
	return core.MemberPatch{
		Name:          sanitized(req.Name),
		Role:          sanitized(req.Role),
		AvatarURL:     trimmed(req.AvatarURL),
		Email:         trimmed(req.Email),
		MonthlyIncome: req.MonthlyIncome,
	}
}

// GoalRequest is the body of POST /api/goals. An empty deadline means the
// goal is open-ended.
type GoalRequest struct {
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	TargetAmount  decimal.Decimal `json:"target_amount"`
	CurrentAmount decimal.Decimal `json:"current_amount"`
	Deadline      string          `json:"deadline"`
	Category      string          `json:"category"`
	MemberID      string          `json:"member_id"`
	IsCompleted   bool            `json:"is_completed"`
}

func (req GoalRequest) Goal() (core.Goal, error) {
	deadline, err := optionalDeadline(req.Deadline)
	if err != nil {
		return core.Goal{}, err
	}
	return core.Goal{
		Title:         sanitizeInput(req.Title),
		Description:   sanitizeInput(req.Description),
		TargetAmount:  req.TargetAmount,
		CurrentAmount: req.CurrentAmount,
		Deadline:      deadline,
		Category:      sanitizeInput(req.Category),
		MemberID:      strings.TrimSpace(req.MemberID),
		IsCompleted:   req.IsCompleted,
	}, nil
}

// GoalPatchRequest is the body of PATCH /api/goals/{id}. An empty deadline
// clears it.
type GoalPatchRequest struct {
	Title         *string          `json:"title"`
	Description   *string          `json:"description"`
	TargetAmount  *decimal.Decimal `json:"target_amount"`
	CurrentAmount *decimal.Decimal `json:"current_amount"`
	Deadline      *string          `json:"deadline"`
	Category      *string          `json:"category"`
	MemberID      *string          `json:"member_id"`
	IsCompleted   *bool            `json:"is_completed"`
}

func (req GoalPatchRequest) Patch() (core.GoalPatch, error) {
	p := core.GoalPatch{
		Title:         sanitized(req.Title),
		Description:   sanitized(req.Description),
		TargetAmount:  req.TargetAmount,
		CurrentAmount: req.CurrentAmount,
		Category:      sanitized(req.Category),
		MemberID:      trimmed(req.MemberID),
		IsCompleted:   req.IsCompleted,
	}
	if req.Deadline != nil {
		d, err := optionalDeadline(*req.Deadline)
		if err != nil {
			return core.GoalPatch{}, err
		}
		p.Deadline = &d
	}
	return p, nil
}

func optionalDeadline(s string) (core.Date, error) {
	if strings.TrimSpace(s) == "" {
		return core.Date{}, nil
	}
	return core.ParseDate(s)
}

func sanitized(s *string) *string {
	if s == nil {
		return nil
	}
	v := sanitizeInput(*s)
	return &v
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

// sanitizeInput trims whitespace and drops control characters other than
// tab, newline and carriage return.
func sanitizeInput(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, strings.TrimSpace(s))
}
