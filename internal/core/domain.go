package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

const (
	Pending   TransactionStatus = "pending"
	Completed TransactionStatus = "completed"
	Cancelled TransactionStatus = "cancelled"
)

const (
	ThemeBlack CardTheme = "black"
	ThemeLime  CardTheme = "lime"
	ThemeWhite CardTheme = "white"
)

type (
	TransactionType   string
	TransactionStatus string
	CardTheme         string

	// Date is a calendar day, always stored at midnight UTC.
	Date struct {
		time.Time
	}

	Transaction struct {
		ID                 string
		Type               TransactionType
		Amount             decimal.Decimal
		Description        string
		Category           string
		Date               Date
		AccountID          string // bank account or credit card, empty when unassigned
		MemberID           string // empty means the whole family
		Installments       int    // 0 or 1 means a single payment
		CurrentInstallment int
		Status             TransactionStatus
		IsRecurring        bool
		IsPaid             bool
		CreatedAt          time.Time
		UpdatedAt          time.Time
	}

	BankAccount struct {
		ID            string
		Name          string
		Bank          string
		HolderID      string
		Balance       decimal.Decimal
		AccountType   string
		AccountNumber string
		Agency        string
		CreatedAt     time.Time
		UpdatedAt     time.Time
	}

	CreditCard struct {
		ID          string
		Name        string
		Bank        string
		HolderID    string
		Limit       decimal.Decimal
		CurrentBill decimal.Decimal
		ClosingDay  int
		DueDay      int
		LastDigits  string
		Theme       CardTheme
		CreatedAt   time.Time
		UpdatedAt   time.Time
	}

	FamilyMember struct {
		ID            string
		Name          string
		Role          string
		AvatarURL     string
		Email         string
		MonthlyIncome decimal.Decimal
		CreatedAt     time.Time
		UpdatedAt     time.Time
	}

	// Goal is a savings target for one member or, with no member, the family.
	Goal struct {
		ID            string
		Title         string
		Description   string
		TargetAmount  decimal.Decimal
		CurrentAmount decimal.Decimal
		Deadline      Date // empty when open-ended
		Category      string
		MemberID      string
		IsCompleted   bool
		CreatedAt     time.Time
		UpdatedAt     time.Time
	}
)

var (
	ErrInvalidDate         = errors.New("invalid date")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInvalidType         = errors.New("invalid transaction type")
	ErrInvalidStatus       = errors.New("invalid transaction status")
	ErrEmptyDescription    = errors.New("empty description")
	ErrDescriptionTooLong  = errors.New("description too long (max 200 characters)")
	ErrEmptyCategory       = errors.New("empty category")
	ErrInvalidInstallments = errors.New("invalid installments")
	ErrEmptyName           = errors.New("empty name")
	ErrEmptyTitle          = errors.New("empty title")
	ErrInvalidDay          = errors.New("invalid day of month")
)

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar day in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(time.DateOnly, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// IsEmpty reports whether the date is unset. Optional bounds use the zero value.
func (d Date) IsEmpty() bool {
	return d.IsZero()
}

// String formats the date as YYYY-MM-DD, or "" when empty.
func (d Date) String() string {
	if d.IsEmpty() {
		return ""
	}
	return d.Format(time.DateOnly)
}

func (d Date) Validate() error {
	if d.IsEmpty() {
		return ErrInvalidDate
	}
	return nil
}

func (t TransactionType) IsValid() bool {
	return t == Income || t == Expense
}

func (s TransactionStatus) IsValid() bool {
	switch s {
	case Pending, Completed, Cancelled:
		return true
	}
	return false
}

// IsInstallment reports whether the transaction is part of a multi-payment plan.
func (t Transaction) IsInstallment() bool {
	return t.Installments > 1
}

// Realized reports whether the transaction counts toward period totals.
func (t Transaction) Realized() bool {
	return t.Status == Completed
}

func (t Transaction) Validate() error {
	if !t.Type.IsValid() {
		return ErrInvalidType
	}
	if !t.Status.IsValid() {
		return ErrInvalidStatus
	}
	if t.Amount.IsNegative() {
		return ErrInvalidAmount
	}
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(t.Description) == "" {
		return ErrEmptyDescription
	}
	if len(t.Description) > 200 {
		return ErrDescriptionTooLong
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	if t.Installments < 0 || t.CurrentInstallment < 0 {
		return ErrInvalidInstallments
	}
	if t.Installments > 1 && t.CurrentInstallment > t.Installments {
		return ErrInvalidInstallments
	}
	return nil
}

func (a BankAccount) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return ErrEmptyName
	}
	return nil
}

func (c CreditCard) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if c.Limit.IsNegative() || c.CurrentBill.IsNegative() {
		return ErrInvalidAmount
	}
	if c.ClosingDay < 1 || c.ClosingDay > 31 || c.DueDay < 1 || c.DueDay > 31 {
		return ErrInvalidDay
	}
	return nil
}

func (m FamilyMember) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return ErrEmptyName
	}
	if m.MonthlyIncome.IsNegative() {
		return ErrInvalidAmount
	}
	return nil
}

func (g Goal) Validate() error {
	if strings.TrimSpace(g.Title) == "" {
		return ErrEmptyTitle
	}
	if g.TargetAmount.IsNegative() || g.CurrentAmount.IsNegative() {
		return ErrInvalidAmount
	}
	return nil
}
