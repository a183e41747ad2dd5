package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionPatch is a partial update. Nil fields are left untouched.
type TransactionPatch struct {
	Type               *TransactionType
	Amount             *decimal.Decimal
	Description        *string
	Category           *string
	Date               *Date
	AccountID          *string
	MemberID           *string
	Installments       *int
	CurrentInstallment *int
	Status             *TransactionStatus
	IsRecurring        *bool
	IsPaid             *bool
}

// IsEmpty reports whether the patch changes nothing.
func (p TransactionPatch) IsEmpty() bool {
	return p.Type == nil && p.Amount == nil && p.Description == nil && p.Category == nil &&
		p.Date == nil && p.AccountID == nil && p.MemberID == nil && p.Installments == nil &&
		p.CurrentInstallment == nil && p.Status == nil && p.IsRecurring == nil && p.IsPaid == nil
}

// Apply returns a copy of t with the patch applied and UpdatedAt set to now.
// The identifier and creation time never change.
func (p TransactionPatch) Apply(t Transaction, now time.Time) Transaction {
	if p.Type != nil {
		t.Type = *p.Type
	}
	if p.Amount != nil {
		t.Amount = *p.Amount
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.Date != nil {
		t.Date = *p.Date
	}
	if p.AccountID != nil {
		t.AccountID = *p.AccountID
	}
	if p.MemberID != nil {
		t.MemberID = *p.MemberID
	}
	if p.Installments != nil {
		t.Installments = *p.Installments
	}
	if p.CurrentInstallment != nil {
		t.CurrentInstallment = *p.CurrentInstallment
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.IsRecurring != nil {
		t.IsRecurring = *p.IsRecurring
	}
	if p.IsPaid != nil {
		t.IsPaid = *p.IsPaid
	}
	t.UpdatedAt = now
	return t
}

// BankAccountPatch is a partial update of a bank account.
type BankAccountPatch struct {
	Name          *string
	Bank          *string
	HolderID      *string
	Balance       *decimal.Decimal
	AccountType   *string
	AccountNumber *string
	Agency        *string
}

func (p BankAccountPatch) IsEmpty() bool {
	return p.Name == nil && p.Bank == nil && p.HolderID == nil && p.Balance == nil &&
		p.AccountType == nil && p.AccountNumber == nil && p.Agency == nil
}

func (p BankAccountPatch) Apply(a BankAccount, now time.Time) BankAccount {
	setString(&a.Name, p.Name)
	setString(&a.Bank, p.Bank)
	setString(&a.HolderID, p.HolderID)
	if p.Balance != nil {
		a.Balance = *p.Balance
	}
	setString(&a.AccountType, p.AccountType)
	setString(&a.AccountNumber, p.AccountNumber)
	setString(&a.Agency, p.Agency)
	a.UpdatedAt = now
	return a
}

// CreditCardPatch is a partial update of a credit card. Changing CurrentBill
// is how a paid or grown bill reaches the total balance.
type CreditCardPatch struct {
	Name        *string
	Bank        *string
	HolderID    *string
	Limit       *decimal.Decimal
	CurrentBill *decimal.Decimal
	ClosingDay  *int
	DueDay      *int
	LastDigits  *string
	Theme       *CardTheme
}

func (p CreditCardPatch) IsEmpty() bool {
	return p.Name == nil && p.Bank == nil && p.HolderID == nil && p.Limit == nil &&
		p.CurrentBill == nil && p.ClosingDay == nil && p.DueDay == nil && p.LastDigits == nil &&
		p.Theme == nil
}

func (p CreditCardPatch) Apply(c CreditCard, now time.Time) CreditCard {
	setString(&c.Name, p.Name)
	setString(&c.Bank, p.Bank)
	setString(&c.HolderID, p.HolderID)
	if p.Limit != nil {
		c.Limit = *p.Limit
	}
	if p.CurrentBill != nil {
		c.CurrentBill = *p.CurrentBill
	}
	if p.ClosingDay != nil {
		c.ClosingDay = *p.ClosingDay
	}
	if p.DueDay != nil {
		c.DueDay = *p.DueDay
	}
	setString(&c.LastDigits, p.LastDigits)
	if p.Theme != nil {
		c.Theme = *p.Theme
	}
	c.UpdatedAt = now
	return c
}

// MemberPatch is a partial update of a family member.
type MemberPatch struct {
	Name          *string
	Role          *string
	AvatarURL     *string
	Email         *string
	MonthlyIncome *decimal.Decimal
}

func (p MemberPatch) IsEmpty() bool {
	return p.Name == nil && p.Role == nil && p.AvatarURL == nil && p.Email == nil && p.MonthlyIncome == nil
}

func (p MemberPatch) Apply(m FamilyMember, now time.Time) FamilyMember {
	setString(&m.Name, p.Name)
	setString(&m.Role, p.Role)
	setString(&m.AvatarURL, p.AvatarURL)
	setString(&m.Email, p.Email)
	if p.MonthlyIncome != nil {
		m.MonthlyIncome = *p.MonthlyIncome
	}
	m.UpdatedAt = now
	return m
}

// GoalPatch is a partial update of a goal. An empty Deadline clears it.
type GoalPatch struct {
	Title         *string
	Description   *string
	TargetAmount  *decimal.Decimal
	CurrentAmount *decimal.Decimal
	Deadline      *Date
	Category      *string
	MemberID      *string
	IsCompleted   *bool
}

func (p GoalPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.TargetAmount == nil && p.CurrentAmount == nil &&
		p.Deadline == nil && p.Category == nil && p.MemberID == nil && p.IsCompleted == nil
}

func (p GoalPatch) Apply(g Goal, now time.Time) Goal {
	setString(&g.Title, p.Title)
	setString(&g.Description, p.Description)
	if p.TargetAmount != nil {
		g.TargetAmount = *p.TargetAmount
	}
	if p.CurrentAmount != nil {
		g.CurrentAmount = *p.CurrentAmount
	}
	if p.Deadline != nil {
		g.Deadline = *p.Deadline
	}
	setString(&g.Category, p.Category)
	setString(&g.MemberID, p.MemberID)
	if p.IsCompleted != nil {
		g.IsCompleted = *p.IsCompleted
	}
	g.UpdatedAt = now
	return g
}

func setString(dst, src *string) {
	if src != nil {
		*dst = *src
	}
}
