// Package ledger defines the storage and event ports around the household ledger.
package ledger

import (
	"context"
	"errors"

	"mycash/internal/core"
)

// EntityKind names the kind of record a ledger.changed event refers to.
type EntityKind string

const (
	KindTransaction EntityKind = "transaction"
	KindBankAccount EntityKind = "bank_account"
	KindCreditCard  EntityKind = "credit_card"
	KindMember      EntityKind = "member"
	KindGoal        EntityKind = "goal"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate id")
)

// Ports for outbound adapters.
type (
	TransactionStore interface {
		ListTransactions(ctx context.Context) ([]core.Transaction, error)
		GetTransaction(ctx context.Context, id string) (core.Transaction, error)
		CreateTransaction(ctx context.Context, t core.Transaction) error
		UpdateTransaction(ctx context.Context, t core.Transaction) error
		DeleteTransaction(ctx context.Context, id string) error
	}

	AccountStore interface {
		ListBankAccounts(ctx context.Context) ([]core.BankAccount, error)
		GetBankAccount(ctx context.Context, id string) (core.BankAccount, error)
		CreateBankAccount(ctx context.Context, a core.BankAccount) error
		UpdateBankAccount(ctx context.Context, a core.BankAccount) error
		DeleteBankAccount(ctx context.Context, id string) error

		ListCreditCards(ctx context.Context) ([]core.CreditCard, error)
		GetCreditCard(ctx context.Context, id string) (core.CreditCard, error)
		CreateCreditCard(ctx context.Context, c core.CreditCard) error
		UpdateCreditCard(ctx context.Context, c core.CreditCard) error
		DeleteCreditCard(ctx context.Context, id string) error
	}

	MemberStore interface {
		ListMembers(ctx context.Context) ([]core.FamilyMember, error)
		GetMember(ctx context.Context, id string) (core.FamilyMember, error)
		CreateMember(ctx context.Context, m core.FamilyMember) error
		UpdateMember(ctx context.Context, m core.FamilyMember) error
		DeleteMember(ctx context.Context, id string) error
	}

	GoalStore interface {
		ListGoals(ctx context.Context) ([]core.Goal, error)
		GetGoal(ctx context.Context, id string) (core.Goal, error)
		CreateGoal(ctx context.Context, g core.Goal) error
		UpdateGoal(ctx context.Context, g core.Goal) error
		DeleteGoal(ctx context.Context, id string) error
	}

	// Store is everything the services need from a backend.
	Store interface {
		TransactionStore
		AccountStore
		MemberStore
		GoalStore
	}

	// EventPublisher announces that the ledger changed so caches can be dropped.
	EventPublisher interface {
		PublishLedgerChanged(ctx context.Context, kind EntityKind, id string, version uint64) error
	}
)
