// Package memory is an in-process ledger.Store for development and tests.
package memory

import (
	"context"
	"sync"

	"mycash/internal/core"
	"mycash/internal/ledger"
)

type Store struct {
	mu       sync.RWMutex
	txns     []core.Transaction
	accounts []core.BankAccount
	cards    []core.CreditCard
	members  []core.FamilyMember
	goals    []core.Goal
}

func New() *Store {
	return &Store{}
}

// NewFromDataset returns a store preloaded with ds.
func NewFromDataset(ds ledger.Dataset) *Store {
	return &Store{
		txns:     append([]core.Transaction(nil), ds.Transactions...),
		accounts: append([]core.BankAccount(nil), ds.Accounts...),
		cards:    append([]core.CreditCard(nil), ds.Cards...),
		members:  append([]core.FamilyMember(nil), ds.Members...),
		goals:    append([]core.Goal(nil), ds.Goals...),
	}
}

var _ ledger.Store = (*Store)(nil)

// The helpers below must be called with the lock held.

func indexOf[T any](items []T, id string, idOf func(T) string) int {
	for i, item := range items {
		if idOf(item) == id {
			return i
		}
	}
	return -1
}

func get[T any](items []T, id string, idOf func(T) string) (T, error) {
	if i := indexOf(items, id, idOf); i >= 0 {
		return items[i], nil
	}
	var zero T
	return zero, ledger.ErrNotFound
}

func insert[T any](items *[]T, item T, idOf func(T) string) error {
	if indexOf(*items, idOf(item), idOf) >= 0 {
		return ledger.ErrDuplicate
	}
	*items = append(*items, item)
	return nil
}

func replace[T any](items []T, item T, idOf func(T) string) error {
	i := indexOf(items, idOf(item), idOf)
	if i < 0 {
		return ledger.ErrNotFound
	}
	items[i] = item
	return nil
}

func remove[T any](items *[]T, id string, idOf func(T) string) error {
	i := indexOf(*items, id, idOf)
	if i < 0 {
		return ledger.ErrNotFound
	}
	*items = append((*items)[:i], (*items)[i+1:]...)
	return nil
}

func txID(t core.Transaction) string { return t.ID }
func accountID(a core.BankAccount) string { return a.ID }
func cardID(c core.CreditCard) string { return c.ID }
func memberID(m core.FamilyMember) string { return m.ID }
func goalID(g core.Goal) string { return g.ID }

func (s *Store) ListTransactions(_ context.Context) ([]core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.Transaction(nil), s.txns...), nil
}

func (s *Store) GetTransaction(_ context.Context, id string) (core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return get(s.txns, id, txID)
}

func (s *Store) CreateTransaction(_ context.Context, t core.Transaction) error {
	if err := t.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return insert(&s.txns, t, txID)
}

func (s *Store) UpdateTransaction(_ context.Context, t core.Transaction) error {
	if err := t.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return replace(s.txns, t, txID)
}

func (s *Store) DeleteTransaction(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return remove(&s.txns, id, txID)
}

func (s *Store) ListBankAccounts(_ context.Context) ([]core.BankAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.BankAccount(nil), s.accounts...), nil
}

func (s *Store) GetBankAccount(_ context.Context, id string) (core.BankAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return get(s.accounts, id, accountID)
}

func (s *Store) CreateBankAccount(_ context.Context, a core.BankAccount) error {
	if err := a.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return insert(&s.accounts, a, accountID)
}

func (s *Store) UpdateBankAccount(_ context.Context, a core.BankAccount) error {
	if err := a.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return replace(s.accounts, a, accountID)
}

func (s *Store) DeleteBankAccount(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return remove(&s.accounts, id, accountID)
}

func (s *Store) ListCreditCards(_ context.Context) ([]core.CreditCard, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.CreditCard(nil), s.cards...), nil
}

func (s *Store) GetCreditCard(_ context.Context, id string) (core.CreditCard, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return get(s.cards, id, cardID)
}

func (s *Store) CreateCreditCard(_ context.Context, c core.CreditCard) error {
	if err := c.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return insert(&s.cards, c, cardID)
}

func (s *Store) UpdateCreditCard(_ context.Context, c core.CreditCard) error {
	if err := c.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return replace(s.cards, c, cardID)
}

func (s *Store) DeleteCreditCard(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return remove(&s.cards, id, cardID)
}

func (s *Store) ListMembers(_ context.Context) ([]core.FamilyMember, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.FamilyMember(nil), s.members...), nil
}

func (s *Store) GetMember(_ context.Context, id string) (core.FamilyMember, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return get(s.members, id, memberID)
}

func (s *Store) CreateMember(_ context.Context, m core.FamilyMember) error {
	if err := m.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return insert(&s.members, m, memberID)
}

func (s *Store) UpdateMember(_ context.Context, m core.FamilyMember) error {
	if err := m.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return replace(s.members, m, memberID)
}

func (s *Store) DeleteMember(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return remove(&s.members, id, memberID)
}

func (s *Store) ListGoals(_ context.Context) ([]core.Goal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.Goal(nil), s.goals...), nil
}

func (s *Store) GetGoal(_ context.Context, id string) (core.Goal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return get(s.goals, id, goalID)
}

func (s *Store) CreateGoal(_ context.Context, g core.Goal) error {
	if err := g.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return insert(&s.goals, g, goalID)
}

func (s *Store) UpdateGoal(_ context.Context, g core.Goal) error {
	if err := g.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return replace(s.goals, g, goalID)
}

func (s *Store) DeleteGoal(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return remove(&s.goals, id, goalID)
}
