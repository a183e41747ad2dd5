// Package services orchestrates ledger mutations and dashboard reads across
// the store, the snapshot cache and the event bus.
package services

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"mycash/internal/core"
	"mycash/internal/ledger"
	applog "mycash/internal/log"
)

// ErrValidation wraps every input problem a caller can fix.
var ErrValidation = errors.New("validation failed")

// VersionSource reports the current dataset version.
type VersionSource interface {
	Version() uint64
}

// LedgerService applies mutations to the store. Each successful write bumps
// the dataset version and announces the change on the event bus.
type LedgerService struct {
	store      ledger.Store
	publisher  ledger.EventPublisher
	logger     *applog.Logger
	structured *applog.StructuredLogger
	version    atomic.Uint64
	now        func() time.Time
	newID      func() string
}

// NewLedgerService builds the service. publisher may be nil.
func NewLedgerService(store ledger.Store, publisher ledger.EventPublisher, logger *applog.Logger) *LedgerService {
	if logger == nil {
		logger = applog.Default(applog.ComponentLedger)
	}
	logger = logger.WithComponent(applog.ComponentLedger)
	s := &LedgerService{
		store:      store,
		publisher:  publisher,
		logger:     logger,
		structured: applog.NewStructuredLogger(logger),
		now:        time.Now,
		newID:      uuid.NewString,
	}
	s.version.Store(1)
	return s
}

// Version is the dataset version; it only ever grows.
func (s *LedgerService) Version() uint64 {
	return s.version.Load()
}

// Bump advances the version after a change made elsewhere, such as another
// process writing to the same database.
func (s *LedgerService) Bump() uint64 {
	return s.version.Add(1)
}

func (s *LedgerService) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	return s.store.ListTransactions(ctx)
}

func (s *LedgerService) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	return s.store.GetTransaction(ctx, id)
}

// CreateTransaction assigns identity and defaults, validates and stores t.
func (s *LedgerService) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	now := s.now()
	if t.ID == "" {
		t.ID = s.newID()
	}
	if t.Installments == 0 {
		t.Installments = 1
	}
	if t.Status == "" {
		t.Status = core.Completed
	}
	t.CreatedAt = now
	t.UpdatedAt = now

	if err := t.Validate(); err != nil {
		return core.Transaction{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	if err := s.store.CreateTransaction(ctx, t); err != nil {
		s.structured.LogError(ctx, "Failed to create transaction", err, applog.ComponentLedger, applog.OpCreate, nil)
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}

	s.structured.LogTransactionChanged(ctx, applog.OpCreate, t.ID, string(t.Type), t.Amount, t.Category, t.MemberID)
	s.changed(ctx, ledger.KindTransaction, t.ID)
	return t, nil
}

// UpdateTransaction applies a partial update to an existing transaction.
func (s *LedgerService) UpdateTransaction(ctx context.Context, id string, patch core.TransactionPatch) (core.Transaction, error) {
	if patch.IsEmpty() {
		return core.Transaction{}, fmt.Errorf("%w: nothing to update", ErrValidation)
	}
	current, err := s.store.GetTransaction(ctx, id)
	if err != nil {
		return core.Transaction{}, err
	}

	updated := patch.Apply(current, s.now())
	if err := updated.Validate(); err != nil {
		return core.Transaction{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	if err := s.store.UpdateTransaction(ctx, updated); err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}

	s.structured.LogTransactionChanged(ctx, applog.OpUpdate, updated.ID, string(updated.Type), updated.Amount, updated.Category, updated.MemberID)
	s.changed(ctx, ledger.KindTransaction, updated.ID)
	return updated, nil
}

// MarkPaid flags the transaction as paid. A pending one becomes completed so
// it starts counting toward period totals.
func (s *LedgerService) MarkPaid(ctx context.Context, id string) (core.Transaction, error) {
	current, err := s.store.GetTransaction(ctx, id)
	if err != nil {
		return core.Transaction{}, err
	}
	paid := true
	patch := core.TransactionPatch{IsPaid: &paid}
	if current.Status == core.Pending {
		completed := core.Completed
		patch.Status = &completed
	}
	return s.UpdateTransaction(ctx, id, patch)
}

func (s *LedgerService) DeleteTransaction(ctx context.Context, id string) error {
	current, err := s.store.GetTransaction(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteTransaction(ctx, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}

	s.structured.LogTransactionChanged(ctx, applog.OpDelete, current.ID, string(current.Type), current.Amount, current.Category, current.MemberID)
	s.changed(ctx, ledger.KindTransaction, id)
	return nil
}

func (s *LedgerService) CreateBankAccount(ctx context.Context, a core.BankAccount) (core.BankAccount, error) {
	now := s.now()
	if a.ID == "" {
		a.ID = s.newID()
	}
	a.CreatedAt, a.UpdatedAt = now, now
	if err := a.Validate(); err != nil {
		return core.BankAccount{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	if err := s.store.CreateBankAccount(ctx, a); err != nil {
		return core.BankAccount{}, fmt.Errorf("create bank account: %w", err)
	}
	s.logger.InfoContext(ctx, "Bank account created", "account_id", a.ID, applog.FieldOperation, applog.OpCreate)
	s.changed(ctx, ledger.KindBankAccount, a.ID)
	return a, nil
}

func (s *LedgerService) CreateCreditCard(ctx context.Context, c core.CreditCard) (core.CreditCard, error) {
	now := s.now()
	if c.ID == "" {
		c.ID = s.newID()
	}
	if c.Theme == "" {
		c.Theme = core.ThemeBlack
	}
	c.CreatedAt, c.UpdatedAt = now, now
	if err := c.Validate(); err != nil {
		return core.CreditCard{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	if err := s.store.CreateCreditCard(ctx, c); err != nil {
		return core.CreditCard{}, fmt.Errorf("create credit card: %w", err)
	}
	s.logger.InfoContext(ctx, "Credit card created", "card_id", c.ID, applog.FieldOperation, applog.OpCreate)
	s.changed(ctx, ledger.KindCreditCard, c.ID)
	return c, nil
}

func (s *LedgerService) CreateMember(ctx context.Context, m core.FamilyMember) (core.FamilyMember, error) {
	now := s.now()
	if m.ID == "" {
		m.ID = s.newID()
	}
	m.CreatedAt, m.UpdatedAt = now, now
	if err := m.Validate(); err != nil {
		return core.FamilyMember{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	if err := s.store.CreateMember(ctx, m); err != nil {
		return core.FamilyMember{}, fmt.Errorf("create member: %w", err)
	}
	s.logger.InfoContext(ctx, "Family member created", applog.FieldMember, m.ID, applog.FieldOperation, applog.OpCreate)
	s.changed(ctx, ledger.KindMember, m.ID)
	return m, nil
}

func (s *LedgerService) UpdateBankAccount(ctx context.Context, id string, patch core.BankAccountPatch) (core.BankAccount, error) {
	if patch.IsEmpty() {
		return core.BankAccount{}, fmt.Errorf("%w: nothing to update", ErrValidation)
	}
	current, err := s.store.GetBankAccount(ctx, id)
	if err != nil {
		return core.BankAccount{}, err
	}
	updated := patch.Apply(current, s.now())
	if err := updated.Validate(); err != nil {
		return core.BankAccount{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	if err := s.store.UpdateBankAccount(ctx, updated); err != nil {
		return core.BankAccount{}, fmt.Errorf("update bank account: %w", err)
	}
	s.logger.InfoContext(ctx, "Bank account updated", "account_id", id, applog.FieldOperation, applog.OpUpdate)
	s.changed(ctx, ledger.KindBankAccount, id)
	return updated, nil
}

// DeleteBankAccount removes the account. Transactions that referenced it are
// kept and resolve to the missing-source label.
func (s *LedgerService) DeleteBankAccount(ctx context.Context, id string) error {
	if err := s.store.DeleteBankAccount(ctx, id); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "Bank account deleted", "account_id", id, applog.FieldOperation, applog.OpDelete)
	s.changed(ctx, ledger.KindBankAccount, id)
	return nil
}

func (s *LedgerService) UpdateCreditCard(ctx context.Context, id string, patch core.CreditCardPatch) (core.CreditCard, error) {
	if patch.IsEmpty() {
		return core.CreditCard{}, fmt.Errorf("%w: nothing to update", ErrValidation)
	}
	current, err := s.store.GetCreditCard(ctx, id)
	if err != nil {
		return core.CreditCard{}, err
	}
	updated := patch.Apply(current, s.now())
	if err := updated.Validate(); err != nil {
		return core.CreditCard{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	if err := s.store.UpdateCreditCard(ctx, updated); err != nil {
		return core.CreditCard{}, fmt.Errorf("update credit card: %w", err)
	}
	s.logger.InfoContext(ctx, "Credit card updated", "card_id", id, applog.FieldOperation, applog.OpUpdate)
	s.changed(ctx, ledger.KindCreditCard, id)
	return updated, nil
}

func (s *LedgerService) DeleteCreditCard(ctx context.Context, id string) error {
	if err := s.store.DeleteCreditCard(ctx, id); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "Credit card deleted", "card_id", id, applog.FieldOperation, applog.OpDelete)
	s.changed(ctx, ledger.KindCreditCard, id)
	return nil
}

func (s *LedgerService) GetMember(ctx context.Context, id string) (core.FamilyMember, error) {
	return s.store.GetMember(ctx, id)
}

func (s *LedgerService) UpdateMember(ctx context.Context, id string, patch core.MemberPatch) (core.FamilyMember, error) {
	if patch.IsEmpty() {
		return core.FamilyMember{}, fmt.Errorf("%w: nothing to update", ErrValidation)
	}
	current, err := s.store.GetMember(ctx, id)
	if err != nil {
		return core.FamilyMember{}, err
	}
	updated := patch.Apply(current, s.now())
	if err := updated.Validate(); err != nil {
		return core.FamilyMember{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	if err := s.store.UpdateMember(ctx, updated); err != nil {
		return core.FamilyMember{}, fmt.Errorf("update member: %w", err)
	}
	s.logger.InfoContext(ctx, "Family member updated", applog.FieldMember, id, applog.FieldOperation, applog.OpUpdate)
	s.changed(ctx, ledger.KindMember, id)
	return updated, nil
}

// DeleteMember removes the member. Their transactions stay in the ledger.
func (s *LedgerService) DeleteMember(ctx context.Context, id string) error {
	if err := s.store.DeleteMember(ctx, id); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "Family member deleted", applog.FieldMember, id, applog.FieldOperation, applog.OpDelete)
	s.changed(ctx, ledger.KindMember, id)
	return nil
}

func (s *LedgerService) ListGoals(ctx context.Context) ([]core.Goal, error) {
	return s.store.ListGoals(ctx)
}

func (s *LedgerService) GetGoal(ctx context.Context, id string) (core.Goal, error) {
	return s.store.GetGoal(ctx, id)
}

func (s *LedgerService) CreateGoal(ctx context.Context, g core.Goal) (core.Goal, error) {
	now := s.now()
	if g.ID == "" {
		g.ID = s.newID()
	}
	g.CreatedAt, g.UpdatedAt = now, now
	if err := g.Validate(); err != nil {
		return core.Goal{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	if err := s.store.CreateGoal(ctx, g); err != nil {
		return core.Goal{}, fmt.Errorf("create goal: %w", err)
	}
	s.logger.InfoContext(ctx, "Goal created", "goal_id", g.ID, applog.FieldOperation, applog.OpCreate)
	s.changed(ctx, ledger.KindGoal, g.ID)
	return g, nil
}

func (s *LedgerService) UpdateGoal(ctx context.Context, id string, patch core.GoalPatch) (core.Goal, error) {
	if patch.IsEmpty() {
		return core.Goal{}, fmt.Errorf("%w: nothing to update", ErrValidation)
	}
	current, err := s.store.GetGoal(ctx, id)
	if err != nil {
		return core.Goal{}, err
	}
	updated := patch.Apply(current, s.now())
	if err := updated.Validate(); err != nil {
		return core.Goal{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	if err := s.store.UpdateGoal(ctx, updated); err != nil {
		return core.Goal{}, fmt.Errorf("update goal: %w", err)
	}
	s.logger.InfoContext(ctx, "Goal updated", "goal_id", id, applog.FieldOperation, applog.OpUpdate)
	s.changed(ctx, ledger.KindGoal, id)
	return updated, nil
}

func (s *LedgerService) DeleteGoal(ctx context.Context, id string) error {
	if err := s.store.DeleteGoal(ctx, id); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "Goal deleted", "goal_id", id, applog.FieldOperation, applog.OpDelete)
	s.changed(ctx, ledger.KindGoal, id)
	return nil
}

// changed bumps the version and publishes. Publish failures are logged only;
// the write already succeeded.
func (s *LedgerService) changed(ctx context.Context, kind ledger.EntityKind, id string) {
	v := s.Bump()
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishLedgerChanged(ctx, kind, id, v); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish ledger change",
			applog.FieldEntityKind, string(kind),
			applog.FieldVersion, v,
			applog.FieldError, err)
	}
}
