package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"mycash/internal/core"
	"mycash/internal/ledger"
	applog "mycash/internal/log"

	_ "modernc.org/sqlite"
)

const timestampLayout = time.RFC3339Nano

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
	logger  *applog.Logger
}

var _ ledger.Store = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string, logger *applog.Logger) (*SQLiteRepository, error) {
	if logger == nil {
		logger = applog.Default(applog.ComponentStorage)
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// a single writer keeps sqlite from returning SQLITE_BUSY under concurrent requests
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	logger.Info("SQLite repository ready", "path", dbPath, applog.FieldOperation, applog.OpMigrate)

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
		logger:  logger.WithComponent(applog.ComponentStorage),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.queries.ListTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	out := make([]core.Transaction, 0, len(rows))
	for _, row := range rows {
		t, err := transactionFromRow(row)
		if err != nil {
			return nil, fmt.Errorf("decode transaction %s: %w", row.ID, err)
		}
		out = append(out, t)
	}
	return out, nil
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	row, err := r.queries.GetTransaction(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, ledger.ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction %s: %w", id, err)
	}
	return transactionFromRow(row)
}

func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.Transaction) error {
	if err := t.Validate(); err != nil {
		return err
	}
	if err := r.queries.CreateTransaction(ctx, transactionToRow(t)); err != nil {
		return mapWriteError("create transaction", err)
	}
	r.logger.DebugContext(ctx, "Transaction saved to SQLite",
		applog.FieldTxID, t.ID,
		applog.FieldAmount, t.Amount.String(),
		applog.FieldCategory, t.Category)
	return nil
}

func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	if err := t.Validate(); err != nil {
		return err
	}
	n, err := r.queries.UpdateTransaction(ctx, transactionToRow(t))
	if err != nil {
		return fmt.Errorf("update transaction %s: %w", t.ID, err)
	}
	if n == 0 {
		return ledger.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id string) error {
	n, err := r.queries.DeleteTransaction(ctx, id)
	if err != nil {
		return fmt.Errorf("delete transaction %s: %w", id, err)
	}
	if n == 0 {
		return ledger.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) ListBankAccounts(ctx context.Context) ([]core.BankAccount, error) {
	rows, err := r.queries.ListBankAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list bank accounts: %w", err)
	}
	out := make([]core.BankAccount, 0, len(rows))
	for _, row := range rows {
		a, err := bankAccountFromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

func (r *SQLiteRepository) GetBankAccount(ctx context.Context, id string) (core.BankAccount, error) {
	row, err := r.queries.GetBankAccount(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.BankAccount{}, ledger.ErrNotFound
	}
	if err != nil {
		return core.BankAccount{}, fmt.Errorf("get bank account %s: %w", id, err)
	}
	return bankAccountFromRow(row)
}

func (r *SQLiteRepository) CreateBankAccount(ctx context.Context, a core.BankAccount) error {
	if err := a.Validate(); err != nil {
		return err
	}
	return mapWriteError("create bank account", r.queries.CreateBankAccount(ctx, bankAccountToRow(a)))
}

func (r *SQLiteRepository) UpdateBankAccount(ctx context.Context, a core.BankAccount) error {
	if err := a.Validate(); err != nil {
		return err
	}
	n, err := r.queries.UpdateBankAccount(ctx, bankAccountToRow(a))
	return affected("update bank account "+a.ID, n, err)
}

func (r *SQLiteRepository) DeleteBankAccount(ctx context.Context, id string) error {
	n, err := r.queries.DeleteBankAccount(ctx, id)
	return affected("delete bank account "+id, n, err)
}

func (r *SQLiteRepository) ListCreditCards(ctx context.Context) ([]core.CreditCard, error) {
	rows, err := r.queries.ListCreditCards(ctx)
	if err != nil {
		return nil, fmt.Errorf("list credit cards: %w", err)
	}
	out := make([]core.CreditCard, 0, len(rows))
	for _, row := range rows {
		c, err := creditCardFromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func (r *SQLiteRepository) GetCreditCard(ctx context.Context, id string) (core.CreditCard, error) {
	row, err := r.queries.GetCreditCard(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.CreditCard{}, ledger.ErrNotFound
	}
	if err != nil {
		return core.CreditCard{}, fmt.Errorf("get credit card %s: %w", id, err)
	}
	return creditCardFromRow(row)
}

func (r *SQLiteRepository) CreateCreditCard(ctx context.Context, c core.CreditCard) error {
	if err := c.Validate(); err != nil {
		return err
	}
	return mapWriteError("create credit card", r.queries.CreateCreditCard(ctx, creditCardToRow(c)))
}

func (r *SQLiteRepository) UpdateCreditCard(ctx context.Context, c core.CreditCard) error {
	if err := c.Validate(); err != nil {
		return err
	}
	n, err := r.queries.UpdateCreditCard(ctx, creditCardToRow(c))
	return affected("update credit card "+c.ID, n, err)
}

func (r *SQLiteRepository) DeleteCreditCard(ctx context.Context, id string) error {
	n, err := r.queries.DeleteCreditCard(ctx, id)
	return affected("delete credit card "+id, n, err)
}

func (r *SQLiteRepository) ListMembers(ctx context.Context) ([]core.FamilyMember, error) {
	rows, err := r.queries.ListFamilyMembers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list family members: %w", err)
	}
	out := make([]core.FamilyMember, 0, len(rows))
	for _, row := range rows {
		m, err := memberFromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func (r *SQLiteRepository) GetMember(ctx context.Context, id string) (core.FamilyMember, error) {
	row, err := r.queries.GetFamilyMember(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.FamilyMember{}, ledger.ErrNotFound
	}
	if err != nil {
		return core.FamilyMember{}, fmt.Errorf("get family member %s: %w", id, err)
	}
	return memberFromRow(row)
}

func (r *SQLiteRepository) CreateMember(ctx context.Context, m core.FamilyMember) error {
	if err := m.Validate(); err != nil {
		return err
	}
	return mapWriteError("create family member", r.queries.CreateFamilyMember(ctx, memberToRow(m)))
}

func (r *SQLiteRepository) UpdateMember(ctx context.Context, m core.FamilyMember) error {
	if err := m.Validate(); err != nil {
		return err
	}
	n, err := r.queries.UpdateFamilyMember(ctx, memberToRow(m))
	return affected("update family member "+m.ID, n, err)
}

func (r *SQLiteRepository) DeleteMember(ctx context.Context, id string) error {
	n, err := r.queries.DeleteFamilyMember(ctx, id)
	return affected("delete family member "+id, n, err)
}

func (r *SQLiteRepository) ListGoals(ctx context.Context) ([]core.Goal, error) {
	rows, err := r.queries.ListGoals(ctx)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	out := make([]core.Goal, 0, len(rows))
	for _, row := range rows {
		g, err := goalFromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, nil
}

func (r *SQLiteRepository) GetGoal(ctx context.Context, id string) (core.Goal, error) {
	row, err := r.queries.GetGoal(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Goal{}, ledger.ErrNotFound
	}
	if err != nil {
		return core.Goal{}, fmt.Errorf("get goal %s: %w", id, err)
	}
	return goalFromRow(row)
}

func (r *SQLiteRepository) CreateGoal(ctx context.Context, g core.Goal) error {
	if err := g.Validate(); err != nil {
		return err
	}
	return mapWriteError("create goal", r.queries.CreateGoal(ctx, goalToRow(g)))
}

func (r *SQLiteRepository) UpdateGoal(ctx context.Context, g core.Goal) error {
	if err := g.Validate(); err != nil {
		return err
	}
	n, err := r.queries.UpdateGoal(ctx, goalToRow(g))
	return affected("update goal "+g.ID, n, err)
}

func (r *SQLiteRepository) DeleteGoal(ctx context.Context, id string) error {
	n, err := r.queries.DeleteGoal(ctx, id)
	return affected("delete goal "+id, n, err)
}

func bankAccountToRow(a core.BankAccount) BankAccountRow {
	return BankAccountRow{
		ID:            a.ID,
		Name:          a.Name,
		Bank:          a.Bank,
		HolderID:      a.HolderID,
		Balance:       a.Balance.String(),
		AccountType:   a.AccountType,
		AccountNumber: a.AccountNumber,
		Agency:        a.Agency,
		CreatedAt:     formatTimestamp(a.CreatedAt),
		UpdatedAt:     formatTimestamp(a.UpdatedAt),
	}
}

func bankAccountFromRow(row BankAccountRow) (core.BankAccount, error) {
	balance, err := decimal.NewFromString(row.Balance)
	if err != nil {
		return core.BankAccount{}, fmt.Errorf("decode balance of %s: %w", row.ID, err)
	}
	return core.BankAccount{
		ID:            row.ID,
		Name:          row.Name,
		Bank:          row.Bank,
		HolderID:      row.HolderID,
		Balance:       balance,
		AccountType:   row.AccountType,
		AccountNumber: row.AccountNumber,
		Agency:        row.Agency,
		CreatedAt:     parseTimestamp(row.CreatedAt),
		UpdatedAt:     parseTimestamp(row.UpdatedAt),
	}, nil
}

func creditCardToRow(c core.CreditCard) CreditCardRow {
	return CreditCardRow{
		ID:          c.ID,
		Name:        c.Name,
		Bank:        c.Bank,
		HolderID:    c.HolderID,
		CreditLimit: c.Limit.String(),
		CurrentBill: c.CurrentBill.String(),
		ClosingDay:  int64(c.ClosingDay),
		DueDay:      int64(c.DueDay),
		LastDigits:  c.LastDigits,
		Theme:       string(c.Theme),
		CreatedAt:   formatTimestamp(c.CreatedAt),
		UpdatedAt:   formatTimestamp(c.UpdatedAt),
	}
}

func creditCardFromRow(row CreditCardRow) (core.CreditCard, error) {
	limit, err := decimal.NewFromString(row.CreditLimit)
	if err != nil {
		return core.CreditCard{}, fmt.Errorf("decode limit of %s: %w", row.ID, err)
	}
	bill, err := decimal.NewFromString(row.CurrentBill)
	if err != nil {
		return core.CreditCard{}, fmt.Errorf("decode bill of %s: %w", row.ID, err)
	}
	return core.CreditCard{
		ID:          row.ID,
		Name:        row.Name,
		Bank:        row.Bank,
		HolderID:    row.HolderID,
		Limit:       limit,
		CurrentBill: bill,
		ClosingDay:  int(row.ClosingDay),
		DueDay:      int(row.DueDay),
		LastDigits:  row.LastDigits,
		Theme:       core.CardTheme(row.Theme),
		CreatedAt:   parseTimestamp(row.CreatedAt),
		UpdatedAt:   parseTimestamp(row.UpdatedAt),
	}, nil
}

func memberToRow(m core.FamilyMember) FamilyMemberRow {
	return FamilyMemberRow{
		ID:            m.ID,
		Name:          m.Name,
		Role:          m.Role,
		AvatarURL:     m.AvatarURL,
		Email:         m.Email,
		MonthlyIncome: m.MonthlyIncome.String(),
		CreatedAt:     formatTimestamp(m.CreatedAt),
		UpdatedAt:     formatTimestamp(m.UpdatedAt),
	}
}

func memberFromRow(row FamilyMemberRow) (core.FamilyMember, error) {
	income, err := decimal.NewFromString(row.MonthlyIncome)
	if err != nil {
		return core.FamilyMember{}, fmt.Errorf("decode income of %s: %w", row.ID, err)
	}
	return core.FamilyMember{
		ID:            row.ID,
		Name:          row.Name,
		Role:          row.Role,
		AvatarURL:     row.AvatarURL,
		Email:         row.Email,
		MonthlyIncome: income,
		CreatedAt:     parseTimestamp(row.CreatedAt),
		UpdatedAt:     parseTimestamp(row.UpdatedAt),
	}, nil
}

func goalToRow(g core.Goal) GoalRow {
	var deadline sql.NullString
	if !g.Deadline.IsEmpty() {
		deadline = nullString(g.Deadline.String())
	}
	return GoalRow{
		ID:            g.ID,
		Title:         g.Title,
		Description:   g.Description,
		TargetAmount:  g.TargetAmount.String(),
		CurrentAmount: g.CurrentAmount.String(),
		Deadline:      deadline,
		Category:      g.Category,
		MemberID:      nullString(g.MemberID),
		IsCompleted:   g.IsCompleted,
		CreatedAt:     formatTimestamp(g.CreatedAt),
		UpdatedAt:     formatTimestamp(g.UpdatedAt),
	}
}

func goalFromRow(row GoalRow) (core.Goal, error) {
	target, err := decimal.NewFromString(row.TargetAmount)
	if err != nil {
		return core.Goal{}, fmt.Errorf("decode target of %s: %w", row.ID, err)
	}
	current, err := decimal.NewFromString(row.CurrentAmount)
	if err != nil {
		return core.Goal{}, fmt.Errorf("decode current amount of %s: %w", row.ID, err)
	}
	var deadline core.Date
	if row.Deadline.Valid {
		if deadline, err = core.ParseDate(row.Deadline.String); err != nil {
			return core.Goal{}, fmt.Errorf("decode deadline %q: %w", row.Deadline.String, err)
		}
	}
	return core.Goal{
		ID:            row.ID,
		Title:         row.Title,
		Description:   row.Description,
		TargetAmount:  target,
		CurrentAmount: current,
		Deadline:      deadline,
		Category:      row.Category,
		MemberID:      row.MemberID.String,
		IsCompleted:   row.IsCompleted,
		CreatedAt:     parseTimestamp(row.CreatedAt),
		UpdatedAt:     parseTimestamp(row.UpdatedAt),
	}, nil
}

func transactionToRow(t core.Transaction) TransactionRow {
	return TransactionRow{
		ID:                 t.ID,
		Type:               string(t.Type),
		Amount:             t.Amount.String(),
		Description:        t.Description,
		Category:           t.Category,
		Date:               t.Date.String(),
		AccountID:          nullString(t.AccountID),
		MemberID:           nullString(t.MemberID),
		Installments:       int64(t.Installments),
		CurrentInstallment: int64(t.CurrentInstallment),
		Status:             string(t.Status),
		IsRecurring:        t.IsRecurring,
		IsPaid:             t.IsPaid,
		CreatedAt:          formatTimestamp(t.CreatedAt),
		UpdatedAt:          formatTimestamp(t.UpdatedAt),
	}
}

func transactionFromRow(row TransactionRow) (core.Transaction, error) {
	amount, err := decimal.NewFromString(row.Amount)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("decode amount: %w", err)
	}
	date, err := core.ParseDate(row.Date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("decode date %q: %w", row.Date, err)
	}
	return core.Transaction{
		ID:                 row.ID,
		Type:               core.TransactionType(row.Type),
		Amount:             amount,
		Description:        row.Description,
		Category:           row.Category,
		Date:               date,
		AccountID:          row.AccountID.String,
		MemberID:           row.MemberID.String,
		Installments:       int(row.Installments),
		CurrentInstallment: int(row.CurrentInstallment),
		Status:             core.TransactionStatus(row.Status),
		IsRecurring:        row.IsRecurring,
		IsPaid:             row.IsPaid,
		CreatedAt:          parseTimestamp(row.CreatedAt),
		UpdatedAt:          parseTimestamp(row.UpdatedAt),
	}, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.UTC().Format(timestampLayout)
}

func parseTimestamp(s string) time.Time {
	t, err := time.Parse(timestampLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func mapWriteError(op string, err error) error {
	if err == nil {
		return nil
	}
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return fmt.Errorf("%s: %w", op, ledger.ErrDuplicate)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// affected turns the result of an UPDATE or DELETE into ErrNotFound when no row matched.
func affected(op string, n int64, err error) error {
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return ledger.ErrNotFound
	}
	return nil
}
