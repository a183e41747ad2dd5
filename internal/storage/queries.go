package storage

import (
	"context"
	"database/sql"
)

type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

// Row types mirror the table layout; conversion to core types lives in repository.go.

type TransactionRow struct {
	ID                 string
	Type               string
	Amount             string
	Description        string
	Category           string
	Date               string
	AccountID          sql.NullString
	MemberID           sql.NullString
	Installments       int64
	CurrentInstallment int64
	Status             string
	IsRecurring        bool
	IsPaid             bool
	CreatedAt          string
	UpdatedAt          string
}

type BankAccountRow struct {
	ID            string
	Name          string
	Bank          string
	HolderID      string
	Balance       string
	AccountType   string
	AccountNumber string
	Agency        string
	CreatedAt     string
	UpdatedAt     string
}

type CreditCardRow struct {
	ID          string
	Name        string
	Bank        string
	HolderID    string
	CreditLimit string
	CurrentBill string
	ClosingDay  int64
	DueDay      int64
	LastDigits  string
	Theme       string
	CreatedAt   string
	UpdatedAt   string
}

type FamilyMemberRow struct {
	ID            string
	Name          string
	Role          string
	AvatarURL     string
	Email         string
	MonthlyIncome string
	CreatedAt     string
	UpdatedAt     string
}

type GoalRow struct {
	ID            string
	Title         string
	Description   string
	TargetAmount  string
	CurrentAmount string
	Deadline      sql.NullString
	Category      string
	MemberID      sql.NullString
	IsCompleted   bool
	CreatedAt     string
	UpdatedAt     string
}

const transactionColumns = `id, type, amount, description, category, date, account_id, member_id,
       installments, current_installment, status, is_recurring, is_paid, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTransaction(s rowScanner) (TransactionRow, error) {
	var i TransactionRow
	err := s.Scan(
		&i.ID,
		&i.Type,
		&i.Amount,
		&i.Description,
		&i.Category,
		&i.Date,
		&i.AccountID,
		&i.MemberID,
		&i.Installments,
		&i.CurrentInstallment,
		&i.Status,
		&i.IsRecurring,
		&i.IsPaid,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const listTransactions = `SELECT ` + transactionColumns + `
FROM transactions
ORDER BY rowid`

func (q *Queries) ListTransactions(ctx context.Context) ([]TransactionRow, error) {
	rows, err := q.db.QueryContext(ctx, listTransactions)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []TransactionRow
	for rows.Next() {
		i, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getTransaction = `SELECT ` + transactionColumns + `
FROM transactions
WHERE id = ?`

func (q *Queries) GetTransaction(ctx context.Context, id string) (TransactionRow, error) {
	return scanTransaction(q.db.QueryRowContext(ctx, getTransaction, id))
}

const createTransaction = `INSERT INTO transactions (` + transactionColumns + `)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

func (q *Queries) CreateTransaction(ctx context.Context, arg TransactionRow) error {
	_, err := q.db.ExecContext(ctx, createTransaction,
		arg.ID,
		arg.Type,
		arg.Amount,
		arg.Description,
		arg.Category,
		arg.Date,
		arg.AccountID,
		arg.MemberID,
		arg.Installments,
		arg.CurrentInstallment,
		arg.Status,
		arg.IsRecurring,
		arg.IsPaid,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return err
}

const updateTransaction = `UPDATE transactions
SET type = ?, amount = ?, description = ?, category = ?, date = ?, account_id = ?, member_id = ?,
    installments = ?, current_installment = ?, status = ?, is_recurring = ?, is_paid = ?, updated_at = ?
WHERE id = ?`

func (q *Queries) UpdateTransaction(ctx context.Context, arg TransactionRow) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateTransaction,
		arg.Type,
		arg.Amount,
		arg.Description,
		arg.Category,
		arg.Date,
		arg.AccountID,
		arg.MemberID,
		arg.Installments,
		arg.CurrentInstallment,
		arg.Status,
		arg.IsRecurring,
		arg.IsPaid,
		arg.UpdatedAt,
		arg.ID,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const deleteTransaction = `DELETE FROM transactions WHERE id = ?`

func (q *Queries) DeleteTransaction(ctx context.Context, id string) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteTransaction, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const bankAccountColumns = `id, name, bank, holder_id, balance, account_type, account_number, agency, created_at, updated_at`

func scanBankAccount(s rowScanner) (BankAccountRow, error) {
	var i BankAccountRow
	err := s.Scan(
		&i.ID,
		&i.Name,
		&i.Bank,
		&i.HolderID,
		&i.Balance,
		&i.AccountType,
		&i.AccountNumber,
		&i.Agency,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const listBankAccounts = `SELECT ` + bankAccountColumns + `
FROM bank_accounts
ORDER BY rowid`

func (q *Queries) ListBankAccounts(ctx context.Context) ([]BankAccountRow, error) {
	rows, err := q.db.QueryContext(ctx, listBankAccounts)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []BankAccountRow
	for rows.Next() {
		i, err := scanBankAccount(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getBankAccount = `SELECT ` + bankAccountColumns + `
FROM bank_accounts
WHERE id = ?`

func (q *Queries) GetBankAccount(ctx context.Context, id string) (BankAccountRow, error) {
	return scanBankAccount(q.db.QueryRowContext(ctx, getBankAccount, id))
}

const createBankAccount = `INSERT INTO bank_accounts (` + bankAccountColumns + `)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

func (q *Queries) CreateBankAccount(ctx context.Context, arg BankAccountRow) error {
	_, err := q.db.ExecContext(ctx, createBankAccount,
		arg.ID,
		arg.Name,
		arg.Bank,
		arg.HolderID,
		arg.Balance,
		arg.AccountType,
		arg.AccountNumber,
		arg.Agency,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return err
}

const updateBankAccount = `UPDATE bank_accounts
SET name = ?, bank = ?, holder_id = ?, balance = ?, account_type = ?, account_number = ?, agency = ?, updated_at = ?
WHERE id = ?`

func (q *Queries) UpdateBankAccount(ctx context.Context, arg BankAccountRow) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateBankAccount,
		arg.Name,
		arg.Bank,
		arg.HolderID,
		arg.Balance,
		arg.AccountType,
		arg.AccountNumber,
		arg.Agency,
		arg.UpdatedAt,
		arg.ID,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const deleteBankAccount = `DELETE FROM bank_accounts WHERE id = ?`

func (q *Queries) DeleteBankAccount(ctx context.Context, id string) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteBankAccount, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const creditCardColumns = `id, name, bank, holder_id, credit_limit, current_bill, closing_day, due_day, last_digits, theme, created_at, updated_at`

func scanCreditCard(s rowScanner) (CreditCardRow, error) {
	var i CreditCardRow
	err := s.Scan(
		&i.ID,
		&i.Name,
		&i.Bank,
		&i.HolderID,
		&i.CreditLimit,
		&i.CurrentBill,
		&i.ClosingDay,
		&i.DueDay,
		&i.LastDigits,
		&i.Theme,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const listCreditCards = `SELECT ` + creditCardColumns + `
FROM credit_cards
ORDER BY rowid`

func (q *Queries) ListCreditCards(ctx context.Context) ([]CreditCardRow, error) {
	rows, err := q.db.QueryContext(ctx, listCreditCards)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []CreditCardRow
	for rows.Next() {
		i, err := scanCreditCard(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getCreditCard = `SELECT ` + creditCardColumns + `
FROM credit_cards
WHERE id = ?`

func (q *Queries) GetCreditCard(ctx context.Context, id string) (CreditCardRow, error) {
	return scanCreditCard(q.db.QueryRowContext(ctx, getCreditCard, id))
}

const createCreditCard = `INSERT INTO credit_cards (` + creditCardColumns + `)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

func (q *Queries) CreateCreditCard(ctx context.Context, arg CreditCardRow) error {
	_, err := q.db.ExecContext(ctx, createCreditCard,
		arg.ID,
		arg.Name,
		arg.Bank,
		arg.HolderID,
		arg.CreditLimit,
		arg.CurrentBill,
		arg.ClosingDay,
		arg.DueDay,
		arg.LastDigits,
		arg.Theme,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return err
}

const updateCreditCard = `UPDATE credit_cards
SET name = ?, bank = ?, holder_id = ?, credit_limit = ?, current_bill = ?, closing_day = ?, due_day = ?,
    last_digits = ?, theme = ?, updated_at = ?
WHERE id = ?`

func (q *Queries) UpdateCreditCard(ctx context.Context, arg CreditCardRow) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateCreditCard,
		arg.Name,
		arg.Bank,
		arg.HolderID,
		arg.CreditLimit,
		arg.CurrentBill,
		arg.ClosingDay,
		arg.DueDay,
		arg.LastDigits,
		arg.Theme,
		arg.UpdatedAt,
		arg.ID,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const deleteCreditCard = `DELETE FROM credit_cards WHERE id = ?`

func (q *Queries) DeleteCreditCard(ctx context.Context, id string) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteCreditCard, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const familyMemberColumns = `id, name, role, avatar_url, email, monthly_income, created_at, updated_at`

func scanFamilyMember(s rowScanner) (FamilyMemberRow, error) {
	var i FamilyMemberRow
	err := s.Scan(
		&i.ID,
		&i.Name,
		&i.Role,
		&i.AvatarURL,
		&i.Email,
		&i.MonthlyIncome,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const listFamilyMembers = `SELECT ` + familyMemberColumns + `
FROM family_members
ORDER BY rowid`

func (q *Queries) ListFamilyMembers(ctx context.Context) ([]FamilyMemberRow, error) {
	rows, err := q.db.QueryContext(ctx, listFamilyMembers)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []FamilyMemberRow
	for rows.Next() {
		i, err := scanFamilyMember(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getFamilyMember = `SELECT ` + familyMemberColumns + `
FROM family_members
WHERE id = ?`

func (q *Queries) GetFamilyMember(ctx context.Context, id string) (FamilyMemberRow, error) {
	return scanFamilyMember(q.db.QueryRowContext(ctx, getFamilyMember, id))
}

const createFamilyMember = `INSERT INTO family_members (` + familyMemberColumns + `)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

func (q *Queries) CreateFamilyMember(ctx context.Context, arg FamilyMemberRow) error {
	_, err := q.db.ExecContext(ctx, createFamilyMember,
		arg.ID,
		arg.Name,
		arg.Role,
		arg.AvatarURL,
		arg.Email,
		arg.MonthlyIncome,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return err
}

const updateFamilyMember = `UPDATE family_members
SET name = ?, role = ?, avatar_url = ?, email = ?, monthly_income = ?, updated_at = ?
WHERE id = ?`

func (q *Queries) UpdateFamilyMember(ctx context.Context, arg FamilyMemberRow) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateFamilyMember,
		arg.Name,
		arg.Role,
		arg.AvatarURL,
		arg.Email,
		arg.MonthlyIncome,
		arg.UpdatedAt,
		arg.ID,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const deleteFamilyMember = `DELETE FROM family_members WHERE id = ?`

func (q *Queries) DeleteFamilyMember(ctx context.Context, id string) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteFamilyMember, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const goalColumns = `id, title, description, target_amount, current_amount, deadline, category, member_id,
       is_completed, created_at, updated_at`

func scanGoal(s rowScanner) (GoalRow, error) {
	var i GoalRow
	err := s.Scan(
		&i.ID,
		&i.Title,
		&i.Description,
		&i.TargetAmount,
		&i.CurrentAmount,
		&i.Deadline,
		&i.Category,
		&i.MemberID,
		&i.IsCompleted,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const listGoals = `SELECT ` + goalColumns + `
FROM goals
ORDER BY rowid`

func (q *Queries) ListGoals(ctx context.Context) ([]GoalRow, error) {
	rows, err := q.db.QueryContext(ctx, listGoals)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []GoalRow
	for rows.Next() {
		i, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getGoal = `SELECT ` + goalColumns + `
FROM goals
WHERE id = ?`

func (q *Queries) GetGoal(ctx context.Context, id string) (GoalRow, error) {
	return scanGoal(q.db.QueryRowContext(ctx, getGoal, id))
}

const createGoal = `INSERT INTO goals (` + goalColumns + `)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

func (q *Queries) CreateGoal(ctx context.Context, arg GoalRow) error {
	_, err := q.db.ExecContext(ctx, createGoal,
		arg.ID,
		arg.Title,
		arg.Description,
		arg.TargetAmount,
		arg.CurrentAmount,
		arg.Deadline,
		arg.Category,
		arg.MemberID,
		arg.IsCompleted,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return err
}

const updateGoal = `UPDATE goals
SET title = ?, description = ?, target_amount = ?, current_amount = ?, deadline = ?, category = ?,
    member_id = ?, is_completed = ?, updated_at = ?
WHERE id = ?`

func (q *Queries) UpdateGoal(ctx context.Context, arg GoalRow) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateGoal,
		arg.Title,
		arg.Description,
		arg.TargetAmount,
		arg.CurrentAmount,
		arg.Deadline,
		arg.Category,
		arg.MemberID,
		arg.IsCompleted,
		arg.UpdatedAt,
		arg.ID,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const deleteGoal = `DELETE FROM goals WHERE id = ?`

func (q *Queries) DeleteGoal(ctx context.Context, id string) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteGoal, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
