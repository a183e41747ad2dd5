package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"mycash/internal/amqp"
	"mycash/internal/core"
	"mycash/internal/dashboard"
	"mycash/internal/ledger"
	"mycash/internal/ledger/memory"
	applog "mycash/internal/log"
)

var fixedNow = time.Date(2025, 3, 15, 9, 30, 0, 0, time.UTC)

type publishCall struct {
	kind    ledger.EntityKind
	id      string
	version uint64
}

type fakePublisher struct {
	mu    sync.Mutex
	calls []publishCall
	err   error
}

func (p *fakePublisher) PublishLedgerChanged(_ context.Context, kind ledger.EntityKind, id string, version uint64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, publishCall{kind, id, version})
	return p.err
}

func quietLogger() *applog.Logger {
	return applog.New(applog.Config{Level: slog.LevelError, Format: "text", Output: &bytes.Buffer{}, Component: "test"})
}

func newTestLedger(store ledger.Store, pub ledger.EventPublisher) *LedgerService {
	s := NewLedgerService(store, pub, quietLogger())
	s.now = func() time.Time { return fixedNow }
	n := 0
	s.newID = func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
	return s
}

func expense(amount string) core.Transaction {
	return core.Transaction{
		Type:        core.Expense,
		Amount:      decimal.RequireFromString(amount),
		Description: "Groceries",
		Category:    "Food",
		Date:        core.NewDate(2025, 3, 10),
		IsPaid:      true,
	}
}

func TestCreateTransaction(t *testing.T) {
	pub := &fakePublisher{}
	svc := newTestLedger(memory.New(), pub)
	ctx := context.Background()

	got, err := svc.CreateTransaction(ctx, expense("42.10"))
	if err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}
	if got.ID != "id-1" || got.Installments != 1 || got.Status != core.Completed {
		t.Errorf("defaults not applied: %+v", got)
	}
	if !got.CreatedAt.Equal(fixedNow) || !got.UpdatedAt.Equal(fixedNow) {
		t.Errorf("timestamps = %v / %v", got.CreatedAt, got.UpdatedAt)
	}
	if svc.Version() != 2 {
		t.Errorf("Version() = %d, want 2", svc.Version())
	}
	if len(pub.calls) != 1 || pub.calls[0] != (publishCall{ledger.KindTransaction, "id-1", 2}) {
		t.Errorf("publish calls = %+v", pub.calls)
	}

	stored, err := svc.GetTransaction(ctx, "id-1")
	if err != nil || !stored.Amount.Equal(decimal.RequireFromString("42.10")) {
		t.Errorf("stored = %+v, err = %v", stored, err)
	}
}

func TestCreateTransactionValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*core.Transaction)
		want   error
	}{
		{"negative amount", func(tx *core.Transaction) { tx.Amount = decimal.NewFromInt(-1) }, core.ErrInvalidAmount},
		{"blank description", func(tx *core.Transaction) { tx.Description = "  " }, core.ErrEmptyDescription},
		{"unknown type", func(tx *core.Transaction) { tx.Type = "transfer" }, core.ErrInvalidType},
		{"missing date", func(tx *core.Transaction) { tx.Date = core.Date{} }, core.ErrInvalidDate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pub := &fakePublisher{}
			svc := newTestLedger(memory.New(), pub)
			tx := expense("10")
			tt.mutate(&tx)

			_, err := svc.CreateTransaction(context.Background(), tx)
			if !errors.Is(err, ErrValidation) || !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want ErrValidation wrapping %v", err, tt.want)
			}
			if svc.Version() != 1 || len(pub.calls) != 0 {
				t.Errorf("failed create changed state: version=%d calls=%d", svc.Version(), len(pub.calls))
			}
		})
	}
}

func TestUpdateTransaction(t *testing.T) {
	svc := newTestLedger(memory.New(), nil)
	ctx := context.Background()
	created, err := svc.CreateTransaction(ctx, expense("10"))
	if err != nil {
		t.Fatal(err)
	}

	category := "Household"
	updated, err := svc.UpdateTransaction(ctx, created.ID, core.TransactionPatch{Category: &category})
	if err != nil {
		t.Fatalf("UpdateTransaction: %v", err)
	}
	if updated.Category != "Household" || updated.Description != "Groceries" {
		t.Errorf("updated = %+v", updated)
	}

	if _, err := svc.UpdateTransaction(ctx, created.ID, core.TransactionPatch{}); !errors.Is(err, ErrValidation) {
		t.Errorf("empty patch err = %v", err)
	}
	negative := decimal.NewFromInt(-5)
	if _, err := svc.UpdateTransaction(ctx, created.ID, core.TransactionPatch{Amount: &negative}); !errors.Is(err, ErrValidation) {
		t.Errorf("invalid patch err = %v", err)
	}
	if _, err := svc.UpdateTransaction(ctx, "missing", core.TransactionPatch{Category: &category}); !errors.Is(err, ledger.ErrNotFound) {
		t.Errorf("missing id err = %v", err)
	}
	if svc.Version() != 3 {
		t.Errorf("Version() = %d, want 3", svc.Version())
	}
}

func TestMarkPaid(t *testing.T) {
	svc := newTestLedger(memory.New(), nil)
	ctx := context.Background()
	tx := expense("99")
	tx.IsPaid = false
	tx.Status = core.Pending
	created, err := svc.CreateTransaction(ctx, tx)
	if err != nil {
		t.Fatal(err)
	}

	paid, err := svc.MarkPaid(ctx, created.ID)
	if err != nil {
		t.Fatalf("MarkPaid: %v", err)
	}
	if !paid.IsPaid || paid.Status != core.Completed {
		t.Errorf("paid = %+v", paid)
	}

	if _, err := svc.MarkPaid(ctx, "nope"); !errors.Is(err, ledger.ErrNotFound) {
		t.Errorf("err = %v", err)
	}
}

func TestDeleteTransaction(t *testing.T) {
	pub := &fakePublisher{}
	svc := newTestLedger(memory.New(), pub)
	ctx := context.Background()
	created, err := svc.CreateTransaction(ctx, expense("5"))
	if err != nil {
		t.Fatal(err)
	}

	if err := svc.DeleteTransaction(ctx, created.ID); err != nil {
		t.Fatalf("DeleteTransaction: %v", err)
	}
	if _, err := svc.GetTransaction(ctx, created.ID); !errors.Is(err, ledger.ErrNotFound) {
		t.Errorf("after delete err = %v", err)
	}
	if err := svc.DeleteTransaction(ctx, created.ID); !errors.Is(err, ledger.ErrNotFound) {
		t.Errorf("second delete err = %v", err)
	}
	if len(pub.calls) != 2 || pub.calls[1].version != 3 {
		t.Errorf("publish calls = %+v", pub.calls)
	}
}

func TestPublishFailureDoesNotFailWrite(t *testing.T) {
	pub := &fakePublisher{err: errors.New("broker down")}
	svc := newTestLedger(memory.New(), pub)

	if _, err := svc.CreateTransaction(context.Background(), expense("1")); err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}
	if svc.Version() != 2 {
		t.Errorf("Version() = %d, want 2", svc.Version())
	}
}

func TestCreateAccountsAndMembers(t *testing.T) {
	pub := &fakePublisher{}
	svc := newTestLedger(memory.New(), pub)
	ctx := context.Background()

	m, err := svc.CreateMember(ctx, core.FamilyMember{Name: "Ana", Role: "Mother"})
	if err != nil {
		t.Fatalf("CreateMember: %v", err)
	}
	a, err := svc.CreateBankAccount(ctx, core.BankAccount{Name: "Checking", Bank: "Itaú", HolderID: m.ID, Balance: decimal.NewFromInt(100)})
	if err != nil {
		t.Fatalf("CreateBankAccount: %v", err)
	}
	c, err := svc.CreateCreditCard(ctx, core.CreditCard{Name: "Gold", Bank: "Inter", HolderID: m.ID, Limit: decimal.NewFromInt(1000), ClosingDay: 3, DueDay: 10})
	if err != nil {
		t.Fatalf("CreateCreditCard: %v", err)
	}
	if c.Theme != core.ThemeBlack {
		t.Errorf("default theme = %q", c.Theme)
	}
	if _, err := svc.CreateMember(ctx, core.FamilyMember{}); !errors.Is(err, ErrValidation) {
		t.Errorf("empty member err = %v", err)
	}

	kinds := []ledger.EntityKind{ledger.KindMember, ledger.KindBankAccount, ledger.KindCreditCard}
	ids := []string{m.ID, a.ID, c.ID}
	if len(pub.calls) != 3 {
		t.Fatalf("publish calls = %+v", pub.calls)
	}
	for i := range kinds {
		if pub.calls[i].kind != kinds[i] || pub.calls[i].id != ids[i] {
			t.Errorf("call %d = %+v", i, pub.calls[i])
		}
	}
}

func TestUpdateDeleteEntities(t *testing.T) {
	pub := &fakePublisher{}
	store := memory.NewFromDataset(ledger.DemoDataset(fixedNow))
	led := newTestLedger(store, pub)
	dash := NewDashboardService(store, led, dashboard.NewMemo(16, time.Minute), quietLogger())
	ctx := context.Background()

	if _, err := dash.Snapshot(ctx, core.TransactionFilters{}); err != nil {
		t.Fatal(err)
	}
	paid := decimal.Zero
	card, err := led.UpdateCreditCard(ctx, "card_1", core.CreditCardPatch{CurrentBill: &paid})
	if err != nil {
		t.Fatalf("UpdateCreditCard: %v", err)
	}
	if !card.CurrentBill.IsZero() || !card.UpdatedAt.Equal(fixedNow) {
		t.Errorf("updated card = %+v", card)
	}
	snap, err := dash.Snapshot(ctx, core.TransactionFilters{})
	if err != nil {
		t.Fatal(err)
	}
	if !snap.TotalBalance.Equal(decimal.RequireFromString("14200.75")) {
		t.Errorf("TotalBalance after bill update = %s, want 14200.75", snap.TotalBalance)
	}

	role := "Student"
	if _, err := led.UpdateMember(ctx, "member_3", core.MemberPatch{Role: &role}); err != nil {
		t.Fatalf("UpdateMember: %v", err)
	}
	name := "Main checking"
	if _, err := led.UpdateBankAccount(ctx, "account_1", core.BankAccountPatch{Name: &name}); err != nil {
		t.Fatalf("UpdateBankAccount: %v", err)
	}
	if err := led.DeleteCreditCard(ctx, "card_3"); err != nil {
		t.Fatalf("DeleteCreditCard: %v", err)
	}
	if err := led.DeleteBankAccount(ctx, "account_3"); err != nil {
		t.Fatalf("DeleteBankAccount: %v", err)
	}
	if err := led.DeleteMember(ctx, "member_2"); err != nil {
		t.Fatalf("DeleteMember: %v", err)
	}

	want := []publishCall{
		{ledger.KindCreditCard, "card_1", 2},
		{ledger.KindMember, "member_3", 3},
		{ledger.KindBankAccount, "account_1", 4},
		{ledger.KindCreditCard, "card_3", 5},
		{ledger.KindBankAccount, "account_3", 6},
		{ledger.KindMember, "member_2", 7},
	}
	if len(pub.calls) != len(want) {
		t.Fatalf("publish calls = %+v", pub.calls)
	}
	for i := range want {
		if pub.calls[i] != want[i] {
			t.Errorf("call %d = %+v, want %+v", i, pub.calls[i], want[i])
		}
	}

	failures := []struct {
		name string
		err  error
		want error
	}{
		{"empty patch", func() error { _, err := led.UpdateMember(ctx, "member_1", core.MemberPatch{}); return err }(), ErrValidation},
		{"blank name", func() error {
			blank := " "
			_, err := led.UpdateBankAccount(ctx, "account_1", core.BankAccountPatch{Name: &blank})
			return err
		}(), ErrValidation},
		{"bad due day", func() error {
			day := 0
			_, err := led.UpdateCreditCard(ctx, "card_2", core.CreditCardPatch{DueDay: &day})
			return err
		}(), ErrValidation},
		{"missing card", led.DeleteCreditCard(ctx, "card_3"), ledger.ErrNotFound},
		{"missing member", func() error { _, err := led.UpdateMember(ctx, "member_2", core.MemberPatch{Role: &role}); return err }(), ledger.ErrNotFound},
	}
	for _, tt := range failures {
		if !errors.Is(tt.err, tt.want) {
			t.Errorf("%s: err = %v, want %v", tt.name, tt.err, tt.want)
		}
	}
	if len(pub.calls) != len(want) {
		t.Errorf("failed writes published: %+v", pub.calls[len(want):])
	}

	after, err := dash.Snapshot(ctx, core.TransactionFilters{})
	if err != nil {
		t.Fatal(err)
	}
	if len(after.Members) != 2 {
		t.Errorf("members after delete = %d", len(after.Members))
	}
}

func TestGoalLifecycle(t *testing.T) {
	pub := &fakePublisher{}
	led := newTestLedger(memory.New(), pub)
	ctx := context.Background()

	g, err := led.CreateGoal(ctx, core.Goal{Title: "Trip", TargetAmount: decimal.NewFromInt(5000)})
	if err != nil {
		t.Fatalf("CreateGoal: %v", err)
	}
	if g.ID != "id-1" || !g.CreatedAt.Equal(fixedNow) {
		t.Errorf("created goal = %+v", g)
	}
	if _, err := led.CreateGoal(ctx, core.Goal{}); !errors.Is(err, ErrValidation) {
		t.Errorf("untitled goal err = %v", err)
	}

	saved := decimal.NewFromInt(5000)
	done := true
	updated, err := led.UpdateGoal(ctx, g.ID, core.GoalPatch{CurrentAmount: &saved, IsCompleted: &done})
	if err != nil {
		t.Fatalf("UpdateGoal: %v", err)
	}
	if !updated.IsCompleted || !updated.CurrentAmount.Equal(saved) {
		t.Errorf("updated goal = %+v", updated)
	}
	negative := decimal.NewFromInt(-1)
	if _, err := led.UpdateGoal(ctx, g.ID, core.GoalPatch{TargetAmount: &negative}); !errors.Is(err, core.ErrInvalidAmount) {
		t.Errorf("negative target err = %v", err)
	}

	if err := led.DeleteGoal(ctx, g.ID); err != nil {
		t.Fatalf("DeleteGoal: %v", err)
	}
	if _, err := led.GetGoal(ctx, g.ID); !errors.Is(err, ledger.ErrNotFound) {
		t.Errorf("GetGoal after delete = %v", err)
	}
	goals, err := led.ListGoals(ctx)
	if err != nil || len(goals) != 0 {
		t.Errorf("ListGoals = %+v, %v", goals, err)
	}

	if len(pub.calls) != 3 || pub.calls[2].kind != ledger.KindGoal || pub.calls[2].version != 4 {
		t.Errorf("publish calls = %+v", pub.calls)
	}
}

// countingStore counts full transaction loads so cache hits are observable.
type countingStore struct {
	ledger.Store
	mu    sync.Mutex
	loads int
}

func (s *countingStore) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	s.loads++
	s.mu.Unlock()
	return s.Store.ListTransactions(ctx)
}

func (s *countingStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loads
}

func newDemoServices(t *testing.T) (*LedgerService, *DashboardService, *countingStore) {
	t.Helper()
	store := &countingStore{Store: memory.NewFromDataset(ledger.DemoDataset(fixedNow))}
	led := newTestLedger(store, nil)
	dash := NewDashboardService(store, led, dashboard.NewMemo(16, time.Minute), quietLogger())
	return led, dash, store
}

func TestSnapshotMemoization(t *testing.T) {
	led, dash, store := newDemoServices(t)
	ctx := context.Background()
	filters := core.TransactionFilters{TransactionType: core.ExpensesOnly}

	first, err := dash.Snapshot(ctx, filters)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if _, err := dash.Snapshot(ctx, core.TransactionFilters{TransactionType: core.ExpensesOnly, SearchText: "  "}); err != nil {
		t.Fatal(err)
	}
	if store.count() != 1 {
		t.Fatalf("loads = %d, want 1 after equivalent lookups", store.count())
	}
	if stats, ok := dash.CacheStats(); !ok || stats.Hits != 1 || stats.Misses != 1 {
		t.Errorf("CacheStats() = %+v, %v", stats, ok)
	}
	if !first.TotalBalance.Equal(decimal.RequireFromString("10700.75")) {
		t.Errorf("TotalBalance = %s", first.TotalBalance)
	}
	if len(first.Members) != 3 {
		t.Errorf("members = %d", len(first.Members))
	}

	if _, err := led.CreateTransaction(ctx, expense("1000")); err != nil {
		t.Fatal(err)
	}
	second, err := dash.Snapshot(ctx, filters)
	if err != nil {
		t.Fatal(err)
	}
	if store.count() != 2 {
		t.Fatalf("loads = %d, want 2 after a write", store.count())
	}
	if diff := second.Expenses.Sub(first.Expenses); !diff.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("expenses grew by %s, want 1000", diff)
	}
}

func TestHandleLedgerChanged(t *testing.T) {
	led, dash, store := newDemoServices(t)
	ctx := context.Background()

	if _, err := dash.Snapshot(ctx, core.TransactionFilters{}); err != nil {
		t.Fatal(err)
	}
	before := led.Version()
	msg := amqp.NewLedgerChangedMessage(ledger.KindTransaction, "trans_1", 7)
	if err := dash.HandleLedgerChanged(ctx, msg); err != nil {
		t.Fatalf("HandleLedgerChanged: %v", err)
	}
	if led.Version() != before+1 {
		t.Errorf("version = %d, want %d", led.Version(), before+1)
	}
	if _, err := dash.Snapshot(ctx, core.TransactionFilters{}); err != nil {
		t.Fatal(err)
	}
	if store.count() != 2 {
		t.Errorf("loads = %d, want 2", store.count())
	}
}

func TestTransactionsPage(t *testing.T) {
	_, dash, _ := newDemoServices(t)

	page, err := dash.Transactions(context.Background(), core.TransactionFilters{}, 1, 10)
	if err != nil {
		t.Fatalf("Transactions: %v", err)
	}
	if page.Total != 30 || page.TotalPages != 3 || len(page.Items) != 10 {
		t.Fatalf("page = total %d pages %d items %d", page.Total, page.TotalPages, len(page.Items))
	}
	for i := 1; i < len(page.Items); i++ {
		if page.Items[i].Date.Time.After(page.Items[i-1].Date.Time) {
			t.Fatalf("items not sorted newest first at %d", i)
		}
	}
}

func TestUpcomingAndAccounts(t *testing.T) {
	_, dash, _ := newDemoServices(t)
	ctx := context.Background()

	upcoming, err := dash.Upcoming(ctx, 0)
	if err != nil {
		t.Fatalf("Upcoming: %v", err)
	}
	if len(upcoming) != 4 {
		t.Fatalf("upcoming = %d, want 4", len(upcoming))
	}
	if upcoming[0].Transaction.Description != "Gas bill" || upcoming[0].Account.Kind != dashboard.KindUnspecified {
		t.Errorf("first upcoming = %+v", upcoming[0])
	}
	if upcoming[2].Account.Label != "Credit Nubank **** 1234" {
		t.Errorf("card label = %q", upcoming[2].Account.Label)
	}

	accounts, cards, err := dash.Accounts(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(accounts) != 3 || len(cards) != 3 {
		t.Fatalf("accounts=%d cards=%d", len(accounts), len(cards))
	}
	if !cards[0].Usage.Equal(decimal.NewFromInt(35)) {
		t.Errorf("card_1 usage = %s", cards[0].Usage)
	}
}

func TestFlow(t *testing.T) {
	_, dash, _ := newDemoServices(t)

	flow, err := dash.Flow(context.Background(), core.TransactionFilters{TransactionType: core.IncomeOnly}, 2025)
	if err != nil {
		t.Fatalf("Flow: %v", err)
	}
	total := decimal.Zero
	for _, m := range flow {
		total = total.Add(m.Income)
		if !m.Expenses.IsZero() {
			t.Errorf("%s expenses = %s with income-only filter", m.Month, m.Expenses)
		}
	}
	if !total.Equal(decimal.NewFromInt(30500)) {
		t.Errorf("income total = %s, want 30500", total)
	}
}

func TestReminderJob(t *testing.T) {
	_, dash, _ := newDemoServices(t)
	var buf bytes.Buffer
	logger := applog.New(applog.Config{Level: slog.LevelInfo, Format: "json", Output: &buf, Component: "test"})

	job := NewReminderJob(dash, 2, logger)
	job.now = func() time.Time { return fixedNow }
	got, err := job.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d reminders, want 2", len(got))
	}
	out := buf.String()
	if strings.Count(out, `"msg":"Upcoming expense"`) != 2 {
		t.Errorf("log output:\n%s", out)
	}
	if !strings.Contains(out, `"component":"reminder"`) || !strings.Contains(out, `"account":"Unspecified"`) {
		t.Errorf("log output missing fields:\n%s", out)
	}
}
