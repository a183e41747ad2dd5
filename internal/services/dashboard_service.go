package services

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
	"mycash/internal/amqp"
	"mycash/internal/cache"
	"mycash/internal/core"
	"mycash/internal/dashboard"
	"mycash/internal/ledger"
	applog "mycash/internal/log"
)

// ledgerData is one consistent-enough read of every collection.
type ledgerData struct {
	transactions []core.Transaction
	accounts     []core.BankAccount
	cards        []core.CreditCard
	members      []core.FamilyMember
}

// DashboardService answers the read side: snapshots, tables and widgets.
type DashboardService struct {
	store    ledger.Store
	versions VersionSource
	memo     *dashboard.Memo
	logger   *applog.Logger
}

func NewDashboardService(store ledger.Store, versions VersionSource, memo *dashboard.Memo, logger *applog.Logger) *DashboardService {
	if logger == nil {
		logger = applog.Default(applog.ComponentDashboard)
	}
	return &DashboardService{
		store:    store,
		versions: versions,
		memo:     memo,
		logger:   logger.WithComponent(applog.ComponentDashboard),
	}
}

func (s *DashboardService) load(ctx context.Context) (ledgerData, error) {
	var data ledgerData
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		data.transactions, err = s.store.ListTransactions(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		data.accounts, err = s.store.ListBankAccounts(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		data.cards, err = s.store.ListCreditCards(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		data.members, err = s.store.ListMembers(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return ledgerData{}, fmt.Errorf("load ledger: %w", err)
	}
	return data, nil
}

// Snapshot returns the aggregates for filters, memoized per dataset version.
func (s *DashboardService) Snapshot(ctx context.Context, filters core.TransactionFilters) (dashboard.Snapshot, error) {
	version := s.versions.Version()
	build := func() (dashboard.Snapshot, error) {
		data, err := s.load(ctx)
		if err != nil {
			return dashboard.Snapshot{}, err
		}
		return dashboard.Build(dashboard.Input{
			Transactions: data.transactions,
			Accounts:     data.accounts,
			Cards:        data.cards,
			Members:      data.members,
			Filters:      filters,
		}), nil
	}

	if s.memo == nil {
		return build()
	}
	snap, hit, err := s.memo.Get(version, filters, build)
	if err != nil {
		return dashboard.Snapshot{}, err
	}
	s.logger.DebugContext(ctx, "Dashboard snapshot served",
		applog.FieldFilterKey, filters.Key(),
		applog.FieldVersion, version,
		"cache_hit", hit,
		applog.FieldOperation, applog.OpAggregate)
	return snap, nil
}

// Transactions is the paginated table: filtered, newest first.
func (s *DashboardService) Transactions(ctx context.Context, filters core.TransactionFilters, page, perPage int) (dashboard.Page, error) {
	snap, err := s.Snapshot(ctx, filters)
	if err != nil {
		return dashboard.Page{}, err
	}
	return dashboard.Paginate(dashboard.SortByDateDesc(snap.Transactions), page, perPage), nil
}

// Upcoming lists the next unpaid expenses with account labels.
func (s *DashboardService) Upcoming(ctx context.Context, limit int) ([]dashboard.UpcomingExpense, error) {
	data, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	next := dashboard.UpcomingExpenses(data.transactions, limit)
	return dashboard.WithAccounts(next, data.accounts, data.cards), nil
}

// Flow returns the monthly income/expense series for year over the filtered view.
func (s *DashboardService) Flow(ctx context.Context, filters core.TransactionFilters, year int) ([]dashboard.MonthFlow, error) {
	snap, err := s.Snapshot(ctx, filters)
	if err != nil {
		return nil, err
	}
	return dashboard.MonthlyFlow(snap.Transactions, year), nil
}

// Accounts returns bank accounts and cards with their usage figures.
func (s *DashboardService) Accounts(ctx context.Context) ([]core.BankAccount, []dashboard.CardSummary, error) {
	data, err := s.load(ctx)
	if err != nil {
		return nil, nil, err
	}
	return data.accounts, dashboard.SummarizeCards(data.cards), nil
}

func (s *DashboardService) Members(ctx context.Context) ([]core.FamilyMember, error) {
	return s.store.ListMembers(ctx)
}

// CacheStats reports snapshot cache counters; false when memoization is off.
func (s *DashboardService) CacheStats() (cache.Stats, bool) {
	if s.memo == nil {
		return cache.Stats{}, false
	}
	return s.memo.Cache().Stats(), true
}

// Invalidate drops every memoized snapshot.
func (s *DashboardService) Invalidate() int {
	if s.memo == nil {
		return 0
	}
	return s.memo.Invalidate()
}

// HandleLedgerChanged is the AMQP consumer callback. The change may come from
// another process, so the local version moves too before the cache is dropped.
func (s *DashboardService) HandleLedgerChanged(ctx context.Context, msg *amqp.LedgerChangedMessage) error {
	if b, ok := s.versions.(interface{ Bump() uint64 }); ok {
		b.Bump()
	}
	n := s.Invalidate()
	s.logger.InfoContext(ctx, "Snapshot cache invalidated",
		applog.FieldEntityKind, string(msg.Kind),
		applog.FieldVersion, msg.Version,
		applog.FieldResultCount, n,
		applog.FieldOperation, applog.OpConsume)
	return nil
}
