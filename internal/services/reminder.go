package services

import (
	"context"
	"fmt"
	"time"

	"mycash/internal/dashboard"
	applog "mycash/internal/log"
)

// ReminderJob logs the next unpaid expenses. The worker runs it on a cron
// schedule.
type ReminderJob struct {
	dashboard *DashboardService
	limit     int
	logger    *applog.Logger
	now       func() time.Time
}

func NewReminderJob(dash *DashboardService, limit int, logger *applog.Logger) *ReminderJob {
	if logger == nil {
		logger = applog.Default(applog.ComponentReminder)
	}
	if limit <= 0 {
		limit = dashboard.DefaultUpcomingLimit
	}
	return &ReminderJob{
		dashboard: dash,
		limit:     limit,
		logger:    logger.WithComponent(applog.ComponentReminder),
		now:       time.Now,
	}
}

// Run loads the upcoming expenses and emits one log line per bill. Bills
// dated before today are reported as overdue.
func (j *ReminderJob) Run(ctx context.Context) ([]dashboard.UpcomingExpense, error) {
	start := j.now()
	upcoming, err := j.dashboard.Upcoming(ctx, j.limit)
	if err != nil {
		j.logger.ErrorContext(ctx, "Reminder run failed", applog.FieldError, err)
		return nil, fmt.Errorf("load upcoming expenses: %w", err)
	}

	today := start.UTC().Truncate(24 * time.Hour)
	for _, u := range upcoming {
		attrs := []any{
			applog.FieldTxID, u.Transaction.ID,
			"description", u.Transaction.Description,
			applog.FieldAmount, u.Transaction.Amount.StringFixed(2),
			"due_date", u.Transaction.Date.String(),
			"account", u.Account.Label,
			"overdue", u.Transaction.Date.Time.Before(today),
		}
		if u.Transaction.IsInstallment() {
			attrs = append(attrs, "installment", fmt.Sprintf("%d/%d", u.Transaction.CurrentInstallment, u.Transaction.Installments))
		}
		j.logger.InfoContext(ctx, "Upcoming expense", attrs...)
	}

	j.logger.InfoContext(ctx, "Reminder run completed",
		applog.FieldResultCount, len(upcoming),
		applog.FieldDuration, time.Since(start).Milliseconds())
	return upcoming, nil
}
