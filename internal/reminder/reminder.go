// Package reminder emails users a digest of schedule entries that need attention.
package reminder

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/Dan9191/family-ledger/internal/config"
	"github.com/Dan9191/family-ledger/internal/models"
	"github.com/Dan9191/family-ledger/internal/schedule"
	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type Kind string

const (
	KindInstallment  Kind = "installment"
	KindContribution Kind = "contribution"
	KindPayout       Kind = "payout"
)

// Item is one entry of a digest.
type Item struct {
	Kind    Kind
	Name    string
	Detail  string
	DueDate models.Date
	Amount  decimal.Decimal
	Overdue bool
}

type Digest struct {
	Today models.Date
	Items []Item
}

// Source is the read side the job needs; *repository.Repository satisfies it.
type Source interface {
	ListReminderProfiles(ctx context.Context) ([]models.UserProfile, error)
	ListDebts(ctx context.Context, uid string) ([]models.Debt, error)
	ListPaluwagans(ctx context.Context, uid string) ([]models.Paluwagan, error)
}

type Notifier interface {
	SendDigest(to, name string, d Digest) error
}

// Collect lists unpaid installments and contributions due within days of
// today (overdue ones included) and owned payouts that can be collected.
func Collect(debts []models.Debt, pools []models.Paluwagan, today models.Date, days int) []Item {
	horizon := today.AddDays(days)
	var items []Item

	for _, d := range debts {
		detail := "pay " + d.CounterpartyName
		if d.Type == models.DebtOwed {
			detail = "collect from " + d.CounterpartyName
		}
		for _, p := range d.PaymentSchedule {
			if p.IsPaid || p.DueDate.After(horizon) {
				continue
			}
			items = append(items, Item{
				Kind:    KindInstallment,
				Name:    d.Name,
				Detail:  detail,
				DueDate: p.DueDate,
				Amount:  p.Amount,
				Overdue: p.DueDate.Before(today),
			})
		}
	}

	for _, pool := range pools {
		for _, w := range pool.WeeklyPayments {
			if w.IsPaid || w.DueDate.After(horizon) {
				continue
			}
			items = append(items, Item{
				Kind:    KindContribution,
				Name:    pool.Name,
				Detail:  fmt.Sprintf("week %d", w.WeekNumber),
				DueDate: w.DueDate,
				Amount:  w.Amount,
				Overdue: w.DueDate.Before(today),
			})
		}
		for _, n := range pool.Numbers {
			if !n.IsOwner || n.IsPaid || !schedule.PayoutAvailable(n.PayoutDate, today) {
				continue
			}
			items = append(items, Item{
				Kind:    KindPayout,
				Name:    pool.Name,
				Detail:  fmt.Sprintf("number %d", n.Number),
				DueDate: n.PayoutDate,
				Amount:  pool.PayoutPerNumber,
			})
		}
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].DueDate.Before(items[j].DueDate)
	})
	return items
}

// Job sends one digest per user who enabled reminders.
type Job struct {
	src      Source
	notifier Notifier
	log      *logrus.Logger
	loc      *time.Location
	days     int
	now      func() time.Time
}

func NewJob(src Source, notifier Notifier, log *logrus.Logger, cfg *config.Config) *Job {
	return &Job{
		src:      src,
		notifier: notifier,
		log:      log,
		loc:      cfg.Location,
		days:     cfg.ReminderDays,
		now:      time.Now,
	}
}

// Run sends the digests and returns how many were sent. Failures for a single
// user are logged and skipped.
func (j *Job) Run(ctx context.Context) (int, error) {
	profiles, err := j.src.ListReminderProfiles(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list reminder profiles: %w", err)
	}

	today := schedule.Today(j.now(), j.loc)
	sent := 0
	for _, p := range profiles {
		if p.Email == "" {
			continue
		}
		entry := j.log.WithField("user", p.ID)

		debts, err := j.src.ListDebts(ctx, p.ID)
		if err != nil {
			entry.Errorf("Failed to load debts: %v", err)
			continue
		}
		pools, err := j.src.ListPaluwagans(ctx, p.ID)
		if err != nil {
			entry.Errorf("Failed to load paluwagans: %v", err)
			continue
		}

		items := Collect(debts, pools, today, j.days)
		if len(items) == 0 {
			continue
		}
		if err := j.notifier.SendDigest(p.Email, p.DisplayName, Digest{Today: today, Items: items}); err != nil {
			entry.Errorf("Failed to send reminder digest: %v", err)
			continue
		}
		sent++
	}

	j.log.Infof("Reminder run finished: %d digest(s) sent", sent)
	return sent, nil
}

// Schedule registers Run on a cron spec evaluated in the configured time zone.
// The caller starts and stops the returned cron.
func (j *Job) Schedule(spec string) (*cron.Cron, error) {
	c := cron.New(cron.WithLocation(j.loc))
	_, err := c.AddFunc(spec, func() {
		if _, err := j.Run(context.Background()); err != nil {
			j.log.Errorf("Reminder run failed: %v", err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid reminder schedule %q: %w", spec, err)
	}
	return c, nil
}
