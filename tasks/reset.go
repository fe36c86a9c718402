package tasks

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"guardian-bot/model"
	"guardian-bot/utils"
)

// Period names for the counter resets.
const (
	PeriodDaily   = "daily"
	PeriodWeekly  = "weekly"
	PeriodMonthly = "monthly"
)

var periods = []string{PeriodDaily, PeriodWeekly, PeriodMonthly}

// ResetStore is the watermark and counter access the scheduler needs.
type ResetStore interface {
	GetResetWatermark(ctx context.Context, period string) (int64, error)
	ResetCounters(ctx context.Context, period string, boundary int64) error
}

// ResetScheduler zeroes the time-windowed counters at period boundaries. It
// compares a stored watermark against the current boundary instead of firing
// on a wall-clock match, so restarts and duplicate ticks cannot double-reset
// and a missed boundary minute is caught up on the next tick.
type ResetScheduler struct {
	store ResetStore
	clock model.Clock

	auditWebhookURL string
	running         atomic.Bool
}

func NewResetScheduler(store ResetStore, clock model.Clock, auditWebhookURL string) *ResetScheduler {
	return &ResetScheduler{
		store:           store,
		clock:           clock,
		auditWebhookURL: auditWebhookURL,
	}
}

// PeriodStart returns the boundary instant the given time falls into: start
// of day, start of week (Sunday), or first of the month.
func PeriodStart(period string, now time.Time) (time.Time, error) {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch period {
	case PeriodDaily:
		return day, nil
	case PeriodWeekly:
		return day.AddDate(0, 0, -int(now.Weekday())), nil
	case PeriodMonthly:
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()), nil
	default:
		return time.Time{}, fmt.Errorf("%w: unknown period %q", model.ErrInvalidState, period)
	}
}

// RunPeriodicReset resets one period's counters if its boundary has passed
// since the last recorded reset. Idempotent per boundary: a second run within
// the same period is a no-op.
func (s *ResetScheduler) RunPeriodicReset(ctx context.Context, period string) error {
	boundary, err := PeriodStart(period, s.clock.Now())
	if err != nil {
		return err
	}

	watermark, err := s.store.GetResetWatermark(ctx, period)
	if err != nil {
		return err
	}
	if watermark >= boundary.Unix() {
		return nil
	}

	if err := s.store.ResetCounters(ctx, period, boundary.Unix()); err != nil {
		return fmt.Errorf("failed to run %s reset: %w", period, err)
	}

	log.Printf("%s counters reset (boundary %s)", period, boundary.Format(time.RFC3339))
	if err := utils.LogSystemEvent(s.auditWebhookURL, utils.Info, period+" reset", boundary.Format(time.RFC3339)); err != nil {
		log.Printf("Failed to send reset audit webhook: %v", err)
	}
	return nil
}

// TickAll runs every period's reset check. A tick that arrives while the
// previous one is still running is skipped, not queued.
func (s *ResetScheduler) TickAll(ctx context.Context) {
	if !s.running.CompareAndSwap(false, true) {
		log.Println("Previous reset tick still running, skipping")
		return
	}
	defer s.running.Store(false)

	for _, period := range periods {
		if err := s.RunPeriodicReset(ctx, period); err != nil {
			log.Printf("Error running %s reset: %v", period, err)
		}
	}
}
