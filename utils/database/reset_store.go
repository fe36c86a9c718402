package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"guardian-bot/model"

	"github.com/jmoiron/sqlx"
)

// Periods tracked by the reset watermarks.
const (
	PeriodDaily   = "daily"
	PeriodWeekly  = "weekly"
	PeriodMonthly = "monthly"
)

// GetResetWatermark returns the unix time of the last boundary a reset ran
// for, or 0 when the period has never been reset.
func (s *Store) GetResetWatermark(ctx context.Context, period string) (int64, error) {
	var last int64
	err := s.db.GetContext(ctx, &last,
		"SELECT last_reset FROM reset_watermarks WHERE period = ?", period)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get %s reset watermark: %w", period, err)
	}
	return last, nil
}

// ResetCounters zeroes the period's counters across users, members and (for
// daily) groups, and advances the watermark, all in one transaction. Running
// it twice for the same boundary is a no-op because the caller compares the
// watermark first; the write itself is still safe to repeat.
func (s *Store) ResetCounters(ctx context.Context, period string, boundary int64) error {
	var column string
	switch period {
	case PeriodDaily:
		column = "daily_messages"
	case PeriodWeekly:
		column = "weekly_messages"
	case PeriodMonthly:
		column = "monthly_messages"
	default:
		return fmt.Errorf("%w: unknown period %q", model.ErrInvalidState, period)
	}

	return s.inTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, "UPDATE users SET "+column+" = 0"); err != nil {
			return fmt.Errorf("failed to reset user %s counters: %w", period, err)
		}
		if _, err := tx.ExecContext(ctx, "UPDATE members SET "+column+" = 0"); err != nil {
			return fmt.Errorf("failed to reset member %s counters: %w", period, err)
		}
		if period == PeriodDaily {
			if _, err := tx.ExecContext(ctx, "UPDATE groups SET daily_messages = 0"); err != nil {
				return fmt.Errorf("failed to reset group daily counters: %w", err)
			}
		}
		_, err := tx.ExecContext(ctx, `INSERT INTO reset_watermarks (period, last_reset)
			VALUES (?, ?)
			ON CONFLICT(period) DO UPDATE SET last_reset = excluded.last_reset`,
			period, boundary)
		if err != nil {
			return fmt.Errorf("failed to advance %s reset watermark: %w", period, err)
		}
		return nil
	})
}
