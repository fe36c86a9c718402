package database

import (
	"context"
	"fmt"

	"guardian-bot/model"

	"github.com/jmoiron/sqlx"
)

// ApplyReward credits one accepted activity event: user totals and counters,
// the member's per-group cache, and the group statistics, all in a single
// transaction. The user's last_message is stored for duplicate detection.
func (s *Store) ApplyReward(ctx context.Context, ev model.ActivityEvent, r model.Reward, now int64) error {
	return s.inTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, `UPDATE users SET
			coins = coins + ?, xp = xp + ?,
			total_messages = total_messages + 1,
			daily_messages = daily_messages + 1,
			weekly_messages = weekly_messages + 1,
			monthly_messages = monthly_messages + 1,
			last_message = ?, last_seen = ?
			WHERE id = ?`, r.Coins, r.XP, ev.Content, now, ev.UserID)
		if err != nil {
			return fmt.Errorf("failed to credit user %d: %w", ev.UserID, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("%w: user %d", model.ErrNotFound, ev.UserID)
		}

		res, err = tx.ExecContext(ctx, `UPDATE members SET
			coins_earned = coins_earned + ?, xp_earned = xp_earned + ?,
			messages_count = messages_count + 1,
			daily_messages = daily_messages + 1,
			weekly_messages = weekly_messages + 1,
			monthly_messages = monthly_messages + 1,
			last_activity = ?
			WHERE group_id = ? AND user_id = ? AND is_active = 1`,
			r.Coins, r.XP, now, ev.GroupID, ev.UserID)
		if err != nil {
			return fmt.Errorf("failed to credit member %d/%d: %w", ev.GroupID, ev.UserID, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("%w: member %d in group %d", model.ErrNotFound, ev.UserID, ev.GroupID)
		}

		_, err = tx.ExecContext(ctx, `UPDATE groups SET
			total_messages = total_messages + 1,
			daily_messages = daily_messages + 1,
			last_activity = ?
			WHERE id = ?`, now, ev.GroupID)
		if err != nil {
			return fmt.Errorf("failed to update group %d stats: %w", ev.GroupID, err)
		}
		return nil
	})
}
