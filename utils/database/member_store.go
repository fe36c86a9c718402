package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"guardian-bot/model"

	"github.com/jmoiron/sqlx"
)

// recountMembers refreshes groups.member_count from the members table inside
// the same transaction as the status change that invalidated it.
func recountMembers(ctx context.Context, tx *sqlx.Tx, groupID int64) error {
	_, err := tx.ExecContext(ctx, `UPDATE groups SET member_count =
		(SELECT COUNT(*) FROM members WHERE group_id = ? AND is_active = 1)
		WHERE id = ?`, groupID, groupID)
	if err != nil {
		return fmt.Errorf("failed to recount members for group %d: %w", groupID, err)
	}
	return nil
}

func getMemberTx(ctx context.Context, tx *sqlx.Tx, groupID, userID int64) (*model.Member, error) {
	var m model.Member
	err := tx.GetContext(ctx, &m,
		"SELECT * FROM members WHERE group_id = ? AND user_id = ?", groupID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: member %d in group %d", model.ErrNotFound, userID, groupID)
		}
		return nil, fmt.Errorf("failed to get member %d/%d: %w", groupID, userID, err)
	}
	return &m, nil
}

// GetMember retrieves one member record.
func (s *Store) GetMember(ctx context.Context, groupID, userID int64) (*model.Member, error) {
	var m model.Member
	err := s.db.GetContext(ctx, &m,
		"SELECT * FROM members WHERE group_id = ? AND user_id = ?", groupID, userID)
	if err != nil {
		return nil, wrapGetErr(err, fmt.Sprintf("member %d in group %d", userID, groupID))
	}
	return &m, nil
}

// GetOrCreateMember returns the member record for observed activity, creating
// it on first join. A member who previously left (inactive but not banned) is
// reactivated, with the group count adjusted in the same transaction.
func (s *Store) GetOrCreateMember(ctx context.Context, groupID, userID int64, now int64) (*model.Member, error) {
	var m model.Member
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		err := tx.GetContext(ctx, &m,
			"SELECT * FROM members WHERE group_id = ? AND user_id = ?", groupID, userID)
		if err == nil {
			if !m.IsActive && !m.IsBanned {
				m.IsActive = true
				if _, err := tx.ExecContext(ctx,
					"UPDATE members SET is_active = 1, last_activity = ? WHERE group_id = ? AND user_id = ?",
					now, groupID, userID); err != nil {
					return fmt.Errorf("failed to reactivate member %d/%d: %w", groupID, userID, err)
				}
				return recountMembers(ctx, tx, groupID)
			}
			return nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("failed to get member %d/%d: %w", groupID, userID, err)
		}

		m = model.Member{
			GroupID:      groupID,
			UserID:       userID,
			Role:         model.RoleMember,
			JoinedAt:     now,
			LastActivity: now,
			IsActive:     true,
		}
		if _, err := tx.NamedExecContext(ctx, `INSERT INTO members
			(group_id, user_id, role, messages_count, daily_messages, weekly_messages, monthly_messages,
			 coins_earned, xp_earned, warnings, last_warning_at, joined_at, last_activity,
			 is_active, is_muted, muted_until, mute_reason, is_banned, ban_reason, banned_at)
			VALUES (:group_id, :user_id, :role, :messages_count, :daily_messages, :weekly_messages, :monthly_messages,
			 :coins_earned, :xp_earned, :warnings, :last_warning_at, :joined_at, :last_activity,
			 :is_active, :is_muted, :muted_until, :mute_reason, :is_banned, :ban_reason, :banned_at)`, &m); err != nil {
			return fmt.Errorf("failed to insert member %d/%d: %w", groupID, userID, err)
		}
		return recountMembers(ctx, tx, groupID)
	})
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// SetRole stores the platform role for the member.
func (s *Store) SetRole(ctx context.Context, groupID, userID int64, role string) error {
	if !model.ValidRole(role) {
		return fmt.Errorf("%w: role %q", model.ErrInvalidState, role)
	}
	res, err := s.db.ExecContext(ctx,
		"UPDATE members SET role = ? WHERE group_id = ? AND user_id = ?", role, groupID, userID)
	if err != nil {
		return fmt.Errorf("failed to set role for member %d/%d: %w", groupID, userID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: member %d in group %d", model.ErrNotFound, userID, groupID)
	}
	return nil
}

// SetMute applies the Muted state.
func (s *Store) SetMute(ctx context.Context, groupID, userID, until int64, reason string, now int64) error {
	return s.inTx(ctx, func(tx *sqlx.Tx) error {
		m, err := getMemberTx(ctx, tx, groupID, userID)
		if err != nil {
			return err
		}
		if m.IsBanned {
			return fmt.Errorf("%w: cannot mute a banned member", model.ErrInvalidState)
		}
		_, err = tx.ExecContext(ctx, `UPDATE members SET
			is_muted = 1, muted_until = ?, mute_reason = ?, last_activity = ?
			WHERE group_id = ? AND user_id = ?`, until, reason, now, groupID, userID)
		if err != nil {
			return fmt.Errorf("failed to mute member %d/%d: %w", groupID, userID, err)
		}
		return nil
	})
}

// ClearMute applies Muted -> Active. Fails with ErrInvalidState when the
// stored flag is not set.
func (s *Store) ClearMute(ctx context.Context, groupID, userID int64, now int64) error {
	return s.inTx(ctx, func(tx *sqlx.Tx) error {
		m, err := getMemberTx(ctx, tx, groupID, userID)
		if err != nil {
			return err
		}
		if !m.IsMuted {
			return fmt.Errorf("%w: member is not muted", model.ErrInvalidState)
		}
		_, err = tx.ExecContext(ctx, `UPDATE members SET
			is_muted = 0, muted_until = 0, mute_reason = '', last_activity = ?
			WHERE group_id = ? AND user_id = ?`, now, groupID, userID)
		if err != nil {
			return fmt.Errorf("failed to unmute member %d/%d: %w", groupID, userID, err)
		}
		return nil
	})
}

// SetBan applies Active|Muted -> Banned: the member goes inactive, any mute
// is cleared, and the group count is adjusted, all in one transaction.
func (s *Store) SetBan(ctx context.Context, groupID, userID int64, reason string, now int64) error {
	return s.inTx(ctx, func(tx *sqlx.Tx) error {
		m, err := getMemberTx(ctx, tx, groupID, userID)
		if err != nil {
			return err
		}
		if m.IsBanned {
			return fmt.Errorf("%w: member is already banned", model.ErrInvalidState)
		}
		_, err = tx.ExecContext(ctx, `UPDATE members SET
			is_banned = 1, ban_reason = ?, banned_at = ?, is_active = 0,
			is_muted = 0, muted_until = 0, mute_reason = '', last_activity = ?
			WHERE group_id = ? AND user_id = ?`, reason, now, now, groupID, userID)
		if err != nil {
			return fmt.Errorf("failed to ban member %d/%d: %w", groupID, userID, err)
		}
		return recountMembers(ctx, tx, groupID)
	})
}

// ClearBan applies Banned -> Active, restoring the active flag and count.
func (s *Store) ClearBan(ctx context.Context, groupID, userID int64, now int64) error {
	return s.inTx(ctx, func(tx *sqlx.Tx) error {
		m, err := getMemberTx(ctx, tx, groupID, userID)
		if err != nil {
			return err
		}
		if !m.IsBanned {
			return fmt.Errorf("%w: member is not banned", model.ErrInvalidState)
		}
		_, err = tx.ExecContext(ctx, `UPDATE members SET
			is_banned = 0, ban_reason = '', banned_at = 0, is_active = 1, last_activity = ?
			WHERE group_id = ? AND user_id = ?`, now, groupID, userID)
		if err != nil {
			return fmt.Errorf("failed to unban member %d/%d: %w", groupID, userID, err)
		}
		return recountMembers(ctx, tx, groupID)
	})
}

// SetLeft applies Active -> Left: inactive without a ban flag.
func (s *Store) SetLeft(ctx context.Context, groupID, userID int64, now int64) error {
	return s.inTx(ctx, func(tx *sqlx.Tx) error {
		m, err := getMemberTx(ctx, tx, groupID, userID)
		if err != nil {
			return err
		}
		if !m.IsActive {
			return fmt.Errorf("%w: member is not active", model.ErrInvalidState)
		}
		_, err = tx.ExecContext(ctx, `UPDATE members SET
			is_active = 0, last_activity = ? WHERE group_id = ? AND user_id = ?`,
			now, groupID, userID)
		if err != nil {
			return fmt.Errorf("failed to mark member %d/%d left: %w", groupID, userID, err)
		}
		return recountMembers(ctx, tx, groupID)
	})
}

// AddWarning bumps the warning counter and stamps it.
func (s *Store) AddWarning(ctx context.Context, groupID, userID int64, now int64) (int64, error) {
	var warnings int64
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		m, err := getMemberTx(ctx, tx, groupID, userID)
		if err != nil {
			return err
		}
		warnings = m.Warnings + 1
		_, err = tx.ExecContext(ctx, `UPDATE members SET
			warnings = warnings + 1, last_warning_at = ? WHERE group_id = ? AND user_id = ?`,
			now, groupID, userID)
		if err != nil {
			return fmt.Errorf("failed to warn member %d/%d: %w", groupID, userID, err)
		}
		return nil
	})
	return warnings, err
}

// TopMembers returns the group's active members by message count.
func (s *Store) TopMembers(ctx context.Context, groupID int64, limit int) ([]model.Member, error) {
	var out []model.Member
	err := s.db.SelectContext(ctx, &out, `SELECT * FROM members
		WHERE group_id = ? AND is_active = 1
		ORDER BY messages_count DESC LIMIT ?`, groupID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get top members for group %d: %w", groupID, err)
	}
	return out, nil
}
