package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"guardian-bot/model"

	"github.com/jmoiron/sqlx"
)

// GetUser retrieves one user by platform id.
func (s *Store) GetUser(ctx context.Context, userID int64) (*model.User, error) {
	var u model.User
	err := s.db.GetContext(ctx, &u, "SELECT * FROM users WHERE id = ?", userID)
	if err != nil {
		return nil, wrapGetErr(err, fmt.Sprintf("user %d", userID))
	}
	return &u, nil
}

// GetOrCreateUser returns the user record for an observed account, creating
// it on first activity and refreshing the display fields on every call.
func (s *Store) GetOrCreateUser(ctx context.Context, ev model.ActivityEvent, now int64) (*model.User, error) {
	var u model.User
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		err := tx.GetContext(ctx, &u, "SELECT * FROM users WHERE id = ?", ev.UserID)
		if err == nil {
			u.Username = ev.Username
			u.FirstName = ev.FirstName
			u.LastName = ev.LastName
			u.LastSeen = now
			_, err = tx.ExecContext(ctx,
				"UPDATE users SET username = ?, first_name = ?, last_name = ?, last_seen = ? WHERE id = ?",
				ev.Username, ev.FirstName, ev.LastName, now, ev.UserID)
			return err
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("failed to get user %d: %w", ev.UserID, err)
		}

		u = model.User{
			ID:         ev.UserID,
			Username:   ev.Username,
			FirstName:  ev.FirstName,
			LastName:   ev.LastName,
			IsBot:      ev.IsBot,
			Level:      1,
			Rank:       model.RankForLevel(1),
			TrustScore: 100,
			FirstSeen:  now,
			LastSeen:   now,
		}
		_, err = tx.NamedExecContext(ctx, `INSERT INTO users
			(id, username, first_name, last_name, is_bot, is_bot_owner, coins, xp, level, rank,
			 total_messages, daily_messages, weekly_messages, monthly_messages,
			 trust_score, spam_count, last_message, first_seen, last_seen)
			VALUES (:id, :username, :first_name, :last_name, :is_bot, :is_bot_owner, :coins, :xp, :level, :rank,
			 :total_messages, :daily_messages, :weekly_messages, :monthly_messages,
			 :trust_score, :spam_count, :last_message, :first_seen, :last_seen)`, &u)
		if err != nil {
			return fmt.Errorf("failed to insert user %d: %w", ev.UserID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// SetUserLevel stores a new level and its rank label.
func (s *Store) SetUserLevel(ctx context.Context, userID int64, level int, rank string) error {
	_, err := s.db.ExecContext(ctx, "UPDATE users SET level = ?, rank = ? WHERE id = ?", level, rank, userID)
	if err != nil {
		return fmt.Errorf("failed to set level for user %d: %w", userID, err)
	}
	return nil
}

// GrantAchievement records the achievement and credits its coin reward in one
// transaction. Returns false without writing anything if the user already
// holds the id, which makes re-checks and retries safe.
func (s *Store) GrantAchievement(ctx context.Context, a model.Achievement) (bool, error) {
	granted := false
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		var count int
		if err := tx.GetContext(ctx, &count,
			"SELECT COUNT(*) FROM achievements WHERE user_id = ? AND id = ?", a.UserID, a.ID); err != nil {
			return fmt.Errorf("failed to check achievement %s: %w", a.ID, err)
		}
		if count > 0 {
			return nil
		}

		if _, err := tx.NamedExecContext(ctx, `INSERT INTO achievements
			(user_id, id, name, coins_reward, earned_at)
			VALUES (:user_id, :id, :name, :coins_reward, :earned_at)`, &a); err != nil {
			return fmt.Errorf("failed to insert achievement %s: %w", a.ID, err)
		}
		if a.CoinsReward > 0 {
			if _, err := tx.ExecContext(ctx,
				"UPDATE users SET coins = coins + ? WHERE id = ?", a.CoinsReward, a.UserID); err != nil {
				return fmt.Errorf("failed to credit achievement reward: %w", err)
			}
		}
		granted = true
		return nil
	})
	return granted, err
}

// ListAchievements returns the user's achievements, newest first.
func (s *Store) ListAchievements(ctx context.Context, userID int64) ([]model.Achievement, error) {
	var out []model.Achievement
	err := s.db.SelectContext(ctx, &out,
		"SELECT * FROM achievements WHERE user_id = ? ORDER BY earned_at DESC", userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list achievements for user %d: %w", userID, err)
	}
	return out, nil
}

// RecordSpam bumps the spam counter and decays the trust score by 5 points
// (floor 0) after every tenth hit.
func (s *Store) RecordSpam(ctx context.Context, userID int64) error {
	return s.inTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx,
			"UPDATE users SET spam_count = spam_count + 1 WHERE id = ?", userID); err != nil {
			return fmt.Errorf("failed to increment spam count: %w", err)
		}
		_, err := tx.ExecContext(ctx, `UPDATE users SET trust_score = MAX(0, trust_score - 5)
			WHERE id = ? AND spam_count % 10 = 0`, userID)
		if err != nil {
			return fmt.Errorf("failed to decay trust score: %w", err)
		}
		return nil
	})
}

// SetTrustScore sets the anti-fraud multiplier directly (owner adjustment).
func (s *Store) SetTrustScore(ctx context.Context, userID int64, score int) error {
	if score < 0 || score > 100 {
		return fmt.Errorf("%w: trust score %d out of range", model.ErrInvalidState, score)
	}
	res, err := s.db.ExecContext(ctx, "UPDATE users SET trust_score = ? WHERE id = ?", score, userID)
	if err != nil {
		return fmt.Errorf("failed to set trust score for user %d: %w", userID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: user %d", model.ErrNotFound, userID)
	}
	return nil
}

// TopUsers returns the highest-coin users across all groups.
func (s *Store) TopUsers(ctx context.Context, limit int) ([]model.User, error) {
	var out []model.User
	err := s.db.SelectContext(ctx, &out,
		"SELECT * FROM users ORDER BY coins DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get top users: %w", err)
	}
	return out, nil
}

// UserGroups returns the ids of groups the user is an active member of.
func (s *Store) UserGroups(ctx context.Context, userID int64) ([]int64, error) {
	var out []int64
	err := s.db.SelectContext(ctx, &out,
		"SELECT group_id FROM members WHERE user_id = ? AND is_active = 1", userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups for user %d: %w", userID, err)
	}
	return out, nil
}
