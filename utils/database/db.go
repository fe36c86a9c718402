package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"guardian-bot/model"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// Store is the sqlite-backed implementation of the per-key record access the
// core services depend on. Methods that touch more than one table run inside
// a single transaction.
type Store struct {
	db *sqlx.DB

	// defaultMuteHours seeds mute_duration_hours for newly observed groups.
	defaultMuteHours int
}

// Init opens (creating if needed) the database and ensures all tables exist.
// defaultMuteHours is the configured mute default applied to new groups.
func Init(dbPath string, defaultMuteHours int) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	db, err := sqlx.Connect("sqlite3", dbPath+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	schemas := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER NOT NULL PRIMARY KEY,
			username TEXT DEFAULT '',
			first_name TEXT DEFAULT '',
			last_name TEXT DEFAULT '',
			is_bot INTEGER DEFAULT 0,
			is_bot_owner INTEGER DEFAULT 0,
			coins INTEGER DEFAULT 0,
			xp INTEGER DEFAULT 0,
			level INTEGER DEFAULT 1,
			rank TEXT DEFAULT 'Novice',
			total_messages INTEGER DEFAULT 0,
			daily_messages INTEGER DEFAULT 0,
			weekly_messages INTEGER DEFAULT 0,
			monthly_messages INTEGER DEFAULT 0,
			trust_score INTEGER DEFAULT 100,
			spam_count INTEGER DEFAULT 0,
			last_message TEXT DEFAULT '',
			first_seen INTEGER NOT NULL,
			last_seen INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS achievements (
			user_id INTEGER NOT NULL,
			id TEXT NOT NULL,
			name TEXT NOT NULL,
			coins_reward INTEGER DEFAULT 0,
			earned_at INTEGER NOT NULL,
			PRIMARY KEY(user_id, id)
		);`,
		`CREATE TABLE IF NOT EXISTS groups (
			id INTEGER NOT NULL PRIMARY KEY,
			title TEXT DEFAULT '',
			type TEXT DEFAULT 'group',
			member_count INTEGER DEFAULT 0,
			total_messages INTEGER DEFAULT 0,
			daily_messages INTEGER DEFAULT 0,
			mute_duration_hours INTEGER DEFAULT 24,
			welcome_enabled INTEGER DEFAULT 1,
			anti_spam INTEGER DEFAULT 1,
			created_at INTEGER NOT NULL,
			last_activity INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS members (
			group_id INTEGER NOT NULL,
			user_id INTEGER NOT NULL,
			role TEXT DEFAULT 'member',
			messages_count INTEGER DEFAULT 0,
			daily_messages INTEGER DEFAULT 0,
			weekly_messages INTEGER DEFAULT 0,
			monthly_messages INTEGER DEFAULT 0,
			coins_earned INTEGER DEFAULT 0,
			xp_earned INTEGER DEFAULT 0,
			warnings INTEGER DEFAULT 0,
			last_warning_at INTEGER DEFAULT 0,
			joined_at INTEGER NOT NULL,
			last_activity INTEGER NOT NULL,
			is_active INTEGER DEFAULT 1,
			is_muted INTEGER DEFAULT 0,
			muted_until INTEGER DEFAULT 0,
			mute_reason TEXT DEFAULT '',
			is_banned INTEGER DEFAULT 0,
			ban_reason TEXT DEFAULT '',
			banned_at INTEGER DEFAULT 0,
			PRIMARY KEY(group_id, user_id)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_members_group_messages ON members(group_id, messages_count DESC);`,
		`CREATE INDEX IF NOT EXISTS idx_members_user ON members(user_id, last_activity DESC);`,
		`CREATE TABLE IF NOT EXISTS moderation_actions (
			action_id INTEGER PRIMARY KEY AUTOINCREMENT,
			group_id INTEGER NOT NULL,
			actor_id INTEGER NOT NULL,
			target_id INTEGER NOT NULL,
			action TEXT NOT NULL,
			reason TEXT DEFAULT '',
			duration_seconds INTEGER DEFAULT 0,
			created_at INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS reset_watermarks (
			period TEXT NOT NULL PRIMARY KEY,
			last_reset INTEGER NOT NULL
		);`,
	}

	for _, schema := range schemas {
		if _, err := db.Exec(schema); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to create tables: %w", err)
		}
	}

	if defaultMuteHours <= 0 {
		defaultMuteHours = 24
	}
	return &Store{db: db, defaultMuteHours: defaultMuteHours}, nil
}

// Close closes the underlying connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB exposes the raw handle for the health endpoint's size/ping checks.
func (s *Store) DB() *sqlx.DB {
	return s.db
}

const (
	maxRetries = 3
	retryDelay = 50 * time.Millisecond
)

// inTx runs fn inside a transaction, retrying on transient lock contention
// with capped attempts.
func (s *Store) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	var lastErr error
	delay := retryDelay
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return fmt.Errorf("%w: %v", model.ErrStoreUnavailable, ctx.Err())
			}
			delay *= 2
		}

		tx, err := s.db.BeginTxx(ctx, nil)
		if err != nil {
			lastErr = err
			continue
		}

		if err := fn(tx); err != nil {
			tx.Rollback()
			if isTransient(err) {
				lastErr = err
				continue
			}
			return err
		}

		if err := tx.Commit(); err != nil {
			if isTransient(err) {
				lastErr = err
				continue
			}
			return fmt.Errorf("failed to commit: %w", err)
		}
		return nil
	}
	log.Printf("Store transaction gave up after %d attempts: %v", maxRetries, lastErr)
	return fmt.Errorf("%w: %v", model.ErrStoreUnavailable, lastErr)
}

func isTransient(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "database table is locked")
}

// wrapGetErr maps driver errors to the core error kinds.
func wrapGetErr(err error, what string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", model.ErrNotFound, what)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", model.ErrStoreUnavailable, err)
	}
	return fmt.Errorf("failed to get %s: %w", what, err)
}
