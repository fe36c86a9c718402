package database

import (
	"context"
	"fmt"
	"time"

	"guardian-bot/model"
)

// AddModerationAction appends one audit row and returns its id.
func (s *Store) AddModerationAction(ctx context.Context, rec model.ModerationAction) (int64, error) {
	res, err := s.db.NamedExecContext(ctx, `INSERT INTO moderation_actions
		(group_id, actor_id, target_id, action, reason, duration_seconds, created_at)
		VALUES (:group_id, :actor_id, :target_id, :action, :reason, :duration_seconds, :created_at)`, &rec)
	if err != nil {
		return 0, fmt.Errorf("failed to insert moderation action: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID: %w", err)
	}
	return id, nil
}

// ModerationActionsByTarget retrieves the audit trail for a user in a group,
// optionally filtered by a start time.
func (s *Store) ModerationActionsByTarget(ctx context.Context, groupID, targetID int64, since *time.Time) ([]model.ModerationAction, error) {
	var records []model.ModerationAction
	query := "SELECT * FROM moderation_actions WHERE group_id = ? AND target_id = ?"
	args := []interface{}{groupID, targetID}
	if since != nil {
		query += " AND created_at >= ?"
		args = append(args, since.Unix())
	}
	query += " ORDER BY created_at DESC"

	if err := s.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, fmt.Errorf("failed to get moderation actions for user %d in group %d: %w", targetID, groupID, err)
	}
	return records, nil
}

// ModerationStatsByActor counts actions per moderator within a time range.
func (s *Store) ModerationStatsByActor(ctx context.Context, groupID int64, since time.Time) (map[int64]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT actor_id, COUNT(*) as count
		FROM moderation_actions WHERE group_id = ? AND created_at >= ?
		GROUP BY actor_id ORDER BY count DESC`, groupID, since.Unix())
	if err != nil {
		return nil, fmt.Errorf("failed to get moderation stats for group %d: %w", groupID, err)
	}
	defer rows.Close()

	stats := make(map[int64]int)
	for rows.Next() {
		var actorID int64
		var count int
		if err := rows.Scan(&actorID, &count); err != nil {
			return nil, fmt.Errorf("failed to scan moderation stats row: %w", err)
		}
		stats[actorID] = count
	}
	return stats, nil
}
