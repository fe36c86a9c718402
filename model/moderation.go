package model

// ModerationAction is one audit row in the 'moderation_actions' table, written
// for every applied moderation action.
type ModerationAction struct {
	ActionID        int64  `db:"action_id"` // primary key, auto-increment
	GroupID         int64  `db:"group_id"`
	ActorID         int64  `db:"actor_id"`
	TargetID        int64  `db:"target_id"`
	Action          string `db:"action"` // mute, unmute, ban, unban, kick, warn, global_ban
	Reason          string `db:"reason"`
	DurationSeconds int64  `db:"duration_seconds"` // mutes only, 0 otherwise
	CreatedAt       int64  `db:"created_at"`
}

// ModerationRequest carries the parameters of one Moderate call.
type ModerationRequest struct {
	Action   Action
	ActorID  int64
	TargetID int64
	GroupID  int64

	Reason          string
	DurationSeconds int64 // mute duration; 0 means the group default
}
