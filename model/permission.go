package model

// PermissionLevel is the caller's tier for a given group.
type PermissionLevel string

const (
	LevelOwner  PermissionLevel = "owner" // global bot operator
	LevelAdmin  PermissionLevel = "admin" // per-group, from the platform roster
	LevelMember PermissionLevel = "member"
)

// Action is a named operation checked against the permission table.
type Action string

const (
	ActionMute   Action = "mute"
	ActionUnmute Action = "unmute"
	ActionBan    Action = "ban"
	ActionUnban  Action = "unban"
	ActionKick   Action = "kick"
	ActionWarn   Action = "warn"

	ActionHistory       Action = "history"
	ActionGroupSettings Action = "group_settings"

	ActionGlobalBan    Action = "global_ban"
	ActionBroadcast    Action = "broadcast"
	ActionOverallStats Action = "overall_stats"
	ActionAdjustTrust  Action = "adjust_trust"

	ActionProfile     Action = "profile"
	ActionLeaderboard Action = "leaderboard"
	ActionGroupStats  Action = "group_stats"
)
