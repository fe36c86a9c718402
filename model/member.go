package model

import "time"

// Member roles as stored per group.
const (
	RoleMember  = "member"
	RoleAdmin   = "admin"
	RoleCreator = "creator"
)

// Member is the (group, user) relationship record: per-group counters and all
// moderation status. It is the single canonical representation of membership;
// there is no embedded copy inside Group.
type Member struct {
	GroupID int64  `db:"group_id"`
	UserID  int64  `db:"user_id"`
	Role    string `db:"role"`

	MessagesCount   int64 `db:"messages_count"`
	DailyMessages   int64 `db:"daily_messages"`
	WeeklyMessages  int64 `db:"weekly_messages"`
	MonthlyMessages int64 `db:"monthly_messages"`
	CoinsEarned     int64 `db:"coins_earned"`
	XPEarned        int64 `db:"xp_earned"`

	Warnings      int64 `db:"warnings"`
	LastWarningAt int64 `db:"last_warning_at"` // unix seconds, 0 = never

	JoinedAt     int64 `db:"joined_at"`
	LastActivity int64 `db:"last_activity"`

	IsActive   bool   `db:"is_active"`
	IsMuted    bool   `db:"is_muted"`
	MutedUntil int64  `db:"muted_until"` // unix seconds, 0 = none
	MuteReason string `db:"mute_reason"`
	IsBanned   bool   `db:"is_banned"`
	BanReason  string `db:"ban_reason"`
	BannedAt   int64  `db:"banned_at"` // unix seconds, 0 = never
}

// EffectivelyMuted reports whether the member is muted right now. The stored
// flag may outlive the mute; expiry is evaluated here instead of by a
// background sweep.
func (m *Member) EffectivelyMuted(now time.Time) bool {
	return m.IsMuted && m.MutedUntil > now.Unix()
}

// IsGroupStaff reports whether the stored role is admin or creator.
func (m *Member) IsGroupStaff() bool {
	return m.Role == RoleAdmin || m.Role == RoleCreator
}

// ValidRole reports whether r is one of the known member roles.
func ValidRole(r string) bool {
	switch r {
	case RoleMember, RoleAdmin, RoleCreator:
		return true
	}
	return false
}
