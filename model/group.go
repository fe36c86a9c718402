package model

// Group types as reported by the platform.
const (
	GroupTypeGroup      = "group"
	GroupTypeSupergroup = "supergroup"
	GroupTypeChannel    = "channel"
)

// Group is one chat the bot moderates. MemberCount counts members with
// is_active set and is maintained in the same transaction as any change to
// that flag.
type Group struct {
	ID          int64  `db:"id"`
	Title       string `db:"title"`
	Type        string `db:"type"`
	MemberCount int64  `db:"member_count"`

	TotalMessages int64 `db:"total_messages"`
	DailyMessages int64 `db:"daily_messages"`

	MuteDurationHours int  `db:"mute_duration_hours"`
	WelcomeEnabled    bool `db:"welcome_enabled"`
	AntiSpam          bool `db:"anti_spam"`

	CreatedAt    int64 `db:"created_at"`
	LastActivity int64 `db:"last_activity"`
}

// ValidGroupType reports whether t is one of the known group types.
func ValidGroupType(t string) bool {
	switch t {
	case GroupTypeGroup, GroupTypeSupergroup, GroupTypeChannel:
		return true
	}
	return false
}
