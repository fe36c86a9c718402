package model

// User is the process-wide identity for one platform account. Economy totals
// (coins, xp, level) live here and nowhere else; per-group copies in Member
// are a read-mostly cache.
type User struct {
	ID         int64  `db:"id"` // platform id, immutable
	Username   string `db:"username"`
	FirstName  string `db:"first_name"`
	LastName   string `db:"last_name"`
	IsBot      bool   `db:"is_bot"`
	IsBotOwner bool   `db:"is_bot_owner"`

	Coins int64  `db:"coins"`
	XP    int64  `db:"xp"`
	Level int    `db:"level"`
	Rank  string `db:"rank"`

	TotalMessages   int64 `db:"total_messages"`
	DailyMessages   int64 `db:"daily_messages"`
	WeeklyMessages  int64 `db:"weekly_messages"`
	MonthlyMessages int64 `db:"monthly_messages"`

	TrustScore  int    `db:"trust_score"` // 0-100 anti-fraud multiplier
	SpamCount   int64  `db:"spam_count"`
	LastMessage string `db:"last_message"`

	FirstSeen int64 `db:"first_seen"` // unix seconds
	LastSeen  int64 `db:"last_seen"`
}

// Achievement is a one-time grant; (user_id, id) is unique so re-checking a
// rule can never double-grant.
type Achievement struct {
	UserID      int64  `db:"user_id"`
	ID          string `db:"id"`
	Name        string `db:"name"`
	CoinsReward int64  `db:"coins_reward"`
	EarnedAt    int64  `db:"earned_at"`
}

// DisplayName returns the best human-readable name for the user.
func (u *User) DisplayName() string {
	if u.Username != "" {
		return "@" + u.Username
	}
	if u.LastName != "" {
		return u.FirstName + " " + u.LastName
	}
	return u.FirstName
}
