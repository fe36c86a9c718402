package economy

import "guardian-bot/model"

// achievementRule is one row of the fixed rule table, evaluated after every
// reward application. Granting is idempotent on the achievement id.
type achievementRule struct {
	ID          string
	Name        string
	CoinsReward int64
	Qualifies   func(u *model.User) bool
}

var achievementRules = []achievementRule{
	{
		ID:          "100_messages",
		Name:        "Chatterbox",
		CoinsReward: 50,
		Qualifies:   func(u *model.User) bool { return u.TotalMessages >= 100 },
	},
	{
		ID:          "1000_messages",
		Name:        "Professional Chatterbox",
		CoinsReward: 200,
		Qualifies:   func(u *model.User) bool { return u.TotalMessages >= 1000 },
	},
	{
		ID:          "level_3",
		Name:        "Advanced",
		CoinsReward: 100,
		Qualifies:   func(u *model.User) bool { return u.Level >= 3 },
	},
}
