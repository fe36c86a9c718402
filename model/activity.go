package model

// ActivityEvent is one observed message in a group, already decoded from the
// platform transport.
type ActivityEvent struct {
	GroupID    int64
	GroupTitle string
	GroupType  string

	UserID    int64
	Username  string
	FirstName string
	LastName  string
	IsBot     bool

	Content     string
	IsReply     bool
	HasEntities bool // mentions, links, attachments
	Timestamp   int64
}

// Reward is the computed payout for one accepted activity event.
type Reward struct {
	Coins int64
	XP    int64
}

// Reasons an activity event can be rejected without a reward.
const (
	RejectBot       = "bot account"
	RejectBanned    = "member is banned"
	RejectMuted     = "member is muted"
	RejectSpam      = "message failed anti-fraud checks"
	RejectThrottled = "message rate limit exceeded"
)

// RewardResult is the outcome of ProcessActivity. A rejected event carries a
// reason and zero reward; nothing was written for it.
type RewardResult struct {
	Accepted     bool
	RejectReason string

	Reward       Reward
	LeveledUp    bool
	NewLevel     int
	NewRank      string
	NewBadges    []Achievement
	QualityScore int
}
