package economy

import (
	"context"
	"fmt"
	"log"
	"time"

	"guardian-bot/model"
	"guardian-bot/utils"
)

// Base reward amounts and bonuses, applied additively and then scaled by the
// trust score.
const (
	baseCoins       = 1
	baseXP          = 1
	qualityCoins    = 2
	qualityXP       = 2
	engagementCoins = 3
	engagementXP    = 3
	levelBonusCoins = 10 // per level

	qualityThreshold = 70
	levelUpBonus     = 100 // per new level
)

// UserStore is the user access the engine needs.
type UserStore interface {
	GetOrCreateUser(ctx context.Context, ev model.ActivityEvent, now int64) (*model.User, error)
	SetUserLevel(ctx context.Context, userID int64, level int, rank string) error
	GrantAchievement(ctx context.Context, a model.Achievement) (bool, error)
	RecordSpam(ctx context.Context, userID int64) error
}

// MemberStore is the member access the engine needs.
type MemberStore interface {
	GetOrCreateMember(ctx context.Context, groupID, userID int64, now int64) (*model.Member, error)
}

// GroupStore is the group access the engine needs.
type GroupStore interface {
	GetOrCreateGroup(ctx context.Context, ev model.ActivityEvent, now int64) (*model.Group, error)
}

// RewardStore applies an accepted reward as one transaction.
type RewardStore interface {
	ApplyReward(ctx context.Context, ev model.ActivityEvent, r model.Reward, now int64) error
}

// Engine computes and applies rewards for observed activity, then runs the
// leveling and achievement rules.
type Engine struct {
	users   UserStore
	members MemberStore
	groups  GroupStore
	rewards RewardStore
	clock   model.Clock
	locks   *utils.KeyLock
	fraud   *Validator
	timeout time.Duration
}

func NewEngine(users UserStore, members MemberStore, groups GroupStore, rewards RewardStore, clock model.Clock, locks *utils.KeyLock, fraud *Validator, timeout time.Duration) *Engine {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Engine{
		users:   users,
		members: members,
		groups:  groups,
		rewards: rewards,
		clock:   clock,
		locks:   locks,
		fraud:   fraud,
		timeout: timeout,
	}
}

func rejected(reason string) *model.RewardResult {
	return &model.RewardResult{Accepted: false, RejectReason: reason}
}

// ProcessActivity handles one observed message: membership gate, anti-fraud
// gate, reward, leveling, achievements. Events for the same (group, user)
// key are serialized; a store timeout drops the event rather than retrying
// into a duplicate reward.
func (e *Engine) ProcessActivity(ctx context.Context, ev model.ActivityEvent) (*model.RewardResult, error) {
	if ev.IsBot {
		return rejected(model.RejectBot), nil
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	unlock := e.locks.Lock(utils.MemberKey(ev.GroupID, ev.UserID))
	defer unlock()

	now := e.clock.Now()

	user, err := e.users.GetOrCreateUser(ctx, ev, now.Unix())
	if err != nil {
		return nil, err
	}
	group, err := e.groups.GetOrCreateGroup(ctx, ev, now.Unix())
	if err != nil {
		return nil, err
	}
	member, err := e.members.GetOrCreateMember(ctx, ev.GroupID, ev.UserID, now.Unix())
	if err != nil {
		return nil, err
	}

	if member.IsBanned {
		return rejected(model.RejectBanned), nil
	}
	if member.EffectivelyMuted(now) {
		return rejected(model.RejectMuted), nil
	}

	if group.AntiSpam {
		if ok, reason := e.fraud.Check(ev, user); !ok {
			if err := e.users.RecordSpam(ctx, user.ID); err != nil {
				log.Printf("Failed to record spam for user %d: %v", user.ID, err)
			}
			return rejected(reason), nil
		}
	}

	reward, quality := ComputeReward(ev, user)
	if err := e.rewards.ApplyReward(ctx, ev, reward, now.Unix()); err != nil {
		return nil, err
	}

	res := &model.RewardResult{
		Accepted:     true,
		Reward:       reward,
		QualityScore: quality,
	}

	// Post-apply snapshot the rules run against.
	user.XP += reward.XP
	user.Coins += reward.Coins
	user.TotalMessages++

	e.checkLevelUp(ctx, user, res, now.Unix())
	e.checkAchievements(ctx, user, res, now.Unix())
	return res, nil
}

// ComputeReward calculates the payout for a valid message: base amounts,
// quality and engagement bonuses, a level bonus, then trust scaling floored
// to integers.
func ComputeReward(ev model.ActivityEvent, user *model.User) (model.Reward, int) {
	coins := int64(baseCoins)
	xp := int64(baseXP)

	quality := QualityScore(ev)
	if quality > qualityThreshold {
		coins += qualityCoins
		xp += qualityXP
	}

	if ev.IsReply {
		coins += engagementCoins
		xp += engagementXP
	}

	coins += int64(user.Level) * levelBonusCoins

	trust := int64(user.TrustScore)
	coins = coins * trust / 100
	xp = xp * trust / 100

	return model.Reward{Coins: coins, XP: xp}, quality
}

// checkLevelUp promotes the user when lifetime xp crosses a threshold. The
// one-time bonus rides on the level_<n> achievement so a re-check can never
// pay twice.
func (e *Engine) checkLevelUp(ctx context.Context, user *model.User, res *model.RewardResult, now int64) {
	newLevel := model.LevelForXP(user.XP)
	if newLevel <= user.Level {
		return
	}

	rank := model.RankForLevel(newLevel)
	if err := e.users.SetUserLevel(ctx, user.ID, newLevel, rank); err != nil {
		log.Printf("Failed to set level %d for user %d: %v", newLevel, user.ID, err)
		return
	}
	user.Level = newLevel
	user.Rank = rank

	badge := model.Achievement{
		UserID:      user.ID,
		ID:          levelAchievementID(newLevel),
		Name:        fmt.Sprintf("Reached level %d", newLevel),
		CoinsReward: int64(newLevel) * levelUpBonus,
		EarnedAt:    now,
	}
	granted, err := e.users.GrantAchievement(ctx, badge)
	if err != nil {
		log.Printf("Failed to grant level achievement for user %d: %v", user.ID, err)
		return
	}

	res.LeveledUp = true
	res.NewLevel = newLevel
	res.NewRank = rank
	if granted {
		res.NewBadges = append(res.NewBadges, badge)
	}
	log.Printf("User %d leveled up to %d (%s)", user.ID, newLevel, rank)
}

// levelAchievementID is deliberately distinct from the rule-table ids so the
// level_3 milestone badge and the level-up bonus can both be granted.
func levelAchievementID(level int) string {
	return fmt.Sprintf("levelup_%d", level)
}

// checkAchievements evaluates the fixed rule table against the post-reward
// snapshot. Grants are idempotent per achievement id.
func (e *Engine) checkAchievements(ctx context.Context, user *model.User, res *model.RewardResult, now int64) {
	for _, rule := range achievementRules {
		if !rule.Qualifies(user) {
			continue
		}
		badge := model.Achievement{
			UserID:      user.ID,
			ID:          rule.ID,
			Name:        rule.Name,
			CoinsReward: rule.CoinsReward,
			EarnedAt:    now,
		}
		granted, err := e.users.GrantAchievement(ctx, badge)
		if err != nil {
			log.Printf("Failed to grant achievement %s for user %d: %v", rule.ID, user.ID, err)
			continue
		}
		if granted {
			res.NewBadges = append(res.NewBadges, badge)
			log.Printf("User %d earned achievement: %s", user.ID, rule.Name)
		}
	}
}
