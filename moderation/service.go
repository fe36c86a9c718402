package moderation

import (
	"context"
	"fmt"
	"log"
	"time"

	"guardian-bot/model"
	"guardian-bot/permissions"
	"guardian-bot/utils"
)

// MemberStore is the member access the state machine needs. Every mutation is
// atomic on the store side, including the group's member_count.
type MemberStore interface {
	GetMember(ctx context.Context, groupID, userID int64) (*model.Member, error)
	SetMute(ctx context.Context, groupID, userID, until int64, reason string, now int64) error
	ClearMute(ctx context.Context, groupID, userID int64, now int64) error
	SetBan(ctx context.Context, groupID, userID int64, reason string, now int64) error
	ClearBan(ctx context.Context, groupID, userID int64, now int64) error
	SetLeft(ctx context.Context, groupID, userID int64, now int64) error
	AddWarning(ctx context.Context, groupID, userID int64, now int64) (int64, error)
	UserGroups(ctx context.Context, userID int64) ([]int64, error)
}

// GroupStore supplies group settings (the default mute duration).
type GroupStore interface {
	GetGroup(ctx context.Context, groupID int64) (*model.Group, error)
}

// AuditStore records every applied action.
type AuditStore interface {
	AddModerationAction(ctx context.Context, rec model.ModerationAction) (int64, error)
}

// PermissionResolver classifies actors and targets.
type PermissionResolver interface {
	Resolve(ctx context.Context, userID, groupID int64) model.PermissionLevel
}

// Service owns the member status transitions. All writes on one member go
// through the shared key lock so moderation never interleaves with a
// concurrent reward update on the same record.
type Service struct {
	members  MemberStore
	groups   GroupStore
	audit    AuditStore
	resolver PermissionResolver
	clock    model.Clock
	locks    *utils.KeyLock

	auditWebhookURL string
	timeout         time.Duration
}

func NewService(members MemberStore, groups GroupStore, audit AuditStore, resolver PermissionResolver, clock model.Clock, locks *utils.KeyLock, auditWebhookURL string, timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Service{
		members:         members,
		groups:          groups,
		audit:           audit,
		resolver:        resolver,
		clock:           clock,
		locks:           locks,
		auditWebhookURL: auditWebhookURL,
		timeout:         timeout,
	}
}

// Moderate dispatches one moderation request to its transition.
func (s *Service) Moderate(ctx context.Context, req model.ModerationRequest) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	switch req.Action {
	case model.ActionMute:
		return s.Mute(ctx, req.ActorID, req.TargetID, req.GroupID, time.Duration(req.DurationSeconds)*time.Second, req.Reason)
	case model.ActionUnmute:
		return s.Unmute(ctx, req.ActorID, req.TargetID, req.GroupID)
	case model.ActionBan:
		return s.Ban(ctx, req.ActorID, req.TargetID, req.GroupID, req.Reason)
	case model.ActionUnban:
		return s.Unban(ctx, req.ActorID, req.TargetID, req.GroupID)
	case model.ActionKick:
		return s.Kick(ctx, req.ActorID, req.TargetID, req.GroupID)
	case model.ActionWarn:
		_, err := s.Warn(ctx, req.ActorID, req.TargetID, req.GroupID, req.Reason)
		return err
	case model.ActionGlobalBan:
		return s.GlobalBan(ctx, req.ActorID, req.TargetID, req.Reason)
	default:
		return fmt.Errorf("%w: unknown action %q", model.ErrInvalidState, req.Action)
	}
}

// authorize checks the actor's tier against the action and, for actions that
// touch a member's standing, rejects protected targets: an admin may only be
// acted on by the owner.
func (s *Service) authorize(ctx context.Context, action model.Action, actorID, targetID, groupID int64) error {
	level := s.resolver.Resolve(ctx, actorID, groupID)
	if !permissions.Allowed(level, action) {
		return fmt.Errorf("%w: %s requires %s", model.ErrPermissionDenied, action, requiredTier(action))
	}

	if level == model.LevelOwner {
		return nil
	}

	switch action {
	case model.ActionMute, model.ActionBan, model.ActionKick:
		targetLevel := s.resolver.Resolve(ctx, targetID, groupID)
		if targetLevel == model.LevelAdmin || targetLevel == model.LevelOwner {
			return fmt.Errorf("%w: target is an admin and can only be moderated by the owner", model.ErrPermissionDenied)
		}
		if m, err := s.members.GetMember(ctx, groupID, targetID); err == nil && m.IsGroupStaff() {
			return fmt.Errorf("%w: target is group staff and can only be moderated by the owner", model.ErrPermissionDenied)
		}
	}
	return nil
}

func requiredTier(action model.Action) model.PermissionLevel {
	if permissions.Allowed(model.LevelAdmin, action) {
		return model.LevelAdmin
	}
	return model.LevelOwner
}

// Mute applies Active -> Muted. A zero duration uses the group default.
func (s *Service) Mute(ctx context.Context, actorID, targetID, groupID int64, duration time.Duration, reason string) error {
	if err := s.authorize(ctx, model.ActionMute, actorID, targetID, groupID); err != nil {
		return err
	}

	if duration <= 0 {
		g, err := s.groups.GetGroup(ctx, groupID)
		if err != nil {
			return err
		}
		duration = time.Duration(g.MuteDurationHours) * time.Hour
	}

	unlock := s.locks.Lock(utils.MemberKey(groupID, targetID))
	defer unlock()

	now := s.clock.Now()
	until := now.Add(duration).Unix()
	if err := s.members.SetMute(ctx, groupID, targetID, until, reason, now.Unix()); err != nil {
		return err
	}
	s.record(ctx, groupID, actorID, targetID, model.ActionMute, reason, int64(duration.Seconds()))
	return nil
}

// Unmute applies Muted -> Active explicitly.
func (s *Service) Unmute(ctx context.Context, actorID, targetID, groupID int64) error {
	if err := s.authorize(ctx, model.ActionUnmute, actorID, targetID, groupID); err != nil {
		return err
	}

	unlock := s.locks.Lock(utils.MemberKey(groupID, targetID))
	defer unlock()

	if err := s.members.ClearMute(ctx, groupID, targetID, s.clock.Now().Unix()); err != nil {
		return err
	}
	s.record(ctx, groupID, actorID, targetID, model.ActionUnmute, "", 0)
	return nil
}

// Ban applies Active|Muted -> Banned. The member goes inactive and the group
// count is adjusted in the same store transaction.
func (s *Service) Ban(ctx context.Context, actorID, targetID, groupID int64, reason string) error {
	if err := s.authorize(ctx, model.ActionBan, actorID, targetID, groupID); err != nil {
		return err
	}

	unlock := s.locks.Lock(utils.MemberKey(groupID, targetID))
	defer unlock()

	if err := s.members.SetBan(ctx, groupID, targetID, reason, s.clock.Now().Unix()); err != nil {
		return err
	}
	s.record(ctx, groupID, actorID, targetID, model.ActionBan, reason, 0)
	return nil
}

// Unban applies Banned -> Active.
func (s *Service) Unban(ctx context.Context, actorID, targetID, groupID int64) error {
	if err := s.authorize(ctx, model.ActionUnban, actorID, targetID, groupID); err != nil {
		return err
	}

	unlock := s.locks.Lock(utils.MemberKey(groupID, targetID))
	defer unlock()

	if err := s.members.ClearBan(ctx, groupID, targetID, s.clock.Now().Unix()); err != nil {
		return err
	}
	s.record(ctx, groupID, actorID, targetID, model.ActionUnban, "", 0)
	return nil
}

// Kick applies Active -> Left: inactive, but not banned, so the member may
// rejoin.
func (s *Service) Kick(ctx context.Context, actorID, targetID, groupID int64) error {
	if err := s.authorize(ctx, model.ActionKick, actorID, targetID, groupID); err != nil {
		return err
	}

	unlock := s.locks.Lock(utils.MemberKey(groupID, targetID))
	defer unlock()

	if err := s.members.SetLeft(ctx, groupID, targetID, s.clock.Now().Unix()); err != nil {
		return err
	}
	s.record(ctx, groupID, actorID, targetID, model.ActionKick, "", 0)
	return nil
}

// MarkLeft records a platform-reported departure. No permission check: the
// platform is authoritative about who left.
func (s *Service) MarkLeft(ctx context.Context, userID, groupID int64) error {
	unlock := s.locks.Lock(utils.MemberKey(groupID, userID))
	defer unlock()

	return s.members.SetLeft(ctx, groupID, userID, s.clock.Now().Unix())
}

// Warn bumps the member's warning counter and returns the new total.
func (s *Service) Warn(ctx context.Context, actorID, targetID, groupID int64, reason string) (int64, error) {
	if err := s.authorize(ctx, model.ActionWarn, actorID, targetID, groupID); err != nil {
		return 0, err
	}

	unlock := s.locks.Lock(utils.MemberKey(groupID, targetID))
	defer unlock()

	warnings, err := s.members.AddWarning(ctx, groupID, targetID, s.clock.Now().Unix())
	if err != nil {
		return 0, err
	}
	s.record(ctx, groupID, actorID, targetID, model.ActionWarn, reason, 0)
	return warnings, nil
}

// GlobalBan bans the target from every group they share with the bot.
// Owner only.
func (s *Service) GlobalBan(ctx context.Context, actorID, targetID int64, reason string) error {
	level := s.resolver.Resolve(ctx, actorID, 0)
	if !permissions.Allowed(level, model.ActionGlobalBan) {
		return fmt.Errorf("%w: global ban requires the owner", model.ErrPermissionDenied)
	}
	if reason == "" {
		reason = "Global ban by owner"
	}

	groupIDs, err := s.members.UserGroups(ctx, targetID)
	if err != nil {
		return err
	}

	now := s.clock.Now().Unix()
	var failed int
	for _, groupID := range groupIDs {
		unlock := s.locks.Lock(utils.MemberKey(groupID, targetID))
		err := s.members.SetBan(ctx, groupID, targetID, reason, now)
		unlock()
		if err != nil {
			failed++
			log.Printf("Global ban: failed to ban user %d in group %d: %v", targetID, groupID, err)
			continue
		}
		s.record(ctx, groupID, actorID, targetID, model.ActionGlobalBan, reason, 0)
	}
	if failed > 0 {
		return fmt.Errorf("global ban applied to %d of %d groups", len(groupIDs)-failed, len(groupIDs))
	}
	return nil
}

// record writes the audit row and webhook embed. Audit failures are logged,
// not propagated: the transition itself already succeeded.
func (s *Service) record(ctx context.Context, groupID, actorID, targetID int64, action model.Action, reason string, durationSeconds int64) {
	_, err := s.audit.AddModerationAction(ctx, model.ModerationAction{
		GroupID:         groupID,
		ActorID:         actorID,
		TargetID:        targetID,
		Action:          string(action),
		Reason:          reason,
		DurationSeconds: durationSeconds,
		CreatedAt:       s.clock.Now().Unix(),
	})
	if err != nil {
		log.Printf("Failed to record moderation action %s: %v", action, err)
	}

	if err := utils.LogModerationAction(s.auditWebhookURL, string(action), groupID, actorID, targetID, reason); err != nil {
		log.Printf("Failed to send moderation audit webhook: %v", err)
	}
}
