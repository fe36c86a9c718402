package permissions

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"guardian-bot/model"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// UserStore is the slice of storage the resolver needs.
type UserStore interface {
	GetUser(ctx context.Context, userID int64) (*model.User, error)
}

// Resolver maps (user, group) to a permission tier. The owner check is
// global; admin status comes from the platform roster, cached with a TTL so
// every message does not hit the platform API.
type Resolver struct {
	ownerID int64
	users   UserStore
	info    model.MembershipInfo

	rosterCache *expirable.LRU[int64, map[int64]string]
	timeout     time.Duration
}

// NewResolver builds a resolver. Cache capacity of zero means unlimited size;
// ttl of zero disables expiry.
func NewResolver(ownerID int64, users UserStore, info model.MembershipInfo, cacheSize int, cacheTTL time.Duration) *Resolver {
	return &Resolver{
		ownerID:     ownerID,
		users:       users,
		info:        info,
		rosterCache: expirable.NewLRU[int64, map[int64]string](cacheSize, nil, cacheTTL),
		timeout:     5 * time.Second,
	}
}

// Resolve returns the caller's tier for the group. A roster failure degrades
// to member: the resolver never fails open into elevated privilege.
func (r *Resolver) Resolve(ctx context.Context, userID, groupID int64) model.PermissionLevel {
	if userID == r.ownerID && r.ownerID != 0 {
		return model.LevelOwner
	}

	if u, err := r.users.GetUser(ctx, userID); err == nil && u.IsBotOwner {
		return model.LevelOwner
	} else if err != nil && !errors.Is(err, model.ErrNotFound) {
		log.Printf("Permission resolver: user lookup failed for %d: %v", userID, err)
	}

	roster, err := r.adminRoster(ctx, groupID)
	if err != nil {
		log.Printf("Permission resolver: roster lookup failed for group %d, degrading to member: %v", groupID, err)
		return model.LevelMember
	}
	if _, ok := roster[userID]; ok {
		return model.LevelAdmin
	}
	return model.LevelMember
}

// IsProtected reports whether the target may only be acted on by the owner:
// admins cannot be muted, banned or kicked by other admins.
func (r *Resolver) IsProtected(ctx context.Context, userID, groupID int64) bool {
	level := r.Resolve(ctx, userID, groupID)
	return level == model.LevelAdmin || level == model.LevelOwner
}

// InvalidateRoster drops the cached roster for a group, e.g. after the
// platform reports an admin change.
func (r *Resolver) InvalidateRoster(groupID int64) {
	r.rosterCache.Remove(groupID)
}

func (r *Resolver) adminRoster(ctx context.Context, groupID int64) (map[int64]string, error) {
	if roster, ok := r.rosterCache.Get(groupID); ok {
		return roster, nil
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	admins, err := r.info.GetAdmins(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrUpstreamUnavailable, err)
	}

	roster := make(map[int64]string, len(admins))
	for _, a := range admins {
		roster[a.UserID] = a.Status
	}
	r.rosterCache.Add(groupID, roster)
	return roster, nil
}
