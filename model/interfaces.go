package model

import (
	"context"
	"time"
)

// Clock supplies current time. Services take it instead of calling time.Now
// so schedules and expiries are testable.
type Clock interface {
	Now() time.Time
}

// AdminEntry is one elevated account from the platform's live roster.
type AdminEntry struct {
	UserID int64
	Status string // RoleAdmin or RoleCreator
}

// MembershipInfo queries the platform for the current admin roster of a
// group. The call may fail or time out; callers must not treat a failure as
// elevated privilege.
type MembershipInfo interface {
	GetAdmins(ctx context.Context, groupID int64) ([]AdminEntry, error)
}
