package moderation

import (
	"context"
	"fmt"
	"testing"
	"time"

	"guardian-bot/model"
	"guardian-bot/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

var testNow = time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

// fakeMembers keeps member records in memory and applies the same state
// preconditions the real store enforces.
type fakeMembers struct {
	members map[string]*model.Member
	groups  map[int64][]int64 // userID -> group ids
}

func newFakeMembers() *fakeMembers {
	return &fakeMembers{
		members: make(map[string]*model.Member),
		groups:  make(map[int64][]int64),
	}
}

func (f *fakeMembers) add(m *model.Member) {
	f.members[utils.MemberKey(m.GroupID, m.UserID)] = m
	f.groups[m.UserID] = append(f.groups[m.UserID], m.GroupID)
}

func (f *fakeMembers) get(groupID, userID int64) (*model.Member, error) {
	m, ok := f.members[utils.MemberKey(groupID, userID)]
	if !ok {
		return nil, fmt.Errorf("member %d/%d: %w", groupID, userID, model.ErrNotFound)
	}
	return m, nil
}

func (f *fakeMembers) GetMember(ctx context.Context, groupID, userID int64) (*model.Member, error) {
	return f.get(groupID, userID)
}

func (f *fakeMembers) SetMute(ctx context.Context, groupID, userID, until int64, reason string, now int64) error {
	m, err := f.get(groupID, userID)
	if err != nil {
		return err
	}
	if m.IsBanned {
		return fmt.Errorf("cannot mute a banned member: %w", model.ErrInvalidState)
	}
	m.IsMuted = true
	m.MutedUntil = until
	m.MuteReason = reason
	return nil
}

func (f *fakeMembers) ClearMute(ctx context.Context, groupID, userID int64, now int64) error {
	m, err := f.get(groupID, userID)
	if err != nil {
		return err
	}
	if !m.IsMuted {
		return fmt.Errorf("member is not muted: %w", model.ErrInvalidState)
	}
	m.IsMuted = false
	m.MutedUntil = 0
	m.MuteReason = ""
	return nil
}

func (f *fakeMembers) SetBan(ctx context.Context, groupID, userID int64, reason string, now int64) error {
	m, err := f.get(groupID, userID)
	if err != nil {
		return err
	}
	if m.IsBanned {
		return fmt.Errorf("member is already banned: %w", model.ErrInvalidState)
	}
	m.IsBanned = true
	m.BanReason = reason
	m.BannedAt = now
	m.IsActive = false
	m.IsMuted = false
	return nil
}

func (f *fakeMembers) ClearBan(ctx context.Context, groupID, userID int64, now int64) error {
	m, err := f.get(groupID, userID)
	if err != nil {
		return err
	}
	if !m.IsBanned {
		return fmt.Errorf("member is not banned: %w", model.ErrInvalidState)
	}
	m.IsBanned = false
	m.BanReason = ""
	m.IsActive = true
	return nil
}

func (f *fakeMembers) SetLeft(ctx context.Context, groupID, userID int64, now int64) error {
	m, err := f.get(groupID, userID)
	if err != nil {
		return err
	}
	if !m.IsActive {
		return fmt.Errorf("member is not active: %w", model.ErrInvalidState)
	}
	m.IsActive = false
	return nil
}

func (f *fakeMembers) AddWarning(ctx context.Context, groupID, userID int64, now int64) (int64, error) {
	m, err := f.get(groupID, userID)
	if err != nil {
		return 0, err
	}
	m.Warnings++
	m.LastWarningAt = now
	return m.Warnings, nil
}

func (f *fakeMembers) UserGroups(ctx context.Context, userID int64) ([]int64, error) {
	return f.groups[userID], nil
}

type fakeGroups struct{}

func (fakeGroups) GetGroup(ctx context.Context, groupID int64) (*model.Group, error) {
	return &model.Group{ID: groupID, MuteDurationHours: 24}, nil
}

type fakeAudit struct {
	records []model.ModerationAction
}

func (f *fakeAudit) AddModerationAction(ctx context.Context, rec model.ModerationAction) (int64, error) {
	f.records = append(f.records, rec)
	return int64(len(f.records)), nil
}

// fakeResolver maps user ids to tiers; unknown users are members.
type fakeResolver map[int64]model.PermissionLevel

func (f fakeResolver) Resolve(ctx context.Context, userID, groupID int64) model.PermissionLevel {
	if level, ok := f[userID]; ok {
		return level
	}
	return model.LevelMember
}

const (
	ownerID  = int64(1)
	adminID  = int64(2)
	admin2ID = int64(3)
	memberID = int64(10)
	groupID  = int64(100)
)

func newTestService() (*Service, *fakeMembers, *fakeAudit) {
	members := newFakeMembers()
	members.add(&model.Member{GroupID: groupID, UserID: memberID, Role: model.RoleMember, IsActive: true})
	members.add(&model.Member{GroupID: groupID, UserID: adminID, Role: model.RoleAdmin, IsActive: true})
	members.add(&model.Member{GroupID: groupID, UserID: admin2ID, Role: model.RoleAdmin, IsActive: true})

	audit := &fakeAudit{}
	resolver := fakeResolver{
		ownerID:  model.LevelOwner,
		adminID:  model.LevelAdmin,
		admin2ID: model.LevelAdmin,
	}
	svc := NewService(members, fakeGroups{}, audit, resolver, fixedClock{t: testNow}, utils.NewKeyLock(), "", 0)
	return svc, members, audit
}

func TestNewServiceTimeout(t *testing.T) {
	svc := NewService(newFakeMembers(), fakeGroups{}, &fakeAudit{}, fakeResolver{}, fixedClock{t: testNow}, utils.NewKeyLock(), "", 5*time.Second)
	assert.Equal(t, 5*time.Second, svc.timeout)

	svc = NewService(newFakeMembers(), fakeGroups{}, &fakeAudit{}, fakeResolver{}, fixedClock{t: testNow}, utils.NewKeyLock(), "", 0)
	assert.Equal(t, 10*time.Second, svc.timeout)
}

func TestMuteByAdmin(t *testing.T) {
	assert := assert.New(t)
	svc, members, audit := newTestService()

	err := svc.Mute(context.Background(), adminID, memberID, groupID, 90*time.Minute, "flooding")
	require.NoError(t, err)

	m, _ := members.get(groupID, memberID)
	assert.True(m.IsMuted)
	assert.Equal(testNow.Add(90*time.Minute).Unix(), m.MutedUntil)
	assert.Equal("flooding", m.MuteReason)

	require.Len(t, audit.records, 1)
	assert.Equal(string(model.ActionMute), audit.records[0].Action)
	assert.Equal(int64(90*60), audit.records[0].DurationSeconds)
}

func TestMuteDefaultDuration(t *testing.T) {
	svc, members, _ := newTestService()

	err := svc.Mute(context.Background(), adminID, memberID, groupID, 0, "")
	require.NoError(t, err)

	m, _ := members.get(groupID, memberID)
	assert.Equal(t, testNow.Add(24*time.Hour).Unix(), m.MutedUntil)
}

func TestAdminCannotMuteAdmin(t *testing.T) {
	svc, members, audit := newTestService()

	err := svc.Mute(context.Background(), adminID, admin2ID, groupID, time.Hour, "")
	assert.ErrorIs(t, err, model.ErrPermissionDenied)

	m, _ := members.get(groupID, admin2ID)
	assert.False(t, m.IsMuted)
	assert.Empty(t, audit.records)
}

func TestOwnerCanMuteAdmin(t *testing.T) {
	svc, members, _ := newTestService()

	err := svc.Mute(context.Background(), ownerID, admin2ID, groupID, time.Hour, "")
	require.NoError(t, err)

	m, _ := members.get(groupID, admin2ID)
	assert.True(t, m.IsMuted)
}

func TestMemberCannotModerate(t *testing.T) {
	svc, _, _ := newTestService()

	err := svc.Ban(context.Background(), memberID, adminID, groupID, "")
	assert.ErrorIs(t, err, model.ErrPermissionDenied)
}

func TestUnmuteNotMuted(t *testing.T) {
	svc, _, audit := newTestService()

	err := svc.Unmute(context.Background(), adminID, memberID, groupID)
	assert.ErrorIs(t, err, model.ErrInvalidState)
	assert.Empty(t, audit.records)
}

func TestBanDeactivates(t *testing.T) {
	assert := assert.New(t)
	svc, members, audit := newTestService()

	err := svc.Ban(context.Background(), adminID, memberID, groupID, "repeated spam")
	require.NoError(t, err)

	m, _ := members.get(groupID, memberID)
	assert.True(m.IsBanned)
	assert.False(m.IsActive)
	assert.Equal("repeated spam", m.BanReason)
	require.Len(t, audit.records, 1)

	// Banning again is a state error, not a second audit row.
	err = svc.Ban(context.Background(), adminID, memberID, groupID, "again")
	assert.ErrorIs(err, model.ErrInvalidState)
	assert.Len(audit.records, 1)
}

func TestUnbanReactivates(t *testing.T) {
	svc, members, _ := newTestService()

	require.NoError(t, svc.Ban(context.Background(), adminID, memberID, groupID, ""))
	require.NoError(t, svc.Unban(context.Background(), adminID, memberID, groupID))

	m, _ := members.get(groupID, memberID)
	assert.False(t, m.IsBanned)
	assert.True(t, m.IsActive)
}

func TestWarnCountsUp(t *testing.T) {
	svc, _, _ := newTestService()

	for want := int64(1); want <= 3; want++ {
		got, err := svc.Warn(context.Background(), adminID, memberID, groupID, "rule violation")
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestMarkLeftNeedsNoPermission(t *testing.T) {
	svc, members, _ := newTestService()

	err := svc.MarkLeft(context.Background(), memberID, groupID)
	require.NoError(t, err)

	m, _ := members.get(groupID, memberID)
	assert.False(t, m.IsActive)
}

func TestGlobalBan(t *testing.T) {
	assert := assert.New(t)
	svc, members, audit := newTestService()
	members.add(&model.Member{GroupID: 200, UserID: memberID, Role: model.RoleMember, IsActive: true})

	err := svc.GlobalBan(context.Background(), ownerID, memberID, "")
	require.NoError(t, err)

	for _, gid := range []int64{groupID, 200} {
		m, _ := members.get(gid, memberID)
		assert.True(m.IsBanned, "group %d", gid)
	}
	assert.Len(audit.records, 2)
}

func TestGlobalBanOwnerOnly(t *testing.T) {
	svc, _, _ := newTestService()

	err := svc.GlobalBan(context.Background(), adminID, memberID, "")
	assert.ErrorIs(t, err, model.ErrPermissionDenied)
}
