package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"guardian-bot/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testNow = int64(1_790_000_000)

func timeAt(unix int64) time.Time {
	return time.Unix(unix, 0)
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Init(filepath.Join(t.TempDir(), "guardian.db"), 24)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testEvent(groupID, userID int64) model.ActivityEvent {
	return model.ActivityEvent{
		GroupID:    groupID,
		GroupTitle: "Test Group",
		GroupType:  model.GroupTypeSupergroup,
		UserID:     userID,
		Username:   "tester",
		FirstName:  "Test",
		Content:    "hello world from the test",
		Timestamp:  testNow,
	}
}

// seed creates a user, group and active member for the event.
func seed(t *testing.T, s *Store, ev model.ActivityEvent) {
	t.Helper()
	ctx := context.Background()
	_, err := s.GetOrCreateUser(ctx, ev, testNow)
	require.NoError(t, err)
	_, err = s.GetOrCreateGroup(ctx, ev, testNow)
	require.NoError(t, err)
	_, err = s.GetOrCreateMember(ctx, ev.GroupID, ev.UserID, testNow)
	require.NoError(t, err)
}

func TestGetOrCreateUserDefaults(t *testing.T) {
	assert := assert.New(t)
	s := newTestStore(t)
	ctx := context.Background()

	u, err := s.GetOrCreateUser(ctx, testEvent(100, 1), testNow)
	require.NoError(t, err)

	assert.Equal(int64(1), u.ID)
	assert.Equal(1, u.Level)
	assert.Equal("Novice", u.Rank)
	assert.Equal(100, u.TrustScore)
	assert.Equal(testNow, u.FirstSeen)

	// Second call refreshes display fields without resetting anything.
	ev := testEvent(100, 1)
	ev.Username = "renamed"
	u, err = s.GetOrCreateUser(ctx, ev, testNow+10)
	require.NoError(t, err)
	assert.Equal("renamed", u.Username)
	assert.Equal(testNow, u.FirstSeen)
	assert.Equal(testNow+10, u.LastSeen)
}

func TestGetOrCreateUserRefreshesLastName(t *testing.T) {
	assert := assert.New(t)
	s := newTestStore(t)
	ctx := context.Background()

	ev := testEvent(100, 1)
	ev.LastName = "Smith"
	_, err := s.GetOrCreateUser(ctx, ev, testNow)
	require.NoError(t, err)

	ev.LastName = "Jones"
	_, err = s.GetOrCreateUser(ctx, ev, testNow+10)
	require.NoError(t, err)

	u, err := s.GetUser(ctx, 1)
	require.NoError(t, err)
	assert.Equal("Jones", u.LastName)
}

func TestGetOrCreateUserReadFailure(t *testing.T) {
	s := newTestStore(t)
	seed(t, s, testEvent(100, 1))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// A failed read must surface as a store error, not fall through into a
	// conflicting insert.
	_, err := s.GetOrCreateUser(ctx, testEvent(100, 1), testNow+10)
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "UNIQUE constraint")

	// The record is intact and readable afterwards.
	u, err := s.GetUser(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, testNow, u.FirstSeen)
}

func TestGetUserNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetUser(context.Background(), 42)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestMemberCountTracksActiveFlag(t *testing.T) {
	assert := assert.New(t)
	s := newTestStore(t)
	ctx := context.Background()

	ev := testEvent(100, 1)
	seed(t, s, ev)
	seed(t, s, testEvent(100, 2))

	g, err := s.GetGroup(ctx, 100)
	require.NoError(t, err)
	assert.Equal(int64(2), g.MemberCount)

	// Ban deactivates and the stored count follows in the same transaction.
	require.NoError(t, s.SetBan(ctx, 100, 1, "spam", testNow))
	g, _ = s.GetGroup(ctx, 100)
	assert.Equal(int64(1), g.MemberCount)

	recount, err := s.ActiveMemberCount(ctx, 100)
	require.NoError(t, err)
	assert.Equal(g.MemberCount, recount)

	// Unban restores it.
	require.NoError(t, s.ClearBan(ctx, 100, 1, testNow))
	g, _ = s.GetGroup(ctx, 100)
	assert.Equal(int64(2), g.MemberCount)

	// Leaving drops it again; rejoining through activity restores it.
	require.NoError(t, s.SetLeft(ctx, 100, 2, testNow))
	g, _ = s.GetGroup(ctx, 100)
	assert.Equal(int64(1), g.MemberCount)

	_, err = s.GetOrCreateMember(ctx, 100, 2, testNow+5)
	require.NoError(t, err)
	g, _ = s.GetGroup(ctx, 100)
	assert.Equal(int64(2), g.MemberCount)
}

func TestBanStateMachine(t *testing.T) {
	assert := assert.New(t)
	s := newTestStore(t)
	ctx := context.Background()
	seed(t, s, testEvent(100, 1))

	// Muted member can still be banned; the ban clears the mute.
	require.NoError(t, s.SetMute(ctx, 100, 1, testNow+3600, "cooling off", testNow))
	require.NoError(t, s.SetBan(ctx, 100, 1, "escalated", testNow))

	m, err := s.GetMember(ctx, 100, 1)
	require.NoError(t, err)
	assert.True(m.IsBanned)
	assert.False(m.IsMuted)
	assert.False(m.IsActive)

	// Double ban, muting a banned member, rejoining while banned: all invalid.
	assert.ErrorIs(s.SetBan(ctx, 100, 1, "again", testNow), model.ErrInvalidState)
	assert.ErrorIs(s.SetMute(ctx, 100, 1, testNow+60, "", testNow), model.ErrInvalidState)

	m2, err := s.GetOrCreateMember(ctx, 100, 1, testNow+10)
	require.NoError(t, err)
	assert.False(m2.IsActive, "a banned member must not be reactivated by activity")
}

func TestClearMuteRequiresMuted(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seed(t, s, testEvent(100, 1))

	assert.ErrorIs(t, s.ClearMute(ctx, 100, 1, testNow), model.ErrInvalidState)
}

func TestApplyReward(t *testing.T) {
	assert := assert.New(t)
	s := newTestStore(t)
	ctx := context.Background()
	ev := testEvent(100, 1)
	seed(t, s, ev)

	require.NoError(t, s.ApplyReward(ctx, ev, model.Reward{Coins: 16, XP: 6}, testNow))

	u, _ := s.GetUser(ctx, 1)
	assert.Equal(int64(16), u.Coins)
	assert.Equal(int64(6), u.XP)
	assert.Equal(int64(1), u.TotalMessages)
	assert.Equal(int64(1), u.DailyMessages)
	assert.Equal(ev.Content, u.LastMessage)

	m, _ := s.GetMember(ctx, 100, 1)
	assert.Equal(int64(16), m.CoinsEarned)
	assert.Equal(int64(1), m.MessagesCount)

	g, _ := s.GetGroup(ctx, 100)
	assert.Equal(int64(1), g.TotalMessages)
	assert.Equal(int64(1), g.DailyMessages)
}

func TestApplyRewardRequiresActiveMember(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	ev := testEvent(100, 1)
	seed(t, s, ev)
	require.NoError(t, s.SetLeft(ctx, 100, 1, testNow))

	err := s.ApplyReward(ctx, ev, model.Reward{Coins: 1, XP: 1}, testNow)
	assert.ErrorIs(t, err, model.ErrNotFound)

	// Nothing was credited.
	u, _ := s.GetUser(ctx, 1)
	assert.Zero(t, u.Coins)
}

func TestGrantAchievementIdempotent(t *testing.T) {
	assert := assert.New(t)
	s := newTestStore(t)
	ctx := context.Background()
	seed(t, s, testEvent(100, 1))

	badge := model.Achievement{
		UserID:      1,
		ID:          "100_messages",
		Name:        "Chatterbox",
		CoinsReward: 50,
		EarnedAt:    testNow,
	}

	granted, err := s.GrantAchievement(ctx, badge)
	require.NoError(t, err)
	assert.True(granted)

	granted, err = s.GrantAchievement(ctx, badge)
	require.NoError(t, err)
	assert.False(granted)

	// The coin reward was credited exactly once.
	u, _ := s.GetUser(ctx, 1)
	assert.Equal(int64(50), u.Coins)

	list, err := s.ListAchievements(ctx, 1)
	require.NoError(t, err)
	assert.Len(list, 1)
}

func TestRecordSpamDecaysTrust(t *testing.T) {
	assert := assert.New(t)
	s := newTestStore(t)
	ctx := context.Background()
	seed(t, s, testEvent(100, 1))

	for i := 0; i < 9; i++ {
		require.NoError(t, s.RecordSpam(ctx, 1))
	}
	u, _ := s.GetUser(ctx, 1)
	assert.Equal(100, u.TrustScore)

	// Tenth hit triggers the decay.
	require.NoError(t, s.RecordSpam(ctx, 1))
	u, _ = s.GetUser(ctx, 1)
	assert.Equal(95, u.TrustScore)
	assert.Equal(int64(10), u.SpamCount)
}

func TestSetTrustScore(t *testing.T) {
	assert := assert.New(t)
	s := newTestStore(t)
	ctx := context.Background()
	seed(t, s, testEvent(100, 1))

	require.NoError(t, s.SetTrustScore(ctx, 1, 40))
	u, _ := s.GetUser(ctx, 1)
	assert.Equal(40, u.TrustScore)

	assert.ErrorIs(s.SetTrustScore(ctx, 1, 150), model.ErrInvalidState)
	assert.ErrorIs(s.SetTrustScore(ctx, 99, 50), model.ErrNotFound)
}

func TestResetCountersAndWatermark(t *testing.T) {
	assert := assert.New(t)
	s := newTestStore(t)
	ctx := context.Background()
	ev := testEvent(100, 1)
	seed(t, s, ev)
	require.NoError(t, s.ApplyReward(ctx, ev, model.Reward{Coins: 5, XP: 2}, testNow))

	boundary := testNow + 1000
	require.NoError(t, s.ResetCounters(ctx, PeriodDaily, boundary))

	u, _ := s.GetUser(ctx, 1)
	assert.Zero(u.DailyMessages)
	assert.Equal(int64(1), u.WeeklyMessages, "other periods untouched")
	assert.Equal(int64(1), u.TotalMessages, "lifetime counters untouched")
	assert.Equal(int64(5), u.Coins, "economy balances untouched")

	m, _ := s.GetMember(ctx, 100, 1)
	assert.Zero(m.DailyMessages)

	g, _ := s.GetGroup(ctx, 100)
	assert.Zero(g.DailyMessages)
	assert.Equal(int64(1), g.TotalMessages)

	last, err := s.GetResetWatermark(ctx, PeriodDaily)
	require.NoError(t, err)
	assert.Equal(boundary, last)

	// Unknown period is rejected.
	assert.ErrorIs(s.ResetCounters(ctx, "hourly", boundary), model.ErrInvalidState)
}

func TestWatermarkDefaultsToZero(t *testing.T) {
	s := newTestStore(t)
	last, err := s.GetResetWatermark(context.Background(), PeriodWeekly)
	require.NoError(t, err)
	assert.Zero(t, last)
}

func TestUserGroupsOnlyActive(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seed(t, s, testEvent(100, 1))
	seed(t, s, testEvent(200, 1))
	require.NoError(t, s.SetLeft(ctx, 200, 1, testNow))

	groups, err := s.UserGroups(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []int64{100}, groups)
}

func TestModerationAudit(t *testing.T) {
	assert := assert.New(t)
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.AddModerationAction(ctx, model.ModerationAction{
		GroupID: 100, ActorID: 2, TargetID: 1,
		Action: "mute", Reason: "flooding", DurationSeconds: 5400,
		CreatedAt: testNow,
	})
	require.NoError(t, err)
	assert.Equal(int64(1), id)

	_, err = s.AddModerationAction(ctx, model.ModerationAction{
		GroupID: 100, ActorID: 2, TargetID: 1,
		Action: "ban", CreatedAt: testNow + 100,
	})
	require.NoError(t, err)

	records, err := s.ModerationActionsByTarget(ctx, 100, 1, nil)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal("ban", records[0].Action, "newest first")

	stats, err := s.ModerationStatsByActor(ctx, 100, timeAt(testNow))
	require.NoError(t, err)
	assert.Equal(2, stats[2])
}

func TestNewGroupUsesConfiguredMuteDefault(t *testing.T) {
	s, err := Init(filepath.Join(t.TempDir(), "guardian.db"), 48)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	g, err := s.GetOrCreateGroup(context.Background(), testEvent(100, 1), testNow)
	require.NoError(t, err)
	assert.Equal(t, 48, g.MuteDurationHours)
}

func TestGroupSettings(t *testing.T) {
	assert := assert.New(t)
	s := newTestStore(t)
	ctx := context.Background()
	seed(t, s, testEvent(100, 1))

	require.NoError(t, s.UpdateGroupSettings(ctx, 100, 48, false, true))
	g, _ := s.GetGroup(ctx, 100)
	assert.Equal(48, g.MuteDurationHours)
	assert.False(g.WelcomeEnabled)
	assert.True(g.AntiSpam)

	assert.ErrorIs(s.UpdateGroupSettings(ctx, 999, 1, true, true), model.ErrNotFound)
}
