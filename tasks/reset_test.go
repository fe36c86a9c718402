package tasks

import (
	"context"
	"testing"
	"time"

	"guardian-bot/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

type fakeResetStore struct {
	watermarks map[string]int64
	resets     []string
}

func newFakeResetStore() *fakeResetStore {
	return &fakeResetStore{watermarks: make(map[string]int64)}
}

func (f *fakeResetStore) GetResetWatermark(ctx context.Context, period string) (int64, error) {
	return f.watermarks[period], nil
}

func (f *fakeResetStore) ResetCounters(ctx context.Context, period string, boundary int64) error {
	f.resets = append(f.resets, period)
	f.watermarks[period] = boundary
	return nil
}

// Monday afternoon.
var tickTime = time.Date(2026, 8, 31, 15, 30, 0, 0, time.UTC)

func TestPeriodStart(t *testing.T) {
	assert := assert.New(t)

	testCases := []struct {
		period string
		want   time.Time
	}{
		{PeriodDaily, time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)},
		{PeriodWeekly, time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)}, // Sunday
		{PeriodMonthly, time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)},
	}

	for _, c := range testCases {
		got, err := PeriodStart(c.period, tickTime)
		require.NoError(t, err)
		assert.Equal(c.want, got, c.period)
	}
}

func TestPeriodStartOnSunday(t *testing.T) {
	sunday := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	got, err := PeriodStart(PeriodWeekly, sunday)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC), got)
}

func TestPeriodStartUnknown(t *testing.T) {
	_, err := PeriodStart("hourly", tickTime)
	assert.ErrorIs(t, err, model.ErrInvalidState)
}

func TestRunPeriodicResetIdempotent(t *testing.T) {
	assert := assert.New(t)
	store := newFakeResetStore()
	s := NewResetScheduler(store, fixedClock{t: tickTime}, "")

	require.NoError(t, s.RunPeriodicReset(context.Background(), PeriodDaily))
	assert.Len(store.resets, 1)

	// Same day, later tick: the watermark already covers this boundary.
	require.NoError(t, s.RunPeriodicReset(context.Background(), PeriodDaily))
	assert.Len(store.resets, 1)
}

func TestRunPeriodicResetCrossesBoundary(t *testing.T) {
	store := newFakeResetStore()

	s := NewResetScheduler(store, fixedClock{t: tickTime}, "")
	require.NoError(t, s.RunPeriodicReset(context.Background(), PeriodDaily))

	// Next day's first tick fires again.
	s = NewResetScheduler(store, fixedClock{t: tickTime.Add(24 * time.Hour)}, "")
	require.NoError(t, s.RunPeriodicReset(context.Background(), PeriodDaily))
	assert.Len(t, store.resets, 2)
}

func TestRunPeriodicResetCatchesUpAfterDowntime(t *testing.T) {
	store := newFakeResetStore()
	// Last reset was a week ago; the next tick catches up immediately even
	// though no tick fired at the boundary itself.
	week, _ := PeriodStart(PeriodDaily, tickTime.AddDate(0, 0, -7))
	store.watermarks[PeriodDaily] = week.Unix()

	s := NewResetScheduler(store, fixedClock{t: tickTime}, "")
	require.NoError(t, s.RunPeriodicReset(context.Background(), PeriodDaily))
	assert.Len(t, store.resets, 1)
}

func TestTickAllRunsEveryPeriod(t *testing.T) {
	store := newFakeResetStore()
	s := NewResetScheduler(store, fixedClock{t: tickTime}, "")

	s.TickAll(context.Background())
	assert.ElementsMatch(t, []string{PeriodDaily, PeriodWeekly, PeriodMonthly}, store.resets)

	s.TickAll(context.Background())
	assert.Len(t, store.resets, 3)
}
