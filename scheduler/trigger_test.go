package scheduler

import (
	"testing"
	"time"

	"github.com/Luismorlan/newsportal/model"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock advances only when the trigger sleeps.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time        { return c.now }
func (c *fakeClock) Sleep(d time.Duration) { c.now = c.now.Add(d) }

type fakeRunStore struct {
	last      *model.DigestRun
	lastErr   error
	recordErr error
}

func (f *fakeRunStore) LastDigestRun() (*model.DigestRun, error) {
	if f.lastErr != nil {
		return nil, f.lastErr
	}
	return f.last, nil
}

func (f *fakeRunStore) RecordDigestRun(firedAt time.Time, emailsSent int) error {
	if f.recordErr != nil {
		return f.recordErr
	}
	f.last = &model.DigestRun{FiredAt: firedAt, EmailsSent: emailsSent}
	return nil
}

// 2026-08-31 is a Monday.
var monday0900 = time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)

func newTestTrigger(clock Clock, runs RunStore, fire func(since time.Time) (int, error)) *WeeklyTrigger {
	return NewWeeklyTrigger(Config{
		Name:    "test_trigger",
		Weekday: time.Monday,
		Hour:    9,
		Minute:  0,
	}, runs, clock, fire)
}

func TestPollFiresAtWeeklyInstant(t *testing.T) {
	clock := &fakeClock{now: monday0900.Add(10 * time.Second)}
	runs := &fakeRunStore{}
	fired := 0
	var since time.Time

	trigger := newTestTrigger(clock, runs, func(s time.Time) (int, error) {
		fired++
		since = s
		return 5, nil
	})

	firedAt := clock.Now()
	require.NoError(t, trigger.pollOnce())
	assert.Equal(t, 1, fired)
	assert.Equal(t, firedAt.Add(-7*24*time.Hour), since)
	require.NotNil(t, runs.last)
	assert.Equal(t, 5, runs.last.EmailsSent)
	assert.Equal(t, StateArmed, trigger.State())
}

func TestPollIgnoresNonMatchingInstant(t *testing.T) {
	fired := 0
	trigger := newTestTrigger(
		&fakeClock{now: monday0900.Add(time.Hour)},
		&fakeRunStore{},
		func(time.Time) (int, error) { fired++; return 0, nil },
	)

	require.NoError(t, trigger.pollOnce())
	assert.Equal(t, 0, fired)
}

func TestPollFiresAtMostOncePerDate(t *testing.T) {
	clock := &fakeClock{now: monday0900}
	runs := &fakeRunStore{}
	fired := 0
	trigger := newTestTrigger(clock, runs, func(time.Time) (int, error) {
		fired++
		return 0, nil
	})

	require.NoError(t, trigger.pollOnce())
	assert.Equal(t, 1, fired)

	// The cooldown sleep moved the fake clock past the matching minute, force
	// it back to simulate a second poll inside the same minute.
	clock.now = monday0900.Add(30 * time.Second)
	require.NoError(t, trigger.pollOnce())
	assert.Equal(t, 1, fired)
}

func TestPersistedRunSurvivesRestart(t *testing.T) {
	runs := &fakeRunStore{
		last: &model.DigestRun{FiredAt: monday0900, EmailsSent: 3},
	}
	fired := 0

	// Fresh trigger, same backing run store: a restart within the fire minute.
	trigger := newTestTrigger(&fakeClock{now: monday0900.Add(45 * time.Second)}, runs, func(time.Time) (int, error) {
		fired++
		return 0, nil
	})

	require.NoError(t, trigger.pollOnce())
	assert.Equal(t, 0, fired)
}

func TestPollFiresAgainNextWeek(t *testing.T) {
	runs := &fakeRunStore{
		last: &model.DigestRun{FiredAt: monday0900},
	}
	fired := 0
	trigger := newTestTrigger(&fakeClock{now: monday0900.AddDate(0, 0, 7)}, runs, func(time.Time) (int, error) {
		fired++
		return 0, nil
	})

	require.NoError(t, trigger.pollOnce())
	assert.Equal(t, 1, fired)
}

func TestFailedFireIsNotRecorded(t *testing.T) {
	runs := &fakeRunStore{}
	trigger := newTestTrigger(&fakeClock{now: monday0900}, runs, func(time.Time) (int, error) {
		return 0, errors.New("smtp down")
	})

	assert.Error(t, trigger.pollOnce())
	assert.Nil(t, runs.last)
	assert.Equal(t, StateArmed, trigger.State())
}

func TestPanicInFireIsContained(t *testing.T) {
	trigger := newTestTrigger(&fakeClock{now: monday0900}, &fakeRunStore{}, func(time.Time) (int, error) {
		panic("boom")
	})

	err := trigger.safePollOnce()
	assert.Error(t, err)
}

func TestRunStoreErrorBacksOff(t *testing.T) {
	runs := &fakeRunStore{lastErr: errors.New("db down")}
	fired := 0
	trigger := newTestTrigger(&fakeClock{now: monday0900}, runs, func(time.Time) (int, error) {
		fired++
		return 0, nil
	})

	assert.Error(t, trigger.pollOnce())
	assert.Equal(t, 0, fired)
}
