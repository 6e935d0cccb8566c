// Package scheduler owns the weekly digest trigger: a polling loop that
// fires the digest pipeline at a fixed weekly instant, at most once per
// calendar week, and survives process restarts by persisting each fire.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/Luismorlan/newsportal/model"
	. "github.com/Luismorlan/newsportal/utils/log"
	"github.com/pkg/errors"
)

// Trigger states. The trigger is ARMED while waiting for the weekly
// instant, FIRING while the pipeline runs, and in COOLDOWN right after a
// fire so the same matching minute cannot fire twice.
type State int

const (
	StateIdle State = iota
	StateArmed
	StateFiring
	StateCooldown
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateArmed:
		return "ARMED"
	case StateFiring:
		return "FIRING"
	case StateCooldown:
		return "COOLDOWN"
	}
	return "UNKNOWN"
}

// RunStore persists successful fires. Backed by the digest_runs table so
// the once-per-week contract holds across restarts.
type RunStore interface {
	LastDigestRun() (*model.DigestRun, error)
	RecordDigestRun(firedAt time.Time, emailsSent int) error
}

type Config struct {
	// Name of the trigger module.
	Name string

	// The weekly instant: fire when the clock reads this weekday at
	// hour:minute.
	Weekday time.Weekday
	Hour    int
	Minute  int

	// Evaluate the clock on this cadence.
	PollInterval time.Duration

	// Sleep this long after a successful fire, longer than the matching
	// minute window.
	Cooldown time.Duration

	// Sleep this long after an unexpected error before resuming polling.
	ErrorBackoff time.Duration

	// Digest window, how far back a fire looks for posts.
	Window time.Duration
}

// WeeklyTrigger evaluates wall-clock time on a fixed cadence and runs the
// digest pipeline when the configured weekly instant is reached. This
// struct is thread-safe.
type WeeklyTrigger struct {
	m     sync.RWMutex
	state State

	Config Config
	Runs   RunStore
	Clock  Clock

	// Fire runs the digest pipeline over the window starting at since and
	// returns the number of emails sent.
	Fire func(since time.Time) (int, error)
}

func NewWeeklyTrigger(config Config, runs RunStore, clock Clock, fire func(since time.Time) (int, error)) *WeeklyTrigger {
	if config.PollInterval == 0 {
		config.PollInterval = 60 * time.Second
	}
	if config.Cooldown == 0 {
		config.Cooldown = 120 * time.Second
	}
	if config.ErrorBackoff == 0 {
		config.ErrorBackoff = 300 * time.Second
	}
	if config.Window == 0 {
		config.Window = 7 * 24 * time.Hour
	}
	return &WeeklyTrigger{
		state:  StateIdle,
		Config: config,
		Runs:   runs,
		Clock:  clock,
		Fire:   fire,
	}
}

// State returns the current trigger state.
func (t *WeeklyTrigger) State() State {
	t.m.RLock()
	defer t.m.RUnlock()
	return t.state
}

func (t *WeeklyTrigger) setState(s State) {
	t.m.Lock()
	defer t.m.Unlock()
	if t.state != s {
		Log.Infof("weekly trigger %s -> %s", t.state, s)
	}
	t.state = s
}

// RunModule polls until the context is cancelled. Any error or panic inside
// one poll is logged and followed by an extended backoff, the loop itself
// never terminates on failure.
func (t *WeeklyTrigger) RunModule(ctx context.Context) error {
	t.setState(StateArmed)
	Log.Infof("weekly trigger armed, firing on %s at %02d:%02d", t.Config.Weekday, t.Config.Hour, t.Config.Minute)

	for {
		select {
		case <-ctx.Done():
			t.setState(StateIdle)
			return nil
		default:
		}

		if err := t.safePollOnce(); err != nil {
			Log.Errorf("weekly trigger poll failed: %s", err)
			t.Clock.Sleep(t.Config.ErrorBackoff)
			continue
		}

		t.Clock.Sleep(t.Config.PollInterval)
	}
}

func (t *WeeklyTrigger) Name() string {
	return t.Config.Name
}

func (t *WeeklyTrigger) safePollOnce() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("panic in weekly trigger: %v", r)
		}
	}()
	return t.pollOnce()
}

// pollOnce evaluates the clock once and fires when the weekly instant
// matches and no fire has been recorded yet for the current calendar date.
func (t *WeeklyTrigger) pollOnce() error {
	now := t.Clock.Now()

	if now.Weekday() != t.Config.Weekday || now.Hour() != t.Config.Hour || now.Minute() != t.Config.Minute {
		return nil
	}

	fired, err := t.firedOn(now)
	if err != nil {
		return errors.Wrap(err, "fail to read last digest run")
	}
	if fired {
		return nil
	}

	t.setState(StateFiring)
	sent, err := t.Fire(now.Add(-t.Config.Window))
	if err != nil {
		// Fatal to this single run only, keep polling for the next week.
		t.setState(StateArmed)
		return errors.Wrap(err, "digest run failed")
	}

	if err := t.Runs.RecordDigestRun(now, sent); err != nil {
		t.setState(StateArmed)
		return errors.Wrap(err, "fail to record digest run")
	}
	Log.Infof("weekly digest fired, %d emails sent", sent)

	t.setState(StateCooldown)
	t.Clock.Sleep(t.Config.Cooldown)
	t.setState(StateArmed)
	return nil
}

// firedOn reports whether a successful fire is already recorded for the
// calendar date of now.
func (t *WeeklyTrigger) firedOn(now time.Time) (bool, error) {
	run, err := t.Runs.LastDigestRun()
	if err != nil {
		return false, err
	}
	if run == nil {
		return false, nil
	}
	y1, m1, d1 := run.FiredAt.Date()
	y2, m2, d2 := now.Date()
	return y1 == y2 && m1 == m2 && d1 == d2, nil
}
