package tui

import (
	"fmt"
	"time"

	"github.com/sadopc/streakr/internal/store"
)

// timerState tracks the state of one activity timer.
type timerState int

const (
	timerStopped timerState = iota
	timerRunning
	timerPaused
)

// activeTimer follows one running session. Pauses are tracked here only and
// subtracted from the duration when the session is stopped.
type activeTimer struct {
	sessionID    int64
	activityID   string
	activityName string
	color        string

	state     timerState
	startTime time.Time
	pausedAt  time.Time
	pauseGap  time.Duration
}

func (t *activeTimer) pause(now time.Time) {
	if t.state != timerRunning {
		return
	}
	t.state = timerPaused
	t.pausedAt = now
}

func (t *activeTimer) resume(now time.Time) {
	if t.state != timerPaused {
		return
	}
	t.pauseGap += now.Sub(t.pausedAt)
	t.state = timerRunning
}

func (t *activeTimer) toggle(now time.Time) {
	switch t.state {
	case timerRunning:
		t.pause(now)
	case timerPaused:
		t.resume(now)
	}
}

func (t activeTimer) paused() bool {
	return t.state == timerPaused
}

// pausedFor is the total paused time, including a pause still in progress.
func (t activeTimer) pausedFor(now time.Time) time.Duration {
	if t.state == timerPaused {
		return t.pauseGap + now.Sub(t.pausedAt)
	}
	return t.pauseGap
}

func (t activeTimer) elapsed(now time.Time) time.Duration {
	if t.state == timerStopped {
		return 0
	}
	return now.Sub(t.startTime) - t.pausedFor(now)
}

// timerPool holds the timers running at once, at most
// store.MaxRunningSessions of them.
type timerPool struct {
	store  *store.Store
	now    func() time.Time
	timers []activeTimer
}

func newTimerPool(s *store.Store) timerPool {
	return timerPool{store: s, now: time.Now}
}

// restore picks up sessions left running by a previous run. Their pause
// history is gone, so they come back as running.
func (p *timerPool) restore() error {
	running, err := p.store.ListRunningSessions()
	if err != nil {
		return err
	}
	p.timers = p.timers[:0]
	for _, sess := range running {
		t := activeTimer{
			sessionID:    sess.ID,
			activityID:   sess.ActivityID,
			activityName: "?",
			state:        timerRunning,
			startTime:    sess.StartTime,
		}
		if a, err := p.store.GetActivity(sess.ActivityID); err == nil {
			t.activityName = a.Name
			t.color = a.Color
		}
		p.timers = append(p.timers, t)
	}
	return nil
}

func (p *timerPool) start(a store.Activity) error {
	now := p.now()
	sess, err := p.store.StartSession(a.ID, now)
	if err != nil {
		return err
	}
	p.timers = append(p.timers, activeTimer{
		sessionID:    sess.ID,
		activityID:   a.ID,
		activityName: a.Name,
		color:        a.Color,
		state:        timerRunning,
		startTime:    now,
	})
	return nil
}

// stop closes the i-th timer's session and removes it from the pool.
func (p *timerPool) stop(i int) (*store.Session, error) {
	if i < 0 || i >= len(p.timers) {
		return nil, fmt.Errorf("no timer at position %d", i+1)
	}
	now := p.now()
	t := p.timers[i]
	sess, err := p.store.StopSession(t.sessionID, now, t.pausedFor(now))
	if err != nil {
		return nil, err
	}
	p.timers = append(p.timers[:i:i], p.timers[i+1:]...)
	return sess, nil
}

func (p *timerPool) toggle(i int) {
	if i < 0 || i >= len(p.timers) {
		return
	}
	p.timers[i].toggle(p.now())
}

func (p timerPool) count() int {
	return len(p.timers)
}

func (p timerPool) full() bool {
	return len(p.timers) >= store.MaxRunningSessions
}

func (p timerPool) tracking(activityID string) bool {
	for _, t := range p.timers {
		if t.activityID == activityID {
			return true
		}
	}
	return false
}

// anyRunning reports whether at least one timer is counting.
func (p timerPool) anyRunning() bool {
	for _, t := range p.timers {
		if t.state == timerRunning {
			return true
		}
	}
	return false
}
