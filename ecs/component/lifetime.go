package component

import "github.com/milk9111/ticktimer/timer"

// Lifetime destroys its entity after Seconds of world time. The lifetime
// system arms a one-shot timer the first tick it sees the component.
type Lifetime struct {
	Seconds float64

	action *timer.Action
	paused bool
}

// Armed reports whether the lifetime has been started.
func (l *Lifetime) Armed() bool {
	return l != nil && l.action != nil
}

// Arm starts the countdown with a. A paused lifetime arms paused.
func (l *Lifetime) Arm(a *timer.Action) {
	l.action = a
	if l.paused && a != nil {
		a.Pause()
	}
}

// Pause holds the countdown, including one not yet armed.
func (l *Lifetime) Pause() {
	l.paused = true
	if l.action != nil {
		l.action.Pause()
	}
}

func (l *Lifetime) Resume() {
	l.paused = false
	if l.action != nil {
		l.action.Resume()
	}
}

func (l *Lifetime) IsPaused() bool {
	return l != nil && l.paused
}

// Action returns the countdown action, or nil before Arm.
func (l *Lifetime) Action() *timer.Action {
	return l.action
}

var LifetimeComponent = NewComponent[Lifetime]()
