package timer

import (
	"errors"
	"math"
	"time"
)

var (
	ErrInvalidInterval = errors.New("timer: interval must be positive")
	ErrNilCallback     = errors.New("timer: callback is nil")
	ErrInvalidType     = errors.New("timer: invalid type")
	ErrInvalidDelta    = errors.New("timer: delta must be finite and non-negative")
)

// Type selects whether an action fires once or keeps firing.
type Type int

const (
	Once Type = iota + 1
	Indefinite
)

func (t Type) String() string {
	switch t {
	case Once:
		return "once"
	case Indefinite:
		return "indefinite"
	default:
		return "unknown"
	}
}

// State is the observable lifecycle state of an Action.
type State int

const (
	Active State = iota
	Paused
	Expired
)

func (s State) String() string {
	switch s {
	case Active:
		return "active"
	case Paused:
		return "paused"
	case Expired:
		return "expired"
	default:
		return "unknown"
	}
}

// Action runs a callback each time at least one interval of accumulated
// time has passed since it last fired. A Once action expires after its
// first firing. An expired action never fires again.
//
// Action is not safe for concurrent use.
type Action struct {
	interval float64
	fn       func()
	typ      Type

	currentTime float64
	lastFired   float64
	fired       uint64

	expired bool
	paused  bool
}

// New creates an active action firing fn every intervalSeconds.
func New(intervalSeconds float64, fn func(), typ Type) (*Action, error) {
	if math.IsNaN(intervalSeconds) || math.IsInf(intervalSeconds, 0) || intervalSeconds <= 0 {
		return nil, ErrInvalidInterval
	}
	if fn == nil {
		return nil, ErrNilCallback
	}
	if typ != Once && typ != Indefinite {
		return nil, ErrInvalidType
	}
	return &Action{interval: intervalSeconds, fn: fn, typ: typ}, nil
}

// NewDuration is New with the interval given as a time.Duration.
func NewDuration(interval time.Duration, fn func(), typ Type) (*Action, error) {
	return New(interval.Seconds(), fn, typ)
}

// Update advances the action by tpf seconds. The callback fires at most
// once per call, even if tpf spans several intervals.
func (a *Action) Update(tpf float64) error {
	if math.IsNaN(tpf) || math.IsInf(tpf, 0) || tpf < 0 {
		return ErrInvalidDelta
	}
	if a.expired || a.paused {
		return nil
	}

	a.currentTime += tpf

	if a.currentTime-a.lastFired >= a.interval {
		a.fn()
		a.fired++
		a.lastFired = a.currentTime

		if a.typ == Once {
			a.Expire()
		}
	}
	return nil
}

func (a *Action) Pause() {
	a.paused = true
}

func (a *Action) Resume() {
	a.paused = false
}

// Expire permanently stops the action.
func (a *Action) Expire() {
	a.expired = true
}

func (a *Action) IsExpired() bool { return a.expired }
func (a *Action) IsPaused() bool  { return a.paused }

// State reports Expired ahead of Paused, since expiry is terminal.
func (a *Action) State() State {
	switch {
	case a.expired:
		return Expired
	case a.paused:
		return Paused
	default:
		return Active
	}
}

func (a *Action) Interval() float64  { return a.interval }
func (a *Action) Type() Type         { return a.typ }
func (a *Action) Elapsed() float64   { return a.currentTime }
func (a *Action) LastFired() float64 { return a.lastFired }

// Fired returns how many times the callback has run.
func (a *Action) Fired() uint64 { return a.fired }
