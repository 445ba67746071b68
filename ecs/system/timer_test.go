package system

import (
	"errors"
	"testing"

	"github.com/milk9111/ticktimer/ecs"
	"github.com/milk9111/ticktimer/ecs/component"
	"github.com/milk9111/ticktimer/timer"
)

// collect records the events visible at the end of each tick.
type collect struct {
	events []ecs.Event
}

func (c *collect) Update(w *ecs.World) {
	c.events = append(c.events, w.Events().Drain()...)
}

func (c *collect) count(typ string) int {
	n := 0
	for _, e := range c.events {
		if e.Type == typ {
			n++
		}
	}
	return n
}

func newTimerWorld() (*ecs.World, *collect) {
	c := &collect{}
	return ecs.NewWorld(NewTimerSystem(), c), c
}

func TestTimerSystemRepeating(t *testing.T) {
	w, events := newTimerWorld()
	fired := 0
	ent, action, err := RunAtInterval(w, 1.0, func() { fired++ })
	if err != nil {
		t.Fatalf("RunAtInterval: %v", err)
	}

	for _, dt := range []float64{0.4, 0.4, 0.3, 0.9, 0.2} {
		w.Tick(dt)
	}
	if fired != 2 || action.Fired() != 2 {
		t.Fatalf("expected 2 firings, got %d", fired)
	}
	if events.count(EventTimerFired) != 2 {
		t.Fatalf("expected 2 fired events, got %d", events.count(EventTimerFired))
	}
	if !ecs.IsAlive(w, ent) {
		t.Fatalf("repeating timer entity should stay alive")
	}
}

func TestTimerSystemRemovesExpired(t *testing.T) {
	w, events := newTimerWorld()
	fired := 0
	ent, _, err := RunOnce(w, 2.0, func() { fired++ })
	if err != nil {
		t.Fatalf("RunOnce: %v", err)
	}

	w.Tick(2.5)
	if fired != 1 {
		t.Fatalf("expected one firing, got %d", fired)
	}
	if ecs.IsAlive(w, ent) {
		t.Fatalf("expired timer should be removed")
	}
	if events.count(EventTimerExpired) != 1 {
		t.Fatalf("expected expiry event")
	}

	w.Tick(10)
	if fired != 1 || ecs.Count(w, component.TimerComponent.Kind()) != 0 {
		t.Fatalf("expired timer fired again or lingered")
	}
}

func TestTimerSystemExternalExpire(t *testing.T) {
	w, _ := newTimerWorld()
	fired := 0
	ent, action, _ := RunAtInterval(w, 1, func() { fired++ })

	action.Expire()
	w.Tick(100)
	if fired != 0 {
		t.Fatalf("expired action fired")
	}
	if ecs.IsAlive(w, ent) {
		t.Fatalf("expired action should be reclaimed on the next tick")
	}
}

func TestPauseResumeTimers(t *testing.T) {
	w, _ := newTimerWorld()
	fired := 0
	_, _, _ = RunAtInterval(w, 1, func() { fired++ })
	_, _, _ = RunAtInterval(w, 2, func() { fired++ })

	if ActiveTimers(w) != 2 {
		t.Fatalf("expected two active timers")
	}
	PauseTimers(w)
	if ActiveTimers(w) != 0 {
		t.Fatalf("expected no active timers while paused")
	}
	for i := 0; i < 10; i++ {
		w.Tick(5)
	}
	if fired != 0 {
		t.Fatalf("paused timers fired %d times", fired)
	}

	ResumeTimers(w)
	w.Tick(2)
	if fired != 2 {
		t.Fatalf("expected both timers to fire once after resume, got %d", fired)
	}

	ExpireTimers(w)
	w.Tick(0)
	if ecs.Count(w, component.TimerComponent.Kind()) != 0 {
		t.Fatalf("expected all timers reclaimed")
	}
}

func TestScheduleRejectsInvalidInterval(t *testing.T) {
	w, _ := newTimerWorld()
	if _, _, err := Schedule(w, "bad", 0, func() {}, timer.Once); !errors.Is(err, timer.ErrInvalidInterval) {
		t.Fatalf("expected ErrInvalidInterval, got %v", err)
	}
	if len(ecs.Entities(w)) != 0 {
		t.Fatalf("failed schedule must not leave entities")
	}
	if _, _, err := RunOnce(nil, 1, func() {}); err == nil {
		t.Fatalf("expected error for nil world")
	}
}

func TestTimerCreatedInCallbackStartsNextTick(t *testing.T) {
	w, _ := newTimerWorld()
	inner := 0
	_, _, _ = RunOnce(w, 1, func() {
		_, _, _ = RunOnce(w, 1, func() { inner++ })
	})

	w.Tick(1)
	if inner != 0 {
		t.Fatalf("nested timer ran in the tick it was created")
	}
	w.Tick(1)
	if inner != 1 {
		t.Fatalf("expected nested timer to fire, got %d", inner)
	}
}

func TestTimerWithoutActionIsDropped(t *testing.T) {
	w, _ := newTimerWorld()
	ent := ecs.CreateEntity(w)
	_ = ecs.Add(w, ent, component.TimerComponent.Kind(), &component.Timer{Name: "broken"})
	w.Tick(1)
	if ecs.IsAlive(w, ent) {
		t.Fatalf("timer without action should be destroyed")
	}
}

func TestLifetimeSystem(t *testing.T) {
	w := ecs.NewWorld(NewLifetimeSystem())

	short := ecs.CreateEntity(w)
	_ = ecs.Add(w, short, component.LifetimeComponent.Kind(), &component.Lifetime{Seconds: 0.5})
	long := ecs.CreateEntity(w)
	_ = ecs.Add(w, long, component.LifetimeComponent.Kind(), &component.Lifetime{Seconds: 2})
	zero := ecs.CreateEntity(w)
	_ = ecs.Add(w, zero, component.LifetimeComponent.Kind(), &component.Lifetime{})

	w.Tick(0.25)
	if ecs.IsAlive(w, zero) {
		t.Fatalf("zero lifetime should be destroyed immediately")
	}
	if !ecs.IsAlive(w, short) || !ecs.IsAlive(w, long) {
		t.Fatalf("lifetimes expired early")
	}

	w.Tick(0.25)
	if ecs.IsAlive(w, short) {
		t.Fatalf("short lifetime should have expired")
	}
	if !ecs.IsAlive(w, long) {
		t.Fatalf("long lifetime expired early")
	}

	w.Tick(1.5)
	if ecs.IsAlive(w, long) {
		t.Fatalf("long lifetime should have expired")
	}
}

func TestLifetimePauseResume(t *testing.T) {
	w := ecs.NewWorld(NewLifetimeSystem())

	armed := ecs.CreateEntity(w)
	_ = ecs.Add(w, armed, component.LifetimeComponent.Kind(), &component.Lifetime{Seconds: 0.5})
	w.Tick(0.25)

	fresh := ecs.CreateEntity(w)
	_ = ecs.Add(w, fresh, component.LifetimeComponent.Kind(), &component.Lifetime{})

	PauseLifetimes(w)
	w.Tick(10)
	if !ecs.IsAlive(w, armed) || !ecs.IsAlive(w, fresh) {
		t.Fatalf("paused lifetimes should hold")
	}

	ResumeLifetimes(w)
	w.Tick(0.25)
	if ecs.IsAlive(w, armed) {
		t.Fatalf("armed lifetime should expire after the remaining time")
	}
	if ecs.IsAlive(w, fresh) {
		t.Fatalf("zero lifetime should be destroyed once resumed")
	}
}

func TestLifetimeArmWhilePaused(t *testing.T) {
	l := &component.Lifetime{Seconds: 1}
	l.Pause()
	a, err := timer.New(1, func() {}, timer.Once)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	l.Arm(a)
	if !a.IsPaused() {
		t.Fatalf("arming a paused lifetime should pause its action")
	}
	l.Resume()
	if a.IsPaused() {
		t.Fatalf("expected action resumed")
	}
}
