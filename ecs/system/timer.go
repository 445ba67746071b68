package system

import (
	"fmt"

	"github.com/milk9111/ticktimer/ecs"
	"github.com/milk9111/ticktimer/ecs/component"
	"github.com/milk9111/ticktimer/timer"
)

const (
	EventTimerFired   = "timer_fired"
	EventTimerExpired = "timer_expired"
)

// TimerSystem advances every Timer component by the world delta, publishes
// firings and expiries, and destroys entities whose action has expired.
// Timers created by a callback start on the next tick.
type TimerSystem struct{}

func NewTimerSystem() *TimerSystem {
	return &TimerSystem{}
}

func (s *TimerSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}
	dt := w.DeltaTime()

	ecs.ForEach(w, component.TimerComponent.Kind(), func(e ecs.Entity, t *component.Timer) {
		if t.Action == nil {
			fmt.Printf("timer: entity=%d %q has no action\n", e, t.Name)
			ecs.DestroyEntity(w, e)
			return
		}

		before := t.Action.Fired()
		if err := t.Action.Update(dt); err != nil {
			fmt.Printf("timer: entity=%d %q update: %v\n", e, t.Name, err)
			return
		}
		if t.Action.Fired() != before {
			w.Events().Push(ecs.Event{Type: EventTimerFired, Entity: e, Data: t.Name})
		}

		if t.Action.IsExpired() {
			w.Events().Push(ecs.Event{Type: EventTimerExpired, Entity: e, Data: t.Name})
			ecs.DestroyEntity(w, e)
		}
	})
}

// Schedule registers a named action on a new entity.
func Schedule(w *ecs.World, name string, seconds float64, fn func(), typ timer.Type) (ecs.Entity, *timer.Action, error) {
	if w == nil {
		return 0, nil, fmt.Errorf("timer %q: world is nil", name)
	}
	action, err := timer.New(seconds, fn, typ)
	if err != nil {
		return 0, nil, fmt.Errorf("timer %q: %w", name, err)
	}
	ent, err := scheduleAction(w, name, action)
	if err != nil {
		return 0, nil, err
	}
	return ent, action, nil
}

func scheduleAction(w *ecs.World, name string, action *timer.Action) (ecs.Entity, error) {
	ent := ecs.CreateEntity(w)
	if err := ecs.Add(w, ent, component.TimerComponent.Kind(), &component.Timer{Name: name, Action: action}); err != nil {
		ecs.DestroyEntity(w, ent)
		return 0, fmt.Errorf("timer %q: add component: %w", name, err)
	}
	return ent, nil
}

// RunOnce calls fn once after seconds of world time.
func RunOnce(w *ecs.World, seconds float64, fn func()) (ecs.Entity, *timer.Action, error) {
	return Schedule(w, "", seconds, fn, timer.Once)
}

// RunAtInterval calls fn every seconds of world time until expired.
func RunAtInterval(w *ecs.World, seconds float64, fn func()) (ecs.Entity, *timer.Action, error) {
	return Schedule(w, "", seconds, fn, timer.Indefinite)
}

func PauseTimers(w *ecs.World) {
	eachAction(w, (*timer.Action).Pause)
}

func ResumeTimers(w *ecs.World) {
	eachAction(w, (*timer.Action).Resume)
}

// ExpireTimers kills every registered action. The entities are reclaimed
// on the next TimerSystem update.
func ExpireTimers(w *ecs.World) {
	eachAction(w, (*timer.Action).Expire)
}

// ActiveTimers counts registered actions that are neither paused nor expired.
func ActiveTimers(w *ecs.World) int {
	n := 0
	eachAction(w, func(a *timer.Action) {
		if a.State() == timer.Active {
			n++
		}
	})
	return n
}

func eachAction(w *ecs.World, fn func(*timer.Action)) {
	ecs.ForEach(w, component.TimerComponent.Kind(), func(_ ecs.Entity, t *component.Timer) {
		if t.Action != nil {
			fn(t.Action)
		}
	})
}
