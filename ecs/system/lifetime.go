package system

import (
	"fmt"

	"github.com/milk9111/ticktimer/ecs"
	"github.com/milk9111/ticktimer/ecs/component"
	"github.com/milk9111/ticktimer/timer"
)

// LifetimeSystem destroys entities once their Lifetime has elapsed. A
// non-positive lifetime destroys the entity on its first unpaused tick.
type LifetimeSystem struct{}

func NewLifetimeSystem() *LifetimeSystem {
	return &LifetimeSystem{}
}

func (s *LifetimeSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}

	ecs.ForEach(w, component.LifetimeComponent.Kind(), func(e ecs.Entity, l *component.Lifetime) {
		if l.IsPaused() {
			return
		}
		if !l.Armed() {
			action, err := timer.New(l.Seconds, func() { ecs.DestroyEntity(w, e) }, timer.Once)
			if err != nil {
				ecs.DestroyEntity(w, e)
				return
			}
			l.Arm(action)
		}
		if err := l.Action().Update(w.DeltaTime()); err != nil {
			fmt.Printf("lifetime: entity=%d update: %v\n", e, err)
		}
	})
}

func PauseLifetimes(w *ecs.World) {
	ecs.ForEach(w, component.LifetimeComponent.Kind(), func(_ ecs.Entity, l *component.Lifetime) {
		l.Pause()
	})
}

func ResumeLifetimes(w *ecs.World) {
	ecs.ForEach(w, component.LifetimeComponent.Kind(), func(_ ecs.Entity, l *component.Lifetime) {
		l.Resume()
	})
}
