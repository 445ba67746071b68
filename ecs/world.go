package ecs

import (
	"math"

	"github.com/milk9111/ticktimer/ecs/component"
)

// World owns entities, components, and system order.
type World struct {
	entities   entityStore
	components map[component.ComponentID]*SparseSet
	scheduler  *Scheduler
	events     EventQueue

	delta   float64
	elapsed float64
	frames  uint64
}

// NewWorld creates an empty ECS world running the given systems in order.
func NewWorld(systems ...System) *World {
	return &World{
		components: make(map[component.ComponentID]*SparseSet),
		scheduler:  NewScheduler(systems...),
	}
}

// CreateEntity allocates a new entity.
func CreateEntity(w *World) Entity {
	if w == nil {
		return 0
	}
	return w.entities.create()
}

// DestroyEntity removes every component of e and marks it dead.
func DestroyEntity(w *World, e Entity) bool {
	if w == nil || !w.entities.isAlive(e) {
		return false
	}
	for _, set := range w.components {
		set.Remove(e)
	}
	return w.entities.destroy(e)
}

// IsAlive reports whether an entity handle is valid.
func IsAlive(w *World, e Entity) bool {
	return w != nil && w.entities.isAlive(e)
}

// Entities returns all live entities.
func Entities(w *World) []Entity {
	if w == nil {
		return nil
	}
	return w.entities.entities()
}

// AddSystem appends a system to the update order.
func (w *World) AddSystem(s System) {
	if w == nil {
		return
	}
	w.scheduler.Add(s)
}

// Tick records dt (seconds; negative, NaN and infinite values become 0),
// runs all systems once, then drops any events nobody drained.
func (w *World) Tick(dt float64) {
	if w == nil {
		return
	}
	if !(dt > 0) || math.IsInf(dt, 1) {
		dt = 0
	}
	w.delta = dt
	w.elapsed += dt
	w.frames++
	w.scheduler.Update(w)
	w.events.flush()
}

// DeltaTime is the dt of the tick currently running.
func (w *World) DeltaTime() float64 {
	if w == nil {
		return 0
	}
	return w.delta
}

// Elapsed is the sum of all ticked deltas.
func (w *World) Elapsed() float64 {
	if w == nil {
		return 0
	}
	return w.elapsed
}

// Frames is the number of ticks run so far.
func (w *World) Frames() uint64 {
	if w == nil {
		return 0
	}
	return w.frames
}

// Events returns the world event queue.
func (w *World) Events() *EventQueue {
	if w == nil {
		return nil
	}
	return &w.events
}

func (w *World) storage(id component.ComponentID, create bool) *SparseSet {
	if w.components == nil {
		w.components = make(map[component.ComponentID]*SparseSet)
	}
	set, ok := w.components[id]
	if !ok && create {
		set = &SparseSet{}
		w.components[id] = set
	}
	return set
}
