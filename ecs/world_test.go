package ecs

import (
	"errors"
	"math"
	"testing"

	"github.com/milk9111/ticktimer/ecs/component"
)

func TestWorldEntityLifecycle(t *testing.T) {
	cases := []struct {
		name         string
		create       int
		destroyIndex int // -1 = none
	}{
		{"single", 1, 0},
		{"three_create_destroy_middle", 3, 1},
		{"none_destroy", 2, -1},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w := NewWorld()
			ents := make([]Entity, 0, c.create)
			for i := 0; i < c.create; i++ {
				ents = append(ents, CreateEntity(w))
			}
			if len(Entities(w)) != c.create {
				t.Fatalf("expected %d entities, got %d", c.create, len(Entities(w)))
			}
			if c.destroyIndex >= 0 {
				if !DestroyEntity(w, ents[c.destroyIndex]) {
					t.Fatalf("DestroyEntity should return true for alive entity")
				}
				if IsAlive(w, ents[c.destroyIndex]) {
					t.Fatalf("entity should not be alive after destruction")
				}
				if DestroyEntity(w, ents[c.destroyIndex]) {
					t.Fatalf("DestroyEntity should return false for dead entity")
				}
				if len(Entities(w)) != c.create-1 {
					t.Fatalf("expected %d entities after destroy, got %d", c.create-1, len(Entities(w)))
				}
			}
		})
	}
}

func TestRecycledIDIsNewGeneration(t *testing.T) {
	w := NewWorld()
	k := component.NewComponentKind[int]()

	old := CreateEntity(w)
	if err := Add(w, old, k, intPtr(1)); err != nil {
		t.Fatal(err)
	}
	DestroyEntity(w, old)

	fresh := CreateEntity(w)
	if fresh.id() != old.id() {
		t.Fatalf("expected id reuse, got %d then %d", old.id(), fresh.id())
	}
	if fresh == old || IsAlive(w, old) {
		t.Fatalf("stale handle must not alias the new entity")
	}
	if Has(w, fresh, k) {
		t.Fatalf("new entity inherited a component")
	}
	if err := Add(w, old, k, intPtr(2)); !errors.Is(err, component.ErrEntityNotAlive) {
		t.Fatalf("expected ErrEntityNotAlive, got %v", err)
	}
}

func toSet(ents []Entity) map[Entity]struct{} {
	m := make(map[Entity]struct{}, len(ents))
	for _, e := range ents {
		m[e] = struct{}{}
	}
	return m
}

func intPtr(i int) *int {
	return &i
}

func stringPtr(s string) *string {
	return &s
}

func TestWorldComponents(t *testing.T) {
	w := NewWorld()

	h1 := component.NewComponent[int]()
	h2 := component.NewComponent[string]()

	e1 := CreateEntity(w)
	e2 := CreateEntity(w)

	tests := []struct {
		name     string
		setup    func() error
		check    func(t *testing.T)
		teardown func() bool
	}{
		{
			name:  "add_int_to_e1",
			setup: func() error { return Add(w, e1, h1.Kind(), intPtr(10)) },
			check: func(t *testing.T) {
				v, ok := Get(w, e1, h1.Kind())
				if !ok || *v != 10 {
					t.Fatalf("expected 10, got %v ok=%v", v, ok)
				}
			},
			teardown: func() bool { return Remove(w, e1, h1.Kind()) },
		},
		{
			name: "add_str_to_e1_and_e2",
			setup: func() error {
				if err := Add(w, e1, h2.Kind(), stringPtr("a")); err != nil {
					return err
				}
				return Add(w, e2, h2.Kind(), stringPtr("b"))
			},
			check: func(t *testing.T) {
				if !Has(w, e1, h2.Kind()) || !Has(w, e2, h2.Kind()) {
					t.Fatalf("expected both entities to have string component")
				}
				if Count(w, h2.Kind()) != 2 {
					t.Fatalf("expected two string components")
				}
			},
			teardown: func() bool { return Remove(w, e1, h2.Kind()) },
		},
		{
			name:  "overwrite_int",
			setup: func() error { return Add(w, e2, h1.Kind(), intPtr(7)) },
			check: func(t *testing.T) {
				if err := Add(w, e2, h1.Kind(), intPtr(8)); err != nil {
					t.Fatal(err)
				}
				if v, _ := Get(w, e2, h1.Kind()); v == nil || *v != 8 {
					t.Fatalf("expected overwrite to 8, got %v", v)
				}
			},
			teardown: func() bool { return Remove(w, e2, h1.Kind()) },
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.setup(); err != nil {
				t.Fatalf("setup failed: %v", err)
			}
			tc.check(t)
			if !tc.teardown() {
				t.Fatalf("teardown failed for %s", tc.name)
			}
		})
	}
}

func TestAddErrors(t *testing.T) {
	w := NewWorld()
	e := CreateEntity(w)

	if err := Add(w, e, component.ComponentKind[int]{}, intPtr(1)); !errors.Is(err, component.ErrInvalidComponentKind) {
		t.Fatalf("expected ErrInvalidComponentKind, got %v", err)
	}
	if err := Add[int](w, e, component.NewComponentKind[int](), nil); !errors.Is(err, component.ErrNilComponent) {
		t.Fatalf("expected ErrNilComponent, got %v", err)
	}
}

func TestForEach(t *testing.T) {
	t.Run("basic", func(t *testing.T) {
		w := NewWorld()
		h := component.NewComponent[int]()

		e1 := CreateEntity(w)
		e2 := CreateEntity(w)
		e3 := CreateEntity(w)

		if err := Add(w, e1, h.Kind(), intPtr(1)); err != nil {
			t.Fatalf("add failed: %v", err)
		}
		if err := Add(w, e3, h.Kind(), intPtr(3)); err != nil {
			t.Fatalf("add failed: %v", err)
		}

		var ents []Entity
		ForEach(w, h.Kind(), func(e Entity, _ *int) { ents = append(ents, e) })
		set := toSet(ents)

		if _, ok := set[e1]; !ok {
			t.Fatalf("expected e1 in ForEach result")
		}
		if _, ok := set[e3]; !ok {
			t.Fatalf("expected e3 in ForEach result")
		}
		if _, ok := set[e2]; ok {
			t.Fatalf("did not expect e2 in ForEach result")
		}
	})

	t.Run("destroy_during_iteration", func(t *testing.T) {
		w := NewWorld()
		h := component.NewComponent[int]()
		for i := 0; i < 5; i++ {
			if err := Add(w, CreateEntity(w), h.Kind(), intPtr(i)); err != nil {
				t.Fatal(err)
			}
		}

		visited := 0
		ForEach(w, h.Kind(), func(e Entity, _ *int) {
			visited++
			DestroyEntity(w, e)
		})
		if visited != 5 {
			t.Fatalf("expected 5 visits, got %d", visited)
		}
		if Count(w, h.Kind()) != 0 || len(Entities(w)) != 0 {
			t.Fatalf("expected everything destroyed")
		}
	})

	t.Run("first", func(t *testing.T) {
		w := NewWorld()
		h := component.NewComponent[int]()
		if _, ok := First(w, h.Kind()); ok {
			t.Fatalf("expected no first entity")
		}
		e := CreateEntity(w)
		_ = Add(w, e, h.Kind(), intPtr(1))
		if got, ok := First(w, h.Kind()); !ok || got != e {
			t.Fatalf("expected %v, got %v ok=%v", e, got, ok)
		}
	})
}

type recordSystem struct {
	name  string
	order *[]string
	dt    *[]float64
}

func (s recordSystem) Update(w *World) {
	*s.order = append(*s.order, s.name)
	*s.dt = append(*s.dt, w.DeltaTime())
}

func TestTickRunsSystemsInOrder(t *testing.T) {
	var order []string
	var dts []float64
	w := NewWorld(recordSystem{"a", &order, &dts}, nil, recordSystem{"b", &order, &dts})
	w.AddSystem(recordSystem{"c", &order, &dts})

	w.Tick(0.5)
	w.Tick(-1)
	w.Tick(math.Inf(1))

	want := []string{"a", "b", "c", "a", "b", "c", "a", "b", "c"}
	if len(order) != len(want) {
		t.Fatalf("expected %v, got %v", want, order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, order)
		}
	}
	if dts[0] != 0.5 || dts[3] != 0 || dts[6] != 0 {
		t.Fatalf("expected dt 0.5 then clamped 0, got %v", dts)
	}
	if w.Elapsed() != 0.5 || w.Frames() != 3 {
		t.Fatalf("unexpected elapsed=%v frames=%d", w.Elapsed(), w.Frames())
	}
}

type pushSystem struct{}

func (pushSystem) Update(w *World) {
	w.Events().Push(Event{Type: "ping"})
}

type peekSystem struct{ seen *int }

func (p peekSystem) Update(w *World) {
	*p.seen += len(w.Events().Peek())
}

func TestEventsAreFlushedAfterTick(t *testing.T) {
	seen := 0
	w := NewWorld(pushSystem{}, peekSystem{&seen})

	w.Tick(1)
	if seen != 1 {
		t.Fatalf("expected later system to see one event, got %d", seen)
	}
	if w.Events().Len() != 0 {
		t.Fatalf("expected events flushed after tick")
	}

	w.Events().Push(Event{Type: "a"})
	w.Events().Push(Event{Type: "b"})
	got := w.Events().Drain()
	if len(got) != 2 || got[0].Type != "a" || got[1].Type != "b" {
		t.Fatalf("expected FIFO drain, got %v", got)
	}
	if w.Events().Drain() != nil {
		t.Fatalf("expected empty drain")
	}
}
