package system

import (
	"fmt"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/milk9111/ticktimer/config"
	"github.com/milk9111/ticktimer/ecs"
	"github.com/milk9111/ticktimer/timer"
)

// EventScript is pushed by emit() calls from timer scripts and by timers
// configured with an emit name. Data holds the emitted name.
const EventScript = "script_event"

type timerScript struct {
	name     string
	compiled *tengo.Compiled
	fired    int
}

// newTimerScript compiles src with the globals `timer` (the timer name),
// `fired` (firing count) and the function `emit(name)`.
func newTimerScript(w *ecs.World, name, src string) (*timerScript, error) {
	script := tengo.NewScript([]byte(src))
	_ = script.Add("timer", name)
	_ = script.Add("fired", 0)
	_ = script.Add("emit", &tengo.UserFunction{Name: "emit", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 1 {
			return tengo.FalseValue, nil
		}
		evt, _ := tengo.ToString(args[0])
		evt = strings.TrimSpace(evt)
		if evt == "" {
			return tengo.FalseValue, nil
		}
		w.Events().Push(ecs.Event{Type: EventScript, Data: evt})
		return tengo.TrueValue, nil
	}})
	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	compiled, err := script.Compile()
	if err != nil {
		return nil, err
	}
	return &timerScript{name: name, compiled: compiled}, nil
}

func (s *timerScript) run() {
	s.fired++
	if err := s.compiled.Set("fired", s.fired); err != nil {
		fmt.Printf("timer: %q script set fired: %v\n", s.name, err)
		return
	}
	if err := s.compiled.Run(); err != nil {
		fmt.Printf("timer: %q script error: %v\n", s.name, err)
	}
}

// SpawnTimers registers a timer for each spec. All specs are checked and
// compiled before any entity is created, so a bad spec leaves w unchanged.
func SpawnTimers(w *ecs.World, specs []config.TimerSpec) ([]ecs.Entity, error) {
	if w == nil {
		return nil, fmt.Errorf("timer: world is nil")
	}

	type pending struct {
		name   string
		action *timer.Action
	}
	built := make([]pending, 0, len(specs))
	for _, spec := range specs {
		fn, err := timerCallback(w, spec)
		if err != nil {
			return nil, err
		}
		typ := timer.Indefinite
		if spec.Once {
			typ = timer.Once
		}
		action, err := timer.New(spec.Interval, fn, typ)
		if err != nil {
			return nil, fmt.Errorf("timer %q: %w", spec.Name, err)
		}
		built = append(built, pending{name: spec.Name, action: action})
	}

	ents := make([]ecs.Entity, 0, len(built))
	for _, p := range built {
		ent, err := scheduleAction(w, p.name, p.action)
		if err != nil {
			return ents, err
		}
		ents = append(ents, ent)
	}
	return ents, nil
}

func timerCallback(w *ecs.World, spec config.TimerSpec) (func(), error) {
	var script *timerScript
	if strings.TrimSpace(spec.Script) != "" {
		s, err := newTimerScript(w, spec.Name, spec.Script)
		if err != nil {
			return nil, fmt.Errorf("timer %q: compile script: %w", spec.Name, err)
		}
		script = s
	}
	emit := strings.TrimSpace(spec.Emit)

	return func() {
		if emit != "" {
			w.Events().Push(ecs.Event{Type: EventScript, Data: emit})
		}
		if script != nil {
			script.run()
		}
	}, nil
}
