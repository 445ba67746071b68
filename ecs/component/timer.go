package component

import "github.com/milk9111/ticktimer/timer"

// Timer attaches a timed action to an entity. The timer system advances
// Action every tick and destroys the entity once it has expired.
type Timer struct {
	Name   string
	Action *timer.Action
}

var TimerComponent = NewComponent[Timer]()
