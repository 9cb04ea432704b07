// Package autosave turns a stream of local edits into debounced saves against the
// analysis API. The state machine is a pure function; Coordinator drives it with a
// timer and a Saver.
package autosave

// State is the lifecycle state of one live-analysis session.
type State int

const (
	Idle State = iota
	Editing
	Debouncing
	Saving
	Error
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Editing:
		return "editing"
	case Debouncing:
		return "debouncing"
	case Saving:
		return "saving"
	case Error:
		return "error"
	}
	return "unknown"
}

// Event is an input to the state machine.
type Event int

const (
	// EventEdit is a local field change.
	EventEdit Event = iota
	// EventTimerArmed follows an edit once the debounce timer is (re)started.
	EventTimerArmed
	// EventSaveStarted is a timer expiry or an explicit flush that sends the inputs.
	EventSaveStarted
	// EventSaveSkipped is a timer expiry with every field still null.
	EventSaveSkipped
	EventSaveSucceeded
	EventSaveFailed
)

func (e Event) String() string {
	switch e {
	case EventEdit:
		return "edit"
	case EventTimerArmed:
		return "timer_armed"
	case EventSaveStarted:
		return "save_started"
	case EventSaveSkipped:
		return "save_skipped"
	case EventSaveSucceeded:
		return "save_succeeded"
	case EventSaveFailed:
		return "save_failed"
	}
	return "unknown"
}

// Transition returns the state that follows s on e. Pairs with no defined
// transition leave the state unchanged.
//
// A save that completes while newer edits are pending does not leave
// Debouncing: those edits still have to be sent.
func Transition(s State, e Event) State {
	switch e {
	case EventEdit:
		return Editing
	case EventTimerArmed:
		if s == Editing {
			return Debouncing
		}
	case EventSaveStarted:
		if s == Editing || s == Debouncing || s == Error || s == Saving {
			return Saving
		}
	case EventSaveSkipped:
		if s == Debouncing || s == Editing {
			return Idle
		}
	case EventSaveSucceeded:
		if s == Saving {
			return Idle
		}
	case EventSaveFailed:
		if s == Saving {
			return Error
		}
	}
	return s
}
