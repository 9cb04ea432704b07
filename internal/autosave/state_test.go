package autosave

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransition_HappyPath(t *testing.T) {
	s := Idle
	for _, step := range []struct {
		event Event
		want  State
	}{
		{EventEdit, Editing},
		{EventTimerArmed, Debouncing},
		{EventEdit, Editing},
		{EventTimerArmed, Debouncing},
		{EventSaveStarted, Saving},
		{EventSaveSucceeded, Idle},
	} {
		s = Transition(s, step.event)
		assert.Equal(t, step.want, s, "after %s", step.event)
	}
}

func TestTransition_FailureReturnsToEditing(t *testing.T) {
	s := Transition(Saving, EventSaveFailed)
	assert.Equal(t, Error, s)
	assert.Equal(t, Editing, Transition(s, EventEdit))
	assert.Equal(t, Saving, Transition(s, EventSaveStarted))
}

func TestTransition_EditsDuringSave(t *testing.T) {
	s := Transition(Saving, EventEdit)
	s = Transition(s, EventTimerArmed)
	assert.Equal(t, Debouncing, s)

	// The older save finishing must not hide the pending edits
	assert.Equal(t, Debouncing, Transition(s, EventSaveSucceeded))
	assert.Equal(t, Debouncing, Transition(s, EventSaveFailed))
}

func TestTransition_SkipWhenEmpty(t *testing.T) {
	assert.Equal(t, Idle, Transition(Debouncing, EventSaveSkipped))
	assert.Equal(t, Saving, Transition(Saving, EventSaveSkipped))
}

func TestTransition_UndefinedPairsKeepState(t *testing.T) {
	assert.Equal(t, Idle, Transition(Idle, EventSaveSucceeded))
	assert.Equal(t, Idle, Transition(Idle, EventTimerArmed))
	assert.Equal(t, Error, Transition(Error, EventSaveFailed))
	assert.Equal(t, "debouncing", Debouncing.String())
}
