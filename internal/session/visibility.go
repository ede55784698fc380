package session

import "strings"

// Visibility is the state of the suggestion dropdown.
type Visibility int

const (
	Hidden Visibility = iota
	Visible
)

func (v Visibility) String() string {
	if v == Visible {
		return "visible"
	}
	return "hidden"
}

type Event int

const (
	EventInput   Event = iota // input text changed
	EventFocus                // input gained focus
	EventOutside              // pointer, Esc or focus outside input and dropdown
	EventSubmit               // search submission began
	EventPick                 // suggestion picked
)

// Transition returns the dropdown state after ev, given the current input
// text. Events not listed leave the state unchanged.
func Transition(v Visibility, ev Event, text string) Visibility {
	switch ev {
	case EventInput, EventFocus:
		if strings.TrimSpace(text) != "" {
			return Visible
		}
	case EventOutside, EventSubmit, EventPick:
		return Hidden
	}
	return v
}
