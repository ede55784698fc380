package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransition(t *testing.T) {
	tests := []struct {
		name string
		from Visibility
		ev   Event
		text string
		want Visibility
	}{
		{"input shows", Hidden, EventInput, "cat", Visible},
		{"blank input keeps hidden", Hidden, EventInput, "   ", Hidden},
		{"blank input keeps visible", Visible, EventInput, "", Visible},
		{"focus with text shows", Hidden, EventFocus, "cat", Visible},
		{"focus without text", Hidden, EventFocus, "", Hidden},
		{"outside hides", Visible, EventOutside, "cat", Hidden},
		{"outside when hidden", Hidden, EventOutside, "cat", Hidden},
		{"submit hides", Visible, EventSubmit, "cat", Hidden},
		{"pick hides", Visible, EventPick, "Cat", Hidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Transition(tt.from, tt.ev, tt.text))
		})
	}
}

func TestVisibilityString(t *testing.T) {
	assert.Equal(t, "hidden", Hidden.String())
	assert.Equal(t, "visible", Visible.String())
}
