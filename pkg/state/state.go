package state

import (
	"errors"
	"fmt"
	"time"

	"github.com/bft-labs/epochbits/pkg/epochbits"
)

// ErrWidthMismatch is returned when stored bitfields do not match the
// configured width.
var ErrWidthMismatch = errors.New("state: width mismatch")

// State is the persisted set of participant bitfields.
type State struct {
	// Width is the bit width shared by every bitfield
	Width int `json:"width"`

	// Participants maps a participant identifier to its epoch flags
	Participants map[string]epochbits.Bitfield `json:"participants"`

	// UpdatedAt is the time of the last save
	UpdatedAt time.Time `json:"updated_at"`
}

// New returns an empty state for the given width.
func New(width int) State {
	return State{Width: width, Participants: map[string]epochbits.Bitfield{}}
}

// IsEmpty returns true if no participant is tracked.
func (s State) IsEmpty() bool {
	return len(s.Participants) == 0
}

// Validate checks that every bitfield has the state's width.
func (s State) Validate() error {
	for id, b := range s.Participants {
		if b.Width() != s.Width {
			return fmt.Errorf("%w: participant %q has width %d, state width is %d", ErrWidthMismatch, id, b.Width(), s.Width)
		}
	}
	return nil
}

// Clone returns a copy that shares no map with s.
func (s State) Clone() State {
	out := State{Width: s.Width, UpdatedAt: s.UpdatedAt, Participants: make(map[string]epochbits.Bitfield, len(s.Participants))}
	for id, b := range s.Participants {
		out.Participants[id] = b
	}
	return out
}
