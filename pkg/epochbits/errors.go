package epochbits

import (
	"errors"
	"fmt"
)

// Errors returned by bitfield operations. Check them with errors.Is.
var (
	// ErrInvalidEpoch is returned when an epoch or mask length falls outside
	// the representable range of the bitfield.
	ErrInvalidEpoch = errors.New("epochbits: invalid epoch")

	// ErrInvalidWidth is returned when a width is outside [1, MaxWidth].
	ErrInvalidWidth = errors.New("epochbits: invalid width")

	// ErrWidthMismatch is returned when two bitfields of different widths
	// are combined.
	ErrWidthMismatch = errors.New("epochbits: width mismatch")

	// ErrValueTooWide is returned when a parsed value needs more bits than
	// the target width holds.
	ErrValueTooWide = errors.New("epochbits: value exceeds width")
)

// EpochRangeError reports an epoch (or mask length) outside [0, Max].
//
// It unwraps to ErrInvalidEpoch.
type EpochRangeError struct {
	Epoch int
	Max   int
}

func (e *EpochRangeError) Error() string {
	return fmt.Sprintf("epochbits: epoch %d outside [0, %d]", e.Epoch, e.Max)
}

func (e *EpochRangeError) Unwrap() error { return ErrInvalidEpoch }

func checkWidth(width int) error {
	if width < 1 || width > MaxWidth {
		return fmt.Errorf("%w: %d not in [1, %d]", ErrInvalidWidth, width, MaxWidth)
	}
	return nil
}
