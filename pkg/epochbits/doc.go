// Package epochbits provides per-epoch boolean state packed into a
// fixed-width unsigned integer.
//
// Bit i of a [Bitfield] (counting from the least significant bit) holds
// the state of epoch i. Whether a set bit means "active" or "claimed" is
// up to the caller. The width W is fixed when the value is built and may
// be anything from 1 to [MaxWidth] bits.
//
// # Usage
//
// Start from an empty or full bitfield and move whole suffixes of epochs
// at once:
//
//	b, err := epochbits.Empty(epochbits.DemoWidth)
//	if err != nil {
//	    return err
//	}
//
//	// participant joins at epoch 5
//	b, err = b.ActivateFrom(5)
//	if err != nil {
//	    return err
//	}
//
//	// participant leaves at epoch 10
//	b, err = b.DeactivateFrom(10)
//
// Both operations leave every bit below the cutoff untouched and force
// every bit at or above it. Applying one after the other with a smaller
// cutoff overwrites the whole suffix from the smaller cutoff onward.
//
// # Errors
//
// Epochs and mask lengths outside [0, W] are rejected with an error that
// matches [ErrInvalidEpoch]. Nothing is clamped.
//
// # Concurrency
//
// Bitfield is a plain value. Every operation returns a new value and never
// modifies its receiver, so sharing a Bitfield between goroutines needs
// no locking. Callers that keep a mutable slot must synchronize it
// themselves.
//
// # Version
//
// Current version: 1.0.0
// Minimum compatible version: 1.0.0
//
// See version.go for version constants that can be used programmatically.
package epochbits
