package epochbits

import (
	"fmt"
	"math/bits"
)

const (
	// MaxWidth is the widest supported bitfield, one 256-bit storage slot.
	MaxWidth = 256

	// DemoWidth is a width small enough to read in logs.
	DemoWidth = 32

	wordBits  = 64
	wordCount = MaxWidth / wordBits
)

// Bitfield is a fixed-width set of epoch flags.
//
// The zero value has no width and is not usable; build one with Empty,
// Full, Bitmask or Parse.
type Bitfield struct {
	width int
	words [wordCount]uint64
}

// Empty returns a bitfield of the given width with every epoch cleared.
func Empty(width int) (Bitfield, error) {
	if err := checkWidth(width); err != nil {
		return Bitfield{}, err
	}
	return Bitfield{width: width}, nil
}

// Full returns a bitfield of the given width with every epoch set.
func Full(width int) (Bitfield, error) {
	if err := checkWidth(width); err != nil {
		return Bitfield{}, err
	}
	return Bitfield{width: width, words: lowMask(width)}, nil
}

// Bitmask returns a bitfield with the lowest n bits set and all higher
// bits clear. Bitmask(w, 0) is empty and Bitmask(w, w) is full.
func Bitmask(width, n int) (Bitfield, error) {
	if err := checkWidth(width); err != nil {
		return Bitfield{}, err
	}
	if n < 0 || n > width {
		return Bitfield{}, &EpochRangeError{Epoch: n, Max: width}
	}
	return Bitfield{width: width, words: lowMask(n)}, nil
}

// FromUint64 returns a bitfield holding v. It fails if v has bits at or
// above width.
func FromUint64(width int, v uint64) (Bitfield, error) {
	return FromWords(width, [wordCount]uint64{v})
}

// FromWords returns a bitfield from little-endian 64-bit words. It fails if
// any bit at or above width is set.
func FromWords(width int, words [wordCount]uint64) (Bitfield, error) {
	if err := checkWidth(width); err != nil {
		return Bitfield{}, err
	}
	limit := lowMask(width)
	for i := range words {
		if words[i]&^limit[i] != 0 {
			return Bitfield{}, fmt.Errorf("%w: %d bits", ErrValueTooWide, width)
		}
	}
	return Bitfield{width: width, words: words}, nil
}

// Width returns the number of epochs the bitfield holds.
func (b Bitfield) Width() int { return b.width }

// DeactivateFrom clears every epoch at or above from and keeps the epochs
// below it. It equals b AND Bitmask(W, from).
func (b Bitfield) DeactivateFrom(from int) (Bitfield, error) {
	if err := b.checkCutoff(from); err != nil {
		return Bitfield{}, err
	}
	keep := lowMask(from)
	out := b
	for i := range out.words {
		out.words[i] &= keep[i]
	}
	return out, nil
}

// ActivateFrom sets every epoch at or above from and keeps the epochs
// below it. It equals b OR (Full(W) XOR Bitmask(W, from)).
func (b Bitfield) ActivateFrom(from int) (Bitfield, error) {
	if err := b.checkCutoff(from); err != nil {
		return Bitfield{}, err
	}
	full := lowMask(b.width)
	keep := lowMask(from)
	out := b
	for i := range out.words {
		out.words[i] |= full[i] ^ keep[i]
	}
	return out, nil
}

// IsActive reports whether the flag for epoch is set.
func (b Bitfield) IsActive(epoch int) (bool, error) {
	if err := checkWidth(b.width); err != nil {
		return false, err
	}
	if epoch < 0 || epoch >= b.width {
		return false, &EpochRangeError{Epoch: epoch, Max: b.width - 1}
	}
	return b.words[epoch/wordBits]&(1<<(uint(epoch)%wordBits)) != 0, nil
}

// Count returns the number of set epochs.
func (b Bitfield) Count() int {
	n := 0
	for _, w := range b.words {
		n += bits.OnesCount64(w)
	}
	return n
}

// IsZero reports whether no epoch is set.
func (b Bitfield) IsZero() bool {
	return b.words == [wordCount]uint64{}
}

// Equal reports whether both bitfields have the same width and flags.
func (b Bitfield) Equal(o Bitfield) bool {
	return b.width == o.width && b.words == o.words
}

// Uint64 returns epochs 0 through 63.
func (b Bitfield) Uint64() uint64 { return b.words[0] }

// Words returns the little-endian 64-bit words backing the bitfield.
func (b Bitfield) Words() [wordCount]uint64 { return b.words }

// And returns the bitwise AND of b and o.
func (b Bitfield) And(o Bitfield) (Bitfield, error) {
	return b.combine(o, func(x, y uint64) uint64 { return x & y })
}

// Or returns the bitwise OR of b and o.
func (b Bitfield) Or(o Bitfield) (Bitfield, error) {
	return b.combine(o, func(x, y uint64) uint64 { return x | y })
}

// Xor returns the bitwise XOR of b and o.
func (b Bitfield) Xor(o Bitfield) (Bitfield, error) {
	return b.combine(o, func(x, y uint64) uint64 { return x ^ y })
}

func (b Bitfield) combine(o Bitfield, op func(x, y uint64) uint64) (Bitfield, error) {
	if err := checkWidth(b.width); err != nil {
		return Bitfield{}, err
	}
	if b.width != o.width {
		return Bitfield{}, fmt.Errorf("%w: %d != %d", ErrWidthMismatch, b.width, o.width)
	}
	out := Bitfield{width: b.width}
	for i := range out.words {
		out.words[i] = op(b.words[i], o.words[i])
	}
	return out, nil
}

func (b Bitfield) checkCutoff(from int) error {
	if err := checkWidth(b.width); err != nil {
		return err
	}
	if from < 0 || from > b.width {
		return &EpochRangeError{Epoch: from, Max: b.width}
	}
	return nil
}

// lowMask returns words with the lowest n bits set, 0 <= n <= MaxWidth.
func lowMask(n int) [wordCount]uint64 {
	var m [wordCount]uint64
	for i := range m {
		lo := i * wordBits
		switch {
		case n >= lo+wordBits:
			m[i] = ^uint64(0)
		case n > lo:
			m[i] = (uint64(1) << uint(n-lo)) - 1
		}
	}
	return m
}
