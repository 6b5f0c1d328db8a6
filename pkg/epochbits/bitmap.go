package epochbits

import (
	"math/bits"

	"github.com/RoaringBitmap/roaring/v2"
)

// Bitmap returns the set epochs as a roaring bitmap.
func (b Bitfield) Bitmap() *roaring.Bitmap {
	rb := roaring.New()
	for i, w := range b.words {
		for w != 0 {
			rb.Add(uint32(i*wordBits + bits.TrailingZeros64(w)))
			w &= w - 1
		}
	}
	return rb
}

// Epochs returns the set epochs in ascending order.
func (b Bitfield) Epochs() []uint32 {
	return b.Bitmap().ToArray()
}

// FromBitmap builds a bitfield of the given width with the epochs in rb
// set. Every epoch in rb must be below width.
func FromBitmap(width int, rb *roaring.Bitmap) (Bitfield, error) {
	if err := checkWidth(width); err != nil {
		return Bitfield{}, err
	}
	out := Bitfield{width: width}
	if rb == nil || rb.IsEmpty() {
		return out, nil
	}
	if hi := int(rb.Maximum()); hi >= width {
		return Bitfield{}, &EpochRangeError{Epoch: hi, Max: width - 1}
	}
	it := rb.Iterator()
	for it.HasNext() {
		e := it.Next()
		out.words[e/wordBits] |= 1 << (e % wordBits)
	}
	return out, nil
}
