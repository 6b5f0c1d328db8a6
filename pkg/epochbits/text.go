package epochbits

import (
	"encoding/binary"
	"fmt"
	"math/big"
	"strconv"
	"strings"
)

// String renders the bitfield as "0b" followed by exactly Width binary
// digits, most significant epoch first.
func (b Bitfield) String() string {
	var sb strings.Builder
	for i := wordCount - 1; i >= 0; i-- {
		fmt.Fprintf(&sb, "%064b", b.words[i])
	}
	digits := sb.String()
	return "0b" + digits[len(digits)-b.width:]
}

// Format returns a trace line: the binary form, then desc.
func (b Bitfield) Format(desc string) string {
	return b.String() + "        " + desc
}

// Hex renders the bitfield as a minimal "0x" hex literal.
func (b Bitfield) Hex() string {
	return "0x" + b.bigInt().Text(16)
}

// Parse reads a bitfield of the given width from a "0b", "0x", "0o" or
// decimal literal. Underscores are allowed between digits.
func Parse(width int, s string) (Bitfield, error) {
	if err := checkWidth(width); err != nil {
		return Bitfield{}, err
	}
	v, ok := new(big.Int).SetString(strings.TrimSpace(s), 0)
	if !ok {
		return Bitfield{}, fmt.Errorf("epochbits: parse %q: invalid literal", s)
	}
	if v.Sign() < 0 {
		return Bitfield{}, fmt.Errorf("epochbits: parse %q: negative value", s)
	}
	if v.BitLen() > width {
		return Bitfield{}, fmt.Errorf("%w: %q needs %d bits, width is %d", ErrValueTooWide, s, v.BitLen(), width)
	}

	var buf [MaxWidth / 8]byte
	v.FillBytes(buf[:])
	var words [wordCount]uint64
	for i := range words {
		end := len(buf) - i*8
		words[i] = binary.BigEndian.Uint64(buf[end-8 : end])
	}
	return Bitfield{width: width, words: words}, nil
}

// MarshalText encodes the bitfield as "<width>:<hex>", for example
// "32:0xffffffe0".
func (b Bitfield) MarshalText() ([]byte, error) {
	if err := checkWidth(b.width); err != nil {
		return nil, err
	}
	return []byte(strconv.Itoa(b.width) + ":" + b.Hex()), nil
}

// UnmarshalText decodes the form produced by MarshalText.
func (b *Bitfield) UnmarshalText(text []byte) error {
	ws, value, ok := strings.Cut(string(text), ":")
	if !ok {
		return fmt.Errorf("epochbits: decode %q: missing width", text)
	}
	width, err := strconv.Atoi(ws)
	if err != nil {
		return fmt.Errorf("epochbits: decode %q: %w", text, err)
	}
	parsed, err := Parse(width, value)
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}

func (b Bitfield) bigInt() *big.Int {
	var buf [MaxWidth / 8]byte
	for i, w := range b.words {
		end := len(buf) - i*8
		binary.BigEndian.PutUint64(buf[end-8:end], w)
	}
	return new(big.Int).SetBytes(buf[:])
}
