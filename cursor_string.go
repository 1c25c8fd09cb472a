package directobj

import (
	"iter"
	"strings"
	"unicode"
	"unicode/utf16"
)

// Encoding selects how a string's UTF-16 code units are stored.
//
// All encodings start with a signed 32-bit unit count; -1 marks a nil string.
type Encoding uint8

const (
	// Compact stores each unit in 1 to 3 bytes, 7 bits per byte, low bits
	// first, the high bit of a byte flagging a continuation. Units below
	// 0x80 take one byte.
	Compact Encoding = iota
	// Fast stores each unit as 2 bytes in native order.
	Fast
	// ASCII stores the low byte of each unit. Reading maps every byte to
	// the code point of the same value (Latin-1), so only units up to 0xFF
	// survive a round trip.
	ASCII
)

func (e Encoding) String() string {
	switch e {
	case Compact:
		return "compact"
	case Fast:
		return "fast"
	case ASCII:
		return "ascii"
	default:
		return "unknown"
	}
}

const nullLen = -1

// units yields the UTF-16 code units of s. Invalid UTF-8 yields U+FFFD.
func units(s string) iter.Seq[uint16] {
	return func(yield func(uint16) bool) {
		for _, r := range s {
			if r >= 0x10000 {
				hi, lo := utf16.EncodeRune(r)
				if !yield(uint16(hi)) || !yield(uint16(lo)) { //nolint:gosec // surrogates fit 16 bits
					return
				}
				continue
			}
			if !yield(uint16(r)) { //nolint:gosec // r < 0x10000
				return
			}
		}
	}
}

// unitCount returns the number of UTF-16 code units in s.
func unitCount(s string) int {
	n := 0
	for _, r := range s {
		n++
		if r >= 0x10000 {
			n++
		}
	}
	return n
}

func compactUnitLen(u uint16) int {
	switch {
	case u < 0x80:
		return 1
	case u < 0x4000:
		return 2
	default:
		return 3
	}
}

func unitLen(enc Encoding, u uint16) int {
	switch enc {
	case Fast:
		return 2
	case ASCII:
		return 1
	default:
		return compactUnitLen(u)
	}
}

// StringLen returns the encoded size of s in the compact encoding.
func StringLen(s *string) int {
	if s == nil {
		return 4
	}
	n := 4
	for u := range units(*s) {
		n += compactUnitLen(u)
	}
	return n
}

// StringFastLen returns the encoded size of s in the fast encoding.
func StringFastLen(s *string) int {
	if s == nil {
		return 4
	}
	return 4 + 2*unitCount(*s)
}

// StringASCIILen returns the encoded size of s in the ASCII encoding.
func StringASCIILen(s *string) int {
	if s == nil {
		return 4
	}
	return 4 + unitCount(*s)
}

// CharsLen returns the encoded size of a raw code unit sequence.
func CharsLen(enc Encoding, u []uint16) int {
	if u == nil {
		return 4
	}
	switch enc {
	case Fast:
		return 4 + 2*len(u)
	case ASCII:
		return 4 + len(u)
	}
	n := 4
	for _, v := range u {
		n += compactUnitLen(v)
	}
	return n
}

func (c *Cursor) putUnit(enc Encoding, u uint16) {
	switch enc {
	case Fast:
		c.PutChar(u)
	case ASCII:
		c.PutUnsignedByte(uint8(u)) //nolint:gosec // truncation is the encoding
	default:
		switch {
		case u < 0x80:
			c.PutUnsignedByte(uint8(u))
		case u < 0x4000:
			c.PutUnsignedByte(uint8(u&0x7F) | 0x80)
			c.PutUnsignedByte(uint8(u >> 7))
		default:
			c.PutUnsignedByte(uint8(u&0x7F) | 0x80)
			c.PutUnsignedByte(uint8(u>>7&0x7F) | 0x80)
			c.PutUnsignedByte(uint8(u >> 14))
		}
	}
}

func (c *Cursor) getUnit(enc Encoding) uint16 {
	switch enc {
	case Fast:
		return c.GetChar()
	case ASCII:
		return uint16(c.GetUnsignedByte())
	}

	b := c.GetUnsignedByte()
	u := uint16(b & 0x7F)
	if b&0x80 == 0 {
		return u
	}
	b = c.GetUnsignedByte()
	u |= uint16(b&0x7F) << 7
	if b&0x80 == 0 {
		return u
	}
	return u | uint16(c.GetUnsignedByte())<<14
}

func (c *Cursor) putString(enc Encoding, s *string) {
	if s == nil {
		c.PutInt(nullLen)
		return
	}
	c.PutInt(int32(unitCount(*s))) //nolint:gosec // bounded by the payload size
	for u := range units(*s) {
		c.putUnit(enc, u)
	}
}

// getCount reads a unit count. It returns -1 for nil and fails the pass for
// a count that cannot fit in the rest of the payload.
func (c *Cursor) getCount() int {
	n := int(c.GetInt())
	if n == nullLen {
		return nullLen
	}
	if n < 0 || n > c.Remaining() {
		c.fail()
		return nullLen
	}
	return n
}

func (c *Cursor) getString(enc Encoding) *string {
	n := c.getCount()
	if n == nullLen {
		return nil
	}

	u := c.units[:0]
	for range n {
		u = append(u, c.getUnit(enc))
	}
	c.units = u

	var sb strings.Builder
	sb.Grow(len(u))
	for i := 0; i < len(u); i++ {
		r := rune(u[i])
		if utf16.IsSurrogate(r) && i+1 < len(u) {
			if dec := utf16.DecodeRune(r, rune(u[i+1])); dec != unicode.ReplacementChar {
				sb.WriteRune(dec)
				i++
				continue
			}
		}
		sb.WriteRune(r) // lone surrogates become U+FFFD
	}
	s := sb.String()
	return &s
}

// PutString writes s in the compact encoding.
func (c *Cursor) PutString(s *string) { c.putString(Compact, s) }

// GetString reads a compact-encoded string; nil if a nil string was written.
func (c *Cursor) GetString() *string { return c.getString(Compact) }

// PutStringFast writes s in the fast encoding.
func (c *Cursor) PutStringFast(s *string) { c.putString(Fast, s) }

// GetStringFast reads a fast-encoded string.
func (c *Cursor) GetStringFast() *string { return c.getString(Fast) }

// PutStringASCII writes s in the ASCII encoding.
func (c *Cursor) PutStringASCII(s *string) { c.putString(ASCII, s) }

// GetStringASCII reads an ASCII-encoded string.
func (c *Cursor) GetStringASCII() *string { return c.getString(ASCII) }

// PutChars writes raw UTF-16 code units. Unlike the string variants it
// preserves every value in 0x0000-0xFFFF, lone surrogates included.
// A nil slice is written as the null marker.
func (c *Cursor) PutChars(enc Encoding, u []uint16) {
	if u == nil {
		c.PutInt(nullLen)
		return
	}
	c.PutInt(int32(len(u))) //nolint:gosec // bounded by the payload size
	for _, v := range u {
		c.putUnit(enc, v)
	}
}

// GetChars reads raw UTF-16 code units into a new slice; nil for the null
// marker.
func (c *Cursor) GetChars(enc Encoding) []uint16 {
	n := c.getCount()
	if n == nullLen {
		return nil
	}
	u := make([]uint16, n)
	for i := range u {
		u[i] = c.getUnit(enc)
	}
	return u
}
