package directobj

// Sizer accumulates the payload size of a record without writing it. Each
// method mirrors the Cursor put of the same name and uses the same formula,
// alignment included.
//
// The zero value is ready to use.
type Sizer struct {
	n int
}

// Size returns the accumulated size.
func (s *Sizer) Size() int { return s.n }

// Reset sets the accumulated size back to zero.
func (s *Sizer) Reset() { s.n = 0 }

// Add accounts for n raw bytes.
func (s *Sizer) Add(n int) *Sizer {
	s.n += n
	return s
}

func (s *Sizer) Byte() *Sizer         { return s.Add(1) }
func (s *Sizer) UnsignedByte() *Sizer { return s.Add(1) }
func (s *Sizer) Bool() *Sizer         { return s.Add(1) }
func (s *Sizer) Char() *Sizer         { return s.Add(2) }
func (s *Sizer) Short() *Sizer        { return s.Add(2) }
func (s *Sizer) Int() *Sizer          { return s.Add(4) }
func (s *Sizer) Float32() *Sizer      { return s.Add(4) }
func (s *Sizer) Long() *Sizer         { return s.Add(8) }
func (s *Sizer) Float64() *Sizer      { return s.Add(8) }

// Bytes accounts for n raw bytes, like Cursor.PutBytes of an n-byte slice.
func (s *Sizer) Bytes(n int) *Sizer { return s.Add(n) }

func (s *Sizer) String(v *string) *Sizer      { return s.Add(StringLen(v)) }
func (s *Sizer) StringFast(v *string) *Sizer  { return s.Add(StringFastLen(v)) }
func (s *Sizer) StringASCII(v *string) *Sizer { return s.Add(StringASCIILen(v)) }

func (s *Sizer) Chars(enc Encoding, u []uint16) *Sizer { return s.Add(CharsLen(enc, u)) }

func (s *Sizer) AlignInt() *Sizer {
	s.n = AlignPositionInt(s.n)
	return s
}

func (s *Sizer) AlignLong() *Sizer {
	s.n = AlignPositionLong(s.n)
	return s
}
