package directobj_test

import (
	"github.com/hupe1980/directobj"
)

func strp(s string) *string { return &s }

// bean mixes the three string encodings with alignment in between.
type bean struct {
	Str1 *string
	Str2 *string
	Str3 *string
}

func (b *bean) SerializedSize(s *directobj.Sizer) int {
	return s.String(b.Str1).AlignInt().
		StringFast(b.Str2).AlignInt().
		StringASCII(b.Str3).Size()
}

func (b *bean) Serialize(c *directobj.Cursor) {
	c.PutString(b.Str1)
	c.AlignInt()
	c.PutStringFast(b.Str2)
	c.AlignInt()
	c.PutStringASCII(b.Str3)
}

func (b *bean) Unserialize(c *directobj.Cursor) {
	b.Str1 = c.GetString()
	c.AlignInt()
	b.Str2 = c.GetStringFast()
	c.AlignInt()
	b.Str3 = c.GetStringASCII()
}

// primitives covers every fixed-size field type through a field list.
type primitives struct {
	B    int8
	UB   uint8
	Flag bool
	Ch   uint16
	S    int16
	I    int32
	L    int64
	F32  float32
	F64  float64
	ID   [6]byte
	Name *string
	Raw  []uint16
}

func (p *primitives) VisitFields(v directobj.FieldVisitor) {
	v.Byte(&p.B)
	v.UnsignedByte(&p.UB)
	v.Bool(&p.Flag)
	v.Char(&p.Ch)
	v.Short(&p.S)
	v.AlignInt()
	v.Int(&p.I)
	v.AlignLong()
	v.Long(&p.L)
	v.Float32(&p.F32)
	v.AlignLong()
	v.Float64(&p.F64)
	v.Bytes(p.ID[:])
	v.String(&p.Name)
	v.Chars(directobj.Fast, &p.Raw)
}

// liar declares fewer bytes than it writes.
type liar struct{}

func (liar) SerializedSize(s *directobj.Sizer) int { return s.Int().Size() }
func (liar) Serialize(c *directobj.Cursor)         { c.PutLong(42) }
func (liar) Unserialize(c *directobj.Cursor)       { c.GetLong() }

// modest declares more bytes than it writes.
type modest struct{}

func (modest) SerializedSize(s *directobj.Sizer) int { return s.Long().Size() }
func (modest) Serialize(c *directobj.Cursor)         { c.PutInt(7) }
func (modest) Unserialize(c *directobj.Cursor)       { c.GetInt() }
