package directobj

// Record is a value that serializes itself into a block.
//
// Field order is fixed by the implementation and must be the same in all
// three methods; the bytes carry no schema. SerializedSize must account for
// exactly what Serialize writes, alignment included, and the record must not
// change between the two calls.
//
// A typical implementation:
//
//	func (b *Bean) SerializedSize(s *directobj.Sizer) int {
//		return s.String(b.Name).AlignInt().Int().Size()
//	}
//
//	func (b *Bean) Serialize(c *directobj.Cursor) {
//		c.PutString(b.Name)
//		c.AlignInt()
//		c.PutInt(b.Count)
//	}
//
//	func (b *Bean) Unserialize(c *directobj.Cursor) {
//		b.Name = c.GetString()
//		c.AlignInt()
//		b.Count = c.GetInt()
//	}
type Record interface {
	// SerializedSize adds the record's payload size to s and returns s.Size().
	SerializedSize(s *Sizer) int
	Serialize(c *Cursor)
	Unserialize(c *Cursor)
}

// FieldVisitor is driven by Fields.VisitFields once per field, in payload
// order. The same field list then sizes, writes and reads a record.
type FieldVisitor interface {
	Byte(v *int8)
	UnsignedByte(v *uint8)
	Bool(v *bool)
	Char(v *uint16)
	Short(v *int16)
	Int(v *int32)
	Long(v *int64)
	Float32(v *float32)
	Float64(v *float64)
	// Bytes covers a fixed-size raw field; reading fills v in place.
	Bytes(v []byte)
	String(v **string)
	StringFast(v **string)
	StringASCII(v **string)
	Chars(enc Encoding, v *[]uint16)
	AlignInt()
	AlignLong()
}

// Fields describes a record as a single ordered field list.
type Fields interface {
	VisitFields(v FieldVisitor)
}

// FieldRecord adapts f to Record. Since sizing, writing and reading all walk
// the same list, they cannot drift apart.
func FieldRecord(f Fields) Record {
	return fieldRecord{f}
}

type fieldRecord struct {
	Fields
}

func (r fieldRecord) SerializedSize(s *Sizer) int {
	r.VisitFields((*fieldSizer)(s))
	return s.Size()
}

func (r fieldRecord) Serialize(c *Cursor) {
	r.VisitFields((*fieldWriter)(c))
}

func (r fieldRecord) Unserialize(c *Cursor) {
	r.VisitFields((*fieldReader)(c))
}

type fieldSizer Sizer

func (s *fieldSizer) sizer() *Sizer { return (*Sizer)(s) }

func (s *fieldSizer) Byte(*int8)                    { s.sizer().Byte() }
func (s *fieldSizer) UnsignedByte(*uint8)           { s.sizer().UnsignedByte() }
func (s *fieldSizer) Bool(*bool)                    { s.sizer().Bool() }
func (s *fieldSizer) Char(*uint16)                  { s.sizer().Char() }
func (s *fieldSizer) Short(*int16)                  { s.sizer().Short() }
func (s *fieldSizer) Int(*int32)                    { s.sizer().Int() }
func (s *fieldSizer) Long(*int64)                   { s.sizer().Long() }
func (s *fieldSizer) Float32(*float32)              { s.sizer().Float32() }
func (s *fieldSizer) Float64(*float64)              { s.sizer().Float64() }
func (s *fieldSizer) Bytes(v []byte)                { s.sizer().Bytes(len(v)) }
func (s *fieldSizer) String(v **string)             { s.sizer().String(*v) }
func (s *fieldSizer) StringFast(v **string)         { s.sizer().StringFast(*v) }
func (s *fieldSizer) StringASCII(v **string)        { s.sizer().StringASCII(*v) }
func (s *fieldSizer) Chars(e Encoding, v *[]uint16) { s.sizer().Chars(e, *v) }
func (s *fieldSizer) AlignInt()                     { s.sizer().AlignInt() }
func (s *fieldSizer) AlignLong()                    { s.sizer().AlignLong() }

type fieldWriter Cursor

func (w *fieldWriter) c() *Cursor { return (*Cursor)(w) }

func (w *fieldWriter) Byte(v *int8)                  { w.c().PutByte(*v) }
func (w *fieldWriter) UnsignedByte(v *uint8)         { w.c().PutUnsignedByte(*v) }
func (w *fieldWriter) Bool(v *bool)                  { w.c().PutBool(*v) }
func (w *fieldWriter) Char(v *uint16)                { w.c().PutChar(*v) }
func (w *fieldWriter) Short(v *int16)                { w.c().PutShort(*v) }
func (w *fieldWriter) Int(v *int32)                  { w.c().PutInt(*v) }
func (w *fieldWriter) Long(v *int64)                 { w.c().PutLong(*v) }
func (w *fieldWriter) Float32(v *float32)            { w.c().PutFloat32(*v) }
func (w *fieldWriter) Float64(v *float64)            { w.c().PutFloat64(*v) }
func (w *fieldWriter) Bytes(v []byte)                { w.c().PutBytes(v) }
func (w *fieldWriter) String(v **string)             { w.c().PutString(*v) }
func (w *fieldWriter) StringFast(v **string)         { w.c().PutStringFast(*v) }
func (w *fieldWriter) StringASCII(v **string)        { w.c().PutStringASCII(*v) }
func (w *fieldWriter) Chars(e Encoding, v *[]uint16) { w.c().PutChars(e, *v) }
func (w *fieldWriter) AlignInt()                     { w.c().AlignInt() }
func (w *fieldWriter) AlignLong()                    { w.c().AlignLong() }

type fieldReader Cursor

func (r *fieldReader) c() *Cursor { return (*Cursor)(r) }

func (r *fieldReader) Byte(v *int8)                  { *v = r.c().GetByte() }
func (r *fieldReader) UnsignedByte(v *uint8)         { *v = r.c().GetUnsignedByte() }
func (r *fieldReader) Bool(v *bool)                  { *v = r.c().GetBool() }
func (r *fieldReader) Char(v *uint16)                { *v = r.c().GetChar() }
func (r *fieldReader) Short(v *int16)                { *v = r.c().GetShort() }
func (r *fieldReader) Int(v *int32)                  { *v = r.c().GetInt() }
func (r *fieldReader) Long(v *int64)                 { *v = r.c().GetLong() }
func (r *fieldReader) Float32(v *float32)            { *v = r.c().GetFloat32() }
func (r *fieldReader) Float64(v *float64)            { *v = r.c().GetFloat64() }
func (r *fieldReader) Bytes(v []byte)                { r.c().GetBytes(v) }
func (r *fieldReader) String(v **string)             { *v = r.c().GetString() }
func (r *fieldReader) StringFast(v **string)         { *v = r.c().GetStringFast() }
func (r *fieldReader) StringASCII(v **string)        { *v = r.c().GetStringASCII() }
func (r *fieldReader) Chars(e Encoding, v *[]uint16) { *v = r.c().GetChars(e) }
func (r *fieldReader) AlignInt()                     { r.c().AlignInt() }
func (r *fieldReader) AlignLong()                    { r.c().AlignLong() }
