package directmap

import "github.com/hupe1980/directobj"

// KeyCodec serializes map keys for SaveTo and LoadFrom.
type KeyCodec[K comparable] interface {
	KeySize(s *directobj.Sizer, k K) int
	PutKey(c *directobj.Cursor, k K)
	GetKey(c *directobj.Cursor) K
}

// StringKeys encodes string keys with the compact string encoding.
type StringKeys struct{}

func (StringKeys) KeySize(s *directobj.Sizer, k string) int { return s.String(&k).Size() }
func (StringKeys) PutKey(c *directobj.Cursor, k string)     { c.PutString(&k) }

func (StringKeys) GetKey(c *directobj.Cursor) string {
	if p := c.GetString(); p != nil {
		return *p
	}
	return ""
}

type integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

// IntKeys encodes integer keys as 8-byte longs.
type IntKeys[K integer] struct{}

func (IntKeys[K]) KeySize(s *directobj.Sizer, _ K) int { return s.Long().Size() }
func (IntKeys[K]) PutKey(c *directobj.Cursor, k K)     { c.PutLong(int64(k)) }
func (IntKeys[K]) GetKey(c *directobj.Cursor) K        { return K(c.GetLong()) }

// keyRecord adapts a key and its codec to directobj.Record.
type keyRecord[K comparable] struct {
	codec KeyCodec[K]
	key   K
}

func (r *keyRecord[K]) SerializedSize(s *directobj.Sizer) int { return r.codec.KeySize(s, r.key) }
func (r *keyRecord[K]) Serialize(c *directobj.Cursor)         { r.codec.PutKey(c, r.key) }
func (r *keyRecord[K]) Unserialize(c *directobj.Cursor)       { r.key = r.codec.GetKey(c) }
