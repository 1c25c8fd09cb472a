package directmap

type options struct {
	inPlace  bool
	capacity int
}

// Option configures a Map.
type Option func(*options)

// WithInPlaceUpdate makes Put rewrite an existing entry's block through
// Block.Update instead of replacing it. The record must not change between
// its size computation and the write.
func WithInPlaceUpdate() Option {
	return func(o *options) {
		o.inPlace = true
	}
}

// WithCapacity preallocates room for n entries.
func WithCapacity(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.capacity = n
		}
	}
}
