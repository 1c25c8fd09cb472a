package segment

import (
	"context"

	"github.com/hupe1980/directobj/resource"
)

type options struct {
	ctx         context.Context
	compression Compression
	resource    *resource.Controller
}

// Option configures a Writer or Reader.
type Option func(*options)

func applyOptions(optFns []Option) options {
	opts := options{
		ctx: context.Background(),
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return opts
}

// WithCompression selects the record codec. Readers ignore it and use the
// codec recorded in the header.
func WithCompression(c Compression) Option {
	return func(o *options) {
		o.compression = c
	}
}

// WithResourceController throttles segment I/O through rc's IO limiter.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.resource = rc
	}
}

// WithContext sets the context that cancels throttled I/O waits.
func WithContext(ctx context.Context) Option {
	return func(o *options) {
		if ctx != nil {
			o.ctx = ctx
		}
	}
}
