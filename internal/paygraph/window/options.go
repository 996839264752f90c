package window

// DefaultWidthSec is the trailing window width in seconds.
const DefaultWidthSec int64 = 60

type options struct {
	width     int64
	recompute bool
	capHint   int
}

type Option func(*options)

// WithWidth sets the window width in seconds. Non-positive values are ignored.
func WithWidth(sec int64) Option {
	return func(o *options) {
		if sec > 0 {
			o.width = sec
		}
	}
}

// WithRecompute makes the controller sort every degree after each mutation
// instead of maintaining the order-statistics tree.
func WithRecompute() Option {
	return func(o *options) { o.recompute = true }
}

// WithCapHint pre-sizes the edge and vertex maps.
func WithCapHint(n int) Option {
	return func(o *options) { o.capHint = n }
}
