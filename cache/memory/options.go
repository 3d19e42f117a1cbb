package memory

import "time"

type Options struct {
	DefaultTTL time.Duration
	Now        func() time.Time
}

type Option func(*Options)

func defaultOptions() Options {
	return Options{
		DefaultTTL: DefaultTTL,
		Now:        time.Now,
	}
}

// WithDefaultTTL sets the TTL applied when a put does not carry its own.
func WithDefaultTTL(d time.Duration) Option {
	return func(o *Options) {
		if d > 0 {
			o.DefaultTTL = d
		}
	}
}

// WithNow overrides the clock (useful for tests).
func WithNow(fn func() time.Time) Option {
	return func(o *Options) {
		if fn != nil {
			o.Now = fn
		}
	}
}
