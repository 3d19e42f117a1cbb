package gateway

import (
	"time"

	"github.com/sirupsen/logrus"
)

type Options struct {
	BaseURL  string
	Timeout  time.Duration
	Headers  map[string]string
	Logger   *logrus.Logger
	Activity func(inflight int64)
}

type Option func(*Options)

func defaultOptions() Options {
	return Options{
		Timeout: 30 * time.Second,
		Headers: map[string]string{"Content-Type": "application/json"},
	}
}

// WithBaseURL sets the location relative paths are resolved against.
func WithBaseURL(url string) Option {
	return func(o *Options) {
		if url != "" {
			o.BaseURL = url
		}
	}
}

// WithTimeout bounds how long a single request may take end to end.
func WithTimeout(d time.Duration) Option {
	return func(o *Options) {
		if d > 0 {
			o.Timeout = d
		}
	}
}

// WithHeaders merges headers over the defaults; caller values win on
// conflict.
func WithHeaders(headers map[string]string) Option {
	return func(o *Options) {
		for k, v := range headers {
			o.Headers[k] = v
		}
	}
}

// WithLogger enables debug logging of requests and outcomes. The gateway
// never logs without one.
func WithLogger(logger *logrus.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// WithActivity installs a callback invoked with the new in-flight count
// whenever a request starts or settles, for driving loading indicators.
func WithActivity(fn func(inflight int64)) Option {
	return func(o *Options) {
		o.Activity = fn
	}
}
