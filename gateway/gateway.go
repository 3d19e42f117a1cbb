// Package gateway issues HTTP requests with a bounded wait time, uniform
// header injection, content-type-aware decoding, and a normalized error
// taxonomy. It performs no retries and no presentation; callers decide what
// to do with a failure.
package gateway

import (
	"context"
	"errors"
	"net"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
)

// Gateway is the single entry point through which outbound calls are issued.
// It is safe for concurrent use; overlapping calls settle independently.
type Gateway struct {
	resty    *resty.Client
	timeout  time.Duration
	logger   *logrus.Logger
	activity func(int64)
	inflight atomic.Int64
}

func New(opts ...Option) *Gateway {
	cfg := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	rc := resty.New()
	if cfg.BaseURL != "" {
		rc.SetBaseURL(cfg.BaseURL)
	}
	if len(cfg.Headers) > 0 {
		rc.SetHeaders(cfg.Headers)
	}

	return &Gateway{
		resty:    rc,
		timeout:  cfg.Timeout,
		logger:   cfg.Logger,
		activity: cfg.Activity,
	}
}

// InFlight reports how many calls are currently outstanding on this gateway.
// It is a coarse "any request active" signal, not a per-call status.
func (g *Gateway) InFlight() int64 { return g.inflight.Load() }

type RequestOption func(*resty.Request)

// WithRequestHeaders sets headers on a single request, overriding the
// gateway defaults for that call.
func WithRequestHeaders(headers map[string]string) RequestOption {
	return func(r *resty.Request) {
		if len(headers) == 0 {
			return
		}
		r.SetHeaders(headers)
	}
}

// WithQuery sets query parameters on the request.
func WithQuery(params map[string]string) RequestOption {
	return func(r *resty.Request) {
		if len(params) == 0 {
			return
		}
		r.SetQueryParams(params)
	}
}

// WithBearer injects an Authorization header using the provided bearer token.
func WithBearer(token string) RequestOption {
	return func(r *resty.Request) {
		token = strings.TrimSpace(token)
		if token != "" {
			r.SetHeader("Authorization", "Bearer "+token)
		}
	}
}

func (g *Gateway) Get(ctx context.Context, path string, opts ...RequestOption) (*Result, error) {
	return g.do(ctx, resty.MethodGet, path, nil, opts...)
}

func (g *Gateway) Post(ctx context.Context, path string, body any, opts ...RequestOption) (*Result, error) {
	return g.do(ctx, resty.MethodPost, path, body, opts...)
}

func (g *Gateway) Put(ctx context.Context, path string, body any, opts ...RequestOption) (*Result, error) {
	return g.do(ctx, resty.MethodPut, path, body, opts...)
}

func (g *Gateway) Delete(ctx context.Context, path string, opts ...RequestOption) (*Result, error) {
	return g.do(ctx, resty.MethodDelete, path, nil, opts...)
}

func (g *Gateway) do(ctx context.Context, method, path string, body any, opts ...RequestOption) (*Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	// The deadline and the response race; defer releases the timer
	// whichever side wins.
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	g.track(1)
	defer g.track(-1)

	req := g.resty.R().SetContext(ctx)
	for _, opt := range opts {
		if opt != nil {
			opt(req)
		}
	}
	if body != nil {
		req.SetBody(body)
	}

	start := time.Now()
	resp, err := req.Execute(method, path)
	if err != nil {
		err = g.classify(err)
		g.log(method, path, 0, time.Since(start), err)
		return nil, err
	}

	result := &Result{
		Status:      resp.StatusCode(),
		Header:      resp.Header(),
		ContentType: resp.Header().Get("Content-Type"),
		Body:        resp.Body(),
	}
	if resp.IsError() {
		err := &HTTPError{Status: result.Status, Message: failureMessage(result)}
		g.log(method, path, result.Status, time.Since(start), err)
		return result, err
	}
	if err := result.decode(); err != nil {
		g.log(method, path, result.Status, time.Since(start), err)
		return result, err
	}
	g.log(method, path, result.Status, time.Since(start), nil)
	return result, nil
}

func (g *Gateway) track(delta int64) {
	n := g.inflight.Add(delta)
	if g.activity != nil {
		g.activity(n)
	}
}

// classify maps transport failures onto the gateway taxonomy: deadline
// expiry becomes ErrTimeout, everything else passes through as a network
// error with its message unchanged.
func (g *Gateway) classify(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &timeoutError{timeout: g.timeout}
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return &timeoutError{timeout: g.timeout}
	}
	return &NetworkError{Err: err}
}

type timeoutError struct {
	timeout time.Duration
}

func (e *timeoutError) Error() string {
	return ErrTimeout.Error() + " after " + e.timeout.String()
}

func (e *timeoutError) Unwrap() error { return ErrTimeout }

func (g *Gateway) log(method, path string, status int, elapsed time.Duration, err error) {
	if g.logger == nil {
		return
	}
	fields := logrus.Fields{
		"method":   method,
		"path":     path,
		"status":   status,
		"duration": elapsed,
	}
	if err != nil {
		g.logger.WithFields(fields).WithError(err).Debug("request failed")
		return
	}
	g.logger.WithFields(fields).Debug("request completed")
}
