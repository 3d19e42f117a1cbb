// Package httpstub runs a throwaway echo server with canned responses, used
// to exercise gateway callers without a real backend. Routes can be delayed
// to provoke client timeouts.
package httpstub

import (
	"net/http/httptest"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// Handler aliases echo.HandlerFunc so callers can stay within httpstub
// imports for simple stubs.
type Handler = echo.HandlerFunc

// Context aliases echo.Context.
type Context = echo.Context

type Server struct {
	echo *echo.Echo
	ts   *httptest.Server
}

type Option func(*Server)

// New builds the stub routes and starts the server; callers must Close it.
func New(opts ...Option) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())

	s := &Server{echo: e}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	s.ts = httptest.NewServer(e)
	return s
}

// BaseURL returns the server's base URL.
func (s *Server) BaseURL() string {
	if s == nil || s.ts == nil {
		return ""
	}
	return s.ts.URL
}

func (s *Server) Close() {
	if s != nil && s.ts != nil {
		s.ts.Close()
	}
}

// WithJSON registers a route answering with the given status and JSON body.
func WithJSON(method, path string, status int, body any) Option {
	return WithHandler(method, path, func(c Context) error {
		return c.JSON(status, body)
	})
}

// WithText registers a route answering with a plain-text body.
func WithText(method, path string, status int, body string) Option {
	return WithHandler(method, path, func(c Context) error {
		return c.String(status, body)
	})
}

// WithDelay wraps a route so it waits before answering, or gives up early
// when the client abandons the request.
func WithDelay(method, path string, delay time.Duration, h Handler) Option {
	return WithHandler(method, path, func(c Context) error {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-timer.C:
			return h(c)
		case <-c.Request().Context().Done():
			return c.Request().Context().Err()
		}
	})
}

// WithHandler registers an arbitrary handler.
func WithHandler(method, path string, h Handler) Option {
	return func(s *Server) {
		s.echo.Add(method, path, h)
	}
}
