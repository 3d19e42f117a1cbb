package redis

import (
	"bufio"
	"context"
	"net"
	"strconv"
	"time"
)

type clientConn struct {
	net.Conn
	reader *bufio.Reader
}

func (s *Store) acquireConn(ctx context.Context) (*clientConn, error) {
	select {
	case conn := <-s.pool:
		return conn, nil
	default:
		return s.newConn(ctx)
	}
}

func (s *Store) releaseConn(conn *clientConn, broken bool) {
	if conn == nil {
		return
	}
	if broken {
		_ = conn.Close()
		return
	}
	select {
	case s.pool <- conn:
	default:
		_ = conn.Close()
	}
}

func (s *Store) newConn(ctx context.Context) (*clientConn, error) {
	nc, err := s.dial(ctx)
	if err != nil {
		return nil, err
	}
	reader := bufio.NewReader(nc)
	if err := s.handshake(nc, reader); err != nil {
		_ = nc.Close()
		return nil, err
	}
	return &clientConn{Conn: nc, reader: reader}, nil
}

func (s *Store) dial(ctx context.Context) (net.Conn, error) {
	if s.dialFn == nil {
		s.dialFn = defaultDial
	}
	return s.dialFn(ctx, s.opts)
}

// handshake authenticates and selects the configured database before the
// connection joins the pool.
func (s *Store) handshake(conn net.Conn, reader *bufio.Reader) error {
	if s.opts.Password != "" {
		if err := s.sendRaw(conn, "AUTH", s.opts.Password); err != nil {
			return err
		}
		if err := expectOK(reader); err != nil {
			return err
		}
	}
	if s.opts.DB > 0 {
		if err := s.sendRaw(conn, "SELECT", strconv.Itoa(s.opts.DB)); err != nil {
			return err
		}
		if err := expectOK(reader); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) send(conn *clientConn, parts ...string) error {
	if err := applyDeadline(conn.SetWriteDeadline, s.opts.WriteTimeout); err != nil {
		return err
	}
	_, err := conn.Write(encodeCommand(parts...))
	return err
}

func (s *Store) read(conn *clientConn) (any, error) {
	if err := applyDeadline(conn.SetReadDeadline, s.opts.ReadTimeout); err != nil {
		return nil, err
	}
	return decodeRESP(conn.reader)
}

// sendRaw is used during handshake before the buffered reader is wrapped.
func (s *Store) sendRaw(conn net.Conn, parts ...string) error {
	if err := applyDeadline(conn.SetWriteDeadline, s.opts.WriteTimeout); err != nil {
		return err
	}
	_, err := conn.Write(encodeCommand(parts...))
	return err
}

func defaultDial(ctx context.Context, opts Options) (net.Conn, error) {
	dialer := &net.Dialer{Timeout: opts.DialTimeout}
	return dialer.DialContext(ctx, "tcp", opts.Addr)
}

func applyDeadline(setter func(time.Time) error, timeout time.Duration) error {
	if timeout <= 0 {
		return nil
	}
	return setter(time.Now().Add(timeout))
}
