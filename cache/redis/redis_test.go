package redis

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/adeilh/go-fetchkit/cache"
)

// fakeRedis speaks just enough RESP (GET/SET/DEL/FLUSHDB, AUTH/SELECT) to
// exercise the store hermetically through WithDial.
type fakeRedis struct {
	mu       sync.Mutex
	data     map[string]fakeEntry
	authSeen string
	dbSeen   int
}

type fakeEntry struct {
	value     []byte
	expiresAt time.Time
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: map[string]fakeEntry{}}
}

func (f *fakeRedis) dial(_ context.Context, _ Options) (net.Conn, error) {
	client, server := net.Pipe()
	go f.serve(server)
	return client, nil
}

func (f *fakeRedis) serve(conn net.Conn) {
	defer conn.Close()
	reader := bufio.NewReader(conn)
	for {
		cmd, err := readCommand(reader)
		if err != nil {
			return
		}
		if err := f.handle(conn, cmd); err != nil {
			return
		}
	}
}

func readCommand(r *bufio.Reader) ([]string, error) {
	resp, err := decodeRESP(r)
	if err != nil {
		return nil, err
	}
	arr, ok := resp.([]any)
	if !ok {
		return nil, errors.New("fake redis: command is not an array")
	}
	parts := make([]string, 0, len(arr))
	for _, item := range arr {
		b, ok := item.([]byte)
		if !ok {
			return nil, errors.New("fake redis: command part is not a bulk string")
		}
		parts = append(parts, string(b))
	}
	return parts, nil
}

func (f *fakeRedis) handle(conn net.Conn, cmd []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch cmd[0] {
	case "AUTH":
		f.authSeen = cmd[1]
		return reply(conn, "+OK\r\n")
	case "SELECT":
		f.dbSeen, _ = strconv.Atoi(cmd[1])
		return reply(conn, "+OK\r\n")
	case "SET":
		e := fakeEntry{value: []byte(cmd[2])}
		if len(cmd) == 5 && cmd[3] == "PX" {
			ms, _ := strconv.ParseInt(cmd[4], 10, 64)
			e.expiresAt = time.Now().Add(time.Duration(ms) * time.Millisecond)
		}
		f.data[cmd[1]] = e
		return reply(conn, "+OK\r\n")
	case "GET":
		e, ok := f.data[cmd[1]]
		if ok && !e.expiresAt.IsZero() && time.Now().After(e.expiresAt) {
			delete(f.data, cmd[1])
			ok = false
		}
		if !ok {
			return reply(conn, "$-1\r\n")
		}
		return reply(conn, fmt.Sprintf("$%d\r\n%s\r\n", len(e.value), e.value))
	case "DEL":
		n := 0
		if _, ok := f.data[cmd[1]]; ok {
			delete(f.data, cmd[1])
			n = 1
		}
		return reply(conn, fmt.Sprintf(":%d\r\n", n))
	case "FLUSHDB":
		f.data = map[string]fakeEntry{}
		return reply(conn, "+OK\r\n")
	default:
		return reply(conn, "-ERR unknown command\r\n")
	}
}

func reply(conn net.Conn, s string) error {
	_, err := conn.Write([]byte(s))
	return err
}

func newTestStore(t *testing.T, opts Options) (*Store, *fakeRedis) {
	t.Helper()
	fake := newFakeRedis()
	store := NewStore(opts)
	store.WithDial(fake.dial)
	return store, fake
}

func TestStoreSetGetDelete(t *testing.T) {
	store, _ := newTestStore(t, Options{})
	ctx := context.Background()

	if err := store.Set(ctx, "k", []byte("some-payload"), 0); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	payload, err := store.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(payload) != "some-payload" {
		t.Fatalf("Get() = %q, want %q", payload, "some-payload")
	}

	if err := store.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := store.Get(ctx, "k"); !errors.Is(err, cache.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStoreDeleteAbsentKeyIsNoOp(t *testing.T) {
	store, _ := newTestStore(t, Options{})

	if err := store.Delete(context.Background(), "missing"); err != nil {
		t.Fatalf("Delete() on absent key error = %v", err)
	}
}

func TestStoreSetWithTTLExpires(t *testing.T) {
	store, _ := newTestStore(t, Options{})
	ctx := context.Background()

	if err := store.Set(ctx, "k", []byte("v"), 30*time.Millisecond); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	time.Sleep(60 * time.Millisecond)

	if _, err := store.Get(ctx, "k"); !errors.Is(err, cache.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after TTL, got %v", err)
	}
}

func TestStoreClear(t *testing.T) {
	store, _ := newTestStore(t, Options{})
	ctx := context.Background()

	for _, key := range []string{"a", "b"} {
		if err := store.Set(ctx, key, []byte(key), 0); err != nil {
			t.Fatalf("Set(%q) error = %v", key, err)
		}
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	for _, key := range []string{"a", "b"} {
		if _, err := store.Get(ctx, key); !errors.Is(err, cache.ErrNotFound) {
			t.Fatalf("expected ErrNotFound for %q after Clear, got %v", key, err)
		}
	}
}

func TestStoreHandshake(t *testing.T) {
	store, fake := newTestStore(t, Options{Password: "hunter2", DB: 3})

	if err := store.Set(context.Background(), "k", []byte("v"), 0); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	fake.mu.Lock()
	defer fake.mu.Unlock()
	if fake.authSeen != "hunter2" {
		t.Fatalf("AUTH sent %q, want %q", fake.authSeen, "hunter2")
	}
	if fake.dbSeen != 3 {
		t.Fatalf("SELECT sent %d, want 3", fake.dbSeen)
	}
}

func TestStoreContextCancellation(t *testing.T) {
	store, _ := newTestStore(t, Options{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := store.Set(ctx, "any", []byte("value"), 0); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestStoreConcurrentSetGet(t *testing.T) {
	store, _ := newTestStore(t, Options{PoolSize: 4})

	const workers = 8
	const opsPerWorker = 25

	var wg sync.WaitGroup
	errCh := make(chan error, workers)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for i := 0; i < opsPerWorker; i++ {
				key := fmt.Sprintf("concurrent:%d:%d", worker, i)
				val := []byte(key)

				ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				if err := store.Set(ctx, key, val, time.Second); err != nil {
					errCh <- fmt.Errorf("worker %d set failed: %w", worker, err)
					cancel()
					return
				}
				payload, err := store.Get(ctx, key)
				cancel()
				if err != nil {
					errCh <- fmt.Errorf("worker %d get failed: %w", worker, err)
					return
				}
				if string(payload) != string(val) {
					errCh <- fmt.Errorf("worker %d mismatch: got %q want %q", worker, payload, val)
					return
				}
			}
		}(w)
	}

	wg.Wait()
	close(errCh)

	for err := range errCh {
		t.Errorf("concurrent op failed: %v", err)
	}
}
