package httpstub

import (
	"io"
	"net/http"
	"strings"
	"testing"
	"time"
)

func TestCannedRoutes(t *testing.T) {
	s := New(
		WithJSON(http.MethodGet, "/json", http.StatusTeapot, map[string]string{"k": "v"}),
		WithText(http.MethodGet, "/text", http.StatusOK, "hello"),
	)
	defer s.Close()

	resp, err := http.Get(s.BaseURL() + "/json")
	if err != nil {
		t.Fatalf("GET /json error = %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusTeapot {
		t.Fatalf("status = %d, want 418", resp.StatusCode)
	}
	if !strings.Contains(resp.Header.Get("Content-Type"), "application/json") {
		t.Fatalf("content type = %q", resp.Header.Get("Content-Type"))
	}
	if !strings.Contains(string(body), `"k":"v"`) {
		t.Fatalf("body = %q", body)
	}

	resp, err = http.Get(s.BaseURL() + "/text")
	if err != nil {
		t.Fatalf("GET /text error = %v", err)
	}
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	if string(body) != "hello" {
		t.Fatalf("body = %q, want %q", body, "hello")
	}
}

func TestDelayGivesUpWhenClientCancels(t *testing.T) {
	s := New(
		WithDelay(http.MethodGet, "/slow", time.Minute, func(c Context) error {
			return c.String(http.StatusOK, "too late")
		}),
	)
	defer s.Close()

	client := &http.Client{Timeout: 50 * time.Millisecond}
	start := time.Now()
	_, err := client.Get(s.BaseURL() + "/slow")
	if err == nil {
		t.Fatalf("expected client timeout")
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Fatalf("handler held the request for %s after cancellation", elapsed)
	}
}
