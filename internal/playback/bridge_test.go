package playback

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	tu "github.com/desertthunder/abrank/internal/testing"
)

func TestBridgeReadiness(t *testing.T) {
	t.Run("resolves once healthy", func(t *testing.T) {
		var checks atomic.Int64
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/health" {
				http.NotFound(w, r)
				return
			}
			// unhealthy for the first two probes
			if checks.Add(1) < 3 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		b := NewBridge(BridgeOpts{
			BaseURL:       srv.URL,
			ProbeDelay:    5 * time.Millisecond,
			ProbeAttempts: 10,
		})

		select {
		case <-b.Ready():
		case <-time.After(time.Second):
			t.Fatal("bridge never became ready")
		}

		if err := b.Err(); err != nil {
			t.Errorf("unexpected readiness error: %v", err)
		}
		if got := checks.Load(); got != 3 {
			t.Errorf("expected 3 health checks, got %d", got)
		}
	})

	t.Run("gives up after bounded attempts", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		b := NewBridge(BridgeOpts{
			BaseURL:       srv.URL,
			ProbeDelay:    2 * time.Millisecond,
			ProbeAttempts: 3,
		})

		deadline := time.After(time.Second)
		for b.Err() == nil {
			select {
			case <-deadline:
				t.Fatal("bridge never reported a permanent failure")
			case <-time.After(5 * time.Millisecond):
			}
		}

		select {
		case <-b.Ready():
			t.Error("ready must not resolve after a permanent failure")
		default:
		}
	})
}

func TestBridgeBackendCalls(t *testing.T) {
	type call struct {
		method string
		path   string
		body   map[string]any
	}
	var calls []call

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c := call{method: r.Method, path: r.URL.Path}
		if r.Method == http.MethodPost {
			_ = json.NewDecoder(r.Body).Decode(&c.body)
		}
		calls = append(calls, c)

		if r.URL.Path == "/position" {
			_ = json.NewEncoder(w).Encode(map[string]float64{"current": 42.5, "duration": 180})
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	b := NewBridge(BridgeOpts{BaseURL: srv.URL, ProbeDelay: time.Millisecond, ProbeAttempts: 2})
	<-b.Ready()
	calls = nil

	if err := b.Load(context.Background(), "media-1"); err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if err := b.Play(); err != nil {
		t.Fatalf("play failed: %v", err)
	}
	if err := b.SeekTo(90); err != nil {
		t.Fatalf("seek failed: %v", err)
	}

	current, duration, err := b.Position()
	if err != nil {
		t.Fatalf("position failed: %v", err)
	}
	if current != 42.5 || duration != 180 {
		t.Errorf("position = %f/%f, want 42.5/180", current, duration)
	}

	if len(calls) != 4 {
		t.Fatalf("expected 4 daemon calls, got %d: %+v", len(calls), calls)
	}
	if calls[0].path != "/load" || calls[0].body["mediaId"] != "media-1" {
		t.Errorf("unexpected load call: %+v", calls[0])
	}
	if calls[1].path != "/play" {
		t.Errorf("unexpected play call: %+v", calls[1])
	}
	if calls[2].path != "/seek" || calls[2].body["position"] != 90.0 {
		t.Errorf("unexpected seek call: %+v", calls[2])
	}
	if calls[3].path != "/position" || calls[3].method != http.MethodGet {
		t.Errorf("unexpected position call: %+v", calls[3])
	}
}

func TestBridgeCallTimeout(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			w.WriteHeader(http.StatusOK)
			return
		}
		// daemon accepts the connection but never answers
		<-release
	}))
	defer srv.Close()

	b := NewBridge(BridgeOpts{
		BaseURL:       srv.URL,
		ProbeDelay:    time.Millisecond,
		ProbeAttempts: 2,
		CallTimeout:   30 * time.Millisecond,
	})
	<-b.Ready()

	start := time.Now()
	if err := b.Pause(); err == nil {
		t.Error("expected pause against a stalled daemon to fail")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("pause blocked %v, want bounded by the call timeout", elapsed)
	}

	if err := b.Load(context.Background(), "m1"); err == nil {
		t.Error("expected load against a stalled daemon to fail")
	}
	if _, _, err := b.Position(); err == nil {
		t.Error("expected position against a stalled daemon to fail")
	}
}

func TestBridgeErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	b := NewBridge(BridgeOpts{BaseURL: srv.URL, ProbeDelay: time.Millisecond, ProbeAttempts: 2})
	<-b.Ready()

	if err := b.Play(); err == nil {
		t.Error("expected error for 500 response")
	}
	if _, _, err := b.Position(); err == nil {
		t.Error("expected error for 500 position response")
	}
}

func TestBridgePositionUnreadableBody(t *testing.T) {
	resp := &http.Response{
		StatusCode: http.StatusOK,
		Body:       &tu.FCloser{},
		Header:     http.Header{},
	}
	client := &http.Client{Transport: tu.NewMockRoundTripper(resp, nil)}

	b := NewBridge(BridgeOpts{
		BaseURL:       "http://daemon.invalid",
		HTTPClient:    client,
		ProbeDelay:    time.Millisecond,
		ProbeAttempts: 1,
	})
	<-b.Ready()

	if _, _, err := b.Position(); err == nil {
		t.Error("expected decode error for an unreadable position body")
	}
}
