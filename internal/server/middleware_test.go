package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestCORSMiddleware(t *testing.T) {
	handler := CORSMiddleware()(okHandler())

	t.Run("sets permissive headers on ordinary requests", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/track", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		tests := []struct {
			header string
			want   string
		}{
			{"Access-Control-Allow-Origin", "*"},
			{"Access-Control-Allow-Methods", "GET, POST, OPTIONS"},
			{"Access-Control-Allow-Headers", "Content-Type"},
		}

		for _, tc := range tests {
			if got := rec.Header().Get(tc.header); got != tc.want {
				t.Errorf("%s = %q, want %q", tc.header, got, tc.want)
			}
		}
	})

	t.Run("short-circuits preflight requests", func(t *testing.T) {
		called := false
		wrapped := CORSMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
		}))

		req := httptest.NewRequest(http.MethodOptions, "/track", nil)
		rec := httptest.NewRecorder()
		wrapped.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", rec.Code)
		}

		if called {
			t.Error("preflight should not reach the handler")
		}

		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
			t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
		}
	})
}

func TestRateLimitMiddleware(t *testing.T) {
	handler := RateLimitMiddleware(1, 2)(okHandler())

	codes := make([]int, 0, 3)
	for range 3 {
		req := httptest.NewRequest(http.MethodGet, "/track", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusOK {
		t.Errorf("expected the first two requests to pass, got %v", codes)
	}

	if codes[2] != http.StatusTooManyRequests {
		t.Errorf("expected the third request to be limited, got %d", codes[2])
	}
}

func TestMiddlewareOrdering(t *testing.T) {
	var order []string

	tag := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	router := NewBasicRouter()
	router.Use(tag("first"))
	router.Use(tag("second"))
	router.Handle(http.MethodGet, "/ping", okHandler())

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Errorf("middleware ran in order %v, want [first second]", order)
	}
}
