package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/desertthunder/abrank/internal/stats"
)

func setupHandler(t *testing.T) *TrackHandler {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	service := stats.NewService(stats.NewRedisStoreFromClient(client), nil)
	return NewTrackHandler(service, nil)
}

func voteBody(t *testing.T, sessionID string) *bytes.Buffer {
	t.Helper()

	body, err := json.Marshal(map[string]any{
		"sessionId":     sessionID,
		"timestamp":     "2026-08-30T12:00:00Z",
		"seedId":        3,
		"seedTitle":     "LOVE YOU",
		"userChoice":    "B",
		"winningSource": "reranked",
		"ratings":       map[string]int{"emotional": 4, "narrative": 3, "keepability": 5},
		"armMapping":    map[string]string{"A": "baseline", "B": "reranked"},
	})
	if err != nil {
		t.Fatalf("failed to marshal vote body: %v", err)
	}

	return bytes.NewBuffer(body)
}

func TestTrackHandlerVote(t *testing.T) {
	t.Run("records a vote and echoes the session id", func(t *testing.T) {
		handler := setupHandler(t)

		req := httptest.NewRequest(http.MethodPost, "/track", voteBody(t, "test_abc"))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}

		var resp map[string]any
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}

		if resp["success"] != true {
			t.Errorf("expected success=true, got %v", resp["success"])
		}

		if resp["testId"] != "test_abc" {
			t.Errorf("expected testId test_abc, got %v", resp["testId"])
		}
	})

	t.Run("rejects a vote without a session id", func(t *testing.T) {
		handler := setupHandler(t)

		req := httptest.NewRequest(http.MethodPost, "/track", voteBody(t, ""))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("rejects an unreadable body", func(t *testing.T) {
		handler := setupHandler(t)

		req := httptest.NewRequest(http.MethodPost, "/track", strings.NewReader("{not json"))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("acknowledges votes when no store is configured", func(t *testing.T) {
		handler := NewTrackHandler(stats.NewService(nil, nil), nil)

		req := httptest.NewRequest(http.MethodPost, "/track", voteBody(t, "test_abc"))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}

		var resp map[string]any
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}

		if resp["success"] != true {
			t.Errorf("expected success=true, got %v", resp["success"])
		}

		if resp["warning"] == nil || resp["warning"] == "" {
			t.Error("expected a warning in the response")
		}
	})

	t.Run("reports a store failure", func(t *testing.T) {
		mr := miniredis.RunT(t)
		client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { client.Close() })

		handler := NewTrackHandler(stats.NewService(stats.NewRedisStoreFromClient(client), nil), nil)
		mr.Close()

		req := httptest.NewRequest(http.MethodPost, "/track", voteBody(t, "test_abc"))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusInternalServerError {
			t.Errorf("expected 500, got %d", rec.Code)
		}
	})
}

func TestTrackHandlerStats(t *testing.T) {
	t.Run("returns the aggregate after votes land", func(t *testing.T) {
		handler := setupHandler(t)

		for range 2 {
			req := httptest.NewRequest(http.MethodPost, "/track", voteBody(t, "test_abc"))
			handler.ServeHTTP(httptest.NewRecorder(), req)
		}

		req := httptest.NewRequest(http.MethodGet, "/track", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}

		var agg stats.Aggregate
		if err := json.Unmarshal(rec.Body.Bytes(), &agg); err != nil {
			t.Fatalf("failed to decode aggregate: %v", err)
		}

		if agg.TotalVotes != 2 {
			t.Errorf("expected 2 votes, got %d", agg.TotalVotes)
		}

		if agg.RerankedWins != 2 {
			t.Errorf("expected 2 reranked wins, got %d", agg.RerankedWins)
		}
	})

	t.Run("returns a message when no store is configured", func(t *testing.T) {
		handler := NewTrackHandler(stats.NewService(nil, nil), nil)

		req := httptest.NewRequest(http.MethodGet, "/track", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}

		var agg stats.Aggregate
		if err := json.Unmarshal(rec.Body.Bytes(), &agg); err != nil {
			t.Fatalf("failed to decode aggregate: %v", err)
		}

		if agg.TotalVotes != 0 {
			t.Errorf("expected 0 votes, got %d", agg.TotalVotes)
		}

		if agg.Message == "" {
			t.Error("expected a message in the degraded response")
		}
	})
}

func TestTrackHandlerMethods(t *testing.T) {
	handler := setupHandler(t)

	t.Run("answers preflight with an empty 200", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/track", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", rec.Code)
		}

		if rec.Body.Len() != 0 {
			t.Errorf("expected empty body, got %q", rec.Body.String())
		}
	})

	t.Run("rejects unsupported methods", func(t *testing.T) {
		for _, method := range []string{http.MethodDelete, http.MethodPut, http.MethodPatch} {
			req := httptest.NewRequest(method, "/track", nil)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusMethodNotAllowed {
				t.Errorf("%s: expected 405, got %d", method, rec.Code)
			}
		}
	})
}
