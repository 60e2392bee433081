package stats

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/desertthunder/abrank/internal/playlists"
	"github.com/desertthunder/abrank/internal/session"
	"github.com/desertthunder/abrank/internal/shared"
	"github.com/desertthunder/abrank/internal/vote"
)

// setupMiniRedis creates a test Redis server backed store.
func setupMiniRedis(t *testing.T) *RedisStore {
	t.Helper()

	mr := miniredis.NewMiniRedis()
	if err := mr.Start(); err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewRedisStoreFromClient(client)
}

func rerankedWin(sessionID string, seedID int) vote.Record {
	return vote.Record{
		SessionID:     sessionID,
		Timestamp:     "2026-08-30T12:00:00Z",
		SeedID:        seedID,
		SeedTitle:     "Seed",
		UserChoice:    session.ArmB,
		WinningSource: playlists.SourceReranked,
		Ratings:       session.DefaultRatings(),
		ArmMapping:    session.ArmMapping{A: playlists.SourceBaseline, B: playlists.SourceReranked},
	}
}

func TestAggregateApply(t *testing.T) {
	t.Run("increments from existing totals", func(t *testing.T) {
		agg := Aggregate{
			TotalVotes:   10,
			BaselineWins: 6,
			RerankedWins: 4,
			BySeed:       map[string]SeedTally{},
		}

		agg.Apply(rerankedWin("test_x", 3))

		if agg.TotalVotes != 11 {
			t.Errorf("total = %d, want 11", agg.TotalVotes)
		}
		if agg.BaselineWins != 6 || agg.RerankedWins != 5 {
			t.Errorf("wins = %d/%d, want 6/5", agg.BaselineWins, agg.RerankedWins)
		}
		want := 5.0 / 11.0 * 100
		if math.Abs(agg.RerankedWinRate-want) > 0.01 {
			t.Errorf("win rate = %f, want %f", agg.RerankedWinRate, want)
		}
	})

	t.Run("initializes per-seed tally on first sight", func(t *testing.T) {
		agg := NewAggregate()
		agg.Apply(rerankedWin("test_y", 3))

		if tally := agg.BySeed["3"]; tally.Reranked != 1 || tally.Baseline != 0 {
			t.Errorf("seed tally = %+v", tally)
		}
	})

	t.Run("baseline win counted on the other side", func(t *testing.T) {
		rec := rerankedWin("test_z", 1)
		rec.WinningSource = playlists.SourceBaseline

		agg := NewAggregate()
		agg.Apply(rec)

		if agg.BaselineWins != 1 || agg.RerankedWins != 0 {
			t.Errorf("wins = %d/%d, want 1/0", agg.BaselineWins, agg.RerankedWins)
		}
		if agg.RerankedWinRate != 0 {
			t.Errorf("win rate = %f, want 0", agg.RerankedWinRate)
		}
	})
}

func TestServiceRecordVote(t *testing.T) {
	ctx := context.Background()

	t.Run("end to end", func(t *testing.T) {
		store := setupMiniRedis(t)
		svc := NewService(store, nil)

		if err := svc.RecordVote(ctx, rerankedWin("test_1", 3)); err != nil {
			t.Fatalf("record failed: %v", err)
		}
		if err := svc.RecordVote(ctx, rerankedWin("test_2", 3)); err != nil {
			t.Fatalf("record failed: %v", err)
		}

		agg, err := svc.GetStats(ctx)
		if err != nil {
			t.Fatalf("get stats failed: %v", err)
		}

		if agg.TotalVotes != 2 || agg.RerankedWins != 2 {
			t.Errorf("aggregate = %+v", agg)
		}
		if agg.RerankedWinRate != 100 {
			t.Errorf("win rate = %f, want 100", agg.RerankedWinRate)
		}
		if agg.BySeed["3"].Reranked != 2 {
			t.Errorf("seed 3 tally = %+v", agg.BySeed["3"])
		}

		// raw records are kept for replay
		records, err := svc.Votes(ctx, 0, -1)
		if err != nil {
			t.Fatalf("votes failed: %v", err)
		}
		if len(records) != 2 || records[0].SessionID != "test_1" {
			t.Errorf("stored records = %+v", records)
		}
	})

	t.Run("aggregate survives serialization", func(t *testing.T) {
		store := setupMiniRedis(t)
		svc := NewService(store, nil)

		if err := svc.RecordVote(ctx, rerankedWin("test_s", 7)); err != nil {
			t.Fatalf("record failed: %v", err)
		}

		val, found, err := store.Get(ctx, statsKey)
		if err != nil || !found {
			t.Fatalf("stored aggregate missing: found=%v err=%v", found, err)
		}

		var m map[string]any
		if err := json.Unmarshal([]byte(val), &m); err != nil {
			t.Fatalf("stored aggregate unreadable: %v", err)
		}
		for _, field := range []string{"total_votes", "baseline_wins", "reranked_wins", "reranked_win_rate", "by_seed"} {
			if _, ok := m[field]; !ok {
				t.Errorf("stored aggregate missing field %q", field)
			}
		}
	})

	t.Run("unconfigured store", func(t *testing.T) {
		svc := NewService(nil, nil)

		if err := svc.RecordVote(ctx, rerankedWin("test_d", 1)); !errors.Is(err, shared.ErrStoreDisabled) {
			t.Errorf("expected ErrStoreDisabled, got %v", err)
		}

		agg, err := svc.GetStats(ctx)
		if err != nil {
			t.Fatalf("degraded get stats must not error: %v", err)
		}
		if agg.TotalVotes != 0 || agg.Message == "" {
			t.Errorf("degraded aggregate = %+v", agg)
		}
	})
}

func TestServiceGetStatsEmpty(t *testing.T) {
	store := setupMiniRedis(t)
	svc := NewService(store, nil)

	agg, err := svc.GetStats(context.Background())
	if err != nil {
		t.Fatalf("get stats failed: %v", err)
	}
	if agg.TotalVotes != 0 || agg.BySeed == nil {
		t.Errorf("empty aggregate = %+v", agg)
	}
	if agg.Message != "" {
		t.Errorf("empty aggregate should carry no message, got %q", agg.Message)
	}
}

func TestRedisStoreOps(t *testing.T) {
	store := setupMiniRedis(t)
	ctx := context.Background()

	if _, found, err := store.Get(ctx, "missing"); err != nil || found {
		t.Errorf("missing key: found=%v err=%v", found, err)
	}

	if err := store.Set(ctx, "k", "v"); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if val, found, err := store.Get(ctx, "k"); err != nil || !found || val != "v" {
		t.Errorf("get = %q/%v/%v", val, found, err)
	}

	for _, v := range []string{"a", "b", "c"} {
		if err := store.Push(ctx, "list", v); err != nil {
			t.Fatalf("push failed: %v", err)
		}
	}
	vals, err := store.Range(ctx, "list", 0, -1)
	if err != nil {
		t.Fatalf("range failed: %v", err)
	}
	if len(vals) != 3 || vals[0] != "a" || vals[2] != "c" {
		t.Errorf("range = %v", vals)
	}

	if vals, err = store.Range(ctx, "list", 1, 1); err != nil || len(vals) != 1 || vals[0] != "b" {
		t.Errorf("bounded range = %v/%v", vals, err)
	}
}
