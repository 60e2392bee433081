package stats

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/abrank/internal/playlists"
	"github.com/desertthunder/abrank/internal/shared"
	"github.com/desertthunder/abrank/internal/vote"
)

const (
	votesKey = "abrank:votes"
	statsKey = "abrank:stats"
)

// SeedTally counts wins per source for one seed.
type SeedTally struct {
	Baseline int `json:"baseline"`
	Reranked int `json:"reranked"`
}

// Aggregate is the running win summary over every recorded vote.
type Aggregate struct {
	TotalVotes      int                  `json:"total_votes"`
	BaselineWins    int                  `json:"baseline_wins"`
	RerankedWins    int                  `json:"reranked_wins"`
	RerankedWinRate float64              `json:"reranked_win_rate"`
	BySeed          map[string]SeedTally `json:"by_seed"`
	Message         string               `json:"message,omitempty"`
}

// NewAggregate returns a zeroed aggregate with an initialized seed map.
func NewAggregate() Aggregate {
	return Aggregate{BySeed: map[string]SeedTally{}}
}

// Apply folds one vote into the aggregate and recomputes the win rate.
func (a *Aggregate) Apply(rec vote.Record) {
	a.TotalVotes++

	if rec.WinningSource == playlists.SourceReranked {
		a.RerankedWins++
	} else {
		a.BaselineWins++
	}

	a.RerankedWinRate = float64(a.RerankedWins) / float64(a.TotalVotes) * 100

	if a.BySeed == nil {
		a.BySeed = map[string]SeedTally{}
	}
	seedKey := strconv.Itoa(rec.SeedID)
	tally := a.BySeed[seedKey]
	if rec.WinningSource == playlists.SourceReranked {
		tally.Reranked++
	} else {
		tally.Baseline++
	}
	a.BySeed[seedKey] = tally
}

// Service records votes and serves the aggregate. A nil store puts the
// service in degraded mode: votes are acknowledged but not persisted and
// stats read back zeroed.
type Service struct {
	store  Store
	logger *log.Logger
}

// NewService creates a statistics service over the given store, which may be
// nil when no key-value backend is configured.
func NewService(store Store, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(nil)
	}
	return &Service{store: store, logger: logger}
}

// Enabled reports whether a backing store is configured.
func (s *Service) Enabled() bool {
	return s.store != nil
}

// RecordVote appends the raw record and folds it into the aggregate.
//
// The aggregate update is get-then-set over shared state: two concurrent
// votes can read the same snapshot and the second write wins, silently
// dropping the first increment. Counters are therefore approximate under
// concurrency; the record list in votesKey stays complete and is the
// authoritative replay source.
func (s *Service) RecordVote(ctx context.Context, rec vote.Record) error {
	if s.store == nil {
		return shared.ErrStoreDisabled
	}

	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode vote record: %w", err)
	}

	if err := s.store.Push(ctx, votesKey, string(payload)); err != nil {
		return fmt.Errorf("failed to append vote: %w", err)
	}

	agg, err := s.loadAggregate(ctx)
	if err != nil {
		return err
	}
	agg.Apply(rec)

	data, err := json.Marshal(agg)
	if err != nil {
		return fmt.Errorf("failed to encode aggregate: %w", err)
	}
	if err := s.store.Set(ctx, statsKey, string(data)); err != nil {
		return fmt.Errorf("failed to write aggregate: %w", err)
	}

	s.logger.Info("vote recorded",
		"session", rec.SessionID,
		"seed", rec.SeedID,
		"winner", rec.WinningSource,
		"total", agg.TotalVotes)
	return nil
}

// GetStats returns the stored aggregate. Missing data or an unconfigured
// store produce a zeroed aggregate, never an error visible to participants.
func (s *Service) GetStats(ctx context.Context) (Aggregate, error) {
	if s.store == nil {
		agg := NewAggregate()
		agg.Message = "key-value store not configured"
		return agg, nil
	}
	return s.loadAggregate(ctx)
}

// Votes returns the stored raw records between start and stop inclusive
// (Redis LRANGE semantics: 0, -1 is everything).
func (s *Service) Votes(ctx context.Context, start, stop int64) ([]vote.Record, error) {
	if s.store == nil {
		return nil, shared.ErrStoreDisabled
	}

	payloads, err := s.store.Range(ctx, votesKey, start, stop)
	if err != nil {
		return nil, fmt.Errorf("failed to read vote list: %w", err)
	}

	records := make([]vote.Record, 0, len(payloads))
	for _, p := range payloads {
		var rec vote.Record
		if err := json.Unmarshal([]byte(p), &rec); err != nil {
			return nil, fmt.Errorf("failed to decode stored vote: %w", err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func (s *Service) loadAggregate(ctx context.Context) (Aggregate, error) {
	val, found, err := s.store.Get(ctx, statsKey)
	if err != nil {
		return Aggregate{}, fmt.Errorf("failed to read aggregate: %w", err)
	}
	if !found {
		return NewAggregate(), nil
	}

	var agg Aggregate
	if err := json.Unmarshal([]byte(val), &agg); err != nil {
		return Aggregate{}, fmt.Errorf("failed to decode aggregate: %w", err)
	}
	if agg.BySeed == nil {
		agg.BySeed = map[string]SeedTally{}
	}
	return agg, nil
}
