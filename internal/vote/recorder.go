package vote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/abrank/internal/session"
)

// Outcome reports where a record ended up.
type Outcome int

const (
	// OutcomeRemote means the tracking endpoint accepted the record.
	OutcomeRemote Outcome = iota
	// OutcomeLocal means the record fell back to the local store.
	OutcomeLocal
	// OutcomeDropped means both the remote write and the fallback failed.
	OutcomeDropped
)

func (o Outcome) String() string {
	switch o {
	case OutcomeRemote:
		return "remote"
	case OutcomeLocal:
		return "local"
	default:
		return "dropped"
	}
}

// FallbackStore persists records that could not reach the tracking endpoint.
// Append-only, no deduplication.
type FallbackStore interface {
	Append(rec Record) error
	List() ([]Record, error)
}

// Recorder submits vote records to the tracking endpoint with a single-shot
// POST, no retry or backoff; transport timeouts belong to the http.Client.
type Recorder struct {
	endpoint string
	client   *http.Client
	fallback FallbackStore
	logger   *log.Logger
	now      func() time.Time
}

// RecorderOpts configures a Recorder. Endpoint is the tracking service base
// URL; Fallback may be nil (failed submissions are then dropped).
type RecorderOpts struct {
	Endpoint   string
	HTTPClient *http.Client
	Fallback   FallbackStore
	Logger     *log.Logger
	Now        func() time.Time
}

// NewRecorder creates a Recorder.
func NewRecorder(opts RecorderOpts) *Recorder {
	r := &Recorder{
		endpoint: opts.Endpoint,
		client:   opts.HTTPClient,
		fallback: opts.Fallback,
		logger:   opts.Logger,
		now:      opts.Now,
	}
	if r.client == nil {
		r.client = http.DefaultClient
	}
	if r.logger == nil {
		r.logger = log.New(nil)
	}
	if r.now == nil {
		r.now = time.Now
	}
	return r
}

// Submit delivers a record: remote first, local fallback on any failure.
func (r *Recorder) Submit(ctx context.Context, rec Record) Outcome {
	if err := r.postRecord(ctx, rec); err == nil {
		r.logger.Info("vote recorded", "session", rec.SessionID, "winner", rec.WinningSource)
		return OutcomeRemote
	} else {
		r.logger.Warn("remote submission failed, storing locally", "session", rec.SessionID, "error", err)
	}

	if r.fallback == nil {
		r.logger.Error("no fallback store, vote dropped", "session", rec.SessionID)
		return OutcomeDropped
	}

	if err := r.fallback.Append(rec); err != nil {
		r.logger.Error("fallback store failed, vote dropped", "session", rec.SessionID, "error", err)
		return OutcomeDropped
	}
	return OutcomeLocal
}

// SubmitSession builds and delivers the record for a finished session.
// Implements the state machine's Submitter; failures never propagate.
func (r *Recorder) SubmitSession(ctx context.Context, s *session.Session) {
	rec, err := BuildRecord(s, r.now())
	if err != nil {
		r.logger.Error("cannot build vote record", "error", err)
		return
	}
	r.Submit(ctx, rec)
}

func (r *Recorder) postRecord(ctx context.Context, rec Record) error {
	body, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode record: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint+"/track", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("tracking endpoint returned %d", resp.StatusCode)
	}
	return nil
}
