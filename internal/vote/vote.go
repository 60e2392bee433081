// package vote builds the submitted vote artifact and handles its delivery.
//
// A record is immutable once constructed. Delivery is best effort: the remote
// write is attempted once, and any failure lands the record in an append-only
// local store instead. The participant always reaches the result screen;
// submission failure is never user-visible.
package vote

import (
	"fmt"
	"time"

	"github.com/desertthunder/abrank/internal/playlists"
	"github.com/desertthunder/abrank/internal/session"
	"github.com/desertthunder/abrank/internal/shared"
)

// Record is the submitted vote artifact.
type Record struct {
	SessionID     string             `json:"sessionId"`
	Timestamp     string             `json:"timestamp"`
	SeedID        int                `json:"seedId"`
	SeedTitle     string             `json:"seedTitle"`
	UserChoice    session.Arm        `json:"userChoice"`
	WinningSource playlists.Source   `json:"winningSource"`
	Ratings       session.Ratings    `json:"ratings"`
	ArmMapping    session.ArmMapping `json:"armMapping"`
}

// BuildRecord derives the vote record from a finished session. The winning
// source is resolved through the session's arm mapping; the timestamp is
// ISO-8601 in UTC.
func BuildRecord(s *session.Session, now time.Time) (Record, error) {
	if s.ID == "" {
		return Record{}, shared.ErrMissingSession
	}
	if s.Seed == nil {
		return Record{}, fmt.Errorf("%w: session has no seed", shared.ErrNoSeedSelected)
	}

	winner, err := s.WinningSource()
	if err != nil {
		return Record{}, err
	}

	return Record{
		SessionID:     s.ID,
		Timestamp:     now.UTC().Format(time.RFC3339),
		SeedID:        s.Seed.ID,
		SeedTitle:     s.Seed.Title,
		UserChoice:    s.Choice,
		WinningSource: winner,
		Ratings:       s.Ratings,
		ArmMapping:    s.Mapping,
	}, nil
}
