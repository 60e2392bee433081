// package session implements the experiment session: blind arm assignment and
// the multi-step state machine that drives one comparison run.
//
// A session lives from test start to reset. Arm mapping is fixed exactly once
// per session at start and never mutated afterward; everything else (choice,
// ratings, step) is mutable through the [Machine] API so transition guards
// and playback-stop rules hold everywhere.
package session

import (
	"fmt"

	"github.com/desertthunder/abrank/internal/catalog"
	"github.com/desertthunder/abrank/internal/playlists"
	"github.com/desertthunder/abrank/internal/shared"
)

// Step is one stage of the experiment wizard.
type Step string

const (
	StepSeedSelection Step = "seed_selection"
	StepComparison    Step = "comparison"
	StepRating        Step = "rating"
	StepResult        Step = "result"
)

// Arm is one of the two blinded positions shown to the participant.
type Arm string

const (
	ArmA Arm = "A"
	ArmB Arm = "B"
	// ArmNone marks the absence of a choice.
	ArmNone Arm = ""
)

// ArmMapping records which source each arm label hides this session.
type ArmMapping struct {
	A playlists.Source `json:"A"`
	B playlists.Source `json:"B"`
}

// SourceFor resolves the source behind an arm label.
func (m ArmMapping) SourceFor(arm Arm) (playlists.Source, error) {
	switch arm {
	case ArmA:
		return m.A, nil
	case ArmB:
		return m.B, nil
	default:
		return "", fmt.Errorf("%w: %q", shared.ErrUnknownArm, arm)
	}
}

// Dimension names one auxiliary rating axis.
type Dimension string

const (
	DimEmotional   Dimension = "emotional"
	DimNarrative   Dimension = "narrative"
	DimKeepability Dimension = "keepability"
)

const (
	RatingMin     = 1
	RatingMax     = 5
	RatingDefault = 3
)

// Ratings holds the 1..5 auxiliary scores captured on the rating step.
type Ratings struct {
	Emotional   int `json:"emotional"`
	Narrative   int `json:"narrative"`
	Keepability int `json:"keepability"`
}

// DefaultRatings returns every dimension at its midpoint default.
func DefaultRatings() Ratings {
	return Ratings{Emotional: RatingDefault, Narrative: RatingDefault, Keepability: RatingDefault}
}

// Get returns the score for a dimension.
func (r Ratings) Get(dim Dimension) int {
	switch dim {
	case DimEmotional:
		return r.Emotional
	case DimNarrative:
		return r.Narrative
	case DimKeepability:
		return r.Keepability
	}
	return 0
}

func (r *Ratings) set(dim Dimension, v int) error {
	v = max(RatingMin, min(RatingMax, v))
	switch dim {
	case DimEmotional:
		r.Emotional = v
	case DimNarrative:
		r.Narrative = v
	case DimKeepability:
		r.Keepability = v
	default:
		return fmt.Errorf("%w: %q", shared.ErrUnknownRating, dim)
	}
	return nil
}

// Session is the mutable state of one experiment run.
type Session struct {
	ID      string
	Step    Step
	Seed    *catalog.Seed
	Mapping ArmMapping
	// Orderings are the length-balanced lists keyed by their blinded arm.
	OrderingA playlists.Ordering
	OrderingB playlists.Ordering
	Choice    Arm
	Ratings   Ratings
}

// newSession returns a session at defaults: seed selection, no choice,
// midpoint ratings, no id (assigned at test start).
func newSession() Session {
	return Session{
		Step:    StepSeedSelection,
		Choice:  ArmNone,
		Ratings: DefaultRatings(),
	}
}

// Ordering returns the balanced ordering shown under an arm label.
func (s *Session) Ordering(arm Arm) playlists.Ordering {
	if arm == ArmB {
		return s.OrderingB
	}
	return s.OrderingA
}

// WinningSource resolves the source behind the participant's choice.
func (s *Session) WinningSource() (playlists.Source, error) {
	if s.Choice == ArmNone {
		return "", shared.ErrNoChoice
	}
	return s.Mapping.SourceFor(s.Choice)
}
