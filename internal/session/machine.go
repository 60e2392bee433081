package session

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/abrank/internal/catalog"
	"github.com/desertthunder/abrank/internal/playlists"
	"github.com/desertthunder/abrank/internal/shared"
)

// PlaybackStopper is the playback controller surface the machine needs:
// audio must never carry across a step boundary.
type PlaybackStopper interface {
	Stop()
}

// Submitter records a finished session's vote. Implementations must be
// best-effort: submission failure is never surfaced to the participant.
type Submitter interface {
	SubmitSession(ctx context.Context, s *Session)
}

// Machine owns the session and enforces the step transition rules:
//
//	seed_selection → comparison → rating → result
//
// with backwards edges comparison→seed_selection and rating→comparison.
// Result is terminal except for Reset. Any transition away from comparison
// stops playback.
type Machine struct {
	catalog  *catalog.Catalog
	provider *playlists.Provider
	rng      *rand.Rand
	playback PlaybackStopper
	recorder Submitter
	logger   *log.Logger

	session Session
}

// MachineOpts configures a Machine. Catalog and Provider are required;
// Playback and Recorder may be nil (no-ops).
type MachineOpts struct {
	Catalog  *catalog.Catalog
	Provider *playlists.Provider
	Rand     *rand.Rand
	Playback PlaybackStopper
	Recorder Submitter
	Logger   *log.Logger
}

// NewMachine creates a machine with a fresh session at seed selection.
func NewMachine(opts MachineOpts) *Machine {
	m := &Machine{
		catalog:  opts.Catalog,
		provider: opts.Provider,
		rng:      opts.Rand,
		playback: opts.Playback,
		recorder: opts.Recorder,
		logger:   opts.Logger,
		session:  newSession(),
	}
	if m.rng == nil {
		m.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if m.logger == nil {
		m.logger = log.New(nil)
	}
	return m
}

// Session exposes the current session state for rendering. Callers must not
// mutate it directly; all mutation goes through the machine.
func (m *Machine) Session() *Session {
	return &m.session
}

// Start begins a test run for the selected seed: generates the session id,
// assigns arms with a fresh coin flip, fetches and balances the orderings,
// clears any prior choice, and advances to the comparison step.
func (m *Machine) Start(seedID int) error {
	if m.session.Step != StepSeedSelection {
		return fmt.Errorf("%w: start from %s", shared.ErrInvalidStep, m.session.Step)
	}

	seed, err := m.catalog.ByID(seedID)
	if err != nil {
		return err
	}

	pair := playlists.Balance(m.provider.GetOrderings(seedID))
	if len(pair.Baseline) == 0 {
		return fmt.Errorf("%w: seed %d", shared.ErrEmptyOrdering, seedID)
	}

	mapping := AssignArms(m.rng)

	m.session.ID = shared.GenerateSessionID()
	m.session.Seed = &seed
	m.session.Mapping = mapping
	m.session.OrderingA = pair.BySource(mapping.A)
	m.session.OrderingB = pair.BySource(mapping.B)
	m.session.Choice = ArmNone
	m.session.Step = StepComparison

	m.logger.Info("test started",
		"session", m.session.ID,
		"seed", seedID,
		"tracks", len(pair.Baseline),
		"demo", !m.provider.HasData(seedID))
	return nil
}

// Choose records the participant's forced-choice preference. Valid only on
// the comparison step.
func (m *Machine) Choose(arm Arm) error {
	if m.session.Step != StepComparison {
		return fmt.Errorf("%w: choose on %s", shared.ErrInvalidStep, m.session.Step)
	}
	if arm != ArmA && arm != ArmB {
		return fmt.Errorf("%w: %q", shared.ErrUnknownArm, arm)
	}
	m.session.Choice = arm
	return nil
}

// ToRating advances comparison → rating. Requires a recorded choice; playback
// stops so no audio crosses the step boundary.
func (m *Machine) ToRating() error {
	if m.session.Step != StepComparison {
		return fmt.Errorf("%w: to rating from %s", shared.ErrInvalidStep, m.session.Step)
	}
	if m.session.Choice == ArmNone {
		return shared.ErrNoChoice
	}
	m.stopPlayback()
	m.session.Step = StepRating
	return nil
}

// SetRating stores an auxiliary score, clamped to 1..5.
func (m *Machine) SetRating(dim Dimension, v int) error {
	if m.session.Step != StepRating {
		return fmt.Errorf("%w: rate on %s", shared.ErrInvalidStep, m.session.Step)
	}
	return m.session.Ratings.set(dim, v)
}

// Submit finishes the run: the vote is recorded (best effort, never blocking
// the flow) and the session advances to the result step.
func (m *Machine) Submit(ctx context.Context) error {
	if m.session.Step != StepRating {
		return fmt.Errorf("%w: submit from %s", shared.ErrInvalidStep, m.session.Step)
	}

	m.stopPlayback()
	if m.recorder != nil {
		m.recorder.SubmitSession(ctx, &m.session)
	}
	m.session.Step = StepResult
	return nil
}

// BackToComparison steps rating → comparison, keeping choice and ratings.
func (m *Machine) BackToComparison() error {
	if m.session.Step != StepRating {
		return fmt.Errorf("%w: back to comparison from %s", shared.ErrInvalidStep, m.session.Step)
	}
	m.session.Step = StepComparison
	return nil
}

// BackToSeeds steps comparison → seed_selection. The arm mapping of the
// abandoned run is discarded with the session on the next Start.
func (m *Machine) BackToSeeds() error {
	if m.session.Step != StepComparison {
		return fmt.Errorf("%w: back to seeds from %s", shared.ErrInvalidStep, m.session.Step)
	}
	m.stopPlayback()
	m.session.Step = StepSeedSelection
	return nil
}

// Reset destroys the session and returns to seed selection with everything at
// defaults, ratings included.
func (m *Machine) Reset() {
	m.stopPlayback()
	m.session = newSession()
}

func (m *Machine) stopPlayback() {
	if m.playback != nil {
		m.playback.Stop()
	}
}
