// package playback wraps the external media player used on the comparison step.
//
// The player daemon loads asynchronously and unpredictably relative to user
// actions, so readiness is modeled as a channel resolved exactly once; play
// requests arriving early wait (bounded by their context) instead of failing.
// Playback is a non-critical enhancement: every backend error is swallowed
// after logging and the experiment flow is never blocked by it.
package playback

import "context"

// Backend is the surface of the external player instance.
type Backend interface {
	// Load points the player at a new media id.
	Load(ctx context.Context, mediaID string) error
	// Play resumes or starts playback.
	Play() error
	// Pause halts playback without clearing the loaded media.
	Pause() error
	// SeekTo issues an absolute seek in seconds.
	SeekTo(seconds float64) error
	// Position reports the current position and total duration in seconds.
	Position() (current, duration float64, err error)
}

// BackendSource produces a Backend once the underlying player library has
// finished its asynchronous load.
type BackendSource interface {
	// Ready is closed exactly once when the backend becomes usable.
	Ready() <-chan struct{}
	// Err reports a permanent readiness failure, nil while pending or ready.
	Err() error
	// Backend returns the player instance. Valid only after Ready.
	Backend() Backend
}
