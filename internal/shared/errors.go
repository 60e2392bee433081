package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")
	ErrStoreDisabled = fmt.Errorf("key-value store not configured")

	// Experiment flow errors
	ErrSeedNotFound       = fmt.Errorf("seed not found")
	ErrNoSeedSelected     = fmt.Errorf("no seed selected")
	ErrNoChoice           = fmt.Errorf("no playlist chosen")
	ErrInvalidStep        = fmt.Errorf("invalid step transition")
	ErrEmptyOrdering      = fmt.Errorf("empty ordering")
	ErrUnknownArm         = fmt.Errorf("unknown arm label")
	ErrInvalidRating      = fmt.Errorf("rating out of range")
	ErrUnknownRating      = fmt.Errorf("unknown rating dimension")
	ErrMissingSession     = fmt.Errorf("missing session identifier")
	ErrPlayerNotReady     = fmt.Errorf("player backend not ready")
	ErrNothingPlaying     = fmt.Errorf("nothing playing")
	ErrTimeout            = fmt.Errorf("operation timed out")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
