package playback

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/abrank/internal/playlists"
	"github.com/desertthunder/abrank/internal/session"
)

const (
	defaultTickInterval = 250 * time.Millisecond
	defaultReadyWait    = 5 * time.Second
)

// State is a snapshot of the playback UI state.
type State struct {
	Item     playlists.Item
	Arm      session.Arm
	MediaID  string
	Playing  bool
	Visible  bool
	Progress float64 // 0..100
}

// Controller manages the single player instance behind the comparison step:
// load/toggle/seek/advance plus a periodic progress loop bound to the playing
// state. The loop re-checks its stop condition on every tick because user
// actions interleave with it; it must never outlive a Stop.
type Controller struct {
	source BackendSource
	logger *log.Logger
	notify func(State)

	tick      time.Duration
	readyWait time.Duration

	mu         sync.Mutex
	backend    Backend
	item       playlists.Item
	arm        session.Arm
	mediaID    string
	playing    bool
	visible    bool
	progress   float64
	queueA     playlists.Ordering
	queueB     playlists.Ordering
	loopCancel context.CancelFunc
}

// ControllerOpts configures a Controller. OnUpdate receives a state snapshot
// after every observable change, progress ticks included; it may be nil.
type ControllerOpts struct {
	Source       BackendSource
	Logger       *log.Logger
	OnUpdate     func(State)
	TickInterval time.Duration
	ReadyWait    time.Duration
}

// NewController creates a controller around an asynchronously-loading backend.
func NewController(opts ControllerOpts) *Controller {
	c := &Controller{
		source:    opts.Source,
		logger:    opts.Logger,
		notify:    opts.OnUpdate,
		tick:      opts.TickInterval,
		readyWait: opts.ReadyWait,
	}
	if c.logger == nil {
		c.logger = log.New(nil)
	}
	if c.notify == nil {
		c.notify = func(State) {}
	}
	if c.tick <= 0 {
		c.tick = defaultTickInterval
	}
	if c.readyWait <= 0 {
		c.readyWait = defaultReadyWait
	}
	return c
}

// SetQueue installs the balanced per-arm orderings for Next/Previous.
func (c *Controller) SetQueue(a, b playlists.Ordering) {
	c.mu.Lock()
	c.queueA = a
	c.queueB = b
	c.mu.Unlock()
}

// State returns the current playback snapshot.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

func (c *Controller) stateLocked() State {
	return State{
		Item:     c.item,
		Arm:      c.arm,
		MediaID:  c.mediaID,
		Playing:  c.playing,
		Visible:  c.visible,
		Progress: c.progress,
	}
}

// Play handles a track play request from the UI.
//
// Items without a media id show the "now playing" panel with no audio.
// Re-playing the loaded media toggles play/pause instead of reloading.
// Otherwise the request waits for backend readiness (bounded), then loads
// and starts the new media. Failures degrade silently; playback is never
// allowed to break the experiment flow.
func (c *Controller) Play(ctx context.Context, item playlists.Item, arm session.Arm) {
	c.mu.Lock()
	c.visible = true
	c.item = item
	if arm != session.ArmNone {
		c.arm = arm
	}

	if !item.Playable() {
		c.playing = false
		c.mediaID = ""
		c.progress = 0
		c.stopLoopLocked()
		state := c.stateLocked()
		c.mu.Unlock()
		c.notify(state)
		return
	}

	if c.backend != nil && c.mediaID == item.MediaID {
		call := c.toggleLocked()
		state := c.stateLocked()
		c.mu.Unlock()
		c.notify(state)
		if err := call(); err != nil {
			c.logger.Debug("toggle failed", "error", err)
		}
		return
	}

	c.mediaID = item.MediaID
	c.progress = 0
	c.mu.Unlock()

	backend := c.awaitBackend(ctx)
	if backend == nil {
		c.logger.Warn("playback unavailable, continuing without audio", "media", item.MediaID)
		return
	}

	if err := backend.Load(ctx, item.MediaID); err != nil {
		c.logger.Warn("failed to load media", "media", item.MediaID, "error", err)
		return
	}
	if err := backend.Play(); err != nil {
		c.logger.Warn("failed to start playback", "media", item.MediaID, "error", err)
		return
	}

	c.mu.Lock()
	// a Stop may have raced the load; don't resurrect cleared state
	if c.mediaID != item.MediaID {
		c.mu.Unlock()
		return
	}
	c.backend = backend
	c.playing = true
	c.startLoopLocked()
	state := c.stateLocked()
	c.mu.Unlock()
	c.notify(state)
}

// Toggle flips play/pause for the loaded media.
func (c *Controller) Toggle() {
	c.mu.Lock()
	if c.backend == nil || c.mediaID == "" {
		c.mu.Unlock()
		return
	}
	call := c.toggleLocked()
	state := c.stateLocked()
	c.mu.Unlock()
	c.notify(state)
	if err := call(); err != nil {
		c.logger.Debug("toggle failed", "error", err)
	}
}

// toggleLocked flips the playing flag and the progress loop, and returns the
// matching backend call. Callers hold c.mu and must run the returned call
// only after releasing it; a stalled daemon must never hold the mutex.
func (c *Controller) toggleLocked() func() error {
	backend := c.backend
	if c.playing {
		c.playing = false
		c.stopLoopLocked()
		return backend.Pause
	}
	c.playing = true
	c.startLoopLocked()
	return backend.Play
}

// Seek maps a 0..1 fraction of the progress track to an absolute position.
// No-op while the duration is unknown or not positive.
func (c *Controller) Seek(fraction float64) {
	fraction = max(0, min(1, fraction))

	c.mu.Lock()
	backend := c.backend
	if backend == nil || c.mediaID == "" {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	_, duration, err := backend.Position()
	if err != nil || duration <= 0 {
		return
	}

	if err := backend.SeekTo(fraction * duration); err != nil {
		c.logger.Debug("seek failed", "error", err)
		return
	}

	c.mu.Lock()
	c.progress = fraction * 100
	state := c.stateLocked()
	c.mu.Unlock()
	c.notify(state)
}

// Next advances to the neighbor after the playing item within its arm's
// ordering, wrapping last → first.
func (c *Controller) Next(ctx context.Context) {
	c.step(ctx, 1)
}

// Previous retreats to the neighbor before the playing item, wrapping
// first → last.
func (c *Controller) Previous(ctx context.Context) {
	c.step(ctx, -1)
}

func (c *Controller) step(ctx context.Context, delta int) {
	c.mu.Lock()
	queue := c.queueA
	if c.arm == session.ArmB {
		queue = c.queueB
	}
	mediaID := c.mediaID
	arm := c.arm
	c.mu.Unlock()

	if mediaID == "" || len(queue) == 0 {
		return
	}

	idx, ok := playlists.FindByMediaID(queue, mediaID)
	if !ok {
		return
	}

	next := queue[(idx+delta+len(queue))%len(queue)]
	c.Play(ctx, next, arm)
}

// Stop clears the playback state, hides the panel, and cancels the progress
// loop, then pauses the daemon best-effort. The state is cleared and observers
// notified before the pause request goes out; the session flow must not wait
// on a daemon that has stopped answering. Safe to call on every step
// transition.
func (c *Controller) Stop() {
	c.mu.Lock()
	backend := c.backend
	pause := backend != nil && c.playing
	c.playing = false
	c.mediaID = ""
	c.item = playlists.Item{}
	c.arm = session.ArmNone
	c.visible = false
	c.progress = 0
	c.stopLoopLocked()
	state := c.stateLocked()
	c.mu.Unlock()
	c.notify(state)

	if pause {
		if err := backend.Pause(); err != nil {
			c.logger.Debug("pause on stop failed", "error", err)
		}
	}
}

func (c *Controller) awaitBackend(ctx context.Context) Backend {
	c.mu.Lock()
	if c.backend != nil {
		b := c.backend
		c.mu.Unlock()
		return b
	}
	c.mu.Unlock()

	if c.source == nil {
		return nil
	}

	timer := time.NewTimer(c.readyWait)
	defer timer.Stop()

	select {
	case <-c.source.Ready():
		return c.source.Backend()
	case <-ctx.Done():
		return nil
	case <-timer.C:
		if err := c.source.Err(); err != nil {
			c.logger.Warn("player backend failed to come up", "error", err)
		}
		return nil
	}
}

// startLoopLocked launches the progress loop, replacing any prior one.
// Callers hold c.mu.
func (c *Controller) startLoopLocked() {
	c.stopLoopLocked()
	ctx, cancel := context.WithCancel(context.Background())
	c.loopCancel = cancel
	go c.progressLoop(ctx)
}

// stopLoopLocked cancels the progress loop. Callers hold c.mu.
func (c *Controller) stopLoopLocked() {
	if c.loopCancel != nil {
		c.loopCancel()
		c.loopCancel = nil
	}
}

func (c *Controller) progressLoop(ctx context.Context) {
	ticker := time.NewTicker(c.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		c.mu.Lock()
		// not cancellation-atomic with Stop: the stop condition has to be
		// re-checked every iteration
		if ctx.Err() != nil || !c.playing || c.backend == nil {
			c.mu.Unlock()
			return
		}
		backend := c.backend
		c.mu.Unlock()

		// queried without the lock so a slow daemon cannot wedge Stop or State
		current, duration, err := backend.Position()

		c.mu.Lock()
		if ctx.Err() != nil || !c.playing {
			c.mu.Unlock()
			return
		}
		if err == nil && duration > 0 {
			c.progress = max(0, min(100, current/duration*100))
		}
		state := c.stateLocked()
		c.mu.Unlock()

		c.notify(state)
	}
}
