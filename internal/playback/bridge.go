package playback

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/abrank/internal/shared"
)

const (
	defaultBridgeURL     = "http://127.0.0.1:8080"
	defaultProbeDelay    = 350 * time.Millisecond
	defaultProbeAttempts = 20
	defaultCallTimeout   = 2 * time.Second
)

// Bridge talks to a local player daemon over HTTP and implements both
// [BackendSource] and [Backend]. Readiness is probed with a bounded fixed-delay
// health poll; the ready channel is closed at most once.
type Bridge struct {
	baseURL     string
	httpClient  *http.Client
	logger      *log.Logger
	callTimeout time.Duration

	ready chan struct{}
	once  sync.Once

	mu  sync.Mutex
	err error
}

// BridgeOpts configures a Bridge. Zero values get daemon defaults.
// CallTimeout bounds every daemon request; a stalled daemon must fail a
// call, never block it indefinitely.
type BridgeOpts struct {
	BaseURL       string
	HTTPClient    *http.Client
	Logger        *log.Logger
	ProbeDelay    time.Duration
	ProbeAttempts int
	CallTimeout   time.Duration
}

// NewBridge creates a bridge and begins probing the daemon's health endpoint
// in the background. The daemon reliably comes up within a few hundred
// milliseconds in practice, so the poll is short and bounded.
func NewBridge(opts BridgeOpts) *Bridge {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBridgeURL
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Logger == nil {
		opts.Logger = log.New(nil)
	}
	if opts.ProbeDelay <= 0 {
		opts.ProbeDelay = defaultProbeDelay
	}
	if opts.ProbeAttempts <= 0 {
		opts.ProbeAttempts = defaultProbeAttempts
	}
	if opts.CallTimeout <= 0 {
		opts.CallTimeout = defaultCallTimeout
	}

	b := &Bridge{
		baseURL:     opts.BaseURL,
		httpClient:  opts.HTTPClient,
		logger:      opts.Logger,
		callTimeout: opts.CallTimeout,
		ready:       make(chan struct{}),
	}

	go b.probe(opts.ProbeDelay, opts.ProbeAttempts)
	return b
}

// Ready is closed once the daemon answers its health check.
func (b *Bridge) Ready() <-chan struct{} {
	return b.ready
}

// Err reports a permanent readiness failure after the probe budget is spent.
func (b *Bridge) Err() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.err
}

// Backend returns the bridge itself; valid once Ready has resolved.
func (b *Bridge) Backend() Backend {
	return b
}

func (b *Bridge) probe(delay time.Duration, attempts int) {
	for i := range attempts {
		if b.healthy() {
			b.once.Do(func() { close(b.ready) })
			return
		}
		if i < attempts-1 {
			time.Sleep(delay)
		}
	}

	b.mu.Lock()
	b.err = fmt.Errorf("%w: daemon at %s", shared.ErrPlayerNotReady, b.baseURL)
	b.mu.Unlock()
	b.logger.Warn("player daemon never became ready", "url", b.baseURL, "attempts", attempts)
}

func (b *Bridge) healthy() bool {
	ctx, cancel := context.WithTimeout(context.Background(), b.callTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.baseURL+"/health", nil)
	if err != nil {
		return false
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// Load points the daemon at a new media id.
func (b *Bridge) Load(ctx context.Context, mediaID string) error {
	ctx, cancel := context.WithTimeout(ctx, b.callTimeout)
	defer cancel()
	return b.post(ctx, "/load", map[string]string{"mediaId": mediaID})
}

// Play resumes playback.
func (b *Bridge) Play() error {
	ctx, cancel := context.WithTimeout(context.Background(), b.callTimeout)
	defer cancel()
	return b.post(ctx, "/play", nil)
}

// Pause halts playback.
func (b *Bridge) Pause() error {
	ctx, cancel := context.WithTimeout(context.Background(), b.callTimeout)
	defer cancel()
	return b.post(ctx, "/pause", nil)
}

// SeekTo issues an absolute seek in seconds.
func (b *Bridge) SeekTo(seconds float64) error {
	ctx, cancel := context.WithTimeout(context.Background(), b.callTimeout)
	defer cancel()
	return b.post(ctx, "/seek", map[string]float64{"position": seconds})
}

// Position reports the daemon's current playback position.
func (b *Bridge) Position() (float64, float64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), b.callTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.baseURL+"/position", nil)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return 0, 0, fmt.Errorf("position request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, 0, fmt.Errorf("position request returned %d", resp.StatusCode)
	}

	var body struct {
		Current  float64 `json:"current"`
		Duration float64 `json:"duration"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, 0, fmt.Errorf("failed to decode position: %w", err)
	}
	return body.Current, body.Duration, nil
}

func (b *Bridge) post(ctx context.Context, endpoint string, payload any) error {
	var body *bytes.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to encode payload: %w", err)
		}
		body = bytes.NewReader(data)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+endpoint, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%s returned %d", endpoint, resp.StatusCode)
	}
	return nil
}
