package playlists

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"os"
	"strconv"

	"github.com/charmbracelet/log"
)

// dataFile mirrors the pre-generated playlist JSON resource:
// {"playlists": {"<seedId>": {"baseline": [...], "reranked": [...]}}}
type dataFile struct {
	Playlists map[string]Pair `json:"playlists"`
}

// Provider serves ordering pairs by seed id, falling back to synthesized demo
// data when the backing file is missing or doesn't cover a seed. The fallback
// keeps the experiment UI exercisable without real data; it is degraded, not
// an error.
type Provider struct {
	pairs  map[int]Pair
	rng    *rand.Rand
	logger *log.Logger
}

// ProviderOpts configures a Provider.
type ProviderOpts struct {
	Path   string     // playlist JSON resource, optional
	Rand   *rand.Rand // permutation source for fallback data, optional
	Logger *log.Logger
}

// NewProvider loads the playlist resource at opts.Path. A missing or
// unparseable file leaves the provider in fallback-only mode.
func NewProvider(opts ProviderOpts) *Provider {
	p := &Provider{
		pairs:  map[int]Pair{},
		rng:    opts.Rand,
		logger: opts.Logger,
	}
	if p.logger == nil {
		p.logger = log.New(nil)
	}
	if p.rng == nil {
		p.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	if opts.Path == "" {
		return p
	}

	data, err := os.ReadFile(opts.Path)
	if err != nil {
		p.logger.Warn("playlist data unavailable, demo fallback active", "path", opts.Path, "error", err)
		return p
	}

	var file dataFile
	if err := json.Unmarshal(data, &file); err != nil {
		p.logger.Warn("playlist data unreadable, demo fallback active", "path", opts.Path, "error", err)
		return p
	}

	for key, pair := range file.Playlists {
		id, err := strconv.Atoi(key)
		if err != nil {
			p.logger.Warn("skipping playlist entry with non-numeric seed id", "key", key)
			continue
		}
		if len(pair.Baseline) == 0 || len(pair.Reranked) == 0 {
			p.logger.Warn("skipping playlist entry with empty ordering", "seed", id)
			continue
		}
		p.pairs[id] = pair
	}

	p.logger.Info("playlist data loaded", "seeds", len(p.pairs))
	return p
}

// GetOrderings returns the ordering pair for a seed, synthesized when no real
// data exists for it.
func (p *Provider) GetOrderings(seedID int) Pair {
	if pair, ok := p.pairs[seedID]; ok {
		return pair
	}
	return p.demoPair()
}

// HasData reports whether real (non-fallback) orderings exist for the seed.
func (p *Provider) HasData(seedID int) bool {
	_, ok := p.pairs[seedID]
	return ok
}

// demoPair builds a small fixed item set: baseline in catalog order, reranked
// as a pseudo-random permutation of the same items.
func (p *Provider) demoPair() Pair {
	baseline := make(Ordering, len(demoTitles))
	for i, t := range demoTitles {
		baseline[i] = Item{Position: i + 1, Title: t.title, Artist: t.artist}
	}

	reranked := make(Ordering, len(baseline))
	copy(reranked, baseline)
	p.rng.Shuffle(len(reranked), func(i, j int) {
		reranked[i], reranked[j] = reranked[j], reranked[i]
	})

	return Pair{Baseline: baseline, Reranked: renumber(reranked)}
}

var demoTitles = []struct {
	title  string
	artist string
}{
	{"Track 1", "Artist A"},
	{"Track 2", "Artist B"},
	{"Track 3", "Artist C"},
	{"Track 4", "Artist D"},
	{"Track 5", "Artist E"},
}

// FindByMediaID locates an item by media id within an ordering.
func FindByMediaID(o Ordering, mediaID string) (int, bool) {
	for i, item := range o {
		if item.MediaID != "" && item.MediaID == mediaID {
			return i, true
		}
	}
	return 0, false
}

// String implements fmt.Stringer for diagnostics.
func (p Pair) String() string {
	return fmt.Sprintf("pair(baseline=%d reranked=%d)", len(p.Baseline), len(p.Reranked))
}
