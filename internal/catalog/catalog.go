// package catalog holds the fixed benchmark seed set for the comparison experiment.
//
// Seeds are embedded at build time and immutable; each seed anchors one
// baseline-vs-reranked playlist comparison and carries a category slug used
// for grouping in the UI.
package catalog

import (
	_ "embed"
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/desertthunder/abrank/internal/shared"
)

//go:embed seeds.toml
var seedData []byte

// Seed is one anchor track in the benchmark set.
type Seed struct {
	ID       int    `toml:"id" json:"id"`
	Title    string `toml:"title" json:"title"`
	Artist   string `toml:"artist" json:"artist"`
	Category string `toml:"category" json:"category"`
}

type seedFile struct {
	Seeds  []Seed            `toml:"seeds"`
	Labels map[string]string `toml:"labels"`
}

// Catalog is the loaded, immutable seed set.
type Catalog struct {
	seeds  []Seed
	byID   map[int]Seed
	labels map[string]string
}

// Load parses the embedded seed set. Called once at startup.
func Load() (*Catalog, error) {
	var file seedFile
	if err := toml.Unmarshal(seedData, &file); err != nil {
		return nil, fmt.Errorf("failed to parse embedded seeds: %w", err)
	}

	if len(file.Seeds) == 0 {
		return nil, fmt.Errorf("%w: empty seed set", shared.ErrInvalidConfig)
	}

	byID := make(map[int]Seed, len(file.Seeds))
	for _, s := range file.Seeds {
		byID[s.ID] = s
	}

	return &Catalog{seeds: file.Seeds, byID: byID, labels: file.Labels}, nil
}

// Seeds returns all seeds in catalog order.
func (c *Catalog) Seeds() []Seed {
	return c.seeds
}

// ByID looks up a seed by id.
func (c *Catalog) ByID(id int) (Seed, error) {
	seed, ok := c.byID[id]
	if !ok {
		return Seed{}, fmt.Errorf("%w: id %d", shared.ErrSeedNotFound, id)
	}
	return seed, nil
}

// Label returns the display label for a category slug, falling back to the slug itself.
func (c *Catalog) Label(category string) string {
	if label, ok := c.labels[category]; ok {
		return label
	}
	return category
}
