package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"

	"github.com/desertthunder/abrank/internal/catalog"
)

var _ list.Item = seedItem{}

// seedItem wraps [catalog.Seed] to implement [list.Item].
type seedItem struct {
	seed  catalog.Seed
	label string
}

func (i seedItem) FilterValue() string { return i.seed.Title }
func (i seedItem) Title() string       { return i.seed.Title }
func (i seedItem) Description() string {
	desc := i.seed.Artist
	if i.label != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.label)
	}
	return desc
}
