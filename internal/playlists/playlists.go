// package playlists models the two candidate orderings compared in a session.
//
// Each seed has a pair of orderings over the same underlying tracks: the
// baseline order as served, and a reranked order. Pairs are length-balanced
// before they reach the UI so list length can't reveal which arm is which.
package playlists

// Source identifies the origin of an ordering. Not the same as an arm label,
// which is randomized per session.
type Source string

const (
	SourceBaseline Source = "baseline"
	SourceReranked Source = "reranked"
)

// Item is one track at a 1-based position within its ordering.
//
// MediaID is the external player id; an empty MediaID marks a demo item
// that renders in the UI but cannot produce audio.
type Item struct {
	Position int    `json:"position"`
	Title    string `json:"title"`
	Artist   string `json:"artist"`
	MediaID  string `json:"mediaId,omitempty"`
}

// Playable reports whether the item has a resolvable external media id.
func (i Item) Playable() bool {
	return i.MediaID != ""
}

// Ordering is one candidate sequence of items for a seed.
type Ordering []Item

// Pair holds both orderings for one seed.
type Pair struct {
	Baseline Ordering `json:"baseline"`
	Reranked Ordering `json:"reranked"`
}

// BySource returns the ordering originating from the given source.
func (p Pair) BySource(src Source) Ordering {
	if src == SourceReranked {
		return p.Reranked
	}
	return p.Baseline
}

// Balance trims both orderings to the shorter length and renumbers positions
// 1..n contiguously. Unequal lengths would let a participant infer which arm
// holds the real data, so balancing runs unconditionally at test start.
func Balance(p Pair) Pair {
	n := min(len(p.Baseline), len(p.Reranked))
	return Pair{
		Baseline: renumber(p.Baseline[:n]),
		Reranked: renumber(p.Reranked[:n]),
	}
}

func renumber(o Ordering) Ordering {
	out := make(Ordering, len(o))
	for i, item := range o {
		item.Position = i + 1
		out[i] = item
	}
	return out
}
