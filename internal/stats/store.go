// package stats maintains running win totals from the vote record stream.
//
// The aggregate is derived state: it is recomputed incrementally on each vote
// and always reconstructable by replaying the stored record list. The
// update is a read-modify-write with no transactional guarantee; concurrent
// submissions can lose increments to each other (last writer wins). That
// makes the counters best-effort approximations, which is accepted and
// documented rather than hidden.
package stats

import "context"

// Store is the key-value primitive behind the statistics service: plain
// values for the aggregate, an append-only list for the raw records.
type Store interface {
	// Get returns the value at key, with found=false for missing keys.
	Get(ctx context.Context, key string) (value string, found bool, err error)
	// Set writes the value at key.
	Set(ctx context.Context, key, value string) error
	// Push appends a value to the list at key.
	Push(ctx context.Context, key, value string) error
	// Range returns list elements between start and stop inclusive;
	// negative indexes count from the end, Redis style.
	Range(ctx context.Context, key string, start, stop int64) ([]string, error)
}
