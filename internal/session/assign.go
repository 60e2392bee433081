package session

import (
	"math/rand/v2"

	"github.com/desertthunder/abrank/internal/playlists"
)

// AssignArms flips a single unbiased coin to decide which source hides behind
// each arm label. Across many sessions each source lands on arm A with
// probability 1/2, independent of seed and prior sessions, which removes
// position bias from the win statistic. No state persists between calls.
func AssignArms(rng *rand.Rand) ArmMapping {
	if rng.IntN(2) == 0 {
		return ArmMapping{A: playlists.SourceBaseline, B: playlists.SourceReranked}
	}
	return ArmMapping{A: playlists.SourceReranked, B: playlists.SourceBaseline}
}
