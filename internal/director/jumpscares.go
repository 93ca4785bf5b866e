package director

import (
	"math/rand"
	"sort"

	"github.com/ivlev/vhstape/internal/config"
)

// DrawEvents runs one Bernoulli trial per whole second and lets place turn a
// hit into an event. Drawing stops once maxEvents events exist.
//
// Video and audio both use this with their own generators, so their event
// times follow the same rule but are not frame-aligned.
func DrawEvents[T any](rng *rand.Rand, seconds int, prob float64, maxEvents int, place func(second int) T) []T {
	events := []T{}
	for s := 0; s < seconds; s++ {
		if len(events) >= maxEvents {
			break
		}
		if rng.Float64() < prob {
			events = append(events, place(s))
		}
	}
	return events
}

// JumpscareFrames draws trigger frames for the video schedule
func JumpscareFrames(rng *rand.Rand, durationS float64, fps int, cfg config.JumpscareConfig) []int {
	return DrawEvents(rng, int(durationS), cfg.ProbabilityPerSecond, cfg.MaxEvents, func(s int) int {
		return s*fps + rng.Intn(fps)
	})
}

// JumpscareWindows expands each trigger into flash+hold consecutive frames,
// clipped to [0, totalFrames).
func JumpscareWindows(triggers []int, cfg config.JumpscareConfig, totalFrames int) map[int]bool {
	set := make(map[int]bool)
	span := cfg.FlashFrames + cfg.HoldFrames
	for _, f0 := range triggers {
		for k := 0; k < span; k++ {
			if f := f0 + k; f >= 0 && f < totalFrames {
				set[f] = true
			}
		}
	}
	return set
}

// SortedFrames lists a window set in ascending order
func SortedFrames(set map[int]bool) []int {
	out := make([]int, 0, len(set))
	for f := range set {
		out = append(out, f)
	}
	sort.Ints(out)
	return out
}
