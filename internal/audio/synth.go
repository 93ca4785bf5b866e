// Package audio synthesizes the tape's soundtrack: hiss, rumble, a drifting
// drone, a warped melodic fragment and jump-scare stingers, mixed through a
// soft saturator.
package audio

import (
	"math"
	"math/rand"

	"github.com/ivlev/vhstape/internal/config"
	"github.com/ivlev/vhstape/internal/director"
	"github.com/ivlev/vhstape/internal/theme"
)

var (
	Melody       = []float64{220, 247, 196, 165, 196, 220}
	SpikeFreqs   = []float64{700, 900, 1200, 1500, 2400, 3200}
	melodyStep   = 0.9 // seconds per note
	tremoloHz    = 0.3
	saturateGain = 1.6
	outputGain   = 0.9
)

// Track is a synthesized mono waveform
type Track struct {
	Samples []float64
	Rate    int
	Events  []float64 // stinger start times, seconds
}

// Synthesize renders the whole soundtrack. The generator is built from the
// theme integer here, independently of the renderer's.
func Synthesize(cfg *config.Config, th *theme.Theme) *Track {
	sr := cfg.Audio.SampleRate
	n := config.TotalSamples(cfg.Video.DurationS, sr)
	rng := theme.NewRand(th.RngInt)
	fs := float64(sr)

	rumbleA := 36 + float64(randInt(rng, -3, 3))
	rumbleB := 72 + float64(randInt(rng, -6, 6))
	lfoHz := 0.08 + rng.Float64()*0.05
	droneHz := 110 + float64(randInt(rng, -20, 20))

	mix := make([]float64, n)
	for i := range mix {
		t := float64(i) / fs
		rumble := tone(rumbleA, t)*0.10 + tone(rumbleB, t)*0.05
		lfo := 0.5 + 0.5*math.Sin(2*math.Pi*lfoHz*t)
		drone := tone(droneHz, t)*(0.08+0.08*lfo) + tone(droneHz*0.5, t)*(0.06+0.06*(1-lfo))
		mix[i] = rumble + drone
	}

	frag := melodyTrack(rng, n, sr)
	for i, v := range frag {
		mix[i] += v * 0.6
	}

	events := StingerTimes(rng, cfg)
	sting := stingerTrack(rng, events, n, sr)
	for i, v := range sting {
		mix[i] += v * 0.8
	}

	for i := range mix {
		hiss := (rng.Float64()*2 - 1) * 0.06
		mix[i] = clip(math.Tanh((mix[i]+hiss)*saturateGain) * outputGain)
	}

	return &Track{Samples: mix, Rate: sr, Events: events}
}

// StingerTimes draws the audio jump-scare schedule: per-second trials, each
// hit placed at a random offset inside its second
func StingerTimes(rng *rand.Rand, cfg *config.Config) []float64 {
	j := cfg.Jumpscares
	return director.DrawEvents(rng, int(cfg.Video.DurationS), j.ProbabilityPerSecond, j.MaxEvents, func(s int) float64 {
		return float64(s) + rng.Float64()
	})
}

func melodyTrack(rng *rand.Rand, n, sr int) []float64 {
	fs := float64(sr)
	out := make([]float64, n)
	step := int(fs * melodyStep)

	for i, f := range Melody {
		start := i * step
		if start >= n {
			break
		}
		length := min(step, n-start)
		det := (rng.Float64()*2 - 1) * 3
		dur := 0.1
		if length > 1 {
			dur = float64(length-1) / fs
		}
		for k := 0; k < length; k++ {
			tt := float64(k) / fs
			v := tone(f+det, tt)*0.06 + tone(2*f+det, tt)*0.02
			out[start+k] += v * NoteEnvelope.Level(tt, dur)
		}
	}

	for i := range out {
		t := float64(i) / fs
		out[i] *= 0.7 + 0.3*math.Sin(2*math.Pi*tremoloHz*t)
	}
	return out
}

func stingerTrack(rng *rand.Rand, events []float64, n, sr int) []float64 {
	fs := float64(sr)
	out := make([]float64, n)
	for _, et := range events {
		start := int(et * fs)
		length := int(fs * (0.18 + rng.Float64()*0.22))
		end := min(n, start+length)
		if end <= start {
			continue
		}
		burst := make([]float64, end-start)
		for k := range burst {
			burst[k] = (rng.Float64()*2 - 1) * 0.9
		}
		spike := SpikeFreqs[rng.Intn(len(SpikeFreqs))]
		decay := 10 + rng.Float64()*20
		for k := range burst {
			tt := float64(k) / fs
			out[start+k] += (burst[k] + tone(spike, tt)*0.6) * math.Exp(-tt*decay)
		}
	}
	return out
}

func tone(freq, t float64) float64 {
	return math.Sin(2 * math.Pi * freq * t)
}

// randInt returns a uniform integer in [lo, hi]
func randInt(rng *rand.Rand, lo, hi int) int {
	return lo + rng.Intn(hi-lo+1)
}

func clip(v float64) float64 {
	return max(-1, min(1, v))
}
