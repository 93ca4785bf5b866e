package audio

// ADSR is a piecewise linear attack/decay/sustain/release envelope.
// Times are in seconds, Sustain is a level in [0, 1].
type ADSR struct {
	Attack, Decay, Sustain, Release float64
}

// NoteEnvelope is the shape used for the melodic fragments
var NoteEnvelope = ADSR{Attack: 0.01, Decay: 0.2, Sustain: 0.6, Release: 0.2}

const minSegment = 1e-6

// SustainTime is what is left of dur after attack, decay and release,
// never negative
func (e ADSR) SustainTime(dur float64) float64 {
	return max(0, dur-(e.Attack+e.Decay+e.Release))
}

// Level returns the envelope value at note-local time t for a note of
// length dur. The result stays in [0, 1] for any dur.
func (e ADSR) Level(t, dur float64) float64 {
	hold := e.SustainTime(dur)
	switch {
	case t < 0:
		return 0
	case t < e.Attack:
		return t / max(minSegment, e.Attack)
	case t < e.Attack+e.Decay:
		x := (t - e.Attack) / max(minSegment, e.Decay)
		return 1 + (e.Sustain-1)*x
	case t < e.Attack+e.Decay+hold:
		return e.Sustain
	case t < dur:
		x := (t - (e.Attack + e.Decay + hold)) / max(minSegment, e.Release)
		return max(0, e.Sustain*(1-x))
	default:
		return 0
	}
}
