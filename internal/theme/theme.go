// Package theme derives the tape's theme from a seed string.
//
// Everything here is a pure function of the resolved seed. The only
// non-reproducible step is resolving the AUTO sentinel, which reads the
// injected Clock.
package theme

import (
	"crypto/sha256"
	"encoding/hex"
	"math/rand"
	"strconv"
	"strings"
	"time"
)

const AutoSeed = "AUTO"

var Keywords = []string{
	"contamination", "signal", "archive", "broadcast", "protocol",
	"interference", "recovery", "anomaly", "inspection", "calibration",
	"threshold", "relay", "obsolete", "missing", "static", "corrosion",
	"artifact", "drift", "leak", "witness",
}

var Topics = []string{
	"missing person notice", "civil defense bulletin", "equipment manual",
	"field report", "weather radar", "numbers station", "railway memo",
	"medical pamphlet", "inspection log", "frequency chart", "site map",
	"photographic plate", "incident summary",
}

var Rooms = []Room{
	{Name: "FOYER", Note: "entry camera / door seam"},
	{Name: "LIVING ROOM", Note: "wide angle / low light"},
	{Name: "KITCHEN", Note: "fluorescent hum / tile reflections"},
	{Name: "BEDROOM", Note: "soft shadows / cloth movement"},
	{Name: "BASEMENT", Note: "low ceiling / damp walls"},
	{Name: "ATTIC", Note: "wood dust / insulation fibers"},
}

type Room struct {
	Name string `yaml:"name"`
	Note string `yaml:"note"`
}

type Theme struct {
	Seed    string `yaml:"seed"`
	RngInt  uint64 `yaml:"rng_int"`
	Keyword string `yaml:"keyword"`
	Topic   string `yaml:"topic"`
	Anchor  string `yaml:"anchor"`
	Rooms   []Room `yaml:"rooms"`
}

// Clock supplies the time used to resolve AUTO seeds.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock always reports the same instant.
type FixedClock time.Time

func (c FixedClock) Now() time.Time { return time.Time(c) }

// StableInt hashes s with SHA-256 and keeps the first 16 hex digits.
func StableInt(s string) uint64 {
	sum := sha256.Sum256([]byte(s))
	h := hex.EncodeToString(sum[:])
	v, _ := strconv.ParseUint(h[:16], 16, 64)
	return v
}

// NewRand returns a generator seeded from a theme integer. Renderer and
// synthesizer each call it separately so their streams never interact.
func NewRand(rngInt uint64) *rand.Rand {
	return rand.New(rand.NewSource(int64(rngInt)))
}

// Resolve turns the configured seed (or AUTO) into a concrete seed string.
func Resolve(seed string, clock Clock) string {
	seed = strings.TrimSpace(seed)
	if seed == "" || seed == AutoSeed {
		if clock == nil {
			clock = SystemClock{}
		}
		return strconv.FormatInt(clock.Now().Unix(), 10)
	}
	return seed
}

// Make resolves the seed and derives the theme from it.
func Make(seed string, clock Clock) (string, *Theme) {
	resolved := Resolve(seed, clock)
	return resolved, FromSeed(resolved)
}

func FromSeed(seed string) *Theme {
	n := StableInt(seed)
	rng := NewRand(n)

	keyword := Keywords[rng.Intn(len(Keywords))]
	topic := Topics[rng.Intn(len(Topics))]

	rooms := make([]Room, len(Rooms))
	copy(rooms, Rooms)
	rng.Shuffle(len(rooms), func(i, j int) { rooms[i], rooms[j] = rooms[j], rooms[i] })

	return &Theme{
		Seed:    seed,
		RngInt:  n,
		Keyword: keyword,
		Topic:   topic,
		Anchor:  keyword + " " + topic,
		Rooms:   rooms,
	}
}

// TapeID is the four digit tape number shown on the warning card.
func (t *Theme) TapeID() int {
	return int(t.RngInt % 9999)
}

// Date returns the fake recording date burned into the OSD.
func (t *Theme) Date() (day, month, year int) {
	n := t.RngInt
	day = 1 + int(n%28)
	month = 1 + int((n/31)%12)
	year = 1991 + int((n/97)%9)
	return day, month, year
}
