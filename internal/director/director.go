package director

import (
	"fmt"
	"strings"

	"github.com/ivlev/vhstape/internal/config"
	"github.com/ivlev/vhstape/internal/theme"
)

// RoomChapter is the chapter name that takes the next room from the theme
const RoomChapter = "ROOM"

// Director turns configured chapters into a frame timeline
type Director struct {
	FPS         int
	TotalFrames int
	Rooms       []theme.Room
}

// NewDirector creates a new Director for a render of totalFrames at fps
func NewDirector(fps, totalFrames int, rooms []theme.Room) *Director {
	return &Director{
		FPS:         fps,
		TotalFrames: totalFrames,
		Rooms:       rooms,
	}
}

// BuildTimeline walks chapters in order and covers [0, TotalFrames) exactly.
// Chapters past the end are clipped, and a residual chapter is appended when
// the configured ones fall short.
func (d *Director) BuildTimeline(chapters []config.Chapter) Timeline {
	timeline := Timeline{}
	cursor := 0
	room := 0

	for _, ch := range chapters {
		if cursor >= d.TotalFrames {
			break
		}
		n := int(ch.Seconds * float64(d.FPS)) // partial frames are dropped
		if n <= 0 {
			continue
		}
		end := cursor + n
		if end > d.TotalFrames {
			end = d.TotalFrames
		}

		seg := Segment{Start: cursor, End: end, Name: strings.TrimSpace(ch.Name)}
		if isBareRoom(seg.Name) && len(d.Rooms) > 0 {
			r := d.Rooms[room%len(d.Rooms)]
			room++
			seg.Name = "ROOM: " + r.Name
			seg.Note = r.Note
		} else if strings.HasPrefix(seg.Name, "ROOM:") {
			seg.Note = d.roomNote(strings.TrimSpace(strings.TrimPrefix(seg.Name, "ROOM:")))
		}

		timeline = append(timeline, seg)
		cursor = end
	}

	if cursor < d.TotalFrames {
		timeline = append(timeline, Segment{
			Start: cursor,
			End:   d.TotalFrames,
			Name:  fmt.Sprintf("CHAPTER %d: RESIDUAL", len(chapters)+1),
		})
	}

	return timeline
}

func (d *Director) roomNote(name string) string {
	for _, r := range d.Rooms {
		if strings.EqualFold(r.Name, name) {
			return r.Note
		}
	}
	return ""
}

func isBareRoom(name string) bool {
	n := strings.TrimSuffix(strings.ToUpper(name), ":")
	return strings.TrimSpace(n) == RoomChapter
}
