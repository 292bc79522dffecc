package emit

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/hako/durafmt"

	"kartvid/internal/kv"
	"kartvid/internal/textutil"
)

var shortUnits, _ = durafmt.DefaultUnitsCoder.Decode("y:yrs,wk:wks,d:d,h:h,m:m,s:s,ms:ms,us:us")

// FormatVideoTime renders a position in a video, such as "1 m 32 s".
func FormatVideoTime(ms int64) string {
	if ms <= 0 {
		return "0 s"
	}
	return durafmt.Parse(time.Duration(ms) * time.Millisecond).LimitFirstN(2).Format(shortUnits)
}

// TextEmitter prints each state as a header line and a player table.
type TextEmitter struct {
	mu       sync.Mutex
	w        io.Writer
	color    bool
	startTag lipgloss.Style
	doneTag  lipgloss.Style
	meta     lipgloss.Style
}

// NewTextEmitter writes to w. When color is set the race banners are styled.
func NewTextEmitter(w io.Writer, color bool) *TextEmitter {
	r := lipgloss.NewRenderer(w)
	return &TextEmitter{
		w:        w,
		color:    color,
		startTag: r.NewStyle().Bold(true).Foreground(lipgloss.ANSIColor(2)),
		doneTag:  r.NewStyle().Bold(true).Foreground(lipgloss.ANSIColor(5)),
		meta:     r.NewStyle().Faint(true),
	}
}

// Emit implements kv.Emitter.
func (e *TextEmitter) Emit(source string, frame int, timeMs int64, cur kv.Screen, baseline *kv.Screen) error {
	var b strings.Builder
	heading := fmt.Sprintf("%s: frame %d (%s)", source, frame, FormatVideoTime(timeMs))
	b.WriteString(e.style(e.meta, heading))
	b.WriteByte('\n')
	writeScreen(&b, cur, baseline, func(banner string, done bool) string {
		return e.style(textutil.Ternary(done, e.doneTag, e.startTag), banner)
	})
	b.WriteByte('\n')

	e.mu.Lock()
	defer e.mu.Unlock()
	if _, err := io.WriteString(e.w, b.String()); err != nil {
		return fmt.Errorf("write text record: %w", err)
	}
	return nil
}

func (e *TextEmitter) style(s lipgloss.Style, text string) string {
	if !e.color {
		return text
	}
	return s.Render(text)
}

// FormatScreen renders cur without any styling. baseline may be nil.
func FormatScreen(cur kv.Screen, baseline *kv.Screen) string {
	var b strings.Builder
	writeScreen(&b, cur, baseline, func(banner string, _ bool) string { return banner })
	return b.String()
}

func writeScreen(b *strings.Builder, cur kv.Screen, baseline *kv.Screen, banner func(string, bool) string) {
	if cur.Events.Has(kv.RaceStart) {
		b.WriteString(banner("Race starting!", false))
		b.WriteByte('\n')
	}
	if cur.Events.Has(kv.RaceDone) {
		b.WriteString(banner("Race finished!", true))
		b.WriteByte('\n')
	}
	fmt.Fprintf(b, "%d players: %s\n", cur.NPlayers, TrackName(cur.Track))
	if cur.NPlayers == 0 {
		return
	}

	rows := make([][]string, 0, cur.NPlayers)
	for i, p := range cur.Active() {
		rows = append(rows, []string{
			fmt.Sprintf("Player %d", i+1),
			unknown(textutil.Title(character(i, p, baseline))),
			placeLabel(p.Place),
			lapLabel(p.Lap),
			itemLabel(p.Item),
			p.ItemState.String(),
		})
	}
	b.WriteString(textutil.RenderTable(playerColumns, rows))
	b.WriteByte('\n')
}

// Posn and Lap hold the widest label they can show ("4th", "Lap 3/3") so
// consecutive tables line up.
var playerColumns = []textutil.Column{
	{Title: "Player"},
	{Title: "Character", Width: len("Donkey Kong")},
	{Title: "Posn", Right: true, Width: len("Posn")},
	{Title: "Lap", Width: len("Lap 3/3")},
	{Title: "Item", Width: len("supermushroom")},
	{Title: "Item state", Width: len("slotmachine")},
}

func placeLabel(place int) string {
	if place == 0 {
		return "?"
	}
	return textutil.Ordinal(place)
}

func lapLabel(lap int) string {
	switch lap {
	case 0:
		return "?"
	case kv.LapDone:
		return "Done"
	}
	return fmt.Sprintf("Lap %d/3", lap)
}

func itemLabel(item kv.Item) string {
	if item == kv.ItemNone {
		return "-"
	}
	return item.String()
}

func unknown(s string) string {
	if s == "" {
		return "?"
	}
	return s
}
