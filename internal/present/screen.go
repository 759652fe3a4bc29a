// Package present carries out the coordinator's intents against the screen,
// the backlight and the event publisher.
package present

import (
	"fmt"

	"github.com/rs/zerolog"
)

// Widget identifies a screen element the adapter controls.
type Widget string

const (
	WidgetTempGauge Widget = "temp_gauge"
	WidgetLoadGauge Widget = "load_gauge"
	WidgetClock     Widget = "clock"
)

// BaseWidgets is the UI revealed after boot, in draw order.
var BaseWidgets = [...]Widget{WidgetTempGauge, WidgetLoadGauge, WidgetClock}

// Screen is the graphics collaborator. Implementations own pixels, fonts and
// animation easing; the adapter only asks for visibility and values.
type Screen interface {
	SetVisible(w Widget, visible bool)
	// SetNeedle animates a gauge needle to value over animMs milliseconds.
	SetNeedle(w Widget, value int, animMs int)
	SetClock(text string)
	// SetSpinner starts or stops the boot animation.
	SetSpinner(running bool)
}

// LogScreen is a headless Screen that logs widget operations. Needle and
// clock updates are logged at debug level and only when the value changes.
type LogScreen struct {
	log     zerolog.Logger
	needles map[Widget]int
	clock   string
}

// NewLogScreen creates a LogScreen writing to log.
func NewLogScreen(log zerolog.Logger) *LogScreen {
	return &LogScreen{log: log, needles: make(map[Widget]int)}
}

func (s *LogScreen) SetVisible(w Widget, visible bool) {
	s.log.Info().Str("widget", string(w)).Bool("visible", visible).Msg("widget")
}

func (s *LogScreen) SetNeedle(w Widget, value int, animMs int) {
	if prev, ok := s.needles[w]; ok && prev == value {
		return
	}
	s.needles[w] = value
	s.log.Debug().Str("widget", string(w)).Int("value", value).Int("anim_ms", animMs).Msg("needle")
}

func (s *LogScreen) SetClock(text string) {
	if text == s.clock {
		return
	}
	s.clock = text
	s.log.Debug().Str("text", text).Msg("clock")
}

func (s *LogScreen) SetSpinner(running bool) {
	s.log.Info().Bool("running", running).Msg("boot spinner")
}

// RecordingScreen records every call and tracks resulting widget state.
type RecordingScreen struct {
	Calls   []string
	Visible map[Widget]bool
	Needles map[Widget]int
	Clock   string
	Spinner bool
}

// NewRecordingScreen creates an empty RecordingScreen.
func NewRecordingScreen() *RecordingScreen {
	return &RecordingScreen{
		Visible: make(map[Widget]bool),
		Needles: make(map[Widget]int),
	}
}

func (s *RecordingScreen) SetVisible(w Widget, visible bool) {
	s.Visible[w] = visible
	s.Calls = append(s.Calls, fmt.Sprintf("visible %s %t", w, visible))
}

func (s *RecordingScreen) SetNeedle(w Widget, value int, animMs int) {
	s.Needles[w] = value
	s.Calls = append(s.Calls, fmt.Sprintf("needle %s %d %dms", w, value, animMs))
}

func (s *RecordingScreen) SetClock(text string) {
	s.Clock = text
	s.Calls = append(s.Calls, "clock "+text)
}

func (s *RecordingScreen) SetSpinner(running bool) {
	s.Spinner = running
	s.Calls = append(s.Calls, fmt.Sprintf("spinner %t", running))
}

// Take returns and clears the recorded calls.
func (s *RecordingScreen) Take() []string {
	out := s.Calls
	s.Calls = nil
	return out
}
