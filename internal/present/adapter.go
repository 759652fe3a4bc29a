package present

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/sweeney/gauge-display/internal/backlight"
	"github.com/sweeney/gauge-display/internal/coordinator"
	"github.com/sweeney/gauge-display/internal/sample"
)

// Needle animation durations.
const (
	TempAnimMs = 600
	LoadAnimMs = 400
)

// EventSink receives a record of every intent carried out.
type EventSink interface {
	Publish(intent coordinator.Intent) error
}

// Adapter implements coordinator.Presenter. Collaborator failures are logged
// and never reach the coordinator.
type Adapter struct {
	screen Screen
	light  backlight.Switch
	sink   EventSink
	log    zerolog.Logger
	now    func() time.Time
}

// NewAdapter creates an Adapter. now stamps published intents.
func NewAdapter(screen Screen, light backlight.Switch, sink EventSink, log zerolog.Logger, now func() time.Time) *Adapter {
	return &Adapter{screen: screen, light: light, sink: sink, log: log, now: now}
}

// Start puts the screen in its boot state: backlight on, spinner running,
// base UI hidden until the first sample.
func (a *Adapter) Start() {
	a.backlight(true)
	for _, w := range BaseWidgets {
		a.screen.SetVisible(w, false)
	}
	a.screen.SetSpinner(true)
}

func (a *Adapter) BootDismissed() {
	a.screen.SetSpinner(false)
	for _, w := range BaseWidgets {
		a.screen.SetVisible(w, true)
	}
	a.publish(coordinator.IntentBootDismissed, "")
}

func (a *Adapter) MetricHidden(m coordinator.Metric) {
	a.screen.SetVisible(GaugeFor(m), false)
	a.publish(coordinator.IntentMetricHidden, m)
}

func (a *Adapter) MetricShown(m coordinator.Metric) {
	a.screen.SetVisible(GaugeFor(m), true)
	a.publish(coordinator.IntentMetricShown, m)
}

func (a *Adapter) DisplayBlanked() {
	for _, w := range BaseWidgets {
		a.screen.SetVisible(w, false)
	}
	a.backlight(false)
	a.publish(coordinator.IntentDisplayBlanked, "")
}

func (a *Adapter) DisplayRestored() {
	a.backlight(true)
	for _, w := range BaseWidgets {
		a.screen.SetVisible(w, true)
	}
	a.publish(coordinator.IntentDisplayRestored, "")
}

// Render applies an accepted sample to the screen. Nothing is drawn while
// the display is blanked, and hidden gauges keep their last needle position.
func (a *Adapter) Render(s sample.Sample, st coordinator.Status) {
	if st.DisplayBlanked {
		return
	}
	if !st.Temp.Hidden {
		a.screen.SetNeedle(WidgetTempGauge, s.CPUTemp, TempAnimMs)
	}
	if !st.Load.Hidden {
		a.screen.SetNeedle(WidgetLoadGauge, s.CPULoad, LoadAnimMs)
	}
	a.screen.SetClock(s.Time)
}

// GaugeFor maps a metric to its gauge widget.
func GaugeFor(m coordinator.Metric) Widget {
	if m == coordinator.MetricLoad {
		return WidgetLoadGauge
	}
	return WidgetTempGauge
}

func (a *Adapter) backlight(on bool) {
	var err error
	if on {
		err = a.light.On()
	} else {
		err = a.light.Off()
	}
	if err != nil {
		a.log.Error().Err(err).Bool("on", on).Msg("backlight switch failed")
	}
}

func (a *Adapter) publish(typ coordinator.IntentType, m coordinator.Metric) {
	if a.sink == nil {
		return
	}
	intent := coordinator.Intent{Timestamp: a.now(), Type: typ, Metric: m}
	if err := a.sink.Publish(intent); err != nil {
		a.log.Warn().Err(err).Str("event", string(typ)).Msg("publish error")
	}
}
