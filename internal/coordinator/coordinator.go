package coordinator

import (
	"github.com/rs/zerolog"

	"github.com/sweeney/gauge-display/internal/clock"
)

// Coordinator owns all timing and visibility decisions. It is not safe for
// concurrent use; the control loop is its only caller.
type Coordinator struct {
	cfg       Config
	presenter Presenter
	log       zerolog.Logger

	lastData            clock.Stamp
	firstSampleReceived bool
	displayBlanked      bool
	temp                *ZeroTimer
	load                *ZeroTimer
	counts              IntentCounts
}

// New creates a Coordinator in its boot state.
func New(cfg Config, p Presenter, log zerolog.Logger) *Coordinator {
	c := &Coordinator{
		cfg:       cfg,
		presenter: p,
		log:       log,
		temp:      NewZeroTimer(MetricTemp, cfg.HideTimeoutMs),
		load:      NewZeroTimer(MetricLoad, cfg.HideTimeoutMs),
	}
	c.Initialize()
	return c
}

// Initialize resets every state field to its startup default.
func (c *Coordinator) Initialize() {
	c.lastData = clock.Stamp{}
	c.firstSampleReceived = false
	c.displayBlanked = false
	c.temp.Reset()
	c.load.Reset()
	c.counts = IntentCounts{}
	c.log.Debug().
		Uint32("hide_timeout_ms", c.cfg.HideTimeoutMs).
		Uint32("blank_timeout_ms", c.cfg.BlankTimeoutMs).
		Msg("coordinator initialized")
}

// ProcessSample handles one accepted sample observed at now.
func (c *Coordinator) ProcessSample(cpuTemp, cpuLoad int, now clock.Millis) {
	c.lastData = clock.At(now)

	if !c.firstSampleReceived {
		c.firstSampleReceived = true
		c.counts.BootDismissed++
		c.log.Info().Msg("first sample received, switching to main UI")
		c.presenter.BootDismissed()
	}

	if c.displayBlanked {
		c.restoreDisplay()
	}

	c.apply(c.temp, c.temp.Observe(cpuTemp, now), now)
	c.apply(c.load, c.load.Observe(cpuLoad, now), now)
}

// TickMaintenance runs the periodic timeout checks. It is called on every
// loop iteration whether or not a sample arrived.
func (c *Coordinator) TickMaintenance(now clock.Millis) {
	c.apply(c.temp, c.temp.Recheck(now), now)
	c.apply(c.load, c.load.Recheck(now), now)

	if !c.firstSampleReceived || !c.lastData.Set {
		return
	}
	if c.displayBlanked || !now.Elapsed(c.lastData.At, c.cfg.BlankTimeoutMs) {
		return
	}

	c.displayBlanked = true
	c.counts.DisplayBlanked++
	c.log.Info().
		Uint32("since_last_data_ms", now.Since(c.lastData.At)).
		Msg("display blanked, no data received")
	c.presenter.DisplayBlanked()
}

// restoreDisplay wakes the display. Restoring re-shows every widget, so the
// metric timers start over rather than keeping their pre-blank visibility.
func (c *Coordinator) restoreDisplay() {
	c.displayBlanked = false
	c.temp.Reset()
	c.load.Reset()
	c.counts.DisplayRestored++
	c.log.Info().Msg("display restored, new data received")
	c.presenter.DisplayRestored()
}

func (c *Coordinator) apply(z *ZeroTimer, tr Transition, now clock.Millis) {
	switch tr {
	case TransitionHide:
		c.counts.MetricHidden++
		c.log.Info().
			Str("metric", string(z.metric)).
			Uint32("zero_for_ms", now.Since(z.zeroSince.At)).
			Msg("meter hidden")
		c.presenter.MetricHidden(z.metric)
	case TransitionShow:
		c.counts.MetricShown++
		c.log.Info().Str("metric", string(z.metric)).Msg("meter shown")
		c.presenter.MetricShown(z.metric)
	}
}

// FirstSampleReceived reports whether the boot animation has been dismissed.
func (c *Coordinator) FirstSampleReceived() bool {
	return c.firstSampleReceived
}

// DisplayBlanked reports whether the display is powered down.
func (c *Coordinator) DisplayBlanked() bool {
	return c.displayBlanked
}

// MetricHidden reports whether the given metric's gauge is hidden.
func (c *Coordinator) MetricHidden(m Metric) bool {
	switch m {
	case MetricTemp:
		return c.temp.Hidden()
	case MetricLoad:
		return c.load.Hidden()
	}
	return false
}

// Status returns a snapshot of the state as seen at now. It has no side effects.
func (c *Coordinator) Status(now clock.Millis) Status {
	s := Status{
		FirstSampleReceived: c.firstSampleReceived,
		DisplayBlanked:      c.displayBlanked,
		LastData:            c.lastData,
		Temp:                c.temp.Status(),
		Load:                c.load.Status(),
		Counts:              c.counts,
		Config:              c.cfg,
	}
	if c.lastData.Set {
		s.SinceLastData = now.Since(c.lastData.At)
	}
	return s
}
