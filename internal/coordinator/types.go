// Package coordinator decides, from a stream of samples and elapsed time, when
// gauges appear or disappear and when the display powers down or wakes up.
// It owns no widgets and performs no I/O: every decision is handed to a
// Presenter, and only on state transitions. Time is always injected as a
// clock.Millis parameter.
package coordinator

import (
	"time"

	"github.com/sweeney/gauge-display/internal/clock"
)

// Metric identifies one of the monitored values.
type Metric string

const (
	MetricTemp Metric = "cpu_temp"
	MetricLoad Metric = "cpu_load"
)

// Metrics lists the monitored values in evaluation order.
var Metrics = [...]Metric{MetricTemp, MetricLoad}

// Default timeouts in milliseconds.
const (
	DefaultHideTimeoutMs  uint32 = 60000
	DefaultBlankTimeoutMs uint32 = 60000
)

// Presenter executes the coordinator's intents. Each method is called only on
// the transition it names, never repeatedly while a state holds.
type Presenter interface {
	// BootDismissed stops the boot animation and reveals the base UI.
	// Called exactly once per coordinator lifetime.
	BootDismissed()
	MetricHidden(m Metric)
	MetricShown(m Metric)
	// DisplayBlanked hides every widget and switches the backlight off.
	DisplayBlanked()
	// DisplayRestored switches the backlight on and shows every widget.
	DisplayRestored()
}

// Config holds the fixed timeouts. Both are independent of each other.
type Config struct {
	HideTimeoutMs  uint32
	BlankTimeoutMs uint32
}

// DefaultConfig returns the one-minute hide and blank timeouts.
func DefaultConfig() Config {
	return Config{
		HideTimeoutMs:  DefaultHideTimeoutMs,
		BlankTimeoutMs: DefaultBlankTimeoutMs,
	}
}

// Transition is the outcome of feeding a value to a ZeroTimer.
type Transition int

const (
	NoTransition Transition = iota
	TransitionHide
	TransitionShow
)

// IntentCounts tracks how many intents of each kind were emitted since Initialize.
type IntentCounts struct {
	BootDismissed   int
	MetricHidden    int
	MetricShown     int
	DisplayBlanked  int
	DisplayRestored int
}

// MetricStatus is the per-metric part of a Status.
type MetricStatus struct {
	Metric Metric
	Hidden bool
	// LastValue is meaningful only when HasValue is true.
	LastValue int
	HasValue  bool
	ZeroSince clock.Stamp
}

// Status is a read-only snapshot of the coordinator state.
type Status struct {
	FirstSampleReceived bool
	DisplayBlanked      bool
	LastData            clock.Stamp
	// SinceLastData is valid only when LastData.Set is true.
	SinceLastData uint32
	Temp          MetricStatus
	Load          MetricStatus
	Counts        IntentCounts
	Config        Config
}

// IntentType names an intent for publishing and logging.
type IntentType string

const (
	IntentBootDismissed   IntentType = "BOOT_DISMISSED"
	IntentMetricHidden    IntentType = "METRIC_HIDDEN"
	IntentMetricShown     IntentType = "METRIC_SHOWN"
	IntentDisplayBlanked  IntentType = "DISPLAY_BLANKED"
	IntentDisplayRestored IntentType = "DISPLAY_RESTORED"
)

// Intent is a record of one Presenter call, stamped with wall-clock time.
type Intent struct {
	Timestamp time.Time
	Type      IntentType
	// Metric is set for METRIC_HIDDEN and METRIC_SHOWN only.
	Metric Metric
}
