package coordinator

import "github.com/sweeney/gauge-display/internal/clock"

// ZeroTimer tracks how long a value stream has been continuously zero and
// reports the hide/show edges for one metric.
type ZeroTimer struct {
	metric    Metric
	timeout   uint32
	zeroSince clock.Stamp
	hidden    bool
	lastValue int
	hasValue  bool
}

// NewZeroTimer creates a timer in the Shown state with no value observed.
func NewZeroTimer(m Metric, timeoutMs uint32) *ZeroTimer {
	return &ZeroTimer{metric: m, timeout: timeoutMs}
}

// Reset returns the timer to its initial state.
func (z *ZeroTimer) Reset() {
	z.zeroSince = clock.Stamp{}
	z.hidden = false
	z.lastValue = 0
	z.hasValue = false
}

// Observe feeds a new value observed at now.
func (z *ZeroTimer) Observe(value int, now clock.Millis) Transition {
	tr := NoTransition

	if value == 0 {
		// An uninitialized last value counts as non-zero.
		if !z.hasValue || z.lastValue != 0 {
			z.zeroSince = clock.At(now)
		}
		tr = z.checkExpired(now)
	} else {
		if z.hidden {
			z.hidden = false
			tr = TransitionShow
		}
		z.zeroSince = clock.Stamp{}
	}

	z.lastValue = value
	z.hasValue = true
	return tr
}

// Recheck re-evaluates the timeout without a new value, for streams that stall
// while the last value was zero.
func (z *ZeroTimer) Recheck(now clock.Millis) Transition {
	if !z.hasValue || z.lastValue != 0 {
		return NoTransition
	}
	return z.checkExpired(now)
}

func (z *ZeroTimer) checkExpired(now clock.Millis) Transition {
	if !z.zeroSince.Set || z.hidden {
		return NoTransition
	}
	if !now.Elapsed(z.zeroSince.At, z.timeout) {
		return NoTransition
	}
	z.hidden = true
	return TransitionHide
}

// Hidden reports whether the metric is currently hidden.
func (z *ZeroTimer) Hidden() bool {
	return z.hidden
}

// Status returns a snapshot of the timer.
func (z *ZeroTimer) Status() MetricStatus {
	return MetricStatus{
		Metric:    z.metric,
		Hidden:    z.hidden,
		LastValue: z.lastValue,
		HasValue:  z.hasValue,
		ZeroSince: z.zeroSince,
	}
}
