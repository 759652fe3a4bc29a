package coordinator

import (
	"math"
	"math/rand"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sweeney/gauge-display/internal/clock"
)

// recorder is a Presenter that records intents in call order.
type recorder struct {
	intents []string
}

func (r *recorder) BootDismissed()        { r.intents = append(r.intents, "boot_dismissed") }
func (r *recorder) MetricHidden(m Metric) { r.intents = append(r.intents, "hidden:"+string(m)) }
func (r *recorder) MetricShown(m Metric)  { r.intents = append(r.intents, "shown:"+string(m)) }
func (r *recorder) DisplayBlanked()       { r.intents = append(r.intents, "blanked") }
func (r *recorder) DisplayRestored()      { r.intents = append(r.intents, "restored") }

// take returns and clears the recorded intents.
func (r *recorder) take() []string {
	out := r.intents
	r.intents = nil
	return out
}

func newTestCoordinator(t *testing.T) (*Coordinator, *recorder) {
	t.Helper()
	rec := &recorder{}
	return New(DefaultConfig(), rec, zerolog.Nop()), rec
}

func TestNewStartsInBootState(t *testing.T) {
	c, rec := newTestCoordinator(t)

	st := c.Status(0)
	assert.False(t, st.FirstSampleReceived)
	assert.False(t, st.DisplayBlanked)
	assert.False(t, st.LastData.Set)
	assert.False(t, st.Temp.Hidden)
	assert.False(t, st.Load.Hidden)
	assert.False(t, st.Temp.HasValue)
	assert.False(t, st.Temp.ZeroSince.Set)
	assert.Equal(t, "Never", st.SinceLastDataString())
	assert.Empty(t, rec.intents)
}

func TestScenarioHideAndShow(t *testing.T) {
	c, rec := newTestCoordinator(t)

	c.ProcessSample(50, 50, 0)
	assert.Equal(t, []string{"boot_dismissed"}, rec.take())

	c.ProcessSample(0, 50, 1000)
	assert.Empty(t, rec.take())
	st := c.Status(1000)
	require.True(t, st.Temp.ZeroSince.Set)
	assert.Equal(t, clock.Millis(1000), st.Temp.ZeroSince.At)

	c.TickMaintenance(60999)
	assert.Empty(t, rec.take(), "no hide before the timeout elapses")

	c.TickMaintenance(61000)
	assert.Equal(t, []string{"hidden:cpu_temp"}, rec.take())
	assert.True(t, c.MetricHidden(MetricTemp))
	assert.False(t, c.MetricHidden(MetricLoad))

	c.ProcessSample(30, 50, 62000)
	assert.Equal(t, []string{"shown:cpu_temp"}, rec.take())
	assert.False(t, c.Status(62000).Temp.ZeroSince.Set)
}

func TestScenarioBlankAndRestore(t *testing.T) {
	c, rec := newTestCoordinator(t)
	c.ProcessSample(50, 50, 0)
	c.ProcessSample(0, 50, 1000)
	c.TickMaintenance(61000)
	c.ProcessSample(30, 50, 62000)
	rec.take()

	c.TickMaintenance(121999)
	assert.Empty(t, rec.take())

	c.TickMaintenance(122000)
	assert.Equal(t, []string{"blanked"}, rec.take())
	assert.True(t, c.DisplayBlanked())

	for _, now := range []clock.Millis{122001, 130000, 199999} {
		c.TickMaintenance(now)
	}
	assert.Empty(t, rec.take(), "blank fires once per transition")

	c.ProcessSample(0, 0, 200000)
	assert.Equal(t, []string{"restored"}, rec.take())
	assert.False(t, c.DisplayBlanked())

	st := c.Status(200000)
	assert.Equal(t, clock.At(200000), st.Temp.ZeroSince)
	assert.Equal(t, clock.At(200000), st.Load.ZeroSince)

	c.TickMaintenance(259999)
	assert.Empty(t, rec.take())
	c.TickMaintenance(260000)
	assert.Equal(t, []string{"hidden:cpu_temp", "hidden:cpu_load", "blanked"}, rec.take())
}

func TestBootDismissedOnlyOnce(t *testing.T) {
	c, rec := newTestCoordinator(t)

	for i := 0; i < 5; i++ {
		c.ProcessSample(10, 10, clock.Millis(i*100))
	}
	c.TickMaintenance(70000)
	c.ProcessSample(10, 10, 80000)

	boots := 0
	for _, in := range rec.intents {
		if in == "boot_dismissed" {
			boots++
		}
	}
	assert.Equal(t, 1, boots)
	assert.Equal(t, 1, c.Status(80000).Counts.BootDismissed)
}

func TestInitializeResetsState(t *testing.T) {
	c, rec := newTestCoordinator(t)
	c.ProcessSample(0, 0, 0)
	c.TickMaintenance(60000)
	c.TickMaintenance(60000)
	require.True(t, c.DisplayBlanked())
	rec.take()

	c.Initialize()
	st := c.Status(60000)
	assert.False(t, st.FirstSampleReceived)
	assert.False(t, st.DisplayBlanked)
	assert.False(t, st.Temp.Hidden)
	assert.False(t, st.Load.Hidden)
	assert.Equal(t, IntentCounts{}, st.Counts)

	c.ProcessSample(5, 5, 70000)
	assert.Equal(t, []string{"boot_dismissed"}, rec.take(), "boot dismissal is re-armed by Initialize")
}

func TestZeroRepeatedAfterHiddenIsIdempotent(t *testing.T) {
	c, rec := newTestCoordinator(t)
	c.ProcessSample(0, 10, 0)
	c.ProcessSample(0, 10, 60000)
	rec.take()
	require.True(t, c.MetricHidden(MetricTemp))

	for now := clock.Millis(60001); now < 61000; now += 100 {
		c.ProcessSample(0, 10, now)
		c.TickMaintenance(now)
	}
	assert.Empty(t, rec.take())
	assert.Equal(t, 1, c.Status(61000).Counts.MetricHidden)
}

func TestZeroFromBootStartsTimer(t *testing.T) {
	c, rec := newTestCoordinator(t)

	c.ProcessSample(0, 10, 500)
	st := c.Status(500)
	assert.Equal(t, clock.At(500), st.Temp.ZeroSince, "uninitialized counts as non-zero")

	c.ProcessSample(0, 10, 60500)
	assert.Equal(t, []string{"boot_dismissed", "hidden:cpu_temp"}, rec.take())
}

func TestZeroSinceNotResetWhileZero(t *testing.T) {
	c, _ := newTestCoordinator(t)
	c.ProcessSample(10, 10, 0)
	c.ProcessSample(0, 10, 1000)
	c.ProcessSample(0, 10, 2000)
	c.ProcessSample(0, 10, 3000)

	assert.Equal(t, clock.At(1000), c.Status(3000).Temp.ZeroSince)
}

func TestNonZeroInterruptsCountdown(t *testing.T) {
	c, rec := newTestCoordinator(t)
	c.ProcessSample(0, 10, 0)
	c.ProcessSample(1, 10, 59000)
	c.ProcessSample(0, 10, 59500)
	c.TickMaintenance(60000)
	c.TickMaintenance(119499)
	assert.Equal(t, []string{"boot_dismissed"}, rec.take())

	c.TickMaintenance(119500)
	assert.Equal(t, []string{"hidden:cpu_temp", "blanked"}, rec.take())
}

func TestMetricsAreIndependent(t *testing.T) {
	c, rec := newTestCoordinator(t)
	c.ProcessSample(10, 0, 0)
	c.ProcessSample(0, 0, 30000)
	c.TickMaintenance(60000)
	assert.Equal(t, []string{"boot_dismissed", "hidden:cpu_load"}, rec.take())

	c.ProcessSample(0, 0, 89999)
	assert.Empty(t, rec.take())
	c.TickMaintenance(90000)
	assert.Equal(t, []string{"hidden:cpu_temp"}, rec.take())

	c.ProcessSample(0, 7, 91000)
	assert.Equal(t, []string{"shown:cpu_load"}, rec.take())
	assert.True(t, c.MetricHidden(MetricTemp))
}

func TestNoBlankBeforeFirstSample(t *testing.T) {
	c, rec := newTestCoordinator(t)

	c.TickMaintenance(0)
	c.TickMaintenance(60000)
	c.TickMaintenance(10 * 60000)
	assert.Empty(t, rec.intents)
	assert.False(t, c.DisplayBlanked())
}

func TestBlankedStillRechecksMeters(t *testing.T) {
	c, rec := newTestCoordinator(t)
	c.ProcessSample(0, 10, 0)
	rec.take()

	c.TickMaintenance(60000)
	assert.Equal(t, []string{"hidden:cpu_temp", "blanked"}, rec.take())
}

func TestRestoreClearsHiddenMeters(t *testing.T) {
	c, rec := newTestCoordinator(t)
	c.ProcessSample(0, 10, 0)
	c.TickMaintenance(60000)
	require.True(t, c.MetricHidden(MetricTemp))
	rec.take()

	c.ProcessSample(0, 10, 70000)
	assert.Equal(t, []string{"restored"}, rec.take())
	assert.False(t, c.MetricHidden(MetricTemp), "restore re-shows the whole display")

	c.TickMaintenance(129999)
	assert.Empty(t, rec.take())
	c.TickMaintenance(130000)
	assert.Equal(t, []string{"hidden:cpu_temp", "blanked"}, rec.take())
}

func TestTimeoutsAreIndependentlyConfigurable(t *testing.T) {
	rec := &recorder{}
	c := New(Config{HideTimeoutMs: 5000, BlankTimeoutMs: 20000}, rec, zerolog.Nop())

	c.ProcessSample(0, 10, 0)
	c.TickMaintenance(5000)
	assert.Equal(t, []string{"boot_dismissed", "hidden:cpu_temp"}, rec.take())

	c.TickMaintenance(19999)
	assert.Empty(t, rec.take())
	c.TickMaintenance(20000)
	assert.Equal(t, []string{"blanked"}, rec.take())
}

func TestCounterWraparound(t *testing.T) {
	c, rec := newTestCoordinator(t)
	start := clock.Millis(math.MaxUint32 - 10000)

	c.ProcessSample(10, 10, start)
	c.ProcessSample(0, 10, start+1000)
	c.ProcessSample(0, 10, start+30000)
	c.TickMaintenance(start + 60999)
	assert.Equal(t, []string{"boot_dismissed"}, rec.take())

	c.TickMaintenance(start + 61000)
	assert.Equal(t, []string{"hidden:cpu_temp"}, rec.take())

	c.TickMaintenance(start + 89999)
	assert.Empty(t, rec.take())
	c.TickMaintenance(start + 90000)
	assert.Equal(t, []string{"blanked"}, rec.take())
}

func TestOutOfRangeValuesAccepted(t *testing.T) {
	c, rec := newTestCoordinator(t)
	c.ProcessSample(250, -4, 0)

	st := c.Status(0)
	assert.Equal(t, 250, st.Temp.LastValue)
	assert.Equal(t, -4, st.Load.LastValue)
	assert.Equal(t, []string{"boot_dismissed"}, rec.take())
}

func TestStatusHasNoSideEffects(t *testing.T) {
	c, rec := newTestCoordinator(t)
	c.ProcessSample(0, 0, 0)
	rec.take()

	st := c.Status(500000)
	assert.Equal(t, uint32(500000), st.SinceLastData)
	assert.Empty(t, rec.intents)
	assert.False(t, c.DisplayBlanked())
	assert.False(t, c.MetricHidden(MetricTemp))
}

func TestStatusString(t *testing.T) {
	c, _ := newTestCoordinator(t)
	assert.Contains(t, c.Status(0).String(), "Time since last data: Never")

	c.ProcessSample(42, 0, 100)
	out := c.Status(350).String()
	for _, want := range []string{
		"First data received: Yes",
		"Display blanked: No",
		"CPU temp meter hidden: No",
		"Last CPU temp: 42",
		"Last CPU load: 0",
		"Time since last data: 250ms",
	} {
		assert.True(t, strings.Contains(out, want), "missing %q in:\n%s", want, out)
	}
}

// TestZeroTimerProperties drives both metrics with random streams and checks
// the hide/show invariants against an independent model of zero runs.
func TestZeroTimerProperties(t *testing.T) {
	const timeout = 60000
	rng := rand.New(rand.NewSource(7))

	for run := 0; run < 50; run++ {
		rec := &recorder{}
		// Blanking is covered elsewhere; keep it out of reach here.
		c := New(Config{HideTimeoutMs: timeout, BlankTimeoutMs: math.MaxUint32}, rec, zerolog.Nop())
		now := clock.Millis(rng.Uint32())
		firstSample := -1
		runStart := map[Metric]*clock.Millis{}
		hidden := map[Metric]bool{}

		checkHidden := func(step int) {
			for _, m := range Metrics {
				start := runStart[m]
				due := start != nil && now.Since(*start) >= timeout
				assert.Equal(t, due, hidden[m], "run %d step %d metric %s", run, step, m)
				assert.Equal(t, hidden[m], c.MetricHidden(m))
			}
		}

		for step := 0; step < 400; step++ {
			now += clock.Millis(rng.Intn(20000))

			if rng.Intn(3) == 0 {
				c.TickMaintenance(now)
			} else {
				values := map[Metric]int{MetricTemp: 0, MetricLoad: 0}
				for _, m := range Metrics {
					if rng.Intn(4) == 0 {
						values[m] = 1 + rng.Intn(100)
					}
				}
				if firstSample < 0 {
					firstSample = step
				}
				c.ProcessSample(values[MetricTemp], values[MetricLoad], now)

				for _, m := range Metrics {
					if values[m] != 0 {
						runStart[m] = nil
					} else if runStart[m] == nil {
						at := now
						runStart[m] = &at
					}
				}
			}

			for _, in := range rec.take() {
				switch {
				case strings.HasPrefix(in, "hidden:"):
					m := Metric(strings.TrimPrefix(in, "hidden:"))
					require.False(t, hidden[m], "duplicate hide for %s", m)
					hidden[m] = true
				case strings.HasPrefix(in, "shown:"):
					m := Metric(strings.TrimPrefix(in, "shown:"))
					require.True(t, hidden[m], "show without hide for %s", m)
					require.Nil(t, runStart[m], "show while value is zero for %s", m)
					hidden[m] = false
				case in == "boot_dismissed":
					require.Equal(t, firstSample, step, "boot dismissed only on the first sample")
				default:
					t.Fatalf("unexpected intent %q", in)
				}
			}
			checkHidden(step)
		}
	}
}
