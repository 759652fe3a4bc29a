package mqtt

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sweeney/gauge-display/internal/coordinator"
)

func TestTopics(t *testing.T) {
	assert.Equal(t, "display/gauge/events", Topic)
	assert.Equal(t, "display/gauge/system", TopicSystem)
}

func TestFormatPayload(t *testing.T) {
	intent := coordinator.Intent{
		Timestamp: time.Date(2026, 2, 2, 22, 18, 12, 0, time.UTC),
		Type:      coordinator.IntentMetricHidden,
		Metric:    coordinator.MetricTemp,
	}

	payload, err := FormatPayload(intent)
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"display":{"timestamp":"2026-02-02T22:18:12Z","event":"METRIC_HIDDEN","metric":"cpu_temp"}}`,
		string(payload))
}

func TestFormatPayloadOmitsMetricForDisplayEvents(t *testing.T) {
	for _, typ := range []coordinator.IntentType{
		coordinator.IntentBootDismissed,
		coordinator.IntentDisplayBlanked,
		coordinator.IntentDisplayRestored,
	} {
		t.Run(string(typ), func(t *testing.T) {
			payload, err := FormatPayload(coordinator.Intent{Timestamp: time.Now(), Type: typ})
			require.NoError(t, err)

			var parsed map[string]map[string]interface{}
			require.NoError(t, json.Unmarshal(payload, &parsed))
			assert.Equal(t, string(typ), parsed["display"]["event"])
			assert.NotContains(t, parsed["display"], "metric")
		})
	}
}

func TestFormatPayloadTimezoneConversion(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	payload, err := FormatPayload(coordinator.Intent{
		Timestamp: time.Date(2026, 2, 2, 10, 0, 0, 0, loc),
		Type:      coordinator.IntentDisplayBlanked,
	})
	require.NoError(t, err)

	var parsed Payload
	require.NoError(t, json.Unmarshal(payload, &parsed))
	assert.Equal(t, "2026-02-02T08:00:00Z", parsed.Display.Timestamp)
}

func TestFormatSystemPayload(t *testing.T) {
	payload, err := FormatSystemPayload(SystemEvent{
		Timestamp: time.Date(2026, 2, 10, 8, 30, 0, 0, time.UTC),
		Event:     "SHUTDOWN",
		Reason:    "MQTT_DISCONNECT",
	})
	require.NoError(t, err)
	assert.Equal(t,
		`{"system":{"timestamp":"2026-02-10T08:30:00Z","event":"SHUTDOWN","reason":"MQTT_DISCONNECT"}}`,
		string(payload))
}

func TestFormatSystemPayloadOmitsEmptyReason(t *testing.T) {
	payload, err := FormatSystemPayload(SystemEvent{
		Timestamp: time.Date(2026, 2, 10, 14, 30, 0, 0, time.UTC),
		Event:     "RECONNECTED",
	})
	require.NoError(t, err)
	assert.Equal(t, `{"system":{"timestamp":"2026-02-10T14:30:00Z","event":"RECONNECTED"}}`, string(payload))
}

func TestFormatSystemPayloadRaw(t *testing.T) {
	raw := []byte(`{"status":{"event":"STARTUP"}}`)
	payload, err := FormatSystemPayload(SystemEvent{Event: "STARTUP", RawPayload: raw})
	require.NoError(t, err)
	assert.Equal(t, raw, payload)
}

func TestFakePublisher(t *testing.T) {
	f := NewFakePublisher()

	require.NoError(t, f.Publish(coordinator.Intent{Timestamp: time.Now(), Type: coordinator.IntentBootDismissed}))
	require.NoError(t, f.Publish(coordinator.Intent{Timestamp: time.Now(), Type: coordinator.IntentMetricShown, Metric: coordinator.MetricLoad}))
	require.NoError(t, f.PublishSystem(SystemEvent{Timestamp: time.Now(), Event: "HEARTBEAT", Retained: true}))

	assert.Equal(t, []coordinator.IntentType{coordinator.IntentBootDismissed, coordinator.IntentMetricShown}, f.Types())
	assert.Len(t, f.Payloads, 2)
	require.Len(t, f.SystemEvents, 1)
	assert.True(t, f.SystemEvents[0].Retained)
	assert.Len(t, f.SystemPayloads, 1)
}

func TestFakePublisherErrors(t *testing.T) {
	f := NewFakePublisher()
	f.PublishError = errors.New("simulated error")
	f.PublishSystemError = errors.New("simulated system error")

	assert.Error(t, f.Publish(coordinator.Intent{Type: coordinator.IntentDisplayBlanked}))
	assert.Error(t, f.PublishSystem(SystemEvent{Event: "STARTUP"}))
	assert.Empty(t, f.Intents, "no events recorded on error")
	assert.Empty(t, f.SystemEvents)
}

func TestFakePublisherReset(t *testing.T) {
	f := NewFakePublisher()
	f.Connected = true
	f.Publish(coordinator.Intent{Type: coordinator.IntentDisplayBlanked})
	f.Close()

	f.Reset()
	assert.Empty(t, f.Intents)
	assert.Empty(t, f.Payloads)
	assert.False(t, f.Closed)
	assert.False(t, f.IsConnected())
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = Nop{}
	assert.NoError(t, p.Publish(coordinator.Intent{Type: coordinator.IntentBootDismissed}))
	assert.NoError(t, p.PublishSystem(SystemEvent{Event: "STARTUP"}))
	assert.NoError(t, p.Close())
	assert.False(t, Nop{}.IsConnected())
}

// newTestPublisher returns a RealPublisher whose sends are recorded instead of
// going to a broker.
func newTestPublisher(t *testing.T) (*RealPublisher, *[]bufferedMsg) {
	t.Helper()
	p := newPublisher(zerolog.Nop())
	p.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	var sent []bufferedMsg
	p.send = func(msg bufferedMsg) error {
		sent = append(sent, msg)
		return nil
	}
	return p, &sent
}

func TestRealPublisherBuffersUntilConnected(t *testing.T) {
	p, sent := newTestPublisher(t)

	require.NoError(t, p.Publish(coordinator.Intent{Type: coordinator.IntentBootDismissed}))
	require.NoError(t, p.PublishSystem(SystemEvent{Event: "STARTUP", Retained: true}))
	assert.Empty(t, *sent)
	assert.Equal(t, 2, p.Buffered())
	assert.False(t, p.IsConnected())

	p.handleConnect()
	require.Len(t, *sent, 2, "first connect replays without RECONNECTED")
	assert.Equal(t, Topic, (*sent)[0].topic)
	assert.Equal(t, TopicSystem, (*sent)[1].topic)
	assert.Equal(t, byte(1), (*sent)[1].qos)
	assert.True(t, (*sent)[1].retained)
	assert.Equal(t, 0, p.Buffered())
	assert.True(t, p.IsConnected())

	require.NoError(t, p.Publish(coordinator.Intent{Type: coordinator.IntentDisplayBlanked}))
	assert.Len(t, *sent, 3, "connected publishes go straight out")
}

func TestRealPublisherReconnectAnnouncesAndReplays(t *testing.T) {
	p, sent := newTestPublisher(t)
	p.handleConnect()

	p.handleLost(errors.New("network down"))
	assert.False(t, p.IsConnected())
	require.NoError(t, p.Publish(coordinator.Intent{Type: coordinator.IntentDisplayBlanked}))
	assert.Empty(t, *sent)

	p.handleConnect()
	require.Len(t, *sent, 2)
	assert.JSONEq(t,
		`{"system":{"timestamp":"2026-03-01T12:00:00Z","event":"RECONNECTED"}}`,
		string((*sent)[0].payload))
	assert.Equal(t, Topic, (*sent)[1].topic)
}

func TestRealPublisherRebuffersFailedReplay(t *testing.T) {
	p, _ := newTestPublisher(t)
	for i := 0; i < 3; i++ {
		p.Publish(coordinator.Intent{Type: coordinator.IntentMetricHidden, Metric: coordinator.MetricTemp})
	}

	calls := 0
	p.send = func(bufferedMsg) error {
		calls++
		if calls == 2 {
			return errors.New("publish timeout")
		}
		return nil
	}
	p.handleConnect()
	assert.Equal(t, 2, p.Buffered(), "failed message and the rest stay buffered")
}
