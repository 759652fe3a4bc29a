package status

import (
	"encoding/json"
	"time"

	"github.com/sweeney/gauge-display/internal/coordinator"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event               string           `json:"event,omitempty"`
	Reason              string           `json:"reason,omitempty"`
	FirstSampleReceived bool             `json:"first_sample_received"`
	DisplayBlanked      bool             `json:"display_blanked"`
	TimeSinceLastDataMs *uint32          `json:"time_since_last_data_ms"`
	Meters              MetersJSON       `json:"meters"`
	LastSample          *SampleJSON      `json:"last_sample,omitempty"`
	Transport           TransportJSON    `json:"transport"`
	UptimeSeconds       int64            `json:"uptime_seconds"`
	StartTime           string           `json:"start_time"`
	Timestamp           string           `json:"timestamp"`
	MQTT                MQTTStatus       `json:"mqtt"`
	Counts              IntentCountsJSON `json:"intent_counts"`
	Network             *NetworkJSON     `json:"network,omitempty"`
	Config              ConfigJSON       `json:"config"`
}

// MetersJSON holds per-metric state.
type MetersJSON struct {
	CPUTemp MeterJSON `json:"cpu_temp"`
	CPULoad MeterJSON `json:"cpu_load"`
}

// MeterJSON is one metric's state. LastValue is null before any sample.
type MeterJSON struct {
	Hidden    bool `json:"hidden"`
	LastValue *int `json:"last_value"`
}

// SampleJSON is the last accepted sample.
type SampleJSON struct {
	Time    string `json:"time"`
	CPULoad int    `json:"cpu_load"`
	CPUTemp int    `json:"cpu_temp"`
}

// TransportJSON reports serial line statistics.
type TransportJSON struct {
	Rejected int `json:"rejected"`
	Dropped  int `json:"dropped"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// IntentCountsJSON is the JSON representation of intent counts.
type IntentCountsJSON struct {
	BootDismissed   int `json:"boot_dismissed"`
	MetricHidden    int `json:"metric_hidden"`
	MetricShown     int `json:"metric_shown"`
	DisplayBlanked  int `json:"display_blanked"`
	DisplayRestored int `json:"display_restored"`
}

// NetworkJSON is the JSON representation of network info.
type NetworkJSON struct {
	Type       string `json:"type"`
	IP         string `json:"ip"`
	Status     string `json:"status"`
	Gateway    string `json:"gateway"`
	WifiStatus string `json:"wifi_status"`
	SSID       string `json:"ssid"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	SerialDevice   string `json:"serial_device"`
	PollMs         int64  `json:"poll_ms"`
	MeterHideMs    uint32 `json:"meter_hide_ms"`
	DisplayBlankMs uint32 `json:"display_blank_ms"`
	HeartbeatMs    int64  `json:"heartbeat_ms"`
	Broker         string `json:"broker"`
	HTTPAddr       string `json:"http_addr"`
}

func meterJSON(m coordinator.MetricStatus) MeterJSON {
	out := MeterJSON{Hidden: m.Hidden}
	if m.HasValue {
		v := m.LastValue
		out.LastValue = &v
	}
	return out
}

func buildInner(snap Snapshot) StatusInner {
	d := snap.Display
	inner := StatusInner{
		FirstSampleReceived: d.FirstSampleReceived,
		DisplayBlanked:      d.DisplayBlanked,
		Meters: MetersJSON{
			CPUTemp: meterJSON(d.Temp),
			CPULoad: meterJSON(d.Load),
		},
		Transport:     TransportJSON{Rejected: snap.Rejected, Dropped: snap.Dropped},
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts: IntentCountsJSON{
			BootDismissed:   d.Counts.BootDismissed,
			MetricHidden:    d.Counts.MetricHidden,
			MetricShown:     d.Counts.MetricShown,
			DisplayBlanked:  d.Counts.DisplayBlanked,
			DisplayRestored: d.Counts.DisplayRestored,
		},
		Config: ConfigJSON{
			SerialDevice:   snap.Config.SerialDevice,
			PollMs:         snap.Config.PollMs,
			MeterHideMs:    snap.Config.HideTimeoutMs,
			DisplayBlankMs: snap.Config.BlankTimeoutMs,
			HeartbeatMs:    snap.Config.HeartbeatMs,
			Broker:         snap.Config.Broker,
			HTTPAddr:       snap.Config.HTTPAddr,
		},
	}
	if d.LastData.Set {
		since := d.SinceLastData
		inner.TimeSinceLastDataMs = &since
	}
	if snap.HasSample {
		inner.LastSample = &SampleJSON{
			Time:    snap.LastSample.Time,
			CPULoad: snap.LastSample.CPULoad,
			CPUTemp: snap.LastSample.CPUTemp,
		}
	}
	if snap.Network != nil {
		inner.Network = &NetworkJSON{
			Type:       snap.Network.Type,
			IP:         snap.Network.IP,
			Status:     snap.Network.Status,
			Gateway:    snap.Network.Gateway,
			WifiStatus: snap.Network.WifiStatus,
			SSID:       snap.Network.SSID,
		}
	}
	return inner
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(StatusJSON{Status: buildInner(snap)}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
