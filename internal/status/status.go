// Package status provides a thread-safe status tracker for the gauge-display
// daemon. It is read by the HTTP handlers and by heartbeat publishing.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/gauge-display/internal/coordinator"
	"github.com/sweeney/gauge-display/internal/sample"
)

// NetworkInfo contains network state as supplied by the service environment.
type NetworkInfo struct {
	Type       string
	IP         string
	Status     string
	Gateway    string
	WifiStatus string
	SSID       string
}

// Config contains daemon configuration for display.
type Config struct {
	SerialDevice   string
	PollMs         int64
	HideTimeoutMs  uint32
	BlankTimeoutMs uint32
	HeartbeatMs    int64
	Broker         string
	HTTPAddr       string
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type, safe to use after the lock is released.
type Snapshot struct {
	Display       coordinator.Status
	LastSample    sample.Sample
	HasSample     bool
	Rejected      int
	Dropped       int
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Network       *NetworkInfo
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
	now  func() time.Time
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
		now: time.Now,
	}
}

// Update stores the coordinator status. Called from the control loop once
// per iteration.
func (t *Tracker) Update(st coordinator.Status) {
	t.mu.Lock()
	t.snap.Display = st
	t.mu.Unlock()
}

// SetSample records the most recently accepted sample.
func (t *Tracker) SetSample(s sample.Sample) {
	t.mu.Lock()
	t.snap.LastSample = s
	t.snap.HasSample = true
	t.mu.Unlock()
}

// SetTransportStats records how many lines were rejected or dropped.
func (t *Tracker) SetTransportStats(rejected, dropped int) {
	t.mu.Lock()
	t.snap.Rejected = rejected
	t.snap.Dropped = dropped
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// SetNetwork sets the network info.
func (t *Tracker) SetNetwork(info *NetworkInfo) {
	t.mu.Lock()
	t.snap.Network = info
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = t.now()
	return s
}
