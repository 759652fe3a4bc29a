package mqtt

import (
	"fmt"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"

	"github.com/sweeney/gauge-display/internal/coordinator"
)

// bufferCapacity is how many messages are kept while the broker is unreachable.
const bufferCapacity = 100

// RealPublisher publishes to an actual MQTT broker. Messages published while
// disconnected are buffered and replayed in order after reconnection.
type RealPublisher struct {
	client paho.Client
	log    zerolog.Logger

	mu        sync.Mutex
	buf       *ringBuffer
	connected bool
	everUp    bool

	// send and now are swapped out in tests.
	send func(msg bufferedMsg) error
	now  func() time.Time
}

// NewRealPublisher creates a publisher connected to the given broker. If the
// broker is not reachable within the connect timeout, the publisher keeps
// retrying in the background and buffers until it connects.
func NewRealPublisher(broker, clientID string, log zerolog.Logger) (*RealPublisher, error) {
	p := newPublisher(log)

	will, _ := FormatSystemPayload(SystemEvent{
		Timestamp: time.Now(),
		Event:     "SHUTDOWN",
		Reason:    "MQTT_DISCONNECT",
	})

	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetBinaryWill(TopicSystem, will, 1, true).
		SetOnConnectHandler(func(paho.Client) { p.handleConnect() }).
		SetConnectionLostHandler(func(_ paho.Client, err error) { p.handleLost(err) })

	p.client = paho.NewClient(opts)
	p.send = p.pahoSend

	token := p.client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		log.Warn().Str("broker", broker).Msg("broker not reachable yet, buffering until connected")
		return p, nil
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}

	return p, nil
}

func newPublisher(log zerolog.Logger) *RealPublisher {
	return &RealPublisher{
		log: log,
		buf: newRingBuffer(bufferCapacity, log),
		now: time.Now,
	}
}

func (p *RealPublisher) pahoSend(msg bufferedMsg) error {
	token := p.client.Publish(msg.topic, msg.qos, msg.retained, msg.payload)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("publish timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

// handleConnect replays buffered messages. After a reconnection it also
// announces RECONNECTED so consumers know events may have been delayed.
func (p *RealPublisher) handleConnect() {
	p.mu.Lock()
	reconnect := p.everUp
	p.connected = true
	p.everUp = true
	pending := p.buf.drainAll()
	p.mu.Unlock()

	if reconnect {
		payload, _ := FormatSystemPayload(SystemEvent{Timestamp: p.now(), Event: "RECONNECTED"})
		if err := p.send(bufferedMsg{topic: TopicSystem, payload: payload, qos: 1}); err != nil {
			p.log.Warn().Err(err).Msg("failed to publish reconnect event")
		}
	}

	if len(pending) > 0 {
		p.log.Info().Int("count", len(pending)).Msg("replaying buffered messages")
	}
	for i, msg := range pending {
		if err := p.send(msg); err != nil {
			p.log.Warn().Err(err).Msg("replay failed, re-buffering")
			p.mu.Lock()
			for _, m := range pending[i:] {
				p.buf.push(m)
			}
			p.mu.Unlock()
			return
		}
	}
}

func (p *RealPublisher) handleLost(err error) {
	p.mu.Lock()
	p.connected = false
	p.mu.Unlock()
	p.log.Warn().Err(err).Msg("broker connection lost")
}

func (p *RealPublisher) publish(msg bufferedMsg) error {
	p.mu.Lock()
	if !p.connected {
		p.buf.push(msg)
		p.mu.Unlock()
		return nil
	}
	p.mu.Unlock()

	return p.send(msg)
}

// Publish sends a display intent to the MQTT broker (QoS 0, not retained).
func (p *RealPublisher) Publish(intent coordinator.Intent) error {
	payload, err := FormatPayload(intent)
	if err != nil {
		return fmt.Errorf("format payload: %w", err)
	}
	return p.publish(bufferedMsg{topic: Topic, payload: payload})
}

// PublishSystem sends a system lifecycle event to the MQTT broker.
// QoS 1 (at-least-once): lifecycle events should be delivered.
func (p *RealPublisher) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}
	return p.publish(bufferedMsg{topic: TopicSystem, payload: payload, qos: 1, retained: event.Retained})
}

// IsConnected reports whether the broker connection is up.
func (p *RealPublisher) IsConnected() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.connected
}

// Buffered returns the number of messages waiting for a connection.
func (p *RealPublisher) Buffered() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.buf.len()
}

// Close disconnects from the broker.
func (p *RealPublisher) Close() error {
	if p.client != nil {
		p.client.Disconnect(1000) // 1 second timeout
	}
	return nil
}
