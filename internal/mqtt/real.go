package mqtt

import (
	"fmt"
	"log"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/sweeney/led-toggle/internal/toggle"
)

const (
	clientID       = "led-toggle"
	bufferCapacity = 64
	publishTimeout = 5 * time.Second
	flushTimeout   = 2 * time.Second
	flushPoll      = 50 * time.Millisecond
)

// RealPublisher publishes to an actual MQTT broker.
// It connects in the background; messages published before the connection is
// up are buffered and replayed on connect.
type RealPublisher struct {
	client paho.Client

	mu  sync.Mutex
	buf *ringBuffer
	// replaying is set while onConnect drains buf. Sends made meanwhile
	// are queued behind the replay.
	replaying bool
}

// NewRealPublisher creates a publisher for the given broker and starts
// connecting. It never blocks on the broker.
func NewRealPublisher(broker string) *RealPublisher {
	p := &RealPublisher{buf: newRingBuffer(bufferCapacity)}

	will, _ := FormatSystemPayload(SystemEvent{
		Timestamp: time.Now(),
		Event:     "OFFLINE",
		Reason:    "MQTT_DISCONNECT",
	})

	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(time.Second).
		SetWill(TopicSystem, string(will), 1, true).
		SetOnConnectHandler(p.onConnect).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			log.Printf("mqtt: connection lost: %v", err)
		})

	p.client = paho.NewClient(opts)
	p.client.Connect()
	return p
}

// onConnect replays buffered messages in order. paho runs it on its own
// goroutine. Messages queued during the replay are sent after it.
func (p *RealPublisher) onConnect(_ paho.Client) {
	p.mu.Lock()
	if p.replaying {
		p.mu.Unlock()
		return
	}
	p.replaying = true

	replayed := 0
	for {
		msgs, dropped := p.buf.drainAll()
		if len(msgs) == 0 {
			p.replaying = false
			p.mu.Unlock()
			break
		}
		p.mu.Unlock()

		if dropped > 0 {
			log.Printf("mqtt: %d buffered messages were dropped while disconnected", dropped)
		}
		for _, m := range msgs {
			if err := p.publishNow(m); err != nil {
				log.Printf("mqtt: replay to %s: %v", m.topic, err)
			}
		}
		replayed += len(msgs)

		p.mu.Lock()
	}
	log.Printf("mqtt: connected, replayed %d buffered messages", replayed)
}

// Publish sends an LED event to the MQTT broker.
func (p *RealPublisher) Publish(event toggle.Event) error {
	payload, err := FormatPayload(event)
	if err != nil {
		return fmt.Errorf("format payload: %w", err)
	}

	// QoS 0 (at-most-once), not retained
	return p.send(bufferedMsg{topic: Topic, payload: payload})
}

// PublishSystem sends a lifecycle event to the MQTT broker.
func (p *RealPublisher) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}

	// QoS 1 (at-least-once) - lifecycle events should be delivered
	return p.send(bufferedMsg{topic: TopicSystem, payload: payload, qos: 1, retained: event.Retained})
}

func (p *RealPublisher) send(msg bufferedMsg) error {
	p.mu.Lock()
	if !p.client.IsConnectionOpen() || p.replaying || p.buf.len() > 0 {
		p.buf.push(msg)
		p.mu.Unlock()
		return nil
	}
	p.mu.Unlock()

	return p.publishNow(msg)
}

func (p *RealPublisher) publishNow(msg bufferedMsg) error {
	token := p.client.Publish(msg.topic, msg.qos, msg.retained, msg.payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publish to %s: timeout", msg.topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish to %s: %w", msg.topic, err)
	}
	return nil
}

// IsConnected reports whether the client is connected to the broker.
func (p *RealPublisher) IsConnected() bool {
	return p.client.IsConnected()
}

// Close waits briefly for buffered messages to be replayed, then disconnects.
func (p *RealPublisher) Close() error {
	deadline := time.Now().Add(flushTimeout)
	for {
		p.mu.Lock()
		pending := p.buf.len()
		replaying := p.replaying
		p.mu.Unlock()

		if pending == 0 && !replaying {
			break
		}
		if time.Now().After(deadline) {
			log.Printf("mqtt: broker unreachable, discarding %d buffered messages", pending)
			break
		}
		time.Sleep(flushPoll)
	}

	p.client.Disconnect(250)
	return nil
}
