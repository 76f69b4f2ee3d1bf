// Package telemetry forwards exposure decisions, lock changes and settings
// edits to an MQTT broker as JSON.
package telemetry

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/smazurov/histonode/internal/events"
	"github.com/smazurov/histonode/internal/exposure"
	"github.com/smazurov/histonode/internal/logging"
)

// DefaultTopic is the topic prefix when none is configured.
const DefaultTopic = "histonode"

// Topic suffixes.
const (
	TopicExposure = "exposure"
	TopicLock     = "lock"
	TopicSettings = "settings"
)

// Config selects the broker and topic prefix.
type Config struct {
	Broker   string
	Topic    string
	Username string
	Password string
	QoS      byte
}

// Sender delivers one message to the broker.
type Sender interface {
	Send(topic string, qos byte, retained bool, payload []byte) error
}

// ExposureMessage is the payload of the exposure topic.
type ExposureMessage struct {
	Frame     int32    `json:"frame"`
	Phase     string   `json:"phase"`
	Branch    string   `json:"branch"`
	ISO       int32    `json:"iso"`
	Shutter   int32    `json:"shutter"`
	Quantum   int32    `json:"quantum"`
	Previous  [2]int32 `json:"previous"`
	Reinit    bool     `json:"reinit,omitempty"`
	Timestamp string   `json:"timestamp"`
}

// LockMessage is the retained payload of the lock topic.
type LockMessage struct {
	Locked    bool   `json:"locked"`
	ISO       int32  `json:"iso"`
	Shutter   int32  `json:"shutter"`
	Timestamp string `json:"timestamp"`
}

// Stats counts delivered and failed messages.
type Stats struct {
	Published map[string]uint64 `json:"published"`
	Errors    uint64            `json:"errors"`
}

// Publisher subscribes to the event bus and forwards events through a Sender.
type Publisher struct {
	cfg    Config
	sender Sender
	bus    *events.Bus
	unsubs []func()
	logger *slog.Logger

	mu        sync.Mutex
	published map[string]uint64
	errors    uint64
}

// NewPublisher creates a publisher. Start subscribes it to the bus.
func NewPublisher(cfg Config, bus *events.Bus, sender Sender) *Publisher {
	if cfg.Topic == "" {
		cfg.Topic = DefaultTopic
	}
	return &Publisher{
		cfg:       cfg,
		sender:    sender,
		bus:       bus,
		logger:    logging.GetLogger("telemetry"),
		published: make(map[string]uint64),
	}
}

// Topic returns the full topic for suffix.
func (p *Publisher) Topic(suffix string) string {
	return p.cfg.Topic + "/" + suffix
}

// Start subscribes to exposure, lock and settings events.
func (p *Publisher) Start() {
	p.unsubs = append(p.unsubs,
		p.bus.Subscribe(func(e events.ExposureChangedEvent) {
			p.send(TopicExposure, false, ExposurePayload(e))
		}),
		p.bus.Subscribe(func(e events.LockChangedEvent) {
			p.send(TopicLock, true, LockPayload(e))
		}),
		p.bus.Subscribe(func(e events.SettingsChangedEvent) {
			p.send(TopicSettings+"/"+e.Field, true, e)
		}),
	)
	p.logger.Info("Telemetry publisher started", "topic", p.cfg.Topic)
}

// Stop unsubscribes from the bus.
func (p *Publisher) Stop() {
	for _, unsub := range p.unsubs {
		unsub()
	}
	p.unsubs = nil
}

// Stats returns a copy of the delivery counters.
func (p *Publisher) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()

	published := make(map[string]uint64, len(p.published))
	for k, v := range p.published {
		published[k] = v
	}
	return Stats{Published: published, Errors: p.errors}
}

func (p *Publisher) send(suffix string, retained bool, msg any) {
	topic := p.Topic(suffix)

	payload, err := json.Marshal(msg)
	if err == nil {
		err = p.sender.Send(topic, p.cfg.QoS, retained, payload)
	} else {
		err = fmt.Errorf("failed to marshal payload: %w", err)
	}

	p.mu.Lock()
	if err != nil {
		p.errors++
	} else {
		p.published[topic]++
	}
	p.mu.Unlock()

	if err != nil {
		p.logger.Debug("Telemetry publish failed", "topic", topic, "error", err)
		return
	}
	p.logger.Debug("Telemetry published", "topic", topic, "size", len(payload))
}

// ExposurePayload converts an exposure change to its wire form.
func ExposurePayload(e events.ExposureChangedEvent) ExposureMessage {
	return ExposureMessage{
		Frame:     e.Frame,
		Phase:     e.Phase,
		Branch:    e.Branch,
		ISO:       e.ISO,
		Shutter:   e.Shutter,
		Quantum:   exposure.Pair{ISO: e.ISO, Shutter: e.Shutter}.Quantum(),
		Previous:  [2]int32{e.PrevISO, e.PrevShutter},
		Reinit:    e.Reinit,
		Timestamp: e.Timestamp,
	}
}

// LockPayload converts a lock change to its wire form.
func LockPayload(e events.LockChangedEvent) LockMessage {
	return LockMessage{
		Locked:    e.Locked,
		ISO:       e.ISO,
		Shutter:   e.Shutter,
		Timestamp: e.Timestamp,
	}
}
