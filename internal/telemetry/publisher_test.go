package telemetry

import (
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/smazurov/histonode/internal/events"
)

type sent struct {
	topic    string
	qos      byte
	retained bool
	payload  []byte
}

type fakeSender struct {
	mu   sync.Mutex
	msgs []sent
	err  error
}

func (f *fakeSender) Send(topic string, qos byte, retained bool, payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, sent{topic, qos, retained, payload})
	return nil
}

func (f *fakeSender) wait(t *testing.T, n int) []sent {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		f.mu.Lock()
		if len(f.msgs) >= n {
			out := append([]sent(nil), f.msgs...)
			f.mu.Unlock()
			return out
		}
		f.mu.Unlock()
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d messages", n)
	return nil
}

func TestExposurePayload(t *testing.T) {
	msg := ExposurePayload(events.ExposureChangedEvent{
		Frame:       1200,
		Phase:       "encode",
		Branch:      "clipping",
		PrevISO:     100,
		PrevShutter: 2000,
		ISO:         200,
		Shutter:     1951,
		Timestamp:   "2025-01-27T10:30:00Z",
	})

	if msg.Quantum != 7804 {
		t.Errorf("quantum = %d, want 7804", msg.Quantum)
	}
	if msg.Previous != [2]int32{100, 2000} {
		t.Errorf("previous = %v", msg.Previous)
	}

	data, err := json.Marshal(msg)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "reinit") {
		t.Errorf("reinit should be omitted when false: %s", data)
	}
	if !strings.Contains(string(data), `"previous":[100,2000]`) {
		t.Errorf("payload = %s", data)
	}
}

func TestPublisherForwardsEvents(t *testing.T) {
	bus := events.New()
	sender := &fakeSender{}
	p := NewPublisher(Config{Topic: "cam1", QoS: 1}, bus, sender)
	p.Start()
	defer p.Stop()

	bus.Publish(events.LockChangedEvent{Locked: true, ISO: 100, Shutter: 2047})
	msgs := sender.wait(t, 1)

	if msgs[0].topic != "cam1/lock" || !msgs[0].retained || msgs[0].qos != 1 {
		t.Errorf("lock message = %+v", msgs[0])
	}
	var lock LockMessage
	if err := json.Unmarshal(msgs[0].payload, &lock); err != nil {
		t.Fatal(err)
	}
	if !lock.Locked || lock.Shutter != 2047 {
		t.Errorf("lock payload = %+v", lock)
	}

	bus.Publish(events.SettingsChangedEvent{Field: "ev_bias", Value: -1, Source: "api"})
	msgs = sender.wait(t, 2)
	if msgs[1].topic != "cam1/settings/ev_bias" {
		t.Errorf("settings topic = %q", msgs[1].topic)
	}

	bus.Publish(events.ExposureChangedEvent{ISO: 50, Shutter: 1000, Branch: "overexposed"})
	msgs = sender.wait(t, 3)
	if msgs[2].topic != "cam1/exposure" || msgs[2].retained {
		t.Errorf("exposure message = %+v", msgs[2])
	}

	if got := p.Stats().Published["cam1/exposure"]; got != 1 {
		t.Errorf("published count = %d, want 1", got)
	}
}

func TestPublisherCountsErrors(t *testing.T) {
	bus := events.New()
	sender := &fakeSender{err: errors.New("broker down")}
	p := NewPublisher(Config{}, bus, sender)
	p.Start()
	defer p.Stop()

	if got := p.Topic(TopicLock); got != "histonode/lock" {
		t.Errorf("default topic = %q", got)
	}

	bus.Publish(events.LockChangedEvent{Locked: false})

	deadline := time.Now().Add(time.Second)
	for p.Stats().Errors == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if p.Stats().Errors != 1 {
		t.Errorf("errors = %d, want 1", p.Stats().Errors)
	}
}

func TestClientID(t *testing.T) {
	a, b := ClientID(), ClientID()
	if !strings.HasPrefix(a, "histonode-") || len(a) != len("histonode-")+8 {
		t.Errorf("ClientID() = %q", a)
	}
	if a == b {
		t.Error("client ids repeat")
	}
}

func TestDialRequiresBroker(t *testing.T) {
	if _, err := Dial(Config{}); err == nil {
		t.Error("Dial without broker should fail")
	}
}
