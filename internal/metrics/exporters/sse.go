package exporters

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/smazurov/histonode/internal/events"
	"github.com/smazurov/histonode/internal/metrics"
)

// EventPublisher interface for publishing events.
type EventPublisher interface {
	Publish(ev events.Event)
}

// SSEExporter pushes pipeline metric snapshots through the event bus.
type SSEExporter struct {
	eventBus EventPublisher
	interval time.Duration
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

// NewSSEExporter creates a new SSE exporter.
func NewSSEExporter(eventBus EventPublisher) *SSEExporter {
	return &SSEExporter{
		eventBus: eventBus,
		interval: 1 * time.Second,
	}
}

// Start begins the SSE export loop.
func (s *SSEExporter) Start(ctx context.Context) {
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.wg.Add(1)
	go s.run()
}

// Stop stops the SSE exporter and waits for the goroutine to finish.
func (s *SSEExporter) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

func (s *SSEExporter) run() {
	defer s.wg.Done()
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.publishMetrics()
		}
	}
}

func (s *SSEExporter) publishMetrics() {
	m := metrics.GetPipelineMetrics()
	s.eventBus.Publish(events.PipelineMetricsEvent{
		EventType:  "pipeline_metrics",
		Processed:  strconv.FormatUint(m.Processed, 10),
		Skipped:    strconv.FormatUint(m.Skipped, 10),
		ISO:        strconv.FormatInt(int64(m.ISO), 10),
		Shutter:    strconv.FormatInt(int64(m.Shutter), 10),
		Quantum:    strconv.FormatInt(int64(m.Quantum), 10),
		Locked:     m.Locked,
		PassMillis: strconv.FormatFloat(float64(m.LastPass.Microseconds())/1000, 'f', 3, 64),
		Dropped:    strconv.FormatUint(events.Dropped(), 10),
	})
}

// GetEventTypes returns event types for SSE endpoint registration.
func GetEventTypes() map[string]any {
	return map[string]any{
		"pipeline-metrics": events.PipelineMetricsEvent{},
	}
}
