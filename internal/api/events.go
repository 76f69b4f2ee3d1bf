package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/sse"
	"github.com/smazurov/histonode/internal/events"
	"github.com/smazurov/histonode/internal/nvm"
)

// registerSSERoutes registers the native Huma SSE endpoint.
func (s *Server) registerSSERoutes() {
	sse.Register(s.api, huma.Operation{
		OperationID: "events-stream",
		Method:      http.MethodGet,
		Path:        "/api/events",
		Summary:     "Server-Sent Events Stream",
		Description: "Real-time stream of exposure changes, lock changes, settings edits and per-frame pass results. The current lock state is sent on connect.",
		Tags:        []string{"events"},
		Security:    withAuth(),
		Errors:      []int{401},
	}, map[string]any{
		"exposure-changed": events.ExposureChangedEvent{},
		"lock-changed":     events.LockChangedEvent{},
		"settings-changed": events.SettingsChangedEvent{},
		"pass-completed":   events.PassCompletedEvent{},
	}, func(ctx context.Context, _ *struct{}, send sse.Sender) {
		// Pass results arrive at frame rate; a full channel drops them.
		eventCh := make(chan any, 64)

		unsubscribers := []func(){
			events.SubscribeToChannel[events.ExposureChangedEvent](s.eventBus, eventCh),
			events.SubscribeToChannel[events.LockChangedEvent](s.eventBus, eventCh),
			events.SubscribeToChannel[events.SettingsChangedEvent](s.eventBus, eventCh),
			events.SubscribeToChannel[events.PassCompletedEvent](s.eventBus, eventCh),
		}
		defer func() {
			for _, unsub := range unsubscribers {
				unsub()
			}
		}()

		if err := send.Data(s.lockState()); err != nil {
			return
		}

		for {
			select {
			case <-ctx.Done():
				return
			case event := <-eventCh:
				if err := send.Data(event); err != nil {
					return
				}
			}
		}
	})
}

func (s *Server) lockState() events.LockChangedEvent {
	return events.LockChangedEvent{
		Locked:    nvm.Locked(s.options.Store),
		ISO:       s.options.Store.Get(nvm.ISOLock),
		Shutter:   s.options.Store.Get(nvm.ShutterLock),
		Timestamp: time.Now().Format(time.RFC3339),
	}
}
