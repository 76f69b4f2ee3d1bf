package events

// Event type constants for kelindar/event.
const (
	TypeExposureChanged uint32 = iota + 1
	TypeLockChanged
	TypePassCompleted
	TypeSettingsChanged
	TypePipelineMetrics
	TypeLogEntry
)

// Event interface required by kelindar/event.
type Event interface {
	Type() uint32
}

// ExposureChangedEvent is published when the controller commits a new
// (ISO, shutter) pair to the sensor.
type ExposureChangedEvent struct {
	Frame       int32  `json:"frame" example:"1200" doc:"Frame counter at the time of the change"`
	Phase       string `json:"phase" example:"encode" doc:"Capture phase: preview or encode"`
	Branch      string `json:"branch" example:"clipping" doc:"Metering branch that fired"`
	PrevISO     int32  `json:"prev_iso" example:"100" doc:"ISO before the step"`
	PrevShutter int32  `json:"prev_shutter" example:"1500" doc:"Shutter before the step"`
	ISO         int32  `json:"iso" example:"100" doc:"ISO after the step"`
	Shutter     int32  `json:"shutter" example:"1463" doc:"Shutter after the step"`
	Reinit      bool   `json:"reinit" doc:"Whether the pair was reset from an out-of-range value"`
	Timestamp   string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for ExposureChangedEvent.
func (e ExposureChangedEvent) Type() uint32 { return TypeExposureChanged }

// LockChangedEvent is published when exposure lock is engaged or released.
type LockChangedEvent struct {
	Locked    bool   `json:"locked" doc:"Whether exposure is locked"`
	ISO       int32  `json:"iso" example:"200" doc:"Shadow ISO held while locked"`
	Shutter   int32  `json:"shutter" example:"2047" doc:"Shadow shutter held while locked"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for LockChangedEvent.
func (e LockChangedEvent) Type() uint32 { return TypeLockChanged }

// IsLocked implements the lock indicator interface of the LED manager.
func (e LockChangedEvent) IsLocked() bool {
	return e.Locked
}

// PassCompletedEvent summarises one per-frame pass.
type PassCompletedEvent struct {
	Frame      int32  `json:"frame" example:"1200" doc:"Frame counter"`
	Skipped    bool   `json:"skipped" doc:"Whether the pass short-circuited"`
	SkipReason string `json:"skip_reason,omitempty" example:"startup" doc:"Why the pass was skipped"`
	Phase      string `json:"phase" example:"preview" doc:"Capture phase"`
	Region     int    `json:"region" example:"3" doc:"Overlay region claimed"`
	Buffer     int    `json:"buffer" example:"2" doc:"Frame ring buffer sampled"`
	Total      uint32 `json:"total" example:"10464" doc:"Pixels sampled"`
	Branch     string `json:"branch,omitempty" example:"hold" doc:"Metering branch"`
	Timestamp  string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for PassCompletedEvent.
func (e PassCompletedEvent) Type() uint32 { return TypePassCompleted }

// SettingsChangedEvent is published when a settings field changes through the
// API or an external edit of the settings file.
type SettingsChangedEvent struct {
	Field     string `json:"field" example:"ev_bias" doc:"Settings field name"`
	Value     int32  `json:"value" example:"-1" doc:"New value"`
	Source    string `json:"source" example:"api" doc:"Origin of the change: api or file"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for SettingsChangedEvent.
func (e SettingsChangedEvent) Type() uint32 { return TypeSettingsChanged }

// PipelineMetricsEvent is the periodic metrics snapshot pushed to SSE clients.
type PipelineMetricsEvent struct {
	EventType  string `json:"type"`
	Processed  string `json:"processed"`
	Skipped    string `json:"skipped"`
	ISO        string `json:"iso"`
	Shutter    string `json:"shutter"`
	Quantum    string `json:"quantum"`
	Locked     bool   `json:"locked"`
	PassMillis string `json:"pass_ms"`
	Dropped    string `json:"dropped_events"`
}

// Type returns the event type identifier for PipelineMetricsEvent.
func (e PipelineMetricsEvent) Type() uint32 { return TypePipelineMetrics }

// LogEntryEvent represents a log entry for SSE streaming.
type LogEntryEvent struct {
	Seq        uint64         `json:"seq" example:"42" doc:"Monotonic sequence number for deduplication"`
	Timestamp  string         `json:"timestamp" example:"2025-01-09T10:30:00.123Z" doc:"Log timestamp"`
	Level      string         `json:"level" example:"info" doc:"Log level"`
	Module     string         `json:"module" example:"exposure" doc:"Source module"`
	Message    string         `json:"message" doc:"Log message"`
	Attributes map[string]any `json:"attributes,omitempty" doc:"Structured log attributes"`
}

// Type returns the event type identifier for LogEntryEvent.
func (e LogEntryEvent) Type() uint32 { return TypeLogEntry }
