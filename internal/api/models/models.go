package models

import (
	"github.com/smazurov/histonode/internal/exposure"
	"github.com/smazurov/histonode/internal/histogram"
)

// Health check models
type HealthData struct {
	Status  string `json:"status" example:"ok" doc:"Service status"`
	Message string `json:"message" example:"API is healthy" doc:"Status message"`
}

type HealthResponse struct {
	Body HealthData
}

// Version models
type VersionData struct {
	Version   string `json:"version" example:"dev" doc:"Application version"`
	GitCommit string `json:"git_commit" example:"abc1234" doc:"Git commit SHA"`
	BuildDate string `json:"build_date" example:"2024-12-15 14:30" doc:"Build timestamp"`
	BuildID   string `json:"build_id" example:"a1b2c3d4" doc:"Unique build identifier"`
	GoVersion string `json:"go_version" example:"go1.21.0" doc:"Go compiler version"`
	Compiler  string `json:"compiler" example:"gc" doc:"Compiler used"`
	Platform  string `json:"platform" example:"linux/amd64" doc:"Platform"`
}

type VersionResponse struct {
	Body VersionData
}

// Status models
type ExposureData struct {
	ISO     int32 `json:"iso" example:"100" doc:"Live sensor ISO"`
	Shutter int32 `json:"shutter" example:"1951" doc:"Live shutter in microseconds"`
	Quantum int32 `json:"quantum" example:"3902" doc:"Exposure quantum, shutter times ISO/50"`
	Locked  bool  `json:"locked" doc:"Whether exposure lock is engaged"`
	Power   int32 `json:"power" example:"2" doc:"ISO ceiling multiplier in encode"`
}

type PassData struct {
	Frame      int32              `json:"frame" example:"1200" doc:"Frame counter of the last pass"`
	Skipped    bool               `json:"skipped" doc:"Whether the last pass short-circuited"`
	SkipReason string             `json:"skip_reason,omitempty" example:"startup" doc:"Why the last pass was skipped"`
	Region     int                `json:"region" example:"3" doc:"Overlay region claimed, -1 if none"`
	Buffer     int                `json:"buffer" example:"2" doc:"Frame ring buffer sampled, -1 if none"`
	Zones      histogram.Zones    `json:"zones" doc:"Luma zone populations"`
	Decision   *exposure.Decision `json:"decision,omitempty" doc:"Exposure decision of the last processed pass"`
	DurationUs int64              `json:"duration_us" example:"850" doc:"Pass duration in microseconds"`
	At         string             `json:"at,omitempty" example:"2025-01-27T10:30:00Z" doc:"Pass start time"`
}

type StatusData struct {
	Phase         string       `json:"phase" example:"preview" doc:"Capture phase: idle, preview or encode"`
	FrameNumber   int32        `json:"frame_number" example:"1200" doc:"Host frame counter"`
	EncodedFrames uint32       `json:"encoded_frames" example:"0" doc:"Frames encoded in the current recording"`
	Exposure      ExposureData `json:"exposure" doc:"Live exposure"`
	QP            uint32       `json:"qp" example:"25" doc:"Encoder quantiser as displayed"`
	EffectiveQP   uint32       `json:"effective_qp" example:"26" doc:"Quantiser floor in effect, max(qp, qp_min-1)"`
	Pass          PassData     `json:"pass" doc:"Most recent pass"`
	Panel         []string     `json:"panel" doc:"Status panel text rows"`
}

type StatusResponse struct {
	Body StatusData
}

// Histogram models
type HistogramData struct {
	Frame   int32               `json:"frame" example:"1200" doc:"Frame counter of the sampled pass"`
	Total   uint32              `json:"total" example:"10464" doc:"Pixels sampled"`
	Luma    []uint32            `json:"luma" doc:"Luma bins (128)"`
	Red     []uint32            `json:"red" doc:"Red bins (128)"`
	Green   []uint32            `json:"green" doc:"Green bins (128)"`
	Blue    []uint32            `json:"blue" doc:"Blue bins (128)"`
	Summary []histogram.Summary `json:"summary" doc:"Per-channel distribution statistics"`
}

type HistogramResponse struct {
	Body HistogramData
}

// Configuration store models
type ConfigData struct {
	Path   string           `json:"path,omitempty" example:"settings.toml" doc:"Backing file, empty for an in-memory store"`
	Values map[string]int32 `json:"values" doc:"Settings by field name"`
}

type ConfigResponse struct {
	Body ConfigData
}

type ConfigFieldRequest struct {
	Field string `path:"field" example:"ev_bias" doc:"Settings field name"`
	Body  struct {
		Value int32 `json:"value" example:"-1" doc:"New value"`
	}
}

type ConfigFieldData struct {
	Field   string `json:"field" example:"ev_bias" doc:"Settings field name"`
	Value   int32  `json:"value" example:"-1" doc:"Value after the write"`
	Changed bool   `json:"changed" doc:"Whether the write changed the stored value"`
}

type ConfigFieldResponse struct {
	Body ConfigFieldData
}

// Exposure lock models
type LockRequest struct {
	Body struct {
		Locked bool `json:"locked" example:"true" doc:"Engage (true) or release (false) exposure lock"`
	}
}

type LockData struct {
	Locked  bool  `json:"locked" doc:"Lock state after the request"`
	Changed bool  `json:"changed" doc:"Whether the request changed the state"`
	ISO     int32 `json:"iso" example:"100" doc:"Shadow ISO held while locked"`
	Shutter int32 `json:"shutter" example:"1951" doc:"Shadow shutter held while locked"`
}

type LockResponse struct {
	Body LockData
}

// Overlay models
type OverlayData struct {
	Region int      `json:"region" example:"3" doc:"Region on display, -1 before the first frame"`
	Width  int      `json:"width" example:"136" doc:"Panel width in pixels"`
	Height int      `json:"height" example:"72" doc:"Panel height in pixels"`
	Panels int      `json:"panels" example:"3" doc:"Number of palette panels (R, G, B)"`
	States []string `json:"states" doc:"Claim state of every region"`
	Bitmap string   `json:"bitmap,omitempty" doc:"Base64 palette bitmap, panels stored consecutively"`
}

type OverlayResponse struct {
	Body OverlayData
}

// Log models
type LogsRequest struct {
	Module string `query:"module" example:"exposure" doc:"Only entries from this module"`
	Limit  int    `query:"limit" minimum:"0" maximum:"1000" default:"200" doc:"Most recent entries to return"`
}

type LogLine struct {
	Timestamp  string         `json:"timestamp" example:"2025-01-09T10:30:00.123Z" doc:"Log timestamp"`
	Level      string         `json:"level" example:"info" doc:"Log level"`
	Module     string         `json:"module" example:"exposure" doc:"Source module"`
	Message    string         `json:"message" doc:"Log message"`
	Attributes map[string]any `json:"attributes,omitempty" doc:"Structured log attributes"`
}

type LogsResponse struct {
	Body struct {
		Entries []LogLine `json:"entries" doc:"Log entries, oldest first"`
		Count   int       `json:"count" example:"42" doc:"Number of entries returned"`
	}
}

// LED models
type LEDRequest struct {
	Body struct {
		Type    string `json:"type" example:"system" doc:"LED name; system carries the exposure lock indicator"`
		Enabled bool   `json:"enabled" example:"true" doc:"Whether the LED should be on or off"`
		Pattern string `json:"pattern,omitempty" enum:"solid,blink,heartbeat" example:"solid" doc:"Optional pattern; omitted keeps the current one"`
	}
}

type LEDCapabilities struct {
	AvailableTypes    []string `json:"available_types" doc:"LED names on this board"`
	AvailablePatterns []string `json:"available_patterns" doc:"Accepted patterns"`
}

type LEDCapabilitiesResponse struct {
	Body LEDCapabilities
}
