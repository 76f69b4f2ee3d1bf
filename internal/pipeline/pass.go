// Package pipeline runs the per-frame histogram pass: sample the freshest
// frame, render and composite the overlay, draw the status panel and step the
// exposure controller.
package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/smazurov/histonode/internal/device"
	"github.com/smazurov/histonode/internal/events"
	"github.com/smazurov/histonode/internal/exposure"
	"github.com/smazurov/histonode/internal/frame"
	"github.com/smazurov/histonode/internal/glyph"
	"github.com/smazurov/histonode/internal/histogram"
	"github.com/smazurov/histonode/internal/logging"
	"github.com/smazurov/histonode/internal/metrics"
	"github.com/smazurov/histonode/internal/nvm"
	"github.com/smazurov/histonode/internal/overlay"
	"github.com/smazurov/histonode/internal/slots"
	"github.com/smazurov/histonode/internal/status"
)

// SkipReason names why a pass short-circuited.
type SkipReason string

// Skip reasons. SkipNone marks a processed pass.
const (
	SkipNone       SkipReason = ""
	SkipCancelled  SkipReason = "cancelled"
	SkipStartup    SkipReason = "startup"
	SkipFrameRange SkipReason = "frame_out_of_range"
	SkipIdle       SkipReason = "idle"
	SkipConfirm    SkipReason = "confirm_held"
)

// Frame counter guards.
const (
	StartupFrames  = 25
	FrameRangeMask = 0xfff00000
)

// Result is the outcome of one pass.
type Result struct {
	Frame      int32
	Reason     SkipReason
	Phase      exposure.Phase
	Region     int
	Buffer     int
	Histogram  histogram.Histogram
	Zones      histogram.Zones
	Decision   exposure.Decision
	Panel      status.Grid
	PanelDrawn bool
	Duration   time.Duration
	At         time.Time
}

// Skipped reports whether the pass short-circuited.
func (r Result) Skipped() bool {
	return r.Reason != SkipNone
}

// Deps are the collaborators of a pass. Bus and Font are optional.
type Deps struct {
	Host     device.Host
	Frames   frame.Source
	Registry *slots.Registry
	Store    nvm.Store
	Surface  *device.Surface
	Font     glyph.Service
	Bus      *events.Bus
}

// Pass is the per-frame routine. Process must not be called concurrently;
// Last may be called from any goroutine.
type Pass struct {
	host       device.Host
	frames     frame.Source
	registry   *slots.Registry
	store      nvm.Store
	surface    *device.Surface
	font       glyph.Service
	bus        *events.Bus
	sampler    *histogram.Sampler
	renderer   *overlay.Renderer
	controller *exposure.Controller
	logger     *slog.Logger

	mu        sync.RWMutex
	last      Result
	processed Result
}

// NewPass wires a pass.
func NewPass(d Deps) *Pass {
	font := d.Font
	if font == nil {
		font = glyph.Default()
	}
	return &Pass{
		host:       d.Host,
		frames:     d.Frames,
		registry:   d.Registry,
		store:      d.Store,
		surface:    d.Surface,
		font:       font,
		bus:        d.Bus,
		sampler:    histogram.NewSampler(),
		renderer:   overlay.NewRenderer(),
		controller: exposure.NewController(d.Store, d.Bus),
		logger:     logging.GetLogger("pipeline"),
		last:       Result{Region: -1, Buffer: -1},
		processed:  Result{Region: -1, Buffer: -1},
	}
}

// Controller returns the exposure controller driven by the pass.
func (p *Pass) Controller() *exposure.Controller {
	return p.controller
}

// Last returns the most recent result, skipped or not.
func (p *Pass) Last() Result {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.last
}

// LastProcessed returns the most recent result that was not skipped. Its
// histogram and zones are those of the last sampled frame.
func (p *Pass) LastProcessed() Result {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.processed
}

// Process runs one frame.
func (p *Pass) Process(ctx context.Context) Result {
	start := time.Now()
	res := Result{Frame: p.host.FrameNumber(), Region: -1, Buffer: -1, At: start}

	res.Reason = p.guard(ctx, res.Frame)
	if res.Reason == SkipNone {
		res.Phase = device.PhaseOf(p.host)
		if res.Phase == exposure.PhaseIdle {
			res.Reason = SkipIdle
		} else if p.host.Buttons().ConfirmHeld() {
			res.Reason = SkipConfirm
		}
	}
	if res.Skipped() {
		return p.finish(res, start)
	}

	region, bitmap := p.registry.Claim()
	res.Region = region
	metrics.RecordClaim(region)

	idx, buf := p.frames.Latest()
	res.Buffer = idx
	data := buf.Bytes()

	p.sampler.Sample(data, p.store.Get(nvm.EVBias), &res.Histogram)
	res.Zones = histogram.ComputeZones(&res.Histogram)

	p.renderer.Render(&res.Histogram, bitmap)

	if p.surface != nil {
		res.Panel = status.Compose(p.values(res.Phase))
		res.PanelDrawn = status.Render(&res.Panel, p.surface, p.font)
	}

	overlay.Composite(bitmap, data)

	res.Decision = p.controller.Step(exposure.StepInput{
		Sensor: p.host,
		Marker: p.host,
		Zones:  res.Zones,
		Total:  res.Histogram.Total,
		Phase:  res.Phase,
		Frame:  res.Frame,
	})

	return p.finish(res, start)
}

func (p *Pass) guard(ctx context.Context, frameNo int32) SkipReason {
	if ctx.Err() != nil {
		return SkipCancelled
	}
	if frameNo < StartupFrames {
		return SkipStartup
	}
	if uint32(frameNo)&FrameRangeMask != 0 {
		return SkipFrameRange
	}
	return SkipNone
}

// values gathers the panel readings. The live pair is read before this
// frame's exposure step, as the panel shows what produced the frame.
func (p *Pass) values(phase exposure.Phase) status.Values {
	return status.Values{
		Phase:         phase,
		EncodedFrames: p.host.EncodedFrames(),
		WhiteBalance:  p.host.WhiteBalance(),
		EVBias:        p.store.Get(nvm.EVBias),
		FPSMode:       p.store.Get(nvm.FPS),
		QP:            p.host.QP(),
		QPMin:         p.store.Get(nvm.QPMin),
		Exposure:      p.host.Exposure(),
		Power:         p.controller.Power(),
		Locked:        p.controller.Locked(),
		Window:        p.host.Window(),
		Nav:           p.store.Get(nvm.Nav),
	}
}

func (p *Pass) finish(res Result, start time.Time) Result {
	res.Duration = time.Since(start)

	ev := events.PassCompletedEvent{
		Frame:      res.Frame,
		Skipped:    res.Skipped(),
		SkipReason: string(res.Reason),
		Phase:      res.Phase.String(),
		Region:     res.Region,
		Buffer:     res.Buffer,
		Total:      res.Histogram.Total,
		Timestamp:  res.At.Format(time.RFC3339),
	}

	if res.Skipped() {
		metrics.RecordSkip(string(res.Reason))
		p.logger.Debug("Pass skipped", "frame", res.Frame, "reason", res.Reason)
	} else {
		d := res.Decision
		ev.Branch = string(d.Branch)
		metrics.RecordPass(res.Duration)
		metrics.RecordStep(string(d.Branch), d.Blocked, d.Reinit)
		metrics.SetExposure(d.Next.ISO, d.Next.Shutter, d.Next.Quantum(), d.Locked)
		recordZones(res.Zones)
	}

	if p.bus != nil {
		p.bus.Publish(ev)
	}

	p.mu.Lock()
	p.last = res
	if !res.Skipped() {
		p.processed = res
	}
	p.mu.Unlock()
	return res
}

func recordZones(z histogram.Zones) {
	metrics.SetZone("bottom", z.Bottom)
	metrics.SetZone("mid_a", z.MidA)
	metrics.SetZone("mid_b", z.MidB)
	metrics.SetZone("mid_c", z.MidC)
	metrics.SetZone("mid_d", z.MidD)
	metrics.SetZone("clipped", z.Clipped)
}
