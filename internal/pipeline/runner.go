package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/smazurov/histonode/internal/logging"
	"github.com/smazurov/histonode/internal/slots"
)

// DefaultFPS is the pass rate when none is configured.
const DefaultFPS = 30

// Ticker advances the host by one frame.
type Ticker interface {
	Tick()
}

// Capturer writes the next camera frame into the ring.
type Capturer interface {
	Capture() int
}

// RunnerOptions configures a Runner. Host, Camera and Reader are optional.
type RunnerOptions struct {
	FPS    int
	Host   Ticker
	Camera Capturer
	Reader *slots.Reader
}

// Runner drives a Pass at a fixed frame rate. Each frame the host ticks, the
// camera publishes a frame, the pass runs, then the display reader consumes
// the claimed overlay region.
type Runner struct {
	id       string
	pass     *Pass
	host     Ticker
	camera   Capturer
	reader   *slots.Reader
	interval time.Duration
	logger   *slog.Logger
}

// NewRunner creates a runner with a fresh run id.
func NewRunner(pass *Pass, opts RunnerOptions) *Runner {
	fps := opts.FPS
	if fps <= 0 {
		fps = DefaultFPS
	}
	id := uuid.NewString()
	return &Runner{
		id:       id,
		pass:     pass,
		host:     opts.Host,
		camera:   opts.Camera,
		reader:   opts.Reader,
		interval: time.Second / time.Duration(fps),
		logger:   logging.GetLogger("pipeline").With("run_id", id),
	}
}

// ID returns the run id.
func (r *Runner) ID() string {
	return r.id
}

// Interval returns the time between passes.
func (r *Runner) Interval() time.Duration {
	return r.interval
}

// Step runs one frame synchronously.
func (r *Runner) Step(ctx context.Context) Result {
	if r.host != nil {
		r.host.Tick()
	}
	if r.camera != nil {
		r.camera.Capture()
	}

	res := r.pass.Process(ctx)

	if r.reader != nil && !res.Skipped() {
		r.reader.Show()
		r.reader.Done()
	}
	return res
}

// Run steps until ctx is cancelled.
func (r *Runner) Run(ctx context.Context) error {
	r.logger.Info("Pipeline started", "interval", r.interval)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	var processed, skipped uint64
	for {
		select {
		case <-ctx.Done():
			r.logger.Info("Pipeline stopped", "processed", processed, "skipped", skipped)
			return nil
		case <-ticker.C:
			if res := r.Step(ctx); res.Skipped() {
				skipped++
			} else {
				processed++
			}
		}
	}
}
