package dump

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/smazurov/histonode/internal/device"
	"github.com/smazurov/histonode/internal/exposure"
	"github.com/smazurov/histonode/internal/frame"
	"github.com/smazurov/histonode/internal/nvm"
	"github.com/smazurov/histonode/internal/overlay"
	"github.com/smazurov/histonode/internal/pipeline"
	"github.com/smazurov/histonode/internal/slots"
)

// ReplayOptions configure Replay.
type ReplayOptions struct {
	// Offset is skipped before the first frame.
	Offset int64
	// StartFrame seeds the host frame counter; the first replayed frame
	// carries StartFrame+1.
	StartFrame int32
	Encode     bool
	Exposure   exposure.Pair
	// Store defaults to a fresh in-memory store.
	Store nvm.Store
	// LumaPrefix, when set, writes the composited luma plane of every
	// processed frame to <prefix>NNNN.pgm.
	LumaPrefix string
}

// ReplayFrame is the outcome of one replayed frame.
type ReplayFrame struct {
	Index  int
	Result pipeline.Result
	Image  string
}

// Replay feeds every whole frame.Size frame of r through the per-frame pass
// against a simulated host and calls fn with each result. It returns the
// number of frames replayed; a trailing partial frame is ignored.
func Replay(ctx context.Context, r io.Reader, opts ReplayOptions, fn func(ReplayFrame) error) (int, error) {
	frames, err := NewFrames(r, frame.Size, opts.Offset)
	if err != nil {
		return 0, err
	}

	cfg := device.DefaultSimConfig()
	cfg.Encode = opts.Encode
	cfg.Exposure = opts.Exposure
	host := device.NewSim(cfg)
	host.SetFrameNumber(opts.StartFrame)

	store := opts.Store
	if store == nil {
		store = nvm.NewMemory()
	}

	ring := frame.NewRing()
	registry := slots.NewRegistry(overlay.BitmapSize)
	reader := slots.NewReader(registry)
	surface := device.NewSurface()
	surface.Fill(device.ScreenHistogram)

	pass := pipeline.NewPass(pipeline.Deps{
		Host:     host,
		Frames:   ring,
		Registry: registry,
		Store:    store,
		Surface:  surface,
	})

	buf := make([]byte, frame.Size)
	count := 0
	for {
		if err := ctx.Err(); err != nil {
			return count, err
		}

		_, err := frames.Next(buf)
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return count, nil
		}
		if err != nil {
			return count, fmt.Errorf("failed to read frame %d: %w", count+1, err)
		}
		count++

		host.Tick()
		ring.Publish((count-1)%frame.RingSize, func(data []byte) {
			copy(data, buf)
		})

		res := pass.Process(ctx)
		out := ReplayFrame{Index: count, Result: res}

		if !res.Skipped() {
			reader.Show()
			reader.Done()

			if opts.LumaPrefix != "" {
				out.Image = fmt.Sprintf("%s%04d.pgm", opts.LumaPrefix, count)
				luma := ring.Buffer(res.Buffer).Luma()
				if err := WritePGMFile(out.Image, frame.Width, frame.Height, luma); err != nil {
					return count, err
				}
			}
		}

		if fn != nil {
			if err := fn(out); err != nil {
				return count, err
			}
		}
	}
}
