package device

import (
	"sync"

	"github.com/smazurov/histonode/internal/exposure"
)

// SimConfig seeds a simulated host.
type SimConfig struct {
	Encode       bool
	QP           uint32
	WhiteBalance [3]uint32
	Window       [4]uint32
	Exposure     exposure.Pair
}

// DefaultSimConfig returns a preview-mode host with plausible status words.
func DefaultSimConfig() SimConfig {
	return SimConfig{
		QP:           25,
		WhiteBalance: [3]uint32{432, 256, 256},
		Window:       [4]uint32{1440, 1080, 512, 296},
	}
}

// Sim is an in-memory Host. Tick advances it by one frame.
type Sim struct {
	mu       sync.RWMutex
	frame    int32
	encoded  uint32
	marker   uint32
	buttons  ButtonState
	qp       uint32
	wb       [3]uint32
	window   [4]uint32
	pair     exposure.Pair
	encoding bool
}

// NewSim creates a simulated host.
func NewSim(cfg SimConfig) *Sim {
	s := &Sim{
		qp:       cfg.QP,
		wb:       cfg.WhiteBalance,
		window:   cfg.Window,
		pair:     cfg.Exposure,
		encoding: cfg.Encode,
	}
	if !cfg.Encode {
		s.marker = PreviewMarker
	}
	return s
}

// Tick advances the frame counter. While encoding the encoded-frame counter
// advances too; while previewing the host rewrites the preview marker.
func (s *Sim) Tick() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frame++
	if s.encoding {
		s.encoded++
	} else {
		s.marker = PreviewMarker
	}
}

// SetEncoding switches between preview and encode. Stopping an encode resets
// the encoded-frame counter.
func (s *Sim) SetEncoding(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.encoding = on
	if !on {
		s.encoded = 0
		s.marker = PreviewMarker
	}
}

// SetIdle leaves both preview and encode.
func (s *Sim) SetIdle() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.encoding = false
	s.encoded = 0
	s.marker = 0
}

// SetFrameNumber overrides the frame counter.
func (s *Sim) SetFrameNumber(n int32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frame = n
}

// SetButtons replaces the input snapshot.
func (s *Sim) SetButtons(b ButtonState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buttons = b
}

// SetQP sets the encoder's reported quantiser.
func (s *Sim) SetQP(qp uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.qp = qp
}

func (s *Sim) FrameNumber() int32 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.frame
}

func (s *Sim) EncodedFrames() uint32 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.encoded
}

func (s *Sim) ExposureMarker() uint32 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.marker
}

func (s *Sim) SetExposureMarker(v uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.marker = v
}

func (s *Sim) Buttons() ButtonState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.buttons
}

func (s *Sim) QP() uint32 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.qp
}

func (s *Sim) WhiteBalance() [3]uint32 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.wb
}

func (s *Sim) Window() [4]uint32 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.window
}

func (s *Sim) Exposure() exposure.Pair {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pair
}

func (s *Sim) SetExposure(p exposure.Pair) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pair = p
}
