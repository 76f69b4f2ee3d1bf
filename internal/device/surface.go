package device

import "sync"

// LCD geometry.
const (
	SurfaceWidth  = 480
	SurfaceHeight = 864
	SurfacePitch  = 480
)

// ScreenHistogram is the first byte of the surface while the histogram screen
// is shown.
const ScreenHistogram = 7

// Surface is the 8-bit palettised LCD framebuffer.
type Surface struct {
	mu  sync.RWMutex
	pix []byte
}

// NewSurface allocates a blank surface.
func NewSurface() *Surface {
	return &Surface{pix: make([]byte, SurfacePitch*SurfaceHeight)}
}

// Fill sets every pixel to v. Filling with ScreenHistogram activates the
// histogram screen.
func (s *Surface) Fill(v byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.pix {
		s.pix[i] = v
	}
}

// Active reports whether the histogram screen is shown.
func (s *Surface) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pix[0] == ScreenHistogram
}

// Draw runs fn with exclusive access to the pixels.
func (s *Surface) Draw(fn func(pix []byte)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.pix)
}

// At returns the pixel at (x, y), or 0 outside the surface.
func (s *Surface) At(x, y int) byte {
	if x < 0 || x >= SurfaceWidth || y < 0 || y >= SurfaceHeight {
		return 0
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pix[y*SurfacePitch+x]
}

// Snapshot copies the surface.
func (s *Surface) Snapshot() []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]byte, len(s.pix))
	copy(out, s.pix)
	return out
}
