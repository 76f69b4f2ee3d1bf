package slots

import "sync"

// Reader is the display side of the handoff. It shows the most recently
// claimed region and, once finished with it, frees the region that follows in
// claim order, so the writer's next claim never lands on the region on screen.
type Reader struct {
	registry *Registry

	mu      sync.Mutex
	showing int
	frame   []byte
}

// NewReader creates a reader over registry.
func NewReader(registry *Registry) *Reader {
	return &Reader{registry: registry, showing: -1}
}

// Show snapshots the last claimed region for display. It returns -1 and nil
// before the first claim.
func (rd *Reader) Show() (int, []byte) {
	rd.mu.Lock()
	defer rd.mu.Unlock()

	idx := rd.registry.LastClaimed()
	if idx < 0 {
		return -1, nil
	}
	src := rd.registry.Bitmap(idx)
	if len(rd.frame) != len(src) {
		rd.frame = make([]byte, len(src))
	}
	copy(rd.frame, src)
	rd.showing = idx

	out := make([]byte, len(rd.frame))
	copy(out, rd.frame)
	return idx, out
}

// Done signals that the displayed region has been consumed.
func (rd *Reader) Done() {
	rd.mu.Lock()
	defer rd.mu.Unlock()

	if rd.showing < 0 {
		return
	}
	rd.registry.Release(Next(rd.showing))
}

// Showing returns the region currently on display, or -1.
func (rd *Reader) Showing() int {
	rd.mu.Lock()
	defer rd.mu.Unlock()
	return rd.showing
}

// Snapshot returns a copy of the bitmap last passed through Show.
func (rd *Reader) Snapshot() (int, []byte) {
	rd.mu.Lock()
	defer rd.mu.Unlock()
	if rd.showing < 0 {
		return -1, nil
	}
	out := make([]byte, len(rd.frame))
	copy(out, rd.frame)
	return rd.showing, out
}
