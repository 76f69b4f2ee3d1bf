package frame

import (
	"encoding/binary"
	"sync"
)

// RingSize is the number of consecutive frame slots the capture pipeline keeps.
const RingSize = 6

// Source hands out the most recently written frame.
type Source interface {
	Latest() (int, *Buffer)
}

// Sink accepts frames from the camera.
type Sink interface {
	Publish(index int, fill func([]byte))
}

// Ring is the six-slot frame ring. The leading 32-bit word of every buffer is
// its freshness sentinel: non-zero once the producer has written the frame,
// zeroed again by the consumer's scan.
type Ring struct {
	mu      sync.Mutex
	buffers [RingSize]*Buffer
}

// NewRing allocates the ring.
func NewRing() *Ring {
	r := &Ring{}
	for i := range r.buffers {
		r.buffers[i] = NewBuffer()
	}
	return r
}

// Buffer returns slot i without touching its sentinel.
func (r *Ring) Buffer(i int) *Buffer {
	return r.buffers[i]
}

// Latest scans every slot, picks the last one carrying a non-zero sentinel and
// clears all sentinels so the producer can mark the next frame. Slot 0 is
// returned when nothing was fresh.
func (r *Ring) Latest() (int, *Buffer) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current := 0
	for i, b := range r.buffers {
		if Sentinel(b.data) != 0 {
			current = i
		}
		clearSentinel(b.data)
	}
	return current, r.buffers[current]
}

// Publish lets the producer write slot index and marks it fresh.
func (r *Ring) Publish(index int, fill func([]byte)) {
	if index < 0 || index >= RingSize {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	b := r.buffers[index]
	fill(b.data)
	if Sentinel(b.data) == 0 {
		b.data[0] = 1
	}
}

// Sentinel reads the leading word of a frame buffer.
func Sentinel(data []byte) uint32 {
	if len(data) < 4 {
		return 0
	}
	return binary.LittleEndian.Uint32(data)
}

func clearSentinel(data []byte) {
	if len(data) < 4 {
		return
	}
	binary.LittleEndian.PutUint32(data, 0)
}
