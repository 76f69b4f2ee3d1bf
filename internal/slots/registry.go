// Package slots arbitrates the five scratch regions that carry the overlay
// bitmap from the per-frame writer to the display reader.
//
// Each region starts with a sentinel word. A sentinel equal to Magic marks the
// region claimed; any other value marks it free for the next writer. The
// writer never blocks and there is no lock around the bitmaps themselves: a
// reader racing the writer inside one region can observe a torn bitmap, but
// writes never leave the claimed region's slice.
package slots

import (
	"sync/atomic"
)

// Magic is the sentinel value of a claimed region.
const Magic uint32 = 0x12345678

// Count is the number of scratch regions.
const Count = 5

// DefaultRegion is used when every region is already claimed.
const DefaultRegion = 3

// Order is the priority in which free regions are claimed.
var Order = [Count]int{3, 4, 0, 1, 2}

// State is the decoded sentinel of a region.
type State int

// Region states.
const (
	Free State = iota
	Claimed
)

func (s State) String() string {
	if s == Claimed {
		return "claimed"
	}
	return "free"
}

type region struct {
	sentinel atomic.Uint32
	bitmap   []byte
}

// Registry owns the five regions.
type Registry struct {
	regions     [Count]region
	lastClaimed atomic.Int32
}

// NewRegistry allocates regions with bitmapSize bytes each. Sentinels start
// zeroed, as uninitialised memory would after power-up.
func NewRegistry(bitmapSize int) *Registry {
	r := &Registry{}
	for i := range r.regions {
		r.regions[i].bitmap = make([]byte, bitmapSize)
	}
	r.lastClaimed.Store(-1)
	return r
}

// Claim elects this frame's destination region and marks it claimed.
func (r *Registry) Claim() (int, []byte) {
	if !r.anyClaimed() {
		for i := range r.regions {
			r.regions[i].sentinel.Store(Magic)
		}
	}

	chosen := DefaultRegion
	for _, idx := range Order {
		if r.regions[idx].sentinel.Load() != Magic {
			r.regions[idx].sentinel.Store(Magic)
			chosen = idx
			break
		}
	}

	r.lastClaimed.Store(int32(chosen))
	return chosen, r.regions[chosen].bitmap
}

// Release marks region i free for reuse. Out-of-range indices are ignored.
func (r *Registry) Release(i int) {
	if i < 0 || i >= Count {
		return
	}
	r.regions[i].sentinel.Store(0)
}

// State reports the decoded sentinel of region i.
func (r *Registry) State(i int) State {
	if i < 0 || i >= Count {
		return Free
	}
	if r.regions[i].sentinel.Load() == Magic {
		return Claimed
	}
	return Free
}

// States snapshots every region's state.
func (r *Registry) States() [Count]State {
	var out [Count]State
	for i := range out {
		out[i] = r.State(i)
	}
	return out
}

// FreeCount returns how many regions are currently free.
func (r *Registry) FreeCount() int {
	n := 0
	for i := range r.regions {
		if r.State(i) == Free {
			n++
		}
	}
	return n
}

// LastClaimed returns the region most recently handed to the writer, or -1.
func (r *Registry) LastClaimed() int {
	return int(r.lastClaimed.Load())
}

// Bitmap returns region i's bitmap, or nil for an invalid index.
func (r *Registry) Bitmap(i int) []byte {
	if i < 0 || i >= Count {
		return nil
	}
	return r.regions[i].bitmap
}

func (r *Registry) anyClaimed() bool {
	for i := range r.regions {
		if r.regions[i].sentinel.Load() == Magic {
			return true
		}
	}
	return false
}

// Next returns the region after i in claim order.
func Next(i int) int {
	for k, idx := range Order {
		if idx == i {
			return Order[(k+1)%Count]
		}
	}
	return DefaultRegion
}
