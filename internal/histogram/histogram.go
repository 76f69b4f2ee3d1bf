// Package histogram builds the per-frame brightness histograms that drive the
// overlay and auto-exposure.
package histogram

// Bins is the number of buckets per channel. Channel values are halved from
// 0..255 into 0..127.
const Bins = 128

// Channel selects one of the four histograms.
type Channel int

// Histogram channels.
const (
	Luma Channel = iota
	Red
	Green
	Blue
)

// String returns the channel name.
func (c Channel) String() string {
	switch c {
	case Luma:
		return "luma"
	case Red:
		return "red"
	case Green:
		return "green"
	case Blue:
		return "blue"
	default:
		return "unknown"
	}
}

// Channels lists every channel in storage order.
var Channels = [...]Channel{Luma, Red, Green, Blue}

// Histogram holds the four 128-bin histograms of one frame.
type Histogram struct {
	Luma  [Bins]uint32
	Red   [Bins]uint32
	Green [Bins]uint32
	Blue  [Bins]uint32
	// Total is the number of pixels sampled.
	Total uint32
}

// Reset zeroes every bin and the sample count.
func (h *Histogram) Reset() {
	*h = Histogram{}
}

// Bins returns the bins of channel c.
func (h *Histogram) Bins(c Channel) *[Bins]uint32 {
	switch c {
	case Red:
		return &h.Red
	case Green:
		return &h.Green
	case Blue:
		return &h.Blue
	default:
		return &h.Luma
	}
}

// Sum returns the total count of channel c.
func (h *Histogram) Sum(c Channel) uint32 {
	var sum uint32
	for _, n := range h.Bins(c) {
		sum += n
	}
	return sum
}

// Peak returns the largest bin count of channel c.
func (h *Histogram) Peak(c Channel) uint32 {
	var peak uint32
	for _, n := range h.Bins(c) {
		if n > peak {
			peak = n
		}
	}
	return peak
}
