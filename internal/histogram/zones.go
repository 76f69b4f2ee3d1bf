package histogram

// Zone boundaries over the 128 luma bins.
const (
	zoneMidA    = 42
	zoneMidB    = 64
	zoneMidC    = 85
	zoneMidD    = 96
	zoneClipped = 116
)

// Zones partitions the luma histogram into brightness bands.
type Zones struct {
	Bottom  uint32 `json:"bottom" doc:"Shadows, bins 0-41"`
	MidA    uint32 `json:"mid_a" doc:"Lower mids, bins 42-63"`
	MidB    uint32 `json:"mid_b" doc:"Mids, bins 64-84"`
	MidC    uint32 `json:"mid_c" doc:"Upper mids, bins 85-95"`
	MidD    uint32 `json:"mid_d" doc:"Highlights, bins 96-115"`
	Clipped uint32 `json:"clipped" doc:"Near clip, bins 116-127"`
}

// ComputeZones sums the luma bins of h into zones.
func ComputeZones(h *Histogram) Zones {
	var z Zones
	for i, n := range h.Luma {
		switch {
		case i < zoneMidA:
			z.Bottom += n
		case i < zoneMidB:
			z.MidA += n
		case i < zoneMidC:
			z.MidB += n
		case i < zoneMidD:
			z.MidC += n
		case i < zoneClipped:
			z.MidD += n
		default:
			z.Clipped += n
		}
	}
	return z
}

// Top is the population of the brightest stops.
func (z Zones) Top() uint32 {
	return z.MidC + z.MidD + z.Clipped
}

// TwoThirds is the population of the lower two thirds of the range.
func (z Zones) TwoThirds() uint32 {
	return z.Bottom + z.MidA + z.MidB
}

// Sum is the population across every zone.
func (z Zones) Sum() uint32 {
	return z.Bottom + z.MidA + z.MidB + z.MidC + z.MidD + z.Clipped
}
