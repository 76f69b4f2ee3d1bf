package histogram

import "github.com/smazurov/histonode/internal/frame"

// Fixed-point YUV to RGB coefficients, scaled by 1024.
const (
	coefRV = 1616
	coefGU = 192
	coefGV = 479
	coefBU = 1899
)

// EVBiasStep is the luma offset applied per step of EV bias.
const EVBiasStep = 10

// Sampler walks the decimated grid of a frame and accumulates histograms.
type Sampler struct{}

// NewSampler returns a sampler for the capture geometry in package frame.
func NewSampler() *Sampler {
	return &Sampler{}
}

// Sample rebuilds h from the frame in data. Luma is offset by evBias*10 before
// binning. Grid points that fall outside a short buffer are skipped.
func (s *Sampler) Sample(data []byte, evBias int32, h *Histogram) {
	h.Reset()
	bias := int(evBias) * EVBiasStep

	for y := frame.EdgeY; y < frame.Height-frame.EdgeY; y += frame.SampleStep {
		for x := frame.EdgeLeft; x < frame.Width-frame.EdgeRight; x += frame.SampleStep {
			li := y*frame.Pitch + x
			ci := frame.ChromaOffset + (y>>1)*frame.Pitch + (x &^ 1)
			if li >= len(data) || ci+1 >= len(data) {
				continue
			}

			yy, r, g, b := ToRGB(int(data[li]), int(data[ci]), int(data[ci+1]))
			yy = ClampByte(yy - bias)

			h.Luma[yy>>1]++
			h.Red[r>>1]++
			h.Green[g>>1]++
			h.Blue[b>>1]++
			h.Total++
		}
	}
}

// ToRGB converts one luma sample and its biased chroma pair to clamped RGB.
// The luma value is returned unchanged.
func ToRGB(y, u, v int) (yy, r, g, b int) {
	u -= 128
	v -= 128
	r = y + (coefRV * v >> 10)
	g = y - (coefGU * u >> 10) - (coefGV * v >> 10)
	b = y + (coefBU * u >> 10)
	return y, ClampByte(r), ClampByte(g), ClampByte(b)
}

// ClampByte bounds v to [0,255].
func ClampByte(v int) int {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}
