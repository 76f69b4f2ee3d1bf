package device

import (
	"github.com/smazurov/histonode/internal/exposure"
	"github.com/smazurov/histonode/internal/frame"
)

// RefQuantum is the exposure quantum at which a scene of luminance 100
// renders the colour bars at nominal level.
const RefQuantum = 4000

// 75% SMPTE bars.
var barColors = [7][3]int{
	{192, 192, 192},
	{192, 192, 0},
	{0, 192, 192},
	{0, 192, 0},
	{192, 0, 192},
	{192, 0, 0},
	{0, 0, 192},
}

// Camera renders a colour-bar scene into the frame ring. Brightness follows
// the sensor's exposure quantum so the controller sees the effect of its own
// decisions.
type Camera struct {
	sink      frame.Sink
	sensor    exposure.Sensor
	luminance int
	next      int
}

// NewCamera creates a camera writing to sink. luminance scales the scene;
// 100 is nominal.
func NewCamera(sink frame.Sink, sensor exposure.Sensor, luminance int) *Camera {
	if luminance <= 0 {
		luminance = 100
	}
	return &Camera{sink: sink, sensor: sensor, luminance: luminance}
}

// Gain returns the scene gain in 1/1024 units for the sensor's current pair.
func (c *Camera) Gain() int64 {
	q := int64(c.sensor.Exposure().Quantum())
	if q < 0 {
		q = 0
	}
	return int64(c.luminance) * q * 1024 / (100 * RefQuantum)
}

// Capture writes the next ring buffer and marks it fresh.
func (c *Camera) Capture() int {
	idx := c.next
	c.next = (c.next + 1) % frame.RingSize

	luma, chroma := c.scanline()
	c.sink.Publish(idx, func(data []byte) {
		for y := range frame.Height {
			copy(data[y*frame.Pitch:], luma)
		}
		for y := range frame.Height / 2 {
			copy(data[frame.ChromaOffset+y*frame.Pitch:], chroma)
		}
	})
	return idx
}

// scanline renders one luma row and one interleaved chroma row; the bars are
// vertical so every row is identical.
func (c *Camera) scanline() ([]byte, []byte) {
	gain := c.Gain()
	luma := make([]byte, frame.Pitch)
	chroma := make([]byte, frame.Pitch)
	barWidth := frame.Width / len(barColors)

	for x := range frame.Width {
		bar := min(x/barWidth, len(barColors)-1)
		r, g, b := barColors[bar][0], barColors[bar][1], barColors[bar][2]

		y := (66*r + 129*g + 25*b + 128) >> 8
		luma[x] = clampByte(int64(y) * gain >> 10)

		if x&1 == 0 {
			chroma[x] = clampByte(int64((-38*r-74*g+112*b+128)>>8 + 128))
			chroma[x+1] = clampByte(int64((112*r-94*g-18*b+128)>>8 + 128))
		}
	}
	return luma, chroma
}

func clampByte(v int64) byte {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return byte(v)
}
