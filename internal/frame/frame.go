// Package frame describes the capture pipeline's planar YUV frame buffers and
// the six-slot ring the camera writes them into.
package frame

// Luma plane geometry. Chroma is interleaved U,V at half vertical resolution
// with the same pitch, starting ChromaOffset bytes into the buffer.
const (
	Width        = 656
	Pitch        = 656
	Height       = 480
	ChromaOffset = Width*Height + 0x18600
	Size         = 0x97e00
)

// Sampling interior. The margins exclude the optical and mechanical black
// borders of the sensor.
const (
	EdgeY      = 48
	EdgeLeft   = 190
	EdgeRight  = 32
	SampleStep = 4
)

// GridRows and GridCols are the number of sampled rows and columns.
const (
	GridRows = (Height - 2*EdgeY + SampleStep - 1) / SampleStep
	GridCols = (Width - EdgeRight - EdgeLeft + SampleStep - 1) / SampleStep
)

// GridPoints is the number of pixels one sampling pass visits.
func GridPoints() int {
	return GridRows * GridCols
}

// Buffer is one frame of the ring.
type Buffer struct {
	data []byte
}

// NewBuffer allocates a zeroed frame buffer.
func NewBuffer() *Buffer {
	return &Buffer{data: make([]byte, Size)}
}

// Bytes returns the raw frame memory.
func (b *Buffer) Bytes() []byte {
	return b.data
}

// Luma returns the luma plane.
func (b *Buffer) Luma() []byte {
	return b.data[:Pitch*Height]
}

// Chroma returns the interleaved UV plane.
func (b *Buffer) Chroma() []byte {
	return b.data[ChromaOffset : ChromaOffset+Pitch*Height/2]
}

// LumaAt returns the luma sample at (x, y).
func (b *Buffer) LumaAt(x, y int) byte {
	return b.data[y*Pitch+x]
}

// ChromaAt returns the U and V samples shared by the pixel at (x, y).
func (b *Buffer) ChromaAt(x, y int) (u, v byte) {
	i := ChromaOffset + (y>>1)*Pitch + (x &^ 1)
	return b.data[i], b.data[i+1]
}
