// Package overlay renders the R, G and B histograms as bar charts into an
// 8-bit palette bitmap and blends that bitmap into the live YUV frame.
package overlay

import (
	"github.com/smazurov/histonode/internal/frame"
	"github.com/smazurov/histonode/internal/histogram"
)

// Panel geometry. Each channel gets one panel: 128 bars of up to 64 rows
// inside a 4 pixel frame.
const (
	PanelWidth  = histogram.Bins + 8
	PanelPitch  = PanelWidth
	PanelHeight = 64 + 8
	PanelSize   = PanelPitch * PanelHeight
	Panels      = 3
	BitmapSize  = Panels * PanelSize

	barRows = 64
	margin  = 4
)

// Palette entries.
const (
	Edge       = 63
	Inner      = 1
	Foreground = 127
	Background = 1
)

// panelChannels maps panel order to histogram channels.
var panelChannels = [Panels]histogram.Channel{histogram.Red, histogram.Green, histogram.Blue}

// Renderer draws the overlay bitmap.
type Renderer struct{}

// NewRenderer returns a renderer.
func NewRenderer() *Renderer {
	return &Renderer{}
}

// Render draws borders and bars for all three panels into bitmap. It reports
// false and draws nothing when bitmap is shorter than BitmapSize.
func (r *Renderer) Render(h *histogram.Histogram, bitmap []byte) bool {
	if len(bitmap) < BitmapSize {
		return false
	}
	for p := range Panels {
		DrawBorder(bitmap[p*PanelSize : (p+1)*PanelSize])
	}
	DrawBars(h, bitmap)
	return true
}

// DrawBorder frames one panel: two edge columns and two inner columns on each
// side, then two edge rows and two inner rows top and bottom.
func DrawBorder(panel []byte) {
	for y := range PanelHeight {
		row := panel[y*PanelPitch:]
		row[0], row[1] = Edge, Edge
		row[2], row[3] = Inner, Inner
		row[PanelWidth-1], row[PanelWidth-2] = Edge, Edge
		row[PanelWidth-3], row[PanelWidth-4] = Inner, Inner
	}
	for x := 1; x < PanelWidth-1; x++ {
		panel[0*PanelPitch+x], panel[1*PanelPitch+x] = Edge, Edge
		panel[2*PanelPitch+x], panel[3*PanelPitch+x] = Inner, Inner
		panel[(PanelHeight-1)*PanelPitch+x], panel[(PanelHeight-2)*PanelPitch+x] = Edge, Edge
		panel[(PanelHeight-3)*PanelPitch+x], panel[(PanelHeight-4)*PanelPitch+x] = Inner, Inner
	}
}

// Denominator is the bar scale for a luma peak: ISqrt(peak*12), never zero.
func Denominator(lumaPeak uint32) uint32 {
	den := histogram.ISqrt(lumaPeak * 12)
	if den == 0 {
		return 1
	}
	return den
}

// maxShiftable is the largest count whose <<15 fits in 32 bits.
const maxShiftable = 1<<17 - 1

// BarTop returns the row above which a bar of count is drawn. Rows
// 63..BarTop+1 are foreground; 0 means the tallest possible bar.
func BarTop(count, den uint32) int {
	count = min(count, maxShiftable)
	top := barRows - int(histogram.ISqrt(count<<15)/den)
	return max(top, 0)
}

// DrawBars draws the R, G and B bars, scaled against the luma peak.
func DrawBars(h *histogram.Histogram, bitmap []byte) {
	den := Denominator(h.Peak(histogram.Luma))

	for p, c := range panelChannels {
		panel := bitmap[p*PanelSize:]
		for x, count := range h.Bins(c) {
			top := BarTop(count, den)
			col := margin + x
			y := barRows - 1
			for ; y > top; y-- {
				panel[(y+margin)*PanelPitch+col] = Foreground
			}
			for ; y >= 0; y-- {
				panel[(y+margin)*PanelPitch+col] = Background
			}
		}
	}
}

// Destination of the overlay in the frame.
const (
	DestRow = 380
	DestCol = 16
)

// Composite blends the bitmap into the frame at (DestCol, DestRow). Luma is
// averaged with the overlay; each chroma pair is averaged with the mean
// overlay chroma of its two pixels. Rows past the end of data are skipped.
func Composite(bitmap, data []byte) {
	if len(bitmap) < BitmapSize {
		return
	}
	for y := range PanelHeight {
		li := (DestRow+y)*frame.Pitch + DestCol
		ci := frame.ChromaOffset + (DestRow>>1+y>>1)*frame.Pitch + DestCol
		if li+PanelPitch > len(data) || ci+PanelPitch > len(data) {
			continue
		}
		dsty := data[li : li+PanelPitch]
		dstc := data[ci : ci+PanelPitch]
		src := bitmap[y*PanelPitch:]

		for x := 0; x < PanelPitch; x += 2 {
			hy1, hu1, hv1 := paletteYUV(src, x)
			hy2, hu2, hv2 := paletteYUV(src, x+1)

			u := int(dstc[x]) - 128
			v := int(dstc[x+1]) - 128

			dsty[x] = clamp((hy1 + int(dsty[x])) >> 1)
			dsty[x+1] = clamp((hy2 + int(dsty[x+1])) >> 1)
			dstc[x] = clamp((u+u+hu1+hu2)>>2 + 128)
			dstc[x+1] = clamp((v+v+hv1+hv2)>>2 + 128)
		}
	}
}

// paletteYUV converts the palette triple at offset x of the three panels to
// YUV with zero-centred chroma.
func paletteYUV(src []byte, x int) (y, u, v int) {
	r := int(src[x])
	g := int(src[PanelSize+x])
	b := int(src[2*PanelSize+x])
	y = (218*r + 732*g + 74*b + 512) >> 10
	u = (-117*r - 395*g + 512*b + 512) >> 10
	v = (512*r - 465*g - 47*b + 512) >> 10
	return y, u, v
}

func clamp(v int) byte {
	return byte(histogram.ClampByte(v))
}
