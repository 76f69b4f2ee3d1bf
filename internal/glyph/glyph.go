// Package glyph supplies the bitmap font used to draw the status panel.
package glyph

import (
	"image"
	"sync"

	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Bitmap is one rasterised character. Each row holds Width bits, most
// significant bit leftmost.
type Bitmap struct {
	Width  int
	Height int
	Rows   []uint8
}

// Set reports whether pixel (x, y) of the glyph is inked.
func (b Bitmap) Set(x, y int) bool {
	if x < 0 || x >= b.Width || y < 0 || y >= len(b.Rows) {
		return false
	}
	return b.Rows[y]&(0x80>>uint(x)) != 0
}

// Service maps a character code to its bitmap.
type Service interface {
	Glyph(ch byte) Bitmap
}

// Table is a Service with every code point rasterised up front.
type Table struct {
	glyphs [256]Bitmap
}

// NewTable rasterises the printable characters of face. Control codes and
// characters missing from the face render blank.
func NewTable(face *basicfont.Face) *Table {
	t := &Table{}
	height := face.Ascent + face.Descent
	width := min(face.Width, 8)
	dot := fixed.P(0, face.Ascent)

	for c := range t.glyphs {
		bm := Bitmap{Width: width, Height: height, Rows: make([]uint8, height)}
		t.glyphs[c] = bm
		if c < 0x20 || c == 0x7f {
			continue
		}

		dr, mask, maskp, _, ok := face.Glyph(dot, rune(c))
		if !ok {
			continue
		}
		rasterise(bm, dr, mask, maskp)
	}
	return t
}

func rasterise(bm Bitmap, dr image.Rectangle, mask image.Image, maskp image.Point) {
	for y := 0; y < dr.Dy() && y < bm.Height; y++ {
		for x := 0; x < dr.Dx() && x < bm.Width; x++ {
			_, _, _, a := mask.At(maskp.X+x, maskp.Y+y).RGBA()
			if a > 0x7fff {
				bm.Rows[dr.Min.Y+y] |= 0x80 >> uint(dr.Min.X+x)
			}
		}
	}
}

// Glyph returns the bitmap of ch.
func (t *Table) Glyph(ch byte) Bitmap {
	return t.glyphs[ch]
}

var (
	defaultOnce  sync.Once
	defaultTable *Table
)

// Default returns the shared 7x13 table.
func Default() *Table {
	defaultOnce.Do(func() {
		defaultTable = NewTable(basicfont.Face7x13)
	})
	return defaultTable
}
