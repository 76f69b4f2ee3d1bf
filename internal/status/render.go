package status

import (
	"github.com/smazurov/histonode/internal/device"
	"github.com/smazurov/histonode/internal/glyph"
)

// Panel placement and palette on the LCD.
const (
	OriginX    = 764
	OriginY    = 360
	Ink        = 17
	Paper      = 7
	Advance    = 7
	LineHeight = 14
)

// Render draws g onto the surface rotated a quarter turn: panel x runs up the
// LCD rows from OriginX and panel y runs across the columns from OriginY.
// Nothing is drawn unless the histogram screen is active. It reports whether
// the panel was drawn.
func Render(g *Grid, surface *device.Surface, font glyph.Service) bool {
	drawn := false
	surface.Draw(func(pix []byte) {
		if pix[0] != device.ScreenHistogram {
			return
		}
		drawn = true

		for row := range Rows {
			for col := range Cols {
				bm := font.Glyph(g[row][col])
				x0 := OriginX + col*Advance
				y0 := OriginY + row*LineHeight
				for gy := range LineHeight {
					for gx := range Advance {
						v := byte(Paper)
						if bm.Set(gx, gy) {
							v = Ink
						}
						plot(pix, x0+gx, y0+gy, v)
					}
				}
			}
		}
	})
	return drawn
}

// PixelIndex maps panel coordinates to a surface offset. ok is false when the
// pixel falls outside the surface.
func PixelIndex(x, y int) (int, bool) {
	row := device.SurfaceHeight - x
	if row < 0 || row >= device.SurfaceHeight || y < 0 || y >= device.SurfaceWidth {
		return 0, false
	}
	return row*device.SurfacePitch + y, true
}

func plot(pix []byte, x, y int, v byte) {
	if i, ok := PixelIndex(x, y); ok {
		pix[i] = v
	}
}
