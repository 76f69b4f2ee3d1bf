package overlay

import (
	"testing"

	"github.com/smazurov/histonode/internal/frame"
	"github.com/smazurov/histonode/internal/histogram"
)

func TestDrawBorder(t *testing.T) {
	panel := make([]byte, PanelSize)
	DrawBorder(panel)

	tests := []struct {
		name string
		x, y int
		want byte
	}{
		{"left edge", 0, 30, Edge},
		{"left edge second column", 1, 30, Edge},
		{"left inner", 2, 30, Inner},
		{"left inner second column", 3, 30, Inner},
		{"right edge", 135, 30, Edge},
		{"right edge second column", 134, 30, Edge},
		{"right inner", 133, 30, Inner},
		{"right inner second column", 132, 30, Inner},
		{"top edge", 60, 0, Edge},
		{"top edge second row", 60, 1, Edge},
		{"top inner", 60, 2, Inner},
		{"top inner second row", 60, 3, Inner},
		{"bottom edge", 60, 71, Edge},
		{"bottom edge second row", 60, 70, Edge},
		{"bottom inner", 60, 69, Inner},
		{"bottom inner second row", 60, 68, Inner},
		{"column 0 keeps edge in inner rows", 0, 2, Edge},
		{"column 1 takes the row value", 1, 2, Inner},
		{"column 2 takes the top edge", 2, 0, Edge},
		{"column 135 keeps edge in inner rows", 135, 68, Edge},
		{"interior untouched", 60, 30, 0},
	}

	for _, tt := range tests {
		if got := panel[tt.y*PanelPitch+tt.x]; got != tt.want {
			t.Errorf("%s: pixel (%d, %d) = %d, want %d", tt.name, tt.x, tt.y, got, tt.want)
		}
	}
}

func TestBarTop(t *testing.T) {
	den := Denominator(1000)
	if den != 109 {
		t.Fatalf("Denominator(1000) = %d, want 109", den)
	}

	tests := []struct {
		name  string
		count uint32
		want  int
	}{
		{"empty bin", 0, 64},
		{"equal to peak", 1000, 12},
		{"one and a half peaks", 1500, 0},
		{"far above peak", 100000, 0},
	}
	for _, tt := range tests {
		if got := BarTop(tt.count, den); got != tt.want {
			t.Errorf("%s: BarTop(%d) = %d, want %d", tt.name, tt.count, got, tt.want)
		}
	}
}

func TestDenominatorNeverZero(t *testing.T) {
	if got := Denominator(0); got != 1 {
		t.Errorf("Denominator(0) = %d, want 1", got)
	}
}

func TestBarTopSaturatesLargeCounts(t *testing.T) {
	if got := BarTop(^uint32(0), 1); got != 0 {
		t.Errorf("BarTop(max) = %d, want 0", got)
	}
}

func column(bitmap []byte, panel, bin int) []byte {
	out := make([]byte, barRows)
	for y := range barRows {
		out[y] = bitmap[panel*PanelSize+(y+margin)*PanelPitch+margin+bin]
	}
	return out
}

func TestRenderBars(t *testing.T) {
	var h histogram.Histogram
	h.Luma[10] = 1000
	h.Red[5] = 1000
	h.Green[7] = 1500
	h.Total = 1000

	bitmap := make([]byte, BitmapSize)
	if !NewRenderer().Render(&h, bitmap) {
		t.Fatal("Render rejected a full-size bitmap")
	}

	red := column(bitmap, 0, 5)
	for y, v := range red {
		want := byte(Background)
		if y > 12 {
			want = Foreground
		}
		if v != want {
			t.Fatalf("red bin 5 row %d = %d, want %d", y, v, want)
		}
	}

	green := column(bitmap, 1, 7)
	if green[0] != Background || green[1] != Foreground || green[63] != Foreground {
		t.Errorf("green full-height bar = %v", green)
	}

	for y, v := range column(bitmap, 2, 7) {
		if v != Background {
			t.Fatalf("empty blue bin row %d = %d, want background", y, v)
		}
	}
}

func TestRenderEmptyHistogram(t *testing.T) {
	var h histogram.Histogram
	bitmap := make([]byte, BitmapSize)
	NewRenderer().Render(&h, bitmap)

	for p := range Panels {
		for x := range histogram.Bins {
			for y, v := range column(bitmap, p, x) {
				if v != Background {
					t.Fatalf("panel %d bin %d row %d = %d, want background", p, x, y, v)
				}
			}
		}
	}
}

func TestRenderShortBitmap(t *testing.T) {
	var h histogram.Histogram
	if NewRenderer().Render(&h, make([]byte, BitmapSize-1)) {
		t.Error("Render accepted a short bitmap")
	}
}

func uniformFrame(y, u, v byte) []byte {
	data := make([]byte, frame.Size)
	for i := range frame.Pitch * frame.Height {
		data[i] = y
	}
	for i := 0; i < frame.Pitch*frame.Height/2; i += 2 {
		data[frame.ChromaOffset+i] = u
		data[frame.ChromaOffset+i+1] = v
	}
	return data
}

func TestCompositeBlack(t *testing.T) {
	data := uniformFrame(100, 128, 128)
	Composite(make([]byte, BitmapSize), data)

	if got := data[DestRow*frame.Pitch+DestCol]; got != 50 {
		t.Errorf("blended luma = %d, want 50", got)
	}
	if got := data[(DestRow+PanelHeight-1)*frame.Pitch+DestCol+PanelWidth-1]; got != 50 {
		t.Errorf("last blended luma = %d, want 50", got)
	}
	if got := data[(DestRow-1)*frame.Pitch+DestCol]; got != 100 {
		t.Errorf("row above the overlay = %d, want 100", got)
	}
	if got := data[DestRow*frame.Pitch+DestCol+PanelWidth]; got != 100 {
		t.Errorf("column right of the overlay = %d, want 100", got)
	}
	if got := data[DestRow*frame.Pitch+DestCol-1]; got != 100 {
		t.Errorf("column left of the overlay = %d, want 100", got)
	}
	ci := frame.ChromaOffset + (DestRow/2)*frame.Pitch + DestCol
	if data[ci] != 128 || data[ci+1] != 128 {
		t.Errorf("chroma = (%d, %d), want neutral", data[ci], data[ci+1])
	}
}

func TestCompositeWhite(t *testing.T) {
	data := uniformFrame(100, 128, 128)
	bitmap := make([]byte, BitmapSize)
	for i := range bitmap {
		bitmap[i] = Foreground
	}
	Composite(bitmap, data)

	if got := data[(DestRow+5)*frame.Pitch+DestCol+9]; got != 113 {
		t.Errorf("blended luma = %d, want 113", got)
	}
	ci := frame.ChromaOffset + ((DestRow+5)/2)*frame.Pitch + DestCol + 8
	if data[ci] != 128 || data[ci+1] != 128 {
		t.Errorf("chroma = (%d, %d), want neutral for grey overlay", data[ci], data[ci+1])
	}
}

func TestCompositeRedTintsChroma(t *testing.T) {
	data := uniformFrame(100, 128, 128)
	bitmap := make([]byte, BitmapSize)
	for i := range PanelSize {
		bitmap[i] = Foreground
	}
	Composite(bitmap, data)

	// hv = 64 for pure red. The chroma row is shared by two luma rows and
	// blended by both: 128 -> 160 -> 176.
	ci := frame.ChromaOffset + (DestRow/2)*frame.Pitch + DestCol
	if got := data[ci+1]; got != 176 {
		t.Errorf("V = %d, want 176", got)
	}
	if got := data[ci]; got >= 128 {
		t.Errorf("U = %d, want below neutral for red", got)
	}
}

func TestCompositeShortFrame(t *testing.T) {
	data := make([]byte, DestRow*frame.Pitch)
	Composite(make([]byte, BitmapSize), data)
}
