package histogram

import (
	"math"
	"math/rand"
	"testing"

	"github.com/smazurov/histonode/internal/frame"
)

// fillFrame paints the whole frame with one luma value and one chroma pair.
func fillFrame(y, u, v byte) []byte {
	buf := frame.NewBuffer().Bytes()
	for i := range frame.Pitch * frame.Height {
		buf[i] = y
	}
	chroma := buf[frame.ChromaOffset : frame.ChromaOffset+frame.Pitch*frame.Height/2]
	for i := 0; i < len(chroma); i += 2 {
		chroma[i] = u
		chroma[i+1] = v
	}
	return buf
}

func TestToRGB(t *testing.T) {
	tests := []struct {
		name    string
		y, u, v int
		r, g, b int
	}{
		{"neutral grey", 128, 128, 128, 128, 128, 128},
		{"black", 0, 128, 128, 0, 0, 0},
		{"mixed chroma uses arithmetic shifts", 100, 178, 98, 52, 106, 192},
		{"red clamps high", 250, 128, 255, 255, 191, 250},
		{"blue clamps low", 10, 0, 128, 10, 34, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			yy, r, g, b := ToRGB(tt.y, tt.u, tt.v)
			if yy != tt.y {
				t.Errorf("luma = %d, want %d", yy, tt.y)
			}
			if r != tt.r || g != tt.g || b != tt.b {
				t.Errorf("ToRGB(%d,%d,%d) = (%d,%d,%d), want (%d,%d,%d)",
					tt.y, tt.u, tt.v, r, g, b, tt.r, tt.g, tt.b)
			}
		})
	}
}

func TestClampByte(t *testing.T) {
	for in, want := range map[int]int{-500: 0, -1: 0, 0: 0, 17: 17, 255: 255, 256: 255, 9000: 255} {
		if got := ClampByte(in); got != want {
			t.Errorf("ClampByte(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestSampleUniformFrame(t *testing.T) {
	var h Histogram
	NewSampler().Sample(fillFrame(128, 128, 128), 0, &h)

	want := uint32(frame.GridPoints())
	if h.Total != want {
		t.Fatalf("Total = %d, want %d", h.Total, want)
	}
	for _, c := range Channels {
		if got := h.Bins(c)[64]; got != want {
			t.Errorf("%s bin 64 = %d, want %d", c, got, want)
		}
	}
}

func TestSampleEVBias(t *testing.T) {
	tests := []struct {
		bias    int32
		wantBin int
	}{
		{0, 50},
		{2, 40},
		{-3, 65},
		{20, 0},
		{-20, 127},
	}

	for _, tt := range tests {
		var h Histogram
		NewSampler().Sample(fillFrame(100, 128, 128), tt.bias, &h)
		if h.Luma[tt.wantBin] != h.Total {
			t.Errorf("bias %d: luma bin %d = %d, want all %d samples", tt.bias, tt.wantBin, h.Luma[tt.wantBin], h.Total)
		}
		// Colour channels are not biased.
		if h.Red[50] != h.Total {
			t.Errorf("bias %d: red channel moved", tt.bias)
		}
	}
}

func TestSampleChannelSumsMatchTotal(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	buf := frame.NewBuffer().Bytes()
	rng.Read(buf)

	var h Histogram
	NewSampler().Sample(buf, 1, &h)

	sum := h.Sum(Luma) + h.Sum(Red) + h.Sum(Green) + h.Sum(Blue)
	if sum != 4*h.Total {
		t.Errorf("channel sums = %d, want 4*Total = %d", sum, 4*h.Total)
	}
	if h.Total != uint32(frame.GridPoints()) {
		t.Errorf("Total = %d, want %d", h.Total, frame.GridPoints())
	}
}

func TestSampleRebuildsFromScratch(t *testing.T) {
	var h Histogram
	h.Luma[3] = 99
	h.Total = 99
	NewSampler().Sample(fillFrame(20, 128, 128), 0, &h)
	if h.Luma[3] != 0 {
		t.Error("previous contents were not zeroed")
	}
}

func TestSampleShortBuffer(t *testing.T) {
	var h Histogram
	NewSampler().Sample(make([]byte, 1000), 0, &h)
	if h.Total != 0 {
		t.Errorf("Total = %d for a buffer with no chroma, want 0", h.Total)
	}
}

func TestZonesCoverAllSamples(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for range 50 {
		var h Histogram
		for i := range h.Luma {
			n := uint32(rng.Intn(300))
			h.Luma[i] = n
			h.Total += n
		}
		z := ComputeZones(&h)
		if z.Sum() != h.Total {
			t.Fatalf("zone sum %d != total %d", z.Sum(), h.Total)
		}
		if z.Top()+z.TwoThirds() != h.Total {
			t.Fatalf("Top+TwoThirds = %d, want %d", z.Top()+z.TwoThirds(), h.Total)
		}
	}
}

func TestZoneBoundaries(t *testing.T) {
	tests := []struct {
		bin  int
		zone func(Zones) uint32
		name string
	}{
		{0, func(z Zones) uint32 { return z.Bottom }, "bottom low edge"},
		{41, func(z Zones) uint32 { return z.Bottom }, "bottom high edge"},
		{42, func(z Zones) uint32 { return z.MidA }, "midA"},
		{63, func(z Zones) uint32 { return z.MidA }, "midA high edge"},
		{64, func(z Zones) uint32 { return z.MidB }, "midB"},
		{85, func(z Zones) uint32 { return z.MidC }, "midC"},
		{96, func(z Zones) uint32 { return z.MidD }, "midD"},
		{115, func(z Zones) uint32 { return z.MidD }, "midD high edge"},
		{116, func(z Zones) uint32 { return z.Clipped }, "clipped"},
		{127, func(z Zones) uint32 { return z.Clipped }, "clipped high edge"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var h Histogram
			h.Luma[tt.bin] = 5
			if got := tt.zone(ComputeZones(&h)); got != 5 {
				t.Errorf("bin %d landed in the wrong zone", tt.bin)
			}
		})
	}
}

func TestISqrt(t *testing.T) {
	check := func(n uint32) {
		r := uint64(ISqrt(n))
		if r*r > uint64(n) || (r+1)*(r+1) <= uint64(n) {
			t.Fatalf("ISqrt(%d) = %d violates floor-sqrt bounds", n, r)
		}
	}

	for n := range uint32(70000) {
		check(n)
	}
	for k := uint32(2); k < 65536; k += 97 {
		check(k*k - 1)
		check(k * k)
		check(k*k + 1)
	}
	check(math.MaxUint32)
	check(math.MaxUint32 - 1)

	rng := rand.New(rand.NewSource(42))
	for range 200000 {
		check(rng.Uint32())
	}

	if got := ISqrt(math.MaxUint32); got != 65535 {
		t.Errorf("ISqrt(MaxUint32) = %d, want 65535", got)
	}
}

func TestSummarize(t *testing.T) {
	var h Histogram
	h.Luma[10] = 50
	h.Luma[30] = 50
	h.Total = 100

	s := h.Summarize(Luma)
	if s.Channel != "luma" || s.Count != 100 || s.Peak != 50 {
		t.Errorf("unexpected header fields: %+v", s)
	}
	if math.Abs(s.Mean-20) > 1e-9 {
		t.Errorf("Mean = %v, want 20", s.Mean)
	}
	if s.StdDev <= 0 {
		t.Errorf("StdDev = %v, want > 0", s.StdDev)
	}
	if s.Median != 10 {
		t.Errorf("Median = %v, want 10", s.Median)
	}
	if s.P99 != 30 {
		t.Errorf("P99 = %v, want 30", s.P99)
	}

	empty := h.Summarize(Blue)
	if empty.Count != 0 || empty.Mean != 0 {
		t.Errorf("empty channel summary = %+v, want zeros", empty)
	}
	if len(h.SummarizeAll()) != 4 {
		t.Error("SummarizeAll should cover four channels")
	}
}
