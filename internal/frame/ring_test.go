package frame

import "testing"

func TestGridPoints(t *testing.T) {
	if GridRows != 96 {
		t.Errorf("GridRows = %d, want 96", GridRows)
	}
	if GridCols != 109 {
		t.Errorf("GridCols = %d, want 109", GridCols)
	}
	if got := GridPoints(); got != 96*109 {
		t.Errorf("GridPoints() = %d, want %d", got, 96*109)
	}
}

func TestChromaLayoutFitsBuffer(t *testing.T) {
	if end := ChromaOffset + Pitch*Height/2; end > Size {
		t.Fatalf("chroma plane ends at %#x, past frame size %#x", end, Size)
	}
	b := NewBuffer()
	if len(b.Chroma()) != Pitch*Height/2 {
		t.Errorf("chroma plane length = %d", len(b.Chroma()))
	}
}

func TestChromaAtSharesPairs(t *testing.T) {
	b := NewBuffer()
	i := ChromaOffset + 5*Pitch + 10
	b.Bytes()[i] = 40
	b.Bytes()[i+1] = 200

	for _, pt := range [][2]int{{10, 10}, {11, 10}, {10, 11}, {11, 11}} {
		u, v := b.ChromaAt(pt[0], pt[1])
		if u != 40 || v != 200 {
			t.Errorf("ChromaAt(%d,%d) = (%d,%d), want (40,200)", pt[0], pt[1], u, v)
		}
	}
}

func TestRingLatest(t *testing.T) {
	tests := []struct {
		name      string
		published []int
		want      int
	}{
		{"nothing fresh falls back to slot 0", nil, 0},
		{"single fresh slot", []int{4}, 4},
		{"last fresh slot wins", []int{1, 3, 2}, 3},
		{"slot 5", []int{0, 5}, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRing()
			for _, idx := range tt.published {
				r.Publish(idx, func(b []byte) { b[100] = byte(idx) })
			}

			got, buf := r.Latest()
			if got != tt.want {
				t.Errorf("Latest() index = %d, want %d", got, tt.want)
			}
			if buf != r.Buffer(tt.want) {
				t.Error("Latest() returned a different buffer than its index")
			}

			for i := range RingSize {
				if s := Sentinel(r.Buffer(i).Bytes()); s != 0 {
					t.Errorf("slot %d sentinel = %#x after scan, want 0", i, s)
				}
			}
		})
	}
}

func TestRingPublishForcesSentinel(t *testing.T) {
	r := NewRing()
	r.Publish(2, func(b []byte) {
		for i := range b {
			b[i] = 0
		}
	})
	if Sentinel(r.Buffer(2).Bytes()) == 0 {
		t.Fatal("published frame of zeros must still be marked fresh")
	}

	r.Publish(RingSize, func([]byte) { t.Error("fill called for out-of-range slot") })
	r.Publish(-1, func([]byte) { t.Error("fill called for out-of-range slot") })
}
