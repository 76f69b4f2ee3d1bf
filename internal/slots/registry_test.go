package slots

import "testing"

func TestClaimColdStartDefaultsToRegionThree(t *testing.T) {
	r := NewRegistry(16)

	idx, bitmap := r.Claim()
	if idx != DefaultRegion {
		t.Fatalf("first claim = %d, want %d", idx, DefaultRegion)
	}
	if len(bitmap) != 16 {
		t.Errorf("bitmap length = %d, want 16", len(bitmap))
	}
	for i, s := range r.States() {
		if s != Claimed {
			t.Errorf("region %d is %s after cold start, want claimed", i, s)
		}
	}
}

func TestClaimWithoutReaderStaysOnDefault(t *testing.T) {
	r := NewRegistry(4)
	for range 10 {
		if idx, _ := r.Claim(); idx != DefaultRegion {
			t.Fatalf("claim = %d with no reader, want %d", idx, DefaultRegion)
		}
	}
}

func TestClaimPriorityOrder(t *testing.T) {
	tests := []struct {
		name  string
		free  []int
		want  int
		still []int
	}{
		{"region 3 first", []int{0, 3}, 3, []int{0}},
		{"then region 4", []int{4, 1}, 4, []int{1}},
		{"region 0 before 1 and 2", []int{2, 1, 0}, 0, []int{1, 2}},
		{"only region 2", []int{2}, 2, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRegistry(4)
			r.Claim()
			for _, i := range tt.free {
				r.Release(i)
			}

			if idx, _ := r.Claim(); idx != tt.want {
				t.Fatalf("Claim() = %d, want %d", idx, tt.want)
			}
			if r.State(tt.want) != Claimed {
				t.Error("claimed region was not re-tagged")
			}
			if got := r.FreeCount(); got != len(tt.still) {
				t.Errorf("FreeCount() = %d, want %d", got, len(tt.still))
			}
			for _, i := range tt.still {
				if r.State(i) != Free {
					t.Errorf("region %d should still be free", i)
				}
			}
		})
	}
}

func TestRoundRobinWithReader(t *testing.T) {
	r := NewRegistry(8)
	rd := NewReader(r)

	var visited []int
	for range 12 {
		idx, bitmap := r.Claim()
		if r.FreeCount() != 0 {
			t.Fatalf("free regions after claim = %d, want 0", r.FreeCount())
		}
		bitmap[0] = byte(idx)
		visited = append(visited, idx)

		shown, snap := rd.Show()
		if shown != idx || snap[0] != byte(idx) {
			t.Fatalf("reader showed region %d, want %d", shown, idx)
		}
		rd.Done()
		if r.FreeCount() > 1 {
			t.Fatalf("%d regions free at once", r.FreeCount())
		}
	}

	want := []int{3, 4, 0, 1, 2, 3, 4, 0, 1, 2, 3, 4}
	for i := range want {
		if visited[i] != want[i] {
			t.Fatalf("claim sequence = %v, want %v", visited, want)
		}
	}
}

func TestWriterNeverLandsOnDisplayedRegion(t *testing.T) {
	r := NewRegistry(4)
	rd := NewReader(r)

	r.Claim()
	for range 20 {
		shown, _ := rd.Show()
		rd.Done()
		next, _ := r.Claim()
		if next == shown {
			t.Fatalf("writer claimed region %d while it was on display", next)
		}
	}
}

func TestReaderBeforeFirstClaim(t *testing.T) {
	rd := NewReader(NewRegistry(4))
	if idx, b := rd.Show(); idx != -1 || b != nil {
		t.Errorf("Show() = (%d, %v), want (-1, nil)", idx, b)
	}
	rd.Done()
	if idx, _ := rd.Snapshot(); idx != -1 {
		t.Errorf("Snapshot() index = %d, want -1", idx)
	}
}

func TestInvalidIndices(t *testing.T) {
	r := NewRegistry(4)
	r.Release(-1)
	r.Release(Count)
	if r.Bitmap(Count) != nil {
		t.Error("Bitmap(out of range) should be nil")
	}
	if r.State(99) != Free {
		t.Error("State(out of range) should be free")
	}
	if Next(42) != DefaultRegion {
		t.Error("Next(unknown) should fall back to the default region")
	}
}
