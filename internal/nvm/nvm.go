// Package nvm models the camera's persistent settings block: a small array of
// signed words addressed by fixed indices.
package nvm

import "sort"

// Index addresses one word of the settings block.
type Index int

// Settings indices. Gaps are reserved words that other firmware owns.
const (
	WBal        Index = 0
	Sharpen     Index = 1
	Sat         Index = 2
	WBMods      Index = 5
	EVBias      Index = 6
	FPS         Index = 7
	QPMin       Index = 8
	IsoMax      Index = 9
	ExpLock     Index = 10
	Nav         Index = 13
	ISOLock     Index = 14
	ShutterLock Index = 15
)

// Size is the number of words in the block.
const Size = 16

var names = map[Index]string{
	WBal:        "wbal",
	Sharpen:     "sharpen",
	Sat:         "saturation",
	WBMods:      "wb_mods",
	EVBias:      "ev_bias",
	FPS:         "fps",
	QPMin:       "qp_min",
	IsoMax:      "iso_max",
	ExpLock:     "exp_lock",
	Nav:         "nav",
	ISOLock:     "iso_lock",
	ShutterLock: "shutter_lock",
}

func (i Index) String() string {
	if n, ok := names[i]; ok {
		return n
	}
	return "reserved"
}

// Valid reports whether i addresses a word inside the block.
func (i Index) Valid() bool {
	return i >= 0 && i < Size
}

// Lookup resolves a field name to its index.
func Lookup(name string) (Index, bool) {
	for i, n := range names {
		if n == name {
			return i, true
		}
	}
	return 0, false
}

// Fields returns every named index in ascending order.
func Fields() []Index {
	out := make([]Index, 0, len(names))
	for i := range names {
		out = append(out, i)
	}
	sort.Slice(out, func(a, b int) bool { return out[a] < out[b] })
	return out
}

// Defaults are the factory values of the block.
func Defaults() [Size]int32 {
	var v [Size]int32
	v[FPS] = 1
	v[QPMin] = 27
	v[IsoMax] = 1
	v[ISOLock] = 50
	v[ShutterLock] = 2047
	return v
}

// Store reads and writes settings words. Set reports whether the stored value
// changed; writing the current value is a no-op.
type Store interface {
	Get(i Index) int32
	Set(i Index, v int32) bool
}

// Locked reports whether exposure lock (bit 0 of ExpLock) is engaged.
func Locked(s Store) bool {
	return s.Get(ExpLock)&1 != 0
}

// Snapshot returns every named field of s keyed by name.
func Snapshot(s Store) map[string]int32 {
	out := make(map[string]int32, len(names))
	for i, n := range names {
		out[n] = s.Get(i)
	}
	return out
}
