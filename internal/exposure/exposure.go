// Package exposure implements the histogram-driven auto-exposure controller.
//
// Exposure is a (ISO, shutter) pair. The controller reasons about the product
// Quantum = shutter * ISO/50, nudges it by a few percent per frame based on
// the luma zones, then splits it back into a pair whose ISO is a power of two
// multiple of 50.
package exposure

// Pair is one sensor exposure setting.
type Pair struct {
	ISO     int32 `json:"iso" example:"100" doc:"Sensor ISO"`
	Shutter int32 `json:"shutter" example:"1951" doc:"Exposure time in microseconds"`
}

// Quantum is the exposure product in ISO-50 shutter units.
func (p Pair) Quantum() int32 {
	return p.Shutter * (p.ISO / 50)
}

// Valid range of the live pair. Anything outside it is treated as garbage.
const (
	MinISO     = 50
	MinShutter = 500
	MaxShutter = 16386
)

// InitPair is the pair loaded when the live register is out of range and
// exposure is not locked.
var InitPair = Pair{ISO: 50, Shutter: 2047}

// Sensor is the live exposure register.
type Sensor interface {
	Exposure() Pair
	SetExposure(p Pair)
}

// Marker receives the frame number of the last exposure change while encoding.
type Marker interface {
	SetExposureMarker(v uint32)
}

// Phase is the capture state of the camera.
type Phase int

// Capture phases.
const (
	PhaseIdle Phase = iota
	PhasePreview
	PhaseEncode
)

func (p Phase) String() string {
	switch p {
	case PhasePreview:
		return "preview"
	case PhaseEncode:
		return "encode"
	default:
		return "idle"
	}
}

// IsoMaxPower maps the IsoMax setting to the ISO ceiling multiplier used while
// encoding: 2*isoMax clamped to [1,4]. The ceiling is power*100 ISO.
func IsoMaxPower(isoMax int32) int32 {
	power := 2 * isoMax
	if power < 1 {
		return 1
	}
	if power > 4 {
		return 4
	}
	return power
}

// Quantum limits.
const (
	// MinQuantum is the floor below which darkening steps are refused.
	MinQuantum = 750
	// EncodeQuantumPerPower is the brightening ceiling per unit of power in
	// encode phase.
	EncodeQuantumPerPower = 8250
	// PreviewMaxQuantum is the brightening ceiling in preview.
	PreviewMaxQuantum = 33000
)

// MaxQuantum returns the brightening ceiling for phase.
func MaxQuantum(phase Phase, power int32) int32 {
	if phase == PhaseEncode {
		return EncodeQuantumPerPower * power
	}
	return PreviewMaxQuantum
}
