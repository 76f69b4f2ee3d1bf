// Package device models the camera host: its status words, the live exposure
// register, the LCD surface and a simulated sensor that feeds the frame ring.
package device

import "github.com/smazurov/histonode/internal/exposure"

// ButtonOK is the mask of the confirm button.
const ButtonOK = 0x800

// PreviewMarker is written to the exposure marker by the host while the camera
// is previewing.
const PreviewMarker uint32 = 0xffff0000

// ButtonState is the input snapshot: the held mask and the activity counter.
type ButtonState struct {
	Mask   uint32 `json:"mask"`
	Active uint32 `json:"active"`
}

// ConfirmHeld reports whether the confirm combination is being held, during
// which the histogram is suppressed.
func (b ButtonState) ConfirmHeld() bool {
	return b.Active > 0 && b.Mask == ButtonOK
}

// Host exposes the camera status the per-frame pass reads.
type Host interface {
	exposure.Sensor
	exposure.Marker

	FrameNumber() int32
	EncodedFrames() uint32
	ExposureMarker() uint32
	Buttons() ButtonState
	QP() uint32
	WhiteBalance() [3]uint32
	Window() [4]uint32
}

// PhaseOf derives the capture phase from the host status words.
func PhaseOf(h Host) exposure.Phase {
	if h.EncodedFrames() > 0 {
		return exposure.PhaseEncode
	}
	if h.ExposureMarker() == PreviewMarker {
		return exposure.PhasePreview
	}
	return exposure.PhaseIdle
}
