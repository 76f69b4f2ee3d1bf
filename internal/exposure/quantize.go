package exposure

// Shutter ceilings after splitting a quantum into a pair.
const (
	encodeShutterLimit  = 8000
	previewShutterLimit = 2000
	previewISOLimit     = 800
)

// Quantize splits quantum q into a pair. ISO starts at 50 and doubles while
// the shutter would exceed the phase limit. In encode the ISO ceiling is
// power*100 and a shutter still too long after that is halved on its own. In
// preview the ISO ceiling is 800 and the shutter is left as is.
func Quantize(q int32, phase Phase, power int32) Pair {
	iso := int32(MinISO)

	if phase == PhaseEncode {
		for q >= encodeShutterLimit && iso < power*100 {
			iso *= 2
			q /= 2
		}
		for q >= encodeShutterLimit {
			q /= 2
		}
		return Pair{ISO: iso, Shutter: q}
	}

	for q >= previewShutterLimit && iso < previewISOLimit {
		iso *= 2
		q /= 2
	}
	return Pair{ISO: iso, Shutter: q}
}
