package exposure

import (
	"log/slog"
	"sync"
	"time"

	"github.com/smazurov/histonode/internal/events"
	"github.com/smazurov/histonode/internal/histogram"
	"github.com/smazurov/histonode/internal/logging"
	"github.com/smazurov/histonode/internal/nvm"
)

// Step factors in Q14 fixed point.
const (
	clipFactor   = 15984 // ~1/1.025
	overFactor   = 16222 // ~1/1.01
	underFactor  = 16794 // ~1.025
	factorShift  = 14
	contrastMult = 16
)

// Branch names the metering decision taken for a frame.
type Branch string

// Metering branches.
const (
	BranchHold        Branch = "hold"
	BranchLowContrast Branch = "low_contrast"
	BranchClipping    Branch = "clipping"
	BranchOverexposed Branch = "overexposed"
	BranchUnder       Branch = "underexposed"
	BranchLocked      Branch = "locked"
)

// StepInput is everything one metering step reads.
type StepInput struct {
	Sensor Sensor
	Marker Marker
	Zones  histogram.Zones
	Total  uint32
	Phase  Phase
	Frame  int32
}

// Decision describes the outcome of one step.
type Decision struct {
	Branch  Branch `json:"branch" example:"clipping" doc:"Metering branch taken"`
	Prev    Pair   `json:"prev" doc:"Live pair before the step"`
	Next    Pair   `json:"next" doc:"Live pair after the step"`
	Blocked bool   `json:"blocked" doc:"Whether the quantum floor or ceiling refused the step"`
	Locked  bool   `json:"locked" doc:"Whether exposure lock was engaged"`
	Reinit  bool   `json:"reinit" doc:"Whether the live pair was out of range and reset"`
	Power   int32  `json:"power" example:"2" doc:"ISO ceiling multiplier"`
	Phase   string `json:"phase" example:"encode" doc:"Capture phase"`
}

// Changed reports whether the step moved the live pair.
func (d Decision) Changed() bool {
	return d.Prev != d.Next
}

// Controller meters the luma zones and steers the sensor. Lock state and the
// shadow pair live in the settings store.
type Controller struct {
	store  nvm.Store
	bus    *events.Bus
	logger *slog.Logger
	lockMu sync.Mutex
}

// NewController creates a controller. bus may be nil.
func NewController(store nvm.Store, bus *events.Bus) *Controller {
	return &Controller{
		store:  store,
		bus:    bus,
		logger: logging.GetLogger("exposure"),
	}
}

// Locked reports whether exposure lock is engaged.
func (c *Controller) Locked() bool {
	return nvm.Locked(c.store)
}

// Power returns the encode ISO ceiling multiplier from the settings store.
func (c *Controller) Power() int32 {
	return IsoMaxPower(c.store.Get(nvm.IsoMax))
}

// Step runs one frame of exposure control.
func (c *Controller) Step(in StepInput) Decision {
	cur := in.Sensor.Exposure()
	locked := c.Locked()
	power := c.Power()

	d := Decision{
		Branch: BranchHold,
		Prev:   cur,
		Locked: locked,
		Power:  power,
		Phase:  in.Phase.String(),
	}

	if cur.ISO < MinISO || cur.Shutter < MinShutter || cur.Shutter > MaxShutter {
		if locked {
			cur = Pair{ISO: c.store.Get(nvm.ISOLock), Shutter: c.store.Get(nvm.ShutterLock)}
		} else {
			cur = InitPair
		}
		in.Sensor.SetExposure(cur)
		d.Reinit = true
		c.logger.Warn("Exposure out of range, reinitialised", "prev_iso", d.Prev.ISO, "prev_shutter", d.Prev.Shutter, "iso", cur.ISO, "shutter", cur.Shutter, "locked", locked)
	}

	if locked && cur.Shutter > 1 {
		c.store.Set(nvm.ISOLock, cur.ISO)
		c.store.Set(nvm.ShutterLock, cur.Shutter)
		d.Branch = BranchLocked
	}

	if !locked && cur.ISO > 0 {
		next, branch, blocked := meter(cur.Quantum(), in.Zones, in.Total, MaxQuantum(in.Phase, power))
		d.Branch = branch
		d.Blocked = blocked

		cur = Quantize(next, in.Phase, power)
		in.Sensor.SetExposure(cur)
		if in.Phase == PhaseEncode && in.Marker != nil {
			in.Marker.SetExposureMarker(uint32(in.Frame))
		}
	}

	d.Next = cur
	if d.Changed() {
		c.logger.Debug("Exposure changed", "frame", in.Frame, "branch", d.Branch, "iso", cur.ISO, "shutter", cur.Shutter)
		c.publish(events.ExposureChangedEvent{
			Frame:       in.Frame,
			Phase:       d.Phase,
			Branch:      string(d.Branch),
			PrevISO:     d.Prev.ISO,
			PrevShutter: d.Prev.Shutter,
			ISO:         cur.ISO,
			Shutter:     cur.Shutter,
			Reinit:      d.Reinit,
			Timestamp:   time.Now().Format(time.RFC3339),
		})
	}
	return d
}

// meter picks the branch for the zones and returns the next quantum. blocked
// is set when a branch fired but its step would cross the floor or ceiling.
func meter(cur int32, z histogram.Zones, total uint32, maxQuantum int32) (int32, Branch, bool) {
	mids := uint64(z.MidA) + uint64(z.MidB) + uint64(z.MidC)
	extremes := uint64(z.MidD) + uint64(z.Clipped) + uint64(z.Bottom)

	switch {
	case extremes*contrastMult < mids:
		return cur, BranchLowContrast, false
	case z.Clipped > total>>7:
		n := scale(cur, clipFactor)
		if n > MinQuantum {
			return n, BranchClipping, false
		}
		return cur, BranchClipping, true
	case z.Top() > z.TwoThirds():
		n := scale(cur, overFactor)
		if n > MinQuantum {
			return n, BranchOverexposed, false
		}
		return cur, BranchOverexposed, true
	case z.Top() < total>>8:
		n := scale(cur, underFactor)
		if n < maxQuantum {
			return n, BranchUnder, false
		}
		return cur, BranchUnder, true
	default:
		return cur, BranchHold, false
	}
}

func scale(q int32, factor int64) int32 {
	return int32(int64(q) * factor >> factorShift)
}

// SetLock engages or releases exposure lock by toggling bit 0 of ExpLock. It
// reports whether the state changed.
func (c *Controller) SetLock(locked bool) bool {
	c.lockMu.Lock()
	defer c.lockMu.Unlock()

	v := c.store.Get(nvm.ExpLock)
	if locked {
		v |= 1
	} else {
		v &^= 1
	}
	if !c.store.Set(nvm.ExpLock, v) {
		return false
	}

	iso, shutter := c.store.Get(nvm.ISOLock), c.store.Get(nvm.ShutterLock)
	c.logger.Info("Exposure lock changed", "locked", locked, "iso", iso, "shutter", shutter)
	c.publish(events.LockChangedEvent{
		Locked:    locked,
		ISO:       iso,
		Shutter:   shutter,
		Timestamp: time.Now().Format(time.RFC3339),
	})
	return true
}

func (c *Controller) publish(ev events.Event) {
	if c.bus != nil {
		c.bus.Publish(ev)
	}
}
