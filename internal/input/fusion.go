package input

import (
	"math"

	"github.com/san-kum/parallaxfield/internal/field"
)

const (
	DefaultDamping      = 0.05
	DefaultTiltRange    = 45.0
	DefaultBetaBaseline = 45.0
)

// Params tunes normalization and smoothing.
type Params struct {
	Damping      float64 // fraction of the remaining distance covered per frame
	TiltRange    float64 // degrees of tilt mapped to full deflection
	BetaBaseline float64 // natural front-back holding angle in degrees
}

func DefaultParams() Params {
	return Params{
		Damping:      DefaultDamping,
		TiltRange:    DefaultTiltRange,
		BetaBaseline: DefaultBetaBaseline,
	}
}

// Reading is a device orientation sample in degrees. Nil fields are missing.
type Reading struct {
	Gamma *float64 // left-right tilt, right positive
	Beta  *float64 // front-back tilt, front positive
}

// Fusion merges pointer, touch and orientation input into one tilt target
// in [-1, 1] and low-pass filters it into the current value.
// The last event to arrive owns the target.
type Fusion struct {
	params Params

	targetX, targetY   float64
	currentX, currentY float64

	touching                 bool
	touchStartX, touchStartY float64
}

func NewFusion(p Params) *Fusion {
	return &Fusion{params: p}
}

// Pointer maps a cursor position to a target relative to the viewport center.
func (f *Fusion) Pointer(x, y float64, vp field.Viewport) {
	f.targetX = normalize(x, vp.Width)
	f.targetY = normalize(y, vp.Height)
}

func (f *Fusion) TouchStart(x, y float64) {
	f.touching = true
	f.touchStartX, f.touchStartY = x, y
}

// TouchMove maps the swipe delta since TouchStart to a target.
// Moves without an active touch are ignored.
func (f *Fusion) TouchMove(x, y float64, vp field.Viewport) {
	if !f.touching {
		return
	}
	f.targetX = swipe(x-f.touchStartX, vp.Width)
	f.targetY = swipe(y-f.touchStartY, vp.Height)
}

// TouchEnd releases the touch and recenters the target.
func (f *Fusion) TouchEnd() {
	f.touching = false
	f.targetX, f.targetY = 0, 0
}

// Orientation sets the target from a device tilt reading.
// Readings with a missing or non-finite axis are dropped and false is returned.
func (f *Fusion) Orientation(r Reading) bool {
	if r.Gamma == nil || r.Beta == nil || !finite(*r.Gamma) || !finite(*r.Beta) {
		return false
	}
	tilt := f.params.TiltRange
	if tilt <= 0 {
		tilt = DefaultTiltRange
	}
	f.targetX = clamp(*r.Gamma / tilt)
	f.targetY = clamp((*r.Beta - f.params.BetaBaseline) / tilt)
	return true
}

// Smooth moves the current value a fixed fraction toward the target.
func (f *Fusion) Smooth() {
	f.currentX += (f.targetX - f.currentX) * f.params.Damping
	f.currentY += (f.targetY - f.currentY) * f.params.Damping
}

func (f *Fusion) Target() (float64, float64)  { return f.targetX, f.targetY }
func (f *Fusion) Current() (float64, float64) { return f.currentX, f.currentY }
func (f *Fusion) Touching() bool              { return f.touching }

func normalize(v float64, extent int) float64 {
	if extent <= 0 {
		return 0
	}
	return clamp((v/float64(extent) - 0.5) * 2)
}

func swipe(d float64, extent int) float64 {
	if extent <= 0 {
		return 0
	}
	return clamp(d / float64(extent) * 2)
}

func clamp(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(-1, math.Min(1, v))
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
