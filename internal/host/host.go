// Package host defines the boundary between the renderer and the page that
// mounts it: a drawing surface, an event source, a frame scheduler and the
// orientation permission API.
package host

import (
	"github.com/san-kum/parallaxfield/internal/field"
	"github.com/san-kum/parallaxfield/internal/input"
	"github.com/san-kum/parallaxfield/internal/render"
)

type Kind int

const (
	KindPointerMove Kind = iota
	KindTouchStart
	KindTouchMove
	KindTouchEnd
	KindOrientation
	KindClick
	KindResize
)

func (k Kind) String() string {
	switch k {
	case KindPointerMove:
		return "pointermove"
	case KindTouchStart:
		return "touchstart"
	case KindTouchMove:
		return "touchmove"
	case KindTouchEnd:
		return "touchend"
	case KindOrientation:
		return "orientation"
	case KindClick:
		return "click"
	case KindResize:
		return "resize"
	default:
		return "unknown"
	}
}

// Event is anything a host can dispatch to listeners.
type Event interface {
	Kind() Kind
}

type PointerMove struct{ X, Y float64 }
type TouchStart struct{ X, Y float64 }
type TouchMove struct{ X, Y float64 }
type TouchEnd struct{}
type Click struct{ X, Y float64 }
type Resize struct{ Width, Height int }

// Orientation is a device tilt sample in degrees. Nil fields are missing.
type Orientation struct {
	Gamma, Beta *float64
}

func (PointerMove) Kind() Kind { return KindPointerMove }
func (TouchStart) Kind() Kind  { return KindTouchStart }
func (TouchMove) Kind() Kind   { return KindTouchMove }
func (TouchEnd) Kind() Kind    { return KindTouchEnd }
func (Orientation) Kind() Kind { return KindOrientation }
func (Click) Kind() Kind       { return KindClick }
func (Resize) Kind() Kind      { return KindResize }

// Reading converts the sample for the fusion layer.
func (o Orientation) Reading() input.Reading {
	return input.Reading{Gamma: o.Gamma, Beta: o.Beta}
}

// Tilt builds an orientation event with both angles present.
func Tilt(gamma, beta float64) Orientation {
	return Orientation{Gamma: &gamma, Beta: &beta}
}

type Handler func(Event)

type FrameID int

// Host is what a renderer needs from the page it is mounted on.
type Host interface {
	Viewport() field.Viewport
	// Surface returns the drawing target, or an error when none is available.
	Surface() (render.Surface, error)
	// Listen registers fn for events of kind k. The returned func removes it
	// and is safe to call more than once.
	Listen(k Kind, fn Handler) (cancel func())
	RequestFrame(fn func()) FrameID
	CancelFrame(id FrameID)
	// RequestOrientationPermission asks for sensor access. done runs later on
	// the host loop, never inside the call.
	RequestOrientationPermission(done func(input.Permission, error))
}
