package host

import (
	"fmt"
	"strings"

	"github.com/san-kum/parallaxfield/internal/field"
	"github.com/san-kum/parallaxfield/internal/input"
	"github.com/san-kum/parallaxfield/internal/render"
)

// Policy decides how a Manual host answers permission requests.
type Policy int

const (
	// PolicyNone behaves like a platform without a permission API.
	PolicyNone Policy = iota
	PolicyGranted
	PolicyDenied
	// PolicyGesture grants only requests made while a click or touchstart
	// is being dispatched.
	PolicyGesture
	PolicyUnsupported
)

var policyNames = map[Policy]string{
	PolicyNone:        "none",
	PolicyGranted:     "granted",
	PolicyDenied:      "denied",
	PolicyGesture:     "gesture",
	PolicyUnsupported: "unsupported",
}

func (p Policy) String() string {
	if s, ok := policyNames[p]; ok {
		return s
	}
	return "unknown"
}

func ParsePolicy(s string) (Policy, error) {
	for p, name := range policyNames {
		if strings.EqualFold(s, name) {
			return p, nil
		}
	}
	return PolicyNone, fmt.Errorf("unknown permission policy %q (want none, granted, denied, gesture or unsupported)", s)
}

type listener struct {
	id int
	fn Handler
}

type frame struct {
	id FrameID
	fn func()
}

type answer struct {
	done func(input.Permission, error)
	p    input.Permission
}

// Manual is an in-process host driven by explicit Dispatch and Tick calls.
// It is not safe for concurrent use; the owner serializes every call.
type Manual struct {
	vp      field.Viewport
	surface func(field.Viewport) (render.Surface, error)
	policy  Policy

	listeners map[Kind][]listener
	nextID    int

	frames    []frame
	nextFrame FrameID

	answers    []answer
	requests   int
	activation bool
	ticks      int
}

type Option func(*Manual)

// WithSurface sets the factory that creates the drawing surface.
func WithSurface(factory func(field.Viewport) (render.Surface, error)) Option {
	return func(m *Manual) { m.surface = factory }
}

// WithSurfaceError makes every Surface call fail with err.
func WithSurfaceError(err error) Option {
	return WithSurface(func(field.Viewport) (render.Surface, error) { return nil, err })
}

func WithPolicy(p Policy) Option {
	return func(m *Manual) { m.policy = p }
}

func NewManual(vp field.Viewport, opts ...Option) *Manual {
	m := &Manual{
		vp:        vp,
		listeners: make(map[Kind][]listener),
		surface: func(vp field.Viewport) (render.Surface, error) {
			return render.NewRecorder(vp.Width, vp.Height), nil
		},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manual) Viewport() field.Viewport { return m.vp }

func (m *Manual) Surface() (render.Surface, error) {
	return m.surface(m.vp)
}

func (m *Manual) Listen(k Kind, fn Handler) func() {
	m.nextID++
	id := m.nextID
	m.listeners[k] = append(m.listeners[k], listener{id: id, fn: fn})
	return func() { m.remove(k, id) }
}

func (m *Manual) remove(k Kind, id int) {
	ls := m.listeners[k]
	for i, l := range ls {
		if l.id == id {
			m.listeners[k] = append(ls[:i:i], ls[i+1:]...)
			return
		}
	}
}

// Dispatch delivers e to the listeners registered for its kind when the
// call begins and returns how many ran.
func (m *Manual) Dispatch(e Event) int {
	k := e.Kind()
	if r, ok := e.(Resize); ok {
		m.vp = field.Viewport{Width: r.Width, Height: r.Height}
	}

	if k == KindClick || k == KindTouchStart {
		m.activation = true
		defer func() { m.activation = false }()
	}

	ls := m.listeners[k]
	snapshot := make([]listener, len(ls))
	copy(snapshot, ls)
	for _, l := range snapshot {
		l.fn(e)
	}
	return len(snapshot)
}

// SetViewport changes the host size and dispatches the matching Resize.
func (m *Manual) SetViewport(vp field.Viewport) int {
	return m.Dispatch(Resize{Width: vp.Width, Height: vp.Height})
}

func (m *Manual) RequestFrame(fn func()) FrameID {
	m.nextFrame++
	m.frames = append(m.frames, frame{id: m.nextFrame, fn: fn})
	return m.nextFrame
}

func (m *Manual) CancelFrame(id FrameID) {
	for i, f := range m.frames {
		if f.id == id {
			m.frames = append(m.frames[:i:i], m.frames[i+1:]...)
			return
		}
	}
}

func (m *Manual) RequestOrientationPermission(done func(input.Permission, error)) {
	m.requests++
	m.answers = append(m.answers, answer{done: done, p: m.decide()})
}

func (m *Manual) decide() input.Permission {
	switch m.policy {
	case PolicyGranted:
		return input.PermissionGranted
	case PolicyDenied:
		return input.PermissionDenied
	case PolicyGesture:
		if m.activation {
			return input.PermissionGranted
		}
		return input.PermissionDenied
	case PolicyUnsupported:
		return input.PermissionUnsupported
	default:
		return input.PermissionNotRequired
	}
}

// Tick resolves queued permission requests, then runs the frames scheduled
// before it began. Frames requested during the tick wait for the next one.
// It returns how many frames ran.
func (m *Manual) Tick() int {
	m.ticks++

	answers := m.answers
	m.answers = nil
	for _, a := range answers {
		a.done(a.p, nil)
	}

	frames := m.frames
	m.frames = nil
	for _, f := range frames {
		f.fn()
	}
	return len(frames)
}

// Run ticks n times and returns the total frames run.
func (m *Manual) Run(n int) int {
	total := 0
	for i := 0; i < n; i++ {
		total += m.Tick()
	}
	return total
}

func (m *Manual) ListenerCount() int {
	n := 0
	for _, ls := range m.listeners {
		n += len(ls)
	}
	return n
}

// Listeners returns how many listeners are registered for k.
func (m *Manual) Listeners(k Kind) int { return len(m.listeners[k]) }

func (m *Manual) PendingFrames() int      { return len(m.frames) }
func (m *Manual) PermissionRequests() int { return m.requests }
func (m *Manual) Ticks() int              { return m.ticks }
