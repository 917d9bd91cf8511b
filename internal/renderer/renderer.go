package renderer

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/san-kum/parallaxfield/internal/field"
	"github.com/san-kum/parallaxfield/internal/host"
	"github.com/san-kum/parallaxfield/internal/input"
	"github.com/san-kum/parallaxfield/internal/logging"
	"github.com/san-kum/parallaxfield/internal/render"
)

type State int

const (
	Stopped State = iota
	Running
)

func (s State) String() string {
	if s == Running {
		return "running"
	}
	return "stopped"
}

// Config groups the tunables of the three stages.
type Config struct {
	Scene  field.Params
	Input  input.Params
	Render render.Params
}

func DefaultConfig() Config {
	return Config{
		Scene:  field.DefaultParams(),
		Input:  input.DefaultParams(),
		Render: render.DefaultParams(),
	}
}

// FrameStats describes one completed frame.
type FrameStats struct {
	Frame            int
	Time             float64
	Class            field.Class
	TargetX, TargetY float64
	TiltX, TiltY     float64 // smoothed tilt used for the draw
	Recycled         int
	Orientation      bool // device orientation feeds the target
	render.Stats
}

type Observer interface {
	OnFrame(FrameStats)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(FrameStats)

func (f ObserverFunc) OnFrame(s FrameStats) { f(s) }

type Option func(*Renderer)

func WithRand(rng *rand.Rand) Option {
	return func(r *Renderer) { r.rng = rng }
}

func WithSeed(seed int64) Option {
	return WithRand(rand.New(rand.NewSource(seed)))
}

func WithObserver(o Observer) Option {
	return func(r *Renderer) { r.observers = append(r.observers, o) }
}

// Renderer is a mounted parallax background.
type Renderer struct {
	host      host.Host
	cfg       Config
	rng       *rand.Rand
	observers []Observer

	surf      render.Surface
	scene     *field.Scene
	fusion    *input.Fusion
	projector *render.Projector
	gate      *input.Gate

	listeners *scope
	gestures  *scope
	tilt      bool

	state   State
	frameID host.FrameID
	last    FrameStats
	lastErr error
}

// Mount attaches a renderer to h and schedules its first frame.
// When the host has no surface the returned renderer is inert: it is
// stopped, holds no listeners and never draws. The error is returned
// alongside it so callers may ignore it.
func Mount(h host.Host, cfg Config, opts ...Option) (*Renderer, error) {
	r := &Renderer{host: h, cfg: cfg}
	for _, opt := range opts {
		opt(r)
	}

	surf, err := h.Surface()
	if err == nil && surf == nil {
		err = field.ErrSurfaceUnavailable
	}
	if err != nil {
		logging.L().Warn("parallax background disabled", "err", err)
		if errors.Is(err, field.ErrSurfaceUnavailable) {
			return r, fmt.Errorf("mount: %w", err)
		}
		return r, fmt.Errorf("mount: %w: %w", field.ErrSurfaceUnavailable, err)
	}

	vp := h.Viewport()
	scene, err := field.NewScene(vp, cfg.Scene, r.rng)
	if err != nil {
		return r, fmt.Errorf("mount: %w", err)
	}
	if surf.Size() != vp {
		if err := surf.Resize(vp.Width, vp.Height); err != nil {
			logging.L().Debug("surface resize failed", "err", err)
		}
	}

	r.surf = surf
	r.scene = scene
	r.fusion = input.NewFusion(cfg.Input)
	r.projector = render.NewProjector(cfg.Render)
	r.listeners = newScope(h)
	r.gestures = newScope(h)
	r.gate = input.NewGate(h.RequestOrientationPermission, r.attachOrientation)
	r.state = Running

	r.attach()
	r.gate.Attempt()
	r.frameID = h.RequestFrame(r.frame)

	logging.L().Info("parallax background mounted",
		"width", vp.Width, "height", vp.Height,
		"class", scene.Class.String(), "stars", len(scene.Stars), "shapes", len(scene.Shapes))
	return r, nil
}

func (r *Renderer) attach() {
	r.listeners.listen(host.KindPointerMove, func(e host.Event) {
		p := e.(host.PointerMove)
		r.fusion.Pointer(p.X, p.Y, r.host.Viewport())
	})
	r.listeners.listen(host.KindTouchStart, func(e host.Event) {
		p := e.(host.TouchStart)
		r.fusion.TouchStart(p.X, p.Y)
	})
	r.listeners.listen(host.KindTouchMove, func(e host.Event) {
		p := e.(host.TouchMove)
		r.fusion.TouchMove(p.X, p.Y, r.host.Viewport())
	})
	r.listeners.listen(host.KindTouchEnd, func(host.Event) {
		r.fusion.TouchEnd()
	})
	r.listeners.listen(host.KindResize, func(e host.Event) {
		rs := e.(host.Resize)
		if err := r.surf.Resize(rs.Width, rs.Height); err != nil {
			logging.L().Debug("surface resize failed", "width", rs.Width, "height", rs.Height, "err", err)
		}
	})

	gesture := func(host.Event) { r.gesture() }
	r.gestures.listen(host.KindClick, gesture)
	r.gestures.listen(host.KindTouchStart, gesture)
}

// gesture forwards the first user gesture to the gate, then drops the
// gesture listeners.
func (r *Renderer) gesture() {
	r.gate.Gesture()
	r.gestures.release()
}

func (r *Renderer) attachOrientation() {
	if r.state != Running {
		return
	}
	r.tilt = true
	r.listeners.listen(host.KindOrientation, func(e host.Event) {
		o := e.(host.Orientation)
		r.fusion.Orientation(o.Reading())
	})
}

func (r *Renderer) frame() {
	if r.state != Running {
		return
	}

	r.fusion.Smooth()
	recycled := r.scene.Step()
	cx, cy := r.fusion.Current()

	stats, err := r.projector.Draw(r.scene, cx, cy, r.surf)
	if err != nil {
		r.lastErr = &field.FrameError{Frame: r.scene.Frame, Time: r.scene.Time, Wrapped: err}
		logging.L().Debug("frame draw failed", "frame", r.scene.Frame, "err", err)
	}

	tx, ty := r.fusion.Target()
	r.last = FrameStats{
		Frame:       r.scene.Frame,
		Time:        r.scene.Time,
		Class:       r.scene.Class,
		TargetX:     tx,
		TargetY:     ty,
		TiltX:       cx,
		TiltY:       cy,
		Recycled:    recycled,
		Orientation: r.tilt,
		Stats:       stats,
	}
	for _, o := range r.observers {
		o.OnFrame(r.last)
	}

	// an observer may have torn the renderer down
	if r.state == Running {
		r.frameID = r.host.RequestFrame(r.frame)
	}
}

// Teardown stops the frame loop and releases every listener. It is safe to
// call more than once and on an inert renderer.
func (r *Renderer) Teardown() {
	if r.state != Running {
		return
	}
	r.state = Stopped
	r.host.CancelFrame(r.frameID)
	r.gate.Close()
	r.gestures.release()
	r.listeners.release()
	logging.L().Info("parallax background torn down", "frames", r.scene.Frame)
}

func (r *Renderer) State() State { return r.state }

// Scene returns the live scene, or nil for an inert renderer.
func (r *Renderer) Scene() *field.Scene { return r.scene }

func (r *Renderer) Surface() render.Surface { return r.surf }
func (r *Renderer) Gate() *input.Gate       { return r.gate }
func (r *Renderer) Last() FrameStats        { return r.last }

// Tilt reports the smoothed tilt.
func (r *Renderer) Tilt() (float64, float64) {
	if r.fusion == nil {
		return 0, 0
	}
	return r.fusion.Current()
}

// Err returns the most recent frame error, as a *field.FrameError.
func (r *Renderer) Err() error { return r.lastErr }
