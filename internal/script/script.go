// Package script replays recorded input against a headless renderer.
package script

import (
	"context"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/parallaxfield/internal/field"
	"github.com/san-kum/parallaxfield/internal/host"
	"github.com/san-kum/parallaxfield/internal/logging"
	"github.com/san-kum/parallaxfield/internal/renderer"
	"github.com/san-kum/parallaxfield/internal/storage"
)

// Scenario is a scripted input sequence
type Scenario struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Preset      string   `yaml:"preset"`
	Seed        int64    `yaml:"seed"`
	Width       int      `yaml:"width"`
	Height      int      `yaml:"height"`
	Frames      int      `yaml:"frames"`
	Permission  string   `yaml:"permission"`
	Events      []Action `yaml:"events"`
}

// Action is one event dispatched before frame At.
type Action struct {
	At     int      `yaml:"at"`
	Type   string   `yaml:"type"`
	X      float64  `yaml:"x"`
	Y      float64  `yaml:"y"`
	Gamma  *float64 `yaml:"gamma"`
	Beta   *float64 `yaml:"beta"`
	Width  int      `yaml:"width"`
	Height int      `yaml:"height"`
}

// Event converts the action to a host event.
func (a Action) Event() (host.Event, error) {
	switch a.Type {
	case "pointer":
		return host.PointerMove{X: a.X, Y: a.Y}, nil
	case "touchstart":
		return host.TouchStart{X: a.X, Y: a.Y}, nil
	case "touchmove":
		return host.TouchMove{X: a.X, Y: a.Y}, nil
	case "touchend":
		return host.TouchEnd{}, nil
	case "click":
		return host.Click{X: a.X, Y: a.Y}, nil
	case "tilt":
		return host.Orientation{Gamma: a.Gamma, Beta: a.Beta}, nil
	case "resize":
		return host.Resize{Width: a.Width, Height: a.Height}, nil
	default:
		return nil, fmt.Errorf("%w: unknown event type %q", field.ErrInvalidConfig, a.Type)
	}
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := sc.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &sc, nil
}

func (sc *Scenario) Validate() error {
	if sc.Width < 0 || sc.Height < 0 {
		return fmt.Errorf("viewport %dx%d: %w", sc.Width, sc.Height, field.ErrInvalidViewport)
	}
	if sc.Frames <= 0 {
		return fmt.Errorf("%w: frames must be positive", field.ErrInvalidConfig)
	}
	if sc.Permission != "" {
		if _, err := host.ParsePolicy(sc.Permission); err != nil {
			return fmt.Errorf("%w: %v", field.ErrInvalidConfig, err)
		}
	}
	for i, a := range sc.Events {
		if a.At < 0 || a.At >= sc.Frames {
			return fmt.Errorf("%w: event %d at frame %d outside [0, %d)", field.ErrInvalidConfig, i+1, a.At, sc.Frames)
		}
		if _, err := a.Event(); err != nil {
			return fmt.Errorf("event %d: %w", i+1, err)
		}
	}
	return nil
}

// DefaultViewport is used when a scenario names no size.
var DefaultViewport = field.Viewport{Width: 1280, Height: 800}

// Result holds what a replay produced.
type Result struct {
	Scenario    string
	Viewport    field.Viewport
	Class       field.Class
	Frames      []renderer.FrameStats
	Recycled    int
	Requests    int
	Orientation bool
	// Renderer is torn down but keeps its final scene and surface.
	Renderer *renderer.Renderer
}

// Run mounts a renderer on a manual host, dispatches each action before its
// frame and ticks Frames times. opts are applied after the scenario policy.
func Run(ctx context.Context, sc *Scenario, cfg renderer.Config, opts ...host.Option) (*Result, error) {
	if err := sc.Validate(); err != nil {
		return nil, err
	}

	policy := host.PolicyNone
	if sc.Permission != "" {
		policy, _ = host.ParsePolicy(sc.Permission)
	}
	vp := field.Viewport{Width: sc.Width, Height: sc.Height}
	if vp.Width == 0 && vp.Height == 0 {
		vp = DefaultViewport
	}
	h := host.NewManual(vp, append([]host.Option{host.WithPolicy(policy)}, opts...)...)

	res := &Result{Scenario: sc.Name, Viewport: vp}
	observe := renderer.ObserverFunc(func(s renderer.FrameStats) {
		res.Frames = append(res.Frames, s)
		res.Recycled += s.Recycled
	})

	r, err := renderer.Mount(h, cfg, renderer.WithSeed(sc.Seed), renderer.WithObserver(observe))
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", sc.Name, err)
	}
	defer r.Teardown()
	res.Renderer = r
	res.Class = r.Scene().Class

	actions := make([]Action, len(sc.Events))
	copy(actions, sc.Events)
	sort.SliceStable(actions, func(i, j int) bool { return actions[i].At < actions[j].At })

	next := 0
	for frame := 0; frame < sc.Frames; frame++ {
		select {
		case <-ctx.Done():
			return res, ctx.Err()
		default:
		}

		for next < len(actions) && actions[next].At == frame {
			e, _ := actions[next].Event()
			h.Dispatch(e)
			next++
		}
		h.Tick()
	}

	res.Requests = h.PermissionRequests()
	res.Orientation = r.Last().Orientation
	logging.L().Info("scenario replayed", "name", sc.Name, "frames", len(res.Frames), "recycled", res.Recycled)
	return res, nil
}

// Session converts the result for the session store.
func (r *Result) Session(seed int64, preset, permission string) (storage.Session, []storage.Frame) {
	meta := storage.Session{
		Name:       r.Scenario,
		Preset:     preset,
		Seed:       seed,
		Width:      r.Viewport.Width,
		Height:     r.Viewport.Height,
		Class:      r.Class.String(),
		Permission: permission,
		Metrics: map[string]float64{
			"recycled":             float64(r.Recycled),
			"permission_requests":  float64(r.Requests),
			"orientation_attached": boolMetric(r.Orientation),
		},
	}

	frames := make([]storage.Frame, len(r.Frames))
	for i, s := range r.Frames {
		frames[i] = storage.Frame{
			Frame:    s.Frame,
			Time:     s.Time,
			TargetX:  s.TargetX,
			TargetY:  s.TargetY,
			TiltX:    s.TiltX,
			TiltY:    s.TiltY,
			Visible:  s.Visible,
			Recycled: s.Recycled,
		}
	}
	if len(r.Frames) > 0 {
		last := r.Frames[len(r.Frames)-1]
		meta.Metrics["final_tilt_x"] = last.TiltX
		meta.Metrics["final_tilt_y"] = last.TiltY
	}
	return meta, frames
}

func boolMetric(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
