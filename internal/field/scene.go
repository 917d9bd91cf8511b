package field

import (
	"fmt"
	"math"
	"math/rand"
)

// Scene is the simulated state of one mounted background.
// Star and shape pools are allocated once and mutated in place.
type Scene struct {
	Params Params
	Class  Class
	Stars  []Star
	Shapes []Shape
	Time   float64
	Frame  int

	rng *rand.Rand
}

// NewScene classifies the viewport and allocates the star pool and shape set.
func NewScene(vp Viewport, p Params, rng *rand.Rand) (*Scene, error) {
	if !vp.Valid() {
		return nil, fmt.Errorf("new scene %dx%d: %w", vp.Width, vp.Height, ErrInvalidViewport)
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}

	class := Classify(vp.Width, p.ConstrainedWidth)
	s := &Scene{
		Params: p,
		Class:  class,
		Stars:  make([]Star, p.StarCount(class)),
		Shapes: make([]Shape, p.ShapeCount(class)),
		rng:    rng,
	}

	for i := range s.Stars {
		st := &s.Stars[i]
		st.X, st.Y = s.randomPlanePoint()
		// 1-rand keeps the initial depth in (0, MaxDepth].
		st.Z = (1 - rng.Float64()) * p.MaxDepth
		st.Radius = rng.Float64()*1.2 + 0.2
		st.Opacity = rng.Float64()*0.5 + 0.2
	}

	for i := range s.Shapes {
		s.Shapes[i] = Shape{
			AnchorX: shapeAnchors[i][0],
			AnchorY: shapeAnchors[i][1],
			Spin:    0.003 + rng.Float64()*0.003,
			Size:    (55 + rng.Float64()*30) * p.ShapeScale,
			Phase:   rng.Float64() * math.Pi * 2,
			Color:   ShapeColors[i%len(ShapeColors)],
		}
	}

	return s, nil
}

func (s *Scene) randomPlanePoint() (float64, float64) {
	return (s.rng.Float64() - 0.5) * s.Params.Spread, (s.rng.Float64() - 0.5) * s.Params.Spread
}

// Step advances the scene by one frame and returns how many stars were recycled.
func (s *Scene) Step() int {
	s.Time += s.Params.TimeStep
	s.Frame++

	recycled := 0
	for i := range s.Stars {
		st := &s.Stars[i]
		st.Z -= s.Params.DecayRate
		if st.Z <= 0 {
			st.Z = s.Params.MaxDepth
			st.X, st.Y = s.randomPlanePoint()
			recycled++
		}
	}

	amp := s.Params.FloatAmplitude * s.Params.ShapeScale
	for i := range s.Shapes {
		sh := &s.Shapes[i]
		sh.Rotation += sh.Spin
		sh.Bob = math.Sin(s.Time+sh.Phase) * amp
	}

	return recycled
}

// DepthRange returns the nearest and farthest star depths.
func (s *Scene) DepthRange() (float64, float64) {
	if len(s.Stars) == 0 {
		return 0, 0
	}
	lo, hi := s.Stars[0].Z, s.Stars[0].Z
	for _, st := range s.Stars[1:] {
		lo = math.Min(lo, st.Z)
		hi = math.Max(hi, st.Z)
	}
	return lo, hi
}
