package render

import (
	"math"

	"github.com/san-kum/parallaxfield/internal/field"
)

// Params holds the projection constants.
type Params struct {
	FocalLength   float64
	ParallaxX     float64 // pixels of offset at full tilt
	ParallaxY     float64
	ShapeParallax float64 // fraction of the star offset applied to shapes
	MinRadius     float64
	RadiusScale   float64
	MaxAlpha      float64
	LineWidth     float64
	GemVertices   int
}

func DefaultParams() Params {
	return Params{
		FocalLength:   500,
		ParallaxX:     8,
		ParallaxY:     6,
		ShapeParallax: 0.3,
		MinRadius:     0.2,
		RadiusScale:   0.7,
		MaxAlpha:      0.6,
		LineWidth:     0.6,
		GemVertices:   5,
	}
}

// Stats summarizes one drawn frame.
type Stats struct {
	Stars    int
	Visible  int // stars whose dot intersects the surface
	Shapes   int
	Segments int
}

// Projector maps a scene to drawing commands.
type Projector struct {
	params Params
	ring   [][2]float64
	segs   []Segment
}

func NewProjector(p Params) *Projector {
	if p.GemVertices < 3 {
		p.GemVertices = 5
	}
	return &Projector{
		params: p,
		ring:   make([][2]float64, p.GemVertices),
		segs:   make([]Segment, 0, p.GemVertices*3),
	}
}

func (pr *Projector) Params() Params { return pr.params }

// Offset returns the parallax translation for a smoothed tilt.
func (pr *Projector) Offset(cx, cy float64) (float64, float64) {
	return cx * pr.params.ParallaxX, cy * pr.params.ParallaxY
}

// Draw clears surf and draws the scene with the smoothed tilt (cx, cy).
// The first drawing error is returned after the whole frame is attempted.
func (pr *Projector) Draw(s *field.Scene, cx, cy float64, surf Surface) (Stats, error) {
	surf.Clear()

	var (
		stats    Stats
		firstErr error
	)
	keep := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	vp := surf.Size()
	w, h := float64(vp.Width), float64(vp.Height)
	ofsX, ofsY := pr.Offset(cx, cy)
	maxDepth := s.Params.MaxDepth
	square := s.Class == field.Constrained

	for i := range s.Stars {
		st := &s.Stars[i]
		if st.Z <= 0 {
			continue
		}
		scale := pr.params.FocalLength / st.Z
		sx := st.X*scale + w/2 + ofsX
		sy := st.Y*scale + h/2 + ofsY
		radius := math.Max(pr.params.MinRadius, st.Radius*scale*pr.params.RadiusScale)
		alpha := math.Min(pr.params.MaxAlpha, (1-st.Z/maxDepth)*st.Opacity)
		c := field.StarColor.WithAlpha(alpha)

		stats.Stars++
		if sx+radius >= 0 && sx-radius <= w && sy+radius >= 0 && sy-radius <= h {
			stats.Visible++
		}
		if square {
			keep(surf.FillRect(sx-radius, sy-radius, radius*2, radius*2, c))
		} else {
			keep(surf.FillCircle(sx, sy, radius, c))
		}
	}

	if square {
		return stats, firstErr
	}

	for i := range s.Shapes {
		sh := &s.Shapes[i]
		gx := sh.AnchorX*w + ofsX*pr.params.ShapeParallax
		gy := sh.AnchorY*h + sh.Bob + ofsY*pr.params.ShapeParallax
		segs := pr.gem(gx, gy, sh.Size, sh.Rotation)
		stats.Shapes++
		stats.Segments += len(segs)
		keep(surf.StrokeSegments(segs, pr.params.LineWidth, sh.Color))
	}

	return stats, firstErr
}

// gem builds the wire silhouette: a squashed ring joined to a top and a
// bottom apex. The returned slice is reused by the next call.
func (pr *Projector) gem(gx, gy, size, rot float64) []Segment {
	n := len(pr.ring)
	for i := 0; i < n; i++ {
		a := float64(i)/float64(n)*math.Pi*2 + rot
		pr.ring[i] = [2]float64{gx + math.Cos(a)*size, gy + math.Sin(a)*size*0.65}
	}
	topX, topY := gx, gy-size*0.72
	botX, botY := gx, gy+size*0.6

	pr.segs = pr.segs[:0]
	for i, p := range pr.ring {
		next := pr.ring[(i+1)%n]
		pr.segs = append(pr.segs,
			Segment{p[0], p[1], next[0], next[1]},
			Segment{p[0], p[1], topX, topY},
			Segment{p[0], p[1], botX, botY},
		)
	}
	return pr.segs
}
