package field

import "fmt"

// Viewport is the host drawing area in pixels.
type Viewport struct {
	Width, Height int
}

func (v Viewport) Valid() bool { return v.Width >= 0 && v.Height >= 0 }

// Class is the performance tier of a viewport.
type Class int

const (
	Full Class = iota
	Constrained
)

func (c Class) String() string {
	switch c {
	case Full:
		return "full"
	case Constrained:
		return "constrained"
	default:
		return "unknown"
	}
}

// Classify returns Constrained when width is below threshold, Full otherwise.
func Classify(width, threshold int) Class {
	if width < threshold {
		return Constrained
	}
	return Full
}

// Color is an sRGB color with a fractional alpha.
type Color struct {
	R, G, B uint8
	A       float64
}

// WithAlpha returns c with its alpha replaced.
func (c Color) WithAlpha(a float64) Color {
	c.A = a
	return c
}

// Hex formats the color as #rrggbb, ignoring alpha.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Star is a particle in the logical star plane.
// Z is the distance from the viewer and stays within (0, MaxDepth].
type Star struct {
	X, Y    float64
	Z       float64
	Radius  float64
	Opacity float64
}

// Shape is a floating wireframe gem.
type Shape struct {
	AnchorX, AnchorY float64 // fraction of viewport width/height
	Rotation         float64
	Spin             float64 // radians per frame
	Size             float64
	Phase            float64
	Bob              float64 // vertical float offset computed by the last Step
	Color            Color
}

// Params holds the scene constants.
type Params struct {
	ConstrainedWidth int
	StarsFull        int
	StarsConstrained int
	ShapesFull       int

	Spread    float64 // logical plane edge length, stars live in ±Spread/2
	MaxDepth  float64
	DecayRate float64 // depth lost per frame
	TimeStep  float64

	ShapeScale     float64
	FloatAmplitude float64
}

// DefaultParams returns the tuning of the subtle preset.
func DefaultParams() Params {
	return Params{
		ConstrainedWidth: 768,
		StarsFull:        700,
		StarsConstrained: 120,
		ShapesFull:       3,
		Spread:           2000,
		MaxDepth:         2000,
		DecayRate:        0.35,
		TimeStep:         0.004,
		ShapeScale:       1,
		FloatAmplitude:   10,
	}
}

// StarCount returns the pool size for a viewport class.
func (p Params) StarCount(c Class) int {
	if c == Constrained {
		return p.StarsConstrained
	}
	return p.StarsFull
}

// ShapeCount returns the shape count for a viewport class.
func (p Params) ShapeCount(c Class) int {
	if c == Constrained {
		return 0
	}
	n := p.ShapesFull
	if n > len(shapeAnchors) {
		n = len(shapeAnchors)
	}
	return n
}

// Shape anchors and colors are fixed per slot.
var shapeAnchors = [][2]float64{
	{0.15, 0.22},
	{0.85, 0.65},
	{0.50, 0.12},
}

var ShapeColors = []Color{
	{R: 56, G: 189, B: 248, A: 0.18}, // cyan
	{R: 168, G: 85, B: 247, A: 0.14}, // purple
	{R: 6, G: 182, B: 212, A: 0.14},  // teal
}

// StarColor is the uniform star tint.
var StarColor = Color{R: 200, G: 220, B: 240, A: 1}
