package render

import "github.com/san-kum/parallaxfield/internal/field"

// Segment is a line from (X1, Y1) to (X2, Y2) in surface pixels.
type Segment struct {
	X1, Y1, X2, Y2 float64
}

// Surface is a 2D drawing target sized in pixels.
// Alpha values are layer-local; surfaces apply their own layer opacity.
type Surface interface {
	Size() field.Viewport
	Resize(width, height int) error
	Clear()
	FillCircle(x, y, r float64, c field.Color) error
	FillRect(x, y, w, h float64, c field.Color) error
	StrokeSegments(segs []Segment, width float64, c field.Color) error
}
