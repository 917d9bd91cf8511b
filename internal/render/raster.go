package render

import (
	"fmt"
	"image"
	"io"

	"github.com/gogpu/gg"
	"github.com/san-kum/parallaxfield/internal/field"
)

// Raster is an anti-aliased pixel Surface backed by a gg context.
type Raster struct {
	dc           *gg.Context
	LayerOpacity float64
	// Background fills the canvas on Clear; nil clears to transparent.
	Background *field.Color
}

func NewRaster(width, height int, opacity float64, bg *field.Color) (*Raster, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("raster %dx%d: %w", width, height, field.ErrInvalidViewport)
	}
	return &Raster{
		dc:           gg.NewContext(width, height),
		LayerOpacity: opacity,
		Background:   bg,
	}, nil
}

func (r *Raster) Size() field.Viewport {
	return field.Viewport{Width: r.dc.Width(), Height: r.dc.Height()}
}

func (r *Raster) Resize(width, height int) error {
	return r.dc.Resize(width, height)
}

func (r *Raster) Clear() {
	if r.Background == nil {
		r.dc.Clear()
		return
	}
	bg := r.Background
	r.dc.ClearWithColor(gg.RGBA2(float64(bg.R)/255, float64(bg.G)/255, float64(bg.B)/255, bg.A))
}

func (r *Raster) FillCircle(x, y, radius float64, c field.Color) error {
	r.color(c)
	r.dc.DrawCircle(x, y, radius)
	return r.dc.Fill()
}

func (r *Raster) FillRect(x, y, w, h float64, c field.Color) error {
	r.color(c)
	r.dc.DrawRectangle(x, y, w, h)
	return r.dc.Fill()
}

func (r *Raster) StrokeSegments(segs []Segment, width float64, c field.Color) error {
	if len(segs) == 0 {
		return nil
	}
	r.color(c)
	r.dc.SetLineWidth(width)
	for _, s := range segs {
		r.dc.MoveTo(s.X1, s.Y1)
		r.dc.LineTo(s.X2, s.Y2)
	}
	return r.dc.Stroke()
}

func (r *Raster) color(c field.Color) {
	r.dc.SetRGBA(float64(c.R)/255, float64(c.G)/255, float64(c.B)/255, c.A*r.LayerOpacity)
}

func (r *Raster) Image() image.Image { return r.dc.Image() }

func (r *Raster) SavePNG(path string) error { return r.dc.SavePNG(path) }

func (r *Raster) EncodePNG(w io.Writer) error { return r.dc.EncodePNG(w) }

func (r *Raster) Close() error { return r.dc.Close() }
