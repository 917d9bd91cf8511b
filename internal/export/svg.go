package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/san-kum/parallaxfield/internal/field"
	"github.com/san-kum/parallaxfield/internal/render"
)

// SVG is a render.Surface that builds a vector document of the last frame.
type SVG struct {
	vp           field.Viewport
	LayerOpacity float64
	// Background fills the document; nil leaves it transparent.
	Background *field.Color

	body     strings.Builder
	elements int
}

func NewSVG(width, height int, opacity float64, bg *field.Color) *SVG {
	return &SVG{
		vp:           field.Viewport{Width: width, Height: height},
		LayerOpacity: opacity,
		Background:   bg,
	}
}

func (s *SVG) Size() field.Viewport { return s.vp }

func (s *SVG) Resize(width, height int) error {
	if width < 0 || height < 0 {
		return fmt.Errorf("svg %dx%d: %w", width, height, field.ErrInvalidViewport)
	}
	s.vp = field.Viewport{Width: width, Height: height}
	return nil
}

func (s *SVG) Clear() {
	s.body.Reset()
	s.elements = 0
}

func (s *SVG) FillCircle(x, y, r float64, c field.Color) error {
	fmt.Fprintf(&s.body, `<circle cx="%.2f" cy="%.2f" r="%.2f" fill="%s" fill-opacity="%.3f"/>
`, x, y, r, c.Hex(), c.A)
	s.elements++
	return nil
}

func (s *SVG) FillRect(x, y, w, h float64, c field.Color) error {
	fmt.Fprintf(&s.body, `<rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="%s" fill-opacity="%.3f"/>
`, x, y, w, h, c.Hex(), c.A)
	s.elements++
	return nil
}

func (s *SVG) StrokeSegments(segs []render.Segment, width float64, c field.Color) error {
	if len(segs) == 0 {
		return nil
	}
	s.body.WriteString(`<path fill="none" d="`)
	for i, seg := range segs {
		if i > 0 {
			s.body.WriteByte(' ')
		}
		fmt.Fprintf(&s.body, "M%.2f,%.2f L%.2f,%.2f", seg.X1, seg.Y1, seg.X2, seg.Y2)
	}
	fmt.Fprintf(&s.body, `" stroke="%s" stroke-opacity="%.3f" stroke-width="%.2f"/>
`, c.Hex(), c.A, width)
	s.elements++
	return nil
}

// Elements returns how many shapes the current frame holds.
func (s *SVG) Elements() int { return s.elements }

func (s *SVG) String() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
`, s.vp.Width, s.vp.Height, s.vp.Width, s.vp.Height))
	if s.Background != nil {
		sb.WriteString(fmt.Sprintf(`<rect width="100%%" height="100%%" fill="%s"/>
`, s.Background.Hex()))
	}
	sb.WriteString(fmt.Sprintf("<g opacity=\"%.2f\">\n", s.LayerOpacity))
	sb.WriteString(s.body.String())
	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

func (s *SVG) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, s.String())
	return int64(n), err
}

// BrailleToSVG converts a terminal canvas to dots, one per lit sub-pixel,
// each in its cell tint.
func BrailleToSVG(b *render.Braille, scale float64) string {
	if b == nil {
		return ""
	}

	width := float64(b.Cols) * scale * 2
	height := float64(b.Rows) * scale * 4

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
<g opacity="%.2f">
`, width, height, width, height, b.Background.Hex(), b.LayerOpacity))

	// Braille dot-to-bit mapping
	pixelMap := [4][2]rune{
		{0x01, 0x08},
		{0x02, 0x10},
		{0x04, 0x20},
		{0x40, 0x80},
	}
	dotRadius := scale * 0.4

	for row := 0; row < b.Rows; row++ {
		for col := 0; col < b.Cols; col++ {
			pattern := b.Grid[row][col] - 0x2800
			if pattern <= 0 {
				continue
			}
			tint := b.Tint[row][col]
			baseX := float64(col) * scale * 2
			baseY := float64(row) * scale * 4

			for dy := 0; dy < 4; dy++ {
				for dx := 0; dx < 2; dx++ {
					if pattern&pixelMap[dy][dx] == 0 {
						continue
					}
					cx := baseX + float64(dx)*scale + scale/2
					cy := baseY + float64(dy)*scale + scale/2
					sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s" fill-opacity="%.3f"/>
`, cx, cy, dotRadius, tint.Hex(), tint.A))
				}
			}
		}
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// Point is a tilt sample in [-1, 1].
type Point struct{ X, Y float64 }

// TiltToSVG draws a recorded tilt path over the unit square, with the
// origin at the center and positive y pointing down like the screen.
func TiltToSVG(points []Point, size int, strokeColor string) string {
	if len(points) < 2 {
		return ""
	}

	half := float64(size) / 2
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<path stroke="#333344" stroke-width="1" d="M%.1f,0 L%.1f,%d M0,%.1f L%d,%.1f"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		size, size, size, size, half, half, size, half, size, half, strokeColor))

	for i, p := range points {
		x := half + p.X*half
		y := half + p.Y*half
		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}
