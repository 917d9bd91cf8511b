package render

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/parallaxfield/internal/field"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
var pixelMap = [4][2]rune{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const blank = rune(0x2800)

// Braille is a terminal Surface. Each cell holds 2x4 sub-pixels; the
// surface size in pixels is (Cols*2) x (Rows*4). A cell keeps the color of
// its brightest dot.
type Braille struct {
	Cols, Rows int
	Grid       [][]rune
	Alpha      [][]float64
	Tint       [][]field.Color

	// LayerOpacity scales every alpha when rendering.
	LayerOpacity float64
	// Gain lifts faint alphas so they survive the terminal palette.
	Gain float64
	// Cutoff drops dots whose effective alpha is below it.
	Cutoff     float64
	Background field.Color
}

func NewBraille(cols, rows int) *Braille {
	b := &Braille{
		LayerOpacity: 0.65,
		Gain:         1,
		Cutoff:       0.02,
		Background:   field.Color{R: 10, G: 10, B: 10, A: 1},
	}
	b.alloc(cols, rows)
	return b
}

func (b *Braille) alloc(cols, rows int) {
	b.Cols, b.Rows = max(cols, 0), max(rows, 0)
	b.Grid = make([][]rune, b.Rows)
	b.Alpha = make([][]float64, b.Rows)
	b.Tint = make([][]field.Color, b.Rows)
	for i := range b.Grid {
		b.Grid[i] = make([]rune, b.Cols)
		b.Alpha[i] = make([]float64, b.Cols)
		b.Tint[i] = make([]field.Color, b.Cols)
	}
	b.Clear()
}

func (b *Braille) Size() field.Viewport {
	return field.Viewport{Width: b.Cols * 2, Height: b.Rows * 4}
}

// Resize takes pixel dimensions and rounds up to whole cells.
func (b *Braille) Resize(width, height int) error {
	cols, rows := (width+1)/2, (height+3)/4
	if cols == b.Cols && rows == b.Rows {
		return nil
	}
	b.alloc(cols, rows)
	return nil
}

// Clear resets the canvas
func (b *Braille) Clear() {
	for i := range b.Grid {
		for j := range b.Grid[i] {
			b.Grid[i][j] = blank
			b.Alpha[i][j] = 0
		}
	}
}

// Set lights the sub-pixel (x, y) with color c.
func (b *Braille) Set(x, y int, c field.Color) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= b.Cols || row >= b.Rows {
		return
	}
	if c.A*b.LayerOpacity*b.Gain < b.Cutoff {
		return
	}

	b.Grid[row][col] |= pixelMap[y%4][x%2]
	if c.A >= b.Alpha[row][col] {
		b.Alpha[row][col] = c.A
		b.Tint[row][col] = c
	}
}

func (b *Braille) FillCircle(x, y, r float64, c field.Color) error {
	if r < 0.75 {
		b.Set(int(math.Floor(x)), int(math.Floor(y)), c)
		return nil
	}
	x0, x1, y0, y1, ok := b.clip(x-r, x+r, y-r, y+r)
	if !ok {
		return nil
	}
	r2 := r * r
	for py := y0; py <= y1; py++ {
		dy := float64(py) + 0.5 - y
		for px := x0; px <= x1; px++ {
			dx := float64(px) + 0.5 - x
			if dx*dx+dy*dy <= r2 {
				b.Set(px, py, c)
			}
		}
	}
	return nil
}

func (b *Braille) FillRect(x, y, w, h float64, c field.Color) error {
	if w < 1.5 && h < 1.5 {
		b.Set(int(math.Floor(x+w/2)), int(math.Floor(y+h/2)), c)
		return nil
	}
	x0, x1, y0, y1, ok := b.clip(x, x+w, y, y+h)
	if !ok {
		return nil
	}
	for py := y0; py <= y1; py++ {
		for px := x0; px <= x1; px++ {
			b.Set(px, py, c)
		}
	}
	return nil
}

func (b *Braille) StrokeSegments(segs []Segment, _ float64, c field.Color) error {
	for _, s := range segs {
		b.DrawLine(int(math.Round(s.X1)), int(math.Round(s.Y1)), int(math.Round(s.X2)), int(math.Round(s.Y2)), c)
	}
	return nil
}

// clip converts a float box to the sub-pixel range inside the surface.
func (b *Braille) clip(fx0, fx1, fy0, fy1 float64) (int, int, int, int, bool) {
	vp := b.Size()
	x0 := int(math.Max(0, math.Floor(fx0)))
	y0 := int(math.Max(0, math.Floor(fy0)))
	x1 := int(math.Min(float64(vp.Width-1), math.Floor(fx1)))
	y1 := int(math.Min(float64(vp.Height-1), math.Floor(fy1)))
	return x0, x1, y0, y1, x0 <= x1 && y0 <= y1
}

// DrawLine draws a line using Bresenham's algorithm
func (b *Braille) DrawLine(x0, y0, x1, y1 int, c field.Color) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		b.Set(x0, y0, c)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// Lit reports how many cells hold at least one dot.
func (b *Braille) Lit() int {
	n := 0
	for _, row := range b.Grid {
		for _, r := range row {
			if r != blank {
				n++
			}
		}
	}
	return n
}

// String returns the bare dot pattern.
func (b *Braille) String() string {
	var sb strings.Builder
	for _, row := range b.Grid {
		sb.WriteString(string(row) + "\n")
	}
	return sb.String()
}

// Render returns the canvas with each cell tinted over the background.
// Runs of equal color share one style.
func (b *Braille) Render() string {
	var sb strings.Builder
	for y, row := range b.Grid {
		var (
			run     strings.Builder
			current lipgloss.Color
		)
		flush := func() {
			if run.Len() == 0 {
				return
			}
			sb.WriteString(lipgloss.NewStyle().Foreground(current).Render(run.String()))
			run.Reset()
		}
		for x, r := range row {
			col := lipgloss.Color(b.Background.Hex())
			if r != blank {
				col = lipgloss.Color(b.blend(b.Tint[y][x]).Hex())
			}
			if col != current {
				flush()
				current = col
			}
			run.WriteRune(r)
		}
		flush()
		if y < len(b.Grid)-1 {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// blend composites c over the background at its effective alpha.
func (b *Braille) blend(c field.Color) field.Color {
	a := math.Min(1, c.A*b.LayerOpacity*b.Gain)
	mix := func(fg, bg uint8) uint8 {
		return uint8(math.Round(float64(bg) + (float64(fg)-float64(bg))*a))
	}
	return field.Color{
		R: mix(c.R, b.Background.R),
		G: mix(c.G, b.Background.G),
		B: mix(c.B, b.Background.B),
		A: 1,
	}
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
