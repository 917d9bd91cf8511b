package render

import "github.com/san-kum/parallaxfield/internal/field"

type CommandKind int

const (
	CmdCircle CommandKind = iota
	CmdRect
	CmdSegments
)

// Command is one recorded drawing call.
type Command struct {
	Kind       CommandKind
	X, Y, W, H float64 // rect origin and size, or circle center with W = radius
	Segments   []Segment
	LineWidth  float64
	Color      field.Color
}

// Recorder is a Surface that keeps the commands of the current frame.
type Recorder struct {
	vp       field.Viewport
	Commands []Command
	Clears   int
	Resizes  int
}

func NewRecorder(width, height int) *Recorder {
	return &Recorder{vp: field.Viewport{Width: width, Height: height}}
}

func (r *Recorder) Size() field.Viewport { return r.vp }

func (r *Recorder) Resize(width, height int) error {
	r.vp = field.Viewport{Width: width, Height: height}
	r.Resizes++
	return nil
}

func (r *Recorder) Clear() {
	r.Commands = r.Commands[:0]
	r.Clears++
}

func (r *Recorder) FillCircle(x, y, radius float64, c field.Color) error {
	r.Commands = append(r.Commands, Command{Kind: CmdCircle, X: x, Y: y, W: radius, Color: c})
	return nil
}

func (r *Recorder) FillRect(x, y, w, h float64, c field.Color) error {
	r.Commands = append(r.Commands, Command{Kind: CmdRect, X: x, Y: y, W: w, H: h, Color: c})
	return nil
}

func (r *Recorder) StrokeSegments(segs []Segment, width float64, c field.Color) error {
	cp := make([]Segment, len(segs))
	copy(cp, segs)
	r.Commands = append(r.Commands, Command{Kind: CmdSegments, Segments: cp, LineWidth: width, Color: c})
	return nil
}

// Count returns how many commands of kind k were recorded this frame.
func (r *Recorder) Count(k CommandKind) int {
	n := 0
	for _, c := range r.Commands {
		if c.Kind == k {
			n++
		}
	}
	return n
}
