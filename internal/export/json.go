package export

import (
	"encoding/json"
	"io"

	"github.com/san-kum/parallaxfield/internal/storage"
)

// SessionData is the JSON export of a stored session.
type SessionData struct {
	storage.Session
	Steps    int         `json:"steps"`
	Times    []float64   `json:"times"`
	Targets  [][]float64 `json:"targets"`
	Tilts    [][]float64 `json:"tilts"`
	Visible  []int       `json:"visible"`
	Recycled []int       `json:"recycled"`
}

// SessionJSON writes meta and its frames as indented JSON.
func SessionJSON(w io.Writer, meta storage.Session, frames []storage.Frame) error {
	data := SessionData{
		Session:  meta,
		Steps:    len(frames),
		Times:    make([]float64, len(frames)),
		Targets:  make([][]float64, len(frames)),
		Tilts:    make([][]float64, len(frames)),
		Visible:  make([]int, len(frames)),
		Recycled: make([]int, len(frames)),
	}

	for i, f := range frames {
		data.Times[i] = f.Time
		data.Targets[i] = []float64{f.TargetX, f.TargetY}
		data.Tilts[i] = []float64{f.TiltX, f.TiltY}
		data.Visible[i] = f.Visible
		data.Recycled[i] = f.Recycled
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
