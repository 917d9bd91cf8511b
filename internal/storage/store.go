package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// Session describes one recorded run.
type Session struct {
	ID         string             `json:"id"`
	Name       string             `json:"name"`
	Preset     string             `json:"preset,omitempty"`
	Timestamp  time.Time          `json:"timestamp"`
	Seed       int64              `json:"seed"`
	Width      int                `json:"width"`
	Height     int                `json:"height"`
	Class      string             `json:"class"`
	Permission string             `json:"permission"`
	Frames     int                `json:"frames"`
	Metrics    map[string]float64 `json:"metrics"`
}

// Frame is one row of frames.csv.
type Frame struct {
	Frame    int
	Time     float64
	TargetX  float64
	TargetY  float64
	TiltX    float64
	TiltY    float64
	Visible  int
	Recycled int
}

var frameHeader = []string{"frame", "time", "target_x", "target_y", "tilt_x", "tilt_y", "visible", "recycled"}

// Save writes metadata.json and frames.csv under a new session directory
// and returns its ID.
func (s *Store) Save(meta Session, frames []Frame) (string, error) {
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}
	name := meta.Name
	if name == "" {
		name = "session"
	}
	meta.ID = fmt.Sprintf("%s_%d", sanitize(name), meta.Timestamp.UnixNano())
	meta.Frames = len(frames)
	runDir := filepath.Join(s.baseDir, meta.ID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, "frames.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	if err := w.Write(frameHeader); err != nil {
		return "", err
	}
	for _, f := range frames {
		row := []string{
			strconv.Itoa(f.Frame),
			formatFloat(f.Time),
			formatFloat(f.TargetX),
			formatFloat(f.TargetY),
			formatFloat(f.TiltX),
			formatFloat(f.TiltY),
			strconv.Itoa(f.Visible),
			strconv.Itoa(f.Recycled),
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}

	return meta.ID, nil
}

// List returns every readable session, oldest first.
func (s *Store) List() ([]Session, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []Session{}, nil
		}
		return nil, err
	}

	sessions := make([]Session, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		sessions = append(sessions, *meta)
	}

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].Timestamp.Before(sessions[j].Timestamp)
	})
	return sessions, nil
}

func (s *Store) Load(id string) (*Session, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, id, "metadata.json"))
	if err != nil {
		return nil, err
	}

	var meta Session
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("session %s: %w", id, err)
	}
	return &meta, nil
}

// LoadFrames reads frames.csv back. Malformed rows are skipped.
func (s *Store) LoadFrames(id string) ([]Frame, error) {
	file, err := os.Open(filepath.Join(s.baseDir, id, "frames.csv"))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []Frame{}, nil
	}

	frames := make([]Frame, 0, len(records)-1)
	for _, rec := range records[1:] {
		if len(rec) != len(frameHeader) {
			continue
		}
		f, err := parseFrame(rec)
		if err != nil {
			continue
		}
		frames = append(frames, f)
	}
	return frames, nil
}

func parseFrame(rec []string) (Frame, error) {
	var (
		f    Frame
		err  error
		errs []error
	)
	ints := func(s string) int {
		v, e := strconv.Atoi(s)
		if e != nil {
			errs = append(errs, e)
		}
		return v
	}
	floats := func(s string) float64 {
		v, e := strconv.ParseFloat(s, 64)
		if e != nil {
			errs = append(errs, e)
		}
		return v
	}

	f.Frame = ints(rec[0])
	f.Time = floats(rec[1])
	f.TargetX = floats(rec[2])
	f.TargetY = floats(rec[3])
	f.TiltX = floats(rec[4])
	f.TiltY = floats(rec[5])
	f.Visible = ints(rec[6])
	f.Recycled = ints(rec[7])
	if len(errs) > 0 {
		err = errs[0]
	}
	return f, err
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

func sanitize(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			return r
		default:
			return '_'
		}
	}, name)
}
