package export

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/san-kum/parallaxfield/internal/storage"
)

func TestSessionJSON(t *testing.T) {
	meta := storage.Session{ID: "drift_1", Name: "drift", Width: 1280, Height: 800, Class: "full"}
	frames := []storage.Frame{
		{Frame: 1, Time: 0.004, TargetX: 1, TiltX: 0.05, Visible: 400},
		{Frame: 2, Time: 0.008, TargetX: 1, TiltX: 0.0975, Visible: 401, Recycled: 2},
	}

	var buf bytes.Buffer
	if err := SessionJSON(&buf, meta, frames); err != nil {
		t.Fatal(err)
	}

	var got SessionData
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if got.ID != "drift_1" || got.Steps != 2 {
		t.Errorf("unexpected header %+v", got.Session)
	}
	if got.Tilts[1][0] != 0.0975 || got.Recycled[1] != 2 {
		t.Errorf("unexpected series %+v", got)
	}
}
