package input

import (
	"math"
	"testing"

	"github.com/san-kum/parallaxfield/internal/field"
)

var vp = field.Viewport{Width: 1000, Height: 800}

func ptr(v float64) *float64 { return &v }

func TestPointer(t *testing.T) {
	tests := []struct {
		name   string
		x, y   float64
		tx, ty float64
	}{
		{"center", 500, 400, 0, 0},
		{"top left", 0, 0, -1, -1},
		{"bottom right", 1000, 800, 1, 1},
		{"quarter", 750, 200, 0.5, -0.5},
		{"outside clamps", 5000, -900, 1, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewFusion(DefaultParams())
			f.Pointer(tt.x, tt.y, vp)
			x, y := f.Target()
			if math.Abs(x-tt.tx) > 1e-9 || math.Abs(y-tt.ty) > 1e-9 {
				t.Errorf("expected (%.2f, %.2f), got (%.2f, %.2f)", tt.tx, tt.ty, x, y)
			}
		})
	}
}

func TestPointerZeroViewport(t *testing.T) {
	f := NewFusion(DefaultParams())
	f.Pointer(10, 10, field.Viewport{})
	if x, y := f.Target(); x != 0 || y != 0 {
		t.Errorf("expected zero target on empty viewport, got (%f, %f)", x, y)
	}
}

func TestTouchDrag(t *testing.T) {
	f := NewFusion(DefaultParams())

	f.TouchMove(900, 900, vp)
	if x, y := f.Target(); x != 0 || y != 0 {
		t.Fatal("move without touch must be ignored")
	}

	f.TouchStart(100, 100)
	f.TouchMove(350, 0, vp)
	x, y := f.Target()
	if math.Abs(x-0.5) > 1e-9 || math.Abs(y+0.25) > 1e-9 {
		t.Errorf("expected (0.5, -0.25), got (%.3f, %.3f)", x, y)
	}

	f.TouchMove(100+2000, 100, vp)
	if x, _ := f.Target(); x != 1 {
		t.Errorf("expected clamp to 1, got %f", x)
	}
}

func TestTouchEndRecenters(t *testing.T) {
	f := NewFusion(DefaultParams())
	f.TouchStart(0, 0)
	f.TouchMove(400, 300, vp)
	for i := 0; i < 20; i++ {
		f.Smooth()
	}

	f.TouchEnd()

	if x, y := f.Target(); x != 0 || y != 0 {
		t.Errorf("expected target exactly 0 after touch end, got (%f, %f)", x, y)
	}
	if f.Touching() {
		t.Error("touch should be released")
	}
	f.TouchMove(900, 900, vp)
	if x, y := f.Target(); x != 0 || y != 0 {
		t.Error("move after touch end must be ignored")
	}
}

func TestOrientation(t *testing.T) {
	tests := []struct {
		name        string
		gamma, beta float64
		tx, ty      float64
	}{
		{"natural hold", 0, 45, 0, 0},
		{"tilt right", 22.5, 45, 0.5, 0},
		{"flat on table", 0, 0, 0, -1},
		{"upright", 0, 90, 0, 1},
		{"extreme clamps", -90, 180, -1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewFusion(DefaultParams())
			if !f.Orientation(Reading{Gamma: ptr(tt.gamma), Beta: ptr(tt.beta)}) {
				t.Fatal("reading rejected")
			}
			x, y := f.Target()
			if math.Abs(x-tt.tx) > 1e-9 || math.Abs(y-tt.ty) > 1e-9 {
				t.Errorf("expected (%.2f, %.2f), got (%.2f, %.2f)", tt.tx, tt.ty, x, y)
			}
		})
	}
}

func TestOrientationMalformedKeepsTarget(t *testing.T) {
	f := NewFusion(DefaultParams())
	f.Pointer(750, 600, vp)
	wantX, wantY := f.Target()

	bad := []Reading{
		{},
		{Gamma: ptr(10)},
		{Beta: ptr(10)},
		{Gamma: ptr(math.NaN()), Beta: ptr(45)},
		{Gamma: ptr(0), Beta: ptr(math.Inf(1))},
	}
	for i, r := range bad {
		if f.Orientation(r) {
			t.Errorf("reading %d should be rejected", i)
		}
	}

	if x, y := f.Target(); x != wantX || y != wantY {
		t.Errorf("target changed by malformed readings: (%f, %f)", x, y)
	}
}

func TestSmoothConverges(t *testing.T) {
	f := NewFusion(DefaultParams())
	f.Pointer(1000, 0, vp)

	f.Smooth()
	x, y := f.Current()
	if math.Abs(x-0.05) > 1e-12 || math.Abs(y+0.05) > 1e-12 {
		t.Fatalf("first frame should cover 5%%, got (%f, %f)", x, y)
	}

	// remaining distance after n frames is 0.95^n
	for i := 1; i < 200; i++ {
		f.Smooth()
	}
	x, y = f.Current()
	eps := math.Pow(0.95, 200) + 1e-12
	if math.Abs(1-x) > eps || math.Abs(-1-y) > eps {
		t.Errorf("expected convergence within %g, got (%f, %f)", eps, x, y)
	}
}

func TestSmoothNeverOvershoots(t *testing.T) {
	f := NewFusion(DefaultParams())
	f.Pointer(1000, 800, vp)
	prev := 0.0
	for i := 0; i < 500; i++ {
		f.Smooth()
		x, _ := f.Current()
		if x < prev || x > 1 {
			t.Fatalf("frame %d: current %f not monotonic toward target", i, x)
		}
		prev = x
	}
}

func TestLastWriterWins(t *testing.T) {
	f := NewFusion(DefaultParams())
	f.Orientation(Reading{Gamma: ptr(45), Beta: ptr(90)})
	f.Pointer(500, 400, vp)
	if x, y := f.Target(); x != 0 || y != 0 {
		t.Errorf("pointer should overwrite orientation, got (%f, %f)", x, y)
	}
}
