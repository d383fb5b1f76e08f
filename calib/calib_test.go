package calib

import (
	"errors"
	"path/filepath"
	"testing"

	"tinygo.org/x/drivers"

	xpt2046 "github.com/skand7x/XPT2046"
)

// Reference touches generated from an ideal panel with known bounds,
// at targets inset from the corners the way a wizard would place them.
func idealMeasurements() []Measurement {
	// x: raw = 100 + 7.75*screen, y: raw = 120 + 5.5*screen.
	return []Measurement{
		{RawX: 255, RawY: 285, ScreenX: 20, ScreenY: 30},
		{RawX: 1030, RawY: 1000, ScreenX: 120, ScreenY: 160},
		{RawX: 1805, RawY: 1715, ScreenX: 220, ScreenY: 290},
	}
}

func TestSolveRecoversBounds(t *testing.T) {
	c, err := Solve(idealMeasurements(), 240, 320)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}

	want := xpt2046.Calibration{
		XMin: 100, XMax: 1960,
		YMin: 120, YMax: 1880,
		Width: 240, Height: 320,
	}
	if c != want {
		t.Errorf("Solve = %+v, want %+v", c, want)
	}
}

func TestSolveDegenerate(t *testing.T) {
	tests := []struct {
		name   string
		points []Measurement
	}{
		{"too few", idealMeasurements()[:1]},
		{"same x target", []Measurement{
			{RawX: 255, RawY: 285, ScreenX: 120, ScreenY: 30},
			{RawX: 1805, RawY: 1715, ScreenX: 120, ScreenY: 290},
		}},
		{"same y target", []Measurement{
			{RawX: 255, RawY: 285, ScreenX: 20, ScreenY: 160},
			{RawX: 1805, RawY: 1715, ScreenX: 220, ScreenY: 160},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Solve(tt.points, 240, 320); !errors.Is(err, ErrDegenerate) {
				t.Errorf("Solve err = %v, want ErrDegenerate", err)
			}
		})
	}
}

func TestSolveInvertedPanel(t *testing.T) {
	// Raw falls as pixels grow, as with swapped panel wires. The fit
	// succeeds but the bounds come out inverted and must be rejected.
	points := []Measurement{
		{RawX: 1805, RawY: 1715, ScreenX: 20, ScreenY: 30},
		{RawX: 1030, RawY: 1000, ScreenX: 120, ScreenY: 160},
		{RawX: 255, RawY: 285, ScreenX: 220, ScreenY: 290},
	}
	if _, err := Solve(points, 240, 320); !errors.Is(err, xpt2046.ErrBadCalibration) {
		t.Errorf("Solve err = %v, want ErrBadCalibration", err)
	}
}

func TestProfileRoundTrip(t *testing.T) {
	want := xpt2046.Calibration{
		XMin: 150, XMax: 1900,
		YMin: 180, YMax: 1850,
		Width: 320, Height: 480,
		Rotation: drivers.Rotation270,
	}

	path := filepath.Join(t.TempDir(), "touch.json")
	if err := Save(path, want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != want {
		t.Errorf("round trip = %+v, want %+v", got, want)
	}
}

func TestParseDefaults(t *testing.T) {
	c, err := Parse([]byte(`{"rotation": 90}`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	def := xpt2046.DefaultCalibration()
	def.Rotation = drivers.Rotation90
	if c != def {
		t.Errorf("Parse = %+v, want defaults with rotation 90", c)
	}
}

func TestParseRejectsBadProfiles(t *testing.T) {
	tests := []struct {
		name string
		json string
	}{
		{"inverted x bounds", `{"x_min": 2000, "x_max": 100}`},
		{"odd rotation", `{"rotation": 45}`},
		{"not json", `{"x_min": `},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.json)); err == nil {
				t.Error("Parse accepted a bad profile")
			}
		})
	}
}
