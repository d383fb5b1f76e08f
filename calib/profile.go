// Package calib is the host side of touch calibration: it solves
// panel bounds from reference touches and stores finished profiles as
// JSON files. The driver core only consumes profiles; producing them
// lives here so firmware never carries the float math.
package calib

import (
	"encoding/json"
	"fmt"
	"os"

	"tinygo.org/x/drivers"

	xpt2046 "github.com/skand7x/XPT2046"
)

// Profile is the on-disk form of a calibration. Rotation is stored in
// degrees so the file stays hand-editable. Zero fields take the driver
// defaults when loaded.
type Profile struct {
	XMin uint16 `json:"x_min"`
	XMax uint16 `json:"x_max"`
	YMin uint16 `json:"y_min"`
	YMax uint16 `json:"y_max"`

	Width  int16 `json:"width"`
	Height int16 `json:"height"`

	Rotation int `json:"rotation"`
}

// FromCalibration converts a driver profile to its file form.
func FromCalibration(c xpt2046.Calibration) Profile {
	p := Profile{
		XMin:  c.XMin,
		XMax:  c.XMax,
		YMin:  c.YMin,
		YMax:  c.YMax,
		Width: c.Width, Height: c.Height,
	}
	switch c.Rotation {
	case drivers.Rotation90:
		p.Rotation = 90
	case drivers.Rotation180:
		p.Rotation = 180
	case drivers.Rotation270:
		p.Rotation = 270
	}
	return p
}

// Calibration converts the file form back to a driver profile,
// validating it the same way the driver would.
func (p Profile) Calibration() (xpt2046.Calibration, error) {
	c := xpt2046.Calibration{
		XMin:  p.XMin,
		XMax:  p.XMax,
		YMin:  p.YMin,
		YMax:  p.YMax,
		Width: p.Width, Height: p.Height,
	}
	switch p.Rotation {
	case 0:
		c.Rotation = drivers.Rotation0
	case 90:
		c.Rotation = drivers.Rotation90
	case 180:
		c.Rotation = drivers.Rotation180
	case 270:
		c.Rotation = drivers.Rotation270
	default:
		return xpt2046.Calibration{}, fmt.Errorf("calib: rotation %d not one of 0/90/180/270", p.Rotation)
	}
	if err := c.Validate(); err != nil {
		return xpt2046.Calibration{}, err
	}
	return c, nil
}

// Parse reads a profile from JSON, fills unset fields with the driver
// defaults and validates the result.
func Parse(data []byte) (xpt2046.Calibration, error) {
	var p Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return xpt2046.Calibration{}, fmt.Errorf("calib: %w", err)
	}
	applyDefaults(&p)
	return p.Calibration()
}

// Load reads a profile file.
func Load(path string) (xpt2046.Calibration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return xpt2046.Calibration{}, fmt.Errorf("calib: %w", err)
	}
	return Parse(data)
}

// Save writes a profile file, readable by Load and by humans.
func Save(path string, c xpt2046.Calibration) error {
	data, err := json.MarshalIndent(FromCalibration(c), "", "  ")
	if err != nil {
		return fmt.Errorf("calib: %w", err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("calib: %w", err)
	}
	return nil
}

func applyDefaults(p *Profile) {
	def := xpt2046.DefaultCalibration()
	if p.XMin == 0 {
		p.XMin = def.XMin
	}
	if p.XMax == 0 {
		p.XMax = def.XMax
	}
	if p.YMin == 0 {
		p.YMin = def.YMin
	}
	if p.YMax == 0 {
		p.YMax = def.YMax
	}
	if p.Width == 0 {
		p.Width = def.Width
	}
	if p.Height == 0 {
		p.Height = def.Height
	}
}
