package xpt2046

import (
	"fmt"

	"tinygo.org/x/drivers"
)

// Point is a calibrated touch position in panel pixels.
type Point struct {
	X int16
	Y int16
}

// Calibration maps raw converter readings onto a panel. XMin..XMax and
// YMin..YMax are the converter values observed at the panel edges,
// Width and Height the unrotated panel dimensions in pixels, Rotation
// the transform matching the display orientation.
//
// A profile is replaced wholesale, never field by field, so a reading
// is always mapped through one consistent set of bounds.
type Calibration struct {
	XMin uint16
	XMax uint16
	YMin uint16
	YMax uint16

	Width  int16
	Height int16

	Rotation drivers.Rotation
}

// DefaultCalibration returns bounds that fit the common 2.4" 240x320
// ILI9341 modules well enough to be usable before a real calibration.
func DefaultCalibration() Calibration {
	return Calibration{
		XMin:   100,
		XMax:   1962,
		YMin:   100,
		YMax:   1900,
		Width:  240,
		Height: 320,
	}
}

// withDefaults fills zero fields from DefaultCalibration. A calibrated
// panel never reaches the converter extremes, so zero is free to mean
// "unset" here.
func (c Calibration) withDefaults() Calibration {
	def := DefaultCalibration()
	if c.XMin == 0 {
		c.XMin = def.XMin
	}
	if c.XMax == 0 {
		c.XMax = def.XMax
	}
	if c.YMin == 0 {
		c.YMin = def.YMin
	}
	if c.YMax == 0 {
		c.YMax = def.YMax
	}
	if c.Width == 0 {
		c.Width = def.Width
	}
	if c.Height == 0 {
		c.Height = def.Height
	}
	return c
}

// Validate checks the profile for inverted bounds and an empty panel.
// Configure and SetCalibration run it; calibration tools can run it
// before installing a computed profile.
func (c Calibration) Validate() error {
	if c.XMin >= c.XMax {
		return fmt.Errorf("%w: x bounds %d..%d", ErrBadCalibration, c.XMin, c.XMax)
	}
	if c.YMin >= c.YMax {
		return fmt.Errorf("%w: y bounds %d..%d", ErrBadCalibration, c.YMin, c.YMax)
	}
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("%w: panel %dx%d", ErrBadCalibration, c.Width, c.Height)
	}
	return nil
}

// Map converts a stable raw reading to a panel coordinate. The linear
// step clamps to the panel bounds, so a touch just outside the
// calibrated window lands on the nearest edge pixel instead of being
// rejected. Callers that care about genuine edge touches cannot tell
// them apart from clamped ones.
func (c Calibration) Map(rawX, rawY uint16) Point {
	x := scale(rawX, c.XMin, c.XMax, c.Width)
	y := scale(rawY, c.YMin, c.YMax, c.Height)
	x, y = c.rotate(x, y)
	return Point{X: x, Y: y}
}

// rotate permutes a calibrated coordinate into the display orientation.
// Width and Height stay the unrotated dimensions.
func (c Calibration) rotate(x, y int16) (int16, int16) {
	switch c.Rotation {
	case drivers.Rotation90:
		x, y = y, c.Width-1-x
	case drivers.Rotation180:
		x, y = c.Width-1-x, c.Height-1-y
	case drivers.Rotation270:
		x, y = c.Height-1-y, x
	}
	return x, y
}

// scale maps raw through lo..hi onto 0..size-1.
func scale(raw, lo, hi uint16, size int16) int16 {
	v := (int(raw) - int(lo)) * int(size) / (int(hi) - int(lo))
	if v < 0 {
		v = 0
	}
	if v >= int(size) {
		v = int(size) - 1
	}
	return int16(v)
}
