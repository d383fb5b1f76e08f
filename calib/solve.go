package calib

import (
	"errors"
	"fmt"

	xpt2046 "github.com/skand7x/XPT2046"
)

// ErrDegenerate reports reference touches that do not span the panel,
// so no line can be fitted through them.
var ErrDegenerate = errors.New("calib: reference points are degenerate")

// Measurement pairs one raw reading with the screen position the user
// was asked to touch. Screen positions are in unrotated panel pixels;
// run the wizard with rotation 0 and set the rotation afterwards.
type Measurement struct {
	RawX uint16
	RawY uint16

	ScreenX int16
	ScreenY int16
}

// Solve fits calibration bounds to reference touches. Targets are
// normally inset from the corners, where a stylus can actually land,
// so the fitted line is extrapolated out to the panel edges to recover
// the edge raw values the driver wants. At least two measurements with
// distinct positions on each axis are required; extra measurements
// tighten the fit by least squares.
//
// A panel wired so raw values fall as pixels grow comes out as
// inverted bounds, which Validate rejects; swap the panel's X or Y
// wires rather than the bounds.
func Solve(points []Measurement, width, height int16) (xpt2046.Calibration, error) {
	if len(points) < 2 {
		return xpt2046.Calibration{}, fmt.Errorf("%w: need at least 2 points, got %d", ErrDegenerate, len(points))
	}
	if width <= 0 || height <= 0 {
		return xpt2046.Calibration{}, fmt.Errorf("calib: panel %dx%d", width, height)
	}

	xs := make([]fitPoint, len(points))
	ys := make([]fitPoint, len(points))
	for i, p := range points {
		xs[i] = fitPoint{screen: float64(p.ScreenX), raw: float64(p.RawX)}
		ys[i] = fitPoint{screen: float64(p.ScreenY), raw: float64(p.RawY)}
	}

	ax, bx, err := linfit(xs)
	if err != nil {
		return xpt2046.Calibration{}, fmt.Errorf("%w: x axis", ErrDegenerate)
	}
	ay, by, err := linfit(ys)
	if err != nil {
		return xpt2046.Calibration{}, fmt.Errorf("%w: y axis", ErrDegenerate)
	}

	c := xpt2046.Calibration{
		XMin:   clampRaw(bx),
		XMax:   clampRaw(ax*float64(width) + bx),
		YMin:   clampRaw(by),
		YMax:   clampRaw(ay*float64(height) + by),
		Width:  width,
		Height: height,
	}
	if err := c.Validate(); err != nil {
		return xpt2046.Calibration{}, err
	}
	return c, nil
}

type fitPoint struct {
	screen float64 // abscissa
	raw    float64 // ordinate
}

// linfit is a least squares line raw = a*screen + b.
func linfit(pts []fitPoint) (a, b float64, err error) {
	var sx, sy, sxx, sxy float64
	n := float64(len(pts))
	for _, p := range pts {
		sx += p.screen
		sy += p.raw
		sxx += p.screen * p.screen
		sxy += p.screen * p.raw
	}
	det := n*sxx - sx*sx
	if det == 0 {
		return 0, 0, ErrDegenerate
	}
	a = (n*sxy - sx*sy) / det
	b = (sy*sxx - sx*sxy) / det
	return a, b, nil
}

func clampRaw(v float64) uint16 {
	if v < 0 {
		return 0
	}
	if v > 4095 {
		return 4095
	}
	return uint16(v + 0.5)
}
