// Package xpt2046 provides a driver for the XPT2046 resistive touch
// screen controller, the part commonly soldered to ILI9341 display
// modules. It reads the converter over SPI, filters sample bursts into
// one stable reading and maps that through a replaceable calibration
// onto panel coordinates.
//
// The driver issues short blocking transactions and keeps no state
// between readings apart from its configuration. It does not configure
// the bus clock, pin muxing or interrupt controller; callers sharing
// the device or its bus between goroutines must serialize access
// themselves.
//
// Datasheet: https://www.waveshare.com/w/upload/9/98/XPT2046-EN.pdf
package xpt2046

import (
	"errors"
	"fmt"
	"time"

	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/touch"
)

var (
	// ErrBusTransfer reports a failed SPI transaction.
	ErrBusTransfer = errors.New("xpt2046: bus transfer failed")

	// ErrShortSample reports that too few in-range samples survived
	// filtering to produce a stable reading.
	ErrShortSample = errors.New("xpt2046: not enough valid samples")

	// ErrBadCalibration reports inverted calibration bounds or an
	// empty panel.
	ErrBadCalibration = errors.New("xpt2046: invalid calibration")
)

// OutputPin drives the chip select line. machine.Pin satisfies it.
type OutputPin interface {
	Set(high bool)
}

// InputPin reads the PENIRQ line, which the controller drives low
// while the panel is pressed. machine.Pin satisfies it.
type InputPin interface {
	Get() bool
}

// Sample is a stable raw reading straight off the converter: X and Y
// in converter counts plus the derived contact pressure Z.
type Sample struct {
	X uint16
	Y uint16
	Z uint16
}

const (
	defaultSamples    = 3
	defaultZThreshold = 400
)

// Config holds the device configuration applied by Configure. Zero
// fields select their documented defaults.
type Config struct {
	// Calibration for the attached panel. Zero fields fall back to
	// DefaultCalibration.
	Calibration Calibration

	// Samples is the number of conversion rounds folded into one
	// reading, at least 2. Default 3.
	Samples int

	// ZThreshold is the minimum derived pressure counted as a touch.
	// Default 400.
	ZThreshold uint16

	// SampleDelay spaces conversion rounds for panels that need
	// settle time. Default none.
	SampleDelay time.Duration
}

// Device is an XPT2046 touch controller behind a SPI bus.
type Device struct {
	bus drivers.SPI
	cs  OutputPin
	irq InputPin

	cal         Calibration
	samples     int
	zThreshold  uint16
	sampleDelay time.Duration

	// Per-channel burst buffers, reused between readings.
	bx, by, bz1, bz2 []uint16

	tx [3]byte
	rx [3]byte
}

// New creates a device on the given bus. cs frames every transaction
// and must already be configured as an output. irq is the PENIRQ input
// and may be nil, in which case touch detection always goes through
// the bus. No hardware is touched until Configure.
func New(bus drivers.SPI, cs OutputPin, irq InputPin) *Device {
	return &Device{bus: bus, cs: cs, irq: irq}
}

// Configure applies defaults, validates cfg and releases the chip
// select line. Inverted calibration bounds fail here, not on first
// use. Must be called before the first reading.
func (d *Device) Configure(cfg Config) error {
	cal := cfg.Calibration.withDefaults()
	if err := cal.Validate(); err != nil {
		return err
	}
	samples := cfg.Samples
	if samples == 0 {
		samples = defaultSamples
	}
	if samples < 2 {
		return fmt.Errorf("xpt2046: need at least 2 samples per reading, got %d", samples)
	}

	d.cal = cal
	d.samples = samples
	d.zThreshold = cfg.ZThreshold
	if d.zThreshold == 0 {
		d.zThreshold = defaultZThreshold
	}
	d.sampleDelay = cfg.SampleDelay

	d.bx = make([]uint16, samples)
	d.by = make([]uint16, samples)
	d.bz1 = make([]uint16, samples)
	d.bz2 = make([]uint16, samples)

	d.cs.Set(true)
	return nil
}

// SetCalibration swaps in a complete replacement profile, typically
// one computed by a calibration tool. The profile is validated as
// given; on error the previous profile stays active.
func (d *Device) SetCalibration(c Calibration) error {
	if err := c.Validate(); err != nil {
		return err
	}
	d.cal = c
	return nil
}

// Calibration returns the active profile.
func (d *Device) Calibration() Calibration {
	return d.cal
}

// Touched reports whether the panel is pressed. With a PENIRQ pin this
// is a single pin read and no bus traffic; otherwise one lightweight
// pressure measurement. Any bus failure reads as not touched so the
// method is safe in hot poll loops; use ReadRawTouch when failures
// must be visible.
func (d *Device) Touched() bool {
	if d.irq != nil {
		return !d.irq.Get()
	}
	z, err := d.readPressure()
	return err == nil && z >= d.zThreshold
}

// ReadRawTouch takes a filtered raw reading. ok is false while the
// panel is not pressed. Bus and sampling failures are returned, never
// hidden behind a fabricated coordinate.
func (d *Device) ReadRawTouch() (s Sample, ok bool, err error) {
	if d.irq != nil {
		if d.irq.Get() {
			return Sample{}, false, nil
		}
	} else {
		z, err := d.readPressure()
		if err != nil {
			return Sample{}, false, err
		}
		if z < d.zThreshold {
			return Sample{}, false, nil
		}
	}

	for i := 0; i < d.samples; i++ {
		if i > 0 && d.sampleDelay > 0 {
			time.Sleep(d.sampleDelay)
		}
		if d.bx[i], err = d.readChannel(cmdReadX); err != nil {
			return Sample{}, false, err
		}
		if d.by[i], err = d.readChannel(cmdReadY); err != nil {
			return Sample{}, false, err
		}
		if d.bz1[i], err = d.readChannel(cmdReadZ1); err != nil {
			return Sample{}, false, err
		}
		if d.bz2[i], err = d.readChannel(cmdReadZ2); err != nil {
			return Sample{}, false, err
		}
	}

	if s.X, err = stableValue(d.bx); err != nil {
		return Sample{}, false, err
	}
	if s.Y, err = stableValue(d.by); err != nil {
		return Sample{}, false, err
	}
	z1, err := stableValue(d.bz1)
	if err != nil {
		return Sample{}, false, err
	}
	z2, err := stableValue(d.bz2)
	if err != nil {
		return Sample{}, false, err
	}
	s.Z = pressureOf(z1, z2)

	// The finger can lift mid-burst; the stable pressure catches that.
	if s.Z < d.zThreshold {
		return Sample{}, false, nil
	}
	return s, true, nil
}

// ReadTouch takes a reading and maps it through the active calibration.
// ok is false while the panel is not pressed; errors propagate from
// ReadRawTouch.
func (d *Device) ReadTouch() (Point, bool, error) {
	s, ok, err := d.ReadRawTouch()
	if !ok || err != nil {
		return Point{}, false, err
	}
	return d.cal.Map(s.X, s.Y), true, nil
}

// ReadTouchPoint implements touch.Pointer. It returns the zero point
// while the panel is untouched or when the bus misbehaves.
func (d *Device) ReadTouchPoint() touch.Point {
	s, ok, err := d.ReadRawTouch()
	if !ok || err != nil {
		return touch.Point{}
	}
	p := d.cal.Map(s.X, s.Y)
	return touch.Point{X: int(p.X), Y: int(p.Y), Z: int(s.Z)}
}

// readPressure takes one z-only measurement, two transactions instead
// of the eight-plus of a full reading.
func (d *Device) readPressure() (uint16, error) {
	z1, err := d.readChannel(cmdReadZ1)
	if err != nil {
		return 0, err
	}
	z2, err := d.readChannel(cmdReadZ2)
	if err != nil {
		return 0, err
	}
	return pressureOf(z1, z2), nil
}

// readChannel runs one framed conversion: command byte out, two
// response bytes in, chip select held low for the whole frame and
// released on every path out.
func (d *Device) readChannel(cmd byte) (uint16, error) {
	d.tx[0], d.tx[1], d.tx[2] = cmd, 0, 0
	d.cs.Set(false)
	err := d.bus.Tx(d.tx[:], d.rx[:])
	d.cs.Set(true)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrBusTransfer, err)
	}
	// 12 bits left-aligned behind the busy bit; drop the padding.
	return (uint16(d.rx[1])<<8 | uint16(d.rx[2])) >> 3, nil
}
