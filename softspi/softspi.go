// Package softspi provides a bit-banged SPI master for boards whose
// hardware SPI peripherals are already spoken for. It implements the
// same bus interface as machine.SPI, so a touch controller wired to
// three spare GPIOs is driven exactly like one on a real bus.
package softspi

import (
	"errors"
	"time"
)

// OutputPin drives a bus line. machine.Pin satisfies it.
type OutputPin interface {
	Set(high bool)
}

// InputPin reads a bus line. machine.Pin satisfies it.
type InputPin interface {
	Get() bool
}

// Config holds the bus parameters.
type Config struct {
	// Mode is the standard SPI mode 0..3. The XPT2046 wants mode 0.
	Mode uint8

	// Frequency is the nominal clock rate in hertz. Zero selects
	// 100 kHz. Bit-banging overhead makes the real rate somewhat
	// lower.
	Frequency uint32
}

// Bus is a software SPI master over three GPIO lines. Pins must
// already be configured for their direction; Configure only sets idle
// levels.
type Bus struct {
	sclk OutputPin
	mosi OutputPin
	miso InputPin

	cpol  bool // clock idle level
	cpha  bool // sample on second edge instead of first
	half  time.Duration
	level bool // current clock level
}

// New creates a bus from a clock and data pin pair plus the return
// line. No pin is touched until Configure.
func New(sclk, mosi OutputPin, miso InputPin) *Bus {
	return &Bus{sclk: sclk, mosi: mosi, miso: miso}
}

// Configure decodes the mode, derives the clock timing and parks the
// lines at their idle levels.
func (b *Bus) Configure(cfg Config) error {
	switch cfg.Mode {
	case 0:
		b.cpol, b.cpha = false, false
	case 1:
		b.cpol, b.cpha = false, true
	case 2:
		b.cpol, b.cpha = true, false
	case 3:
		b.cpol, b.cpha = true, true
	default:
		return errors.New("softspi: invalid mode")
	}

	// Two clock edges per bit, so a half period each.
	if cfg.Frequency > 0 {
		b.half = time.Duration(500000000/cfg.Frequency) * time.Nanosecond
	} else {
		b.half = 5 * time.Microsecond
	}

	b.level = b.cpol
	b.sclk.Set(b.cpol)
	b.mosi.Set(false)
	return nil
}

// Tx clocks w out while reading into r. The buffers may differ in
// length; the longer one decides the transfer size, missing transmit
// bytes are sent as zero and surplus received bytes are dropped. That
// matches what machine.SPI does.
func (b *Bus) Tx(w, r []byte) error {
	n := len(w)
	if len(r) > n {
		n = len(r)
	}
	for i := 0; i < n; i++ {
		var out byte
		if i < len(w) {
			out = w[i]
		}
		in := b.transferByte(out)
		if i < len(r) {
			r[i] = in
		}
	}
	return nil
}

// Transfer exchanges a single byte.
func (b *Bus) Transfer(c byte) (byte, error) {
	return b.transferByte(c), nil
}

func (b *Bus) transferByte(tx byte) byte {
	var rx byte
	for bit := 7; bit >= 0; bit-- {
		b.mosi.Set(tx&(1<<bit) != 0)
		if !b.cpha {
			// Let the data line settle, sample before the edge.
			b.pause()
			if b.miso.Get() {
				rx |= 1 << bit
			}
		}
		b.clockEdge()
		if b.cpha {
			if b.miso.Get() {
				rx |= 1 << bit
			}
		}
		b.pause()
		b.clockEdge()
		b.pause()
	}
	return rx
}

// clockEdge flips the clock line. Two flips per bit bring it back to
// the idle level, so a transfer never leaves the bus mid-phase.
func (b *Bus) clockEdge() {
	b.level = !b.level
	b.sclk.Set(b.level)
}

func (b *Bus) pause() {
	if b.half > 0 {
		time.Sleep(b.half)
	}
}
