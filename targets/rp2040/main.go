//go:build rp2040

// Touch streaming firmware for the RP2040. It polls the controller
// and pushes raw samples over USB CDC in touchwire frames; the host
// owns calibration, so this side stays dumb and never changes when a
// panel is recalibrated.
package main

import (
	"machine"
	"time"

	xpt2046 "github.com/skand7x/XPT2046"
	"github.com/skand7x/XPT2046/touchwire"
)

// Wiring for a Pico with the touch half of an ILI9341 module on SPI1.
const (
	pinSCK  = machine.GPIO10
	pinMOSI = machine.GPIO11
	pinMISO = machine.GPIO12
	pinCS   = machine.GPIO13
	pinIRQ  = machine.GPIO14
)

const (
	idlePoll  = 20 * time.Millisecond
	touchPoll = 10 * time.Millisecond
)

func main() {
	if err := machine.Serial.Configure(machine.UARTConfig{}); err != nil {
		fatal()
	}

	spi := machine.SPI1
	err := spi.Configure(machine.SPIConfig{
		Frequency: 2_000_000,
		Mode:      0,
		SCK:       pinSCK,
		SDO:       pinMOSI,
		SDI:       pinMISO,
	})
	if err != nil {
		fatal()
	}

	pinCS.Configure(machine.PinConfig{Mode: machine.PinOutput})
	pinIRQ.Configure(machine.PinConfig{Mode: machine.PinInputPullup})

	touch := xpt2046.New(spi, pinCS, pinIRQ)
	if err := touch.Configure(xpt2046.Config{}); err != nil {
		fatal()
	}

	enc := touchwire.NewEncoder()
	down := false

	for {
		s, ok, err := touch.ReadRawTouch()
		switch {
		case err != nil:
			// A broken transaction drops this sample; the link-level
			// sequence numbers tell the host nothing was sent.
		case ok:
			machine.Serial.Write(enc.Encode(touchwire.Report{X: s.X, Y: s.Y, Z: s.Z}))
			down = true
		case down:
			// Pen-up edge, reported once as a zero pressure frame.
			machine.Serial.Write(enc.Encode(touchwire.Report{}))
			down = false
		}

		if down {
			time.Sleep(touchPoll)
		} else {
			time.Sleep(idlePoll)
		}
	}
}

// fatal parks the firmware blinking the onboard LED; with no console
// this is the only way to report a setup failure.
func fatal() {
	machine.LED.Configure(machine.PinConfig{Mode: machine.PinOutput})
	for {
		machine.LED.High()
		time.Sleep(100 * time.Millisecond)
		machine.LED.Low()
		time.Sleep(100 * time.Millisecond)
	}
}
