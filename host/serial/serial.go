// Package serial opens the port a touch-sampling microcontroller
// streams its reports over. The Port interface keeps the stream reader
// off the concrete implementation, so tests feed it pipes and a wasm
// build could feed it WebSerial.
package serial

import (
	"io"
)

// Port is an open serial connection.
type Port interface {
	io.ReadWriteCloser

	// Flush pushes any buffered output to the device.
	Flush() error
}

// Config holds port parameters.
type Config struct {
	// Device is the port path, "/dev/ttyACM0" or "COM3".
	Device string

	// Baud is the line rate. USB CDC devices ignore it.
	Baud int

	// ReadTimeout in milliseconds, zero for blocking reads.
	ReadTimeout int
}

// DefaultConfig returns the configuration the reference firmware
// expects: a USB CDC port where the baud rate is a formality.
func DefaultConfig(device string) *Config {
	return &Config{
		Device:      device,
		Baud:        115200,
		ReadTimeout: 100,
	}
}
