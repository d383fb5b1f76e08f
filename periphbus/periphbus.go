// Package periphbus adapts periph.io bus and pin objects to the
// driver's collaborator interfaces, so the same touch driver that runs
// under TinyGo runs against a Raspberry Pi SPI header under a stock
// Linux kernel.
//
// Chip select is driven by the driver itself through a plain GPIO, so
// the SPI port is connected with hardware chip select disabled.
package periphbus

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

// Bus wraps a connected periph SPI port as a full-duplex exchange bus.
type Bus struct {
	conn spi.Conn
}

// NewBus wraps an established connection. The connection should be
// mode 0 and no faster than the 2 MHz the converter can track.
func NewBus(conn spi.Conn) *Bus {
	return &Bus{conn: conn}
}

// Tx exchanges w and r. periph wants equal lengths, so the shorter
// side is padded into a scratch copy; touch transactions are three
// bytes, which keeps that cheap.
func (b *Bus) Tx(w, r []byte) error {
	n := len(w)
	if len(r) > n {
		n = len(r)
	}
	wb := make([]byte, n)
	rb := make([]byte, n)
	copy(wb, w)
	if err := b.conn.Tx(wb, rb); err != nil {
		return err
	}
	copy(r, rb)
	return nil
}

// Transfer exchanges a single byte.
func (b *Bus) Transfer(c byte) (byte, error) {
	var r [1]byte
	if err := b.conn.Tx([]byte{c}, r[:]); err != nil {
		return 0, err
	}
	return r[0], nil
}

// OutPin adapts a periph output to the driver's chip select interface.
type OutPin struct {
	pin gpio.PinOut
}

func (p OutPin) Set(high bool) {
	// The driver has nowhere to take a level error; a failing GPIO
	// character device surfaces on the next transfer anyway.
	_ = p.pin.Out(gpio.Level(high))
}

// InPin adapts a periph input to the driver's interrupt interface.
type InPin struct {
	pin gpio.PinIn
}

func (p InPin) Get() bool {
	return bool(p.pin.Read())
}

// Conn is an opened SPI port plus the pins the driver needs.
type Conn struct {
	Bus *Bus
	CS  OutPin
	IRQ *InPin // nil when no interrupt pin was requested

	port spi.PortCloser
}

// Open initializes the host, opens the named SPI port and looks up the
// pins. spiDev is a spireg name like "/dev/spidev0.1" or "SPI0.1";
// csName and irqName are gpioreg names like "GPIO7". An empty irqName
// skips the interrupt pin.
func Open(spiDev, csName, irqName string) (*Conn, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periphbus: host init: %w", err)
	}

	port, err := spireg.Open(spiDev)
	if err != nil {
		return nil, fmt.Errorf("periphbus: open %s: %w", spiDev, err)
	}
	conn, err := port.Connect(2*physic.MegaHertz, spi.Mode0|spi.NoCS, 8)
	if err != nil {
		port.Close()
		return nil, fmt.Errorf("periphbus: connect %s: %w", spiDev, err)
	}

	cs := gpioreg.ByName(csName)
	if cs == nil {
		port.Close()
		return nil, fmt.Errorf("periphbus: no pin named %q", csName)
	}
	if err := cs.Out(gpio.High); err != nil {
		port.Close()
		return nil, fmt.Errorf("periphbus: cs %s: %w", csName, err)
	}

	c := &Conn{
		Bus:  NewBus(conn),
		CS:   OutPin{pin: cs},
		port: port,
	}

	if irqName != "" {
		irq := gpioreg.ByName(irqName)
		if irq == nil {
			port.Close()
			return nil, fmt.Errorf("periphbus: no pin named %q", irqName)
		}
		if err := irq.In(gpio.PullUp, gpio.NoEdge); err != nil {
			port.Close()
			return nil, fmt.Errorf("periphbus: irq %s: %w", irqName, err)
		}
		c.IRQ = &InPin{pin: irq}
	}

	return c, nil
}

// Close releases the SPI port. Pins stay as they are.
func (c *Conn) Close() error {
	return c.port.Close()
}
