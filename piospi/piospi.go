//go:build rp2040

// Package piospi drives an XPT2046-style SPI bus from an RP2040 PIO
// state machine, freeing both hardware SPI blocks for displays or
// flash. Mode 0 only, which is all the touch controller speaks.
package piospi

import (
	"errors"
	"machine"

	rp2pio "github.com/tinygo-org/pio/rp2-pio"
)

// PIO program, one 8-bit mode-0 frame per FIFO word.
//
// Word format: transmit byte in bits 24-31 (shift left, MSB first).
// The received byte comes back through the RX FIFO in bits 0-7.
//
// Program flow:
//  1. Pull a frame from the FIFO
//  2. Load the bit counter
//  3. Per bit: drive MOSI, raise SCK, sample MISO, drop SCK
//  4. Push the assembled response
//
// buildBusProgram assembles the frame shifter using AssemblerV0.
func buildBusProgram() []uint16 {
	asm := rp2pio.AssemblerV0{SidesetBits: 0}
	return []uint16{
		// .wrap_target
		asm.Pull(false, true).Encode(),       // 0: pull block
		asm.Set(rp2pio.SetDestX, 7).Encode(), // 1: set x, 7 (8 bits)
		// bit_loop:
		asm.Out(rp2pio.OutDestPins, 1).Encode(),          // 2: out pins, 1 (MOSI)
		asm.Set(rp2pio.SetDestPins, 1).Delay(1).Encode(), // 3: set pins, 1 [1] (SCK high)
		asm.In(rp2pio.InSrcPins, 1).Encode(),             // 4: in pins, 1 (sample MISO)
		asm.Set(rp2pio.SetDestPins, 0).Encode(),          // 5: set pins, 0 (SCK low)
		asm.Jmp(2, rp2pio.JmpXNZeroDec).Encode(),         // 6: jmp x--, 2
		asm.Push(false, true).Encode(),                   // 7: push block
		// .wrap
	}
}

const busPIOOrigin = 0 // Load at offset 0 for correct jump addresses

// Cycles the program spends per bit, for the clock divider.
const cyclesPerBit = 6

// Config holds the bus parameters.
type Config struct {
	// Frequency is the SCK rate in hertz. Zero selects 1 MHz; the
	// XPT2046 tops out around 2 MHz while converting.
	Frequency uint32
}

// Bus is a PIO-backed SPI master. Create one with New, then Configure.
type Bus struct {
	pio    *rp2pio.PIO
	sm     rp2pio.StateMachine
	sclk   machine.Pin
	mosi   machine.Pin
	miso   machine.Pin
	offset uint8
}

// New claims a state machine on the given PIO block (0 or 1) for the
// three bus lines. The hardware is not touched until Configure.
func New(pioNum, smNum uint8, sclk, mosi, miso machine.Pin) *Bus {
	pioHW := rp2pio.PIO0
	if pioNum != 0 {
		pioHW = rp2pio.PIO1
	}
	return &Bus{
		pio:  pioHW,
		sm:   pioHW.StateMachine(smNum),
		sclk: sclk,
		mosi: mosi,
		miso: miso,
	}
}

// Configure loads the program, binds the pins to the state machine and
// starts it with SCK parked low.
func (b *Bus) Configure(cfg Config) error {
	b.sm.TryClaim()

	program := buildBusProgram()
	offset, err := b.pio.AddProgram(program, busPIOOrigin)
	if err != nil {
		return err
	}
	b.offset = offset

	b.sclk.Configure(machine.PinConfig{Mode: b.pio.PinMode()})
	b.mosi.Configure(machine.PinConfig{Mode: b.pio.PinMode()})
	b.miso.Configure(machine.PinConfig{Mode: machine.PinInput})

	smc := rp2pio.DefaultStateMachineConfig()

	// SET drives the clock, OUT the data line, IN samples the return.
	smc.SetSetPins(b.sclk, 1)
	smc.SetOutPins(b.mosi, 1)
	smc.SetInBasePin(b.miso)

	// Shift left on both sides: MSB-first frames, explicit pull/push.
	smc.SetOutShift(false, false, 8)
	smc.SetInShift(false, false, 8)

	smc.SetWrap(offset+uint8(len(program))-1, offset)

	freq := cfg.Frequency
	if freq == 0 {
		freq = 1000000
	}
	div := machine.CPUFrequency() / (cyclesPerBit * freq)
	if div < 1 {
		div = 1
	}
	if div > 0xFFFF {
		return errors.New("piospi: frequency too low")
	}
	smc.SetClkDivIntFrac(uint16(div), 0)

	b.sm.Init(offset, smc)

	b.sm.SetPindirsConsecutive(b.sclk, 1, true)
	b.sm.SetPindirsConsecutive(b.mosi, 1, true)
	b.sm.SetPindirsConsecutive(b.miso, 1, false)

	// Idle levels before the first frame.
	b.sm.SetPinsConsecutive(b.sclk, 1, false)
	b.sm.SetPinsConsecutive(b.mosi, 1, false)

	b.sm.SetEnabled(true)
	return nil
}

// Tx clocks w out while reading into r, one lockstep frame per byte so
// the FIFOs can never overrun. Buffers may differ in length; the
// longer one decides the transfer size, like machine.SPI.
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
	for b.sm.IsTxFIFOFull() {
		// Drains within one frame time.
	}
	b.sm.TxPut(uint32(tx) << 24)
	for b.sm.IsRxFIFOEmpty() {
	}
	return byte(b.sm.RxGet())
}

// Stop halts the state machine and flushes both FIFOs. Configure
// brings the bus back.
func (b *Bus) Stop() {
	b.sm.SetEnabled(false)
	b.sm.ClearFIFOs()
	b.sm.Restart()
}
