package xpt2046

// Control byte for each conversion: start bit, channel select (A2..A0),
// 12-bit mode, differential reference for the touch channels, power down
// with PENIRQ enabled between conversions.
const (
	cmdReadX     = 0x90 // X position
	cmdReadY     = 0xD0 // Y position
	cmdReadZ1    = 0xB0 // Z1 cross-panel measurement
	cmdReadZ2    = 0xC0 // Z2 cross-panel measurement
	cmdReadTemp0 = 0x80 // temperature diode at 1x current
	cmdReadTemp1 = 0xF0 // temperature diode at 91x current
	cmdReadVBat  = 0xA0 // battery monitor behind the 1/4 divider
	cmdReadAux   = 0xE0 // auxiliary input
)

const (
	// adcMax is the largest value the 12-bit converter produces. A
	// decoded value above it means the transfer was corrupt.
	adcMax = 0x0FFF

	// Internal reference used by the auxiliary channels.
	vrefMicrovolts = 2500000
	vrefMillivolts = 2500
)
