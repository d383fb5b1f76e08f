package xpt2046

// Auxiliary converter channels. They share the transaction framing
// with the touch channels and assume the internal 2.5 V reference.

// ReadTemperature measures the on-chip diode with the datasheet's
// dual-reading method and returns milli-degrees Celsius. Accuracy is
// around two degrees, good enough for compensation, not for a
// thermometer.
func (d *Device) ReadTemperature() (int32, error) {
	t0, err := d.readChannel(cmdReadTemp0)
	if err != nil {
		return 0, err
	}
	t1, err := d.readChannel(cmdReadTemp1)
	if err != nil {
		return 0, err
	}
	// The second conversion runs the diode at 91x current, which
	// gives T(K) = 2.573 K/mV times the voltage difference.
	uv := (int64(t1) - int64(t0)) * vrefMicrovolts / 4096
	return int32(uv*2573/1000) - 273150, nil
}

// ReadVBat measures the battery input behind its on-chip 1/4 divider
// and returns millivolts at the connector.
func (d *Device) ReadVBat() (int32, error) {
	raw, err := d.readChannel(cmdReadVBat)
	if err != nil {
		return 0, err
	}
	return int32(raw) * 4 * vrefMillivolts / 4096, nil
}

// ReadAux measures the auxiliary input and returns millivolts.
func (d *Device) ReadAux() (int32, error) {
	raw, err := d.readChannel(cmdReadAux)
	if err != nil {
		return 0, err
	}
	return int32(raw) * vrefMillivolts / 4096, nil
}
