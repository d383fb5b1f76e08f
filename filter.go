package xpt2046

import "fmt"

// stableValue reduces one channel's burst of raw samples to a single
// value. Out-of-range samples are dropped. With three or more valid
// samples the single minimum and maximum are discarded and the rest
// averaged; a pair is averaged as is. Fewer than two valid samples is
// not enough to trust the burst. The slice is reordered in place.
func stableValue(buf []uint16) (uint16, error) {
	n := 0
	for _, v := range buf {
		if v <= adcMax {
			buf[n] = v
			n++
		}
	}
	if n < 2 {
		return 0, fmt.Errorf("%w: %d of %d in range", ErrShortSample, n, len(buf))
	}
	valid := buf[:n]
	if len(buf) >= 3 && n >= 3 {
		sortSamples(valid)
		valid = valid[1 : n-1]
	}
	sum := 0
	for _, v := range valid {
		sum += int(v)
	}
	return uint16(sum / len(valid)), nil
}

// Insertion sort; bursts are a handful of values and this stays
// allocation free.
func sortSamples(s []uint16) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}

// pressureOf derives contact pressure from the two cross-panel
// measurements. It grows with applied force and sits near zero while
// the panel is open.
func pressureOf(z1, z2 uint16) uint16 {
	z := int(z1) + adcMax - int(z2)
	if z < 0 {
		return 0
	}
	return uint16(z)
}
