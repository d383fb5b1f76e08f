package touchwire

import "errors"

// ErrTruncated reports a VLQ cut off mid-value.
var ErrTruncated = errors.New("touchwire: truncated integer")

// Variable length quantity, seven value bits per byte, high bit set on
// all but the last byte. Values are emitted most significant group
// first and the first byte is sign extended on decode, so the encoding
// is self terminating for the whole 32 bit range.

// appendVLQ appends the encoding of v to dst.
func appendVLQ(dst []byte, v uint32) []byte {
	s := int32(v)
	if !(-(1<<26) <= s && s < (3<<26)) {
		dst = append(dst, byte((s>>28)&0x7F)|0x80)
	}
	if !(-(1<<19) <= s && s < (3<<19)) {
		dst = append(dst, byte((s>>21)&0x7F)|0x80)
	}
	if !(-(1<<12) <= s && s < (3<<12)) {
		dst = append(dst, byte((s>>14)&0x7F)|0x80)
	}
	if !(-(1<<5) <= s && s < (3<<5)) {
		dst = append(dst, byte((s>>7)&0x7F)|0x80)
	}
	return append(dst, byte(s&0x7F))
}

// decodeVLQ decodes one value from the front of data and returns it
// with the number of bytes consumed.
func decodeVLQ(data []byte) (uint32, int, error) {
	if len(data) == 0 {
		return 0, 0, ErrTruncated
	}
	c := uint32(data[0])
	n := 1
	v := c & 0x7F
	if c&0x60 == 0x60 {
		v |= ^uint32(0x1F)
	}
	for c&0x80 != 0 {
		if n >= len(data) {
			return 0, 0, ErrTruncated
		}
		c = uint32(data[n])
		n++
		v = v<<7 | c&0x7F
	}
	return v, n, nil
}
