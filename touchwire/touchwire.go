// Package touchwire frames raw touch reports for the serial link
// between a sampling microcontroller and the host that owns the
// calibration. The firmware side encodes without allocating; the host
// side scans a byte stream that may arrive torn, duplicated or with
// garbage in between and recovers at the next sync byte.
//
// Frame layout: length, sequence, payload, CRC-16 big endian, sync.
// The length byte covers the whole frame; the CRC covers everything
// before itself. The sequence is a four bit counter with fixed high
// bits so a desynchronized scan cannot mistake payload for a header.
package touchwire

import "errors"

const (
	headerSize  = 2
	trailerSize = 3

	// FrameMin and FrameMax bound the length byte of a valid frame.
	FrameMin = headerSize + trailerSize
	FrameMax = 64

	// Sync terminates every frame and is the resync anchor.
	Sync = 0x7E

	seqMask = 0x0F
	seqHigh = 0x10
)

// Report payload identifiers.
const (
	reportTouch = 0x01
)

// ErrOverflow reports that the decoder's input buffer is full because
// frames are arriving faster than they are drained.
var ErrOverflow = errors.New("touchwire: input buffer overflow")

// Report is one raw sample triple as measured by the controller.
// Calibration happens on the receiving side, so the values are
// converter counts, not pixels. A zero Z reports pen release.
type Report struct {
	X uint16
	Y uint16
	Z uint16
}

// Released reports whether this frame signals the pen lifting.
func (r Report) Released() bool {
	return r.Z == 0
}

// CRC16 is the frame checksum, fed length byte first.
func CRC16(data []byte) uint16 {
	crc := uint16(0xFFFF)
	for _, b := range data {
		b ^= uint8(crc)
		b ^= b << 4
		b16 := uint16(b)
		crc = (b16<<8 | crc>>8) ^ (b16 >> 4) ^ (b16 << 3)
	}
	return crc
}

// Encoder frames reports into an internal fixed buffer, one frame at a
// time. The zero value is not usable; call NewEncoder.
type Encoder struct {
	seq uint8
	buf [FrameMax]byte
}

// NewEncoder returns an encoder starting at the initial sequence
// number a fresh decoder expects.
func NewEncoder() *Encoder {
	return &Encoder{seq: seqHigh}
}

// Encode frames one report and returns the framed bytes, which stay
// valid until the next call.
func (e *Encoder) Encode(r Report) []byte {
	b := e.buf[:0]
	b = append(b, 0, e.seq)
	b = appendVLQ(b, reportTouch)
	b = appendVLQ(b, uint32(r.X))
	b = appendVLQ(b, uint32(r.Y))
	b = appendVLQ(b, uint32(r.Z))
	b[0] = byte(len(b) + trailerSize)
	crc := CRC16(b)
	b = append(b, byte(crc>>8), byte(crc), Sync)
	e.seq = (e.seq+1)&seqMask | seqHigh
	return b
}

// Stats counts what the decoder saw. Gaps are frames the sequence
// numbers say were lost in transit, not decoding failures.
type Stats struct {
	Frames    uint32
	CRCErrors uint32
	Resyncs   uint32
	SeqGaps   uint32
	Unknown   uint32
}

// Decoder reassembles reports from a torn byte stream. Feed it with
// Write, drain it with Next. Not safe for concurrent use.
type Decoder struct {
	fifo    FIFO
	synced  bool
	lastSeq uint8
	haveSeq bool

	Stats Stats
}

// NewDecoder returns a decoder that starts in the synchronized state,
// so a stream beginning mid-frame costs one resync.
func NewDecoder() *Decoder {
	d := &Decoder{synced: true}
	d.fifo.Init(512)
	return d
}

// Write feeds raw stream bytes into the decoder. It implements
// io.Writer; a short write means the internal buffer overflowed and
// the stream will resync on the next frame boundary.
func (d *Decoder) Write(p []byte) (int, error) {
	n := d.fifo.Write(p)
	if n < len(p) {
		return n, ErrOverflow
	}
	return n, nil
}

// Next scans buffered input for the next valid frame. ok is false when
// no complete frame is buffered; corrupt input is skipped silently and
// accounted in Stats.
func (d *Decoder) Next() (Report, bool) {
	data := d.fifo.Data()
	var (
		r     Report
		found bool
	)

	for len(data) > 0 && !found {
		if !d.synced {
			// Drop everything up to and including the next sync byte.
			skip := -1
			for i, b := range data {
				if b == Sync {
					skip = i
					break
				}
			}
			if skip < 0 {
				data = nil
				break
			}
			data = data[skip+1:]
			d.synced = true
			continue
		}

		if data[0] == Sync {
			data = data[1:]
			continue
		}
		if len(data) < FrameMin {
			break
		}

		frameLen := int(data[0])
		if frameLen < FrameMin || frameLen > FrameMax {
			d.desync()
			continue
		}
		if data[1]&^seqMask != seqHigh {
			d.desync()
			continue
		}
		if len(data) < frameLen {
			break
		}
		if data[frameLen-1] != Sync {
			d.desync()
			continue
		}

		want := uint16(data[frameLen-3])<<8 | uint16(data[frameLen-2])
		if CRC16(data[:frameLen-trailerSize]) != want {
			d.Stats.CRCErrors++
			d.desync()
			continue
		}

		seq := data[1] & seqMask
		if d.haveSeq && seq != (d.lastSeq+1)&seqMask {
			d.Stats.SeqGaps++
		}
		d.lastSeq = seq
		d.haveSeq = true

		payload := data[headerSize : frameLen-trailerSize]
		data = data[frameLen:]
		d.Stats.Frames++

		if rep, ok := decodeReport(payload); ok {
			r = rep
			found = true
		} else {
			d.Stats.Unknown++
		}
	}

	consumed := d.fifo.Available() - len(data)
	if consumed > 0 {
		d.fifo.Pop(consumed)
	}
	return r, found
}

// Reset drops buffered input and sequence history, for use after the
// port reopens.
func (d *Decoder) Reset() {
	d.fifo.Reset()
	d.synced = true
	d.haveSeq = false
}

func (d *Decoder) desync() {
	d.synced = false
	d.Stats.Resyncs++
}

func decodeReport(payload []byte) (Report, bool) {
	id, n, err := decodeVLQ(payload)
	if err != nil || id != reportTouch {
		return Report{}, false
	}
	payload = payload[n:]

	var vals [3]uint16
	for i := range vals {
		v, n, err := decodeVLQ(payload)
		if err != nil || v > 0xFFFF {
			return Report{}, false
		}
		vals[i] = uint16(v)
		payload = payload[n:]
	}
	if len(payload) != 0 {
		return Report{}, false
	}
	return Report{X: vals[0], Y: vals[1], Z: vals[2]}, true
}
