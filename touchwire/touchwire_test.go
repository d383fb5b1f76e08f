package touchwire

import "testing"

func TestEncodeDecodeRoundTrip(t *testing.T) {
	reports := []Report{
		{X: 0, Y: 0, Z: 0},
		{X: 1, Y: 2, Z: 3},
		{X: 1031, Y: 1000, Z: 612},
		{X: 4095, Y: 4095, Z: 4095},
		{X: 0xFFFF, Y: 0x8000, Z: 0x7FFF},
	}

	enc := NewEncoder()
	dec := NewDecoder()

	for _, want := range reports {
		if _, err := dec.Write(enc.Encode(want)); err != nil {
			t.Fatalf("Write: %v", err)
		}
		got, ok := dec.Next()
		if !ok {
			t.Fatalf("Next() found no frame for %+v", want)
		}
		if got != want {
			t.Errorf("round trip = %+v, want %+v", got, want)
		}
	}

	if dec.Stats.Frames != uint32(len(reports)) {
		t.Errorf("Frames = %d, want %d", dec.Stats.Frames, len(reports))
	}
	if dec.Stats.CRCErrors != 0 || dec.Stats.Resyncs != 0 || dec.Stats.SeqGaps != 0 {
		t.Errorf("clean stream produced error stats: %+v", dec.Stats)
	}
}

func TestDecoderTornFrames(t *testing.T) {
	enc := NewEncoder()
	dec := NewDecoder()
	want := Report{X: 1500, Y: 1600, Z: 700}

	frame := enc.Encode(want)

	// Feed one byte at a time; the report must appear exactly once,
	// on the write that completes the frame.
	seen := 0
	for _, b := range frame {
		if _, err := dec.Write([]byte{b}); err != nil {
			t.Fatalf("Write: %v", err)
		}
		if got, ok := dec.Next(); ok {
			seen++
			if got != want {
				t.Errorf("decoded %+v, want %+v", got, want)
			}
		}
	}
	if seen != 1 {
		t.Fatalf("frame decoded %d times, want 1", seen)
	}
}

func TestDecoderResyncsAfterGarbage(t *testing.T) {
	enc := NewEncoder()
	dec := NewDecoder()

	// Garbage that cannot be a header keeps the scanner hunting for a
	// sync byte without inventing a frame.
	if _, err := dec.Write([]byte{0xDE, 0xAD, 0xBE, 0xEF, 0xAA}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if _, ok := dec.Next(); ok {
		t.Fatal("decoded a report from garbage")
	}

	// Resync consumes through the next sync byte, so the frame that
	// carries it is sacrificed and the one after decodes.
	if _, err := dec.Write(enc.Encode(Report{X: 1, Y: 1, Z: 1})); err != nil {
		t.Fatalf("Write: %v", err)
	}
	want := Report{X: 800, Y: 900, Z: 500}
	if _, err := dec.Write(enc.Encode(want)); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, ok := dec.Next()
	if !ok {
		t.Fatal("no report after resync")
	}
	if got != want {
		t.Errorf("post-resync report = %+v, want %+v", got, want)
	}
	if dec.Stats.Resyncs == 0 {
		t.Error("garbage did not count as a resync")
	}
}

func TestDecoderRejectsCorruptCRC(t *testing.T) {
	enc := NewEncoder()
	dec := NewDecoder()

	frame := enc.Encode(Report{X: 100, Y: 200, Z: 300})
	bad := make([]byte, len(frame))
	copy(bad, frame)
	bad[2] ^= 0x40 // flip a payload bit, CRC no longer matches

	if _, err := dec.Write(bad); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if _, ok := dec.Next(); ok {
		t.Fatal("decoded a report from a corrupt frame")
	}
	if dec.Stats.CRCErrors != 1 {
		t.Errorf("CRCErrors = %d, want 1", dec.Stats.CRCErrors)
	}

	// The stream recovers at the corrupt frame's own sync byte.
	want := Report{X: 101, Y: 201, Z: 301}
	if _, err := dec.Write(enc.Encode(want)); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, ok := dec.Next()
	if !ok {
		t.Fatal("no report after corrupt frame")
	}
	if got != want {
		t.Errorf("report = %+v, want %+v", got, want)
	}
}

func TestDecoderCountsSequenceGaps(t *testing.T) {
	enc := NewEncoder()
	dec := NewDecoder()

	first := enc.Encode(Report{X: 1, Y: 1, Z: 1})
	if _, err := dec.Write(first); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if _, ok := dec.Next(); !ok {
		t.Fatal("first frame not decoded")
	}

	// Drop one frame on the floor, deliver the next.
	_ = enc.Encode(Report{X: 2, Y: 2, Z: 2})
	third := enc.Encode(Report{X: 3, Y: 3, Z: 3})
	if _, err := dec.Write(third); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, ok := dec.Next()
	if !ok {
		t.Fatal("third frame not decoded")
	}
	if got.X != 3 {
		t.Errorf("got %+v, want the third report", got)
	}
	if dec.Stats.SeqGaps != 1 {
		t.Errorf("SeqGaps = %d, want 1", dec.Stats.SeqGaps)
	}
}

func TestReportReleased(t *testing.T) {
	if (Report{X: 10, Y: 10, Z: 500}).Released() {
		t.Error("pressured report counted as released")
	}
	if !(Report{X: 10, Y: 10, Z: 0}).Released() {
		t.Error("zero pressure report not counted as released")
	}
}

func TestCRC16Properties(t *testing.T) {
	if got := CRC16(nil); got != 0xFFFF {
		t.Errorf("CRC16(nil) = %#04x, want 0xFFFF", got)
	}

	a := CRC16([]byte{0x05, 0x10, 0x01})
	b := CRC16([]byte{0x05, 0x10, 0x02})
	if a == b {
		t.Errorf("adjacent inputs collide at %#04x", a)
	}
	if a != CRC16([]byte{0x05, 0x10, 0x01}) {
		t.Error("CRC16 not deterministic")
	}
}
