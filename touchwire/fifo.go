package touchwire

// FIFO is a fixed-capacity ring of stream bytes. One slot stays unused
// so a full and an empty ring stay distinguishable. Not safe for
// concurrent use.
type FIFO struct {
	buf   []byte
	read  int
	write int
}

// Init sizes the ring. Capacity is usable bytes; one extra slot is
// allocated internally.
func (f *FIFO) Init(capacity int) {
	f.buf = make([]byte, capacity+1)
	f.read, f.write = 0, 0
}

// Write appends as much of data as fits and returns how much that was.
func (f *FIFO) Write(data []byte) int {
	written := 0
	for _, b := range data {
		next := (f.write + 1) % len(f.buf)
		if next == f.read {
			break
		}
		f.buf[f.write] = b
		f.write = next
		written++
	}
	return written
}

// Available returns the number of buffered bytes.
func (f *FIFO) Available() int {
	if f.write >= f.read {
		return f.write - f.read
	}
	return len(f.buf) - f.read + f.write
}

// Data returns the buffered bytes as one slice. When the ring has
// wrapped this copies, which the frame scanner needs for contiguous
// matching; the common unwrapped case is a plain subslice.
func (f *FIFO) Data() []byte {
	if f.read <= f.write {
		return f.buf[f.read:f.write]
	}
	out := make([]byte, f.Available())
	n := copy(out, f.buf[f.read:])
	copy(out[n:], f.buf[:f.write])
	return out
}

// Pop discards up to n bytes from the front.
func (f *FIFO) Pop(n int) {
	for i := 0; i < n && f.read != f.write; i++ {
		f.read = (f.read + 1) % len(f.buf)
	}
}

// Reset empties the ring.
func (f *FIFO) Reset() {
	f.read, f.write = 0, 0
}
