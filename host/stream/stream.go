// Package stream turns a serial port carrying touchwire frames into a
// channel of decoded reports. One background goroutine owns the port
// and the decoder; everything else talks to it through channels, so
// the reader needs no locking on the hot path.
package stream

import (
	"io"
	"sync"
	"time"

	"github.com/skand7x/XPT2046/touchwire"
)

// Reader drains a port in the background and delivers reports in
// arrival order. Slow consumers lose the oldest buffered report, not
// the newest: a touch stream is only interesting live.
type Reader struct {
	port    io.ReadCloser
	dec     *touchwire.Decoder
	reports chan touchwire.Report

	mu    sync.Mutex
	stats touchwire.Stats

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// NewReader starts reading from port. The port stays owned by the
// caller until Close, which closes it.
func NewReader(port io.ReadCloser) *Reader {
	r := &Reader{
		port:    port,
		dec:     touchwire.NewDecoder(),
		reports: make(chan touchwire.Report, 16),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go r.readLoop()
	return r
}

// Reports returns the delivery channel. It closes when the port does.
func (r *Reader) Reports() <-chan touchwire.Report {
	return r.reports
}

// Stats returns a snapshot of the link counters.
func (r *Reader) Stats() touchwire.Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats
}

// Close stops the reader and closes the port. Closing the port first
// unblocks a read in flight.
func (r *Reader) Close() error {
	var err error
	r.stopOnce.Do(func() {
		close(r.stop)
		err = r.port.Close()
	})
	<-r.done
	return err
}

func (r *Reader) readLoop() {
	defer close(r.done)
	defer close(r.reports)

	buf := make([]byte, 256)
	for {
		select {
		case <-r.stop:
			return
		default:
		}

		n, err := r.port.Read(buf)
		if n > 0 {
			// A full decoder buffer resolves itself at the next frame
			// boundary, so a short write here is not fatal.
			_, _ = r.dec.Write(buf[:n])
			r.drain()
		}
		if err != nil {
			if err == io.EOF {
				return
			}
			// Timeout-style errors from ports with a read deadline land
			// here too; back off briefly and keep reading.
			select {
			case <-r.stop:
				return
			case <-time.After(10 * time.Millisecond):
			}
		}
	}
}

func (r *Reader) drain() {
	for {
		rep, ok := r.dec.Next()
		r.mu.Lock()
		r.stats = r.dec.Stats
		r.mu.Unlock()
		if !ok {
			return
		}
		select {
		case r.reports <- rep:
		default:
			select {
			case <-r.reports:
			default:
			}
			r.reports <- rep
		}
	}
}
