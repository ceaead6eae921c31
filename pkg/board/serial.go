// Package board wires the console engine to its surroundings: the
// serial receive pump, the LED, and the system tick.
package board

import (
	"context"
	"io"
	"time"

	"github.com/golang/glog"
)

// ByteSink receives bytes from the serial pump, one at a time.
// Put reports false when the byte was not accepted.
type ByteSink interface {
	Put(byte) bool
}

// SerialPump moves bytes from a serial stream into the console ring
// buffer. It stands in for the receive interrupt: it is the only
// producer of the ring buffer and never touches command state.
type SerialPump struct {
	Reader io.Reader
	Sink   ByteSink
}

// retryInterval paces the pump while the ring buffer is full. A real
// line delivers bytes at baud rate; an in-memory reader would
// otherwise flood the ring at memory speed and overrun it.
const retryInterval = time.Millisecond

// Run pumps until the reader fails or the context is canceled.
func (p *SerialPump) Run(ctx context.Context) error {
	buf := make([]byte, 1)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		n, err := p.Reader.Read(buf)
		if err != nil {
			return err
		}
		if n == 0 {
			continue
		}
		for !p.Sink.Put(buf[0]) {
			glog.V(1).Info("rx buffer full, pacing")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(retryInterval):
			}
		}
	}
}
