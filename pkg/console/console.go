package console

import (
	"context"
	"io"
)

// Default buffer sizes, matching a small UART receive buffer and a
// classic 80 column line.
const (
	DefaultRingSize = 32
	DefaultMaxLine  = 80
)

// Prompt is printed after every completed line.
const Prompt = "% "

// Console is the foreground loop: it drains the ring buffer, assembles
// lines, and dispatches one command at a time to completion. The wait
// on the wake channel is the sole suspension point; in low power mode
// a "." marker is emitted before each wait.
type Console struct {
	Out   io.Writer
	Table *Table
	Power *PowerController

	RingSize int
	MaxLine  int

	ring   *RingBuffer
	line   *LineAssembler
	wakeCh chan struct{}
}

// New creates a Console with default buffer sizes.
func New(out io.Writer, table *Table) *Console {
	return NewWithSizes(out, table, DefaultRingSize, DefaultMaxLine)
}

// NewWithSizes creates a Console with explicit ring capacity and line
// length.
func NewWithSizes(out io.Writer, table *Table, ringSize, maxLine int) *Console {
	c := &Console{
		Out:      out,
		Table:    table,
		RingSize: ringSize,
		MaxLine:  maxLine,
	}
	c.ring = NewRingBuffer(ringSize)
	c.line = NewLineAssembler(maxLine)
	c.wakeCh = make(chan struct{}, 1)
	return c
}

// Put appends one received byte and wakes the foreground loop. It is
// the receive pump's entry point and the only producer of the ring
// buffer. Reports false when the byte was dropped on a full buffer.
func (c *Console) Put(b byte) bool {
	ok := c.ring.Put(b)
	c.WakeUp()
	return ok
}

// WakeUp unblocks the foreground loop for another poll. Safe to call
// from any goroutine; used by periodic wake sources.
func (c *Console) WakeUp() {
	select {
	case c.wakeCh <- struct{}{}:
	default:
	}
}

// Run polls the ring buffer and executes commands until the context is
// canceled. It prints the initial prompt; the caller prints any banner
// before calling Run.
func (c *Console) Run(ctx context.Context) error {
	io.WriteString(c.Out, Prompt)
	for {
		c.poll()
		if c.Power != nil && c.Power.Mode() == ModeLowPower {
			io.WriteString(c.Out, ".")
		}
		select {
		case <-ctx.Done():
			// consume what the pump delivered before it stopped
			c.poll()
			return ctx.Err()
		case <-c.wakeCh:
		}
	}
}

// poll drains the ring buffer, dispatching every completed line.
func (c *Console) poll() {
	for {
		b, ok := c.ring.Get()
		if !ok {
			return
		}
		line, done := c.line.Feed(b, c.Out)
		if !done {
			continue
		}
		if argv := Tokenize(line); len(argv) > 0 {
			c.Table.Dispatch(c.Out, argv)
		}
		io.WriteString(c.Out, Prompt)
	}
}
