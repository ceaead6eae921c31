package node

import (
	"context"
	"fmt"
	"io"

	"github.com/sensortalks/zeronode.go/pkg/board"
	"github.com/sensortalks/zeronode.go/pkg/console"
	"github.com/sensortalks/zeronode.go/pkg/run"
)

// DefaultBanner greets the operator at startup.
const DefaultBanner = "Welcome to the zeronode CLI"

// Node runs the console engine over a serial stream with the full
// command table bound to its collaborators.
type Node struct {
	Context
	Banner string

	in   io.Reader
	out  io.Writer
	tick *board.Systick
	cons *console.Console
}

// New creates a Node reading from in and writing the transcript to
// out. nc supplies the collaborators; Power and Halt get working
// defaults when left nil, and a nil conf uses the default sizes.
func New(in io.Reader, out io.Writer, nc Context, conf *Config) *Node {
	if conf == nil {
		conf = NewConfig()
	}
	ringSize, maxLine := conf.RingSize, conf.MaxLine
	if ringSize <= 0 {
		ringSize = console.DefaultRingSize
	}
	if maxLine <= 0 {
		maxLine = console.DefaultMaxLine
	}
	n := &Node{Context: nc, Banner: DefaultBanner, in: in, out: out}
	n.tick = &board.Systick{}
	if n.Power == nil {
		n.Power = console.NewPowerController(n.tick)
	}
	if n.Halt == nil {
		n.Halt = func(blinks int) { board.BlinkenHalt(board.LogLED{}, blinks) }
	}
	n.cons = console.NewWithSizes(out, Commands(&n.Context), ringSize, maxLine)
	n.cons.Power = n.Power
	n.tick.OnTick = n.cons.WakeUp
	return n
}

// Console exposes the console so wake sources can be attached.
func (n *Node) Console() *console.Console {
	return n.cons
}

// Run performs the startup sequence and serves the console until the
// context is canceled or the serial stream detaches.
func (n *Node) Run(ctx context.Context) error {
	out := n.out
	if err := n.Store.Init(); err != nil {
		fmt.Fprintln(out, "Error: storage init failed!")
		blocks := n.Store.Blocks()
		head := 64
		if head > n.Store.BlockSize() {
			head = n.Store.BlockSize()
		}
		fmt.Fprintln(out, "Past block 0:")
		console.Dump(out, 0, blocks[0][:head])
		fmt.Fprintln(out, "Past block 1:")
		console.Dump(out, uint32(n.Store.BlockSize()), blocks[1][:head])
		n.Halt(3)
		return err
	}

	n.Power.EnterActive()
	defer n.tick.Stop()

	fmt.Fprintf(out, "\n\n%s\n", n.Banner)
	if !n.Flash.Probe() {
		fmt.Fprintln(out, "No SPI flash found")
	} else {
		fmt.Fprintf(out, "Found SPI flash %s\n", n.Flash.Description())
	}
	if n.Sensor.Init() {
		fmt.Fprintf(out, "Temperature is %s°C\n", formatMilliC(n.Sensor.ReadMilliC()))
	}
	fmt.Fprintln(out, "Try 'help <return>' for, well, help.")

	pump := &board.SerialPump{Reader: n.in, Sink: n.cons}
	g := run.NewGroup(ctx)
	g.Go(
		run.Func(func(ctx context.Context) error {
			if err := pump.Run(ctx); err != io.EOF {
				return err
			}
			// end of the serial stream is a clean detach
			return nil
		}),
		n.cons,
	)
	return g.Wait()
}
