package console

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// lockedBuffer lets the test read the transcript while Run is writing.
type lockedBuffer struct {
	buf  bytes.Buffer
	lock sync.Mutex
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.buf.String()
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not reached")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestConsoleRunDispatchesLines(t *testing.T) {
	var out lockedBuffer
	table := NewTable(&Command{
		Name:   "echo",
		MaxArg: 4,
		Handler: func(w io.Writer, argv [][]byte) error {
			for _, arg := range argv[1:] {
				fmt.Fprintf(w, "%s\n", arg)
			}
			return nil
		},
	})
	c := New(&out, table)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		c.Run(ctx)
		close(done)
	}()

	for _, b := range []byte("echo hi there\n") {
		c.Put(b)
	}
	waitFor(t, func() bool {
		return strings.Contains(out.String(), "hi\nthere\n")
	})
	cancel()
	<-done

	// echo of the input, the command output, and a fresh prompt
	require.Equal(t, "% echo hi there\nhi\nthere\n% ", out.String())
}

func TestConsoleEmptyLineReprompts(t *testing.T) {
	var out lockedBuffer
	c := New(&out, NewTable())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go c.Run(ctx)

	c.Put('\n')
	waitFor(t, func() bool { return out.String() == "% \n% " })
}

func TestConsoleLowPowerMarker(t *testing.T) {
	var out lockedBuffer
	c := New(&out, NewTable())
	c.Power = NewPowerController(nil)
	c.Power.EnterLowPower()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go c.Run(ctx)

	// every empty poll emits one marker before suspending
	waitFor(t, func() bool { return strings.HasSuffix(out.String(), ".") })
	c.WakeUp()
	waitFor(t, func() bool { return strings.HasSuffix(out.String(), "..") })
}
