package console

import (
	"fmt"
	"io"
)

// Dispatch looks up argv[0] in the table, validates the argument count
// and invokes the handler. User input errors (unknown command, arity
// out of bounds) and handler errors are reported on out; the handler
// runs at most once and only when the arity check passes.
func (t *Table) Dispatch(out io.Writer, argv [][]byte) {
	if len(argv) == 0 {
		return
	}
	cmd := t.Lookup(argv[0])
	if cmd == nil {
		fmt.Fprintf(out, "Unknown command '%s'\n", argv[0])
		return
	}
	if n := len(argv) - 1; n < cmd.MinArg || n > cmd.MaxArg {
		fmt.Fprintf(out, "Usage: %s %s\n", cmd.Name, cmd.Usage)
		return
	}
	if err := cmd.Handler(out, argv); err != nil {
		fmt.Fprintf(out, "ERROR: %v\n", err)
	}
}
