package console

import (
	"fmt"
	"io"
)

// Handler executes one command. argv[0] is the command name; a
// returned error is reported on the transcript by the dispatcher.
type Handler func(out io.Writer, argv [][]byte) error

// Command is an immutable command descriptor. MinArg and MaxArg bound
// the argument count excluding the command name itself.
type Command struct {
	Name    string
	Help    string
	Usage   string
	MinArg  int
	MaxArg  int
	Handler Handler
}

// Table is an ordered command registry. Commands are registered once
// at startup and looked up by exact, case-sensitive name.
type Table struct {
	cmds []*Command
}

// NewTable creates a Table with the given commands.
func NewTable(cmds ...*Command) *Table {
	t := &Table{}
	t.Add(cmds...)
	return t
}

// Add registers commands, preserving order. Duplicate names are a
// programming error and panic.
func (t *Table) Add(cmds ...*Command) *Table {
	for _, cmd := range cmds {
		if t.Lookup([]byte(cmd.Name)) != nil {
			panic(fmt.Sprintf("console: duplicate command %q", cmd.Name))
		}
		t.cmds = append(t.cmds, cmd)
	}
	return t
}

// Lookup finds a command by name, or returns nil.
func (t *Table) Lookup(name []byte) *Command {
	for _, cmd := range t.cmds {
		if cmd.Name == string(name) {
			return cmd
		}
	}
	return nil
}

// Commands returns all commands in registration order.
func (t *Table) Commands() []*Command {
	return t.cmds
}
