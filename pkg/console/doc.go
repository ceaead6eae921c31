// Package console implements the interactive serial console engine.
package console

// The engine is split along the input path: a single-producer ring
// buffer fed by the receive pump, a line assembler that echoes input
// and detects line termination, a tokenizer producing views into the
// frozen line, and an arity-checked dispatcher over a static command
// table. The foreground loop in Console is the only thread of control
// that touches command state; the receive pump only appends bytes.
//
// Producer: receive pump (interrupt context on real hardware)
// Consumer: foreground loop
