package console

import "io"

// LineAssembler accumulates bytes into a bounded line and detects line
// termination. The line storage is fixed and reused: a frozen line,
// and any tokens cut from it, are valid only until the next byte is
// appended.
type LineAssembler struct {
	buf []byte
	n   int
}

// NewLineAssembler creates a LineAssembler holding at most max-1
// characters per line.
func NewLineAssembler(max int) *LineAssembler {
	if max < 2 {
		panic("console: line length must be at least 2")
	}
	return &LineAssembler{buf: make([]byte, max)}
}

// Feed consumes one byte, echoing to echo as the operator would expect.
//
// Carriage return is ignored. Line feed freezes the line and returns
// it with done true (the line may be empty); the storage is reused for
// the next line. Any other byte is echoed, but appended only while the
// line is below its bound; overflowing bytes are discarded.
func (a *LineAssembler) Feed(c byte, echo io.Writer) (line []byte, done bool) {
	switch c {
	case '\r':
	case '\n':
		io.WriteString(echo, "\n")
		line, done = a.buf[:a.n], true
		a.n = 0
	default:
		echo.Write([]byte{c})
		if a.n < len(a.buf)-1 {
			a.buf[a.n] = c
			a.n++
		}
	}
	return
}
