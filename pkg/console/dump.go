package console

import (
	"fmt"
	"io"
)

const dumpRowLen = 16

// Dump writes data as hexadecimal rows of 16 bytes, each row prefixed
// by its absolute address, after a summary line giving the address
// range. base is the address of data[0]. Dump never mutates anything;
// the caller is responsible for handing it a valid view.
func Dump(w io.Writer, base uint32, data []byte) {
	if len(data) == 0 {
		fmt.Fprintf(w, "%08x...%08x:\n", base, base)
		return
	}
	fmt.Fprintf(w, "%08x...%08x:", base, base+uint32(len(data))-1)
	for i, c := range data {
		if i%dumpRowLen == 0 {
			fmt.Fprintf(w, "\n  %08x : ", base+uint32(i))
		}
		fmt.Fprintf(w, " %02x", c)
	}
	fmt.Fprintln(w)
}
