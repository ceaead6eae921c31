package console

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDumpSingleRow(t *testing.T) {
	var out bytes.Buffer
	Dump(&out, 0x1000, []byte{0x00, 0x01, 0xff})
	require.Equal(t,
		"00001000...00001002:\n"+
			"  00001000 :  00 01 ff\n",
		out.String())
}

func TestDumpRowBreaks(t *testing.T) {
	data := make([]byte, 20)
	for i := range data {
		data[i] = byte(i)
	}
	var out bytes.Buffer
	Dump(&out, 0, data)
	require.Equal(t,
		"00000000...00000013:\n"+
			"  00000000 :  00 01 02 03 04 05 06 07 08 09 0a 0b 0c 0d 0e 0f\n"+
			"  00000010 :  10 11 12 13\n",
		out.String())
}

func TestDumpEmpty(t *testing.T) {
	var out bytes.Buffer
	Dump(&out, 0x20, nil)
	require.Equal(t, "00000020...00000020:\n", out.String())
}
