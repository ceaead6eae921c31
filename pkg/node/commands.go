package node

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/sensortalks/zeronode.go/pkg/console"
)

var errIllegalArgument = errors.New("illegal argument")
var errIllegalCommand = errors.New("illegal command")

// Commands builds the full command table bound to nc. Registration
// order is the order 'help' lists them in.
func Commands(nc *Context) *console.Table {
	tbl := console.NewTable()
	tbl.Add(
		&console.Command{
			Name: "help", Help: "Print help",
			Handler: func(out io.Writer, argv [][]byte) error {
				for _, cmd := range tbl.Commands() {
					fmt.Fprintf(out, "%s    %s\n", cmd.Name, cmd.Help)
				}
				return nil
			},
		},
		&console.Command{
			Name: "halt", Help: "Halt the system",
			Usage: "<arg> ... <arg>", MaxArg: 64,
			Handler: func(out io.Writer, argv [][]byte) error {
				for i, arg := range argv {
					fmt.Fprintf(out, "%d '%s'\n", i, arg)
				}
				fmt.Fprintln(out, "Halted")
				nc.Halt(2)
				return nil
			},
		},
		&console.Command{
			Name: "pastformat", Help: "Format parameter storage",
			Handler: func(out io.Writer, argv [][]byte) error {
				if err := nc.Store.Format(); err != nil {
					fmt.Fprintln(out, "Formatting failed")
				}
				if err := nc.Store.Init(); err != nil {
					fmt.Fprintln(out, "ERROR")
				} else {
					fmt.Fprintln(out, "OK")
				}
				return nil
			},
		},
		&console.Command{
			Name: "pastread", Help: "Read unit from parameter storage",
			Usage: "<unit>", MinArg: 1, MaxArg: 1,
			Handler: func(out io.Writer, argv [][]byte) error {
				id, err := parseUnitID(argv[1])
				if err != nil {
					return err
				}
				data, ok := nc.Store.ReadUnit(id)
				if !ok {
					fmt.Fprintf(out, "Unit %d not found\n", id)
					return nil
				}
				fmt.Fprintf(out, "'%s' (%d bytes)\n", cString(data), len(data))
				console.Dump(out, 0, data)
				return nil
			},
		},
		&console.Command{
			Name: "pastwrite", Help: "Write unit to parameter storage",
			Usage: "<unit> <data>", MinArg: 2, MaxArg: 2,
			Handler: func(out io.Writer, argv [][]byte) error {
				id, err := parseUnitID(argv[1])
				if err != nil {
					return err
				}
				// stored as a terminated string, like it reads back
				data := append(append([]byte(nil), argv[2]...), 0)
				if err := nc.Store.WriteUnit(id, data); err != nil {
					return fmt.Errorf("failed to write unit %d: %v", id, err)
				}
				fmt.Fprintf(out, "Wrote unit %d (%d bytes)\n", id, len(data))
				return nil
			},
		},
		&console.Command{
			Name: "pasterase", Help: "Erase unit from parameter storage",
			Usage: "<unit>", MinArg: 1, MaxArg: 1,
			Handler: func(out io.Writer, argv [][]byte) error {
				id, err := parseUnitID(argv[1])
				if err != nil {
					return err
				}
				if err := nc.Store.EraseUnit(id); err != nil {
					return fmt.Errorf("failed to erase unit %d: %v", id, err)
				}
				fmt.Fprintf(out, "Erased unit %d\n", id)
				return nil
			},
		},
		&console.Command{
			Name: "pastdump", Help: "Dump parameter storage",
			Usage: "[<size>]", MaxArg: 1,
			Handler: func(out io.Writer, argv [][]byte) error {
				size := nc.Store.BlockSize()
				if len(argv) == 2 {
					n, err := strconv.Atoi(string(argv[1]))
					if err != nil || n < 0 {
						return errIllegalArgument
					}
					if n < size {
						size = n
					}
				}
				blocks := nc.Store.Blocks()
				fmt.Fprintln(out, "Past block 0:")
				console.Dump(out, 0, blocks[0][:size])
				fmt.Fprintln(out, "\nPast block 1:")
				console.Dump(out, uint32(nc.Store.BlockSize()), blocks[1][:size])
				return nil
			},
		},
		&console.Command{
			Name: "temp", Help: "Show temperature",
			Handler: func(out io.Writer, argv [][]byte) error {
				fmt.Fprintf(out, "%s°C\n", formatMilliC(nc.Sensor.ReadMilliC()))
				return nil
			},
		},
		&console.Command{
			Name: "tempalert", Help: "Show or set temperature alert",
			Usage: "[<low> <high>]", MaxArg: 2,
			Handler: func(out io.Writer, argv [][]byte) error {
				switch len(argv) {
				case 3:
					low, err1 := strconv.Atoi(string(argv[1]))
					high, err2 := strconv.Atoi(string(argv[2]))
					if err1 != nil || err2 != nil {
						return errIllegalArgument
					}
					fmt.Fprintf(out, "low:%d high:%d\n", low, high)
				case 1:
					level := 0
					if nc.Sensor.AlertLevel() {
						level = 1
					}
					fmt.Fprintf(out, "%d\n", level)
				}
				return nil
			},
		},
		&console.Command{
			Name: "rfm", Help: "Handle radio link",
			Usage: "[init | id N | net N | gw N | pwr N | key K | tx N DATA]",
			MaxArg: 3,
			Handler: func(out io.Writer, argv [][]byte) error {
				return nc.rfmCommand(out, argv)
			},
		},
		&console.Command{
			Name: "rtc", Help: "Show RTC",
			Handler: func(out io.Writer, argv [][]byte) error {
				hh, mm, ss := nc.Clock.TimeOfDay()
				fmt.Fprintf(out, "Time: %02d:%02d:%02d\n", hh, mm, ss)
				fmt.Fprintf(out, "RTC counter: %d\n", nc.Clock.WakeCounter())
				return nil
			},
		},
		&console.Command{
			Name: "power", Help: "Handle low power mode",
			Usage: "<low | normal>", MinArg: 1, MaxArg: 1,
			Handler: func(out io.Writer, argv [][]byte) error {
				switch string(argv[1]) {
				case "low":
					nc.Power.EnterLowPower()
				case "normal":
					nc.Power.EnterActive()
				default:
					return errIllegalArgument
				}
				fmt.Fprintln(out, "OK")
				return nil
			},
		},
	)
	return tbl
}

// parseUnitID parses an operator-supplied unit id.
func parseUnitID(tok []byte) (uint16, error) {
	n, err := strconv.ParseUint(string(tok), 10, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid unit id '%s'", tok)
	}
	return uint16(n), nil
}

// formatMilliC renders a millidegree reading as degrees and tenths.
// The sign is carried once, so -500 comes out as -0.5 and not 0.-5.
func formatMilliC(t int32) string {
	sign := ""
	if t < 0 {
		sign = "-"
		t = -t
	}
	return fmt.Sprintf("%s%d.%d", sign, t/1000, (t%1000)/100)
}

// cString cuts data at its first NUL for display.
func cString(data []byte) []byte {
	if i := bytes.IndexByte(data, 0); i >= 0 {
		return data[:i]
	}
	return data
}

func (nc *Context) readU32Unit(id uint16) (uint32, bool) {
	data, ok := nc.Store.ReadUnit(id)
	if !ok || len(data) < 4 {
		return 0, false
	}
	return binary.LittleEndian.Uint32(data), true
}

func (nc *Context) writeU32Unit(id uint16, value uint32) error {
	var data [4]byte
	binary.LittleEndian.PutUint32(data[:], value)
	return nc.Store.WriteUnit(id, data[:])
}
