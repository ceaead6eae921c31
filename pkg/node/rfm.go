package node

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/sensortalks/zeronode.go/pkg/drivers/rfm69"
	"github.com/sensortalks/zeronode.go/pkg/past"
)

// rfmCommand dispatches the rfm subcommands: a bare rfm dumps the
// stored radio settings, the rest configure or exercise the link.
func (nc *Context) rfmCommand(out io.Writer, argv [][]byte) error {
	switch len(argv) {
	case 1:
		nc.rfmDumpSettings(out)
		return nil
	case 2:
		if string(argv[1]) == "init" {
			return nc.rfmInit(out)
		}
	case 3:
		arg := string(argv[2])
		switch string(argv[1]) {
		case "id":
			return nc.rfmSetU32(out, past.UnitRFMNodeID, arg)
		case "net":
			return nc.rfmSetU32(out, past.UnitRFMNetworkID, arg)
		case "gw":
			return nc.rfmSetU32(out, past.UnitRFMGatewayID, arg)
		case "pwr":
			return nc.rfmSetU32(out, past.UnitRFMMaxPower, arg)
		case "key":
			if len(argv[2]) != rfm69.KeySize {
				return rfm69.ErrKeySize
			}
			if err := nc.Store.WriteUnit(past.UnitRFMKey, argv[2]); err != nil {
				return err
			}
			fmt.Fprintln(out, "OK")
			return nil
		}
	case 4:
		if string(argv[1]) == "tx" {
			return nc.rfmTx(out, argv[2], argv[3])
		}
	}
	return errIllegalCommand
}

// rfmDumpSettings prints the five stored radio settings, NA for any
// unit not yet written.
func (nc *Context) rfmDumpSettings(out io.Writer) {
	u32 := func(label string, id uint16) {
		fmt.Fprint(out, label)
		if v, ok := nc.readU32Unit(id); ok {
			fmt.Fprintf(out, "%d\n", v)
		} else {
			fmt.Fprintln(out, "NA")
		}
	}
	u32("Node id    : ", past.UnitRFMNodeID)
	u32("Network id : ", past.UnitRFMNetworkID)
	u32("Gateway id : ", past.UnitRFMGatewayID)
	u32("Max power  : ", past.UnitRFMMaxPower)
	fmt.Fprint(out, "AES key    : ")
	if key, ok := nc.Store.ReadUnit(past.UnitRFMKey); ok {
		fmt.Fprintf(out, "%s\n", key)
	} else {
		fmt.Fprintln(out, "NA")
	}
}

// rfmInit brings up the radio from stored settings. Every setting must
// be present; the radio is left configured and asleep.
func (nc *Context) rfmInit(out io.Writer) error {
	nodeID, ok := nc.readU32Unit(past.UnitRFMNodeID)
	if !ok {
		return errors.New("RFM node id missing")
	}
	networkID, ok := nc.readU32Unit(past.UnitRFMNetworkID)
	if !ok {
		return errors.New("RFM network id missing")
	}
	if _, ok = nc.readU32Unit(past.UnitRFMGatewayID); !ok {
		return errors.New("RFM gateway id missing")
	}
	maxPower, ok := nc.readU32Unit(past.UnitRFMMaxPower)
	if !ok {
		return errors.New("RFM max power missing")
	}
	key, ok := nc.Store.ReadUnit(past.UnitRFMKey)
	if !ok || len(key) < rfm69.KeySize {
		return errors.New("RFM key missing")
	}

	nc.Radio.Reset()
	if err := nc.Radio.Init(); err != nil {
		return err
	}
	nc.Radio.Sleep()
	nc.Radio.SetPowerDBm(int(maxPower))
	nc.Radio.SetCSMA(true)
	nc.Radio.SetAutoReadRSSI(true)
	if err := nc.Radio.SetAESKey(key[:rfm69.KeySize]); err != nil {
		return err
	}
	nc.Radio.SetNodeID(uint8(nodeID))
	nc.Radio.SetNetworkID(uint8(networkID))
	fmt.Fprintln(out, "OK")
	return nil
}

func (nc *Context) rfmSetU32(out io.Writer, id uint16, arg string) error {
	value, err := strconv.ParseUint(arg, 10, 32)
	if err != nil {
		return errIllegalArgument
	}
	if err := nc.writeU32Unit(id, uint32(value)); err != nil {
		return err
	}
	fmt.Fprintln(out, "OK")
	return nil
}

func (nc *Context) rfmTx(out io.Writer, dstTok, data []byte) error {
	dst, err := strconv.ParseUint(string(dstTok), 10, 32)
	if err != nil {
		return errIllegalArgument
	}
	status, rssi, err := nc.Radio.SendFrame(uint8(dst), data)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "OK:%d:%d\n", status, rssi)
	return nil
}
