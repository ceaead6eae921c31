package main

//go-build: CGO_ENABLED=0

import (
	"context"
	"flag"
	"io"
	"io/ioutil"
	"os"

	"github.com/denisbrodbeck/machineid"
	"github.com/golang/glog"

	"github.com/sensortalks/zeronode.go/pkg/drivers/rfm69"
	"github.com/sensortalks/zeronode.go/pkg/drivers/rfm69/mqttlink"
	"github.com/sensortalks/zeronode.go/pkg/drivers/rtcclk"
	"github.com/sensortalks/zeronode.go/pkg/drivers/spiflash"
	"github.com/sensortalks/zeronode.go/pkg/drivers/tmp102"
	"github.com/sensortalks/zeronode.go/pkg/node"
	"github.com/sensortalks/zeronode.go/pkg/past"
	"github.com/sensortalks/zeronode.go/pkg/run"
	wsterm "github.com/sensortalks/zeronode.go/pkg/term/websocket"
)

func init() {
	node.SetupFlags()
}

func main() {
	flag.Parse()
	conf := node.NewConfig()

	store, err := newStore(conf)
	if err != nil {
		glog.Exitf("parameter storage: %v", err)
	}

	radio := mqttlink.New(conf.BrokerURL)
	radio.ClientID = "zeronode-" + machineID()
	radio.OnFrame = func(f rfm69.Frame) {
		glog.Infof("radio frame (%d bytes, RSSI %d)", len(f.Payload), f.RSSI)
	}

	rtc := rtcclk.NewSim()
	nc := node.Context{
		Store:  store,
		Radio:  radio,
		Sensor: tmp102.NewSim(),
		Flash:  spiflash.NewSim(),
		Clock:  rtc,
	}

	ctx := context.Background()
	if conf.TermAddr == "" {
		runNode(ctx, os.Stdin, os.Stdout, nc, conf, rtc)
		return
	}
	srv := &wsterm.Server{
		Addr: conf.TermAddr,
		Attach: func(rw *wsterm.ReadWriter) {
			// each attach boots a fresh node over the shared storage,
			// like power-cycling the board with the same flash
			runNode(ctx, rw, rw, nc, conf, rtc)
		},
	}
	if err := srv.Run(ctx); err != nil {
		glog.Exitln(err)
	}
}

// runNode serves one console session until the stream detaches.
func runNode(ctx context.Context, in io.Reader, out io.Writer, nc node.Context, conf *node.Config, rtc *rtcclk.Sim) {
	n := node.New(in, out, nc, conf)
	rtc.OnWake = n.Console().WakeUp
	g := run.NewGroup(ctx)
	g.Go(n, rtc)
	if err := g.Wait(); err != nil {
		glog.Errorln(err)
	}
}

// newStore assembles the parameter storage, backed by the file named
// in conf when set. A store starting from blank blocks is formatted so
// the node boots clean instead of halting on a corrupt-storage check.
func newStore(conf *node.Config) (*past.Store, error) {
	buf := make([]byte, 2*conf.BlockSize)
	fresh := true
	if conf.StorePath != "" {
		data, err := ioutil.ReadFile(conf.StorePath)
		if err != nil && !os.IsNotExist(err) {
			return nil, err
		}
		if err == nil && len(data) == len(buf) {
			copy(buf, data)
			fresh = false
		}
	}
	store, err := past.New(buf[:conf.BlockSize], buf[conf.BlockSize:])
	if err != nil {
		return nil, err
	}
	if conf.StorePath != "" {
		store.OnSync = func() {
			if err := ioutil.WriteFile(conf.StorePath, buf, 0644); err != nil {
				glog.Errorf("sync parameter storage: %v", err)
			}
		}
	}
	if fresh {
		if err := store.Format(); err != nil {
			return nil, err
		}
	}
	return store, nil
}

func machineID() string {
	id, err := machineid.ID()
	if err != nil {
		glog.Warningf("machine id: %v", err)
		return "local"
	}
	return id
}
