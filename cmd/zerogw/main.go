package main

//go-build: CGO_ENABLED=0

import (
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/abiosoft/ishell"
	"github.com/denisbrodbeck/machineid"
	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/sensortalks/zeronode.go/pkg/drivers/rfm69"
	"github.com/sensortalks/zeronode.go/pkg/drivers/rfm69/mqttlink"
)

const gatewayKey = "$gateway"

var (
	// flags

	brokerURL = "mqtt://localhost:1883/zeronode/"
	evalOnly  bool
)

func init() {
	if val := os.Getenv("ZERONODE_BROKER_URL"); val != "" {
		brokerURL = val
	}
	flag.StringVar(&brokerURL, "broker", brokerURL, "MQTT broker URL carrying the radio traffic.")
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
}

// Gateway is an operator console on the radio side of the fence: it
// listens on the broker that carries the simulated radio frames and
// can inject frames toward any node.
type Gateway struct {
	Shell  *ishell.Shell
	client paho.Client
	prefix string

	lock     sync.Mutex
	watching bool
	seen     map[string]int
}

// New creates a gateway connected to the broker.
func New(url string) (*Gateway, error) {
	opts, prefix, err := mqttlink.ClientOptions(url, "zerogw-"+machineID())
	if err != nil {
		return nil, err
	}
	client := paho.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(time.Second) || token.Error() != nil {
		return nil, fmt.Errorf("broker unreachable: %s", url)
	}
	g := &Gateway{
		Shell:  ishell.New(),
		client: client,
		prefix: prefix,
		seen:   map[string]int{},
	}
	g.Shell.Set(gatewayKey, g)
	g.Shell.SetPrompt("zerogw > ")
	for _, cmd := range commands {
		g.Shell.AddCmd(cmd)
	}
	return g, nil
}

// GatewayFrom gets Gateway from ishell context.
func GatewayFrom(c *ishell.Context) *Gateway {
	return c.Get(gatewayKey).(*Gateway)
}

// Watch subscribes to all frame traffic, printing each frame and
// recording which node addresses are talking.
func (g *Gateway) Watch(print func(string)) error {
	g.lock.Lock()
	if g.watching {
		g.lock.Unlock()
		return nil
	}
	g.watching = true
	g.lock.Unlock()
	token := g.client.Subscribe(g.prefix+"radio/#", 1, func(_ paho.Client, msg paho.Message) {
		addr := strings.TrimPrefix(msg.Topic(), g.prefix+"radio/")
		g.lock.Lock()
		g.seen[addr]++
		g.lock.Unlock()
		if print != nil {
			print(fmt.Sprintf("[%s] % x", addr, msg.Payload()))
		}
	})
	if !token.WaitTimeout(time.Second) || token.Error() != nil {
		return fmt.Errorf("subscribe failed")
	}
	return nil
}

// Unwatch stops watching.
func (g *Gateway) Unwatch() {
	g.lock.Lock()
	watching := g.watching
	g.watching = false
	g.lock.Unlock()
	if watching {
		g.client.Unsubscribe(g.prefix + "radio/#")
	}
}

// Nodes lists every network/node address seen while watching.
func (g *Gateway) Nodes() []string {
	g.lock.Lock()
	addrs := make([]string, 0, len(g.seen))
	for addr := range g.seen {
		addrs = append(addrs, addr)
	}
	g.lock.Unlock()
	sort.Strings(addrs)
	return addrs
}

// Tx sends a frame to a node.
func (g *Gateway) Tx(network, node uint8, payload []byte) error {
	if len(payload) > rfm69.MaxPayload {
		return fmt.Errorf("payload exceeds %d bytes", rfm69.MaxPayload)
	}
	topic := g.prefix + mqttlink.FrameTopic(network, node)
	token := g.client.Publish(topic, 1, false, payload)
	if !token.WaitTimeout(time.Second) || token.Error() != nil {
		return fmt.Errorf("publish failed")
	}
	return nil
}

// Run runs the shell.
func (g *Gateway) Run(args ...string) {
	if len(args) > 0 {
		if err := g.Shell.Process(args...); err != nil {
			log.Fatalln(err)
		}
		return
	}
	if evalOnly {
		log.Fatalln("command expected")
	}
	g.Shell.Run()
}

func parseAddr(c *ishell.Context, arg string) (uint8, bool) {
	v, err := strconv.ParseUint(arg, 10, 8)
	if err != nil {
		c.Err(fmt.Errorf("bad address %q", arg))
		return 0, false
	}
	return uint8(v), true
}

var commands = []*ishell.Cmd{
	{
		Name:    "watch",
		Aliases: []string{"w"},
		Help:    "print radio frames as they pass the broker",
		Func: func(c *ishell.Context) {
			g := GatewayFrom(c)
			if err := g.Watch(func(line string) { g.Shell.Println(line) }); err != nil {
				c.Err(err)
			}
		},
	},
	{
		Name: "unwatch",
		Help: "",
		Func: func(c *ishell.Context) {
			GatewayFrom(c).Unwatch()
		},
	},
	{
		Name:    "nodes",
		Aliases: []string{"list", "l"},
		Help:    "list node addresses seen while watching",
		Func: func(c *ishell.Context) {
			addrs := GatewayFrom(c).Nodes()
			if len(addrs) == 0 {
				c.Println("No nodes seen")
				return
			}
			for _, addr := range addrs {
				c.Println(addr)
			}
		},
	},
	{
		Name: "tx",
		Help: "NETWORK NODE DATA",
		Func: func(c *ishell.Context) {
			if len(c.Args) < 3 {
				c.Err(fmt.Errorf("usage: tx NETWORK NODE DATA"))
				return
			}
			network, ok := parseAddr(c, c.Args[0])
			if !ok {
				return
			}
			node, ok := parseAddr(c, c.Args[1])
			if !ok {
				return
			}
			data := strings.Join(c.Args[2:], " ")
			if err := GatewayFrom(c).Tx(network, node, []byte(data)); err != nil {
				c.Err(err)
				return
			}
			c.Println("OK")
		},
	},
}

func machineID() string {
	id, err := machineid.ID()
	if err != nil {
		return "local"
	}
	return id
}

func main() {
	flag.Parse()
	g, err := New(brokerURL)
	if err != nil {
		log.Fatalln(err)
	}
	g.Run(flag.Args()...)
}
