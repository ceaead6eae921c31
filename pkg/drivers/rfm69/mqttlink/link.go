// Package mqttlink carries rfm69 link frames over an MQTT broker,
// standing in for the radio when the node runs as a simulation. Each
// network is a topic subtree: frames to a node are published on
// radio/<network>/<node>, so a broker plays the role of the ether.
package mqttlink

import (
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/golang/glog"

	"github.com/sensortalks/zeronode.go/pkg/drivers/rfm69"
)

// DefaultAckTimeout bounds the wait for broker delivery confirmation.
const DefaultAckTimeout = time.Second

// simRSSI is the signal level reported for simulated deliveries.
const simRSSI = -42

// FrameHandler is called for every frame received on the node address.
type FrameHandler func(rfm69.Frame)

// mqttToken is the part of paho.Token the link waits on.
type mqttToken interface {
	WaitTimeout(time.Duration) bool
	Error() error
}

// mqttClient narrows the broker connection to what the link needs, so
// tests can stand in for the broker.
type mqttClient interface {
	Disconnect(quiesce uint)
	Publish(topic string, payload []byte) mqttToken
	Subscribe(topic string, handler func(topic string, payload []byte)) mqttToken
	Unsubscribe(topic string) mqttToken
}

// pahoClient adapts a live paho connection to mqttClient.
type pahoClient struct {
	c paho.Client
}

func (p pahoClient) Disconnect(quiesce uint) {
	p.c.Disconnect(quiesce)
}

func (p pahoClient) Publish(topic string, payload []byte) mqttToken {
	return p.c.Publish(topic, 1, false, payload)
}

func (p pahoClient) Subscribe(topic string, handler func(string, []byte)) mqttToken {
	return p.c.Subscribe(topic, 1, func(_ paho.Client, msg paho.Message) {
		handler(msg.Topic(), msg.Payload())
	})
}

func (p pahoClient) Unsubscribe(topic string) mqttToken {
	return p.c.Unsubscribe(topic)
}

// Link implements rfm69.Link over MQTT.
type Link struct {
	BrokerURL  string
	ClientID   string
	AckTimeout time.Duration
	OnFrame    FrameHandler

	// dial overrides the broker connection. Tests only.
	dial func(opts *paho.ClientOptions) (mqttClient, error)

	lock      sync.Mutex
	client    mqttClient
	prefix    string
	nodeID    uint8
	networkID uint8
	powerDBm  int
	sleeping  bool
}

// New creates a Link talking to the given broker.
// The URL follows mqtt://host:port/topic-prefix.
func New(brokerURL string) *Link {
	return &Link{BrokerURL: brokerURL, AckTimeout: DefaultAckTimeout}
}

// Reset implements rfm69.Link. Tearing down the client is the closest
// analog of pulsing the reset line.
func (l *Link) Reset() {
	l.lock.Lock()
	defer l.lock.Unlock()
	if l.client != nil {
		l.client.Disconnect(0)
		l.client = nil
	}
}

// Init implements rfm69.Link: it connects to the broker and reports
// rfm69.ErrNotFound when unreachable, like a missing module. The
// receive subscription starts on the current node address and follows
// SetNodeID/SetNetworkID afterwards.
func (l *Link) Init() error {
	opts, prefix, err := ClientOptions(l.BrokerURL, l.ClientID)
	if err != nil {
		return err
	}
	dial := l.dial
	if dial == nil {
		dial = l.connect
	}
	client, err := dial(opts)
	if err != nil {
		return err
	}
	l.lock.Lock()
	l.client, l.prefix = client, prefix
	topic := l.frameTopic()
	l.lock.Unlock()
	return l.subscribeTopic(client, topic)
}

// connect establishes the live broker connection.
func (l *Link) connect(opts *paho.ClientOptions) (mqttClient, error) {
	client := paho.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(l.ackTimeout()) || token.Error() != nil {
		if token.Error() != nil {
			glog.Warningf("radio broker connect: %v", token.Error())
		}
		return nil, rfm69.ErrNotFound
	}
	return pahoClient{c: client}, nil
}

// Sleep implements rfm69.Link.
func (l *Link) Sleep() {
	l.lock.Lock()
	l.sleeping = true
	l.lock.Unlock()
}

// SetPowerDBm implements rfm69.Link.
func (l *Link) SetPowerDBm(dbm int) {
	l.lock.Lock()
	l.powerDBm = dbm
	l.lock.Unlock()
}

// SetCSMA implements rfm69.Link. The broker arbitrates the medium, so
// this is recorded only.
func (l *Link) SetCSMA(bool) {}

// SetAutoReadRSSI implements rfm69.Link.
func (l *Link) SetAutoReadRSSI(bool) {}

// SetAESKey implements rfm69.Link. The simulation transports frames in
// the clear; the key is validated and kept for parity with hardware.
func (l *Link) SetAESKey(key []byte) error {
	if len(key) != rfm69.KeySize {
		return rfm69.ErrKeySize
	}
	return nil
}

// SetNodeID implements rfm69.Link. On a live connection the receive
// subscription moves to the new address.
func (l *Link) SetNodeID(id uint8) {
	l.retarget(func() { l.nodeID = id })
}

// SetNetworkID implements rfm69.Link. On a live connection the receive
// subscription moves to the new address.
func (l *Link) SetNetworkID(id uint8) {
	l.retarget(func() { l.networkID = id })
}

// retarget applies an address change and, when connected, moves the
// receive subscription from the old topic to the new one.
func (l *Link) retarget(set func()) {
	l.lock.Lock()
	old := l.frameTopic()
	set()
	topic := l.frameTopic()
	client := l.client
	l.lock.Unlock()
	if client == nil || topic == old {
		return
	}
	if t := client.Unsubscribe(old); !t.WaitTimeout(l.ackTimeout()) || t.Error() != nil {
		glog.Warningf("unsubscribe %q failed", old)
	}
	if err := l.subscribeTopic(client, topic); err != nil {
		glog.Warningf("subscribe %q failed", topic)
	}
}

// SendFrame implements rfm69.Link.
func (l *Link) SendFrame(dst uint8, payload []byte) (uint8, int16, error) {
	if len(payload) > rfm69.MaxPayload {
		return 0, 0, rfm69.ErrFrameSize
	}
	l.lock.Lock()
	client := l.client
	topic := l.prefix + FrameTopic(l.networkID, dst)
	l.sleeping = false
	l.lock.Unlock()
	if client == nil {
		return 0, 0, rfm69.ErrNotFound
	}
	if glog.V(2) {
		glog.Infof("PUB %q (%d bytes)", topic, len(payload))
	}
	token := client.Publish(topic, payload)
	if !token.WaitTimeout(l.ackTimeout()) || token.Error() != nil {
		return 0, 0, rfm69.ErrNoAck
	}
	return 1, simRSSI, nil
}

// frameTopic returns the receive topic for the current address.
// Caller holds the lock.
func (l *Link) frameTopic() string {
	return l.prefix + FrameTopic(l.networkID, l.nodeID)
}

func (l *Link) subscribeTopic(client mqttClient, topic string) error {
	if glog.V(2) {
		glog.Infof("SUB %q", topic)
	}
	token := client.Subscribe(topic, l.receive)
	if !token.WaitTimeout(l.ackTimeout()) || token.Error() != nil {
		return rfm69.ErrNotFound
	}
	return nil
}

func (l *Link) receive(topic string, payload []byte) {
	if glog.V(2) {
		glog.Infof("RX %q (%d bytes)", topic, len(payload))
	}
	if h := l.OnFrame; h != nil {
		h(rfm69.Frame{Payload: payload, RSSI: simRSSI})
	}
}

func (l *Link) ackTimeout() time.Duration {
	if l.AckTimeout == 0 {
		return DefaultAckTimeout
	}
	return l.AckTimeout
}

// FrameTopic returns the topic carrying frames addressed to a node.
func FrameTopic(network, node uint8) string {
	return fmt.Sprintf("radio/%d/%d", network, node)
}

// ClientOptions builds paho options from a broker URL of the form
// mqtt://[user[:pass]@]host:port/topic-prefix. It returns the options
// and the topic prefix taken from the URL path.
func ClientOptions(brokerURL, clientID string) (*paho.ClientOptions, string, error) {
	u, err := url.Parse(brokerURL)
	if err != nil {
		return nil, "", err
	}
	server := u.Scheme
	if server == "" || server == "mqtt" {
		server = "tcp"
	}
	server += "://" + u.Host

	prefix := strings.TrimPrefix(u.Path, "/")

	opts := paho.NewClientOptions()
	opts.AddBroker(server).
		SetAutoReconnect(true).
		SetCleanSession(true)
	if u.User != nil {
		opts.SetUsername(u.User.Username())
		if pwd, ok := u.User.Password(); ok {
			opts.SetPassword(pwd)
		}
	}
	if clientID != "" {
		opts.SetClientID(clientID)
	}
	return opts, prefix, nil
}
