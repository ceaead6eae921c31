package mqttlink

import (
	"bytes"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/require"

	"github.com/sensortalks/zeronode.go/pkg/drivers/rfm69"
)

type fakeToken struct {
	err     error
	timeout bool
}

func (t fakeToken) WaitTimeout(time.Duration) bool { return !t.timeout }

func (t fakeToken) Error() error { return t.err }

type publishRec struct {
	topic   string
	payload []byte
}

// fakeBroker records the link's broker traffic and keeps the last
// subscription handler so tests can inject incoming frames.
type fakeBroker struct {
	published []publishRec
	subs      []string
	unsubs    []string
	handler   func(topic string, payload []byte)
	pubToken  fakeToken
}

func (b *fakeBroker) Disconnect(uint) {}

func (b *fakeBroker) Publish(topic string, payload []byte) mqttToken {
	b.published = append(b.published, publishRec{topic, append([]byte(nil), payload...)})
	return b.pubToken
}

func (b *fakeBroker) Subscribe(topic string, handler func(string, []byte)) mqttToken {
	b.subs = append(b.subs, topic)
	b.handler = handler
	return fakeToken{}
}

func (b *fakeBroker) Unsubscribe(topic string) mqttToken {
	b.unsubs = append(b.unsubs, topic)
	return fakeToken{}
}

func newTestLink(broker *fakeBroker) *Link {
	l := New("mqtt://broker:1883/zeronode/")
	l.dial = func(*paho.ClientOptions) (mqttClient, error) {
		return broker, nil
	}
	return l
}

func TestLinkSubscriptionFollowsAddress(t *testing.T) {
	broker := &fakeBroker{}
	l := newTestLink(broker)
	require.NoError(t, l.Init())
	require.Equal(t, []string{"zeronode/radio/0/0"}, broker.subs)

	// the node configures its address after bringing the link up
	l.SetNodeID(7)
	l.SetNetworkID(1)
	require.Equal(t, []string{"zeronode/radio/0/0", "zeronode/radio/0/7"}, broker.unsubs)
	require.Equal(t, "zeronode/radio/1/7", broker.subs[len(broker.subs)-1])
}

func TestLinkAddressBeforeInit(t *testing.T) {
	broker := &fakeBroker{}
	l := newTestLink(broker)

	// no connection yet: the ids are only recorded
	l.SetNodeID(7)
	l.SetNetworkID(1)
	require.Empty(t, broker.subs)

	require.NoError(t, l.Init())
	require.Equal(t, []string{"zeronode/radio/1/7"}, broker.subs)
}

func TestLinkSendFrame(t *testing.T) {
	broker := &fakeBroker{}
	l := newTestLink(broker)
	require.NoError(t, l.Init())
	l.SetNodeID(7)
	l.SetNetworkID(1)

	status, rssi, err := l.SendFrame(9, []byte("ping"))
	require.NoError(t, err)
	require.Equal(t, uint8(1), status)
	require.Equal(t, int16(simRSSI), rssi)
	require.Len(t, broker.published, 1)
	require.Equal(t, "zeronode/radio/1/9", broker.published[0].topic)
	require.Equal(t, []byte("ping"), broker.published[0].payload)
}

func TestLinkSendFrameNoAck(t *testing.T) {
	broker := &fakeBroker{pubToken: fakeToken{timeout: true}}
	l := newTestLink(broker)
	require.NoError(t, l.Init())
	_, _, err := l.SendFrame(9, []byte("ping"))
	require.Equal(t, rfm69.ErrNoAck, err)
}

func TestLinkSendFrameNotConnected(t *testing.T) {
	l := newTestLink(&fakeBroker{})
	_, _, err := l.SendFrame(9, []byte("ping"))
	require.Equal(t, rfm69.ErrNotFound, err)

	require.NoError(t, l.Init())
	l.Reset()
	_, _, err = l.SendFrame(9, []byte("ping"))
	require.Equal(t, rfm69.ErrNotFound, err)
}

func TestLinkSendFrameTooLarge(t *testing.T) {
	l := newTestLink(&fakeBroker{})
	require.NoError(t, l.Init())
	_, _, err := l.SendFrame(9, bytes.Repeat([]byte{0}, rfm69.MaxPayload+1))
	require.Equal(t, rfm69.ErrFrameSize, err)
}

func TestLinkReceive(t *testing.T) {
	broker := &fakeBroker{}
	l := newTestLink(broker)
	var got []rfm69.Frame
	l.OnFrame = func(f rfm69.Frame) { got = append(got, f) }
	require.NoError(t, l.Init())
	l.SetNodeID(7)

	broker.handler("zeronode/radio/0/7", []byte("hello"))
	require.Len(t, got, 1)
	require.Equal(t, []byte("hello"), got[0].Payload)
	require.Equal(t, int16(simRSSI), got[0].RSSI)
}

func TestFrameTopic(t *testing.T) {
	require.Equal(t, "radio/1/7", FrameTopic(1, 7))
	require.Equal(t, "radio/0/255", FrameTopic(0, 255))
}

func TestClientOptions(t *testing.T) {
	opts, prefix, err := ClientOptions("mqtt://user:pw@broker:1883/zeronode/", "n1")
	require.NoError(t, err)
	require.Equal(t, "zeronode/", prefix)
	require.Equal(t, "tcp://broker:1883", opts.Servers[0].String())
	require.Equal(t, "user", opts.Username)
	require.Equal(t, "pw", opts.Password)
	require.Equal(t, "n1", opts.ClientID)
}

func TestClientOptionsSchemePassthrough(t *testing.T) {
	opts, prefix, err := ClientOptions("ws://broker:9001", "")
	require.NoError(t, err)
	require.Empty(t, prefix)
	require.Equal(t, "ws://broker:9001", opts.Servers[0].String())
}
