// Package rfm69 defines the radio link contract consumed by the node
// console. The console core never interprets frame payloads; it only
// passes bytes through and reports the link's delivery status.
package rfm69

import "errors"

// KeySize is the length of the link encryption key.
const KeySize = 16

// MaxPayload is the largest frame payload the link accepts.
const MaxPayload = 61

// Link errors.
var (
	ErrNotFound  = errors.New("no radio module found")
	ErrNoAck     = errors.New("no response")
	ErrKeySize   = errors.New("key must be 16 bytes")
	ErrFrameSize = errors.New("payload too large")
)

// Frame is one received link frame.
type Frame struct {
	Src     uint8
	Payload []byte
	RSSI    int16
}

// Link is the radio link contract.
type Link interface {
	// Reset pulses the module reset line.
	Reset()
	// Init probes the module and prepares it; ErrNotFound when absent.
	Init() error
	// Sleep puts the module in its low power state.
	Sleep()
	// SetPowerDBm sets the maximum transmit power.
	SetPowerDBm(dbm int)
	// SetCSMA enables the listen-before-talk algorithm.
	SetCSMA(enabled bool)
	// SetAutoReadRSSI enables RSSI capture on every reception.
	SetAutoReadRSSI(enabled bool)
	// SetAESKey sets the KeySize byte link key.
	SetAESKey(key []byte) error
	// SetNodeID sets this node's link address.
	SetNodeID(id uint8)
	// SetNetworkID selects the network.
	SetNetworkID(id uint8)
	// SendFrame transmits payload to dst and waits for the delivery
	// status. On success it returns the link status byte and the RSSI
	// observed by the peer; ErrNoAck when nothing answered.
	SendFrame(dst uint8, payload []byte) (status uint8, rssi int16, err error)
}
