package rfm69

// Fake is an in-memory Link for tests and broker-less runs. It records
// every setting and reports configurable delivery results.
type Fake struct {
	Present   bool
	AckStatus uint8
	AckRSSI   int16
	FailSend  bool

	Resets    int
	Inited    bool
	Sleeping  bool
	PowerDBm  int
	CSMA      bool
	AutoRSSI  bool
	Key       []byte
	NodeID    uint8
	NetworkID uint8
	Sent      []SentFrame
}

// SentFrame records one transmitted frame.
type SentFrame struct {
	Dst     uint8
	Payload []byte
}

// NewFake creates a present Fake with a plausible delivery status.
func NewFake() *Fake {
	return &Fake{Present: true, AckStatus: 1, AckRSSI: -42}
}

// Reset implements Link.
func (f *Fake) Reset() { f.Resets++ }

// Init implements Link.
func (f *Fake) Init() error {
	if !f.Present {
		return ErrNotFound
	}
	f.Inited = true
	return nil
}

// Sleep implements Link.
func (f *Fake) Sleep() { f.Sleeping = true }

// SetPowerDBm implements Link.
func (f *Fake) SetPowerDBm(dbm int) { f.PowerDBm = dbm }

// SetCSMA implements Link.
func (f *Fake) SetCSMA(enabled bool) { f.CSMA = enabled }

// SetAutoReadRSSI implements Link.
func (f *Fake) SetAutoReadRSSI(enabled bool) { f.AutoRSSI = enabled }

// SetAESKey implements Link.
func (f *Fake) SetAESKey(key []byte) error {
	if len(key) != KeySize {
		return ErrKeySize
	}
	f.Key = append([]byte(nil), key...)
	return nil
}

// SetNodeID implements Link.
func (f *Fake) SetNodeID(id uint8) { f.NodeID = id }

// SetNetworkID implements Link.
func (f *Fake) SetNetworkID(id uint8) { f.NetworkID = id }

// SendFrame implements Link.
func (f *Fake) SendFrame(dst uint8, payload []byte) (uint8, int16, error) {
	if len(payload) > MaxPayload {
		return 0, 0, ErrFrameSize
	}
	f.Sleeping = false
	f.Sent = append(f.Sent, SentFrame{Dst: dst, Payload: append([]byte(nil), payload...)})
	if f.FailSend {
		return 0, 0, ErrNoAck
	}
	return f.AckStatus, f.AckRSSI, nil
}
