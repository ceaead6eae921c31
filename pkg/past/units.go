package past

// Well-known unit ids for node parameters.
const (
	UnitRFMNodeID    uint16 = 1
	UnitRFMNetworkID uint16 = 2
	UnitRFMGatewayID uint16 = 3
	UnitRFMMaxPower  uint16 = 4
	UnitRFMKey       uint16 = 5
)
