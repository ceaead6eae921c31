package node

import (
	"flag"
	"os"
	"strconv"

	"github.com/sensortalks/zeronode.go/pkg/console"
)

// Config provides common options for assembling a node.
type Config struct {
	// BrokerURL is the MQTT broker carrying the simulated radio.
	// e.g. mqtt://host:port/topic-prefix
	BrokerURL string
	// StorePath persists the parameter storage blocks, empty for
	// memory only.
	StorePath string
	// BlockSize is the size of one storage block.
	BlockSize int
	// TermAddr serves the console over a websocket instead of stdio.
	TermAddr string

	RingSize int
	MaxLine  int
}

var defaultConfig = Config{
	BrokerURL: "mqtt://localhost:1883/zeronode/",
	BlockSize: 1024,
	RingSize:  console.DefaultRingSize,
	MaxLine:   console.DefaultMaxLine,
}

func init() {
	if val := os.Getenv("ZERONODE_BROKER_URL"); val != "" {
		defaultConfig.BrokerURL = val
	}
	if val := os.Getenv("ZERONODE_STORE"); val != "" {
		defaultConfig.StorePath = val
	}
	if val, err := strconv.Atoi(os.Getenv("ZERONODE_BLOCK_SIZE")); err == nil && val > 0 {
		defaultConfig.BlockSize = val
	}
}

// SetupFlags sets up command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.BrokerURL, "broker", defaultConfig.BrokerURL, "MQTT broker URL for the simulated radio.")
	flag.StringVar(&defaultConfig.StorePath, "store", defaultConfig.StorePath, "File backing the parameter storage.")
	flag.IntVar(&defaultConfig.BlockSize, "block-size", defaultConfig.BlockSize, "Parameter storage block size.")
	flag.StringVar(&defaultConfig.TermAddr, "term", defaultConfig.TermAddr, "Serve the console on a websocket address instead of stdio.")
	flag.IntVar(&defaultConfig.RingSize, "ring-size", defaultConfig.RingSize, "Receive ring buffer capacity.")
	flag.IntVar(&defaultConfig.MaxLine, "max-line", defaultConfig.MaxLine, "Console line length limit.")
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}
