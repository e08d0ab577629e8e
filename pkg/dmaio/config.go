package dmaio

import (
	"flag"
	"os"
	"strconv"
	"time"

	"github.com/robotalks/dmaio/pkg/hal"
)

// Config defines the options of a Transport.
type Config struct {
	Capacity     int
	Echo         bool
	PollInterval time.Duration
}

var defaultConfig = Config{
	Capacity:     DefaultCapacity,
	PollInterval: 50 * time.Microsecond,
}

func init() {
	if val := os.Getenv("DMAIO_BUFFER_SIZE"); val != "" {
		if n, err := strconv.Atoi(val); err == nil && n > 1 {
			defaultConfig.Capacity = n
		}
	}
	if val := os.Getenv("DMAIO_ECHO"); val != "" {
		defaultConfig.Echo, _ = strconv.ParseBool(val)
	}
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.IntVar(&defaultConfig.Capacity, "buffer-size", defaultConfig.Capacity, "Size of the TX and RX rings in bytes.")
	flag.BoolVar(&defaultConfig.Echo, "echo", defaultConfig.Echo, "Echo received bytes back.")
	flag.DurationVar(&defaultConfig.PollInterval, "poll", defaultConfig.PollInterval, "Receive polling interval, 0 to spin.")
}

// Default gets the default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with defaults.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// NewTransport creates an unbound Transport using the config.
func (c *Config) NewTransport() *Transport {
	t := New(c.Capacity)
	t.PollInterval = c.PollInterval
	return t
}

// Bind creates a Transport and binds the peripheral.
func (c *Config) Bind(periph hal.Peripheral) (*Transport, error) {
	t := c.NewTransport()
	if err := t.Setup(periph, c.Echo); err != nil {
		return nil, err
	}
	return t, nil
}
