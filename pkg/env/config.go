// Package env builds devices and publishers from command line flags and
// environment variables.
package env

import (
	"flag"
	"fmt"
	"io"
	"net/url"
	"os"
	"strconv"
	"time"

	fx "github.com/robotalks/dmaio/pkg/framework"
	"github.com/robotalks/dmaio/pkg/hal"
	"github.com/robotalks/dmaio/pkg/hal/sim"
	"github.com/robotalks/dmaio/pkg/link"
	"github.com/robotalks/dmaio/pkg/link/mqtt"
	"github.com/robotalks/dmaio/pkg/link/stream"
	"github.com/robotalks/dmaio/pkg/link/websocket"
	"github.com/robotalks/dmaio/pkg/telemetry"
)

// Device is a peripheral which must be running to move bytes.
type Device interface {
	hal.Peripheral
	fx.Runnable
}

// Config provides common options to create devices.
type Config struct {
	// DeviceID names the device in MQTT topics. Defaults to MachineID.
	DeviceID string

	// LinkURL specifies where the device bytes go, e.g.
	//   sim://local?loopback=true
	//   serial:///dev/ttyUSB0?baud=115200
	//   tcp://host:port?framed=true
	//   ws://host:port/path
	//   mqtt://host:port/topic-prefix
	LinkURL string

	// TelemetryURL is the MQTT broker for stats, empty to disable.
	TelemetryURL      string
	TelemetryInterval time.Duration

	DialTimeout time.Duration
}

// DefaultBaudRate is used for serial links without baud.
const DefaultBaudRate = 115200

var defaultConfig = Config{
	LinkURL:           "sim://local?loopback=true",
	TelemetryInterval: telemetry.DefaultInterval,
	DialTimeout:       5 * time.Second,
}

func init() {
	if val := os.Getenv("DMAIO_ID"); val != "" {
		defaultConfig.DeviceID = val
	}
	if val := os.Getenv("DMAIO_LINK"); val != "" {
		defaultConfig.LinkURL = val
	}
	if val := os.Getenv("DMAIO_TELEMETRY_URL"); val != "" {
		defaultConfig.TelemetryURL = val
	}
}

// SetupFlags sets up command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.DeviceID, "id", defaultConfig.DeviceID, "Device ID, defaults to the machine ID.")
	flag.StringVar(&defaultConfig.LinkURL, "link", defaultConfig.LinkURL, "Link URL of the device.")
	flag.StringVar(&defaultConfig.TelemetryURL, "telemetry", defaultConfig.TelemetryURL, "MQTT URL to publish stats.")
	flag.DurationVar(&defaultConfig.TelemetryInterval, "telemetry-interval", defaultConfig.TelemetryInterval, "Stats publishing interval.")
}

// Default gets the default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// ID returns the device ID.
func (c *Config) ID() string {
	if c.DeviceID != "" {
		return c.DeviceID
	}
	if id := MachineID(); id != "" {
		return id
	}
	return appID
}

// NewDevice creates the device the LinkURL points to.
func (c *Config) NewDevice() (Device, error) {
	u, err := url.Parse(c.LinkURL)
	if err != nil {
		return nil, fmt.Errorf("invalid link URL: %v", err)
	}
	query := u.Query()
	switch u.Scheme {
	case "sim":
		p, err := newSim(query)
		if err != nil {
			return nil, err
		}
		return p, nil
	case "serial":
		baud := DefaultBaudRate
		if val := query.Get("baud"); val != "" {
			if baud, err = strconv.Atoi(val); err != nil || baud <= 0 {
				return nil, fmt.Errorf("invalid baud rate: %q", val)
			}
		}
		name := u.Path
		if name == "" {
			name = u.Opaque
		}
		rw, err := stream.OpenSerial(name, baud)
		if err != nil {
			return nil, err
		}
		rw.Framed = boolParam(query, "framed")
		return link.New(rw), nil
	case "tcp":
		rw, err := stream.DialTCP(u.Host, boolParam(query, "framed"), c.DialTimeout)
		if err != nil {
			return nil, err
		}
		return link.New(rw), nil
	case "ws", "wss":
		rw, err := websocket.Dial(c.LinkURL, query.Get("origin"))
		if err != nil {
			return nil, err
		}
		return link.New(rw), nil
	case "mqtt", "mqtts":
		q, err := mqtt.NewQueueFromURL(c.LinkURL)
		if err != nil {
			return nil, err
		}
		if err := q.Connect(); err != nil {
			return nil, err
		}
		return link.New(mqtt.NewPacketReadWriter(q).ForDevice(c.ID())), nil
	default:
		return nil, fmt.Errorf("unknown link URL scheme: %q", u.Scheme)
	}
}

// NewPublisher creates a telemetry publisher for source. It returns nil
// when TelemetryURL is empty. The returned Closer disconnects from the
// broker.
func (c *Config) NewPublisher(source telemetry.StatsSource) (*telemetry.Publisher, io.Closer, error) {
	if c.TelemetryURL == "" {
		return nil, nil, nil
	}
	q, err := mqtt.NewQueueFromURL(c.TelemetryURL)
	if err != nil {
		return nil, nil, err
	}
	if err := q.Connect(); err != nil {
		return nil, nil, err
	}
	return &telemetry.Publisher{
		DeviceID: c.ID(),
		Interval: c.TelemetryInterval,
		Source:   source,
		Publish:  q.Publish,
	}, q, nil
}

func newSim(query url.Values) (*sim.Peripheral, error) {
	opts := sim.Options{
		NoTxDMA:     boolParam(query, "no-tx"),
		NoRxDMA:     boolParam(query, "no-rx"),
		NoCallbacks: boolParam(query, "no-callbacks"),
		Loopback:    boolParam(query, "loopback"),
	}
	if val := query.Get("byte-time"); val != "" {
		d, err := time.ParseDuration(val)
		if err != nil {
			return nil, fmt.Errorf("invalid byte-time: %v", err)
		}
		opts.ByteTime = d
	}
	return sim.New(opts), nil
}

func boolParam(query url.Values, name string) bool {
	val, ok := query[name]
	if !ok {
		return false
	}
	if len(val) == 0 || val[0] == "" {
		return true
	}
	b, _ := strconv.ParseBool(val[0])
	return b
}
