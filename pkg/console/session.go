// Package console provides an interactive shell over a DMA transport.
package console

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/robotalks/dmaio/pkg/dmaio"
	"github.com/robotalks/dmaio/pkg/hal"
	"github.com/robotalks/dmaio/pkg/hal/sim"
	"github.com/robotalks/dmaio/pkg/link"
)

// DefaultReadTimeout bounds the read command.
const DefaultReadTimeout = 5 * time.Second

// Session executes console commands against a transport and the device
// it's bound to.
type Session struct {
	Transport  *dmaio.Transport
	Device     hal.Peripheral
	OutputJSON bool
}

// NewSession creates a Session.
func NewSession(t *dmaio.Transport, dev hal.Peripheral) *Session {
	return &Session{Transport: t, Device: dev}
}

// Print queues text for transmission.
func (s *Session) Print(text string) (int, error) {
	return s.Transport.Write([]byte(text))
}

// ReadLine reads one line, waiting at most timeout.
func (s *Session) ReadLine(ctx context.Context, maxLen int, timeout time.Duration) (string, error) {
	if timeout <= 0 {
		timeout = DefaultReadTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	buf := make([]byte, maxLen)
	n, err := s.Transport.Read(ctx, buf)
	return string(buf[:n]), err
}

// SetEcho parses on/off and switches echo.
func (s *Session) SetEcho(arg string) error {
	on, err := parseSwitch(arg)
	if err != nil {
		return err
	}
	if on {
		s.Transport.EnableEcho()
	} else {
		s.Transport.DisableEcho()
	}
	return nil
}

// Inject feeds text into the device as if it arrived on the wire.
func (s *Session) Inject(text string) (int, error) {
	injector, ok := s.Device.(link.Injector)
	if !ok {
		return 0, fmt.Errorf("device doesn't support inject")
	}
	return injector.Inject([]byte(text)), nil
}

// Sent returns bytes transmitted by a simulated device.
func (s *Session) Sent() ([]byte, error) {
	p, ok := s.Device.(*sim.Peripheral)
	if !ok {
		return nil, fmt.Errorf("only simulated devices record sent bytes")
	}
	return p.Sent(), nil
}

// FormatStats formats current transport stats.
func (s *Session) FormatStats() (string, error) {
	stats := s.Transport.Stats()
	if s.OutputJSON {
		out, err := json.Marshal(stats)
		return string(out), err
	}
	return fmt.Sprintf("capacity=%d bound=%v echo=%v\n"+
		"tx: accepted=%d pending=%d transfers=%d armed=%d refused=%d completions=%d overruns=%d\n"+
		"rx: bytes=%d lines=%d buffered=%d echoed=%d",
		stats.Capacity, stats.Bound, stats.Echo,
		stats.TxAccepted, stats.TxPending, stats.TxTransfers, stats.TxArmedBytes,
		stats.TxRefused, stats.TxCompletions, stats.TxOverruns,
		stats.RxBytes, stats.RxLines, stats.RxBuffered, stats.Echoed), nil
}

// FormatPending formats the bytes waiting in both rings.
func (s *Session) FormatPending() string {
	if s.OutputJSON {
		return fmt.Sprintf(`{"tx_pending":%d,"rx_buffered":%d}`,
			s.Transport.TxPending(), s.Transport.RxBuffered())
	}
	return fmt.Sprintf("tx=%d rx=%d", s.Transport.TxPending(), s.Transport.RxBuffered())
}

func parseSwitch(arg string) (bool, error) {
	switch strings.ToLower(arg) {
	case "on":
		return true, nil
	case "off":
		return false, nil
	}
	on, err := strconv.ParseBool(arg)
	if err != nil {
		return false, fmt.Errorf("expect on or off, got %q", arg)
	}
	return on, nil
}
