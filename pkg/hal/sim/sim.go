// Package sim provides an in-memory serial peripheral with software DMA
// channels, for tests and for running the transport without hardware.
package sim

import (
	"context"
	"sync"
	"time"

	"github.com/robotalks/dmaio/pkg/hal"
	"github.com/robotalks/dmaio/pkg/hal/engine"
)

// Options selects the capabilities of the simulated peripheral.
type Options struct {
	NoTxDMA     bool
	NoRxDMA     bool
	NoCallbacks bool
	// Loopback feeds every transmitted byte back into the receive channel.
	Loopback bool
	// ByteTime paces transmit transfers.
	ByteTime time.Duration
}

// Peripheral is a simulated serial peripheral.
type Peripheral struct {
	Options

	tx        *engine.TxEngine
	rx        *engine.RxEngine
	callbacks hal.Callbacks

	lock      sync.Mutex
	transfers [][]byte
	sent      []byte
	raw       []byte
	sentCh    chan struct{}
}

// New creates a Peripheral.
func New(opts Options) *Peripheral {
	p := &Peripheral{
		Options: opts,
		rx:      engine.NewRxEngine(),
		sentCh:  make(chan struct{}, 1),
	}
	p.tx = engine.NewTxEngine(&p.callbacks, p.sink)
	p.tx.ByteTime = opts.ByteTime
	return p
}

// TxDMA implements hal.Peripheral.
func (p *Peripheral) TxDMA() hal.TxChannel {
	if p.NoTxDMA {
		return nil
	}
	return p.tx
}

// RxDMA implements hal.Peripheral.
func (p *Peripheral) RxDMA() hal.RxChannel {
	if p.NoRxDMA {
		return nil
	}
	return p.rx
}

// CallbacksEnabled implements hal.CallbackRegistrar.
func (p *Peripheral) CallbacksEnabled() bool {
	return !p.NoCallbacks
}

// RegisterCallback implements hal.CallbackRegistrar.
func (p *Peripheral) RegisterCallback(id hal.CallbackID, fn func()) {
	p.callbacks.Register(id, fn)
}

// TransmitBlocking implements hal.RawTransmitter.
func (p *Peripheral) TransmitBlocking(b []byte, timeout time.Duration) error {
	p.lock.Lock()
	p.raw = append(p.raw, b...)
	p.lock.Unlock()
	return nil
}

// Inject simulates bytes arriving on the wire.
func (p *Peripheral) Inject(b []byte) int {
	return p.rx.Feed(b)
}

// Engine returns the transmit engine, e.g. to Abort a transfer.
func (p *Peripheral) Engine() *engine.TxEngine {
	return p.tx
}

// Transfers returns a copy of every transfer delivered so far.
func (p *Peripheral) Transfers() [][]byte {
	p.lock.Lock()
	defer p.lock.Unlock()
	out := make([][]byte, len(p.transfers))
	copy(out, p.transfers)
	return out
}

// Sent returns all transmitted bytes in order.
func (p *Peripheral) Sent() []byte {
	p.lock.Lock()
	defer p.lock.Unlock()
	return append([]byte(nil), p.sent...)
}

// Raw returns bytes sent through TransmitBlocking.
func (p *Peripheral) Raw() []byte {
	p.lock.Lock()
	defer p.lock.Unlock()
	return append([]byte(nil), p.raw...)
}

// WaitSent blocks until at least n bytes were transmitted.
func (p *Peripheral) WaitSent(ctx context.Context, n int) ([]byte, error) {
	for {
		if sent := p.Sent(); len(sent) >= n {
			return sent, nil
		}
		select {
		case <-p.sentCh:
		case <-ctx.Done():
			return p.Sent(), ctx.Err()
		}
	}
}

// Run blocks until ctx is done. It makes the peripheral a Runnable like
// the link peripherals.
func (p *Peripheral) Run(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

func (p *Peripheral) sink(b []byte) error {
	if p.Loopback {
		p.rx.Feed(b)
	}
	p.lock.Lock()
	p.transfers = append(p.transfers, b)
	p.sent = append(p.sent, b...)
	p.lock.Unlock()
	select {
	case p.sentCh <- struct{}{}:
	default:
	}
	return nil
}
