package link

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/golang/glog"

	fx "github.com/robotalks/dmaio/pkg/framework"
	"github.com/robotalks/dmaio/pkg/hal"
	"github.com/robotalks/dmaio/pkg/hal/engine"
)

// ErrTimeout is returned by TransmitBlocking when the write doesn't
// finish in time.
var ErrTimeout = errors.New("link: transmit timeout")

// Peripheral is a hal.Peripheral over a PacketReadWriter.
// Each DMA transmit transfer becomes one written packet, and every
// packet read is fed into the receive channel.
type Peripheral struct {
	ReadWriter PacketReadWriter

	tx        *engine.TxEngine
	rx        *engine.RxEngine
	callbacks hal.Callbacks
	sendLock  sync.Mutex
}

// New creates a Peripheral with given PacketReadWriter.
func New(rw PacketReadWriter) *Peripheral {
	p := &Peripheral{ReadWriter: rw, rx: engine.NewRxEngine()}
	p.tx = engine.NewTxEngine(&p.callbacks, p.send)
	return p
}

// TxDMA implements hal.Peripheral.
func (p *Peripheral) TxDMA() hal.TxChannel {
	return p.tx
}

// RxDMA implements hal.Peripheral.
func (p *Peripheral) RxDMA() hal.RxChannel {
	return p.rx
}

// CallbacksEnabled implements hal.CallbackRegistrar.
func (p *Peripheral) CallbacksEnabled() bool {
	return true
}

// RegisterCallback implements hal.CallbackRegistrar.
func (p *Peripheral) RegisterCallback(id hal.CallbackID, fn func()) {
	p.callbacks.Register(id, fn)
}

// TransmitBlocking implements hal.RawTransmitter.
func (p *Peripheral) TransmitBlocking(b []byte, timeout time.Duration) error {
	data := append([]byte(nil), b...)
	errCh := make(chan error, 1)
	go func() {
		errCh <- p.send(data)
	}()
	select {
	case err := <-errCh:
		return err
	case <-time.After(timeout):
		return ErrTimeout
	}
}

// Inject implements Injector.
func (p *Peripheral) Inject(b []byte) int {
	return p.rx.Feed(b)
}

// Received returns the number of bytes fed into the receive channel.
func (p *Peripheral) Received() uint64 {
	return p.rx.Received()
}

// Run implements Runnable. It pumps incoming packets into the receive
// channel until ctx is done or the ReadWriter fails. If the ReadWriter
// is Runnable itself, it runs alongside.
func (p *Peripheral) Run(ctx context.Context) error {
	runner := fx.NewRunnerWith(ctx)
	if runnable, ok := p.ReadWriter.(fx.Runnable); ok {
		runner.Go(fx.NamedRun("link", runnable))
	}
	runner.Go(fx.NamedRun("pump", fx.RunFunc(p.pump)))
	return runner.Wait()
}

// Close implements io.Closer.
func (p *Peripheral) Close() error {
	if closer, ok := p.ReadWriter.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

func (p *Peripheral) pump(ctx context.Context) error {
	return fx.RunWithContextCancel(ctx, func() { p.Close() }, func() error {
		for {
			pkt, err := p.ReadWriter.ReadPacket()
			if err != nil {
				return err
			}
			if n := p.rx.Feed(pkt); n < len(pkt) {
				glog.Warningf("link: dropped %d bytes, receive channel not armed", len(pkt)-n)
			}
		}
	})
}

func (p *Peripheral) send(b []byte) error {
	p.sendLock.Lock()
	defer p.sendLock.Unlock()
	return p.ReadWriter.WritePacket(b)
}
