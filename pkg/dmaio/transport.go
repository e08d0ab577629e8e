package dmaio

import (
	"sync"
	"time"

	"github.com/golang/glog"
	"go.uber.org/atomic"

	"github.com/robotalks/dmaio/pkg/hal"
	"github.com/robotalks/dmaio/pkg/ring"
)

// DefaultCapacity is the default size of each ring.
const DefaultCapacity = 1024

// diagTimeout bounds the raw diagnostic transmit of a failed Setup.
const diagTimeout = 100 * time.Millisecond

// Transport buffers character I/O over one bound peripheral.
type Transport struct {
	// PollInterval paces Read while it waits for bytes.
	// With 0, Read only yields the processor between polls.
	PollInterval time.Duration

	capacity int
	binding  atomic.Pointer[binding]
	echo     atomic.Bool
	stats    counters
	readLock sync.Mutex
}

// binding is the state created by one successful Setup. Rebinding
// replaces it as a whole, so callbacks from engines of an earlier
// binding never touch the rings of the current one.
type binding struct {
	periph hal.Peripheral
	txc    hal.TxChannel
	rxc    hal.RxChannel
	tx     *ring.Buffer
	rx     *ring.Buffer
	stats  *counters

	// claimed is set while a transfer armed from tx is outstanding.
	// Only the goroutine that set it may advance tx's read index.
	claimed atomic.Bool
	// writeLock serializes producers; callbacks never take it.
	writeLock sync.Mutex
}

// New creates an unbound Transport with rings of the given capacity.
// A capacity <= 0 selects DefaultCapacity.
func New(capacity int) *Transport {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Transport{capacity: capacity}
}

// Setup binds a peripheral, validating its capabilities in order: the
// peripheral itself, transmit DMA, receive DMA, callback registration.
// On success both rings start empty at index 0, completion callbacks are
// registered and continuous reception is armed. On failure the previous
// binding, if any, stays in place.
func (t *Transport) Setup(periph hal.Peripheral, echo bool) error {
	b, err := t.bind(periph)
	if err != nil {
		t.reportBindingError(periph, err)
		return err
	}
	t.echo.Store(echo)
	if prev := t.binding.Swap(b); prev != nil {
		glog.V(1).Infof("dmaio: rebinding transport, %d unsent bytes dropped", prev.tx.Len())
	}
	return nil
}

func (t *Transport) bind(periph hal.Peripheral) (*binding, error) {
	if periph == nil {
		return nil, ErrNullHandle
	}
	txc := periph.TxDMA()
	if txc == nil {
		return nil, ErrNoTxCapability
	}
	rxc := periph.RxDMA()
	if rxc == nil {
		return nil, ErrNoRxCapability
	}
	reg, ok := periph.(hal.CallbackRegistrar)
	if !ok || !reg.CallbacksEnabled() {
		return nil, ErrNoCallbackSupport
	}

	b := &binding{
		periph: periph,
		txc:    txc,
		rxc:    rxc,
		tx:     ring.New(t.capacity),
		rx:     ring.New(t.capacity),
		stats:  &t.stats,
	}
	if err := rxc.BeginReceive(b.rx.Bytes()); err != nil {
		return nil, &BindingError{Code: NoRxCapability, Err: err}
	}
	// an abort is handled like a completion: check for more pending data.
	reg.RegisterCallback(hal.TxComplete, b.onTransmissionComplete)
	reg.RegisterCallback(hal.TxAbortComplete, b.onTransmissionComplete)
	return b, nil
}

func (t *Transport) reportBindingError(periph hal.Peripheral, err error) {
	glog.Errorf("dmaio: setup failed: %v", err)
	if periph == nil {
		return
	}
	raw, ok := periph.(hal.RawTransmitter)
	if !ok {
		return
	}
	msg := []byte("[dmaio] Error: " + err.Error() + ".\r\n")
	if e := raw.TransmitBlocking(msg, diagTimeout); e != nil {
		glog.V(2).Infof("dmaio: diagnostic transmit failed: %v", e)
	}
}

// Bound indicates whether Setup succeeded at least once.
func (t *Transport) Bound() bool {
	return t.binding.Load() != nil
}

// Peripheral returns the bound peripheral or nil.
func (t *Transport) Peripheral() hal.Peripheral {
	if b := t.binding.Load(); b != nil {
		return b.periph
	}
	return nil
}

// EnableEcho makes Read send every consumed byte back out.
func (t *Transport) EnableEcho() {
	t.echo.Store(true)
}

// DisableEcho stops echoing. Bytes already consumed are not affected.
func (t *Transport) DisableEcho() {
	t.echo.Store(false)
}

// Echo reports whether echo is enabled.
func (t *Transport) Echo() bool {
	return t.echo.Load()
}

// BufferCapacity returns the size of each ring.
func (t *Transport) BufferCapacity() int {
	return t.capacity
}
