// Package engine implements the DMA channels of package hal in software,
// for peripherals whose bytes travel over a host-side channel.
package engine

import (
	"sync"
	"time"

	"github.com/golang/glog"
	"go.uber.org/atomic"

	"github.com/robotalks/dmaio/pkg/hal"
)

// TxEngine is a one-shot transmit channel. Each armed region is copied
// (the snapshot a DMA controller would take) and handed to Sink on a
// separate goroutine, which then fires the completion callback.
type TxEngine struct {
	// Sink receives the bytes of each transfer. A non-nil error aborts the
	// transfer and fires TxAbortComplete instead of TxComplete.
	Sink func([]byte) error
	// ByteTime paces transfers to look like a wire, 0 for no pacing.
	ByteTime time.Duration

	callbacks *hal.Callbacks
	busy      atomic.Bool
	abort     atomic.Bool
	transfers atomic.Uint64
	bytes     atomic.Uint64
}

// NewTxEngine creates a TxEngine firing callbacks from cbs.
func NewTxEngine(cbs *hal.Callbacks, sink func([]byte) error) *TxEngine {
	return &TxEngine{Sink: sink, callbacks: cbs}
}

// BeginTransmit implements hal.TxChannel.
func (e *TxEngine) BeginTransmit(p []byte) error {
	if !e.busy.CompareAndSwap(false, true) {
		return hal.ErrBusy
	}
	data := make([]byte, len(p))
	copy(data, p)
	e.abort.Store(false)
	go e.transfer(data)
	return nil
}

// Idle implements hal.TxChannel.
func (e *TxEngine) Idle() bool {
	return !e.busy.Load()
}

// Abort requests the in-flight transfer to be dropped. The abort
// callback fires instead of the completion callback.
func (e *TxEngine) Abort() {
	if e.busy.Load() {
		e.abort.Store(true)
	}
}

// Transfers returns the number of transfers completed or aborted.
func (e *TxEngine) Transfers() uint64 {
	return e.transfers.Load()
}

// Bytes returns the number of bytes delivered to Sink successfully.
func (e *TxEngine) Bytes() uint64 {
	return e.bytes.Load()
}

func (e *TxEngine) transfer(data []byte) {
	if e.ByteTime > 0 {
		time.Sleep(time.Duration(len(data)) * e.ByteTime)
	}
	var err error
	if e.abort.Load() {
		err = hal.ErrAborted
	} else if sink := e.Sink; sink != nil {
		err = sink(data)
	}
	e.transfers.Inc()
	// the channel reads idle before the callback runs, so the callback
	// is able to arm the next transfer.
	e.busy.Store(false)
	if err != nil {
		glog.V(2).Infof("tx transfer of %d bytes aborted: %v", len(data), err)
		e.callbacks.Fire(hal.TxAbortComplete)
		return
	}
	e.bytes.Add(uint64(len(data)))
	e.callbacks.Fire(hal.TxComplete)
}

// RxEngine is a circular receive channel. Bytes arrive through Feed and
// are stored into the armed region, wrapping at its end.
type RxEngine struct {
	buf       []byte
	pos       int
	lock      sync.Mutex
	remaining atomic.Int64
	received  atomic.Uint64
	dropped   atomic.Uint64
}

// NewRxEngine creates an unarmed RxEngine.
func NewRxEngine() *RxEngine {
	return &RxEngine{}
}

// BeginReceive implements hal.RxChannel.
func (e *RxEngine) BeginReceive(p []byte) error {
	if len(p) == 0 {
		return hal.ErrNotArmed
	}
	e.lock.Lock()
	e.buf, e.pos = p, 0
	e.remaining.Store(int64(len(p)))
	e.lock.Unlock()
	return nil
}

// Remaining implements hal.ProgressSource.
func (e *RxEngine) Remaining() int {
	return int(e.remaining.Load())
}

// Feed stores incoming bytes and returns how many were accepted.
// Nothing is accepted before the channel is armed.
func (e *RxEngine) Feed(p []byte) int {
	e.lock.Lock()
	defer e.lock.Unlock()
	if e.buf == nil {
		e.dropped.Add(uint64(len(p)))
		return 0
	}
	n := len(e.buf)
	for _, c := range p {
		e.buf[e.pos] = c
		if e.pos++; e.pos == n {
			e.pos = 0
		}
		// publish after the byte store
		e.remaining.Store(int64(n - e.pos))
	}
	e.received.Add(uint64(len(p)))
	return len(p)
}

// Received returns the number of bytes accepted by Feed.
func (e *RxEngine) Received() uint64 {
	return e.received.Load()
}

// Dropped returns the number of bytes fed while unarmed.
func (e *RxEngine) Dropped() uint64 {
	return e.dropped.Load()
}
