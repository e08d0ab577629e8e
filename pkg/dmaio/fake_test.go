package dmaio

import (
	"time"

	"github.com/robotalks/dmaio/pkg/hal"
)

// fakeTx records armed transfers; completions are fired by the test.
type fakeTx struct {
	arms   [][]byte
	busy   bool
	refuse error
}

func (f *fakeTx) BeginTransmit(p []byte) error {
	if f.refuse != nil {
		return f.refuse
	}
	if f.busy {
		return hal.ErrBusy
	}
	f.busy = true
	f.arms = append(f.arms, append([]byte(nil), p...))
	return nil
}

func (f *fakeTx) Idle() bool { return !f.busy }

func (f *fakeTx) sent() string {
	var s []byte
	for _, arm := range f.arms {
		s = append(s, arm...)
	}
	return string(s)
}

// fakeRx is a circular receive channel fed by the test.
type fakeRx struct {
	buf    []byte
	pos    int
	armErr error
}

func (f *fakeRx) BeginReceive(p []byte) error {
	if f.armErr != nil {
		return f.armErr
	}
	f.buf, f.pos = p, 0
	return nil
}

func (f *fakeRx) Remaining() int { return len(f.buf) - f.pos }

func (f *fakeRx) feed(s string) {
	for i := 0; i < len(s); i++ {
		f.buf[f.pos] = s[i]
		f.pos = (f.pos + 1) % len(f.buf)
	}
}

type fakePeriph struct {
	tx          *fakeTx
	rx          *fakeRx
	noTx        bool
	noRx        bool
	noCallbacks bool
	callbacks   hal.Callbacks
	raw         []byte
}

func newFakePeriph() *fakePeriph {
	return &fakePeriph{tx: &fakeTx{}, rx: &fakeRx{}}
}

func (p *fakePeriph) TxDMA() hal.TxChannel {
	if p.noTx {
		return nil
	}
	return p.tx
}

func (p *fakePeriph) RxDMA() hal.RxChannel {
	if p.noRx {
		return nil
	}
	return p.rx
}

func (p *fakePeriph) CallbacksEnabled() bool { return !p.noCallbacks }

func (p *fakePeriph) RegisterCallback(id hal.CallbackID, fn func()) {
	p.callbacks.Register(id, fn)
}

func (p *fakePeriph) TransmitBlocking(b []byte, timeout time.Duration) error {
	p.raw = append(p.raw, b...)
	return nil
}

// complete finishes the in-flight transfer like the DMA interrupt would.
func (p *fakePeriph) complete() {
	p.tx.busy = false
	p.callbacks.Fire(hal.TxComplete)
}

func (p *fakePeriph) abort() {
	p.tx.busy = false
	p.callbacks.Fire(hal.TxAbortComplete)
}

// drain completes transfers until the channel stays idle.
func (p *fakePeriph) drain() {
	for p.tx.busy {
		p.complete()
	}
}

// noCallbackPeriph has DMA channels but no callback registration.
type noCallbackPeriph struct {
	tx *fakeTx
	rx *fakeRx
}

func (p *noCallbackPeriph) TxDMA() hal.TxChannel { return p.tx }
func (p *noCallbackPeriph) RxDMA() hal.RxChannel { return p.rx }
