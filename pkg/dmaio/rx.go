package dmaio

import (
	"context"
	"runtime"
	"time"

	"github.com/robotalks/dmaio/pkg/ring"
)

// Read reads at most one line into p. It waits until new bytes arrive
// and consumes them one at a time: "\r" and "\n" are stored as "\n" and
// end the read. Otherwise Read returns once p is full. With echo enabled
// every consumed byte is also queued for transmission.
//
// Read returns early with the bytes consumed so far and ctx.Err() when
// ctx is done, and ErrNotBound before Setup.
func (t *Transport) Read(ctx context.Context, p []byte) (int, error) {
	b := t.binding.Load()
	if b == nil {
		return 0, ErrNotBound
	}
	if len(p) == 0 {
		return 0, nil
	}

	t.readLock.Lock()
	defer t.readLock.Unlock()
	n := 0
	for n < len(p) {
		c, ok := b.receive()
		if !ok {
			if err := t.wait(ctx); err != nil {
				return n, err
			}
			continue
		}
		if c == '\r' {
			c = '\n'
		}
		p[n] = c
		n++
		t.stats.rxBytes.Inc()
		if t.echo.Load() {
			b.enqueue(p[n-1 : n])
			t.stats.echoed.Inc()
		}
		if c == '\n' {
			t.stats.rxLines.Inc()
			break
		}
	}
	return n, nil
}

// RxBuffered returns how many received bytes are waiting to be read.
func (t *Transport) RxBuffered() int {
	b := t.binding.Load()
	if b == nil {
		return 0
	}
	return ring.Distance(b.rx.ReadIndex(), b.position(), b.rx.Cap())
}

// position is where the receive channel writes next.
func (b *binding) position() int {
	return (b.rx.Cap() - b.rxc.Remaining()) % b.rx.Cap()
}

// receive consumes one byte, refreshing the write index from the
// channel's progress when the ring looks empty.
func (b *binding) receive() (byte, bool) {
	if c, ok := b.rx.Get(); ok {
		return c, true
	}
	b.rx.Publish(b.position())
	return b.rx.Get()
}

func (t *Transport) wait(ctx context.Context) error {
	if t.PollInterval <= 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		runtime.Gosched()
		return nil
	}
	timer := time.NewTimer(t.PollInterval)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
