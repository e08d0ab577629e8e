package dmaio

import (
	"github.com/golang/glog"
)

// Write implements io.Writer. It queues p for transmission and returns
// len(p), nil without waiting; see the package doc for overrun
// behavior. Without a bound peripheral p is discarded.
func (t *Transport) Write(p []byte) (int, error) {
	t.stats.txAccepted.Add(uint64(len(p)))
	if b := t.binding.Load(); b != nil && len(p) > 0 {
		b.enqueue(p)
	}
	return len(p), nil
}

// TxPending returns the number of queued bytes not yet handed to DMA.
func (t *Transport) TxPending() int {
	if b := t.binding.Load(); b != nil {
		return b.tx.Len()
	}
	return 0
}

func (b *binding) enqueue(p []byte) {
	b.writeLock.Lock()
	overrun := b.tx.Put(p)
	b.writeLock.Unlock()
	if overrun {
		b.stats.txOverruns.Inc()
	}
	b.kick()
}

// kick starts a transfer if the channel is idle and none is claimed.
func (b *binding) kick() {
	if b.txc.Idle() && b.claimed.CompareAndSwap(false, true) {
		b.startTransmission()
	}
}

// startTransmission arms the next contiguous run of the ring. The caller
// must hold the claim; it is released when nothing is left to send.
func (b *binding) startTransmission() {
	for {
		run, next := b.tx.Pending()
		if len(run) == 0 {
			b.claimed.Store(false)
			// a producer may have queued bytes after Pending but before the
			// release, and its kick failed to claim.
			if b.tx.Empty() || !b.claimed.CompareAndSwap(false, true) {
				return
			}
			continue
		}
		// Commit before arming: the completion may fire before
		// BeginTransmit returns.
		prev := b.tx.ReadIndex()
		b.tx.Commit(next)
		if err := b.txc.BeginTransmit(run); err != nil {
			b.tx.Commit(prev)
			b.stats.txRefused.Inc()
			b.claimed.Store(false)
			glog.Warningf("dmaio: transmit of %d bytes not armed: %v", len(run), err)
			return
		}
		b.stats.txTransfers.Inc()
		b.stats.txArmed.Add(uint64(len(run)))
		if glog.V(2) {
			glog.Infof("dmaio: armed %d bytes, read index %d", len(run), next)
		}
		return
	}
}

// onTransmissionComplete runs in the channel's completion context.
func (b *binding) onTransmissionComplete() {
	b.stats.txCompletions.Inc()
	if !b.claimed.Load() {
		// the finished transfer was armed by an earlier binding.
		b.kick()
		return
	}
	b.startTransmission()
}
