package dmaio

import (
	"go.uber.org/atomic"
)

type counters struct {
	txAccepted    atomic.Uint64
	txOverruns    atomic.Uint64
	txTransfers   atomic.Uint64
	txArmed       atomic.Uint64
	txRefused     atomic.Uint64
	txCompletions atomic.Uint64
	rxBytes       atomic.Uint64
	rxLines       atomic.Uint64
	echoed        atomic.Uint64
}

// Stats is a snapshot of transport counters since creation.
type Stats struct {
	Capacity int  `json:"capacity"`
	Bound    bool `json:"bound"`
	Echo     bool `json:"echo"`

	TxAccepted    uint64 `json:"tx_accepted"`    // bytes given to Write
	TxOverruns    uint64 `json:"tx_overruns"`    // writes which overwrote unsent bytes
	TxTransfers   uint64 `json:"tx_transfers"`   // DMA transfers armed
	TxArmedBytes  uint64 `json:"tx_armed_bytes"` // bytes covered by armed transfers
	TxRefused     uint64 `json:"tx_refused"`     // arms refused by the channel
	TxCompletions uint64 `json:"tx_completions"` // completion and abort callbacks
	TxPending     int    `json:"tx_pending"`

	RxBytes    uint64 `json:"rx_bytes"`
	RxLines    uint64 `json:"rx_lines"`
	RxBuffered int    `json:"rx_buffered"`
	Echoed     uint64 `json:"echoed"`
}

// Stats returns a snapshot of the counters.
func (t *Transport) Stats() Stats {
	return Stats{
		Capacity: t.capacity,
		Bound:    t.Bound(),
		Echo:     t.Echo(),

		TxAccepted:    t.stats.txAccepted.Load(),
		TxOverruns:    t.stats.txOverruns.Load(),
		TxTransfers:   t.stats.txTransfers.Load(),
		TxArmedBytes:  t.stats.txArmed.Load(),
		TxRefused:     t.stats.txRefused.Load(),
		TxCompletions: t.stats.txCompletions.Load(),
		TxPending:     t.TxPending(),

		RxBytes:    t.stats.rxBytes.Load(),
		RxLines:    t.stats.rxLines.Load(),
		RxBuffered: t.RxBuffered(),
		Echoed:     t.stats.echoed.Load(),
	}
}
