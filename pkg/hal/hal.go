// Package hal defines what the DMA transport needs from the platform:
// DMA channels able to move a memory region to or from a peripheral, a
// progress counter for the receive channel, and completion callbacks.
package hal

import (
	"errors"
	"time"
)

var (
	// ErrBusy indicates a transfer is already outstanding on the channel.
	ErrBusy = errors.New("dma channel busy")
	// ErrNotArmed indicates the channel has no region to transfer into.
	ErrNotArmed = errors.New("dma channel not armed")
	// ErrAborted indicates the transfer was aborted before completion.
	ErrAborted = errors.New("dma transfer aborted")
)

// TxChannel is a one-shot transmit DMA channel.
type TxChannel interface {
	// BeginTransmit arms a transfer out of p. It returns immediately and
	// the registered TxComplete callback fires when the transfer is done.
	BeginTransmit(p []byte) error
	// Idle reports whether no transfer is in flight.
	Idle() bool
}

// ProgressSource reports how far a receive transfer has come.
type ProgressSource interface {
	// Remaining returns the number of bytes left before the armed region
	// is filled. The write position is len(region) - Remaining().
	Remaining() int
}

// RxChannel is a free-running, circular receive DMA channel.
type RxChannel interface {
	// BeginReceive arms a continuous transfer into p. The channel wraps to
	// the start of p when it reaches the end and never stops.
	BeginReceive(p []byte) error
	ProgressSource
}

// Peripheral is a serial peripheral with DMA channels attached.
// A nil channel means the capability is missing.
type Peripheral interface {
	TxDMA() TxChannel
	RxDMA() RxChannel
}

// RawTransmitter is implemented by peripherals able to send bytes
// without DMA. It is only used for diagnostics before DMA is available.
type RawTransmitter interface {
	TransmitBlocking(p []byte, timeout time.Duration) error
}
