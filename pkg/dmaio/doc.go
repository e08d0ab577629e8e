// Package dmaio provides buffered, non-blocking character I/O over a
// serial peripheral driven by DMA channels.
package dmaio

// Two rings make up a Transport. The transmit ring is filled by Write
// and drained by DMA transfers: each transfer covers one contiguous run
// of the ring and its completion callback arms the next run. The receive
// ring is filled by a free-running DMA channel which never interrupts;
// Read discovers new bytes by polling the channel's remaining count.
//
// Write never blocks. When the transmit ring is overrun the oldest
// unsent bytes are overwritten, favoring fresh output over complete
// output. Read returns a line at a time: "\r" and "\n" both end the read
// and are delivered as "\n".
//
// Until Setup binds a peripheral, Write discards its input and the read
// hook reports success, so formatted output works before the hardware
// is ready.
