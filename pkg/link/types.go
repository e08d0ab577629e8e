// Package link attaches the DMA transport to bytes travelling over a
// host-side channel: a serial port, a TCP or websocket connection, or
// MQTT topics.
package link

// PacketReader reads packets in bytes.
type PacketReader interface {
	ReadPacket() ([]byte, error)
}

// PacketWriter writes packets in bytes.
type PacketWriter interface {
	WritePacket([]byte) error
}

// PacketReadWriter reads/writes packets in bytes.
type PacketReadWriter interface {
	PacketReader
	PacketWriter
}

// Injector is implemented by peripherals able to receive bytes injected
// locally, as if they arrived on the wire.
type Injector interface {
	Inject([]byte) int
}
