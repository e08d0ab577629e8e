// Package stream carries link packets over byte streams: serial ports,
// TCP connections or anything implementing io.ReadWriter.
package stream

import (
	"encoding/binary"
	"errors"
	"io"
	"net"
	"time"

	"go.bug.st/serial"
)

// DefaultChunkSize is the read size of unframed streams.
const DefaultChunkSize = 256

// MaxFrameSize bounds the length prefix accepted from framed streams.
const MaxFrameSize = 1 << 16

// ErrFrameTooLarge indicates a corrupted or hostile length prefix.
var ErrFrameTooLarge = errors.New("stream: frame too large")

// ReadWriter implements link.PacketReadWriter.
// Unframed, packets are whatever a single read returns and writes go
// out as is, which is what a terminal on the other end expects.
// Framed, each packet is prefixed by 4-byte (little-endian) length.
type ReadWriter struct {
	io.ReadWriter
	Framed    bool
	ChunkSize int
}

// New creates an unframed ReadWriter with io.ReadWriter.
func New(s io.ReadWriter) *ReadWriter {
	return &ReadWriter{ReadWriter: s}
}

// NewFramed creates a framed ReadWriter with io.ReadWriter.
func NewFramed(s io.ReadWriter) *ReadWriter {
	return &ReadWriter{ReadWriter: s, Framed: true}
}

// ReadPacket implements PacketReader.
func (p *ReadWriter) ReadPacket() ([]byte, error) {
	if p.Framed {
		return p.readFrame()
	}
	size := p.ChunkSize
	if size <= 0 {
		size = DefaultChunkSize
	}
	pkt := make([]byte, size)
	for {
		n, err := p.Read(pkt)
		if n > 0 {
			return pkt[:n], nil
		}
		if err != nil {
			return nil, err
		}
	}
}

func (p *ReadWriter) readFrame() ([]byte, error) {
	var size uint32
	if err := binary.Read(p, binary.LittleEndian, &size); err != nil {
		return nil, err
	}
	if size > MaxFrameSize {
		return nil, ErrFrameTooLarge
	}
	pkt := make([]byte, size)
	_, err := io.ReadFull(p, pkt)
	return pkt, err
}

// WritePacket implements PacketWriter.
func (p *ReadWriter) WritePacket(pkt []byte) error {
	if p.Framed {
		if err := binary.Write(p, binary.LittleEndian, uint32(len(pkt))); err != nil {
			return err
		}
	}
	_, err := p.Write(pkt)
	return err
}

// Close implements io.Closer.
func (p *ReadWriter) Close() error {
	if closer, ok := p.ReadWriter.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// SerialMode returns 8N1 mode at the given baud rate.
func SerialMode(baud int) *serial.Mode {
	return &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
}

// OpenSerial opens a serial port as an unframed ReadWriter.
func OpenSerial(name string, baud int) (*ReadWriter, error) {
	port, err := serial.Open(name, SerialMode(baud))
	if err != nil {
		return nil, err
	}
	return New(port), nil
}

// DialTCP connects to addr.
func DialTCP(addr string, framed bool, timeout time.Duration) (*ReadWriter, error) {
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, err
	}
	return &ReadWriter{ReadWriter: conn, Framed: framed}, nil
}
