package mqtt

import (
	"context"
	"io"
	"sync"
)

// Topic suffixes of a device. Bytes published to <id>/rx arrive at the
// device, bytes the device transmits are published to <id>/tx.
const (
	RxTopicSuffix    = "/rx"
	TxTopicSuffix    = "/tx"
	StatsTopicSuffix = "/stats"
)

// ReadWriter implements link.PacketReadWriter.
type ReadWriter struct {
	Queue    *Queue
	SubTopic string
	PubTopic string

	packetCh  chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

// NewPacketReadWriter creates the ReadWriter.
func NewPacketReadWriter(q *Queue) *ReadWriter {
	return &ReadWriter{
		Queue:    q,
		packetCh: make(chan []byte, 16),
		done:     make(chan struct{}),
	}
}

// WithTopics specifies the topics.
func (p *ReadWriter) WithTopics(sub, pub string) *ReadWriter {
	p.SubTopic, p.PubTopic = sub, pub
	return p
}

// ForDevice sets topics using the device convention:
// SubTopic = id/rx
// PubTopic = id/tx
func (p *ReadWriter) ForDevice(id string) *ReadWriter {
	return p.WithTopics(id+RxTopicSuffix, id+TxTopicSuffix)
}

// ForTerminal sets topics for the other end of a device.
func (p *ReadWriter) ForTerminal(id string) *ReadWriter {
	return p.WithTopics(id+TxTopicSuffix, id+RxTopicSuffix)
}

// ReadPacket implements PacketReader.
func (p *ReadWriter) ReadPacket() ([]byte, error) {
	select {
	case pkt := <-p.packetCh:
		return pkt, nil
	case <-p.done:
		return nil, io.EOF
	}
}

// WritePacket implements PacketWriter.
func (p *ReadWriter) WritePacket(pkt []byte) error {
	token := p.Queue.Pub(p.PubTopic, pkt)
	token.Wait()
	return token.Error()
}

// Run implements Runnable.
func (p *ReadWriter) Run(ctx context.Context) error {
	sub := p.Queue.Sub(p.SubTopic, Handler(p.handleMsg))
	defer sub.Close()
	defer p.Close()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-p.done:
		return nil
	}
}

// Close implements io.Closer. Pending and later ReadPacket calls
// return io.EOF.
func (p *ReadWriter) Close() error {
	p.closeOnce.Do(func() { close(p.done) })
	return nil
}

func (p *ReadWriter) handleMsg(_ string, payload []byte) {
	select {
	case p.packetCh <- payload:
	case <-p.done:
	}
}
