package link

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/dmaio/pkg/dmaio"
)

type chanReadWriter struct {
	inCh  chan []byte
	outCh chan []byte
	block chan struct{}

	closeOnce sync.Once
	closed    chan struct{}
	failWrite error
}

func newChanReadWriter() *chanReadWriter {
	return &chanReadWriter{
		inCh:   make(chan []byte, 16),
		outCh:  make(chan []byte, 16),
		closed: make(chan struct{}),
	}
}

func (c *chanReadWriter) ReadPacket() ([]byte, error) {
	select {
	case pkt := <-c.inCh:
		return pkt, nil
	case <-c.closed:
		return nil, io.EOF
	}
}

func (c *chanReadWriter) WritePacket(pkt []byte) error {
	if c.block != nil {
		<-c.block
	}
	if c.failWrite != nil {
		return c.failWrite
	}
	c.outCh <- append([]byte(nil), pkt...)
	return nil
}

func (c *chanReadWriter) Close() error {
	c.closeOnce.Do(func() { close(c.closed) })
	return nil
}

func recvOut(t *testing.T, c *chanReadWriter) []byte {
	select {
	case pkt := <-c.outCh:
		return pkt
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for packet")
	}
	return nil
}

func TestPeripheralEcho(t *testing.T) {
	rw := newChanReadWriter()
	p := New(rw)
	tr := dmaio.New(64)
	require.NoError(t, tr.Setup(p, true))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errCh := make(chan error, 1)
	go func() { errCh <- p.Run(ctx) }()

	n, err := tr.Write([]byte("hi\n"))
	require.NoError(t, err)
	require.Equal(t, 3, n)
	require.Equal(t, []byte("hi\n"), recvOut(t, rw))

	rw.inCh <- []byte("ok\r")
	buf := make([]byte, 16)
	rctx, rcancel := context.WithTimeout(ctx, time.Second)
	defer rcancel()
	n, err = tr.Read(rctx, buf)
	require.NoError(t, err)
	require.Equal(t, "ok\n", string(buf[:n]))

	var echoed []byte
	for len(echoed) < 3 {
		echoed = append(echoed, recvOut(t, rw)...)
	}
	require.Equal(t, "ok\n", string(echoed))
	require.EqualValues(t, 3, p.Received())

	cancel()
	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not stop")
	}
}

func TestPeripheralStopsOnReadError(t *testing.T) {
	rw := newChanReadWriter()
	p := New(rw)
	rw.Close()
	err := p.Run(context.Background())
	require.True(t, errors.Is(err, io.EOF))
	require.Equal(t, "pump: EOF", err.Error())
}

func TestTransmitBlocking(t *testing.T) {
	rw := newChanReadWriter()
	p := New(rw)
	require.NoError(t, p.TransmitBlocking([]byte("diag"), time.Second))
	require.Equal(t, []byte("diag"), recvOut(t, rw))

	rw.block = make(chan struct{})
	require.Equal(t, ErrTimeout, p.TransmitBlocking([]byte("late"), 10*time.Millisecond))
	close(rw.block)
	require.Equal(t, []byte("late"), recvOut(t, rw))
}

func TestWriteFailureAborts(t *testing.T) {
	rw := newChanReadWriter()
	rw.failWrite = errors.New("broken")
	p := New(rw)
	tr := dmaio.New(32)
	require.NoError(t, tr.Setup(p, false))
	tr.Write([]byte("abc"))
	require.Eventually(t, func() bool {
		return tr.Stats().TxCompletions == 1
	}, time.Second, time.Millisecond)
	require.EqualValues(t, 0, tr.Stats().TxPending)
}
