package sim

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/dmaio/pkg/hal"
)

func TestCapabilities(t *testing.T) {
	p := New(Options{})
	require.NotNil(t, p.TxDMA())
	require.NotNil(t, p.RxDMA())
	require.True(t, p.CallbacksEnabled())

	p = New(Options{NoTxDMA: true, NoRxDMA: true, NoCallbacks: true})
	require.Nil(t, p.TxDMA())
	require.Nil(t, p.RxDMA())
	require.False(t, p.CallbacksEnabled())
}

func TestLoopback(t *testing.T) {
	p := New(Options{Loopback: true})
	done := make(chan struct{}, 1)
	p.RegisterCallback(hal.TxComplete, func() { done <- struct{}{} })

	buf := make([]byte, 8)
	require.NoError(t, p.RxDMA().BeginReceive(buf))
	require.NoError(t, p.TxDMA().BeginTransmit([]byte("ping")))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	sent, err := p.WaitSent(ctx, 4)
	require.NoError(t, err)
	require.Equal(t, []byte("ping"), sent)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("completion timeout")
	}
	require.Equal(t, 4, p.RxDMA().Remaining())
	require.Equal(t, []byte("ping"), buf[:4])
	require.Equal(t, [][]byte{[]byte("ping")}, p.Transfers())
}

func TestWaitSentCancel(t *testing.T) {
	p := New(Options{})
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := p.WaitSent(ctx, 1)
	require.Equal(t, context.DeadlineExceeded, err)
}

func TestRaw(t *testing.T) {
	p := New(Options{})
	require.NoError(t, p.TransmitBlocking([]byte("diag"), time.Millisecond))
	require.Equal(t, []byte("diag"), p.Raw())
	// nothing is received before the channel is armed
	require.Zero(t, p.Inject([]byte("abc")))
}
