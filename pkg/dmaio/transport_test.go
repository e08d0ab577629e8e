package dmaio

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/dmaio/pkg/hal"
)

func TestSetupValidation(t *testing.T) {
	cases := []struct {
		name   string
		periph func() hal.Peripheral
		code   ResultCode
		target error
	}{
		{
			name:   "nil peripheral",
			periph: func() hal.Peripheral { return nil },
			code:   NullHandle,
			target: ErrNullHandle,
		},
		{
			name: "no tx checked before rx",
			periph: func() hal.Peripheral {
				p := newFakePeriph()
				p.noTx, p.noRx = true, true
				return p
			},
			code:   NoTxCapability,
			target: ErrNoTxCapability,
		},
		{
			name: "no rx",
			periph: func() hal.Peripheral {
				p := newFakePeriph()
				p.noRx, p.noCallbacks = true, true
				return p
			},
			code:   NoRxCapability,
			target: ErrNoRxCapability,
		},
		{
			name: "callbacks disabled",
			periph: func() hal.Peripheral {
				p := newFakePeriph()
				p.noCallbacks = true
				return p
			},
			code:   NoCallbackSupport,
			target: ErrNoCallbackSupport,
		},
		{
			name: "no callback registrar",
			periph: func() hal.Peripheral {
				return &noCallbackPeriph{tx: &fakeTx{}, rx: &fakeRx{}}
			},
			code:   NoCallbackSupport,
			target: ErrNoCallbackSupport,
		},
		{
			name:   "valid",
			periph: func() hal.Peripheral { return newFakePeriph() },
			code:   OK,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tr := New(16)
			err := tr.Setup(tc.periph(), false)
			require.Equal(t, tc.code, CodeOf(err))
			if tc.target != nil {
				require.True(t, errors.Is(err, tc.target))
				require.False(t, tr.Bound())
			} else {
				require.NoError(t, err)
				require.True(t, tr.Bound())
			}
		})
	}
}

func TestSetupDiagnostic(t *testing.T) {
	p := newFakePeriph()
	p.noTx = true
	require.Error(t, New(16).Setup(p, false))
	require.Equal(t, "[dmaio] Error: TX DMA not initialized for peripheral.\r\n", string(p.raw))
}

func TestSetupReceiveArmFailure(t *testing.T) {
	armErr := errors.New("channel stuck")
	p := newFakePeriph()
	p.rx.armErr = armErr
	err := New(16).Setup(p, false)
	require.Equal(t, NoRxCapability, CodeOf(err))
	require.True(t, errors.Is(err, armErr))
	require.Contains(t, err.Error(), "channel stuck")
}

func TestFailedSetupKeepsBinding(t *testing.T) {
	good := newFakePeriph()
	tr := New(16)
	require.NoError(t, tr.Setup(good, false))
	require.Error(t, tr.Setup(nil, false))
	require.True(t, tr.Bound())
	require.Equal(t, hal.Peripheral(good), tr.Peripheral())
}

func TestResetupResetsIndices(t *testing.T) {
	p1, p2 := newFakePeriph(), newFakePeriph()
	tr := New(16)
	require.NoError(t, tr.Setup(p1, false))
	tr.Write([]byte("abc"))
	tr.Write([]byte("def"))
	p1.rx.feed("xyz")
	require.Equal(t, 3, tr.TxPending())
	require.Equal(t, 3, tr.RxBuffered())

	require.NoError(t, tr.Setup(p2, true))
	require.True(t, tr.Echo())
	require.Equal(t, 0, tr.TxPending())
	require.Equal(t, 0, tr.RxBuffered())

	tr.Write([]byte("xy"))
	require.Equal(t, [][]byte{[]byte("xy")}, p2.tx.arms)

	// the old peripheral finishing its transfer doesn't touch the new rings
	p1.drain()
	require.Equal(t, "abcdef", p1.tx.sent())
	require.Len(t, p2.tx.arms, 1)
}

func TestResetupSamePeripheralWhileBusy(t *testing.T) {
	p := newFakePeriph()
	tr := New(16)
	require.NoError(t, tr.Setup(p, false))
	tr.Write([]byte("old"))
	require.True(t, p.tx.busy)

	require.NoError(t, tr.Setup(p, false))
	tr.Write([]byte("new"))
	require.Len(t, p.tx.arms, 1)

	// completion of the old transfer starts the queued bytes of the new binding
	p.drain()
	require.Equal(t, "oldnew", p.tx.sent())
}

func TestDegradedMode(t *testing.T) {
	tr := New(16)
	n, err := tr.Write([]byte("lost"))
	require.NoError(t, err)
	require.Equal(t, 4, n)
	require.Equal(t, 5, tr.WriteHook(1, []byte("hello")))

	buf := []byte("keep")
	require.Equal(t, 4, tr.ReadHook(0, buf))
	require.Equal(t, []byte("keep"), buf)

	n, err = tr.Read(context.Background(), buf)
	require.Equal(t, ErrNotBound, err)
	require.Zero(t, n)
	require.Zero(t, tr.TxPending())
	require.Zero(t, tr.RxBuffered())
	require.Nil(t, tr.Peripheral())
}

func TestEchoToggle(t *testing.T) {
	tr := New(0)
	require.Equal(t, DefaultCapacity, tr.BufferCapacity())
	require.False(t, tr.Echo())
	tr.EnableEcho()
	require.True(t, tr.Echo())
	tr.DisableEcho()
	require.False(t, tr.Echo())
}

func TestResultCodeString(t *testing.T) {
	require.Equal(t, "NO_RX_CAPABILITY", NoRxCapability.String())
	require.Equal(t, "UNKNOWN(42)", ResultCode(42).String())
	require.Equal(t, Unknown, CodeOf(errors.New("other")))
	require.Equal(t, OK, CodeOf(nil))
}
