package dmaio

import (
	"errors"
	"fmt"
)

// ResultCode is the outcome of Setup.
type ResultCode int

// Result codes.
const (
	Unknown ResultCode = iota - 1
	OK
	NullHandle
	NoTxCapability
	NoRxCapability
	NoCallbackSupport
)

var resultNames = map[ResultCode]string{
	OK:                "OK",
	NullHandle:        "NULL_HANDLE",
	NoTxCapability:    "NO_TX_CAPABILITY",
	NoRxCapability:    "NO_RX_CAPABILITY",
	NoCallbackSupport: "NO_CALLBACK_SUPPORT",
}

// String implements fmt.Stringer.
func (c ResultCode) String() string {
	if name, ok := resultNames[c]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN(%d)", int(c))
}

var (
	// ErrNullHandle indicates Setup was given no peripheral.
	ErrNullHandle = &BindingError{Code: NullHandle}
	// ErrNoTxCapability indicates the peripheral has no transmit DMA.
	ErrNoTxCapability = &BindingError{Code: NoTxCapability}
	// ErrNoRxCapability indicates the peripheral has no receive DMA.
	ErrNoRxCapability = &BindingError{Code: NoRxCapability}
	// ErrNoCallbackSupport indicates completion callbacks can't be registered.
	ErrNoCallbackSupport = &BindingError{Code: NoCallbackSupport}

	// ErrNotBound is returned by Read before a peripheral is bound.
	ErrNotBound = errors.New("transport not bound")
)

// BindingError is returned by Setup when the peripheral can't be bound.
type BindingError struct {
	Code ResultCode
	Err  error
}

// Error implements error.
func (e *BindingError) Error() string {
	var msg string
	switch e.Code {
	case NullHandle:
		msg = "peripheral is nil"
	case NoTxCapability:
		msg = "TX DMA not initialized for peripheral"
	case NoRxCapability:
		msg = "RX DMA not initialized for peripheral"
	case NoCallbackSupport:
		msg = "peripheral does not support callback registration"
	default:
		msg = "binding failed: " + e.Code.String()
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *BindingError) Unwrap() error {
	return e.Err
}

// Is matches any BindingError with the same code, so errors.Is works
// against the ErrXXX values.
func (e *BindingError) Is(target error) bool {
	t, ok := target.(*BindingError)
	return ok && t.Code == e.Code
}

// CodeOf gets the ResultCode of an error returned by Setup.
func CodeOf(err error) ResultCode {
	if err == nil {
		return OK
	}
	var be *BindingError
	if errors.As(err, &be) {
		return be.Code
	}
	return Unknown
}
