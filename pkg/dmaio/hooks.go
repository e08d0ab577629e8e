package dmaio

import (
	"context"
	"fmt"
	"io"

	"github.com/robotalks/dmaio/pkg/hal"
)

// WriteHook is the low-level write entry used by formatted output.
// It always reports len(p) written.
func (t *Transport) WriteHook(fd int, p []byte) int {
	n, _ := t.Write(p)
	return n
}

// ReadHook is the low-level read entry used by formatted input. It
// blocks like Read without a deadline. Before Setup it reports len(p)
// bytes read and leaves p untouched.
func (t *Transport) ReadHook(fd int, p []byte) int {
	if !t.Bound() {
		return len(p)
	}
	n, _ := t.Read(context.Background(), p)
	return n
}

// Writer returns the transport as io.Writer.
func (t *Transport) Writer() io.Writer {
	return t
}

// Reader adapts Read to io.Reader with a fixed context.
func (t *Transport) Reader(ctx context.Context) io.Reader {
	return readerFunc(func(p []byte) (int, error) {
		return t.Read(ctx, p)
	})
}

// Printf formats to the transport.
func (t *Transport) Printf(format string, args ...interface{}) (int, error) {
	return fmt.Fprintf(t, format, args...)
}

// Println formats to the transport with a trailing newline.
func (t *Transport) Println(args ...interface{}) (int, error) {
	return fmt.Fprintln(t, args...)
}

// Scanln scans one line of space separated values.
func (t *Transport) Scanln(ctx context.Context, args ...interface{}) (int, error) {
	return fmt.Fscanln(t.Reader(ctx), args...)
}

type readerFunc func([]byte) (int, error)

func (f readerFunc) Read(p []byte) (int, error) {
	return f(p)
}

// std is the program-wide transport behind the package level hooks.
var std = New(DefaultCapacity)

// Std returns the program-wide Transport.
func Std() *Transport {
	return std
}

// Setup binds a peripheral to the program-wide Transport.
func Setup(periph hal.Peripheral, echo bool) error {
	return std.Setup(periph, echo)
}

// EnableEcho enables echo on the program-wide Transport.
func EnableEcho() { std.EnableEcho() }

// DisableEcho disables echo on the program-wide Transport.
func DisableEcho() { std.DisableEcho() }

// BufferCapacity returns the ring size of the program-wide Transport.
func BufferCapacity() int { return std.BufferCapacity() }

// WriteHook writes to the program-wide Transport.
func WriteHook(fd int, p []byte) int { return std.WriteHook(fd, p) }

// ReadHook reads from the program-wide Transport.
func ReadHook(fd int, p []byte) int { return std.ReadHook(fd, p) }

// Printf formats to the program-wide Transport.
func Printf(format string, args ...interface{}) (int, error) {
	return std.Printf(format, args...)
}

// Println formats to the program-wide Transport.
func Println(args ...interface{}) (int, error) {
	return std.Println(args...)
}

// Scanln scans a line from the program-wide Transport.
func Scanln(args ...interface{}) (int, error) {
	return std.Scanln(context.Background(), args...)
}
