package hal

import "sync"

// CallbackID identifies a callback slot.
type CallbackID int

// Callback slots.
const (
	// TxComplete fires when a transmit transfer finished.
	TxComplete CallbackID = iota
	// TxAbortComplete fires when a transmit transfer was aborted.
	TxAbortComplete

	numCallbacks
)

// String implements fmt.Stringer.
func (id CallbackID) String() string {
	switch id {
	case TxComplete:
		return "TxComplete"
	case TxAbortComplete:
		return "TxAbortComplete"
	}
	return "Unknown"
}

// CallbackRegistrar is implemented by peripherals which can invoke
// registered functions from their completion context.
type CallbackRegistrar interface {
	// CallbacksEnabled reports whether registration is supported.
	CallbacksEnabled() bool
	// RegisterCallback installs fn in slot id, replacing the previous one.
	RegisterCallback(id CallbackID, fn func())
}

// Callbacks is a callback table safe to update while callbacks fire.
type Callbacks struct {
	fns  [numCallbacks]func()
	lock sync.RWMutex
}

// Register installs fn in slot id. Unknown slots are ignored.
func (c *Callbacks) Register(id CallbackID, fn func()) {
	if id < 0 || id >= numCallbacks {
		return
	}
	c.lock.Lock()
	c.fns[id] = fn
	c.lock.Unlock()
}

// Fire invokes the function in slot id, if any, on the calling goroutine.
func (c *Callbacks) Fire(id CallbackID) {
	if id < 0 || id >= numCallbacks {
		return
	}
	c.lock.RLock()
	fn := c.fns[id]
	c.lock.RUnlock()
	if fn != nil {
		fn()
	}
}
