// Package dispatch routes inbound frames to handlers by their tag.
package dispatch

import (
	"github.com/Ryan-RCNR/quiz-party/src/types"
)

// HandlerFunc handles one inbound message of a known tag.
type HandlerFunc func(msg types.Envelope)

// Dispatcher maps a message tag to exactly one handler.
type Dispatcher struct {
	handlers map[string]HandlerFunc
}

// New creates a dispatcher from a tag -> handler mapping. The mapping is
// copied; later mutation of the argument has no effect.
func New(handlers map[string]HandlerFunc) *Dispatcher {
	copied := make(map[string]HandlerFunc, len(handlers))
	for tag, h := range handlers {
		copied[tag] = h
	}
	return &Dispatcher{handlers: copied}
}

// Register adds or replaces the handler for a tag.
func (d *Dispatcher) Register(tag string, h HandlerFunc) {
	d.handlers[tag] = h
}

// Dispatch invokes the handler registered for the message's tag and
// reports whether one was invoked. Unknown tags invoke nothing.
func (d *Dispatcher) Dispatch(msg types.Envelope) bool {
	h, ok := d.handlers[msg.Type]
	if !ok {
		return false
	}
	h(msg)
	return true
}
