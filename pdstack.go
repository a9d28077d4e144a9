// Package pdstack defines the shared types and interfaces of a USB Type-C
// power delivery front-end stack: the hardware events delivered by port
// controller drivers, and the driver contract itself.
package pdstack

import "errors"

// CCState represents the termination detected on a single CC line.
type CCState uint8

// CC line states. CCOpen means no termination is present.
const (
	CCOpen CCState = iota
	CCRa
	CCRd
	CCRpDefault
	CCRp15A
	CCRp30A
)

// Connected reports whether a termination is present on the line.
func (c CCState) Connected() bool {
	return c != CCOpen
}

// XferResult is the completion status of a reception.
type XferResult uint8

// Transfer results.
const (
	XferSuccess XferResult = iota
	XferFailed
	XferStalled
	XferTimeout
)

func (r XferResult) String() string {
	switch r {
	case XferSuccess:
		return "success"
	case XferFailed:
		return "failed"
	case XferStalled:
		return "stalled"
	case XferTimeout:
		return "timeout"
	default:
		return "invalid"
	}
}

// PortType selects the power role a port is initialized for.
type PortType uint8

// Port types.
const (
	PortSink PortType = iota
	PortSource
	PortDualRole
)

// EventKind tags the variant carried by an Event. Kinds unknown to the
// consumer are ignored.
type EventKind uint8

// Event kinds.
const (
	EventNone EventKind = iota
	EventCCChanged
	EventRxComplete
)

func (k EventKind) String() string {
	switch k {
	case EventCCChanged:
		return "cc_changed"
	case EventRxComplete:
		return "rx_complete"
	default:
		return "none"
	}
}

// Event is a single hardware event produced by a controller driver and
// consumed by the stack's dispatch loop. Events are immutable once
// enqueued and are consumed exactly once, in FIFO order.
//
// The payload fields are valid per Kind: CC for EventCCChanged, Result and
// BytesTransferred for EventRxComplete.
type Event struct {
	Port uint8
	Kind EventKind

	CC [2]CCState

	Result           XferResult
	BytesTransferred uint16
}

// Attached reports whether either CC line sees a termination, which the
// stack treats as a cable attach.
func (e Event) Attached() bool {
	return e.CC[0].Connected() || e.CC[1].Connected()
}

// Driver is the contract a Type-C controller driver (the hardware-facing
// layer) must implement. The stack calls Init once per port during bring
// up, toggles interrupt delivery through the Enable/Disable pair and hands
// the shared receive buffer to StartReceive; the driver reports back by
// delivering events to an EventSink.
//
// EnableInterrupts and DisableInterrupts must not block and must be safe
// to call from any context, including interrupt context.
type Driver interface {
	Init(port uint8, pt PortType) error
	EnableInterrupts(port uint8)
	DisableInterrupts(port uint8)

	// StartReceive arms reception of the next message into buf. The driver
	// writes into buf and delivers an EventRxComplete when the transfer
	// finishes. buf remains owned by the caller and is valid until that
	// completion event is consumed.
	StartReceive(port uint8, buf []byte) error
}

// EventSink accepts events from driver (interrupt) context. Deliver must
// never block; it returns false when the event was dropped because the
// queue was full or the stack was not ready for it.
type EventSink interface {
	Deliver(Event) bool
}

var (
	// ErrStackUninitialized is returned when the dispatch loop is started
	// before any port has been initialized.
	ErrStackUninitialized = errors.New("pdstack: stack not initialized")

	// ErrInvalidPort is returned for port indexes outside the configured
	// range.
	ErrInvalidPort = errors.New("pdstack: invalid port")
)
