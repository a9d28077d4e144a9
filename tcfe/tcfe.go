// Package tcfe implements the front-end event layer of a USB Type-C power
// delivery stack. It owns per-port lifecycle state, serializes
// interrupt-sourced hardware events from every port through one bounded
// queue, and decodes received power delivery messages from a shared
// receive buffer.
//
// Power negotiation is out of scope: decoded source capabilities are
// handed to a CapabilityHandler and otherwise only logged.
package tcfe

import (
	"github.com/rs/zerolog"

	"github.com/pdwire/go-pdstack"
	"github.com/pdwire/go-pdstack/internal/observability"
	"github.com/pdwire/go-pdstack/pdmsg"
)

const (
	defaultNumPorts   = 1
	defaultQueueDepth = 16
)

// Config carries the construction parameters of a Stack.
type Config struct {
	// NumPorts is the number of physical root-hub ports managed by the
	// stack. Defaults to 1.
	NumPorts uint8

	// QueueDepth bounds the event queue shared by all ports. Defaults to
	// 16.
	QueueDepth int

	// Logger receives the stack's structured log output. Defaults to a
	// no-op logger.
	Logger *zerolog.Logger

	// Capabilities, when non-nil, receives the power data objects decoded
	// from every source capabilities message.
	Capabilities CapabilityHandler
}

// Stack is the front-end context object. One Stack owns all ports of a
// controller driver; all shared state lives here rather than in package
// globals so the caller controls the lifecycle.
//
// Init and Ready may be called at any time, but Init is not re-entrant
// with itself: port bring up is assumed single threaded. Deliver is safe
// to call from driver interrupt context. Run must have exactly one caller.
type Stack struct {
	drv pdstack.Driver
	cfg Config
	log zerolog.Logger

	// inited flips to true when the first port init constructs the shared
	// queue; it never reverts. Per-port flags are likewise monotonic.
	inited bool
	ports  []bool
	events chan pdstack.Event

	// rxBuf is shared across all receptions on all ports. Ports are
	// handled serially through the one queue, so at most one reception is
	// in flight against it: it is written by the driver, decoded on the
	// completion event and immediately re-armed, never retained across
	// events.
	rxBuf  [pdmsg.MaxExtendedMessageBytes]byte
	pdoBuf [pdmsg.MaxDataObjects]pdmsg.PDO
}

// New creates a stack for the given controller driver. The event queue and
// port table are not allocated until the first successful Init call.
func New(drv pdstack.Driver, cfg Config) *Stack {
	if cfg.NumPorts == 0 {
		cfg.NumPorts = defaultNumPorts
	}
	if cfg.QueueDepth <= 0 {
		cfg.QueueDepth = defaultQueueDepth
	}
	log := zerolog.Nop()
	if cfg.Logger != nil {
		log = *cfg.Logger
	}
	return &Stack{drv: drv, cfg: cfg, log: log}
}

// Init brings up a single port. The first call overall also constructs the
// event queue and port table. Initializing an already-ready port is a
// no-op: the underlying controller setup runs at most once per port. On
// driver failure the port is left uninitialized so the call can be
// retried.
func (s *Stack) Init(port uint8, pt pdstack.PortType) error {
	if port >= s.cfg.NumPorts {
		return pdstack.ErrInvalidPort
	}

	if !s.inited {
		s.ports = make([]bool, s.cfg.NumPorts)
		s.events = make(chan pdstack.Event, s.cfg.QueueDepth)
		s.inited = true
	}

	if s.ports[port] {
		return nil
	}

	s.log.Debug().Uint8("port", port).Msg("port init")

	if err := s.drv.Init(port, pt); err != nil {
		return err
	}

	// Marking the port happens inside the gate; releasing it turns on
	// interrupt delivery for the newly initialized port along with the
	// rest.
	g := s.acquire()
	s.ports[port] = true
	g.release()
	return nil
}

// Ready reports whether the stack and the given port are both initialized.
// It is a pure query with no side effects.
func (s *Stack) Ready(port uint8) bool {
	return s.inited && int(port) < len(s.ports) && s.ports[port]
}

// SetInterrupts toggles interrupt delivery on every initialized port.
// Ports share the one event queue, so the gate is global rather than per
// port: disabling it before touching any state shared with interrupt
// context, and re-enabling after, is the critical-section discipline used
// throughout the stack. It never blocks and is safe to call from any
// context.
func (s *Stack) SetInterrupts(enabled bool) {
	for p := 0; p < len(s.ports); p++ {
		if !s.ports[p] {
			continue
		}
		if enabled {
			s.drv.EnableInterrupts(uint8(p))
		} else {
			s.drv.DisableInterrupts(uint8(p))
		}
	}
}

// irqGuard marks a critical section entered by suspending interrupt
// delivery across all initialized ports. Release on every exit path.
type irqGuard struct {
	s *Stack
}

func (s *Stack) acquire() irqGuard {
	s.SetInterrupts(false)
	return irqGuard{s: s}
}

func (g irqGuard) release() {
	g.s.SetInterrupts(true)
}

// Deliver enqueues a hardware event for the dispatch loop. It never
// blocks: when the queue is full, or no port has been initialized yet, the
// event is dropped and Deliver returns false. Delivery is not assumed
// lossless by the rest of the stack.
func (s *Stack) Deliver(ev pdstack.Event) bool {
	if !s.inited {
		return false
	}
	select {
	case s.events <- ev:
		return true
	default:
		observability.RecordQueueDrop()
		s.log.Warn().Uint8("port", ev.Port).Stringer("kind", ev.Kind).Msg("event queue full, dropping")
		return false
	}
}

var _ pdstack.EventSink = (*Stack)(nil)
