package tcfe

import (
	"context"

	"github.com/pdwire/go-pdstack"
	"github.com/pdwire/go-pdstack/internal/observability"
	"github.com/pdwire/go-pdstack/pdmsg"
)

// Run consumes the shared event queue and drives all state transitions of
// the front end: attach and detach detection and receive-completion
// handling. It is the single consumer and the queue wait is its only
// suspension point. Run blocks until ctx is done and returns ctx.Err();
// it has no other termination. Exactly one call to Run may be in progress
// at any given time.
func (s *Stack) Run(ctx context.Context) error {
	if !s.inited {
		return pdstack.ErrStackUninitialized
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-s.events:
			s.dispatch(ev)
		}
	}
}

func (s *Stack) dispatch(ev pdstack.Event) {
	observability.RecordEvent(ev.Kind.String())

	switch ev.Kind {
	case pdstack.EventCCChanged:
		if ev.Attached() {
			s.log.Info().Uint8("port", ev.Port).
				Uint8("cc1", uint8(ev.CC[0])).Uint8("cc2", uint8(ev.CC[1])).
				Msg("attach")
			s.armReceive(ev.Port)
		} else {
			// Detach. Tearing down any negotiated contract is the
			// negotiation layer's job, not ours.
			s.log.Info().Uint8("port", ev.Port).Msg("detach")
		}

	case pdstack.EventRxComplete:
		observability.RecordRx(ev.Result.String())
		if ev.Result == pdstack.XferSuccess {
			n := int(ev.BytesTransferred)
			if n > len(s.rxBuf) {
				n = len(s.rxBuf)
			}
			if err := s.parseMessage(ev.Port, s.rxBuf[:n]); err != nil {
				// One undecodable message does not halt the port.
				observability.RecordDecodeFailure()
				s.log.Warn().Err(err).Uint8("port", ev.Port).
					Uint16("len", ev.BytesTransferred).Msg("message discarded")
			}
		}
		// Re-arm unconditionally so the port is always ready for the next
		// message.
		s.armReceive(ev.Port)

	default:
		// Unknown kinds are ignored.
	}
}

func (s *Stack) armReceive(port uint8) {
	observability.RecordRxArmed()
	if err := s.drv.StartReceive(port, s.rxBuf[:]); err != nil {
		s.log.Warn().Err(err).Uint8("port", port).Msg("start receive failed")
	}
}

// parseMessage decodes one received message from buf. Only source
// capabilities messages are interpreted; every other well-formed message
// is recognized and ignored. The sole failure is a buffer shorter than
// its header declares.
func (s *Stack) parseMessage(port uint8, buf []byte) error {
	hdr, err := pdmsg.DecodeHeader(buf)
	if err != nil {
		return err
	}

	if !hdr.IsData() {
		// Control message. Subtype handling is not implemented.
		return nil
	}

	if hdr.Type() != pdmsg.TypeSourceCap {
		return nil
	}

	pdos, err := pdmsg.DecodeObjects(s.pdoBuf[:0], buf, hdr.ObjectCount())
	if err != nil {
		return err
	}

	for i, p := range pdos {
		if p.Type() != pdmsg.PDOTypeFixedSupply {
			// Recognized but not decoded further.
			continue
		}
		f := pdmsg.FixedSupplyPDO(p)
		s.log.Info().Uint8("port", port).Int("position", i+1).
			Uint16("mv", f.Voltage()).Uint16("ma", f.MaxCurrent()).
			Msg("fixed supply offered")
	}

	if s.cfg.Capabilities != nil {
		s.cfg.Capabilities.HandleSourceCapabilities(port, pdos)
	}
	return nil
}
