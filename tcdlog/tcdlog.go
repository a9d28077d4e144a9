// Package tcdlog implements a capability handler that logs the power
// profiles offered by the source partner. It stands in for a device
// policy manager where no negotiation logic is wanted, and can wrap one
// where it is.
package tcdlog

import (
	"github.com/rs/zerolog"

	"github.com/pdwire/go-pdstack/pdmsg"
	"github.com/pdwire/go-pdstack/tcfe"
)

// Logger is a passthrough capability handler that writes one structured
// log record per power data object. If no base handler is provided, the
// objects go nowhere else.
type Logger struct {
	log  zerolog.Logger
	base tcfe.CapabilityHandler
}

// New creates a new logger which writes to the given zerolog logger and
// optionally passes the objects through to base.
func New(log zerolog.Logger, base tcfe.CapabilityHandler) *Logger {
	return &Logger{log: log, base: base}
}

// HandleSourceCapabilities implements tcfe.CapabilityHandler.
func (l *Logger) HandleSourceCapabilities(port uint8, pdos []pdmsg.PDO) {
	l.log.Info().Uint8("port", port).Int("profiles", len(pdos)).Msg("source capabilities")
	for i, p := range pdos {
		ev := l.log.Info().Uint8("port", port).Int("position", i+1)
		switch p.Type() {
		case pdmsg.PDOTypeFixedSupply:
			fs := pdmsg.FixedSupplyPDO(p)
			ev.Uint16("mv", fs.Voltage()).Uint16("ma", fs.MaxCurrent()).Msg("fixed supply")
		case pdmsg.PDOTypeAugmented:
			if p.IsPPS() {
				pps := pdmsg.PPSPDO(p)
				ev.Uint16("min_mv", pps.MinVoltage()).Uint16("max_mv", pps.MaxVoltage()).
					Uint16("ma", pps.MaxCurrent()).Bool("power_limited", pps.IsPowerLimited()).
					Msg("programmable supply")
			} else {
				ev.Msg("augmented supply (not decoded)")
			}
		case pdmsg.PDOTypeBattery:
			ev.Msg("battery supply (not decoded)")
		case pdmsg.PDOTypeVariableSupply:
			ev.Msg("variable supply (not decoded)")
		}
	}
	if l.base != nil {
		l.base.HandleSourceCapabilities(port, pdos)
	}
}
