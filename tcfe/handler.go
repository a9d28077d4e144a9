package tcfe

import "github.com/pdwire/go-pdstack/pdmsg"

// CapabilityHandler is the interface that wraps the method
// HandleSourceCapabilities.
type CapabilityHandler interface {
	// HandleSourceCapabilities is called with the power data objects
	// decoded from every source capabilities message, in wire order. The
	// slice is reused between messages and must not be retained past the
	// call.
	HandleSourceCapabilities(port uint8, pdos []pdmsg.PDO)
}

// CapabilityHandlerFunc is an adapter to allow the use of ordinary
// functions as CapabilityHandler.
type CapabilityHandlerFunc func(port uint8, pdos []pdmsg.PDO)

// HandleSourceCapabilities implements CapabilityHandler.
func (f CapabilityHandlerFunc) HandleSourceCapabilities(port uint8, pdos []pdmsg.PDO) {
	f(port, pdos)
}
