// Package pdmsg defines types to encode and decode USB-C Power Delivery
// messages and power data objects.
package pdmsg

const (
	// MaxDataObjects is the maximum number of data objects that can be
	// stored in a message, as set by the standard (3-bit count field).
	MaxDataObjects = 7

	// HeaderBytes is the size of the message header on the wire.
	HeaderBytes = 2

	// ObjectBytes is the size of a single data object on the wire.
	ObjectBytes = 4

	// MaxMessageBytes is the maximum number of bytes in a non-extended
	// message, header included.
	MaxMessageBytes = HeaderBytes + ObjectBytes*MaxDataObjects

	// MaxExtendedMessageBytes is the maximum possible size of any PD
	// message on the wire, extended messages included. Receive buffers
	// sized to this value can hold any message a link partner may send.
	MaxExtendedMessageBytes = 262
)

// Header is the 16-bit little-endian message header.
type Header uint16

// ObjectCount returns the number of data objects the message carries. A
// count of zero marks a control message.
func (h Header) ObjectCount() uint8 {
	return uint8((h >> 12) & 0b111)
}

// SetObjectCount sets the number of data objects in the message.
func (h *Header) SetObjectCount(n uint8) {
	*h = (*h & ^(Header(0b111) << 12)) | (Header(n) << 12)
}

// IsData returns true if the message is a data message, otherwise it's a
// control message.
func (h Header) IsData() bool {
	return h.ObjectCount() > 0
}

// Type returns the message type. Data and control messages share type
// values, so IsData must be checked alongside Type.
func (h Header) Type() Type {
	return Type(h & 0b11111)
}

// SetType sets the message type.
func (h *Header) SetType(t Type) {
	*h = (*h & ^Header(0b11111)) | Header(t)
}

// ID returns the message ID.
func (h Header) ID() uint8 {
	return uint8((h >> 9) & 0b111)
}

// SetID sets the message ID.
func (h *Header) SetID(id uint8) {
	*h = (*h & ^(Header(0b111) << 9)) | (Header(id) << 9)
}

// Revision returns the power delivery revision number of the message.
func (h Header) Revision() Revision {
	return Revision((h >> 6) & 0b11)
}

// SetRevision sets the power delivery revision number of the message.
func (h *Header) SetRevision(r Revision) {
	*h = (*h & ^(Header(0b11) << 6)) | Header(r<<6)
}

// PowerRole returns the power role of the sender of the message.
func (h Header) PowerRole() PowerRole {
	return PowerRole((h >> 8) & 1)
}

// SetPowerRole sets the power role of the sender of the message.
func (h *Header) SetPowerRole(r PowerRole) {
	*h = (*h & ^(Header(1) << 8)) | (Header(r) << 8)
}

// DataRole returns the data role of the sender of the message.
func (h Header) DataRole() DataRole {
	return DataRole((h >> 5) & 1)
}

// SetDataRole sets the data role of the sender of the message.
func (h *Header) SetDataRole(r DataRole) {
	*h = (*h & ^(Header(1) << 5)) | Header(r<<5)
}

// IsExtended returns true if the message has its extended flag set.
func (h Header) IsExtended() bool {
	return h&(1<<15) != 0
}

// SetExtended sets the extended flag in the message.
func (h *Header) SetExtended(e bool) {
	var b Header
	if e {
		b = 1 << 15
	}
	*h = (*h & ^(Header(1) << 15)) | b
}

// Message represents a power delivery message. Decoding of extended
// message payloads is not supported.
//
// Size of Data is fixed up to the maximum allowable object count, to
// ensure no heap allocations are necessary. The number of elements in use
// is Header.ObjectCount().
type Message struct {
	Header Header
	Data   [MaxDataObjects]uint32
}

// ToBytes serializes the message to a byte slice and returns the number of
// bytes written.
func (m Message) ToBytes(b []byte) uint8 {
	b[0] = byte(m.Header & 0xff)
	b[1] = byte((m.Header >> 8) & 0xff)
	c := m.Header.ObjectCount()
	for i, d := range m.Data[:c] {
		b[2+i*4] = byte(d & 0xff)
		b[3+i*4] = byte((d >> 8) & 0xff)
		b[4+i*4] = byte((d >> 16) & 0xff)
		b[5+i*4] = byte((d >> 24) & 0xff)
	}
	return HeaderBytes + c*ObjectBytes
}

// Type represents the PD message type. Control and data messages use
// separate namespaces that share values.
type Type uint8

// Control message types
const (
	TypeGoodCRC      Type = 0b00001
	TypeAccept       Type = 0b00011
	TypeReject       Type = 0b00100
	TypePing         Type = 0b00101
	TypePSReady      Type = 0b00110
	TypeGetSourceCap Type = 0b00111
	TypeGetSinkCap   Type = 0b01000
	TypeWait         Type = 0b01100
	TypeSoftReset    Type = 0b01101
)

// Data message types
const (
	TypeSourceCap Type = 0b00001
	TypeRequest   Type = 0b00010
	TypeSinkCap   Type = 0b00100
)

// Revision represents the power delivery revision number of a message.
type Revision uint8

// Power delivery revision numbers.
const (
	Revision10 Revision = 0b00
	Revision20 Revision = 0b01
	Revision30 Revision = 0b10
)

// PowerRole represents the power role of the sender of a message.
type PowerRole uint8

// Power roles of the sender of a message.
const (
	PowerRoleSink   PowerRole = 0
	PowerRoleSource PowerRole = 1
)

// DataRole represents the data role of the sender of a message.
type DataRole uint8

// Data roles of the sender of a message.
const (
	DataRoleUFP DataRole = 0
	DataRoleDFP DataRole = 1
)

// PDO is a generic Power Data Object. Based on its type, it should be
// converted to a specific PDO type to allow extracting its fields.
type PDO uint32

// Type classifies the object by its top two bits.
func (o PDO) Type() PDOType {
	return PDOType((o >> 30) & 0b11)
}

// IsPPS returns true for augmented objects that carry an SPR programmable
// power supply profile.
func (o PDO) IsPPS() bool {
	return o.Type() == PDOTypeAugmented && (o>>28)&0b11 == 0
}

// PDOType represents the type of a power data object.
type PDOType uint8

// Power data object types.
const (
	PDOTypeFixedSupply    PDOType = 0b00
	PDOTypeBattery        PDOType = 0b01
	PDOTypeVariableSupply PDOType = 0b10
	PDOTypeAugmented      PDOType = 0b11
)

func (t PDOType) String() string {
	switch t {
	case PDOTypeFixedSupply:
		return "fixed"
	case PDOTypeBattery:
		return "battery"
	case PDOTypeVariableSupply:
		return "variable"
	case PDOTypeAugmented:
		return "augmented"
	default:
		return "invalid"
	}
}

// FixedSupplyPDO represents a Fixed Supply Power Data Object.
type FixedSupplyPDO uint32

// NewFixedSupplyPDO returns a new blank FixedSupplyPDO.
func NewFixedSupplyPDO() FixedSupplyPDO {
	return FixedSupplyPDO(0)
}

// Voltage returns voltage in millivolts.
func (o FixedSupplyPDO) Voltage() uint16 {
	return uint16(((o >> 10) & (1<<10 - 1)) * 50)
}

// SetVoltage will round the given voltage to the nearest 50mV.
func (o *FixedSupplyPDO) SetVoltage(v uint16) {
	*o = (*o & ^((FixedSupplyPDO(1)<<10 - 1) << 10)) | ((FixedSupplyPDO(v)/50)&(1<<10-1))<<10
}

// MaxCurrent returns maximum current in milliamps.
func (o FixedSupplyPDO) MaxCurrent() uint16 {
	return uint16((o & (1<<10 - 1)) * 10)
}

// SetMaxCurrent will round the given current to the nearest 10mA.
func (o *FixedSupplyPDO) SetMaxCurrent(v uint16) {
	*o = (*o & ^(FixedSupplyPDO(1)<<10 - 1)) | (FixedSupplyPDO(v)/10)&(1<<10-1)
}

// PPSPDO represents a Programmable Power Supply Power Data Object.
type PPSPDO uint32

// NewPPSPDO returns a new blank programmable power supply power data
// object.
func NewPPSPDO() PPSPDO {
	return PPSPDO(0b11) << 30
}

// MinVoltage returns minimum voltage in millivolts.
func (o PPSPDO) MinVoltage() uint16 {
	return ((uint16(o) >> 8) & (uint16(1)<<8 - 1)) * 100
}

// SetMinVoltage sets the minimum voltage in millivolts. The voltage will
// be rounded to the nearest 100mV.
func (o *PPSPDO) SetMinVoltage(v uint16) {
	*o = (*o & ^((PPSPDO(1)<<8 - 1) << 8)) | PPSPDO((v/100)&(1<<8-1))<<8
}

// MaxVoltage returns maximum voltage in millivolts.
func (o PPSPDO) MaxVoltage() uint16 {
	return (uint16(o>>17) & (uint16(1)<<8 - 1)) * 100
}

// SetMaxVoltage sets the maximum voltage in millivolts. The voltage will
// be rounded to the nearest 100mV.
func (o *PPSPDO) SetMaxVoltage(v uint16) {
	*o = (*o & ^((PPSPDO(1)<<8 - 1) << 17)) | PPSPDO((v/100)&(1<<8-1))<<17
}

// MaxCurrent returns maximum current in milliamps.
func (o PPSPDO) MaxCurrent() uint16 {
	return (uint16(o) & (uint16(1)<<7 - 1)) * 50
}

// SetMaxCurrent sets the maximum current in milliamps. The current will be
// rounded to the nearest 50mA.
func (o *PPSPDO) SetMaxCurrent(c uint16) {
	*o = (*o & ^(PPSPDO(1)<<7 - 1)) | (PPSPDO(c)/50)&(1<<7-1)
}

// IsPowerLimited returns true if the power limited flag of the object is
// set.
func (o PPSPDO) IsPowerLimited() bool {
	return o&(1<<27) != 0
}
