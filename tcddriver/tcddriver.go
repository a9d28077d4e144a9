// Package tcddriver defines interfaces and helper functions for
// implementing Type-C controller drivers.
package tcddriver

import "tinygo.org/x/drivers"

// I2C is the bus interface controller drivers communicate over. It is the
// TinyGo drivers interface, which allows a single driver implementation to
// work across many different µControllers and host platforms.
type I2C = drivers.I2C

// regBurst is the largest register burst the helpers support, sized for
// a controller FIFO read of a full message plus framing.
const regBurst = 40

// Regs wraps the I2C address of a controller with a scratch buffer so
// that register access does not allocate per call.
type Regs struct {
	Bus  I2C
	Addr uint16

	buf [regBurst + 1]byte
}

// Read reads a single register.
func (r *Regs) Read(reg uint8) (byte, error) {
	r.buf[0] = reg
	err := r.Bus.Tx(r.Addr, r.buf[:1], r.buf[1:2])
	return r.buf[1], err
}

// Write writes a single register.
func (r *Regs) Write(reg uint8, v byte) error {
	r.buf[0] = reg
	r.buf[1] = v
	return r.Bus.Tx(r.Addr, r.buf[:2], nil)
}

// ReadInto reads len(d) bytes starting at reg into d.
func (r *Regs) ReadInto(reg uint8, d []byte) error {
	r.buf[0] = reg
	err := r.Bus.Tx(r.Addr, r.buf[:1], r.buf[1:len(d)+1])
	if err == nil {
		copy(d, r.buf[1:len(d)+1])
	}
	return err
}

// WriteFrom writes the bytes of d starting at reg.
func (r *Regs) WriteFrom(reg uint8, d []byte) error {
	r.buf[0] = reg
	copy(r.buf[1:], d)
	return r.Bus.Tx(r.Addr, r.buf[:len(d)+1], nil)
}
