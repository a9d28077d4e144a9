package pdmsg

import "errors"

// ErrTruncated is returned when a buffer ends before the bytes its header
// declares. It aborts decoding of the one message only; the caller is
// expected to discard the message and carry on.
var ErrTruncated = errors.New("pdmsg: truncated message")

// DecodeHeader reads the little-endian message header from the start of b.
func DecodeHeader(b []byte) (Header, error) {
	if len(b) < HeaderBytes {
		return 0, ErrTruncated
	}
	return Header(uint16(b[0]) | uint16(b[1])<<8), nil
}

// DecodeObjects reads the n data objects that follow the header in b,
// appending them to dst. Before every 4-byte read the cursor is checked
// against the end of b; a short buffer aborts the walk with ErrTruncated
// without reading past len(b). The cursor advances by one object per
// iteration regardless of the object's classification.
func DecodeObjects(dst []PDO, b []byte, n uint8) ([]PDO, error) {
	off := HeaderBytes
	for i := uint8(0); i < n; i++ {
		if off+ObjectBytes > len(b) {
			return dst, ErrTruncated
		}
		w := uint32(b[off]) | uint32(b[off+1])<<8 | uint32(b[off+2])<<16 | uint32(b[off+3])<<24
		dst = append(dst, PDO(w))
		off += ObjectBytes
	}
	return dst, nil
}
