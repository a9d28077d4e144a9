package pdmsg

import (
	"errors"
	"math/rand"
	"testing"
)

func sourceCapBytes(t *testing.T, words ...uint32) []byte {
	t.Helper()
	var m Message
	m.Header.SetObjectCount(uint8(len(words)))
	m.Header.SetType(TypeSourceCap)
	copy(m.Data[:], words)
	var b [MaxMessageBytes]byte
	n := m.ToBytes(b[:])
	return b[:n]
}

func TestDecodeHeader(t *testing.T) {
	b := sourceCapBytes(t, 0x0001912c)
	h, err := DecodeHeader(b)
	if err != nil {
		t.Fatalf("decode header: %v", err)
	}
	if got := h.ObjectCount(); got != 1 {
		t.Fatalf("object count: got %d", got)
	}
	if got := h.Type(); got != TypeSourceCap {
		t.Fatalf("type: got %d", got)
	}
}

func TestDecodeHeaderShortBuffer(t *testing.T) {
	for _, n := range []int{0, 1} {
		if _, err := DecodeHeader(make([]byte, n)); !errors.Is(err, ErrTruncated) {
			t.Fatalf("len %d: got %v want ErrTruncated", n, err)
		}
	}
}

func TestDecodeObjects(t *testing.T) {
	b := sourceCapBytes(t, 0x0001912c, 0x0006412c)
	var buf [MaxDataObjects]PDO
	pdos, err := DecodeObjects(buf[:0], b, 2)
	if err != nil {
		t.Fatalf("decode objects: %v", err)
	}
	if len(pdos) != 2 {
		t.Fatalf("count: got %d", len(pdos))
	}
	if pdos[0] != 0x0001912c || pdos[1] != 0x0006412c {
		t.Fatalf("objects: got %#x %#x", uint32(pdos[0]), uint32(pdos[1]))
	}
}

func TestDecodeObjectsTruncated(t *testing.T) {
	// Header declares three objects, buffer holds one.
	b := sourceCapBytes(t, 0x0001912c)
	if _, err := DecodeObjects(nil, b, 3); !errors.Is(err, ErrTruncated) {
		t.Fatalf("got %v want ErrTruncated", err)
	}
}

func TestDecodeObjectsPartialObject(t *testing.T) {
	b := sourceCapBytes(t, 0x0001912c, 0x0006412c)
	// Chop the second object in half.
	if _, err := DecodeObjects(nil, b[:len(b)-2], 2); !errors.Is(err, ErrTruncated) {
		t.Fatalf("got %v want ErrTruncated", err)
	}
}

func TestDecodeObjectsShortBuffers(t *testing.T) {
	// Every buffer shorter than the declared payload must fail cleanly,
	// whatever it contains.
	rng := rand.New(rand.NewSource(1))
	for n := uint8(1); n <= MaxDataObjects; n++ {
		full := HeaderBytes + int(n)*ObjectBytes
		for size := 0; size < full; size++ {
			b := make([]byte, size)
			rng.Read(b)
			if _, err := DecodeObjects(nil, b, n); !errors.Is(err, ErrTruncated) {
				t.Fatalf("n=%d size=%d: got %v want ErrTruncated", n, size, err)
			}
		}
	}
}
