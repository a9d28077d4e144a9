// Package replay implements a Type-C controller driver that replays
// captured power delivery traffic from a trace. It lets the stack run
// without hardware, for development and for exercising decode paths
// against recorded link partners.
//
// A trace is a text file with one hex-encoded message per line. Blank
// lines and lines starting with '#' are skipped; the literal line "fail"
// injects a failed transfer.
package replay

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/pdwire/go-pdstack"
)

// Driver replays one trace through an event sink. It implements
// pdstack.Driver.
type Driver struct {
	sink pdstack.EventSink

	mu sync.Mutex
	// msgs holds the raw message bytes in replay order; a nil entry is a
	// failed transfer.
	msgs     [][]byte
	next     int
	ports    [8]bool
	detached bool
}

// Open reads a trace file and returns a driver that replays it.
func Open(path string) (*Driver, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("replay: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads a trace from r and returns a driver that replays it.
func Parse(r io.Reader) (*Driver, error) {
	d := &Driver{}
	sc := bufio.NewScanner(r)
	n := 0
	for sc.Scan() {
		n++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if line == "fail" {
			d.msgs = append(d.msgs, nil)
			continue
		}
		b, err := hex.DecodeString(strings.ReplaceAll(line, " ", ""))
		if err != nil {
			return nil, fmt.Errorf("replay: line %d: %w", n, err)
		}
		d.msgs = append(d.msgs, b)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("replay: %w", err)
	}
	return d, nil
}

// Bind attaches the event sink that receives the replayed events. It must
// be called before Start.
func (d *Driver) Bind(sink pdstack.EventSink) {
	d.sink = sink
}

// Start delivers an attach event for every initialized port, which makes
// the stack arm reception and pull the trace through.
func (d *Driver) Start() {
	for p, ok := range d.ports {
		if !ok {
			continue
		}
		d.sink.Deliver(pdstack.Event{
			Port: uint8(p),
			Kind: pdstack.EventCCChanged,
			CC:   [2]pdstack.CCState{pdstack.CCRd, pdstack.CCOpen},
		})
	}
}

// Init implements pdstack.Driver.
func (d *Driver) Init(port uint8, pt pdstack.PortType) error {
	if int(port) >= len(d.ports) {
		return pdstack.ErrInvalidPort
	}
	d.mu.Lock()
	d.ports[port] = true
	d.mu.Unlock()
	return nil
}

// EnableInterrupts implements pdstack.Driver. Replay has no interrupt
// source to gate.
func (d *Driver) EnableInterrupts(port uint8) {}

// DisableInterrupts implements pdstack.Driver.
func (d *Driver) DisableInterrupts(port uint8) {}

// StartReceive implements pdstack.Driver: it completes immediately with
// the next trace entry, or with a detach event once the trace is
// exhausted.
func (d *Driver) StartReceive(port uint8, buf []byte) error {
	d.mu.Lock()
	if d.next >= len(d.msgs) {
		done := d.detached
		d.detached = true
		d.mu.Unlock()
		if !done {
			d.sink.Deliver(pdstack.Event{
				Port: port,
				Kind: pdstack.EventCCChanged,
				CC:   [2]pdstack.CCState{pdstack.CCOpen, pdstack.CCOpen},
			})
		}
		return nil
	}
	m := d.msgs[d.next]
	d.next++
	d.mu.Unlock()

	if m == nil {
		d.sink.Deliver(pdstack.Event{
			Port:   port,
			Kind:   pdstack.EventRxComplete,
			Result: pdstack.XferFailed,
		})
		return nil
	}

	n := copy(buf, m)
	d.sink.Deliver(pdstack.Event{
		Port:             port,
		Kind:             pdstack.EventRxComplete,
		Result:           pdstack.XferSuccess,
		BytesTransferred: uint16(n),
	})
	return nil
}

var _ pdstack.Driver = (*Driver)(nil)
