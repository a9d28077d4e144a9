package tcfe

import (
	"errors"
	"sync"
	"testing"

	"github.com/pdwire/go-pdstack"
)

// fakeDriver counts every call the stack makes into the controller layer.
type fakeDriver struct {
	mu       sync.Mutex
	initErr  error
	recvErr  error
	inits    map[uint8]int
	enables  map[uint8]int
	disables map[uint8]int
	receives []receiveCall

	recvCh chan receiveCall // optional, for tests racing the dispatch loop
}

type receiveCall struct {
	port uint8
	size int
}

func newFakeDriver() *fakeDriver {
	return &fakeDriver{
		inits:    map[uint8]int{},
		enables:  map[uint8]int{},
		disables: map[uint8]int{},
	}
}

func (d *fakeDriver) Init(port uint8, pt pdstack.PortType) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.inits[port]++
	return d.initErr
}

func (d *fakeDriver) EnableInterrupts(port uint8) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.enables[port]++
}

func (d *fakeDriver) DisableInterrupts(port uint8) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.disables[port]++
}

func (d *fakeDriver) StartReceive(port uint8, buf []byte) error {
	d.mu.Lock()
	call := receiveCall{port: port, size: len(buf)}
	d.receives = append(d.receives, call)
	err := d.recvErr
	ch := d.recvCh
	d.mu.Unlock()
	if ch != nil {
		ch <- call
	}
	return err
}

func (d *fakeDriver) receiveCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.receives)
}

func TestInitIdempotent(t *testing.T) {
	drv := newFakeDriver()
	s := New(drv, Config{NumPorts: 2})

	if err := s.Init(0, pdstack.PortSink); err != nil {
		t.Fatalf("init: %v", err)
	}
	if !s.Ready(0) {
		t.Fatal("port 0 not ready after init")
	}
	if err := s.Init(0, pdstack.PortSink); err != nil {
		t.Fatalf("second init: %v", err)
	}
	if got := drv.inits[0]; got != 1 {
		t.Fatalf("controller setup ran %d times, want 1", got)
	}
	if !s.Ready(0) {
		t.Fatal("port 0 lost readiness")
	}
}

func TestInitEnablesInterrupts(t *testing.T) {
	drv := newFakeDriver()
	s := New(drv, Config{NumPorts: 2})

	if err := s.Init(0, pdstack.PortSink); err != nil {
		t.Fatalf("init: %v", err)
	}
	if got := drv.enables[0]; got != 1 {
		t.Fatalf("port 0 enabled %d times, want 1", got)
	}
	if got := drv.enables[1]; got != 0 {
		t.Fatalf("uninitialized port 1 enabled %d times", got)
	}
}

func TestInitFailureIsRetryable(t *testing.T) {
	drv := newFakeDriver()
	drv.initErr = errors.New("controller dead")
	s := New(drv, Config{NumPorts: 1})

	if err := s.Init(0, pdstack.PortSink); err == nil {
		t.Fatal("expected init failure")
	}
	if s.Ready(0) {
		t.Fatal("port marked ready after failed init")
	}

	drv.initErr = nil
	if err := s.Init(0, pdstack.PortSink); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if !s.Ready(0) {
		t.Fatal("port not ready after retry")
	}
	if got := drv.inits[0]; got != 2 {
		t.Fatalf("controller setup ran %d times, want 2", got)
	}
}

func TestInitInvalidPort(t *testing.T) {
	s := New(newFakeDriver(), Config{NumPorts: 2})
	if err := s.Init(2, pdstack.PortSink); !errors.Is(err, pdstack.ErrInvalidPort) {
		t.Fatalf("got %v want ErrInvalidPort", err)
	}
}

func TestReadyBeforeInit(t *testing.T) {
	s := New(newFakeDriver(), Config{NumPorts: 2})
	for p := uint8(0); p < 3; p++ {
		if s.Ready(p) {
			t.Fatalf("port %d ready before init", p)
		}
	}
}

func TestSetInterruptsCoversInitializedPortsOnly(t *testing.T) {
	drv := newFakeDriver()
	s := New(drv, Config{NumPorts: 3})
	if err := s.Init(0, pdstack.PortSink); err != nil {
		t.Fatalf("init 0: %v", err)
	}
	if err := s.Init(2, pdstack.PortSink); err != nil {
		t.Fatalf("init 2: %v", err)
	}

	before0, before2 := drv.enables[0], drv.enables[2]
	s.SetInterrupts(true)
	if got := drv.enables[0] - before0; got != 1 {
		t.Fatalf("port 0 enabled %d times, want 1", got)
	}
	if got := drv.enables[2] - before2; got != 1 {
		t.Fatalf("port 2 enabled %d times, want 1", got)
	}
	if got := drv.enables[1]; got != 0 {
		t.Fatalf("uninitialized port 1 enabled %d times", got)
	}

	s.SetInterrupts(false)
	if got := drv.disables[0]; got < 1 {
		t.Fatal("port 0 never disabled")
	}
	if got := drv.disables[1]; got != 0 {
		t.Fatalf("uninitialized port 1 disabled %d times", got)
	}
}

func TestDeliverBeforeInit(t *testing.T) {
	s := New(newFakeDriver(), Config{})
	if s.Deliver(pdstack.Event{Kind: pdstack.EventCCChanged}) {
		t.Fatal("delivery accepted before init")
	}
}

func TestDeliverQueueFull(t *testing.T) {
	s := New(newFakeDriver(), Config{QueueDepth: 1})
	if err := s.Init(0, pdstack.PortSink); err != nil {
		t.Fatalf("init: %v", err)
	}
	if !s.Deliver(pdstack.Event{Kind: pdstack.EventCCChanged}) {
		t.Fatal("first delivery rejected")
	}
	if s.Deliver(pdstack.Event{Kind: pdstack.EventCCChanged}) {
		t.Fatal("delivery accepted on a full queue")
	}
}
