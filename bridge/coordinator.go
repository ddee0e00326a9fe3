// Package bridge turns logical I2C transfers into wire transactions against
// the peer processor that owns the physical buses.
package bridge

import (
	"fmt"
	"sync"
	"time"

	"github.com/virtbus/rpbus/internal/logx"
	"github.com/virtbus/rpbus/internal/metrics"
	"github.com/virtbus/rpbus/wire"
)

// DefaultTimeout bounds the wait for the peer's response to one request.
const DefaultTimeout = 500 * time.Millisecond

// Sender is the outbound half of the inter-processor channel. Send must
// deliver the bytes as one atomic message to the peer.
type Sender interface {
	Send(b []byte) error
}

// Coordinator owns the bridge's single in-flight transaction slot: it sends
// one request at a time and blocks the caller until the matching response
// arrives or the timeout elapses. Wire OnMessage into the transport's
// delivery path.
//
// Responses are matched to the pending transaction by (bus, address) only;
// the protocol has no sequence number. A response that arrives after its
// transaction already timed out can therefore satisfy a later transaction
// to the same target. Kept for protocol compatibility with existing peer
// firmware.
type Coordinator struct {
	sender  Sender
	timeout time.Duration

	// mu serializes whole transactions so at most one request is in
	// flight against the transport.
	mu sync.Mutex

	// pmu guards the pending slot, the only state shared with the
	// delivery callback.
	pmu     sync.Mutex
	pending pendingTxn
}

// pendingTxn identifies the transaction currently awaiting a response.
type pendingTxn struct {
	busID uint8
	addr  uint16
	resp  chan *wire.Message
}

// NewCoordinator builds a coordinator. A timeout <= 0 selects
// DefaultTimeout. Transactions fail with wire.ErrPeerNotReady until a
// sender is bound.
func NewCoordinator(s Sender, timeout time.Duration) *Coordinator {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Coordinator{sender: s, timeout: timeout}
}

// Bind attaches the outbound channel. The transport side is set up after
// the coordinator exists so its delivery loop can be wired to OnMessage
// first.
func (c *Coordinator) Bind(s Sender) {
	c.mu.Lock()
	c.sender = s
	c.mu.Unlock()
}

// Read executes one read transaction and returns the n bytes read.
func (c *Coordinator) Read(busID uint8, addr uint16, flags uint16, n int, stop bool) ([]byte, error) {
	if n > wire.MaxPayload {
		return nil, fmt.Errorf("bridge: read of %d bytes exceeds %d byte limit: %w", n, wire.MaxPayload, wire.ErrInvalidParameter)
	}
	return c.Execute(busID, addr, wire.CommandRead, flags, make([]byte, n), stop)
}

// Write executes one write transaction carrying data.
func (c *Coordinator) Write(busID uint8, addr uint16, flags uint16, data []byte, stop bool) error {
	_, err := c.Execute(busID, addr, wire.CommandWrite, flags, data, stop)
	return err
}

// Execute sends one request and blocks until the matching response arrives,
// the peer reports an error, or the timeout elapses. For reads the payload
// is a zeroed buffer whose length is the number of bytes to read, and the
// returned slice holds the data; for writes the payload is the data and the
// returned slice is empty.
func (c *Coordinator) Execute(busID uint8, addr uint16, command uint8, flags uint16, payload []byte, stop bool) ([]byte, error) {
	req, err := wire.EncodeRequest(busID, addr, command, flags, payload, stop)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.sender == nil {
		return nil, fmt.Errorf("bridge: channel not bound: %w", wire.ErrPeerNotReady)
	}

	// Fresh one-shot slot per transaction so a stale response cannot
	// satisfy this wait.
	resp := make(chan *wire.Message, 1)
	c.pmu.Lock()
	c.pending = pendingTxn{busID: busID, addr: addr, resp: resp}
	c.pmu.Unlock()

	start := time.Now()
	if err := c.sender.Send(req); err != nil {
		metrics.RecordTransaction(cmdLabel(command), "send_failed")
		return nil, fmt.Errorf("bridge: send to bus %d addr %#04x: %v: %w", busID, addr, err, wire.ErrPeerNotReady)
	}

	var m *wire.Message
	select {
	case m = <-resp:
	case <-time.After(c.timeout):
		metrics.RecordTransaction(cmdLabel(command), "timeout")
		return nil, fmt.Errorf("bridge: bus %d addr %#04x: no response within %v: %w", busID, addr, c.timeout, ErrTimeout)
	}
	metrics.ObserveTransaction(time.Since(start))

	if err := m.Return.Err(); err != nil {
		metrics.RecordTransaction(cmdLabel(command), "peer_error")
		return nil, fmt.Errorf("bridge: bus %d addr %#04x: peer reported %s: %w", busID, addr, m.Return, err)
	}
	if command == wire.CommandRead && int(m.Len) != len(payload) {
		metrics.RecordTransaction(cmdLabel(command), "protocol_error")
		return nil, fmt.Errorf("bridge: bus %d addr %#04x: response carries %d bytes, requested %d: %w", busID, addr, m.Len, len(payload), ErrProtocol)
	}

	metrics.RecordTransaction(cmdLabel(command), "ok")
	return m.Data(), nil
}

// OnMessage is the transport delivery callback. It validates inbound bytes
// against the pending transaction and publishes at most one matching
// response; everything else is logged, counted and dropped so the waiting
// caller sees a timeout instead. It never blocks.
func (c *Coordinator) OnMessage(b []byte, src string) {
	m, err := wire.DecodeResponse(b)
	if err != nil {
		logx.Log.Warn().Err(err).Str("src", src).Msg("dropping undecodable message")
		metrics.RecordDrop("invalid")
		return
	}

	c.pmu.Lock()
	p := c.pending
	c.pmu.Unlock()

	if p.resp == nil {
		logx.Log.Warn().Uint8("bus", m.BusID).Uint16("addr", m.Addr).Str("src", src).Msg("dropping response with no transaction pending")
		metrics.RecordDrop("unexpected")
		return
	}
	if m.BusID != p.busID || m.Addr != p.addr {
		logx.Log.Warn().
			Uint8("want_bus", p.busID).Uint16("want_addr", p.addr).
			Uint8("got_bus", m.BusID).Uint16("got_addr", m.Addr).
			Str("src", src).Msg("dropping response for wrong target")
		metrics.RecordDrop("mismatch")
		return
	}
	if int(m.Len) > wire.MaxPayload {
		logx.Log.Warn().Uint16("len", m.Len).Str("src", src).Msg("dropping oversized response")
		metrics.RecordDrop("oversize")
		return
	}

	select {
	case p.resp <- m:
	default:
		// This transaction already received its response.
		metrics.RecordDrop("duplicate")
	}
}

func cmdLabel(command uint8) string {
	if command == wire.CommandRead {
		return "read"
	}
	return "write"
}
