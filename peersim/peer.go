// Package peersim emulates the peer processor that owns the physical I2C
// buses: it decodes requests, executes them against in-memory device
// models and produces the responses the bridge expects. It backs the
// rpbus-peer daemon and the bridge integration tests.
package peersim

import (
	"sync"

	"github.com/virtbus/rpbus/wire"
)

// Device models one I2C target on an emulated bus.
type Device interface {
	// Write receives the payload of one write message.
	Write(data []byte, stop bool) error
	// Read fills buf from the device.
	Read(buf []byte, stop bool) error
}

// Bus is one emulated I2C bus holding devices by address.
type Bus struct {
	devices map[uint16]Device
}

// AddDevice attaches a device at the given address, replacing any previous
// one.
func (b *Bus) AddDevice(addr uint16, d Device) {
	b.devices[addr] = d
}

// Peer is the emulated remote processor. One Peer serves any number of
// channel sessions; bus operations are serialized like on the real peer.
type Peer struct {
	mu    sync.Mutex
	buses map[uint8]*Bus
}

// NewPeer builds an empty peer with no buses.
func NewPeer() *Peer {
	return &Peer{buses: make(map[uint8]*Bus)}
}

// AddBus registers an empty bus under the given id and returns it.
func (p *Peer) AddBus(id uint8) *Bus {
	p.mu.Lock()
	defer p.mu.Unlock()
	b := &Bus{devices: make(map[uint16]Device)}
	p.buses[id] = b
	return b
}

// Handle executes one decoded request and returns the response to send
// back. Failures surface as protocol return codes, never as dropped
// requests: an unknown bus answers ServiceNotFound, an address nobody
// ACKs answers Failed.
func (p *Peer) Handle(req *wire.Message) *wire.Message {
	resp := &wire.Message{
		Category: wire.Category,
		Version:  wire.Version,
		Type:     wire.TypeResponse,
		Command:  req.Command,
		Priority: wire.Priority,
		BusID:    req.BusID,
		Addr:     req.Addr,
		Flags:    req.Flags,
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	bus, ok := p.buses[req.BusID]
	if !ok {
		resp.Return = wire.RetServiceNotFound
		return resp
	}
	if int(req.Len) > wire.MaxPayload {
		resp.Return = wire.RetInvalidParameter
		return resp
	}
	dev, ok := bus.devices[req.Addr]
	if !ok {
		resp.Return = wire.RetFailed
		return resp
	}

	stop := req.Flags&wire.FlagStop != 0
	switch req.Command {
	case wire.CommandWrite:
		if err := dev.Write(req.Data(), stop); err != nil {
			resp.Return = wire.RetFailed
		}
	case wire.CommandRead:
		buf := make([]byte, req.Len)
		if err := dev.Read(buf, stop); err != nil {
			resp.Return = wire.RetFailed
			return resp
		}
		resp.Len = req.Len
		copy(resp.Payload[:], buf)
	default:
		resp.Return = wire.RetInvalidMessage
	}
	return resp
}
