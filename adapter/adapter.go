// Package adapter exposes bridged buses through periph.io's i2c
// interfaces, the userspace counterpart of registering a kernel I2C
// adapter: device drivers open "rpbus0" by name without knowing the bus
// lives on another processor.
package adapter

import (
	"fmt"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"

	"github.com/virtbus/rpbus/bridge"
	"github.com/virtbus/rpbus/wire"
)

// Bus adapts one bridged bus to i2c.BusCloser.
type Bus struct {
	tr    *bridge.Translator
	busID uint8
	name  string
}

// New wraps the translator's view of busID as a periph bus.
func New(tr *bridge.Translator, busID uint8) *Bus {
	return &Bus{tr: tr, busID: busID, name: fmt.Sprintf("rpbus%d", busID)}
}

func (b *Bus) String() string { return b.name }

// Tx runs one combined transfer: the write half, if any, then the read
// half. Both halves stay one bus transaction on the peer's side; STOP is
// issued only after the final message.
func (b *Bus) Tx(addr uint16, w, r []byte) error {
	msgs := make([]bridge.Msg, 0, 2)
	if len(w) > 0 {
		msgs = append(msgs, bridge.Msg{Addr: addr, Buf: w})
	}
	if len(r) > 0 {
		msgs = append(msgs, bridge.Msg{Addr: addr, Flags: wire.FlagRead, Buf: r})
	}
	if len(msgs) == 0 {
		return nil
	}
	_, err := b.tr.Transfer(b.busID, msgs)
	return err
}

// SetSpeed is not supported; the peer processor owns bus timing.
func (b *Bus) SetSpeed(physic.Frequency) error {
	return fmt.Errorf("%s: bus speed is owned by the peer processor", b.name)
}

// Close satisfies i2c.BusCloser. The underlying channel is owned by the
// caller that built the coordinator, so there is nothing to release here.
func (b *Bus) Close() error { return nil }

// Register publishes the bus in periph's registry so drivers can open it
// by name or number.
func Register(tr *bridge.Translator, busID uint8) error {
	b := New(tr, busID)
	return i2creg.Register(b.name, nil, int(busID), func() (i2c.BusCloser, error) {
		return b, nil
	})
}
