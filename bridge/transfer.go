package bridge

import (
	"fmt"

	"github.com/virtbus/rpbus/wire"
)

// Msg is one logical I2C message within a transfer.
type Msg struct {
	Addr  uint16
	Flags uint16 // wire.FlagRead selects direction
	Buf   []byte
}

// IsRead reports whether the message reads from the device.
func (m *Msg) IsRead() bool { return m.Flags&wire.FlagRead != 0 }

// Translator maps logical I2C transfers onto coordinator transactions,
// one wire transaction per message.
type Translator struct {
	coord *Coordinator
}

// NewTranslator builds a translator over the given coordinator.
func NewTranslator(c *Coordinator) *Translator {
	return &Translator{coord: c}
}

// Transfer executes msgs in order against the named bus on the peer. Only
// the last message carries the STOP flag, so a write-then-read pair stays
// one bus transaction on the peer's side. Read messages have their Buf
// filled with the data read.
//
// The first failure aborts the remaining messages and is returned together
// with the number of messages already completed; completed messages are not
// rolled back, the peer bus has already executed them. On success the count
// equals len(msgs).
func (t *Translator) Transfer(busID uint8, msgs []Msg) (int, error) {
	if len(msgs) == 0 {
		return 0, fmt.Errorf("bridge: empty transfer: %w", wire.ErrInvalidParameter)
	}

	for i := range msgs {
		m := &msgs[i]
		stop := i == len(msgs)-1

		if len(m.Buf) > wire.MaxPayload {
			return i, fmt.Errorf("bridge: message %d carries %d bytes, limit %d: %w", i, len(m.Buf), wire.MaxPayload, wire.ErrInvalidParameter)
		}

		if m.IsRead() {
			data, err := t.coord.Read(busID, m.Addr, m.Flags, len(m.Buf), stop)
			if err != nil {
				return i, err
			}
			copy(m.Buf, data)
		} else {
			if err := t.coord.Write(busID, m.Addr, m.Flags, m.Buf, stop); err != nil {
				return i, err
			}
		}
	}
	return len(msgs), nil
}
