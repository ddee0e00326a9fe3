// Package wire implements the fixed-layout transfer protocol spoken between
// the bridge and the peer processor that owns the physical I2C buses.
//
// Every message, request or response, is exactly 34 bytes:
//
//	+--------+----------------------------+
//	| Offset | Content                    |
//	+--------+----------------------------+
//	|   0    | Category                   |
//	|  1-2   | Version                    |
//	|   3    | Type (request/response)    |
//	|   4    | Command (read/write)       |
//	|   5    | Priority                   |
//	|  6-9   | Reserved                   |
//	|  10    | Bus ID                     |
//	|  11    | Return value               |
//	| 12-13  | Device address             |
//	| 14-15  | I2C flags                  |
//	| 16-17  | Payload length             |
//	| 18-33  | Payload (16 bytes)         |
//	+--------+----------------------------+
//
// Multi-byte fields are little-endian, matching the peer firmware.
package wire

import (
	"encoding/binary"
	"fmt"
)

const (
	// MessageSize is the exact size of every message on the wire.
	MessageSize = 34

	// MaxPayload is the largest data payload one message can carry.
	MaxPayload = 16
)

// Protocol constants shared with the peer firmware.
const (
	Category = 0x09
	Version  = 0x0001
	Priority = 0x01

	TypeRequest  = 0x00
	TypeResponse = 0x01

	CommandRead  = 0x00
	CommandWrite = 0x01
)

// I2C flag bits carried in the flags field.
const (
	// FlagRead marks a message as a read from the device.
	FlagRead = 0x0001
	// FlagStop asks the peer to issue an I2C STOP condition after the
	// message, terminating the bus transaction.
	FlagStop = 0x0200
)

// Field offsets within the 34-byte layout.
const (
	offCategory = 0
	offVersion  = 1
	offType     = 3
	offCommand  = 4
	offPriority = 5
	offBusID    = 10
	offReturn   = 11
	offAddr     = 12
	offFlags    = 14
	offLen      = 16
	offPayload  = 18
)

// Message is the decoded form of one protocol message.
type Message struct {
	Category uint8
	Version  uint16
	Type     uint8
	Command  uint8
	Priority uint8
	BusID    uint8
	Return   ReturnCode
	Addr     uint16
	Flags    uint16
	Len      uint16
	Payload  [MaxPayload]byte
}

// Data returns the valid part of the payload buffer.
func (m *Message) Data() []byte {
	n := int(m.Len)
	if n > MaxPayload {
		n = MaxPayload
	}
	return m.Payload[:n]
}

// MarshalBinary serializes the message into its 34-byte wire form.
func (m *Message) MarshalBinary() ([]byte, error) {
	if int(m.Len) > MaxPayload {
		return nil, fmt.Errorf("wire: payload length %d exceeds %d byte limit: %w", m.Len, MaxPayload, ErrInvalidParameter)
	}
	b := make([]byte, MessageSize)
	b[offCategory] = m.Category
	binary.LittleEndian.PutUint16(b[offVersion:], m.Version)
	b[offType] = m.Type
	b[offCommand] = m.Command
	b[offPriority] = m.Priority
	b[offBusID] = m.BusID
	b[offReturn] = byte(m.Return)
	binary.LittleEndian.PutUint16(b[offAddr:], m.Addr)
	binary.LittleEndian.PutUint16(b[offFlags:], m.Flags)
	binary.LittleEndian.PutUint16(b[offLen:], m.Len)
	copy(b[offPayload:], m.Payload[:])
	return b, nil
}

// EncodeRequest builds the wire form of one request. The payload is copied
// verbatim; read requests pass a zeroed buffer of the length to be read.
// When stop is set the STOP flag is OR'd into flags so the peer terminates
// the bus transaction after this message.
func EncodeRequest(busID uint8, addr uint16, command uint8, flags uint16, payload []byte, stop bool) ([]byte, error) {
	if len(payload) > MaxPayload {
		return nil, fmt.Errorf("wire: payload %d bytes exceeds %d byte limit: %w", len(payload), MaxPayload, ErrInvalidParameter)
	}
	if stop {
		flags |= FlagStop
	}
	m := Message{
		Category: Category,
		Version:  Version,
		Type:     TypeRequest,
		Command:  command,
		Priority: Priority,
		BusID:    busID,
		Addr:     addr,
		Flags:    flags,
		Len:      uint16(len(payload)),
	}
	copy(m.Payload[:], payload)
	return m.MarshalBinary()
}

// Decode parses a 34-byte message of either type.
func Decode(b []byte) (*Message, error) {
	if len(b) != MessageSize {
		return nil, fmt.Errorf("wire: message is %d bytes, want %d: %w", len(b), MessageSize, ErrInvalidMessage)
	}
	m := &Message{
		Category: b[offCategory],
		Version:  binary.LittleEndian.Uint16(b[offVersion:]),
		Type:     b[offType],
		Command:  b[offCommand],
		Priority: b[offPriority],
		BusID:    b[offBusID],
		Return:   ReturnCode(b[offReturn]),
		Addr:     binary.LittleEndian.Uint16(b[offAddr:]),
		Flags:    binary.LittleEndian.Uint16(b[offFlags:]),
		Len:      binary.LittleEndian.Uint16(b[offLen:]),
	}
	copy(m.Payload[:], b[offPayload:])
	return m, nil
}

// DecodeResponse parses a message and rejects anything that is not a
// response.
func DecodeResponse(b []byte) (*Message, error) {
	m, err := Decode(b)
	if err != nil {
		return nil, err
	}
	if m.Type != TypeResponse {
		return nil, fmt.Errorf("wire: message type %#02x is not a response: %w", m.Type, ErrInvalidMessage)
	}
	return m, nil
}

// DecodeRequest parses a message and rejects anything that is not a request.
func DecodeRequest(b []byte) (*Message, error) {
	m, err := Decode(b)
	if err != nil {
		return nil, err
	}
	if m.Type != TypeRequest {
		return nil, fmt.Errorf("wire: message type %#02x is not a request: %w", m.Type, ErrInvalidMessage)
	}
	return m, nil
}
