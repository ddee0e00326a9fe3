package wire

import (
	"bytes"
	"errors"
	"testing"
)

func TestEncodeRequestLayout(t *testing.T) {
	b, err := EncodeRequest(1, 0x50, CommandWrite, 0, []byte{0x01, 0x02, 0x03}, true)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if len(b) != MessageSize {
		t.Fatalf("encoded %d bytes, want %d", len(b), MessageSize)
	}

	// category, version 0x0001 LE, request, write, priority, bus 1,
	// addr 0x50, flags 0x0200 (STOP), length 3, payload.
	want := make([]byte, MessageSize)
	want[0] = 0x09
	want[1] = 0x01
	want[4] = 0x01
	want[5] = 0x01
	want[10] = 0x01
	want[12] = 0x50
	want[15] = 0x02
	want[16] = 0x03
	copy(want[18:], []byte{0x01, 0x02, 0x03})
	if !bytes.Equal(b, want) {
		t.Fatalf("layout mismatch:\n got %#v\nwant %#v", b, want)
	}
}

func TestEncodeRequestStopFlag(t *testing.T) {
	withStop, err := EncodeRequest(0, 0x51, CommandRead, FlagRead, make([]byte, 4), true)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	withoutStop, err := EncodeRequest(0, 0x51, CommandRead, FlagRead, make([]byte, 4), false)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	m1, err := DecodeRequest(withStop)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	m2, err := DecodeRequest(withoutStop)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if m1.Flags&FlagStop == 0 {
		t.Fatalf("last message lost its STOP flag: %#04x", m1.Flags)
	}
	if m2.Flags&FlagStop != 0 {
		t.Fatalf("non-final message carries STOP: %#04x", m2.Flags)
	}
	if m1.Flags&FlagRead == 0 || m2.Flags&FlagRead == 0 {
		t.Fatalf("read flag not preserved: %#04x %#04x", m1.Flags, m2.Flags)
	}
}

func TestResponseRoundTrip(t *testing.T) {
	for n := 0; n <= MaxPayload; n++ {
		m := Message{
			Category: Category,
			Version:  Version,
			Type:     TypeResponse,
			Command:  CommandRead,
			Priority: Priority,
			BusID:    3,
			Return:   RetSuccess,
			Addr:     0x2b,
			Flags:    FlagRead | FlagStop,
			Len:      uint16(n),
		}
		for i := 0; i < n; i++ {
			m.Payload[i] = byte(0xA0 + i)
		}
		b, err := m.MarshalBinary()
		if err != nil {
			t.Fatalf("len %d: marshal: %v", n, err)
		}
		got, err := DecodeResponse(b)
		if err != nil {
			t.Fatalf("len %d: decode: %v", n, err)
		}
		if *got != m {
			t.Fatalf("len %d: round trip mismatch:\n got %+v\nwant %+v", n, *got, m)
		}
	}
}

func TestEncodeRequestOversize(t *testing.T) {
	_, err := EncodeRequest(0, 0x50, CommandWrite, 0, make([]byte, MaxPayload+1), true)
	if !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("expected ErrInvalidParameter, got %v", err)
	}
}

func TestMarshalOversize(t *testing.T) {
	m := Message{Len: MaxPayload + 1}
	if _, err := m.MarshalBinary(); !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("expected ErrInvalidParameter, got %v", err)
	}
}

func TestDecodeBadSize(t *testing.T) {
	for _, n := range []int{0, MessageSize - 1, MessageSize + 1} {
		if _, err := Decode(make([]byte, n)); !errors.Is(err, ErrInvalidMessage) {
			t.Fatalf("size %d: expected ErrInvalidMessage, got %v", n, err)
		}
	}
}

func TestDecodeResponseRejectsRequest(t *testing.T) {
	b, err := EncodeRequest(0, 0x50, CommandRead, 0, make([]byte, 2), true)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if _, err := DecodeResponse(b); !errors.Is(err, ErrInvalidMessage) {
		t.Fatalf("expected ErrInvalidMessage, got %v", err)
	}
	if _, err := DecodeRequest(b); err != nil {
		t.Fatalf("same bytes should decode as request: %v", err)
	}
}

func TestDataClampsLength(t *testing.T) {
	m := Message{Len: 40}
	if n := len(m.Data()); n != MaxPayload {
		t.Fatalf("Data returned %d bytes, want %d", n, MaxPayload)
	}
}
