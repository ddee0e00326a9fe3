package peersim_test

import (
	"bytes"
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/virtbus/rpbus/bridge"
	"github.com/virtbus/rpbus/peersim"
	"github.com/virtbus/rpbus/transport"
	"github.com/virtbus/rpbus/wire"
)

// startBridge wires a coordinator to an emulated peer over a real
// websocket channel.
func startBridge(t *testing.T, p *peersim.Peer) *bridge.Translator {
	t.Helper()
	srv := httptest.NewServer(peersim.NewRouter(p))
	t.Cleanup(srv.Close)

	coord := bridge.NewCoordinator(nil, time.Second)
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/rpmsg"
	ch, err := transport.DialWS(context.Background(), wsURL, coord.OnMessage)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = ch.Close() })
	coord.Bind(ch)
	return bridge.NewTranslator(coord)
}

func TestBridgeOverChannelWriteThenRead(t *testing.T) {
	p := peersim.NewPeer()
	p.AddBus(1).AddDevice(0x50, peersim.NewRegisterFile(256))
	tr := startBridge(t, p)

	// Store four bytes at register 0x20.
	n, err := tr.Transfer(1, []bridge.Msg{
		{Addr: 0x50, Buf: []byte{0x20, 0xCA, 0xFE, 0xBA, 0xBE}},
	})
	if err != nil {
		t.Fatalf("write transfer: %v", err)
	}
	if n != 1 {
		t.Fatalf("completed %d messages, want 1", n)
	}

	// Combined transfer: set the pointer, then read back without an
	// intervening STOP.
	buf := make([]byte, 4)
	n, err = tr.Transfer(1, []bridge.Msg{
		{Addr: 0x50, Buf: []byte{0x20}},
		{Addr: 0x50, Flags: wire.FlagRead, Buf: buf},
	})
	if err != nil {
		t.Fatalf("read transfer: %v", err)
	}
	if n != 2 {
		t.Fatalf("completed %d messages, want 2", n)
	}
	if !bytes.Equal(buf, []byte{0xCA, 0xFE, 0xBA, 0xBE}) {
		t.Fatalf("read back %v", buf)
	}
}

func TestBridgeOverChannelPeerError(t *testing.T) {
	p := peersim.NewPeer()
	p.AddBus(0).AddDevice(0x50, peersim.NewRegisterFile(16))
	tr := startBridge(t, p)

	// Bus 5 does not exist on the peer.
	_, err := tr.Transfer(5, []bridge.Msg{{Addr: 0x50, Buf: []byte{0x00}}})
	if !errors.Is(err, wire.ErrServiceNotFound) {
		t.Fatalf("expected wire.ErrServiceNotFound, got %v", err)
	}

	// Nobody ACKs at 0x2a.
	_, err = tr.Transfer(0, []bridge.Msg{{Addr: 0x2a, Buf: []byte{0x00}}})
	if !errors.Is(err, wire.ErrFailed) {
		t.Fatalf("expected wire.ErrFailed, got %v", err)
	}
}

func TestBridgeOverChannelConcurrentClients(t *testing.T) {
	p := peersim.NewPeer()
	bus := p.AddBus(0)
	for i := 0; i < 4; i++ {
		bus.AddDevice(uint16(0x20+i), peersim.NewRegisterFile(64))
	}
	tr := startBridge(t, p)

	done := make(chan error, 4)
	for i := 0; i < 4; i++ {
		go func(addr uint16, val byte) {
			buf := make([]byte, 1)
			_, err := tr.Transfer(0, []bridge.Msg{
				{Addr: addr, Buf: []byte{0x00, val}},
				{Addr: addr, Buf: []byte{0x00}},
				{Addr: addr, Flags: wire.FlagRead, Buf: buf},
			})
			if err == nil && buf[0] != val {
				err = errors.New("read back wrong value")
			}
			done <- err
		}(uint16(0x20+i), byte(0x80+i))
	}
	for i := 0; i < 4; i++ {
		if err := <-done; err != nil {
			t.Fatalf("client %d: %v", i, err)
		}
	}
}
