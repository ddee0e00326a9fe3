package transport

import (
	"fmt"
	"os"

	"github.com/virtbus/rpbus/internal/logx"
)

// rpmsg messages are bounded by the virtio buffer size minus the rpmsg
// header; 512 is comfortably larger than anything the peer sends.
const rpmsgReadBuf = 512

// RPMsgDev drives a bound rpmsg endpoint through its character device
// (/dev/rpmsgN). Each write goes out as one message to the peer core; each
// read returns one inbound message.
type RPMsgDev struct {
	f *os.File
}

// OpenRPMsgDev opens the endpoint device and starts the delivery loop
// feeding recv.
func OpenRPMsgDev(path string, recv Receiver) (*RPMsgDev, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("transport: open rpmsg endpoint: %w", err)
	}
	t := &RPMsgDev{f: f}
	go t.readLoop(recv)
	return t, nil
}

func (t *RPMsgDev) Send(b []byte) error {
	n, err := t.f.Write(b)
	if err != nil {
		return err
	}
	if n != len(b) {
		return fmt.Errorf("transport: short write: %d of %d bytes", n, len(b))
	}
	return nil
}

func (t *RPMsgDev) Close() error {
	return t.f.Close()
}

func (t *RPMsgDev) readLoop(recv Receiver) {
	buf := make([]byte, rpmsgReadBuf)
	for {
		n, err := t.f.Read(buf)
		if err != nil {
			logx.Log.Debug().Err(err).Str("dev", t.f.Name()).Msg("rpmsg read loop ended")
			return
		}
		msg := make([]byte, n)
		copy(msg, buf[:n])
		recv(msg, t.f.Name())
	}
}
