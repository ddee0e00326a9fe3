package transport

import (
	"context"
	"time"

	"github.com/coder/websocket"

	"github.com/virtbus/rpbus/internal/logx"
)

const wsWriteTimeout = 5 * time.Second

// WS carries protocol messages as binary WebSocket frames. It is the
// development transport for talking to an emulated peer; on target hardware
// use RPMsgDev instead.
type WS struct {
	conn *websocket.Conn
	url  string
}

// DialWS connects to a peer endpoint and starts the delivery loop feeding
// recv.
func DialWS(ctx context.Context, url string, recv Receiver) (*WS, error) {
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	t := &WS{conn: conn, url: url}
	go t.readLoop(recv)
	return t, nil
}

func (t *WS) Send(b []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), wsWriteTimeout)
	defer cancel()
	return t.conn.Write(ctx, websocket.MessageBinary, b)
}

func (t *WS) Close() error {
	return t.conn.Close(websocket.StatusNormalClosure, "closing")
}

func (t *WS) readLoop(recv Receiver) {
	ctx := context.Background()
	for {
		_, data, err := t.conn.Read(ctx)
		if err != nil {
			logx.Log.Debug().Err(err).Str("url", t.url).Msg("websocket read loop ended")
			return
		}
		recv(data, t.url)
	}
}
