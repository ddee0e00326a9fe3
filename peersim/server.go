package peersim

import (
	"net/http"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/virtbus/rpbus/internal/logx"
	"github.com/virtbus/rpbus/wire"
)

// NewRouter returns the HTTP handler serving the peer: the message channel
// on /rpmsg and a liveness probe on /healthz.
func NewRouter(p *Peer) http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/rpmsg", p.serveChannel)
	return r
}

// serveChannel runs one channel session: each binary frame is one request,
// each reply one response. Undecodable frames are logged and dropped,
// mirroring how the real channel treats garbage.
func (p *Peer) serveChannel(w http.ResponseWriter, r *http.Request) {
	c, err := websocket.Accept(w, r, nil)
	if err != nil {
		logx.Log.Warn().Err(err).Msg("peer channel accept failed")
		return
	}
	session := uuid.NewString()
	logx.Log.Info().Str("session", session).Str("remote", r.RemoteAddr).Msg("peer channel open")
	defer func() {
		_ = c.Close(websocket.StatusNormalClosure, "closing")
		logx.Log.Info().Str("session", session).Msg("peer channel closed")
	}()

	ctx := r.Context()
	for {
		_, data, err := c.Read(ctx)
		if err != nil {
			return
		}
		req, err := wire.DecodeRequest(data)
		if err != nil {
			logx.Log.Warn().Err(err).Str("session", session).Msg("dropping bad request frame")
			continue
		}
		resp := p.Handle(req)
		b, err := resp.MarshalBinary()
		if err != nil {
			logx.Log.Error().Err(err).Str("session", session).Msg("encode response")
			continue
		}
		if err := c.Write(ctx, websocket.MessageBinary, b); err != nil {
			return
		}
	}
}
