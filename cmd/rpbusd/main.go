package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/virtbus/rpbus/adapter"
	"github.com/virtbus/rpbus/bridge"
	"github.com/virtbus/rpbus/internal/config"
	"github.com/virtbus/rpbus/internal/logx"
	"github.com/virtbus/rpbus/internal/metrics"
	"github.com/virtbus/rpbus/transport"
)

var (
	version   = "dev"
	buildSHA  = "unknown"
	buildDate = "unknown"
)

func main() {
	var cfg config.BridgeConfig
	cfg.BindFlags()
	flag.Parse()
	logx.Configure(cfg.LogLevel)

	metrics.Register(prometheus.DefaultRegisterer)
	metrics.SetBuildInfo(version, buildSHA, buildDate)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	coord := bridge.NewCoordinator(nil, cfg.Timeout)
	tr, err := openTransport(ctx, &cfg, coord.OnMessage)
	if err != nil {
		logx.Log.Fatal().Err(err).Msg("open transport")
	}
	defer func() { _ = tr.Close() }()
	coord.Bind(tr)

	translator := bridge.NewTranslator(coord)
	if err := adapter.Register(translator, uint8(cfg.BusID)); err != nil {
		logx.Log.Fatal().Err(err).Msg("register bus adapter")
	}
	logx.Log.Info().Int("bus", cfg.BusID).Str("adapter", fmt.Sprintf("rpbus%d", cfg.BusID)).Msg("bus adapter registered")

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{AllowedOrigins: []string{"*"}}))
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", cfg.StatusPort), Handler: r}
	go func() {
		<-ctx.Done()
		_ = srv.Shutdown(context.Background())
	}()

	logx.Log.Info().Int("port", cfg.StatusPort).Msg("status server starting")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logx.Log.Fatal().Err(err).Msg("status server error")
	}
}

// openTransport picks the channel to the peer: the rpmsg character device
// on target hardware, a websocket to the peer simulator otherwise.
func openTransport(ctx context.Context, cfg *config.BridgeConfig, recv transport.Receiver) (transport.Transport, error) {
	if cfg.RPMsgDev != "" {
		logx.Log.Info().Str("dev", cfg.RPMsgDev).Msg("using rpmsg endpoint")
		return transport.OpenRPMsgDev(cfg.RPMsgDev, recv)
	}
	logx.Log.Info().Str("url", cfg.PeerURL).Msg("dialing peer")
	return transport.DialWS(ctx, cfg.PeerURL, recv)
}
