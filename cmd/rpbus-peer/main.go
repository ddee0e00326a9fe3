package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/virtbus/rpbus/internal/config"
	"github.com/virtbus/rpbus/internal/logx"
	"github.com/virtbus/rpbus/peersim"
)

func main() {
	var cfg config.PeerConfig
	cfg.BindFlags()
	flag.Parse()
	logx.Configure(cfg.LogLevel)

	peer, err := buildPeer(cfg.DeviceMap)
	if err != nil {
		logx.Log.Fatal().Err(err).Msg("build peer")
	}

	srv := &http.Server{Addr: fmt.Sprintf(":%d", cfg.Port), Handler: peersim.NewRouter(peer)}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		_ = srv.Shutdown(context.Background())
	}()

	logx.Log.Info().Int("port", cfg.Port).Msg("peer simulator starting")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logx.Log.Fatal().Err(err).Msg("peer simulator error")
	}
}

func buildPeer(mapPath string) (*peersim.Peer, error) {
	if mapPath == "" {
		p := peersim.NewPeer()
		p.AddBus(0).AddDevice(0x50, peersim.NewRegisterFile(256))
		return p, nil
	}
	dm, err := peersim.LoadDeviceMap(mapPath)
	if err != nil {
		return nil, err
	}
	return peersim.NewPeerFromMap(dm)
}
