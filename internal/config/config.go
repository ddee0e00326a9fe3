// Package config holds flag and environment configuration for the rpbus
// daemons.
package config

import (
	"flag"
	"os"
	"strconv"
	"time"
)

// BridgeConfig holds configuration for the rpbusd daemon.
type BridgeConfig struct {
	PeerURL    string
	RPMsgDev   string
	BusID      int
	StatusPort int
	Timeout    time.Duration
	LogLevel   string
}

// BindFlags populates the struct with defaults from environment variables
// and binds command line flags so main can call flag.Parse().
func (c *BridgeConfig) BindFlags() {
	c.PeerURL = getEnv("RPBUS_PEER_URL", "ws://127.0.0.1:8181/rpmsg")
	c.RPMsgDev = getEnv("RPBUS_RPMSG_DEV", "")
	bus, _ := strconv.Atoi(getEnv("RPBUS_BUS_ID", "0"))
	c.BusID = bus
	port, _ := strconv.Atoi(getEnv("RPBUS_STATUS_PORT", "9090"))
	c.StatusPort = port
	to, _ := time.ParseDuration(getEnv("RPBUS_TIMEOUT", "500ms"))
	c.Timeout = to
	c.LogLevel = getEnv("LOG_LEVEL", "info")

	flag.StringVar(&c.PeerURL, "peer-url", c.PeerURL, "websocket endpoint of the peer; ignored when --rpmsg-dev is set")
	flag.StringVar(&c.RPMsgDev, "rpmsg-dev", c.RPMsgDev, "rpmsg endpoint character device, e.g. /dev/rpmsg0")
	flag.IntVar(&c.BusID, "bus-id", c.BusID, "logical bus id shared with the peer")
	flag.IntVar(&c.StatusPort, "status-port", c.StatusPort, "HTTP listen port for /metrics and /healthz")
	flag.DurationVar(&c.Timeout, "timeout", c.Timeout, "per-transaction response timeout")
	flag.StringVar(&c.LogLevel, "log-level", c.LogLevel, "log level (debug, info, warn, error)")
}

// PeerConfig holds configuration for the rpbus-peer simulator daemon.
type PeerConfig struct {
	Port      int
	DeviceMap string
	LogLevel  string
}

// BindFlags populates the struct with defaults from environment variables
// and binds command line flags so main can call flag.Parse().
func (c *PeerConfig) BindFlags() {
	port, _ := strconv.Atoi(getEnv("RPBUS_PEER_PORT", "8181"))
	c.Port = port
	c.DeviceMap = getEnv("RPBUS_DEVICE_MAP", "")
	c.LogLevel = getEnv("LOG_LEVEL", "info")

	flag.IntVar(&c.Port, "port", c.Port, "HTTP listen port for the peer channel")
	flag.StringVar(&c.DeviceMap, "device-map", c.DeviceMap, "yaml device map; empty serves one 256-byte register file at 0x50 on bus 0")
	flag.StringVar(&c.LogLevel, "log-level", c.LogLevel, "log level (debug, info, warn, error)")
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
