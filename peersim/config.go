package peersim

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DeviceMap describes the buses and devices an emulated peer exposes.
type DeviceMap struct {
	Buses []BusConfig `yaml:"buses"`
}

// BusConfig is one bus entry in a device map.
type BusConfig struct {
	ID      uint8          `yaml:"id"`
	Devices []DeviceConfig `yaml:"devices"`
}

// DeviceConfig is one device entry in a device map.
type DeviceConfig struct {
	Addr uint16 `yaml:"addr"`
	Kind string `yaml:"kind"`
	Size int    `yaml:"size"`
}

// LoadDeviceMap reads a yaml device map from path.
func LoadDeviceMap(path string) (*DeviceMap, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var dm DeviceMap
	if err := yaml.Unmarshal(b, &dm); err != nil {
		return nil, fmt.Errorf("peersim: parse device map: %w", err)
	}
	return &dm, nil
}

// NewPeerFromMap builds a peer populated per the device map.
func NewPeerFromMap(dm *DeviceMap) (*Peer, error) {
	p := NewPeer()
	for _, bc := range dm.Buses {
		bus := p.AddBus(bc.ID)
		for _, dc := range bc.Devices {
			switch dc.Kind {
			case "register-file", "":
				bus.AddDevice(dc.Addr, NewRegisterFile(dc.Size))
			default:
				return nil, fmt.Errorf("peersim: unknown device kind %q", dc.Kind)
			}
		}
	}
	return p, nil
}
