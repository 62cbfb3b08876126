package hardware

import (
	"github.com/miaokingsoft/HydroMonitor-RPi/internal/config"
)

// Build returns the device set selected by configuration: in-memory fakes
// in mock mode, real Raspberry Pi peripherals otherwise.
func Build(cfg config.HardwareConfig) (*Devices, error) {
	if cfg.Mock {
		return NewFakeDevices(), nil
	}
	return newRealDevices(cfg)
}
