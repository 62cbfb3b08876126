//go:build !linux

package hardware

import (
	"errors"

	"github.com/miaokingsoft/HydroMonitor-RPi/internal/config"
)

// Real devices require the Linux GPIO character device. On other platforms
// only mock hardware mode is available.
func newRealDevices(cfg config.HardwareConfig) (*Devices, error) {
	return nil, errors.New("hardware: real devices require Linux (set hardware.mock: true)")
}
