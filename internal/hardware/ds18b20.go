package hardware

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const w1BaseDir = "/sys/bus/w1/devices"

// w1TempSensor reads the first DS18B20 probe on the 1-wire bus through the
// kernel's sysfs interface.
type w1TempSensor struct {
	// deviceDir caches the resolved probe directory after the first read.
	deviceDir string
}

var errNoW1Device = errors.New("no ds18b20 device found under " + w1BaseDir)

func (s *w1TempSensor) Read() (float64, error) {
	if s.deviceDir == "" {
		matches, err := filepath.Glob(filepath.Join(w1BaseDir, "28*"))
		if err != nil || len(matches) == 0 {
			return 0, errNoW1Device
		}
		s.deviceDir = matches[0]
	}

	data, err := os.ReadFile(filepath.Join(s.deviceDir, "w1_slave"))
	if err != nil {
		return 0, fmt.Errorf("read w1_slave: %w", err)
	}
	return parseW1Slave(string(data))
}

// parseW1Slave extracts the temperature from the two-line w1_slave format:
//
//	4b 46 7f ff 0c 10 e9 : crc=e9 YES
//	4b 46 7f ff 0c 10 e9 t=26312
func parseW1Slave(data string) (float64, error) {
	lines := strings.Split(strings.TrimSpace(data), "\n")
	if len(lines) < 2 {
		return 0, fmt.Errorf("malformed w1_slave output: %q", data)
	}
	if !strings.HasSuffix(strings.TrimSpace(lines[0]), "YES") {
		return 0, errors.New("ds18b20 crc check failed")
	}
	idx := strings.Index(lines[1], "t=")
	if idx < 0 {
		return 0, fmt.Errorf("no temperature in w1_slave output: %q", lines[1])
	}
	milli, err := strconv.ParseFloat(strings.TrimSpace(lines[1][idx+2:]), 64)
	if err != nil {
		return 0, fmt.Errorf("parse temperature: %w", err)
	}
	return milli / 1000.0, nil
}
