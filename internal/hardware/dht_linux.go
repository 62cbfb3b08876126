//go:build linux

package hardware

import (
	"fmt"

	"github.com/d2r2/go-dht"
)

const dhtRetries = 10

// dhtSensor reads the DHT11 air temperature/humidity sensor. The library
// retries internally; the sensor misses roughly one read in three.
type dhtSensor struct {
	pin int
}

func (s *dhtSensor) Read() (float64, float64, error) {
	temp, humidity, _, err := dht.ReadDHTxxWithRetry(dht.DHT11, s.pin, false, dhtRetries)
	if err != nil {
		return 0, 0, fmt.Errorf("read dht11 on pin %d: %w", s.pin, err)
	}
	return float64(temp), float64(humidity), nil
}
