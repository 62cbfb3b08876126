package models

import "time"

// WaterLevel is the discrete level state derived from the two float switches.
type WaterLevel string

const (
	WaterLevelHigh    WaterLevel = "high"
	WaterLevelNormal  WaterLevel = "normal"
	WaterLevelLow     WaterLevel = "low"
	WaterLevelUnknown WaterLevel = "unknown"
	WaterLevelError   WaterLevel = "error"
)

// AlertStatus tracks which water-level alarm is currently active.
// At most one of the two flags is true at any time.
type AlertStatus struct {
	HighActive bool `json:"high_active"`
	LowActive  bool `json:"low_active"`
}

// SensorReading is the latest environment snapshot. Nil fields mean the
// value has never been read successfully; a failed poll keeps the previous
// value rather than clearing it.
type SensorReading struct {
	AirTempC   *float64  `json:"air_temp_c"`
	Humidity   *float64  `json:"humidity"`
	WaterTempC *float64  `json:"water_temp_c"`
	CapturedAt time.Time `json:"captured_at"`
}

// Actuator names used across services, handlers and the state store.
const (
	ActuatorFan       = "fan"
	ActuatorAirPump   = "air_pump"
	ActuatorWaterPump = "water_pump"
)

// TankStatus is the read-only snapshot served to the UI/API.
type TankStatus struct {
	Active         bool       `json:"active"`
	Connections    int        `json:"connections"`
	LastActivity   *time.Time `json:"last_activity,omitempty"`
	WaterLevel     WaterLevel `json:"water_level"`
	AirTempC       *float64   `json:"temperature"`
	Humidity       *float64   `json:"humidity"`
	WaterTempC     *float64   `json:"water_temp"`
	FanEnabled     bool       `json:"fan_enabled"`
	AirPumpEnabled bool       `json:"pump_enabled"`
	WaterPumpOn    bool       `json:"water_pump_enabled"`
	FeedHoursAgo   *float64   `json:"feed_hours_ago"`
	MemUsedPercent *float64   `json:"mem_usage,omitempty"`
	CPUTempC       *float64   `json:"cpu_temp,omitempty"`
	GeneratedAt    time.Time  `json:"generated_at"`
}
