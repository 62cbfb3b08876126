// Package config loads the application configuration from configs/config.yml
// via viper, with defaults suitable for the reference Raspberry Pi wiring.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Port     string         `mapstructure:"port"`
	LogLevel string         `mapstructure:"log_level"`
	LogFile  string         `mapstructure:"log_file"`
	Timezone string         `mapstructure:"timezone"`
	DB       DBConfig       `mapstructure:"db"`
	Hardware HardwareConfig `mapstructure:"hardware"`
	Sensors  SensorConfig   `mapstructure:"sensors"`
	Feeding  FeedingConfig  `mapstructure:"feeding"`
	Activity ActivityConfig `mapstructure:"activity"`
	Buzzer   BuzzerConfig   `mapstructure:"buzzer"`
	Mail     MailConfig     `mapstructure:"mail"`
}

type DBConfig struct {
	Path string `mapstructure:"path"`
}

// HardwareConfig selects between real GPIO devices and in-memory fakes and
// carries the BCM pin assignment. The relay pins are active-low on the
// reference board.
type HardwareConfig struct {
	Mock            bool   `mapstructure:"mock"`
	Chip            string `mapstructure:"chip"`
	TopSensorPin    int    `mapstructure:"top_sensor_pin"`
	BottomSensorPin int    `mapstructure:"bottom_sensor_pin"`
	FanPin          int    `mapstructure:"fan_pin"`
	AirPumpPin      int    `mapstructure:"pump_pin"`
	WaterPumpPin    int    `mapstructure:"water_pump_pin"`
	BuzzerPin       int    `mapstructure:"buzzer_pin"`
	// ServoPin documents the wiring; the servo is driven through pwm0,
	// which the pwm dtoverlay must map to this pin.
	ServoPin int `mapstructure:"servo_pin"`
	DHT11Pin int `mapstructure:"dht11_pin"`
}

type SensorConfig struct {
	PollInterval    time.Duration `mapstructure:"poll_interval"`
	PersistInterval time.Duration `mapstructure:"persist_interval"`
}

type FeedingConfig struct {
	Cooldown    time.Duration `mapstructure:"cooldown"`
	SettleDelay time.Duration `mapstructure:"settle_delay"`
}

type ActivityConfig struct {
	WatchedPort uint32        `mapstructure:"watched_port"`
	IdleTimeout time.Duration `mapstructure:"idle_timeout"`
}

type BuzzerConfig struct {
	BeepDuration time.Duration `mapstructure:"beep_duration"`
	BeepInterval time.Duration `mapstructure:"beep_interval"`
}

// MailConfig configures the SMTP alert sink. Disabled mail falls back to a
// log-only notifier.
type MailConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Sender   string `mapstructure:"sender"`
	Password string `mapstructure:"password"`
	Receiver string `mapstructure:"receiver"`
}

func setDefaults() {
	viper.SetDefault("port", "8080")
	viper.SetDefault("log_level", "info")
	viper.SetDefault("timezone", "Local")
	viper.SetDefault("db.path", "tank.db")

	viper.SetDefault("hardware.mock", false)
	viper.SetDefault("hardware.chip", "gpiochip0")
	viper.SetDefault("hardware.top_sensor_pin", 25)
	viper.SetDefault("hardware.bottom_sensor_pin", 23)
	viper.SetDefault("hardware.fan_pin", 24)
	viper.SetDefault("hardware.pump_pin", 6)
	viper.SetDefault("hardware.water_pump_pin", 19)
	viper.SetDefault("hardware.buzzer_pin", 17)
	viper.SetDefault("hardware.servo_pin", 26)
	viper.SetDefault("hardware.dht11_pin", 5)

	viper.SetDefault("sensors.poll_interval", 30*time.Second)
	viper.SetDefault("sensors.persist_interval", 5*time.Minute)

	viper.SetDefault("feeding.cooldown", 3*time.Hour)
	viper.SetDefault("feeding.settle_delay", 2*time.Second)

	viper.SetDefault("activity.watched_port", 8081)
	viper.SetDefault("activity.idle_timeout", 60*time.Second)

	viper.SetDefault("buzzer.beep_duration", 200*time.Millisecond)
	viper.SetDefault("buzzer.beep_interval", 100*time.Millisecond)

	viper.SetDefault("mail.enabled", false)
	viper.SetDefault("mail.port", 465)
}

// Load reads configs/<name>.yml from the given path, applies defaults and
// returns the typed configuration. A missing file is not an error; defaults
// then apply.
func Load(path string) (*Config, error) {
	setDefaults()

	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yml")

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Feeding.Cooldown < 0 {
		return fmt.Errorf("feeding.cooldown must not be negative, got %s", c.Feeding.Cooldown)
	}
	if c.Sensors.PollInterval <= 0 {
		return fmt.Errorf("sensors.poll_interval must be positive, got %s", c.Sensors.PollInterval)
	}
	if c.Activity.IdleTimeout <= 0 {
		return fmt.Errorf("activity.idle_timeout must be positive, got %s", c.Activity.IdleTimeout)
	}
	if c.Mail.Enabled && (c.Mail.Host == "" || c.Mail.Sender == "" || c.Mail.Receiver == "") {
		return fmt.Errorf("mail enabled but host/sender/receiver incomplete")
	}
	return nil
}

// Location resolves the configured timezone, falling back to the system
// local zone on error.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}
