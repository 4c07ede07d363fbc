package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/itohio/gobarscan/pkg/decoder"
	"github.com/itohio/gobarscan/pkg/sample"
)

var (
	ErrInvalidWindow     = errors.New("invalid averaging window")
	ErrInvalidThresholds = errors.New("invalid thresholds")
	ErrInvalidUnit       = errors.New("invalid duration unit")
	ErrInvalidMock       = errors.New("invalid mock strip")
)

// Config represents the application configuration.
type Config struct {
	Serial  SerialConfig  `yaml:"serial"`
	Decoder DecoderConfig `yaml:"decoder"`
	Display DisplayConfig `yaml:"display"`
	Status  StatusConfig  `yaml:"status"`
	Mock    MockConfig    `yaml:"mock"`
	Log     LogConfig     `yaml:"log"`
}

// SerialConfig contains serial port configuration.
type SerialConfig struct {
	Port       string `yaml:"port"`
	BaudRate   int    `yaml:"baud_rate"`
	BufferSize int    `yaml:"buffer_size"`
}

// DecoderConfig tunes the decoding pipeline.
type DecoderConfig struct {
	WindowSize     int           `yaml:"window_size"`     // raw samples per averaged reading
	NoiseThreshold uint16        `yaml:"noise_threshold"` // hysteresis band, ADC counts
	DarkThreshold  uint16        `yaml:"dark_threshold"`  // ADC level above which the strip is dark
	UnitDuration   time.Duration `yaml:"unit_duration"`
	StaleReadings  int           `yaml:"stale_readings"` // negative disables expiry
	QueueSize      int           `yaml:"queue_size"`
}

// DisplayConfig controls the scope window.
type DisplayConfig struct {
	WindowSeconds float64 `yaml:"window_seconds"`
	MaxPoints     int     `yaml:"max_points"`
}

// StatusConfig controls the HTTP status API.
type StatusConfig struct {
	Enabled bool   `yaml:"enabled"`
	Listen  string `yaml:"listen"`
}

// MockConfig describes the strip fed by the mock sensor.
type MockConfig struct {
	Text           string        `yaml:"text"`            // characters printed on the strip, including sentinels
	SampleInterval time.Duration `yaml:"sample_interval"` // spacing of raw samples
	Narrow         time.Duration `yaml:"narrow"`          // narrow element as seen by the sensor
	WideRatio      float64       `yaml:"wide_ratio"`
	Rise           time.Duration `yaml:"rise"` // sensor response time constant, 0 for ideal edges
	LightLevel     uint16        `yaml:"light_level"`
	DarkLevel      uint16        `yaml:"dark_level"`
	NoiseLevel     float64       `yaml:"noise_level"` // ADC counts, standard deviation
	Pause          time.Duration `yaml:"pause"`       // blank strip between passes
	BatchPeriod    time.Duration `yaml:"batch_period"`
}

// LogConfig controls logging.
type LogConfig struct {
	Debug bool `yaml:"debug"`
}

// Default returns a default configuration with sensible values.
func Default() *Config {
	return &Config{
		Serial: SerialConfig{
			Port:       "/dev/ttyACM0",
			BaudRate:   921600,
			BufferSize: 4096,
		},
		Decoder: DecoderConfig{
			WindowSize:     100,
			NoiseThreshold: 50,
			DarkThreshold:  1000,
			UnitDuration:   10 * time.Millisecond,
			StaleReadings:  400,
			QueueSize:      16,
		},
		Display: DisplayConfig{
			WindowSeconds: 5,
			MaxPoints:     2000,
		},
		Status: StatusConfig{
			Enabled: true,
			Listen:  "127.0.0.1:8039",
		},
		Mock: MockConfig{
			Text:           "*A*",
			SampleInterval: 50 * time.Microsecond,
			Narrow:         40 * time.Millisecond,
			WideRatio:      3,
			Rise:           2 * time.Millisecond,
			LightLevel:     300,
			DarkLevel:      3000,
			NoiseLevel:     20,
			Pause:          time.Second,
			BatchPeriod:    10 * time.Millisecond,
		},
	}
}

// Load loads configuration from a YAML file. If the file doesn't exist or
// fields are missing, it uses default values.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ensureDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", filename, err)
	}

	return cfg, nil
}

// Save saves the configuration to a YAML file.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ensureDefaults fills zero values left by a partial file.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.Serial.Port == "" {
		c.Serial.Port = def.Serial.Port
	}
	if c.Serial.BaudRate == 0 {
		c.Serial.BaudRate = def.Serial.BaudRate
	}
	if c.Serial.BufferSize == 0 {
		c.Serial.BufferSize = def.Serial.BufferSize
	}

	if c.Decoder.WindowSize == 0 {
		c.Decoder.WindowSize = def.Decoder.WindowSize
	}
	if c.Decoder.NoiseThreshold == 0 {
		c.Decoder.NoiseThreshold = def.Decoder.NoiseThreshold
	}
	if c.Decoder.DarkThreshold == 0 {
		c.Decoder.DarkThreshold = def.Decoder.DarkThreshold
	}
	if c.Decoder.UnitDuration == 0 {
		c.Decoder.UnitDuration = def.Decoder.UnitDuration
	}
	if c.Decoder.StaleReadings == 0 {
		c.Decoder.StaleReadings = def.Decoder.StaleReadings
	}
	if c.Decoder.QueueSize == 0 {
		c.Decoder.QueueSize = def.Decoder.QueueSize
	}

	if c.Display.WindowSeconds == 0 {
		c.Display.WindowSeconds = def.Display.WindowSeconds
	}
	if c.Display.MaxPoints == 0 {
		c.Display.MaxPoints = def.Display.MaxPoints
	}

	if c.Status.Listen == "" {
		c.Status.Listen = def.Status.Listen
	}

	if c.Mock.Text == "" {
		c.Mock.Text = def.Mock.Text
	}
	if c.Mock.SampleInterval == 0 {
		c.Mock.SampleInterval = def.Mock.SampleInterval
	}
	if c.Mock.Narrow == 0 {
		c.Mock.Narrow = def.Mock.Narrow
	}
	if c.Mock.WideRatio == 0 {
		c.Mock.WideRatio = def.Mock.WideRatio
	}
	if c.Mock.LightLevel == 0 {
		c.Mock.LightLevel = def.Mock.LightLevel
	}
	if c.Mock.DarkLevel == 0 {
		c.Mock.DarkLevel = def.Mock.DarkLevel
	}
	if c.Mock.Pause == 0 {
		c.Mock.Pause = def.Mock.Pause
	}
	if c.Mock.BatchPeriod == 0 {
		c.Mock.BatchPeriod = def.Mock.BatchPeriod
	}
}

// Validate checks values that would make the decoder misbehave.
func (c *Config) Validate() error {
	d := c.Decoder
	if d.WindowSize <= 0 || d.WindowSize > sample.MaxWindowSize {
		return fmt.Errorf("%w: window_size %d not in 1..%d", ErrInvalidWindow, d.WindowSize, sample.MaxWindowSize)
	}
	if d.NoiseThreshold >= d.DarkThreshold {
		return fmt.Errorf("%w: noise_threshold %d must be below dark_threshold %d",
			ErrInvalidThresholds, d.NoiseThreshold, d.DarkThreshold)
	}
	if d.UnitDuration < time.Microsecond {
		return fmt.Errorf("%w: unit_duration %s", ErrInvalidUnit, d.UnitDuration)
	}

	m := c.Mock
	if m.SampleInterval <= 0 || m.Narrow < m.SampleInterval {
		return fmt.Errorf("%w: narrow %s shorter than sample_interval %s", ErrInvalidMock, m.Narrow, m.SampleInterval)
	}
	if m.WideRatio < 2 {
		return fmt.Errorf("%w: wide_ratio %.2f below 2", ErrInvalidMock, m.WideRatio)
	}
	if m.LightLevel >= m.DarkLevel {
		return fmt.Errorf("%w: light_level %d must be below dark_level %d", ErrInvalidMock, m.LightLevel, m.DarkLevel)
	}
	return nil
}

// Options converts the decoder section into decoder options.
func (d DecoderConfig) Options() decoder.Options {
	return decoder.Options{
		WindowSize:     d.WindowSize,
		NoiseThreshold: d.NoiseThreshold,
		DarkThreshold:  d.DarkThreshold,
		UnitMicros:     decoder.Micros(d.UnitDuration.Microseconds()),
		StaleReadings:  d.StaleReadings,
		QueueSize:      d.QueueSize,
	}
}
