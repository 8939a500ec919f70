package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const (
	DefaultTarget   = "192.168.1.100"
	DefaultCount    = 1000
	DefaultSnapLen  = 65536
	DefaultInterval = "1ms"
)

// GeneratorConfig controls which archetypes are built and how.
type GeneratorConfig struct {
	Target     string   `yaml:"target"`
	Count      int      `yaml:"count"`
	Seed       uint64   `yaml:"seed"` // 0 picks a time-based seed
	Archetypes []string `yaml:"archetypes"`
	Parallel   int      `yaml:"parallel"`
}

// OutputConfig holds the capture file settings.
type OutputConfig struct {
	Dir            string `yaml:"dir"`
	SnapLen        uint32 `yaml:"snap_len"`
	PacketInterval string `yaml:"packet_interval"`
	Manifest       bool   `yaml:"manifest"`
}

// FileLogConfig enables a rotated log file next to the console output.
type FileLogConfig struct {
	Filename   string `yaml:"filename"`
	MaxSize    int    `yaml:"max_size"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAge     int    `yaml:"max_age"`
	Compress   bool   `yaml:"compress"`
}

// LogConfig holds the logger settings.
type LogConfig struct {
	Level  string        `yaml:"level"`
	Format string        `yaml:"format"`
	File   FileLogConfig `yaml:"file"`
}

// NATSConfig configures the fixture event publisher.
type NATSConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url"`
	Subject string `yaml:"subject"`
}

// ClickHouseConfig holds the connection details for the fixture catalog.
type ClickHouseConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// APIConfig holds the fixture server settings.
type APIConfig struct {
	ListenAddr string `yaml:"listen_addr"`
	MaxCount   int    `yaml:"max_count"`
}

// Config is the top-level configuration struct for the entire application.
type Config struct {
	Generator  GeneratorConfig  `yaml:"generator"`
	Output     OutputConfig     `yaml:"output"`
	Log        LogConfig        `yaml:"log"`
	NATS       NATSConfig       `yaml:"nats"`
	ClickHouse ClickHouseConfig `yaml:"clickhouse"`
	API        APIConfig        `yaml:"api"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Generator: GeneratorConfig{
			Target:   DefaultTarget,
			Count:    DefaultCount,
			Parallel: 1,
		},
		Output: OutputConfig{
			Dir:            ".",
			SnapLen:        DefaultSnapLen,
			PacketInterval: DefaultInterval,
			Manifest:       true,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		NATS: NATSConfig{
			URL:     "nats://127.0.0.1:4222",
			Subject: "gons.fixtures.written",
		},
		ClickHouse: ClickHouseConfig{
			Host:     "localhost",
			Port:     9000,
			Database: "default",
			Username: "default",
		},
		API: APIConfig{
			ListenAddr: ":8090",
			MaxCount:   100000,
		},
	}
}

// LoadConfig reads the configuration from a YAML file over the defaults and
// validates the result. An empty path returns the defaults.
func LoadConfig(filePath string) (*Config, error) {
	cfg := Default()
	if filePath == "" {
		return cfg, cfg.Validate()
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal config YAML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Interval parses the packet interval.
func (c *OutputConfig) Interval() time.Duration {
	d, err := time.ParseDuration(c.PacketInterval)
	if err != nil {
		return time.Millisecond
	}
	return d
}

// Validate checks the values the core depends on.
func (c *Config) Validate() error {
	var errs []error
	if ip := net.ParseIP(c.Generator.Target); ip == nil || ip.To4() == nil {
		errs = append(errs, fmt.Errorf("generator.target '%s' is not an IPv4 address", c.Generator.Target))
	}
	if c.Generator.Count < 0 {
		errs = append(errs, fmt.Errorf("generator.count must not be negative, got %d", c.Generator.Count))
	}
	if c.Generator.Parallel < 1 {
		errs = append(errs, fmt.Errorf("generator.parallel must be at least 1, got %d", c.Generator.Parallel))
	}
	if c.Output.Dir == "" {
		errs = append(errs, errors.New("output.dir must not be empty"))
	}
	if d, err := time.ParseDuration(c.Output.PacketInterval); err != nil || d < 0 {
		errs = append(errs, fmt.Errorf("output.packet_interval '%s' is not a non-negative duration", c.Output.PacketInterval))
	}
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format must be 'text' or 'json', got '%s'", c.Log.Format))
	}
	if c.NATS.Enabled && c.NATS.Subject == "" {
		errs = append(errs, errors.New("nats.subject is required when nats is enabled"))
	}
	if c.ClickHouse.Enabled && c.ClickHouse.Host == "" {
		errs = append(errs, errors.New("clickhouse.host is required when clickhouse is enabled"))
	}
	return errors.Join(errs...)
}
