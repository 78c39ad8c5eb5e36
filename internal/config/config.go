package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/alexanderjulianmartinez/sqlite-schema/internal/render"
	"github.com/alexanderjulianmartinez/sqlite-schema/internal/source/sqlite"
)

type Config struct {
	Source SourceConfig `yaml:"source"`
	Output OutputConfig `yaml:"output"`
	Log    LogConfig    `yaml:"log"`
	Kafka  KafkaConfig  `yaml:"kafka"`
	Server ServerConfig `yaml:"server"`
}

type SourceConfig struct {
	Driver  string        `yaml:"driver"`
	Timeout time.Duration `yaml:"timeout"`
}

type OutputConfig struct {
	Format string `yaml:"format"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// Default is the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Source: SourceConfig{Driver: sqlite.DefaultDriver},
		Output: OutputConfig{Format: render.FormatText},
		Log:    LogConfig{Level: "warn", Format: "text"},
		Server: ServerConfig{Addr: ":8080"},
	}
}

// LoadConfig reads path on top of Default. Keys absent from the file keep
// their default values.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is required")
	}

	_, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("config file not found: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Source.Driver != sqlite.DriverPure && c.Source.Driver != sqlite.DriverCGo {
		return fmt.Errorf("source.driver must be %s or %s", sqlite.DriverPure, sqlite.DriverCGo)
	}
	if c.Source.Timeout < 0 {
		return errors.New("source.timeout must not be negative")
	}
	if !slices.Contains(render.Formats, c.Output.Format) {
		return fmt.Errorf("output.format %q is not supported", c.Output.Format)
	}
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return errors.New("log.format must be text or json")
	}
	return nil
}

// RequireKafka checks the settings needed to publish snapshots.
func (c *Config) RequireKafka() error {
	if len(c.Kafka.Brokers) == 0 {
		return errors.New("kafka.brokers is required")
	}
	for _, b := range c.Kafka.Brokers {
		if b == "" {
			return errors.New("kafka.brokers must not contain empty entries")
		}
	}
	if c.Kafka.Topic == "" {
		return errors.New("kafka.topic is required")
	}
	return nil
}

// NewLogger builds a stderr logger from the log section.
func (c *Config) NewLogger() (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(c.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("log.level: %w", err)
	}
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetLevel(level)
	if c.Log.Format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	}
	return log, nil
}
