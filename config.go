package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

// Config is the configuration file of changewatch. Command line flags take
// precedence.
type Config struct {
	Paths    []string      `yaml:"paths"`
	Mode     string        `yaml:"mode"`
	Latency  time.Duration `yaml:"latency"`
	Since    uint64        `yaml:"since"`
	Flags    uint32        `yaml:"flags"`
	Backend  string        `yaml:"backend"`
	State    string        `yaml:"state"`
	Exec     string        `yaml:"exec"`
	Ignore   []string      `yaml:"ignore"`
	Pushover bool          `yaml:"pushover"`
}

func LoadConfig(filename string) (Config, error) {
	buf, err := os.ReadFile(filename)
	if err != nil {
		return Config{}, fmt.Errorf("read config failed: %w", err)
	}

	var cfg Config

	err = yaml.UnmarshalStrict(buf, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("load config failed: %w", err)
	}

	return cfg, nil
}
