// Package config loads the YAML configuration for the rdfpack CLI,
// shaped after the teacher's internal/cli.Config: nested sections per
// concern, yaml-tagged fields, sane defaults applied after decode.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the full rdfpack configuration.
type Config struct {
	Reader struct {
		BatchSize int `yaml:"batch_size"`
	} `yaml:"reader"`

	Packer struct {
		Count           int     `yaml:"count"`
		AcceptableRatio float64 `yaml:"acceptable_ratio"`
	} `yaml:"packer"`

	Output struct {
		Dir string `yaml:"dir"`
	} `yaml:"output"`

	Publish struct {
		Enabled       bool    `yaml:"enabled"`
		AccountID     string  `yaml:"account_id"`
		ContractID    string  `yaml:"contract_id"`
		DatasetName   string  `yaml:"dataset_name"`
		RatePerSecond float64 `yaml:"rate_per_second"`
		Burst         int     `yaml:"burst"`
	} `yaml:"publish"`

	Metrics struct {
		Enabled bool `yaml:"enabled"`
		Port    int  `yaml:"port"`
	} `yaml:"metrics"`
}

// Default returns a Config with the distilled specification's defaults:
// 100,000-quad micro-batches, 6 Packers, 0.95 acceptable ratio.
func Default() Config {
	var c Config
	c.Reader.BatchSize = 100_000
	c.Packer.Count = 6
	c.Packer.AcceptableRatio = 0.95
	c.Output.Dir = "out"
	c.Metrics.Port = 9090
	return c
}

// Load reads and decodes a YAML config file at path, applying Default's
// values for any field the file leaves unset.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: failed to read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: failed to parse %s: %w", path, err)
	}
	if cfg.Reader.BatchSize <= 0 {
		cfg.Reader.BatchSize = Default().Reader.BatchSize
	}
	if cfg.Packer.Count <= 0 {
		cfg.Packer.Count = Default().Packer.Count
	}
	if cfg.Packer.AcceptableRatio <= 0 {
		cfg.Packer.AcceptableRatio = Default().Packer.AcceptableRatio
	}
	if cfg.Output.Dir == "" {
		cfg.Output.Dir = Default().Output.Dir
	}
	return cfg, nil
}
