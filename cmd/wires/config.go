package main

import (
	"bytes"
	"io"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config is the optional YAML file given with --config. Flags win over it.
type Config struct {
	LogLevel   string            `yaml:"log_level"`
	Wires      []string          `yaml:"wires"`
	Overrides  map[string]uint16 `yaml:"overrides"`
	Report     string            `yaml:"report"`
	MetricsOut string            `yaml:"metrics_out"`
}

func loadConfig(path string) (Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrap(err, "reading config")
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, errors.Wrapf(err, "parsing config %s", path)
	}
	return cfg, nil
}
