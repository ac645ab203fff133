package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the optional YAML config for imapdump. Everything in it has a
// usable zero value, so the tool works with no -config flag at all.
type Config struct {
	Parser ParserConfig `yaml:"parser"`
	Log    LogConfig    `yaml:"log"`
}

// ParserConfig mirrors wire.ParserOptions for the fields worth exposing to
// an operator inspecting a capture: the literal size cap and the SEARCH
// nesting depth bound.
type ParserConfig struct {
	MessageBodySizeLimit uint64 `yaml:"message_body_size_limit"`
	MaxDepth             int    `yaml:"max_depth"`
	LiteralMaxInMemory   int64  `yaml:"literal_max_in_memory"`
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Development bool `yaml:"development"`
}

// LoadConfig reads and parses a YAML config file. An empty path is not an
// error: it returns the zero Config, which applyDefaults then fills in.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}
	applyDefaults(cfg)
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Parser.MessageBodySizeLimit == 0 {
		cfg.Parser.MessageBodySizeLimit = 64 << 20
	}
	if cfg.Parser.MaxDepth == 0 {
		cfg.Parser.MaxDepth = 100
	}
}
