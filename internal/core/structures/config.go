package structures

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// ToolConfig describes one building tool.
type ToolConfig struct {
	// Level is the hammer level required to use the tool.
	Level   int            `yaml:"level" json:"level"`
	Name    string         `yaml:"name" json:"name"`
	Cost    map[string]int `yaml:"cost" json:"cost"`
	Texture string         `yaml:"texture" json:"texture"`
}

// ToolConfigs maps tool ids ("wall", "gate") to their config.
type ToolConfigs struct {
	Tools map[string]ToolConfig `yaml:"tools" json:"tools"`
}

// LoadToolConfigs decodes and validates tool configs from r.
func LoadToolConfigs(r io.Reader) (ToolConfigs, error) {
	var cfg ToolConfigs
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return ToolConfigs{}, fmt.Errorf("decode tool configs: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return ToolConfigs{}, err
	}
	return cfg, nil
}

// LoadToolConfigsFile reads tool configs from path.
func LoadToolConfigsFile(path string) (ToolConfigs, error) {
	f, err := os.Open(path)
	if err != nil {
		return ToolConfigs{}, fmt.Errorf("open tool configs: %w", err)
	}
	defer f.Close()
	return LoadToolConfigs(f)
}

// Validate rejects negative costs and levels.
func (c ToolConfigs) Validate() error {
	for id, t := range c.Tools {
		if t.Level < 0 {
			return fmt.Errorf("tool %s: negative level %d", id, t.Level)
		}
		for res, n := range t.Cost {
			if n < 0 {
				return fmt.Errorf("tool %s: negative %s cost %d", id, res, n)
			}
		}
	}
	return nil
}
