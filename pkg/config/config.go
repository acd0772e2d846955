// Package config loads optional TOML configuration for the pipeline.
//
// A config file supplies defaults for the render command; flags given on
// the command line always win. All fields are optional.
package config

import (
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"voronoimap/pkg/errors"
	"voronoimap/pkg/pipeline"
)

// Config mirrors the TOML file layout.
//
//	title = "Global GDP (2024)"
//	sides = 360
//	timeout_seconds = 60
//	flags = true
//	formats = ["html", "png"]
//	palette = ["#3366cc", "#dc3912"]
//
//	[tessellator]
//	command = "node"
//	node_modules = "/usr/lib/node_modules"
type Config struct {
	Title          string   `toml:"title"`
	Sides          int      `toml:"sides"`
	TimeoutSeconds int      `toml:"timeout_seconds"`
	Flags          bool     `toml:"flags"`
	Formats        []string `toml:"formats"`
	Palette        []string `toml:"palette"`

	Tessellator struct {
		Command     string `toml:"command"`
		NodeModules string `toml:"node_modules"`
	} `toml:"tessellator"`
}

// Load reads and decodes a config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file not found: %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeParse, err, "read config %s", path)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeParse, err, "parse config %s", path)
	}
	return &cfg, nil
}

// Apply copies config values into options, filling only fields the caller
// left at their zero value so flags keep precedence over the file.
func (c *Config) Apply(opts *pipeline.Options) {
	if opts.Title == "" {
		opts.Title = c.Title
	}
	if opts.Sides == 0 {
		opts.Sides = c.Sides
	}
	if opts.Timeout == 0 && c.TimeoutSeconds > 0 {
		opts.Timeout = time.Duration(c.TimeoutSeconds) * time.Second
	}
	if !opts.Flags {
		opts.Flags = c.Flags
	}
	if len(opts.Formats) == 0 {
		opts.Formats = c.Formats
	}
	if len(opts.Palette) == 0 {
		opts.Palette = c.Palette
	}
	if opts.Command == "" {
		opts.Command = c.Tessellator.Command
	}
	if opts.NodeModules == "" {
		opts.NodeModules = c.Tessellator.NodeModules
	}
}
