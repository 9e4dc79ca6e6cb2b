// Package config holds the mtuprobe CLI configuration and its file and
// environment layers.
package config

import (
	"fmt"
	"strconv"

	"github.com/hervehildenbrand/mtuprobe/internal/mtu"
	"github.com/hervehildenbrand/mtuprobe/internal/ping"
)

// Flag names shared by the CLI and the file/env layers.
const (
	FlagPingBin = "ping-bin"
	FlagMode    = "mode"
	FlagMaxSize = "max-size"
	FlagCount   = "count"
	FlagQuiet   = "quiet"
	FlagNoColor = "no-color"
	FlagTUI     = "tui"
	FlagOutput  = "output"
	FlagFormat  = "format"
)

// Config holds CLI configuration for mtuprobe.
type Config struct {
	Address string

	PingBin string
	Mode    string
	MaxSize int
	Count   int

	Quiet   bool
	NoColor bool
	TUI     bool
	Verbose bool
	DryRun  bool

	Output string
	Format string
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		PingBin: ping.DefaultBinary,
		Mode:    string(ping.ModeAuto),
		MaxSize: mtu.DefaultMaxSize,
		Count:   mtu.DefaultCount,
	}
}

// Validate checks the configuration for errors and normalizes the mode.
func (c *Config) Validate() error {
	mode, err := ping.ParseMode(c.Mode)
	if err != nil {
		return err
	}
	c.Mode = string(mode)

	if c.MaxSize <= 0 {
		return fmt.Errorf("max-size must be a positive integer, got %d", c.MaxSize)
	}
	if c.Count <= 0 {
		return fmt.Errorf("count must be a positive integer, got %d", c.Count)
	}
	if c.PingBin == "" {
		c.PingBin = ping.DefaultBinary
	}
	return nil
}

// Discovery converts the CLI configuration to a discovery configuration.
func (c *Config) Discovery() mtu.Config {
	return mtu.Config{
		Address: c.Address,
		Count:   c.Count,
		MaxSize: c.MaxSize,
		Mode:    c.Mode,
	}
}

// configSetter applies values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setInt sets an int value from a pointer if not nil and flag not changed.
// Zero and negative values are kept so that Validate rejects them.
func (s *configSetter) setInt(flag string, value *int, dst *int) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setIntFromString parses a string to int and sets the destination.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = i
	return nil
}

// setBoolFromString parses a string to bool and sets the destination.
// Accepts the forms understood by strconv.ParseBool.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = b
	return nil
}
