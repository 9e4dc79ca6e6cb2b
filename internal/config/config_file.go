package config

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config for TOML files. Pointers distinguish "absent"
// from an explicit zero or false.
type FileConfig struct {
	PingBin string `toml:"ping_bin"`
	Mode    string `toml:"mode"`
	MaxSize *int   `toml:"max_size"`
	Count   *int   `toml:"count"`
	Quiet   *bool  `toml:"quiet"`
	NoColor *bool  `toml:"no_color"`
	TUI     *bool  `toml:"tui"`
	Format  string `toml:"format"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns ~/.mtuprobe/config.toml, or "" if the home
// directory is unknown.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".mtuprobe", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) {
	s := newConfigSetter(changed)

	s.setString(FlagPingBin, fc.PingBin, &cfg.PingBin)
	s.setString(FlagMode, fc.Mode, &cfg.Mode)
	s.setString(FlagFormat, fc.Format, &cfg.Format)

	s.setInt(FlagMaxSize, fc.MaxSize, &cfg.MaxSize)
	s.setInt(FlagCount, fc.Count, &cfg.Count)

	s.setBool(FlagQuiet, fc.Quiet, &cfg.Quiet)
	s.setBool(FlagNoColor, fc.NoColor, &cfg.NoColor)
	s.setBool(FlagTUI, fc.TUI, &cfg.TUI)
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
