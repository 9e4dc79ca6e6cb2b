package config

import "os"

// EnvPrefix prefixes every environment variable read by ApplyEnvConfig.
const EnvPrefix = "MTUPROBE_"

// ApplyEnvConfig applies configuration from environment variables (MTUPROBE_*).
// It respects flags that have been explicitly set (changed map).
// Returns error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString(FlagPingBin, os.Getenv(EnvPrefix+"PING_BIN"), &cfg.PingBin)
	s.setString(FlagMode, os.Getenv(EnvPrefix+"MODE"), &cfg.Mode)

	if err := s.setIntFromString(FlagMaxSize, os.Getenv(EnvPrefix+"MAX_SIZE"), &cfg.MaxSize); err != nil {
		return err
	}
	if err := s.setIntFromString(FlagCount, os.Getenv(EnvPrefix+"COUNT"), &cfg.Count); err != nil {
		return err
	}

	if err := s.setBoolFromString(FlagQuiet, os.Getenv(EnvPrefix+"QUIET"), &cfg.Quiet); err != nil {
		return err
	}
	if err := s.setBoolFromString(FlagNoColor, os.Getenv(EnvPrefix+"NO_COLOR"), &cfg.NoColor); err != nil {
		return err
	}

	return nil
}
