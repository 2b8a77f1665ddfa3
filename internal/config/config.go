// Package config loads engine-wide tunables from an optional TOML file
// (SPEC_FULL.md §6.3), mirroring the teacher's struct-tag/decoder
// configuration loading style.
package config

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"dbkernel/internal/storage"
)

// Config holds the tunables read at startup. DataDir may also be supplied
// as the CLI's positional argument, which takes precedence over the file.
type Config struct {
	BlockSize int    `toml:"BlockSize"`
	DataDir   string `toml:"DataDir"`
	LogLevel  string `toml:"LogLevel"`
}

var validLogLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

// Default returns the built-in tunables used when no config file is given.
func Default() Config {
	return Config{BlockSize: storage.DefaultBlockSize, LogLevel: "info"}
}

// Load reads path as TOML into a copy of Default(). An empty path returns
// the defaults unchanged. Malformed TOML, unknown keys, or an unrecognized
// LogLevel all fail as ConfigError.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, &ConfigError{Path: path, Err: err}
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Config{}, &ConfigError{Path: path, Err: fmt.Errorf("unknown keys: %v", undecoded)}
	}
	if cfg.BlockSize <= 0 {
		return Config{}, &ConfigError{Path: path, Err: fmt.Errorf("BlockSize must be positive")}
	}
	if !validLogLevels[cfg.LogLevel] {
		return Config{}, &ConfigError{Path: path, Err: fmt.Errorf("unrecognized LogLevel %q", cfg.LogLevel)}
	}
	return cfg, nil
}
