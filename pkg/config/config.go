// Package config loads toyblock settings from a YAML file and TOYBLOCK_*
// environment variables. Command line flags are applied on top by the CLI.
package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"

	"toyblock/pkg/modes"

	"github.com/spf13/viper"
)

var ErrInvalid = errors.New("invalid configuration")

type Config struct {
	Rounds        int    `mapstructure:"rounds"` // zero means the cipher default
	Mode          string `mapstructure:"mode"`
	IV            uint64 `mapstructure:"iv"`
	KeepPrefix    int    `mapstructure:"keep_prefix"`
	Compress      bool   `mapstructure:"compress"`
	CompressLevel string `mapstructure:"compress_level"`
	Workers       int    `mapstructure:"workers"`
	APIListenAddr string `mapstructure:"api_listen_address"`
	LogDB         string `mapstructure:"log_db"` // empty logs to the console only
	Debug         bool   `mapstructure:"debug"`
	ConfigFile    string `mapstructure:"config_file"`
}

func DefaultConfig() *Config {
	return &Config{
		Mode:          string(modes.ModeECB),
		CompressLevel: "default",
		Workers:       runtime.NumCPU(),
		APIListenAddr: ":7780",
		ConfigFile:    "toyblock.yaml",
	}
}

func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("rounds", cfg.Rounds)
	v.SetDefault("mode", cfg.Mode)
	v.SetDefault("iv", cfg.IV)
	v.SetDefault("keep_prefix", cfg.KeepPrefix)
	v.SetDefault("compress", cfg.Compress)
	v.SetDefault("compress_level", cfg.CompressLevel)
	v.SetDefault("workers", cfg.Workers)
	v.SetDefault("api_listen_address", cfg.APIListenAddr)
	v.SetDefault("log_db", cfg.LogDB)
	v.SetDefault("debug", cfg.Debug)
	v.SetDefault("config_file", cfg.ConfigFile)
}

// Load reads path if given, otherwise looks for toyblock.yaml in the working
// directory, /etc/toyblock/ and $HOME/.toyblock. Only an explicit path must
// exist. Environment variables override the file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	v := viper.New()
	setDefaults(v, cfg)

	v.SetConfigType("yaml")
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("toyblock")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/toyblock/")
		v.AddConfigPath("$HOME/.toyblock")
	}
	v.SetEnvPrefix("TOYBLOCK")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if used := v.ConfigFileUsed(); used != "" {
		cfg.ConfigFile = used
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Rounds < 0 {
		return fmt.Errorf("rounds %d: %w", c.Rounds, ErrInvalid)
	}
	if _, err := modes.ParseMode(c.Mode); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if c.KeepPrefix < 0 {
		return fmt.Errorf("keep_prefix %d: %w", c.KeepPrefix, ErrInvalid)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers %d: %w", c.Workers, ErrInvalid)
	}
	return nil
}

// RoundsFor returns the configured round count or the fallback when unset.
func (c *Config) RoundsFor(fallback int) int {
	if c.Rounds == 0 {
		return fallback
	}
	return c.Rounds
}
