// Package config provides configuration loading for the ethtx CLI.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds the CLI's defaults. The core ethtx package never reads this;
// it exists purely to parameterize cmd/ethtx's subcommands.
type Config struct {
	ChainID      uint64 `mapstructure:"chain_id"`
	OutputFormat string `mapstructure:"output_format"` // loaded but not read: the CLI always prints JSON
	LogLevel     string `mapstructure:"log_level"`
}

// Load reads configuration from an optional config file, environment
// variables prefixed ETHTX_, and falls back to the defaults below.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("ethtx")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/ethtx")

	v.SetEnvPrefix("ETHTX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("chain_id", 1)
	v.SetDefault("output_format", "json")
	v.SetDefault("log_level", "info")
}
