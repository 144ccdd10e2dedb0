/*
config.go - Application configuration

PURPOSE:
  Loads server configuration from an optional YAML file plus environment
  variables, with sane defaults so the server runs with zero config.

PRECEDENCE (highest wins):
  1. Environment variables (MICROFIN_PORT, MICROFIN_DB_PATH, MICROFIN_LOG_LEVEL)
  2. Config file values
  3. Built-in defaults

SEE ALSO:
  - cmd/server/main.go: Where this is loaded at startup
*/
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds everything the server needs at startup.
type Config struct {
	Port     int    `mapstructure:"port"`
	DBPath   string `mapstructure:"db_path"`
	LogLevel string `mapstructure:"log_level"`
}

// Load reads configuration from the given file path (optional - pass "" to
// use defaults and environment only).
func Load(configPath string) (*Config, error) {
	v := viper.New()

	v.SetDefault("port", 8080)
	v.SetDefault("db_path", "microfin.db")
	v.SetDefault("log_level", "info")

	v.SetEnvPrefix("MICROFIN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", configPath, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("invalid port %d", cfg.Port)
	}
	return &cfg, nil
}
