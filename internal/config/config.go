// Package config loads homeplay settings from defaults, an optional YAML
// file and HOMEPLAY_* environment variables, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "HOMEPLAY"

// Config holds all homeplay configuration.
type Config struct {
	API     APIConfig     `mapstructure:"api"`
	Session SessionConfig `mapstructure:"session"`
	Log     LogConfig     `mapstructure:"log"`
	Server  ServerConfig  `mapstructure:"server"`
}

// APIConfig configures the homework API client.
type APIConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Token   string        `mapstructure:"token"`
	Timeout time.Duration `mapstructure:"timeout"` // Default: 15s
}

// SessionConfig tunes activity sessions.
type SessionConfig struct {
	// AdvanceDelay is how long answer feedback stays on screen before the
	// next activity. Default: 1.5s.
	AdvanceDelay time.Duration `mapstructure:"advance_delay"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `mapstructure:"level"` // debug, info, warn, error
	File  string `mapstructure:"file"`  // optional rotating JSON log
}

// ServerConfig configures the local development backend.
type ServerConfig struct {
	Addr        string   `mapstructure:"addr"`
	DBPath      string   `mapstructure:"db_path"` // empty means DefaultDBPath
	CORSOrigins []string `mapstructure:"cors_origins"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			BaseURL: "http://localhost:8080/api",
			Timeout: 15 * time.Second,
		},
		Session: SessionConfig{
			AdvanceDelay: 1500 * time.Millisecond,
		},
		Log: LogConfig{
			Level: "info",
		},
		Server: ServerConfig{
			Addr:        ":8080",
			CORSOrigins: []string{"*"},
		},
	}
}

// Load reads configuration. file may be empty, in which case only defaults
// and the environment apply.
func Load(file string) (Config, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", file, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// setDefaults registers every key so AutomaticEnv can find it during
// Unmarshal.
func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("api.base_url", d.API.BaseURL)
	v.SetDefault("api.token", d.API.Token)
	v.SetDefault("api.timeout", d.API.Timeout)
	v.SetDefault("session.advance_delay", d.Session.AdvanceDelay)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.file", d.Log.File)
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.db_path", d.Server.DBPath)
	v.SetDefault("server.cors_origins", d.Server.CORSOrigins)
}

var validLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

// Validate checks settings shared by every command.
func (c Config) Validate() error {
	var errs []error
	if c.Session.AdvanceDelay < 0 {
		errs = append(errs, errors.New("session.advance_delay must not be negative"))
	}
	if c.API.Timeout < 0 {
		errs = append(errs, errors.New("api.timeout must not be negative"))
	}
	if !validLevels[strings.ToLower(c.Log.Level)] {
		errs = append(errs, fmt.Errorf("unknown log level %q", c.Log.Level))
	}
	return errors.Join(errs...)
}

// ValidateClient additionally checks what the homework API client needs.
func (c Config) ValidateClient() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(c.API.BaseURL) == "" {
		return fmt.Errorf("%s_API_BASE_URL is required", EnvPrefix)
	}
	return nil
}

// DefaultDBPath resolves the dev backend database path:
// 1. $XDG_DATA_HOME/homeplay/homeplay.db
// 2. ~/.local/share/homeplay/homeplay.db
// The parent directory is created if missing.
func DefaultDBPath() (string, error) {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "homeplay", "homeplay.db")
	return p, os.MkdirAll(filepath.Dir(p), 0o755)
}

// DBPath returns the configured dev backend database path, falling back to
// DefaultDBPath.
func (c Config) DBPath() (string, error) {
	if c.Server.DBPath != "" {
		return c.Server.DBPath, os.MkdirAll(filepath.Dir(c.Server.DBPath), 0o755)
	}
	return DefaultDBPath()
}
