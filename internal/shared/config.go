package shared

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

type LogConfig struct {
	Level       string         `toml:"level"`  // debug, info, warn, error
	Format      string         `toml:"format"` // console or json
	Outputs     []string       `toml:"outputs"`
	Development bool           `toml:"development"`
	Rotation    RotationConfig `toml:"rotation"`
}

type RotationConfig struct {
	Enable     bool `toml:"enable"`
	MaxSizeMB  int  `toml:"max_size_mb"`
	MaxBackups int  `toml:"max_backups"`
	MaxAgeDays int  `toml:"max_age_days"`
	Compress   bool `toml:"compress"`
}

type ServerConfig struct {
	Addr            string    `toml:"addr"`
	FordTable       string    `toml:"ford_table"`
	DBPath          string    `toml:"db_path"` // empty keeps history in memory
	APIKey          string    `toml:"api_key"` // empty disables auth
	HistoryLimit    int       `toml:"history_limit"`
	MaxBodyBytes    int64     `toml:"max_body_bytes"`
	ShutdownTimeout duration  `toml:"shutdown_timeout"`
	Log             LogConfig `toml:"log"`
}

type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// LoadServerConfig reads the optional TOML file at path, then applies RC_*
// environment overrides and defaults. An empty path skips the file.
func LoadServerConfig(path string) (*ServerConfig, error) {
	var c ServerConfig
	if path != "" {
		if _, err := toml.DecodeFile(path, &c); err != nil {
			return nil, fmt.Errorf("failed to decode config %s: %w", path, err)
		}
	}
	if err := c.applyEnv(os.Getenv); err != nil {
		return nil, err
	}
	c.applyDefaults()
	return &c, nil
}

func (c *ServerConfig) applyEnv(getenv func(string) string) error {
	if v := getenv("RC_ADDR"); v != "" {
		c.Addr = v
	}
	if v := getenv("RC_FORD_TABLE"); v != "" {
		c.FordTable = v
	}
	if v := getenv("RC_DB_PATH"); v != "" {
		c.DBPath = v
	}
	if v := getenv("RC_API_KEY"); v != "" {
		c.APIKey = v
	}
	if v := getenv("RC_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := getenv("RC_LOG_FORMAT"); v != "" {
		c.Log.Format = v
	}
	if v := getenv("RC_HISTORY_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid RC_HISTORY_LIMIT %q: %w", v, err)
		}
		c.HistoryLimit = n
	}
	return nil
}

func (c *ServerConfig) applyDefaults() {
	if c.Addr == "" {
		c.Addr = ":8085"
	}
	if c.FordTable == "" {
		c.FordTable = "./data/radiocodes.bin"
	}
	if c.HistoryLimit <= 0 {
		c.HistoryLimit = 1000
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = 64 << 10
	}
	if c.ShutdownTimeout.Duration <= 0 {
		c.ShutdownTimeout.Duration = 10 * time.Second
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
	if len(c.Log.Outputs) == 0 {
		c.Log.Outputs = []string{"stderr"}
	}
}
