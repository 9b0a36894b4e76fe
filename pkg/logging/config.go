package logging

import (
	"os"
	"strconv"
)

// Env names the environment variables that override Config. Empty names are
// skipped.
type Env struct {
	Level  string
	Format string
	Source string
}

type Config struct {
	Level  Level  `toml:"level"`
	Format Format `toml:"format"`
	// Source adds the calling file and line to every record.
	Source bool `toml:"add_source"`
}

// Finalize applies defaults, then env overrides, then validates.
func (c *Config) Finalize(env *Env) error {
	if c.Level == "" {
		c.Level = LevelInfo
	}
	if c.Format == "" {
		c.Format = FormatText
	}
	if env != nil {
		c.loadEnv(env)
	}
	if err := c.Level.Validate(); err != nil {
		return err
	}
	return c.Format.Validate()
}

// Merge copies the overlay's non-empty fields. Source can only be switched on.
func (c *Config) Merge(overlay *Config) {
	if overlay.Level != "" {
		c.Level = overlay.Level
	}
	if overlay.Format != "" {
		c.Format = overlay.Format
	}
	c.Source = c.Source || overlay.Source
}

func (c *Config) loadEnv(env *Env) {
	if v := lookup(env.Level); v != "" {
		if l, err := ParseLevel(v); err == nil {
			c.Level = l
		} else {
			c.Level = Level(v)
		}
	}
	if v := lookup(env.Format); v != "" {
		c.Format = Format(v)
	}
	if v := lookup(env.Source); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Source = b
		}
	}
}

func lookup(key string) string {
	if key == "" {
		return ""
	}
	return os.Getenv(key)
}
