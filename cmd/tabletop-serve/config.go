package main

import (
	"bytes"
	"fmt"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config is the server configuration. It is read from a TOML file and then
// overridden by TABLETOP_* environment variables.
type Config struct {
	Addr         string   `toml:"addr"`
	AllowOrigins []string `toml:"allow_origins"`
	TickRate     int      `toml:"tick_rate"`
	Debug        bool     `toml:"debug"`

	Log   LogConfig   `toml:"log"`
	Scene SceneConfig `toml:"scene"`
	Hub   HubConfig   `toml:"hub"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `toml:"level"`  // debug, info, warn or error
	Format string `toml:"format"` // text or json
}

// SceneConfig sizes the demo board.
type SceneConfig struct {
	Width  float64 `toml:"width"`
	Height float64 `toml:"height"`
	Seed   uint64  `toml:"seed"`
}

// HubConfig tunes the WebSocket hub.
type HubConfig struct {
	SendBuffer  int `toml:"send_buffer"`
	PingSeconds int `toml:"ping_seconds"`
}

// maxTickRate keeps the tick period well above the timer resolution.
const maxTickRate = 1000

func defaultConfig() Config {
	return Config{
		Addr:     ":8080",
		TickRate: 60,
		Log:      LogConfig{Level: "info", Format: "text"},
		Scene:    SceneConfig{Width: 960, Height: 640, Seed: 1},
		Hub:      HubConfig{SendBuffer: 64, PingSeconds: 15},
	}
}

// loadConfig reads path, if not empty, over the defaults and applies the
// environment. Unknown keys in the file are an error.
func loadConfig(path string, getenv func(string) string) (Config, error) {
	cfg := defaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(getenv); err != nil {
		return cfg, err
	}
	if len(cfg.AllowOrigins) == 0 {
		port := cfg.Addr[strings.LastIndex(cfg.Addr, ":")+1:]
		cfg.AllowOrigins = []string{"http://localhost:" + port, "http://127.0.0.1:" + port}
	}
	return cfg, cfg.validate()
}

func (c *Config) applyEnv(getenv func(string) string) error {
	if v := getenv("TABLETOP_ADDR"); v != "" {
		c.Addr = v
	}
	if v := getenv("TABLETOP_ALLOW_ORIGINS"); v != "" {
		c.AllowOrigins = c.AllowOrigins[:0]
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				c.AllowOrigins = append(c.AllowOrigins, o)
			}
		}
	}
	if v := getenv("TABLETOP_TICK_RATE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("TABLETOP_TICK_RATE: %w", err)
		}
		c.TickRate = n
	}
	if v := getenv("TABLETOP_DEBUG"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("TABLETOP_DEBUG: %w", err)
		}
		c.Debug = b
	}
	if v := getenv("TABLETOP_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := getenv("TABLETOP_LOG_FORMAT"); v != "" {
		c.Log.Format = v
	}
	return nil
}

func (c *Config) validate() error {
	if c.TickRate <= 0 || c.TickRate > maxTickRate {
		return fmt.Errorf("tick_rate must be in [1, %d], got %d", maxTickRate, c.TickRate)
	}
	if !validSize(c.Scene.Width) || !validSize(c.Scene.Height) {
		return fmt.Errorf("scene size must be finite and not negative, got %gx%g", c.Scene.Width, c.Scene.Height)
	}
	if _, err := c.level(); err != nil {
		return err
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	return nil
}

func validSize(v float64) bool {
	return v >= 0 && !math.IsInf(v, 1)
}

func (c *Config) level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return l, nil
}

func (c *Config) pingInterval() time.Duration {
	return time.Duration(c.Hub.PingSeconds) * time.Second
}
