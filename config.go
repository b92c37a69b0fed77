package orrery

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	DefaultMinUpdateTime = 10 * time.Millisecond
	DefaultMaxDebtSteps  = 100
)

// Config is the top-level engine configuration, loaded from TOML.
type Config struct {
	Loop      LoopConfig      `toml:"loop"`
	Collision CollisionConfig `toml:"collision"`
	Logging   LoggingConfig   `toml:"logging"`
	Window    WindowConfig    `toml:"window"`
}

// LoopConfig controls the fixed-step scheduler.
type LoopConfig struct {
	MinUpdateTime time.Duration `toml:"min_update_time"` // fixed step length in wall time
	TimeScale     float64       `toml:"time_scale"`      // simulated seconds per wall second
	MaxDebtSteps  int           `toml:"max_debt_steps"`  // debt beyond this many steps is dropped
	Debug         bool          `toml:"debug"`
}

// CollisionConfig controls the broad phase.
type CollisionConfig struct {
	Capacity int  `toml:"capacity"`  // colliders per quadtree node before it splits
	MaxDepth int  `toml:"max_depth"` // subdivision limit
	Bounds   Rect `toml:"bounds"`    // root region; empty fits the colliders each pass
}

// LoggingConfig selects the zap logger flavour.
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

// WindowConfig sizes the demo window.
type WindowConfig struct {
	Title  string `toml:"title"`
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
}

// DefaultConfig returns the configuration used when no file overrides it.
func DefaultConfig() *Config {
	return &Config{
		Loop: LoopConfig{
			MinUpdateTime: DefaultMinUpdateTime,
			TimeScale:     1.0,
			MaxDebtSteps:  DefaultMaxDebtSteps,
		},
		Collision: CollisionConfig{
			Capacity: 4,
			MaxDepth: 8,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Window: WindowConfig{
			Title:  "orrery",
			Width:  1280,
			Height: 720,
		},
	}
}

// LoadConfig reads a TOML file over the defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// ParseConfig decodes TOML over the defaults and validates the result.
func ParseConfig(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values the engine cannot run with.
func (c *Config) Validate() error {
	if c.Loop.MinUpdateTime <= 0 {
		return fmt.Errorf("loop.min_update_time must be positive, got %v", c.Loop.MinUpdateTime)
	}
	if c.Loop.TimeScale <= 0 {
		return fmt.Errorf("loop.time_scale must be positive, got %v", c.Loop.TimeScale)
	}
	if c.Loop.MaxDebtSteps <= 0 {
		return fmt.Errorf("loop.max_debt_steps must be positive, got %d", c.Loop.MaxDebtSteps)
	}
	if c.Collision.Capacity <= 0 {
		return fmt.Errorf("collision.capacity must be positive, got %d", c.Collision.Capacity)
	}
	if c.Collision.MaxDepth < 0 {
		return fmt.Errorf("collision.max_depth must not be negative, got %d", c.Collision.MaxDepth)
	}
	if c.Collision.Bounds.Width < 0 || c.Collision.Bounds.Height < 0 {
		return fmt.Errorf("collision.bounds must not have negative size")
	}
	return nil
}
