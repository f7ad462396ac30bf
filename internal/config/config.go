// Package config loads ctxstrat configuration: built-in defaults, an
// optional yaml file under the workspace's strategy directory, then
// CTXSTRAT_* environment overrides, in that precedence order. Command
// line flags are applied on top by the caller.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Defaults mirror the orchestrator's on-disk layout.
const (
	DefaultLookbackDays = 7
	DefaultTTLHours     = 168

	DefaultEventsDir   = ".orchestrator/events"
	DefaultStrategyDir = ".brewva/strategy"

	configFileName    = "config.yaml"
	reportsDirName    = "reports"
	overridesFileName = "context-strategy.json"
)

// Config is the recognized option surface.
type Config struct {
	// LookbackDays is the trailing counting window. Floor 1.
	LookbackDays int `yaml:"lookback_days"`
	// TTLHours bounds how long emitted overrides stay live. Floor 1.
	TTLHours int `yaml:"ttl_hours"`
	// EventsDir is the session log directory, relative to the workspace
	// unless absolute.
	EventsDir string `yaml:"events_dir"`
	// StrategyDir holds reports and the overrides file, relative to the
	// workspace unless absolute.
	StrategyDir string `yaml:"strategy_dir"`
}

// Load reads the workspace configuration. A missing config file is fine;
// a malformed one is an operator error.
func Load(workspace string) (*Config, error) {
	cfg := &Config{
		LookbackDays: DefaultLookbackDays,
		TTLHours:     DefaultTTLHours,
		EventsDir:    DefaultEventsDir,
		StrategyDir:  DefaultStrategyDir,
	}

	path := filepath.Join(workspace, DefaultStrategyDir, configFileName)
	raw, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	cfg.applyEnvOverrides()
	cfg.clamp()
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v, ok := envInt("CTXSTRAT_LOOKBACK_DAYS"); ok {
		c.LookbackDays = v
	}
	if v, ok := envInt("CTXSTRAT_TTL_HOURS"); ok {
		c.TTLHours = v
	}
	if v := os.Getenv("CTXSTRAT_EVENTS_DIR"); v != "" {
		c.EventsDir = v
	}
	if v := os.Getenv("CTXSTRAT_STRATEGY_DIR"); v != "" {
		c.StrategyDir = v
	}
}

// clamp enforces the option floors. Zero or negative windows and TTLs
// would make every run a no-op, so they snap to 1.
func (c *Config) clamp() {
	if c.LookbackDays < 1 {
		c.LookbackDays = 1
	}
	if c.TTLHours < 1 {
		c.TTLHours = 1
	}
	if c.EventsDir == "" {
		c.EventsDir = DefaultEventsDir
	}
	if c.StrategyDir == "" {
		c.StrategyDir = DefaultStrategyDir
	}
}

func envInt(key string) (int, bool) {
	raw := os.Getenv(key)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

// EventsPath resolves the events directory against the workspace.
func (c *Config) EventsPath(workspace string) string {
	return resolve(workspace, c.EventsDir)
}

// ReportsDir resolves the observer report directory.
func (c *Config) ReportsDir(workspace string) string {
	return filepath.Join(resolve(workspace, c.StrategyDir), reportsDirName)
}

// OverridesPath resolves the tuner's output file.
func (c *Config) OverridesPath(workspace string) string {
	return filepath.Join(resolve(workspace, c.StrategyDir), overridesFileName)
}

func resolve(workspace, dir string) string {
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(workspace, dir)
}
