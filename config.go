package titanium

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/oriumgames/titanium/reward/store"
)

// Config is the Titanium configuration, read from YAML with environment
// overrides.
type Config struct {
	TickRate time.Duration `yaml:"tick_rate" env:"TITANIUM_TICK_RATE" env-default:"50ms"`
	// Modules toggles modules ("example") and features ("example.no_sticks").
	Modules map[string]bool `yaml:"modules" env:"TITANIUM_MODULES"`
	// Admins are player names or XUIDs allowed to run admin commands.
	Admins  []string      `yaml:"admins" env:"TITANIUM_ADMINS" env-separator:","`
	Rewards RewardsConfig `yaml:"rewards"`
	Sync    SyncConfig    `yaml:"sync"`
	Log     LogConfig     `yaml:"log"`
}

type RewardsConfig struct {
	Backend  string        `yaml:"backend" env:"TITANIUM_REWARDS_BACKEND" env-default:"file"`
	Path     string        `yaml:"path" env:"TITANIUM_REWARDS_PATH" env-default:"world/titanium"`
	World    string        `yaml:"world" env:"TITANIUM_REWARDS_WORLD" env-default:"overworld"`
	Autosave time.Duration `yaml:"autosave" env:"TITANIUM_REWARDS_AUTOSAVE" env-default:"5m"`
	// Supporters are the UUIDs eligible for supporter rewards.
	Supporters []string `yaml:"supporters" env:"TITANIUM_REWARDS_SUPPORTERS" env-separator:","`
}

type SyncConfig struct {
	// Addr is where the websocket hub and metrics are served. Empty disables
	// both.
	Addr string `yaml:"addr" env:"TITANIUM_SYNC_ADDR" env-default:":8081"`
}

type LogConfig struct {
	Level string `yaml:"level" env:"TITANIUM_LOG_LEVEL" env-default:"info"`
}

// DefaultConfig returns the configuration used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		TickRate: 50 * time.Millisecond,
		Rewards: RewardsConfig{
			Backend:  store.KindFile,
			Path:     "world/titanium",
			World:    "overworld",
			Autosave: 5 * time.Minute,
		},
		Sync: SyncConfig{Addr: ":8081"},
		Log:  LogConfig{Level: "info"},
	}
}

// LoadConfig reads the configuration at path. If the file cannot be read,
// the environment alone is used.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		slog.Warn("titanium: could not read config file, using environment", "path", path, "err", err)
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return Config{}, fmt.Errorf("load config: %w", err)
		}
	}
	if cfg.TickRate <= 0 {
		return Config{}, fmt.Errorf("load config: tick_rate must be positive, got %s", cfg.TickRate)
	}
	return cfg, nil
}

// IsAdmin reports whether name or xuid is listed in Admins.
func (c Config) IsAdmin(name, xuid string) bool {
	for _, a := range c.Admins {
		if strings.EqualFold(a, name) || (xuid != "" && a == xuid) {
			return true
		}
	}
	return false
}

// SlogLevel returns the configured log level, defaulting to info.
func (c LogConfig) SlogLevel() slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.Level)); err != nil {
		return slog.LevelInfo
	}
	return l
}
