// internal/config/config.go
//
// Runtime configuration for the Hanoi server and terminal client.
//
// Sources, lowest precedence first:
//   1. built-in defaults (levels 3–8, default level 4, port 5175, ./data/hanoi.db)
//   2. an optional YAML file (--config / HANOI_CONFIG)
//   3. environment variables, including anything godotenv loaded from .env
//
// Environment variables:
//   PORT, LOG_LEVEL, DB_PATH, RANKING_DSN, JWT_SECRET, JWT_EXPIRES_DAYS,
//   COOKIE_NAME, CLIENT_ORIGIN, NODE_ENV
//
// The difficulty set is the only game-facing setting. Level strings coming
// from clients are parsed here (ParseLevel) so that the puzzle package never
// sees a malformed disk count.

package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v2"
)

// devJWTSecret is the built-in token secret. Production must replace it.
const devJWTSecret = "dev_secret_change_me"

var (
	ErrInvalidLevel  = errors.New("invalid level")
	ErrInvalidConfig = errors.New("invalid config")
)

// Game holds the gameplay tunables.
type Game struct {
	Levels       []int `yaml:"levels"`       // selectable disk counts
	DefaultLevel int   `yaml:"defaultLevel"` // preselected disk count
	FlashMs      int   `yaml:"flashMs"`      // illegal-move advisory lifetime
	WinDelayMs   int   `yaml:"winDelayMs"`   // pause before the win screen
	RankingLimit int   `yaml:"rankingLimit"` // entries returned per ranking query
}

// Config is the full process configuration.
type Config struct {
	Port           string `yaml:"port"`
	LogLevel       string `yaml:"logLevel"`
	DBPath         string `yaml:"dbPath"`
	RankingDSN     string `yaml:"rankingDsn"`
	JWTSecret      string `yaml:"-"`
	JWTExpiresDays int    `yaml:"jwtExpiresDays"`
	CookieName     string `yaml:"cookieName"`
	ClientOrigin   string `yaml:"clientOrigin"`
	Production     bool   `yaml:"-"`
	Game           Game   `yaml:"game"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Port:           "5175",
		LogLevel:       "info",
		DBPath:         "./data/hanoi.db",
		JWTSecret:      devJWTSecret,
		JWTExpiresDays: 14,
		CookieName:     "hanoi_token",
		ClientOrigin:   "http://localhost:5175",
		Game: Game{
			Levels:       []int{3, 4, 5, 6, 7, 8},
			DefaultLevel: 4,
			FlashMs:      2000,
			WinDelayMs:   300,
			RankingLimit: 10,
		},
	}
}

// Load builds a Config from defaults, the YAML file at path (skipped when
// path is empty) and the environment.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	if cfg.Production && (cfg.JWTSecret == "" || cfg.JWTSecret == devJWTSecret) {
		return cfg, fmt.Errorf("%w: JWT_SECRET must be set in production", ErrInvalidConfig)
	}
	if err := cfg.Game.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Port = getEnv("PORT", c.Port)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.DBPath = getEnv("DB_PATH", c.DBPath)
	c.RankingDSN = getEnv("RANKING_DSN", c.RankingDSN)
	c.JWTSecret = getEnv("JWT_SECRET", c.JWTSecret)
	c.CookieName = getEnv("COOKIE_NAME", c.CookieName)
	c.ClientOrigin = getEnv("CLIENT_ORIGIN", c.ClientOrigin)
	if v := os.Getenv("JWT_EXPIRES_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.JWTExpiresDays = n
		}
	}
	c.Production = os.Getenv("NODE_ENV") == "production"
}

// Validate checks that the level set is usable.
func (g Game) Validate() error {
	if len(g.Levels) == 0 {
		return fmt.Errorf("%w: no levels configured", ErrInvalidConfig)
	}
	for _, n := range g.Levels {
		if n < 1 {
			return fmt.Errorf("%w: level %d is not positive", ErrInvalidConfig, n)
		}
	}
	if !g.Allowed(g.DefaultLevel) {
		return fmt.Errorf("%w: default level %d not in %v", ErrInvalidConfig, g.DefaultLevel, g.Levels)
	}
	if g.RankingLimit < 1 {
		return fmt.Errorf("%w: rankingLimit must be positive", ErrInvalidConfig)
	}
	return nil
}

// Allowed reports whether n is one of the configured levels.
func (g Game) Allowed(n int) bool {
	return slices.Contains(g.Levels, n)
}

// ParseLevel turns a client-supplied level into a disk count. An empty
// string selects the default level.
func (g Game) ParseLevel(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return g.DefaultLevel, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", ErrInvalidLevel, raw)
	}
	return g.CheckLevel(n)
}

// CheckLevel validates an already-numeric level.
func (g Game) CheckLevel(n int) (int, error) {
	if n < 1 {
		return 0, fmt.Errorf("%w: %d is not positive", ErrInvalidLevel, n)
	}
	if !g.Allowed(n) {
		return 0, fmt.Errorf("%w: %d not in %v", ErrInvalidLevel, n, g.Levels)
	}
	return n, nil
}

// Next returns the level after cur in the configured order, wrapping
// around. Prev is its mirror. Both fall back to the default for unknown cur.
func (g Game) Next(cur int) int { return g.step(cur, 1) }
func (g Game) Prev(cur int) int { return g.step(cur, -1) }

func (g Game) step(cur, d int) int {
	i := slices.Index(g.Levels, cur)
	if i < 0 {
		return g.DefaultLevel
	}
	n := len(g.Levels)
	return g.Levels[((i+d)%n+n)%n]
}

func (g Game) FlashDuration() time.Duration { return time.Duration(g.FlashMs) * time.Millisecond }
func (g Game) WinDelay() time.Duration      { return time.Duration(g.WinDelayMs) * time.Millisecond }

// getEnv returns the value of k or def if unset/empty.
func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
