package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

// Config holds the server settings. Values come from the environment
// (optionally seeded by a .env file) and can be overridden by flags.
type Config struct {
	Addr           string
	ClientDir      string
	PublicURL      string
	JWTSecret      string
	LogLevel       string
	MaxLobbies     int
	TickRate       int
	Failsafe       time.Duration
	WinHold        time.Duration
	ReconnectGrace time.Duration
}

// LoadConfig reads .env, the environment and then args
func LoadConfig(args []string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn("could not read .env", "error", err)
	}

	cfg := &Config{
		Addr:           getEnv("ADDR", ":8080"),
		ClientDir:      getEnv("CLIENT_DIR", ""),
		PublicURL:      getEnv("PUBLIC_URL", ""),
		JWTSecret:      getEnv("JWT_SECRET", ""),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		MaxLobbies:     getEnvInt("MAX_LOBBIES", 100),
		TickRate:       getEnvInt("TICK_RATE", DefaultTickRate),
		Failsafe:       getEnvDuration("ROUND_FAILSAFE", DefaultFailsafe),
		WinHold:        getEnvDuration("ROUND_WIN_HOLD", DefaultWinHold),
		ReconnectGrace: getEnvDuration("RECONNECT_GRACE", 30*time.Second),
	}

	fs := flag.NewFlagSet("maze-tanks-server", flag.ContinueOnError)
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "HTTP listen address")
	fs.StringVar(&cfg.ClientDir, "client", cfg.ClientDir, "Path to client directory (default: ../client)")
	fs.StringVar(&cfg.PublicURL, "public-url", cfg.PublicURL, "Base URL encoded into lobby QR codes")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")
	fs.IntVar(&cfg.MaxLobbies, "max-lobbies", cfg.MaxLobbies, "Maximum concurrent lobbies")
	fs.IntVar(&cfg.TickRate, "tick-rate", cfg.TickRate, "Round ticks per second")
	fs.DurationVar(&cfg.Failsafe, "round-failsafe", cfg.Failsafe, "Force a new round after this long")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if cfg.ClientDir == "" {
		exe, _ := os.Executable()
		cfg.ClientDir = filepath.Join(filepath.Dir(exe), "..", "client")
		if _, err := os.Stat(cfg.ClientDir); os.IsNotExist(err) {
			cfg.ClientDir = "../client"
		}
	}
	if cfg.TickRate < 1 || cfg.TickRate > 240 {
		return nil, fmt.Errorf("tick rate must be between 1 and 240, got %d", cfg.TickRate)
	}
	if cfg.MaxLobbies < 1 {
		return nil, fmt.Errorf("max lobbies must be positive, got %d", cfg.MaxLobbies)
	}
	return cfg, nil
}

// RoundOptions derives the per-round settings
func (c *Config) RoundOptions() RoundOptions {
	return RoundOptions{
		TickRate: c.TickRate,
		Failsafe: c.Failsafe,
		WinHold:  c.WinHold,
	}
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := getEnv(key, "")
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Warn("ignoring malformed setting", "key", key, "value", v)
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := getEnv(key, "")
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Warn("ignoring malformed setting", "key", key, "value", v)
		return fallback
	}
	return d
}
