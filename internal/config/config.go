// Package config loads engine settings from the environment and an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/hailam/onitama/internal/engine"
)

// Environment variable names.
const (
	EnvHashMB        = "ONITAMA_HASH_MB"
	EnvMaxDepth      = "ONITAMA_MAX_DEPTH"
	EnvJitter        = "ONITAMA_JITTER"
	EnvKillers       = "ONITAMA_KILLERS"
	EnvOrderingCache = "ONITAMA_ORDERING_CACHE"
	EnvSeed          = "ONITAMA_SEED"
	EnvLogLevel      = "ONITAMA_LOG_LEVEL"
	EnvDataDir       = "ONITAMA_DATA_DIR"
	EnvProfile       = "ONITAMA_PROFILE"
)

// Config holds process-wide settings.
type Config struct {
	HashMB           int
	MaxDepth         int
	Jitter           int
	UseKillers       bool
	UseOrderingCache bool
	Seed             uint64
	LogLevel         zerolog.Level
	DataDir          string // empty = platform data dir
	Profile          string // stored profile to load, empty = none
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		HashMB:           16,
		MaxDepth:         engine.MaxDepth,
		UseOrderingCache: true,
		LogLevel:         zerolog.InfoLevel,
	}
}

// Load reads envFile (if it exists) into the environment without
// overriding variables already set, then builds a Config.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	}
	return FromEnv()
}

// FromEnv builds a Config from the process environment.
func FromEnv() (Config, error) {
	cfg := Default()
	var err error

	if cfg.HashMB, err = intVar(EnvHashMB, cfg.HashMB, 1); err != nil {
		return cfg, err
	}
	if cfg.MaxDepth, err = intVar(EnvMaxDepth, cfg.MaxDepth, 1); err != nil {
		return cfg, err
	}
	if cfg.MaxDepth > engine.MaxDepth {
		cfg.MaxDepth = engine.MaxDepth
	}
	if cfg.Jitter, err = intVar(EnvJitter, cfg.Jitter, 0); err != nil {
		return cfg, err
	}
	if cfg.UseKillers, err = boolVar(EnvKillers, cfg.UseKillers); err != nil {
		return cfg, err
	}
	if cfg.UseOrderingCache, err = boolVar(EnvOrderingCache, cfg.UseOrderingCache); err != nil {
		return cfg, err
	}

	if v, ok := lookup(EnvSeed); ok {
		if cfg.Seed, err = strconv.ParseUint(v, 10, 64); err != nil {
			return cfg, fmt.Errorf("%s: %w", EnvSeed, err)
		}
	}
	if v, ok := lookup(EnvLogLevel); ok {
		if cfg.LogLevel, err = zerolog.ParseLevel(strings.ToLower(v)); err != nil {
			return cfg, fmt.Errorf("%s: %w", EnvLogLevel, err)
		}
	}
	cfg.DataDir, _ = lookup(EnvDataDir)
	cfg.Profile, _ = lookup(EnvProfile)

	return cfg, nil
}

// EngineOptions returns engine options for this configuration.
func (c Config) EngineOptions() engine.Options {
	opts := engine.DefaultOptions()
	opts.HashMB = c.HashMB
	opts.Jitter = c.Jitter
	opts.UseKillers = c.UseKillers
	opts.UseOrderingCache = c.UseOrderingCache
	opts.MaxDepth = c.MaxDepth
	opts.Seed = c.Seed
	return opts
}

func lookup(name string) (string, bool) {
	v, ok := os.LookupEnv(name)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func intVar(name string, def, min int) (int, error) {
	v, ok := lookup(name)
	if !ok {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def, fmt.Errorf("%s: %w", name, err)
	}
	if n < min {
		return def, fmt.Errorf("%s: %d is below %d", name, n, min)
	}
	return n, nil
}

func boolVar(name string, def bool) (bool, error) {
	v, ok := lookup(name)
	if !ok {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def, fmt.Errorf("%s: %w", name, err)
	}
	return b, nil
}
