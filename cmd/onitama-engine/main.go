package main

import (
	"flag"
	"fmt"
	"os"
	"runtime/pprof"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hailam/onitama/internal/config"
	"github.com/hailam/onitama/internal/engine"
	"github.com/hailam/onitama/internal/protocol"
	"github.com/hailam/onitama/internal/storage"
)

var (
	cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")
	envFile    = flag.String("env", ".env", "optional environment file")
)

func main() {
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("onitama-engine")
	}
}

func run() error {
	cfg, err := config.Load(*envFile)
	if err != nil {
		return fmt.Errorf("bad configuration: %w", err)
	}
	zerolog.SetGlobalLevel(cfg.LogLevel)

	// Start CPU profiling if requested (via flag or environment variable)
	profilePath := *cpuprofile
	if profilePath == "" {
		profilePath = os.Getenv("CPUPROFILE")
	}
	if profilePath != "" {
		f, err := os.Create(profilePath)
		if err != nil {
			return fmt.Errorf("create CPU profile: %w", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			return fmt.Errorf("start CPU profile: %w", err)
		}
		defer pprof.StopCPUProfile()
		log.Info().Str("path", profilePath).Msg("CPU profiling enabled")
	}

	opts := cfg.EngineOptions()
	if cfg.Profile != "" {
		opts, err = loadProfile(cfg, opts)
		if err != nil {
			return fmt.Errorf("load profile %q: %w", cfg.Profile, err)
		}
	}

	eng := engine.NewEngine(opts)

	p := protocol.New(eng, os.Stdin, os.Stdout)
	if err := p.Run(); err != nil {
		log.Error().Err(err).Msg("reading commands")
	}
	return nil
}

// loadProfile applies a stored profile on top of the configured options.
func loadProfile(cfg config.Config, opts engine.Options) (engine.Options, error) {
	store, err := storage.Open(cfg.DataDir)
	if err != nil {
		return opts, err
	}
	defer store.Close()

	profile, err := store.LoadProfile(cfg.Profile)
	if err != nil {
		return opts, err
	}
	log.Info().Str("profile", profile.Name).Msg("profile loaded")
	return profile.Options(opts), nil
}
