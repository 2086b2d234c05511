package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hailam/onitama/internal/config"
	"github.com/hailam/onitama/internal/engine"
	"github.com/hailam/onitama/internal/match"
	"github.com/hailam/onitama/internal/storage"
)

var (
	envFile     = flag.String("env", ".env", "optional environment file")
	playerA     = flag.String("a", "default", "first profile")
	playerB     = flag.String("b", "inverted", "second profile")
	pairs       = flag.Int("pairs", 10, "number of deals, each played with both colors")
	depth       = flag.Int("depth", 0, "per-move depth limit")
	moveTime    = flag.Duration("movetime", 100*time.Millisecond, "per-move time limit")
	maxPlies    = flag.Int("maxplies", match.DefaultMaxPlies, "ply cap scored as a draw")
	concurrency = flag.Int("concurrency", 0, "games in flight (0 = all cores)")
	pgnOut      = flag.String("pgn-out", "", "append games to this file")

	// Profile management
	save   = flag.String("save", "", "save a profile under this name and exit")
	scale  = flag.Float64("scale", 1, "table scale factor for -save")
	jitter = flag.Int("jitter", 0, "jitter for -save")
	kill   = flag.Bool("killers", false, "killer moves for -save")
)

// builtinProfiles are available without a database.
var builtinProfiles = map[string]float64{
	"default":  1,
	"inverted": -1,
	"flat":     0,
}

func main() {
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("onitama-match")
	}
}

// run holds everything with cleanup so deferred closes happen before a
// fatal exit in main.
func run() error {
	cfg, err := config.Load(*envFile)
	if err != nil {
		return fmt.Errorf("bad configuration: %w", err)
	}
	zerolog.SetGlobalLevel(cfg.LogLevel)

	store, err := storage.Open(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer store.Close()

	if *save != "" {
		p := storage.DefaultProfile()
		p.Name = *save
		p.Tables = engine.DefaultTables.Scale(*scale)
		p.Jitter = *jitter
		p.UseKillers = *kill
		if err := store.SaveProfile(p); err != nil {
			return fmt.Errorf("save profile: %w", err)
		}
		log.Info().Str("profile", p.Name).Msg("profile saved")
		return nil
	}

	base := cfg.EngineOptions()
	a, err := resolvePlayer(store, *playerA, base)
	if err != nil {
		return fmt.Errorf("first profile %q: %w", *playerA, err)
	}
	b, err := resolvePlayer(store, *playerB, base)
	if err != nil {
		return fmt.Errorf("second profile %q: %w", *playerB, err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	res, err := match.Run(ctx, match.Config{
		A:           a,
		B:           b,
		Pairs:       *pairs,
		Depth:       *depth,
		MoveTime:    *moveTime,
		MaxPlies:    *maxPlies,
		Concurrency: *concurrency,
		Seed:        cfg.Seed,
		Store:       store,
	})
	if err != nil {
		return fmt.Errorf("match failed: %w", err)
	}

	if *pgnOut != "" {
		f, err := os.OpenFile(*pgnOut, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("open PGN output: %w", err)
		}
		defer f.Close()
		event := fmt.Sprintf("%s vs %s", a.Name, b.Name)
		if err := match.WritePGN(f, res.Games, event, time.Now()); err != nil {
			log.Error().Err(err).Msg("writing PGN")
		}
	}

	fmt.Printf("%s vs %s: +%d -%d =%d  score %.1f%%  elo %+.0f\n",
		a.Name, b.Name, res.WinsA, res.WinsB, res.Draws, 100*res.Score(), res.Elo())

	if st, err := store.LoadStanding(a.Name, b.Name); err == nil {
		fmt.Printf("all runs: +%d -%d =%d over %d games (%.1f%%)\n",
			st.WinsA, st.WinsB, st.Draws, st.Games, st.ScoreA())
	}
	return nil
}

// resolvePlayer finds a stored profile, falling back to the built-in ones.
func resolvePlayer(store *storage.Storage, name string, base engine.Options) (match.Player, error) {
	p, err := store.LoadProfile(name)
	if errors.Is(err, storage.ErrNotFound) {
		k, ok := builtinProfiles[name]
		if !ok {
			return match.Player{}, err
		}
		p = storage.DefaultProfile()
		p.Name = name
		p.Tables = engine.DefaultTables.Scale(k)
		p.Jitter = base.Jitter
		p.UseKillers = base.UseKillers
		p.UseOrderingCache = base.UseOrderingCache
	} else if err != nil {
		return match.Player{}, err
	}
	return match.Player{Name: p.Name, Options: p.Options(base)}, nil
}
