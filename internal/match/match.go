// Package match plays engine profiles against each other.
package match

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"lukechampine.com/frand"

	"github.com/hailam/onitama/internal/board"
	"github.com/hailam/onitama/internal/engine"
	"github.com/hailam/onitama/internal/storage"
)

// DefaultMaxPlies is the ply cap after which a game is scored as a draw.
const DefaultMaxPlies = 100

// Player is a named engine configuration taking part in a match.
type Player struct {
	Name    string
	Options engine.Options
}

// Config describes a match between A and B. Every random deal is played
// twice with colors swapped.
type Config struct {
	A, B        Player
	Pairs       int           // number of deals
	Depth       int           // per-move depth limit (0 = none)
	MoveTime    time.Duration // per-move time limit (0 = none)
	MaxPlies    int           // 0 = DefaultMaxPlies
	Concurrency int           // games in flight (0 = GOMAXPROCS)
	Seed        uint64        // deal seed (0 = entropy)

	// Store receives the standing update when set.
	Store *storage.Storage
}

// GameRecord is one finished game.
type GameRecord struct {
	Deal     [board.DealSize]board.Card
	White    string
	Black    string
	AIsWhite bool
	Outcome  board.Outcome // Undecided when the ply cap was reached
	Moves    []string
}

// Result summarizes a match from A's point of view.
type Result struct {
	RunID uuid.UUID
	WinsA int
	WinsB int
	Draws int
	Games []GameRecord
}

// Score returns A's score fraction, draws counting half.
func (r *Result) Score() float64 {
	n := r.WinsA + r.WinsB + r.Draws
	if n == 0 {
		return 0.5
	}
	return (float64(r.WinsA) + float64(r.Draws)/2) / float64(n)
}

// Elo returns the rating difference of A over B implied by Score.
func (r *Result) Elo() float64 {
	return EloDiff(r.Score())
}

// EloDiff converts a score fraction p into a rating difference. p of 0 or
// 1 yields an infinity of the matching sign.
func EloDiff(p float64) float64 {
	switch {
	case p <= 0:
		return math.Inf(-1)
	case p >= 1:
		return math.Inf(1)
	}
	return -400 * math.Log10(1/p-1)
}

func (cfg *Config) validate() error {
	if cfg.Pairs < 1 {
		return errors.New("match needs at least one pair of games")
	}
	if cfg.Depth <= 0 && cfg.MoveTime <= 0 {
		return errors.New("match needs a depth or move time limit")
	}
	if cfg.A.Name == "" || cfg.B.Name == "" || cfg.A.Name == cfg.B.Name {
		return fmt.Errorf("players need distinct names, got %q and %q", cfg.A.Name, cfg.B.Name)
	}
	if cfg.MaxPlies <= 0 {
		cfg.MaxPlies = DefaultMaxPlies
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = runtime.GOMAXPROCS(0)
	}
	return nil
}

// RandomDeals draws n five-card deals from the catalog.
func RandomDeals(n int, seed uint64) [][board.DealSize]board.Card {
	var rng *frand.RNG
	if seed == 0 {
		rng = frand.New()
	} else {
		var buf [32]byte
		binary.LittleEndian.PutUint64(buf[:], seed)
		rng = frand.NewCustom(buf[:], 1024, 12)
	}

	deals := make([][board.DealSize]board.Card, n)
	for i := range deals {
		perm := rng.Perm(int(board.NumCards))
		for j := range deals[i] {
			deals[i][j] = board.Card(perm[j])
		}
	}
	return deals
}

// Run plays the match. Games run concurrently, each with two fresh engines.
func Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	res := &Result{
		RunID: uuid.New(),
		Games: make([]GameRecord, 2*cfg.Pairs),
	}
	deals := RandomDeals(cfg.Pairs, cfg.Seed)
	limits := engine.SearchLimits{Depth: cfg.Depth, MoveTime: cfg.MoveTime}

	log.Info().
		Str("run", res.RunID.String()).
		Str("a", cfg.A.Name).
		Str("b", cfg.B.Name).
		Int("games", len(res.Games)).
		Msg("match-start")

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Concurrency)
	for i := range res.Games {
		i := i
		g.Go(func() error {
			white, black := cfg.A, cfg.B
			if i%2 == 1 {
				white, black = black, white
			}
			rec, err := playGame(gctx, deals[i/2], white, black, limits, cfg.MaxPlies)
			if err != nil {
				return fmt.Errorf("game %d: %w", i, err)
			}
			rec.AIsWhite = i%2 == 0
			res.Games[i] = rec

			log.Info().
				Int("game", i).
				Str("white", rec.White).
				Str("black", rec.Black).
				Str("result", rec.ResultString()).
				Int("plies", len(rec.Moves)).
				Msg("game-finished")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, rec := range res.Games {
		winner, ok := rec.Outcome.Winner()
		switch {
		case !ok:
			res.Draws++
		case (winner == board.White) == rec.AIsWhite:
			res.WinsA++
		default:
			res.WinsB++
		}
	}

	log.Info().
		Int("wins_a", res.WinsA).
		Int("wins_b", res.WinsB).
		Int("draws", res.Draws).
		Float64("elo", res.Elo()).
		Msg("match-finished")

	if cfg.Store != nil {
		err := cfg.Store.RecordMatch(storage.MatchResult{
			RunID: res.RunID,
			A:     cfg.A.Name,
			B:     cfg.B.Name,
			WinsA: res.WinsA,
			WinsB: res.WinsB,
			Draws: res.Draws,
		})
		if err != nil {
			return res, fmt.Errorf("record standing: %w", err)
		}
	}
	return res, nil
}

// playGame plays one game to a result or the ply cap.
func playGame(ctx context.Context, deal [board.DealSize]board.Card, white, black Player, limits engine.SearchLimits, maxPlies int) (GameRecord, error) {
	rec := GameRecord{Deal: deal, White: white.Name, Black: black.Name}

	s, err := board.StartingState(deal[:])
	if err != nil {
		return rec, err
	}
	engines := [2]*engine.Engine{
		engine.NewEngine(white.Options),
		engine.NewEngine(black.Options),
	}

	for len(rec.Moves) < maxPlies && s.Result() == board.Undecided {
		if err := ctx.Err(); err != nil {
			return rec, err
		}
		sr := engines[s.Turn].ComputeBestMove(ctx, s, limits)
		rec.Moves = append(rec.Moves, s.FormatMove(sr.Move))
		if s, err = s.Play(sr.Move); err != nil {
			return rec, err
		}
	}
	if err := ctx.Err(); err != nil {
		return rec, err
	}

	rec.Outcome = s.Result()
	return rec, nil
}
