package engine

import (
	"context"
	"encoding/binary"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"lukechampine.com/frand"

	"github.com/hailam/onitama/internal/board"
)

// SearchInfo is reported after every completed iteration.
type SearchInfo struct {
	Depth    int
	Score    int
	Nodes    uint64
	Time     time.Duration
	Move     board.Move
	HashFull int // Permille of the ordering cache in use
}

// SearchLimits specifies constraints on the search.
type SearchLimits struct {
	Depth    int           // Maximum depth (0 = MaxDepth)
	MoveTime time.Duration // Time for this move (0 = no limit)
}

// SearchResult is the outcome of ComputeBestMove.
type SearchResult struct {
	Move    board.Move
	Score   int // score of the last completed depth, side to move's view
	Depth   int // last completed depth (0 if none completed)
	Nodes   uint64
	Elapsed time.Duration
	Stopped bool // the search was cut short by time or cancellation
}

// Options configure an Engine.
type Options struct {
	Tables           Tables
	Jitter           int  // top-level random bonus in [0, Jitter]
	UseKillers       bool
	UseOrderingCache bool
	HashMB           int    // ordering cache size
	MaxDepth         int    // depth ceiling (0 = MaxDepth)
	Seed             uint64 // jitter randomness seed (0 = entropy)
}

// DefaultOptions returns the standard configuration.
func DefaultOptions() Options {
	return Options{
		Tables:           DefaultTables,
		UseOrderingCache: true,
		HashMB:           16,
	}
}

// Engine is the Onitama AI engine. An Engine runs one search at a time;
// concurrent searches need separate engines.
type Engine struct {
	searcher *Searcher
	cache    *OrderingCache
	timer    *TimeManager
	maxDepth int

	// stop is the token of the current or next search. Each search owns
	// its token; a fresh one is installed when the search returns.
	stopMu sync.Mutex
	stop   *atomic.Bool

	// Callbacks
	OnInfo func(SearchInfo)
}

// NewEngine creates an engine configured by opts.
func NewEngine(opts Options) *Engine {
	e := &Engine{
		cache: NewOrderingCache(opts.HashMB),
		timer: NewTimeManager(),
		stop:  new(atomic.Bool),
	}
	e.SetMaxDepth(opts.MaxDepth)
	e.searcher = NewSearcher(e.cache, e.stop)
	e.searcher.tables = opts.Tables
	e.searcher.useKillers = opts.UseKillers
	e.searcher.useCache = opts.UseOrderingCache
	e.searcher.rng = newRNG(opts.Seed)
	e.SetJitter(opts.Jitter)
	return e
}

func newRNG(seed uint64) *frand.RNG {
	if seed == 0 {
		entropy := frand.Entropy256()
		return frand.NewCustom(entropy[:], 1024, 12)
	}
	var buf [32]byte
	binary.LittleEndian.PutUint64(buf[:], seed)
	return frand.NewCustom(buf[:], 1024, 12)
}

// SetJitter sets the top-level randomization magnitude.
func (e *Engine) SetJitter(j int) {
	if j < 0 {
		j = 0
	}
	e.searcher.jitter = j
}

// SetMaxDepth caps the iterative deepening depth. Zero or out of range
// values mean MaxDepth.
func (e *Engine) SetMaxDepth(d int) {
	if d <= 0 || d > MaxDepth {
		d = MaxDepth
	}
	e.maxDepth = d
}

// SetKillers toggles the killer-move heuristic.
func (e *Engine) SetKillers(on bool) {
	e.searcher.useKillers = on
}

// SetOrderingCache toggles the ordering cache.
func (e *Engine) SetOrderingCache(on bool) {
	e.searcher.useCache = on
}

// SetTables replaces the positional tables.
func (e *Engine) SetTables(t Tables) {
	e.searcher.tables = t
}

// ResizeCache replaces the ordering cache with one of sizeMB megabytes.
func (e *Engine) ResizeCache(sizeMB int) {
	e.cache = NewOrderingCache(sizeMB)
	e.searcher.cache = e.cache
}

// ComputeBestMove runs iterative deepening on s and returns the move of the
// deepest completed iteration. The search stops at limits.Depth, when
// limits.MoveTime elapses, when ctx is done, or on Stop. If not even depth 1
// completes, the first generated move is returned. A decided position
// yields NoMove. A Stop issued since the last search returned or the last
// ResetStop aborts this search at once.
func (e *Engine) ComputeBestMove(ctx context.Context, s board.State, limits SearchLimits) SearchResult {
	token := e.stopToken()
	defer e.retireStop(token)
	e.searcher.stopFlag = token
	e.searcher.Reset()
	release := e.timer.Start(ctx, limits.MoveTime, token)
	defer release()

	result := SearchResult{Move: board.NoMove}
	if s.Result() != board.Undecided {
		return result
	}
	s.Canonicalize()

	maxDepth := e.maxDepth
	if limits.Depth > 0 && limits.Depth < maxDepth {
		maxDepth = limits.Depth
	}

	for depth := 1; depth <= maxDepth; depth++ {
		if depth > 1 && e.timer.PastOptimum() {
			break
		}

		rr, ok := e.searcher.searchRoot(&s, depth, result.Move)
		if !ok {
			result.Stopped = true
			break
		}
		result.Move = rr.move
		result.Score = rr.score
		result.Depth = depth

		info := SearchInfo{
			Depth:    depth,
			Score:    rr.score,
			Nodes:    e.searcher.Nodes(),
			Time:     e.timer.Elapsed(),
			Move:     rr.move,
			HashFull: e.cache.HashFull(),
		}
		log.Debug().
			Int("depth", depth).
			Int("score", rr.score).
			Uint64("nodes", info.Nodes).
			Dur("elapsed", info.Time).
			Str("move", s.FormatMove(rr.move)).
			Msg("depth-complete")
		if e.OnInfo != nil {
			e.OnInfo(info)
		}
	}

	if result.Move == board.NoMove {
		moves := s.GenerateMoves(false)
		result.Move = moves.Get(0)
	}
	result.Nodes = e.searcher.Nodes()
	result.Elapsed = e.timer.Elapsed()
	return result
}

// Stop stops the current search. With no search running it stops the next
// one, so a caller that starts a search asynchronously can stop it before it
// has begun.
func (e *Engine) Stop() {
	e.stopToken().Store(true)
}

// ResetStop discards a pending Stop. Callers starting a search call it
// before handing the search to another goroutine.
func (e *Engine) ResetStop() {
	e.stopMu.Lock()
	e.stop = new(atomic.Bool)
	e.stopMu.Unlock()
}

func (e *Engine) stopToken() *atomic.Bool {
	e.stopMu.Lock()
	defer e.stopMu.Unlock()
	return e.stop
}

// retireStop installs a fresh token once the search owning token returns.
// Late timer writes land on the retired token.
func (e *Engine) retireStop(token *atomic.Bool) {
	e.stopMu.Lock()
	if e.stop == token {
		e.stop = new(atomic.Bool)
	}
	e.stopMu.Unlock()
}

// Clear clears the ordering cache and killer table.
func (e *Engine) Clear() {
	e.cache.Clear()
	e.searcher.orderer.Clear()
}

// Evaluate returns the static evaluation of a position.
func (e *Engine) Evaluate(s *board.State) int {
	return Evaluate(s, &e.searcher.tables)
}

// ScoreToString converts a score to a human-readable string.
func ScoreToString(score int) string {
	if score > MateThreshold {
		return "win in " + strconv.Itoa(WinScore-score)
	}
	if score < -MateThreshold {
		return "loss in " + strconv.Itoa(WinScore+score)
	}
	return strconv.Itoa(score)
}
