package engine

import (
	"fmt"
	"sync/atomic"

	"github.com/hailam/onitama/internal/board"
	"lukechampine.com/frand"
)

// Search constants
const (
	Infinity = 1000000
	MaxDepth = 64

	// MateThreshold separates decided-game scores from positional ones.
	MateThreshold = 90000

	// quiescenceDepth bounds the loud-move extension at the horizon.
	quiescenceDepth = 10

	// abortedScore is returned by nodes entered after a stop request.
	// Callers check the stop flag and discard it.
	abortedScore = -2 * Infinity
)

// fromChild converts a child's score to the parent's frame: scores beyond
// MateThreshold move one point toward zero per ply, so shorter wins and
// longer losses score higher.
func fromChild(score int) int {
	if score > MateThreshold {
		return score - 1
	}
	if score < -MateThreshold {
		return score + 1
	}
	return score
}

// toChild is the inverse of fromChild applied to a window bound, keeping
// fromChild(v) > bound equivalent to v > toChild(bound).
func toChild(bound int) int {
	if bound >= MateThreshold {
		return bound + 1
	}
	if bound <= -MateThreshold {
		return bound - 1
	}
	return bound
}

// Searcher performs the principal variation search.
type Searcher struct {
	tables   Tables
	orderer  *MoveOrderer
	cache    *OrderingCache
	stopFlag *atomic.Bool
	nodes    uint64

	useKillers bool
	useCache   bool
	jitter     int
	rng        *frand.RNG
}

// NewSearcher creates a searcher around a shared ordering cache.
func NewSearcher(cache *OrderingCache, stopFlag *atomic.Bool) *Searcher {
	return &Searcher{
		tables:   DefaultTables,
		orderer:  NewMoveOrderer(),
		cache:    cache,
		stopFlag: stopFlag,
		useCache: true,
	}
}

// Reset resets the searcher for a new search.
func (sr *Searcher) Reset() {
	sr.nodes = 0
	sr.orderer.Clear()
}

// Nodes returns the number of nodes searched.
func (sr *Searcher) Nodes() uint64 {
	return sr.nodes
}

// stopped returns true if search should stop.
func (sr *Searcher) stopped() bool {
	return sr.stopFlag.Load()
}

// child searches s as a child of the current node and returns its score
// from the current node's point of view, window bounds included.
func (sr *Searcher) child(s *board.State, depth, alpha, beta int, quiescent bool) int {
	return fromChild(-sr.pvs(s, depth, -toChild(beta), -toChild(alpha), quiescent))
}

// pvs implements fail-soft principal variation search. In quiescent mode
// depth counts the remaining loud plies.
func (sr *Searcher) pvs(s *board.State, depth, alpha, beta int, quiescent bool) int {
	if sr.stopped() {
		return abortedScore
	}
	sr.nodes++

	decided := s.Result() != board.Undecided
	if depth == 0 || decided {
		if quiescent || decided {
			return Evaluate(s, &sr.tables)
		}
		return sr.pvs(s, quiescenceDepth, alpha, beta, true)
	}

	var moves board.MoveList
	s.GenerateMovesInto(&moves, quiescent)
	if moves.Len() == 0 {
		if quiescent {
			return Evaluate(s, &sr.tables)
		}
		panic(fmt.Sprintf("engine: no moves in undecided position\n%s", s))
	}

	var hash uint64
	if !quiescent {
		if sr.useKillers {
			moves.Promote(sr.orderer.Killer(depth))
		}
		if sr.useCache {
			hash = s.Hash()
			if m, ok := sr.cache.Probe(hash); ok {
				moves.Promote(m)
			}
		}
	}

	origAlpha := alpha
	best := -Infinity
	bestMove := board.NoMove
	searched := 0

	for i := 0; i < moves.Len(); i++ {
		m := moves.Get(i)
		if m == board.NoMove {
			continue
		}
		child := s.ApplyMove(m)

		var score int
		if searched == 0 {
			score = sr.child(&child, depth-1, alpha, beta, quiescent)
		} else {
			score = sr.child(&child, depth-1, alpha, alpha+1, quiescent)
			if alpha < score && score < beta {
				score = sr.child(&child, depth-1, alpha, beta, quiescent)
			}
		}
		searched++

		if sr.stopped() {
			return abortedScore
		}

		if score > best {
			best = score
			bestMove = m
		}
		if score > alpha {
			alpha = score
		}
		if alpha >= beta {
			if !quiescent && sr.useKillers {
				sr.orderer.UpdateKiller(depth, m)
			}
			break
		}
	}

	if !quiescent && sr.useCache && best > origAlpha {
		sr.cache.Store(hash, bestMove)
	}
	return best
}

// rootResult is the outcome of one completed root iteration.
type rootResult struct {
	move  board.Move
	score int
}

// searchRoot searches every root move to depth. prevBest, the previous
// iteration's choice, is tried first. With jitter J every move within J of
// the best gets an exact score and a random bonus in [0, J] decides among
// them. The boolean is false when the iteration was stopped.
func (sr *Searcher) searchRoot(s *board.State, depth int, prevBest board.Move) (rootResult, bool) {
	if sr.stopped() {
		return rootResult{}, false
	}
	sr.nodes++

	moves := s.GenerateMoves(false)
	hash := s.Hash()
	if sr.useCache {
		if m, ok := sr.cache.Probe(hash); ok {
			moves.Promote(m)
		}
	}
	moves.Promote(prevBest)

	best := rootResult{move: board.NoMove, score: -Infinity}
	bestTotal := -Infinity
	searched := 0

	for i := 0; i < moves.Len(); i++ {
		m := moves.Get(i)
		if m == board.NoMove {
			continue
		}
		child := s.ApplyMove(m)

		var score int
		if searched == 0 {
			score = sr.child(&child, depth-1, -Infinity, Infinity, false)
		} else {
			floor := bestTotal - sr.jitter
			score = sr.child(&child, depth-1, floor, floor+1, false)
			if score > floor {
				score = sr.child(&child, depth-1, floor, Infinity, false)
			}
		}
		searched++

		if sr.stopped() {
			return rootResult{}, false
		}

		total := score
		if sr.jitter > 0 {
			total += sr.rng.Intn(sr.jitter + 1)
		}
		if total > bestTotal {
			bestTotal = total
			best = rootResult{move: m, score: score}
		}
	}

	if sr.useCache && best.move != board.NoMove {
		sr.cache.Store(hash, best.move)
	}
	return best, best.move != board.NoMove
}
