package engine

import (
	"github.com/hailam/onitama/internal/board"
)

// MoveOrderer holds the killer table. Moves arrive from the generator
// already tiered, so killers and the ordering cache only promote a single
// move each to the front of that order.
type MoveOrderer struct {
	// Killer moves (moves that caused a cutoff), one per remaining depth
	killers [MaxDepth + 1]board.Move
}

// NewMoveOrderer creates a new move orderer.
func NewMoveOrderer() *MoveOrderer {
	mo := &MoveOrderer{}
	mo.Clear()
	return mo
}

// Clear resets the killer table for a new search.
func (mo *MoveOrderer) Clear() {
	for i := range mo.killers {
		mo.killers[i] = board.NoMove
	}
}

// Killer returns the killer move stored for depth.
func (mo *MoveOrderer) Killer(depth int) board.Move {
	if depth < 0 || depth > MaxDepth {
		return board.NoMove
	}
	return mo.killers[depth]
}

// UpdateKiller records m as the killer for depth.
func (mo *MoveOrderer) UpdateKiller(depth int, m board.Move) {
	if depth < 0 || depth > MaxDepth {
		return
	}
	mo.killers[depth] = m
}
