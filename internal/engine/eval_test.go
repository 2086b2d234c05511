package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hailam/onitama/internal/board"
)

// swapColors mirrors s so that each side takes the other's place.
func swapColors(s board.State) board.State {
	var out board.State
	for side := board.White; side <= board.Black; side++ {
		for i, sq := range s.Pieces[side] {
			if sq != board.Captured {
				sq = sq.Mirror()
			}
			out.Pieces[side.Other()][i] = sq
		}
		out.Hands[side.Other()] = s.Hands[side]
	}
	out.Reserve = s.Reserve
	out.Turn = s.Turn.Other()
	out.Canonicalize()
	return out
}

func TestEvaluateOpening(t *testing.T) {
	s := openingState(t)
	assert.Equal(t, tempoBonus, Evaluate(&s, &DefaultTables))

	s.Turn = board.Black
	assert.Equal(t, tempoBonus, Evaluate(&s, &DefaultTables))
}

func TestEvaluateCapturedPawn(t *testing.T) {
	s := openingState(t)
	// The black pawn on a5 sits on a table entry of -5, halved to -2.
	for i := 1; i < 5; i++ {
		if s.Pieces[board.Black][i] == board.SquareOf(0, 4) {
			s.Pieces[board.Black][i] = board.Captured
		}
	}
	s.Canonicalize()
	assert.Equal(t, tempoBonus+capturedPawnPenalty-2, Evaluate(&s, &DefaultTables))
}

func TestEvaluateDecided(t *testing.T) {
	s := openingState(t)
	s.Pieces[board.Black][board.King] = board.Captured
	assert.Equal(t, WinScore, Evaluate(&s, &DefaultTables))

	s.Turn = board.Black
	assert.Equal(t, -WinScore, Evaluate(&s, &DefaultTables))

	s = openingState(t)
	s.Pieces[board.Black][board.King] = board.WhiteTemple
	s.Pieces[board.White][board.King] = board.SquareOf(2, 2)
	assert.Equal(t, -WinScore, Evaluate(&s, &DefaultTables))
}

func TestEvaluateColorSymmetry(t *testing.T) {
	positions := []board.State{openingState(t), skirmishState()}

	// A few plies of play from each to get asymmetric positions.
	for _, start := range positions[:2] {
		s := start
		for ply := 0; ply < 4 && s.Result() == board.Undecided; ply++ {
			moves := s.GenerateMoves(false)
			s = s.ApplyMove(moves.Get(ply % moves.Len()))
			positions = append(positions, s)
		}
	}

	for _, s := range positions {
		mirrored := swapColors(s)
		assert.Equal(t, Evaluate(&s, &DefaultTables), Evaluate(&mirrored, &DefaultTables), "\n%s", s.String())
	}
}

func TestScaleTables(t *testing.T) {
	neg := DefaultTables.Scale(-1)
	zero := DefaultTables.Scale(0)
	for i := range DefaultTables.King {
		assert.Equal(t, -DefaultTables.King[i], neg.King[i])
		assert.Equal(t, -DefaultTables.Pawn[i], neg.Pawn[i])
		assert.Zero(t, zero.King[i])
		assert.Zero(t, zero.Pawn[i])
	}

	s := openingState(t)
	assert.Equal(t, tempoBonus, Evaluate(&s, &zero))
}

func TestScoreToString(t *testing.T) {
	assert.Equal(t, "42", ScoreToString(42))
	assert.Equal(t, "-7", ScoreToString(-7))
	assert.Equal(t, "win in 1", ScoreToString(WinScore-1))
	assert.Equal(t, "win in 3", ScoreToString(WinScore-3))
	assert.Equal(t, "loss in 2", ScoreToString(-(WinScore - 2)))
}
