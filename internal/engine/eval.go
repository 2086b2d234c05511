// Package engine implements the Onitama search engine.
package engine

import (
	"github.com/hailam/onitama/internal/board"
)

// Evaluation constants
const (
	// WinScore is returned for decided positions. Search damps it by one
	// point per ply, so it always exceeds MateThreshold while positional
	// scores stay far below it.
	WinScore = 99999

	tempoBonus          = 15
	capturedPawnPenalty = 100
)

// Table is a positional table over the padded square buffer, written from
// the first player's point of view. Padding entries are unused.
type Table [board.BoardSize]int

// Tables holds the king and pawn positional tables.
type Tables struct {
	King Table `json:"king"`
	Pawn Table `json:"pawn"`
}

// DefaultTables are self-play calibrated tables (rank 1 first).
var DefaultTables = Tables{
	King: Table{
		-35, -19, 13, -19, -35, 0, 0, 0,
		-21, -9, -2, -9, -21, 0, 0, 0,
		-18, 36, 59, 36, -18, 0, 0, 0,
		70, 147, 147, 147, 70, 0, 0, 0,
		107, 167, 200, 167, 107, 0, 0, 0,
	},
	Pawn: Table{
		-5, -2, -13, -2, -5, 0, 0, 0,
		2, 14, 15, 14, 2, 0, 0, 0,
		17, 44, 68, 44, 17, 0, 0, 0,
		31, 75, 104, 75, 31, 0, 0, 0,
		26, 48, 58, 48, 26, 0, 0, 0,
	},
}

// Scale returns the tables with every entry multiplied by k.
func (t Tables) Scale(k float64) Tables {
	var out Tables
	for i := range t.King {
		out.King[i] = int(k * float64(t.King[i]))
		out.Pawn[i] = int(k * float64(t.Pawn[i]))
	}
	return out
}

// Evaluate scores s from the side to move's point of view.
func Evaluate(s *board.State, t *Tables) int {
	if winner, ok := s.Result().Winner(); ok {
		if winner == s.Turn {
			return WinScore
		}
		return -WinScore
	}

	score := tempoBonus // white's view until the final flip
	if s.Turn == board.Black {
		score = -tempoBonus
	}

	score += t.King[s.Pieces[board.White][board.King]] / 2
	score -= t.King[s.Pieces[board.Black][board.King].Mirror()] / 2

	for i := 1; i < 5; i++ {
		if sq := s.Pieces[board.White][i]; sq == board.Captured {
			score -= capturedPawnPenalty
		} else {
			score += t.Pawn[sq] / 2
		}
		if sq := s.Pieces[board.Black][i]; sq == board.Captured {
			score += capturedPawnPenalty
		} else {
			score -= t.Pawn[sq.Mirror()] / 2
		}
	}

	if s.Turn == board.Black {
		return -score
	}
	return score
}
