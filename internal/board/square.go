// Package board implements the Onitama position, cards and move generation.
package board

import "fmt"

// Square indexes a padded 8-wide buffer of 5 rows.
// Columns 5-7 of every row are padding and never legal, so a jump can
// never wrap from one row into the next.
//
//	32 33 34 35 36 | 37 38 39
//	24 25 26 27 28 | 29 30 31
//	16 17 18 19 20 | 21 22 23
//	 8  9 10 11 12 | 13 14 15
//	 0  1  2  3  4 |  5  6  7
type Square uint8

// Board dimensions.
const (
	Files     = 5
	Ranks     = 5
	Stride    = 8
	BoardSize = Stride * Ranks // 40 addressable squares
)

// Captured marks a piece that has left the board.
const Captured Square = 128

// legalSquares marks exactly the 25 playable indices.
var legalSquares [BoardSize]bool

func init() {
	for rank := 0; rank < Ranks; rank++ {
		for file := 0; file < Files; file++ {
			legalSquares[SquareOf(file, rank)] = true
		}
	}
}

// SquareOf returns the square at the given file and rank (both 0-4).
func SquareOf(file, rank int) Square {
	return Square(file + Stride*rank)
}

// IsLegal reports whether sq lies inside the 5x5 region.
func IsLegal(sq Square) bool {
	return int(sq) < BoardSize && legalSquares[sq]
}

// onBoard reports whether an unchecked destination index is playable.
func onBoard(idx int) bool {
	return idx >= 0 && idx < BoardSize && legalSquares[idx]
}

// File returns the column (0-4).
func (sq Square) File() int {
	return int(sq) % Stride
}

// Rank returns the row (0-4).
func (sq Square) Rank() int {
	return int(sq) / Stride
}

// Mirror reflects the square through the board centre.
// Positional tables are defined for the first player and read through
// Mirror for the second.
func (sq Square) Mirror() Square {
	return SquareOf(Files-1, Ranks-1) - sq
}

// String returns the square in algebraic form (e.g. "c1").
func (sq Square) String() string {
	if sq == Captured {
		return "--"
	}
	if !IsLegal(sq) {
		return "??"
	}
	return string(rune('a'+sq.File())) + string(rune('1'+sq.Rank()))
}

// ParseSquare parses an algebraic square such as "c1".
func ParseSquare(s string) (Square, error) {
	if len(s) != 2 {
		return Captured, fmt.Errorf("invalid square: %q", s)
	}
	file := int(s[0] - 'a')
	rank := int(s[1] - '1')
	if file < 0 || file >= Files || rank < 0 || rank >= Ranks {
		return Captured, fmt.Errorf("invalid square: %q", s)
	}
	return SquareOf(file, rank), nil
}

// Temple squares: each side's king starts on its own temple.
var (
	WhiteTemple = SquareOf(2, 0)
	BlackTemple = SquareOf(2, Ranks-1)
)

// templeApproach holds, per attacking side, the three squares in front of
// the enemy temple.
var templeApproach = [2][3]Square{
	{SquareOf(1, 3), SquareOf(2, 3), SquareOf(3, 3)},
	{SquareOf(1, 1), SquareOf(2, 1), SquareOf(3, 1)},
}
