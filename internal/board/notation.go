package board

import (
	"fmt"
	"strings"
)

// FormatMove renders m as "<card>-<from><to>", e.g. "tiger-c1c3".
// m must be a move for the side to move in s.
func (s *State) FormatMove(m Move) string {
	if m == NoMove {
		return "0000"
	}
	from := s.Pieces[s.Turn][m.Piece()]
	card := s.CardFor(m)
	return strings.ToLower(card.String()) + "-" + from.String() + m.To().String()
}

// ParseMove resolves notation produced by FormatMove against the legal
// moves of s.
func (s *State) ParseMove(text string) (Move, error) {
	name, squares, ok := strings.Cut(strings.TrimSpace(text), "-")
	if !ok || len(squares) != 4 {
		return NoMove, fmt.Errorf("%w: malformed move %q", ErrIllegalMove, text)
	}
	card, err := CardByName(name)
	if err != nil {
		return NoMove, err
	}
	from, err := ParseSquare(squares[:2])
	if err != nil {
		return NoMove, err
	}
	to, err := ParseSquare(squares[2:])
	if err != nil {
		return NoMove, err
	}

	moves := s.GenerateMoves(false)
	for i := 0; i < moves.Len(); i++ {
		m := moves.Get(i)
		if m.To() == to && s.Pieces[s.Turn][m.Piece()] == from && s.CardFor(m) == card {
			return m, nil
		}
	}
	return NoMove, fmt.Errorf("%w: %s", ErrIllegalMove, text)
}
