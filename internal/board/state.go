package board

import (
	"errors"
	"fmt"
	"strings"
)

// Side is one of the two players.
type Side uint8

const (
	White Side = iota // moves first, home row is rank 1
	Black
)

// Other returns the opponent.
func (s Side) Other() Side {
	return 1 - s
}

// String returns the side name.
func (s Side) String() string {
	if s == White {
		return "white"
	}
	return "black"
}

// Outcome is the result of a position.
type Outcome uint8

const (
	Undecided Outcome = iota
	WhiteWins
	BlackWins
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case WhiteWins:
		return "white wins"
	case BlackWins:
		return "black wins"
	default:
		return "undecided"
	}
}

// Winner returns the winning side when the game is decided.
func (o Outcome) Winner() (Side, bool) {
	switch o {
	case WhiteWins:
		return White, true
	case BlackWins:
		return Black, true
	}
	return White, false
}

// King is the piece index of each side's king; 1-4 are pawns.
const King = 0

// DealSize is the number of cards in a game.
const DealSize = 5

// Errors returned when building or playing positions.
var (
	ErrInvalidDeal = errors.New("invalid card deal")
	ErrIllegalMove = errors.New("illegal move")
)

// State is a complete Onitama position. It is a value type: copying it
// yields an independent position.
type State struct {
	Pieces  [2][5]Square // [side][piece], piece 0 is the king
	Hands   [2][2]Card
	Reserve Card
	Turn    Side
}

// StartingState sets up the opening position with deal laid out as
// {white, white, black, black, reserve}.
func StartingState(deal []Card) (State, error) {
	if len(deal) != DealSize {
		return State{}, fmt.Errorf("%w: need %d cards, got %d", ErrInvalidDeal, DealSize, len(deal))
	}
	var seen [NumCards]bool
	for _, c := range deal {
		if !c.Valid() {
			return State{}, fmt.Errorf("%w: card id %d out of range", ErrInvalidDeal, c)
		}
		if seen[c] {
			return State{}, fmt.Errorf("%w: duplicate card %s", ErrInvalidDeal, c)
		}
		seen[c] = true
	}

	var s State
	homeFiles := [5]int{2, 0, 1, 3, 4}
	for i, file := range homeFiles {
		s.Pieces[White][i] = SquareOf(file, 0)
		s.Pieces[Black][i] = SquareOf(file, Ranks-1)
	}
	s.Hands[White] = [2]Card{deal[0], deal[1]}
	s.Hands[Black] = [2]Card{deal[2], deal[3]}
	s.Reserve = deal[4]
	s.Turn = White
	s.Canonicalize()
	return s, nil
}

func sortPair(a, b *Square) {
	if *a > *b {
		*a, *b = *b, *a
	}
}

// Canonicalize sorts each side's pawns by square (captured last) and each
// hand by card power so transposed positions compare and hash equal.
func (s *State) Canonicalize() {
	for side := range s.Pieces {
		p := &s.Pieces[side]
		sortPair(&p[1], &p[3])
		sortPair(&p[2], &p[4])
		sortPair(&p[1], &p[2])
		sortPair(&p[3], &p[4])
		sortPair(&p[2], &p[3])

		h := &s.Hands[side]
		if outranks(h[1], h[0]) {
			h[0], h[1] = h[1], h[0]
		}
	}
}

// handOrder returns side's hand in canonical order together with the
// physical slot each canonical slot maps to.
func (s *State) handOrder(side Side) (hand [2]Card, slots [2]int) {
	h := s.Hands[side]
	if outranks(h[1], h[0]) {
		return [2]Card{h[1], h[0]}, [2]int{1, 0}
	}
	return h, [2]int{0, 1}
}

// CardFor returns the card a move by the side to move would play.
func (s *State) CardFor(m Move) Card {
	hand, _ := s.handOrder(s.Turn)
	return hand[m.Slot()]
}

// ApplyMove returns the position after m. The receiver is not modified.
// m must come from GenerateMoves on this position.
func (s State) ApplyMove(m Move) State {
	us, them := s.Turn, s.Turn.Other()
	piece := m.Piece()
	if s.Pieces[us][piece] == Captured {
		panic(fmt.Sprintf("board: move %s uses a captured piece", m))
	}

	dest := m.To()
	s.Pieces[us][piece] = dest
	for i, sq := range s.Pieces[them] {
		if sq == dest {
			s.Pieces[them][i] = Captured
		}
	}

	_, slots := s.handOrder(us)
	phys := slots[m.Slot()]
	s.Hands[us][phys], s.Reserve = s.Reserve, s.Hands[us][phys]

	s.Turn = them
	s.Canonicalize()
	return s
}

// Play validates m against the legal moves and applies it.
func (s State) Play(m Move) (State, error) {
	if s.Result() != Undecided {
		return s, fmt.Errorf("%w: game is over", ErrIllegalMove)
	}
	moves := s.GenerateMoves(false)
	if !moves.Contains(m) {
		return s, fmt.Errorf("%w: %s", ErrIllegalMove, m)
	}
	return s.ApplyMove(m), nil
}

// Result checks, in order: captured kings, then kings on the enemy temple.
func (s *State) Result() Outcome {
	if s.Pieces[White][King] == Captured {
		return BlackWins
	}
	if s.Pieces[Black][King] == Captured {
		return WhiteWins
	}
	if s.Pieces[White][King] == BlackTemple {
		return WhiteWins
	}
	if s.Pieces[Black][King] == WhiteTemple {
		return BlackWins
	}
	return Undecided
}

// PieceAt returns the side and piece index occupying sq.
func (s *State) PieceAt(sq Square) (Side, int, bool) {
	if sq == Captured {
		return White, 0, false
	}
	for side := White; side <= Black; side++ {
		for i, p := range s.Pieces[side] {
			if p == sq {
				return side, i, true
			}
		}
	}
	return White, 0, false
}

// Material returns the number of pieces side still has on the board.
func (s *State) Material(side Side) int {
	n := 0
	for _, sq := range s.Pieces[side] {
		if sq != Captured {
			n++
		}
	}
	return n
}

// Cards returns the five cards in play: both hands then the reserve.
func (s *State) Cards() [DealSize]Card {
	return [DealSize]Card{
		s.Hands[White][0], s.Hands[White][1],
		s.Hands[Black][0], s.Hands[Black][1],
		s.Reserve,
	}
}

// Hash constants (64-bit FNV-1a).
const (
	hashOffset uint64 = 0xcbf29ce484222325
	hashPrime  uint64 = 0x100000001b3
)

// Hash is a cheap structural hash of the position, folding every field in
// with a fixed multiplier. Collisions are tolerated: it only keys move
// ordering hints. Call it on canonical positions.
func (s *State) Hash() uint64 {
	h := hashOffset
	for side := range s.Pieces {
		for _, sq := range s.Pieces[side] {
			h = (h ^ uint64(sq)) * hashPrime
		}
	}
	for side := range s.Hands {
		for _, c := range s.Hands[side] {
			h = (h ^ uint64(c)) * hashPrime
		}
	}
	h = (h ^ uint64(s.Reserve)) * hashPrime
	h = (h ^ uint64(s.Turn)) * hashPrime
	return h
}

// String renders the board with rank 5 at the top.
func (s *State) String() string {
	var sb strings.Builder
	for rank := Ranks - 1; rank >= 0; rank-- {
		sb.WriteString(fmt.Sprintf("%d ", rank+1))
		for file := 0; file < Files; file++ {
			sq := SquareOf(file, rank)
			ch := byte('.')
			if side, piece, ok := s.PieceAt(sq); ok {
				switch {
				case side == White && piece == King:
					ch = 'K'
				case side == White:
					ch = 'P'
				case piece == King:
					ch = 'k'
				default:
					ch = 'p'
				}
			}
			sb.WriteByte(ch)
			if file < Files-1 {
				sb.WriteByte(' ')
			}
		}
		sb.WriteByte('\n')
	}
	sb.WriteString("  a b c d e\n")
	sb.WriteString(fmt.Sprintf("Turn: %s\n", s.Turn))
	sb.WriteString(fmt.Sprintf("White: [%s %s] Black: [%s %s] Reserve: %s\n",
		s.Hands[White][0], s.Hands[White][1],
		s.Hands[Black][0], s.Hands[Black][1],
		s.Reserve))
	return sb.String()
}
