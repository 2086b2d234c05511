package board

import "fmt"

// Move encodes an Onitama move in 12 bits:
// bits 0-7:  destination square
// bits 8-10: which of the mover's pieces moves (0 = king)
// bit  11:   which canonical hand slot supplies the card
//
// The card itself is not stored; it is read from the mover's hand at the
// slot index before the move is applied.
type Move uint16

// NoMove is the sentinel for "no move"; it never encodes a legal move.
const NoMove Move = 0xFFFF

// MaxMoves bounds the legal moves of any position: 5 pieces x 2 cards x 4 jumps.
const MaxMoves = 5 * 2 * 4

// NewMove creates a move of piece to dest using hand slot.
func NewMove(dest Square, piece, slot int) Move {
	return Move(dest) | Move(piece)<<8 | Move(slot)<<11
}

// To returns the destination square.
func (m Move) To() Square {
	return Square(m & 0xFF)
}

// Piece returns the index of the moving piece.
func (m Move) Piece() int {
	return int(m>>8) & 7
}

// Slot returns the hand slot supplying the card.
func (m Move) Slot() int {
	return int(m>>11) & 1
}

// String returns a compact debug form (e.g. "c3p0h1").
// Use State.FormatMove for notation that names the card.
func (m Move) String() string {
	if m == NoMove {
		return "0000"
	}
	return fmt.Sprintf("%sp%dh%d", m.To(), m.Piece(), m.Slot())
}

// maxPromotions is the headroom in front of a MoveList: one slot for the
// killer move and one for the ordering-cache move.
const maxPromotions = 2

// MoveList is a fixed-size list of moves to avoid allocations.
// Promote moves an entry to the front by writing it into the headroom and
// leaving NoMove behind, so iterating code must skip NoMove entries.
type MoveList struct {
	moves [maxPromotions + MaxMoves]Move
	start int
	end   int
}

// NewMoveList creates an empty move list.
func NewMoveList() *MoveList {
	ml := &MoveList{}
	ml.Clear()
	return ml
}

// Clear empties the list and restores the headroom.
func (ml *MoveList) Clear() {
	ml.start = maxPromotions
	ml.end = maxPromotions
}

// Add appends a move.
func (ml *MoveList) Add(m Move) {
	if ml.end-ml.start >= MaxMoves {
		panic(fmt.Sprintf("board: move list overflow (%d moves)", ml.end-ml.start))
	}
	ml.moves[ml.end] = m
	ml.end++
}

// Len returns the number of entries, including NoMove holes left by Promote.
func (ml *MoveList) Len() int {
	return ml.end - ml.start
}

// Get returns the entry at index i.
func (ml *MoveList) Get(i int) Move {
	return ml.moves[ml.start+i]
}

// Count returns the number of real moves.
func (ml *MoveList) Count() int {
	n := 0
	for i := ml.start; i < ml.end; i++ {
		if ml.moves[i] != NoMove {
			n++
		}
	}
	return n
}

// Contains returns true if the list contains the move.
func (ml *MoveList) Contains(m Move) bool {
	if m == NoMove {
		return false
	}
	for i := ml.start; i < ml.end; i++ {
		if ml.moves[i] == m {
			return true
		}
	}
	return false
}

// Promote moves m to the front of the list. It is a no-op (returning false)
// when m is not in the list or the headroom is used up.
func (ml *MoveList) Promote(m Move) bool {
	if m == NoMove || ml.start == 0 {
		return false
	}
	for i := ml.start; i < ml.end; i++ {
		if ml.moves[i] == m {
			ml.moves[i] = NoMove
			ml.start--
			ml.moves[ml.start] = m
			return true
		}
	}
	return false
}

// Moves returns the real moves in list order.
func (ml *MoveList) Moves() []Move {
	out := make([]Move, 0, ml.Len())
	for i := ml.start; i < ml.end; i++ {
		if ml.moves[i] != NoMove {
			out = append(out, ml.moves[i])
		}
	}
	return out
}
