package board

// Tier is a move-ordering priority assigned at generation time.
type Tier uint8

const (
	TierWinning  Tier = iota // captures the king or steps the king onto the enemy temple
	TierCapture              // captures a pawn
	TierThreat               // king steps next to the enemy temple
	TierForward              // quiet move toward the enemy
	TierBackward             // any other quiet move
	numTiers
)

// String returns the tier name.
func (t Tier) String() string {
	switch t {
	case TierWinning:
		return "winning"
	case TierCapture:
		return "capture"
	case TierThreat:
		return "threat"
	case TierForward:
		return "forward"
	default:
		return "backward"
	}
}

// forwardThreshold classifies raw card deltas: every offset that gains at
// least one rank is >= 3 (the smallest is -2 + 8 = 6; sideways ones are <= 2).
const forwardThreshold = 3

// pieceOrder tries pawns before the king.
var pieceOrder = [5]int{1, 2, 3, 4, King}

// tierBuffer collects generated moves per tier without allocating.
type tierBuffer struct {
	moves [numTiers][MaxMoves]Move
	count [numTiers]int
}

func (tb *tierBuffer) add(t Tier, m Move) {
	tb.moves[t][tb.count[t]] = m
	tb.count[t]++
}

// GenerateMoves returns the legal moves of the side to move, ordered tier by
// tier. With loudOnly only winning moves and captures are produced.
func (s *State) GenerateMoves(loudOnly bool) MoveList {
	var ml MoveList
	s.GenerateMovesInto(&ml, loudOnly)
	return ml
}

// GenerateMovesInto fills ml with the legal moves; see GenerateMoves.
func (s *State) GenerateMovesInto(ml *MoveList, loudOnly bool) {
	ml.Clear()
	us := s.Turn
	hand, _ := s.handOrder(us)

	var tb tierBuffer
	for _, piece := range pieceOrder {
		from := s.Pieces[us][piece]
		if from == Captured {
			continue
		}
		for slot, card := range hand {
			for _, delta := range card.Jumps(us) {
				idx := int(from) + delta
				if !onBoard(idx) {
					continue
				}
				dest := Square(idx)
				if s.occupiedBy(us, dest) {
					continue
				}
				t := s.classify(piece, dest, rawDelta(us, delta))
				if loudOnly && t > TierCapture {
					continue
				}
				tb.add(t, NewMove(dest, piece, slot))
			}
		}
	}

	for t := Tier(0); t < numTiers; t++ {
		for i := 0; i < tb.count[t]; i++ {
			ml.Add(tb.moves[t][i])
		}
	}
}

// MoveTier returns the tier GenerateMoves assigns to m.
func (s *State) MoveTier(m Move) Tier {
	from := s.Pieces[s.Turn][m.Piece()]
	return s.classify(m.Piece(), m.To(), rawDelta(s.Turn, int(m.To())-int(from)))
}

// rawDelta turns an oriented delta back into the catalog value.
func rawDelta(side Side, delta int) int {
	if side == Black {
		return -delta
	}
	return delta
}

func (s *State) classify(piece int, dest Square, raw int) Tier {
	us, them := s.Turn, s.Turn.Other()
	victim := s.pieceIndex(them, dest)
	switch {
	case victim == King:
		return TierWinning
	case piece == King && dest == enemyTemple(us):
		return TierWinning
	case victim >= 0:
		return TierCapture
	case piece == King && nearTemple(us, dest):
		return TierThreat
	case raw >= forwardThreshold:
		return TierForward
	default:
		return TierBackward
	}
}

func enemyTemple(us Side) Square {
	if us == White {
		return BlackTemple
	}
	return WhiteTemple
}

func nearTemple(us Side, sq Square) bool {
	for _, t := range templeApproach[us] {
		if t == sq {
			return true
		}
	}
	return false
}

func (s *State) occupiedBy(side Side, sq Square) bool {
	return s.pieceIndex(side, sq) >= 0
}

// pieceIndex returns which of side's pieces stands on sq, or -1.
func (s *State) pieceIndex(side Side, sq Square) int {
	for i, p := range s.Pieces[side] {
		if p == sq {
			return i
		}
	}
	return -1
}

// Perft counts the leaf nodes of the legal move tree, treating decided
// positions as leaves.
func Perft(s State, depth int) uint64 {
	if depth == 0 || s.Result() != Undecided {
		return 1
	}
	moves := s.GenerateMoves(false)
	if depth == 1 {
		return uint64(moves.Count())
	}
	var nodes uint64
	for i := 0; i < moves.Len(); i++ {
		nodes += Perft(s.ApplyMove(moves.Get(i)), depth-1)
	}
	return nodes
}
