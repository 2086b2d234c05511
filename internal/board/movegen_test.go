package board

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openingDeal is Rabbit, Cobra for white, Dragon, Tiger for black, Monkey in reserve.
var openingDeal = []Card{Rabbit, Cobra, Dragon, Tiger, Monkey}

func openingState(t *testing.T) State {
	t.Helper()
	s, err := StartingState(openingDeal)
	require.NoError(t, err)
	return s
}

func TestPerftStartingPosition(t *testing.T) {
	s := openingState(t)

	tests := []struct {
		depth    int
		expected uint64
	}{
		{0, 1},
		{1, 8},
		{2, 88},
	}

	for _, tc := range tests {
		t.Run("", func(t *testing.T) {
			assert.Equal(t, tc.expected, Perft(s, tc.depth), "perft(%d)", tc.depth)
		})
	}

	// Deeper counts are not pinned; log them for manual inspection.
	t.Logf("perft(4) = %d", Perft(s, 4))
}

func TestOpeningMovesAreQuiet(t *testing.T) {
	s := openingState(t)
	moves := s.GenerateMoves(false)

	require.NotZero(t, moves.Count())
	assert.LessOrEqual(t, moves.Count(), MaxMoves)
	for _, m := range moves.Moves() {
		tier := s.MoveTier(m)
		assert.NotEqual(t, TierWinning, tier, "move %s", s.FormatMove(m))
		assert.NotEqual(t, TierCapture, tier, "move %s", s.FormatMove(m))
		assert.Equal(t, TierForward, tier, "move %s", s.FormatMove(m))
	}

	loud := s.GenerateMoves(true)
	assert.Zero(t, loud.Count())
}

func TestMovesAreEmittedTierByTier(t *testing.T) {
	// White king on c4 holding Boar: c5 is the temple, b4 and d4 are quiet.
	// A black pawn on b5 can be taken by the pawn on a4 with Monkey.
	s := State{
		Pieces: [2][5]Square{
			{SquareOf(2, 3), SquareOf(0, 3), Captured, Captured, Captured},
			{SquareOf(4, 4), SquareOf(1, 4), Captured, Captured, Captured},
		},
		Hands:   [2][2]Card{{Monkey, Boar}, {Crab, Ox}},
		Reserve: Eel,
		Turn:    White,
	}
	s.Canonicalize()

	moves := s.GenerateMoves(false)
	list := moves.Moves()
	require.NotEmpty(t, list)

	prev := TierWinning
	for _, m := range list {
		tier := s.MoveTier(m)
		assert.GreaterOrEqual(t, tier, prev, "tiers out of order at %s", s.FormatMove(m))
		prev = tier
	}

	first := list[0]
	assert.Equal(t, TierWinning, s.MoveTier(first))
	assert.Equal(t, King, first.Piece())
	assert.Equal(t, BlackTemple, first.To())

	loud := s.GenerateMoves(true)
	for _, m := range loud.Moves() {
		assert.LessOrEqual(t, s.MoveTier(m), TierCapture)
	}
	assert.True(t, containsTier(&s, loud.Moves(), TierCapture))
}

func containsTier(s *State, moves []Move, tier Tier) bool {
	for _, m := range moves {
		if s.MoveTier(m) == tier {
			return true
		}
	}
	return false
}

func TestTempleThreatTier(t *testing.T) {
	// White king on c2 with Tiger jumps two ranks to c4, in front of the temple.
	s := State{
		Pieces: [2][5]Square{
			{SquareOf(2, 1), Captured, Captured, Captured, Captured},
			{SquareOf(0, 4), Captured, Captured, Captured, Captured},
		},
		Hands:   [2][2]Card{{Tiger, Crane}, {Crab, Ox}},
		Reserve: Eel,
		Turn:    White,
	}
	s.Canonicalize()

	m, err := s.ParseMove("tiger-c2c4")
	require.NoError(t, err)
	assert.Equal(t, TierThreat, s.MoveTier(m))

	back, err := s.ParseMove("tiger-c2c1")
	require.NoError(t, err)
	assert.Equal(t, TierBackward, s.MoveTier(back))
}

func TestBlackMovesAreMirrored(t *testing.T) {
	s := openingState(t)
	first := s.GenerateMoves(false)
	s = s.ApplyMove(first.Get(0))
	require.Equal(t, Black, s.Turn)

	moves := s.GenerateMoves(false)
	for _, m := range moves.Moves() {
		assert.Less(t, m.To().Rank(), Ranks-1, "black must move toward rank 1")
		assert.Equal(t, TierForward, s.MoveTier(m))
	}
}

// walk plays every line up to depth plies and calls visit on each position.
func walk(s State, depth int, visit func(State)) {
	visit(s)
	if depth == 0 || s.Result() != Undecided {
		return
	}
	moves := s.GenerateMoves(false)
	for i := 0; i < moves.Len(); i++ {
		walk(s.ApplyMove(moves.Get(i)), depth-1, visit)
	}
}

func TestMoveLegalityClosure(t *testing.T) {
	start := openingState(t)
	startCards := cardMultiset(start.Cards())

	positions := 0
	walk(start, 3, func(s State) {
		positions++

		occupied := map[Square]bool{}
		for side := White; side <= Black; side++ {
			for _, sq := range s.Pieces[side] {
				if sq == Captured {
					continue
				}
				require.True(t, IsLegal(sq), "piece on illegal square %d", sq)
				require.False(t, occupied[sq], "two pieces on %s", sq)
				occupied[sq] = true
			}
		}

		assert.Equal(t, startCards, cardMultiset(s.Cards()))

		if s.Result() == Undecided {
			moves := s.GenerateMoves(false)
			assert.LessOrEqual(t, moves.Count(), MaxMoves)
			for _, m := range moves.Moves() {
				child := s.ApplyMove(m)
				for side := White; side <= Black; side++ {
					assert.LessOrEqual(t, child.Material(side), s.Material(side))
				}
			}
		}
	})
	t.Logf("visited %d positions", positions)
}

func cardMultiset(cards [DealSize]Card) map[Card]int {
	out := map[Card]int{}
	for _, c := range cards {
		out[c]++
	}
	return out
}

func TestMoveListPromote(t *testing.T) {
	ml := NewMoveList()
	a := NewMove(SquareOf(0, 1), 1, 0)
	b := NewMove(SquareOf(1, 1), 2, 1)
	c := NewMove(SquareOf(2, 1), King, 0)
	ml.Add(a)
	ml.Add(b)
	ml.Add(c)

	require.True(t, ml.Promote(c))
	assert.Equal(t, c, ml.Get(0))
	assert.Equal(t, 4, ml.Len())
	assert.Equal(t, 3, ml.Count())
	assert.Equal(t, []Move{c, a, b}, ml.Moves())

	assert.False(t, ml.Promote(NewMove(SquareOf(4, 4), 3, 1)), "absent move")
	assert.Equal(t, 3, ml.Count())

	require.True(t, ml.Promote(b))
	assert.Equal(t, []Move{b, c, a}, ml.Moves())

	// headroom is exhausted
	assert.False(t, ml.Promote(a))
	assert.Equal(t, []Move{b, c, a}, ml.Moves())
}
