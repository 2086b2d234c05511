package board

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartingState(t *testing.T) {
	s := openingState(t)

	assert.Equal(t, White, s.Turn)
	assert.Equal(t, SquareOf(2, 0), s.Pieces[White][King])
	assert.Equal(t, SquareOf(2, 4), s.Pieces[Black][King])
	assert.Equal(t, [5]Square{SquareOf(2, 0), SquareOf(0, 0), SquareOf(1, 0), SquareOf(3, 0), SquareOf(4, 0)}, s.Pieces[White])
	assert.Equal(t, [2]Card{Rabbit, Cobra}, s.Hands[White])
	assert.Equal(t, [2]Card{Dragon, Tiger}, s.Hands[Black])
	assert.Equal(t, Monkey, s.Reserve)
	assert.Equal(t, Undecided, s.Result())

	t.Log("\n" + s.String())
}

func TestStartingStateRejectsBadDeals(t *testing.T) {
	tests := []struct {
		name string
		deal []Card
	}{
		{"too few", []Card{Rabbit, Cobra, Dragon, Tiger}},
		{"too many", []Card{Rabbit, Cobra, Dragon, Tiger, Monkey, Eel}},
		{"duplicate", []Card{Rabbit, Cobra, Dragon, Tiger, Rabbit}},
		{"out of range", []Card{Rabbit, Cobra, Dragon, Tiger, NumCards}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := StartingState(tc.deal)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidDeal))
		})
	}
}

func TestCanonicalize(t *testing.T) {
	s := State{
		Pieces: [2][5]Square{
			{SquareOf(2, 0), Captured, SquareOf(4, 2), SquareOf(0, 1), SquareOf(3, 1)},
			{SquareOf(2, 4), SquareOf(4, 4), Captured, SquareOf(0, 4), Captured},
		},
		Hands:   [2][2]Card{{Crane, Dragon}, {Tiger, Eel}},
		Reserve: Ox,
		Turn:    Black,
	}
	before := s.Result()

	once := s
	once.Canonicalize()
	twice := once
	twice.Canonicalize()

	assert.Equal(t, once, twice, "canonicalize must be idempotent")
	assert.Equal(t, before, once.Result())
	assert.Equal(t, [5]Square{SquareOf(2, 0), SquareOf(0, 1), SquareOf(3, 1), SquareOf(4, 2), Captured}, once.Pieces[White])
	assert.Equal(t, [5]Square{SquareOf(2, 4), SquareOf(0, 4), SquareOf(4, 4), Captured, Captured}, once.Pieces[Black])
	assert.Equal(t, [2]Card{Dragon, Crane}, once.Hands[White])
	assert.Equal(t, [2]Card{Tiger, Eel}, once.Hands[Black])

	// Same squares and cards, different slots.
	shuffled := s
	shuffled.Pieces[White][1], shuffled.Pieces[White][4] = shuffled.Pieces[White][4], shuffled.Pieces[White][1]
	shuffled.Hands[White][0], shuffled.Hands[White][1] = shuffled.Hands[White][1], shuffled.Hands[White][0]
	shuffled.Canonicalize()
	assert.Equal(t, once, shuffled)
	assert.Equal(t, once.Hash(), shuffled.Hash())
}

func TestMovesDoNotDependOnHandSlots(t *testing.T) {
	s := openingState(t)
	swapped := s
	swapped.Hands[White][0], swapped.Hands[White][1] = swapped.Hands[White][1], swapped.Hands[White][0]

	a := s.GenerateMoves(false)
	b := swapped.GenerateMoves(false)
	require.Equal(t, a.Moves(), b.Moves())

	for _, m := range a.Moves() {
		assert.Equal(t, s.CardFor(m), swapped.CardFor(m))
		assert.Equal(t, s.ApplyMove(m), swapped.ApplyMove(m))
	}
}

func TestApplyMove(t *testing.T) {
	s := openingState(t)
	m, err := s.ParseMove("rabbit-a1b2")
	require.NoError(t, err)

	child := s.ApplyMove(m)

	// The parent is untouched.
	assert.Equal(t, openingState(t), s)

	assert.Equal(t, Black, child.Turn)
	assert.Equal(t, Rabbit, child.Reserve)
	assert.ElementsMatch(t, []Card{Monkey, Cobra}, child.Hands[White][:])
	assert.Equal(t, [2]Card{Monkey, Cobra}, child.Hands[White])
	_, _, ok := child.PieceAt(SquareOf(1, 1))
	assert.True(t, ok)
	_, _, ok = child.PieceAt(SquareOf(0, 0))
	assert.False(t, ok)
}

func TestApplyMoveCaptures(t *testing.T) {
	s := State{
		Pieces: [2][5]Square{
			{SquareOf(2, 0), SquareOf(1, 2), Captured, Captured, Captured},
			{SquareOf(2, 4), SquareOf(2, 3), Captured, Captured, Captured},
		},
		Hands:   [2][2]Card{{Monkey, Crane}, {Boar, Ox}},
		Reserve: Eel,
		Turn:    White,
	}
	s.Canonicalize()

	m, err := s.ParseMove("monkey-b3c4")
	require.NoError(t, err)
	assert.Equal(t, TierCapture, s.MoveTier(m))

	child := s.ApplyMove(m)
	assert.Equal(t, 1, child.Material(Black))
	assert.Equal(t, 2, child.Material(White))
	assert.Equal(t, Undecided, child.Result())

	// Black's king on c5 now faces the pawn on c4 and can take it with Boar.
	take, err := child.ParseMove("boar-c5c4")
	require.NoError(t, err)
	assert.Equal(t, TierCapture, child.MoveTier(take))
}

func TestResult(t *testing.T) {
	base := State{
		Pieces: [2][5]Square{
			{SquareOf(2, 0), Captured, Captured, Captured, Captured},
			{SquareOf(2, 4), Captured, Captured, Captured, Captured},
		},
		Hands:   [2][2]Card{{Monkey, Crane}, {Boar, Ox}},
		Reserve: Eel,
	}

	tests := []struct {
		name  string
		white Square
		black Square
		want  Outcome
	}{
		{"start", SquareOf(2, 0), SquareOf(2, 4), Undecided},
		{"white king captured", Captured, SquareOf(1, 1), BlackWins},
		{"black king captured", SquareOf(1, 1), Captured, WhiteWins},
		{"white on temple", BlackTemple, SquareOf(0, 0), WhiteWins},
		{"black on temple", SquareOf(4, 4), WhiteTemple, BlackWins},
		{"capture checked first", Captured, WhiteTemple, BlackWins},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := base
			s.Pieces[White][King] = tc.white
			s.Pieces[Black][King] = tc.black
			assert.Equal(t, tc.want, s.Result())
		})
	}
}

func TestPlayRejectsIllegalMoves(t *testing.T) {
	s := openingState(t)

	_, err := s.Play(NewMove(SquareOf(2, 2), King, 0))
	assert.True(t, errors.Is(err, ErrIllegalMove))

	_, err = s.ParseMove("tiger-c1c3")
	assert.True(t, errors.Is(err, ErrIllegalMove), "tiger is black's card")

	_, err = s.ParseMove("unicorn-c1c3")
	assert.True(t, errors.Is(err, ErrUnknownCard))
}

func TestNotationRoundTrip(t *testing.T) {
	s := openingState(t)
	moves := s.GenerateMoves(false)
	for _, m := range moves.Moves() {
		text := s.FormatMove(m)
		parsed, err := s.ParseMove(text)
		require.NoError(t, err, text)
		assert.Equal(t, m, parsed, text)
	}
}

func TestSquareGeometry(t *testing.T) {
	legal := 0
	for i := 0; i < BoardSize; i++ {
		if IsLegal(Square(i)) {
			legal++
		}
	}
	assert.Equal(t, 25, legal)
	assert.False(t, IsLegal(Captured))
	assert.False(t, IsLegal(Square(5)))
	assert.Equal(t, SquareOf(4, 4), SquareOf(0, 0).Mirror())
	assert.Equal(t, SquareOf(2, 2), SquareOf(2, 2).Mirror())
	assert.Equal(t, "c1", WhiteTemple.String())

	sq, err := ParseSquare("e5")
	require.NoError(t, err)
	assert.Equal(t, SquareOf(4, 4), sq)
	_, err = ParseSquare("f1")
	assert.Error(t, err)
}

func TestCardCatalog(t *testing.T) {
	powers := map[int]bool{}
	for c := Card(0); c < NumCards; c++ {
		info := c.Info()
		assert.NotEmpty(t, info.Name)
		assert.GreaterOrEqual(t, len(info.Jumps), 2)
		assert.LessOrEqual(t, len(info.Jumps), 4)
		assert.False(t, powers[info.Power], "duplicate power on %s", c)
		powers[info.Power] = true

		byName, err := CardByName(info.Name)
		require.NoError(t, err)
		assert.Equal(t, c, byName)

		for i, d := range c.Jumps(Black) {
			assert.Equal(t, -c.Jumps(White)[i], d)
		}
	}
	assert.Equal(t, []int{-8, 16}, Tiger.Jumps(White))
}
