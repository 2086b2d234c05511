package board

import (
	"errors"
	"fmt"
	"strings"
)

// Card identifies one of the 16 movement cards.
type Card uint8

// Card identifiers.
const (
	Rabbit Card = iota
	Cobra
	Rooster
	Tiger
	Monkey
	Crab
	Crane
	Frog
	Boar
	Horse
	Elephant
	Ox
	Goose
	Dragon
	Mantis
	Eel
	NumCards
)

// ErrUnknownCard is returned when a card name or id is not in the catalog.
var ErrUnknownCard = errors.New("unknown card")

// offset is a (file, rank) displacement seen from the first player.
type offset struct{ df, dr int }

// CardInfo describes a card's jumps and its static power.
type CardInfo struct {
	Name  string
	Jumps []int // square deltas for the first player; negated for the second
	Power int   // canonical hand ordering only, not an evaluation term
}

var cardSource = [NumCards]struct {
	name  string
	power int
	jumps []offset
}{
	Rabbit:   {"Rabbit", 7, []offset{{-1, -1}, {1, 1}, {2, 0}}},
	Cobra:    {"Cobra", 3, []offset{{-1, 0}, {1, 1}, {1, -1}}},
	Rooster:  {"Rooster", 13, []offset{{-1, 0}, {-1, -1}, {1, 0}, {1, 1}}},
	Tiger:    {"Tiger", 15, []offset{{0, -1}, {0, 2}}},
	Monkey:   {"Monkey", 14, []offset{{-1, -1}, {-1, 1}, {1, -1}, {1, 1}}},
	Crab:     {"Crab", 10, []offset{{-2, 0}, {0, 1}, {2, 0}}},
	Crane:    {"Crane", 1, []offset{{-1, -1}, {0, 1}, {1, -1}}},
	Frog:     {"Frog", 6, []offset{{1, -1}, {-1, 1}, {-2, 0}}},
	Boar:     {"Boar", 9, []offset{{-1, 0}, {0, 1}, {1, 0}}},
	Horse:    {"Horse", 4, []offset{{-1, 0}, {0, 1}, {0, -1}}},
	Elephant: {"Elephant", 12, []offset{{-1, 1}, {-1, 0}, {1, 0}, {1, 1}}},
	Ox:       {"Ox", 5, []offset{{1, 0}, {0, 1}, {0, -1}}},
	Goose:    {"Goose", 11, []offset{{-1, 1}, {-1, 0}, {1, 0}, {1, -1}}},
	Dragon:   {"Dragon", 16, []offset{{-2, 1}, {-1, -1}, {1, -1}, {2, 1}}},
	Mantis:   {"Mantis", 8, []offset{{-1, 1}, {0, -1}, {1, 1}}},
	Eel:      {"Eel", 2, []offset{{-1, 1}, {-1, -1}, {1, 0}}},
}

// cards is the catalog built once at startup.
var cards [NumCards]CardInfo

// orientedJumps[side][card] holds the deltas as seen by side.
var orientedJumps [2][NumCards][]int

func init() {
	for id, src := range cardSource {
		info := CardInfo{Name: src.name, Power: src.power}
		for _, o := range src.jumps {
			info.Jumps = append(info.Jumps, o.df+Stride*o.dr)
		}
		cards[id] = info

		white := make([]int, len(info.Jumps))
		black := make([]int, len(info.Jumps))
		for i, d := range info.Jumps {
			white[i] = d
			black[i] = -d
		}
		orientedJumps[White][id] = white
		orientedJumps[Black][id] = black
	}
}

// Info returns the catalog entry for c.
func (c Card) Info() CardInfo {
	return cards[c]
}

// Valid reports whether c is a catalog id.
func (c Card) Valid() bool {
	return c < NumCards
}

// Jumps returns c's deltas oriented for side.
func (c Card) Jumps(side Side) []int {
	return orientedJumps[side][c]
}

// Power returns the static power used for canonical hand order.
func (c Card) Power() int {
	return cards[c].Power
}

// String returns the card's name.
func (c Card) String() string {
	if !c.Valid() {
		return fmt.Sprintf("Card(%d)", uint8(c))
	}
	return cards[c].Name
}

// CardByName looks up a card by name, ignoring case.
func CardByName(name string) (Card, error) {
	for id := Card(0); id < NumCards; id++ {
		if strings.EqualFold(cards[id].Name, name) {
			return id, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownCard, name)
}

// outranks reports whether a comes before b in canonical hand order:
// higher power first, lower id on ties.
func outranks(a, b Card) bool {
	pa, pb := cards[a].Power, cards[b].Power
	if pa != pb {
		return pa > pb
	}
	return a < b
}
