package match

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/hailam/onitama/internal/board"
)

// ResultString returns "1-0", "0-1" or "1/2-1/2".
func (g *GameRecord) ResultString() string {
	switch g.Outcome {
	case board.WhiteWins:
		return "1-0"
	case board.BlackWins:
		return "0-1"
	}
	return "1/2-1/2"
}

// WritePGN writes the games as PGN-style records.
func WritePGN(w io.Writer, games []GameRecord, event string, date time.Time) error {
	for _, g := range games {
		opening := make([]string, len(g.Deal))
		for i, c := range g.Deal {
			opening[i] = strings.ToLower(c.String())
		}

		_, err := fmt.Fprintf(w,
			"[Event %q]\n[Date %q]\n[White %q]\n[Black %q]\n[Opening %q]\n[Plycount \"%d\"]\n[Result %q]\n\n%s\n\n",
			event, date.Format("2006.01.02"), g.White, g.Black,
			strings.Join(opening, " "), len(g.Moves), g.ResultString(),
			strings.Join(g.Moves, " "))
		if err != nil {
			return err
		}
	}
	return nil
}
