// Package protocol implements the engine's line-based control protocol.
package protocol

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hailam/onitama/internal/board"
	"github.com/hailam/onitama/internal/engine"
)

// Protocol reads commands from in and writes replies to out. Searches run
// in the background; every other command is handled on the reading
// goroutine.
type Protocol struct {
	engine *engine.Engine
	in     io.Reader

	outMu sync.Mutex
	out   io.Writer

	state   board.State
	started bool

	// Search state
	searching  bool
	searchDone chan struct{}
}

// New creates a protocol handler around eng.
func New(eng *engine.Engine, in io.Reader, out io.Writer) *Protocol {
	return &Protocol{
		engine: eng,
		in:     in,
		out:    out,
	}
}

// Run processes commands until quit or end of input. quit stops a running
// search; at end of input it is allowed to finish. Either way its bestmove
// is written before Run returns.
func (p *Protocol) Run() error {
	scanner := bufio.NewScanner(p.in)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		parts := strings.Fields(line)
		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "newgame":
			p.handleNewGame(args)
		case "move":
			p.handleMove(args)
		case "genmove":
			p.handleGenMove(args)
		case "go":
			p.handleGo(args)
		case "stop":
			p.handleStop()
		case "isready":
			p.println("readyok")
		case "setoption":
			p.handleSetOption(args)
		case "quit":
			p.handleStop()
			return nil
		// Debug commands
		case "d":
			p.handleDisplay()
		case "perft":
			p.handlePerft(args)
		default:
			log.Warn().Str("command", cmd).Msg("unknown command")
		}
	}

	p.waitSearch()
	return scanner.Err()
}

func (p *Protocol) println(a ...any) {
	p.outMu.Lock()
	defer p.outMu.Unlock()
	fmt.Fprintln(p.out, a...)
}

func (p *Protocol) printf(format string, a ...any) {
	p.outMu.Lock()
	defer p.outMu.Unlock()
	fmt.Fprintf(p.out, format, a...)
}

// handleNewGame deals a new game: two cards each for the first and second
// player, then the reserve.
func (p *Protocol) handleNewGame(args []string) {
	p.handleStop()

	deal := make([]board.Card, 0, len(args))
	for _, name := range args {
		c, err := board.CardByName(name)
		if err != nil {
			log.Warn().Err(err).Msg("newgame rejected")
			return
		}
		deal = append(deal, c)
	}
	s, err := board.StartingState(deal)
	if err != nil {
		log.Warn().Err(err).Msg("newgame rejected")
		return
	}

	p.engine.Clear()
	p.state = s
	p.started = true
	log.Debug().Str("deal", strings.Join(args, " ")).Msg("new game")
}

// handleMove applies a move in card-from-to notation.
func (p *Protocol) handleMove(args []string) {
	if !p.requireGame() {
		return
	}
	if len(args) != 1 {
		log.Warn().Strs("args", args).Msg("move needs exactly one argument")
		return
	}
	p.handleStop()

	m, err := p.state.ParseMove(args[0])
	if err != nil {
		log.Warn().Err(err).Msg("move rejected")
		return
	}
	next, err := p.state.Play(m)
	if err != nil {
		log.Warn().Err(err).Msg("move rejected")
		return
	}
	p.state = next
}

// handleGenMove searches for the given number of milliseconds.
func (p *Protocol) handleGenMove(args []string) {
	if len(args) != 1 {
		log.Warn().Strs("args", args).Msg("genmove needs a time in milliseconds")
		return
	}
	ms, err := strconv.Atoi(args[0])
	if err != nil || ms <= 0 {
		log.Warn().Str("time", args[0]).Msg("genmove: bad time")
		return
	}
	p.startSearch(engine.SearchLimits{MoveTime: time.Duration(ms) * time.Millisecond})
}

// handleGo starts a search limited by depth and/or movetime.
func (p *Protocol) handleGo(args []string) {
	limits, err := parseGoOptions(args)
	if err != nil {
		log.Warn().Err(err).Msg("go rejected")
		return
	}
	p.startSearch(limits)
}

// parseGoOptions parses "go" command arguments.
func parseGoOptions(args []string) (engine.SearchLimits, error) {
	var limits engine.SearchLimits

	for i := 0; i < len(args); i++ {
		if i+1 >= len(args) {
			return limits, fmt.Errorf("missing value for %q", args[i])
		}
		n, err := strconv.Atoi(args[i+1])
		if err != nil || n < 0 {
			return limits, fmt.Errorf("bad value for %q: %q", args[i], args[i+1])
		}
		switch args[i] {
		case "depth":
			limits.Depth = n
		case "movetime":
			limits.MoveTime = time.Duration(n) * time.Millisecond
		default:
			return limits, fmt.Errorf("unknown option %q", args[i])
		}
		i++
	}

	return limits, nil
}

// startSearch runs a search on a copy of the current position in the
// background and reports its result.
func (p *Protocol) startSearch(limits engine.SearchLimits) {
	if !p.requireGame() {
		return
	}
	p.handleStop()

	s := p.state
	if winner, ok := s.Result().Winner(); ok {
		if winner == s.Turn {
			p.println("bestmove win")
		} else {
			p.println("bestmove loss")
		}
		return
	}

	p.engine.OnInfo = func(info engine.SearchInfo) {
		p.sendInfo(&s, info)
	}

	// A stop read before the goroutine reaches the engine must still count.
	p.engine.ResetStop()
	p.searching = true
	p.searchDone = make(chan struct{})

	go func() {
		defer close(p.searchDone)

		res := p.engine.ComputeBestMove(context.Background(), s, limits)
		log.Debug().
			Int("depth", res.Depth).
			Uint64("nodes", res.Nodes).
			Dur("elapsed", res.Elapsed).
			Bool("stopped", res.Stopped).
			Msg("search finished")
		p.printf("bestmove %s\n", s.FormatMove(res.Move))
	}()
}

// sendInfo outputs one completed iteration.
func (p *Protocol) sendInfo(s *board.State, info engine.SearchInfo) {
	p.printf("info depth %d nodes %d score %d time %d pv %s\n",
		info.Depth, info.Nodes, info.Score, info.Time.Milliseconds(), s.FormatMove(info.Move))
}

// handleStop stops the current search and waits for its bestmove.
func (p *Protocol) handleStop() {
	if p.searching {
		p.engine.Stop()
		p.waitSearch()
	}
}

func (p *Protocol) waitSearch() {
	if p.searching {
		<-p.searchDone
		p.searching = false
	}
}

// handleSetOption processes "setoption name <name> value <value>".
func (p *Protocol) handleSetOption(args []string) {
	var name, value string
	readingName := false
	readingValue := false

	for _, arg := range args {
		switch arg {
		case "name":
			readingName = true
			readingValue = false
		case "value":
			readingName = false
			readingValue = true
		default:
			if readingName {
				if name != "" {
					name += " "
				}
				name += arg
			} else if readingValue {
				if value != "" {
					value += " "
				}
				value += arg
			}
		}
	}

	p.handleStop()

	switch strings.ToLower(name) {
	case "jitter":
		j, err := strconv.Atoi(value)
		if err != nil || j < 0 {
			log.Warn().Str("value", value).Msg("setoption Jitter: bad value")
			return
		}
		p.engine.SetJitter(j)
	case "killers":
		on, err := strconv.ParseBool(value)
		if err != nil {
			log.Warn().Str("value", value).Msg("setoption Killers: bad value")
			return
		}
		p.engine.SetKillers(on)
	case "orderingcache":
		on, err := strconv.ParseBool(value)
		if err != nil {
			log.Warn().Str("value", value).Msg("setoption OrderingCache: bad value")
			return
		}
		p.engine.SetOrderingCache(on)
	case "hash":
		mb, err := strconv.Atoi(value)
		if err != nil || mb < 1 {
			log.Warn().Str("value", value).Msg("setoption Hash: bad value")
			return
		}
		p.engine.ResizeCache(mb)
	default:
		log.Warn().Str("name", name).Msg("unknown option")
		return
	}
	log.Debug().Str("name", name).Str("value", value).Msg("option set")
}

// handleDisplay prints the current position.
func (p *Protocol) handleDisplay() {
	if !p.requireGame() {
		return
	}
	p.printf("%s", p.state.String())
}

// handlePerft runs a perft test.
func (p *Protocol) handlePerft(args []string) {
	if !p.requireGame() {
		return
	}
	depth := 3
	if len(args) > 0 {
		d, err := strconv.Atoi(args[0])
		if err != nil || d < 0 {
			log.Warn().Str("depth", args[0]).Msg("perft: bad depth")
			return
		}
		depth = d
	}

	start := time.Now()
	nodes := board.Perft(p.state, depth)
	elapsed := time.Since(start)

	p.printf("nodes %d time %d\n", nodes, elapsed.Milliseconds())
}

func (p *Protocol) requireGame() bool {
	if !p.started {
		log.Warn().Msg("no game in progress; send newgame first")
	}
	return p.started
}
