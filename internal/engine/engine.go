package engine

import (
	"time"

	"github.com/hailam/chesscore/internal/board"
	"github.com/hailam/chesscore/internal/config"
	"github.com/hailam/chesscore/internal/game"
)

// SearchInfo contains information about the current search, reported to
// OnInfo after every completed iterative-deepening depth.
type SearchInfo struct {
	Depth    int
	Score    int
	Nodes    uint64
	Time     time.Duration
	PV       []board.Move
	HashFull int // Permille of hash table used
}

// SearchLimits specifies constraints on the search.
type SearchLimits struct {
	Depth    int           // Maximum depth (0 = no limit, capped by max_search_depth)
	Nodes    uint64        // Maximum nodes (0 = no limit)
	MoveTime time.Duration // Time for this move (0 = no limit)
	Infinite bool          // Search until stopped
}

// SearchResult contains the result of a completed search.
type SearchResult struct {
	Move  board.Move
	Score int
	PV    []board.Move
	Depth int
}

// Engine drives one searcher through an iterative-deepening loop over a
// shared transposition table, configuration, and game history.
type Engine struct {
	tt       *TranspositionTable
	cfg      *config.Params
	history  *game.History
	searcher *Searcher

	// Callbacks
	OnInfo func(SearchInfo)
}

// NewEngine creates a new chess engine with the given transposition table
// size in MB and default configuration.
func NewEngine(ttSizeMB int) *Engine {
	tt := NewTranspositionTable(ttSizeMB)
	cfg := config.New()
	history := game.NewHistory()

	return &Engine{
		tt:       tt,
		cfg:      cfg,
		history:  history,
		searcher: NewSearcher(tt, cfg, history),
	}
}

// Config returns the engine's configuration store, so a UCI layer can
// read its options for "uci" and write them for "setoption".
func (e *Engine) Config() *config.Params {
	return e.cfg
}

// SetPositionHistory resets the game history to the given sequence of
// position hashes (oldest first), so repetition detection sees the game
// as it was actually played up to the current root position. Called
// before Search() whenever the root position is set from a move list.
func (e *Engine) SetPositionHistory(hashes []uint64) {
	e.history.Reset(hashes)
}

// SearchWithLimits finds the best move for pos within limits, using
// iterative deepening from depth 2 (or the depth cap, if lower) up to the smaller of limits.Depth and
// the configured max_search_depth (or straight to max_search_depth if
// use_incremental_search is disabled).
func (e *Engine) SearchWithLimits(pos *board.Position, limits SearchLimits) board.Move {
	result := e.searchWithLimits(pos, limits)
	return result.Move
}

// Search runs a full iterative-deepening search and returns the complete
// result (move, score, PV, depth reached), for callers that want more
// than just the best move.
func (e *Engine) Search(pos *board.Position, limits SearchLimits) SearchResult {
	return e.searchWithLimits(pos, limits)
}

func (e *Engine) searchWithLimits(pos *board.Position, limits SearchLimits) SearchResult {
	e.searcher.Reset()
	e.tt.NewSearch()

	startTime := time.Now()

	maxDepth := e.cfg.MaxSearchDepth()
	if limits.Depth > 0 && limits.Depth < maxDepth {
		maxDepth = limits.Depth
	}

	var deadline time.Time
	if limits.MoveTime > 0 {
		deadline = startTime.Add(limits.MoveTime)
	}

	var result SearchResult

	firstDepth := 2
	if firstDepth > maxDepth {
		firstDepth = maxDepth
	}
	if !e.cfg.UseIncrementalSearch() {
		firstDepth = maxDepth
	}

	for depth := firstDepth; depth <= maxDepth; depth++ {
		move, score := e.searcher.Search(pos, depth)

		if e.searcher.IsStopped() && depth > firstDepth {
			break
		}

		if move != board.NoMove {
			result = SearchResult{
				Move:  move,
				Score: score,
				PV:    e.searcher.GetPV(),
				Depth: depth,
			}

			if e.OnInfo != nil {
				e.OnInfo(SearchInfo{
					Depth:    result.Depth,
					Score:    result.Score,
					Nodes:    e.searcher.Nodes(),
					Time:     time.Since(startTime),
					PV:       result.PV,
					HashFull: e.tt.HashFull(),
				})
			}
		}

		if score > MateScore-100 || score < -MateScore+100 {
			break
		}

		if limits.Nodes > 0 && e.searcher.Nodes() >= limits.Nodes {
			break
		}

		if !deadline.IsZero() {
			elapsed := time.Since(startTime)
			remaining := limits.MoveTime - elapsed
			// Not enough time left to expect the next iteration to finish.
			if remaining < elapsed/2 {
				break
			}
		}

		if e.searcher.IsStopped() {
			break
		}
	}

	return result
}

// Stop stops the current search.
func (e *Engine) Stop() {
	e.searcher.Stop()
}

// Clear clears the transposition table, the move orderer's killers and
// the game history, and halves the orderer's history scores, as when a
// UCI client sends "ucinewgame".
func (e *Engine) Clear() {
	e.tt.Clear()
	e.searcher.ClearOrderer()
	e.history.Clear()
}

// Perft performs a perft test (for debugging move generation).
func (e *Engine) Perft(pos *board.Position, depth int) uint64 {
	if depth == 0 {
		return 1
	}

	moves := pos.GenerateLegalMoves()
	if depth == 1 {
		return uint64(moves.Len())
	}

	var nodes uint64
	for i := 0; i < moves.Len(); i++ {
		move := moves.Get(i)
		undo := pos.MakeMove(move)
		nodes += e.Perft(pos, depth-1)
		pos.UnmakeMove(move, undo)
	}

	return nodes
}

// Evaluate returns the static evaluation of a position.
func (e *Engine) Evaluate(pos *board.Position) int {
	return Evaluate(pos)
}

// ScoreToString converts a score to a human-readable string.
func ScoreToString(score int) string {
	if score > MateScore-100 {
		mateIn := (MateScore - score + 1) / 2
		return "Mate in " + itoa(mateIn)
	}
	if score < -MateScore+100 {
		mateIn := (MateScore + score + 1) / 2
		return "Mated in " + itoa(mateIn)
	}

	// Convert centipawns to pawns
	sign := ""
	if score < 0 {
		sign = "-"
		score = -score
	}
	pawns := score / 100
	centipawns := score % 100

	return sign + itoa(pawns) + "." + itoa(centipawns)
}

// Simple integer to string (avoid fmt import)
func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	if n < 0 {
		return "-" + itoa(-n)
	}
	s := ""
	for n > 0 {
		s = string('0'+byte(n%10)) + s
		n /= 10
	}
	return s
}
