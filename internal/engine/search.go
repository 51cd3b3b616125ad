package engine

import (
	"sync/atomic"

	"github.com/hailam/chesscore/internal/board"
	"github.com/hailam/chesscore/internal/config"
	"github.com/hailam/chesscore/internal/game"
)

// Search constants.
const (
	Infinity  = 30000
	MateScore = 29000
	MaxPly    = 128
)

// PVTable stores the principal variation extracted from the last search.
type PVTable struct {
	length [MaxPly]int
	moves  [MaxPly][MaxPly]board.Move
}

// Searcher performs one iterative-deepening negamax search from a given
// root position, consulting the shared transposition table and move
// orderer and updating the shared game history as it walks the tree so
// that repetitions reached only during search are detected exactly like
// repetitions reached during play.
type Searcher struct {
	pos     *board.Position
	tt      *TranspositionTable
	orderer *MoveOrderer
	cfg     *config.Params
	history *game.History

	nodes    uint64
	stopFlag atomic.Bool

	pv PVTable

	undoStack [MaxPly]board.UndoInfo
}

// NewSearcher creates a new searcher sharing tt, cfg, and history with
// the owning engine.
func NewSearcher(tt *TranspositionTable, cfg *config.Params, history *game.History) *Searcher {
	return &Searcher{
		tt:      tt,
		orderer: NewMoveOrderer(),
		cfg:     cfg,
		history: history,
	}
}

// Stop signals the search to abandon its current iteration.
func (s *Searcher) Stop() {
	s.stopFlag.Store(true)
}

// IsStopped reports whether Stop has been called since the searcher was
// last reset. Node and time limits are checked by the engine between
// iterations and do not set this flag.
func (s *Searcher) IsStopped() bool {
	return s.stopFlag.Load()
}

// ClearOrderer resets the move orderer's killers and halves its history
// scores, as when starting a new game.
func (s *Searcher) ClearOrderer() {
	s.orderer.Clear()
}

// Reset prepares the searcher for a new search from scratch.
func (s *Searcher) Reset() {
	s.stopFlag.Store(false)
	s.nodes = 0
	s.orderer.Clear()
}

// Nodes returns the number of nodes visited in the last search.
func (s *Searcher) Nodes() uint64 {
	return s.nodes
}

// Search runs negamax to a fixed depth from pos and returns the best
// move found along with its score.
func (s *Searcher) Search(pos *board.Position, depth int) (board.Move, int) {
	s.pos = pos.Copy()
	s.Reset()

	score := s.negamax(depth, 0, -Infinity, Infinity)

	var bestMove board.Move
	if s.pv.length[0] > 0 {
		bestMove = s.pv.moves[0][0]
	}
	return bestMove, score
}

func (s *Searcher) makeMove(m board.Move) board.UndoInfo {
	undo := s.pos.MakeMove(m)
	if undo.Valid {
		s.history.Push(s.pos.Hash)
	}
	return undo
}

func (s *Searcher) unmakeMove(m board.Move, undo board.UndoInfo) {
	s.pos.UnmakeMove(m, undo)
	if undo.Valid {
		s.history.Pop()
	}
}

// negamax implements negamax with alpha-beta pruning and a transposition
// table. Checkmate and stalemate are scored before the horizon is
// reached; at the horizon it returns the static evaluation, or, when
// search_until_no_captures is set, the quiescence search result.
func (s *Searcher) negamax(depth, ply int, alpha, beta int) int {
	if s.nodes&4095 == 0 && s.stopFlag.Load() {
		return 0
	}
	s.nodes++
	s.pv.length[ply] = ply

	if ply > 0 && s.isDraw() {
		return 0
	}

	var ttMove board.Move
	ttEntry, found := s.tt.Probe(s.pos.Hash)
	if found {
		ttMove = ttEntry.BestMove
		if int(ttEntry.Depth) >= depth {
			score := AdjustScoreFromTT(int(ttEntry.Score), ply)
			switch ttEntry.Flag {
			case TTExact:
				return score
			case TTLowerBound:
				if score > alpha {
					alpha = score
				}
			case TTUpperBound:
				if score < beta {
					beta = score
				}
			}
			if alpha >= beta {
				return score
			}
		}
	}

	inCheck := s.pos.InCheck()
	moves := s.pos.GenerateLegalMoves()

	if moves.Len() == 0 {
		if inCheck {
			return MateScoreForPly(ply)
		}
		return 0
	}

	if depth <= 0 {
		if !s.cfg.SearchUntilNoCaptures() {
			return Evaluate(s.pos)
		}
		return s.quiescence(ply, alpha, beta)
	}

	scores := s.orderer.ScoreMoves(s.pos, moves, ply, ttMove)

	bestScore := -Infinity
	bestMove := board.NoMove
	flag := TTUpperBound

	for i := 0; i < moves.Len(); i++ {
		PickMove(moves, scores, i)
		move := moves.Get(i)

		s.undoStack[ply] = s.makeMove(move)
		if !s.undoStack[ply].Valid {
			continue
		}

		score := -s.negamax(depth-1, ply+1, -beta, -alpha)

		s.unmakeMove(move, s.undoStack[ply])

		if s.stopFlag.Load() {
			return 0
		}

		if score > bestScore {
			bestScore = score
			bestMove = move

			if score > alpha {
				alpha = score
				flag = TTExact

				s.pv.moves[ply][ply] = move
				for j := ply + 1; j < s.pv.length[ply+1]; j++ {
					s.pv.moves[ply][j] = s.pv.moves[ply+1][j]
				}
				s.pv.length[ply] = s.pv.length[ply+1]
			}
		}

		if s.cfg.UsePruning() && score >= beta {
			s.tt.Store(s.pos.Hash, depth, AdjustScoreToTT(score, ply), TTLowerBound, bestMove)

			if !move.IsCapture() {
				s.orderer.UpdateKillers(move, ply)
				s.orderer.UpdateHistory(move, depth, true)
			}
			return score
		}
	}

	s.tt.Store(s.pos.Hash, depth, AdjustScoreToTT(bestScore, ply), flag, bestMove)
	return bestScore
}

// quiescence searches captures and promotions only, to avoid evaluating
// a position in the middle of an exchange (the horizon effect).
func (s *Searcher) quiescence(ply int, alpha, beta int) int {
	const maxQuiescencePly = 32
	if ply >= MaxPly {
		return Evaluate(s.pos)
	}
	if !s.cfg.SearchUntilNoCaptures() && ply > maxQuiescencePly {
		return Evaluate(s.pos)
	}

	if s.stopFlag.Load() {
		return 0
	}
	s.nodes++

	standPat := Evaluate(s.pos)
	if standPat >= beta {
		return beta
	}
	if standPat > alpha {
		alpha = standPat
	}

	bigDelta := QueenValue
	if standPat+bigDelta < alpha {
		return alpha
	}

	moves := s.pos.GenerateCaptures()
	scores := s.orderer.ScoreMoves(s.pos, moves, ply, board.NoMove)

	for i := 0; i < moves.Len(); i++ {
		PickMove(moves, scores, i)
		move := moves.Get(i)

		if !s.pos.InCheck() {
			var captureValue int
			if move.IsEnPassant() {
				captureValue = PawnValue
			} else if captured := s.pos.PieceAt(move.To()); captured != board.NoPiece {
				captureValue = pieceValues[captured.Type()]
			}
			if move.IsPromotion() {
				captureValue += QueenValue - PawnValue
			}
			if standPat+captureValue+200 < alpha {
				continue
			}
		}

		undo := s.makeMove(move)
		if !undo.Valid {
			continue
		}

		score := -s.quiescence(ply+1, -beta, -alpha)
		s.unmakeMove(move, undo)

		if score >= beta {
			return beta
		}
		if score > alpha {
			alpha = score
		}
	}

	return alpha
}

// isDraw reports whether the current position is a draw by the 50-move
// rule, insufficient material, or threefold repetition (tracked across
// the game history plus every move made so far in this search).
func (s *Searcher) isDraw() bool {
	if s.pos.HalfMoveClock >= 100 {
		return true
	}
	if s.pos.IsInsufficientMaterial() {
		return true
	}
	return s.history.IsThreefoldRepetition()
}

// GetPV returns the principal variation from the last search.
func (s *Searcher) GetPV() []board.Move {
	pv := make([]board.Move, s.pv.length[0])
	copy(pv, s.pv.moves[0][:s.pv.length[0]])
	return pv
}
