// Package engine implements the chess AI search engine.
package engine

import (
	"github.com/hailam/chesscore/internal/board"
)

// Evaluation constants, in centipawns.
const (
	PawnValue   = 100
	KnightValue = 320
	BishopValue = 330
	RookValue   = 500
	QueenValue  = 900
	KingValue   = 20000
)

var pieceValues = [7]int{PawnValue, KnightValue, BishopValue, RookValue, QueenValue, KingValue, 0}

const (
	centralSquarePawnBonus = 10 // Pawn on d4/d5/e4/e5
	isolatedPawnPenalty    = 12 // No friendly pawn on an adjacent file
	centralAttackBonus     = 6 // Per net attack on d4/d5/e4/e5
	minorDevelopedBonus    = 8 // Per minor piece off its starting square
	castledBonus           = 30
)

var centerSquares = board.Center // d4, d5, e4, e5

// Evaluate returns a static score for pos from the side-to-move's
// perspective, as negamax requires: the signed sum of material, pawn
// structure, central control, development, and castling terms, computed
// from White's perspective and then negated for Black to move. Checkmate,
// stalemate, and the 50-move/repetition draws are handled by negamax in
// search.go before it calls Evaluate; the quiescence search uses
// Evaluate as its stand-pat score without that check.
func Evaluate(pos *board.Position) int {
	score := evaluateMaterial(pos)
	score += evaluatePawnStructure(pos)
	score += evaluateCentralControl(pos)
	score += evaluateDevelopment(pos)
	score += evaluateCastling(pos)
	if pos.SideToMove == board.Black {
		return -score
	}
	return score
}

func evaluateMaterial(pos *board.Position) int {
	score := 0
	for pt := board.Pawn; pt < board.King; pt++ {
		score += pos.Pieces[board.White][pt].PopCount() * pieceValues[pt]
		score -= pos.Pieces[board.Black][pt].PopCount() * pieceValues[pt]
	}
	return score
}

func evaluatePawnStructure(pos *board.Position) int {
	score := 0
	score += centralPawnScore(pos.Pieces[board.White][board.Pawn])
	score -= centralPawnScore(pos.Pieces[board.Black][board.Pawn])
	score -= isolatedPawnPenalty * countIsolatedPawns(pos.Pieces[board.White][board.Pawn])
	score += isolatedPawnPenalty * countIsolatedPawns(pos.Pieces[board.Black][board.Pawn])
	return score
}

func centralPawnScore(pawns board.Bitboard) int {
	return (pawns & centerSquares).PopCount() * centralSquarePawnBonus
}

func countIsolatedPawns(pawns board.Bitboard) int {
	count := 0
	bb := pawns
	for bb != 0 {
		sq := bb.PopLSB()
		file := sq.File()
		var neighbors board.Bitboard
		if file > 0 {
			neighbors |= board.FileMask[file-1]
		}
		if file < 7 {
			neighbors |= board.FileMask[file+1]
		}
		if pawns&neighbors == 0 {
			count++
		}
	}
	return count
}

func evaluateCentralControl(pos *board.Position) int {
	whiteAttacks, blackAttacks := 0, 0
	var sq board.Square
	for sq = 0; sq < 64; sq++ {
		if centerSquares&board.SquareBB(sq) == 0 {
			continue
		}
		whiteAttacks += pos.AttackersByColor(sq, board.White, pos.AllOccupied).PopCount()
		blackAttacks += pos.AttackersByColor(sq, board.Black, pos.AllOccupied).PopCount()
	}
	return (whiteAttacks - blackAttacks) * centralAttackBonus
}

func evaluateDevelopment(pos *board.Position) int {
	whiteDeveloped := countDeveloped(pos.Pieces[board.White][board.Knight], whiteMinorStart(board.Knight)) +
		countDeveloped(pos.Pieces[board.White][board.Bishop], whiteMinorStart(board.Bishop))
	blackDeveloped := countDeveloped(pos.Pieces[board.Black][board.Knight], blackMinorStart(board.Knight)) +
		countDeveloped(pos.Pieces[board.Black][board.Bishop], blackMinorStart(board.Bishop))
	return (whiteDeveloped - blackDeveloped) * minorDevelopedBonus
}

func countDeveloped(pieces board.Bitboard, startSquares board.Bitboard) int {
	return int(pieces.PopCount()) - (pieces & startSquares).PopCount()
}

func whiteMinorStart(pt board.PieceType) board.Bitboard {
	if pt == board.Knight {
		return board.SquareBB(board.B1) | board.SquareBB(board.G1)
	}
	return board.SquareBB(board.C1) | board.SquareBB(board.F1)
}

func blackMinorStart(pt board.PieceType) board.Bitboard {
	if pt == board.Knight {
		return board.SquareBB(board.B8) | board.SquareBB(board.G8)
	}
	return board.SquareBB(board.C8) | board.SquareBB(board.F8)
}

// evaluateCastling rewards a king that has already castled (off the
// e-file, on its original rank, with the rook it castled with now beside
// it) over one still sitting on its own castling rights.
func evaluateCastling(pos *board.Position) int {
	score := 0
	if hasCastled(pos, board.White, board.E1, board.G1, board.C1, board.F1, board.D1) {
		score += castledBonus
	}
	if hasCastled(pos, board.Black, board.E8, board.G8, board.C8, board.F8, board.D8) {
		score -= castledBonus
	}
	return score
}

func hasCastled(pos *board.Position, us board.Color, startKing, kingsideKing, queensideKing, kingsideRook, queensideRook board.Square) bool {
	ksq := pos.KingSquare[us]
	if ksq == kingsideKing {
		return pos.PieceAt(kingsideRook) == board.NewPiece(board.Rook, us)
	}
	if ksq == queensideKing {
		return pos.PieceAt(queensideRook) == board.NewPiece(board.Rook, us)
	}
	return false
}

// MateScoreForPly returns the mate score to report when the side to move
// has no legal moves and is in check, adjusted so that a shorter mate
// scores higher in magnitude than a longer one.
func MateScoreForPly(ply int) int {
	return -(MateScore - ply)
}
