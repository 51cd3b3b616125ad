package engine

import (
	"testing"

	"github.com/hailam/chesscore/internal/board"
)

// TestEvaluateSymmetricPositionIsZero checks that a materially and
// structurally balanced position evaluates to zero, regardless of whose
// move it is.
func TestEvaluateSymmetricPositionIsZero(t *testing.T) {
	for _, fen := range []string{board.StartFEN, "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR b KQkq - 0 1"} {
		pos, err := board.ParseFEN(fen)
		if err != nil {
			t.Fatalf("ParseFEN(%q): %v", fen, err)
		}
		if got := Evaluate(pos); got != 0 {
			t.Errorf("Evaluate(%q) = %d, want 0 for a symmetric position", fen, got)
		}
	}
}

// TestEvaluateSignFlipsWithSideToMove pins down the negamax contract that
// Evaluate returns a score from the side-to-move's perspective: the same
// board, with White materially ahead, must score positive with White to
// move and the exact negation with Black to move.
func TestEvaluateSignFlipsWithSideToMove(t *testing.T) {
	whitePos, err := board.ParseFEN("4k3/8/8/8/8/8/4P3/4K3 w - - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	blackPos, err := board.ParseFEN("4k3/8/8/8/8/8/4P3/4K3 b - - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}

	whiteScore := Evaluate(whitePos)
	blackScore := Evaluate(blackPos)

	if whiteScore <= 0 {
		t.Fatalf("expected White-to-move, White-up-a-pawn position to score positive, got %d", whiteScore)
	}
	if whiteScore != -blackScore {
		t.Errorf("Evaluate should negate with side to move on an identical board: white=%d, black=%d", whiteScore, blackScore)
	}
}
