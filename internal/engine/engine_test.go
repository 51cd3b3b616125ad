package engine

import (
	"testing"
	"time"

	"github.com/hailam/chesscore/internal/board"
)

func TestSearchBasic(t *testing.T) {
	pos := board.NewPosition()
	eng := NewEngine(16)

	limits := SearchLimits{Depth: 4, MoveTime: 2 * time.Second}
	move := eng.SearchWithLimits(pos, limits)
	if move == board.NoMove {
		t.Error("Search returned NoMove for starting position")
	}
	t.Logf("Best move: %s", move.String())
}

func TestSearchReturnsLegalMove(t *testing.T) {
	eng := NewEngine(16)

	positions := []string{
		board.StartFEN,
		"r1bqkbnr/pppp1ppp/2n5/4p3/2B1P3/5N2/PPPP1PPP/RNBQK2R b KQkq - 3 3", // Italian Game
		"8/8/8/4k3/8/4K3/4P3/8 w - - 0 1",                                  // KP endgame
	}

	for i, fen := range positions {
		pos, err := board.ParseFEN(fen)
		if err != nil {
			t.Fatalf("position %d: failed to parse FEN: %v", i, err)
		}

		limits := SearchLimits{Depth: 5, MoveTime: 300 * time.Millisecond}
		move := eng.SearchWithLimits(pos, limits)

		legal := pos.GenerateLegalMoves()
		if legal.Len() == 0 {
			continue
		}

		found := false
		for j := 0; j < legal.Len(); j++ {
			if legal.Get(j).Equal(move) {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("position %d: search returned a move not in the legal move list: %s", i, move.String())
		}
	}
}

func TestSearchDepthIncreasesWithIterativeDeepening(t *testing.T) {
	pos := board.NewPosition()
	eng := NewEngine(16)

	var depths []int
	eng.OnInfo = func(info SearchInfo) {
		depths = append(depths, info.Depth)
	}

	eng.SearchWithLimits(pos, SearchLimits{Depth: 4})

	if len(depths) == 0 {
		t.Fatal("expected at least one info callback")
	}
	for i := 1; i < len(depths); i++ {
		if depths[i] <= depths[i-1] {
			t.Errorf("expected strictly increasing depths, got %v", depths)
			break
		}
	}
	if depths[len(depths)-1] != 4 {
		t.Errorf("expected the final reported depth to reach the limit 4, got %d", depths[len(depths)-1])
	}
}

func TestSearchRespectsMaxSearchDepthOption(t *testing.T) {
	pos := board.NewPosition()
	eng := NewEngine(16)
	if err := eng.Config().Set("max_search_depth", "2"); err != nil {
		t.Fatalf("Set: %v", err)
	}

	var maxDepthSeen int
	eng.OnInfo = func(info SearchInfo) {
		if info.Depth > maxDepthSeen {
			maxDepthSeen = info.Depth
		}
	}

	// Ask for a much deeper search; the configured cap should still apply.
	eng.SearchWithLimits(pos, SearchLimits{Depth: 8})

	if maxDepthSeen > 2 {
		t.Errorf("expected search to stop at configured max_search_depth=2, reached depth %d", maxDepthSeen)
	}
}

func TestSetPositionHistoryFeedsRepetitionDetection(t *testing.T) {
	pos := board.NewPosition()
	eng := NewEngine(16)

	// A hash occurring three times already marks the shared history as a
	// repetition draw; the root itself is still searched normally (the
	// engine must keep producing a move even from a drawn position), so
	// this checks the wiring directly rather than through search scores.
	eng.SetPositionHistory([]uint64{pos.Hash, pos.Hash, pos.Hash})
	if !eng.history.IsThreefoldRepetition() {
		t.Error("expected SetPositionHistory to mark a threefold-repeated hash as a repetition draw")
	}

	result := eng.Search(pos, SearchLimits{Depth: 2})
	if result.Move == board.NoMove {
		t.Error("expected the engine to still return a legal move from an already-drawn root")
	}
}

// TestBlackToMoveFindsWinningCapture pins a Black-to-move tactic: an
// undefended White queen a knight can take for free. The root has Black
// to move, so the search must score moves from Black's side rather than
// White's; with a 3-ply search the leaves are reached with White to move.
func TestBlackToMoveFindsWinningCapture(t *testing.T) {
	pos, err := board.ParseFEN("7k/8/8/8/8/2n5/8/3Q3K b - - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}

	eng := NewEngine(16)
	result := eng.Search(pos, SearchLimits{Depth: 3})

	want := board.NewCapture(board.C3, board.D1, board.Knight)
	if !result.Move.Equal(want) {
		t.Errorf("expected Black to play the free queen capture Nc3xd1, got %s", result.Move.String())
	}
}

func TestPerft(t *testing.T) {
	pos := board.NewPosition()
	eng := NewEngine(16)

	tests := []struct {
		depth int
		nodes uint64
	}{
		{1, 20},
		{2, 400},
		{3, 8902},
	}

	for _, tc := range tests {
		got := eng.Perft(pos, tc.depth)
		if got != tc.nodes {
			t.Errorf("Perft(%d) = %d, want %d", tc.depth, got, tc.nodes)
		}
	}
}
