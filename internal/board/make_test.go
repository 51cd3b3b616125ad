package board

import "testing"

// TestMakeUnmakeRoundTrip walks every legal move a few plies deep from a
// handful of positions and checks that UnmakeMove restores the position
// exactly, including the incremental Zobrist hash.
func TestMakeUnmakeRoundTrip(t *testing.T) {
	fens := []string{
		StartFEN,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq -",
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - -",
		"8/8/8/8/k2Pp2R/8/8/4K3 b - d3 0 1",
	}

	for _, fen := range fens {
		pos, err := ParseFEN(fen)
		if err != nil {
			t.Fatalf("ParseFEN(%q): %v", fen, err)
		}
		walkRoundTrip(t, pos, 3)
	}
}

func walkRoundTrip(t *testing.T, p *Position, depth int) {
	t.Helper()
	if depth == 0 {
		return
	}

	before := p.Copy()
	moves := p.GenerateLegalMoves()

	for i := 0; i < moves.Len(); i++ {
		m := moves.Get(i)
		undo := p.MakeMove(m)
		if !undo.Valid {
			t.Fatalf("legal move %v rejected by MakeMove", m)
		}

		if got := p.ComputeHash(); got != p.Hash {
			t.Fatalf("incremental hash diverged from recomputed hash after %v: got %#x, want %#x", m, p.Hash, got)
		}

		walkRoundTrip(t, p, depth-1)

		p.UnmakeMove(m, undo)
		if !positionsEqual(p, before) {
			t.Fatalf("UnmakeMove did not restore position after %v", m)
		}
	}
}

// positionsEqual compares the fields MakeMove/UnmakeMove are responsible
// for restoring exactly.
func positionsEqual(a, b *Position) bool {
	if a.Hash != b.Hash || a.SideToMove != b.SideToMove ||
		a.CastlingRights != b.CastlingRights || a.EnPassant != b.EnPassant ||
		a.HalfMoveClock != b.HalfMoveClock || a.FullMoveNumber != b.FullMoveNumber ||
		a.Checkers != b.Checkers {
		return false
	}
	for c := White; c <= Black; c++ {
		if a.KingSquare[c] != b.KingSquare[c] {
			return false
		}
		for pt := Pawn; pt <= King; pt++ {
			if a.Pieces[c][pt] != b.Pieces[c][pt] {
				return false
			}
		}
		if a.Occupied[c] != b.Occupied[c] {
			return false
		}
	}
	return a.AllOccupied == b.AllOccupied
}

// TestComputeHashMatchesIncrementalFromStart checks that a freshly parsed
// position's incremental hash (set by ParseFEN) agrees with a from-scratch
// recomputation.
func TestComputeHashMatchesIncrementalFromStart(t *testing.T) {
	fens := []string{
		StartFEN,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq -",
	}
	for _, fen := range fens {
		pos, err := ParseFEN(fen)
		if err != nil {
			t.Fatalf("ParseFEN(%q): %v", fen, err)
		}
		if got := pos.ComputeHash(); got != pos.Hash {
			t.Errorf("ParseFEN(%q): incremental hash %#x != recomputed hash %#x", fen, pos.Hash, got)
		}
	}
}
