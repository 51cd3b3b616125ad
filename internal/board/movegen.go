package board

// GenerateLegalMoves produces every legal move for the side to move, and
// only legal moves: no move is constructed by generating a pseudo-legal
// candidate and then discarding it via make/unmake. Legality instead
// follows directly from the checker and pin analysis performed up front
// (the AttackersByColor query on the king square, and computePins), the same way a human player
// reasons about which pieces may move and where.
func (p *Position) GenerateLegalMoves() *MoveList {
	us := p.SideToMove
	them := us.Other()
	ksq := p.KingSquare[us]

	checkers := p.AttackersByColor(ksq, them, p.AllOccupied)
	pinned, pinLine := p.computePins(us, ksq)

	captures := NewMoveList()
	quiets := NewMoveList()

	p.generateKingMoves(ksq, us, them, captures, quiets)

	switch checkers.PopCount() {
	case 0:
		p.generateNormalMoves(us, them, ksq, pinned, pinLine, AllSquares, AllSquares, captures, quiets)
		p.generateEnPassant(us, them, ksq, pinned, pinLine, AllSquares, AllSquares, captures)
		p.generateCastling(us, them, captures, quiets)
	case 1:
		checkerSq := checkers.LSB()
		captureMask := checkers
		pushMask := Bitboard(0)
		if isSlider(p.PieceAt(checkerSq).Type()) {
			pushMask = Between(ksq, checkerSq)
		}
		p.generateNormalMoves(us, them, ksq, pinned, pinLine, captureMask, pushMask, captures, quiets)
		p.generateEnPassant(us, them, ksq, pinned, pinLine, captureMask, pushMask, captures)
	default:
		// Double check: only the king moves already generated are legal.
	}

	result := NewMoveList()
	result.Extend(captures)
	result.Extend(quiets)
	return result
}

// GenerateCaptures produces every legal capture and promotion (used by
// quiescence search). It is GenerateLegalMoves restricted to the tactical
// half of the output.
func (p *Position) GenerateCaptures() *MoveList {
	all := p.GenerateLegalMoves()
	result := NewMoveList()
	for i := 0; i < all.Len(); i++ {
		m := all.Get(i)
		if m.IsCapture() || m.IsPromotion() {
			result.Add(m)
		}
	}
	return result
}

// AllSquares is the full 64-square bitboard, used as the identity mask for
// the capture/push restriction when the side to move is not in check.
const AllSquares Bitboard = ^Bitboard(0)

func isSlider(pt PieceType) bool {
	return pt == Bishop || pt == Rook || pt == Queen
}

// computePins returns the set of squares holding a piece pinned to the
// king, and, for each such square, the line of squares (strictly between
// king and pinner, plus the pinner's own square) that the pinned piece may
// move along.
func (p *Position) computePins(us Color, ksq Square) (Bitboard, [64]Bitboard) {
	them := us.Other()
	occ := p.AllOccupied
	var pinned Bitboard
	var pinLine [64]Bitboard

	record := func(snipers Bitboard) {
		for snipers != 0 {
			sniper := snipers.PopLSB()
			between := Between(sniper, ksq) & occ
			if between.PopCount() == 1 && between&p.Occupied[us] != 0 {
				sq := between.LSB()
				pinned |= SquareBB(sq)
				pinLine[sq] = Between(ksq, sniper) | SquareBB(sniper)
			}
		}
	}

	record(RookAttacks(ksq, p.Occupied[them]) & (p.Pieces[them][Rook] | p.Pieces[them][Queen]))
	record(BishopAttacks(ksq, p.Occupied[them]) & (p.Pieces[them][Bishop] | p.Pieces[them][Queen]))

	return pinned, pinLine
}

// destinationMask returns the legal target squares for a piece on sq,
// after narrowing by check-response masks and (if pinned) the pin line.
func destinationMask(sq Square, pinned Bitboard, pinLine [64]Bitboard, captureMask, pushMask Bitboard) Bitboard {
	mask := captureMask | pushMask
	if pinned&SquareBB(sq) != 0 {
		mask &= pinLine[sq]
	}
	return mask
}

// generateKingMoves emits every king move whose destination is not
// defended by the opponent, computed with the king itself removed from
// the occupancy so that sliding x-ray attacks through the king's own
// square are detected.
func (p *Position) generateKingMoves(ksq Square, us, them Color, captures, quiets *MoveList) {
	occNoKing := p.AllOccupied &^ SquareBB(ksq)
	targets := KingAttacks(ksq) & ^p.Occupied[us]

	for targets != 0 {
		to := targets.PopLSB()
		if p.AttackersByColor(to, them, occNoKing) != 0 {
			continue
		}
		if p.Occupied[them]&SquareBB(to) != 0 {
			captures.Add(NewCapture(ksq, to, King))
		} else {
			quiets.Add(NewMove(ksq, to, King))
		}
	}
}

// generateNormalMoves emits knight, bishop, rook, queen, and pawn moves,
// respecting pins and the current check-response masks.
func (p *Position) generateNormalMoves(us, them Color, ksq Square, pinned Bitboard, pinLine [64]Bitboard, captureMask, pushMask Bitboard, captures, quiets *MoveList) {
	occupied := p.AllOccupied
	enemies := p.Occupied[them]

	knights := p.Pieces[us][Knight] &^ pinned // a pinned knight can never move
	for knights != 0 {
		from := knights.PopLSB()
		targets := KnightAttacks(from) & ^p.Occupied[us] & (captureMask | pushMask)
		emitSliderLike(from, targets, Knight, enemies, captures, quiets)
	}

	bishops := p.Pieces[us][Bishop]
	for bishops != 0 {
		from := bishops.PopLSB()
		mask := destinationMask(from, pinned, pinLine, captureMask, pushMask)
		targets := BishopAttacks(from, occupied) & ^p.Occupied[us] & mask
		emitSliderLike(from, targets, Bishop, enemies, captures, quiets)
	}

	rooks := p.Pieces[us][Rook]
	for rooks != 0 {
		from := rooks.PopLSB()
		mask := destinationMask(from, pinned, pinLine, captureMask, pushMask)
		targets := RookAttacks(from, occupied) & ^p.Occupied[us] & mask
		emitSliderLike(from, targets, Rook, enemies, captures, quiets)
	}

	queens := p.Pieces[us][Queen]
	for queens != 0 {
		from := queens.PopLSB()
		mask := destinationMask(from, pinned, pinLine, captureMask, pushMask)
		targets := QueenAttacks(from, occupied) & ^p.Occupied[us] & mask
		emitSliderLike(from, targets, Queen, enemies, captures, quiets)
	}

	p.generatePawnMoves(us, them, pinned, pinLine, captureMask, pushMask, captures, quiets)
}

func emitSliderLike(from Square, targets Bitboard, pt PieceType, enemies Bitboard, captures, quiets *MoveList) {
	for targets != 0 {
		to := targets.PopLSB()
		if enemies&SquareBB(to) != 0 {
			captures.Add(NewCapture(from, to, pt))
		} else {
			quiets.Add(NewMove(from, to, pt))
		}
	}
}

func (p *Position) generatePawnMoves(us, them Color, pinned Bitboard, pinLine [64]Bitboard, captureMask, pushMask Bitboard, captures, quiets *MoveList) {
	pawns := p.Pieces[us][Pawn]
	empty := ^p.AllOccupied
	enemies := p.Occupied[them]

	var promotionRank Bitboard
	var startRank Bitboard
	var pushDir int
	if us == White {
		promotionRank, startRank, pushDir = Rank8, Rank2, 8
	} else {
		promotionRank, startRank, pushDir = Rank1, Rank7, -8
	}

	for pawns != 0 {
		from := pawns.PopLSB()
		mask := destinationMask(from, pinned, pinLine, captureMask, pushMask)
		fromBB := SquareBB(from)

		// Single and double pushes.
		var push1 Bitboard
		if us == White {
			push1 = fromBB.North() & empty
		} else {
			push1 = fromBB.South() & empty
		}
		if push1&mask != 0 {
			to := push1.LSB()
			p.emitPawnMove(from, to, false, promotionRank, captures, quiets)
		}
		if push1 != 0 && fromBB&startRank != 0 {
			var push2 Bitboard
			if us == White {
				push2 = push1.North() & empty
			} else {
				push2 = push1.South() & empty
			}
			if push2&mask != 0 {
				to := push2.LSB()
				quiets.Add(NewDoublePush(from, to))
			}
		}

		// Diagonal captures.
		attacks := PawnAttacks(from, us) & enemies & mask
		for attacks != 0 {
			to := attacks.PopLSB()
			p.emitPawnMove(from, to, true, promotionRank, captures, quiets)
		}

		_ = pushDir
	}
}

func (p *Position) emitPawnMove(from, to Square, capture bool, promotionRank Bitboard, captures, quiets *MoveList) {
	if SquareBB(to)&promotionRank != 0 {
		captures.Add(NewPromotion(from, to, Queen, capture))
		captures.Add(NewPromotion(from, to, Rook, capture))
		captures.Add(NewPromotion(from, to, Bishop, capture))
		captures.Add(NewPromotion(from, to, Knight, capture))
		return
	}
	if capture {
		captures.Add(NewCapture(from, to, Pawn))
	} else {
		quiets.Add(NewMove(from, to, Pawn))
	}
}

// generateEnPassant handles the en passant special case: after the
// captured pawn is hypothetically removed (along with the capturing pawn
// itself leaving its square), the friendly king must not be exposed to a
// rook or queen along the vacated rank. This can make an en passant
// capture illegal even when neither pawn involved is otherwise pinned.
func (p *Position) generateEnPassant(us, them Color, ksq Square, pinned Bitboard, pinLine [64]Bitboard, captureMask, pushMask Bitboard, captures *MoveList) {
	if p.EnPassant == NoSquare {
		return
	}
	to := p.EnPassant
	var capturedSq Square
	if us == White {
		capturedSq = to - 8
	} else {
		capturedSq = to + 8
	}

	capturedOnCheckLine := captureMask&SquareBB(capturedSq) != 0
	landsOnPushLine := pushMask&SquareBB(to) != 0
	if !capturedOnCheckLine && !landsOnPushLine {
		return
	}

	attackers := PawnAttacks(to, them) & p.Pieces[us][Pawn]
	for attackers != 0 {
		from := attackers.PopLSB()

		if pinned&SquareBB(from) != 0 && pinLine[from]&SquareBB(to) == 0 {
			continue
		}

		occAfter := (p.AllOccupied &^ SquareBB(from) &^ SquareBB(capturedSq)) | SquareBB(to)
		rookAttackers := RookAttacks(ksq, occAfter) & (p.Pieces[them][Rook] | p.Pieces[them][Queen])
		if rookAttackers != 0 {
			continue
		}

		captures.Add(NewEnPassant(from, to))
	}
}

// generateCastling emits legal castling moves. Castling is only ever
// considered when the side to move is not in check (the caller only
// invokes this in the zero-checkers branch).
func (p *Position) generateCastling(us, them Color, captures, quiets *MoveList) {
	if us == White {
		if p.CastlingRights&WhiteKingSideCastle != 0 &&
			p.AllOccupied&((1<<F1)|(1<<G1)) == 0 &&
			!p.IsSquareAttacked(E1, them) && !p.IsSquareAttacked(F1, them) && !p.IsSquareAttacked(G1, them) {
			quiets.Add(NewCastling(E1, G1))
		}
		if p.CastlingRights&WhiteQueenSideCastle != 0 &&
			p.AllOccupied&((1<<B1)|(1<<C1)|(1<<D1)) == 0 &&
			!p.IsSquareAttacked(E1, them) && !p.IsSquareAttacked(D1, them) && !p.IsSquareAttacked(C1, them) {
			quiets.Add(NewCastling(E1, C1))
		}
		return
	}
	if p.CastlingRights&BlackKingSideCastle != 0 &&
		p.AllOccupied&((1<<F8)|(1<<G8)) == 0 &&
		!p.IsSquareAttacked(E8, them) && !p.IsSquareAttacked(F8, them) && !p.IsSquareAttacked(G8, them) {
		quiets.Add(NewCastling(E8, G8))
	}
	if p.CastlingRights&BlackQueenSideCastle != 0 &&
		p.AllOccupied&((1<<B8)|(1<<C8)|(1<<D8)) == 0 &&
		!p.IsSquareAttacked(E8, them) && !p.IsSquareAttacked(D8, them) && !p.IsSquareAttacked(C8, them) {
		quiets.Add(NewCastling(E8, C8))
	}
}

// HasLegalMoves returns true if the side to move has any legal moves.
func (p *Position) HasLegalMoves() bool {
	return p.GenerateLegalMoves().Len() > 0
}

// IsCheckmate returns true if the position is checkmate.
func (p *Position) IsCheckmate() bool {
	return p.InCheck() && !p.HasLegalMoves()
}

// IsStalemate returns true if the position is stalemate.
func (p *Position) IsStalemate() bool {
	return !p.InCheck() && !p.HasLegalMoves()
}

// IsDraw returns true if the position is a draw by stalemate, the 50-move
// rule, or insufficient material. Threefold repetition is tracked outside
// Position, by the game history (see internal/game).
func (p *Position) IsDraw() bool {
	if p.IsStalemate() {
		return true
	}
	if p.HalfMoveClock >= 100 {
		return true
	}
	return p.IsInsufficientMaterial()
}

// IsInsufficientMaterial returns true if neither side can checkmate.
func (p *Position) IsInsufficientMaterial() bool {
	if p.Pieces[White][Pawn]|p.Pieces[Black][Pawn] != 0 ||
		p.Pieces[White][Rook]|p.Pieces[Black][Rook] != 0 ||
		p.Pieces[White][Queen]|p.Pieces[Black][Queen] != 0 {
		return false
	}

	wKnights := p.Pieces[White][Knight].PopCount()
	wBishops := p.Pieces[White][Bishop].PopCount()
	bKnights := p.Pieces[Black][Knight].PopCount()
	bBishops := p.Pieces[Black][Bishop].PopCount()

	if wKnights+wBishops+bKnights+bBishops == 0 {
		return true
	}
	if wKnights+wBishops <= 1 && bKnights+bBishops == 0 {
		return true
	}
	if bKnights+bBishops <= 1 && wKnights+wBishops == 0 {
		return true
	}
	return false
}
