package board

import "fmt"

// Move encodes a chess move in a packed 32-bit word plus a separately
// carried move-ordering score. The word layout is:
//
//	bits 0-5:   from square (0-63)
//	bits 6-11:  to square (0-63)
//	bits 12-13: promotion piece (0=Knight, 1=Bishop, 2=Rook, 3=Queen)
//	bits 14-21: flags (capture, check, en passant, mate, stalemate,
//	            promotion, castling, double pawn push)
//	bits 22-24: moving piece kind
//
// Two moves are considered equal only by origin, destination, and moving
// piece kind (see Equal); flags such as Check or Mate are filled in after
// a move has been made and must not participate in move identity.
type Move struct {
	word  uint32
	Score int32
}

const (
	flagCapture      uint32 = 1 << 14
	flagCheck        uint32 = 1 << 15
	flagEnPassant    uint32 = 1 << 16
	flagMate         uint32 = 1 << 17
	flagStalemate    uint32 = 1 << 18
	flagPromotion    uint32 = 1 << 19
	flagCastling     uint32 = 1 << 20
	flagDoublePush   uint32 = 1 << 21
	pieceKindShift   uint32 = 22
)

// NoMove represents an invalid or null move.
var NoMove = Move{}

func newMove(from, to Square, pt PieceType, extra uint32) Move {
	return Move{word: uint32(from) | uint32(to)<<6 | extra | uint32(pt)<<pieceKindShift}
}

// NewMove creates a normal (non-capture-tagged) move. Captures are built
// with NewCapture instead.
func NewMove(from, to Square, pt PieceType) Move {
	return newMove(from, to, pt, 0)
}

// NewCapture creates a move tagged as a capture.
func NewCapture(from, to Square, pt PieceType) Move {
	return newMove(from, to, pt, flagCapture)
}

// NewDoublePush creates a pawn two-square push.
func NewDoublePush(from, to Square) Move {
	return newMove(from, to, Pawn, flagDoublePush)
}

// NewPromotion creates a promotion move, optionally a capturing one.
func NewPromotion(from, to Square, promo PieceType, capture bool) Move {
	promoIdx := uint32(promo - Knight)
	extra := flagPromotion | promoIdx<<12
	if capture {
		extra |= flagCapture
	}
	return newMove(from, to, Pawn, extra)
}

// NewEnPassant creates an en passant capture move.
func NewEnPassant(from, to Square) Move {
	return newMove(from, to, Pawn, flagEnPassant|flagCapture)
}

// NewCastling creates a castling move (the king's own movement).
func NewCastling(from, to Square) Move {
	return newMove(from, to, King, flagCastling)
}

// From returns the origin square.
func (m Move) From() Square { return Square(m.word & 0x3F) }

// To returns the destination square.
func (m Move) To() Square { return Square((m.word >> 6) & 0x3F) }

// Piece returns the moving piece's kind.
func (m Move) Piece() PieceType { return PieceType((m.word >> pieceKindShift) & 0x7) }

// Promotion returns the promotion piece type; only meaningful if IsPromotion.
func (m Move) Promotion() PieceType { return PieceType((m.word>>12)&3) + Knight }

func (m Move) has(flag uint32) bool { return m.word&flag != 0 }

// IsPromotion returns true if this is a promotion move.
func (m Move) IsPromotion() bool { return m.has(flagPromotion) }

// IsCastling returns true if this is a castling move.
func (m Move) IsCastling() bool { return m.has(flagCastling) }

// IsEnPassant returns true if this is an en passant capture.
func (m Move) IsEnPassant() bool { return m.has(flagEnPassant) }

// IsDoublePawnPush returns true if this is a two-square pawn push.
func (m Move) IsDoublePawnPush() bool { return m.has(flagDoublePush) }

// IsCapture returns true if the generator tagged this move as a capture.
func (m Move) IsCapture() bool { return m.has(flagCapture) }

// IsCheck returns true if the check flag is set. MakeMove does not set it;
// it is set with WithCheck.
func (m Move) IsCheck() bool { return m.has(flagCheck) }

// IsMate returns true if this move was tagged as delivering mate.
func (m Move) IsMate() bool { return m.has(flagMate) }

// IsStalemate returns true if this move was tagged as delivering stalemate.
func (m Move) IsStalemate() bool { return m.has(flagStalemate) }

// IsQuiet returns true if this is not a capture or promotion.
func (m Move) IsQuiet() bool { return !m.IsCapture() && !m.IsPromotion() }

// WithCheck returns a copy of m with the check flag set according to inCheck.
func (m Move) WithCheck(inCheck bool) Move {
	if inCheck {
		m.word |= flagCheck
	} else {
		m.word &^= flagCheck
	}
	return m
}

// WithTerminal returns a copy of m tagged mate or stalemate, given that the
// opponent to move next has no legal replies.
func (m Move) WithTerminal(mate, stalemate bool) Move {
	if mate {
		m.word |= flagMate
	}
	if stalemate {
		m.word |= flagStalemate
	}
	return m
}

// Equal reports whether two moves are the same by origin, destination, and
// moving piece kind only, per the spec's move-identity rule: flags computed
// after the fact (check, mate, stalemate) and the carried ordering score
// never participate.
func (m Move) Equal(o Move) bool {
	const identityMask = 0x3F | 0x3F<<6 | 0x7<<pieceKindShift
	return m.word&identityMask == o.word&identityMask
}

// IsNone reports whether m is the zero-value NoMove sentinel.
func (m Move) IsNone() bool { return m.word == 0 && m.Score == 0 }

// String returns the UCI format of the move (e.g., "e2e4", "e7e8q").
func (m Move) String() string {
	if m.IsNone() {
		return "0000"
	}

	s := m.From().String() + m.To().String()
	if m.IsPromotion() {
		promoChars := []byte{'n', 'b', 'r', 'q'}
		s += string(promoChars[m.Promotion()-Knight])
	}
	return s
}

// ParseMove parses a UCI format move string against the given position,
// filling in the capture/en-passant/castling/promotion tags by consulting
// the board (the wire format itself carries none of that).
func ParseMove(s string, pos *Position) (Move, error) {
	if len(s) < 4 {
		return NoMove, fmt.Errorf("invalid move string: %s", s)
	}

	from, err := ParseSquare(s[0:2])
	if err != nil {
		return NoMove, err
	}
	to, err := ParseSquare(s[2:4])
	if err != nil {
		return NoMove, err
	}

	piece := pos.PieceAt(from)
	if piece == NoPiece {
		return NoMove, fmt.Errorf("no piece at %s", from)
	}
	pt := piece.Type()
	capture := !pos.IsEmpty(to)

	if len(s) == 5 {
		var promo PieceType
		switch s[4] {
		case 'n':
			promo = Knight
		case 'b':
			promo = Bishop
		case 'r':
			promo = Rook
		case 'q':
			promo = Queen
		default:
			return NoMove, fmt.Errorf("invalid promotion piece: %c", s[4])
		}
		return NewPromotion(from, to, promo, capture), nil
	}

	if pt == King && abs(int(to)-int(from)) == 2 {
		return NewCastling(from, to), nil
	}
	if pt == Pawn && to == pos.EnPassant && to != NoSquare {
		return NewEnPassant(from, to), nil
	}
	if pt == Pawn && abs(int(to)-int(from)) == 16 {
		return NewDoublePush(from, to), nil
	}
	if capture {
		return NewCapture(from, to, pt), nil
	}
	return NewMove(from, to, pt), nil
}

// MoveList is a fixed-size list of moves to avoid allocations.
type MoveList struct {
	moves [256]Move
	count int
}

// NewMoveList creates an empty move list.
func NewMoveList() *MoveList {
	return &MoveList{}
}

// Add adds a move to the list.
func (ml *MoveList) Add(m Move) {
	ml.moves[ml.count] = m
	ml.count++
}

// Len returns the number of moves in the list.
func (ml *MoveList) Len() int { return ml.count }

// Get returns the move at index i.
func (ml *MoveList) Get(i int) Move { return ml.moves[i] }

// Set sets the move at index i.
func (ml *MoveList) Set(i int, m Move) { ml.moves[i] = m }

// Swap swaps two moves in the list.
func (ml *MoveList) Swap(i, j int) { ml.moves[i], ml.moves[j] = ml.moves[j], ml.moves[i] }

// Clear clears the list.
func (ml *MoveList) Clear() { ml.count = 0 }

// Contains returns true if the list contains an equal move.
func (ml *MoveList) Contains(m Move) bool {
	for i := 0; i < ml.count; i++ {
		if ml.moves[i].Equal(m) {
			return true
		}
	}
	return false
}

// Find returns the list's own copy of a move equal to m, and whether one
// was found. Used to recover the fully-flagged move for a UCI-parsed move.
func (ml *MoveList) Find(m Move) (Move, bool) {
	for i := 0; i < ml.count; i++ {
		if ml.moves[i].Equal(m) {
			return ml.moves[i], true
		}
	}
	return NoMove, false
}

// Slice returns the moves as a slice.
func (ml *MoveList) Slice() []Move { return ml.moves[:ml.count] }

// Extend appends every move of other to ml, in order.
func (ml *MoveList) Extend(other *MoveList) {
	for i := 0; i < other.count; i++ {
		ml.Add(other.moves[i])
	}
}

// UndoInfo stores information needed to undo a move.
type UndoInfo struct {
	CapturedPiece  Piece
	CastlingRights CastlingRights
	EnPassant      Square
	HalfMoveClock  int
	Hash           uint64
	Checkers       Bitboard
	Valid          bool // true if the move was actually applied
}
