package chess

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// snapshotBoard deep-copies the fields that matter for reversal checks.
func snapshotBoard(b *Board) Board {
	cp := *b
	cp.History = append([]MoveRecord(nil), b.History...)
	cp.CapturedByWhite = append([]byte(nil), b.CapturedByWhite...)
	cp.CapturedByBlack = append([]byte(nil), b.CapturedByBlack...)
	if b.EnPassant != nil {
		ep := *b.EnPassant
		cp.EnPassant = &ep
	}
	return cp
}

func boardsEqual(a, b *Board) bool {
	if a.Squares != b.Squares || a.SideToMove != b.SideToMove ||
		a.Castling != b.Castling || a.HalfmoveClock != b.HalfmoveClock ||
		a.FullmoveNumber != b.FullmoveNumber {
		return false
	}
	if (a.EnPassant == nil) != (b.EnPassant == nil) {
		return false
	}
	if a.EnPassant != nil && *a.EnPassant != *b.EnPassant {
		return false
	}
	return len(a.History) == len(b.History) &&
		reflect.DeepEqual(a.CapturedByWhite, b.CapturedByWhite) &&
		reflect.DeepEqual(a.CapturedByBlack, b.CapturedByBlack)
}

func TestMakeUnmakeRestoresBoardExactly(t *testing.T) {
	b := NewBoard()

	// Play into a middlegame with captures, then unmake-check every
	// legal move from that position.
	for _, ply := range [][2]string{
		{"e2", "e4"}, {"d7", "d5"},
		{"e4", "d5"}, {"d8", "d5"},
		{"b1", "c3"}, {"d5", "a5"},
		{"d2", "d4"}, {"g8", "f6"},
	} {
		mustMove(t, b, ply[0], ply[1], "")
	}

	before := snapshotBoard(b)
	for _, m := range b.LegalMoves(b.SideToMove) {
		rec := b.Apply(m)
		b.unmake(rec)
		require.True(t, boardsEqual(&before, b),
			"board not restored after %v -> %v (%s)", m.From, m.To, m.Kind)
	}
}

func TestMakeUnmakeEnPassant(t *testing.T) {
	b := NewBoard()
	mustMove(t, b, "e2", "e4", "")
	mustMove(t, b, "a7", "a6", "")
	mustMove(t, b, "e4", "e5", "")
	mustMove(t, b, "d7", "d5", "")

	before := snapshotBoard(b)
	m, reject := b.Validate(sq("e5"), sq("d6"), "", White)
	require.Empty(t, string(reject))
	require.Equal(t, MoveEnPassant, m.Kind)

	rec := b.Apply(m)
	assert.Equal(t, "p", rec.Captured)
	b.unmake(rec)
	assert.True(t, boardsEqual(&before, b))
}

func TestPromotionAppliesChosenPiece(t *testing.T) {
	var b Board
	b.SideToMove = White
	b.FullmoveNumber = 1
	b.Squares[1][0] = WhitePawn
	b.Squares[7][4] = WhiteKing
	b.Squares[0][7] = BlackKing

	m, reject := b.Validate(sq("a7"), sq("a8"), "q", White)
	require.Empty(t, string(reject))
	rec := b.Apply(m)

	assert.Equal(t, WhiteQueen, b.PieceAt(sq("a8")))
	assert.Equal(t, Empty, b.PieceAt(sq("a7")))
	assert.Equal(t, "q", rec.Promotion)
	assert.Equal(t, MovePromotion, rec.Kind)

	b.unmake(rec)
	assert.Equal(t, WhitePawn, b.PieceAt(sq("a7")))
	assert.Equal(t, Empty, b.PieceAt(sq("a8")))
}

func TestPromotionCaptureRestoresVictim(t *testing.T) {
	var b Board
	b.SideToMove = White
	b.FullmoveNumber = 1
	b.Squares[1][0] = WhitePawn
	b.Squares[0][1] = BlackRook
	b.Squares[7][4] = WhiteKing
	b.Squares[0][7] = BlackKing

	m, reject := b.Validate(sq("a7"), sq("b8"), "n", White)
	require.Empty(t, string(reject))
	require.Equal(t, MovePromotionCapture, m.Kind)

	rec := b.Apply(m)
	assert.Equal(t, WhiteKnight, b.PieceAt(sq("b8")))
	assert.Equal(t, []byte{'r'}, b.CapturedByWhite)

	b.unmake(rec)
	assert.Equal(t, BlackRook, b.PieceAt(sq("b8")))
	assert.Empty(t, b.CapturedByWhite)
}

func TestCastlingRightsAreMonotonic(t *testing.T) {
	b := NewBoard()
	mustMove(t, b, "g1", "f3", "")
	mustMove(t, b, "g8", "f6", "")
	mustMove(t, b, "h1", "g1", "")

	assert.False(t, b.Castling[CastleWhiteKingside])
	assert.True(t, b.Castling[CastleWhiteQueenside])

	// Returning the rook home does not restore the right.
	mustMove(t, b, "f6", "g8", "")
	mustMove(t, b, "g1", "h1", "")
	assert.False(t, b.Castling[CastleWhiteKingside])
}

func TestCaptureOnRookHomeSquareClearsRight(t *testing.T) {
	b := &Board{SideToMove: White, FullmoveNumber: 1}
	b.Castling = [4]bool{false, true, true, true}
	b.Squares[7][4] = WhiteKing
	b.Squares[6][7] = WhiteRook // lifted off h1, kingside right already gone
	b.Squares[0][7] = BlackRook
	b.Squares[0][4] = BlackKing
	b.Squares[7][0] = WhiteRook
	b.Squares[0][0] = BlackRook

	mustMove(t, b, "h2", "h8", "")
	assert.False(t, b.Castling[CastleBlackKingside])
	assert.True(t, b.Castling[CastleBlackQueenside])
}

func TestHalfmoveClockResets(t *testing.T) {
	b := NewBoard()
	mustMove(t, b, "g1", "f3", "")
	mustMove(t, b, "g8", "f6", "")
	assert.Equal(t, 2, b.HalfmoveClock)

	mustMove(t, b, "e2", "e4", "")
	assert.Equal(t, 0, b.HalfmoveClock, "pawn move resets the clock")

	mustMove(t, b, "f6", "e4", "")
	assert.Equal(t, 0, b.HalfmoveClock, "capture resets the clock")
}

func TestFullmoveNumberIncrementsAfterBlack(t *testing.T) {
	b := NewBoard()
	assert.Equal(t, 1, b.FullmoveNumber)
	mustMove(t, b, "e2", "e4", "")
	assert.Equal(t, 1, b.FullmoveNumber)
	mustMove(t, b, "e7", "e5", "")
	assert.Equal(t, 2, b.FullmoveNumber)
}
