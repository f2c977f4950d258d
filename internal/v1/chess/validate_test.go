package chess

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateRejectionTaxonomy(t *testing.T) {
	tests := []struct {
		name      string
		from, to  Square
		promotion string
		claimed   Color
		want      Rejection
	}{
		{"out of range source", Square{-1, 0}, sq("e4"), "", White, RejectInvalidCoordinates},
		{"out of range target", sq("e2"), Square{8, 4}, "", White, RejectInvalidCoordinates},
		{"empty source", sq("e4"), sq("e5"), "", White, RejectNoPieceAtSource},
		{"opponent piece", sq("e7"), sq("e5"), "", White, RejectNotYourPiece},
		{"out of turn", sq("e7"), sq("e5"), "", Black, RejectNotYourTurn},
		{"illegal geometry", sq("e2"), sq("e5"), "", White, RejectMoveNotLegal},
		{"legal move", sq("e2"), sq("e4"), "", White, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBoard()
			_, got := b.Validate(tt.from, tt.to, tt.promotion, tt.claimed)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateSelfCheckIsDistinctReason(t *testing.T) {
	var b Board
	b.SideToMove = White
	b.FullmoveNumber = 1
	b.Squares[7][4] = WhiteKing
	b.Squares[6][4] = WhiteRook // shields the king on the e-file
	b.Squares[0][4] = BlackRook
	b.Squares[0][0] = BlackKing

	// Moving the shielding rook sideways exposes the king.
	_, reject := b.Validate(sq("e2"), sq("a2"), "", White)
	assert.Equal(t, RejectWouldLeaveKingInCheck, reject)

	// Sliding up the file is fine.
	_, reject = b.Validate(sq("e2"), sq("e5"), "", White)
	assert.Empty(t, string(reject))
}

func TestValidatePromotionRequired(t *testing.T) {
	var b Board
	b.SideToMove = White
	b.FullmoveNumber = 1
	b.Squares[1][0] = WhitePawn
	b.Squares[7][4] = WhiteKing
	b.Squares[0][7] = BlackKing

	_, reject := b.Validate(sq("a7"), sq("a8"), "", White)
	assert.Equal(t, RejectPromotionRequired, reject)

	_, reject = b.Validate(sq("a7"), sq("a8"), "x", White)
	assert.Equal(t, RejectPromotionInvalid, reject)

	m, reject := b.Validate(sq("a7"), sq("a8"), "q", White)
	require.Empty(t, string(reject))
	assert.Equal(t, byte('Q'), m.Promotion)
}

func TestValidateIgnoresPromotionChoiceOnNormalMove(t *testing.T) {
	b := NewBoard()
	m, reject := b.Validate(sq("e2"), sq("e4"), "q", White)
	require.Empty(t, string(reject))
	assert.Equal(t, byte(0), m.Promotion)
}

func TestValidateDoesNotMutateBoard(t *testing.T) {
	b := NewBoard()
	before := snapshotBoard(b)

	b.Validate(sq("e2"), sq("e4"), "", White)
	b.Validate(sq("b1"), sq("c3"), "", White)
	b.Validate(sq("e2"), sq("e5"), "", White)

	assert.True(t, boardsEqual(&before, b))
}
