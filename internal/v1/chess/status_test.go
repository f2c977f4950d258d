package chess

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFoolsMate(t *testing.T) {
	b := NewBoard()
	mustMove(t, b, "f2", "f3", "")
	mustMove(t, b, "e7", "e5", "")
	mustMove(t, b, "g2", "g4", "")
	assert.Equal(t, StatusPlaying, b.Status())

	mustMove(t, b, "d8", "h4", "")

	assert.Equal(t, White, b.SideToMove)
	assert.True(t, b.InCheck(White))
	assert.Equal(t, StatusCheckmate, b.Status())
}

func TestStalemate(t *testing.T) {
	// Classic king-and-queen stalemate: black to move, no legal moves,
	// not in check.
	var b Board
	b.SideToMove = Black
	b.FullmoveNumber = 1
	b.Squares[0][7] = BlackKing // h8
	b.Squares[2][6] = WhiteKing // g6
	b.Squares[1][5] = WhiteQueen // f7

	require.False(t, b.InCheck(Black))
	assert.Empty(t, b.LegalMoves(Black))
	assert.Equal(t, StatusStalemate, b.Status())
}

func TestFiftyMoveRuleDraw(t *testing.T) {
	var b Board
	b.SideToMove = White
	b.FullmoveNumber = 60
	b.HalfmoveClock = 100
	b.Squares[7][4] = WhiteKing
	b.Squares[0][4] = BlackKing
	b.Squares[4][0] = WhiteRook

	assert.Equal(t, StatusDraw, b.Status())
}

func TestInsufficientMaterial(t *testing.T) {
	tests := []struct {
		name   string
		extras map[Square]byte
		want   Status
	}{
		{"king vs king", nil, StatusDraw},
		{"king and bishop vs king", map[Square]byte{{4, 4}: WhiteBishop}, StatusDraw},
		{"king and knight vs king", map[Square]byte{{4, 4}: BlackKnight}, StatusDraw},
		{"two minor pieces", map[Square]byte{{4, 4}: WhiteBishop, {4, 6}: BlackKnight}, StatusPlaying},
		{"king and pawn vs king", map[Square]byte{{4, 4}: WhitePawn}, StatusPlaying},
		{"king and rook vs king", map[Square]byte{{4, 4}: WhiteRook}, StatusPlaying},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var b Board
			b.SideToMove = White
			b.FullmoveNumber = 1
			b.Squares[7][4] = WhiteKing
			b.Squares[0][4] = BlackKing
			for s, p := range tt.extras {
				b.Squares[s.Row][s.Col] = p
			}
			assert.Equal(t, tt.want, b.Status())
		})
	}
}

func TestCheckmateBeatsHalfmoveClock(t *testing.T) {
	// A mating position with the clock at 100 is still checkmate.
	var b Board
	b.SideToMove = Black
	b.FullmoveNumber = 70
	b.HalfmoveClock = 100
	b.Squares[0][7] = BlackKing  // h8
	b.Squares[1][6] = WhiteQueen // g7, protected
	b.Squares[2][5] = WhiteKing  // f6

	assert.Equal(t, StatusCheckmate, b.Status())
}

func TestSnapshotReflectsPosition(t *testing.T) {
	b := NewBoard()
	mustMove(t, b, "e2", "e4", "")

	snap := b.Snapshot()
	assert.Equal(t, Black, snap.SideToMove)
	assert.Equal(t, StatusPlaying, snap.Status)
	assert.Equal(t, "P", snap.Squares[4][4])
	assert.Equal(t, "", snap.Squares[6][4])
	assert.Len(t, snap.History, 1)
	assert.Equal(t, 1, snap.FullmoveNumber)
}
