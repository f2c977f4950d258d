// Package chess implements the board model, move generation and move
// validation for standard chess. The board is the single source of truth
// for a game; all mutation goes through Apply.
package chess

// Color identifies one of the two sides. White always moves first.
type Color string

const (
	White Color = "white"
	Black Color = "black"
)

// Opponent returns the other side.
func (c Color) Opponent() Color {
	if c == White {
		return Black
	}
	return White
}

// A piece is a single byte: uppercase for white, lowercase for black,
// 0 for an empty square. 'P' pawn, 'N' knight, 'B' bishop, 'R' rook,
// 'Q' queen, 'K' king.
const (
	Empty byte = 0

	WhitePawn   byte = 'P'
	WhiteKnight byte = 'N'
	WhiteBishop byte = 'B'
	WhiteRook   byte = 'R'
	WhiteQueen  byte = 'Q'
	WhiteKing   byte = 'K'

	BlackPawn   byte = 'p'
	BlackKnight byte = 'n'
	BlackBishop byte = 'b'
	BlackRook   byte = 'r'
	BlackQueen  byte = 'q'
	BlackKing   byte = 'k'
)

// PieceColor returns the color of a non-empty piece byte.
func PieceColor(p byte) Color {
	if p >= 'A' && p <= 'Z' {
		return White
	}
	return Black
}

// pieceKind normalizes a piece byte to its uppercase kind letter.
func pieceKind(p byte) byte {
	if p >= 'a' && p <= 'z' {
		return p - 'a' + 'A'
	}
	return p
}

// pieceOf builds a piece byte of the given kind letter for a color.
func pieceOf(kind byte, c Color) byte {
	if c == White {
		return kind
	}
	return kind - 'A' + 'a'
}

// Square addresses a cell on the 8x8 grid. Row 0 is black's back rank,
// row 7 is white's back rank.
type Square struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// InBounds reports whether the square lies on the board.
func (s Square) InBounds() bool {
	return s.Row >= 0 && s.Row <= 7 && s.Col >= 0 && s.Col <= 7
}

// PromotionKinds are the piece kinds a pawn may promote to, as the
// single letters carried by the wire protocol.
var PromotionKinds = map[string]byte{
	"q": 'Q',
	"r": 'R',
	"b": 'B',
	"n": 'N',
}
