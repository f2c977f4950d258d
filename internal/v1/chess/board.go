package chess

// Castling right indexes into Board.Castling.
const (
	CastleWhiteKingside = iota
	CastleWhiteQueenside
	CastleBlackKingside
	CastleBlackQueenside
)

// MoveKind tags how a move mutates the board.
type MoveKind string

const (
	MoveQuiet            MoveKind = "quiet"
	MoveCapture          MoveKind = "capture"
	MoveCastleKingside   MoveKind = "castleKingside"
	MoveCastleQueenside  MoveKind = "castleQueenside"
	MoveEnPassant        MoveKind = "enPassant"
	MovePromotion        MoveKind = "promotion"
	MovePromotionCapture MoveKind = "promotionCapture"
)

// Move is a candidate move produced by the generator. Promotion is the
// uppercase kind letter for promotion moves, 0 otherwise.
type Move struct {
	From      Square
	To        Square
	Kind      MoveKind
	Promotion byte
}

// MoveRecord is the applied form of a move, kept in the board history.
// The unexported fields snapshot enough pre-move state to reverse the
// move exactly.
type MoveRecord struct {
	From      Square   `json:"from"`
	To        Square   `json:"to"`
	Piece     string   `json:"piece"`
	Captured  string   `json:"captured,omitempty"`
	Kind      MoveKind `json:"kind"`
	Promotion string   `json:"promotion,omitempty"`

	prevCastling  [4]bool
	prevEnPassant *Square
	prevHalfmove  int
	prevFullmove  int
	prevSide      Color
}

// Board holds the complete state of a game. It is a plain value type;
// the owning room serializes access to it.
type Board struct {
	Squares        [8][8]byte
	SideToMove     Color
	Castling       [4]bool
	EnPassant      *Square
	HalfmoveClock  int
	FullmoveNumber int
	History        []MoveRecord

	// Pieces captured by each side, in capture order, for UI reconstruction.
	CapturedByWhite []byte
	CapturedByBlack []byte
}

// NewBoard returns a board in the standard starting position.
func NewBoard() *Board {
	b := &Board{
		SideToMove:     White,
		Castling:       [4]bool{true, true, true, true},
		FullmoveNumber: 1,
	}
	back := []byte{'r', 'n', 'b', 'q', 'k', 'b', 'n', 'r'}
	for col := 0; col < 8; col++ {
		b.Squares[0][col] = back[col]
		b.Squares[1][col] = BlackPawn
		b.Squares[6][col] = WhitePawn
		b.Squares[7][col] = back[col] - 'a' + 'A'
	}
	return b
}

// PieceAt returns the piece on a square, or Empty.
func (b *Board) PieceAt(s Square) byte {
	return b.Squares[s.Row][s.Col]
}

// kingSquare locates the king of the given color. The second return is
// false only for corrupt positions, which callers treat as fatal.
func (b *Board) kingSquare(c Color) (Square, bool) {
	want := pieceOf('K', c)
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			if b.Squares[row][col] == want {
				return Square{row, col}, true
			}
		}
	}
	return Square{}, false
}

// Status classifies a rest position from the perspective of the side to move.
type Status string

const (
	StatusPlaying   Status = "playing"
	StatusCheckmate Status = "checkmate"
	StatusStalemate Status = "stalemate"
	StatusDraw      Status = "draw"
)

// StateSnapshot is the client-facing view of the board, shaped for JSON.
type StateSnapshot struct {
	Squares         [8][8]string `json:"squares"`
	SideToMove      Color        `json:"sideToMove"`
	Status          Status       `json:"status"`
	InCheck         bool         `json:"inCheck"`
	CapturedByWhite []string     `json:"capturedByWhite"`
	CapturedByBlack []string     `json:"capturedByBlack"`
	HalfmoveClock   int          `json:"halfmoveClock"`
	FullmoveNumber  int          `json:"fullmoveNumber"`
	History         []MoveRecord `json:"moveHistory"`
}

// Snapshot renders the board for transmission to clients. Status is
// recomputed, so a snapshot taken after a mating move reports checkmate.
func (b *Board) Snapshot() StateSnapshot {
	snap := StateSnapshot{
		SideToMove:      b.SideToMove,
		Status:          b.Status(),
		InCheck:         b.InCheck(b.SideToMove),
		CapturedByWhite: pieceStrings(b.CapturedByWhite),
		CapturedByBlack: pieceStrings(b.CapturedByBlack),
		HalfmoveClock:   b.HalfmoveClock,
		FullmoveNumber:  b.FullmoveNumber,
		History:         b.History,
	}
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			if p := b.Squares[row][col]; p != Empty {
				snap.Squares[row][col] = string(p)
			}
		}
	}
	if snap.History == nil {
		snap.History = []MoveRecord{}
	}
	return snap
}

func pieceStrings(pieces []byte) []string {
	out := make([]string, 0, len(pieces))
	for _, p := range pieces {
		out = append(out, string(p))
	}
	return out
}
