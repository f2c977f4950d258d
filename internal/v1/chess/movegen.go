package chess

var (
	knightOffsets = [8][2]int{{-2, -1}, {-2, 1}, {-1, -2}, {-1, 2}, {1, -2}, {1, 2}, {2, -1}, {2, 1}}
	kingOffsets   = [8][2]int{{-1, -1}, {-1, 0}, {-1, 1}, {0, -1}, {0, 1}, {1, -1}, {1, 0}, {1, 1}}
	bishopRays    = [4][2]int{{-1, -1}, {-1, 1}, {1, -1}, {1, 1}}
	rookRays      = [4][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}
)

// pawnDirection is the row delta a pawn of the given color advances by.
// White pawns move toward row 0.
func pawnDirection(c Color) int {
	if c == White {
		return -1
	}
	return 1
}

func pawnStartRow(c Color) int {
	if c == White {
		return 6
	}
	return 1
}

func promotionRow(c Color) int {
	if c == White {
		return 0
	}
	return 7
}

// IsSquareAttacked reports whether any piece of color `by` attacks s.
// Pawn pushes are not attacks; pawn diagonals are. Sliding attackers
// stop at the first occupied square but count it as attacked.
func (b *Board) IsSquareAttacked(s Square, by Color) bool {
	// Pawns: a pawn attacks the two diagonals ahead of it, so an
	// attacking pawn sits one row behind s from its own perspective.
	pawnRow := s.Row - pawnDirection(by)
	for _, dc := range []int{-1, 1} {
		from := Square{pawnRow, s.Col + dc}
		if from.InBounds() && b.PieceAt(from) == pieceOf('P', by) {
			return true
		}
	}

	for _, off := range knightOffsets {
		from := Square{s.Row + off[0], s.Col + off[1]}
		if from.InBounds() && b.PieceAt(from) == pieceOf('N', by) {
			return true
		}
	}

	for _, off := range kingOffsets {
		from := Square{s.Row + off[0], s.Col + off[1]}
		if from.InBounds() && b.PieceAt(from) == pieceOf('K', by) {
			return true
		}
	}

	if b.rayHits(s, by, bishopRays, 'B') || b.rayHits(s, by, rookRays, 'R') {
		return true
	}
	return false
}

// rayHits walks each ray outward from s and reports whether the first
// occupied square holds an attacker of the given kind or a queen.
func (b *Board) rayHits(s Square, by Color, rays [4][2]int, kind byte) bool {
	for _, ray := range rays {
		cur := Square{s.Row + ray[0], s.Col + ray[1]}
		for cur.InBounds() {
			p := b.PieceAt(cur)
			if p != Empty {
				if PieceColor(p) == by {
					k := pieceKind(p)
					if k == kind || k == 'Q' {
						return true
					}
				}
				break
			}
			cur = Square{cur.Row + ray[0], cur.Col + ray[1]}
		}
	}
	return false
}

// InCheck reports whether the king of color c is attacked.
func (b *Board) InCheck(c Color) bool {
	king, ok := b.kingSquare(c)
	if !ok {
		return false
	}
	return b.IsSquareAttacked(king, c.Opponent())
}

// pseudoMovesFrom enumerates the moves permitted by piece geometry and
// occupancy, ignoring king safety. Castling moves carry their rights and
// emptiness preconditions here; the attack conditions are enforced by
// LegalMovesFrom.
func (b *Board) pseudoMovesFrom(from Square) []Move {
	p := b.PieceAt(from)
	if p == Empty {
		return nil
	}
	c := PieceColor(p)

	switch pieceKind(p) {
	case 'P':
		return b.pawnMoves(from, c)
	case 'N':
		return b.stepMoves(from, c, knightOffsets[:])
	case 'B':
		return b.slideMoves(from, c, bishopRays)
	case 'R':
		return b.slideMoves(from, c, rookRays)
	case 'Q':
		moves := b.slideMoves(from, c, bishopRays)
		return append(moves, b.slideMoves(from, c, rookRays)...)
	case 'K':
		moves := b.stepMoves(from, c, kingOffsets[:])
		return append(moves, b.castleMoves(from, c)...)
	}
	return nil
}

func (b *Board) pawnMoves(from Square, c Color) []Move {
	var moves []Move
	d := pawnDirection(c)

	appendAdvance := func(to Square, kind MoveKind) {
		if to.Row == promotionRow(c) {
			if kind == MoveCapture {
				kind = MovePromotionCapture
			} else {
				kind = MovePromotion
			}
		}
		moves = append(moves, Move{From: from, To: to, Kind: kind})
	}

	one := Square{from.Row + d, from.Col}
	if one.InBounds() && b.PieceAt(one) == Empty {
		appendAdvance(one, MoveQuiet)
		two := Square{from.Row + 2*d, from.Col}
		if from.Row == pawnStartRow(c) && b.PieceAt(two) == Empty {
			moves = append(moves, Move{From: from, To: two, Kind: MoveQuiet})
		}
	}

	for _, dc := range []int{-1, 1} {
		to := Square{from.Row + d, from.Col + dc}
		if !to.InBounds() {
			continue
		}
		if target := b.PieceAt(to); target != Empty && PieceColor(target) != c {
			appendAdvance(to, MoveCapture)
		}
		if b.EnPassant != nil && *b.EnPassant == to {
			moves = append(moves, Move{From: from, To: to, Kind: MoveEnPassant})
		}
	}
	return moves
}

func (b *Board) stepMoves(from Square, c Color, offsets [][2]int) []Move {
	var moves []Move
	for _, off := range offsets {
		to := Square{from.Row + off[0], from.Col + off[1]}
		if !to.InBounds() {
			continue
		}
		target := b.PieceAt(to)
		switch {
		case target == Empty:
			moves = append(moves, Move{From: from, To: to, Kind: MoveQuiet})
		case PieceColor(target) != c:
			moves = append(moves, Move{From: from, To: to, Kind: MoveCapture})
		}
	}
	return moves
}

func (b *Board) slideMoves(from Square, c Color, rays [4][2]int) []Move {
	var moves []Move
	for _, ray := range rays {
		to := Square{from.Row + ray[0], from.Col + ray[1]}
		for to.InBounds() {
			target := b.PieceAt(to)
			if target == Empty {
				moves = append(moves, Move{From: from, To: to, Kind: MoveQuiet})
			} else {
				if PieceColor(target) != c {
					moves = append(moves, Move{From: from, To: to, Kind: MoveCapture})
				}
				break
			}
			to = Square{to.Row + ray[0], to.Col + ray[1]}
		}
	}
	return moves
}

// castleMoves generates castling candidates when the side retains the
// right, the king and rook stand on their home squares and the squares
// between them are empty.
func (b *Board) castleMoves(from Square, c Color) []Move {
	homeRow := 7
	kingside, queenside := CastleWhiteKingside, CastleWhiteQueenside
	if c == Black {
		homeRow = 0
		kingside, queenside = CastleBlackKingside, CastleBlackQueenside
	}
	if from != (Square{homeRow, 4}) {
		return nil
	}

	var moves []Move
	rook := pieceOf('R', c)
	if b.Castling[kingside] && b.Squares[homeRow][7] == rook &&
		b.Squares[homeRow][5] == Empty && b.Squares[homeRow][6] == Empty {
		moves = append(moves, Move{From: from, To: Square{homeRow, 6}, Kind: MoveCastleKingside})
	}
	if b.Castling[queenside] && b.Squares[homeRow][0] == rook &&
		b.Squares[homeRow][1] == Empty && b.Squares[homeRow][2] == Empty && b.Squares[homeRow][3] == Empty {
		moves = append(moves, Move{From: from, To: Square{homeRow, 2}, Kind: MoveCastleQueenside})
	}
	return moves
}

// LegalMovesFrom filters the pseudo-legal moves from a square down to
// those that do not leave the mover's own king attacked. Legality is
// checked by applying and unmaking each candidate rather than copying
// the board.
func (b *Board) LegalMovesFrom(from Square) []Move {
	p := b.PieceAt(from)
	if p == Empty {
		return nil
	}
	c := PieceColor(p)

	var legal []Move
	for _, m := range b.pseudoMovesFrom(from) {
		if m.Kind == MoveCastleKingside || m.Kind == MoveCastleQueenside {
			if b.castleIsLegal(m, c) {
				legal = append(legal, m)
			}
			continue
		}
		probe := m
		if probe.Kind == MovePromotion || probe.Kind == MovePromotionCapture {
			// Any promotion piece is equivalent for king safety.
			probe.Promotion = 'Q'
		}
		rec := b.apply(probe)
		inCheck := b.InCheck(c)
		b.unmake(rec)
		if !inCheck {
			legal = append(legal, m)
		}
	}
	return legal
}

// castleIsLegal enforces the attack conditions: the king may not castle
// out of, through, or into check.
func (b *Board) castleIsLegal(m Move, c Color) bool {
	opp := c.Opponent()
	if b.IsSquareAttacked(m.From, opp) {
		return false
	}
	transitCol := 5
	if m.Kind == MoveCastleQueenside {
		transitCol = 3
	}
	if b.IsSquareAttacked(Square{m.From.Row, transitCol}, opp) {
		return false
	}
	return !b.IsSquareAttacked(m.To, opp)
}

// LegalMoves enumerates every legal move for a side.
func (b *Board) LegalMoves(c Color) []Move {
	var moves []Move
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			from := Square{row, col}
			if p := b.PieceAt(from); p != Empty && PieceColor(p) == c {
				moves = append(moves, b.LegalMovesFrom(from)...)
			}
		}
	}
	return moves
}
