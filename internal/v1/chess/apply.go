package chess

// Apply mutates the board with a move that is assumed legal, returning
// the record appended to the history. Callers obtain moves from
// Validate or LegalMovesFrom; feeding Apply anything else corrupts the
// position.
func (b *Board) Apply(m Move) MoveRecord {
	return b.apply(m)
}

func (b *Board) apply(m Move) MoveRecord {
	piece := b.PieceAt(m.From)
	mover := PieceColor(piece)

	rec := MoveRecord{
		From:         m.From,
		To:           m.To,
		Piece:        string(piece),
		Kind:         m.Kind,
		prevCastling: b.Castling,
		prevHalfmove: b.HalfmoveClock,
		prevFullmove: b.FullmoveNumber,
		prevSide:     b.SideToMove,
	}
	if b.EnPassant != nil {
		ep := *b.EnPassant
		rec.prevEnPassant = &ep
	}

	switch m.Kind {
	case MoveCastleKingside:
		b.Squares[m.From.Row][6] = piece
		b.Squares[m.From.Row][4] = Empty
		b.Squares[m.From.Row][5] = b.Squares[m.From.Row][7]
		b.Squares[m.From.Row][7] = Empty

	case MoveCastleQueenside:
		b.Squares[m.From.Row][2] = piece
		b.Squares[m.From.Row][4] = Empty
		b.Squares[m.From.Row][3] = b.Squares[m.From.Row][0]
		b.Squares[m.From.Row][0] = Empty

	case MoveEnPassant:
		// The captured pawn sits beside the moving pawn, on the target's file.
		victim := Square{m.From.Row, m.To.Col}
		rec.Captured = string(b.PieceAt(victim))
		b.Squares[victim.Row][victim.Col] = Empty
		b.Squares[m.To.Row][m.To.Col] = piece
		b.Squares[m.From.Row][m.From.Col] = Empty

	case MovePromotion, MovePromotionCapture:
		if target := b.PieceAt(m.To); target != Empty {
			rec.Captured = string(target)
		}
		rec.Promotion = string(m.Promotion - 'A' + 'a')
		b.Squares[m.To.Row][m.To.Col] = pieceOf(m.Promotion, mover)
		b.Squares[m.From.Row][m.From.Col] = Empty

	default:
		if target := b.PieceAt(m.To); target != Empty {
			rec.Captured = string(target)
		}
		b.Squares[m.To.Row][m.To.Col] = piece
		b.Squares[m.From.Row][m.From.Col] = Empty
	}

	if rec.Captured != "" {
		if mover == White {
			b.CapturedByWhite = append(b.CapturedByWhite, rec.Captured[0])
		} else {
			b.CapturedByBlack = append(b.CapturedByBlack, rec.Captured[0])
		}
	}

	b.updateCastlingRights(piece, m)

	// En-passant target exists for exactly one move after a double push.
	b.EnPassant = nil
	if pieceKind(piece) == 'P' && (m.To.Row-m.From.Row == 2 || m.From.Row-m.To.Row == 2) {
		b.EnPassant = &Square{(m.From.Row + m.To.Row) / 2, m.From.Col}
	}

	if pieceKind(piece) == 'P' || rec.Captured != "" {
		b.HalfmoveClock = 0
	} else {
		b.HalfmoveClock++
	}
	if mover == Black {
		b.FullmoveNumber++
	}

	b.History = append(b.History, rec)
	b.SideToMove = mover.Opponent()
	return rec
}

// updateCastlingRights clears rights after king or rook movement, and
// after anything lands on a rook home square. Rights only ever go from
// true to false.
func (b *Board) updateCastlingRights(piece byte, m Move) {
	switch piece {
	case WhiteKing:
		b.Castling[CastleWhiteKingside] = false
		b.Castling[CastleWhiteQueenside] = false
	case BlackKing:
		b.Castling[CastleBlackKingside] = false
		b.Castling[CastleBlackQueenside] = false
	}

	for _, sq := range []Square{m.From, m.To} {
		switch sq {
		case Square{7, 7}:
			b.Castling[CastleWhiteKingside] = false
		case Square{7, 0}:
			b.Castling[CastleWhiteQueenside] = false
		case Square{0, 7}:
			b.Castling[CastleBlackKingside] = false
		case Square{0, 0}:
			b.Castling[CastleBlackQueenside] = false
		}
	}
}

// unmake reverses the most recent move using its record snapshot,
// restoring the board bit-for-bit.
func (b *Board) unmake(rec MoveRecord) {
	piece := rec.Piece[0]
	mover := PieceColor(piece)

	switch rec.Kind {
	case MoveCastleKingside:
		b.Squares[rec.From.Row][4] = piece
		b.Squares[rec.From.Row][6] = Empty
		b.Squares[rec.From.Row][7] = b.Squares[rec.From.Row][5]
		b.Squares[rec.From.Row][5] = Empty

	case MoveCastleQueenside:
		b.Squares[rec.From.Row][4] = piece
		b.Squares[rec.From.Row][2] = Empty
		b.Squares[rec.From.Row][0] = b.Squares[rec.From.Row][3]
		b.Squares[rec.From.Row][3] = Empty

	case MoveEnPassant:
		b.Squares[rec.From.Row][rec.From.Col] = piece
		b.Squares[rec.To.Row][rec.To.Col] = Empty
		b.Squares[rec.From.Row][rec.To.Col] = rec.Captured[0]

	case MovePromotion, MovePromotionCapture:
		b.Squares[rec.From.Row][rec.From.Col] = piece
		b.Squares[rec.To.Row][rec.To.Col] = Empty
		if rec.Captured != "" {
			b.Squares[rec.To.Row][rec.To.Col] = rec.Captured[0]
		}

	default:
		b.Squares[rec.From.Row][rec.From.Col] = piece
		b.Squares[rec.To.Row][rec.To.Col] = Empty
		if rec.Captured != "" {
			b.Squares[rec.To.Row][rec.To.Col] = rec.Captured[0]
		}
	}

	if rec.Captured != "" {
		if mover == White {
			b.CapturedByWhite = b.CapturedByWhite[:len(b.CapturedByWhite)-1]
		} else {
			b.CapturedByBlack = b.CapturedByBlack[:len(b.CapturedByBlack)-1]
		}
	}

	b.Castling = rec.prevCastling
	b.EnPassant = rec.prevEnPassant
	b.HalfmoveClock = rec.prevHalfmove
	b.FullmoveNumber = rec.prevFullmove
	b.History = b.History[:len(b.History)-1]
	b.SideToMove = rec.prevSide
}
