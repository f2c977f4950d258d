package chess

// Rejection enumerates the reasons a move submission is refused. The
// values double as the wire-level reason tags.
type Rejection string

const (
	RejectInvalidCoordinates    Rejection = "invalid-coordinates"
	RejectNoPieceAtSource       Rejection = "no-piece-at-source"
	RejectNotYourPiece          Rejection = "not-your-piece"
	RejectNotYourTurn           Rejection = "not-your-turn"
	RejectMoveNotLegal          Rejection = "move-not-legal"
	RejectWouldLeaveKingInCheck Rejection = "would-leave-king-in-check"
	RejectPromotionRequired     Rejection = "promotion-required"
	RejectPromotionInvalid      Rejection = "promotion-invalid"
)

// Validate checks a move submission against the position without
// mutating it. claimed is the seat color of the submitting player;
// promotion is the wire-form letter ("q", "r", "b", "n") or empty.
// On success it returns the concrete move to hand to Apply.
func (b *Board) Validate(from, to Square, promotion string, claimed Color) (Move, Rejection) {
	if !from.InBounds() || !to.InBounds() {
		return Move{}, RejectInvalidCoordinates
	}

	piece := b.PieceAt(from)
	if piece == Empty {
		return Move{}, RejectNoPieceAtSource
	}
	if PieceColor(piece) != claimed {
		return Move{}, RejectNotYourPiece
	}
	if b.SideToMove != claimed {
		return Move{}, RejectNotYourTurn
	}

	var chosen *Move
	for _, m := range b.LegalMovesFrom(from) {
		if m.To == to {
			chosen = &m
			break
		}
	}
	if chosen == nil {
		// Distinguish a geometric impossibility from a self-check.
		for _, m := range b.pseudoMovesFrom(from) {
			if m.To == to {
				return Move{}, RejectWouldLeaveKingInCheck
			}
		}
		return Move{}, RejectMoveNotLegal
	}

	if chosen.Kind == MovePromotion || chosen.Kind == MovePromotionCapture {
		if promotion == "" {
			return Move{}, RejectPromotionRequired
		}
		kind, ok := PromotionKinds[promotion]
		if !ok {
			return Move{}, RejectPromotionInvalid
		}
		chosen.Promotion = kind
	} else if promotion != "" {
		if _, ok := PromotionKinds[promotion]; !ok {
			return Move{}, RejectPromotionInvalid
		}
		// A promotion choice on a non-promoting move is ignored.
	}

	return *chosen, ""
}
