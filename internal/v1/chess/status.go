package chess

// Status classifies the position for the side to move. Call it after
// Apply has flipped SideToMove to learn the terminal state produced by
// the move.
//
// Threefold repetition is intentionally not detected; see DESIGN.md.
func (b *Board) Status() Status {
	if len(b.LegalMoves(b.SideToMove)) == 0 {
		if b.InCheck(b.SideToMove) {
			return StatusCheckmate
		}
		return StatusStalemate
	}
	if b.HalfmoveClock >= 100 {
		return StatusDraw
	}
	if b.insufficientMaterial() {
		return StatusDraw
	}
	return StatusPlaying
}

// insufficientMaterial reports the dead positions neither side can win:
// bare kings, or king and a single minor piece against a bare king.
func (b *Board) insufficientMaterial() bool {
	var minors int
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			p := b.Squares[row][col]
			if p == Empty {
				continue
			}
			switch pieceKind(p) {
			case 'K':
			case 'B', 'N':
				minors++
				if minors > 1 {
					return false
				}
			default:
				return false
			}
		}
	}
	return true
}
