// Package movegen generates legal chess moves. It is stateless: every
// function takes the full position (board, side to move, castling
// rights, en passant target) and never fails on a reachable position.
//
// Generation is two-stage: pseudo-legal moves by piece movement
// pattern, then a self-check filter that applies each candidate to a
// board copy and discards moves leaving the mover's king attacked.
package movegen

import (
	"sort"

	"checkai/internal/core"
)

var knightOffsets = [8][2]int{
	{1, 2}, {2, 1}, {2, -1}, {1, -2},
	{-1, -2}, {-2, -1}, {-2, 1}, {-1, 2},
}

var kingOffsets = [8][2]int{
	{-1, -1}, {-1, 0}, {-1, 1}, {0, -1},
	{0, 1}, {1, -1}, {1, 0}, {1, 1},
}

var bishopDirs = [4][2]int{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
var rookDirs = [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}

// promotionKinds in deterministic listing order.
var promotionKinds = [4]core.PieceKind{core.Queen, core.Rook, core.Bishop, core.Knight}

// IsSquareAttacked reports whether any piece of color by attacks sq.
// Attack means the piece could capture on sq by its movement pattern;
// pins are ignored.
func IsSquareAttacked(b *core.Board, sq core.Square, by core.Color) bool {
	for _, o := range knightOffsets {
		if t, ok := sq.Offset(o[0], o[1]); ok {
			if p := b.At(t); p.Kind == core.Knight && p.Color == by {
				return true
			}
		}
	}
	for _, o := range kingOffsets {
		if t, ok := sq.Offset(o[0], o[1]); ok {
			if p := b.At(t); p.Kind == core.King && p.Color == by {
				return true
			}
		}
	}
	// A pawn of color by attacks sq if it sits one rank behind sq (from
	// by's perspective) on an adjacent file.
	pawnDir := by.PawnDirection()
	for _, df := range [2]int{-1, 1} {
		if t, ok := sq.Offset(df, -pawnDir); ok {
			if p := b.At(t); p.Kind == core.Pawn && p.Color == by {
				return true
			}
		}
	}
	for _, d := range bishopDirs {
		if p, ok := firstPieceInRay(b, sq, d[0], d[1]); ok {
			if p.Color == by && (p.Kind == core.Bishop || p.Kind == core.Queen) {
				return true
			}
		}
	}
	for _, d := range rookDirs {
		if p, ok := firstPieceInRay(b, sq, d[0], d[1]); ok {
			if p.Color == by && (p.Kind == core.Rook || p.Kind == core.Queen) {
				return true
			}
		}
	}
	return false
}

func firstPieceInRay(b *core.Board, from core.Square, df, dr int) (core.Piece, bool) {
	s := from
	for {
		t, ok := s.Offset(df, dr)
		if !ok {
			return core.Piece{}, false
		}
		if p := b.At(t); !p.IsEmpty() {
			return p, true
		}
		s = t
	}
}

// IsInCheck reports whether the given side's king is attacked.
func IsInCheck(b *core.Board, c core.Color) bool {
	king, ok := b.FindKing(c)
	if !ok {
		return false
	}
	return IsSquareAttacked(b, king, c.Opponent())
}

// PseudoLegalMoves generates all moves matching piece movement patterns
// for the given side, including castling and en passant, without the
// self-check filter. Exposed so callers can distinguish "wrong pattern"
// from "leaves king in check".
func PseudoLegalMoves(b *core.Board, turn core.Color, cr core.CastlingRights, ep *core.Square) []core.Move {
	var moves []core.Move
	for s := core.Square(0); s < 64; s++ {
		p := b.At(s)
		if p.IsEmpty() || p.Color != turn {
			continue
		}
		switch p.Kind {
		case core.Pawn:
			moves = appendPawnMoves(moves, b, s, turn, ep)
		case core.Knight:
			moves = appendStepMoves(moves, b, s, turn, knightOffsets[:])
		case core.Bishop:
			moves = appendRayMoves(moves, b, s, turn, bishopDirs[:])
		case core.Rook:
			moves = appendRayMoves(moves, b, s, turn, rookDirs[:])
		case core.Queen:
			moves = appendRayMoves(moves, b, s, turn, bishopDirs[:])
			moves = appendRayMoves(moves, b, s, turn, rookDirs[:])
		case core.King:
			moves = appendStepMoves(moves, b, s, turn, kingOffsets[:])
			moves = appendCastlingMoves(moves, b, s, turn, cr)
		}
	}
	return moves
}

func appendStepMoves(moves []core.Move, b *core.Board, from core.Square, turn core.Color, offsets [][2]int) []core.Move {
	for _, o := range offsets {
		t, ok := from.Offset(o[0], o[1])
		if !ok {
			continue
		}
		if p := b.At(t); p.IsEmpty() || p.Color != turn {
			moves = append(moves, core.Move{From: from, To: t})
		}
	}
	return moves
}

func appendRayMoves(moves []core.Move, b *core.Board, from core.Square, turn core.Color, dirs [][2]int) []core.Move {
	for _, d := range dirs {
		s := from
		for {
			t, ok := s.Offset(d[0], d[1])
			if !ok {
				break
			}
			p := b.At(t)
			if p.IsEmpty() {
				moves = append(moves, core.Move{From: from, To: t})
				s = t
				continue
			}
			if p.Color != turn {
				moves = append(moves, core.Move{From: from, To: t})
			}
			break
		}
	}
	return moves
}

func appendPawnMoves(moves []core.Move, b *core.Board, from core.Square, turn core.Color, ep *core.Square) []core.Move {
	dir := turn.PawnDirection()

	if t, ok := from.Offset(0, dir); ok && b.At(t).IsEmpty() {
		moves = appendPawnTarget(moves, from, t, turn, false)
		if from.Rank() == turn.PawnStartRank() {
			if t2, ok2 := from.Offset(0, 2*dir); ok2 && b.At(t2).IsEmpty() {
				moves = append(moves, core.Move{From: from, To: t2})
			}
		}
	}

	for _, df := range [2]int{-1, 1} {
		t, ok := from.Offset(df, dir)
		if !ok {
			continue
		}
		if p := b.At(t); !p.IsEmpty() && p.Color != turn {
			moves = appendPawnTarget(moves, from, t, turn, false)
		} else if ep != nil && t == *ep {
			moves = appendPawnTarget(moves, from, t, turn, true)
		}
	}
	return moves
}

func appendPawnTarget(moves []core.Move, from, to core.Square, turn core.Color, enPassant bool) []core.Move {
	if to.Rank() == turn.PromotionRank() {
		for _, k := range promotionKinds {
			moves = append(moves, core.Move{From: from, To: to, Promotion: k})
		}
		return moves
	}
	return append(moves, core.Move{From: from, To: to, IsEnPassant: enPassant})
}

// appendCastlingMoves adds O-O and O-O-O when the right is held, the
// rook is home, the path between is clear, and the king neither starts
// in check nor crosses an attacked square. The rook passing an attacked
// square (queenside b-file) is fine.
func appendCastlingMoves(moves []core.Move, b *core.Board, from core.Square, turn core.Color, cr core.CastlingRights) []core.Move {
	rank := 0
	if turn == core.Black {
		rank = 7
	}
	if from != core.Sq(4, rank) {
		return moves
	}
	opp := turn.Opponent()
	rights := cr.ForColor(turn)

	if rights.Kingside {
		rook := b.At(core.Sq(7, rank))
		if rook.Kind == core.Rook && rook.Color == turn &&
			b.At(core.Sq(5, rank)).IsEmpty() && b.At(core.Sq(6, rank)).IsEmpty() &&
			!IsSquareAttacked(b, from, opp) &&
			!IsSquareAttacked(b, core.Sq(5, rank), opp) &&
			!IsSquareAttacked(b, core.Sq(6, rank), opp) {
			moves = append(moves, core.Move{From: from, To: core.Sq(6, rank), IsCastling: true})
		}
	}
	if rights.Queenside {
		rook := b.At(core.Sq(0, rank))
		if rook.Kind == core.Rook && rook.Color == turn &&
			b.At(core.Sq(1, rank)).IsEmpty() && b.At(core.Sq(2, rank)).IsEmpty() && b.At(core.Sq(3, rank)).IsEmpty() &&
			!IsSquareAttacked(b, from, opp) &&
			!IsSquareAttacked(b, core.Sq(3, rank), opp) &&
			!IsSquareAttacked(b, core.Sq(2, rank), opp) {
			moves = append(moves, core.Move{From: from, To: core.Sq(2, rank), IsCastling: true})
		}
	}
	return moves
}

// Apply returns the board after the move, handling the castling rook
// hop, en passant pawn removal and promotion replacement. The move must
// come from generation; Apply does not re-validate.
func Apply(b core.Board, m core.Move) core.Board {
	p := b.At(m.From)
	b.Set(m.From, core.Piece{})

	if m.IsEnPassant {
		captured, _ := m.To.Offset(0, -p.Color.PawnDirection())
		b.Set(captured, core.Piece{})
	}
	if m.IsCastling {
		rank := m.From.Rank()
		if m.To.File() == 6 {
			b.Set(core.Sq(5, rank), b.At(core.Sq(7, rank)))
			b.Set(core.Sq(7, rank), core.Piece{})
		} else {
			b.Set(core.Sq(3, rank), b.At(core.Sq(0, rank)))
			b.Set(core.Sq(0, rank), core.Piece{})
		}
	}
	if m.Promotion != core.NoPiece {
		p = core.Piece{Kind: m.Promotion, Color: p.Color}
	}
	b.Set(m.To, p)
	return b
}

// LegalMoves generates the full legal move list for the side to move,
// sorted by (from, to, promotion) so identical positions always yield
// identical listings.
func LegalMoves(b *core.Board, turn core.Color, cr core.CastlingRights, ep *core.Square) []core.Move {
	pseudo := PseudoLegalMoves(b, turn, cr, ep)
	legal := pseudo[:0]
	for _, m := range pseudo {
		next := Apply(*b, m)
		if !IsInCheck(&next, turn) {
			legal = append(legal, m)
		}
	}
	sort.Slice(legal, func(i, j int) bool {
		if legal[i].From != legal[j].From {
			return legal[i].From < legal[j].From
		}
		if legal[i].To != legal[j].To {
			return legal[i].To < legal[j].To
		}
		return legal[i].Promotion < legal[j].Promotion
	})
	return legal
}

// HasLegalEnPassant reports whether the side to move has at least one
// legal en passant capture. Used to decide whether the en passant field
// enters the repetition key.
func HasLegalEnPassant(b *core.Board, turn core.Color, cr core.CastlingRights, ep *core.Square) bool {
	if ep == nil {
		return false
	}
	for _, m := range LegalMoves(b, turn, cr, ep) {
		if m.IsEnPassant {
			return true
		}
	}
	return false
}

// InsufficientMaterial reports whether neither side can possibly mate:
// no pawns, rooks or queens on the board, and the minor pieces amount
// to at most K vs K, K+minor vs K, or same-colored single bishops.
func InsufficientMaterial(b *core.Board) bool {
	var knights, bishops int
	var bishopSquares []core.Square
	for s := core.Square(0); s < 64; s++ {
		switch b.At(s).Kind {
		case core.Pawn, core.Rook, core.Queen:
			return false
		case core.Knight:
			knights++
		case core.Bishop:
			bishops++
			bishopSquares = append(bishopSquares, s)
		}
	}
	switch {
	case knights+bishops <= 1:
		return true
	case knights == 0 && bishops == 2:
		// K+B vs K+B with both bishops on the same color complex.
		return b.At(bishopSquares[0]).Color != b.At(bishopSquares[1]).Color &&
			bishopSquares[0].IsLight() == bishopSquares[1].IsLight()
	}
	return false
}

// Perft counts leaf nodes of the legal move tree to the given depth.
// Standard correctness probe for the generator.
func Perft(b *core.Board, turn core.Color, cr core.CastlingRights, ep *core.Square, depth int) int {
	if depth == 0 {
		return 1
	}
	moves := LegalMoves(b, turn, cr, ep)
	if depth == 1 {
		return len(moves)
	}
	total := 0
	for _, m := range moves {
		next := Apply(*b, m)
		ncr := cr
		UpdateCastlingRights(&ncr, b, m)
		nep := EnPassantTarget(b, m)
		total += Perft(&next, turn.Opponent(), ncr, nep, depth-1)
	}
	return total
}

// UpdateCastlingRights clears rights invalidated by the move: any king
// move clears both for the mover, and a rook leaving or being captured
// on its home corner clears that side's right. b is the board before
// the move.
func UpdateCastlingRights(cr *core.CastlingRights, b *core.Board, m core.Move) {
	if b.At(m.From).Kind == core.King {
		side := cr.ForColor(b.At(m.From).Color)
		side.Kingside = false
		side.Queenside = false
	}
	for _, sq := range [2]core.Square{m.From, m.To} {
		switch sq {
		case core.Sq(0, 0):
			cr.White.Queenside = false
		case core.Sq(7, 0):
			cr.White.Kingside = false
		case core.Sq(0, 7):
			cr.Black.Queenside = false
		case core.Sq(7, 7):
			cr.Black.Kingside = false
		}
	}
}

// EnPassantTarget returns the en passant target square created by the
// move (the square a double-stepping pawn skipped), or nil. b is the
// board before the move.
func EnPassantTarget(b *core.Board, m core.Move) *core.Square {
	if b.At(m.From).Kind != core.Pawn {
		return nil
	}
	dr := m.To.Rank() - m.From.Rank()
	if dr != 2 && dr != -2 {
		return nil
	}
	mid := core.Sq(m.From.File(), m.From.Rank()+dr/2)
	return &mid
}
