package game

import (
	"strings"

	"checkai/internal/core"
	"checkai/internal/movegen"
)

// SAN renders a legal move in Standard Algebraic Notation against the
// position it is played from. Disambiguation prefers file, then rank,
// then both; check and mate suffixes come from the resulting position.
func SAN(b *core.Board, turn core.Color, cr core.CastlingRights, ep *core.Square, m core.Move) string {
	var sb strings.Builder

	piece := b.At(m.From)
	isCapture := !b.At(m.To).IsEmpty() || m.IsEnPassant

	switch {
	case m.IsCastling && m.To.File() == 6:
		sb.WriteString("O-O")
	case m.IsCastling:
		sb.WriteString("O-O-O")
	case piece.Kind == core.Pawn:
		if isCapture {
			sb.WriteByte(byte('a' + m.From.File()))
			sb.WriteByte('x')
		}
		sb.WriteString(m.To.String())
		if m.Promotion != core.NoPiece {
			sb.WriteByte('=')
			sb.WriteString(m.Promotion.Letter())
		}
	default:
		sb.WriteString(piece.Kind.Letter())
		sb.WriteString(disambiguation(b, turn, cr, ep, m, piece.Kind))
		if isCapture {
			sb.WriteByte('x')
		}
		sb.WriteString(m.To.String())
	}

	sb.WriteString(checkSuffix(b, turn, cr, m))
	return sb.String()
}

// disambiguation returns the minimal origin hint when another piece of
// the same kind can legally reach the same destination.
func disambiguation(b *core.Board, turn core.Color, cr core.CastlingRights, ep *core.Square, m core.Move, kind core.PieceKind) string {
	var rivals []core.Square
	for _, other := range movegen.LegalMoves(b, turn, cr, ep) {
		if other.To != m.To || other.From == m.From {
			continue
		}
		if b.At(other.From).Kind == kind {
			rivals = append(rivals, other.From)
		}
	}
	if len(rivals) == 0 {
		return ""
	}

	fileUnique, rankUnique := true, true
	for _, r := range rivals {
		if r.File() == m.From.File() {
			fileUnique = false
		}
		if r.Rank() == m.From.Rank() {
			rankUnique = false
		}
	}
	switch {
	case fileUnique:
		return string(byte('a' + m.From.File()))
	case rankUnique:
		return string(byte('1' + m.From.Rank()))
	default:
		return m.From.String()
	}
}

// checkSuffix computes "+" or "#" by applying the move and inspecting
// the opponent's resulting position.
func checkSuffix(b *core.Board, turn core.Color, cr core.CastlingRights, m core.Move) string {
	next := movegen.Apply(*b, m)
	opp := turn.Opponent()
	if !movegen.IsInCheck(&next, opp) {
		return ""
	}
	ncr := cr
	movegen.UpdateCastlingRights(&ncr, b, m)
	nep := movegen.EnPassantTarget(b, m)
	if len(movegen.LegalMoves(&next, opp, ncr, nep)) == 0 {
		return "#"
	}
	return "+"
}
