package movegen_test

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"checkai/internal/core"
	"checkai/internal/movegen"
)

func sq(t *testing.T, name string) core.Square {
	t.Helper()
	s, err := core.ParseSquare(name)
	require.NoError(t, err)
	return s
}

// emptyWithKings returns a board holding only the two kings, which
// every position needs.
func emptyWithKings(t *testing.T, whiteKing, blackKing string) core.Board {
	t.Helper()
	var b core.Board
	b.Set(sq(t, whiteKing), core.Piece{Kind: core.King, Color: core.White})
	b.Set(sq(t, blackKing), core.Piece{Kind: core.King, Color: core.Black})
	return b
}

func noRights() core.CastlingRights {
	return core.CastlingRights{}
}

func TestStartingPositionHasTwentyMoves(t *testing.T) {
	b := core.StartingBoard()
	moves := movegen.LegalMoves(&b, core.White, core.NewCastlingRights(), nil)
	assert.Len(t, moves, 20)
}

func TestPerftFromStart(t *testing.T) {
	b := core.StartingBoard()
	cr := core.NewCastlingRights()

	assert.Equal(t, 20, movegen.Perft(&b, core.White, cr, nil, 1))
	assert.Equal(t, 400, movegen.Perft(&b, core.White, cr, nil, 2))
	assert.Equal(t, 8902, movegen.Perft(&b, core.White, cr, nil, 3))
}

func TestLegalMovesDeterministicOrder(t *testing.T) {
	b := core.StartingBoard()
	cr := core.NewCastlingRights()

	moves := movegen.LegalMoves(&b, core.White, cr, nil)
	again := movegen.LegalMoves(&b, core.White, cr, nil)
	assert.Equal(t, moves, again)

	sorted := sort.SliceIsSorted(moves, func(i, j int) bool {
		if moves[i].From != moves[j].From {
			return moves[i].From < moves[j].From
		}
		return moves[i].To < moves[j].To
	})
	assert.True(t, sorted, "moves should be sorted by from then to")
}

func TestNoLegalMoveLeavesKingAttacked(t *testing.T) {
	b := core.StartingBoard()
	cr := core.NewCastlingRights()
	for _, m := range movegen.LegalMoves(&b, core.White, cr, nil) {
		next := movegen.Apply(b, m)
		assert.False(t, movegen.IsInCheck(&next, core.White), "move %s leaves king in check", m.UCI())
	}
}

func TestIsSquareAttacked(t *testing.T) {
	b := emptyWithKings(t, "e1", "e8")
	b.Set(sq(t, "d4"), core.Piece{Kind: core.Knight, Color: core.Black})
	b.Set(sq(t, "a8"), core.Piece{Kind: core.Rook, Color: core.Black})
	b.Set(sq(t, "g4"), core.Piece{Kind: core.Pawn, Color: core.Black})

	assert.True(t, movegen.IsSquareAttacked(&b, sq(t, "e2"), core.Black), "knight attack")
	assert.True(t, movegen.IsSquareAttacked(&b, sq(t, "a1"), core.Black), "rook file attack")
	assert.True(t, movegen.IsSquareAttacked(&b, sq(t, "f3"), core.Black), "pawn diagonal attack")
	assert.False(t, movegen.IsSquareAttacked(&b, sq(t, "g5"), core.Black), "pawns do not attack backward")

	// Blocked ray: interpose a piece on the a-file.
	b.Set(sq(t, "a5"), core.Piece{Kind: core.Pawn, Color: core.White})
	assert.False(t, movegen.IsSquareAttacked(&b, sq(t, "a1"), core.Black))
}

func TestCastlingBlockedThroughAttackedSquare(t *testing.T) {
	// White K e1, R h1; black rook on f8 covers f1, so O-O is illegal
	// even though g1 itself only matters via the king path.
	b := emptyWithKings(t, "e1", "a8")
	b.Set(sq(t, "h1"), core.Piece{Kind: core.Rook, Color: core.White})
	b.Set(sq(t, "f8"), core.Piece{Kind: core.Rook, Color: core.Black})

	cr := core.CastlingRights{White: core.SideCastlingRights{Kingside: true}}
	moves := movegen.LegalMoves(&b, core.White, cr, nil)

	for _, m := range moves {
		assert.False(t, m.IsCastling, "castling through an attacked square must be rejected")
		if m.From == sq(t, "e1") {
			assert.NotEqual(t, sq(t, "f1"), m.To, "king cannot step onto an attacked square")
		}
	}
}

func TestCastlingAllowedWhenPathSafe(t *testing.T) {
	b := emptyWithKings(t, "e1", "e8")
	b.Set(sq(t, "h1"), core.Piece{Kind: core.Rook, Color: core.White})
	b.Set(sq(t, "a1"), core.Piece{Kind: core.Rook, Color: core.White})

	cr := core.CastlingRights{White: core.SideCastlingRights{Kingside: true, Queenside: true}}
	moves := movegen.LegalMoves(&b, core.White, cr, nil)

	var kingside, queenside bool
	for _, m := range moves {
		if m.IsCastling && m.To == sq(t, "g1") {
			kingside = true
		}
		if m.IsCastling && m.To == sq(t, "c1") {
			queenside = true
		}
	}
	assert.True(t, kingside)
	assert.True(t, queenside)
}

func TestCastlingRequiresClearPath(t *testing.T) {
	b := emptyWithKings(t, "e1", "e8")
	b.Set(sq(t, "h1"), core.Piece{Kind: core.Rook, Color: core.White})
	b.Set(sq(t, "g1"), core.Piece{Kind: core.Knight, Color: core.White})

	cr := core.CastlingRights{White: core.SideCastlingRights{Kingside: true}}
	for _, m := range movegen.LegalMoves(&b, core.White, cr, nil) {
		assert.False(t, m.IsCastling)
	}
}

func TestCastlingApplyMovesRook(t *testing.T) {
	b := emptyWithKings(t, "e1", "e8")
	b.Set(sq(t, "h1"), core.Piece{Kind: core.Rook, Color: core.White})

	next := movegen.Apply(b, core.Move{From: sq(t, "e1"), To: sq(t, "g1"), IsCastling: true})
	assert.Equal(t, core.King, next.At(sq(t, "g1")).Kind)
	assert.Equal(t, core.Rook, next.At(sq(t, "f1")).Kind)
	assert.True(t, next.At(sq(t, "h1")).IsEmpty())
	assert.True(t, next.At(sq(t, "e1")).IsEmpty())
}

func TestEnPassantCaptureRemovesPawn(t *testing.T) {
	b := emptyWithKings(t, "e1", "e8")
	b.Set(sq(t, "e5"), core.Piece{Kind: core.Pawn, Color: core.White})
	b.Set(sq(t, "f5"), core.Piece{Kind: core.Pawn, Color: core.Black})
	ep := sq(t, "f6")

	moves := movegen.LegalMoves(&b, core.White, noRights(), &ep)
	var epMove *core.Move
	for i, m := range moves {
		if m.IsEnPassant {
			epMove = &moves[i]
		}
	}
	require.NotNil(t, epMove, "en passant capture should be generated")
	assert.Equal(t, sq(t, "f6"), epMove.To)

	next := movegen.Apply(b, *epMove)
	assert.Equal(t, core.Pawn, next.At(sq(t, "f6")).Kind)
	assert.True(t, next.At(sq(t, "f5")).IsEmpty(), "captured pawn removed from f5")
	assert.True(t, next.At(sq(t, "e5")).IsEmpty())
}

func TestHasLegalEnPassant(t *testing.T) {
	b := emptyWithKings(t, "e1", "e8")
	b.Set(sq(t, "e5"), core.Piece{Kind: core.Pawn, Color: core.White})
	b.Set(sq(t, "f5"), core.Piece{Kind: core.Pawn, Color: core.Black})
	ep := sq(t, "f6")

	assert.True(t, movegen.HasLegalEnPassant(&b, core.White, noRights(), &ep))
	assert.False(t, movegen.HasLegalEnPassant(&b, core.White, noRights(), nil))

	// No white pawn adjacent: target present but no capture exists.
	b.Set(sq(t, "e5"), core.Piece{})
	assert.False(t, movegen.HasLegalEnPassant(&b, core.White, noRights(), &ep))
}

func TestPromotionGeneratesFourVariants(t *testing.T) {
	b := emptyWithKings(t, "e1", "a8")
	b.Set(sq(t, "h7"), core.Piece{Kind: core.Pawn, Color: core.White})

	var promos []core.PieceKind
	for _, m := range movegen.LegalMoves(&b, core.White, noRights(), nil) {
		if m.From == sq(t, "h7") {
			promos = append(promos, m.Promotion)
		}
	}
	assert.ElementsMatch(t, []core.PieceKind{core.Queen, core.Rook, core.Bishop, core.Knight}, promos)
}

func TestPinnedPieceCannotMove(t *testing.T) {
	b := emptyWithKings(t, "e1", "e8")
	b.Set(sq(t, "e4"), core.Piece{Kind: core.Knight, Color: core.White})
	b.Set(sq(t, "e7"), core.Piece{Kind: core.Rook, Color: core.Black})

	for _, m := range movegen.LegalMoves(&b, core.White, noRights(), nil) {
		assert.NotEqual(t, sq(t, "e4"), m.From, "pinned knight must not move")
	}
}

func TestUpdateCastlingRights(t *testing.T) {
	b := core.StartingBoard()

	cr := core.NewCastlingRights()
	movegen.UpdateCastlingRights(&cr, &b, core.Move{From: sq(t, "e1"), To: sq(t, "e2")})
	assert.False(t, cr.White.Kingside)
	assert.False(t, cr.White.Queenside)
	assert.True(t, cr.Black.Kingside)

	cr = core.NewCastlingRights()
	movegen.UpdateCastlingRights(&cr, &b, core.Move{From: sq(t, "h1"), To: sq(t, "h4")})
	assert.False(t, cr.White.Kingside)
	assert.True(t, cr.White.Queenside)

	// Capture landing on a rook corner clears the opponent right.
	cr = core.NewCastlingRights()
	movegen.UpdateCastlingRights(&cr, &b, core.Move{From: sq(t, "b2"), To: sq(t, "a1")})
	assert.False(t, cr.White.Queenside)
}

func TestEnPassantTarget(t *testing.T) {
	b := core.StartingBoard()

	ep := movegen.EnPassantTarget(&b, core.Move{From: sq(t, "e2"), To: sq(t, "e4")})
	require.NotNil(t, ep)
	assert.Equal(t, "e3", ep.String())

	assert.Nil(t, movegen.EnPassantTarget(&b, core.Move{From: sq(t, "e2"), To: sq(t, "e3")}))
	assert.Nil(t, movegen.EnPassantTarget(&b, core.Move{From: sq(t, "g1"), To: sq(t, "f3")}))
}

func TestInsufficientMaterial(t *testing.T) {
	tests := []struct {
		name   string
		pieces map[string]core.Piece
		want   bool
	}{
		{"kings only", nil, true},
		{"king and bishop vs king", map[string]core.Piece{
			"c1": {Kind: core.Bishop, Color: core.White},
		}, true},
		{"king and knight vs king", map[string]core.Piece{
			"b1": {Kind: core.Knight, Color: core.Black},
		}, true},
		{"same-color bishops", map[string]core.Piece{
			"c1": {Kind: core.Bishop, Color: core.White}, // dark square
			"f8": {Kind: core.Bishop, Color: core.Black}, // dark square
		}, true},
		{"opposite-color bishops", map[string]core.Piece{
			"c1": {Kind: core.Bishop, Color: core.White}, // dark square
			"c8": {Kind: core.Bishop, Color: core.Black}, // light square
		}, false},
		{"two knights", map[string]core.Piece{
			"b1": {Kind: core.Knight, Color: core.White},
			"g1": {Kind: core.Knight, Color: core.White},
		}, false},
		{"single pawn", map[string]core.Piece{
			"a2": {Kind: core.Pawn, Color: core.White},
		}, false},
		{"single rook", map[string]core.Piece{
			"a1": {Kind: core.Rook, Color: core.White},
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := emptyWithKings(t, "e1", "e8")
			for name, p := range tt.pieces {
				b.Set(sq(t, name), p)
			}
			assert.Equal(t, tt.want, movegen.InsufficientMaterial(&b))
		})
	}
}
