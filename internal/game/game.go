// Package game implements a single chess game: position, histories,
// draw-offer state and terminal detection. Mutation goes through
// ApplyMove and ApplyAction only.
package game

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"checkai/internal/core"
	"checkai/internal/movegen"
)

// ActionType names a non-move action.
type ActionType string

const (
	ActionResign     ActionType = "resign"
	ActionOfferDraw  ActionType = "offer_draw"
	ActionAcceptDraw ActionType = "accept_draw"
	ActionClaimDraw  ActionType = "claim_draw"
)

// ClaimReason names a claimable draw rule.
type ClaimReason string

const (
	ClaimThreefold ClaimReason = "threefold_repetition"
	ClaimFiftyMove ClaimReason = "fifty_move_rule"
)

// Action is a decoded non-move action. Reason is set for claim_draw only.
type Action struct {
	Type   ActionType
	Reason ClaimReason
}

// HistoryEntry records one played move: the move, its SAN notation, the
// side and fullmove number it was played at, and the key of the
// position that existed before the move.
type HistoryEntry struct {
	Move       core.Move
	Notation   string
	Side       core.Color
	MoveNumber int
	PrevKey    string
}

// Game is one chess game. Not safe for concurrent use; the session
// layer serializes access per game.
type Game struct {
	ID        string
	CreatedAt time.Time

	board          core.Board
	turn           core.Color
	castling       core.CastlingRights
	enPassant      *core.Square
	halfmoveClock  int
	fullmoveNumber int

	positionHistory []string
	moveHistory     []HistoryEntry

	drawOffered [2]bool

	result    *core.GameResult
	endReason *core.EndReason
}

// New returns a game in the standard starting position with a fresh
// UUID v4 id.
func New() *Game {
	return NewWithID(uuid.New().String())
}

// NewWithID returns a starting-position game under an existing id.
// Used when replaying archived games.
func NewWithID(id string) *Game {
	g := &Game{
		ID:             id,
		CreatedAt:      time.Now().UTC(),
		board:          core.StartingBoard(),
		turn:           core.White,
		castling:       core.NewCastlingRights(),
		fullmoveNumber: 1,
	}
	g.positionHistory = []string{g.positionKey()}
	return g
}

// IsOver reports whether the game reached a terminal state.
func (g *Game) IsOver() bool { return g.result != nil }

// Turn returns the side to move.
func (g *Game) Turn() core.Color { return g.turn }

// FullmoveNumber returns the current fullmove number.
func (g *Game) FullmoveNumber() int { return g.fullmoveNumber }

// HalfmoveClock returns halfmoves since the last pawn move or capture.
func (g *Game) HalfmoveClock() int { return g.halfmoveClock }

// Result returns the result and end reason, nil while the game runs.
func (g *Game) Result() (*core.GameResult, *core.EndReason) {
	return g.result, g.endReason
}

// MoveHistory returns the played moves in order.
func (g *Game) MoveHistory() []HistoryEntry { return g.moveHistory }

// Board returns a copy of the current board.
func (g *Game) Board() core.Board { return g.board }

// LegalMoves returns the legal moves of the side to move, sorted.
func (g *Game) LegalMoves() []core.Move {
	return movegen.LegalMoves(&g.board, g.turn, g.castling, g.enPassant)
}

// IsCheck reports whether the side to move is in check.
func (g *Game) IsCheck() bool {
	return movegen.IsInCheck(&g.board, g.turn)
}

// positionKey builds the repetition fingerprint: placement, side to
// move, castling rights, and the en passant target only when a legal
// en passant capture actually exists.
func (g *Game) positionKey() string {
	ep := "-"
	if movegen.HasLegalEnPassant(&g.board, g.turn, g.castling, g.enPassant) {
		ep = g.enPassant.String()
	}
	turn := "w"
	if g.turn == core.Black {
		turn = "b"
	}
	return strings.Join([]string{g.board.PlacementFEN(), turn, g.castling.FEN(), ep}, " ")
}

func (g *Game) repetitionCount() int {
	if len(g.positionHistory) == 0 {
		return 0
	}
	current := g.positionHistory[len(g.positionHistory)-1]
	n := 0
	for _, k := range g.positionHistory {
		if k == current {
			n++
		}
	}
	return n
}

// resolveMove maps a submitted (from, to, promotion) triple onto a
// generated legal move, or explains the rejection.
func (g *Game) resolveMove(from, to core.Square, promotion core.PieceKind) (core.Move, error) {
	p := g.board.At(from)
	if p.IsEmpty() || p.Color != g.turn {
		return core.Move{}, &core.IllegalMoveError{Reason: "not your piece"}
	}

	var sameSquares []core.Move
	for _, m := range g.LegalMoves() {
		if m.From != from || m.To != to {
			continue
		}
		if m.Promotion == promotion {
			return m, nil
		}
		sameSquares = append(sameSquares, m)
	}
	if len(sameSquares) > 0 {
		if promotion == core.NoPiece {
			return core.Move{}, &core.IllegalMoveError{Reason: "missing promotion"}
		}
		return core.Move{}, &core.IllegalMoveError{Reason: "promotion on non-pawn move"}
	}

	for _, m := range movegen.PseudoLegalMoves(&g.board, g.turn, g.castling, g.enPassant) {
		if m.From == from && m.To == to {
			return core.Move{}, &core.IllegalMoveError{Reason: "leaves king in check"}
		}
	}
	return core.Move{}, &core.IllegalMoveError{Reason: "wrong pattern"}
}

// ApplyMove validates and plays one move, then runs terminal detection.
func (g *Game) ApplyMove(from, to core.Square, promotion core.PieceKind) (*MoveOutcome, error) {
	if g.IsOver() {
		return nil, core.ErrGameOver
	}

	mv, err := g.resolveMove(from, to, promotion)
	if err != nil {
		return nil, err
	}

	prevKey := g.positionKey()
	notation := SAN(&g.board, g.turn, g.castling, g.enPassant, mv)
	g.moveHistory = append(g.moveHistory, HistoryEntry{
		Move:       mv,
		Notation:   notation,
		Side:       g.turn,
		MoveNumber: g.fullmoveNumber,
		PrevKey:    prevKey,
	})

	isPawnMove := g.board.At(mv.From).Kind == core.Pawn
	isCapture := !g.board.At(mv.To).IsEmpty() || mv.IsEnPassant

	movegen.UpdateCastlingRights(&g.castling, &g.board, mv)
	g.enPassant = movegen.EnPassantTarget(&g.board, mv)
	g.board = movegen.Apply(g.board, mv)

	if isPawnMove || isCapture {
		g.halfmoveClock = 0
	} else {
		g.halfmoveClock++
	}
	g.turn = g.turn.Opponent()
	if g.turn == core.White {
		g.fullmoveNumber++
	}
	g.positionHistory = append(g.positionHistory, g.positionKey())

	// A move by either side expires any pending draw offer.
	g.drawOffered = [2]bool{}

	g.detectTerminal()

	return g.moveOutcome(notation), nil
}

// detectTerminal checks the automatic end conditions in fixed order:
// no legal moves, insufficient material, fivefold repetition, 75-move.
func (g *Game) detectTerminal() {
	if len(g.LegalMoves()) == 0 {
		if g.IsCheck() {
			g.end(core.WinnerOf(g.turn.Opponent()), core.EndCheckmate)
		} else {
			g.end(core.DrawResult, core.EndStalemate)
		}
		return
	}
	if movegen.InsufficientMaterial(&g.board) {
		g.end(core.DrawResult, core.EndInsufficientMaterial)
		return
	}
	if g.repetitionCount() >= 5 {
		g.end(core.DrawResult, core.EndFivefoldRepetition)
		return
	}
	if g.halfmoveClock >= 150 {
		g.end(core.DrawResult, core.EndSeventyFiveMoveRule)
	}
}

func (g *Game) end(result core.GameResult, reason core.EndReason) {
	g.result = &result
	g.endReason = &reason
}

// ApplyAction processes resign, offer_draw, accept_draw and claim_draw.
func (g *Game) ApplyAction(a Action) (*ActionOutcome, error) {
	if g.IsOver() {
		return nil, core.ErrGameOver
	}

	switch a.Type {
	case ActionResign:
		g.end(core.WinnerOf(g.turn.Opponent()), core.EndResignation)
		return g.actionOutcome(fmt.Sprintf("%s resigns", g.turn)), nil

	case ActionOfferDraw:
		g.drawOffered[g.turn] = true
		if g.drawOffered[g.turn.Opponent()] {
			g.end(core.DrawResult, core.EndDrawAgreement)
			return g.actionOutcome("draw agreed"), nil
		}
		return g.actionOutcome(fmt.Sprintf("%s offers a draw", g.turn)), nil

	case ActionAcceptDraw:
		if !g.drawOffered[g.turn.Opponent()] {
			return nil, &core.IneligibleDrawClaimError{Reason: "no pending draw offer"}
		}
		g.end(core.DrawResult, core.EndDrawAgreement)
		return g.actionOutcome("draw agreed"), nil

	case ActionClaimDraw:
		switch a.Reason {
		case ClaimThreefold:
			if g.repetitionCount() < 3 {
				return nil, &core.IneligibleDrawClaimError{Reason: "position has not repeated three times"}
			}
			g.end(core.DrawResult, core.EndThreefoldRepetition)
			return g.actionOutcome("draw claimed: threefold repetition"), nil
		case ClaimFiftyMove:
			if g.halfmoveClock < 100 {
				return nil, &core.IneligibleDrawClaimError{
					Reason: fmt.Sprintf("halfmove clock is %d, need 100", g.halfmoveClock),
				}
			}
			g.end(core.DrawResult, core.EndFiftyMoveRule)
			return g.actionOutcome("draw claimed: fifty-move rule"), nil
		default:
			return nil, fmt.Errorf("%w: unknown draw claim reason %q", core.ErrMalformedInput, a.Reason)
		}

	default:
		return nil, fmt.Errorf("%w: unknown action %q", core.ErrMalformedInput, a.Type)
	}
}

// ASCIIBoard renders the current board for the board endpoints.
func (g *Game) ASCIIBoard() string {
	return g.board.ASCII()
}
