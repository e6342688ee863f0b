package game

import (
	"fmt"
	"time"

	"checkai/internal/core"
)

// StateJSON is the wire form of a position.
type StateJSON struct {
	Board           map[string]string   `json:"board"`
	Turn            core.Color          `json:"turn"`
	Castling        core.CastlingRights `json:"castling"`
	EnPassant       *string             `json:"en_passant"`
	HalfmoveClock   int                 `json:"halfmove_clock"`
	FullmoveNumber  int                 `json:"fullmove_number"`
	PositionHistory []string            `json:"position_history"`
}

// HistoryEntryJSON is the wire form of one history entry.
type HistoryEntryJSON struct {
	MoveNumber int           `json:"move_number"`
	Side       core.Color    `json:"side"`
	Notation   string        `json:"notation"`
	MoveJSON   core.MoveJSON `json:"move_json"`
}

// View is the full serializable game view.
type View struct {
	GameID         string             `json:"game_id"`
	CreatedAt      time.Time          `json:"created_at"`
	State          StateJSON          `json:"state"`
	IsCheck        bool               `json:"is_check"`
	IsOver         bool               `json:"is_over"`
	Result         *core.GameResult   `json:"result"`
	EndReason      *core.EndReason    `json:"end_reason"`
	MoveHistory    []HistoryEntryJSON `json:"move_history"`
	LegalMoveCount int                `json:"legal_move_count"`
}

// Summary is the listing row for one game.
type Summary struct {
	GameID         string           `json:"game_id"`
	CreatedAt      time.Time        `json:"created_at"`
	Turn           core.Color       `json:"turn"`
	FullmoveNumber int              `json:"fullmove_number"`
	Result         *core.GameResult `json:"result"`
}

// MoveOutcome reports an accepted move and the state it produced.
type MoveOutcome struct {
	Success   bool             `json:"success"`
	Message   string           `json:"message"`
	Notation  string           `json:"notation"`
	State     StateJSON        `json:"state"`
	IsCheck   bool             `json:"is_check"`
	IsOver    bool             `json:"is_over"`
	Result    *core.GameResult `json:"result"`
	EndReason *core.EndReason  `json:"end_reason"`
}

// ActionOutcome reports an accepted non-move action.
type ActionOutcome struct {
	Success   bool             `json:"success"`
	Message   string           `json:"message"`
	IsOver    bool             `json:"is_over"`
	Result    *core.GameResult `json:"result"`
	EndReason *core.EndReason  `json:"end_reason"`
}

func (g *Game) stateJSON() StateJSON {
	var ep *string
	if g.enPassant != nil {
		s := g.enPassant.String()
		ep = &s
	}
	history := make([]string, len(g.positionHistory))
	copy(history, g.positionHistory)
	return StateJSON{
		Board:           g.board.ToMap(),
		Turn:            g.turn,
		Castling:        g.castling,
		EnPassant:       ep,
		HalfmoveClock:   g.halfmoveClock,
		FullmoveNumber:  g.fullmoveNumber,
		PositionHistory: history,
	}
}

// Snapshot returns an immutable view of the whole game.
func (g *Game) Snapshot() *View {
	moves := make([]HistoryEntryJSON, len(g.moveHistory))
	for i, h := range g.moveHistory {
		moves[i] = HistoryEntryJSON{
			MoveNumber: h.MoveNumber,
			Side:       h.Side,
			Notation:   h.Notation,
			MoveJSON:   h.Move.JSON(),
		}
	}
	legal := 0
	if !g.IsOver() {
		legal = len(g.LegalMoves())
	}
	return &View{
		GameID:         g.ID,
		CreatedAt:      g.CreatedAt,
		State:          g.stateJSON(),
		IsCheck:        g.IsCheck(),
		IsOver:         g.IsOver(),
		Result:         g.result,
		EndReason:      g.endReason,
		MoveHistory:    moves,
		LegalMoveCount: legal,
	}
}

// Summarize returns the listing row for this game.
func (g *Game) Summarize() Summary {
	return Summary{
		GameID:         g.ID,
		CreatedAt:      g.CreatedAt,
		Turn:           g.turn,
		FullmoveNumber: g.fullmoveNumber,
		Result:         g.result,
	}
}

func (g *Game) moveOutcome(notation string) *MoveOutcome {
	msg := fmt.Sprintf("Move played: %s. %s to move.", notation, titleColor(g.turn))
	if g.IsOver() {
		msg = fmt.Sprintf("Move played: %s. Game over: %s (%s).", notation, *g.result, *g.endReason)
	}
	return &MoveOutcome{
		Success:   true,
		Message:   msg,
		Notation:  notation,
		State:     g.stateJSON(),
		IsCheck:   g.IsCheck(),
		IsOver:    g.IsOver(),
		Result:    g.result,
		EndReason: g.endReason,
	}
}

func (g *Game) actionOutcome(msg string) *ActionOutcome {
	return &ActionOutcome{
		Success:   true,
		Message:   msg,
		IsOver:    g.IsOver(),
		Result:    g.result,
		EndReason: g.endReason,
	}
}

func titleColor(c core.Color) string {
	if c == core.Black {
		return "Black"
	}
	return "White"
}
