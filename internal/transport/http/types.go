package http

import (
	"fmt"

	"checkai/internal/core"
	"checkai/internal/game"
)

// Request types

type MoveRequest struct {
	From      string  `json:"from" validate:"required,len=2"`
	To        string  `json:"to" validate:"required,len=2"`
	Promotion *string `json:"promotion" validate:"omitempty,oneof=Q R B N"`
}

type ActionRequest struct {
	Action string `json:"action" validate:"required,oneof=resign offer_draw accept_draw claim_draw"`
	Reason string `json:"reason" validate:"omitempty,oneof=threefold_repetition fifty_move_rule"`
}

// Response types

type CreateGameResponse struct {
	GameID  string `json:"game_id"`
	Message string `json:"message"`
}

type GameListResponse struct {
	Games []game.Summary `json:"games"`
}

type LegalMovesResponse struct {
	Turn  core.Color      `json:"turn"`
	Moves []core.MoveJSON `json:"moves"`
	Count int             `json:"count"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// toAction converts a validated request into the engine action.
func (r ActionRequest) toAction() game.Action {
	return game.Action{
		Type:   game.ActionType(r.Action),
		Reason: game.ClaimReason(r.Reason),
	}
}

// parseMove converts a validated request into engine move fields.
func (r MoveRequest) parseMove() (from, to core.Square, promotion core.PieceKind, err error) {
	if from, err = core.ParseSquare(r.From); err != nil {
		err = fmt.Errorf("%w: %s", core.ErrMalformedInput, err.Error())
		return
	}
	if to, err = core.ParseSquare(r.To); err != nil {
		err = fmt.Errorf("%w: %s", core.ErrMalformedInput, err.Error())
		return
	}
	if r.Promotion != nil {
		if promotion, err = core.ParsePromotion(*r.Promotion); err != nil {
			err = fmt.Errorf("%w: %s", core.ErrMalformedInput, err.Error())
		}
	}
	return
}

func moveListJSON(moves []core.Move) []core.MoveJSON {
	out := make([]core.MoveJSON, len(moves))
	for i, m := range moves {
		out[i] = m.JSON()
	}
	return out
}
