package http

import (
	"github.com/gofiber/fiber/v2"
)

// CreateGame starts a fresh game in the standard starting position.
func (h *Handler) CreateGame(c *fiber.Ctx) error {
	view := h.svc.CreateGame()
	return c.Status(fiber.StatusCreated).JSON(CreateGameResponse{
		GameID:  view.GameID,
		Message: "New chess game created. White to move.",
	})
}

// ListGames returns summaries of all in-memory games.
func (h *Handler) ListGames(c *fiber.Ctx) error {
	return c.JSON(GameListResponse{Games: h.svc.ListGames()})
}

// GetGame returns the full view of one game.
func (h *Handler) GetGame(c *fiber.Ctx) error {
	view, err := h.svc.GetGame(c.Params("gameId"))
	if err != nil {
		return err
	}
	return c.JSON(view)
}

// DeleteGame removes a game, archiving it first when finished.
func (h *Handler) DeleteGame(c *fiber.Ctx) error {
	gameID := c.Params("gameId")
	if err := h.svc.DeleteGame(gameID); err != nil {
		return err
	}
	return c.JSON(MessageResponse{Message: "Game " + gameID + " deleted."})
}

// SubmitMove plays one move.
func (h *Handler) SubmitMove(c *fiber.Ctx) error {
	var req MoveRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	from, to, promotion, err := req.parseMove()
	if err != nil {
		return err
	}

	outcome, err := h.svc.SubmitMove(c.Params("gameId"), from, to, promotion)
	if err != nil {
		return err
	}
	return c.JSON(outcome)
}

// SubmitAction applies resign, offer_draw, accept_draw or claim_draw.
func (h *Handler) SubmitAction(c *fiber.Ctx) error {
	var req ActionRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	outcome, err := h.svc.SubmitAction(c.Params("gameId"), req.toAction())
	if err != nil {
		return err
	}
	return c.JSON(outcome)
}

// GetLegalMoves lists the legal moves of the side to move.
func (h *Handler) GetLegalMoves(c *fiber.Ctx) error {
	moves, turn, err := h.svc.LegalMoves(c.Params("gameId"))
	if err != nil {
		return err
	}
	return c.JSON(LegalMovesResponse{
		Turn:  turn,
		Moves: moveListJSON(moves),
		Count: len(moves),
	})
}

// GetBoard renders the board as plain text.
func (h *Handler) GetBoard(c *fiber.Ctx) error {
	ascii, err := h.svc.ASCIIBoard(c.Params("gameId"))
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	return c.SendString(ascii)
}
