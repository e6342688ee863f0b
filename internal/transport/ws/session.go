// Package ws is the WebSocket transport at /ws. Each connection runs a
// read loop plus one writer goroutine that multiplexes command
// responses, bus events and heartbeat pings, so the connection is
// written from a single goroutine.
package ws

import (
	"fmt"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"checkai/internal/bus"
	"checkai/internal/core"
	"checkai/internal/game"
	"checkai/internal/service"
)

const (
	heartbeatInterval = 10 * time.Second
	clientTimeout     = 30 * time.Second
	writeTimeout      = 10 * time.Second
)

type clientFrame struct {
	Action     string  `json:"action"`
	RequestID  *string `json:"request_id"`
	GameID     string  `json:"game_id"`
	From       string  `json:"from"`
	To         string  `json:"to"`
	Promotion  *string `json:"promotion"`
	ActionType string  `json:"action_type"`
	Reason     string  `json:"reason"`
	MoveNumber *int    `json:"move_number"`
}

type response struct {
	Type      string  `json:"type"`
	Action    string  `json:"action"`
	RequestID *string `json:"request_id"`
	Success   bool    `json:"success"`
	Data      any     `json:"data,omitempty"`
	Error     string  `json:"error,omitempty"`
}

func okResponse(f clientFrame, data any) response {
	return response{Type: "response", Action: f.Action, RequestID: f.RequestID, Success: true, Data: data}
}

func errResponse(f clientFrame, msg string) response {
	return response{Type: "response", Action: f.Action, RequestID: f.RequestID, Success: false, Error: msg}
}

type Handler struct {
	svc *service.Service
	log *zap.Logger
}

// Register mounts the /ws route on the app.
func Register(app *fiber.App, svc *service.Service, log *zap.Logger) {
	h := &Handler{svc: svc, log: log}

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(h.serve))
}

type session struct {
	id   string
	conn *websocket.Conn
	sub  *bus.Subscriber
	out  chan response
	done chan struct{}
}

func (h *Handler) serve(conn *websocket.Conn) {
	sess := &session{
		id:   uuid.New().String(),
		conn: conn,
		sub:  h.svc.Bus().Subscribe(),
		out:  make(chan response, 16),
		done: make(chan struct{}),
	}
	h.log.Info("websocket session opened", zap.String("session_id", sess.id))

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		h.writeLoop(sess)
	}()

	h.readLoop(sess)

	close(sess.done)
	h.svc.Bus().Unsubscribe(sess.sub)
	<-writerDone
	h.log.Info("websocket session closed", zap.String("session_id", sess.id))
}

func (h *Handler) readLoop(sess *session) {
	sess.conn.SetReadDeadline(time.Now().Add(clientTimeout))
	sess.conn.SetPongHandler(func(string) error {
		return sess.conn.SetReadDeadline(time.Now().Add(clientTimeout))
	})

	for {
		var frame clientFrame
		if err := sess.conn.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Warn("websocket read failed",
					zap.String("session_id", sess.id), zap.Error(err))
			}
			return
		}
		sess.conn.SetReadDeadline(time.Now().Add(clientTimeout))

		resp := h.dispatch(sess, frame)
		select {
		case sess.out <- resp:
		case <-sess.done:
			return
		}
	}
}

func (h *Handler) writeLoop(sess *session) {
	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case resp := <-sess.out:
			sess.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := sess.conn.WriteJSON(resp); err != nil {
				return
			}
		case ev, ok := <-sess.sub.C:
			if !ok {
				return
			}
			sess.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := sess.conn.WriteJSON(ev); err != nil {
				return
			}
		case <-ticker.C:
			sess.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := sess.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-sess.done:
			return
		}
	}
}

func (h *Handler) dispatch(sess *session, f clientFrame) response {
	switch f.Action {
	case "create_game":
		view := h.svc.CreateGame()
		return okResponse(f, fiber.Map{
			"game_id": view.GameID,
			"message": "New chess game created. White to move.",
		})

	case "list_games":
		return okResponse(f, fiber.Map{"games": h.svc.ListGames()})

	case "get_game":
		return h.withGame(f, func(gameID string) (any, error) {
			return h.svc.GetGame(gameID)
		})

	case "delete_game":
		return h.withGame(f, func(gameID string) (any, error) {
			if err := h.svc.DeleteGame(gameID); err != nil {
				return nil, err
			}
			return fiber.Map{"message": fmt.Sprintf("Game %s deleted.", gameID)}, nil
		})

	case "submit_move":
		return h.withGame(f, func(gameID string) (any, error) {
			from, to, promotion, err := parseMove(f)
			if err != nil {
				return nil, err
			}
			return h.svc.SubmitMove(gameID, from, to, promotion)
		})

	case "submit_action":
		return h.withGame(f, func(gameID string) (any, error) {
			if f.ActionType == "" {
				return nil, fmt.Errorf("%w: missing field: action_type", core.ErrMalformedInput)
			}
			return h.svc.SubmitAction(gameID, game.Action{
				Type:   game.ActionType(f.ActionType),
				Reason: game.ClaimReason(f.Reason),
			})
		})

	case "get_legal_moves":
		return h.withGame(f, func(gameID string) (any, error) {
			moves, turn, err := h.svc.LegalMoves(gameID)
			if err != nil {
				return nil, err
			}
			list := make([]core.MoveJSON, len(moves))
			for i, m := range moves {
				list[i] = m.JSON()
			}
			return fiber.Map{"turn": turn, "moves": list, "count": len(list)}, nil
		})

	case "get_board":
		return h.withGame(f, func(gameID string) (any, error) {
			ascii, err := h.svc.ASCIIBoard(gameID)
			if err != nil {
				return nil, err
			}
			return fiber.Map{"board": ascii}, nil
		})

	case "subscribe":
		return h.withGame(f, func(gameID string) (any, error) {
			h.svc.Bus().Join(sess.sub, gameID)
			h.log.Info("session subscribed",
				zap.String("session_id", sess.id), zap.String("game_id", gameID))
			return fiber.Map{"message": fmt.Sprintf("Subscribed to game %s", gameID)}, nil
		})

	case "unsubscribe":
		return h.withGame(f, func(gameID string) (any, error) {
			h.svc.Bus().Leave(sess.sub, gameID)
			h.log.Info("session unsubscribed",
				zap.String("session_id", sess.id), zap.String("game_id", gameID))
			return fiber.Map{"message": fmt.Sprintf("Unsubscribed from game %s", gameID)}, nil
		})

	case "list_archived":
		archived, err := h.svc.Archive().List()
		if err != nil {
			return errResponse(f, err.Error())
		}
		return okResponse(f, fiber.Map{"archived": archived, "count": len(archived)})

	case "get_archived":
		return h.withGame(f, func(gameID string) (any, error) {
			return h.svc.Archive().Get(gameID)
		})

	case "replay_archived":
		return h.withGame(f, func(gameID string) (any, error) {
			upTo := -1
			if f.MoveNumber != nil {
				if *f.MoveNumber < 0 {
					return nil, fmt.Errorf("%w: move_number must be a non-negative integer", core.ErrMalformedInput)
				}
				upTo = *f.MoveNumber
			}
			return h.svc.Archive().Replay(gameID, upTo)
		})

	case "get_storage_stats":
		stats, err := h.svc.Archive().GetStats()
		if err != nil {
			return errResponse(f, err.Error())
		}
		return okResponse(f, fiber.Map{"storage": stats})

	default:
		return errResponse(f, fmt.Sprintf("Unknown action: %q", f.Action))
	}
}

// withGame runs a game-addressed command, enforcing the game_id field.
func (h *Handler) withGame(f clientFrame, fn func(gameID string) (any, error)) response {
	if f.GameID == "" {
		return errResponse(f, "Missing field: game_id")
	}
	data, err := fn(f.GameID)
	if err != nil {
		return errResponse(f, err.Error())
	}
	return okResponse(f, data)
}

func parseMove(f clientFrame) (from, to core.Square, promotion core.PieceKind, err error) {
	if f.From == "" || f.To == "" {
		err = fmt.Errorf("%w: missing field: from/to", core.ErrMalformedInput)
		return
	}
	if from, err = core.ParseSquare(f.From); err != nil {
		err = fmt.Errorf("%w: %s", core.ErrMalformedInput, err.Error())
		return
	}
	if to, err = core.ParseSquare(f.To); err != nil {
		err = fmt.Errorf("%w: %s", core.ErrMalformedInput, err.Error())
		return
	}
	if f.Promotion != nil {
		if promotion, err = core.ParsePromotion(*f.Promotion); err != nil {
			err = fmt.Errorf("%w: %s", core.ErrMalformedInput, err.Error())
		}
	}
	return
}
