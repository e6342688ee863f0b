// Package http is the REST transport: a Fiber app exposing the game
// and archive surfaces, with a central error handler mapping engine
// errors onto status codes.
package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"checkai/internal/core"
	"checkai/internal/service"
)

type Handler struct {
	svc *service.Service
	log *zap.Logger
}

func NewHandler(svc *service.Service, log *zap.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// NewFiberApp wires middleware and routes. WebSocket routes are
// registered separately by the ws transport on the returned app.
func NewFiberApp(svc *service.Service, devMode bool, log *zap.Logger) *fiber.App {
	h := NewHandler(svc, log)

	app := fiber.New(fiber.Config{
		ErrorHandler: errorHandler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "${time} ${status} ${method} ${path} ${latency}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))

	app.Get("/health", h.Health)

	api := app.Group("/api")

	maxReq := 20
	if devMode {
		maxReq = 200
	}
	api.Use(limiter.New(limiter.Config{
		Max:        maxReq,
		Expiration: time.Second,
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(ErrorResponse{
				Error: "rate limit exceeded",
			})
		},
	}))

	api.Post("/games", h.CreateGame)
	api.Get("/games", h.ListGames)
	api.Get("/games/:gameId", h.GetGame)
	api.Delete("/games/:gameId", h.DeleteGame)
	api.Post("/games/:gameId/move", h.SubmitMove)
	api.Post("/games/:gameId/action", h.SubmitAction)
	api.Get("/games/:gameId/moves", h.GetLegalMoves)
	api.Get("/games/:gameId/board", h.GetBoard)

	api.Get("/archive", h.ListArchive)
	api.Get("/archive/stats", h.ArchiveStats)
	api.Get("/archive/:gameId", h.GetArchived)
	api.Get("/archive/:gameId/replay", h.ReplayArchived)
	api.Get("/archive/:gameId/export", h.ExportArchived)

	return app
}

// errorHandler maps engine errors onto the documented status codes;
// everything unrecognized is a 500.
func errorHandler(c *fiber.Ctx, err error) error {
	var illegalMove *core.IllegalMoveError
	var ineligibleClaim *core.IneligibleDrawClaimError

	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, core.ErrNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, core.ErrGameOver):
		status = fiber.StatusConflict
	case errors.Is(err, core.ErrMalformedInput),
		errors.As(err, &illegalMove),
		errors.As(err, &ineligibleClaim):
		status = fiber.StatusBadRequest
	default:
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			status = fiberErr.Code
		}
	}

	return c.Status(status).JSON(ErrorResponse{Error: err.Error()})
}

// Health reports process and storage status.
func (h *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "healthy",
		"storage": h.svc.StorageHealth(),
		"time":    time.Now().Unix(),
	})
}
