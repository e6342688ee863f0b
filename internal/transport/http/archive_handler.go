package http

import (
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"checkai/internal/core"
	"checkai/internal/storage"
)

// ListArchive returns summaries of archived games, newest first.
func (h *Handler) ListArchive(c *fiber.Ctx) error {
	archived, err := h.svc.Archive().List()
	if err != nil {
		return err
	}
	if archived == nil {
		archived = []storage.ArchivedSummary{}
	}
	return c.JSON(fiber.Map{"archived": archived, "count": len(archived)})
}

// ArchiveStats returns archive totals.
func (h *Handler) ArchiveStats(c *fiber.Ctx) error {
	stats, err := h.svc.Archive().GetStats()
	if err != nil {
		return err
	}
	return c.JSON(stats)
}

// GetArchived returns the stored final snapshot of one archived game.
func (h *Handler) GetArchived(c *fiber.Ctx) error {
	view, err := h.svc.Archive().Get(c.Params("gameId"))
	if err != nil {
		return err
	}
	return c.JSON(view)
}

// ReplayArchived reconstructs an archived game after ?move=N halfmoves
// (the full game when the query is absent).
func (h *Handler) ReplayArchived(c *fiber.Ctx) error {
	upTo := -1
	if q := c.Query("move"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n < 0 {
			return fmt.Errorf("%w: move must be a non-negative integer", core.ErrMalformedInput)
		}
		upTo = n
	}

	view, err := h.svc.Archive().Replay(c.Params("gameId"), upTo)
	if err != nil {
		return err
	}
	return c.JSON(view)
}

// ExportArchived renders an archived game as pgn, text or json.
func (h *Handler) ExportArchived(c *fiber.Ctx) error {
	format, err := storage.ParseExportFormat(c.Query("format", "pgn"))
	if err != nil {
		return err
	}

	gameID := c.Params("gameId")
	switch format {
	case storage.FormatPGN:
		out, err := h.svc.Archive().ExportPGN(gameID)
		if err != nil {
			return err
		}
		c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
		return c.SendString(out)
	case storage.FormatText:
		out, err := h.svc.Archive().ExportText(gameID)
		if err != nil {
			return err
		}
		c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
		return c.SendString(out)
	default:
		view, err := h.svc.Archive().Get(gameID)
		if err != nil {
			return err
		}
		return c.JSON(view)
	}
}
