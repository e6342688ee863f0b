// Package service is the session manager: it owns the game map, routes
// moves and actions to games under per-game locks, and publishes state
// transitions on the event bus.
package service

import (
	"sync"

	"go.uber.org/zap"

	"checkai/internal/bus"
	"checkai/internal/core"
	"checkai/internal/game"
	"checkai/internal/storage"
)

// entry pairs a game with its mutex. All game mutation happens with
// e.mu held; the map lock is never held across a game operation.
type entry struct {
	mu sync.Mutex
	g  *game.Game
}

// Service manages concurrent games with optional archive persistence.
type Service struct {
	games map[string]*entry
	mu    sync.RWMutex
	bus   *bus.Bus
	store *storage.Store // nil if archiving disabled
	log   *zap.Logger
}

// New creates a service. store may be nil to run memory-only.
func New(b *bus.Bus, store *storage.Store, log *zap.Logger) *Service {
	return &Service{
		games: make(map[string]*entry),
		bus:   b,
		store: store,
		log:   log,
	}
}

// CreateGame starts a fresh game and publishes game_created.
func (s *Service) CreateGame() *game.View {
	g := game.New()

	s.mu.Lock()
	s.games[g.ID] = &entry{g: g}
	s.mu.Unlock()

	view := g.Snapshot()
	s.log.Info("game created", zap.String("game_id", g.ID))
	s.bus.Publish(bus.Event{Event: bus.EventGameCreated, GameID: g.ID, Data: view})
	return view
}

func (s *Service) lookup(gameID string) (*entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.games[gameID]
	if !ok {
		return nil, core.ErrNotFound
	}
	return e, nil
}

// ListGames returns summaries of all games in memory.
func (s *Service) ListGames() []game.Summary {
	s.mu.RLock()
	entries := make([]*entry, 0, len(s.games))
	for _, e := range s.games {
		entries = append(entries, e)
	}
	s.mu.RUnlock()

	summaries := make([]game.Summary, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		summaries = append(summaries, e.g.Summarize())
		e.mu.Unlock()
	}
	return summaries
}

// GetGame returns a consistent snapshot of one game.
func (s *Service) GetGame(gameID string) (*game.View, error) {
	e, err := s.lookup(gameID)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.g.Snapshot(), nil
}

// LegalMoves returns the legal moves of one game.
func (s *Service) LegalMoves(gameID string) ([]core.Move, core.Color, error) {
	e, err := s.lookup(gameID)
	if err != nil {
		return nil, 0, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.g.LegalMoves(), e.g.Turn(), nil
}

// ASCIIBoard renders one game's board as text.
func (s *Service) ASCIIBoard(gameID string) (string, error) {
	e, err := s.lookup(gameID)
	if err != nil {
		return "", err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.g.ASCIIBoard(), nil
}

// SubmitMove plays a move on the addressed game. The event is
// published under the per-game lock so per-game event order matches
// mutation order.
func (s *Service) SubmitMove(gameID string, from, to core.Square, promotion core.PieceKind) (*game.MoveOutcome, error) {
	e, err := s.lookup(gameID)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	outcome, err := e.g.ApplyMove(from, to, promotion)
	if err != nil {
		return nil, err
	}

	s.log.Info("move played",
		zap.String("game_id", gameID),
		zap.String("notation", outcome.Notation),
		zap.Bool("is_over", outcome.IsOver))
	s.bus.Publish(bus.Event{Event: bus.EventGameUpdated, GameID: gameID, Data: outcome})
	return outcome, nil
}

// SubmitAction applies a non-move action to the addressed game.
func (s *Service) SubmitAction(gameID string, a game.Action) (*game.ActionOutcome, error) {
	e, err := s.lookup(gameID)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	outcome, err := e.g.ApplyAction(a)
	if err != nil {
		return nil, err
	}

	s.log.Info("action applied",
		zap.String("game_id", gameID),
		zap.String("action", string(a.Type)),
		zap.Bool("is_over", outcome.IsOver))
	s.bus.Publish(bus.Event{Event: bus.EventGameUpdated, GameID: gameID, Data: outcome})
	return outcome, nil
}

// DeleteGame removes a game. Finished games are handed to the archive
// before removal.
func (s *Service) DeleteGame(gameID string) error {
	e, err := s.lookup(gameID)
	if err != nil {
		return err
	}

	e.mu.Lock()
	if e.g.IsOver() && s.store != nil {
		if err := s.store.Put(e.g); err != nil {
			s.log.Error("failed to archive game before delete",
				zap.String("game_id", gameID), zap.Error(err))
		}
	}
	e.mu.Unlock()

	s.mu.Lock()
	delete(s.games, gameID)
	s.mu.Unlock()

	s.log.Info("game deleted", zap.String("game_id", gameID))
	s.bus.Publish(bus.Event{Event: bus.EventGameDeleted, GameID: gameID, Data: nil})
	return nil
}

// Archive exposes the archive store; nil when archiving is disabled.
func (s *Service) Archive() *storage.Store { return s.store }

// Bus exposes the event bus for transports that subscribe.
func (s *Service) Bus() *bus.Bus { return s.bus }

// StorageHealth reports the archive writer status for /health.
func (s *Service) StorageHealth() string {
	if s.store == nil {
		return "disabled"
	}
	if s.store.IsHealthy() {
		return "ok"
	}
	return "degraded"
}

// Close drops all games and closes the archive.
func (s *Service) Close() error {
	s.mu.Lock()
	s.games = make(map[string]*entry)
	s.mu.Unlock()

	if s.store != nil {
		return s.store.Close()
	}
	return nil
}
