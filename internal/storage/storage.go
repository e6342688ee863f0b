// Package storage archives finished games to SQLite. Writes go through
// a buffered channel serviced by a single writer goroutine so callers
// never block on disk; reads query the database directly.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/klauspost/compress/zstd"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"checkai/internal/core"
	"checkai/internal/game"
)

// Store is the archive backend. A nil *Store is a valid no-op archive.
type Store struct {
	db           *sql.DB
	enc          *zstd.Encoder
	dec          *zstd.Decoder
	writeChan    chan func(*sql.Tx) error
	healthStatus atomic.Bool
	ctx          context.Context
	cancel       context.CancelFunc
	wg           sync.WaitGroup
	log          *zap.Logger
}

// NewStore opens (or creates) the archive database and starts the
// async writer.
func NewStore(dataSourceName string, log *zap.Logger) (*Store, error) {
	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Store{
		db:        db,
		enc:       enc,
		dec:       dec,
		writeChan: make(chan func(*sql.Tx) error, 256),
		ctx:       ctx,
		cancel:    cancel,
		log:       log,
	}
	s.healthStatus.Store(true)

	s.wg.Add(1)
	go s.writerLoop()

	return s, nil
}

func (s *Store) writerLoop() {
	defer s.wg.Done()

	for {
		select {
		case <-s.ctx.Done():
			// Drain remaining writes with a deadline.
			deadline := time.After(2 * time.Second)
			for {
				select {
				case fn := <-s.writeChan:
					if s.healthStatus.Load() {
						s.executeWrite(fn)
					}
				case <-deadline:
					return
				default:
					return
				}
			}

		case fn := <-s.writeChan:
			if !s.healthStatus.Load() {
				continue
			}
			s.executeWrite(fn)
		}
	}
}

func (s *Store) executeWrite(fn func(*sql.Tx) error) {
	tx, err := s.db.Begin()
	if err != nil {
		s.log.Error("archive degraded: begin transaction failed", zap.Error(err))
		s.healthStatus.Store(false)
		return
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		s.log.Error("archive degraded: write failed", zap.Error(err))
		s.healthStatus.Store(false)
		return
	}
	if err := tx.Commit(); err != nil {
		s.log.Error("archive degraded: commit failed", zap.Error(err))
		s.healthStatus.Store(false)
	}
}

// IsHealthy reports whether the writer has not hit a database fault.
func (s *Store) IsHealthy() bool {
	if s == nil {
		return true
	}
	return s.healthStatus.Load()
}

// Put archives a finished game asynchronously: final snapshot and move
// list serialized to JSON, zstd-compressed, queued for the writer.
func (s *Store) Put(g *game.Game) error {
	if s == nil {
		return nil
	}
	if !s.healthStatus.Load() {
		return nil
	}

	result, reason := g.Result()
	if result == nil {
		return fmt.Errorf("game %s is not finished", g.ID)
	}

	snapshotRaw, err := json.Marshal(g.Snapshot())
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	movesRaw, err := json.Marshal(archivedMoves(g))
	if err != nil {
		return fmt.Errorf("failed to encode move list: %w", err)
	}

	snapshotBlob := s.enc.EncodeAll(snapshotRaw, nil)
	movesBlob := s.enc.EncodeAll(movesRaw, nil)

	gameID := g.ID
	moveCount := len(g.MoveHistory())
	rawSize := int64(len(snapshotRaw) + len(movesRaw))
	compressedSize := int64(len(snapshotBlob) + len(movesBlob))
	res, rsn := string(*result), string(*reason)

	select {
	case s.writeChan <- func(tx *sql.Tx) error {
		_, err := tx.Exec(`INSERT OR REPLACE INTO archived_games (
			game_id, archived_at, result, end_reason, move_count,
			raw_size, compressed_size, snapshot, moves
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			gameID, time.Now().UTC(), res, rsn, moveCount,
			rawSize, compressedSize, snapshotBlob, movesBlob,
		)
		return err
	}:
		s.log.Info("game queued for archive",
			zap.String("game_id", gameID),
			zap.Int("move_count", moveCount),
			zap.Int64("raw_bytes", rawSize),
			zap.Int64("compressed_bytes", compressedSize))
		return nil
	default:
		s.log.Warn("archive write queue full, dropping game", zap.String("game_id", gameID))
		return nil
	}
}

func archivedMoves(g *game.Game) []ArchivedMove {
	history := g.MoveHistory()
	moves := make([]ArchivedMove, len(history))
	for i, h := range history {
		moves[i] = ArchivedMove{
			MoveNumber: h.MoveNumber,
			Side:       h.Side,
			Notation:   h.Notation,
			Move:       h.Move.JSON(),
		}
	}
	return moves
}

func mapRowErr(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return core.ErrNotFound
	}
	return fmt.Errorf("archive query failed: %w", err)
}

// List returns archive summaries, newest first.
func (s *Store) List() ([]ArchivedSummary, error) {
	if s == nil {
		return nil, nil
	}
	rows, err := s.db.Query(`SELECT game_id, archived_at, result, end_reason, move_count
		FROM archived_games ORDER BY archived_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("archive query failed: %w", err)
	}
	defer rows.Close()

	var out []ArchivedSummary
	for rows.Next() {
		var a ArchivedSummary
		if err := rows.Scan(&a.GameID, &a.ArchivedAt, &a.Result, &a.EndReason, &a.MoveCount); err != nil {
			return nil, fmt.Errorf("archive scan failed: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Get returns the stored final snapshot of one archived game.
func (s *Store) Get(gameID string) (*game.View, error) {
	if s == nil {
		return nil, core.ErrNotFound
	}
	var blob []byte
	err := s.db.QueryRow(`SELECT snapshot FROM archived_games WHERE game_id = ?`, gameID).Scan(&blob)
	if err != nil {
		return nil, mapRowErr(err)
	}

	raw, err := s.dec.DecodeAll(blob, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress snapshot: %w", err)
	}
	var view game.View
	if err := json.Unmarshal(raw, &view); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return &view, nil
}

// Moves returns the stored move list of one archived game.
func (s *Store) Moves(gameID string) ([]ArchivedMove, error) {
	if s == nil {
		return nil, core.ErrNotFound
	}
	var blob []byte
	err := s.db.QueryRow(`SELECT moves FROM archived_games WHERE game_id = ?`, gameID).Scan(&blob)
	if err != nil {
		return nil, mapRowErr(err)
	}

	raw, err := s.dec.DecodeAll(blob, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress move list: %w", err)
	}
	var moves []ArchivedMove
	if err := json.Unmarshal(raw, &moves); err != nil {
		return nil, fmt.Errorf("failed to decode move list: %w", err)
	}
	return moves, nil
}

// Replay reconstructs the game view after the first upToMove halfmoves
// by re-applying the stored move list from the starting position.
// upToMove < 0 replays the whole game.
func (s *Store) Replay(gameID string, upToMove int) (*game.View, error) {
	moves, err := s.Moves(gameID)
	if err != nil {
		return nil, err
	}
	if upToMove < 0 || upToMove > len(moves) {
		upToMove = len(moves)
	}

	g := game.NewWithID(gameID)
	for i := 0; i < upToMove; i++ {
		from, err := core.ParseSquare(moves[i].Move.From)
		if err != nil {
			return nil, fmt.Errorf("corrupt archive for %s: %w", gameID, err)
		}
		to, err := core.ParseSquare(moves[i].Move.To)
		if err != nil {
			return nil, fmt.Errorf("corrupt archive for %s: %w", gameID, err)
		}
		promotion := core.NoPiece
		if moves[i].Move.Promotion != nil {
			promotion, err = core.ParsePromotion(*moves[i].Move.Promotion)
			if err != nil {
				return nil, fmt.Errorf("corrupt archive for %s: %w", gameID, err)
			}
		}
		if _, err := g.ApplyMove(from, to, promotion); err != nil {
			return nil, fmt.Errorf("replay of %s failed at halfmove %d: %w", gameID, i+1, err)
		}
	}
	return g.Snapshot(), nil
}

// GetStats returns archive totals.
func (s *Store) GetStats() (*Stats, error) {
	if s == nil {
		return &Stats{}, nil
	}
	var st Stats
	err := s.db.QueryRow(`SELECT COUNT(*),
		COALESCE(SUM(raw_size), 0), COALESCE(SUM(compressed_size), 0)
		FROM archived_games`).Scan(&st.ArchivedCount, &st.RawBytes, &st.CompressedBytes)
	if err != nil {
		return nil, fmt.Errorf("archive stats query failed: %w", err)
	}
	return &st, nil
}

// Close stops the writer, draining queued writes, then closes the
// database and compressors.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	s.cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		s.log.Warn("archive writer shutdown timeout, some writes may be lost")
	}

	s.enc.Close()
	s.dec.Close()
	return s.db.Close()
}
