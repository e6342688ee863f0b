package storage

import (
	"time"

	"checkai/internal/core"
)

// ArchivedSummary is one row of the archive listing.
type ArchivedSummary struct {
	GameID     string          `json:"game_id"`
	ArchivedAt time.Time       `json:"archived_at"`
	Result     core.GameResult `json:"result"`
	EndReason  core.EndReason  `json:"end_reason"`
	MoveCount  int             `json:"move_count"`
}

// ArchivedMove is the stored form of one played move, enough to replay
// the game from the start position.
type ArchivedMove struct {
	MoveNumber int           `json:"move_number"`
	Side       core.Color    `json:"side"`
	Notation   string        `json:"notation"`
	Move       core.MoveJSON `json:"move"`
}

// Stats reports archive totals including compression effect.
type Stats struct {
	ArchivedCount   int   `json:"archived_count"`
	RawBytes        int64 `json:"raw_bytes"`
	CompressedBytes int64 `json:"compressed_bytes"`
}

// Schema defines the archive database structure. Snapshot and move
// blobs are zstd-compressed JSON.
const Schema = `
CREATE TABLE IF NOT EXISTS archived_games (
	game_id TEXT PRIMARY KEY,
	archived_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	result TEXT NOT NULL,
	end_reason TEXT NOT NULL,
	move_count INTEGER NOT NULL,
	raw_size INTEGER NOT NULL,
	compressed_size INTEGER NOT NULL,
	snapshot BLOB NOT NULL,
	moves BLOB NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_archived_games_archived_at ON archived_games(archived_at);
`
