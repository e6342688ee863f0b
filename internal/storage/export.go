package storage

import (
	"fmt"
	"strings"

	"checkai/internal/core"
)

// ExportFormat selects the output of an archive export.
type ExportFormat string

const (
	FormatText ExportFormat = "text"
	FormatPGN  ExportFormat = "pgn"
	FormatJSON ExportFormat = "json"
)

// ParseExportFormat parses a format query value, case-insensitive.
func ParseExportFormat(s string) (ExportFormat, error) {
	switch strings.ToLower(s) {
	case "text", "txt":
		return FormatText, nil
	case "pgn":
		return FormatPGN, nil
	case "json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("%w: unknown export format %q (valid: text, pgn, json)", core.ErrMalformedInput, s)
}

func pgnResult(r core.GameResult) string {
	switch r {
	case core.WhiteWins:
		return "1-0"
	case core.BlackWins:
		return "0-1"
	case core.DrawResult:
		return "1/2-1/2"
	}
	return "*"
}

// ExportPGN renders an archived game as standard PGN with the seven
// tag roster plus GameId and Termination tags. Movetext uses the
// stored SAN notation.
func (s *Store) ExportPGN(gameID string) (string, error) {
	summary, err := s.summary(gameID)
	if err != nil {
		return "", err
	}
	moves, err := s.Moves(gameID)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString("[Event \"CheckAI Game\"]\n")
	sb.WriteString("[Site \"CheckAI Server\"]\n")
	fmt.Fprintf(&sb, "[Date %q]\n", summary.ArchivedAt.Format("2006.01.02"))
	sb.WriteString("[Round \"1\"]\n")
	sb.WriteString("[White \"Agent White\"]\n")
	sb.WriteString("[Black \"Agent Black\"]\n")
	fmt.Fprintf(&sb, "[Result %q]\n", pgnResult(summary.Result))
	fmt.Fprintf(&sb, "[GameId %q]\n", summary.GameID)
	fmt.Fprintf(&sb, "[Termination %q]\n", summary.EndReason)
	sb.WriteByte('\n')

	var movetext []string
	for i, mv := range moves {
		if i%2 == 0 {
			movetext = append(movetext, fmt.Sprintf("%d.", i/2+1))
		}
		movetext = append(movetext, mv.Notation)
	}
	movetext = append(movetext, pgnResult(summary.Result))

	sb.WriteString(wrapWords(movetext, 80))
	sb.WriteByte('\n')
	return sb.String(), nil
}

// ExportText renders an archived game as a plain-text report: header,
// two-column move list and the final position.
func (s *Store) ExportText(gameID string) (string, error) {
	summary, err := s.summary(gameID)
	if err != nil {
		return "", err
	}
	moves, err := s.Moves(gameID)
	if err != nil {
		return "", err
	}
	final, err := s.Replay(gameID, -1)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString("CheckAI Game Export\n")
	sb.WriteString("===================\n\n")
	fmt.Fprintf(&sb, "Game ID:   %s\n", summary.GameID)
	fmt.Fprintf(&sb, "Archived:  %s\n", summary.ArchivedAt.Format("2006-01-02 15:04:05 UTC"))
	fmt.Fprintf(&sb, "Moves:     %d halfmoves (%d full moves)\n", len(moves), (len(moves)+1)/2)
	fmt.Fprintf(&sb, "Result:    %s\n", summary.Result)
	fmt.Fprintf(&sb, "Reason:    %s\n\n", summary.EndReason)

	sb.WriteString("Move list:\n")
	for i := 0; i < len(moves); i += 2 {
		white := moves[i].Notation
		black := ""
		if i+1 < len(moves) {
			black = moves[i+1].Notation
		}
		fmt.Fprintf(&sb, "%3d. %-10s %s\n", i/2+1, white, black)
	}

	sb.WriteString("\nFinal position:\n\n")
	board, err := core.BoardFromMap(final.State.Board)
	if err != nil {
		return "", fmt.Errorf("corrupt archive for %s: %w", gameID, err)
	}
	sb.WriteString(board.ASCII())
	return sb.String(), nil
}

func (s *Store) summary(gameID string) (*ArchivedSummary, error) {
	if s == nil {
		return nil, core.ErrNotFound
	}
	var a ArchivedSummary
	err := s.db.QueryRow(`SELECT game_id, archived_at, result, end_reason, move_count
		FROM archived_games WHERE game_id = ?`, gameID).
		Scan(&a.GameID, &a.ArchivedAt, &a.Result, &a.EndReason, &a.MoveCount)
	if err != nil {
		return nil, mapRowErr(err)
	}
	return &a, nil
}

// wrapWords joins words with spaces, breaking lines before maxWidth.
func wrapWords(words []string, maxWidth int) string {
	var sb strings.Builder
	lineLen := 0
	for _, w := range words {
		if lineLen == 0 {
			sb.WriteString(w)
			lineLen = len(w)
			continue
		}
		if lineLen+1+len(w) > maxWidth {
			sb.WriteByte('\n')
			sb.WriteString(w)
			lineLen = len(w)
			continue
		}
		sb.WriteByte(' ')
		sb.WriteString(w)
		lineLen += 1 + len(w)
	}
	return sb.String()
}
