// Package core holds the pure value types of the chess engine: pieces,
// squares, boards, moves, castling rights and results, plus the JSON
// conversions used by the transport layer.
package core

import (
	"fmt"
	"strings"
)

// Color identifies a side. Serialized lowercase ("white"/"black").
type Color uint8

const (
	White Color = iota
	Black
)

func (c Color) String() string {
	if c == Black {
		return "black"
	}
	return "white"
}

// Opponent returns the other side.
func (c Color) Opponent() Color {
	if c == White {
		return Black
	}
	return White
}

// PawnStartRank returns the 0-based rank pawns of this color start on.
func (c Color) PawnStartRank() int {
	if c == White {
		return 1
	}
	return 6
}

// PromotionRank returns the 0-based rank pawns of this color promote on.
func (c Color) PromotionRank() int {
	if c == White {
		return 7
	}
	return 0
}

// PawnDirection returns the rank delta pawns of this color advance by.
func (c Color) PawnDirection() int {
	if c == White {
		return 1
	}
	return -1
}

func (c Color) MarshalJSON() ([]byte, error) {
	return []byte(`"` + c.String() + `"`), nil
}

func (c *Color) UnmarshalJSON(data []byte) error {
	switch strings.Trim(string(data), `"`) {
	case "white", "w":
		*c = White
	case "black", "b":
		*c = Black
	default:
		return fmt.Errorf("invalid color: %s", data)
	}
	return nil
}

// PieceKind is the type of a piece without color. The zero value marks
// an empty square.
type PieceKind uint8

const (
	NoPiece PieceKind = iota
	King
	Queen
	Rook
	Bishop
	Knight
	Pawn
)

// Letter returns the uppercase piece letter ("K", "Q", ...), or "" for
// NoPiece and pawns the empty string is not used for.
func (k PieceKind) Letter() string {
	switch k {
	case King:
		return "K"
	case Queen:
		return "Q"
	case Rook:
		return "R"
	case Bishop:
		return "B"
	case Knight:
		return "N"
	case Pawn:
		return "P"
	}
	return ""
}

// ParsePromotion parses an uppercase promotion letter. Only the four
// legal promotion targets are accepted.
func ParsePromotion(s string) (PieceKind, error) {
	switch s {
	case "Q":
		return Queen, nil
	case "R":
		return Rook, nil
	case "B":
		return Bishop, nil
	case "N":
		return Knight, nil
	}
	return NoPiece, fmt.Errorf("invalid promotion piece: %q", s)
}

// Piece is a colored piece. The zero value (NoPiece) means empty.
type Piece struct {
	Kind  PieceKind
	Color Color
}

// IsEmpty reports whether this value represents an empty square.
func (p Piece) IsEmpty() bool { return p.Kind == NoPiece }

// FENChar returns the FEN symbol: uppercase for White, lowercase for Black.
func (p Piece) FENChar() byte {
	c := p.Kind.Letter()
	if c == "" {
		return '.'
	}
	if p.Color == Black {
		return c[0] + ('a' - 'A')
	}
	return c[0]
}

// PieceFromFENChar parses a FEN piece symbol.
func PieceFromFENChar(ch byte) (Piece, error) {
	color := White
	if ch >= 'a' && ch <= 'z' {
		color = Black
		ch -= 'a' - 'A'
	}
	switch ch {
	case 'K':
		return Piece{King, color}, nil
	case 'Q':
		return Piece{Queen, color}, nil
	case 'R':
		return Piece{Rook, color}, nil
	case 'B':
		return Piece{Bishop, color}, nil
	case 'N':
		return Piece{Knight, color}, nil
	case 'P':
		return Piece{Pawn, color}, nil
	}
	return Piece{}, fmt.Errorf("invalid piece symbol: %q", string(ch))
}

// Square is a board square as a flat 0..63 index, rank*8+file.
type Square uint8

// Sq builds a square from 0-based file and rank. Caller guarantees bounds.
func Sq(file, rank int) Square {
	return Square(rank*8 + file)
}

// File returns the 0-based file (0 = a).
func (s Square) File() int { return int(s) % 8 }

// Rank returns the 0-based rank (0 = rank 1).
func (s Square) Rank() int { return int(s) / 8 }

// IsLight reports whether the square is light-colored. h1 is light,
// matching the FIDE board orientation.
func (s Square) IsLight() bool {
	return (s.File()+s.Rank())%2 == 1
}

// Offset returns the square displaced by (df, dr) files and ranks, and
// whether it is still on the board.
func (s Square) Offset(df, dr int) (Square, bool) {
	f := s.File() + df
	r := s.Rank() + dr
	if f < 0 || f > 7 || r < 0 || r > 7 {
		return 0, false
	}
	return Sq(f, r), true
}

// String returns the algebraic name, e.g. "e4".
func (s Square) String() string {
	return string([]byte{byte('a' + s.File()), byte('1' + s.Rank())})
}

// ParseSquare parses a two-character algebraic square name.
func ParseSquare(s string) (Square, error) {
	if len(s) != 2 || s[0] < 'a' || s[0] > 'h' || s[1] < '1' || s[1] > '8' {
		return 0, fmt.Errorf("invalid square: %q", s)
	}
	return Sq(int(s[0]-'a'), int(s[1]-'1')), nil
}

// Move is an engine-internal move. Promotion is NoPiece unless the move
// promotes. The castling and en passant flags are derived during move
// generation, never supplied by clients.
type Move struct {
	From        Square
	To          Square
	Promotion   PieceKind
	IsCastling  bool
	IsEnPassant bool
}

// UCI returns coordinate notation, e.g. "e2e4" or "e7e8=Q".
func (m Move) UCI() string {
	s := m.From.String() + m.To.String()
	if m.Promotion != NoPiece {
		s += "=" + m.Promotion.Letter()
	}
	return s
}

// JSON converts the move to its wire representation.
func (m Move) JSON() MoveJSON {
	mj := MoveJSON{From: m.From.String(), To: m.To.String()}
	if m.Promotion != NoPiece {
		p := m.Promotion.Letter()
		mj.Promotion = &p
	}
	return mj
}

// MoveJSON is the wire form of a move. Promotion is an uppercase letter
// or null, regardless of side.
type MoveJSON struct {
	From      string  `json:"from"`
	To        string  `json:"to"`
	Promotion *string `json:"promotion"`
}

// SideCastlingRights tracks the two castling options of one side. Once
// cleared a right is never re-set.
type SideCastlingRights struct {
	Kingside  bool `json:"kingside"`
	Queenside bool `json:"queenside"`
}

// CastlingRights tracks all four castling rights.
type CastlingRights struct {
	White SideCastlingRights `json:"white"`
	Black SideCastlingRights `json:"black"`
}

// NewCastlingRights returns the starting-position rights (all set).
func NewCastlingRights() CastlingRights {
	full := SideCastlingRights{Kingside: true, Queenside: true}
	return CastlingRights{White: full, Black: full}
}

// ForColor returns a pointer to the rights of the given side.
func (cr *CastlingRights) ForColor(c Color) *SideCastlingRights {
	if c == Black {
		return &cr.Black
	}
	return &cr.White
}

// FEN returns the castling field of a FEN string ("KQkq", "-", ...).
func (cr CastlingRights) FEN() string {
	var sb strings.Builder
	if cr.White.Kingside {
		sb.WriteByte('K')
	}
	if cr.White.Queenside {
		sb.WriteByte('Q')
	}
	if cr.Black.Kingside {
		sb.WriteByte('k')
	}
	if cr.Black.Queenside {
		sb.WriteByte('q')
	}
	if sb.Len() == 0 {
		return "-"
	}
	return sb.String()
}

// GameResult is the outcome of a finished game.
type GameResult string

const (
	WhiteWins  GameResult = "WhiteWins"
	BlackWins  GameResult = "BlackWins"
	DrawResult GameResult = "Draw"
)

// WinnerOf returns the win result for the given side.
func WinnerOf(c Color) GameResult {
	if c == White {
		return WhiteWins
	}
	return BlackWins
}

// EndReason explains why a game ended.
type EndReason string

const (
	EndCheckmate            EndReason = "Checkmate"
	EndStalemate            EndReason = "Stalemate"
	EndThreefoldRepetition  EndReason = "ThreefoldRepetition"
	EndFivefoldRepetition   EndReason = "FivefoldRepetition"
	EndFiftyMoveRule        EndReason = "FiftyMoveRule"
	EndSeventyFiveMoveRule  EndReason = "SeventyFiveMoveRule"
	EndInsufficientMaterial EndReason = "InsufficientMaterial"
	EndResignation          EndReason = "Resignation"
	EndDrawAgreement        EndReason = "DrawAgreement"
)
