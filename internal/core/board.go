package core

import (
	"fmt"
	"strings"
)

// Board is a mailbox of 64 squares, index = rank*8 + file (a1 = 0).
type Board [64]Piece

// StartingBoard returns the standard initial position.
func StartingBoard() Board {
	var b Board
	back := [8]PieceKind{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}
	for f := 0; f < 8; f++ {
		b[Sq(f, 0)] = Piece{back[f], White}
		b[Sq(f, 1)] = Piece{Pawn, White}
		b[Sq(f, 6)] = Piece{Pawn, Black}
		b[Sq(f, 7)] = Piece{back[f], Black}
	}
	return b
}

// At returns the piece on the square, empty if none.
func (b *Board) At(s Square) Piece { return b[s] }

// Set places a piece on the square. Use Piece{} to clear.
func (b *Board) Set(s Square, p Piece) { b[s] = p }

// FindKing returns the square of the given side's king. The second
// return is false only on corrupt boards.
func (b *Board) FindKing(c Color) (Square, bool) {
	for s := Square(0); s < 64; s++ {
		if b[s].Kind == King && b[s].Color == c {
			return s, true
		}
	}
	return 0, false
}

// PlacementFEN returns the piece-placement field of a FEN string,
// rank 8 first, runs of empty squares collapsed to digits.
func (b *Board) PlacementFEN() string {
	var sb strings.Builder
	for r := 7; r >= 0; r-- {
		empty := 0
		for f := 0; f < 8; f++ {
			p := b[Sq(f, r)]
			if p.IsEmpty() {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteByte(byte('0' + empty))
				empty = 0
			}
			sb.WriteByte(p.FENChar())
		}
		if empty > 0 {
			sb.WriteByte(byte('0' + empty))
		}
		if r > 0 {
			sb.WriteByte('/')
		}
	}
	return sb.String()
}

// BoardFromPlacement parses the piece-placement field of a FEN string.
func BoardFromPlacement(placement string) (Board, error) {
	var b Board
	ranks := strings.Split(placement, "/")
	if len(ranks) != 8 {
		return b, fmt.Errorf("invalid placement: want 8 ranks, got %d", len(ranks))
	}
	for i, row := range ranks {
		r := 7 - i
		f := 0
		for j := 0; j < len(row); j++ {
			ch := row[j]
			if ch >= '1' && ch <= '8' {
				f += int(ch - '0')
				continue
			}
			if f > 7 {
				return b, fmt.Errorf("invalid placement: rank %d overflows", r+1)
			}
			p, err := PieceFromFENChar(ch)
			if err != nil {
				return b, err
			}
			b[Sq(f, r)] = p
			f++
		}
		if f != 8 {
			return b, fmt.Errorf("invalid placement: rank %d has %d files", r+1, f)
		}
	}
	return b, nil
}

// ToMap renders the board as {"e1": "K", ...}, omitting empty squares.
// Uppercase letters are White, lowercase Black.
func (b *Board) ToMap() map[string]string {
	m := make(map[string]string)
	for s := Square(0); s < 64; s++ {
		if !b[s].IsEmpty() {
			m[s.String()] = string(b[s].FENChar())
		}
	}
	return m
}

// BoardFromMap rebuilds a board from its ToMap form.
func BoardFromMap(m map[string]string) (Board, error) {
	var b Board
	for name, symbol := range m {
		sq, err := ParseSquare(name)
		if err != nil {
			return b, err
		}
		if len(symbol) != 1 {
			return b, fmt.Errorf("invalid piece symbol: %q", symbol)
		}
		p, err := PieceFromFENChar(symbol[0])
		if err != nil {
			return b, err
		}
		b[sq] = p
	}
	return b, nil
}

// ASCII renders the board as fixed-width text, rank 8 at the top, "."
// for empty squares, file letters along the bottom.
func (b *Board) ASCII() string {
	var sb strings.Builder
	for r := 7; r >= 0; r-- {
		fmt.Fprintf(&sb, "%d  ", r+1)
		for f := 0; f < 8; f++ {
			sb.WriteByte(b[Sq(f, r)].FENChar())
			if f < 7 {
				sb.WriteByte(' ')
			}
		}
		sb.WriteByte('\n')
	}
	sb.WriteString("\n   a b c d e f g h\n")
	return sb.String()
}
