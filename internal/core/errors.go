package core

import "errors"

// Sentinel errors shared across service and transports. Transports map
// these onto HTTP status codes.
var (
	// ErrNotFound: unknown game or archive id. Maps to 404.
	ErrNotFound = errors.New("not found")
	// ErrGameOver: a mutating operation on a finished game. Maps to 409.
	ErrGameOver = errors.New("game is already over")
	// ErrMalformedInput: unparseable squares, bad promotion letters,
	// unknown actions. Maps to 400.
	ErrMalformedInput = errors.New("malformed input")
)

// IllegalMoveError carries the rejection reason for a well-formed but
// illegal move. Maps to 400.
type IllegalMoveError struct {
	Reason string
}

func (e *IllegalMoveError) Error() string {
	return "illegal move: " + e.Reason
}

// IneligibleDrawClaimError rejects a draw claim whose rule threshold is
// not met. Maps to 400.
type IneligibleDrawClaimError struct {
	Reason string
}

func (e *IneligibleDrawClaimError) Error() string {
	return "ineligible draw claim: " + e.Reason
}
