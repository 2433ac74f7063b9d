// internal/game/errors.go
package game

import "errors"

// Client-visible failure classes. Handlers map these to HTTP statuses; none
// of them leave the match document mutated.
var (
	ErrMatchNotFound  = errors.New("match not found")
	ErrMatchNotActive = errors.New("match is not active")
	ErrNotYourTurn    = errors.New("not your turn")
	ErrCardNotInHand  = errors.New("card not in hand")
	ErrNotAuthorized  = errors.New("not authorized")
	ErrNotInMatch     = errors.New("player not in this match")
)
