package match

import "errors"

var (
	ErrInvalidPlayerCount = errors.New("match needs between 2 and 4 players")
	ErrMatchOver          = errors.New("match is over")
	ErrInvalidPoints      = errors.New("points must not be negative")
	ErrTurnNotStarted     = errors.New("turn has no throws yet")
)
