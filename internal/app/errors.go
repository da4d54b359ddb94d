package service

import "errors"

var (
	ErrNotStarted     = errors.New("service not started")
	ErrWrongVariant   = errors.New("input does not match the game's aiming variant")
	ErrInvalidPointer = errors.New("unknown pointer event type")
	ErrBackpressure   = errors.New("throw queue is full")
)
