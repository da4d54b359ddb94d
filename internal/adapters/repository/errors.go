package repository

import "errors"

var (
	ErrNotFound = errors.New("game not found")
	ErrCapacity = errors.New("game capacity reached")
	ErrExists   = errors.New("game already exists")
)
