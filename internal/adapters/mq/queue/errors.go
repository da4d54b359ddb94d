package queue

import "errors"

var (
	ErrQueueFull   = errors.New("throw queue is full")
	ErrQueueClosed = errors.New("throw queue is closed")
)
