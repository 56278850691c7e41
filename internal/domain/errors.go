package domain

import "errors"

var (
	ErrEmptyDeck      = errors.New("deck is empty")
	ErrInvalidProfile = errors.New("invalid profile")
	ErrSessionLimit   = errors.New("session limit reached")
	ErrSessionStopped = errors.New("session stopped")
)
