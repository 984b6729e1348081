package domain

import "errors"

var (
	// Common domain errors
	ErrInvalidArgument = errors.New("invalid argument")
	ErrInvalidMessage  = errors.New("invalid message")
	ErrTooLarge        = errors.New("payload too large")
	ErrInvalidLexicon  = errors.New("invalid lexicon")
	ErrRateLimited     = errors.New("rate limit exceeded")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrCacheMiss       = errors.New("cache miss")
)
