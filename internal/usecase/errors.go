package usecase

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
	ErrNoAuctionInProgress   = errors.New("no auction in progress")
	ErrAuctionConcluded      = errors.New("auction concluded")
)
