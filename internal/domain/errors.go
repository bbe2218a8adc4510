package domain

import "errors"

var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	ErrQuoteNotFound       = errors.New("quote not found")
	ErrNoPriceSource       = errors.New("no price source configured")
)
