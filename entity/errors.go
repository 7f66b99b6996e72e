package entity

import "errors"

// Conversion failure taxonomy. Every filesystem and encoder level error
// is folded into one of these before it crosses the usecase boundary;
// the http layer maps kinds to status codes without ever echoing the
// wrapped detail to the caller.
var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrPayloadTooLarge   = errors.New("payload too large")
	ErrResourceExhausted = errors.New("resource exhausted")
	ErrIOFailure         = errors.New("io failure")
	ErrConversionTimeout = errors.New("conversion timeout")
	ErrConversionFailed  = errors.New("conversion failed")
	ErrOutputNotFound    = errors.New("encoder produced no output")
	ErrTooManyRequests   = errors.New("too many in-flight conversions")
)
