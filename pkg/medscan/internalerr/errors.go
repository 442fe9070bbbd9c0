package internalerr

import "errors"

// Sentinel errors for common cases
var (
	ErrNotFound        = errors.New("not found")
	ErrRecognizer      = errors.New("recognizer failure")
	ErrMalformedRecord = errors.New("malformed record")
	ErrInvalidConfig   = errors.New("invalid configuration")
)
