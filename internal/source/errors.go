package source

import "errors"

// Failure kinds. Every inspector error wraps exactly one of these, so
// callers can tell them apart with errors.Is.
var (
	ErrMissingArgument = errors.New("missing argument")
	ErrConnection      = errors.New("connection failed")
	ErrQuery           = errors.New("query failed")
	ErrRowDecode       = errors.New("row decode failed")
)
