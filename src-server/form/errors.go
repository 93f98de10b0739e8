package form

import "errors"

var (
	ErrUnknownField   = errors.New("unknown field")
	ErrImageRequired  = errors.New("an image must be selected before submitting")
	ErrSubmitInFlight = errors.New("a submission is already in flight")
)
