package ical

import "errors"

var (
	ErrIDNotSet         = errors.New("id not set")
	ErrSummaryNotSet    = errors.New("summary not set")
	ErrStartDateInvalid = errors.New("start date not set")
	ErrInvalidURL       = errors.New("invalid url")
)
