package app

import "errors"

// ErrInvalidRequest is returned when a run request is missing required fields.
var ErrInvalidRequest = errors.New("invalid request")
