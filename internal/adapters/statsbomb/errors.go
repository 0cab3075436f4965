package statsbomb

import "errors"

// Sentinel errors returned by the client. Transport errors are wrapped as-is.
var (
	ErrUnexpectedStatus = errors.New("statsbomb: unexpected status")
	ErrDecode           = errors.New("statsbomb: malformed payload")
	ErrBodyTooLarge     = errors.New("statsbomb: response body too large")
)
