package invest

import "errors"

// Failure taxonomy for the semantic path and its collaborators. Transport
// errors and malformed responses are recovered by the agent's fallback and
// never surface to callers; only ErrEmptyStory reaches a result's Error
// field.
var (
	ErrUnreachable         = errors.New("completion backend unreachable")
	ErrTimeout             = errors.New("completion request timed out")
	ErrMalformedResponse   = errors.New("malformed completion response")
	ErrEstimateUnavailable = errors.New("time estimate unavailable")
	ErrEmptyStory          = errors.New("historia vacía")
)
