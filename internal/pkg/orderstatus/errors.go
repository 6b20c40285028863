package orderstatus

import "errors"

// ErrInvalidTransition marks a structurally denied status change. Callers
// match it with errors.Is to distinguish validation failures from
// storage problems.
var ErrInvalidTransition = errors.New("invalid status transition")
