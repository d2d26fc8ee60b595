package core

import "errors"

// ErrNoInput is returned when an analysis request carries no usable payload.
// It is the only failure surfaced to callers; every other condition degrades
// to a lower-confidence result.
var ErrNoInput = errors.New("no input provided for analysis")
