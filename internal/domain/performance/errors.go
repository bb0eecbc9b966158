package performance

import "errors"

// ErrNotFound is returned by stores when no record matches.
var ErrNotFound = errors.New("performance record not found")
