package employee

import "errors"

// ErrNotFound is returned by stores when no employee matches.
var ErrNotFound = errors.New("employee not found")
