package static

import "errors"

// ErrNotFound is returned when a name does not resolve to content.
var ErrNotFound = errors.New("static content not found")
