package domain

import "errors"

// ErrNotFound reports a reference to a record that does not exist.
var ErrNotFound = errors.New("not found")
