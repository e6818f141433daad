package sermons

import "errors"

// ErrNotFound indicates the requested deck does not exist.
var ErrNotFound = errors.New("deck not found")

// ErrFileMissing indicates the deck row exists but its stored file is gone.
var ErrFileMissing = errors.New("deck file missing")
