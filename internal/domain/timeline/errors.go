package timeline

import "errors"

// Failure kinds shared by the processing operations. Callers classify with
// errors.Is and map each kind to its own user-visible message.
var (
	// ErrInvalidConfig marks bad request parameters caught before any media
	// work starts.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrEmptyTimeline marks operations where no valid segment survived
	// validation or filtering. An empty timeline must never turn into a
	// silently written empty output file.
	ErrEmptyTimeline = errors.New("empty timeline")
)
