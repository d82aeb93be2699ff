package timeline

import "errors"

// Sentinel error kinds for engine operations. Operations wrap these with
// context via fmt.Errorf("...: %w", Err...) so callers can branch with
// errors.Is while logs keep the detail.
var (
	ErrNotFound         = errors.New("not found")
	ErrTrackLocked      = errors.New("track is locked")
	ErrInvalidBounds    = errors.New("invalid bounds")
	ErrOverlap          = errors.New("clip overlap")
	ErrMediaUnavailable = errors.New("media unavailable")
	ErrSerialization    = errors.New("serialization error")
)
