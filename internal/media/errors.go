package media

import "errors"

// Terminal error classes for the extraction pipeline. Stage errors wrap one
// of these so callers can branch with errors.Is and decide whether the
// count-based fallback applies.
var (
	// ErrDecode means the video resource is unreadable at all, including a
	// failure on the very first frame of a run.
	ErrDecode = errors.New("video undecodable")

	// ErrSeekTimeout marks a single frame whose seek exceeded the per-seek
	// deadline. Recovered locally by skipping the frame.
	ErrSeekTimeout = errors.New("frame seek timed out")

	// ErrExtractionTimeout means the whole run exceeded its wall-clock budget.
	ErrExtractionTimeout = errors.New("extraction budget exceeded")

	// ErrEmptyResult means a run produced zero usable frames or zero items.
	ErrEmptyResult = errors.New("empty result")

	// ErrComputation marks invalid timing inputs, such as a non-positive
	// total duration.
	ErrComputation = errors.New("invalid timing input")
)
