package align

import "errors"

var(
	// ErrInvalidInput is returned by Prepare for images that are empty or
	// have more than one channel.
	ErrInvalidInput = errors.New("invalid input image")

	// ErrSingularSystem means the normal equations of an Align step could
	// not be solved: the gradients are all zero, or the warp has wandered
	// off somewhere that produced NaNs. The warp is left untouched.
	ErrSingularSystem = errors.New("singular alignment system")

	ErrNotPrepared  = errors.New("engine not prepared")
	ErrWarpMismatch = errors.New("warp does not match engine")
)
