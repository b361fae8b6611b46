package renderer

import "errors"

var (
	ErrNoTracers        = errors.New("renderer: no tracers attached")
	ErrSceneNotDefined  = errors.New("renderer: no scene defined")
	ErrInvalidFrameDims = errors.New("renderer: frame dimensions must be > 0")
	ErrInterrupted      = errors.New("renderer: interrupted while rendering")
)
