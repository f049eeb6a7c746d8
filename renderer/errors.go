package renderer

import "errors"

var (
	ErrEmptyScene   = errors.New("renderer: scene does not contain any primitives")
	ErrInvalidFrame = errors.New("renderer: frame dimensions must be positive")
)
