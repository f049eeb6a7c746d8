package pipeline

import "errors"

var (
	ErrTopology    = errors.New("pipeline: hierarchy topology is invalid")
	ErrContainment = errors.New("pipeline: hierarchy containment is invalid")
)
