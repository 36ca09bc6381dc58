package memoslot

import "errors"

// Sentinel errors returned by New.
//
// Compute errors are never wrapped: GetOrCompute returns exactly the error
// value produced by the compute function, or ctx.Err() on cancellation.
var (
	// ErrNilCompute indicates New was called without a compute function.
	//
	// This is a programming error.
	ErrNilCompute = errors.New("memoslot: nil compute function")

	// ErrOptionType indicates WithCopy or WithCoalescing was given a
	// function whose types do not match the cache's input or output type.
	//
	// This is a programming error.
	ErrOptionType = errors.New("memoslot: option type mismatch")
)
