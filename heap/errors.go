package heap

import "errors"

var (
	// ErrZeroSize indicates a zero-byte allocation request.
	ErrZeroSize = errors.New("heap: zero-size allocation")

	// ErrOverflow indicates size arithmetic would wrap while sizing a request or arena.
	ErrOverflow = errors.New("heap: size overflow")

	// ErrNoSpace indicates no arena could satisfy the request and mapping a new one failed.
	ErrNoSpace = errors.New("heap: no space")

	// ErrUninitialized indicates the first arena could not be mapped; the heap is unusable.
	ErrUninitialized = errors.New("heap: not initialized")

	// ErrBadPtr indicates a pointer that does not name a live allocation.
	ErrBadPtr = errors.New("heap: bad pointer")

	// ErrBindTarget indicates Bind was given an unsuitable target.
	ErrBindTarget = errors.New("heap: bad bind target")
)
