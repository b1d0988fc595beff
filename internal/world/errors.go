package world

import "errors"

var (
	// ErrOutOfBounds: coordinate outside the grid. Callers treat it as "no tile here".
	ErrOutOfBounds = errors.New("tile out of bounds")

	// Placement rejections. The build command must not create a job after any of these.
	ErrOccupied     = errors.New("tile already has an installed object")
	ErrNotBuildable = errors.New("tile has no foundation to build on")
	ErrPendingJob   = errors.New("tile has a pending placement job")

	// ErrUnknownPrototype is a setup error: validate prototypes at startup.
	ErrUnknownPrototype   = errors.New("unknown installed object type")
	ErrDuplicatePrototype = errors.New("installed object type already registered")

	ErrJobQueued   = errors.New("job already queued")
	ErrNotAdjacent = errors.New("destination is not adjacent to current tile")
	ErrNoBuildType = errors.New("build mode has no installed object type")
)
