// Package repository defines error values that are reused across multiple
// repositories. These sentinel values let handlers distinguish failure
// scenarios without string matching. ErrSchedulingConflict signals that a
// screening write collided with an existing screening in the same room,
// date and start time; handlers translate it into an HTTP 422 response.
// ErrMalformedSeatData surfaces corrupt seat JSON stored on a booking row
// instead of silently skipping it, so data-integrity violations are loud.
package repository

import "errors"

// ErrSchedulingConflict is returned when another screening already occupies
// the same (room, date, start_time) slot.
var ErrSchedulingConflict = errors.New("there is already a screening scheduled in this room at this time")

// ErrMalformedSeatData is returned when a booking's stored seat list cannot
// be decoded. Callers must treat it as an internal failure, not skip it.
var ErrMalformedSeatData = errors.New("malformed booking seat data")
