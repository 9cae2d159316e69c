package hypergraph

import "errors"

// ErrInvalidArgument is the sentinel for precondition violations: bad
// vertex ids, empty edges, duplicate vertices within an edge, or a
// label vector whose length doesn't match the vertex count.
var ErrInvalidArgument = errors.New("hypergraph: invalid argument")

// ErrFrozen is returned when a structural mutation is attempted after
// Freeze has been called.
var ErrFrozen = errors.New("hypergraph: structure is frozen")

// ErrOutOfRange is the sentinel for read accessors indexed past the
// end of their backing slice.
var ErrOutOfRange = errors.New("hypergraph: index out of range")
