// Package hyperlperr defines the small sentinel-error taxonomy shared
// across packages that sit above hypergraph/csr: serialize, genhg,
// engine, and cmd/hyperlp. Each sentinel is wrapped with fmt.Errorf's
// %w to attach context, and callers discriminate with errors.Is.
package hyperlperr

import "errors"

// ErrPrecondition marks a caller-supplied argument that violates an
// operation's documented precondition (bad count, negative size, ...).
var ErrPrecondition = errors.New("hyperlp: precondition violated")

// ErrIO marks a failure reading or writing the underlying stream or file.
var ErrIO = errors.New("hyperlp: I/O error")

// ErrFormat marks malformed or unrecognized serialized data.
var ErrFormat = errors.New("hyperlp: malformed data")

// ErrConfig marks an invalid or unsatisfiable configuration (e.g. a
// generator whose parameters cannot produce the requested graph).
var ErrConfig = errors.New("hyperlp: invalid configuration")

// ErrResource marks exhaustion of a bounded resource (label capacity,
// rejection-sampling attempt budget, ...).
var ErrResource = errors.New("hyperlp: resource exhausted")
