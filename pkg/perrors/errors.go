// Package perrors defines the provenance-store error kinds of §7: sentinel
// errors that every layer above pkg/storage wraps its failures in, so a
// caller can classify an error with errors.Is regardless of which engine or
// component produced it.
package perrors

import "errors"

var (
	// ErrNotFound means an identifier did not resolve.
	ErrNotFound = errors.New("provenance: not found")

	// ErrInvalidArgument means a null/empty key, unsupported direction
	// string, or similarly malformed input was given.
	ErrInvalidArgument = errors.New("provenance: invalid argument")

	// ErrConstraintViolation means a duplicate unique key was inserted;
	// non-fatal, the caller receives the existing node instead.
	ErrConstraintViolation = errors.New("provenance: constraint violation")

	// ErrDanglingEdge means an edge insert referenced a missing endpoint;
	// fatal for that operation.
	ErrDanglingEdge = errors.New("provenance: dangling edge")

	// ErrStorageFailure means the kernel-level transaction failed on a
	// write.
	ErrStorageFailure = errors.New("provenance: storage failure")

	// ErrUnauthorized means the viewer cannot see any version of the
	// requested object. Per §7 this is represented by returning nil/null
	// rather than raised as an error in most call paths; it exists here
	// for the rare operation that must raise instead.
	ErrUnauthorized = errors.New("provenance: unauthorized")
)
