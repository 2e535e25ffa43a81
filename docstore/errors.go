package docstore

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when a document lookup matches nothing.
	ErrNotFound = errors.New("docstore: document not found")

	// ErrUnavailable is returned when the backend cannot be reached.
	// Transient: safe to retry.
	ErrUnavailable = errors.New("docstore: store unavailable")

	// ErrDeadlineExceeded is returned when the backend did not answer in
	// time. Transient: safe to retry.
	ErrDeadlineExceeded = errors.New("docstore: deadline exceeded")

	// ErrPermissionDenied is returned when the backend rejects the
	// operation. Permanent: retrying cannot succeed.
	ErrPermissionDenied = errors.New("docstore: permission denied")

	// ErrInvalidQuery is returned when a query or document is malformed.
	// Permanent: retrying cannot succeed.
	ErrInvalidQuery = errors.New("docstore: invalid query")
)

// IsTransient reports whether err is worth retrying. Only unavailability and
// deadline expiry qualify; everything else (not found, permission denied,
// invalid query) is permanent and must propagate on first failure, since
// retrying a permanent error wastes latency and can mask real faults.
func IsTransient(err error) bool {
	return errors.Is(err, ErrUnavailable) ||
		errors.Is(err, ErrDeadlineExceeded) ||
		errors.Is(err, context.DeadlineExceeded)
}
