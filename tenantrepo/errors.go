package tenantrepo

import "fmt"

// OperationError wraps a failed repository operation with its collection and
// operation kind. The underlying cause is preserved for errors.Is/As; callers
// above this layer see the generic failure, never a raw store error.
type OperationError struct {
	Collection string
	Op         string
	Err        error
}

// Error implements error.
func (e *OperationError) Error() string {
	return fmt.Sprintf("tenantrepo: %s on %q failed: %v", e.Op, e.Collection, e.Err)
}

// Unwrap exposes the cause.
func (e *OperationError) Unwrap() error {
	return e.Err
}
