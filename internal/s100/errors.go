package s100

import "fmt"

// WriteError indicates a failed group, attribute, or dataset operation on
// the output container. The whole generation run is aborted on the first
// one; a partially written container is invalid and must be discarded by
// the caller.
type WriteError struct {
	Path string // group path the operation targeted
	Op   string
	Err  error
}

func (e *WriteError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("container write failed: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("container write failed at %q: %s: %v", e.Path, e.Op, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }
