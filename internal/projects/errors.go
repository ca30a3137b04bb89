package projects

import (
	"fmt"
	"strings"
)

// ValidationError reports fields rejected by Create or Update.
type ValidationError struct {
	Fields []string
	Reason string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Fields, ", ") + ": " + e.Reason
}

// NotFoundError reports an id with no matching record.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("project %q not found", e.ID)
}

// StorageError wraps a failure to read, decode or write the document.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("project storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
