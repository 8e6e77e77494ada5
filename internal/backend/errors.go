package backend

import "errors"

// Lookup faults
var (
	// ErrResourceNotFound reports that a backend does not host the resource.
	ErrResourceNotFound = errors.New("resource not found")
	// ErrMemberNotFound reports that the resource exists but the requested
	// member (attribute, operation) does not.
	ErrMemberNotFound = errors.New("member not found")
	// ErrTransport reports a communication-layer failure. Never retried.
	ErrTransport = errors.New("transport failure")
)

// Registration faults
var (
	ErrResourceExists = errors.New("resource already exists")
	ErrNotRegistrable = errors.New("resource cannot be registered")
)
