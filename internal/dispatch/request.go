package dispatch

import (
	"context"

	"github.com/zjrosen/backendhub/internal/backend"
	"github.com/zjrosen/backendhub/internal/resource"
)

// RequestType names a kind of management request (read, list, ...).
type RequestType string

// Request is a management request. Its semantics belong to the Handler that
// serves it. The dispatcher only reads the type and target name for tracing.
type Request interface {
	Type() RequestType
	Name() resource.Name
}

// Handler executes requests against backends.
type Handler interface {
	// HandleAllAtOnce reports whether req is served by one call over every
	// connection rather than backend by backend.
	HandleAllAtOnce(req Request) bool

	// HandleBackend serves req on a single backend. It signals a miss with
	// backend.ErrResourceNotFound or backend.ErrMemberNotFound and a
	// communication failure with backend.ErrTransport.
	HandleBackend(ctx context.Context, b backend.Backend, req Request) (any, error)

	// HandleConnections serves req over all connections in one call.
	HandleConnections(ctx context.Context, conns []backend.Connection, req Request) (any, error)
}

// Target is what a dispatch runs against.
type Target struct {
	Backends *backend.Set
	Request  Request
}

// Preparer adjusts a Target before dispatch. It may rewrite the request or
// narrow the backends.
type Preparer interface {
	PreDispatch(t Target) (Target, error)
}

// PreparerFunc adapts a function to Preparer.
type PreparerFunc func(t Target) (Target, error)

// PreDispatch calls f(t).
func (f PreparerFunc) PreDispatch(t Target) (Target, error) { return f(t) }
