package handler

import (
	"context"
	"fmt"

	"github.com/zjrosen/backendhub/internal/backend"
	"github.com/zjrosen/backendhub/internal/dispatch"
	"github.com/zjrosen/backendhub/internal/resource"
)

// ExecRequest invokes a named operation on one resource.
type ExecRequest struct {
	Target    resource.Name
	Operation string
}

func (r ExecRequest) Type() dispatch.RequestType { return TypeExec }
func (r ExecRequest) Name() resource.Name        { return r.Target }

// Exec serves ExecRequest backend by backend.
type Exec struct{}

// HandleAllAtOnce is always false.
func (Exec) HandleAllAtOnce(dispatch.Request) bool { return false }

func (Exec) HandleBackend(ctx context.Context, b backend.Backend, req dispatch.Request) (any, error) {
	r, ok := req.(ExecRequest)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrWrongRequest, req.Type())
	}
	obj, err := b.Lookup(r.Target)
	if err != nil {
		return nil, err
	}
	inv, ok := obj.(Invoker)
	if !ok {
		return nil, fmt.Errorf("%w: %s exposes no operations", backend.ErrMemberNotFound, r.Target)
	}
	return inv.Invoke(ctx, r.Operation)
}

func (Exec) HandleConnections(_ context.Context, _ []backend.Connection, req dispatch.Request) (any, error) {
	return nil, fmt.Errorf("%w: %s is served backend by backend", ErrWrongRequest, req.Type())
}

var _ dispatch.Handler = Exec{}
