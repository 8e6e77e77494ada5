package handler

import (
	"context"
	"fmt"

	"github.com/zjrosen/backendhub/internal/backend"
	"github.com/zjrosen/backendhub/internal/dispatch"
	"github.com/zjrosen/backendhub/internal/resource"
)

// ListRequest lists the names matching Pattern. A zero Pattern lists
// everything.
type ListRequest struct {
	Pattern resource.Name
}

func (r ListRequest) Type() dispatch.RequestType { return TypeList }
func (r ListRequest) Name() resource.Name        { return r.Pattern }

// Listing is one name and the backend hosting it.
type Listing struct {
	Backend string
	Name    resource.Name
}

// List serves ListRequest over all connections at once.
type List struct{}

// HandleAllAtOnce is always true.
func (List) HandleAllAtOnce(dispatch.Request) bool { return true }

// HandleBackend is not used by List.
func (List) HandleBackend(_ context.Context, _ backend.Backend, req dispatch.Request) (any, error) {
	return nil, fmt.Errorf("%w: %s is served over all connections", ErrWrongRequest, req.Type())
}

// HandleConnections returns a []Listing in connection order. Each
// connection's names keep the order it returned them in.
func (List) HandleConnections(_ context.Context, conns []backend.Connection, req dispatch.Request) (any, error) {
	r, ok := req.(ListRequest)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrWrongRequest, req.Type())
	}

	var out []Listing
	for _, c := range conns {
		names, err := c.Query(r.Pattern)
		if err != nil {
			return nil, err
		}
		for _, n := range names {
			out = append(out, Listing{Backend: c.ID(), Name: n})
		}
	}
	return out, nil
}

var _ dispatch.Handler = List{}
