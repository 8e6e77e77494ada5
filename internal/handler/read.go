package handler

import (
	"context"
	"errors"
	"fmt"

	"github.com/zjrosen/backendhub/internal/backend"
	"github.com/zjrosen/backendhub/internal/dispatch"
	"github.com/zjrosen/backendhub/internal/resource"
)

// ReadRequest reads one attribute, or all attributes when Attribute is
// empty. A pattern Target reads from every matching resource on every
// backend.
type ReadRequest struct {
	Target    resource.Name
	Attribute string
}

func (r ReadRequest) Type() dispatch.RequestType { return TypeRead }
func (r ReadRequest) Name() resource.Name        { return r.Target }

// Read serves ReadRequest.
type Read struct{}

// HandleAllAtOnce is true for pattern reads.
func (Read) HandleAllAtOnce(req dispatch.Request) bool {
	return req.Name().IsPattern()
}

// HandleBackend reads from the single resource named by the request.
func (Read) HandleBackend(_ context.Context, b backend.Backend, req dispatch.Request) (any, error) {
	r, ok := req.(ReadRequest)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrWrongRequest, req.Type())
	}
	obj, err := b.Lookup(r.Target)
	if err != nil {
		return nil, err
	}
	return lookupAttribute(obj, r.Target, r.Attribute)
}

// HandleConnections reads from every resource matching the pattern and
// returns values keyed by canonical name. Resources lacking the attribute
// are skipped. A name hosted by several backends is read from the first.
func (Read) HandleConnections(_ context.Context, conns []backend.Connection, req dispatch.Request) (any, error) {
	r, ok := req.(ReadRequest)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrWrongRequest, req.Type())
	}

	values := make(map[string]any)
	var (
		matched   int
		memberErr error
	)
	for _, c := range conns {
		names, err := c.Query(r.Target)
		if err != nil {
			return nil, err
		}
		for _, n := range names {
			key := n.String()
			if _, done := values[key]; done {
				continue
			}
			obj, err := c.Lookup(n)
			if err != nil {
				return nil, err
			}
			matched++
			v, err := lookupAttribute(obj, n, r.Attribute)
			if errors.Is(err, backend.ErrMemberNotFound) {
				memberErr = err
				continue
			}
			if err != nil {
				return nil, err
			}
			values[key] = v
		}
	}

	switch {
	case matched == 0:
		return nil, fmt.Errorf("%w: no resource matches %s", backend.ErrResourceNotFound, r.Target)
	case len(values) == 0:
		return nil, memberErr
	}
	return values, nil
}

var _ dispatch.Handler = Read{}
