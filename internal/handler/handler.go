// Package handler implements the management requests served through the
// dispatcher: attribute reads, name listing and operation invocation.
package handler

import (
	"context"
	"errors"
	"fmt"

	"github.com/zjrosen/backendhub/internal/backend"
	"github.com/zjrosen/backendhub/internal/dispatch"
	"github.com/zjrosen/backendhub/internal/resource"
)

// Request types served by this package.
const (
	TypeRead dispatch.RequestType = "read"
	TypeList dispatch.RequestType = "list"
	TypeExec dispatch.RequestType = "exec"
)

// ErrWrongRequest is returned when a handler is given a request it does not
// serve.
var ErrWrongRequest = errors.New("wrong request type for handler")

// AttributeSource is implemented by resources that expose readable
// attributes. Attribute returns an error matching backend.ErrMemberNotFound
// for unknown names.
type AttributeSource interface {
	AttributeNames() []string
	Attribute(name string) (any, error)
}

// Invoker is implemented by resources that expose operations. Invoke
// returns an error matching backend.ErrMemberNotFound for unknown
// operations.
type Invoker interface {
	Invoke(ctx context.Context, operation string) (any, error)
}

func lookupAttribute(obj any, name resource.Name, attr string) (any, error) {
	src, ok := obj.(AttributeSource)
	if !ok {
		return nil, fmt.Errorf("%w: %s exposes no attributes", backend.ErrMemberNotFound, name)
	}
	if attr == "" {
		all := make(map[string]any)
		for _, a := range src.AttributeNames() {
			v, err := src.Attribute(a)
			if err != nil {
				return nil, err
			}
			all[a] = v
		}
		return all, nil
	}
	return src.Attribute(attr)
}
