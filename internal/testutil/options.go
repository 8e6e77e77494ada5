package testutil

import (
	"fmt"
	"sort"

	"github.com/zjrosen/backendhub/internal/backend"
)

// Static is a resource whose attributes are fixed values.
type Static map[string]any

// AttributeNames lists the attribute names sorted.
func (s Static) AttributeNames() []string {
	names := make([]string, 0, len(s))
	for k := range s {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Attribute returns one value or ErrMemberNotFound.
func (s Static) Attribute(name string) (any, error) {
	v, ok := s[name]
	if !ok {
		return nil, fmt.Errorf("%w: no attribute %q", backend.ErrMemberNotFound, name)
	}
	return v, nil
}

// resourceData holds one resource to be registered.
type resourceData struct {
	name string
	obj  any
}

// backendData holds all data for a backend to be created.
type backendData struct {
	label         string
	defaultDomain string
	resources     []resourceData
	contributed   bool
}

// defaultBackend returns a backendData whose default domain is its label.
func defaultBackend(label string) backendData {
	return backendData{label: label, defaultDomain: label}
}

// BackendOption configures a backend during builder setup.
type BackendOption func(*backendData)

// DefaultDomain sets the backend's default domain.
func DefaultDomain(domain string) BackendOption {
	return func(b *backendData) {
		b.defaultDomain = domain
	}
}

// Resource registers obj under name.
func Resource(name string, obj any) BackendOption {
	return func(b *backendData) {
		b.resources = append(b.resources, resourceData{name: name, obj: obj})
	}
}

// Attributes registers a Static resource under name.
func Attributes(name string, attrs map[string]any) BackendOption {
	return Resource(name, Static(attrs))
}

// Contributed leaves the backend out of the platform registry. Tests hand
// such backends to a detector's ContributeBackends instead.
func Contributed() BackendOption {
	return func(b *backendData) {
		b.contributed = true
	}
}
