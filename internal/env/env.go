// Package env describes the hosting environment recognized at startup and
// the hooks that environment contributes to assembly, dispatch and
// resource registration.
package env

import (
	"fmt"
	"maps"
	"sort"
	"strings"

	"github.com/zjrosen/backendhub/internal/backend"
	"github.com/zjrosen/backendhub/internal/dispatch"
	"github.com/zjrosen/backendhub/internal/log"
	"github.com/zjrosen/backendhub/internal/resource"
)

// Environment identifies the detected hosting environment.
type Environment struct {
	Vendor  string
	Product string
	Version string
	Extra   map[string]string
}

// IsZero reports whether no environment was recognized.
func (e Environment) IsZero() bool {
	return e.Vendor == "" && e.Product == "" && e.Version == "" && len(e.Extra) == 0
}

// String renders "vendor product version", or "unknown".
func (e Environment) String() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{e.Vendor, e.Product, e.Version} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return "unknown"
	}
	return strings.Join(parts, " ")
}

// ExtraKeys returns the keys of Extra, sorted.
func (e Environment) ExtraKeys() []string {
	keys := make([]string, 0, len(e.Extra))
	for k := range e.Extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Handle is the result of detection. Exactly one exists per hub.
type Handle interface {
	// Environment returns the immutable descriptor.
	Environment() Environment

	// PostDetect runs once after detection, before the backend set is
	// frozen. It may add or remove backends.
	PostDetect(backends *backend.SetBuilder, cfg map[string]string, logger log.Handler)

	// PreDispatch may rewrite the request or narrow the backends before
	// every dispatch. A returned error aborts the dispatch unchanged.
	PreDispatch(t dispatch.Target) (dispatch.Target, error)

	// RegisterAt registers obj on b. An empty name leaves naming to obj.
	RegisterAt(b backend.Backend, obj any, name string) (resource.Name, error)
}

// Base implements Handle with neutral hooks. Detectors embed it and
// override what their environment needs.
type Base struct {
	Env Environment
}

// NewBase returns a Base describing env. Extra is copied.
func NewBase(env Environment) *Base {
	env.Extra = maps.Clone(env.Extra)
	return &Base{Env: env}
}

// Environment returns the descriptor. Extra is a copy.
func (b *Base) Environment() Environment {
	e := b.Env
	e.Extra = maps.Clone(b.Env.Extra)
	return e
}

// ConfigExcludeBackends names a comma-separated list of backend labels
// that PostDetect removes from the set. Pinned backends stay.
const ConfigExcludeBackends = "exclude_backends"

// PostDetect applies ConfigExcludeBackends.
func (b *Base) PostDetect(backends *backend.SetBuilder, cfg map[string]string, _ log.Handler) {
	raw := strings.TrimSpace(cfg[ConfigExcludeBackends])
	if raw == "" || backends == nil {
		return
	}
	for _, label := range strings.Split(raw, ",") {
		label = strings.TrimSpace(label)
		if label == "" {
			continue
		}
		for _, be := range backends.Backends() {
			if !hasLabel(be, label) {
				continue
			}
			if backends.Remove(be) {
				log.Info(log.CatDetect, "excluded backend", "backend", be.ID())
			} else {
				log.Warn(log.CatDetect, "backend cannot be excluded", "backend", be.ID())
			}
		}
	}
}

// hasLabel matches the label part of IDs shaped "label@suffix".
func hasLabel(b backend.Backend, label string) bool {
	id := b.ID()
	return id == label || strings.HasPrefix(id, label+"@")
}

// PreDispatch returns t unchanged.
func (b *Base) PreDispatch(t dispatch.Target) (dispatch.Target, error) {
	return t, nil
}

// RegisterAt parses name and registers obj under it. With an empty name the
// backend is given a zero name, so obj must choose its own through
// backend.Lifecycle.
func (b *Base) RegisterAt(be backend.Backend, obj any, name string) (resource.Name, error) {
	var n resource.Name
	if name != "" {
		parsed, err := resource.Parse(name)
		if err != nil {
			return resource.Name{}, err
		}
		n = parsed
	}
	registered, err := be.Register(obj, n)
	if err != nil {
		return resource.Name{}, fmt.Errorf("registering on %s: %w", be.ID(), err)
	}
	return registered, nil
}

type nullHandle struct {
	Base
}

// Null is the handle used when no environment is recognized.
var Null Handle = &nullHandle{}

// IsNull reports whether h is the Null handle.
func IsNull(h Handle) bool {
	return h == Null
}

var _ Handle = (*Base)(nil)
