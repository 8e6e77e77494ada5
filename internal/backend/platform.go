package backend

import (
	"slices"
	"sync"
)

// Default domains of the process-wide backends.
const (
	HostedDomain   = "backendhub"
	PlatformDomain = "DefaultDomain"
)

// Platform supplies the backends that exist independently of any detector.
type Platform interface {
	// Hosted returns the dedicated self-hosted backend. It is the same
	// backend on every call.
	Hosted() Backend

	// Registered returns externally registered backends in registration order.
	Registered() []Backend

	// Default returns the platform-default backend. It is the same backend
	// on every call.
	Default() Backend
}

// Registry is a Platform whose externally registered backends can be
// managed at runtime.
type Registry struct {
	hosted Backend
	def    Backend

	mu         sync.RWMutex
	registered []Backend
}

// NewPlatform creates a Registry around the given self-hosted and default
// backends.
func NewPlatform(hosted, def Backend) *Registry {
	return &Registry{hosted: hosted, def: def}
}

// Hosted returns the self-hosted backend.
func (r *Registry) Hosted() Backend {
	return r.hosted
}

// Default returns the platform-default backend.
func (r *Registry) Default() Backend {
	return r.def
}

// Register adds an external backend. Returns false if b is nil or already
// registered.
func (r *Registry) Register(b Backend) bool {
	if b == nil {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if slices.Contains(r.registered, b) {
		return false
	}
	r.registered = append(r.registered, b)
	return true
}

// Unregister removes an external backend.
func (r *Registry) Unregister(b Backend) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx := slices.Index(r.registered, b)
	if idx < 0 {
		return false
	}
	r.registered = slices.Delete(r.registered, idx, idx+1)
	return true
}

// Registered returns a copy of the externally registered backends.
func (r *Registry) Registered() []Backend {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.registered)
}

var (
	processOnce     sync.Once
	processPlatform *Registry
)

// Process returns the process-wide Platform. Its self-hosted and default
// backends are created on first use and shared by every caller.
func Process() *Registry {
	processOnce.Do(func() {
		processPlatform = NewPlatform(
			NewMemoryBackend("hosted", HostedDomain),
			NewMemoryBackend("platform", PlatformDomain),
		)
	})
	return processPlatform
}

var _ Platform = (*Registry)(nil)
