// Package testutil builds platforms and backends for tests.
package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/backendhub/internal/backend"
	"github.com/zjrosen/backendhub/internal/resource"
)

// Fixture is the result of Build.
type Fixture struct {
	Platform *backend.Registry
	Hosted   *backend.MemoryBackend
	Default  *backend.MemoryBackend

	// Backends holds every built backend by label, in WithBackend order.
	Backends    map[string]*backend.MemoryBackend
	contributed []backend.Backend
}

// Backend returns the backend built for label and fails the test if there
// is none.
func (f *Fixture) Backend(t *testing.T, label string) *backend.MemoryBackend {
	t.Helper()
	b, ok := f.Backends[label]
	require.True(t, ok, "no backend labeled %q", label)
	return b
}

// Contributed returns the backends built with the Contributed option.
func (f *Fixture) Contributed() []backend.Backend {
	return append([]backend.Backend(nil), f.contributed...)
}

// Builder accumulates backends and resources and creates them in order.
type Builder struct {
	t        *testing.T
	hosted   []resourceData
	platform []resourceData
	backends []backendData
}

// NewBuilder creates a builder for a fresh, isolated platform.
func NewBuilder(t *testing.T) *Builder {
	t.Helper()
	return &Builder{t: t}
}

// WithBackend adds a backend with optional configuration.
func (b *Builder) WithBackend(label string, opts ...BackendOption) *Builder {
	data := defaultBackend(label)
	for _, opt := range opts {
		opt(&data)
	}
	b.backends = append(b.backends, data)
	return b
}

// WithHostedResource registers obj on the self-hosted backend.
func (b *Builder) WithHostedResource(name string, obj any) *Builder {
	b.hosted = append(b.hosted, resourceData{name: name, obj: obj})
	return b
}

// WithPlatformResource registers obj on the platform-default backend.
func (b *Builder) WithPlatformResource(name string, obj any) *Builder {
	b.platform = append(b.platform, resourceData{name: name, obj: obj})
	return b
}

// Build creates the platform, then the backends, then their resources.
func (b *Builder) Build() *Fixture {
	b.t.Helper()

	f := &Fixture{
		Hosted:   backend.NewMemoryBackend("hosted", backend.HostedDomain),
		Default:  backend.NewMemoryBackend("platform", backend.PlatformDomain),
		Backends: make(map[string]*backend.MemoryBackend, len(b.backends)),
	}
	f.Platform = backend.NewPlatform(f.Hosted, f.Default)
	b.register(f.Hosted, b.hosted)
	b.register(f.Default, b.platform)

	for _, data := range b.backends {
		require.NotContains(b.t, f.Backends, data.label, "duplicate backend label")
		mb := backend.NewMemoryBackend(data.label, data.defaultDomain)
		b.register(mb, data.resources)
		if data.contributed {
			f.contributed = append(f.contributed, mb)
		} else {
			f.Platform.Register(mb)
		}
		f.Backends[data.label] = mb
	}
	return f
}

func (b *Builder) register(mb *backend.MemoryBackend, resources []resourceData) {
	b.t.Helper()
	for _, r := range resources {
		name, err := resource.Parse(r.name)
		require.NoError(b.t, err)
		_, err = mb.Register(r.obj, name)
		require.NoError(b.t, err)
	}
}
