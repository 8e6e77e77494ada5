package backend

import (
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/zjrosen/backendhub/internal/log"
	"github.com/zjrosen/backendhub/internal/resource"
)

type hosted struct {
	name resource.Name
	obj  any
}

// MemoryBackend is a thread-safe in-process Backend.
type MemoryBackend struct {
	id            string
	defaultDomain string

	mu        sync.RWMutex
	resources map[string]hosted // canonical name -> resource
}

// NewMemoryBackend creates an empty backend. The label becomes part of ID,
// followed by a random suffix so that backends sharing a label are told
// apart in reports.
func NewMemoryBackend(label, defaultDomain string) *MemoryBackend {
	return &MemoryBackend{
		id:            fmt.Sprintf("%s@%s", label, uuid.NewString()[:8]),
		defaultDomain: defaultDomain,
		resources:     make(map[string]hosted),
	}
}

// ID returns the identity string.
func (b *MemoryBackend) ID() string {
	return b.id
}

func (b *MemoryBackend) String() string {
	return b.id
}

// DefaultDomain returns the domain used for names registered without one.
func (b *MemoryBackend) DefaultDomain() string {
	return b.defaultDomain
}

// ResourceCount returns the number of hosted resources.
func (b *MemoryBackend) ResourceCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.resources)
}

// Domains returns the distinct domains of hosted resources, sorted.
func (b *MemoryBackend) Domains() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	set := make(map[string]bool)
	for _, h := range b.resources {
		set[h.name.Domain()] = true
	}
	domains := make([]string, 0, len(set))
	for d := range set {
		domains = append(domains, d)
	}
	sort.Strings(domains)
	return domains
}

// Query returns every hosted name matched by pattern. A zero pattern
// matches everything.
func (b *MemoryBackend) Query(pattern resource.Name) ([]resource.Name, error) {
	if pattern.IsZero() {
		pattern = resource.MustParse("*:*")
	}

	b.mu.RLock()
	names := make([]resource.Name, 0)
	for _, h := range b.resources {
		if pattern.Matches(h.name) {
			names = append(names, h.name)
		}
	}
	b.mu.RUnlock()

	sort.Slice(names, func(i, j int) bool { return names[i].String() < names[j].String() })
	return names, nil
}

// Lookup returns the object registered under name.
func (b *MemoryBackend) Lookup(name resource.Name) (any, error) {
	name = b.qualify(name)

	b.mu.RLock()
	defer b.mu.RUnlock()

	h, ok := b.resources[name.String()]
	if !ok {
		return nil, fmt.Errorf("%w: %s on %s", ErrResourceNotFound, name, b.id)
	}
	return h.obj, nil
}

// Register stores obj under name. If obj implements Lifecycle, PreRegister
// decides the final name and PostRegister is told the outcome.
func (b *MemoryBackend) Register(obj any, name resource.Name) (resource.Name, error) {
	if obj == nil {
		return resource.Name{}, fmt.Errorf("%w: nil object", ErrNotRegistrable)
	}

	lc, _ := obj.(Lifecycle)
	if lc != nil {
		n, err := lc.PreRegister(b, name)
		if err != nil {
			return resource.Name{}, fmt.Errorf("%w: %w", ErrNotRegistrable, err)
		}
		name = n
	}

	registered, err := b.store(obj, name)
	if lc != nil {
		lc.PostRegister(err == nil)
	}
	if err != nil {
		return resource.Name{}, err
	}

	log.Debug(log.CatBackend, "registered resource", "backend", b.id, "name", registered)
	return registered, nil
}

func (b *MemoryBackend) store(obj any, name resource.Name) (resource.Name, error) {
	if name.IsZero() {
		return resource.Name{}, fmt.Errorf("%w: no name given for %T", resource.ErrMalformedName, obj)
	}
	if name.IsPattern() {
		return resource.Name{}, fmt.Errorf("%w: cannot register under pattern %s", resource.ErrMalformedName, name)
	}
	name = b.qualify(name)

	b.mu.Lock()
	defer b.mu.Unlock()

	key := name.String()
	if _, exists := b.resources[key]; exists {
		return resource.Name{}, fmt.Errorf("%w: %s", ErrResourceExists, key)
	}
	b.resources[key] = hosted{name: name, obj: obj}
	return name, nil
}

// Unregister removes the resource under name.
func (b *MemoryBackend) Unregister(name resource.Name) error {
	name = b.qualify(name)
	key := name.String()

	b.mu.RLock()
	h, ok := b.resources[key]
	b.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s on %s", ErrResourceNotFound, key, b.id)
	}

	lc, _ := h.obj.(Lifecycle)
	if lc != nil {
		if err := lc.PreDeregister(); err != nil {
			return fmt.Errorf("%w: deregistration of %s refused: %w", ErrNotRegistrable, key, err)
		}
	}

	b.mu.Lock()
	_, still := b.resources[key]
	delete(b.resources, key)
	b.mu.Unlock()
	if !still {
		return fmt.Errorf("%w: %s on %s", ErrResourceNotFound, key, b.id)
	}

	if lc != nil {
		lc.PostDeregister()
	}
	log.Debug(log.CatBackend, "unregistered resource", "backend", b.id, "name", key)
	return nil
}

// qualify substitutes the default domain for an empty one.
func (b *MemoryBackend) qualify(name resource.Name) resource.Name {
	if name.Domain() != "" || name.IsZero() || b.defaultDomain == "" {
		return name
	}
	q, err := resource.New(b.defaultDomain, name.Properties()...)
	if err != nil {
		return name
	}
	return q
}

var _ Backend = (*MemoryBackend)(nil)
