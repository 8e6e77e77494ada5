package backend

import "github.com/zjrosen/backendhub/internal/resource"

// Connection is the read-only view of a backend used for batch operations.
type Connection interface {
	// ID returns a human-readable identity string.
	ID() string

	// Query returns the names matching pattern, sorted canonically.
	Query(pattern resource.Name) ([]resource.Name, error)

	// Lookup returns the object registered under name.
	// Returns ErrResourceNotFound if nothing is registered there.
	Lookup(name resource.Name) (any, error)
}

// Backend hosts named resources.
type Backend interface {
	Connection

	// DefaultDomain is substituted for an empty domain on registration.
	DefaultDomain() string

	// ResourceCount returns the number of hosted resources.
	ResourceCount() int

	// Domains lists the domains of hosted resources.
	Domains() []string

	// Register stores obj under name and returns the name actually used.
	Register(obj any, name resource.Name) (resource.Name, error)

	// Unregister removes the resource registered under name.
	Unregister(name resource.Name) error
}

// Lifecycle is implemented by resources that want to take part in their own
// registration. Backends call the hooks around Register and Unregister.
//
// Hooks may run while the caller holds a registration lock, as with
// hub.RegisterResource and hub.UnregisterAll. A hook must not register or
// unregister through that same caller.
type Lifecycle interface {
	// PreRegister may replace the requested name, which can be zero.
	PreRegister(b Backend, name resource.Name) (resource.Name, error)
	PostRegister(done bool)
	PreDeregister() error
	PostDeregister()
}

// View is read access to an ordered backend collection.
type View interface {
	Backends() []Backend
	Contains(b Backend) bool
	Len() int
}
