// Package backend models management backends: in-process handles that host
// named resources and answer queries about them.
//
// # Core Types
//
// Backend is the full handle used for registration and per-backend dispatch.
// Connection is its read-only subset used by batch dispatch. Identity is
// reference identity: two Backend values are the same backend when they
// compare equal with ==, so implementations must be pointer types.
//
// MemoryBackend is the in-process implementation used for the self-hosted
// and platform-default backends.
//
// SetBuilder assembles the ordered, duplicate-free backend collection during
// startup. It pins one backend first and one last. Freeze hands its storage
// to an immutable Set, which is safe for concurrent readers.
//
// Platform is the injected capability that supplies the self-hosted backend,
// the platform-default backend and any externally registered backends.
// Process returns the process-wide Platform.
//
// # Faults
//
// Lookup and dispatch faults are sentinels checked with errors.Is:
// ErrResourceNotFound, ErrMemberNotFound, ErrTransport. Registration faults
// are ErrResourceExists, ErrNotRegistrable and resource.ErrMalformedName.
package backend
