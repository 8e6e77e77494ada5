// Package ledger records resources registered on behalf of the hub so they
// can be torn down together.
package ledger

import (
	"strings"
	"sync"

	"github.com/zjrosen/backendhub/internal/backend"
	"github.com/zjrosen/backendhub/internal/log"
	"github.com/zjrosen/backendhub/internal/pubsub"
	"github.com/zjrosen/backendhub/internal/resource"
)

// Entry is one registration: where it lives and under which name.
type Entry struct {
	Backend backend.Backend
	Name    resource.Name
}

// Registrar performs the actual registration. env.Handle satisfies it
// through RegisterAt.
type Registrar interface {
	RegisterAt(b backend.Backend, obj any, name string) (resource.Name, error)
}

// TeardownError aggregates the failures of one UnregisterAll call.
type TeardownError struct {
	Errs []error
}

// Error joins the failure messages with ", ".
func (e *TeardownError) Error() string {
	msgs := make([]string, len(e.Errs))
	for i, err := range e.Errs {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, ", ")
}

// Unwrap exposes the individual failures to errors.Is and errors.As.
func (e *TeardownError) Unwrap() []error {
	return e.Errs
}

// Ledger is safe for concurrent use. Register and UnregisterAll serialize
// on one lock.
type Ledger struct {
	mu      sync.Mutex
	entries []Entry
	broker  *pubsub.Broker[Entry]
}

// New creates an empty ledger.
func New() *Ledger {
	return &Ledger{broker: pubsub.NewBroker[Entry]()}
}

// Broker publishes RegisteredEvent and UnregisteredEvent for every entry.
func (l *Ledger) Broker() *pubsub.Broker[Entry] {
	return l.broker
}

// Register registers obj on b through r and records the result. An empty
// name lets r choose one.
func (l *Ledger) Register(b backend.Backend, obj any, name string, r Registrar) (resource.Name, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	registered, err := r.RegisterAt(b, obj, name)
	if err != nil {
		return resource.Name{}, err
	}

	entry := Entry{Backend: b, Name: registered}
	l.entries = append(l.entries, entry)
	l.broker.Publish(pubsub.RegisteredEvent, entry)
	log.Debug(log.CatLedger, "recorded registration", "backend", b.ID(), "name", registered)
	return registered, nil
}

// UnregisterAll attempts to unregister every entry and always leaves the
// ledger empty. It returns nil, the only failure unchanged, or a
// *TeardownError when several entries failed.
func (l *Ledger) UnregisterAll() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var errs []error
	for _, e := range l.entries {
		if err := e.Backend.Unregister(e.Name); err != nil {
			log.ErrorErr(log.CatLedger, "unregistration failed", err, "backend", e.Backend.ID(), "name", e.Name)
			errs = append(errs, err)
		}
		l.broker.Publish(pubsub.UnregisteredEvent, e)
	}
	l.entries = nil

	switch len(errs) {
	case 0:
		return nil
	case 1:
		return errs[0]
	default:
		return &TeardownError{Errs: errs}
	}
}

// Len returns the number of recorded entries.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Entries returns a copy of the recorded entries in registration order.
func (l *Ledger) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Entry(nil), l.entries...)
}
