// Package hub wires backend assembly, environment detection, dispatch and
// registration bookkeeping into one component and hosts it as a managed
// resource.
package hub

import (
	"context"
	"errors"
	"fmt"
	"maps"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/zjrosen/backendhub/internal/backend"
	"github.com/zjrosen/backendhub/internal/config"
	"github.com/zjrosen/backendhub/internal/detect"
	"github.com/zjrosen/backendhub/internal/dispatch"
	"github.com/zjrosen/backendhub/internal/env"
	"github.com/zjrosen/backendhub/internal/flags"
	"github.com/zjrosen/backendhub/internal/handler"
	"github.com/zjrosen/backendhub/internal/ledger"
	"github.com/zjrosen/backendhub/internal/log"
	"github.com/zjrosen/backendhub/internal/pubsub"
	"github.com/zjrosen/backendhub/internal/report"
	"github.com/zjrosen/backendhub/internal/resource"
	"github.com/zjrosen/backendhub/internal/runtimeinfo"
	"github.com/zjrosen/backendhub/internal/tracing"
)

// BaseName is the hub's resource name before the qualifier.
const BaseName = "backendhub:type=BackendHandler"

// ErrOwnName is returned by New when the qualifier yields an invalid name.
var ErrOwnName = errors.New("hub resource name is malformed")

// Hub routes management requests over the backends of one process.
type Hub struct {
	qualifier  string
	platform   backend.Platform
	backends   *backend.Set
	handle     env.Handle
	dispatcher *dispatch.Dispatcher
	ledger     *ledger.Ledger
	reporter   *report.Reporter
	stop       context.CancelFunc
}

type options struct {
	platform     backend.Platform
	detectors    []detect.Detector
	detectorsSet bool
	logger       log.Handler
	tracer       trace.Tracer
}

// Option configures New.
type Option func(*options)

// WithPlatform replaces the process-wide platform.
func WithPlatform(p backend.Platform) Option {
	return func(o *options) { o.platform = p }
}

// WithDetectors replaces the built-in detectors.
func WithDetectors(ds ...detect.Detector) Option {
	return func(o *options) {
		o.detectors = ds
		o.detectorsSet = true
	}
}

// WithLogHandler receives detector faults.
func WithLogHandler(l log.Handler) Option {
	return func(o *options) { o.logger = l }
}

// WithTracer records startup and dispatch spans.
func WithTracer(t trace.Tracer) Option {
	return func(o *options) { o.tracer = t }
}

// New assembles the backends, detects the environment, freezes the backend
// set and registers the hub on the hosted backend.
func New(cfg config.Config, opts ...Option) (*Hub, error) {
	o := options{
		logger: log.NewHandler(log.CatDetect),
		tracer: noop.NewTracerProvider().Tracer("noop"),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.platform == nil {
		o.platform = backend.Process()
	}

	_, span := o.tracer.Start(context.Background(), tracing.SpanHubInit)
	defer span.End()

	fl := flags.New(cfg.Flags)
	if !o.detectorsSet {
		o.detectors = detect.Builtins(fl, detect.OSProbe())
	}
	if fl.Enabled(flags.FlagRuntimeInfo) {
		if err := runtimeinfo.Install(o.platform.Default()); err != nil {
			log.ErrorErr(log.CatBackend, "installing runtime resources failed", err)
		}
	}

	chain := detect.NewChain(o.logger, o.detectors...)
	builder := chain.Assemble(o.platform)
	handle := chain.Detect(builder)
	handle.PostDetect(builder, maps.Clone(cfg.Environment), o.logger)
	backends := builder.Freeze()

	environment := handle.Environment()
	span.AddEvent(tracing.EventDetected)
	span.SetAttributes(
		attribute.String(tracing.AttrEnvVendor, environment.Vendor),
		attribute.String(tracing.AttrEnvProduct, environment.Product),
		attribute.Int(tracing.AttrDispatchBackends, backends.Len()),
	)

	h := &Hub{
		qualifier:  cfg.Qualifier,
		platform:   o.platform,
		backends:   backends,
		handle:     handle,
		dispatcher: dispatch.New(backends, handle, dispatch.WithTracer(o.tracer)),
		ledger:     ledger.New(),
		reporter:   report.New(backends, o.platform.Default(), report.WithCacheTTL(cfg.Report.CacheTTL)),
	}

	ctx, cancel := context.WithCancel(context.Background())
	h.stop = cancel
	go h.invalidateOnChange(ctx, h.ledger.Broker().Subscribe(ctx))

	if err := h.registerSelf(); err != nil {
		cancel()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.AddEvent(tracing.EventSelfRegistered)

	log.Info(log.CatDetect, "hub ready", "backends", backends.Len(), "environment", environment, "name", h.ObjectName())
	return h, nil
}

// invalidateOnChange drops the cached report whenever the ledger records or
// releases a registration.
func (h *Hub) invalidateOnChange(ctx context.Context, events <-chan pubsub.Event[ledger.Entry]) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			switch ev.Type {
			case pubsub.RegisteredEvent, pubsub.UnregisteredEvent:
				h.reporter.Invalidate(ctx)
				log.Debug(log.CatReport, "report cache invalidated", "event", ev.Type, "name", ev.Payload.Name)
			}
		}
	}
}

// Close stops report invalidation. It does not unregister anything; call
// UnregisterAll first.
func (h *Hub) Close() {
	h.stop()
}

// registerSelf hosts the hub under ObjectName. Another hub already hosted
// under the same name is fine: hubs carry no per-instance state worth
// exposing twice.
func (h *Hub) registerSelf() error {
	_, err := h.RegisterResource(h, h.ObjectName())
	switch {
	case err == nil:
		return nil
	case errors.Is(err, backend.ErrResourceExists):
		log.Debug(log.CatLedger, "hub resource already registered", "name", h.ObjectName())
		return nil
	case errors.Is(err, resource.ErrMalformedName):
		return fmt.Errorf("%w: %s: %w", ErrOwnName, h.ObjectName(), err)
	default:
		return fmt.Errorf("registering hub resource: %w", err)
	}
}

// ObjectName returns BaseName with the qualifier appended.
func (h *Hub) ObjectName() string {
	if h.qualifier == "" {
		return BaseName
	}
	return BaseName + "," + h.qualifier
}

// Dispatch serves req through the frozen backend set.
func (h *Hub) Dispatch(ctx context.Context, rh dispatch.Handler, req dispatch.Request) (any, error) {
	return h.dispatcher.Dispatch(ctx, rh, req)
}

// RegisterResource registers obj on the hosted backend and records it for
// UnregisterAll. Without a name the environment's registration strategy
// decides.
//
// Registrations are serialized and obj's Lifecycle hooks run while the lock
// is held, so a hook must not call RegisterResource, UnregisterAll or
// Registrations on the same hub; doing so deadlocks.
func (h *Hub) RegisterResource(obj any, name ...string) (resource.Name, error) {
	n := ""
	if len(name) > 0 {
		n = name[0]
	}
	return h.ledger.Register(h.platform.Hosted(), obj, n, h.handle)
}

// UnregisterAll removes every resource registered through RegisterResource.
func (h *Hub) UnregisterAll() error {
	return h.ledger.UnregisterAll()
}

// Registrations returns the resources registered through RegisterResource.
func (h *Hub) Registrations() []ledger.Entry {
	return h.ledger.Entries()
}

// Backends returns the backends in dispatch order.
func (h *Hub) Backends() []backend.Backend {
	return h.backends.Backends()
}

// BackendSet returns the frozen backend set.
func (h *Hub) BackendSet() *backend.Set {
	return h.backends
}

// Environment describes the detected environment.
func (h *Hub) Environment() env.Environment {
	return h.handle.Environment()
}

// Handle returns the detected environment handle.
func (h *Hub) Handle() env.Handle {
	return h.handle
}

// Report returns the backend inventory text.
func (h *Hub) Report(ctx context.Context) string {
	return h.reporter.Report(ctx)
}

// === Hosted resource ===

// PreRegister names the hub's resource.
func (h *Hub) PreRegister(_ backend.Backend, _ resource.Name) (resource.Name, error) {
	return resource.Parse(h.ObjectName())
}

func (h *Hub) PostRegister(done bool) {
	log.Debug(log.CatLedger, "hub resource registration finished", "name", h.ObjectName(), "done", done)
}

func (h *Hub) PreDeregister() error { return nil }

func (h *Hub) PostDeregister() {
	log.Debug(log.CatLedger, "hub resource unregistered", "name", h.ObjectName())
}

// AttributeNames lists the readable attributes of the hub resource.
func (h *Hub) AttributeNames() []string {
	return []string{"Backends", "Environment", "ObjectName"}
}

// Attribute reads one hub attribute.
func (h *Hub) Attribute(name string) (any, error) {
	switch name {
	case "Backends":
		ids := make([]string, 0, h.backends.Len())
		for _, b := range h.backends.Backends() {
			ids = append(ids, b.ID())
		}
		return ids, nil
	case "Environment":
		return h.Environment().String(), nil
	case "ObjectName":
		return h.ObjectName(), nil
	}
	return nil, fmt.Errorf("%w: no attribute %q on %s", backend.ErrMemberNotFound, name, h.ObjectName())
}

// Invoke supports the "report" operation.
func (h *Hub) Invoke(ctx context.Context, op string) (any, error) {
	if op == "report" {
		return h.Report(ctx), nil
	}
	return nil, fmt.Errorf("%w: no operation %q on %s", backend.ErrMemberNotFound, op, h.ObjectName())
}

var (
	_ backend.Lifecycle       = (*Hub)(nil)
	_ handler.AttributeSource = (*Hub)(nil)
	_ handler.Invoker         = (*Hub)(nil)
	_ dispatch.Preparer       = env.Handle(nil)
)
