package dispatch

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/zjrosen/backendhub/internal/backend"
	"github.com/zjrosen/backendhub/internal/log"
	"github.com/zjrosen/backendhub/internal/tracing"
)

// Dispatch errors
var (
	// ErrInternal marks failures that cannot happen with in-process backends,
	// such as a transport fault. The cause stays reachable through errors.Is.
	ErrInternal = errors.New("internal dispatch failure")
	// ErrNoBackends is returned when a Target has no backends to try.
	ErrNoBackends = errors.New("no backends to dispatch to")
)

// Dispatcher routes requests over a frozen backend Set. It is safe for
// concurrent use.
type Dispatcher struct {
	backends *backend.Set
	preparer Preparer
	tracer   trace.Tracer
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithTracer records a span per dispatch.
func WithTracer(t trace.Tracer) Option {
	return func(d *Dispatcher) {
		if t != nil {
			d.tracer = t
		}
	}
}

// New creates a Dispatcher. A nil preparer leaves targets unchanged.
func New(backends *backend.Set, preparer Preparer, opts ...Option) *Dispatcher {
	if preparer == nil {
		preparer = PreparerFunc(func(t Target) (Target, error) { return t, nil })
	}
	d := &Dispatcher{
		backends: backends,
		preparer: preparer,
		tracer:   noop.NewTracerProvider().Tracer("noop"),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Backends returns the Set this dispatcher routes over.
func (d *Dispatcher) Backends() *backend.Set {
	return d.backends
}

// Dispatch serves req with h and returns the first successful result.
func (d *Dispatcher) Dispatch(ctx context.Context, h Handler, req Request) (any, error) {
	ctx, span := d.tracer.Start(ctx, tracing.SpanPrefixDispatch+string(req.Type()),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
	defer span.End()

	span.SetAttributes(
		attribute.String(tracing.AttrRequestType, string(req.Type())),
		attribute.String(tracing.AttrRequestName, req.Name().String()),
	)

	result, err := d.dispatch(ctx, span, h, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(
			attribute.String(tracing.AttrErrorKind, errorKind(err)),
			attribute.String(tracing.AttrErrorMessage, err.Error()),
		)
		return nil, err
	}
	span.SetStatus(codes.Ok, "")
	return result, nil
}

func (d *Dispatcher) dispatch(ctx context.Context, span trace.Span, h Handler, req Request) (any, error) {
	target, err := d.preparer.PreDispatch(Target{Backends: d.backends, Request: req})
	if err != nil {
		return nil, err
	}
	span.AddEvent(tracing.EventPreDispatchDone)
	if target.Backends == nil || target.Backends.Len() == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoBackends, target.Request.Type())
	}
	span.SetAttributes(attribute.Int(tracing.AttrDispatchBackends, target.Backends.Len()))

	if h.HandleAllAtOnce(target.Request) {
		span.SetAttributes(attribute.String(tracing.AttrDispatchMode, tracing.ModeBatch))
		result, err := h.HandleConnections(ctx, target.Backends.Connections(), target.Request)
		if err != nil {
			if errors.Is(err, backend.ErrTransport) {
				log.ErrorErr(log.CatDispatch, "transport fault during batch dispatch", err, "type", target.Request.Type())
				return nil, fmt.Errorf("%w: transport fault during batch dispatch: %w", ErrInternal, err)
			}
			return nil, err
		}
		return result, nil
	}

	span.SetAttributes(attribute.String(tracing.AttrDispatchMode, tracing.ModeSequential))
	return d.sequential(ctx, span, h, target)
}

// sequential tries each backend in order. See the package documentation for
// how misses are ranked.
func (d *Dispatcher) sequential(ctx context.Context, span trace.Span, h Handler, target Target) (any, error) {
	var (
		resourceErr error
		memberErr   error
		attempts    int
	)
	defer func() {
		span.SetAttributes(attribute.Int(tracing.AttrDispatchAttempts, attempts))
	}()

	for _, b := range target.Backends.Backends() {
		attempts++
		span.AddEvent(tracing.EventBackendAttempt, trace.WithAttributes(attribute.String(tracing.AttrBackendID, b.ID())))

		result, err := h.HandleBackend(ctx, b, target.Request)
		switch {
		case err == nil:
			return result, nil
		case errors.Is(err, backend.ErrTransport):
			log.ErrorErr(log.CatDispatch, "transport fault, aborting dispatch", err, "backend", b.ID())
			return nil, fmt.Errorf("%w: i/o error while dispatching to %s: %w", ErrInternal, b.ID(), err)
		case errors.Is(err, backend.ErrMemberNotFound):
			memberErr = err
		case errors.Is(err, backend.ErrResourceNotFound):
			if resourceErr == nil {
				resourceErr = err
			}
		default:
			return nil, err
		}
		span.AddEvent(tracing.EventBackendMiss, trace.WithAttributes(attribute.String(tracing.AttrBackendID, b.ID())))
	}

	log.Debug(log.CatDispatch, "no backend served request",
		"type", target.Request.Type(), "name", target.Request.Name(), "attempts", attempts)
	if memberErr != nil {
		return nil, memberErr
	}
	return nil, resourceErr
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, ErrInternal):
		return "internal"
	case errors.Is(err, backend.ErrMemberNotFound):
		return "member_not_found"
	case errors.Is(err, backend.ErrResourceNotFound):
		return "resource_not_found"
	default:
		return "other"
	}
}
