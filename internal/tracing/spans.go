package tracing

// Span attribute keys for dispatch tracing.
const (
	// Request attributes
	AttrRequestType = "request.type"
	AttrRequestName = "request.name"

	// Dispatch attributes
	AttrDispatchMode     = "dispatch.mode"
	AttrDispatchBackends = "dispatch.backends"
	AttrDispatchAttempts = "dispatch.attempts"
	AttrBackendID        = "backend.id"

	// Environment attributes
	AttrEnvVendor  = "environment.vendor"
	AttrEnvProduct = "environment.product"

	// Error attributes
	AttrErrorMessage = "error.message"
	AttrErrorKind    = "error.kind"
)

// Dispatch modes recorded under AttrDispatchMode.
const (
	ModeBatch      = "batch"
	ModeSequential = "sequential"
)

// SpanPrefixDispatch prefixes dispatch span names: "dispatch.<request type>".
const SpanPrefixDispatch = "dispatch."

// SpanHubInit covers assembly, detection and self-registration.
const SpanHubInit = "hub.init"

// Event names for span events.
const (
	EventBackendAttempt  = "backend.attempt"
	EventBackendMiss     = "backend.miss"
	EventPreDispatchDone = "pre_dispatch.done"
	EventDetected        = "environment.detected"
	EventSelfRegistered  = "hub.self_registered"
)
