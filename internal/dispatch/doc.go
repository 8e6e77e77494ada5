// Package dispatch routes management requests to backends.
//
// A Dispatcher holds the frozen backend Set and the Preparer (the detected
// environment handle). Each Dispatch call first lets the Preparer adjust the
// Target, then either hands the whole connection view to the Handler in one
// call, or walks the backends in order until one succeeds.
//
// # Failure precedence
//
// During sequential dispatch a backend may report:
//   - backend.ErrResourceNotFound: the first such error is kept, later ones
//     are ignored, and dispatch continues;
//   - backend.ErrMemberNotFound: the latest such error replaces any earlier
//     one, and dispatch continues;
//   - backend.ErrTransport: dispatch stops at once with ErrInternal.
//
// When no backend succeeds, the kept member error is returned if there is
// one, otherwise the kept resource error. Both are returned exactly as the
// backend produced them.
package dispatch
