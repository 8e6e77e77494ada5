package log

// Handler is the narrow logging collaborator handed to detectors and
// environment handles. It only reports non-fatal faults.
type Handler interface {
	Error(msg string, cause error)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(msg string, cause error)

// Error calls f(msg, cause).
func (f HandlerFunc) Error(msg string, cause error) { f(msg, cause) }

type categoryHandler struct {
	cat Category
}

// NewHandler returns a Handler that writes to the package logger under cat.
func NewHandler(cat Category) Handler {
	return categoryHandler{cat: cat}
}

func (h categoryHandler) Error(msg string, cause error) {
	if cause == nil {
		Error(h.cat, msg)
		return
	}
	ErrorErr(h.cat, msg, cause)
}

// Discard is a Handler that drops everything.
var Discard Handler = HandlerFunc(func(string, error) {})
