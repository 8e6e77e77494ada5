// Package detect discovers the hosting environment. Detectors run in a
// fixed order. The first match wins and a failing detector never stops the
// others.
package detect

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/zjrosen/backendhub/internal/backend"
	"github.com/zjrosen/backendhub/internal/env"
	"github.com/zjrosen/backendhub/internal/log"
)

// ErrDetectorPanic wraps a panic recovered from a detector hook.
var ErrDetectorPanic = errors.New("detector panicked")

// Detector recognizes one kind of hosting environment.
type Detector interface {
	// Name identifies the detector in logs.
	Name() string

	// ContributeBackends adds backends this detector knows about.
	// Duplicates are ignored by the builder.
	ContributeBackends(b *backend.SetBuilder)

	// Detect returns a handle when the environment is recognized, or nil.
	// A typed nil, such as (*env.Base)(nil), counts as no match.
	Detect(view backend.View) (env.Handle, error)
}

// Chain is an ordered detector list that always ends with Fallback.
type Chain struct {
	detectors []Detector
	logger    log.Handler
}

// NewChain creates a chain of the given detectors followed by Fallback.
// Nil detectors are skipped. A nil logger logs under the detect category.
func NewChain(logger log.Handler, detectors ...Detector) *Chain {
	if logger == nil {
		logger = log.NewHandler(log.CatDetect)
	}
	list := make([]Detector, 0, len(detectors)+1)
	for _, d := range detectors {
		if d != nil {
			list = append(list, d)
		}
	}
	list = append(list, Fallback{})
	return &Chain{detectors: list, logger: logger}
}

// Detectors returns the detectors in order, Fallback included.
func (c *Chain) Detectors() []Detector {
	return append([]Detector(nil), c.detectors...)
}

// Assemble builds the startup backend set: the platform's hosted backend
// first, then detector contributions, then externally registered backends,
// and the platform default last.
func (c *Chain) Assemble(p backend.Platform) *backend.SetBuilder {
	b := backend.NewSetBuilder(p.Hosted(), p.Default())
	for _, d := range c.detectors {
		if err := contribute(d, b); err != nil {
			c.logger.Error(fmt.Sprintf("Error while collecting backends from detector %s", d.Name()), err)
		}
	}
	for _, be := range p.Registered() {
		b.Add(be)
	}
	log.Debug(log.CatDetect, "assembled backends", "count", b.Len())
	return b
}

// Detect returns the handle of the first detector that recognizes the
// environment. Faulting detectors are logged and skipped. Never nil.
func (c *Chain) Detect(view backend.View) env.Handle {
	for _, d := range c.detectors {
		h, err := detect(d, view)
		if err != nil {
			c.logger.Error(fmt.Sprintf("Error while using detector %s", d.Name()), err)
			continue
		}
		if h != nil {
			log.Info(log.CatDetect, "environment detected", "detector", d.Name(), "environment", h.Environment())
			return h
		}
	}
	return env.Null
}

func contribute(d Detector, b *backend.SetBuilder) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrDetectorPanic, r)
		}
	}()
	d.ContributeBackends(b)
	return nil
}

func detect(d Detector, view backend.View) (h env.Handle, err error) {
	defer func() {
		if r := recover(); r != nil {
			h, err = nil, fmt.Errorf("%w: %v", ErrDetectorPanic, r)
		}
	}()
	h, err = d.Detect(view)
	if err != nil {
		return nil, err
	}
	if isNilHandle(h) {
		if h != nil {
			log.Warn(log.CatDetect, "detector returned a typed nil handle", "detector", d.Name(), "type", fmt.Sprintf("%T", h))
		}
		return nil, nil
	}
	return h, nil
}

// isNilHandle reports whether h is nil or an interface holding a nil
// pointer, map, slice, func or chan.
func isNilHandle(h env.Handle) bool {
	if h == nil {
		return true
	}
	v := reflect.ValueOf(h)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return v.IsNil()
	}
	return false
}

// Fallback matches every environment and returns env.Null.
type Fallback struct{}

func (Fallback) Name() string                         { return "fallback" }
func (Fallback) ContributeBackends(*backend.SetBuilder) {}

// Detect always returns env.Null.
func (Fallback) Detect(backend.View) (env.Handle, error) {
	return env.Null, nil
}

var _ Detector = Fallback{}
