package detect

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/zjrosen/backendhub/internal/backend"
	"github.com/zjrosen/backendhub/internal/env"
	"github.com/zjrosen/backendhub/internal/log"
)

// === Mock Detector ===

type mockDetector struct {
	mock.Mock
	name string
}

func newMockDetector(name string) *mockDetector {
	return &mockDetector{name: name}
}

func (m *mockDetector) Name() string { return m.name }

func (m *mockDetector) ContributeBackends(b *backend.SetBuilder) {
	m.Called(b)
}

func (m *mockDetector) Detect(view backend.View) (env.Handle, error) {
	args := m.Called(view)
	h, _ := args.Get(0).(env.Handle)
	return h, args.Error(1)
}

// panicDetector panics from both hooks.
type panicDetector struct{}

func (panicDetector) Name() string                           { return "panicky" }
func (panicDetector) ContributeBackends(*backend.SetBuilder) { panic("contribution exploded") }
func (panicDetector) Detect(backend.View) (env.Handle, error) {
	panic("detection exploded")
}

// addDetector contributes fixed backends.
type addDetector struct {
	adds []backend.Backend
}

func (d addDetector) Name() string { return "adder" }
func (d addDetector) ContributeBackends(b *backend.SetBuilder) {
	for _, be := range d.adds {
		b.Add(be)
	}
}
func (d addDetector) Detect(backend.View) (env.Handle, error) { return nil, nil }

type recordedError struct {
	msg   string
	cause error
}

func recordingLogger() (log.Handler, *[]recordedError) {
	var got []recordedError
	return log.HandlerFunc(func(msg string, cause error) {
		got = append(got, recordedError{msg: msg, cause: cause})
	}), &got
}

func testPlatform() *backend.Registry {
	return backend.NewPlatform(
		backend.NewMemoryBackend("hosted", backend.HostedDomain),
		backend.NewMemoryBackend("platform", backend.PlatformDomain),
	)
}

// === Detect ===

func TestChain_FirstMatchWins(t *testing.T) {
	view := backend.NewSet()
	want := env.NewBase(env.Environment{Product: "second"})

	d1 := newMockDetector("one")
	d1.On("Detect", view).Return(nil, nil).Once()
	d2 := newMockDetector("two")
	d2.On("Detect", view).Return(want, nil).Once()
	d3 := newMockDetector("three")

	got := NewChain(log.Discard, d1, d2, d3).Detect(view)

	require.Same(t, want, got)
	d1.AssertExpectations(t)
	d2.AssertExpectations(t)
	d3.AssertNotCalled(t, "Detect", mock.Anything)
}

func TestChain_FaultingDetectorsAreSkipped(t *testing.T) {
	view := backend.NewSet()
	want := env.NewBase(env.Environment{Product: "survivor"})
	boom := errors.New("lookup failed")

	failing := newMockDetector("failing")
	failing.On("Detect", view).Return(env.NewBase(env.Environment{Product: "ignored"}), boom)
	matching := newMockDetector("matching")
	matching.On("Detect", view).Return(want, nil)

	logger, logged := recordingLogger()
	got := NewChain(logger, failing, panicDetector{}, matching).Detect(view)

	require.Same(t, want, got)
	require.Len(t, *logged, 2)
	require.Equal(t, "Error while using detector failing", (*logged)[0].msg)
	require.Same(t, boom, (*logged)[0].cause)
	require.Equal(t, "Error while using detector panicky", (*logged)[1].msg)
	require.ErrorIs(t, (*logged)[1].cause, ErrDetectorPanic)
	require.Contains(t, (*logged)[1].cause.Error(), "detection exploded")
}

func TestChain_TypedNilHandleIsNoMatch(t *testing.T) {
	view := backend.NewSet()
	want := env.NewBase(env.Environment{Product: "after"})

	typedNil := funcDetector(func() (env.Handle, error) { return (*env.Base)(nil), nil })
	matching := newMockDetector("matching")
	matching.On("Detect", view).Return(want, nil).Once()

	logger, logged := recordingLogger()
	var got env.Handle
	require.NotPanics(t, func() {
		got = NewChain(logger, typedNil, matching).Detect(view)
	})

	require.Same(t, want, got)
	require.Empty(t, *logged)
	matching.AssertExpectations(t)

	require.NotPanics(t, func() {
		got = NewChain(log.Discard, typedNil).Detect(view)
	})
	require.True(t, env.IsNull(got))
}

func TestChain_FallbackWhenNothingMatches(t *testing.T) {
	view := backend.NewSet()
	none := newMockDetector("none")
	none.On("Detect", view).Return(nil, nil)
	failing := newMockDetector("failing")
	failing.On("Detect", view).Return(nil, errors.New("nope"))

	got := NewChain(log.Discard, none, failing, panicDetector{}).Detect(view)

	require.NotNil(t, got)
	require.True(t, env.IsNull(got))
}

func TestChain_EmptyChainReturnsNull(t *testing.T) {
	require.True(t, env.IsNull(NewChain(nil).Detect(backend.NewSet())))
}

func TestChain_FallbackIsLast(t *testing.T) {
	c := NewChain(log.Discard, newMockDetector("a"), nil, newMockDetector("b"))

	ds := c.Detectors()
	require.Len(t, ds, 3)
	require.IsType(t, Fallback{}, ds[2])
}

// TestChain_ShortCircuit checks that for any chain the handle of the first
// matching detector is returned and nothing after it is consulted.
func TestChain_ShortCircuit(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(0, 8).Draw(t, "detectors")
		outcomes := make([]int, n)
		calls := make([]int, n)
		handles := make([]env.Handle, n)
		detectors := make([]Detector, n)
		for i := range detectors {
			outcomes[i] = rapid.IntRange(0, 3).Draw(t, "outcome")
			handles[i] = env.NewBase(env.Environment{Product: fmt.Sprintf("d%d", i)})
			idx := i
			detectors[i] = funcDetector(func() (env.Handle, error) {
				calls[idx]++
				switch outcomes[idx] {
				case 0:
					return nil, nil
				case 1:
					return nil, errors.New("fault")
				case 2:
					panic("fault")
				default:
					return handles[idx], nil
				}
			})
		}

		got := NewChain(log.Discard, detectors...).Detect(backend.NewSet())

		match := -1
		for i, o := range outcomes {
			if o == 3 {
				match = i
				break
			}
		}
		if match < 0 {
			if !env.IsNull(got) {
				t.Fatalf("expected null handle, got %v", got)
			}
		} else if got != handles[match] {
			t.Fatalf("expected handle of detector %d", match)
		}
		for i, c := range calls {
			want := 1
			if match >= 0 && i > match {
				want = 0
			}
			if c != want {
				t.Fatalf("detector %d called %d times, want %d", i, c, want)
			}
		}
	})
}

type funcDetector func() (env.Handle, error)

func (f funcDetector) Name() string                             { return "func" }
func (f funcDetector) ContributeBackends(*backend.SetBuilder)   {}
func (f funcDetector) Detect(backend.View) (env.Handle, error) { return f() }

// === Assemble ===

func TestChain_AssembleOrder(t *testing.T) {
	p := testPlatform()
	external := backend.NewMemoryBackend("external", "app")
	p.Register(external)

	contributed := backend.NewMemoryBackend("contributed", "app")
	d := newMockDetector("contrib")
	d.On("ContributeBackends", mock.Anything).Run(func(args mock.Arguments) {
		b := args.Get(0).(*backend.SetBuilder)
		b.Add(contributed)
		b.Add(p.Default())
		b.Add(p.Hosted())
	}).Once()

	builder := NewChain(log.Discard, d).Assemble(p)

	require.Equal(t, []backend.Backend{p.Hosted(), contributed, external, p.Default()}, builder.Backends())
	d.AssertExpectations(t)
}

func TestChain_AssembleSurvivesPanickingContributor(t *testing.T) {
	p := testPlatform()
	added := backend.NewMemoryBackend("added", "app")

	logger, logged := recordingLogger()
	builder := NewChain(logger, panicDetector{}, addDetector{adds: []backend.Backend{added}}).Assemble(p)

	require.Equal(t, []backend.Backend{p.Hosted(), added, p.Default()}, builder.Backends())
	require.Len(t, *logged, 1)
	require.ErrorIs(t, (*logged)[0].cause, ErrDetectorPanic)
}

func TestChain_AssembleDuplicateExternal(t *testing.T) {
	p := testPlatform()
	shared := backend.NewMemoryBackend("shared", "app")
	p.Register(shared)

	builder := NewChain(log.Discard, addDetector{adds: []backend.Backend{shared, shared}}).Assemble(p)
	require.Equal(t, []backend.Backend{p.Hosted(), shared, p.Default()}, builder.Backends())
}

// TestChain_AssembleInvariants checks that assembly never duplicates a
// backend and keeps the hosted and default backends at the ends for any
// contribution pattern.
func TestChain_AssembleInvariants(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		p := testPlatform()
		pool := []backend.Backend{p.Hosted(), p.Default()}
		for i := 0; i < 5; i++ {
			pool = append(pool, backend.NewMemoryBackend(fmt.Sprintf("b%d", i), "app"))
		}
		pick := func(label string) []backend.Backend {
			n := rapid.IntRange(0, 6).Draw(t, label)
			out := make([]backend.Backend, n)
			for i := range out {
				out[i] = pool[rapid.IntRange(0, len(pool)-1).Draw(t, label+"-idx")]
			}
			return out
		}

		detectors := make([]Detector, rapid.IntRange(0, 4).Draw(t, "detectors"))
		for i := range detectors {
			detectors[i] = addDetector{adds: pick("adds")}
		}
		for _, be := range pick("external") {
			p.Register(be)
		}

		got := NewChain(log.Discard, detectors...).Assemble(p).Backends()
		if got[0] != p.Hosted() || got[len(got)-1] != p.Default() {
			t.Fatalf("pinned backends displaced: %v", got)
		}
		seen := make(map[backend.Backend]bool)
		for _, be := range got {
			if seen[be] {
				t.Fatalf("duplicate backend %s", be.ID())
			}
			seen[be] = true
		}
	})
}
