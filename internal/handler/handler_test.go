package handler

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/backendhub/internal/backend"
	"github.com/zjrosen/backendhub/internal/dispatch"
	"github.com/zjrosen/backendhub/internal/resource"
)

// gauge is a resource with fixed attributes and one operation.
type gauge map[string]any

func (g gauge) AttributeNames() []string {
	names := make([]string, 0, len(g))
	for k := range g {
		names = append(names, k)
	}
	return names
}

func (g gauge) Attribute(name string) (any, error) {
	v, ok := g[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", backend.ErrMemberNotFound, name)
	}
	return v, nil
}

func (g gauge) Invoke(_ context.Context, op string) (any, error) {
	if op == "reset" {
		return "reset done", nil
	}
	return nil, fmt.Errorf("%w: operation %s", backend.ErrMemberNotFound, op)
}

// brokenConn fails every query with a transport fault.
type brokenConn struct{}

func (brokenConn) ID() string { return "broken" }
func (brokenConn) Query(resource.Name) ([]resource.Name, error) {
	return nil, fmt.Errorf("%w: connection reset", backend.ErrTransport)
}
func (brokenConn) Lookup(resource.Name) (any, error) { return nil, errors.New("unused") }

func setup(t *testing.T) (*dispatch.Dispatcher, backend.Backend, backend.Backend) {
	t.Helper()
	a := backend.NewMemoryBackend("a", "app")
	b := backend.NewMemoryBackend("b", "app")
	_, err := a.Register(gauge{"Size": 10}, resource.MustParse("app:type=Cache,name=one"))
	require.NoError(t, err)
	_, err = b.Register(gauge{"Size": 20, "Hits": 5}, resource.MustParse("app:type=Cache,name=two"))
	require.NoError(t, err)
	_, err = b.Register("plain", resource.MustParse("app:type=Plain"))
	require.NoError(t, err)
	return dispatch.New(backend.NewSet(a, b), nil), a, b
}

// === Read ===

func TestRead_SingleResource(t *testing.T) {
	d, _, _ := setup(t)

	got, err := d.Dispatch(context.Background(), Read{}, ReadRequest{
		Target:    resource.MustParse("app:type=Cache,name=two"),
		Attribute: "Hits",
	})
	require.NoError(t, err)
	require.Equal(t, 5, got)
}

func TestRead_AllAttributes(t *testing.T) {
	d, _, _ := setup(t)

	got, err := d.Dispatch(context.Background(), Read{}, ReadRequest{Target: resource.MustParse("app:name=two,type=Cache")})
	require.NoError(t, err)
	require.Equal(t, map[string]any{"Size": 20, "Hits": 5}, got)
}

func TestRead_UnknownAttribute(t *testing.T) {
	d, _, _ := setup(t)

	_, err := d.Dispatch(context.Background(), Read{}, ReadRequest{
		Target:    resource.MustParse("app:type=Cache,name=one"),
		Attribute: "Misses",
	})
	require.ErrorIs(t, err, backend.ErrMemberNotFound)
}

func TestRead_UnknownResource(t *testing.T) {
	d, _, _ := setup(t)

	_, err := d.Dispatch(context.Background(), Read{}, ReadRequest{
		Target:    resource.MustParse("app:type=Missing"),
		Attribute: "Size",
	})
	require.ErrorIs(t, err, backend.ErrResourceNotFound)
	require.NotErrorIs(t, err, backend.ErrMemberNotFound)
}

func TestRead_NoAttributes(t *testing.T) {
	d, _, _ := setup(t)

	_, err := d.Dispatch(context.Background(), Read{}, ReadRequest{
		Target:    resource.MustParse("app:type=Plain"),
		Attribute: "Size",
	})
	require.ErrorIs(t, err, backend.ErrMemberNotFound)
}

func TestRead_Pattern(t *testing.T) {
	d, _, _ := setup(t)

	got, err := d.Dispatch(context.Background(), Read{}, ReadRequest{
		Target:    resource.MustParse("app:type=Cache,*"),
		Attribute: "Size",
	})
	require.NoError(t, err)
	require.Equal(t, map[string]any{
		"app:name=one,type=Cache": 10,
		"app:name=two,type=Cache": 20,
	}, got)
}

func TestRead_PatternSkipsMissingAttribute(t *testing.T) {
	d, _, _ := setup(t)

	got, err := d.Dispatch(context.Background(), Read{}, ReadRequest{
		Target:    resource.MustParse("app:*"),
		Attribute: "Hits",
	})
	require.NoError(t, err)
	require.Equal(t, map[string]any{"app:name=two,type=Cache": 5}, got)
}

func TestRead_PatternNoMatch(t *testing.T) {
	d, _, _ := setup(t)

	_, err := d.Dispatch(context.Background(), Read{}, ReadRequest{
		Target:    resource.MustParse("other:*"),
		Attribute: "Size",
	})
	require.ErrorIs(t, err, backend.ErrResourceNotFound)
}

func TestRead_PatternNoAttributeAnywhere(t *testing.T) {
	d, _, _ := setup(t)

	_, err := d.Dispatch(context.Background(), Read{}, ReadRequest{
		Target:    resource.MustParse("app:type=Cache,*"),
		Attribute: "Latency",
	})
	require.ErrorIs(t, err, backend.ErrMemberNotFound)
}

func TestRead_PatternTransportFault(t *testing.T) {
	_, err := Read{}.HandleConnections(context.Background(), []backend.Connection{brokenConn{}}, ReadRequest{
		Target: resource.MustParse("app:*"),
	})
	require.ErrorIs(t, err, backend.ErrTransport)
}

func TestRead_WrongRequest(t *testing.T) {
	_, err := Read{}.HandleBackend(context.Background(), backend.NewMemoryBackend("x", "app"), ListRequest{})
	require.ErrorIs(t, err, ErrWrongRequest)
}

// === List ===

func TestList_AllConnections(t *testing.T) {
	d, a, b := setup(t)

	got, err := d.Dispatch(context.Background(), List{}, ListRequest{})
	require.NoError(t, err)

	listings := got.([]Listing)
	require.Len(t, listings, 3)
	require.Equal(t, a.ID(), listings[0].Backend)
	require.Equal(t, "app:name=one,type=Cache", listings[0].Name.String())
	require.Equal(t, b.ID(), listings[1].Backend)
	require.Equal(t, "app:name=two,type=Cache", listings[1].Name.String())
	require.Equal(t, "app:type=Plain", listings[2].Name.String())
}

func TestList_Pattern(t *testing.T) {
	d, _, _ := setup(t)

	got, err := d.Dispatch(context.Background(), List{}, ListRequest{Pattern: resource.MustParse("app:type=Plain,*")})
	require.NoError(t, err)
	require.Len(t, got.([]Listing), 1)
}

func TestList_TransportFault(t *testing.T) {
	_, err := List{}.HandleConnections(context.Background(), []backend.Connection{brokenConn{}}, ListRequest{})
	require.ErrorIs(t, err, backend.ErrTransport)
}

func TestList_NotPerBackend(t *testing.T) {
	_, err := List{}.HandleBackend(context.Background(), nil, ListRequest{})
	require.ErrorIs(t, err, ErrWrongRequest)
}

// === Exec ===

func TestExec_Invoke(t *testing.T) {
	d, _, _ := setup(t)

	got, err := d.Dispatch(context.Background(), Exec{}, ExecRequest{
		Target:    resource.MustParse("app:type=Cache,name=one"),
		Operation: "reset",
	})
	require.NoError(t, err)
	require.Equal(t, "reset done", got)
}

func TestExec_UnknownOperation(t *testing.T) {
	d, _, _ := setup(t)

	_, err := d.Dispatch(context.Background(), Exec{}, ExecRequest{
		Target:    resource.MustParse("app:type=Plain"),
		Operation: "reset",
	})
	require.ErrorIs(t, err, backend.ErrMemberNotFound)
}
