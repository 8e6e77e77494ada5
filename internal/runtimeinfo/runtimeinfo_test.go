package runtimeinfo

import (
	"context"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/backendhub/internal/backend"
	"github.com/zjrosen/backendhub/internal/resource"
)

func TestInstall_RegistersResources(t *testing.T) {
	b := backend.NewMemoryBackend("platform", backend.PlatformDomain)

	require.NoError(t, Install(b))
	require.Equal(t, 3, b.ResourceCount())
	require.Equal(t, []string{Domain}, b.Domains())

	for _, n := range []resource.Name{MemoryName, GoroutinesName, BuildName} {
		obj, err := b.Lookup(n)
		require.NoError(t, err, n.String())
		require.NotNil(t, obj)
	}
}

func TestInstall_Twice(t *testing.T) {
	b := backend.NewMemoryBackend("platform", backend.PlatformDomain)

	require.NoError(t, Install(b))
	require.NoError(t, Install(b))
	require.Equal(t, 3, b.ResourceCount())
}

func TestAttributes_AllNamesReadable(t *testing.T) {
	for _, src := range []interface {
		AttributeNames() []string
		Attribute(string) (any, error)
	}{Memory{}, Goroutines{}, Build{}} {
		for _, name := range src.AttributeNames() {
			_, err := src.Attribute(name)
			require.NoError(t, err, name)
		}
		_, err := src.Attribute("Bogus")
		require.ErrorIs(t, err, backend.ErrMemberNotFound)
	}
}

func TestBuild_Values(t *testing.T) {
	v, err := Build{}.Attribute("GOOS")
	require.NoError(t, err)
	require.Equal(t, runtime.GOOS, v)

	v, err = Build{}.Attribute("GoVersion")
	require.NoError(t, err)
	require.Equal(t, runtime.Version(), v)
}

func TestGoroutines_Count(t *testing.T) {
	v, err := Goroutines{}.Attribute("Count")
	require.NoError(t, err)
	require.Positive(t, v.(int))
}

func TestMemory_Invoke(t *testing.T) {
	before, err := Memory{}.Attribute("NumGC")
	require.NoError(t, err)

	_, err = Memory{}.Invoke(context.Background(), "gc")
	require.NoError(t, err)

	after, err := Memory{}.Attribute("NumGC")
	require.NoError(t, err)
	require.Greater(t, after.(uint32), before.(uint32))

	_, err = Memory{}.Invoke(context.Background(), "restart")
	require.ErrorIs(t, err, backend.ErrMemberNotFound)
}
