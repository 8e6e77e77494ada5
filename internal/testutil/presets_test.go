package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/backendhub/internal/resource"
)

func TestWithStandardBackends(t *testing.T) {
	f := NewBuilder(t).WithStandardBackends().Build()

	app := f.Backend(t, "app")
	replica := f.Backend(t, "replica")
	jobs := f.Backend(t, "jobs")

	require.Len(t, f.Platform.Registered(), 2)
	require.Len(t, f.Contributed(), 1)
	require.Same(t, jobs, f.Contributed()[0])

	require.Equal(t, 3, app.ResourceCount())
	require.Equal(t, 2, replica.ResourceCount())
	require.Equal(t, 1, jobs.ResourceCount())
	require.Equal(t, 1, f.Default.ResourceCount())

	users := resource.MustParse("app:type=Cache,name=users")
	for _, b := range []interface {
		Lookup(resource.Name) (any, error)
	}{app, replica} {
		_, err := b.Lookup(users)
		require.NoError(t, err, "both app backends host the users cache")
	}
}
