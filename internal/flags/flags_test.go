package flags

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistry_Enabled(t *testing.T) {
	tests := []struct {
		name     string
		registry *Registry
		flag     string
		expected bool
	}{
		{
			name:     "known flag set to true returns true",
			registry: New(map[string]bool{"feature-a": true}),
			flag:     "feature-a",
			expected: true,
		},
		{
			name:     "known flag set to false returns false",
			registry: New(map[string]bool{"feature-b": false}),
			flag:     "feature-b",
			expected: false,
		},
		{
			name:     "unknown flag returns false",
			registry: New(map[string]bool{"feature-a": true}),
			flag:     "unknown-flag",
			expected: false,
		},
		{
			name:     "nil registry returns false",
			registry: nil,
			flag:     "any-flag",
			expected: false,
		},
		{
			name:     "default flag is on without config",
			registry: New(nil),
			flag:     FlagDetectKubernetes,
			expected: true,
		},
		{
			name:     "config overrides default",
			registry: New(map[string]bool{FlagDetectSystemd: false}),
			flag:     FlagDetectSystemd,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.registry.Enabled(tt.flag)
			require.Equal(t, tt.expected, result)
		})
	}
}

func TestRegistry_AllReturnsCopy(t *testing.T) {
	r := New(map[string]bool{"feature-a": true})

	all := r.All()
	all["feature-a"] = false

	require.True(t, r.Enabled("feature-a"))
	require.Len(t, all, len(Defaults())+1)
}

func TestRegistry_NewDoesNotAliasInput(t *testing.T) {
	in := map[string]bool{FlagDetectContainer: false}
	r := New(in)
	in[FlagDetectContainer] = true

	require.False(t, r.Enabled(FlagDetectContainer))
}

func TestRegistry_NilAll(t *testing.T) {
	var r *Registry
	require.Empty(t, r.All())
}
