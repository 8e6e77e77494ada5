package backend

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func newBackends(n int) []Backend {
	out := make([]Backend, n)
	for i := range out {
		out[i] = NewMemoryBackend("b", "app")
	}
	return out
}

func TestSetBuilder_PinsFirstAndLast(t *testing.T) {
	bs := newBackends(4)
	builder := NewSetBuilder(bs[0], bs[3])

	require.True(t, builder.Add(bs[1]))
	require.True(t, builder.Add(bs[2]))

	require.Equal(t, []Backend{bs[0], bs[1], bs[2], bs[3]}, builder.Backends())
	require.Equal(t, 4, builder.Len())
}

func TestSetBuilder_SuppressesDuplicates(t *testing.T) {
	bs := newBackends(3)
	builder := NewSetBuilder(bs[0], bs[2])

	require.True(t, builder.Add(bs[1]))
	require.False(t, builder.Add(bs[1]))
	require.False(t, builder.Add(bs[0]))
	require.False(t, builder.Add(bs[2]))
	require.False(t, builder.Add(nil))

	require.Equal(t, 3, builder.Len())
}

func TestSetBuilder_RemoveKeepsPinned(t *testing.T) {
	bs := newBackends(3)
	builder := NewSetBuilder(bs[0], bs[2])
	builder.Add(bs[1])

	require.False(t, builder.Remove(bs[0]))
	require.False(t, builder.Remove(bs[2]))
	require.True(t, builder.Remove(bs[1]))
	require.False(t, builder.Remove(bs[1]))

	require.Equal(t, []Backend{bs[0], bs[2]}, builder.Backends())
}

func TestSetBuilder_SameFirstAndLast(t *testing.T) {
	b := NewMemoryBackend("only", "app")
	builder := NewSetBuilder(b, b)
	require.Equal(t, 1, builder.Len())
}

func TestSetBuilder_FreezeTransfersOwnership(t *testing.T) {
	bs := newBackends(3)
	builder := NewSetBuilder(bs[0], bs[2])
	builder.Add(bs[1])

	set := builder.Freeze()
	require.Equal(t, 3, set.Len())
	require.Equal(t, 0, builder.Len())

	// Later builder use cannot reach the frozen set.
	builder.Add(NewMemoryBackend("late", "app"))
	require.Equal(t, 3, set.Len())
}

func TestSet_AccessorsReturnCopies(t *testing.T) {
	bs := newBackends(2)
	set := NewSet(bs...)

	got := set.Backends()
	got[0] = nil
	require.Equal(t, bs[0], set.First())

	conns := set.Connections()
	require.Len(t, conns, 2)
	require.Equal(t, bs[0].ID(), conns[0].ID())
	require.Equal(t, bs[1].ID(), conns[1].ID())
	require.Equal(t, bs[1], set.Last())
}

func TestSet_Filter(t *testing.T) {
	bs := newBackends(4)
	set := NewSet(bs...)

	odd := set.Filter(func(b Backend) bool {
		return b == bs[1] || b == bs[3]
	})
	require.Equal(t, []Backend{bs[1], bs[3]}, odd.Backends())
	require.True(t, odd.Contains(bs[3]))
	require.False(t, odd.Contains(bs[0]))
}

func TestSet_Empty(t *testing.T) {
	set := NewSet()
	require.Nil(t, set.First())
	require.Nil(t, set.Last())
	require.Empty(t, set.Connections())
}

// TestSetBuilder_Invariants checks that for any sequence of adds and removes
// the pinned backends stay at the ends and no backend appears twice.
func TestSetBuilder_Invariants(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		first := NewMemoryBackend("first", "app")
		last := NewMemoryBackend("last", "app")
		pool := append(newBackends(rapid.IntRange(0, 8).Draw(t, "poolSize")), first, last)

		builder := NewSetBuilder(first, last)
		ops := rapid.IntRange(0, 40).Draw(t, "ops")
		for i := 0; i < ops; i++ {
			b := pool[rapid.IntRange(0, len(pool)-1).Draw(t, "idx")]
			if rapid.Bool().Draw(t, "add") {
				builder.Add(b)
			} else {
				builder.Remove(b)
			}
		}

		set := builder.Freeze()
		got := set.Backends()
		if got[0] != first {
			t.Fatalf("first backend displaced: %v", got[0])
		}
		if got[len(got)-1] != last {
			t.Fatalf("last backend displaced: %v", got[len(got)-1])
		}
		seen := make(map[Backend]bool)
		for _, b := range got {
			if seen[b] {
				t.Fatalf("duplicate backend %v", b)
			}
			seen[b] = true
		}
	})
}
