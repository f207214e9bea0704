package orderedmap_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/wpago/wpago/util/orderedmap"
)

func TestLoadStore(t *testing.T) {
	t.Parallel()

	pairs := [][2]int{{1, 2}, {2, 3}, {3, 4}}
	m := orderedmap.New[int, int]()
	for _, p := range pairs {
		k, v := p[0], p[1]
		m.Store(k, v)
		loadedV, ok := m.Load(k)
		require.True(t, ok)
		require.Equal(t, v, loadedV)
	}

	v, ok := m.Load(-1)
	require.False(t, ok)
	require.Zero(t, v)

	require.Equal(t, len(pairs), m.Len())
}

func TestRange(t *testing.T) {
	t.Parallel()

	pairs := make([][2]int, 0, 100)
	for i := 0; i < 100; i++ {
		pairs = append(pairs, [2]int{i, i + 1})
	}

	m := orderedmap.New[int, int]()
	for _, p := range pairs {
		m.Store(p[0], p[1])
	}

	expectedKeys := make([]int, 0, len(pairs))
	for _, p := range pairs {
		expectedKeys = append(expectedKeys, p[0])
	}

	for i := 0; i < 5; i++ {
		t.Run(fmt.Sprintf("Run%d", i), func(t *testing.T) {
			t.Parallel()
			require.Equal(t, expectedKeys, m.Keys())
		})
	}
}

func TestStore_Overwrite(t *testing.T) {
	t.Parallel()

	m := orderedmap.New[string, int]()
	m.Store("a", 1)
	m.Store("b", 2)
	m.Store("a", 3)

	require.Equal(t, 2, m.Len())
	require.Equal(t, []string{"a", "b"}, m.Keys())
	v, ok := m.Load("a")
	require.True(t, ok)
	require.Equal(t, 3, v)
}

func TestDelete(t *testing.T) {
	t.Parallel()

	m := orderedmap.New[string, int]()
	m.Store("a", 1)
	m.Store("b", 2)
	m.Store("c", 3)

	m.Delete("b")
	require.Equal(t, []string{"a", "c"}, m.Keys())
	_, ok := m.Load("b")
	require.False(t, ok)

	// Deleting an absent key is a no-op.
	m.Delete("b")
	require.Equal(t, 2, m.Len())

	// Re-inserting after deletion appends at the end, not the old slot.
	m.Store("b", 4)
	require.Equal(t, []string{"a", "c", "b"}, m.Keys())
}

func TestStoringPointers(t *testing.T) {
	t.Parallel()

	type I interface{ Foo() }
	type A struct{ Number int }

	m := orderedmap.New[int, *A]()
	m.Store(1, &A{Number: 1})

	v, ok := m.Load(1)
	require.True(t, ok)
	require.Equal(t, 1, v.Number)
}

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
