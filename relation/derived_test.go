package relation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wbrown/relcore/value"
)

func TestDerivedIterEpochNilReadsFullStore(t *testing.T) {
	store := &fakeTempStore{id: 1}
	require.NoError(t, store.Put(value.Tuple{int64(1), "a"}, 0))
	require.NoError(t, store.Put(value.Tuple{int64(2), "b"}, 1))

	d := &Derived{Bindings: []value.Binding{"k", "v"}, Store: store}
	it := d.Iter(nil, nil, nil)
	tuples, err := collect(it)
	require.NoError(t, err)
	assert.Equal(t, []value.Tuple{{int64(1), "a"}}, tuples)
}

func TestDerivedIterEpochZeroIsEmpty(t *testing.T) {
	store := &fakeTempStore{id: 1}
	require.NoError(t, store.Put(value.Tuple{int64(1), "a"}, 0))

	d := &Derived{Bindings: []value.Binding{"k", "v"}, Store: store}
	zero := uint32(0)
	it := d.Iter(nil, &zero, nil)
	tuples, err := collect(it)
	require.NoError(t, err)
	assert.Empty(t, tuples)
}

func TestDerivedIterDeltaReadsPriorEpoch(t *testing.T) {
	store := &fakeTempStore{id: 7}
	require.NoError(t, store.Put(value.Tuple{int64(1)}, 2))
	require.NoError(t, store.Put(value.Tuple{int64(2)}, 3))

	d := &Derived{Bindings: []value.Binding{"k"}, Store: store}
	ep := uint32(3)
	useDelta := map[TempStoreID]struct{}{7: {}}
	it := d.Iter(nil, &ep, useDelta)
	tuples, err := collect(it)
	require.NoError(t, err)
	assert.Equal(t, []value.Tuple{{int64(1)}}, tuples)
}

func TestDerivedJoinIsPrefix(t *testing.T) {
	d := &Derived{}
	assert.True(t, d.joinIsPrefix([]int{0, 1}))
	assert.True(t, d.joinIsPrefix([]int{1, 0}))
	assert.False(t, d.joinIsPrefix([]int{1}))
	assert.False(t, d.joinIsPrefix([]int{0, 2}))
}

func TestDerivedPrefixJoin(t *testing.T) {
	store := &fakeTempStore{id: 1}
	require.NoError(t, store.Put(value.Tuple{int64(1), "x"}, 0))
	require.NoError(t, store.Put(value.Tuple{int64(2), "y"}, 0))

	d := &Derived{Bindings: []value.Binding{"k", "v"}, Store: store}
	probe := newSliceIterator([]value.Tuple{{"left", int64(1)}})
	// leftIdx[i] pairs with rightIdx[i]; rightIdx={0} means column 0 of store.
	out := d.prefixJoin(probe, []int{1}, []int{0}, nil, nil, nil)
	tuples, err := collect(out)
	require.NoError(t, err)
	assert.Equal(t, []value.Tuple{{"left", int64(1), int64(1), "x"}}, tuples)
}

func TestDerivedNegJoin(t *testing.T) {
	store := &fakeTempStore{id: 1}
	require.NoError(t, store.Put(value.Tuple{int64(1), "x"}, 0))

	d := &Derived{Bindings: []value.Binding{"k", "v"}, Store: store}
	probe := newSliceIterator([]value.Tuple{{int64(1)}, {int64(2)}})
	out := d.negJoin(probe, []int{0}, []int{0})
	tuples, err := collect(out)
	require.NoError(t, err)
	assert.Equal(t, []value.Tuple{{int64(2)}}, tuples)
}
