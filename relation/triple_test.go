package relation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wbrown/relcore/value"
)

func friendAttr() value.Attribute  { return value.Attribute{ID: "friend", IsRef: true} }
func nameAttr() value.Attribute    { return value.Attribute{ID: "name", IsIndex: true} }
func commentAttr() value.Attribute { return value.Attribute{ID: "comment"} }

func TestTripleCartesianJoin(t *testing.T) {
	tx := newFakeTx()
	tx.addTriple(1, "name", "alice")
	tx.addTriple(2, "name", "bob")

	tr := &Triple{Attr: nameAttr(), Bindings: [2]value.Binding{"e", "v"}}
	probe := newSliceIterator([]value.Tuple{{int64(99)}})
	out := tr.join(probe, nil, nil, tx, nil)
	tuples, err := collect(out)
	require.NoError(t, err)
	sortTuples(tuples)
	assert.Equal(t, []value.Tuple{
		{int64(99), value.EntityID(1), "alice"},
		{int64(99), value.EntityID(2), "bob"},
	}, tuples)
}

func TestTripleEVJoinExistence(t *testing.T) {
	tx := newFakeTx()
	tx.addTriple(1, "name", "alice")

	tr := &Triple{Attr: nameAttr(), Bindings: [2]value.Binding{"e", "v"}}
	probe := newSliceIterator([]value.Tuple{
		{value.EntityID(1), "alice"},
		{value.EntityID(1), "bob"},
	})
	out := tr.join(probe, []int{0, 1}, []int{0, 1}, tx, nil)
	tuples, err := collect(out)
	require.NoError(t, err)
	assert.Equal(t, []value.Tuple{{value.EntityID(1), "alice", value.EntityID(1), "alice"}}, tuples)
}

func TestTripleEJoinScansByEntity(t *testing.T) {
	tx := newFakeTx()
	tx.addTriple(1, "name", "alice")
	tx.addTriple(1, "name", "alicia")
	tx.addTriple(2, "name", "bob")

	tr := &Triple{Attr: nameAttr(), Bindings: [2]value.Binding{"e", "v"}}
	probe := newSliceIterator([]value.Tuple{{value.EntityID(1)}})
	out := tr.join(probe, []int{0}, []int{0}, tx, nil)
	tuples, err := collect(out)
	require.NoError(t, err)
	sortTuples(tuples)
	assert.Equal(t, []value.Tuple{
		{value.EntityID(1), value.EntityID(1), "alice"},
		{value.EntityID(1), value.EntityID(1), "alicia"},
	}, tuples)
}

func TestTripleVRefJoinReverseScan(t *testing.T) {
	tx := newFakeTx()
	tx.addTriple(1, "friend", value.EntityID(2))
	tx.addTriple(3, "friend", value.EntityID(2))

	tr := &Triple{Attr: friendAttr(), Bindings: [2]value.Binding{"e", "v"}}
	probe := newSliceIterator([]value.Tuple{{value.EntityID(2)}})
	out := tr.join(probe, []int{0}, []int{1}, tx, nil)
	tuples, err := collect(out)
	require.NoError(t, err)
	sortTuples(tuples)
	assert.Equal(t, []value.Tuple{
		{value.EntityID(2), value.EntityID(1), value.EntityID(2)},
		{value.EntityID(2), value.EntityID(3), value.EntityID(2)},
	}, tuples)
}

func TestTripleVIndexJoinScansByValue(t *testing.T) {
	tx := newFakeTx()
	tx.addTriple(1, "name", "alice")
	tx.addTriple(2, "name", "alice")

	tr := &Triple{Attr: nameAttr(), Bindings: [2]value.Binding{"e", "v"}}
	probe := newSliceIterator([]value.Tuple{{"alice"}})
	out := tr.join(probe, []int{0}, []int{1}, tx, nil)
	tuples, err := collect(out)
	require.NoError(t, err)
	sortTuples(tuples)
	assert.Equal(t, []value.Tuple{
		{"alice", value.EntityID(1), "alice"},
		{"alice", value.EntityID(2), "alice"},
	}, tuples)
}

func TestTripleVNoIndexJoinMaterializesThrowaway(t *testing.T) {
	tx := newFakeTx()
	tx.addTriple(1, "comment", "hi")
	tx.addTriple(2, "comment", "hi")
	tx.addTriple(3, "comment", "bye")

	tr := &Triple{Attr: commentAttr(), Bindings: [2]value.Binding{"e", "v"}}
	probe := newSliceIterator([]value.Tuple{{"hi"}})
	out := tr.join(probe, []int{0}, []int{1}, tx, nil)
	tuples, err := collect(out)
	require.NoError(t, err)
	sortTuples(tuples)
	assert.Equal(t, []value.Tuple{
		{"hi", value.EntityID(1), "hi"},
		{"hi", value.EntityID(2), "hi"},
	}, tuples)
	require.Len(t, tx.stores, 1)
}

func TestTripleNegEJoinKeepsOnlyNonMatching(t *testing.T) {
	tx := newFakeTx()
	tx.addTriple(1, "name", "alice")

	tr := &Triple{Attr: nameAttr(), Bindings: [2]value.Binding{"e", "v"}}
	probe := newSliceIterator([]value.Tuple{{value.EntityID(1)}, {value.EntityID(2)}})
	out := tr.negJoin(probe, []int{0}, []int{0}, tx)
	tuples, err := collect(out)
	require.NoError(t, err)
	assert.Equal(t, []value.Tuple{{value.EntityID(2)}}, tuples)
}

func TestTripleJoinUnknownShapeIsLogicError(t *testing.T) {
	tx := newFakeTx()
	tr := &Triple{Attr: nameAttr(), Bindings: [2]value.Binding{"e", "v"}}
	probe := newSliceIterator([]value.Tuple{{int64(1)}})
	out := tr.join(probe, []int{0, 1, 2}, []int{0, 1, 2}, tx, nil)
	_, err := collect(out)
	require.Error(t, err)
	var logicErr *LogicError
	assert.ErrorAs(t, err, &logicErr)
}
