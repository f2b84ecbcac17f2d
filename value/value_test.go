package value

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEqual(t *testing.T) {
	assert.True(t, Equal(EntityID(1), EntityID(1)))
	assert.False(t, Equal(EntityID(1), EntityID(2)))
	assert.True(t, Equal("Alice", "Alice"))
	assert.False(t, Equal("Alice", EntityID(1)))

	t1 := time.Now()
	t2 := t1.Round(0)
	assert.True(t, Equal(t1, t2))
}

func TestCompareOrdersWithinType(t *testing.T) {
	require.Equal(t, -1, Compare(int64(1), int64(2)))
	require.Equal(t, 1, Compare(int64(2), int64(1)))
	require.Equal(t, 0, Compare("a", "a"))
	require.Equal(t, -1, Compare("a", "b"))
	require.Equal(t, -1, Compare(EntityID(1), EntityID(2)))
}

func TestAsEntityID(t *testing.T) {
	eid, err := AsEntityID(EntityID(7))
	require.NoError(t, err)
	require.Equal(t, EntityID(7), eid)

	_, err = AsEntityID("not-an-entity")
	require.Error(t, err)
}
