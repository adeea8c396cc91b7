package containers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRingQueueFIFOOrder(t *testing.T) {
	q := NewRingQueue[int](4)

	for i := 1; i <= 4; i++ {
		require.NoError(t, q.Enqueue(i))
	}
	for i := 1; i <= 4; i++ {
		v, err := q.Dequeue()
		require.NoError(t, err)
		assert.Equal(t, i, v)
	}
	assert.True(t, q.IsEmpty())
}

func TestRingQueueFullAndEmpty(t *testing.T) {
	q := NewRingQueue[string](2)

	require.NoError(t, q.Enqueue("a"))
	require.NoError(t, q.Enqueue("b"))
	assert.True(t, q.IsFull())
	assert.ErrorIs(t, q.Enqueue("c"), ErrQueueFull)

	_, err := q.Dequeue()
	require.NoError(t, err)
	_, err = q.Dequeue()
	require.NoError(t, err)

	_, err = q.Dequeue()
	assert.ErrorIs(t, err, ErrQueueEmpty)
	_, err = q.Peek()
	assert.ErrorIs(t, err, ErrQueueEmpty)
}

func TestRingQueueWrapAround(t *testing.T) {
	q := NewRingQueue[int](3)

	// Fill, drain partially, refill past the physical end.
	require.NoError(t, q.Enqueue(1))
	require.NoError(t, q.Enqueue(2))
	require.NoError(t, q.Enqueue(3))

	v, _ := q.Dequeue()
	assert.Equal(t, 1, v)
	v, _ = q.Dequeue()
	assert.Equal(t, 2, v)

	require.NoError(t, q.Enqueue(4))
	require.NoError(t, q.Enqueue(5))
	assert.Equal(t, 3, q.Len())

	want := []int{3, 4, 5}
	for _, w := range want {
		peeked, err := q.Peek()
		require.NoError(t, err)
		assert.Equal(t, w, peeked)
		v, err := q.Dequeue()
		require.NoError(t, err)
		assert.Equal(t, w, v)
	}
}
