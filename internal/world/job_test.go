package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobCompletesOnce(t *testing.T) {
	fired := 0
	j := NewJob(&Tile{}, func(*Job) { fired++ }, 2)

	j.Work(0.5)
	assert.Equal(t, 0, fired)
	assert.InDelta(t, 1.5, j.Remaining(), 1e-9)

	j.Work(1.5)
	assert.Equal(t, 1, fired)
	assert.True(t, j.Completed())

	j.Work(1)
	j.Work(10)
	assert.Equal(t, 1, fired, "work after completion must not fire again")
	assert.Zero(t, j.Remaining())
}

func TestJobDefaultDuration(t *testing.T) {
	j := NewJob(&Tile{}, nil, 0)
	assert.Equal(t, DefaultJobDuration, j.Duration())

	j = NewJob(&Tile{}, nil, -3)
	assert.Equal(t, DefaultJobDuration, j.Duration())
}

func TestJobCancelExclusiveWithComplete(t *testing.T) {
	var completed, cancelled int
	j := NewJob(&Tile{}, func(*Job) { completed++ }, 1)
	j.OnCancel(func(*Job) { cancelled++ })

	j.Cancel()
	j.Cancel()
	j.Work(5)

	assert.Equal(t, 0, completed)
	assert.Equal(t, 1, cancelled)
	assert.True(t, j.Cancelled())

	j2 := NewJob(&Tile{}, func(*Job) { completed++ }, 1)
	j2.OnCancel(func(*Job) { cancelled++ })
	j2.Work(1)
	j2.Cancel()
	assert.Equal(t, 1, completed)
	assert.Equal(t, 1, cancelled)
}

func TestJobMultipleObserversInOrder(t *testing.T) {
	var order []string
	j := NewJob(&Tile{}, func(*Job) { order = append(order, "first") }, 1)
	h := j.OnComplete(func(*Job) { order = append(order, "removed") })
	j.OnComplete(func(*Job) { order = append(order, "second") })
	require.True(t, j.RemoveComplete(h))

	j.Work(1)
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestJobQueueFIFO(t *testing.T) {
	q := NewJobQueue()
	var created []*Job
	q.OnJobCreated(func(j *Job) { created = append(created, j) })

	a := NewJob(&Tile{}, nil, 1)
	b := NewJob(&Tile{}, nil, 1)
	c := NewJob(&Tile{}, nil, 1)
	for i, j := range []*Job{a, b, c} {
		require.NoError(t, q.Enqueue(j))
		assert.Equal(t, i+1, q.Count())
	}
	assert.Equal(t, []*Job{a, b, c}, created)

	head, ok := q.Peek()
	require.True(t, ok)
	assert.Same(t, a, head)

	for i, want := range []*Job{a, b, c} {
		got, ok := q.Dequeue()
		require.True(t, ok)
		assert.Same(t, want, got)
		assert.Equal(t, 2-i, q.Count())
		assert.False(t, got.Done(), "dequeue neither completes nor cancels")
	}

	got, ok := q.Dequeue()
	assert.False(t, ok)
	assert.Nil(t, got)
	assert.Len(t, created, 3, "dequeue fires no notification")
}

func TestJobQueueRejectsDuplicates(t *testing.T) {
	q := NewJobQueue()
	j := NewJob(&Tile{}, nil, 1)
	require.NoError(t, q.Enqueue(j))
	assert.ErrorIs(t, q.Enqueue(j), ErrJobQueued)
	assert.Equal(t, 1, q.Count())

	_, _ = q.Dequeue()
	assert.NoError(t, q.Enqueue(j), "may be queued again once removed")
}

func TestJobQueueRemove(t *testing.T) {
	q := NewJobQueue()
	a := NewJob(&Tile{}, nil, 1)
	b := NewJob(&Tile{}, nil, 1)
	require.NoError(t, q.Enqueue(a))
	require.NoError(t, q.Enqueue(b))

	assert.True(t, q.Remove(a))
	assert.False(t, q.Remove(a))
	assert.False(t, q.Contains(a))
	assert.True(t, q.Contains(b))

	got, ok := q.Dequeue()
	require.True(t, ok)
	assert.Same(t, b, got)
}
