package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEntityPoolNeverHandsOutZero(t *testing.T) {
	p := NewEntityPool()
	id := p.Create()
	assert.False(t, id.IsZero())
	assert.Equal(t, uint32(1), id.Index())
	assert.False(t, p.Alive(0))
}

func TestEntityPoolReuseBumpsGeneration(t *testing.T) {
	p := NewEntityPool()
	a := p.Create()
	p.Destroy(a)
	assert.False(t, p.Alive(a))

	b := p.Create()
	assert.Equal(t, a.Index(), b.Index())
	assert.Equal(t, a.Generation()+1, b.Generation())
	assert.True(t, p.Alive(b))
	assert.False(t, p.Alive(a))

	p.Destroy(a) // stale: no effect
	assert.True(t, p.Alive(b))
	assert.Equal(t, "1.1", b.String())
}

func TestWorldFlushRemovesComponents(t *testing.T) {
	w := NewWorld()
	store := NewPtrComponentStore[string]()
	w.Registry().Register(store)

	ids := make([]EntityID, 3)
	for i := range ids {
		ids[i] = w.CreateEntity()
		s := string(rune('a' + i))
		store.Set(ids[i], &s)
	}

	w.MarkForDestruction(ids[1])
	w.MarkForDestruction(ids[1])
	assert.Equal(t, 2, w.PendingDestruction())
	assert.Equal(t, 1, w.FlushDestroyQueue())
	assert.Zero(t, w.PendingDestruction())

	assert.False(t, w.Alive(ids[1]))
	assert.False(t, store.Has(ids[1]))
	assert.Equal(t, 2, store.Len())

	var seen []string
	store.EachSorted(func(_ EntityID, s *string) { seen = append(seen, *s) })
	assert.Equal(t, []string{"a", "c"}, seen)
}
