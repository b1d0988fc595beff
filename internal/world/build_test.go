package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestBuilderFoundationAndBulldoze(t *testing.T) {
	w := newTestWorld(t, 6, 6)
	b := NewBuilder(w, zaptest.NewLogger(t))
	assert.Equal(t, BuildFoundation, b.Mode())

	// Corners given in reverse order and partly off the map.
	assert.Equal(t, 9, b.BuildRect(3, 3, 1, 1))
	assert.Equal(t, 4, b.BuildRect(4, 4, 7, 7))

	floors := 0
	w.EachTile(func(tile *Tile) {
		if tile.Type() == TileFloor {
			floors++
		}
	})
	assert.Equal(t, 13, floors)

	b.SetModeBulldoze()
	assert.Equal(t, 1, b.BuildRect(2, 2, 2, 2))
	assert.Equal(t, TileEmpty, mustTile(t, w, 2, 2).Type())
}

func TestBuilderObjectMode(t *testing.T) {
	w := newTestWorld(t, 6, 6)
	b := NewBuilder(w, nil)
	b.BuildRect(0, 0, 2, 0)

	assert.ErrorIs(t, b.SetModeObject("door"), ErrUnknownPrototype)
	assert.Equal(t, BuildFoundation, b.Mode())

	require.NoError(t, b.SetModeObject("WALL"))
	assert.Equal(t, BuildObject, b.Mode())
	assert.Equal(t, ObjectWall, b.ObjectType())

	created := 0
	w.OnJobCreated(func(*Job) { created++ })

	// Row y=0 has floor on x=0..2; the rest is bare ground.
	assert.Equal(t, 3, b.BuildRect(0, 0, 5, 0))
	assert.Equal(t, 3, created)
	assert.Equal(t, 3, w.JobQueue().Count())

	// Second pass hits pending jobs everywhere.
	assert.Equal(t, 0, b.BuildRect(0, 0, 5, 0))
	assert.Equal(t, 3, w.JobQueue().Count())

	job, err := b.Build(mustTile(t, w, 4, 4))
	assert.ErrorIs(t, err, ErrNotBuildable)
	assert.Nil(t, job)
}

func TestBuilderBulldozeRefusesOccupiedTile(t *testing.T) {
	w := newTestWorld(t, 3, 3)
	tile := mustTile(t, w, 1, 1)
	tile.SetType(TileFloor)
	_, err := w.OrderInstalledObject(ObjectWall, tile)
	require.NoError(t, err)

	b := NewBuilder(w, nil)
	b.SetModeBulldoze()
	_, err = b.Build(tile)
	assert.ErrorIs(t, err, ErrOccupied)
	assert.Equal(t, TileFloor, tile.Type())
}

func TestOrderUsesPrototypeBuildTime(t *testing.T) {
	w := New(Config{Width: 3, Height: 3, JobDuration: 2}, nil)
	slow := NewPrototype("Door", 1, false, 1, 1)
	slow.BuildTime = 5
	require.NoError(t, w.RegisterPrototype(slow))
	require.NoError(t, w.RegisterPrototype(NewPrototype(ObjectWall, 0, true, 1, 1)))

	a := mustTile(t, w, 0, 0)
	b := mustTile(t, w, 1, 0)
	a.SetType(TileFloor)
	b.SetType(TileFloor)

	j, err := w.OrderInstalledObject("Door", a)
	require.NoError(t, err)
	assert.Equal(t, 5.0, j.Duration())
	assert.Equal(t, ObjectType("Door"), j.ObjectType())

	j, err = w.OrderInstalledObject(ObjectWall, b)
	require.NoError(t, err)
	assert.Equal(t, 2.0, j.Duration())
}

func TestOrderUsesJobDurationFunc(t *testing.T) {
	w := newTestWorld(t, 3, 1)
	w.SetJobDurationFunc(func(typ ObjectType) float64 {
		if typ == ObjectWall {
			return 4
		}
		return 0
	})
	a := mustTile(t, w, 0, 0)
	a.SetType(TileFloor)

	j, err := w.OrderInstalledObject(ObjectWall, a)
	require.NoError(t, err)
	assert.Equal(t, 4.0, j.Duration())

	w.SetJobDurationFunc(func(ObjectType) float64 { return -1 })
	b := mustTile(t, w, 1, 0)
	b.SetType(TileFloor)
	j, err = w.OrderInstalledObject(ObjectWall, b)
	require.NoError(t, err)
	assert.Equal(t, DefaultJobDuration, j.Duration())
}

func TestLiveJobsInCreationOrder(t *testing.T) {
	w := newTestWorld(t, 4, 1)
	b := NewBuilder(w, nil)
	b.BuildRect(0, 0, 3, 0)
	require.NoError(t, b.SetModeObject("wall"))
	b.BuildRect(0, 0, 3, 0)

	var xs []int
	w.LiveJobs(func(j *Job) { xs = append(xs, j.Tile().X()) })
	assert.Equal(t, []int{0, 1, 2, 3}, xs)
}
