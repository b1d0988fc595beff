package data

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/colonysim/colony/internal/world"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadPrototypeTable(t *testing.T) {
	path := writeFile(t, "objects.yaml", `
objects:
  - type: wall
    movement_cost: 0
    links_to_neighbour: true
  - type: stone door
    movement_cost: 2.5
    width: 1
    height: 2
    build_time: 3
`)
	table, err := LoadPrototypeTable(path)
	require.NoError(t, err)
	require.Equal(t, 2, table.Count())

	protos := table.Prototypes()
	assert.Equal(t, world.ObjectWall, protos[0].Type)
	assert.True(t, protos[0].LinksToNeighbour)
	assert.Equal(t, 1, protos[0].Width, "width defaults to 1")
	assert.Equal(t, 1, protos[0].Height)

	door := table.Get("Stone_Door")
	require.NotNil(t, door)
	assert.Equal(t, 2.5, door.MovementCost)
	assert.Equal(t, 2, door.Height)
	assert.Equal(t, 3.0, door.BuildTime)
	assert.Nil(t, table.Get("Window"))
}

func TestLoadPrototypeTableRejects(t *testing.T) {
	for name, body := range map[string]string{
		"duplicate": "objects:\n  - type: wall\n  - type: WALL\n",
		"no type":   "objects:\n  - movement_cost: 1\n",
		"negative":  "objects:\n  - type: wall\n    movement_cost: -1\n",
		"bad yaml":  "objects: [\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := LoadPrototypeTable(writeFile(t, "objects.yaml", body))
			assert.Error(t, err)
		})
	}

	_, err := LoadPrototypeTable(writeFile(t, "objects.yaml", "objects:\n  - type: wall\n  - type: wall\n"))
	assert.ErrorIs(t, err, world.ErrDuplicatePrototype)
}

func TestPrototypeTableRegisterAll(t *testing.T) {
	table, err := LoadPrototypeTable(writeFile(t, "objects.yaml", "objects:\n  - type: wall\n    links_to_neighbour: true\n"))
	require.NoError(t, err)

	w := world.New(world.Config{Width: 2, Height: 2}, zaptest.NewLogger(t))
	require.NoError(t, table.RegisterAll(w))
	_, err = w.Prototype(world.ObjectWall)
	assert.NoError(t, err)
	assert.ErrorIs(t, table.RegisterAll(w), world.ErrDuplicatePrototype)
}

func TestLoadTileLayout(t *testing.T) {
	path := writeFile(t, "layout.csv", `# 3x3 room
1,1,1
1,0

0,1,1,1
`)
	layout, err := LoadTileLayout(path, 3, 3)
	require.NoError(t, err)

	assert.Equal(t, world.TileFloor, layout.At(0, 0))
	assert.Equal(t, world.TileFloor, layout.At(2, 0))
	assert.Equal(t, world.TileEmpty, layout.At(1, 1))
	assert.Equal(t, world.TileEmpty, layout.At(2, 1), "short row pads with empty")
	assert.Equal(t, world.TileEmpty, layout.At(0, 2))
	assert.Equal(t, world.TileFloor, layout.At(2, 2), "extra cells are dropped")
	assert.Equal(t, world.TileEmpty, layout.At(5, 5))

	w := world.New(world.Config{Width: 3, Height: 3}, zaptest.NewLogger(t))
	require.NoError(t, layout.Apply(w))
	tile, err := w.TileAt(1, 0)
	require.NoError(t, err)
	assert.Equal(t, world.TileFloor, tile.Type())

	small := world.New(world.Config{Width: 2, Height: 3}, zaptest.NewLogger(t))
	assert.Error(t, layout.Apply(small))
}

func TestLoadTileLayoutRejects(t *testing.T) {
	_, err := LoadTileLayout(writeFile(t, "layout.csv", "1,7\n"), 2, 2)
	assert.Error(t, err)
	_, err = LoadTileLayout(writeFile(t, "layout.csv", "1,x\n"), 2, 2)
	assert.Error(t, err)
	_, err = LoadTileLayout(filepath.Join(t.TempDir(), "missing.csv"), 2, 2)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
