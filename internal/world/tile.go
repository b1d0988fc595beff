package world

import (
	"fmt"
	"strings"

	"github.com/colonysim/colony/internal/core/event"
)

// TileType is the base surface of a tile.
type TileType uint8

const (
	TileEmpty TileType = iota // bare ground, nothing can be built here
	TileFloor
)

func (t TileType) String() string {
	switch t {
	case TileEmpty:
		return "Empty"
	case TileFloor:
		return "Floor"
	}
	return fmt.Sprintf("TileType(%d)", uint8(t))
}

// Buildable reports whether installed objects may be placed on this surface.
func (t TileType) Buildable() bool { return t == TileFloor }

// ParseTileType accepts "empty"/"ground" and "floor", case-insensitively.
func ParseTileType(s string) (TileType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "empty", "ground":
		return TileEmpty, nil
	case "floor":
		return TileFloor, nil
	}
	return TileEmpty, fmt.Errorf("unknown tile type %q", s)
}

// Tile is one grid cell. Tiles live in the World's dense array and are never
// reallocated, so *Tile stays valid for the World's lifetime.
type Tile struct {
	world      *World
	x, y       int
	typ        TileType
	object     *InstalledObject
	pendingJob *Job

	typeChanged event.Observers[*Tile]
}

func (t *Tile) X() int                   { return t.x }
func (t *Tile) Y() int                   { return t.y }
func (t *Tile) Type() TileType           { return t.typ }
func (t *Tile) Object() *InstalledObject { return t.object }
func (t *Tile) PendingJob() *Job         { return t.pendingJob }

func (t *Tile) String() string { return fmt.Sprintf("(%d, %d)", t.x, t.y) }

// SetType changes the surface and notifies observers. Setting the current type is a no-op.
func (t *Tile) SetType(typ TileType) {
	if typ == t.typ {
		return
	}
	t.typ = typ
	t.typeChanged.Notify(t)
	if t.world != nil {
		t.world.tileTypeChanged.Notify(t)
	}
}

// PlaceObject binds obj to the tile. A nil obj clears the occupant.
// Fails with ErrOccupied, leaving the tile untouched, if an occupant exists.
func (t *Tile) PlaceObject(obj *InstalledObject) error {
	if obj == nil {
		t.object = nil
		return nil
	}
	if t.object != nil {
		return ErrOccupied
	}
	t.object = obj
	return nil
}

// SetPendingJob records the placement job that will install an object here.
func (t *Tile) SetPendingJob(j *Job) { t.pendingJob = j }

// MovementCost is the occupant's cost multiplier, 1 on an empty tile. 0 means impassable.
func (t *Tile) MovementCost() float64 {
	if t.object == nil {
		return 1
	}
	return t.object.MovementCost()
}

func (t *Tile) OnTypeChanged(fn func(*Tile)) event.Handle { return t.typeChanged.Add(fn) }
func (t *Tile) RemoveTypeChanged(h event.Handle) bool     { return t.typeChanged.Remove(h) }

// IsNeighbour reports whether other is one step away: N/S/E/W, plus the four
// diagonals when diagonal is set. A tile is not its own neighbour.
func (t *Tile) IsNeighbour(other *Tile, diagonal bool) bool {
	if other == nil {
		return false
	}
	dx := abs(t.x - other.x)
	dy := abs(t.y - other.y)
	if dx+dy == 1 {
		return true
	}
	return diagonal && dx == 1 && dy == 1
}

// Neighbours returns the in-bounds 4-connected neighbours in N, S, E, W order,
// followed by NE, SE, SW, NW when diagonal is set.
func (t *Tile) Neighbours(diagonal bool) []*Tile {
	if t.world == nil {
		return nil
	}
	offsets := [][2]int{{0, 1}, {0, -1}, {1, 0}, {-1, 0}}
	if diagonal {
		offsets = append(offsets, [2]int{1, 1}, [2]int{1, -1}, [2]int{-1, -1}, [2]int{-1, 1})
	}
	out := make([]*Tile, 0, len(offsets))
	for _, o := range offsets {
		if n := t.world.tile(t.x+o[0], t.y+o[1]); n != nil {
			out = append(out, n)
		}
	}
	return out
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
