package world

import (
	"strings"

	"github.com/colonysim/colony/internal/core/ecs"
	"github.com/colonysim/colony/internal/core/event"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ObjectType tags a kind of installed object, e.g. "Wall".
type ObjectType string

const ObjectWall ObjectType = "Wall"

// ParseObjectType normalizes a user-supplied fixture name ("wall", "WALL ") to its
// canonical title-cased form. Multi-word names keep their words joined by underscores.
func ParseObjectType(name string) ObjectType {
	words := strings.FieldsFunc(strings.TrimSpace(name), func(r rune) bool {
		return r == '_' || r == ' ' || r == '-'
	})
	caser := cases.Title(language.English) // not safe to share between goroutines
	for i, w := range words {
		words[i] = caser.String(w)
	}
	return ObjectType(strings.Join(words, "_"))
}

// Prototype is the immutable template a placed InstalledObject is stamped from.
type Prototype struct {
	Type ObjectType
	// MovementCost multiplies travel time across the tile; 0 means impassable.
	MovementCost     float64
	LinksToNeighbour bool
	Width, Height    int
	// BuildTime is the placement job's duration; 0 uses the world default.
	BuildTime float64
}

// NewPrototype builds an unbound template. No validation happens here.
func NewPrototype(typ ObjectType, movementCost float64, linksToNeighbour bool, width, height int) *Prototype {
	return &Prototype{
		Type:             typ,
		MovementCost:     movementCost,
		LinksToNeighbour: linksToNeighbour,
		Width:            width,
		Height:           height,
	}
}

// InstalledObject is a fixture bound to exactly one tile.
// installed stays false while its placement job is pending.
type InstalledObject struct {
	id        ecs.EntityID
	proto     *Prototype
	tile      *Tile
	installed bool

	changed event.Observers[*InstalledObject]
}

func (o *InstalledObject) ID() ecs.EntityID       { return o.id }
func (o *InstalledObject) Type() ObjectType       { return o.proto.Type }
func (o *InstalledObject) Tile() *Tile            { return o.tile }
func (o *InstalledObject) Installed() bool        { return o.installed }
func (o *InstalledObject) MovementCost() float64  { return o.proto.MovementCost }
func (o *InstalledObject) LinksToNeighbour() bool { return o.proto.LinksToNeighbour }
func (o *InstalledObject) Size() (w, h int)       { return o.proto.Width, o.proto.Height }
func (o *InstalledObject) Prototype() *Prototype  { return o.proto }

// SetInstalled sets the flag and always notifies, even when the value is unchanged.
func (o *InstalledObject) SetInstalled(installed bool) {
	o.installed = installed
	o.notifyChanged()
}

func (o *InstalledObject) OnChanged(fn func(*InstalledObject)) event.Handle {
	return o.changed.Add(fn)
}

func (o *InstalledObject) RemoveChanged(h event.Handle) bool { return o.changed.Remove(h) }

func (o *InstalledObject) notifyChanged() {
	o.changed.Notify(o)
	if w := o.tile.world; w != nil {
		w.objectChanged.Notify(o)
	}
}

// CheckPlacementValidity is the single gate every placement passes through.
func CheckPlacementValidity(p *Prototype, t *Tile) error {
	switch {
	case t == nil:
		return ErrOutOfBounds
	case !t.Type().Buildable():
		return ErrNotBuildable
	case t.object != nil:
		return ErrOccupied
	case t.pendingJob != nil:
		return ErrPendingJob
	}
	return nil
}

// PlacePrototype validates t, stamps a new instance from p onto it and, for linking
// types, notifies same-type N/S/E/W neighbours so they can re-derive their look.
// Only 1x1 footprints are bound; larger prototypes occupy their base tile.
func PlacePrototype(p *Prototype, t *Tile) (*InstalledObject, error) {
	if err := CheckPlacementValidity(p, t); err != nil {
		return nil, err
	}

	obj := &InstalledObject{proto: p, tile: t}
	if err := t.PlaceObject(obj); err != nil {
		return nil, err
	}
	t.pendingJob = nil
	if t.world != nil {
		obj.id = t.world.entities.CreateEntity()
	}

	if p.LinksToNeighbour {
		for _, n := range t.Neighbours(false) {
			if n.object != nil && n.object.Type() == p.Type {
				n.object.notifyChanged()
			}
		}
	}
	return obj, nil
}
