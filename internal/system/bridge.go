package system

import (
	"github.com/colonysim/colony/internal/core/event"
	"github.com/colonysim/colony/internal/world"
)

// Bridge republishes world notifications as bus events stamped with the clock.
// Subscribers see them when DispatchSystem runs, never mid-mutation.
type Bridge struct {
	bus   *event.Bus
	clock *Clock
}

func NewBridge(w *world.World, bus *event.Bus, clock *Clock) *Bridge {
	b := &Bridge{bus: bus, clock: clock}

	w.OnTileTypeChanged(func(t *world.Tile) {
		b.bus.Emit(event.TileTypeChanged{Tick: b.clock.Tick(), X: t.X(), Y: t.Y(), Type: t.Type().String()})
	})
	w.OnObjectPlaced(func(o *world.InstalledObject) {
		b.bus.Emit(event.ObjectPlaced{
			Tick:     b.clock.Tick(),
			ObjectID: o.ID(),
			Type:     string(o.Type()),
			X:        o.Tile().X(),
			Y:        o.Tile().Y(),
		})
	})
	w.OnObjectChanged(func(o *world.InstalledObject) {
		b.bus.Emit(event.ObjectChanged{
			Tick:      b.clock.Tick(),
			ObjectID:  o.ID(),
			Type:      string(o.Type()),
			X:         o.Tile().X(),
			Y:         o.Tile().Y(),
			Installed: o.Installed(),
		})
	})
	w.OnJobCreated(func(j *world.Job) {
		b.bus.Emit(event.JobCreated{
			Tick:     b.clock.Tick(),
			JobID:    j.ID(),
			X:        j.Tile().X(),
			Y:        j.Tile().Y(),
			Duration: j.Duration(),
		})
	})
	w.OnJobCompleted(func(j *world.Job) {
		b.bus.Emit(event.JobCompleted{Tick: b.clock.Tick(), JobID: j.ID(), X: j.Tile().X(), Y: j.Tile().Y()})
	})
	w.OnJobCancelled(func(j *world.Job) {
		b.bus.Emit(event.JobCancelled{Tick: b.clock.Tick(), JobID: j.ID(), X: j.Tile().X(), Y: j.Tile().Y()})
	})
	w.OnCharacterSpawned(func(c *world.Character) {
		t := c.CurrentTile()
		b.bus.Emit(event.CharacterSpawned{Tick: b.clock.Tick(), CharacterID: c.ID(), X: t.X(), Y: t.Y()})
	})
	w.OnCharacterMoved(func(c *world.Character) {
		b.bus.Emit(event.CharacterMoved{Tick: b.clock.Tick(), CharacterID: c.ID(), X: c.X(), Y: c.Y()})
	})
	return b
}
