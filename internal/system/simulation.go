package system

import (
	"time"

	coresys "github.com/colonysim/colony/internal/core/system"
	"github.com/colonysim/colony/internal/world"
)

// Clock counts completed simulation steps. Events are stamped with its value.
type Clock struct {
	tick uint64
}

func (c *Clock) Tick() uint64 { return c.tick }

// SimulationSystem advances every character by the frame time. Phase 2 (Update).
type SimulationSystem struct {
	world *world.World
	clock *Clock
}

func NewSimulationSystem(w *world.World, clock *Clock) *SimulationSystem {
	return &SimulationSystem{world: w, clock: clock}
}

func (s *SimulationSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *SimulationSystem) Update(dt time.Duration) {
	s.world.Simulate(dt.Seconds())
	s.clock.tick++
}
