package system

import (
	"time"

	"github.com/colonysim/colony/internal/core/event"
	coresys "github.com/colonysim/colony/internal/core/system"
)

// DispatchSystem delivers this tick's events to bus subscribers. Phase 4 (Output).
type DispatchSystem struct {
	bus *event.Bus
}

func NewDispatchSystem(bus *event.Bus) *DispatchSystem {
	return &DispatchSystem{bus: bus}
}

func (s *DispatchSystem) Phase() coresys.Phase { return coresys.PhaseOutput }

func (s *DispatchSystem) Update(_ time.Duration) {
	s.bus.SwapBuffers()
	s.bus.DispatchAll()
}
