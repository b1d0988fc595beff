package system

import (
	"time"

	coresys "github.com/colonysim/colony/internal/core/system"
	"github.com/colonysim/colony/internal/world"
	"go.uber.org/zap"
)

// CleanupSystem drops finished jobs from the world's ID lookup at tick end.
// Phase 6 (Cleanup).
type CleanupSystem struct {
	world *world.World
	log   *zap.Logger
}

func NewCleanupSystem(w *world.World, log *zap.Logger) *CleanupSystem {
	return &CleanupSystem{world: w, log: log}
}

func (s *CleanupSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }

func (s *CleanupSystem) Update(_ time.Duration) {
	if n := s.world.FlushFinishedJobs(); n > 0 {
		s.log.Debug("finished jobs released", zap.Int("count", n))
	}
}
