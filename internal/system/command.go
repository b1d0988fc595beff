package system

import (
	"errors"
	"fmt"
	"time"

	"github.com/colonysim/colony/internal/core/ecs"
	coresys "github.com/colonysim/colony/internal/core/system"
	"github.com/colonysim/colony/internal/world"
	"go.uber.org/zap"
)

// Command ops.
const (
	OpFoundation = "foundation"
	OpBulldoze   = "bulldoze"
	OpBuild      = "build"
	OpCancelJob  = "cancel_job"
	OpSpawn      = "spawn"
)

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrUnknownJob     = errors.New("no such live job")
)

// Command is one build order from outside the tick goroutine (feed clients,
// startup scripts). Rectangles are inclusive and corners may come in any order.
type Command struct {
	Op    string `json:"op"`
	Type  string `json:"type,omitempty"` // object type for OpBuild
	X1    int    `json:"x1"`
	Y1    int    `json:"y1"`
	X2    int    `json:"x2"`
	Y2    int    `json:"y2"`
	JobID uint64 `json:"job_id,omitempty"`
}

// CommandSystem drains queued commands into the world. Phase 0 (Input).
type CommandSystem struct {
	world      *world.World
	builder    *world.Builder
	queue      chan Command
	maxPerTick int
	log        *zap.Logger
}

func NewCommandSystem(w *world.World, queueSize, maxPerTick int, log *zap.Logger) *CommandSystem {
	if queueSize <= 0 {
		queueSize = 128
	}
	if maxPerTick <= 0 {
		maxPerTick = queueSize
	}
	return &CommandSystem{
		world:      w,
		builder:    world.NewBuilder(w, log),
		queue:      make(chan Command, queueSize),
		maxPerTick: maxPerTick,
		log:        log,
	}
}

func (s *CommandSystem) Phase() coresys.Phase { return coresys.PhaseInput }

// Submit queues cmd for the next tick. Safe from any goroutine; returns false
// when the queue is full.
func (s *CommandSystem) Submit(cmd Command) bool {
	select {
	case s.queue <- cmd:
		return true
	default:
		return false
	}
}

func (s *CommandSystem) Update(_ time.Duration) {
	for i := 0; i < s.maxPerTick; i++ {
		select {
		case cmd := <-s.queue:
			if err := s.Apply(cmd); err != nil {
				s.log.Warn("command rejected", zap.String("op", cmd.Op), zap.Error(err))
			}
		default:
			return
		}
	}
}

// Apply runs cmd immediately. Tick goroutine only.
func (s *CommandSystem) Apply(cmd Command) error {
	switch cmd.Op {
	case OpFoundation:
		s.builder.SetModeFoundation()
		s.buildRect(cmd)
	case OpBulldoze:
		s.builder.SetModeBulldoze()
		s.buildRect(cmd)
	case OpBuild:
		if err := s.builder.SetModeObject(cmd.Type); err != nil {
			return err
		}
		s.buildRect(cmd)
	case OpCancelJob:
		if !s.world.CancelJob(ecs.EntityID(cmd.JobID)) {
			return fmt.Errorf("%w: %s", ErrUnknownJob, ecs.EntityID(cmd.JobID))
		}
	case OpSpawn:
		t, err := s.world.TileAt(cmd.X1, cmd.Y1)
		if err != nil {
			return err
		}
		c := s.world.SpawnCharacter(t)
		s.log.Info("character spawned", zap.Stringer("id", c.ID()), zap.Stringer("tile", t))
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCommand, cmd.Op)
	}
	return nil
}

func (s *CommandSystem) buildRect(cmd Command) {
	n := s.builder.BuildRect(cmd.X1, cmd.Y1, cmd.X2, cmd.Y2)
	s.log.Debug("build order applied",
		zap.Stringer("mode", s.builder.Mode()),
		zap.Int("x1", cmd.X1), zap.Int("y1", cmd.Y1),
		zap.Int("x2", cmd.X2), zap.Int("y2", cmd.Y2),
		zap.Int("accepted", n))
}
