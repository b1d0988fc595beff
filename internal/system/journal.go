package system

import (
	"context"
	"encoding/json"
	"time"

	"github.com/colonysim/colony/internal/core/event"
	coresys "github.com/colonysim/colony/internal/core/system"
	"github.com/colonysim/colony/internal/persist"
	"go.uber.org/zap"
)

// JournalSystem buffers every dispatched event and periodically appends the
// batch to the journal. Phase 5 (Persist).
type JournalSystem struct {
	journal   persist.Journal
	pending   []persist.EventRow
	log       *zap.Logger
	tickCount int
	interval  int // flush every N ticks
}

func NewJournalSystem(bus *event.Bus, journal persist.Journal, log *zap.Logger, intervalTicks int) *JournalSystem {
	if intervalTicks <= 0 {
		intervalTicks = 1
	}
	s := &JournalSystem{
		journal:  journal,
		pending:  make([]persist.EventRow, 0, 256),
		log:      log,
		interval: intervalTicks,
	}
	bus.SubscribeAll(s.record)
	return s
}

func (s *JournalSystem) Phase() coresys.Phase { return coresys.PhasePersist }

func (s *JournalSystem) Update(_ time.Duration) {
	s.tickCount++
	if s.tickCount < s.interval {
		return
	}
	s.tickCount = 0
	s.Flush()
}

// Pending returns how many rows wait for the next flush.
func (s *JournalSystem) Pending() int { return len(s.pending) }

// Flush appends all buffered rows now. Called for graceful shutdown too.
// On failure the rows stay buffered and the next flush retries them.
func (s *JournalSystem) Flush() {
	if len(s.pending) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.journal.Append(ctx, s.pending); err != nil {
		s.log.Error("journal flush failed", zap.Int("rows", len(s.pending)), zap.Error(err))
		return
	}
	s.log.Debug("journal flushed", zap.Int("rows", len(s.pending)))
	s.pending = s.pending[:0]
}

func (s *JournalSystem) record(ev event.Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		s.log.Error("journal encode failed", zap.String("kind", ev.Kind()), zap.Error(err))
		return
	}
	var tick uint64
	if t, ok := ev.(event.Timed); ok {
		tick = t.At()
	}
	s.pending = append(s.pending, persist.EventRow{Tick: tick, Kind: ev.Kind(), Payload: payload})
}
