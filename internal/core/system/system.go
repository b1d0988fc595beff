package system

import "time"

// Phase defines execution ordering within a single tick.
type Phase int

const (
	PhaseInput      Phase = iota // 0: drain build/cancel/spawn commands
	PhasePreUpdate               // 1: reserved
	PhaseUpdate                  // 2: advance characters and jobs
	PhasePostUpdate              // 3: reserved
	PhaseOutput                  // 4: dispatch change events to feed and journal
	PhasePersist                 // 5: journal flush
	PhaseCleanup                 // 6: destroy finished job entities
)

func (p Phase) String() string {
	switch p {
	case PhaseInput:
		return "input"
	case PhasePreUpdate:
		return "pre_update"
	case PhaseUpdate:
		return "update"
	case PhasePostUpdate:
		return "post_update"
	case PhaseOutput:
		return "output"
	case PhasePersist:
		return "persist"
	case PhaseCleanup:
		return "cleanup"
	}
	return "unknown"
}

// System is the interface every tick system implements.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
