package world

import (
	"math"

	"github.com/colonysim/colony/internal/core/ecs"
	"github.com/colonysim/colony/internal/core/event"
	"go.uber.org/zap"
)

// DefaultCharacterSpeed is in tiles per second.
const DefaultCharacterSpeed = 3.0

// JobSource hands out pending jobs. *JobQueue satisfies it.
type JobSource interface {
	Dequeue() (*Job, bool)
}

// CharacterState is derived from the held job and the destination.
type CharacterState uint8

const (
	CharacterIdle CharacterState = iota
	CharacterSeeking
	CharacterWorking
)

func (s CharacterState) String() string {
	switch s {
	case CharacterIdle:
		return "idle"
	case CharacterSeeking:
		return "seeking"
	case CharacterWorking:
		return "working"
	}
	return "unknown"
}

// Character pulls jobs, walks toward the job tile in a straight line and works it.
// While a job is held, destination is the job's tile.
type Character struct {
	id          ecs.EntityID
	jobs        JobSource
	current     *Tile
	destination *Tile
	progress    float64 // [0,1) between current and destination
	speed       float64

	job        *Job
	onComplete event.Handle
	onCancel   event.Handle
	moved      event.Observers[*Character]
	worldMoved *event.Observers[*Character]
	log        *zap.Logger
}

// NewCharacter places a character on spawn. A non-positive speed uses DefaultCharacterSpeed.
func NewCharacter(spawn *Tile, jobs JobSource, speed float64, log *zap.Logger) *Character {
	if speed <= 0 {
		speed = DefaultCharacterSpeed
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Character{
		jobs:        jobs,
		current:     spawn,
		destination: spawn,
		speed:       speed,
		log:         log,
	}
}

func (c *Character) ID() ecs.EntityID   { return c.id }
func (c *Character) CurrentTile() *Tile { return c.current }
func (c *Character) Destination() *Tile { return c.destination }
func (c *Character) Progress() float64  { return c.progress }
func (c *Character) Speed() float64     { return c.speed }
func (c *Character) Job() *Job          { return c.job }

// X is the rendered position: current and destination interpolated by progress.
func (c *Character) X() float64 {
	return lerp(float64(c.current.x), float64(c.destination.x), c.progress)
}

func (c *Character) Y() float64 {
	return lerp(float64(c.current.y), float64(c.destination.y), c.progress)
}

func (c *Character) State() CharacterState {
	switch {
	case c.current != c.destination:
		return CharacterSeeking
	case c.job != nil:
		return CharacterWorking
	}
	return CharacterIdle
}

// SetDestination accepts only the current tile or a 4-connected neighbour.
// Movement is single-step; no path is planned.
func (c *Character) SetDestination(t *Tile) error {
	if t != c.current && !c.current.IsNeighbour(t, false) {
		c.log.Debug("destination rejected",
			zap.Stringer("from", c.current), zap.Stringer("to", t))
		return ErrNotAdjacent
	}
	c.destination = t
	return nil
}

// Update advances the character by dt seconds.
func (c *Character) Update(dt float64) {
	// A step in flight lands before a new job retargets the character,
	// otherwise the interpolated position would jump.
	if c.job == nil && c.jobs != nil && c.current == c.destination {
		c.takeJob()
	}

	if c.current == c.destination {
		if c.job != nil {
			c.job.Work(dt)
		}
		return
	}

	dx := float64(c.current.x - c.destination.x)
	dy := float64(c.current.y - c.destination.y)
	distance := math.Sqrt(dx*dx + dy*dy)

	c.progress += (c.speed * dt) / distance
	if c.progress >= 1 {
		c.current = c.destination
		c.progress = 0
	}

	c.moved.Notify(c)
	if c.worldMoved != nil {
		c.worldMoved.Notify(c)
	}
}

func (c *Character) takeJob() {
	j, ok := c.jobs.Dequeue()
	if !ok {
		return
	}
	if j.Done() {
		// Finished before anyone picked it up; nothing to do there.
		return
	}
	c.job = j
	c.destination = j.tile
	c.onComplete = j.OnComplete(c.jobEnded)
	c.onCancel = j.OnCancel(c.jobEnded)
}

// jobEnded handles both completion and cancellation of the held job.
// A cancelled job leaves the destination alone: the character still arrives, idle.
func (c *Character) jobEnded(j *Job) {
	if c.job != j {
		c.log.Warn("job ended notification for a job this character does not hold",
			zap.Stringer("character", c.id), zap.Stringer("job", j.id))
		return
	}
	j.RemoveComplete(c.onComplete)
	j.RemoveCancel(c.onCancel)
	c.job = nil
}

func (c *Character) OnMoved(fn func(*Character)) event.Handle { return c.moved.Add(fn) }
func (c *Character) RemoveMoved(h event.Handle) bool          { return c.moved.Remove(h) }

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
