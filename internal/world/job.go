package world

import (
	"github.com/colonysim/colony/internal/core/ecs"
	"github.com/colonysim/colony/internal/core/event"
)

// DefaultJobDuration applies when a job is created with a non-positive duration.
const DefaultJobDuration = 1.0

type jobState uint8

const (
	jobPending jobState = iota
	jobCompleted
	jobCancelled
)

// Job is a timed unit of work bound to a tile. Exactly one of complete/cancel
// fires, at most once.
type Job struct {
	id         ecs.EntityID
	tile       *Tile
	objectType ObjectType
	duration   float64
	remaining  float64
	state      jobState

	completed event.Observers[*Job]
	cancelled event.Observers[*Job]
}

// NewJob creates a job on tile. onComplete may be nil.
func NewJob(tile *Tile, onComplete func(*Job), duration float64) *Job {
	if duration <= 0 {
		duration = DefaultJobDuration
	}
	j := &Job{tile: tile, duration: duration, remaining: duration}
	if onComplete != nil {
		j.completed.Add(onComplete)
	}
	return j
}

func (j *Job) ID() ecs.EntityID       { return j.id }
func (j *Job) Tile() *Tile            { return j.tile }
func (j *Job) ObjectType() ObjectType { return j.objectType }
func (j *Job) Duration() float64      { return j.duration }
func (j *Job) Remaining() float64     { return j.remaining }
func (j *Job) Done() bool             { return j.state != jobPending }
func (j *Job) Completed() bool        { return j.state == jobCompleted }
func (j *Job) Cancelled() bool        { return j.state == jobCancelled }

// Work spends elapsed time on the job. Completion fires once when remaining time
// reaches zero; later calls do nothing.
func (j *Job) Work(elapsed float64) {
	if j.state != jobPending {
		return
	}
	j.remaining -= elapsed
	if j.remaining <= 0 {
		j.remaining = 0
		j.state = jobCompleted
		j.completed.Notify(j)
	}
}

// Cancel fires the cancel observers. Does nothing on a finished job.
func (j *Job) Cancel() {
	if j.state != jobPending {
		return
	}
	j.state = jobCancelled
	j.cancelled.Notify(j)
}

func (j *Job) OnComplete(fn func(*Job)) event.Handle { return j.completed.Add(fn) }
func (j *Job) OnCancel(fn func(*Job)) event.Handle   { return j.cancelled.Add(fn) }
func (j *Job) RemoveComplete(h event.Handle) bool    { return j.completed.Remove(h) }
func (j *Job) RemoveCancel(h event.Handle) bool      { return j.cancelled.Remove(h) }
