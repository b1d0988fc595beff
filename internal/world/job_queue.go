package world

import "github.com/colonysim/colony/internal/core/event"

// JobQueue holds pending jobs in strict FIFO order. Dequeue does not notify.
type JobQueue struct {
	jobs    []*Job
	queued  map[*Job]struct{}
	created event.Observers[*Job]
}

func NewJobQueue() *JobQueue {
	return &JobQueue{
		jobs:   make([]*Job, 0, 32),
		queued: make(map[*Job]struct{}, 32),
	}
}

// Enqueue appends j and fires job-created. A job may be queued at most once.
func (q *JobQueue) Enqueue(j *Job) error {
	if _, ok := q.queued[j]; ok {
		return ErrJobQueued
	}
	q.jobs = append(q.jobs, j)
	q.queued[j] = struct{}{}
	q.created.Notify(j)
	return nil
}

// Dequeue removes and returns the head. ok is false when the queue is empty.
// The job is neither completed nor cancelled by this.
func (q *JobQueue) Dequeue() (j *Job, ok bool) {
	if len(q.jobs) == 0 {
		return nil, false
	}
	j = q.jobs[0]
	q.jobs[0] = nil
	q.jobs = q.jobs[1:]
	delete(q.queued, j)
	return j, true
}

// Remove takes j out of the queue wherever it sits. Used when a queued job is cancelled.
func (q *JobQueue) Remove(j *Job) bool {
	if _, ok := q.queued[j]; !ok {
		return false
	}
	for i, qj := range q.jobs {
		if qj == j {
			q.jobs = append(q.jobs[:i], q.jobs[i+1:]...)
			break
		}
	}
	delete(q.queued, j)
	return true
}

func (q *JobQueue) Count() int { return len(q.jobs) }

// Contains reports whether j is waiting in the queue.
func (q *JobQueue) Contains(j *Job) bool {
	_, ok := q.queued[j]
	return ok
}

// Peek returns the head without removing it.
func (q *JobQueue) Peek() (*Job, bool) {
	if len(q.jobs) == 0 {
		return nil, false
	}
	return q.jobs[0], true
}

func (q *JobQueue) OnJobCreated(fn func(*Job)) event.Handle { return q.created.Add(fn) }
func (q *JobQueue) RemoveJobCreated(h event.Handle) bool    { return q.created.Remove(h) }
