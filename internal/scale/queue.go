package scale

import (
	"context"
	"sync"
)

// JobQueue is a concurrent FIFO whose consumers acknowledge every job they
// retrieve. Put never blocks, Get blocks until a job arrives, and Join
// blocks until every job put so far has been acknowledged. Acknowledgment
// is decoupled from retrieval so a worker can acknowledge from a deferred
// cleanup even when processing fails.
type JobQueue struct {
	mu          sync.Mutex
	jobs        []Job
	outstanding int
	retrieved   int
	acked       int
	arrived     chan struct{} // closed and replaced on every Put
	done        chan struct{} // closed and replaced on every Acknowledge
}

func NewJobQueue() *JobQueue {
	return &JobQueue{
		arrived: make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Put appends job to the queue. The job counts as outstanding until it is
// acknowledged.
func (q *JobQueue) Put(job Job) {
	q.mu.Lock()
	q.jobs = append(q.jobs, job)
	q.outstanding++
	close(q.arrived)
	q.arrived = make(chan struct{})
	q.mu.Unlock()
}

// Get blocks until a job is available and removes it from the queue. Safe
// for any number of concurrent callers.
func (q *JobQueue) Get() Job {
	for {
		q.mu.Lock()
		if len(q.jobs) > 0 {
			job := q.jobs[0]
			q.jobs = q.jobs[1:]
			q.retrieved++
			q.mu.Unlock()
			return job
		}
		wait := q.arrived
		q.mu.Unlock()
		<-wait
	}
}

// Acknowledge marks one previously retrieved job as done. Calling it more
// times than jobs were retrieved is a protocol violation and panics.
func (q *JobQueue) Acknowledge() {
	q.mu.Lock()
	if q.acked >= q.retrieved {
		q.mu.Unlock()
		panic("scale: Acknowledge called more times than jobs were retrieved")
	}
	q.acked++
	q.outstanding--
	close(q.done)
	q.done = make(chan struct{})
	q.mu.Unlock()
}

// Outstanding reports how many jobs have been put but not yet acknowledged.
func (q *JobQueue) Outstanding() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.outstanding
}

// Join blocks until every job put so far has been acknowledged, or until
// ctx is canceled. Cancellation returns ctx.Err() and leaves the queue and
// its counts untouched.
func (q *JobQueue) Join(ctx context.Context) error {
	for {
		q.mu.Lock()
		if q.outstanding == 0 {
			q.mu.Unlock()
			return nil
		}
		wait := q.done
		q.mu.Unlock()
		select {
		case <-wait:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// ResultSink collects Results from many workers. It is unbounded; Drain
// snapshots and empties it without blocking.
type ResultSink struct {
	mu      sync.Mutex
	results []Result
}

func (s *ResultSink) Put(r Result) {
	s.mu.Lock()
	s.results = append(s.results, r)
	s.mu.Unlock()
}

// Drain returns everything collected so far and empties the sink. A worker
// finishing after the snapshot is missed; a canceled batch tolerates that.
func (s *ResultSink) Drain() []Result {
	s.mu.Lock()
	drained := s.results
	s.results = nil
	s.mu.Unlock()
	return drained
}
