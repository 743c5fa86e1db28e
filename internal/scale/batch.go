package scale

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// addJobs enumerates the entries of source in directory order and enqueues
// one job per entry. It returns the number enqueued. Entries that are not
// readable images become jobs anyway; they fail in the worker and count as
// skipped, exactly like any other bad image.
func addJobs(source, target string, queue *JobQueue) (int, error) {
	entries, err := os.ReadDir(source)
	if err != nil {
		return 0, err
	}
	for _, entry := range entries {
		queue.Put(Job{
			Source: filepath.Join(source, entry.Name()),
			Target: filepath.Join(target, entry.Name()),
		})
	}
	return len(entries), nil
}

// Run executes one batch: start the worker pool, enqueue one job per source
// entry, wait until every job is acknowledged, then sum the collected
// results. All jobs are enqueued before the wait begins, so "all done"
// covers the whole batch.
//
// Canceling ctx abandons the wait: Canceled is set, workers mid-transform
// keep running in the background, and whatever results already arrived are
// still counted.
//
// Workers are detached goroutines. They are not torn down when Run returns;
// they hold no resources between jobs and end with the process.
func Run(ctx context.Context, opts Options, rep Reporter, updates chan<- ProgressUpdate) (Summary, error) {
	if opts.Workers < 1 {
		return Summary{}, fmt.Errorf("worker count must be positive, got %d", opts.Workers)
	}
	if opts.Size < 1 {
		return Summary{}, fmt.Errorf("size bound must be positive, got %d", opts.Size)
	}
	if opts.Source == opts.Target {
		return Summary{}, fmt.Errorf("source and target must be different")
	}

	queue := NewJobQueue()
	sink := &ResultSink{}
	for i := 0; i < opts.Workers; i++ {
		go worker(queue, sink, opts, rep, updates)
	}

	todo, err := addJobs(opts.Source, opts.Target, queue)
	if err != nil {
		return Summary{}, err
	}
	if updates != nil {
		updates <- ProgressUpdate{TotalDelta: todo}
	}

	summary := Summary{Todo: todo}
	if err := queue.Join(ctx); err != nil {
		rep.Report("canceling...")
		summary.Canceled = true
	}

	for _, result := range sink.Drain() {
		if result.Copied {
			summary.Copied++
		} else {
			summary.Scaled++
		}
	}
	return summary, nil
}
