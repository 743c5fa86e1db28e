package scale

import (
	"errors"
	"fmt"
	"path/filepath"

	"squish/pkg/imgutil"
)

// worker loops forever: retrieve a job, process it, acknowledge it. Workers
// are detached; nothing tells them to stop and they end with the host
// process. A failure that is not a per-image transform error stops this one
// worker; the rest of the pool carries on.
func worker(queue *JobQueue, sink *ResultSink, opts Options, rep Reporter, updates chan<- ProgressUpdate) {
	for {
		job := queue.Get()
		if err := process(job, queue, sink, opts, rep, updates); err != nil {
			rep.Error(fmt.Sprintf("worker stopped: %v", err))
			return
		}
	}
}

// process handles one job. Acknowledgment is deferred so it happens exactly
// once no matter how processing ends; a bad image must not stall Join.
func process(job Job, queue *JobQueue, sink *ResultSink, opts Options, rep Reporter, updates chan<- ProgressUpdate) error {
	defer queue.Acknowledge()

	result, err := scaleOne(opts.Size, opts.Smooth, job)
	if err != nil {
		var terr *imgutil.TransformError
		if !errors.As(err, &terr) {
			return err
		}
		rep.Error(err.Error())
		if updates != nil {
			updates <- ProgressUpdate{SkippedDelta: 1}
		}
		return nil
	}

	sink.Put(result)

	verb := "scaled"
	update := ProgressUpdate{ScaledDelta: 1}
	if result.Copied {
		verb = "copied"
		update = ProgressUpdate{CopiedDelta: 1}
	}
	rep.Report(fmt.Sprintf("%s %s", verb, filepath.Base(result.Name)))
	if updates != nil {
		updates <- update
	}
	return nil
}

// scaleOne loads the source image, picks a plan for it, and writes the
// target file.
func scaleOne(size int, smooth bool, job Job) (Result, error) {
	img, err := imgutil.Load(job.Source)
	if err != nil {
		return Result{}, err
	}

	plan := ChoosePlan(img.Width(), img.Height(), size, smooth)
	switch plan.Strategy {
	case StrategySmooth:
		img = img.Scale(plan.Factor)
	case StrategySubsample:
		img = img.Subsample(plan.Stride)
	}

	if err := img.Save(job.Target); err != nil {
		return Result{}, err
	}
	if plan.Strategy == StrategyCopy {
		return Result{Copied: true, Name: job.Target}, nil
	}
	return Result{Scaled: true, Name: job.Target}, nil
}
