package scale

import "fmt"

// Options configures one batch run. Source and Target must be distinct
// absolute paths; Workers and Size must be positive.
type Options struct {
	Size    int
	Smooth  bool
	Source  string
	Target  string
	Workers int
}

// Job is one unit of work: produce Target from Source.
type Job struct {
	Source string
	Target string
}

// Result records one successfully processed image. Exactly one of
// Copied/Scaled is set. Failed images produce no Result.
type Result struct {
	Copied bool
	Scaled bool
	Name   string
}

// Summary totals one batch. Jobs that failed appear only as the gap
// between Todo and Copied+Scaled.
type Summary struct {
	Todo     int
	Copied   int
	Scaled   int
	Canceled bool
}

// Skipped counts jobs whose image failed to process.
func (s Summary) Skipped() int { return s.Todo - s.Copied - s.Scaled }

// Describe renders the end-of-batch status line.
func (s Summary) Describe(workers int) string {
	msg := fmt.Sprintf("copied %d scaled %d ", s.Copied, s.Scaled)
	if skipped := s.Skipped(); skipped > 0 {
		msg += fmt.Sprintf("skipped %d ", skipped)
	}
	msg += fmt.Sprintf("using %d processes", workers)
	if s.Canceled {
		msg += " [canceled]"
	}
	return msg
}

// Reporter receives human-readable progress and error lines from the batch.
// Implementations must be safe for concurrent use by many workers.
type Reporter interface {
	Report(message string)
	Error(message string)
}

// ProgressUpdate carries counter deltas, and optionally a display line, to
// whatever is watching the batch.
type ProgressUpdate struct {
	TotalDelta   int
	CopiedDelta  int
	ScaledDelta  int
	SkippedDelta int
	Line         string
	IsError      bool
}
