package scale

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"squish/pkg/imgutil"
)

type recordingReporter struct {
	mu     sync.Mutex
	lines  []string
	errors []string
}

func (r *recordingReporter) Report(message string) {
	r.mu.Lock()
	r.lines = append(r.lines, message)
	r.mu.Unlock()
}

func (r *recordingReporter) Error(message string) {
	r.mu.Lock()
	r.errors = append(r.errors, message)
	r.mu.Unlock()
}

func (r *recordingReporter) errorCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.errors)
}

func writePNG(t *testing.T, path string, width, height int) {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: uint8((x + y) % 256), A: 0xff})
		}
	}

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
}

func TestRunResizesDirectory(t *testing.T) {
	source := t.TempDir()
	target := t.TempDir()

	// Four images fit the bound, six do not.
	for i := 0; i < 4; i++ {
		writePNG(t, filepath.Join(source, fmt.Sprintf("small%d.png", i)), 300, 200)
	}
	for i := 0; i < 6; i++ {
		writePNG(t, filepath.Join(source, fmt.Sprintf("big%d.png", i)), 800, 500)
	}

	rep := &recordingReporter{}
	summary, err := Run(context.Background(), Options{
		Size:    400,
		Source:  source,
		Target:  target,
		Workers: 4,
	}, rep, nil)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if summary.Todo != 10 || summary.Copied != 4 || summary.Scaled != 6 {
		t.Fatalf("summary = %+v, want todo 10 copied 4 scaled 6", summary)
	}
	if summary.Canceled || summary.Skipped() != 0 {
		t.Fatalf("summary = %+v, want clean finish", summary)
	}

	// Every target exists and the resized ones fit the bound.
	for i := 0; i < 6; i++ {
		img, err := imgutil.Load(filepath.Join(target, fmt.Sprintf("big%d.png", i)))
		if err != nil {
			t.Fatalf("load target: %v", err)
		}
		if img.Width() > 400 || img.Height() > 400 {
			t.Fatalf("target big%d is %dx%d, exceeds bound", i, img.Width(), img.Height())
		}
	}
}

func TestRunSmoothScaling(t *testing.T) {
	source := t.TempDir()
	target := t.TempDir()
	writePNG(t, filepath.Join(source, "tall.png"), 800, 1600)

	rep := &recordingReporter{}
	summary, err := Run(context.Background(), Options{
		Size:    400,
		Smooth:  true,
		Source:  source,
		Target:  target,
		Workers: 2,
	}, rep, nil)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if summary.Scaled != 1 {
		t.Fatalf("summary = %+v, want one scaled", summary)
	}

	img, err := imgutil.Load(filepath.Join(target, "tall.png"))
	if err != nil {
		t.Fatalf("load target: %v", err)
	}
	// factor = min(400/800, 400/1600) = 0.25
	if img.Width() != 200 || img.Height() != 400 {
		t.Fatalf("target is %dx%d, want 200x400", img.Width(), img.Height())
	}
}

func TestRunSkipsBadImages(t *testing.T) {
	source := t.TempDir()
	target := t.TempDir()

	for i := 0; i < 8; i++ {
		writePNG(t, filepath.Join(source, fmt.Sprintf("good%d.png", i)), 100, 100)
	}
	for i := 0; i < 2; i++ {
		path := filepath.Join(source, fmt.Sprintf("bad%d.png", i))
		if err := os.WriteFile(path, []byte("definitely not a png"), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	rep := &recordingReporter{}
	summary, err := Run(context.Background(), Options{
		Size:    400,
		Source:  source,
		Target:  target,
		Workers: 4,
	}, rep, nil)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if summary.Todo != 10 || summary.Copied+summary.Scaled != 8 {
		t.Fatalf("summary = %+v, want todo 10 with 8 results", summary)
	}
	if summary.Skipped() != 2 {
		t.Fatalf("skipped = %d, want 2", summary.Skipped())
	}
	if rep.errorCount() != 2 {
		t.Fatalf("reported %d error lines, want 2", rep.errorCount())
	}
}

func TestRunProgressUpdates(t *testing.T) {
	source := t.TempDir()
	target := t.TempDir()
	for i := 0; i < 5; i++ {
		writePNG(t, filepath.Join(source, fmt.Sprintf("img%d.png", i)), 600, 600)
	}

	updates := make(chan ProgressUpdate, 64)
	summary, err := Run(context.Background(), Options{
		Size:    400,
		Source:  source,
		Target:  target,
		Workers: 3,
	}, &recordingReporter{}, updates)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	close(updates)

	var total, copied, scaled, skipped int
	for update := range updates {
		total += update.TotalDelta
		copied += update.CopiedDelta
		scaled += update.ScaledDelta
		skipped += update.SkippedDelta
	}
	if total != 5 || copied+scaled != 5 || skipped != 0 {
		t.Fatalf("deltas total=%d copied=%d scaled=%d skipped=%d, want 5 jobs all scaled",
			total, copied, scaled, skipped)
	}
	if summary.Scaled != 5 {
		t.Fatalf("summary = %+v, want 5 scaled", summary)
	}
}

func TestRunValidatesOptions(t *testing.T) {
	dir := t.TempDir()
	rep := &recordingReporter{}

	if _, err := Run(context.Background(), Options{Size: 400, Source: dir, Target: dir + "2", Workers: 0}, rep, nil); err == nil {
		t.Fatal("expected error for zero workers")
	}
	if _, err := Run(context.Background(), Options{Size: 0, Source: dir, Target: dir + "2", Workers: 1}, rep, nil); err == nil {
		t.Fatal("expected error for zero size")
	}
	if _, err := Run(context.Background(), Options{Size: 400, Source: dir, Target: dir, Workers: 1}, rep, nil); err == nil {
		t.Fatal("expected error for identical source and target")
	}
	if _, err := Run(context.Background(), Options{Size: 400, Source: filepath.Join(dir, "missing"), Target: dir + "2", Workers: 1}, rep, nil); err == nil {
		t.Fatal("expected error for unreadable source")
	}
}

func TestRunCanceled(t *testing.T) {
	// Manual temp dirs: abandoned workers may still write into the target
	// after Run returns, so cleanup must tolerate failure.
	source, err := os.MkdirTemp("", "squish-src-")
	if err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	target, err := os.MkdirTemp("", "squish-dst-")
	if err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	defer func() {
		_ = os.RemoveAll(source)
		_ = os.RemoveAll(target)
	}()

	for i := 0; i < 8; i++ {
		writePNG(t, filepath.Join(source, fmt.Sprintf("img%d.png", i)), 1200, 900)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rep := &recordingReporter{}
	summary, err := Run(ctx, Options{
		Size:    400,
		Source:  source,
		Target:  target,
		Workers: 2,
	}, rep, nil)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if !summary.Canceled {
		t.Fatal("expected canceled summary")
	}
	if summary.Todo != 8 {
		t.Fatalf("todo = %d, want 8", summary.Todo)
	}
	if summary.Copied+summary.Scaled > summary.Todo {
		t.Fatalf("summary = %+v, results exceed todo", summary)
	}
}

func TestSummaryDescribe(t *testing.T) {
	tests := []struct {
		summary Summary
		workers int
		want    string
	}{
		{Summary{Todo: 10, Copied: 4, Scaled: 6}, 4, "copied 4 scaled 6 using 4 processes"},
		{Summary{Todo: 10, Copied: 4, Scaled: 4}, 2, "copied 4 scaled 4 skipped 2 using 2 processes"},
		{Summary{Todo: 10, Copied: 1, Scaled: 2, Canceled: true}, 8, "copied 1 scaled 2 skipped 7 using 8 processes [canceled]"},
	}
	for _, tt := range tests {
		if got := tt.summary.Describe(tt.workers); got != tt.want {
			t.Fatalf("Describe = %q, want %q", got, tt.want)
		}
	}
}

func TestWorkerReportLinesUseBaseNames(t *testing.T) {
	source := t.TempDir()
	target := t.TempDir()
	writePNG(t, filepath.Join(source, "photo.png"), 100, 100)

	rep := &recordingReporter{}
	if _, err := Run(context.Background(), Options{
		Size:    400,
		Source:  source,
		Target:  target,
		Workers: 1,
	}, rep, nil); err != nil {
		t.Fatalf("run: %v", err)
	}

	rep.mu.Lock()
	defer rep.mu.Unlock()
	found := false
	for _, line := range rep.lines {
		if line == "copied photo.png" {
			found = true
		}
		if strings.Contains(line, string(filepath.Separator)) {
			t.Fatalf("report line contains a path: %q", line)
		}
	}
	if !found {
		t.Fatalf("no 'copied photo.png' line in %q", rep.lines)
	}
}
