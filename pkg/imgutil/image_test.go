package imgutil

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func writePNG(t *testing.T, path string, width, height int) {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), A: 0xff})
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

func TestLoadDimensions(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "wide.png")
	writePNG(t, src, 800, 400)

	img, err := Load(src)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if img.Width() != 800 || img.Height() != 400 {
		t.Fatalf("got %dx%d, want 800x400", img.Width(), img.Height())
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.png"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	var terr *TransformError
	if !errors.As(err, &terr) {
		t.Fatalf("expected TransformError, got %T: %v", err, err)
	}
	if terr.Op != "load" {
		t.Fatalf("expected load op, got %q", terr.Op)
	}
}

func TestLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junk.png")
	if err := os.WriteFile(path, []byte("not an image at all"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	_, err := Load(path)
	var terr *TransformError
	if !errors.As(err, &terr) {
		t.Fatalf("expected TransformError, got %T: %v", err, err)
	}
}

func TestSubsampleStride(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "wide.png")
	writePNG(t, src, 800, 400)

	img, err := Load(src)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	small := img.Subsample(2)
	if small.Width() != 400 || small.Height() != 200 {
		t.Fatalf("got %dx%d, want 400x200", small.Width(), small.Height())
	}

	// Odd dimensions round up: every stride-th pixel includes the first.
	odd := img.Subsample(3)
	if odd.Width() != 267 || odd.Height() != 134 {
		t.Fatalf("got %dx%d, want 267x134", odd.Width(), odd.Height())
	}
}

func TestScaleFactor(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "tall.png")
	writePNG(t, src, 800, 1600)

	img, err := Load(src)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	small := img.Scale(0.25)
	if small.Width() != 200 || small.Height() != 400 {
		t.Fatalf("got %dx%d, want 200x400", small.Width(), small.Height())
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "in.png")
	dst := filepath.Join(dir, "out.png")
	writePNG(t, src, 100, 50)

	img, err := Load(src)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := img.Save(dst); err != nil {
		t.Fatalf("save: %v", err)
	}

	saved, err := Load(dst)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if saved.Width() != 100 || saved.Height() != 50 {
		t.Fatalf("got %dx%d, want 100x50", saved.Width(), saved.Height())
	}
}

func TestSaveUnknownExtension(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "in.png")
	writePNG(t, src, 10, 10)

	img, err := Load(src)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	err = img.Save(filepath.Join(dir, "out.wat"))
	var terr *TransformError
	if !errors.As(err, &terr) {
		t.Fatalf("expected TransformError, got %T: %v", err, err)
	}
	if terr.Op != "save" {
		t.Fatalf("expected save op, got %q", terr.Op)
	}
}

func TestSniffFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "img.png")
	writePNG(t, src, 4, 4)

	kind, err := SniffFile(src)
	if err != nil {
		t.Fatalf("sniff: %v", err)
	}
	if kind != KindPNG {
		t.Fatalf("got %s, want png", kind)
	}

	junk := filepath.Join(dir, "junk.bin")
	if err := os.WriteFile(junk, []byte("zzzzzzzz"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	kind, err = SniffFile(junk)
	if err != nil {
		t.Fatalf("sniff: %v", err)
	}
	if kind != KindUnknown {
		t.Fatalf("got %s, want unknown", kind)
	}
}
