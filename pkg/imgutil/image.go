package imgutil

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// TransformError reports a per-image failure: the file could not be read,
// decoded, transformed, or written. It is the only error kind a batch
// recovers from; one bad image never aborts the run.
type TransformError struct {
	Op   string
	Path string
	Err  error
}

func (e *TransformError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *TransformError) Unwrap() error { return e.Err }

// Image is a decoded image together with the path it was loaded from.
type Image struct {
	path string
	img  image.Image
}

// Load decodes the image at path. EXIF orientation is applied during
// decoding, so Width and Height reflect the image as displayed.
func Load(path string) (*Image, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, &TransformError{Op: "load", Path: path, Err: err}
	}
	return &Image{path: path, img: img}, nil
}

func (im *Image) Width() int  { return im.img.Bounds().Dx() }
func (im *Image) Height() int { return im.img.Bounds().Dy() }

// Scale resamples the image by factor (0 < factor <= 1) with Lanczos
// filtering. Slow but good for text.
func (im *Image) Scale(factor float64) *Image {
	width := int(float64(im.Width()) * factor)
	if width < 1 {
		width = 1
	}
	height := int(float64(im.Height()) * factor)
	if height < 1 {
		height = 1
	}
	return &Image{path: im.path, img: imaging.Resize(im.img, width, height, imaging.Lanczos)}
}

// Subsample keeps every stride-th pixel in each dimension, so the output is
// ceil(dim/stride) pixels along each axis. Fast and blocky.
func (im *Image) Subsample(stride int) *Image {
	if stride < 1 {
		stride = 1
	}
	width := (im.Width() + stride - 1) / stride
	height := (im.Height() + stride - 1) / stride
	return &Image{path: im.path, img: imaging.Resize(im.img, width, height, imaging.NearestNeighbor)}
}

// Save encodes the image to path; the format follows the file extension.
func (im *Image) Save(path string) error {
	if err := imaging.Save(im.img, path); err != nil {
		return &TransformError{Op: "save", Path: path, Err: err}
	}
	return nil
}
