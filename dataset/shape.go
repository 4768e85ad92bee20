package dataset

import (
	"errors"
	"fmt"
)

// File layout of the label and image files.
const (
	LabelHeaderSize = 8
	ImageHeaderSize = 16

	// MaxPoints is the number of images in the largest supported file.
	MaxPoints = 60000
)

// ErrInvalidShape is returned for a Shape with non-positive or oversized
// dimensions.
var ErrInvalidShape = errors.New("dataset: invalid shape")

// Shape fixes the batch size and image size of a Store.
type Shape struct {
	// Points is the number of images read from the front of the files.
	Points int

	// Width and Height are the image dimensions in pixels.
	Width  int
	Height int
}

// DefaultShape returns a batch of ten 28×28 images.
func DefaultShape() Shape {
	return Shape{Points: 10, Width: 28, Height: 28}
}

// Pixels returns the length of one pixel vector, Width*Height.
func (s Shape) Pixels() int {
	return s.Width * s.Height
}

// Validate checks that the shape describes a readable batch.
func (s Shape) Validate() error {
	if s.Points <= 0 || s.Points > MaxPoints {
		return fmt.Errorf("%w: points=%d, want 1..%d", ErrInvalidShape, s.Points, MaxPoints)
	}
	if s.Width <= 0 || s.Height <= 0 {
		return fmt.Errorf("%w: image %dx%d", ErrInvalidShape, s.Width, s.Height)
	}
	return nil
}
