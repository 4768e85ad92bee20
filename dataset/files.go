package dataset

import "path/filepath"

// Files names the image and label files of one dataset.
type Files struct {
	Name   string `toml:"name"`
	Images string `toml:"images"`
	Labels string `toml:"labels"`
}

// Builtin lists the datasets shipped with the viewer.
var Builtin = []Files{
	{Name: "MNIST", Images: "images.dat", Labels: "labels.dat"},
	{Name: "Fashion-MNIST", Images: "imagesf.dat", Labels: "labelsf.dat"},
}

// In resolves relative file names against dir.
func (f Files) In(dir string) Files {
	if dir == "" {
		return f
	}
	if !filepath.IsAbs(f.Images) {
		f.Images = filepath.Join(dir, f.Images)
	}
	if !filepath.IsAbs(f.Labels) {
		f.Labels = filepath.Join(dir, f.Labels)
	}
	return f
}

// LoadFiles loads the batch named by f.
func (s *Store) LoadFiles(f Files) error {
	return s.Load(f.Images, f.Labels)
}

// PrepareFiles prepares the batch named by f.
func (s *Store) PrepareFiles(f Files) (*Batch, error) {
	return s.Prepare(f.Images, f.Labels)
}
