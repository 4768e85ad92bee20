// Package dataset loads a fixed-size batch of labeled images and derives
// the pairwise distance matrix and per-point thumbnail textures.
package dataset

import (
	"errors"
	"fmt"
	"image"
	"io"
	"math"
	"os"

	"github.com/gogpu/gg"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/gogpu/pointviz"
	"github.com/gogpu/pointviz/internal/mipmap"
	"github.com/gogpu/pointviz/internal/parallel"
	"github.com/gogpu/pointviz/render"
)

// ErrDestroyed is returned by operations on a destroyed Store.
var ErrDestroyed = errors.New("dataset: store destroyed")

// Store owns the labels, normalized pixels, distance matrix and thumbnail
// textures of one batch. All four are sized by the Store's Shape and are
// replaced together by a successful Load.
//
// Store is NOT safe for concurrent use.
type Store struct {
	dev   render.Device
	shape Shape
	pool  *parallel.WorkerPool

	labels    []int
	pixels    *mat.Dense
	distances *mat.Dense
	textures  []render.Texture
	loaded    bool
	destroyed bool
}

// Option configures a Store.
type Option func(*options)

type options struct {
	workers int
}

// WithWorkers sets the number of goroutines computing the distance matrix.
// Zero or negative uses GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// New creates an empty Store. Textures are allocated on dev.
func New(dev render.Device, shape Shape, opts ...Option) (*Store, error) {
	if dev == nil {
		return nil, errors.New("dataset: nil device")
	}
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	n, p := shape.Points, shape.Pixels()
	return &Store{
		dev:       dev,
		shape:     shape,
		pool:      parallel.NewWorkerPool(o.workers),
		labels:    make([]int, n),
		pixels:    mat.NewDense(n, p, nil),
		distances: mat.NewDense(n, n, nil),
		textures:  make([]render.Texture, n),
	}, nil
}

// Load reads the batch from an image file and a label file and replaces the
// Store's contents with it. It is Prepare followed by Commit.
//
// Both files are read in full before anything is replaced: a missing or
// short file returns an error wrapping pointviz.ErrIO and a texture
// allocation failure one wrapping pointviz.ErrGPUResource, and in both
// cases the previously loaded batch stays intact.
func (s *Store) Load(imagePath, labelPath string) error {
	b, err := s.Prepare(imagePath, labelPath)
	if err != nil {
		return err
	}
	return s.Commit(b)
}

// Batch is a fully read batch that has not replaced the Store's contents
// yet. It satisfies projection.Source, so a projection can run on it before
// the caller decides to Commit or Discard it.
type Batch struct {
	shape     Shape
	labels    []int
	pixels    *mat.Dense
	distances *mat.Dense
	textures  []render.Texture
}

// Len returns the number of points, N.
func (b *Batch) Len() int { return b.shape.Points }

// Dims returns the length of each pixel vector, P.
func (b *Batch) Dims() int { return b.shape.Pixels() }

// Labels returns a copy of the labels.
func (b *Batch) Labels() []int { return append([]int(nil), b.labels...) }

// Pixels returns the N×P matrix of normalized intensities.
func (b *Batch) Pixels() mat.Matrix { return b.pixels }

// Distances returns the N×N distance matrix.
func (b *Batch) Distances() mat.Matrix { return b.distances }

// Discard releases the batch's textures. It is a no-op on a committed or
// already discarded batch.
func (b *Batch) Discard() {
	destroyAll(b.textures)
	b.textures = nil
}

// Prepare reads and derives a batch without touching the Store's contents.
// Errors are those of Load. The caller must Commit or Discard the result.
func (s *Store) Prepare(imagePath, labelPath string) (*Batch, error) {
	if s.destroyed {
		return nil, ErrDestroyed
	}
	rawLabels, err := readSection(labelPath, LabelHeaderSize, s.shape.Points)
	if err != nil {
		return nil, fmt.Errorf("dataset: read labels: %w", err)
	}
	rawPixels, err := readSection(imagePath, ImageHeaderSize, s.shape.Points*s.shape.Pixels())
	if err != nil {
		return nil, fmt.Errorf("dataset: read images: %w", err)
	}
	b, err := s.build(rawLabels, rawPixels)
	if err != nil {
		return nil, err
	}
	pointviz.Logger().Debug("dataset: prepared",
		"images", imagePath, "labels", labelPath, "points", s.shape.Points)
	return b, nil
}

// Commit swaps b in and releases the textures of the batch it replaces.
// b must come from Prepare on the same Store and is consumed.
func (s *Store) Commit(b *Batch) error {
	if s.destroyed {
		b.Discard()
		return ErrDestroyed
	}
	if b.shape != s.shape || b.textures == nil {
		return errors.New("dataset: commit of a foreign or discarded batch")
	}
	old := s.textures
	s.labels, s.pixels, s.distances, s.textures = b.labels, b.pixels, b.distances, b.textures
	s.loaded = true
	b.textures = nil
	destroyAll(old)
	pointviz.Logger().Info("dataset: loaded", "points", s.shape.Points)
	return nil
}

// readSection returns n bytes following a header of skip bytes.
func readSection(path string, skip, n int) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", pointviz.ErrIO, err)
	}
	defer f.Close()

	buf := make([]byte, skip+n)
	if _, err := io.ReadFull(f, buf); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%w: %s: file shorter than %d bytes", pointviz.ErrIO, path, skip+n)
		}
		return nil, fmt.Errorf("%w: %s: %w", pointviz.ErrIO, path, err)
	}
	return buf[skip:], nil
}

// build derives labels, pixels, distances and textures from raw bytes.
func (s *Store) build(rawLabels, rawPixels []byte) (*Batch, error) {
	n, p := s.shape.Points, s.shape.Pixels()

	textures, err := s.createTextures(rawPixels)
	if err != nil {
		return nil, err
	}

	labels := make([]int, n)
	for i, l := range rawLabels {
		labels[i] = int(l)
	}
	data := make([]float64, n*p)
	for i, b := range rawPixels {
		data[i] = float64(b) / 255
	}
	pixels := mat.NewDense(n, p, data)
	return &Batch{
		shape:     s.shape,
		labels:    labels,
		pixels:    pixels,
		distances: computeDistances(s.pool, pixels),
		textures:  textures,
	}, nil
}

// createTextures uploads one grayscale thumbnail with a full mip chain per
// point. On failure every texture created so far is released.
func (s *Store) createTextures(rawPixels []byte) ([]render.Texture, error) {
	w, h, p := s.shape.Width, s.shape.Height, s.shape.Pixels()
	textures := make([]render.Texture, s.shape.Points)
	for i := range textures {
		img := &image.Gray{
			Pix:    rawPixels[i*p : (i+1)*p],
			Stride: w,
			Rect:   image.Rect(0, 0, w, h),
		}
		levels := mipmap.Generate(img).Bytes()
		desc := render.ThumbnailDescriptor(fmt.Sprintf("thumbnail %d", i), w, h)
		tex, err := s.dev.CreateTexture(desc, levels)
		if err != nil {
			destroyAll(textures)
			return nil, fmt.Errorf("dataset: thumbnail %d: %w", i, err)
		}
		textures[i] = tex
	}
	return textures, nil
}

func destroyAll(textures []render.Texture) {
	for i, t := range textures {
		if t != nil {
			t.Destroy()
			textures[i] = nil
		}
	}
}

// computeDistances returns d[i][j] = sqrt(pixels_i · pixels_j) for every
// ordered pair, the diagonal included. Rows are computed in parallel; each
// task writes only its own row and ForEach returns after all rows are done.
func computeDistances(pool *parallel.WorkerPool, pixels *mat.Dense) *mat.Dense {
	n, _ := pixels.Dims()
	out := make([]float64, n*n)
	pool.ForEach(n, func(i int) {
		ri := pixels.RawRowView(i)
		row := out[i*n : (i+1)*n]
		for j := range row {
			row[j] = math.Sqrt(floats.Dot(ri, pixels.RawRowView(j)))
		}
	})
	return mat.NewDense(n, n, out)
}

// Shape returns the batch shape.
func (s *Store) Shape() Shape { return s.shape }

// Len returns the number of points, N.
func (s *Store) Len() int { return s.shape.Points }

// Dims returns the length of each pixel vector, P.
func (s *Store) Dims() int { return s.shape.Pixels() }

// Loaded reports whether a Load has succeeded.
func (s *Store) Loaded() bool { return s.loaded }

// Labels returns a copy of the labels.
func (s *Store) Labels() []int {
	return append([]int(nil), s.labels...)
}

// Pixels returns the N×P matrix of normalized intensities. The matrix is
// replaced, not modified, by Load; callers must not write to it.
func (s *Store) Pixels() mat.Matrix { return s.pixels }

// Distances returns the N×N distance matrix. Callers must not write to it.
func (s *Store) Distances() mat.Matrix { return s.distances }

// Point describes one data point of the batch.
type Point struct {
	Index   int
	Label   int
	Color   gg.RGBA
	Texture render.Texture
}

// Point returns the label, display color and thumbnail of point i.
func (s *Store) Point(i int) (Point, error) {
	if i < 0 || i >= s.shape.Points {
		return Point{}, fmt.Errorf("%w: point %d not in [0, %d)", pointviz.ErrIndexOutOfRange, i, s.shape.Points)
	}
	return Point{
		Index:   i,
		Label:   s.labels[i],
		Color:   pointviz.LabelColor(s.labels[i]),
		Texture: s.textures[i],
	}, nil
}

// Thumbnail returns point i as an 8-bit grayscale image rebuilt from its
// normalized pixels.
func (s *Store) Thumbnail(i int) (*image.Gray, error) {
	if i < 0 || i >= s.shape.Points {
		return nil, fmt.Errorf("%w: point %d not in [0, %d)", pointviz.ErrIndexOutOfRange, i, s.shape.Points)
	}
	img := image.NewGray(image.Rect(0, 0, s.shape.Width, s.shape.Height))
	for k, v := range s.pixels.RawRowView(i) {
		img.Pix[k] = uint8(math.Round(v * 255))
	}
	return img, nil
}

// Destroy releases all textures and the worker pool. Calling it again is a
// no-op.
func (s *Store) Destroy() {
	if s.destroyed {
		return
	}
	s.destroyed = true
	destroyAll(s.textures)
	s.pool.Close()
}
