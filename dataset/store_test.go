package dataset

import (
	"errors"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"

	"github.com/gogpu/pointviz"
	"github.com/gogpu/pointviz/render"
)

// writeFiles writes a label and an image file with the standard headers and
// returns their paths.
func writeFiles(t *testing.T, labels, pixels []byte) (imagePath, labelPath string) {
	t.Helper()
	dir := t.TempDir()
	imagePath = filepath.Join(dir, "images.dat")
	labelPath = filepath.Join(dir, "labels.dat")
	img := append(make([]byte, ImageHeaderSize), pixels...)
	lbl := append(make([]byte, LabelHeaderSize), labels...)
	if err := os.WriteFile(imagePath, img, 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(labelPath, lbl, 0o600); err != nil {
		t.Fatal(err)
	}
	return imagePath, labelPath
}

func randomPixels(r *rand.Rand, n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(r.IntN(256))
	}
	return b
}

var smallShape = Shape{Points: 3, Width: 4, Height: 2}

func newStore(t *testing.T, dev render.Device, shape Shape) *Store {
	t.Helper()
	s, err := New(dev, shape, WithWorkers(2))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(s.Destroy)
	return s
}

func TestNew_InvalidShape(t *testing.T) {
	tests := []struct {
		name  string
		shape Shape
	}{
		{"no points", Shape{Points: 0, Width: 28, Height: 28}},
		{"too many points", Shape{Points: MaxPoints + 1, Width: 28, Height: 28}},
		{"no width", Shape{Points: 10, Width: 0, Height: 28}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(render.NewSoftwareDevice(), tt.shape)
			if !errors.Is(err, ErrInvalidShape) {
				t.Errorf("New() error = %v, want ErrInvalidShape", err)
			}
		})
	}
}

func TestStore_EmptyBeforeLoad(t *testing.T) {
	s := newStore(t, render.NewSoftwareDevice(), DefaultShape())

	if s.Loaded() {
		t.Error("Loaded() = true before Load")
	}
	if s.Len() != 10 || s.Dims() != 784 {
		t.Errorf("Len(), Dims() = %d, %d, want 10, 784", s.Len(), s.Dims())
	}
	if r, c := s.Distances().Dims(); r != 10 || c != 10 {
		t.Errorf("Distances().Dims() = %d, %d, want 10, 10", r, c)
	}
}

func TestStore_Load(t *testing.T) {
	dev := render.NewSoftwareDevice()
	s := newStore(t, dev, smallShape)

	pixels := []byte{
		0, 255, 0, 0, 0, 0, 0, 51,
		255, 255, 255, 255, 255, 255, 255, 255,
		0, 0, 0, 0, 0, 0, 0, 0,
	}
	img, lbl := writeFiles(t, []byte{7, 1, 12}, pixels)
	if err := s.Load(img, lbl); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if got := s.Labels(); got[0] != 7 || got[1] != 1 || got[2] != 12 {
		t.Errorf("Labels() = %v, want [7 1 12]", got)
	}
	if got := s.Pixels().At(0, 1); got != 1 {
		t.Errorf("pixel(0,1) = %v, want 1", got)
	}
	if got := s.Pixels().At(0, 7); got != 0.2 {
		t.Errorf("pixel(0,7) = %v, want 0.2", got)
	}
	if dev.Live() != 3 {
		t.Errorf("Live() = %d, want 3", dev.Live())
	}

	p, err := s.Point(1)
	if err != nil {
		t.Fatalf("Point(1) error = %v", err)
	}
	if p.Label != 1 || p.Color != pointviz.Palette[1] {
		t.Errorf("Point(1) = label %d color %v, want label 1 color %v", p.Label, p.Color, pointviz.Palette[1])
	}
	tex := p.Texture.(*render.SoftwareTexture)
	if tex.MipLevelCount() != 3 {
		t.Errorf("MipLevelCount() = %d, want 3", tex.MipLevelCount())
	}
	if got := tex.Level(0); string(got) != string(pixels[8:16]) {
		t.Errorf("thumbnail level 0 = %v, want %v", got, pixels[8:16])
	}
}

func TestStore_DistanceDiagonal(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	shape := Shape{Points: 6, Width: 5, Height: 5}
	s := newStore(t, render.NewSoftwareDevice(), shape)
	img, lbl := writeFiles(t, make([]byte, 6), randomPixels(r, 6*25))
	if err := s.Load(img, lbl); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	for i := range shape.Points {
		var sum float64
		for k := range shape.Pixels() {
			v := s.Pixels().At(i, k)
			sum += v * v
		}
		want := math.Sqrt(sum)
		if got := s.Distances().At(i, i); math.Abs(got-want) > 1e-12 {
			t.Errorf("distances[%d][%d] = %v, want %v", i, i, got, want)
		}
	}
}

func TestStore_DistanceSymmetric(t *testing.T) {
	r := rand.New(rand.NewPCG(3, 4))
	shape := Shape{Points: 9, Width: 7, Height: 3}
	s := newStore(t, render.NewSoftwareDevice(), shape)
	img, lbl := writeFiles(t, make([]byte, 9), randomPixels(r, 9*21))
	if err := s.Load(img, lbl); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	d := s.Distances()
	for i := range shape.Points {
		for j := range shape.Points {
			if d.At(i, j) != d.At(j, i) {
				t.Errorf("distances[%d][%d] = %v, distances[%d][%d] = %v", i, j, d.At(i, j), j, i, d.At(j, i))
			}
		}
	}
}

func TestStore_DistanceIsSqrtDot(t *testing.T) {
	// Orthogonal images have zero distance; identical ones do not.
	s := newStore(t, render.NewSoftwareDevice(), Shape{Points: 2, Width: 2, Height: 1})
	img, lbl := writeFiles(t, []byte{0, 1}, []byte{255, 0, 0, 255})
	if err := s.Load(img, lbl); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := s.Distances().At(0, 1); got != 0 {
		t.Errorf("distances[0][1] = %v, want 0", got)
	}
	if got := s.Distances().At(0, 0); got != 1 {
		t.Errorf("distances[0][0] = %v, want 1", got)
	}
}

func TestStore_ReloadReplacesEverything(t *testing.T) {
	r := rand.New(rand.NewPCG(5, 6))
	dev := render.NewSoftwareDevice()
	s := newStore(t, dev, smallShape)

	img1, lbl1 := writeFiles(t, []byte{1, 2, 3}, randomPixels(r, 24))
	if err := s.Load(img1, lbl1); err != nil {
		t.Fatalf("first Load() error = %v", err)
	}
	first, _ := s.Point(0)

	pixels2 := randomPixels(r, 24)
	img2, lbl2 := writeFiles(t, []byte{4, 5, 6}, pixels2)
	if err := s.Load(img2, lbl2); err != nil {
		t.Fatalf("second Load() error = %v", err)
	}

	if got := s.Labels(); got[0] != 4 || got[1] != 5 || got[2] != 6 {
		t.Errorf("Labels() = %v, want [4 5 6]", got)
	}
	for i := range 3 {
		for k := range 8 {
			if got, want := s.Pixels().At(i, k), float64(pixels2[i*8+k])/255; got != want {
				t.Fatalf("pixel(%d,%d) = %v, want %v", i, k, got, want)
			}
		}
	}
	if !first.Texture.(*render.SoftwareTexture).Destroyed() {
		t.Error("texture from the first load was not released")
	}
	if dev.Live() != 3 || dev.Created() != 6 {
		t.Errorf("Live(), Created() = %d, %d, want 3, 6", dev.Live(), dev.Created())
	}
}

func TestStore_PrepareDiscardCommit(t *testing.T) {
	r := rand.New(rand.NewPCG(11, 12))
	dev := render.NewSoftwareDevice()
	s := newStore(t, dev, smallShape)
	img, lbl := writeFiles(t, []byte{1, 2, 3}, randomPixels(r, 24))
	if err := s.Load(img, lbl); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	before := s.Distances().At(0, 1)

	img2, lbl2 := writeFiles(t, []byte{4, 5, 6}, randomPixels(r, 24))
	b, err := s.Prepare(img2, lbl2)
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	if b.Len() != 3 || b.Dims() != 8 {
		t.Errorf("Batch Len(), Dims() = %d, %d, want 3, 8", b.Len(), b.Dims())
	}
	if got := b.Labels(); got[0] != 4 {
		t.Errorf("Batch.Labels() = %v, want [4 5 6]", got)
	}
	if got := s.Labels(); got[0] != 1 {
		t.Errorf("Labels() = %v after Prepare, want previous [1 2 3]", got)
	}
	if got := s.Distances().At(0, 1); got != before {
		t.Errorf("distances changed by Prepare: %v, want %v", got, before)
	}
	if dev.Live() != 6 {
		t.Errorf("Live() after Prepare = %d, want 6", dev.Live())
	}

	b.Discard()
	b.Discard()
	if dev.Live() != 3 {
		t.Errorf("Live() after Discard = %d, want 3", dev.Live())
	}
	if err := s.Commit(b); err == nil {
		t.Error("Commit() of a discarded batch error = nil")
	}
	if got := s.Labels(); got[0] != 1 {
		t.Errorf("Labels() = %v after rejected Commit, want previous [1 2 3]", got)
	}

	b, err = s.Prepare(img2, lbl2)
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	if err := s.Commit(b); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}
	if got := s.Labels(); got[0] != 4 || got[2] != 6 {
		t.Errorf("Labels() after Commit = %v, want [4 5 6]", got)
	}
	b.Discard()
	if dev.Live() != 3 {
		t.Errorf("Live() after Commit = %d, want 3", dev.Live())
	}
}

func TestStore_LoadIOErrorKeepsPrevious(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 8))
	dev := render.NewSoftwareDevice()
	s := newStore(t, dev, smallShape)
	img, lbl := writeFiles(t, []byte{1, 2, 3}, randomPixels(r, 24))
	if err := s.Load(img, lbl); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	before := s.Distances().At(1, 2)

	shortImg, shortLbl := writeFiles(t, []byte{9, 9, 9}, randomPixels(r, 23))
	missing := filepath.Join(t.TempDir(), "missing.dat")

	tests := []struct {
		name     string
		img, lbl string
	}{
		{"missing labels", img, missing},
		{"missing images", missing, lbl},
		{"short images", shortImg, shortLbl},
		{"short labels", img, writeShort(t)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.Load(tt.img, tt.lbl)
			if !errors.Is(err, pointviz.ErrIO) {
				t.Fatalf("Load() error = %v, want ErrIO", err)
			}
			if got := s.Labels(); got[0] != 1 || got[2] != 3 {
				t.Errorf("Labels() = %v after failed load, want previous [1 2 3]", got)
			}
			if got := s.Distances().At(1, 2); got != before {
				t.Errorf("distances changed after failed load: %v, want %v", got, before)
			}
			if dev.Live() != 3 {
				t.Errorf("Live() = %d, want 3", dev.Live())
			}
		})
	}
}

func writeShort(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "labels.dat")
	if err := os.WriteFile(path, make([]byte, LabelHeaderSize+2), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestStore_TextureFailureKeepsPrevious(t *testing.T) {
	r := rand.New(rand.NewPCG(9, 10))
	dev := render.NewSoftwareDevice(render.WithMaxTextures(4))
	s := newStore(t, dev, smallShape)

	img, lbl := writeFiles(t, []byte{1, 2, 3}, randomPixels(r, 24))
	if err := s.Load(img, lbl); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	img2, lbl2 := writeFiles(t, []byte{4, 5, 6}, randomPixels(r, 24))
	err := s.Load(img2, lbl2)
	if !errors.Is(err, pointviz.ErrGPUResource) {
		t.Fatalf("Load() error = %v, want ErrGPUResource", err)
	}
	if got := s.Labels(); got[0] != 1 {
		t.Errorf("Labels() = %v, want previous batch", got)
	}
	if dev.Live() != 3 {
		t.Errorf("Live() = %d, want 3 (partial textures leaked)", dev.Live())
	}
	p, _ := s.Point(0)
	if p.Texture.(*render.SoftwareTexture).Destroyed() {
		t.Error("previous texture destroyed by a failed load")
	}
}

func TestStore_PointOutOfRange(t *testing.T) {
	s := newStore(t, render.NewSoftwareDevice(), smallShape)
	for _, i := range []int{-1, 3, 100} {
		if _, err := s.Point(i); !errors.Is(err, pointviz.ErrIndexOutOfRange) {
			t.Errorf("Point(%d) error = %v, want ErrIndexOutOfRange", i, err)
		}
	}
}

func TestStore_Thumbnail(t *testing.T) {
	r := rand.New(rand.NewPCG(5, 6))
	s := newStore(t, render.NewSoftwareDevice(), smallShape)
	pixels := randomPixels(r, 24)
	img, lbl := writeFiles(t, []byte{0, 1, 2}, pixels)
	if err := s.Load(img, lbl); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	thumb, err := s.Thumbnail(2)
	if err != nil {
		t.Fatalf("Thumbnail(2) error = %v", err)
	}
	if b := thumb.Bounds(); b.Dx() != 4 || b.Dy() != 2 {
		t.Errorf("Thumbnail(2).Bounds() = %v, want 4x2", b)
	}
	if string(thumb.Pix) != string(pixels[16:24]) {
		t.Errorf("Thumbnail(2).Pix = %v, want %v", thumb.Pix, pixels[16:24])
	}
	if _, err := s.Thumbnail(3); !errors.Is(err, pointviz.ErrIndexOutOfRange) {
		t.Errorf("Thumbnail(3) error = %v, want ErrIndexOutOfRange", err)
	}
}

func TestStore_DestroyIdempotent(t *testing.T) {
	r := rand.New(rand.NewPCG(11, 12))
	dev := render.NewSoftwareDevice()
	s, err := New(dev, smallShape)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	img, lbl := writeFiles(t, []byte{1, 2, 3}, randomPixels(r, 24))
	if err := s.Load(img, lbl); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	s.Destroy()
	s.Destroy()
	if dev.Live() != 0 {
		t.Errorf("Live() = %d after Destroy, want 0", dev.Live())
	}
	if err := s.Load(img, lbl); !errors.Is(err, ErrDestroyed) {
		t.Errorf("Load() after Destroy error = %v, want ErrDestroyed", err)
	}
}

func TestFilesIn(t *testing.T) {
	tests := []struct {
		name string
		f    Files
		dir  string
		want Files
	}{
		{"empty dir", Builtin[0], "", Builtin[0]},
		{
			"relative",
			Files{Name: "x", Images: "a.dat", Labels: "b.dat"},
			"data",
			Files{Name: "x", Images: filepath.Join("data", "a.dat"), Labels: filepath.Join("data", "b.dat")},
		},
		{
			"absolute kept",
			Files{Name: "x", Images: "/abs/a.dat", Labels: "b.dat"},
			"data",
			Files{Name: "x", Images: "/abs/a.dat", Labels: filepath.Join("data", "b.dat")},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.f.In(tt.dir); got != tt.want {
				t.Errorf("In(%q) = %+v, want %+v", tt.dir, got, tt.want)
			}
		})
	}
}
