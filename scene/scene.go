// Package scene holds one marker per data point and renders them into a
// visible color target and an integer-exact ID target used for picking.
package scene

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"github.com/chewxy/math32"
	"github.com/gogpu/gg"
	"github.com/gogpu/gpucontext"

	"github.com/gogpu/pointviz"
	"github.com/gogpu/pointviz/geom"
	"github.com/gogpu/pointviz/render"
)

// Scene errors.
var (
	// ErrZeroID is returned by AddData for id 0, which means "no marker".
	ErrZeroID = errors.New("scene: marker id 0 is reserved")

	// ErrDuplicateID is returned by AddData when the id is already in use.
	ErrDuplicateID = errors.New("scene: duplicate marker id")

	// ErrDestroyed is returned by operations on a destroyed scene.
	ErrDestroyed = errors.New("scene: destroyed")
)

// Marker radius bounds in pixels.
const (
	MinMarkerRadius = 1
	MaxMarkerRadius = 64
)

// DefaultMarkerSize is the marker radius at clip depth w = 1, as a fraction
// of half the target height.
const DefaultMarkerSize = 0.15

// DefaultBackground is the clear color of the color target.
var DefaultBackground = gg.RGB(0.1, 0.1, 0.12)

// minClipW rejects markers at or behind the eye.
const minClipW = 1e-6

// Marker is one renderable point.
type Marker struct {
	Pos   geom.Vec3
	Color gg.RGBA
	ID    uint32
}

// Picker resolves a screen coordinate to a point index.
type Picker interface {
	// ResolvePick returns the index of the point drawn at (x, y), or false
	// when no point is there.
	ResolvePick(x, y int) (int, bool)
}

// Option configures a Scene.
type Option func(*Scene)

// WithMarkerSize sets the marker radius at clip depth w = 1, as a fraction
// of half the target height.
func WithMarkerSize(size float32) Option {
	return func(s *Scene) {
		if size > 0 {
			s.size = size
		}
	}
}

// WithBackground sets the clear color of the color target.
func WithBackground(bg gg.RGBA) Option {
	return func(s *Scene) {
		s.bg = bg
	}
}

// Scene renders markers into a color target and an ID target of the same
// size.
//
// Scene is NOT safe for concurrent use.
type Scene struct {
	color *render.ColorTarget
	ids   *render.IDTarget

	// markers in insertion order; used tracks their ids.
	markers []Marker
	used    map[uint32]struct{}

	size float32
	bg   gg.RGBA

	presenter render.Presenter

	// frame is scratch space reused across renders.
	frame []splat

	destroyed bool
}

// splat is a marker placed on screen.
type splat struct {
	x, y, r float32
	depth   float32
	color   gg.RGBA
	id      uint32
}

// New allocates a width×height scene. Allocation failures wrap
// pointviz.ErrGPUResource.
func New(width, height int, opts ...Option) (*Scene, error) {
	color, err := render.NewColorTarget(width, height)
	if err != nil {
		return nil, fmt.Errorf("scene: color target: %w", err)
	}
	ids, err := render.NewIDTarget(width, height)
	if err != nil {
		color.Destroy()
		return nil, fmt.Errorf("scene: id target: %w", err)
	}

	s := &Scene{
		color: color,
		ids:   ids,
		used:  make(map[uint32]struct{}),
		size:  DefaultMarkerSize,
		bg:    DefaultBackground,
	}
	for _, opt := range opts {
		opt(s)
	}
	pointviz.Logger().Debug("scene: created", "width", width, "height", height)
	return s, nil
}

// Width returns the target width in pixels.
func (s *Scene) Width() int { return s.ids.Width() }

// Height returns the target height in pixels.
func (s *Scene) Height() int { return s.ids.Height() }

// Len returns the number of markers.
func (s *Scene) Len() int { return len(s.markers) }

// AddData registers a marker. The id must be nonzero and unique until the
// next Clear.
func (s *Scene) AddData(pos geom.Vec3, color gg.RGBA, id uint32) error {
	if s.destroyed {
		return ErrDestroyed
	}
	if id == 0 {
		return ErrZeroID
	}
	if _, ok := s.used[id]; ok {
		return fmt.Errorf("%w: %d", ErrDuplicateID, id)
	}
	s.used[id] = struct{}{}
	s.markers = append(s.markers, Marker{Pos: pos, Color: color, ID: id})
	return nil
}

// Clear drops all markers.
func (s *Scene) Clear() {
	clear(s.markers)
	s.markers = s.markers[:0]
	clear(s.used)
}

// Render draws every marker with the combined projection × view × model
// transform. The color target receives anti-aliased discs; the ID target
// receives each marker's id on the pixels whose centers fall inside its
// disc. Nearer markers overwrite farther ones in both targets.
func (s *Scene) Render(transform geom.Mat4) error {
	if s.destroyed {
		return ErrDestroyed
	}
	w, h := float32(s.Width()), float32(s.Height())

	s.color.Clear(s.bg)
	s.ids.Clear()

	frame := s.frame[:0]
	for _, m := range s.markers {
		clip := transform.TransformPoint(m.Pos)
		if clip.W <= minClipW || clip.Z < -clip.W || clip.Z > clip.W {
			continue
		}
		inv := 1 / clip.W
		frame = append(frame, splat{
			x:     (clip.X*inv + 1) * 0.5 * w,
			y:     (1 - clip.Y*inv) * 0.5 * h,
			r:     max(MinMarkerRadius, min(s.size*0.5*h*inv, MaxMarkerRadius)),
			depth: clip.Z * inv,
			color: m.Color,
			id:    m.ID,
		})
	}
	// Far to near.
	slices.SortStableFunc(frame, func(a, b splat) int {
		return cmp.Compare(b.depth, a.depth)
	})
	s.frame = frame

	dc := s.color.Context()
	for _, sp := range frame {
		dc.SetColor(sp.color)
		dc.DrawCircle(float64(sp.x), float64(sp.y), float64(sp.r))
		if err := dc.Fill(); err != nil {
			return fmt.Errorf("scene: fill marker %d: %w", sp.id, err)
		}
		s.stampID(sp)
	}

	pointviz.Logger().Debug("scene: rendered", "markers", len(s.markers), "visible", len(frame))
	return nil
}

// stampID writes sp.id to every pixel whose center lies inside the disc.
func (s *Scene) stampID(sp splat) {
	x0 := int(math32.Floor(sp.x - sp.r))
	x1 := int(math32.Ceil(sp.x + sp.r))
	y0 := int(math32.Floor(sp.y - sp.r))
	y1 := int(math32.Ceil(sp.y + sp.r))
	r2 := sp.r * sp.r
	for py := y0; py <= y1; py++ {
		dy := float32(py) + 0.5 - sp.y
		for px := x0; px <= x1; px++ {
			dx := float32(px) + 0.5 - sp.x
			if dx*dx+dy*dy <= r2 {
				s.ids.Set(px, py, sp.id)
			}
		}
	}
}

// ReadID returns the id drawn at (x, y) by the last Render, with the
// coordinate clamped to the target. 0 means no marker.
func (s *Scene) ReadID(x, y int) uint32 {
	if s.destroyed {
		return 0
	}
	return s.ids.At(x, y)
}

// ResolvePick implements Picker for markers added with id = index + 1.
func (s *Scene) ResolvePick(x, y int) (int, bool) {
	id := s.ReadID(x, y)
	if id == 0 {
		return 0, false
	}
	return int(id) - 1, true
}

// UpdateWH resizes both targets. Their contents are cleared until the next
// Render.
func (s *Scene) UpdateWH(width, height int) error {
	if s.destroyed {
		return ErrDestroyed
	}
	if width == s.Width() && height == s.Height() {
		return nil
	}
	if err := s.ids.Resize(width, height); err != nil {
		return fmt.Errorf("scene: resize id target: %w", err)
	}
	if err := s.color.Resize(width, height); err != nil {
		return fmt.Errorf("scene: resize color target: %w", err)
	}
	pointviz.Logger().Debug("scene: resized", "width", width, "height", height)
	return nil
}

// ColorTarget returns the visible frame, nil once destroyed.
func (s *Scene) ColorTarget() *render.ColorTarget {
	if s.destroyed {
		return nil
	}
	return s.color
}

// Present draws the last rendered frame onto dc.
func (s *Scene) Present(dc gpucontext.TextureDrawer) error {
	if s.destroyed {
		return ErrDestroyed
	}
	return s.presenter.Present(dc, s.color)
}

// Destroy releases both targets and any present texture. Destroy is
// idempotent.
func (s *Scene) Destroy() {
	if s.destroyed {
		return
	}
	s.destroyed = true
	s.presenter.Close()
	s.color.Destroy()
	s.ids.Destroy()
	s.markers, s.used, s.frame = nil, nil, nil
}

var _ Picker = (*Scene)(nil)
