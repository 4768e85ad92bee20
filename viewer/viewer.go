// Package viewer wires the dataset store, a projection, the picking scene
// and the orbit camera into the interactive point-cloud viewer. It is
// driven by a host that owns the window and forwards input events.
package viewer

import (
	"errors"
	"fmt"

	"github.com/gogpu/gpucontext"

	"github.com/gogpu/pointviz"
	"github.com/gogpu/pointviz/camera"
	"github.com/gogpu/pointviz/dataset"
	"github.com/gogpu/pointviz/geom"
	"github.com/gogpu/pointviz/projection"
	"github.com/gogpu/pointviz/scene"
)

// ErrNothingPicked is returned by PickAt when no point is under the
// coordinate.
var ErrNothingPicked = errors.New("viewer: no point at coordinate")

// ModelScale shrinks projected positions into camera-friendly units.
const ModelScale = 0.1

// Mode is the pointer interaction state.
type Mode int

const (
	// ModeIdle picks the point under the pointer on every move.
	ModeIdle Mode = iota
	// ModeCam orbits the camera while a button is held.
	ModeCam
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeIdle:
		return "idle"
	case ModeCam:
		return "cam"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// Viewer owns the interaction state between host events and the scene.
//
// Viewer is NOT safe for concurrent use; all calls come from the thread that
// owns the GPU context.
type Viewer struct {
	store  *dataset.Store
	scene  *scene.Scene
	picker scene.Picker
	cam    *camera.Orbit

	mode         Mode
	lastX, lastY int
	hover        int

	// applied is the projection currently shown, nil before the first Apply.
	applied   projection.Projection
	positions []geom.Vec3
}

// New returns a viewer over store and sc with a reset camera. The viewer
// does not own store or sc; the caller destroys them.
func New(store *dataset.Store, sc *scene.Scene) *Viewer {
	return &Viewer{
		store:  store,
		scene:  sc,
		picker: sc,
		cam:    camera.NewOrbit(),
		hover:  -1,
	}
}

// Camera returns the orbit camera.
func (v *Viewer) Camera() *camera.Orbit { return v.cam }

// Mode returns the pointer interaction state.
func (v *Viewer) Mode() Mode { return v.mode }

// Projection returns the projection currently shown, nil before the first
// successful Apply.
func (v *Viewer) Projection() projection.Projection { return v.applied }

// Positions returns the marker positions of the last successful Apply, in
// point order.
func (v *Viewer) Positions() []geom.Vec3 { return v.positions }

// Apply loads files and shows them with p. Markers get id = index + 1 and
// their label color. The projection runs on the prepared batch, so when
// loading or projecting fails the store, the scene and Positions all keep
// the previous dataset.
func (v *Viewer) Apply(files dataset.Files, p projection.Projection) error {
	batch, err := v.store.PrepareFiles(files)
	if err != nil {
		pointviz.Logger().Warn("viewer: load failed", "dataset", files.Name, "err", err)
		return err
	}
	positions, err := p.Project(batch)
	if err != nil {
		batch.Discard()
		pointviz.Logger().Warn("viewer: projection failed", "projection", p.Name(), "err", err)
		return fmt.Errorf("viewer: %s projection: %w", p.Name(), err)
	}
	labels := batch.Labels()
	if len(positions) != len(labels) {
		batch.Discard()
		return fmt.Errorf("%w: %d positions for %d points", pointviz.ErrOptimizer, len(positions), len(labels))
	}
	if err := v.store.Commit(batch); err != nil {
		return err
	}

	v.scene.Clear()
	for i, pos := range positions {
		if err := v.scene.AddData(pos, pointviz.LabelColor(labels[i]), uint32(i+1)); err != nil {
			return fmt.Errorf("viewer: add point %d: %w", i, err)
		}
	}
	v.applied, v.positions = p, positions
	v.hover = -1
	pointviz.Logger().Info("viewer: applied", "dataset", files.Name, "projection", p.Name(), "points", len(positions))
	return nil
}

// Transform returns projection × view × model for the current viewport.
func (v *Viewer) Transform() geom.Mat4 {
	aspect := float32(v.scene.Width()) / float32(max(v.scene.Height(), 1))
	model := geom.Scale4(geom.V3(ModelScale, ModelScale, ModelScale))
	return v.cam.Projection(aspect).Mul(v.cam.View()).Mul(model)
}

// Frame renders the scene with the current camera.
func (v *Viewer) Frame() error {
	return v.scene.Render(v.Transform())
}

// Present renders a frame and draws it onto dc.
func (v *Viewer) Present(dc gpucontext.TextureDrawer) error {
	if err := v.Frame(); err != nil {
		return err
	}
	return v.scene.Present(dc)
}

// Resize follows a viewport resize.
func (v *Viewer) Resize(width, height int) error {
	return v.scene.UpdateWH(width, height)
}

// MouseDown starts orbiting.
func (v *Viewer) MouseDown(x, y int) {
	v.mode = ModeCam
	v.lastX, v.lastY = x, y
}

// MouseUp stops orbiting.
func (v *Viewer) MouseUp(x, y int) {
	v.mode = ModeIdle
	v.lastX, v.lastY = x, y
}

// MouseMove orbits the camera in ModeCam and clears the hover; in ModeIdle
// it picks the point under the pointer from the last rendered frame.
func (v *Viewer) MouseMove(x, y int) {
	dx, dy := x-v.lastX, y-v.lastY
	v.lastX, v.lastY = x, y

	switch v.mode {
	case ModeCam:
		v.cam.Move(dx, dy)
		v.hover = -1
	case ModeIdle:
		v.hover = -1
		if idx, ok := v.picker.ResolvePick(x, y); ok && idx >= 0 && idx < v.store.Len() {
			v.hover = idx
			pointviz.Logger().Debug("viewer: hover", "x", x, "y", y, "point", idx)
		}
	}
}

// Wheel zooms the camera.
func (v *Viewer) Wheel(delta float32) {
	v.cam.Zoom(delta)
}

// Hover returns the point under the pointer, if any.
func (v *Viewer) Hover() (dataset.Point, bool) {
	if v.hover < 0 {
		return dataset.Point{}, false
	}
	pt, err := v.store.Point(v.hover)
	if err != nil {
		return dataset.Point{}, false
	}
	return pt, true
}

// PickAt renders a frame and returns the point drawn at (x, y).
func (v *Viewer) PickAt(x, y int) (dataset.Point, error) {
	if err := v.Frame(); err != nil {
		return dataset.Point{}, err
	}
	v.mode = ModeIdle
	v.MouseMove(x, y)
	pt, ok := v.Hover()
	if !ok {
		return dataset.Point{}, ErrNothingPicked
	}
	return pt, nil
}
