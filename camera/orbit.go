// Package camera implements the orbit camera that supplies the view
// transform of the point-cloud scene.
package camera

import (
	"github.com/chewxy/math32"

	"github.com/gogpu/pointviz/geom"
)

// Defaults for a freshly reset camera.
const (
	DefaultFov         = 60
	DefaultRadius      = 8
	DefaultSensitivity = 0.25 // degrees per pixel of mouse motion
	MinRadius          = 0.5
	maxPitch           = 89
)

// Orbit is a camera circling a target point. Yaw and Pitch are in degrees,
// Fov is the vertical field of view in degrees.
//
// Orbit is not safe for concurrent use.
type Orbit struct {
	Target      geom.Vec3
	Fov         float32
	Radius      float32
	Yaw         float32
	Pitch       float32
	Sensitivity float32
}

// NewOrbit returns a camera in its reset pose.
func NewOrbit() *Orbit {
	c := &Orbit{}
	c.Reset()
	return c
}

// Reset restores the default pose, field of view and sensitivity.
func (c *Orbit) Reset() {
	*c = Orbit{
		Fov:         DefaultFov,
		Radius:      DefaultRadius,
		Yaw:         45,
		Pitch:       30,
		Sensitivity: DefaultSensitivity,
	}
}

// Move orbits the camera by a mouse delta in pixels. Pitch is clamped
// short of the poles so the up vector stays well defined.
func (c *Orbit) Move(dx, dy int) {
	c.Yaw -= float32(dx) * c.Sensitivity
	c.Pitch += float32(dy) * c.Sensitivity
	c.Pitch = max(-maxPitch, min(maxPitch, c.Pitch))
	c.Yaw = math32.Mod(c.Yaw, 360)
}

// Zoom moves the camera toward the target by one fifth of a unit per
// wheel step, never closer than MinRadius.
func (c *Orbit) Zoom(wheel float32) {
	c.Radius -= wheel / 5
	if c.Radius < MinRadius {
		c.Radius = MinRadius
	}
}

// Position returns the camera position in world space.
func (c *Orbit) Position() geom.Vec3 {
	yaw := c.Yaw * math32.Pi / 180
	pitch := c.Pitch * math32.Pi / 180
	cp := math32.Cos(pitch)
	off := geom.V3(cp*math32.Sin(yaw), math32.Sin(pitch), cp*math32.Cos(yaw))
	return c.Target.Add(off.Mul(c.Radius))
}

// View returns the world-to-view matrix.
func (c *Orbit) View() geom.Mat4 {
	return geom.LookAt(c.Position(), c.Target, geom.V3(0, 1, 0))
}

// Projection returns the perspective matrix for a viewport aspect ratio.
func (c *Orbit) Projection(aspect float32) geom.Mat4 {
	return geom.Perspective(c.Fov, aspect, 0.01, 2000)
}
