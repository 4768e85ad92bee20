package geom

import (
	"testing"

	"github.com/chewxy/math32"
)

const eps = 1e-5

func near(a, b float32) bool { return math32.Abs(a-b) < eps }

func TestMat4_MulIdentity(t *testing.T) {
	m := Translate4(V3(1, 2, 3)).Mul(Scale4(V3(2, 2, 2)))
	if got := Identity4().Mul(m); got != m {
		t.Errorf("Identity4().Mul(m) = %v, want %v", got, m)
	}
	if got := m.Mul(Identity4()); got != m {
		t.Errorf("m.Mul(Identity4()) = %v, want %v", got, m)
	}
}

func TestMat4_MulOrder(t *testing.T) {
	// Scale applies first, then translation.
	m := Translate4(V3(10, 0, 0)).Mul(Scale4(V3(2, 2, 2)))
	got := m.TransformPoint(V3(1, 1, 1))
	want := Vec4{12, 2, 2, 1}
	if got != want {
		t.Errorf("TransformPoint() = %v, want %v", got, want)
	}
}

func TestPerspective_DepthRange(t *testing.T) {
	p := Perspective(90, 1, 1, 100)

	tests := []struct {
		name string
		z    float32
		ndc  float32
	}{
		{"near plane", -1, -1},
		{"far plane", -100, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := p.TransformPoint(V3(0, 0, tt.z))
			if got := c.Z / c.W; !near(got, tt.ndc) {
				t.Errorf("ndc z = %v, want %v", got, tt.ndc)
			}
		})
	}

	// 90 degrees: a point at 45 degrees off axis lands on the edge.
	c := p.TransformPoint(V3(5, 0, -5))
	if got := c.X / c.W; !near(got, 1) {
		t.Errorf("ndc x at 45 degrees = %v, want 1", got)
	}
}

func TestLookAt_EyeToOrigin(t *testing.T) {
	eye := V3(0, 0, 5)
	v := LookAt(eye, V3(0, 0, 0), V3(0, 1, 0))

	c := v.TransformPoint(V3(0, 0, 0))
	if !near(c.X, 0) || !near(c.Y, 0) || !near(c.Z, -5) {
		t.Errorf("origin in view space = %v, want (0, 0, -5)", c)
	}
	c = v.TransformPoint(eye)
	if !near(c.X, 0) || !near(c.Y, 0) || !near(c.Z, 0) {
		t.Errorf("eye in view space = %v, want origin", c)
	}
}

func TestVec3(t *testing.T) {
	a, b := V3(1, 0, 0), V3(0, 1, 0)
	if got := a.Cross(b); got != V3(0, 0, 1) {
		t.Errorf("Cross() = %v, want (0,0,1)", got)
	}
	if got := V3(3, 4, 0).Len(); !near(got, 5) {
		t.Errorf("Len() = %v, want 5", got)
	}
	if got := (Vec3{}).Normalize(); got != (Vec3{}) {
		t.Errorf("Normalize(zero) = %v, want zero", got)
	}
	if V3(math32.Inf(1), 0, 0).IsFinite() {
		t.Error("IsFinite() = true for +Inf component")
	}
}
