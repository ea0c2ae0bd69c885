package camera

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

const eps = 1e-4

func newViewerControls() (*Perspective, *OrbitControls) {
	cam := NewPerspective(30, 1280.0/720.0, 0.1, 20)
	cam.SetPosition(0, 1, 5)
	ctl := NewOrbitControls(cam)
	ctl.ScreenSpacePanning = true
	ctl.Target = mgl32.Vec3{0, 1, 0}
	ctl.Update()
	return cam, ctl
}

func TestUpdateLooksAtTarget(t *testing.T) {
	cam, _ := newViewerControls()

	if !cam.Position.ApproxEqualThreshold(mgl32.Vec3{0, 1, 5}, eps) {
		t.Errorf("position moved to %v", cam.Position)
	}

	// The target sits on the view axis in front of the camera
	p := cam.ViewMatrix().Mul4x1(mgl32.Vec4{0, 1, 0, 1})
	if math.Abs(float64(p.X())) > eps || math.Abs(float64(p.Y())) > eps {
		t.Errorf("target not centered in view: %v", p)
	}
	if math.Abs(float64(p.Z()+5)) > eps {
		t.Errorf("target depth = %v, want -5", p.Z())
	}
}

func TestProjection(t *testing.T) {
	cam := NewPerspective(30, 2, 0.1, 20)
	m := cam.ProjectionMatrix()
	want := float32(1 / math.Tan(float64(mgl32.DegToRad(15))))
	if math.Abs(float64(m.At(1, 1)-want)) > eps {
		t.Errorf("m11 = %v, want %v", m.At(1, 1), want)
	}
	if math.Abs(float64(m.At(0, 0)-want/2)) > eps {
		t.Errorf("m00 = %v, want %v", m.At(0, 0), want/2)
	}
}

func TestDragKeepsDistance(t *testing.T) {
	cam, ctl := newViewerControls()
	ctl.HandleDrag(180, 0, 720)
	ctl.Update()

	if d := cam.Position.Sub(ctl.Target).Len(); math.Abs(float64(d-5)) > 1e-3 {
		t.Errorf("orbit changed distance to %v", d)
	}
	if !(cam.Position.X() < 0) {
		t.Errorf("dragging right should orbit towards -X, got %v", cam.Position)
	}
}

func TestPolarClamp(t *testing.T) {
	cam, ctl := newViewerControls()
	ctl.MaxPolarAngle = math.Pi / 2
	ctl.HandleDrag(0, -10000, 720)
	ctl.Update()

	if math.Abs(float64(cam.Position.Y()-ctl.Target.Y())) > 1e-3 {
		t.Errorf("camera dipped below the max polar angle: %v", cam.Position)
	}

	ctl.MinPolarAngle = math.Pi / 4
	ctl.HandleDrag(0, 10000, 720)
	ctl.Update()

	_, phi, _ := ctl.Spherical()
	if math.Abs(float64(phi-math.Pi/4)) > 1e-3 {
		t.Errorf("polar angle %v, want pi/4", phi)
	}
}

func TestZoomClamped(t *testing.T) {
	cam, ctl := newViewerControls()
	ctl.MinDistance = 1
	ctl.MaxDistance = 10

	for i := 0; i < 200; i++ {
		ctl.HandleZoom(1)
		ctl.Update()
	}
	if d := cam.Position.Sub(ctl.Target).Len(); math.Abs(float64(d-1)) > eps {
		t.Errorf("zoom in distance %v, want 1", d)
	}

	for i := 0; i < 200; i++ {
		ctl.HandleZoom(-1)
		ctl.Update()
	}
	if d := cam.Position.Sub(ctl.Target).Len(); math.Abs(float64(d-10)) > eps {
		t.Errorf("zoom out distance %v, want 10", d)
	}
}

func TestScreenSpacePan(t *testing.T) {
	cam, ctl := newViewerControls()
	ctl.HandlePan(0, 100, 720)
	ctl.Update()

	// Camera faces -Z, so screen-space vertical panning moves along Y only
	if math.Abs(float64(ctl.Target.Z())) > eps || ctl.Target.Y() <= 1 {
		t.Errorf("unexpected target after pan: %v", ctl.Target)
	}
	if math.Abs(float64(cam.Position.Y()-ctl.Target.Y())) > eps {
		t.Errorf("camera should move with target: cam %v target %v", cam.Position, ctl.Target)
	}
}

func TestPlanePan(t *testing.T) {
	_, ctl := newViewerControls()
	ctl.ScreenSpacePanning = false
	ctl.HandlePan(0, 100, 720)
	ctl.Update()

	if math.Abs(float64(ctl.Target.Y()-1)) > eps {
		t.Errorf("plane panning changed height: %v", ctl.Target)
	}
	if ctl.Target.Z() >= 0 {
		t.Errorf("plane panning should move into the scene, got %v", ctl.Target)
	}
}
