package scene

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/vrmviewer/internal/engine/lighting"
)

func TestAttachOnce(t *testing.T) {
	s := New()
	if s.Avatar() != nil {
		t.Fatal("avatar should be nil before attach")
	}

	first := NewNode("avatar")
	if err := s.Attach(first); err != nil {
		t.Fatalf("Attach: %v", err)
	}
	if s.Avatar() != first {
		t.Error("Avatar should return attached root")
	}

	second := NewNode("avatar2")
	if err := s.Attach(second); !errors.Is(err, ErrAvatarAttached) {
		t.Errorf("second Attach: got %v, want ErrAvatarAttached", err)
	}
	if len(s.Root.Children) != 1 {
		t.Errorf("scene root should have 1 child, got %d", len(s.Root.Children))
	}
	if s.Avatar() != first {
		t.Error("second attach replaced the avatar")
	}
}

func TestAttachNil(t *testing.T) {
	s := New()
	if err := s.Attach(nil); err == nil {
		t.Error("expected error for nil root")
	}
	if s.Avatar() != nil {
		t.Error("nil attach must not set avatar")
	}
}

func TestStartupScene(t *testing.T) {
	s := New()
	light := lighting.NewDirectionalLight(0xffffff, 1)
	light.SetPosition(mgl32.Vec3{1, 1, 1}, true)
	s.AddLight(light)
	s.Add(NewGridHelper(10, 10))

	if len(s.Lights()) != 1 || len(s.Grids()) != 1 {
		t.Fatalf("unexpected scene contents: %d lights, %d grids", len(s.Lights()), len(s.Grids()))
	}
	s.Update()
}

func TestGridHelper(t *testing.T) {
	g := NewGridHelper(10, 10)
	v := g.Vertices()
	if len(v) != 44 {
		t.Fatalf("expected 44 vertices, got %d", len(v))
	}
	if v[0].X != -5 || v[0].Z != -5 || v[1].X != 5 {
		t.Errorf("first line %+v %+v", v[0], v[1])
	}

	center := HexColor(GridCenterColor)
	var centerLines int
	for i := 0; i < len(v); i += 2 {
		if v[i].R == center[0] {
			centerLines++
		}
		if v[i].Y != 0 {
			t.Errorf("grid line off the XZ plane: %+v", v[i])
		}
	}
	if centerLines != 2 {
		t.Errorf("expected 2 center lines, got %d", centerLines)
	}
}

func TestHexColor(t *testing.T) {
	c := HexColor(0xff8000)
	if c[0] != 1 || c[2] != 0 || c[1] < 0.5 || c[1] > 0.51 {
		t.Errorf("unexpected color %v", c)
	}
}
