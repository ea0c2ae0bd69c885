package viewer

import (
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/vrmviewer/internal/avatar"
	"github.com/Faultbox/vrmviewer/internal/config"
	"github.com/Faultbox/vrmviewer/internal/engine/camera"
	"github.com/Faultbox/vrmviewer/internal/engine/lighting"
	"github.com/Faultbox/vrmviewer/internal/engine/scene"
	"github.com/Faultbox/vrmviewer/internal/loading"
	"github.com/Faultbox/vrmviewer/internal/progress"
)

// Scene defaults.
const (
	LightColor     = 0xffffff
	LightIntensity = 1
	GridSize       = 10
	GridDivisions  = 10
)

// NewCamera creates the perspective camera and its orbit controls, already
// aimed at the configured target.
func NewCamera(cfg config.CameraConfig, aspect float32) (*camera.Perspective, *camera.OrbitControls) {
	cam := camera.NewPerspective(cfg.FOV, aspect, cfg.Near, cfg.Far)
	cam.SetPosition(cfg.Position[0], cfg.Position[1], cfg.Position[2])

	controls := camera.NewOrbitControls(cam)
	controls.ScreenSpacePanning = cfg.ScreenSpacePanning
	controls.Target = mgl32.Vec3(cfg.Target)
	controls.Update()
	return cam, controls
}

// NewScene creates the startup scene: one white directional light from
// (1,1,1) and a ground grid. The avatar is attached later.
func NewScene() *scene.Scene {
	s := scene.New()

	light := lighting.NewDirectionalLight(LightColor, LightIntensity)
	light.SetPosition(mgl32.Vec3{1, 1, 1}, true)
	s.AddLight(light)

	s.Add(scene.NewGridHelper(GridSize, GridDivisions))
	return s
}

// NewSource picks the asset source: HTTP when a base URL is configured,
// otherwise the local document root.
func NewSource(cfg config.ViewerConfig) avatar.Source {
	if cfg.AssetBaseURL != "" {
		return avatar.HTTPSource{BaseURL: cfg.AssetBaseURL}
	}
	return avatar.DirSource{Root: cfg.ModelRoot}
}

// drainEvents hands every pending event to r without blocking and returns
// how many were handled.
func drainEvents(events <-chan loading.Event, r *progress.Reporter, now time.Time) int {
	n := 0
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return n
			}
			r.Handle(ev, now)
			n++
		default:
			return n
		}
	}
}
