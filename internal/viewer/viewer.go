// Package viewer implements the avatar viewer's main loop.
package viewer

import (
	"context"
	"fmt"
	"time"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/vrmviewer/internal/avatar"
	"github.com/Faultbox/vrmviewer/internal/config"
	"github.com/Faultbox/vrmviewer/internal/engine/camera"
	"github.com/Faultbox/vrmviewer/internal/engine/debug"
	"github.com/Faultbox/vrmviewer/internal/engine/input"
	"github.com/Faultbox/vrmviewer/internal/engine/renderer"
	"github.com/Faultbox/vrmviewer/internal/engine/scene"
	"github.com/Faultbox/vrmviewer/internal/engine/ui2d"
	"github.com/Faultbox/vrmviewer/internal/engine/window"
	"github.com/Faultbox/vrmviewer/internal/loading"
	"github.com/Faultbox/vrmviewer/internal/logger"
	"github.com/Faultbox/vrmviewer/internal/progress"
	"github.com/Faultbox/vrmviewer/internal/server"
	"github.com/Faultbox/vrmviewer/internal/vrm"
)

// Title is the window title prefix.
const Title = "vrmviewer"

var boundsColor = [3]float32{1, 0.8, 0.2}

// Viewer owns the window, the scene and the running avatar load.
type Viewer struct {
	cfg     *config.Config
	log     *zap.Logger
	running bool

	window      *window.Window
	renderer    *renderer.Renderer
	ui          *ui2d.Renderer
	input       *input.Input
	screenshots *debug.ScreenshotCapture

	camera   *camera.Perspective
	controls *camera.OrbitControls
	scene    *scene.Scene

	reporter *progress.Reporter
	overlay  *progress.Overlay
	events   <-chan loading.Event
	result   <-chan avatar.Result
	avatar   *vrm.Avatar

	ctx        context.Context
	cancel     context.CancelFunc
	showBounds bool
}

// New sets up the viewport and the scene, then starts loading the avatar in
// the background. It must be called from the main thread.
func New(cfg *config.Config) (*Viewer, error) {
	id, err := avatar.IdentifierFromConfig(cfg.Viewer)
	if err != nil {
		return nil, fmt.Errorf("parse query: %w", err)
	}

	v := &Viewer{cfg: cfg, log: logger.Named("viewer")}
	v.ctx, v.cancel = context.WithCancel(context.Background())

	v.log.Info("initializing viewer",
		zap.String("avatar", id),
		zap.Int("width", cfg.Graphics.Width),
		zap.Int("height", cfg.Graphics.Height))

	if err := v.setupViewport(); err != nil {
		v.Close()
		return nil, err
	}
	v.scene = NewScene()

	elems := progress.NewElements()
	v.reporter, err = progress.NewReporter(elems, progress.Options{
		FadeDelay:    cfg.Viewer.FadeDelay,
		FadeDuration: cfg.Viewer.FadeDuration,
		Log:          logger.Named("progress"),
	})
	if err != nil {
		v.Close()
		return nil, err
	}
	v.overlay = progress.NewOverlay(elems)

	manager := loading.NewManager()
	v.events = manager.Subscribe()
	if addr := cfg.Viewer.ProgressFeedAddr; addr != "" {
		v.startFeed(manager, addr)
	}

	loader := avatar.NewLoader(NewSource(cfg.Viewer), manager, logger.Named("loader"))
	v.result = loader.LoadAsync(v.ctx, id)

	v.log.Info("viewer initialized")
	return v, nil
}

// setupViewport creates the window, the renderers and the camera.
func (v *Viewer) setupViewport() error {
	cfg := v.cfg
	var err error

	v.window, err = window.New(window.Config{
		Title:      Title,
		Width:      cfg.Graphics.Width,
		Height:     cfg.Graphics.Height,
		Fullscreen: cfg.Graphics.Fullscreen,
		VSync:      cfg.Graphics.VSync,
	}, logger.Named("window"))
	if err != nil {
		return fmt.Errorf("failed to create window: %w", err)
	}

	dw, dh := v.window.DrawableSize()
	v.renderer, err = renderer.New(renderer.Config{
		Width:      dw,
		Height:     dh,
		ClearColor: [3]float32{0, 0, 0},
		Ambient:    [3]float32{0.35, 0.35, 0.35},
	}, logger.Named("renderer"))
	if err != nil {
		return fmt.Errorf("failed to create renderer: %w", err)
	}

	w, h := v.window.GetSize()
	v.ui, err = ui2d.New(w, h)
	if err != nil {
		return fmt.Errorf("failed to create overlay renderer: %w", err)
	}

	v.camera, v.controls = NewCamera(cfg.Camera, v.window.Aspect())
	v.input = input.New(v.controls, h)
	v.screenshots = debug.NewScreenshotCapture(cfg.Viewer.ScreenshotDir, Title)
	return nil
}

// startFeed broadcasts lifecycle events to websocket clients on addr.
func (v *Viewer) startFeed(manager *loading.Manager, addr string) {
	feed := progress.NewFeed(logger.Named("feed"))
	go feed.Run(manager.Subscribe())

	srv := server.New(v.cfg.Viewer.ModelRoot, logger.Named("server"), server.WithFeed(feed))
	go func() {
		if err := srv.ListenAndServe(v.ctx, addr); err != nil {
			v.log.Error("progress feed stopped", zap.Error(err))
		}
	}()
}

// Run drives frames until the window is closed.
func (v *Viewer) Run() error {
	v.running = true

	lastTime := time.Now()
	frameCount := 0
	fpsTimer := lastTime

	v.log.Info("starting render loop")

	for v.running {
		now := time.Now()
		dt := now.Sub(lastTime).Seconds()
		lastTime = now

		if v.input.Update() {
			v.running = false
			break
		}
		if v.input.IsKeyPressed(sdl.SCANCODE_F12) {
			v.screenshot()
		}
		if v.input.IsKeyPressed(sdl.SCANCODE_F3) {
			v.showBounds = !v.showBounds
		}
		v.controls.Update()

		drainEvents(v.events, v.reporter, now)
		v.reporter.Update(now)
		v.pollResult()

		if v.avatar != nil && v.cfg.Viewer.SimulateSpringBones {
			v.avatar.SpringBones.Update(float32(dt))
		}
		v.scene.Update()

		v.render()
		v.window.SwapBuffers()

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			v.log.Debug("fps", zap.Int("count", frameCount), zap.String("dt", fmt.Sprintf("%.2fms", dt*1000)))
			frameCount = 0
			fpsTimer = time.Now()
		}
	}

	v.cancel()
	return nil
}

// pollResult installs the avatar once the load goroutine delivers it.
func (v *Viewer) pollResult() {
	if v.result == nil {
		return
	}
	select {
	case res := <-v.result:
		v.result = nil
		if res.Err != nil {
			// Already reported through the loading manager
			return
		}
		if err := avatar.Install(v.scene, res.Avatar); err != nil {
			v.log.Error("failed to install avatar", zap.Error(err))
			return
		}
		v.avatar = res.Avatar
		v.renderer.SetAvatar(res.Avatar)
		if title := res.Avatar.Meta.Title; title != "" {
			v.window.SetTitle(Title + " - " + title)
		}
	default:
	}
}

func (v *Viewer) render() {
	v.renderer.Render(v.scene, v.camera)

	if v.showBounds && v.avatar != nil {
		if lo, hi, ok := v.avatar.Bounds(); ok {
			v.renderer.DrawLines(v.camera, debug.BoundsWireframe(lo, hi, 0.01), boundsColor)
		}
	}

	v.ui.Begin()
	v.overlay.Draw(v.ui)
	v.ui.End()
}

func (v *Viewer) screenshot() {
	w, h := v.window.DrawableSize()
	name, err := v.screenshots.Capture(w, h)
	if err != nil {
		v.log.Error("screenshot failed", zap.Error(err))
		return
	}
	v.log.Info("screenshot saved", zap.String("file", name))
}

// Close cancels the load and releases GPU and window resources.
func (v *Viewer) Close() {
	v.log.Info("closing viewer")
	if v.cancel != nil {
		v.cancel()
	}
	if v.ui != nil {
		v.ui.Close()
	}
	if v.renderer != nil {
		v.renderer.Close()
	}
	if v.window != nil {
		v.window.Close()
	}
}
