// Package input translates SDL2 events into viewer actions.
package input

import (
	"github.com/veandco/go-sdl2/sdl"
)

// Orbit receives pointer gestures in window pixels.
type Orbit interface {
	HandleDrag(dx, dy, viewportHeight float32)
	HandlePan(dx, dy, viewportHeight float32)
	HandleZoom(delta float32)
}

type gesture int

const (
	gestureNone gesture = iota
	gestureRotate
	gesturePan
)

// Input polls SDL events once per frame.
type Input struct {
	orbit          Orbit
	viewportHeight float32

	gesture gesture
	pressed []sdl.Scancode
	quit    bool
}

// New creates an input handler forwarding pointer gestures to orbit.
func New(orbit Orbit, viewportHeight int) *Input {
	return &Input{
		orbit:          orbit,
		viewportHeight: float32(viewportHeight),
		pressed:        make([]sdl.Scancode, 0, 8),
	}
}

// Update polls pending SDL events. Returns true if the viewer should quit.
func (i *Input) Update() bool {
	i.pressed = i.pressed[:0]
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		i.handle(event)
	}
	return i.quit
}

func (i *Input) handle(event sdl.Event) {
	switch e := event.(type) {
	case *sdl.QuitEvent:
		i.quit = true

	case *sdl.KeyboardEvent:
		if e.Type != sdl.KEYDOWN || e.Repeat != 0 {
			return
		}
		if e.Keysym.Scancode == sdl.SCANCODE_ESCAPE {
			i.quit = true
		}
		i.pressed = append(i.pressed, e.Keysym.Scancode)

	case *sdl.MouseButtonEvent:
		if e.Type == sdl.MOUSEBUTTONUP {
			i.gesture = gestureNone
			return
		}
		switch e.Button {
		case sdl.BUTTON_LEFT:
			i.gesture = gestureRotate
		case sdl.BUTTON_RIGHT, sdl.BUTTON_MIDDLE:
			i.gesture = gesturePan
		}

	case *sdl.MouseMotionEvent:
		if i.orbit == nil {
			return
		}
		dx, dy := float32(e.XRel), float32(e.YRel)
		switch i.gesture {
		case gestureRotate:
			i.orbit.HandleDrag(dx, dy, i.viewportHeight)
		case gesturePan:
			i.orbit.HandlePan(dx, dy, i.viewportHeight)
		}

	case *sdl.MouseWheelEvent:
		if i.orbit == nil {
			return
		}
		delta := float32(e.Y)
		if e.Direction == sdl.MOUSEWHEEL_FLIPPED {
			delta = -delta
		}
		i.orbit.HandleZoom(delta)
	}
}

// IsKeyPressed reports whether scancode went down during the last Update.
func (i *Input) IsKeyPressed(scancode sdl.Scancode) bool {
	for _, s := range i.pressed {
		if s == scancode {
			return true
		}
	}
	return false
}
