// Package scene holds the viewer's scene graph: a root node, lights, helpers
// and at most one avatar.
package scene

import (
	"errors"

	"github.com/Faultbox/vrmviewer/internal/engine/lighting"
)

// ErrAvatarAttached is returned when a second avatar is attached.
var ErrAvatarAttached = errors.New("scene: avatar already attached")

// Scene is the set of objects drawn each frame. It only grows.
type Scene struct {
	Root *Node

	lights []*lighting.DirectionalLight
	grids  []*GridHelper
	avatar *Node
}

// New creates an empty scene.
func New() *Scene {
	return &Scene{Root: NewNode("scene")}
}

// AddLight adds a directional light.
func (s *Scene) AddLight(l *lighting.DirectionalLight) {
	s.lights = append(s.lights, l)
}

// Add adds a grid helper.
func (s *Scene) Add(g *GridHelper) {
	s.grids = append(s.grids, g)
}

// Attach inserts the avatar root under the scene root. Only one avatar is
// ever attached; later calls return ErrAvatarAttached and change nothing.
func (s *Scene) Attach(avatarRoot *Node) error {
	if avatarRoot == nil {
		return errors.New("scene: nil avatar root")
	}
	if s.avatar != nil {
		return ErrAvatarAttached
	}
	s.avatar = avatarRoot
	s.Root.Add(avatarRoot)
	return nil
}

// Avatar returns the attached avatar root, or nil before Attach.
func (s *Scene) Avatar() *Node {
	return s.avatar
}

// Lights returns the scene lights.
func (s *Scene) Lights() []*lighting.DirectionalLight {
	return s.lights
}

// Grids returns the grid helpers.
func (s *Scene) Grids() []*GridHelper {
	return s.grids
}

// Update recomputes world matrices for the whole graph.
func (s *Scene) Update() {
	s.Root.UpdateWorldMatrix()
}
