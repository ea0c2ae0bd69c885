// Package shaders provides embedded GLSL shader sources.
package shaders

import _ "embed"

// LineVertexShader is the vertex shader for colored lines (grid, bounds).
//
//go:embed line.vert
var LineVertexShader string

// LineFragmentShader is the fragment shader for colored lines.
//
//go:embed line.frag
var LineFragmentShader string

// MeshVertexShader is the vertex shader for avatar meshes, skinned through
// the Bones uniform block.
//
//go:embed mesh.vert
var MeshVertexShader string

// MeshFragmentShader is the fragment shader for avatar meshes.
//
//go:embed mesh.frag
var MeshFragmentShader string

// MaxBones is the size of the Bones uniform block array in mesh.vert.
const MaxBones = 200

// MaxLights is the number of directional lights mesh.frag accepts.
const MaxLights = 4
