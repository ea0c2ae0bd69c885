// Package renderer draws the viewer scene with OpenGL.
package renderer

import (
	"image/color"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Faultbox/vrmviewer/internal/engine/camera"
	"github.com/Faultbox/vrmviewer/internal/engine/lighting"
	"github.com/Faultbox/vrmviewer/internal/engine/renderer/shaders"
	"github.com/Faultbox/vrmviewer/internal/engine/scene"
	"github.com/Faultbox/vrmviewer/internal/engine/shader"
	"github.com/Faultbox/vrmviewer/internal/engine/texture"
	"github.com/Faultbox/vrmviewer/internal/vrm"
)

const boneBinding = 0

// Config holds renderer configuration.
type Config struct {
	Width      int // Drawable size in pixels
	Height     int
	ClearColor [3]float32
	Ambient    [3]float32
}

type lineBuffer struct {
	vao, vbo uint32
	count    int32
}

type gpuPrimitive struct {
	vao, vbo, ebo uint32
	count         int32
	skinned       bool
}

type gpuAvatar struct {
	prims    [][]gpuPrimitive // Indexed like Avatar.Meshes, then primitives
	textures []uint32         // Indexed like Avatar.Images, 0 when missing
	draws    []drawItem
}

// Renderer handles all OpenGL scene rendering. It must be used from the
// thread owning the GL context.
type Renderer struct {
	config Config
	log    *zap.Logger

	lineProgram *shader.Program
	meshProgram *shader.Program
	boneUBO     uint32
	white       uint32

	grids map[*scene.GridHelper]*lineBuffer
	lines *lineBuffer

	avatar *vrm.Avatar
	gpu    *gpuAvatar
	bones  []mgl32.Mat4
	warned map[*vrm.Skin]bool
}

// New creates a renderer. It must be called after the GL context is current.
func New(cfg Config, log *zap.Logger) (*Renderer, error) {
	if log == nil {
		log = zap.NewNop()
	}
	r := &Renderer{
		config: cfg,
		log:    log,
		grids:  make(map[*scene.GridHelper]*lineBuffer),
		bones:  make([]mgl32.Mat4, 0, shaders.MaxBones),
		warned: make(map[*vrm.Skin]bool),
	}

	var err error
	r.lineProgram, err = shader.NewProgram(shaders.LineVertexShader, shaders.LineFragmentShader)
	if err != nil {
		return nil, errors.Wrap(err, "line program")
	}
	r.meshProgram, err = shader.NewProgram(shaders.MeshVertexShader, shaders.MeshFragmentShader)
	if err != nil {
		r.lineProgram.Delete()
		return nil, errors.Wrap(err, "mesh program")
	}
	if err := r.meshProgram.BindUniformBlock("Bones", boneBinding); err != nil {
		r.Close()
		return nil, err
	}

	gl.GenBuffers(1, &r.boneUBO)
	gl.BindBuffer(gl.UNIFORM_BUFFER, r.boneUBO)
	gl.BufferData(gl.UNIFORM_BUFFER, shaders.MaxBones*16*4, nil, gl.DYNAMIC_DRAW)
	gl.BindBufferBase(gl.UNIFORM_BUFFER, boneBinding, r.boneUBO)
	gl.BindBuffer(gl.UNIFORM_BUFFER, 0)

	r.white = texture.Upload(texture.Solid(color.RGBA{255, 255, 255, 255}))
	r.lines = newLineBuffer()

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LEQUAL)

	r.checkError("init")
	log.Info("renderer initialized", zap.Int("width", cfg.Width), zap.Int("height", cfg.Height))
	return r, nil
}

// SetAvatar registers the avatar whose root may appear in rendered scenes.
// GPU resources are created the first time the root is seen attached.
func (r *Renderer) SetAvatar(av *vrm.Avatar) {
	if r.avatar == av {
		return
	}
	r.releaseAvatar()
	r.avatar = av
}

// Uploaded reports whether the registered avatar has GPU resources.
func (r *Renderer) Uploaded() bool {
	return r.gpu != nil
}

// Render clears the frame and draws the grids and the avatar from cam.
func (r *Renderer) Render(s *scene.Scene, cam *camera.Perspective) {
	gl.Viewport(0, 0, int32(r.config.Width), int32(r.config.Height))
	c := r.config.ClearColor
	gl.ClearColor(c[0], c[1], c[2], 1)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	viewProj := cam.ViewProjection()
	r.drawGrids(s.Grids(), viewProj)

	if root := s.Avatar(); root != nil && r.avatar != nil && r.avatar.Root == root {
		if r.gpu == nil {
			r.upload()
		}
		r.drawAvatar(viewProj, s.Lights())
	}

	r.checkError("render")
}

// DrawLines draws line segments given as endpoint pairs in world space.
func (r *Renderer) DrawLines(cam *camera.Perspective, points []mgl32.Vec3, rgb [3]float32) {
	if len(points) < 2 {
		return
	}
	data := segmentVertices(points, rgb)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.lines.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(data)*4, gl.Ptr(data), gl.STREAM_DRAW)
	r.lines.count = int32(len(points))

	viewProj := cam.ViewProjection()
	r.lineProgram.Use()
	gl.UniformMatrix4fv(r.lineProgram.Uniform("uViewProj"), 1, false, &viewProj[0])
	gl.BindVertexArray(r.lines.vao)
	gl.DrawArrays(gl.LINES, 0, r.lines.count)
	gl.BindVertexArray(0)

	r.checkError("lines")
}

// Close releases all GPU resources.
func (r *Renderer) Close() {
	r.log.Info("closing renderer")
	r.releaseAvatar()
	for g, buf := range r.grids {
		buf.delete()
		delete(r.grids, g)
	}
	if r.lines != nil {
		r.lines.delete()
		r.lines = nil
	}
	if r.boneUBO != 0 {
		gl.DeleteBuffers(1, &r.boneUBO)
		r.boneUBO = 0
	}
	texture.Delete(r.white)
	r.white = 0
	if r.lineProgram != nil {
		r.lineProgram.Delete()
	}
	if r.meshProgram != nil {
		r.meshProgram.Delete()
	}
}

func (r *Renderer) drawGrids(grids []*scene.GridHelper, viewProj mgl32.Mat4) {
	if len(grids) == 0 {
		return
	}
	r.lineProgram.Use()
	gl.UniformMatrix4fv(r.lineProgram.Uniform("uViewProj"), 1, false, &viewProj[0])

	for _, g := range grids {
		buf, ok := r.grids[g]
		if !ok {
			buf = newLineBuffer()
			data := lineVertices(g.Vertices())
			gl.BindBuffer(gl.ARRAY_BUFFER, buf.vbo)
			gl.BufferData(gl.ARRAY_BUFFER, len(data)*4, gl.Ptr(data), gl.STATIC_DRAW)
			buf.count = int32(len(g.Vertices()))
			r.grids[g] = buf
		}
		gl.BindVertexArray(buf.vao)
		gl.DrawArrays(gl.LINES, 0, buf.count)
	}
	gl.BindVertexArray(0)
}

func (r *Renderer) upload() {
	av := r.avatar
	gpu := &gpuAvatar{
		prims:    make([][]gpuPrimitive, len(av.Meshes)),
		textures: make([]uint32, len(av.Images)),
		draws:    drawList(av),
	}

	for i, img := range av.Images {
		if img != nil {
			gpu.textures[i] = texture.Upload(img)
		}
	}

	var vertices, triangles int
	for mi, inst := range av.Meshes {
		gpu.prims[mi] = make([]gpuPrimitive, len(inst.Mesh.Primitives))
		for pi, p := range inst.Mesh.Primitives {
			if p.VertexCount() == 0 {
				continue
			}
			gpu.prims[mi][pi] = uploadPrimitive(p)
			vertices += p.VertexCount()
			triangles += int(gpu.prims[mi][pi].count) / 3
		}
	}

	r.gpu = gpu
	r.log.Info("avatar uploaded",
		zap.Int("meshes", len(av.Meshes)),
		zap.Int("textures", len(av.Images)),
		zap.Int("vertices", vertices),
		zap.Int("triangles", triangles))
	r.checkError("upload")
}

func uploadPrimitive(p *vrm.Primitive) gpuPrimitive {
	var gp gpuPrimitive
	gp.skinned = p.Skinned()

	data := interleave(p)
	gl.GenVertexArrays(1, &gp.vao)
	gl.BindVertexArray(gp.vao)

	gl.GenBuffers(1, &gp.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, gp.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(data)*4, gl.Ptr(data), gl.STATIC_DRAW)

	stride := int32(meshStride * 4)
	offset := uintptr(0)
	for loc, size := range []int32{3, 3, 2, 4, 4} {
		gl.VertexAttribPointerWithOffset(uint32(loc), size, gl.FLOAT, false, stride, offset)
		gl.EnableVertexAttribArray(uint32(loc))
		offset += uintptr(size) * 4
	}

	if len(p.Indices) > 0 {
		gl.GenBuffers(1, &gp.ebo)
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, gp.ebo)
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(p.Indices)*4, gl.Ptr(p.Indices), gl.STATIC_DRAW)
		gp.count = int32(len(p.Indices))
	} else {
		gp.count = int32(p.VertexCount())
	}

	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	return gp
}

func (r *Renderer) drawAvatar(viewProj mgl32.Mat4, lights []*lighting.DirectionalLight) {
	av, gpu := r.avatar, r.gpu
	prog := r.meshProgram
	prog.Use()

	gl.UniformMatrix4fv(prog.Uniform("uViewProj"), 1, false, &viewProj[0])
	gl.Uniform1i(prog.Uniform("uTexture"), 0)
	amb := r.config.Ambient
	gl.Uniform3f(prog.Uniform("uAmbient"), amb[0], amb[1], amb[2])
	r.setLights(lights)

	gl.ActiveTexture(gl.TEXTURE0)
	var boundSkin *vrm.Skin
	blending := false

	for _, item := range gpu.draws {
		inst := av.Meshes[item.mesh]
		p := inst.Mesh.Primitives[item.prim]
		gp := gpu.prims[item.mesh][item.prim]

		if item.alpha == alphaBlend && !blending {
			gl.Enable(gl.BLEND)
			gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
			gl.DepthMask(false)
			blending = true
		}

		tex := r.white
		base := [4]float32{1, 1, 1, 1}
		cutoff := float32(0.5)
		doubleSided := false
		if p.Material >= 0 && p.Material < len(av.Materials) {
			mat := av.Materials[p.Material]
			base = mat.BaseColor
			cutoff = mat.AlphaCutoff
			doubleSided = mat.DoubleSided
			if mat.Image >= 0 && mat.Image < len(gpu.textures) && gpu.textures[mat.Image] != 0 {
				tex = gpu.textures[mat.Image]
			}
		}
		gl.BindTexture(gl.TEXTURE_2D, tex)
		gl.Uniform4f(prog.Uniform("uBaseColor"), base[0], base[1], base[2], base[3])
		gl.Uniform1i(prog.Uniform("uAlphaMode"), item.alpha)
		gl.Uniform1f(prog.Uniform("uAlphaCutoff"), cutoff)
		if doubleSided {
			gl.Disable(gl.CULL_FACE)
		} else {
			gl.Enable(gl.CULL_FACE)
			gl.CullFace(gl.BACK)
		}

		skinned := gp.skinned && inst.Skin != nil && r.bindSkin(inst.Skin, &boundSkin)
		if skinned {
			gl.Uniform1i(prog.Uniform("uSkinned"), 1)
		} else {
			model := inst.Node.WorldMatrix()
			gl.Uniform1i(prog.Uniform("uSkinned"), 0)
			gl.UniformMatrix4fv(prog.Uniform("uModel"), 1, false, &model[0])
		}

		gl.BindVertexArray(gp.vao)
		if gp.ebo != 0 {
			gl.DrawElementsWithOffset(gl.TRIANGLES, gp.count, gl.UNSIGNED_INT, 0)
		} else {
			gl.DrawArrays(gl.TRIANGLES, 0, gp.count)
		}
	}

	if blending {
		gl.Disable(gl.BLEND)
		gl.DepthMask(true)
	}
	gl.Disable(gl.CULL_FACE)
	gl.BindVertexArray(0)
	gl.BindTexture(gl.TEXTURE_2D, 0)
}

// bindSkin uploads the joint matrices of skin unless it is already bound.
// Skins with more joints than the bone block holds are drawn unskinned.
func (r *Renderer) bindSkin(skin *vrm.Skin, bound **vrm.Skin) bool {
	if len(skin.Joints) > shaders.MaxBones {
		if !r.warned[skin] {
			r.log.Warn("skin exceeds bone limit, drawing bind pose",
				zap.Int("joints", len(skin.Joints)),
				zap.Int("limit", shaders.MaxBones))
			r.warned[skin] = true
		}
		return false
	}
	if *bound == skin {
		return true
	}

	r.bones = skin.AppendJointMatrices(r.bones[:0])
	if len(r.bones) > 0 {
		gl.BindBuffer(gl.UNIFORM_BUFFER, r.boneUBO)
		gl.BufferSubData(gl.UNIFORM_BUFFER, 0, len(r.bones)*16*4, gl.Ptr(&r.bones[0][0]))
		gl.BindBuffer(gl.UNIFORM_BUFFER, 0)
	}
	*bound = skin
	return true
}

func (r *Renderer) setLights(lights []*lighting.DirectionalLight) {
	prog := r.meshProgram
	n := min(len(lights), shaders.MaxLights)
	var dirs, colors [shaders.MaxLights * 3]float32
	for i := 0; i < n; i++ {
		d := lights[i].Direction()
		c := lights[i].Radiance()
		copy(dirs[i*3:], d[:])
		copy(colors[i*3:], c[:])
	}
	gl.Uniform1i(prog.Uniform("uLightCount"), int32(n))
	gl.Uniform3fv(prog.Uniform("uLightDir"), shaders.MaxLights, &dirs[0])
	gl.Uniform3fv(prog.Uniform("uLightColor"), shaders.MaxLights, &colors[0])
}

func (r *Renderer) releaseAvatar() {
	if r.gpu == nil {
		return
	}
	for _, prims := range r.gpu.prims {
		for _, gp := range prims {
			if gp.vao != 0 {
				gl.DeleteVertexArrays(1, &gp.vao)
			}
			if gp.vbo != 0 {
				gl.DeleteBuffers(1, &gp.vbo)
			}
			if gp.ebo != 0 {
				gl.DeleteBuffers(1, &gp.ebo)
			}
		}
	}
	texture.Delete(r.gpu.textures...)
	r.gpu = nil
}

// checkError logs every pending GL error. Rendering continues regardless.
func (r *Renderer) checkError(stage string) {
	for code := gl.GetError(); code != gl.NO_ERROR; code = gl.GetError() {
		r.log.Error("gl error", zap.String("stage", stage), zap.String("code", ErrorName(code)))
	}
}

// ErrorName returns the symbolic name of a GL error code.
func ErrorName(code uint32) string {
	switch code {
	case gl.INVALID_ENUM:
		return "GL_INVALID_ENUM"
	case gl.INVALID_VALUE:
		return "GL_INVALID_VALUE"
	case gl.INVALID_OPERATION:
		return "GL_INVALID_OPERATION"
	case gl.INVALID_FRAMEBUFFER_OPERATION:
		return "GL_INVALID_FRAMEBUFFER_OPERATION"
	case gl.OUT_OF_MEMORY:
		return "GL_OUT_OF_MEMORY"
	}
	return "GL_UNKNOWN_ERROR"
}

func newLineBuffer() *lineBuffer {
	buf := &lineBuffer{}
	gl.GenVertexArrays(1, &buf.vao)
	gl.BindVertexArray(buf.vao)
	gl.GenBuffers(1, &buf.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, buf.vbo)

	stride := int32(lineStride * 4)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, stride, 0)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, stride, 3*4)
	gl.EnableVertexAttribArray(1)

	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	return buf
}

func (b *lineBuffer) delete() {
	gl.DeleteVertexArrays(1, &b.vao)
	gl.DeleteBuffers(1, &b.vbo)
}
