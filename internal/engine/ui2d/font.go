package ui2d

import (
	"image"

	"github.com/go-gl/gl/v4.1-core/gl"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	firstGlyph   = 32
	lastGlyph    = 126
	atlasColumns = 16
)

// Font is a fixed-width bitmap font baked into a texture atlas.
type Font struct {
	face    *basicfont.Face
	atlas   *image.RGBA
	glyphW  int
	glyphH  int
	texture uint32
}

// NewFont bakes the 7x13 basic font and uploads the atlas.
func NewFont() *Font {
	f := newFontAtlas(basicfont.Face7x13)
	f.upload()
	return f
}

// newFontAtlas rasterizes printable ASCII into an atlas without touching GL.
func newFontAtlas(face *basicfont.Face) *Font {
	f := &Font{face: face, glyphW: face.Advance, glyphH: face.Height}

	count := lastGlyph - firstGlyph + 1
	rows := (count + atlasColumns - 1) / atlasColumns
	f.atlas = image.NewRGBA(image.Rect(0, 0, atlasColumns*f.glyphW, rows*f.glyphH))

	d := font.Drawer{Dst: f.atlas, Src: image.White, Face: face}
	for ch := firstGlyph; ch <= lastGlyph; ch++ {
		col, row := f.cell(rune(ch))
		d.Dot = fixed.P(col*f.glyphW, row*f.glyphH+face.Ascent)
		d.DrawString(string(rune(ch)))
	}
	return f
}

func (f *Font) upload() {
	gl.GenTextures(1, &f.texture)
	gl.BindTexture(gl.TEXTURE_2D, f.texture)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	b := f.atlas.Bounds()
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(b.Dx()), int32(b.Dy()), 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(f.atlas.Pix))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.BindTexture(gl.TEXTURE_2D, 0)
}

// cell returns the atlas column and row of ch. Unsupported runes map to '?'.
func (f *Font) cell(ch rune) (int, int) {
	if ch < firstGlyph || ch > lastGlyph {
		ch = '?'
	}
	i := int(ch) - firstGlyph
	return i % atlasColumns, i / atlasColumns
}

// GlyphSize returns the unscaled glyph cell size in pixels.
func (f *Font) GlyphSize() (int, int) {
	return f.glyphW, f.glyphH
}

// GetGlyphUV returns the atlas texture coordinates of ch.
func (f *Font) GetGlyphUV(ch rune) (u0, v0, u1, v1 float32) {
	col, row := f.cell(ch)
	b := f.atlas.Bounds()
	aw, ah := float32(b.Dx()), float32(b.Dy())
	u0 = float32(col*f.glyphW) / aw
	v0 = float32(row*f.glyphH) / ah
	u1 = float32((col+1)*f.glyphW) / aw
	v1 = float32((row+1)*f.glyphH) / ah
	return u0, v0, u1, v1
}

// MeasureText returns the size of text at scale, honoring newlines.
func (f *Font) MeasureText(text string, scale float32) (float32, float32) {
	if text == "" {
		return 0, 0
	}
	lines, longest, cur := 1, 0, 0
	for _, ch := range text {
		if ch == '\n' {
			lines++
			cur = 0
			continue
		}
		cur++
		longest = max(longest, cur)
	}
	return float32(longest*f.glyphW) * scale, float32(lines*f.glyphH) * scale
}

// TextureID returns the GL texture of the atlas, zero before upload.
func (f *Font) TextureID() uint32 {
	return f.texture
}

// Close releases the atlas texture.
func (f *Font) Close() {
	if f.texture != 0 {
		gl.DeleteTextures(1, &f.texture)
		f.texture = 0
	}
}
