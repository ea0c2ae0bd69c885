package ui2d

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/image/font/basicfont"
)

func TestFontAtlasLayout(t *testing.T) {
	f := newFontAtlas(basicfont.Face7x13)

	w, h := f.GlyphSize()
	if w != 7 || h != 13 {
		t.Fatalf("glyph size = %dx%d, want 7x13", w, h)
	}
	if b := f.atlas.Bounds(); b.Dx() != 16*7 || b.Dy() != 6*13 {
		t.Errorf("atlas bounds = %v", b)
	}
	if f.TextureID() != 0 {
		t.Error("atlas should not be uploaded")
	}
}

func TestFontAtlasHasInk(t *testing.T) {
	f := newFontAtlas(basicfont.Face7x13)
	atlas := f.atlas

	inked := func(ch rune) bool {
		col, row := f.cell(ch)
		for y := row * 13; y < (row+1)*13; y++ {
			for x := col * 7; x < (col+1)*7; x++ {
				if atlas.RGBAAt(x, y).A != 0 {
					return true
				}
			}
		}
		return false
	}
	if !inked('A') {
		t.Error("glyph A has no ink")
	}
	if inked(' ') {
		t.Error("space should be blank")
	}
}

func TestGlyphUV(t *testing.T) {
	f := newFontAtlas(basicfont.Face7x13)

	u0, v0, u1, v1 := f.GetGlyphUV(' ')
	if u0 != 0 || v0 != 0 {
		t.Errorf("space should be the first cell, got %v,%v", u0, v0)
	}
	if u1 != 1.0/16 || v1 != 1.0/6 {
		t.Errorf("cell extent = %v,%v", u1, v1)
	}

	qu0, qv0, _, _ := f.GetGlyphUV('?')
	eu0, ev0, _, _ := f.GetGlyphUV('é')
	if qu0 != eu0 || qv0 != ev0 {
		t.Error("unsupported runes should fall back to '?'")
	}
}

func TestMeasureText(t *testing.T) {
	f := newFontAtlas(basicfont.Face7x13)
	tests := []struct {
		text         string
		scale        float32
		wantW, wantH float32
	}{
		{"", 1, 0, 0},
		{"abc", 1, 21, 13},
		{"abc", 2, 42, 26},
		{"ab\nlonger", 1, 42, 26},
	}
	for _, tt := range tests {
		w, h := f.MeasureText(tt.text, tt.scale)
		if w != tt.wantW || h != tt.wantH {
			t.Errorf("MeasureText(%q, %v) = %v,%v want %v,%v", tt.text, tt.scale, w, h, tt.wantW, tt.wantH)
		}
	}
}

func TestRendererQueuesGeometry(t *testing.T) {
	r := newRenderer(800, 600, newFontAtlas(basicfont.Face7x13))

	r.DrawPanel(10, 10, 100, 50, ColorPanelBg, ColorPanelBorder)
	if got := len(r.solidVertices) / solidStride; got != 5*6 {
		t.Errorf("panel should queue 5 quads, got %d vertices", got)
	}

	r.DrawText(0, 0, "a b\nc", 1, ColorText)
	if got := len(r.textVertices) / textStride; got != 3*6 {
		t.Errorf("text should queue 3 glyph quads, got %d vertices", got)
	}
	// Third glyph starts a new line
	last := r.textVertices[2*6*textStride:]
	if last[0] != 0 || last[1] != 13 {
		t.Errorf("newline glyph at %v,%v", last[0], last[1])
	}

	r.Begin()
	if len(r.solidVertices) != 0 || len(r.textVertices) != 0 {
		t.Error("Begin should clear the batches")
	}
}

func TestRendererWithoutFont(t *testing.T) {
	r := newRenderer(800, 600, nil)
	r.DrawText(0, 0, "hi", 1, ColorText)
	if len(r.textVertices) != 0 {
		t.Error("text without a font should be skipped")
	}
	if w, h := r.MeasureText("hi", 1); w != 0 || h != 0 {
		t.Errorf("measure without font = %v,%v", w, h)
	}
}

func TestProjection(t *testing.T) {
	r := newRenderer(800, 600, nil)
	p := r.Projection()

	topLeft := p.Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	if !topLeft.ApproxEqual(mgl32.Vec4{-1, 1, 0, 1}) {
		t.Errorf("top-left maps to %v", topLeft)
	}
	bottomRight := p.Mul4x1(mgl32.Vec4{800, 600, 0, 1})
	if !bottomRight.ApproxEqual(mgl32.Vec4{1, -1, 0, 1}) {
		t.Errorf("bottom-right maps to %v", bottomRight)
	}
}

func TestColorFade(t *testing.T) {
	tests := []struct {
		opacity float32
		want    float32
	}{
		{1, ColorPanelBg.A},
		{0.5, ColorPanelBg.A * 0.5},
		{0, 0},
		{-1, 0},
		{2, ColorPanelBg.A},
	}
	for _, tt := range tests {
		c := ColorPanelBg.Fade(tt.opacity)
		if c.A != tt.want || c.R != ColorPanelBg.R {
			t.Errorf("Fade(%v) = %+v, want alpha %v", tt.opacity, c, tt.want)
		}
	}
}
