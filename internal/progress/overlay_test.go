package progress

import (
	"testing"

	"github.com/Faultbox/vrmviewer/internal/engine/ui2d"
)

type drawCall struct {
	kind string
	x, w float32
	text string
	col  ui2d.Color
}

type fakeCanvas struct {
	calls []drawCall
}

func (c *fakeCanvas) DrawPanel(x, y, width, height float32, bg, border ui2d.Color) {
	c.calls = append(c.calls, drawCall{kind: "panel", x: x, w: width, col: bg})
}

func (c *fakeCanvas) DrawRect(x, y, width, height float32, color ui2d.Color) {
	c.calls = append(c.calls, drawCall{kind: "rect", x: x, w: width, col: color})
}

func (c *fakeCanvas) DrawText(x, y float32, text string, scale float32, color ui2d.Color) {
	c.calls = append(c.calls, drawCall{kind: "text", x: x, text: text, col: color})
}

func (c *fakeCanvas) MeasureText(text string, scale float32) (float32, float32) {
	return float32(len(text)) * 8 * scale, 13 * scale
}

func (c *fakeCanvas) GetScreenSize() (int, int) {
	return 1280, 720
}

func TestOverlayDrawsBarFill(t *testing.T) {
	elems := NewElements()
	elems.CurrentText.Value = "Loading asset: a.vrm (1/2)"
	elems.Bar.Value = 50

	c := &fakeCanvas{}
	NewOverlay(elems).Draw(c)

	var rects []drawCall
	var texts []string
	for _, call := range c.calls {
		switch call.kind {
		case "rect":
			rects = append(rects, call)
		case "text":
			texts = append(texts, call.text)
		}
	}
	if len(rects) != 2 {
		t.Fatalf("expected track and fill rects, got %d", len(rects))
	}
	if want := rects[0].w / 2; rects[1].w != want {
		t.Errorf("fill width = %v, want %v", rects[1].w, want)
	}
	if len(texts) != 1 || texts[0] != elems.CurrentText.Value {
		t.Errorf("unexpected texts %v", texts)
	}
}

func TestOverlayEmptyBarHasNoFill(t *testing.T) {
	c := &fakeCanvas{}
	NewOverlay(NewElements()).Draw(c)

	rects := 0
	for _, call := range c.calls {
		if call.kind == "rect" {
			rects++
		}
	}
	if rects != 1 {
		t.Errorf("expected only the bar track, got %d rects", rects)
	}
}

func TestOverlayCentersPercentText(t *testing.T) {
	elems := NewElements()
	elems.PercentText.Value = CompleteMessage

	c := &fakeCanvas{}
	NewOverlay(elems).Draw(c)

	last := c.calls[len(c.calls)-1]
	if last.kind != "text" || last.text != CompleteMessage {
		t.Fatalf("expected completion text last, got %+v", last)
	}
	tw, _ := c.MeasureText(CompleteMessage, textScale)
	if want := (1280 - tw) / 2; last.x != want {
		t.Errorf("text x = %v, want %v", last.x, want)
	}
}

func TestOverlayHonorsOpacity(t *testing.T) {
	elems := NewElements()
	elems.Container.Opacity = 0.5

	c := &fakeCanvas{}
	NewOverlay(elems).Draw(c)
	for _, call := range c.calls {
		if call.kind == "text" && call.col.A != 0.5*ui2d.ColorText.A {
			t.Errorf("text alpha = %v, want %v", call.col.A, 0.5*ui2d.ColorText.A)
		}
	}

	elems.Container.Removed = true
	c = &fakeCanvas{}
	NewOverlay(elems).Draw(c)
	if len(c.calls) != 0 {
		t.Errorf("removed container should not draw, got %d calls", len(c.calls))
	}
}

func TestOverlayFailedColors(t *testing.T) {
	elems := NewElements()
	elems.Bar.Value = 100
	elems.PercentText.Value = "Loading Failed: boom"
	elems.Container.Failed = true

	c := &fakeCanvas{}
	NewOverlay(elems).Draw(c)

	var fill, msg drawCall
	for _, call := range c.calls {
		switch {
		case call.kind == "rect":
			fill = call
		case call.kind == "text" && call.text == elems.PercentText.Value:
			msg = call
		}
	}
	if fill.col != ui2d.ColorError {
		t.Errorf("fill color = %+v, want %+v", fill.col, ui2d.ColorError)
	}
	if msg.col != ui2d.ColorError {
		t.Errorf("message color = %+v, want %+v", msg.col, ui2d.ColorError)
	}
}
