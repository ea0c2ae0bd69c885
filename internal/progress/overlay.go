package progress

import "github.com/Faultbox/vrmviewer/internal/engine/ui2d"

// Canvas is the subset of the 2D renderer the overlay draws with.
type Canvas interface {
	DrawPanel(x, y, width, height float32, bg, border ui2d.Color)
	DrawRect(x, y, width, height float32, color ui2d.Color)
	DrawText(x, y float32, text string, scale float32, color ui2d.Color)
	MeasureText(text string, scale float32) (float32, float32)
	GetScreenSize() (int, int)
}

const (
	overlayWidth   = 560
	overlayPadding = 12
	barHeight      = 18
	textScale      = 1.5
)

// Overlay draws the progress elements as a centered panel.
type Overlay struct {
	elems Elements
}

// NewOverlay creates an overlay for elems.
func NewOverlay(elems Elements) *Overlay {
	return &Overlay{elems: elems}
}

// Draw queues the overlay geometry. Nothing is drawn once the container is removed.
func (o *Overlay) Draw(c Canvas) {
	cont := o.elems.Container
	if cont == nil || cont.Removed || cont.Opacity <= 0 {
		return
	}
	alpha := cont.Opacity

	sw, sh := c.GetScreenSize()
	_, lineH := c.MeasureText("M", textScale)

	width := float32(overlayWidth)
	if limit := float32(sw) - 2*overlayPadding; width > limit {
		width = limit
	}
	height := overlayPadding*4 + lineH*2 + barHeight
	x := (float32(sw) - width) / 2
	y := (float32(sh) - height) / 2

	c.DrawPanel(x, y, width, height, ui2d.ColorPanelBg.Fade(alpha), ui2d.ColorPanelBorder.Fade(alpha))

	cy := y + overlayPadding
	c.DrawText(x+overlayPadding, cy, o.elems.CurrentText.Value, textScale, ui2d.ColorText.Fade(alpha))
	cy += lineH + overlayPadding

	barW := width - 2*overlayPadding
	c.DrawRect(x+overlayPadding, cy, barW, barHeight, ui2d.ColorTrack.Fade(alpha))
	barColor := ui2d.ColorBar
	if cont.Failed {
		barColor = ui2d.ColorError
	}
	fill := barW * float32(o.elems.Bar.Value/100)
	if fill > 0 {
		c.DrawRect(x+overlayPadding, cy, fill, barHeight, barColor.Fade(alpha))
	}
	cy += barHeight + overlayPadding

	if msg := o.elems.PercentText.Value; msg != "" {
		tw, _ := c.MeasureText(msg, textScale)
		textColor := ui2d.ColorText
		if cont.Failed {
			textColor = ui2d.ColorError
		}
		c.DrawText(x+(width-tw)/2, cy, msg, textScale, textColor.Fade(alpha))
	}
}
