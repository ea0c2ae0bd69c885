package ui2d

// Color represents an RGBA color with float components (0.0 to 1.0).
type Color struct {
	R, G, B, A float32
}

// Overlay palette.
var (
	ColorPanelBg     = Color{0.08, 0.08, 0.12, 0.95}
	ColorPanelBorder = Color{0.3, 0.3, 0.4, 1}
	ColorTrack       = Color{0.05, 0.05, 0.08, 1} // Empty part of a progress bar
	ColorBar         = Color{0.2, 0.6, 0.9, 1}
	ColorError       = Color{0.85, 0.25, 0.25, 1}
	ColorText        = Color{0.9, 0.9, 0.9, 1}
)

// Fade scales the color's alpha by opacity.
func (c Color) Fade(opacity float32) Color {
	if opacity < 0 {
		opacity = 0
	}
	if opacity > 1 {
		opacity = 1
	}
	return Color{c.R, c.G, c.B, c.A * opacity}
}
