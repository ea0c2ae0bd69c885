package texture

import (
	"image"
	"image/color"
	"testing"
)

func TestToRGBAKeepsZeroOriginRGBA(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	if got := ToRGBA(img); got != img {
		t.Error("zero-origin RGBA should be returned unchanged")
	}
}

func TestToRGBAConvertsAndRebases(t *testing.T) {
	src := image.NewNRGBA(image.Rect(2, 3, 6, 5))
	src.SetNRGBA(2, 3, color.NRGBA{R: 255, A: 255})
	src.SetNRGBA(5, 4, color.NRGBA{B: 255, A: 255})

	got := ToRGBA(src)
	if got.Rect != image.Rect(0, 0, 4, 2) {
		t.Fatalf("expected rebased bounds, got %v", got.Rect)
	}
	if c := got.RGBAAt(0, 0); c.R != 255 || c.A != 255 {
		t.Errorf("top-left pixel = %v", c)
	}
	if c := got.RGBAAt(3, 1); c.B != 255 || c.A != 255 {
		t.Errorf("bottom-right pixel = %v", c)
	}
}

func TestFit(t *testing.T) {
	tests := []struct {
		name         string
		w, h, limit  int
		wantW, wantH int
	}{
		{"small image untouched", 64, 32, 128, 64, 32},
		{"wide image", 4096, 1024, 2048, 2048, 512},
		{"tall image", 100, 400, 200, 50, 200},
		{"no limit", 5000, 5000, 0, 5000, 5000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := image.NewGray(image.Rect(0, 0, tt.w, tt.h))
			b := Fit(img, tt.limit).Bounds()
			if b.Dx() != tt.wantW || b.Dy() != tt.wantH {
				t.Errorf("got %dx%d, want %dx%d", b.Dx(), b.Dy(), tt.wantW, tt.wantH)
			}
		})
	}
}

func TestSolid(t *testing.T) {
	c := color.RGBA{R: 10, G: 20, B: 30, A: 255}
	img := Solid(c)
	if img.Bounds().Dx() != 1 || img.RGBAAt(0, 0) != c {
		t.Errorf("unexpected solid image %v", img.RGBAAt(0, 0))
	}
}
