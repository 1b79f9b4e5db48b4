package ui

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/zhubert/imagine/internal/dataurl"
)

func testImageURI(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return dataurl.Encode("image/png", buf.Bytes())
}

func TestGallery_Empty(t *testing.T) {
	g := NewGallery()
	g.SetSize(60, 20)

	if _, _, ok := g.Selected(); ok {
		t.Error("empty gallery has no selection")
	}
	if !strings.Contains(stripANSI(g.View()), "No results yet") {
		t.Error("empty gallery should show the placeholder")
	}
}

func TestGallery_InvalidImageRendersErrorCard(t *testing.T) {
	g := NewGallery()
	g.SetSize(100, 30)
	g.SetImages([]string{testImageURI(t, 16, 16), "data:image/png;base64,!!!", "not a uri"}, 3)

	view := stripANSI(g.View())
	if strings.Count(view, InvalidImageText) != 2 {
		t.Errorf("expected 2 error cards, got view:\n%s", view)
	}
	if !strings.Contains(view, "#1 16×16 PNG") {
		t.Errorf("valid card caption missing:\n%s", view)
	}

	g.Select(1)
	if g.SelectedValid() {
		t.Error("selected error card should not be valid")
	}
	g.Select(0)
	if !g.SelectedValid() || g.SelectedImage() == nil || g.SelectedInfo().Width != 16 {
		t.Error("first card should decode")
	}
}

func TestGallery_Move(t *testing.T) {
	uri := testImageURI(t, 4, 4)
	g := NewGallery()
	g.SetImages([]string{uri, uri, uri, uri}, 2)

	tests := []struct {
		dx, dy int
		want   int
	}{
		{1, 0, 1},
		{0, 1, 3},
		{1, 0, 3},
		{-1, -1, 0},
		{-5, 0, 0},
	}
	for _, tt := range tests {
		g.Move(tt.dx, tt.dy)
		if i, _, _ := g.Selected(); i != tt.want {
			t.Errorf("Move(%d,%d) selected %d, want %d", tt.dx, tt.dy, i, tt.want)
		}
	}
}

func TestGallery_SetImagesResetsOutOfRangeSelection(t *testing.T) {
	uri := testImageURI(t, 4, 4)
	g := NewGallery()
	g.SetImages([]string{uri, uri, uri}, 3)
	g.Select(2)
	g.SetImages([]string{uri}, 1)

	if i, _, _ := g.Selected(); i != 0 {
		t.Errorf("selected = %d, want 0", i)
	}
	if g.Columns() != 1 {
		t.Errorf("Columns = %d", g.Columns())
	}
}

func TestFitCells(t *testing.T) {
	tests := []struct {
		w, h, maxC, maxR int
		cols, rows       int
	}{
		{100, 100, 20, 20, 20, 10},
		{200, 100, 20, 20, 20, 5},
		{100, 200, 40, 10, 10, 10},
		{0, 10, 10, 10, 0, 0},
	}
	for _, tt := range tests {
		c, r := FitCells(tt.w, tt.h, tt.maxC, tt.maxR)
		if c != tt.cols || r != tt.rows {
			t.Errorf("FitCells(%d,%d,%d,%d) = %d,%d want %d,%d", tt.w, tt.h, tt.maxC, tt.maxR, c, r, tt.cols, tt.rows)
		}
	}
}

func TestRenderImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	out := RenderImage(img, 4, 10)
	if lines := strings.Count(out, "\n") + 1; lines != 2 {
		t.Errorf("rendered %d lines, want 2", lines)
	}
	if strings.Count(stripANSI(out), halfBlock) != 8 {
		t.Errorf("want 8 half blocks, got %q", stripANSI(out))
	}
}
