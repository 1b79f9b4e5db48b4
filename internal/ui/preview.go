package ui

import (
	"image"
	"image/color"
	"strings"

	"charm.land/lipgloss/v2"
	xdraw "golang.org/x/image/draw"
)

// halfBlock draws two vertically stacked pixels per cell: the foreground
// colors the upper half, the background the lower half.
const halfBlock = "▀"

// FitCells returns the cell size of an imgW×imgH image scaled to fit in
// maxCols×maxRows cells, keeping its aspect ratio. Each cell is one pixel
// wide and two pixels tall.
func FitCells(imgW, imgH, maxCols, maxRows int) (cols, rows int) {
	if imgW <= 0 || imgH <= 0 || maxCols <= 0 || maxRows <= 0 {
		return 0, 0
	}
	sx := float64(maxCols) / float64(imgW)
	sy := float64(maxRows*2) / float64(imgH)
	s := min(sx, sy)
	cols = max(int(float64(imgW)*s), 1)
	rows = max(int(float64(imgH)*s)/2, 1)
	return cols, rows
}

// RenderImage renders img as half-block text fitting in maxCols×maxRows.
func RenderImage(img image.Image, maxCols, maxRows int) string {
	b := img.Bounds()
	cols, rows := FitCells(b.Dx(), b.Dy(), maxCols, maxRows)
	if cols == 0 {
		return ""
	}

	dst := image.NewRGBA(image.Rect(0, 0, cols, rows*2))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)

	var sb strings.Builder
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			top := dst.RGBAAt(x, y*2)
			bottom := dst.RGBAAt(x, y*2+1)
			sb.WriteString(lipgloss.NewStyle().
				Foreground(opaque(top)).
				Background(opaque(bottom)).
				Render(halfBlock))
		}
		if y < rows-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

func opaque(c color.RGBA) color.Color {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xff}
}
