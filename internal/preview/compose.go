package preview

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// Compose lays frames out left to right on a black canvas with padding pixels
// between neighbours. The canvas is as tall as the tallest frame. Compose
// returns nil for an empty slice.
func Compose(frames []image.Image, padding int) *image.NRGBA {
	if len(frames) == 0 {
		return nil
	}
	if padding < 0 {
		padding = 0
	}

	width, height := 0, 0
	for _, f := range frames {
		b := f.Bounds()
		width += b.Dx()
		height = max(height, b.Dy())
	}
	width += padding * (len(frames) - 1)

	canvas := imaging.New(width, height, color.Black)

	x := 0
	for _, f := range frames {
		canvas = imaging.Paste(canvas, f, image.Pt(x, 0))
		x += f.Bounds().Dx() + padding
	}

	return canvas
}
