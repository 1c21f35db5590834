package pdf

import (
	"image"
	"image/color"
)

// Threshold is the luminance cut-off used by Binarize.
const Threshold = 140

// Binarize converts img to grayscale and thresholds it: pixels darker than
// Threshold become black, everything else white. The vendor's report
// templates print values over pale colored panels that confuse tesseract.
func Binarize(img image.Image) *image.Gray {
	b := img.Bounds()
	out := image.NewGray(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			g := color.GrayModel.Convert(img.At(x, y)).(color.Gray)
			if g.Y < Threshold {
				out.SetGray(x, y, color.Gray{Y: 0})
			} else {
				out.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	return out
}
