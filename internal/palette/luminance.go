package palette

import (
	"image"
	"math"

	"folio/internal/colors"
)

// AverageLuminance averages the opaque pixels of a downscaled copy and
// returns the relative luminance of that mean color.
func (e *Extractor) AverageLuminance(img image.Image) (float64, error) {
	average, err := e.AverageColor(img)
	if err != nil {
		return 0, err
	}
	return average.Luminance(), nil
}

func (e *Extractor) AverageColor(img image.Image) (colors.Color, error) {
	if img == nil || img.Bounds().Empty() {
		return colors.Color{}, ErrEmptyImage
	}

	sampled := downscale(toNRGBA(img), e.options.MaxDimension, e.options.WorkerCount)
	width := sampled.Bounds().Dx()
	height := sampled.Bounds().Dy()

	var rSum, gSum, bSum float64
	var count int
	for y := 0; y < height; y++ {
		row := y * sampled.Stride
		for x := 0; x < width; x++ {
			offset := row + x*4
			if int(sampled.Pix[offset+3]) <= e.options.AlphaThreshold {
				continue
			}
			rSum += float64(sampled.Pix[offset])
			gSum += float64(sampled.Pix[offset+1])
			bSum += float64(sampled.Pix[offset+2])
			count++
		}
	}
	if count == 0 {
		return colors.Color{}, ErrNoEligiblePixels
	}

	mean := func(sum float64) uint8 {
		return uint8(math.Round(sum / float64(count)))
	}
	return colors.RGB(mean(rSum), mean(gSum), mean(bSum)), nil
}
