package palette

import (
	"image"
	"image/draw"
	"math"
	"sync"
)

func toNRGBA(img image.Image) *image.NRGBA {
	if nrgba, ok := img.(*image.NRGBA); ok && nrgba.Bounds().Min == (image.Point{}) {
		return nrgba
	}

	bounds := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(dst, dst.Bounds(), img, bounds.Min, draw.Src)
	return dst
}

// downscale shrinks src so its longest side is at most maxDimension, splitting
// rows across workers.
func downscale(src *image.NRGBA, maxDimension int, workerCount int) *image.NRGBA {
	sourceWidth := src.Bounds().Dx()
	sourceHeight := src.Bounds().Dy()
	if sourceWidth <= 0 || sourceHeight <= 0 {
		return src
	}

	longest := maxInt(sourceWidth, sourceHeight)
	if longest <= maxDimension {
		return src
	}

	scale := float64(maxDimension) / float64(longest)
	targetWidth := maxInt(int(math.Round(float64(sourceWidth)*scale)), 1)
	targetHeight := maxInt(int(math.Round(float64(sourceHeight)*scale)), 1)
	xScale := float64(sourceWidth) / float64(targetWidth)
	yScale := float64(sourceHeight) / float64(targetHeight)

	dst := image.NewNRGBA(image.Rect(0, 0, targetWidth, targetHeight))
	workers := clampInt(workerCount, 1, targetHeight)

	var wg sync.WaitGroup
	for worker := 0; worker < workers; worker++ {
		start, end := splitRange(targetHeight, workers, worker)
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for y := start; y < end; y++ {
				sampleY := (float64(y)+0.5)*yScale - 0.5
				row := y * dst.Stride
				for x := 0; x < targetWidth; x++ {
					sampleX := (float64(x)+0.5)*xScale - 0.5
					offset := row + x*4
					dst.Pix[offset], dst.Pix[offset+1], dst.Pix[offset+2], dst.Pix[offset+3] = bilinear(src, sampleX, sampleY)
				}
			}
		}(start, end)
	}

	wg.Wait()
	return dst
}

func bilinear(src *image.NRGBA, x float64, y float64) (uint8, uint8, uint8, uint8) {
	width := src.Bounds().Dx()
	height := src.Bounds().Dy()

	x = clampFloat(x, 0, float64(width-1))
	y = clampFloat(y, 0, float64(height-1))

	x0 := int(math.Floor(x))
	y0 := int(math.Floor(y))
	x1 := minInt(x0+1, width-1)
	y1 := minInt(y0+1, height-1)
	tx := x - float64(x0)
	ty := y - float64(y0)

	corners := [4]int{
		y0*src.Stride + x0*4,
		y0*src.Stride + x1*4,
		y1*src.Stride + x0*4,
		y1*src.Stride + x1*4,
	}
	weights := [4]float64{
		(1 - tx) * (1 - ty),
		tx * (1 - ty),
		(1 - tx) * ty,
		tx * ty,
	}

	var channels [4]float64
	for corner, offset := range corners {
		for channel := 0; channel < 4; channel++ {
			channels[channel] += weights[corner] * float64(src.Pix[offset+channel])
		}
	}

	return uint8(math.Round(channels[0])), uint8(math.Round(channels[1])), uint8(math.Round(channels[2])), uint8(math.Round(channels[3]))
}

func splitRange(length int, workers int, workerIndex int) (int, int) {
	chunkSize := length / workers
	remainder := length % workers
	start := workerIndex*chunkSize + minInt(workerIndex, remainder)
	end := start + chunkSize
	if workerIndex < remainder {
		end++
	}
	return start, end
}

func clampInt(value int, minimum int, maximum int) int {
	if value < minimum {
		return minimum
	}
	if value > maximum {
		return maximum
	}
	return value
}

func clampFloat(value float64, minimum float64, maximum float64) float64 {
	if value < minimum {
		return minimum
	}
	if value > maximum {
		return maximum
	}
	return value
}

func minInt(left int, right int) int {
	if left < right {
		return left
	}
	return right
}

func maxInt(left int, right int) int {
	if left > right {
		return left
	}
	return right
}
