// Package palette quantizes cover artwork into a few representative colors and
// measures its average luminance. Both feed theme synthesis.
package palette

import (
	"errors"
	"image"
	"math"
	"sort"
	"sync"

	"folio/internal/colors"
)

var (
	ErrEmptyImage        = errors.New("image has no pixels")
	ErrNoEligiblePixels  = errors.New("no eligible pixels after filtering")
	ErrNoSwatches        = errors.New("no color swatches extracted")
	errInvalidColorCount = errors.New("color count must be positive")
)

// Extractor runs a median-cut quantizer over a downscaled copy of the image.
type Extractor struct {
	options QuantizeOptions
}

func NewExtractor(options QuantizeOptions) *Extractor {
	return &Extractor{options: options.normalized()}
}

func (e *Extractor) Options() QuantizeOptions {
	return e.options
}

// ExtractColors returns up to count colors ordered by pixel population. Colors
// closer than MinDelta in OKLab are merged, so the result may be shorter.
func (e *Extractor) ExtractColors(img image.Image, count int) ([]colors.Color, error) {
	if count <= 0 {
		return nil, errInvalidColorCount
	}
	if img == nil || img.Bounds().Empty() {
		return nil, ErrEmptyImage
	}

	sampled := downscale(toNRGBA(img), e.options.MaxDimension, e.options.WorkerCount)
	bins, err := buildColorBins(sampled, e.options)
	if err != nil {
		return nil, err
	}

	swatches := boxesToSwatches(buildBoxes(bins, maxInt(e.options.CandidateCount, count)))
	if len(swatches) == 0 {
		return nil, ErrNoSwatches
	}

	unique := deduplicateSwatches(swatches, e.options.MinDelta)
	if len(unique) > count {
		unique = unique[:count]
	}

	result := make([]colors.Color, 0, len(unique))
	for _, candidate := range unique {
		result = append(result, colors.RGB(candidate.r, candidate.g, candidate.b))
	}
	return result, nil
}

type colorBin struct {
	rq    uint8
	gq    uint8
	bq    uint8
	r     uint8
	g     uint8
	b     uint8
	count int
}

type colorBox struct {
	bins       []colorBin
	population int
	min        [3]uint8
	max        [3]uint8
	volume     int
}

type swatch struct {
	r          uint8
	g          uint8
	b          uint8
	population int
	okL        float64
	okA        float64
	okB        float64
}

// buildColorBins histograms every Quality-th pixel into 2^(3*bits) buckets,
// one partial histogram per worker.
func buildColorBins(img *image.NRGBA, options QuantizeOptions) ([]colorBin, error) {
	width := img.Bounds().Dx()
	height := img.Bounds().Dy()
	if width <= 0 || height <= 0 {
		return nil, ErrEmptyImage
	}

	bits := options.QuantizationBits
	channelMask := (1 << bits) - 1
	channelShift := 8 - bits
	histogramSize := 1 << (bits * 3)

	workers := clampInt(options.WorkerCount, 1, height)
	partials := make([][]int, workers)

	var wg sync.WaitGroup
	for worker := 0; worker < workers; worker++ {
		start, end := splitRange(height, workers, worker)
		wg.Add(1)
		go func(workerIndex, start, end int) {
			defer wg.Done()
			local := make([]int, histogramSize)

			firstRow := start
			if remainder := firstRow % options.Quality; remainder != 0 {
				firstRow += options.Quality - remainder
			}

			for y := firstRow; y < end; y += options.Quality {
				row := y * img.Stride
				for x := 0; x < width; x += options.Quality {
					offset := row + x*4
					r, g, b, a := img.Pix[offset], img.Pix[offset+1], img.Pix[offset+2], img.Pix[offset+3]

					if int(a) <= options.AlphaThreshold {
						continue
					}
					if options.IgnoreNearWhite && r >= 245 && g >= 245 && b >= 245 {
						continue
					}
					if options.IgnoreNearBlack && r <= 10 && g <= 10 && b <= 10 {
						continue
					}

					rq := (int(r) >> channelShift) & channelMask
					gq := (int(g) >> channelShift) & channelMask
					bq := (int(b) >> channelShift) & channelMask
					local[(rq<<(bits*2))|(gq<<bits)|bq]++
				}
			}

			partials[workerIndex] = local
		}(worker, start, end)
	}
	wg.Wait()

	histogram := make([]int, histogramSize)
	total := 0
	for _, local := range partials {
		for index, count := range local {
			histogram[index] += count
			total += count
		}
	}
	if total == 0 {
		return nil, ErrNoEligiblePixels
	}

	bins := make([]colorBin, 0, 256)
	for index, count := range histogram {
		if count == 0 {
			continue
		}

		rq := uint8((index >> (bits * 2)) & channelMask)
		gq := uint8((index >> bits) & channelMask)
		bq := uint8(index & channelMask)
		bins = append(bins, colorBin{
			rq:    rq,
			gq:    gq,
			bq:    bq,
			r:     bucketCenter(rq, bits),
			g:     bucketCenter(gq, bits),
			b:     bucketCenter(bq, bits),
			count: count,
		})
	}

	return bins, nil
}

func bucketCenter(value uint8, bits int) uint8 {
	bucketSize := 256 >> bits
	return uint8(clampInt(int(value)*bucketSize+bucketSize/2, 0, 255))
}

// buildBoxes splits the box with the highest population*log(volume) score
// until targetCount boxes exist or nothing can be split.
func buildBoxes(bins []colorBin, targetCount int) []colorBox {
	if len(bins) == 0 {
		return nil
	}

	boxes := []colorBox{newColorBox(bins)}
	for len(boxes) < targetCount {
		splittable := make([]int, 0, len(boxes))
		for index, box := range boxes {
			if box.canSplit() {
				splittable = append(splittable, index)
			}
		}
		if len(splittable) == 0 {
			break
		}

		sort.SliceStable(splittable, func(i, j int) bool {
			return boxes[splittable[i]].score() > boxes[splittable[j]].score()
		})

		split := false
		for _, index := range splittable {
			left, right, ok := splitColorBox(boxes[index])
			if !ok {
				continue
			}
			boxes[index] = left
			boxes = append(boxes, right)
			split = true
			break
		}
		if !split {
			break
		}
	}

	return boxes
}

func newColorBox(bins []colorBin) colorBox {
	box := colorBox{bins: bins}
	if len(bins) == 0 {
		return box
	}

	box.min = [3]uint8{bins[0].rq, bins[0].gq, bins[0].bq}
	box.max = box.min
	for _, bin := range bins {
		box.population += bin.count
		for axis, value := range [3]uint8{bin.rq, bin.gq, bin.bq} {
			if value < box.min[axis] {
				box.min[axis] = value
			}
			if value > box.max[axis] {
				box.max[axis] = value
			}
		}
	}

	box.volume = 1
	for axis := 0; axis < 3; axis++ {
		box.volume *= int(box.max[axis]-box.min[axis]) + 1
	}
	return box
}

func (b colorBox) score() float64 {
	return float64(b.population) * math.Log(float64(b.volume)+1)
}

func (b colorBox) canSplit() bool {
	if len(b.bins) <= 1 {
		return false
	}
	for axis := 0; axis < 3; axis++ {
		if b.max[axis] > b.min[axis] {
			return true
		}
	}
	return false
}

func (b colorBox) longestAxis() int {
	longest := 0
	for axis := 1; axis < 3; axis++ {
		if b.max[axis]-b.min[axis] > b.max[longest]-b.min[longest] {
			longest = axis
		}
	}
	return longest
}

func (bin colorBin) axisValue(axis int) uint8 {
	switch axis {
	case 0:
		return bin.rq
	case 1:
		return bin.gq
	default:
		return bin.bq
	}
}

// splitColorBox cuts along the longest axis at the population median.
func splitColorBox(box colorBox) (colorBox, colorBox, bool) {
	if !box.canSplit() {
		return colorBox{}, colorBox{}, false
	}

	axis := box.longestAxis()
	ordered := append([]colorBin(nil), box.bins...)
	sort.SliceStable(ordered, func(i, j int) bool {
		left := ordered[i].axisValue(axis)
		right := ordered[j].axisValue(axis)
		if left == right {
			return ordered[i].count > ordered[j].count
		}
		return left < right
	})

	half := box.population / 2
	cumulative := 0
	splitIndex := -1
	for index, bin := range ordered {
		cumulative += bin.count
		if cumulative >= half {
			splitIndex = index + 1
			break
		}
	}
	if splitIndex <= 0 || splitIndex >= len(ordered) {
		splitIndex = len(ordered) / 2
	}
	if splitIndex <= 0 || splitIndex >= len(ordered) {
		return colorBox{}, colorBox{}, false
	}

	left := newColorBox(append([]colorBin(nil), ordered[:splitIndex]...))
	right := newColorBox(append([]colorBin(nil), ordered[splitIndex:]...))
	if left.population == 0 || right.population == 0 {
		return colorBox{}, colorBox{}, false
	}
	return left, right, true
}

// boxesToSwatches averages each box weighted by bin count, most populous first.
func boxesToSwatches(boxes []colorBox) []swatch {
	swatches := make([]swatch, 0, len(boxes))
	for _, box := range boxes {
		if box.population <= 0 {
			continue
		}

		var rSum, gSum, bSum int
		for _, bin := range box.bins {
			rSum += int(bin.r) * bin.count
			gSum += int(bin.g) * bin.count
			bSum += int(bin.b) * bin.count
		}

		r := uint8(rSum / box.population)
		g := uint8(gSum / box.population)
		b := uint8(bSum / box.population)
		okL, okA, okB := rgbToOKLab(r, g, b)
		swatches = append(swatches, swatch{r: r, g: g, b: b, population: box.population, okL: okL, okA: okA, okB: okB})
	}

	sort.SliceStable(swatches, func(i, j int) bool {
		return swatches[i].population > swatches[j].population
	})
	return swatches
}

// deduplicateSwatches keeps the most populous swatch of every cluster closer
// than threshold.
func deduplicateSwatches(swatches []swatch, threshold float64) []swatch {
	unique := make([]swatch, 0, len(swatches))
	for _, candidate := range swatches {
		duplicate := -1
		for index, existing := range unique {
			if okLabDistance(candidate, existing) <= threshold {
				duplicate = index
				break
			}
		}

		if duplicate < 0 {
			unique = append(unique, candidate)
			continue
		}
		if candidate.population > unique[duplicate].population {
			unique[duplicate] = candidate
		}
	}

	sort.SliceStable(unique, func(i, j int) bool {
		return unique[i].population > unique[j].population
	})
	return unique
}
