package palette

import (
	"fmt"
	"image"

	"github.com/EdlinOrg/prominentcolor"

	"folio/internal/colors"
)

// KMeans quantizes with k-means clustering. It does not crop backgrounds, so
// flat borders stay available as background candidates.
type KMeans struct {
	resize uint
}

func NewKMeans(resize uint) *KMeans {
	if resize == 0 {
		resize = uint(prominentcolor.DefaultSize)
	}
	return &KMeans{resize: resize}
}

func (k *KMeans) ExtractColors(img image.Image, count int) ([]colors.Color, error) {
	if count <= 0 {
		return nil, errInvalidColorCount
	}
	if img == nil || img.Bounds().Empty() {
		return nil, ErrEmptyImage
	}

	items, err := prominentcolor.KmeansWithAll(count, img, prominentcolor.ArgumentNoCropping, k.resize, nil)
	if err != nil {
		return nil, fmt.Errorf("k-means quantize: %w", err)
	}

	result := make([]colors.Color, 0, len(items))
	for _, item := range items {
		candidate := colors.RGB(uint8(item.Color.R), uint8(item.Color.G), uint8(item.Color.B))
		if containsColor(result, candidate) {
			continue
		}
		result = append(result, candidate)
	}
	if len(result) == 0 {
		return nil, ErrNoSwatches
	}
	return result, nil
}

func containsColor(values []colors.Color, target colors.Color) bool {
	for _, value := range values {
		if value.Equal(target) {
			return true
		}
	}
	return false
}
