package palette

import (
	"image"
	"image/color"
	"testing"
)

func TestKMeansExtractsDistinctColors(t *testing.T) {
	t.Parallel()

	img := image.NewNRGBA(image.Rect(0, 0, 120, 120))
	fillRect(img, image.Rect(0, 0, 60, 120), color.NRGBA{R: 230, G: 220, B: 200, A: 255})
	fillRect(img, image.Rect(60, 0, 120, 120), color.NRGBA{R: 20, G: 40, B: 70, A: 255})

	extracted, err := NewKMeans(0).ExtractColors(img, 2)
	if err != nil {
		t.Fatalf("k-means extract: %v", err)
	}
	if len(extracted) == 0 || len(extracted) > 2 {
		t.Fatalf("expected 1 or 2 colors, got %d", len(extracted))
	}
	for index := range extracted {
		for other := index + 1; other < len(extracted); other++ {
			if extracted[index].Equal(extracted[other]) {
				t.Fatalf("expected distinct colors, got %v", extracted)
			}
		}
	}
}

func TestKMeansRejectsEmptyInput(t *testing.T) {
	t.Parallel()

	if _, err := NewKMeans(0).ExtractColors(image.NewNRGBA(image.Rect(0, 0, 0, 0)), 3); err == nil {
		t.Fatal("expected error for empty image")
	}
	if _, err := NewKMeans(0).ExtractColors(image.NewNRGBA(image.Rect(0, 0, 4, 4)), 0); err == nil {
		t.Fatal("expected error for zero count")
	}
}
