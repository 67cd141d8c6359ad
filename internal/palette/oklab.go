package palette

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

func okLabDistance(left swatch, right swatch) float64 {
	lDiff := left.okL - right.okL
	aDiff := left.okA - right.okA
	bDiff := left.okB - right.okB
	return math.Sqrt(lDiff*lDiff + aDiff*aDiff + bDiff*bDiff)
}

func rgbToOKLab(red uint8, green uint8, blue uint8) (float64, float64, float64) {
	r, g, b := colorful.Color{
		R: float64(red) / 255,
		G: float64(green) / 255,
		B: float64(blue) / 255,
	}.LinearRgb()

	l := math.Cbrt(0.4122214708*r + 0.5363325363*g + 0.0514459929*b)
	m := math.Cbrt(0.2119034982*r + 0.6806995451*g + 0.1073969566*b)
	s := math.Cbrt(0.0883024619*r + 0.2817188376*g + 0.6299787005*b)

	return 0.2104542553*l + 0.7936177850*m - 0.0040720468*s,
		1.9779984951*l - 2.4285922050*m + 0.4505937099*s,
		0.0259040371*l + 0.7827717662*m - 0.8086757660*s
}
