// Package colors implements the RGB color value used by theme synthesis and the
// metrics derived from it: HSL brightness and saturation, WCAG relative
// luminance and contrast ratio, and linear overlays toward another color.
package colors

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// OverlayStrength is the share of white or black mixed in by OverlayWhite and
// OverlayBlack. One pass moves HSL lightness by roughly a third of the
// remaining distance to the target.
const OverlayStrength = 0.35

var ErrInvalidHex = errors.New("invalid hex color")

var (
	White = Color{R: 255, G: 255, B: 255, A: 255}
	Black = Color{R: 0, G: 0, B: 0, A: 255}
)

// Color is an immutable 8-bit RGB value. A carries opacity for callers that
// need it; none of the metrics read it.
type Color struct {
	R uint8
	G uint8
	B uint8
	A uint8
}

func RGB(red uint8, green uint8, blue uint8) Color {
	return Color{R: red, G: green, B: blue, A: 255}
}

// FromStd converts any image/color value, un-premultiplying alpha.
func FromStd(value color.Color) Color {
	nrgba := color.NRGBAModel.Convert(value).(color.NRGBA)
	return Color{R: nrgba.R, G: nrgba.G, B: nrgba.B, A: nrgba.A}
}

// MustParseHex is ParseHex for package-level constants.
func MustParseHex(value string) Color {
	parsed, err := ParseHex(value)
	if err != nil {
		panic(err)
	}
	return parsed
}

// ParseHex accepts RRGGBB or RGB, with or without a leading '#', in any case.
func ParseHex(value string) (Color, error) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(value), "#")
	if len(trimmed) != 3 && len(trimmed) != 6 {
		return Color{}, fmt.Errorf("%w: %q", ErrInvalidHex, value)
	}
	for _, char := range trimmed {
		if (char < '0' || char > '9') && (char < 'a' || char > 'f') && (char < 'A' || char > 'F') {
			return Color{}, fmt.Errorf("%w: %q", ErrInvalidHex, value)
		}
	}

	parsed, err := colorful.Hex("#" + strings.ToLower(trimmed))
	if err != nil {
		return Color{}, fmt.Errorf("%w: %q", ErrInvalidHex, value)
	}

	red, green, blue := parsed.Clamped().RGB255()
	return RGB(red, green, blue), nil
}

// IsHex reports whether value is a canonical six digit hex string without '#'.
func IsHex(value string) bool {
	if len(value) != 6 {
		return false
	}
	_, err := ParseHex(value)
	return err == nil
}

// Hex renders the color as uppercase RRGGBB without a leading '#'.
func (c Color) Hex() string {
	return fmt.Sprintf("%02X%02X%02X", c.R, c.G, c.B)
}

func (c Color) String() string {
	return "#" + c.Hex()
}

// Equal compares the RGB channels only, matching hex equality.
func (c Color) Equal(other Color) bool {
	return c.R == other.R && c.G == other.G && c.B == other.B
}

// Brightness is HSL lightness in [0, 1].
func (c Color) Brightness() float64 {
	_, _, lightness := c.colorful().Hsl()
	return lightness
}

// Saturation is HSL saturation in [0, 1].
func (c Color) Saturation() float64 {
	_, saturation, _ := c.colorful().Hsl()
	return saturation
}

// Luminance is WCAG relative luminance in [0, 1].
func (c Color) Luminance() float64 {
	red, green, blue := c.colorful().LinearRgb()
	return 0.2126*red + 0.7152*green + 0.0722*blue
}

func (c Color) OverlayWhite() Color {
	return Overlay(White, c, OverlayStrength)
}

func (c Color) OverlayBlack() Color {
	return Overlay(Black, c, OverlayStrength)
}

func (c Color) colorful() colorful.Color {
	return colorful.Color{
		R: float64(c.R) / 255,
		G: float64(c.G) / 255,
		B: float64(c.B) / 255,
	}
}

// ContrastRatio is the WCAG ratio (L1+0.05)/(L2+0.05) with L1 the lighter
// luminance. The result does not depend on argument order.
func ContrastRatio(a Color, b Color) float64 {
	first := a.Luminance()
	second := b.Luminance()
	if first < second {
		first, second = second, first
	}
	return (first + 0.05) / (second + 0.05)
}

func IsDarker(a Color, b Color) bool {
	return a.Brightness() < b.Brightness()
}

func IsLighter(a Color, b Color) bool {
	return a.Brightness() > b.Brightness()
}

// Overlay blends per channel as a*ratio + b*(1-ratio). ratio is clamped to [0, 1].
func Overlay(a Color, b Color, ratio float64) Color {
	ratio = math.Max(0, math.Min(1, ratio))

	blended := b.colorful().BlendRgb(a.colorful(), ratio)
	red, green, blue := blended.Clamped().RGB255()
	alpha := math.Round(float64(a.A)*ratio + float64(b.A)*(1-ratio))

	return Color{R: red, G: green, B: blue, A: uint8(alpha)}
}
