// Package theme derives a light and a dark UI color theme from a handful of
// colors extracted from cover artwork.
package theme

import (
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/rs/zerolog"

	"folio/internal/colors"
)

const (
	DefaultDarknessThreshold    = 0.2
	DefaultMinimumContrastRatio = 3.0
	DefaultColorCount           = 4

	// minimumCandidates is the size every candidate list is padded to before
	// selection runs.
	minimumCandidates = 4
	maxColorCount     = 16
)

var errNoCandidates = errors.New("no candidate colors extracted")

// ColorExtractor quantizes an image down to at most count representative colors.
type ColorExtractor interface {
	ExtractColors(img image.Image, count int) ([]colors.Color, error)
}

// LuminanceMeter reports the average relative luminance of an image in [0, 1].
type LuminanceMeter interface {
	AverageLuminance(img image.Image) (float64, error)
}

type Options struct {
	DarknessThreshold    float64 `json:"darknessThreshold"`
	MinimumContrastRatio float64 `json:"minimumContrastRatio"`
	ColorCount           int     `json:"colorCount"`
}

func DefaultOptions() Options {
	return Options{
		DarknessThreshold:    DefaultDarknessThreshold,
		MinimumContrastRatio: DefaultMinimumContrastRatio,
		ColorCount:           DefaultColorCount,
	}
}

func NormalizeOptions(options Options) Options {
	return options.normalized()
}

func (o Options) normalized() Options {
	normalized := o
	if normalized.DarknessThreshold <= 0 || normalized.DarknessThreshold > 1 || math.IsNaN(normalized.DarknessThreshold) {
		normalized.DarknessThreshold = DefaultDarknessThreshold
	}
	if normalized.MinimumContrastRatio < 1 || normalized.MinimumContrastRatio > 21 || math.IsNaN(normalized.MinimumContrastRatio) {
		normalized.MinimumContrastRatio = DefaultMinimumContrastRatio
	}
	if normalized.ColorCount <= 0 {
		normalized.ColorCount = DefaultColorCount
	}
	if normalized.ColorCount > maxColorCount {
		normalized.ColorCount = maxColorCount
	}
	return normalized
}

// Source selects one of the construction paths handled by Synthesize.
type Source interface {
	title() string
}

// FromParams copies explicit hex values into a theme without any selection.
// Roles missing from Values stay unset.
type FromParams struct {
	Title  string
	Values map[Role]string
}

// FromImage runs the extractor and luminance meter on Image.
type FromImage struct {
	Title string
	Image image.Image
}

// FromCandidates starts after the collaborators have already run.
type FromCandidates struct {
	Title            string
	Colors           []colors.Color
	AverageLuminance float64
}

// Default yields the hard-coded fallback theme.
type Default struct {
	Title string
}

func (s FromParams) title() string     { return s.Title }
func (s FromImage) title() string      { return s.Title }
func (s FromCandidates) title() string { return s.Title }
func (s Default) title() string        { return s.Title }

type Synthesizer struct {
	extractor ColorExtractor
	meter     LuminanceMeter
	logger    zerolog.Logger
}

type SynthesizerOption func(*Synthesizer)

func WithLogger(logger zerolog.Logger) SynthesizerOption {
	return func(s *Synthesizer) {
		s.logger = logger
	}
}

// NewSynthesizer holds no mutable state; one instance may serve concurrent
// calls as long as the collaborators allow it.
func NewSynthesizer(extractor ColorExtractor, meter LuminanceMeter, opts ...SynthesizerOption) *Synthesizer {
	synthesizer := &Synthesizer{
		extractor: extractor,
		meter:     meter,
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(synthesizer)
	}
	return synthesizer
}

// Synthesize always returns a theme. Collaborator failures fall back to the
// default theme and are only logged.
func (s *Synthesizer) Synthesize(source Source, options Options) Theme {
	normalized := options.normalized()

	switch src := source.(type) {
	case FromParams:
		return s.fromParams(src)
	case *FromParams:
		return s.fromParams(*src)
	case FromImage:
		return s.fromImage(src, normalized)
	case *FromImage:
		return s.fromImage(*src, normalized)
	case FromCandidates:
		return s.fromCandidates(src, normalized)
	case *FromCandidates:
		return s.fromCandidates(*src, normalized)
	case Default:
		return DefaultTheme(src.Title)
	case nil:
		return DefaultTheme("")
	default:
		return DefaultTheme(source.title())
	}
}

// DefaultTheme is the fallback construction with derived secondaries.
func DefaultTheme(title string) Theme {
	defaultPrimary := colors.MustParseHex(DefaultPrimaryHex)
	darkPrimary := colors.MustParseHex(DarkPrimaryHex)

	return Theme{
		Title:             title,
		DefaultBackground: DefaultBackgroundHex,
		DefaultPrimary:    DefaultPrimaryHex,
		DefaultSecondary:  defaultPrimary.OverlayBlack().Hex(),
		DefaultAccent:     DefaultAccentHex,
		DarkBackground:    DarkBackgroundHex,
		DarkPrimary:       DarkPrimaryHex,
		DarkSecondary:     darkPrimary.OverlayWhite().Hex(),
		DarkAccent:        DarkAccentHex,
	}
}

func (s *Synthesizer) fromParams(src FromParams) Theme {
	result := Theme{Title: src.Title}
	for _, role := range allRoles {
		value, ok := src.Values[role]
		if !ok {
			continue
		}
		parsed, err := colors.ParseHex(value)
		if err != nil {
			s.logger.Warn().Str("title", src.Title).Str("role", string(role)).Err(err).Msg("ignoring theme parameter")
			continue
		}
		result.set(role, parsed.Hex())
	}
	return result
}

func (s *Synthesizer) fromImage(src FromImage, options Options) (result Theme) {
	defer func() {
		if recovered := recover(); recovered != nil {
			s.logger.Warn().Str("title", src.Title).Interface("panic", recovered).Msg("theme collaborator panicked, using defaults")
			result = DefaultTheme(src.Title)
		}
	}()

	candidates, luminance, err := s.runCollaborators(src.Image, options)
	if err != nil {
		s.logger.Warn().Str("title", src.Title).Err(err).Msg("theme extraction failed, using defaults")
		return DefaultTheme(src.Title)
	}

	return s.fromCandidates(FromCandidates{
		Title:            src.Title,
		Colors:           candidates,
		AverageLuminance: luminance,
	}, options)
}

func (s *Synthesizer) runCollaborators(img image.Image, options Options) ([]colors.Color, float64, error) {
	if img == nil {
		return nil, 0, errors.New("image is required")
	}
	if s.extractor == nil || s.meter == nil {
		return nil, 0, errors.New("synthesizer has no color extractor or luminance meter")
	}

	candidates, err := s.extractor.ExtractColors(img, options.ColorCount)
	if err != nil {
		return nil, 0, fmt.Errorf("extract colors: %w", err)
	}
	if len(candidates) > options.ColorCount {
		candidates = candidates[:options.ColorCount]
	}

	luminance, err := s.meter.AverageLuminance(img)
	if err != nil {
		return nil, 0, fmt.Errorf("average luminance: %w", err)
	}
	if math.IsNaN(luminance) {
		return nil, 0, errors.New("average luminance is not a number")
	}

	return candidates, luminance, nil
}

func (s *Synthesizer) fromCandidates(src FromCandidates, options Options) Theme {
	if len(src.Colors) == 0 {
		s.logger.Debug().Str("title", src.Title).Err(errNoCandidates).Msg("using default theme")
		return DefaultTheme(src.Title)
	}

	displayOnDark := src.AverageLuminance < options.DarknessThreshold
	working := rankFor(padCandidates(src.Colors, displayOnDark), displayOnDark)

	reference := working[0]
	for index, candidate := range working {
		if candidate.Equal(reference) {
			continue
		}
		if colors.ContrastRatio(candidate, reference) >= options.MinimumContrastRatio {
			continue
		}
		if displayOnDark {
			working[index] = candidate.OverlayWhite()
		} else {
			working[index] = candidate.OverlayBlack()
		}
	}

	return s.assignColors(src.Title, working)
}

func padCandidates(candidates []colors.Color, displayOnDark bool) []colors.Color {
	padded := append([]colors.Color(nil), candidates...)
	placeholder := colors.Black
	if displayOnDark {
		placeholder = colors.White
	}
	for len(padded) < minimumCandidates {
		padded = append(padded, placeholder)
	}
	return padded
}

type variantColors struct {
	background colors.Color
	primary    colors.Color
	secondary  colors.Color
	accent     colors.Color
}

func (s *Synthesizer) assignColors(title string, candidates []colors.Color) Theme {
	light := s.selectVariant(title, LightSorted(candidates), false)
	dark := s.selectVariant(title, DarkSorted(candidates), true)

	return Theme{
		Title:             title,
		DefaultBackground: light.background.Hex(),
		DefaultPrimary:    light.primary.Hex(),
		DefaultSecondary:  light.secondary.Hex(),
		DefaultAccent:     light.accent.Hex(),
		DarkBackground:    dark.background.Hex(),
		DarkPrimary:       dark.primary.Hex(),
		DarkSecondary:     dark.secondary.Hex(),
		DarkAccent:        dark.accent.Hex(),
	}
}

func (s *Synthesizer) selectVariant(title string, ranked []colors.Color, darkVariant bool) variantColors {
	fallbackBackground, fallbackPrimary, fallbackAccent := DefaultBackgroundHex, DefaultPrimaryHex, DefaultAccentHex
	if darkVariant {
		fallbackBackground, fallbackPrimary, fallbackAccent = DarkBackgroundHex, DarkPrimaryHex, DarkAccentHex
	}
	variant := Light
	if darkVariant {
		variant = Dark
	}

	background, ok := selectBackground(ranked, darkVariant)
	if !ok {
		s.logger.Debug().Str("title", title).Stringer("variant", variant).Msg("background fell back to default")
		background = colors.MustParseHex(fallbackBackground)
	}

	primary, ok := selectPrimary(ranked, background, darkVariant)
	if !ok {
		s.logger.Debug().Str("title", title).Stringer("variant", variant).Msg("primary fell back to default")
		primary = colors.MustParseHex(fallbackPrimary)
	}

	accent, ok := selectAccent(ranked, background, primary)
	if !ok {
		s.logger.Debug().Str("title", title).Stringer("variant", variant).Msg("accent fell back to default")
		accent = colors.MustParseHex(fallbackAccent)
	}

	secondary := primary.OverlayBlack()
	if darkVariant {
		secondary = primary.OverlayWhite()
	}

	return variantColors{
		background: background,
		primary:    primary,
		secondary:  secondary,
		accent:     accent,
	}
}
