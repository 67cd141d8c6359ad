// Package export renders themes for other tools to consume.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"folio/internal/theme"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatCSS  Format = "css"
)

// CSSPrefix starts every custom property name written in css format.
const CSSPrefix = "--folio-"

func Formats() []Format {
	return []Format{FormatJSON, FormatYAML, FormatTOML, FormatCSS}
}

func ParseFormat(value string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "toml":
		return FormatTOML, nil
	case "css":
		return FormatCSS, nil
	default:
		return "", fmt.Errorf("unknown export format %q", value)
	}
}

// Write serializes all eight roles for json, yaml and toml. CSS only carries
// the four active colors of variant.
func Write(w io.Writer, t theme.Theme, format Format, variant theme.Variant) error {
	switch format {
	case FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(t); err != nil {
			return fmt.Errorf("encode theme json: %w", err)
		}
		return nil
	case FormatYAML:
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(t); err != nil {
			return fmt.Errorf("encode theme yaml: %w", err)
		}
		if err := encoder.Close(); err != nil {
			return fmt.Errorf("flush theme yaml: %w", err)
		}
		return nil
	case FormatTOML:
		if err := toml.NewEncoder(w).Encode(t); err != nil {
			return fmt.Errorf("encode theme toml: %w", err)
		}
		return nil
	case FormatCSS:
		return writeCSS(w, t, variant)
	default:
		return fmt.Errorf("unknown export format %q", format)
	}
}

func writeCSS(w io.Writer, t theme.Theme, variant theme.Variant) error {
	palette := t.Resolve(variant)

	var builder strings.Builder
	if t.Title != "" {
		fmt.Fprintf(&builder, "/* %s (%s) */\n", strings.ReplaceAll(t.Title, "*/", "* /"), variant)
	}
	builder.WriteString(":root {\n")
	for _, property := range []struct {
		name  string
		value string
	}{
		{"background", palette.Background},
		{"primary", palette.Primary},
		{"secondary", palette.Secondary},
		{"accent", palette.Accent},
	} {
		if property.value == "" {
			continue
		}
		fmt.Fprintf(&builder, "  %s%s: #%s;\n", CSSPrefix, property.name, property.value)
	}
	builder.WriteString("}\n")

	if _, err := io.WriteString(w, builder.String()); err != nil {
		return fmt.Errorf("write theme css: %w", err)
	}
	return nil
}
