package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"folio/internal/theme"
)

func TestParseFormat(t *testing.T) {
	t.Parallel()

	cases := map[string]Format{
		"":      FormatJSON,
		"JSON":  FormatJSON,
		"yml":   FormatYAML,
		"toml":  FormatTOML,
		" css ": FormatCSS,
	}
	for input, want := range cases {
		got, err := ParseFormat(input)
		require.NoError(t, err, input)
		require.Equal(t, want, got, input)
	}

	_, err := ParseFormat("xml")
	require.Error(t, err)
}

func TestStructuredFormatsCarryEveryRole(t *testing.T) {
	t.Parallel()

	source := theme.DefaultTheme("Dune")
	decoders := map[Format]func([]byte, any) error{
		FormatJSON: json.Unmarshal,
		FormatYAML: yaml.Unmarshal,
		FormatTOML: toml.Unmarshal,
	}

	for format, decode := range decoders {
		var buffer bytes.Buffer
		require.NoError(t, Write(&buffer, source, format, theme.Dark), format)

		var decoded theme.Theme
		require.NoError(t, decode(buffer.Bytes(), &decoded), format)
		require.Equal(t, source, decoded, format)
	}
}

func TestCSSUsesVariantPalette(t *testing.T) {
	t.Parallel()

	source := theme.DefaultTheme("Dune")

	var light bytes.Buffer
	require.NoError(t, Write(&light, source, FormatCSS, theme.Light))
	require.Contains(t, light.String(), "/* Dune (light) */")
	require.Contains(t, light.String(), "--folio-background: #FFFFFF;")
	require.Contains(t, light.String(), "--folio-primary: #37454E;")
	require.Contains(t, light.String(), "--folio-accent: #3488D1;")

	var dark bytes.Buffer
	require.NoError(t, Write(&dark, source, FormatCSS, theme.Dark))
	require.Contains(t, dark.String(), "--folio-background: #050505;")
	require.Contains(t, dark.String(), "--folio-secondary: #F4F4F4;")
	require.Equal(t, 4, strings.Count(dark.String(), CSSPrefix))
}

func TestCSSSkipsUnsetRoles(t *testing.T) {
	t.Parallel()

	var buffer bytes.Buffer
	require.NoError(t, Write(&buffer, theme.Theme{DefaultAccent: "E0B000"}, FormatCSS, theme.Light))
	require.Equal(t, ":root {\n  --folio-accent: #E0B000;\n}\n", buffer.String())
}

func TestWriteRejectsUnknownFormat(t *testing.T) {
	t.Parallel()

	require.Error(t, Write(&bytes.Buffer{}, theme.DefaultTheme("x"), Format("xml"), theme.Light))
}
