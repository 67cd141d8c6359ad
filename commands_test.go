package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"folio/internal/scanner"
	"folio/internal/theme"
	"folio/internal/themestore"
)

func TestParseRoleValues(t *testing.T) {
	t.Parallel()

	values, err := parseRoleValues([]string{"darkaccent=E0B000", "defaultPrimary= 101010 "})
	require.NoError(t, err)
	require.Equal(t, map[theme.Role]string{
		theme.RoleDarkAccent:     "E0B000",
		theme.RoleDefaultPrimary: "101010",
	}, values)

	_, err = parseRoleValues([]string{"accent"})
	require.Error(t, err)
	_, err = parseRoleValues([]string{"border=000000"})
	require.Error(t, err)
}

func TestOutputFlagsWriteCSS(t *testing.T) {
	t.Parallel()

	output := &outputFlags{variant: "dark", format: "css"}
	var buffer bytes.Buffer
	require.NoError(t, output.write(&buffer, theme.DefaultTheme("Dune")))
	require.Contains(t, buffer.String(), "--folio-background: #050505;")

	bad := &outputFlags{variant: "sepia", format: "css"}
	require.Error(t, bad.write(&buffer, theme.DefaultTheme("Dune")))
}

func TestWriteRecordTable(t *testing.T) {
	t.Parallel()

	var buffer bytes.Buffer
	require.NoError(t, writeRecordTable(&buffer, []themestore.Record{
		{Theme: theme.DefaultTheme("Dune"), Source: sourceImage, UpdatedAt: "2026-01-01T00:00:00Z"},
	}))

	lines := strings.Split(strings.TrimSpace(buffer.String()), "\n")
	require.Len(t, lines, 2)
	require.True(t, strings.HasPrefix(lines[0], "TITLE"))
	require.Contains(t, lines[1], "FFFFFF/37454E/3488D1")
	require.Contains(t, lines[1], "050505/EEEEEE/459FFF")
}

func TestFormatScanSummary(t *testing.T) {
	t.Parallel()

	text := FormatScanSummary(scanner.Summary{
		FilesSeen: 1200,
		Processed: 1199,
		Failed:    1,
		BytesRead: 3_500_000,
		Duration:  1500 * time.Millisecond,
		Failures:  []scanner.Failure{{Path: "/books/x.m4b", Error: errors.New("no embedded artwork")}},
	})

	require.Contains(t, text, "1,200 sources")
	require.Contains(t, text, "1,199 themed")
	require.Contains(t, text, "3.5 MB read")
	require.Contains(t, text, "/books/x.m4b: no embedded artwork")
}
