package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"folio/internal/export"
	"folio/internal/theme"
	"folio/internal/themestore"
	"folio/internal/watcher"
)

type outputFlags struct {
	variant string
	format  string
}

func (o *outputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.variant, "variant", "light", "palette variant for css output (light, dark)")
	cmd.Flags().StringVar(&o.format, "format", "json", "output format (json, yaml, toml, css)")
}

func (o *outputFlags) write(w io.Writer, t theme.Theme) error {
	variant, err := theme.ParseVariant(o.variant)
	if err != nil {
		return err
	}
	format, err := export.ParseFormat(o.format)
	if err != nil {
		return err
	}
	return export.Write(w, t, format, variant)
}

func newSynthesizeCommand(a *app) *cobra.Command {
	output := &outputFlags{}
	var save bool
	var title string

	cmd := &cobra.Command{
		Use:   "synthesize <path>",
		Short: "Synthesize a theme from an image or audiobook file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := a.themes.GenerateFromArtwork(args[0], a.settings.SynthesisOptions())
			if err != nil {
				return err
			}
			if strings.TrimSpace(title) != "" {
				result.Theme.Title = strings.TrimSpace(title)
			}

			if save {
				record, err := a.themes.Save(cmd.Context(), result)
				if err != nil {
					return err
				}
				a.logger.Info().Str("title", record.Theme.Title).Str("id", record.ID).Msg("theme saved")
			}

			return output.write(cmd.OutOrStdout(), result.Theme)
		},
	}

	output.register(cmd)
	cmd.Flags().BoolVar(&save, "save", false, "store the theme in the database")
	cmd.Flags().StringVar(&title, "title", "", "override the title read from tags or the file name")
	return cmd
}

func newScanCommand(a *app) *cobra.Command {
	var save bool

	cmd := &cobra.Command{
		Use:   "scan [dir...]",
		Short: "Synthesize themes for every book under the directories",
		Long:  "Scan walks the directories, or the enabled library roots when none are given, and synthesizes one theme per book folder.",
		RunE: func(cmd *cobra.Command, args []string) error {
			summary, err := a.scans.Scan(cmd.Context(), ScanRequest{
				Roots:   args,
				Options: a.settings.SynthesisOptions(),
				Save:    save,
			})
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), FormatScanSummary(summary))
			return nil
		},
	}

	cmd.Flags().BoolVar(&save, "save", true, "store the themes in the database")
	return cmd
}

func newWatchCommand(a *app) *cobra.Command {
	var save bool
	var debounce time.Duration

	cmd := &cobra.Command{
		Use:   "watch [dir...]",
		Short: "Synthesize themes as artwork appears in the directories",
		RunE: func(cmd *cobra.Command, args []string) error {
			roots := args
			if len(roots) == 0 {
				enabled, err := a.preferences.ListRoots(cmd.Context())
				if err != nil {
					return err
				}
				for _, root := range enabled {
					if root.Enabled {
						roots = append(roots, root.Path)
					}
				}
			}

			out := cmd.OutOrStdout()
			return a.watches.Watch(cmd.Context(), WatchRequest{
				Roots:    roots,
				Options:  a.settings.SynthesisOptions(),
				Save:     save,
				Debounce: debounce,
			}, func(result SynthesisResult) {
				fmt.Fprintf(out, "%s\t%s\n", result.Theme.Title, result.ArtworkPath)
			})
		},
	}

	cmd.Flags().BoolVar(&save, "save", true, "store the themes in the database")
	cmd.Flags().DurationVar(&debounce, "debounce", watcher.DefaultDebounce, "quiet period before a changed file is processed")
	return cmd
}

func newListCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored themes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			records, err := a.themes.List(cmd.Context())
			if err != nil {
				return err
			}
			return writeRecordTable(cmd.OutOrStdout(), records)
		},
	}
}

func writeRecordTable(w io.Writer, records []themestore.Record) error {
	table := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(table, "TITLE\tSOURCE\tLIGHT\tDARK\tUPDATED")
	for _, record := range records {
		light := record.Theme.Resolve(theme.Light)
		dark := record.Theme.Resolve(theme.Dark)
		fmt.Fprintf(
			table,
			"%s\t%s\t%s/%s/%s\t%s/%s/%s\t%s\n",
			record.Theme.Title,
			record.Source,
			light.Background,
			light.Primary,
			light.Accent,
			dark.Background,
			dark.Primary,
			dark.Accent,
			record.UpdatedAt,
		)
	}
	return table.Flush()
}

func newShowCommand(a *app) *cobra.Command {
	output := &outputFlags{}
	var byArtwork bool

	cmd := &cobra.Command{
		Use:   "show <title>",
		Short: "Print a stored theme",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lookup := a.themes.Get
			if byArtwork {
				lookup = a.themes.FindByArtwork
			}
			record, err := lookup(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return output.write(cmd.OutOrStdout(), record.Theme)
		},
	}

	output.register(cmd)
	cmd.Flags().BoolVar(&byArtwork, "artwork", false, "treat the argument as an artwork path or cover cache name")
	return cmd
}

func newDeleteCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <title>",
		Short: "Delete a stored theme",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.themes.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			a.logger.Info().Str("title", args[0]).Msg("theme deleted")
			return nil
		},
	}
}

func newEditCommand(a *app) *cobra.Command {
	output := &outputFlags{}

	cmd := &cobra.Command{
		Use:   "edit <title> <role=RRGGBB>...",
		Short: "Override colors of a stored theme",
		Long:  "Edit stores the given roles on top of the stored theme, or on top of the default theme for a new title. Roles: " + roleList() + ".",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := parseRoleValues(args[1:])
			if err != nil {
				return err
			}

			record, err := a.themes.Edit(cmd.Context(), args[0], values)
			if err != nil {
				return err
			}
			return output.write(cmd.OutOrStdout(), record.Theme)
		},
	}

	output.register(cmd)
	return cmd
}

func parseRoleValues(args []string) (map[theme.Role]string, error) {
	values := make(map[theme.Role]string, len(args))
	for _, arg := range args {
		name, value, ok := strings.Cut(arg, "=")
		if !ok {
			return nil, fmt.Errorf("expected role=RRGGBB, got %q", arg)
		}

		role, found := lookupRole(name)
		if !found {
			return nil, fmt.Errorf("unknown role %q (roles: %s)", name, roleList())
		}
		values[role] = strings.TrimSpace(value)
	}
	return values, nil
}

func lookupRole(name string) (theme.Role, bool) {
	for _, role := range theme.Roles() {
		if strings.EqualFold(string(role), strings.TrimSpace(name)) {
			return role, true
		}
	}
	return "", false
}

func roleList() string {
	names := make([]string, 0, len(theme.Roles()))
	for _, role := range theme.Roles() {
		names = append(names, string(role))
	}
	return strings.Join(names, ", ")
}

func newPresetCommand(a *app) *cobra.Command {
	output := &outputFlags{}
	var save bool

	cmd := &cobra.Command{
		Use:   "preset [name]",
		Short: "Print a built-in theme, or list them",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				for _, name := range theme.PresetNames() {
					fmt.Fprintln(cmd.OutOrStdout(), name)
				}
				return nil
			}

			result, err := a.themes.Preset(args[0])
			if err != nil {
				return err
			}
			if save {
				if _, err := a.themes.Save(cmd.Context(), result); err != nil {
					return err
				}
			}
			return output.write(cmd.OutOrStdout(), result.Theme)
		},
	}

	output.register(cmd)
	cmd.Flags().BoolVar(&save, "save", false, "store the preset in the database")
	return cmd
}

func newCoverCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "cover <path>",
		Short: "Copy an audiobook's cover into the cover cache",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cachedPath, err := a.covers.ExtractCover(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cachedPath)
			return nil
		},
	}
}

func newRootsCommand(a *app) *cobra.Command {
	rootsCmd := &cobra.Command{
		Use:   "roots",
		Short: "Manage the library folders used by scan and watch",
	}

	rootsCmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List library roots",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				roots, err := a.preferences.ListRoots(cmd.Context())
				if err != nil {
					return err
				}

				table := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintln(table, "PATH\tENABLED\tLAST SCAN")
				for _, root := range roots {
					fmt.Fprintf(table, "%s\t%t\t%s\n", root.Path, root.Enabled, root.LastScannedAt)
				}
				return table.Flush()
			},
		},
		&cobra.Command{
			Use:   "add <dir>",
			Short: "Add a library root",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				root, err := a.preferences.AddRoot(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), root.Path)
				return nil
			},
		},
		&cobra.Command{
			Use:   "remove <dir>",
			Short: "Remove a library root",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.preferences.RemoveRoot(cmd.Context(), args[0])
			},
		},
		&cobra.Command{
			Use:   "enable <dir>",
			Short: "Include a library root in scan and watch",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.preferences.SetRootEnabled(cmd.Context(), args[0], true)
			},
		},
		&cobra.Command{
			Use:   "disable <dir>",
			Short: "Skip a library root in scan and watch",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.preferences.SetRootEnabled(cmd.Context(), args[0], false)
			},
		},
	)

	return rootsCmd
}

func newStatsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Summarize stored themes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			overview, err := a.stats.GetOverview(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "themes: %d\n", overview.Total)
			for _, source := range []string{sourceImage, sourceDefault, sourceParams, sourcePreset} {
				if count := overview.BySource[source]; count > 0 {
					fmt.Fprintf(out, "  %s: %d\n", source, count)
				}
			}
			if overview.LastUpdatedAt != "" {
				fmt.Fprintf(out, "last updated: %s\n", overview.LastUpdatedAt)
			}
			return nil
		},
	}
}

func newConfigCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			encoder := yaml.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent(2)
			if err := encoder.Encode(a.preferences.Settings()); err != nil {
				return fmt.Errorf("encode settings: %w", err)
			}
			return encoder.Close()
		},
	}
}
