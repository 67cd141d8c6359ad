package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"folio/internal/config"
	"folio/internal/db"
	"folio/internal/library"
	"folio/internal/logging"
	"folio/internal/palette"
	"folio/internal/scanner"
	"folio/internal/theme"
	"folio/internal/themestore"
)

type globalFlags struct {
	configFile string
	baseDir    string
}

type app struct {
	paths    config.Paths
	settings config.Settings
	logger   zerolog.Logger
	database *sql.DB

	covers      *CoverService
	themes      *ThemeService
	scans       *LibraryScanService
	watches     *WatchService
	preferences *SettingsService
	stats       *StatsService
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	flags := &globalFlags{}
	current := &app{}

	rootCmd := &cobra.Command{
		Use:   "folio",
		Short: "Synthesize reader color themes from audiobook cover art",
		Long: `Folio derives a light and a dark color theme from the cover artwork of an
audiobook. Each theme has a background, primary, secondary and accent color
per variant, tuned so that text stays readable on its background.

Examples:
  folio synthesize ~/Audiobooks/Dune/cover.jpg --variant dark --format css
  folio scan ~/Audiobooks --save
  folio show "Dune" --format yaml`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			loaded, err := newApp(cmd.Context(), flags, cmd.Flags())
			if err != nil {
				return err
			}
			*current = *loaded
			return nil
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return current.Close()
		},
	}

	persistent := rootCmd.PersistentFlags()
	persistent.StringVar(&flags.configFile, "config", "", "config file (default <base>/config.{yaml,toml,json})")
	persistent.StringVar(&flags.baseDir, "base-dir", "", "application directory (default user config dir)")
	persistent.String("db", "", "theme database path")
	persistent.String("log-level", "info", "log level (trace, debug, info, warn, error)")
	persistent.Bool("log-pretty", true, "human-readable log output")
	persistent.Float64("darkness-threshold", theme.DefaultDarknessThreshold, "average luminance below which artwork counts as dark")
	persistent.Float64("min-contrast", theme.DefaultMinimumContrastRatio, "contrast below which candidate colors are overlaid")
	persistent.Int("color-count", theme.DefaultColorCount, "colors to extract per artwork")
	persistent.String("quantizer", config.QuantizerMedianCut, "color quantizer (mediancut, kmeans)")
	persistent.Int("workers", 0, "parallel artwork workers for scan (default CPU count, at most 8)")

	rootCmd.AddCommand(
		newSynthesizeCommand(current),
		newScanCommand(current),
		newWatchCommand(current),
		newListCommand(current),
		newShowCommand(current),
		newDeleteCommand(current),
		newEditCommand(current),
		newPresetCommand(current),
		newCoverCommand(current),
		newRootsCommand(current),
		newStatsCommand(current),
		newConfigCommand(current),
	)

	return rootCmd
}

var settingFlags = map[string]string{
	config.KeyDBPath:               "db",
	config.KeyLogLevel:             "log-level",
	config.KeyLogPretty:            "log-pretty",
	config.KeyDarknessThreshold:    "darkness-threshold",
	config.KeyMinimumContrastRatio: "min-contrast",
	config.KeyColorCount:           "color-count",
	config.KeyQuantizer:            "quantizer",
	config.KeyWorkers:              "workers",
}

func newApp(ctx context.Context, flags *globalFlags, flagSet *pflag.FlagSet) (*app, error) {
	paths, err := config.ResolvePaths(config.AppSlug, flags.baseDir)
	if err != nil {
		return nil, err
	}

	bound := make(map[string]*pflag.Flag, len(settingFlags))
	for key, name := range settingFlags {
		bound[key] = flagSet.Lookup(name)
	}

	settings, err := config.LoadSettings(config.LoadOptions{
		ConfigFile: flags.configFile,
		BaseDir:    paths.BaseDir,
		Flags:      bound,
	})
	if err != nil {
		return nil, err
	}

	logger, err := logging.Init(settings.LogLevel, settings.LogPretty)
	if err != nil {
		return nil, fmt.Errorf("configure logging: %w", err)
	}

	database, err := db.Bootstrap(ctx, settings.DBPath)
	if err != nil {
		return nil, err
	}

	measurer := palette.NewExtractor(settings.QuantizeOptions())
	var extractor theme.ColorExtractor = measurer
	if settings.Quantizer == config.QuantizerKMeans {
		extractor = palette.NewKMeans(0)
	}

	synthesizer := theme.NewSynthesizer(extractor, measurer, theme.WithLogger(logging.Component("synthesizer")))
	store := themestore.NewRepository(database)
	roots := library.NewRootRepository(database)
	covers := NewCoverService(paths.CoverCacheDir, logging.Component("covers"))
	themes := NewThemeService(covers, synthesizer, store, logging.Component("themes"))

	logger.Debug().
		Str("db", settings.DBPath).
		Str("quantizer", settings.Quantizer).
		Float64("darknessThreshold", settings.DarknessThreshold).
		Float64("minimumContrastRatio", settings.MinimumContrastRatio).
		Msg("folio ready")

	return &app{
		paths:       paths,
		settings:    settings,
		logger:      logger,
		database:    database,
		covers:      covers,
		themes:      themes,
		scans:       NewLibraryScanService(scanner.NewService(settings.WorkerCount(), logging.Component("scanner")), themes, roots, logging.Component("scan")),
		watches:     NewWatchService(themes, logging.Component("watch")),
		preferences: NewSettingsService(roots, settings, paths),
		stats:       NewStatsService(store),
	}, nil
}

func (a *app) Close() error {
	if a == nil || a.database == nil {
		return nil
	}
	err := a.database.Close()
	a.database = nil
	return err
}
