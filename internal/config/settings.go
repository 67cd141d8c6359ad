package config

import (
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"folio/internal/palette"
	"folio/internal/theme"
)

const (
	QuantizerMedianCut = "mediancut"
	QuantizerKMeans    = "kmeans"
)

const (
	KeyDarknessThreshold    = "darkness_threshold"
	KeyMinimumContrastRatio = "minimum_contrast_ratio"
	KeyColorCount           = "color_count"
	KeyQuantizer            = "quantizer"
	KeyWorkers              = "workers"
	KeyLogLevel             = "log_level"
	KeyLogPretty            = "log_pretty"
	KeyDBPath               = "db_path"
	KeyIgnoreNearWhite      = "ignore_near_white"
	KeyIgnoreNearBlack      = "ignore_near_black"
)

const envPrefix = "FOLIO"

type Settings struct {
	DarknessThreshold    float64 `mapstructure:"darkness_threshold" yaml:"darkness_threshold"`
	MinimumContrastRatio float64 `mapstructure:"minimum_contrast_ratio" yaml:"minimum_contrast_ratio"`
	ColorCount           int     `mapstructure:"color_count" yaml:"color_count"`
	Quantizer            string  `mapstructure:"quantizer" yaml:"quantizer"`
	Workers              int     `mapstructure:"workers" yaml:"workers"`
	LogLevel             string  `mapstructure:"log_level" yaml:"log_level"`
	LogPretty            bool    `mapstructure:"log_pretty" yaml:"log_pretty"`
	DBPath               string  `mapstructure:"db_path" yaml:"db_path"`
	// Median-cut only: drop near-white or near-black pixels before quantizing.
	IgnoreNearWhite bool `mapstructure:"ignore_near_white" yaml:"ignore_near_white"`
	IgnoreNearBlack bool `mapstructure:"ignore_near_black" yaml:"ignore_near_black"`
}

type LoadOptions struct {
	// ConfigFile is an explicit file; otherwise config.{yaml,toml,json} is
	// searched for in BaseDir.
	ConfigFile string
	BaseDir    string
	// Flags maps settings keys to command-line flags that override them when set.
	Flags map[string]*pflag.Flag
}

func DefaultSettings(paths Paths) Settings {
	return Settings{
		DarknessThreshold:    theme.DefaultDarknessThreshold,
		MinimumContrastRatio: theme.DefaultMinimumContrastRatio,
		ColorCount:           theme.DefaultColorCount,
		Quantizer:            QuantizerMedianCut,
		Workers:              defaultWorkers(),
		LogLevel:             "info",
		LogPretty:            true,
		DBPath:               paths.DBPath,
	}
}

// LoadSettings layers flags over FOLIO_* environment variables over the
// config file over defaults.
func LoadSettings(options LoadOptions) (Settings, error) {
	defaults := DefaultSettings(PathsFor(options.BaseDir))

	v := viper.New()
	v.SetDefault(KeyDarknessThreshold, defaults.DarknessThreshold)
	v.SetDefault(KeyMinimumContrastRatio, defaults.MinimumContrastRatio)
	v.SetDefault(KeyColorCount, defaults.ColorCount)
	v.SetDefault(KeyQuantizer, defaults.Quantizer)
	v.SetDefault(KeyWorkers, defaults.Workers)
	v.SetDefault(KeyLogLevel, defaults.LogLevel)
	v.SetDefault(KeyLogPretty, defaults.LogPretty)
	v.SetDefault(KeyDBPath, defaults.DBPath)
	v.SetDefault(KeyIgnoreNearWhite, defaults.IgnoreNearWhite)
	v.SetDefault(KeyIgnoreNearBlack, defaults.IgnoreNearBlack)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if err := readConfigFile(v, options); err != nil {
		return Settings{}, err
	}

	for key, flag := range options.Flags {
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return Settings{}, fmt.Errorf("bind flag %s: %w", flag.Name, err)
		}
	}

	var settings Settings
	if err := v.Unmarshal(&settings); err != nil {
		return Settings{}, fmt.Errorf("decode settings: %w", err)
	}
	settings.Quantizer = strings.ToLower(strings.TrimSpace(settings.Quantizer))

	if err := settings.Validate(); err != nil {
		return Settings{}, err
	}

	return settings, nil
}

func readConfigFile(v *viper.Viper, options LoadOptions) error {
	if file := strings.TrimSpace(options.ConfigFile); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", file, err)
		}
		return nil
	}

	if strings.TrimSpace(options.BaseDir) == "" {
		return nil
	}

	v.SetConfigName("config")
	v.AddConfigPath(options.BaseDir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config in %s: %w", options.BaseDir, err)
	}
	return nil
}

// Validate rejects values no command can run with. Out-of-range synthesis
// numbers are accepted here and reset by theme.NormalizeOptions.
func (s Settings) Validate() error {
	switch s.Quantizer {
	case QuantizerMedianCut, QuantizerKMeans:
	default:
		return fmt.Errorf("unknown quantizer %q", s.Quantizer)
	}
	if strings.TrimSpace(s.DBPath) == "" {
		return errors.New("db path is required")
	}
	return nil
}

func (s Settings) SynthesisOptions() theme.Options {
	return theme.NormalizeOptions(theme.Options{
		DarknessThreshold:    s.DarknessThreshold,
		MinimumContrastRatio: s.MinimumContrastRatio,
		ColorCount:           s.ColorCount,
	})
}

// QuantizeOptions configures the median-cut extractor.
func (s Settings) QuantizeOptions() palette.QuantizeOptions {
	return palette.NormalizeQuantizeOptions(palette.QuantizeOptions{
		IgnoreNearWhite: s.IgnoreNearWhite,
		IgnoreNearBlack: s.IgnoreNearBlack,
		WorkerCount:     s.WorkerCount(),
	})
}

func (s Settings) WorkerCount() int {
	if s.Workers <= 0 {
		return defaultWorkers()
	}
	return s.Workers
}

func defaultWorkers() int {
	workers := runtime.NumCPU()
	if workers > 8 {
		workers = 8
	}
	if workers < 1 {
		workers = 1
	}
	return workers
}
