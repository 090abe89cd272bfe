package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var (
	logLevel   string
	configFile string
	logger     *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "numopt",
	Short: "Gradient descent and Simplex from the command line",
	Long: `numopt trains built-in objectives with gradient descent and solves
standard-form linear programs with the tableau Simplex method.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Setup logger
		var level slog.Level
		switch logLevel {
		case "debug":
			level = slog.LevelDebug
		case "info":
			level = slog.LevelInfo
		case "warn":
			level = slog.LevelWarn
		case "error":
			level = slog.LevelError
		default:
			level = slog.LevelInfo
		}

		opts := &slog.HandlerOptions{Level: level}
		handler := slog.NewJSONHandler(os.Stdout, opts)
		logger = slog.New(handler)
		slog.SetDefault(logger)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "YAML config file with defaults for any command flag")
}

// loadConfig layers the config file and NUMOPT_* environment variables
// under the command's flags. Explicitly set flags win.
func loadConfig(cmd *cobra.Command) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix("NUMOPT")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return nil, fmt.Errorf("failed to bind flags: %w", err)
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", configFile, err)
		}
		slog.Debug("Using config file", "path", v.ConfigFileUsed())
	}
	return v, nil
}

// float64SliceSetting resolves a vector flag. Viper renders changed slice
// flags through pflag's %f formatting, so a flag given on the command line
// is read from cobra and only config or env values go through v.
// Env values are separated by commas or spaces.
func float64SliceSetting(v *viper.Viper, flags *pflag.FlagSet, name string) ([]float64, error) {
	if flags.Changed(name) || !v.IsSet(name) {
		return flags.GetFloat64Slice(name)
	}

	var items []string
	switch raw := v.Get(name).(type) {
	case string:
		items = splitList(raw)
	default:
		list, err := cast.ToSliceE(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", name, err)
		}
		items = make([]string, len(list))
		for i, item := range list {
			items[i] = cast.ToString(item)
		}
	}

	values := make([]float64, len(items))
	for i, item := range items {
		f, err := strconv.ParseFloat(strings.TrimSpace(item), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid %s value %q", name, item)
		}
		values[i] = f
	}
	return values, nil
}

// stringMapSetting resolves a key=value flag the same way. Env values are
// comma separated pairs.
func stringMapSetting(v *viper.Viper, flags *pflag.FlagSet, name string) (map[string]string, error) {
	if flags.Changed(name) || !v.IsSet(name) {
		return flags.GetStringToString(name)
	}

	raw, ok := v.Get(name).(string)
	if !ok {
		m, err := cast.ToStringMapStringE(v.Get(name))
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", name, err)
		}
		return m, nil
	}

	m := make(map[string]string)
	for _, pair := range splitList(raw) {
		key, value, found := strings.Cut(pair, "=")
		if !found {
			return nil, fmt.Errorf("invalid %s entry %q, want key=value", name, pair)
		}
		m[strings.TrimSpace(key)] = value
	}
	return m, nil
}

func splitList(s string) []string {
	s = strings.TrimSuffix(strings.TrimPrefix(strings.TrimSpace(s), "["), "]")
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
}
