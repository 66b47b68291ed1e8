package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/StinkyLord/sbomconv/convert"
	"github.com/StinkyLord/sbomconv/internal/cyclonedx"
	"github.com/StinkyLord/sbomconv/internal/ident"
)

// envPrefix prefixes the environment variables that override flags, e.g.
// SBOMCONV_LOG_LEVEL.
const envPrefix = "SBOMCONV"

// Config is the merged result of flags, environment and config file.
type Config struct {
	Strict           bool   `mapstructure:"strict"`
	WarnDrops        bool   `mapstructure:"warn-drops"`
	LogLevel         string `mapstructure:"log-level"`
	LogFormat        string `mapstructure:"log-format"`
	IDPolicy         string `mapstructure:"id-policy"`
	CycloneDXVersion string `mapstructure:"cyclonedx-version"`
	Jobs             int    `mapstructure:"jobs"`
	MetricsTextfile  string `mapstructure:"metrics-textfile"`
}

// configPaths lists where the config file is looked up when --config is not
// given: the working directory first, then the user config directory.
func configPaths() []string {
	paths := []string{"sbomconv.yaml", "sbomconv.yml"}
	if dir, err := os.UserConfigDir(); err == nil && dir != "" {
		paths = append(paths,
			filepath.Join(dir, "sbomconv", "sbomconv.yaml"),
			filepath.Join(dir, "sbomconv", "sbomconv.yml"))
	}
	return paths
}

// loadConfig merges the flags of cmd with SBOMCONV_* variables and the config
// file. Flags set on the command line win, then the environment, then the
// file, then flag defaults.
func loadConfig(cmd *cobra.Command, path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return nil, err
	}

	if path == "" {
		for _, p := range configPaths() {
			if _, err := os.Stat(p); err == nil {
				path = p
				break
			}
		}
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("cannot read config %s: %w", path, err)
		}
	}

	cfg := new(Config)
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// newLogger builds the CLI logger. Logs go to w, stderr in practice, so they
// never mix with documents written to stdout.
func newLogger(cfg *Config, w io.Writer) (*logrus.Logger, error) {
	l := logrus.New()
	l.SetOutput(w)
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	l.SetLevel(level)
	switch cfg.LogFormat {
	case "json":
		l.SetFormatter(&logrus.JSONFormatter{})
	case "text", "":
		l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	default:
		return nil, fmt.Errorf("unsupported log format %q (supported: text, json)", cfg.LogFormat)
	}
	return l, nil
}

// newConverter turns cfg into a Converter.
func newConverter(cfg *Config, logger logrus.FieldLogger, m *convert.Metrics) (*convert.Converter, error) {
	policy, ok := ident.ParsePolicy(cfg.IDPolicy)
	if !ok {
		return nil, fmt.Errorf("unsupported id policy %q (supported: sanitize, preserve)", cfg.IDPolicy)
	}
	if cfg.CycloneDXVersion != "" {
		if _, ok := cyclonedx.ParseSpecVersion(cfg.CycloneDXVersion); !ok {
			return nil, fmt.Errorf("unsupported CycloneDX version %q (supported: 1.4, 1.5, 1.6)", cfg.CycloneDXVersion)
		}
	}
	drops := convert.DropSilently
	if cfg.WarnDrops {
		drops = convert.DropWithWarning
	}
	opts := []convert.Option{
		convert.WithStrict(cfg.Strict),
		convert.WithDropPolicy(drops),
		convert.WithLogger(logger),
		convert.WithIDPolicy(policy),
		convert.WithCycloneDXVersion(cfg.CycloneDXVersion),
	}
	if m != nil {
		opts = append(opts, convert.WithMetrics(m))
	}
	return convert.New(opts...), nil
}
