package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/StinkyLord/sbomconv/internal/ident"
)

var (
	flagConfig string

	// cfg and log are set up by the root command before any subcommand runs.
	cfg *Config
	log *logrus.Logger
)

var rootCmd = &cobra.Command{
	Use:   "sbomconv",
	Short: "SBOM interchange engine",
	Long: `sbomconv converts Software Bills of Materials between SPDX 2.3 JSON,
CycloneDX JSON (1.4, 1.5, 1.6) and its own neutral document encoding.

Fields the target format cannot carry are dropped and reported; --strict
turns every such drop into an error instead.

Every flag can also be set in sbomconv.yaml or through an SBOMCONV_*
environment variable, e.g. SBOMCONV_LOG_LEVEL=debug.`,
	Version:       ident.EngineVersion,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfg, err = loadConfig(cmd, flagConfig); err != nil {
			return err
		}
		log, err = newLogger(cfg, cmd.ErrOrStderr())
		return err
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagConfig, "config", "", "Config file (default: ./sbomconv.yaml, then the user config directory)")
	pf.Bool("strict", false, "Fail instead of dropping fields the target format cannot represent")
	pf.Bool("warn-drops", true, "Log every dropped field as a warning")
	pf.String("log-level", "info", "Log level: debug, info, warn, error")
	pf.String("log-format", "text", "Log format: text or json")
	pf.String("id-policy", "sanitize", "How node IDs become SPDXIDs: sanitize or preserve")
	pf.String("cyclonedx-version", "1.5", "CycloneDX specVersion to write: 1.4, 1.5 or 1.6")

	rootCmd.AddCommand(convertCmd, decodeCmd, formatsCmd, treeCmd)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
