package cmd

import (
	"github.com/spf13/cobra"

	"github.com/StinkyLord/sbomconv/internal/output"
)

var (
	flagDecodeFrom   string
	flagDecodeFormat string
	flagDecodeOutput string
)

var decodeCmd = &cobra.Command{
	Use:   "decode [flags] [file]",
	Short: "Print the neutral Document an SBOM reads as",
	Long: `Decode parses an SPDX, CycloneDX or neutral Document input and prints the
neutral Document it maps to, as JSON or YAML. Fields the reader had to leave
behind are logged as warnings unless --warn-drops=false.

Examples:
  sbomconv decode sbom.spdx.json
  sbomconv decode --format yaml sbom.cdx.json.gz`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		input := output.Stdio
		if len(args) == 1 {
			input = args[0]
		}
		data, err := output.Read(input, cmd.InOrStdin())
		if err != nil {
			return err
		}
		source := flagDecodeFrom
		if source == sourceAuto {
			source = detectFormat(data)
		}

		conv, err := newConverter(cfg, log, nil)
		if err != nil {
			return err
		}
		doc, _, err := conv.Parse(data, source)
		if err != nil {
			return err
		}

		out, err := output.Encode(doc, flagDecodeFormat)
		if err != nil {
			return err
		}
		return output.Write(flagDecodeOutput, out, cmd.OutOrStdout())
	},
}

func init() {
	f := decodeCmd.Flags()
	f.StringVar(&flagDecodeFrom, "from", sourceAuto, "Input format: auto, document, spdx or cyclonedx")
	f.StringVar(&flagDecodeFormat, "format", output.JSON, "Output encoding: json or yaml")
	f.StringVarP(&flagDecodeOutput, "output", "o", output.Stdio, `Output file ("-" for stdout)`)
}
