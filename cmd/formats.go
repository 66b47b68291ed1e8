package cmd

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/StinkyLord/sbomconv/internal/normalize"
)

var (
	flagFormatsMarkdown bool
	flagFormatsLossy    bool
)

var formatsCmd = &cobra.Command{
	Use:   "formats",
	Short: "Show how each format represents the model fields",
	Long: `Formats prints the coverage table: for every model field, whether SPDX 2.3
and CycloneDX carry it unchanged (supported), in a neighbouring construct
(approximated) or not at all (dropped).`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		tables := []*normalize.Table{normalize.SPDX23, normalize.CycloneDXTable}

		t := table.NewWriter()
		t.SetOutputMirror(cmd.OutOrStdout())
		t.AppendHeader(table.Row{"Field", "SPDX 2.3", "CycloneDX " + normalize.CycloneDXTable.Version})

		for _, f := range normalize.AllFields() {
			row := table.Row{string(f)}
			lossy := false
			for _, tab := range tables {
				s := tab.Support(f)
				lossy = lossy || s != normalize.Supported
				row = append(row, s.String())
			}
			if flagFormatsLossy && !lossy {
				continue
			}
			t.AppendRow(row)
		}

		if flagFormatsMarkdown {
			t.RenderMarkdown()
		} else {
			t.SetStyle(table.StyleLight)
			t.Render()
		}
		return nil
	},
}

func init() {
	formatsCmd.Flags().BoolVar(&flagFormatsMarkdown, "markdown", false, "Render the table as Markdown")
	formatsCmd.Flags().BoolVar(&flagFormatsLossy, "lossy", false, "Only list fields some format does not fully support")
}
