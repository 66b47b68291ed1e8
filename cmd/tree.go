package cmd

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/list"
	"github.com/spf13/cobra"

	"github.com/StinkyLord/sbomconv/internal/deptree"
	"github.com/StinkyLord/sbomconv/internal/output"
)

var (
	flagTreeFrom   string
	flagTreeFormat string
)

var treeCmd = &cobra.Command{
	Use:   "tree [flags] [file]",
	Short: "Print the dependency tree of an SBOM",
	Long: `Tree reads an SPDX, CycloneDX or neutral Document input and prints its
dependency edges as a tree rooted at the described elements. A node met
again on its own path is marked as a cycle and not expanded.

--format json prints an npm-style tree where every node carries its
children inline.

Examples:
  sbomconv tree sbom.cdx.json
  sbomconv tree --format json sbom.spdx.json`,
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
		source := flagTreeFrom
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
		roots := deptree.Build(doc)

		switch flagTreeFormat {
		case "text":
			renderTree(cmd, roots)
			return nil
		case output.JSON:
			if roots == nil {
				// an empty array rather than null
				roots = []*deptree.TreeNode{}
			}
			out, err := output.Encode(roots, output.JSON)
			if err != nil {
				return err
			}
			return output.Write(output.Stdio, out, cmd.OutOrStdout())
		}
		return fmt.Errorf("unsupported tree format %q (supported: text, json)", flagTreeFormat)
	},
}

func renderTree(cmd *cobra.Command, roots []*deptree.TreeNode) {
	l := list.NewWriter()
	l.SetOutputMirror(cmd.OutOrStdout())
	l.SetStyle(list.StyleConnectedLight)

	var walk func(nodes []*deptree.TreeNode)
	walk = func(nodes []*deptree.TreeNode) {
		for _, n := range nodes {
			item := n.Label()
			switch {
			case n.Cycle:
				item += " (cycle)"
			case n.Missing:
				item += " (missing)"
			}
			l.AppendItem(item)
			if len(n.Children) > 0 {
				l.Indent()
				walk(n.Children)
				l.UnIndent()
			}
		}
	}
	walk(roots)
	l.Render()
}

func init() {
	f := treeCmd.Flags()
	f.StringVar(&flagTreeFrom, "from", sourceAuto, "Input format: auto, document, spdx or cyclonedx")
	f.StringVar(&flagTreeFormat, "format", "text", "Output: text or json")
}
