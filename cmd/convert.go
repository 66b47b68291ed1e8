package cmd

import (
	"encoding/json"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/StinkyLord/sbomconv/convert"
	"github.com/StinkyLord/sbomconv/internal/output"
)

// sourceAuto makes the CLI detect the input format from its content.
const sourceAuto = "auto"

var (
	flagTo     string
	flagFrom   string
	flagOutput string
)

var convertCmd = &cobra.Command{
	Use:   "convert [flags] [file...]",
	Short: "Convert SBOMs to SPDX 2.3 or CycloneDX JSON",
	Long: `Convert reads each input, detects or takes its format from --from, and
writes it in the --to format.

With no file, stdin is read. With a single input the result goes to --output,
or stdout when --output is "-". With several inputs --output names a
directory and each result is named after its input, e.g. app.json becomes
app.spdx.json. Inputs and outputs ending in .gz or .zst are compressed.

Examples:
  sbomconv convert --to spdx document.json
  sbomconv convert --to cyclonedx --cyclonedx-version 1.6 -o out.cdx.json sbom.spdx.json
  sbomconv convert --to spdx --jobs 8 -o converted/ sboms/*.cdx.json.zst`,
	RunE: runConvert,
}

func init() {
	f := convertCmd.Flags()
	f.StringVar(&flagTo, "to", "", "Target format: spdx or cyclonedx (required)")
	f.StringVar(&flagFrom, "from", sourceAuto, "Input format: auto, document, spdx or cyclonedx")
	f.StringVarP(&flagOutput, "output", "o", "", `Output file, or directory with several inputs ("-" for stdout)`)
	f.IntP("jobs", "j", runtime.NumCPU(), "Number of conversions run in parallel")
	f.String("metrics-textfile", "", "Write Prometheus metrics of the run to this file")
	_ = convertCmd.MarkFlagRequired("to")
}

// job is one input and where its result goes.
type job struct {
	input  string
	output string
	result *convert.Result
}

func runConvert(cmd *cobra.Command, args []string) error {
	jobs, err := planJobs(args, flagOutput, suffixFor(flagTo))
	if err != nil {
		return err
	}

	var m *convert.Metrics
	if cfg.MetricsTextfile != "" {
		m = convert.NewMetrics()
	}
	conv, err := newConverter(cfg, log, m)
	if err != nil {
		return err
	}

	g := new(errgroup.Group)
	if cfg.Jobs > 0 {
		g.SetLimit(cfg.Jobs)
	}
	for _, j := range jobs {
		g.Go(func() error {
			return runJob(cmd, conv, j)
		})
	}
	err = g.Wait()

	if m != nil {
		if werr := m.WriteTextfile(cfg.MetricsTextfile); werr != nil {
			log.WithError(werr).Warn("cannot write metrics textfile")
		}
	}
	if err != nil {
		return err
	}

	if len(jobs) > 1 {
		dropped := 0
		for _, j := range jobs {
			dropped += len(j.result.Diagnostics)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Converted %d SBOMs to %s (%d fields dropped)\n", len(jobs), flagTo, dropped)
	}
	return nil
}

func runJob(cmd *cobra.Command, conv *convert.Converter, j *job) error {
	data, err := output.Read(j.input, cmd.InOrStdin())
	if err != nil {
		return err
	}
	source := flagFrom
	if source == sourceAuto {
		source = detectFormat(data)
	}
	res, err := conv.Translate(data, source, flagTo)
	if err != nil {
		return fmt.Errorf("%s: %w", j.input, err)
	}
	if err := output.Write(j.output, res.Output, cmd.OutOrStdout()); err != nil {
		return err
	}
	j.result = res
	log.WithField("input", j.input).
		WithField("output", j.output).
		WithField("from", source).
		WithField("dropped", len(res.Diagnostics)).
		Info("converted")
	return nil
}

// planJobs pairs inputs with output paths.
func planJobs(inputs []string, out, suffix string) ([]*job, error) {
	if len(inputs) == 0 {
		inputs = []string{output.Stdio}
	}
	if len(inputs) == 1 {
		if out == "" {
			out = output.Stdio
		}
		return []*job{{input: inputs[0], output: out}}, nil
	}
	if out == output.Stdio {
		return nil, fmt.Errorf("cannot write %d results to stdout, give --output a directory", len(inputs))
	}
	if out == "" {
		out = "."
	}
	jobs := make([]*job, 0, len(inputs))
	seen := make(map[string]string, len(inputs))
	for _, in := range inputs {
		if in == output.Stdio {
			return nil, fmt.Errorf("stdin cannot be combined with other inputs")
		}
		path := output.DerivePath(in, out, suffix)
		if prev, ok := seen[path]; ok {
			return nil, fmt.Errorf("%s and %s would both be written to %s", prev, in, path)
		}
		seen[path] = in
		jobs = append(jobs, &job{input: in, output: path})
	}
	return jobs, nil
}

func suffixFor(target string) string {
	if target == convert.CycloneDX {
		return ".cdx.json"
	}
	return "." + target + ".json"
}

// detectFormat tells the formats apart by their marker field: spdxVersion for
// SPDX, bomFormat for CycloneDX. Anything else is read as a neutral Document,
// whose reader reports the parse error if it is not one.
func detectFormat(data []byte) string {
	var head struct {
		SPDXVersion *json.RawMessage `json:"spdxVersion"`
		BOMFormat   *json.RawMessage `json:"bomFormat"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return convert.Document
	}
	switch {
	case head.SPDXVersion != nil:
		return convert.SPDX
	case head.BOMFormat != nil:
		return convert.CycloneDX
	}
	return convert.Document
}
