// Package convert is the entry point of the engine: it selects format readers
// and writers by name and runs conversions between the neutral Document
// encoding, SPDX 2.3 JSON and CycloneDX JSON.
//
// Every error returned by this package is an *sbom.Error; use errors.Is with
// the sbom sentinels or sbom.KindOf to tell the failure kinds apart.
package convert

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/StinkyLord/sbomconv/internal/cyclonedx"
	"github.com/StinkyLord/sbomconv/internal/normalize"
	"github.com/StinkyLord/sbomconv/internal/spdx"
	"github.com/StinkyLord/sbomconv/sbom"
)

// Format names. Matching is case-sensitive.
const (
	SPDX      = "spdx"
	CycloneDX = "cyclonedx"
	// Document is the neutral Document encoding. It is a valid source but not
	// a target of Translate.
	Document = "document"
)

// Formats lists the target formats.
var Formats = []string{SPDX, CycloneDX}

// Reader parses one wire format into a Document.
type Reader interface {
	Read(data []byte) (*sbom.Document, error)
}

// Writer renders a Document in one wire format.
type Writer interface {
	Write(doc *sbom.Document) ([]byte, error)
}

// Result is the output of a successful conversion.
type Result struct {
	Output      []byte
	Diagnostics []Diagnostic
}

// Converter runs conversions with a fixed set of options. It holds no state
// between calls and is safe for concurrent use.
type Converter struct {
	cfg config
}

// New returns a Converter. Without options drops are lossy, logged to a
// discard logger, and SPDXIDs are sanitized.
func New(opts ...Option) *Converter {
	c := &Converter{}
	for _, o := range opts {
		o(&c.cfg)
	}
	return c
}

var defaultConverter = New()

// Select returns the reader and writer of format name with default options.
func Select(name string) (Reader, Writer, error) {
	return defaultConverter.Select(name)
}

// Convert decodes input as a neutral Document and renders it as target.
func Convert(input []byte, target string) ([]byte, error) {
	res, err := defaultConverter.Convert(input, target)
	if err != nil {
		return nil, err
	}
	return res.Output, nil
}

// Select returns the reader and writer of format name.
func (c *Converter) Select(name string) (Reader, Writer, error) {
	return c.codec(name, nil)
}

// Convert decodes input as a neutral Document and renders it as target.
func (c *Converter) Convert(input []byte, target string) (*Result, error) {
	return c.Translate(input, Document, target)
}

// Translate parses input as source and renders it as target. The target is
// checked before any parsing.
func (c *Converter) Translate(input []byte, source, target string) (res *Result, err error) {
	const op = "convert.Translate"
	start := time.Now()
	defer func() {
		c.cfg.metrics.ObserveConversion(source, target, time.Since(start), err)
		if err == nil {
			c.logger().WithField("source", source).WithField("target", target).
				WithField("dropped", len(res.Diagnostics)).Debug("conversion finished")
		}
	}()

	var diags []Diagnostic
	collect := func(d Diagnostic) { diags = append(diags, d) }

	_, w, err := c.codec(target, collect)
	if err != nil {
		return nil, sbom.WithOp(err, op)
	}
	doc, err := c.parse(input, source, collect)
	if err != nil {
		return nil, sbom.WithOp(err, op)
	}
	out, err := w.Write(doc)
	if err != nil {
		return nil, sbom.WithOp(err, op)
	}
	return &Result{Output: out, Diagnostics: diags}, nil
}

// Parse reads input as source, which is Document or a format name, and
// returns the Document with the diagnostics of the read.
func (c *Converter) Parse(input []byte, source string) (*sbom.Document, []Diagnostic, error) {
	var diags []Diagnostic
	doc, err := c.parse(input, source, func(d Diagnostic) { diags = append(diags, d) })
	if err != nil {
		return nil, nil, sbom.WithOp(err, "convert.Parse")
	}
	return doc, diags, nil
}

// Render writes doc as target.
func (c *Converter) Render(doc *sbom.Document, target string) (*Result, error) {
	const op = "convert.Render"
	var diags []Diagnostic
	_, w, err := c.codec(target, func(d Diagnostic) { diags = append(diags, d) })
	if err != nil {
		return nil, sbom.WithOp(err, op)
	}
	out, err := w.Write(doc)
	if err != nil {
		return nil, sbom.WithOp(err, op)
	}
	return &Result{Output: out, Diagnostics: diags}, nil
}

func (c *Converter) parse(input []byte, source string, collect func(Diagnostic)) (*sbom.Document, error) {
	if source == Document {
		return sbom.Unmarshal(input)
	}
	r, _, err := c.codec(source, collect)
	if err != nil {
		return nil, err
	}
	return r.Read(input)
}

// codec builds the reader and writer of name. Diagnostics go to collect and
// to the metrics, when set.
func (c *Converter) codec(name string, collect func(Diagnostic)) (Reader, Writer, error) {
	const op = "convert.Select"
	base := normalize.Options{
		Policy: c.cfg.policy,
		Strict: c.cfg.strict,
		Logger: c.cfg.logger,
		OnDrop: func(d Diagnostic) {
			c.cfg.metrics.ObserveDrop(d)
			if collect != nil {
				collect(d)
			}
		},
	}
	switch name {
	case SPDX:
		opts := spdx.Options{Options: base, IDPolicy: c.cfg.idPolicy, Now: c.cfg.now}
		return spdx.NewReader(opts), spdx.NewWriter(opts), nil
	case CycloneDX:
		v := cyclonedx.DefaultSpecVersion
		if c.cfg.cdxVersion != "" {
			var ok bool
			if v, ok = cyclonedx.ParseSpecVersion(c.cfg.cdxVersion); !ok {
				return nil, nil, sbom.E(sbom.KindUnsupportedVersion, op, nil, "CycloneDX specVersion %q is not supported", c.cfg.cdxVersion)
			}
		}
		opts := cyclonedx.Options{Options: base, SpecVersion: v, Now: c.cfg.now}
		return cyclonedx.NewReader(opts), cyclonedx.NewWriter(opts), nil
	}
	return nil, nil, sbom.E(sbom.KindUnsupportedFormat, op, nil, "unknown format %q, want one of %v", name, Formats)
}

func (c *Converter) logger() logrus.FieldLogger {
	if c.cfg.logger == nil {
		return normalize.DiscardLogger
	}
	return c.cfg.logger
}
