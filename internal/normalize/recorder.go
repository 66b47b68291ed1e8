package normalize

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/StinkyLord/sbomconv/sbom"
)

// Policy decides what happens to data a format cannot carry.
type Policy uint8

const (
	// DropWithWarning drops the data and logs a warning.
	DropWithWarning Policy = iota
	// DropSilently drops the data and only records a diagnostic.
	DropSilently
)

// Diagnostic describes one piece of data a conversion left behind.
type Diagnostic struct {
	Format  Format  `json:"format"`
	Field   Field   `json:"field"`
	Support Support `json:"-"`
	Subject string  `json:"subject,omitempty"`
	Detail  string  `json:"detail,omitempty"`
}

func (d Diagnostic) String() string {
	s := fmt.Sprintf("%s: %s", d.Format, d.Field)
	if d.Subject != "" {
		s += " on " + d.Subject
	}
	if d.Detail != "" {
		s += ": " + d.Detail
	}
	return s
}

// Options are the lossiness settings shared by every reader and writer.
type Options struct {
	Policy Policy
	// Strict makes writers fail with an UnsupportedFeatureError instead of
	// dropping populated fields the target format cannot represent.
	Strict bool
	Logger logrus.FieldLogger
	// OnDrop, when set, observes every diagnostic as it is recorded.
	OnDrop func(Diagnostic)
}

// DiscardLogger is the logger used when Options.Logger is nil.
var DiscardLogger logrus.FieldLogger = func() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}()

// Recorder accumulates the diagnostics of one read or write. A Recorder is
// not safe for concurrent use; every conversion creates its own.
type Recorder struct {
	table  *Table
	opts   Options
	strict bool
	log    logrus.FieldLogger
	diags  []Diagnostic
}

// NewReadRecorder returns a recorder for a reader. Readers never fail on
// drops, so strict mode does not apply.
func NewReadRecorder(t *Table, opts Options) *Recorder {
	r := newRecorder(t, opts)
	r.strict = false
	return r
}

// NewWriteRecorder returns a recorder for a writer.
func NewWriteRecorder(t *Table, opts Options) *Recorder {
	return newRecorder(t, opts)
}

func newRecorder(t *Table, opts Options) *Recorder {
	log := opts.Logger
	if log == nil {
		log = DiscardLogger
	}
	return &Recorder{
		table:  t,
		opts:   opts,
		strict: opts.Strict,
		log:    log.WithField("format", t.Format),
	}
}

// Table returns the coverage table the recorder checks against.
func (r *Recorder) Table() *Table {
	return r.table
}

// Drop records that field of subject was not carried over.
func (r *Recorder) Drop(field Field, subject, detail string) {
	r.record(Diagnostic{
		Format:  r.table.Format,
		Field:   field,
		Support: Dropped,
		Subject: subject,
		Detail:  detail,
	})
}

// Dropf is Drop with a formatted detail.
func (r *Recorder) Dropf(field Field, subject, format string, args ...any) {
	r.Drop(field, subject, fmt.Sprintf(format, args...))
}

func (r *Recorder) record(d Diagnostic) {
	r.diags = append(r.diags, d)
	if r.opts.OnDrop != nil {
		r.opts.OnDrop(d)
	}
	entry := r.log.WithField("field", d.Field)
	if d.Subject != "" {
		entry = entry.WithField("subject", d.Subject)
	}
	if r.opts.Policy == DropWithWarning && !r.strict {
		entry.Warn("dropped data not representable in target format: " + d.Detail)
		return
	}
	entry.Debug("dropped data: " + d.Detail)
}

// Audit walks the document and records every populated field the table
// marks as Dropped. Approximated fields are logged at debug level only.
func (r *Recorder) Audit(doc *sbom.Document) {
	for _, p := range Populated(doc) {
		switch r.table.Support(p.Field) {
		case Dropped:
			r.Drop(p.Field, p.Subject, "no representation in "+r.table.Version)
		case Approximated:
			r.log.WithField("field", p.Field).WithField("subject", p.Subject).Debug("field approximated")
		}
	}
}

// Diagnostics returns everything recorded so far.
func (r *Recorder) Diagnostics() []Diagnostic {
	return r.diags
}

// Err returns an UnsupportedFeatureError listing every drop when the
// recorder is strict, and nil otherwise.
func (r *Recorder) Err(op string) error {
	if !r.strict || len(r.diags) == 0 {
		return nil
	}
	details := make([]string, 0, len(r.diags))
	for _, d := range r.diags {
		details = append(details, d.String())
	}
	return &sbom.Error{
		Kind:    sbom.KindUnsupportedFeature,
		Op:      op,
		Message: fmt.Sprintf("%d populated field(s) cannot be represented in %s", len(details), r.table.Version),
		Details: details,
	}
}
