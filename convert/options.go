package convert

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/StinkyLord/sbomconv/internal/ident"
	"github.com/StinkyLord/sbomconv/internal/metrics"
	"github.com/StinkyLord/sbomconv/internal/normalize"
)

// Diagnostic describes one field a conversion left behind.
type Diagnostic = normalize.Diagnostic

// DropPolicy decides whether dropped fields are logged as warnings.
type DropPolicy = normalize.Policy

const (
	DropWithWarning = normalize.DropWithWarning
	DropSilently    = normalize.DropSilently
)

// IDPolicy decides how node IDs become SPDXIDs.
type IDPolicy = ident.Policy

const (
	// SanitizeIDs replaces characters SPDX forbids with "-". Altered IDs are
	// recorded in an annotation and restored on read.
	SanitizeIDs = ident.Sanitize
	// PreserveIDs only adds the SPDXRef- prefix.
	PreserveIDs = ident.Preserve
)

// Metrics collects conversion counters; see NewMetrics.
type Metrics = metrics.Metrics

// NewMetrics returns collectors on a fresh Prometheus registry.
func NewMetrics() *Metrics {
	return metrics.New(metrics.Config{})
}

type config struct {
	strict     bool
	policy     DropPolicy
	logger     logrus.FieldLogger
	now        func() time.Time
	idPolicy   IDPolicy
	cdxVersion string
	metrics    *metrics.Metrics
}

// Option configures a Converter.
type Option func(*config)

// WithStrict makes writers fail with an UnsupportedFeatureError instead of
// dropping fields the target format cannot carry.
func WithStrict(strict bool) Option {
	return func(c *config) { c.strict = strict }
}

// WithDropPolicy sets whether drops are logged at warning or debug level.
func WithDropPolicy(p DropPolicy) Option {
	return func(c *config) { c.policy = p }
}

// WithLogger sets the logger drops and conversions are reported to.
func WithLogger(l logrus.FieldLogger) Option {
	return func(c *config) { c.logger = l }
}

// WithClock sets the time source used when a document carries no date.
func WithClock(now func() time.Time) Option {
	return func(c *config) { c.now = now }
}

// WithIDPolicy sets the SPDXID policy.
func WithIDPolicy(p IDPolicy) Option {
	return func(c *config) { c.idPolicy = p }
}

// WithCycloneDXVersion sets the CycloneDX specVersion written, "1.4", "1.5"
// or "1.6". Any other value makes CycloneDX renders fail with an
// UnsupportedVersionError.
func WithCycloneDXVersion(v string) Option {
	return func(c *config) { c.cdxVersion = v }
}

// WithMetrics records every conversion and drop in m.
func WithMetrics(m *Metrics) Option {
	return func(c *config) { c.metrics = m }
}
