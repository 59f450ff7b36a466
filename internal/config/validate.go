package config

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"posmigrate/internal/datasource"
	"posmigrate/internal/emit"
)

// IssueSeverity is the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError blocks the run.
	SeverityError IssueSeverity = "error"
	// SeverityWarning is reported but does not block the run.
	SeverityWarning IssueSeverity = "warning"
)

// Issue is one validation finding. Path is a dotted path into the config,
// e.g. "emit.batch_sizes.sales".
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements error.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// HasErrors reports whether issues holds at least one SeverityError.
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Validate lints m without mutating it.
func (m Migration) Validate() []Issue {
	var issues []Issue
	if strings.TrimSpace(m.Job) == "" {
		issues = append(issues, Issue{SeverityError, "job", "job must not be empty; it labels logs and metrics"})
	}
	issues = append(issues, validateSource(m.Source)...)
	issues = append(issues, validateOutput(m.Output)...)
	issues = append(issues, validateEmit(m.Emit)...)
	issues = append(issues, validateMetrics(m.Metrics)...)
	return issues
}

func validateSource(s Source) []Issue {
	var issues []Issue
	switch s.Kind {
	case "file":
		if strings.TrimSpace(s.Path) == "" {
			issues = append(issues, Issue{SeverityError, "source.path", "file source requires a non-empty path"})
		}
	case "http":
		if !strings.HasPrefix(s.URL, "http://") && !strings.HasPrefix(s.URL, "https://") {
			issues = append(issues, Issue{SeverityError, "source.url", fmt.Sprintf("http source requires an http(s) URL, got %q", s.URL)})
		}
		if s.Retries < 0 {
			issues = append(issues, Issue{SeverityError, "source.retries", "retries must be >= 0"})
		}
	default:
		issues = append(issues, Issue{SeverityError, "source.kind", fmt.Sprintf("unknown source kind %q; want file or http", s.Kind)})
	}
	if len(s.Encodings) == 0 {
		issues = append(issues, Issue{SeverityWarning, "source.encodings", "no encodings listed; utf-8 then windows-1252 will be tried"})
	}
	for i, enc := range s.Encodings {
		if !datasource.Supported(enc) {
			issues = append(issues, Issue{SeverityError, fmt.Sprintf("source.encodings[%d]", i), fmt.Sprintf("unsupported encoding %q", enc)})
		}
	}
	return issues
}

func validateOutput(o Output) []Issue {
	var issues []Issue
	switch o.Kind {
	case "dir":
		if strings.TrimSpace(o.Dir) == "" {
			issues = append(issues, Issue{SeverityError, "output.dir", "dir output requires a directory"})
		}
	case "stream":
	default:
		issues = append(issues, Issue{SeverityError, "output.kind", fmt.Sprintf("unknown output kind %q; want dir or stream", o.Kind)})
	}
	if strings.TrimSpace(o.Report) == "" {
		issues = append(issues, Issue{SeverityWarning, "output.report", "no report path; skipped rows are only counted"})
	}
	return issues
}

func validateEmit(e Emit) []Issue {
	var issues []Issue
	if e.TaxDivisor < 1 {
		issues = append(issues, Issue{SeverityError, "emit.tax_divisor", fmt.Sprintf("tax divisor must be >= 1, got %v", e.TaxDivisor)})
	}
	if e.TaxRate < 0 || e.TaxRate >= 1 {
		issues = append(issues, Issue{SeverityError, "emit.tax_rate", fmt.Sprintf("tax rate must be in [0, 1), got %v", e.TaxRate)})
	} else if e.TaxDivisor >= 1 && !nearlyEqual(1+e.TaxRate, e.TaxDivisor) {
		issues = append(issues, Issue{SeverityWarning, "emit.tax_rate", fmt.Sprintf("tax rate %v does not match divisor %v", e.TaxRate, e.TaxDivisor)})
	}
	if e.Namespace != "" {
		if _, err := uuid.Parse(e.Namespace); err != nil {
			issues = append(issues, Issue{SeverityError, "emit.namespace", fmt.Sprintf("namespace must be a UUID: %v", err)})
		}
	}
	if emit.Slug(e.FallbackCategory) != e.FallbackCategory || e.FallbackCategory == "" {
		issues = append(issues, Issue{SeverityError, "emit.fallback_category", fmt.Sprintf("fallback category %q is not a slug", e.FallbackCategory)})
	}

	known := map[string]bool{}
	for _, s := range emit.AllStages {
		known[s.Name] = true
	}
	for name, n := range e.BatchSizes {
		path := "emit.batch_sizes." + name
		switch {
		case !known[name]:
			issues = append(issues, Issue{SeverityError, path, fmt.Sprintf("unknown stage %q", name)})
		case n <= 0:
			issues = append(issues, Issue{SeverityError, path, fmt.Sprintf("batch size must be > 0, got %d", n)})
		case n > 10000:
			issues = append(issues, Issue{SeverityWarning, path, fmt.Sprintf("batch size %d is large; SQL editors may time out", n)})
		}
	}
	return issues
}

func validateMetrics(m Metrics) []Issue {
	switch m.Backend {
	case "", "none":
	case "pushgateway":
		if m.PushgatewayURL == "" {
			return []Issue{{SeverityError, "metrics.pushgateway_url", "pushgateway backend requires a URL"}}
		}
	case "datadog":
		if m.DatadogAddr == "" {
			return []Issue{{SeverityError, "metrics.datadog_addr", "datadog backend requires an address"}}
		}
	default:
		return []Issue{{SeverityError, "metrics.backend", fmt.Sprintf("unknown metrics backend %q", m.Backend)}}
	}
	return nil
}

func nearlyEqual(a, b float64) bool {
	d := a - b
	return d < 1e-9 && d > -1e-9
}
