// Package config defines the JSON configuration of a migration run.
//
// Example:
//
//	{
//	  "job": "salon-2019",
//	  "source": { "kind": "file", "path": "dump.sql", "encodings": ["utf-8", "windows-1252"] },
//	  "output": { "kind": "dir", "dir": "out", "report": "out/skipped.csv" },
//	  "emit":   { "tax_divisor": 1.2, "tax_rate": 0.2, "batch_sizes": { "sales": 250 } },
//	  "metrics": { "backend": "pushgateway", "pushgateway_url": "http://localhost:9091" }
//	}
package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// Migration is the top-level object decoded from a config file.
type Migration struct {
	// Job names the run in logs and metrics.
	Job     string  `json:"job"`
	Source  Source  `json:"source"`
	Output  Output  `json:"output"`
	Emit    Emit    `json:"emit"`
	Metrics Metrics `json:"metrics"`
}

// Source describes where the dump comes from.
type Source struct {
	// Kind is "file" or "http".
	Kind string `json:"kind"`
	// Path is the local dump path (kind file).
	Path string `json:"path,omitempty"`
	// URL is the dump location (kind http).
	URL string `json:"url,omitempty"`
	// Retries is the number of HTTP retries on transient failures.
	Retries int `json:"retries,omitempty"`
	// Encodings are tried in order to decode the dump.
	Encodings []string `json:"encodings,omitempty"`
}

// Output describes where batches go.
type Output struct {
	// Kind is "dir" (one file per batch plus manifest.json) or "stream"
	// (all batches concatenated on stdout).
	Kind string `json:"kind"`
	Dir  string `json:"dir,omitempty"`
	// Report is the CSV path for skipped rows and conflicts. Empty disables it.
	Report string `json:"report,omitempty"`
}

// Emit configures SQL generation.
type Emit struct {
	// BatchSizes overrides the default records per batch, keyed by stage
	// name (clients, products, sales, sale_items, payments, barcodes).
	BatchSizes map[string]int `json:"batch_sizes,omitempty"`
	TaxDivisor float64        `json:"tax_divisor"`
	TaxRate    float64        `json:"tax_rate"`
	// Namespace is the UUID seeding surrogate ids.
	Namespace string `json:"namespace,omitempty"`
	// FallbackCategory is the category slug for products whose category is
	// unknown.
	FallbackCategory string `json:"fallback_category"`
	// ExternalMappings lists mapping tables maintained outside this tool.
	ExternalMappings []string `json:"external_mappings,omitempty"`
}

// Metrics selects the metrics backend.
type Metrics struct {
	// Backend is "none", "pushgateway" or "datadog".
	Backend        string   `json:"backend"`
	PushgatewayURL string   `json:"pushgateway_url,omitempty"`
	DatadogAddr    string   `json:"datadog_addr,omitempty"`
	Namespace      string   `json:"namespace,omitempty"`
	Tags           []string `json:"tags,omitempty"`
}

// Default returns the configuration used when no file is given.
func Default() Migration {
	return Migration{
		Job:    "posmigrate",
		Source: Source{Kind: "file", Encodings: []string{"utf-8", "windows-1252"}},
		Output: Output{Kind: "dir", Dir: "migration_output", Report: "migration_output/skipped.csv"},
		Emit: Emit{
			TaxDivisor:       1.20,
			TaxRate:          0.20,
			FallbackCategory: "coupe",
			ExternalMappings: []string{"migration_vendor_mapping"},
		},
		Metrics: Metrics{Backend: "none"},
	}
}

// Load reads path over Default: fields absent from the file keep their
// default value.
func Load(path string) (Migration, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := json.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}
