package emit

import (
	"errors"
	"fmt"
	"slices"

	"github.com/zeebo/xxh3"
)

// Stage identifies one kind of batch. Seq fixes the execution order.
type Stage struct {
	Seq  int
	Name string
}

// Stages in execution order.
var (
	StageClients   = Stage{1, "clients"}
	StageProducts  = Stage{2, "products"}
	StageSales     = Stage{3, "sales"}
	StageSaleItems = Stage{4, "sale_items"}
	StagePayments  = Stage{5, "payments"}
	StageBarcodes  = Stage{6, "barcodes"}
)

// AllStages lists every stage in execution order.
var AllStages = []Stage{StageClients, StageProducts, StageSales, StageSaleItems, StagePayments, StageBarcodes}

// DefaultBatchSizes holds the number of records per batch for each stage.
var DefaultBatchSizes = map[string]int{
	StageClients.Name:   500,
	StageProducts.Name:  500,
	StageSales.Name:     500,
	StageSaleItems.Name: 1000,
	StagePayments.Name:  1000,
	StageBarcodes.Name:  1000,
}

// Batch is one self-contained SQL file.
type Batch struct {
	Name     string   `json:"name"`
	Stage    string   `json:"stage"`
	Seq      int      `json:"seq"`
	Index    int      `json:"index"` // 1-based within the stage
	Count    int      `json:"count"` // batches in the stage
	Records  int      `json:"records"`
	Requires []string `json:"requires,omitempty"`
	Provides []string `json:"provides,omitempty"`
	// Expects lists rows no batch writes that must be loaded beforehand.
	Expects  []string `json:"expects,omitempty"`
	Checksum string   `json:"checksum"`
	SQL      string   `json:"-"`
}

// FileName returns the conventional file name for stage batch index.
func FileName(s Stage, index int) string {
	return fmt.Sprintf("%02d_%s_batch_%03d.sql", s.Seq, s.Name, index)
}

// Checksum is the xxh3 hash of sql in hex.
func Checksum(sql string) string {
	return fmt.Sprintf("%016x", xxh3.HashString(sql))
}

// Chunk splits items into consecutive slices of at most size elements. The
// last chunk may be shorter. A size below 1 yields a single chunk.
func Chunk[T any](items []T, size int) [][]T {
	if len(items) == 0 {
		return nil
	}
	if size < 1 {
		size = len(items)
	}
	out := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		out = append(out, items[start:end:end])
	}
	return out
}

// Plan is the ordered list of batches of one run.
type Plan struct {
	Batches []Batch
}

// Add appends batches.
func (p *Plan) Add(bs ...Batch) { p.Batches = append(p.Batches, bs...) }

// Records returns the number of records per stage.
func (p Plan) Records() map[string]int {
	out := map[string]int{}
	for _, b := range p.Batches {
		out[b.Stage] += b.Records
	}
	return out
}

// BatchCounts returns the number of batches per stage.
func (p Plan) BatchCounts() map[string]int {
	out := map[string]int{}
	for _, b := range p.Batches {
		out[b.Stage]++
	}
	return out
}

// Validate checks the execution order: every mapping a batch requires must be
// listed in external or provided by an earlier batch. All violations are
// returned joined.
func (p Plan) Validate(external ...string) error {
	available := map[string]bool{}
	for _, t := range external {
		available[t] = true
	}
	var errs []error
	for i, b := range p.Batches {
		if i > 0 && b.Seq < p.Batches[i-1].Seq {
			errs = append(errs, fmt.Errorf("emit: %s: stage %s runs after %s", b.Name, b.Stage, p.Batches[i-1].Stage))
		}
		for _, req := range b.Requires {
			if !available[req] {
				errs = append(errs, fmt.Errorf("emit: %s: requires %s which no earlier batch provides", b.Name, req))
			}
		}
		for _, prov := range b.Provides {
			available[prov] = true
		}
	}
	return errors.Join(errs...)
}

// Expects returns the outside prerequisites of all batches, sorted.
func (p Plan) Expects() []string {
	var out []string
	for _, b := range p.Batches {
		for _, x := range b.Expects {
			if !slices.Contains(out, x) {
				out = append(out, x)
			}
		}
	}
	slices.Sort(out)
	return out
}

// Names returns the batch file names in execution order.
func (p Plan) Names() []string {
	out := make([]string, len(p.Batches))
	for i, b := range p.Batches {
		out[i] = b.Name
	}
	return out
}
