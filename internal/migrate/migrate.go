// Package migrate runs a whole migration: decode the legacy dump, reconcile,
// emit the ordered batches and hand them to a sink.
package migrate

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"posmigrate/internal/datasource"
	"posmigrate/internal/emit"
	"posmigrate/internal/legacy"
	"posmigrate/internal/metrics"
	"posmigrate/internal/reconcile"
	"posmigrate/internal/sink"
)

// Reporter receives every legacy row that does not migrate.
type Reporter interface {
	legacy.SkipRecorder
	Conflict(table, key, detail string)
}

type nopReporter struct{}

func (nopReporter) Skip(string, string, string, string) {}
func (nopReporter) Conflict(string, string, string)     {}

// Options configures a run.
type Options struct {
	// Job labels logs and metrics.
	Job  string
	Emit emit.Options
	// ExternalMappings are mapping tables that exist before the batches run.
	ExternalMappings []string
	// Report receives skipped rows and conflicts. nil discards them.
	Report Reporter
}

// decoded holds every record set read from the dump.
type decoded struct {
	customers []legacy.Customer
	articles  []legacy.Article
	tickets   []legacy.Ticket
	lines     []legacy.TicketLine
	payments  []legacy.Payment
	barcodes  []legacy.ProductBarcode
	stock     []legacy.StockEntry
}

// Read fetches and decodes the dump text of src. It runs before any output
// is created so that an unreadable input leaves no trace.
func Read(ctx context.Context, job string, src datasource.Source, encodings []string) (text, encoding string, err error) {
	start := time.Now()
	text, encoding, err = datasource.ReadText(ctx, src, encodings)
	metrics.RecordStep(job, "read", err, time.Since(start))
	if err != nil {
		return "", "", err
	}
	log.Printf("migrate: input decoded encoding=%s bytes=%d", encoding, len(text))
	return text, encoding, nil
}

// Run migrates the dump text. Batches are written to out in execution order
// and out is closed on success.
func Run(ctx context.Context, text string, opts Options, out sink.Sink) (Summary, error) {
	start := time.Now()
	rep := opts.Report
	if rep == nil {
		rep = nopReporter{}
	}
	s := Summary{Job: opts.Job, ExternalMappings: opts.ExternalMappings}

	t0 := time.Now()
	d := decodeAll(text, rep, &s)
	metrics.RecordStep(opts.Job, "decode", nil, time.Since(t0))
	for _, ts := range s.Tables {
		metrics.RecordRows(opts.Job, ts.Table, metrics.KindTuples, int64(ts.Tuples))
		metrics.RecordRows(opts.Job, ts.Table, metrics.KindDecoded, int64(ts.Decoded))
		metrics.RecordRows(opts.Job, ts.Table, metrics.KindSkipped, int64(ts.Skipped()))
	}

	t0 = time.Now()
	aggs := reconcile.SummarizeSales(d.lines)
	candidates := reconcile.Merge(
		reconcile.Collect(d.barcodes,
			func(b legacy.ProductBarcode) int64 { return b.ProductID },
			func(b legacy.ProductBarcode) string { return b.Barcode }),
		reconcile.Collect(d.stock,
			func(e legacy.StockEntry) int64 { return e.ProductID },
			func(e legacy.StockEntry) string { return e.Barcode }),
	)
	assigned := reconcile.AssignUnique(candidates)
	for _, id := range assigned.Unresolved {
		rep.Conflict(legacy.TableProductBarcodes, strconv.FormatInt(id, 10),
			"all candidate barcodes already assigned: "+strings.Join(candidates.Values(id), ", "))
	}
	s.Barcodes = BarcodeStats{Owners: candidates.Len(), Assigned: len(assigned.Values), Conflicts: assigned.Unresolved}
	metrics.RecordRows(opts.Job, legacy.TableProductBarcodes, metrics.KindConflicts, int64(len(assigned.Unresolved)))
	metrics.RecordStep(opts.Job, "reconcile", nil, time.Since(t0))

	t0 = time.Now()
	plan, err := buildPlan(emit.New(opts.Emit), d, aggs, assigned)
	if err == nil {
		err = plan.Validate(opts.ExternalMappings...)
	}
	metrics.RecordStep(opts.Job, "emit", err, time.Since(t0))
	if err != nil {
		return s, fmt.Errorf("migrate: build plan: %w", err)
	}
	s.Batches = plan.BatchCounts()
	s.Records = plan.Records()
	s.Order = plan.Names()
	s.Expects = plan.Expects()

	t0 = time.Now()
	err = write(ctx, out, plan)
	metrics.RecordStep(opts.Job, "write", err, time.Since(t0))
	if err != nil {
		return s, err
	}
	for _, st := range emit.AllStages {
		metrics.RecordBatches(opts.Job, st.Name, int64(s.Batches[st.Name]))
		metrics.RecordRows(opts.Job, st.Name, metrics.KindEmitted, int64(s.Records[st.Name]))
	}
	s.Duration = time.Since(start)
	return s, nil
}

func decodeAll(text string, rep Reporter, s *Summary) decoded {
	var (
		d  decoded
		ts legacy.TableStats
	)
	d.customers, ts = legacy.Decode(text, legacy.Customers, rep)
	s.addTable(ts)
	d.articles, ts = legacy.Decode(text, legacy.Articles, rep)
	s.addTable(ts)
	d.tickets, ts = legacy.Decode(text, legacy.Tickets, rep)
	s.addTable(ts)
	d.lines, ts = legacy.Decode(text, legacy.TicketLines, rep)
	s.addTable(ts)
	d.payments, ts = legacy.Decode(text, legacy.Payments, rep)
	s.addTable(ts)
	d.barcodes, ts = legacy.Decode(text, legacy.ProductBarcodes, rep)
	s.addTable(ts)
	d.stock, ts = legacy.Decode(text, legacy.StockEntries, rep)
	s.addTable(ts)
	return d
}

func buildPlan(e *emit.Emitter, d decoded, aggs map[int64]reconcile.SaleAggregate, assigned reconcile.Assignment) (emit.Plan, error) {
	var plan emit.Plan
	stages := []func() ([]emit.Batch, error){
		func() ([]emit.Batch, error) { return e.Customers(d.customers) },
		func() ([]emit.Batch, error) { return e.Products(d.articles) },
		func() ([]emit.Batch, error) { return e.Sales(d.tickets, aggs) },
		func() ([]emit.Batch, error) { return e.SaleItems(d.lines) },
		func() ([]emit.Batch, error) { return e.Payments(d.payments) },
		func() ([]emit.Batch, error) { return e.Barcodes(assigned) },
	}
	for _, stage := range stages {
		bs, err := stage()
		if err != nil {
			return plan, err
		}
		plan.Add(bs...)
	}
	return plan, nil
}

func write(ctx context.Context, out sink.Sink, plan emit.Plan) error {
	for _, b := range plan.Batches {
		if err := out.Write(ctx, b); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}
