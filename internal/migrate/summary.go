package migrate

import (
	"fmt"
	"log"
	"strings"
	"time"

	"posmigrate/internal/emit"
	"posmigrate/internal/legacy"
)

// BarcodeStats reports the barcode reconciliation.
type BarcodeStats struct {
	// Owners is the number of stock units with at least one candidate.
	Owners   int
	Assigned int
	// Conflicts lists the stock units left without a barcode.
	Conflicts []int64
}

// Summary is the end-of-run report.
type Summary struct {
	Job              string
	Encoding         string
	Tables           []legacy.TableStats
	Barcodes         BarcodeStats
	Batches          map[string]int // per stage
	Records          map[string]int // per stage
	Order            []string       // batch names in execution order
	ExternalMappings []string
	Expects          []string // rows the batches read that no batch writes
	Duration         time.Duration
}

func (s *Summary) addTable(ts legacy.TableStats) {
	s.Tables = append(s.Tables, ts)
}

// Missing returns the legacy tables without any INSERT block.
func (s Summary) Missing() []string {
	var out []string
	for _, t := range s.Tables {
		if t.Missing() {
			out = append(out, t.Table)
		}
	}
	return out
}

// Skipped is the number of tuples dropped across all tables.
func (s Summary) Skipped() int {
	n := 0
	for _, t := range s.Tables {
		n += t.Skipped()
	}
	return n
}

// Table returns the stats of one legacy table.
func (s Summary) Table(name string) (legacy.TableStats, bool) {
	for _, t := range s.Tables {
		if t.Table == name {
			return t, true
		}
	}
	return legacy.TableStats{}, false
}

// Log writes the summary through the standard logger.
func (s Summary) Log() {
	for _, t := range s.Tables {
		log.Printf("summary: table=%s blocks=%d tuples=%d decoded=%d short=%d invalid=%d",
			t.Table, t.Blocks, t.Tuples, t.Decoded, t.Short, t.Invalid)
	}
	if missing := s.Missing(); len(missing) > 0 {
		log.Printf("summary: warning: tables without INSERT blocks: %s", strings.Join(missing, ", "))
	}
	log.Printf("summary: barcodes owners=%d assigned=%d conflicts=%d",
		s.Barcodes.Owners, s.Barcodes.Assigned, len(s.Barcodes.Conflicts))
	for _, st := range emit.AllStages {
		log.Printf("summary: stage=%s batches=%d records=%d", st.Name, s.Batches[st.Name], s.Records[st.Name])
	}
	log.Printf("summary: job=%s skipped=%d batches=%d duration=%s",
		s.Job, s.Skipped(), len(s.Order), s.Duration.Truncate(time.Millisecond))
}

// Instructions explains how to apply the batches.
func (s Summary) Instructions() string {
	var sb strings.Builder
	if len(s.ExternalMappings) > 0 {
		fmt.Fprintf(&sb, "Before running, make sure these mapping tables are populated: %s\n",
			strings.Join(s.ExternalMappings, ", "))
	}
	if len(s.Expects) > 0 {
		fmt.Fprintf(&sb, "These rows are not written by any batch and must be loaded beforehand: %s\n",
			strings.Join(s.Expects, ", "))
	}
	sb.WriteString("Run the batches in this order, each in its own transaction:\n")
	for i, name := range s.Order {
		fmt.Fprintf(&sb, "  %3d. %s\n", i+1, name)
	}
	sb.WriteString("Every batch can be re-run safely; rows already present are left untouched.\n")
	sb.WriteString("After verification, drop the old_mysql_id columns from clients, products and sales.\n")
	return sb.String()
}
