package legacy

import (
	"log"

	"posmigrate/internal/parser/sqldump"
)

// Skip reasons reported for tuples that do not become records.
const (
	ReasonShortTuple   = "short_tuple"
	ReasonInvalidField = "invalid_field"
)

// SkipRecorder receives every tuple a decoder drops. key is the tuple's first
// field (normally the legacy id), detail the error or the raw tuple.
type SkipRecorder interface {
	Skip(table, reason, key, detail string)
}

// Decoder describes how to turn tuples of one legacy table into records.
type Decoder[T any] struct {
	// Table is the legacy table name as it appears in the dump.
	Table string
	// MinFields is the minimum tuple width; shorter tuples are skipped.
	MinFields int
	// Decode builds a record. An error skips the tuple.
	Decode func(Fields) (T, error)
}

// TableStats counts what happened to one legacy table during decoding.
type TableStats struct {
	Table   string `json:"table"`
	Blocks  int    `json:"blocks"`
	Tuples  int    `json:"tuples"`
	Decoded int    `json:"decoded"`
	Short   int    `json:"short"`
	Invalid int    `json:"invalid"`
}

// Missing reports a structural miss: no INSERT block for the table.
func (s TableStats) Missing() bool { return s.Blocks == 0 }

// Skipped is the number of tuples that did not produce a record.
func (s TableStats) Skipped() int { return s.Short + s.Invalid }

// Decode extracts every tuple of d.Table from text and decodes it. Records
// are returned in file order. Dropped tuples are counted in the returned
// stats and reported to skips when it is non-nil.
//
// A table without any INSERT block returns no records; the miss is logged as
// a warning and visible through TableStats.Missing.
func Decode[T any](text string, d Decoder[T], skips SkipRecorder) ([]T, TableStats) {
	stats := TableStats{Table: d.Table}
	blocks := sqldump.Blocks(text, d.Table)
	stats.Blocks = len(blocks)
	if len(blocks) == 0 {
		log.Printf("legacy: warning: no INSERT block found table=%s", d.Table)
		return nil, stats
	}

	var out []T
	for inner := range sqldump.BlockTuples(blocks) {
		stats.Tuples++
		f := Fields(sqldump.SplitTuple(inner))
		if len(f) < d.MinFields {
			stats.Short++
			if skips != nil {
				skips.Skip(d.Table, ReasonShortTuple, f.Raw(0), inner)
			}
			continue
		}
		rec, err := d.Decode(f)
		if err != nil {
			stats.Invalid++
			if skips != nil {
				skips.Skip(d.Table, ReasonInvalidField, f.Raw(0), err.Error())
			}
			continue
		}
		out = append(out, rec)
	}
	stats.Decoded = len(out)

	log.Printf("legacy: table=%s blocks=%d tuples=%d decoded=%d short=%d invalid=%d",
		d.Table, stats.Blocks, stats.Tuples, stats.Decoded, stats.Short, stats.Invalid)
	return out, stats
}
