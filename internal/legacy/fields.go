package legacy

import (
	"fmt"
	"strconv"
	"strings"

	"posmigrate/internal/parser/sqldump"
)

// Fields is one decoded tuple: raw field strings by column position, as
// returned by sqldump.SplitTuple.
type Fields []string

// Raw returns the raw field at i, or "" when i is out of range.
func (f Fields) Raw(i int) string {
	if i < 0 || i >= len(f) {
		return ""
	}
	return f[i]
}

// Int parses field i as a base-10 integer. Quoted integers are accepted.
// Failure is an error: the caller skips the record.
func (f Fields) Int(i int) (int64, error) {
	s := sqldump.Unquote(f.Raw(i))
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("field %d: invalid integer %q", i, s)
	}
	return n, nil
}

// OptInt parses field i as an optional integer. NULL and empty values give
// nil; anything else that is not an integer is an error.
func (f Fields) OptInt(i int) (*int64, error) {
	raw := f.Raw(i)
	if sqldump.IsNull(raw) || sqldump.Unquote(raw) == "" {
		return nil, nil
	}
	n, err := f.Int(i)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// Text returns the unquoted, unescaped value of field i. NULL becomes "".
func (f Fields) Text(i int) string {
	raw := f.Raw(i)
	if sqldump.IsNull(raw) {
		return ""
	}
	return sqldump.Unquote(raw)
}

// Float parses field i as a decimal number, returning def when the field is
// NULL, empty or not a number.
func (f Fields) Float(i int, def float64) float64 {
	raw := f.Raw(i)
	if sqldump.IsNull(raw) {
		return def
	}
	s := strings.TrimSpace(sqldump.Unquote(raw))
	if s == "" {
		return def
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return def
	}
	return v
}

// Money parses a monetary amount with a zero fallback.
func (f Fields) Money(i int) float64 { return f.Float(i, 0) }
