package emit

import (
	"strconv"
	"strings"

	"github.com/golang-sql/civil"
	"github.com/jackc/pgx/v5"
)

// Null is the SQL NULL keyword.
const Null = "NULL"

// Literal renders s as a standard-conforming string literal: single quotes
// are doubled, backslashes are kept as-is. NUL bytes, which Postgres text
// cannot hold, are dropped.
func Literal(s string) string {
	s = strings.ReplaceAll(s, "\x00", "")
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// Ident quotes a possibly schema-qualified identifier, "public.sales" becomes
// "public"."sales".
func Ident(name string) string {
	return pgx.Identifier(strings.Split(name, ".")).Sanitize()
}

// Money renders v rounded to two decimals.
func Money(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// Rate renders a tax rate with the shortest exact representation.
func Rate(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Int renders an integer literal.
func Int(v int64) string {
	return strconv.FormatInt(v, 10)
}

// Bool renders a boolean literal.
func Bool(v bool) string {
	if v {
		return "true"
	}
	return "false"
}

// Timestamp renders a legacy datetime, or NOW() when it is missing.
func Timestamp(v *string) string {
	if v == nil {
		return "NOW()"
	}
	return Literal(*v)
}

// Date renders d as a date literal or NULL.
func Date(d *civil.Date) string {
	if d == nil {
		return Null
	}
	return Literal(d.String())
}
