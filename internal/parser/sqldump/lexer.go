// Package sqldump reads row data out of MySQL dump text.
//
// A dump stores rows as INSERT statements whose VALUES list holds one
// parenthesized tuple per line (mysqldump --extended-insert with
// --skip-extended-insert style line breaks, or a single long line). The
// helpers here are deliberately tolerant: production dumps contain escaped
// quotes, doubled quotes, embedded commas and the occasional truncated row.
// Nothing in this package returns an error; malformed constructs degrade to a
// best-effort split and callers decide what to keep by checking field counts.
//
// Three layers:
//
//   - Blocks locates the INSERT statements for one table.
//   - BlockTuples / Tuples yield the inner text of each tuple, in file order.
//   - SplitTuple turns one tuple into raw fields; Unquote normalizes a field.
package sqldump

import "strings"

// SplitTuple splits the inner text of one tuple (without the surrounding
// parentheses) into raw fields.
//
// Rules:
//   - A comma outside a single-quoted string separates fields.
//   - A backslash escapes the following byte, so \' does not end a string.
//   - Two consecutive quotes inside a string toggle the string state twice and
//     therefore stays inside it.
//   - Fields are whitespace-trimmed and keep their quotes; use Unquote to get
//     the value.
//
// The result always has (top-level commas + 1) fields. An unterminated string
// swallows the rest of the input into the last field.
func SplitTuple(inner string) []string {
	fields := make([]string, 0, 16)
	var sb strings.Builder
	inQuotes := false
	escaped := false

	for i := 0; i < len(inner); i++ {
		ch := inner[i]
		if escaped {
			sb.WriteByte(ch)
			escaped = false
			continue
		}
		switch ch {
		case '\\':
			escaped = true
			sb.WriteByte(ch)
		case '\'':
			inQuotes = !inQuotes
			sb.WriteByte(ch)
		case ',':
			if inQuotes {
				sb.WriteByte(ch)
				continue
			}
			fields = append(fields, strings.TrimSpace(sb.String()))
			sb.Reset()
		default:
			sb.WriteByte(ch)
		}
	}
	fields = append(fields, strings.TrimSpace(sb.String()))
	return fields
}

// Unquote returns the value of a raw field produced by SplitTuple.
//
// One pair of surrounding single quotes is removed, a doubled quote becomes a
// single quote and MySQL backslash escapes are decoded (\n, \r, \t, \0, \Z and
// any other \x as x). Unquoted fields (numbers, NULL) are returned trimmed and
// otherwise untouched.
func Unquote(raw string) string {
	s := strings.TrimSpace(raw)
	if len(s) < 2 || s[0] != '\'' || s[len(s)-1] != '\'' {
		return s
	}
	s = s[1 : len(s)-1]
	if !strings.ContainsAny(s, `\'`) {
		return s
	}

	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch {
		case ch == '\\' && i+1 < len(s):
			i++
			sb.WriteByte(unescapeByte(s[i]))
		case ch == '\'' && i+1 < len(s) && s[i+1] == '\'':
			sb.WriteByte('\'')
			i++
		default:
			sb.WriteByte(ch)
		}
	}
	return sb.String()
}

func unescapeByte(b byte) byte {
	switch b {
	case 'n':
		return '\n'
	case 'r':
		return '\r'
	case 't':
		return '\t'
	case '0':
		return 0
	case 'Z':
		return 0x1a
	default:
		return b
	}
}

// IsNull reports whether a raw field is the bare NULL keyword.
func IsNull(raw string) bool {
	return strings.EqualFold(strings.TrimSpace(raw), "NULL")
}
