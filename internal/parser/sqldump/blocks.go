package sqldump

import (
	"iter"
	"regexp"
	"strings"
)

var valuesRe = regexp.MustCompile(`(?i)\bVALUES\b`)

// headerRe returns the pattern matching the start of an INSERT into exactly
// table. Backticks are optional; the name must be followed by whitespace or
// an opening parenthesis so that "ticket" does not match "ticket_archive".
func headerRe(table string) *regexp.Regexp {
	return regexp.MustCompile(
		"(?i)INSERT\\s+INTO\\s+`?" + regexp.QuoteMeta(table) + "`?[\\s(]",
	)
}

// Blocks returns every INSERT statement into table, in file order. Each
// block runs from the INSERT keyword to the first semicolon outside a string
// literal (inclusive), or to the end of text when the terminator is missing.
//
// A table without any INSERT yields nil. That is a structural miss the caller
// reports; it is not an error.
func Blocks(text, table string) []string {
	re := headerRe(table)
	var out []string
	pos := 0
	for pos < len(text) {
		loc := re.FindStringIndex(text[pos:])
		if loc == nil {
			break
		}
		start := pos + loc[0]
		end := statementEnd(text, pos+loc[1])
		out = append(out, text[start:end])
		pos = end
	}
	return out
}

// statementEnd returns the index just past the terminating semicolon of the
// statement containing text[from:], honoring quotes and backslash escapes.
func statementEnd(text string, from int) int {
	inQuotes := false
	for i := from; i < len(text); i++ {
		switch text[i] {
		case '\\':
			i++
		case '\'':
			inQuotes = !inQuotes
		case ';':
			if !inQuotes {
				return i + 1
			}
		}
	}
	return len(text)
}

// Tuples yields the inner text of every tuple inserted into table, across
// all matching blocks, lazily and in file order.
func Tuples(text, table string) iter.Seq[string] {
	return BlockTuples(Blocks(text, table))
}

// BlockTuples yields the inner text of every tuple in blocks.
//
// Within a block, candidate lines are those that, once trimmed, start with
// "(" and contain a comma. The text after the VALUES keyword on the header
// line counts as a line of its own, which covers single-line extended
// inserts; the column list before VALUES is never a candidate. A candidate
// line holding several tuples is split on its top-level parenthesized groups.
func BlockTuples(blocks []string) iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, block := range blocks {
			body := block
			if loc := valuesRe.FindStringIndex(block); loc != nil {
				body = block[loc[1]:]
			}
			for _, line := range strings.Split(body, "\n") {
				line = strings.TrimSpace(line)
				if !strings.HasPrefix(line, "(") || !strings.Contains(line, ",") {
					continue
				}
				for _, inner := range groups(line) {
					if !yield(inner) {
						return
					}
				}
			}
		}
	}
}

// groups returns the inner text of each top-level parenthesized group in
// line. Parentheses inside string literals are ignored. An unterminated group
// is dropped.
func groups(line string) []string {
	var out []string
	depth := 0
	start := -1
	inQuotes := false

	for i := 0; i < len(line); i++ {
		ch := line[i]
		if inQuotes {
			switch ch {
			case '\\':
				i++
			case '\'':
				inQuotes = false
			}
			continue
		}
		switch ch {
		case '\'':
			inQuotes = true
		case '(':
			if depth == 0 {
				start = i + 1
			}
			depth++
		case ')':
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 {
				out = append(out, line[start:i])
			}
		}
	}
	return out
}
