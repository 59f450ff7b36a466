package sqldump

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countTopLevelCommas counts commas outside single-quoted strings, skipping
// backslash-escaped bytes. It is an independent oracle for SplitTuple.
func countTopLevelCommas(s string) int {
	n := 0
	in := false
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '\'':
			in = !in
		case ',':
			if !in {
				n++
			}
		}
	}
	return n
}

func TestSplitTuple(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want []string
	}{
		{
			name: "plain numbers",
			in:   "1, 2,3",
			want: []string{"1", "2", "3"},
		},
		{
			name: "quoted comma stays in field",
			in:   "7, 'Dupont, Jean', NULL",
			want: []string{"7", "'Dupont, Jean'", "NULL"},
		},
		{
			name: "backslash escaped quote does not close string",
			in:   `1, 'l\'atelier, rue', 3`,
			want: []string{"1", `'l\'atelier, rue'`, "3"},
		},
		{
			name: "doubled quote stays inside string",
			in:   "1, 'O''Neil, P', 2",
			want: []string{"1", "'O''Neil, P'", "2"},
		},
		{
			name: "empty string and trailing empty field",
			in:   "'', 5,",
			want: []string{"''", "5", ""},
		},
		{
			name: "unterminated string swallows remainder",
			in:   "1, 'abc, def",
			want: []string{"1", "'abc, def"},
		},
		{
			name: "empty input yields one empty field",
			in:   "",
			want: []string{""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := SplitTuple(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Len(t, got, countTopLevelCommas(tt.in)+1)
		})
	}
}

func TestSplitTuple_FieldCountMatchesCommas(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"12, 3, 'Martin', 'Paul', '3 rue de l''Eglise', 'Lyon', '69001', '', '', '', '12/05', '', '2019-01-02 10:00:00', NULL, 1, 1, 42",
		`4, 'a\\', 'b\'', 'c,d', NULL`,
		"1,2,3,4,5,6,7,8,9,10",
	}
	for _, in := range inputs {
		got := SplitTuple(in)
		require.Len(t, got, countTopLevelCommas(in)+1, "input %q", in)
	}
}

func TestUnquote(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"doubled quote becomes one quote", "'O''Neil'", "O'Neil"},
		{"lone doubled quote", "''''", "'"},
		{"backslash quote", `'l\'atelier'`, "l'atelier"},
		{"backslash backslash", `'C:\\tmp'`, `C:\tmp`},
		{"newline escape", `'a\nb'`, "a\nb"},
		{"unknown escape keeps char", `'\%'`, "%"},
		{"empty string", "''", ""},
		{"number untouched", " 42 ", "42"},
		{"null untouched", "NULL", "NULL"},
		{"missing closing quote untouched", "'abc", "'abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Unquote(tt.in))
		})
	}
}

func TestUnquote_DoubledQuoteYieldsExactlyOneQuote(t *testing.T) {
	t.Parallel()

	got := Unquote("'it''s'")
	assert.Equal(t, 1, strings.Count(got, "'"))
	assert.Equal(t, "it's", got)
}

func TestIsNull(t *testing.T) {
	t.Parallel()

	assert.True(t, IsNull("NULL"))
	assert.True(t, IsNull(" null "))
	assert.False(t, IsNull("'NULL'"))
	assert.False(t, IsNull("0"))
}
