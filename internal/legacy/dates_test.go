package legacy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBirthday(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string // "" means nil
	}{
		{"leap day without year uses 2000", "29/02", "2000-02-29"},
		{"april 31 clamps to 30", "31/04", "2000-04-30"},
		{"two digit year above pivot", "12/05/72", "1972-05-12"},
		{"two digit year at pivot", "01/01/50", "2050-01-01"},
		{"two digit year below pivot", "3.7.05", "2005-07-03"},
		{"four digit year", "15-08-1988", "1988-08-15"},
		{"colon separator", "02:11", "2000-11-02"},
		{"leap day on common year clamps to 28", "29/02/2019", "2019-02-28"},
		{"leap day on century leap year", "29/02/1600", "1600-02-29"},
		{"whitespace tolerated", " 7 / 9 ", "2000-09-07"},
		{"month out of range", "12/13", ""},
		{"day out of range", "32/01", ""},
		{"day zero", "00/01", ""},
		{"single component", "1205", ""},
		{"empty component", "12//05", ""},
		{"not a number", "le 12 mai", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := ParseBirthday(tt.in)
			if tt.want == "" {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.String())
			assert.True(t, got.IsValid())
		})
	}
}

func TestParseDateTime(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{"'2019-03-02 10:15:00'", "2019-03-02 10:15:00", true},
		{"2019-03-02", "2019-03-02", true},
		{"'0000-00-00 00:00:00'", "", false},
		{"'0000-00-00'", "", false},
		{"NULL", "", false},
		{"'NULL'", "", false},
		{"''", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := ParseDateTime(tt.in)
		assert.Equal(t, tt.wantOK, ok, "input %q", tt.in)
		assert.Equal(t, tt.want, got, "input %q", tt.in)
	}
}
