package legacy

import (
	"strconv"
	"strings"
	"time"

	"github.com/golang-sql/civil"
)

// Zero-date sentinels MySQL writes for "no date".
const (
	zeroDateTime = "0000-00-00 00:00:00"
	zeroDate     = "0000-00-00"
)

// defaultBirthYear is used for birthdays recorded without a year. 2000 is a
// leap year, so 29/02 stays a valid date.
const defaultBirthYear = 2000

// ParseDateTime normalizes a datetime column. NULL, empty values and the
// zero-date sentinel are reported as absent; any other value is returned
// unchanged (without quotes).
func ParseDateTime(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if s == "" || strings.EqualFold(s, "NULL") || s == "'NULL'" {
		return "", false
	}
	s = strings.TrimSpace(strings.Trim(s, "'"))
	if s == "" || s == zeroDateTime || s == zeroDate {
		return "", false
	}
	return s, true
}

// ParseBirthday parses the free-form birthday column.
//
// Accepted forms use '/', '.', '-' or ':' as separator: dd/mm, dd/mm/yy and
// dd/mm/yyyy. Two-digit years pivot at 50 (51 → 1951, 50 → 2050). A missing
// year becomes 2000. Month must be 1..12 and day 1..31; a day beyond the end
// of the month is clamped to the month's last day (31/04 → 30/04, 29/02/2019 →
// 28/02/2019). Anything else returns nil.
func ParseBirthday(raw string) *civil.Date {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	parts := splitDateParts(s)
	if len(parts) < 2 {
		return nil
	}

	day, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return nil
	}
	month, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return nil
	}

	year := defaultBirthYear
	if len(parts) >= 3 {
		year, err = strconv.Atoi(strings.TrimSpace(parts[2]))
		if err != nil {
			return nil
		}
		if year < 100 {
			if year > 50 {
				year += 1900
			} else {
				year += 2000
			}
		}
	}

	if month < 1 || month > 12 || day < 1 || day > 31 {
		return nil
	}
	if last := daysIn(time.Month(month), year); day > last {
		day = last
	}
	return &civil.Date{Year: year, Month: time.Month(month), Day: day}
}

// splitDateParts splits on every separator, keeping empty parts so that
// "12//05" is rejected rather than read as 12/05.
func splitDateParts(s string) []string {
	var parts []string
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '/', '.', '-', ':':
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	return append(parts, s[start:])
}

var monthDays = [12]int{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

func daysIn(m time.Month, year int) int {
	if m == time.February && isLeap(year) {
		return 29
	}
	return monthDays[m-1]
}

func isLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}
