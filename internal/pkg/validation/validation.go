package validation

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

// FieldErrors maps a JSON field name to the first error message found for it.
type FieldErrors map[string]string

// Add records msg for field unless the field already has an error.
func (f FieldErrors) Add(field, msg string) {
	if _, ok := f[field]; !ok {
		f[field] = msg
	}
}

// Empty reports whether no field failed.
func (f FieldErrors) Empty() bool {
	return len(f) == 0
}

// Fields returns the failing field names in sorted order.
func (f FieldErrors) Fields() []string {
	out := make([]string, 0, len(f))
	for k := range f {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Required adds msg when value is blank after trimming.
func (f FieldErrors) Required(field, value, msg string) {
	if strings.TrimSpace(value) == "" {
		f.Add(field, msg)
	}
}

// ParseNumber parses s the way an HTML number input's value is read: surrounding
// whitespace is ignored, blank means absent, and NaN or infinities are rejected.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// earliestDate is the lower bound of the date picker.
var earliestDate = time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC)

// IsPickableDate reports whether day lies between 1900-01-01 and today inclusive.
func IsPickableDate(day, today time.Time) bool {
	if day.Before(earliestDate) {
		return false
	}
	y, m, d := today.Date()
	endOfToday := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return !day.After(endOfToday)
}
