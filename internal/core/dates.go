package core

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// PrefixConfig maps invoice-number prefixes to a date-ordering convention.
// When a numeric date token is genuinely ambiguous (both day and month <= 12)
// the resolver consults these tables: a US-prefixed invoice number implies
// MM-DD ordering, an international prefix implies DD-MM. The table reflects
// the organization's historical numbering scheme and is injectable so it can
// be corrected without touching the resolver's control flow.
type PrefixConfig struct {
	US            []string
	International []string
}

// DefaultPrefixes carries the prefix sets from the legacy numbering scheme.
var DefaultPrefixes = PrefixConfig{
	US:            []string{"US", "USI", "NA"},
	International: []string{"AU", "UK", "EU", "SG", "NZ"},
}

// DateResolver disambiguates and normalizes date tokens found in free text.
type DateResolver struct {
	prefixes PrefixConfig
}

// NewDateResolver returns a resolver using the given prefix tables. Empty
// tables fall back to the defaults.
func NewDateResolver(prefixes PrefixConfig) *DateResolver {
	if len(prefixes.US) == 0 && len(prefixes.International) == 0 {
		prefixes = DefaultPrefixes
	}
	return &DateResolver{prefixes: prefixes}
}

var namedMonthPattern = regexp.MustCompile(`^(\d{1,2})[-/ ]([A-Za-z]+)\.?[-/ ](\d{2}|\d{4})$`)

var monthNames = map[string]int{
	"jan": 1, "january": 1,
	"feb": 2, "february": 2,
	"mar": 3, "march": 3,
	"apr": 4, "april": 4,
	"may": 5,
	"jun": 6, "june": 6,
	"jul": 7, "july": 7,
	"aug": 8, "august": 8,
	"sep": 9, "sept": 9, "september": 9,
	"oct": 10, "october": 10,
	"nov": 11, "november": 11,
	"dec": 12, "december": 12,
}

// Resolve parses a date token into a calendar date. The invoice number is
// used only to break day/month ties in numeric tokens. Returns false when the
// token is not a valid date.
func (r *DateResolver) Resolve(token, invoiceNumber string) (time.Time, bool) {
	token = strings.TrimSpace(token)

	if m := namedMonthPattern.FindStringSubmatch(token); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, ok := monthNames[strings.ToLower(m[2])]
		if !ok {
			return time.Time{}, false
		}
		year, _ := strconv.Atoi(m[3])
		if year < 100 {
			year += 2000
		}
		return buildDate(year, month, day)
	}

	parts := numericSeparator.Split(token, -1)
	if len(parts) != 3 {
		return time.Time{}, false
	}
	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return time.Time{}, false
		}
		nums[i] = n
	}

	year := nums[2]
	if year < 100 {
		year += 2000
	}

	var day, month int
	switch {
	case nums[0] > 12:
		// First part cannot be a month.
		day, month = nums[0], nums[1]
	case nums[1] > 12:
		// Second part cannot be a month.
		month, day = nums[0], nums[1]
	case r.hasPrefix(invoiceNumber, r.prefixes.US):
		month, day = nums[0], nums[1]
	default:
		// International prefixes and unknown prefixes both read day-first.
		day, month = nums[0], nums[1]
	}

	return buildDate(year, month, day)
}

var numericSeparator = regexp.MustCompile(`[-/]`)

func (r *DateResolver) hasPrefix(invoiceNumber string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(invoiceNumber, p) {
			return true
		}
	}
	return false
}

// buildDate validates the component ranges and that the combination is a real
// calendar date. time.Date normalizes overflow (Feb 31 becomes Mar 2), so a
// round-trip comparison catches impossible dates.
func buildDate(year, month, day int) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if d.Year() != year || d.Month() != time.Month(month) || d.Day() != day {
		return time.Time{}, false
	}
	return d, true
}
