package core_test

import (
	"testing"
	"time"

	"invoice-tracker/internal/core"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDateResolver_NamedMonths(t *testing.T) {
	r := core.NewDateResolver(core.DefaultPrefixes)

	tests := []struct {
		token string
		want  time.Time
	}{
		{"23-Aug-2024", date(2024, time.August, 23)},
		{"23-Aug-24", date(2024, time.August, 23)},
		{"23 Aug 2024", date(2024, time.August, 23)},
		{"1/January/2025", date(2025, time.January, 1)},
		{"5 Sept. 24", date(2024, time.September, 5)},
		{"30 December 2023", date(2023, time.December, 30)},
	}

	for _, tt := range tests {
		got, ok := r.Resolve(tt.token, "")
		if !ok {
			t.Errorf("Resolve(%q): expected success, got failure", tt.token)
			continue
		}
		if !got.Equal(tt.want) {
			t.Errorf("Resolve(%q) = %v, want %v", tt.token, got, tt.want)
		}
	}
}

func TestDateResolver_NumericDisambiguation(t *testing.T) {
	r := core.NewDateResolver(core.DefaultPrefixes)

	tests := []struct {
		name          string
		token         string
		invoiceNumber string
		want          time.Time
	}{
		// First component over 12 can only be a day.
		{"day first forced", "13-05-2024", "", date(2024, time.May, 13)},
		// Second component over 12 can only be a day.
		{"month first forced", "05-13-2024", "", date(2024, time.May, 13)},
		// Genuinely ambiguous: US prefix reads month-first.
		{"ambiguous US prefix", "04-05-2024", "US-1001", date(2024, time.April, 5)},
		{"ambiguous USI prefix", "04-05-2024", "USI-2002", date(2024, time.April, 5)},
		// International prefixes read day-first.
		{"ambiguous AU prefix", "04-05-2024", "AU-3003", date(2024, time.May, 4)},
		{"ambiguous UK prefix", "04-05-2024", "UK-4004", date(2024, time.May, 4)},
		// Unknown prefixes default to day-first as well.
		{"ambiguous unknown prefix", "04-05-2024", "XX-5005", date(2024, time.May, 4)},
		{"ambiguous no invoice number", "04-05-2024", "", date(2024, time.May, 4)},
		// Two-digit years are read as 20xx.
		{"short year", "13/05/24", "", date(2024, time.May, 13)},
		{"slash separated", "4/5/2024", "US-1", date(2024, time.April, 5)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := r.Resolve(tt.token, tt.invoiceNumber)
			if !ok {
				t.Fatalf("Resolve(%q, %q): expected success, got failure", tt.token, tt.invoiceNumber)
			}
			if !got.Equal(tt.want) {
				t.Errorf("Resolve(%q, %q) = %v, want %v", tt.token, tt.invoiceNumber, got, tt.want)
			}
		})
	}
}

func TestDateResolver_RejectsInvalidTokens(t *testing.T) {
	r := core.NewDateResolver(core.DefaultPrefixes)

	tokens := []string{
		"",
		"not a date",
		"32-01-2024",  // day out of range
		"15-13-2024",  // both components over 12
		"30-Feb-2024", // impossible calendar date
		"23-Xyz-2024", // unknown month name
		"05-2024",     // too few components
		"1-2-3-4",     // too many components
	}

	for _, token := range tokens {
		if got, ok := r.Resolve(token, "US-1"); ok {
			t.Errorf("Resolve(%q): expected failure, got %v", token, got)
		}
	}
}

func TestDateResolver_CustomPrefixes(t *testing.T) {
	r := core.NewDateResolver(core.PrefixConfig{
		US:            []string{"AM"},
		International: []string{"ZZ"},
	})

	got, ok := r.Resolve("04-05-2024", "AM-100")
	if !ok {
		t.Fatal("Resolve with custom US prefix failed")
	}
	if want := date(2024, time.April, 5); !got.Equal(want) {
		t.Errorf("custom US prefix: got %v, want %v", got, want)
	}

	// The default US prefixes must not apply once a custom table is injected.
	got, ok = r.Resolve("04-05-2024", "US-100")
	if !ok {
		t.Fatal("Resolve with non-listed prefix failed")
	}
	if want := date(2024, time.May, 4); !got.Equal(want) {
		t.Errorf("non-listed prefix should read day-first: got %v, want %v", got, want)
	}
}
