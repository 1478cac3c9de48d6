package dates

import (
	"errors"
	"testing"
	"time"
)

func TestParseKeepsOriginalText(t *testing.T) {
	t.Parallel()

	cases := []struct {
		text string
		want time.Time
	}{
		{"January 1, 2020", time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)},
		{"1 Jan 2020", time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)},
		{"2006-05-26", time.Date(2006, time.May, 26, 0, 0, 0, 0, time.UTC)},
		{"26 May 2006", time.Date(2006, time.May, 26, 0, 0, 0, 0, time.UTC)},
		{"May 26, 2006", time.Date(2006, time.May, 26, 0, 0, 0, 0, time.UTC)},
	}

	for _, tc := range cases {
		got, err := Parse(tc.text)
		if err != nil {
			t.Fatalf("Parse(%q) returned error: %v", tc.text, err)
		}
		if got.Original != tc.text {
			t.Fatalf("Parse(%q) rewrote original to %q", tc.text, got.Original)
		}
		if !got.Time.Equal(tc.want) {
			t.Fatalf("Parse(%q) = %v, want %v", tc.text, got.Time, tc.want)
		}
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	t.Parallel()

	_, err := Parse("not a date at all")
	if !errors.Is(err, ErrParse) {
		t.Fatalf("expected ErrParse, got %v", err)
	}
}

func TestOrderingIgnoresSpelling(t *testing.T) {
	t.Parallel()

	a, err := Parse("May 26, 2006")
	if err != nil {
		t.Fatalf("parse a: %v", err)
	}
	b, err := Parse("26 May 2006")
	if err != nil {
		t.Fatalf("parse b: %v", err)
	}

	if !a.Equal(b) {
		t.Fatalf("differently spelled equal dates must compare equal")
	}
	if a.Before(b) || b.Before(a) {
		t.Fatalf("equal instants must not order before each other")
	}
}
