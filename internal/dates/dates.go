package dates

import (
	"fmt"
	"time"

	"github.com/araddon/dateparse"
)

// ErrParse reports date text the shared grammar could not understand.
var ErrParse = fmt.Errorf("unparseable date")

// Preserved pairs a parsed instant with the exact text it was parsed from.
// The instant drives ordering and comparison; the original text is what gets
// written back, so historical records never have their displayed dates
// reformatted.
type Preserved struct {
	Time     time.Time
	Original string
}

// Parse interprets free-form date text in UTC. The returned value keeps the
// input verbatim in Original.
func Parse(text string) (Preserved, error) {
	t, err := dateparse.ParseIn(text, time.UTC)
	if err != nil {
		return Preserved{}, fmt.Errorf("%w: %q: %v", ErrParse, text, err)
	}
	return Preserved{Time: t.UTC(), Original: text}, nil
}

// Before orders by instant only; differing original texts that parse to the
// same instant compare equal.
func (p Preserved) Before(other Preserved) bool {
	return p.Time.Before(other.Time)
}

// Equal compares instants, ignoring the original text.
func (p Preserved) Equal(other Preserved) bool {
	return p.Time.Equal(other.Time)
}

// IsZero reports whether the value was never parsed from anything.
func (p Preserved) IsZero() bool {
	return p.Original == "" && p.Time.IsZero()
}

func (p Preserved) String() string {
	return p.Original
}
