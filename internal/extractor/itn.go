package extractor

import (
	"context"
	"fmt"

	"ArticleHistoryBot/internal/dates"
	"ArticleHistoryBot/internal/document"
	"ArticleHistoryBot/internal/history"
)

// ItnExtractor consumes {{ITN talk}} blocks.
type ItnExtractor struct{}

type itnValue struct {
	date  dates.Preserved
	oldid string
	alt   bool
}

func (*ItnExtractor) Name() string { return "itn" }

func (*ItnExtractor) Aliases() []string {
	return []string{"itn talk", "itntalk"}
}

// Extract walks the numbered date family. Index 1 additionally accepts the
// positional month/year pair and the date/date1 synonyms; a bare oldid
// belongs to index 1.
func (*ItnExtractor) Extract(b document.Block) (any, error) {
	params, err := blockParams(b)
	if err != nil {
		return nil, err
	}

	globalAlt := false
	if v, ok := take(params, "alt"); ok {
		globalAlt = truthyValue(v)
	}

	var itns []itnValue
	for n := 1; ; n++ {
		var raw string
		var ok bool
		if n == 1 {
			if raw, ok = take(params, "1"); ok {
				if day, hasDay := take(params, "2"); hasDay {
					raw = fmt.Sprintf("%s %s", raw, day)
				}
			} else if raw, ok = take(params, "date"); !ok {
				raw, ok = take(params, "date1")
			}
		} else {
			raw, ok = take(params, fmt.Sprintf("date%d", n))
		}
		if !ok {
			break
		}

		var oldid string
		if n == 1 {
			oldid, _ = take(params, "oldid")
		}
		if oldid == "" {
			oldid, _ = take(params, fmt.Sprintf("oldid%d", n))
		}

		alt := globalAlt
		if v, ok := take(params, fmt.Sprintf("alt%d", n)); ok {
			alt = alt || truthyValue(v)
		}

		date, err := dates.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("itn: %w", err)
		}
		itns = append(itns, itnValue{date: date, oldid: oldid, alt: alt})
	}

	if err := rejectLeftovers(params, b); err != nil {
		return nil, err
	}
	return itns, nil
}

// link derives the archived appearance link: the anniversary portal page for
// alt entries, the permanent revision link when an oldid is known.
func (v itnValue) link() string {
	if v.alt {
		return "Portal:Current events/" + v.date.Time.Format("2006 January 02")
	}
	if v.oldid != "" {
		return "Special:PermanentLink/" + v.oldid
	}
	return ""
}

func (*ItnExtractor) Merge(_ context.Context, _ Context, value any, into *history.ArticleHistory) error {
	for _, v := range value.([]itnValue) {
		into.Itns = append(into.Itns, history.Itn{Date: v.date, Link: v.link()})
	}
	return nil
}
