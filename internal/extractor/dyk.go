package extractor

import (
	"context"
	"fmt"

	"ArticleHistoryBot/internal/dates"
	"ArticleHistoryBot/internal/document"
	"ArticleHistoryBot/internal/history"
)

// DykExtractor consumes {{DYK talk}} blocks.
type DykExtractor struct{}

type dykValue struct {
	date    string
	two     string
	three   string
	entry   string
	nompage string
}

func (*DykExtractor) Name() string { return "dyk" }

func (*DykExtractor) Aliases() []string {
	return []string{"dyk talk", "dyktalk"}
}

func (*DykExtractor) Extract(b document.Block) (any, error) {
	params, err := blockParams(b)
	if err != nil {
		return nil, err
	}

	var v dykValue
	var ok bool
	if v.date, ok = take(params, "1"); !ok || v.date == "" {
		return nil, fmt.Errorf("%w: date in {{%s}}", ErrMissingRequiredField, b.Name)
	}
	v.two, _ = take(params, "2")
	v.three, _ = take(params, "3")
	v.entry, _ = take(params, "entry")
	v.nompage, _ = take(params, "nompage")

	// Accepted but irrelevant to the aggregate.
	take(params, "views")
	take(params, "image")
	take(params, "article")
	take(params, "small")

	if err := rejectLeftovers(params, b); err != nil {
		return nil, err
	}
	return v, nil
}

// Merge disambiguates the positional parameters: a numeric second positional
// is the year and is folded into the date text; otherwise it is the blurb
// entry when no named entry exists.
func (*DykExtractor) Merge(_ context.Context, _ Context, value any, into *history.ArticleHistory) error {
	v := value.(dykValue)

	dateText := v.date
	entry := v.entry
	switch {
	case v.two != "" && allDigits(v.two):
		dateText = fmt.Sprintf("%s %s", v.date, v.two)
		if entry == "" {
			entry = v.three
		}
	case entry == "" && v.two != "":
		entry = v.two
	}

	date, err := dates.Parse(dateText)
	if err != nil {
		return fmt.Errorf("dyk: %w", err)
	}

	into.Dyks = append(into.Dyks, history.Dyk{
		Date:  date,
		Entry: entry,
		Nom:   v.nompage,
	})
	return nil
}
