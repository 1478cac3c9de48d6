package extractor

import (
	"context"
	"fmt"

	"ArticleHistoryBot/internal/dates"
	"ArticleHistoryBot/internal/document"
	"ArticleHistoryBot/internal/history"
)

// OtdExtractor consumes {{On this day}} blocks.
type OtdExtractor struct{}

type otdValue struct {
	date  dates.Preserved
	oldid string
}

func (*OtdExtractor) Name() string { return "otd" }

func (*OtdExtractor) Aliases() []string {
	return []string{"on this day", "selected anniversary", "otdtalk", "satalk", "onthisday"}
}

// Extract walks the paired dateN/oldidN family; an entry needs both halves.
func (*OtdExtractor) Extract(b document.Block) (any, error) {
	params, err := blockParams(b)
	if err != nil {
		return nil, err
	}

	var otds []otdValue
	for n := 1; ; n++ {
		raw, ok := take(params, fmt.Sprintf("date%d", n))
		if !ok {
			break
		}
		oldid, ok := take(params, fmt.Sprintf("oldid%d", n))
		if !ok {
			break
		}
		date, err := dates.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("otd: %w", err)
		}
		otds = append(otds, otdValue{date: date, oldid: oldid})
	}

	if err := rejectLeftovers(params, b); err != nil {
		return nil, err
	}
	return otds, nil
}

func (*OtdExtractor) Merge(_ context.Context, _ Context, value any, into *history.ArticleHistory) error {
	for _, v := range value.([]otdValue) {
		into.Otds = append(into.Otds, history.Otd{Date: v.date, OldID: v.oldid})
	}
	return nil
}
