package extractor

import (
	"context"
	"fmt"
	"strings"

	"ArticleHistoryBot/internal/dates"
	"ArticleHistoryBot/internal/document"
	"ArticleHistoryBot/internal/history"
)

// OldPrExtractor consumes {{Old peer review}} blocks.
type OldPrExtractor struct{}

type oldPrValue struct {
	archive      string
	reviewedName string
	archiveLink  string
	id           string
	date         dates.Preserved
	hasDate      bool
}

func (*OldPrExtractor) Name() string { return "oldpr" }

func (*OldPrExtractor) Aliases() []string {
	return []string{"old peer review", "oldpeerreview"}
}

func (*OldPrExtractor) Extract(b document.Block) (any, error) {
	params, err := blockParams(b)
	if err != nil {
		return nil, err
	}

	var v oldPrValue
	v.archive, _ = take(params, "archive")
	v.reviewedName, _ = take(params, "reviewedname")
	v.archiveLink, _ = take(params, "archivelink")
	v.id, _ = take(params, "ID")

	if raw, ok := take(params, "date"); ok && raw != "" {
		v.date, err = dates.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("old peer review: %w", err)
		}
		v.hasDate = true
	}

	if err := rejectLeftovers(params, b); err != nil {
		return nil, err
	}
	return v, nil
}

// Merge decides whether the review was substantive by the edit count of its
// archive page. Below the threshold it defers to the interactive decider
// when one is allowed, and fails otherwise. A missing review date is always
// a failure; it is never inferred.
func (*OldPrExtractor) Merge(ctx context.Context, ec Context, value any, into *history.ArticleHistory) error {
	v := value.(oldPrValue)

	title := strings.TrimPrefix(ec.Title, "Talk:")
	link := v.archiveLink
	if link == "" {
		name := v.reviewedName
		if name == "" {
			name = title
		}
		archive := v.archive
		if archive == "" {
			archive = "1"
		}
		link = fmt.Sprintf("Wikipedia:Peer review/%s/archive%s", name, archive)
	}

	if ec.EditCounts == nil {
		return fmt.Errorf("%w: no edit count source for %q", ErrUndecidable, link)
	}
	count, err := ec.EditCounts.EditCount(ctx, link)
	if err != nil {
		return fmt.Errorf("edit count for %q: %w", link, err)
	}

	result := "Reviewed"
	if count < ec.ReviewThreshold {
		if !ec.Interactive || ec.Decider == nil {
			return fmt.Errorf("%w: %q has %d edits, below threshold %d", ErrUndecidable, link, count, ec.ReviewThreshold)
		}
		reviewed, err := ec.Decider.Confirm(ctx, fmt.Sprintf("is the peer review at [[%s]] substantively reviewed?", link))
		if err != nil {
			return fmt.Errorf("confirm review of %q: %w", link, err)
		}
		if !reviewed {
			result = "Not reviewed"
		}
	}

	if !v.hasDate {
		return fmt.Errorf("%w: date (automatic determination is disabled)", ErrMissingRequiredField)
	}

	into.Actions = append(into.Actions, history.Action{
		Kind:   history.KindPR,
		Date:   v.date,
		Link:   link,
		Result: result,
		OldID:  v.id,
	})
	return nil
}
