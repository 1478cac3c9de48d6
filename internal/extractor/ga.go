package extractor

import (
	"context"
	"fmt"

	"ArticleHistoryBot/internal/dates"
	"ArticleHistoryBot/internal/document"
	"ArticleHistoryBot/internal/history"
)

// gaValue is shared by {{GA}} and {{FailedGA}}, which carry the same
// parameters and differ only in the outcome they record.
type gaValue struct {
	date  dates.Preserved
	oldid string
	topic string
	page  string
}

func decodeGaLike(b document.Block) (gaValue, error) {
	params, err := blockParams(b)
	if err != nil {
		return gaValue{}, err
	}

	var v gaValue

	raw, ok := take(params, "1")
	if !ok {
		raw, ok = take(params, "date")
	} else if _, dup := params["date"]; dup {
		return gaValue{}, errParam(ErrDuplicateParameter, b, "date")
	}
	if !ok || raw == "" {
		return gaValue{}, fmt.Errorf("%w: date in {{%s}}", ErrMissingRequiredField, b.Name)
	}
	v.date, err = dates.Parse(raw)
	if err != nil {
		return gaValue{}, fmt.Errorf("%s: %w", b.Name, err)
	}

	v.oldid, _ = take(params, "oldid")
	v.topic, ok = take(params, "topic")
	if !ok {
		v.topic, _ = take(params, "subtopic")
	} else if _, dup := params["subtopic"]; dup {
		return gaValue{}, errParam(ErrDuplicateParameter, b, "subtopic")
	}
	v.page, _ = take(params, "page")
	take(params, "small")

	if err := rejectLeftovers(params, b); err != nil {
		return gaValue{}, err
	}
	return v, nil
}

// mergeGaLike synthesizes the GAN action a standalone GA template implies,
// linking it to the numbered review subpage of the host title.
func mergeGaLike(ec Context, v gaValue, result string, into *history.ArticleHistory) error {
	if v.topic != "" {
		if err := into.SetTopic(v.topic); err != nil {
			return err
		}
	}
	if v.page == "" {
		return fmt.Errorf("%w: page", ErrMissingRequiredField)
	}
	into.Actions = append(into.Actions, history.Action{
		Kind:   history.KindGAN,
		Date:   v.date,
		Link:   fmt.Sprintf("%s/GA%s", ec.Title, v.page),
		Result: result,
		OldID:  v.oldid,
	})
	return nil
}

// GaExtractor consumes {{GA}} blocks, each recording a successful listing.
type GaExtractor struct{}

func (*GaExtractor) Name() string { return "ga" }

func (*GaExtractor) Aliases() []string { return []string{"ga"} }

func (*GaExtractor) Extract(b document.Block) (any, error) {
	return decodeGaLike(b)
}

func (*GaExtractor) Merge(_ context.Context, ec Context, value any, into *history.ArticleHistory) error {
	return mergeGaLike(ec, value.(gaValue), "listed", into)
}

// FailedGaExtractor consumes {{FailedGA}} blocks.
type FailedGaExtractor struct{}

func (*FailedGaExtractor) Name() string { return "failedga" }

func (*FailedGaExtractor) Aliases() []string { return []string{"failedga", "failed ga"} }

func (*FailedGaExtractor) Extract(b document.Block) (any, error) {
	return decodeGaLike(b)
}

func (*FailedGaExtractor) Merge(_ context.Context, ec Context, value any, into *history.ArticleHistory) error {
	return mergeGaLike(ec, value.(gaValue), "failed", into)
}
