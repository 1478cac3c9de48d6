package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"ArticleHistoryBot/internal/extractor"
	"ArticleHistoryBot/internal/ports"
)

const editSummary = "Merging milestone templates into {{Article history}} (bot)"

// PipelineDeps wires all driven adapters into the merge pipeline.
type PipelineDeps struct {
	Pages       ports.PageService
	EditCounts  ports.EditCounter
	Decider     ports.Decider
	Persister   ports.Persister
	Repository  ports.RunRepository
	Notifier    ports.Notifier
	Transformer *Transformer
	Interactive bool
	// ReviewThreshold is the peer-review edit-count cutoff.
	ReviewThreshold int
	Logger          *slog.Logger
}

// Pipeline walks a page list, transforms each page independently, and
// persists the survivors. Page failures are logged, recorded, and skipped;
// nothing here is fatal to the run.
type Pipeline struct {
	deps PipelineDeps
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	return &Pipeline{deps: deps}
}

// ProcessPages treats every title in order. Each page gets its own document
// snapshot and aggregate, so callers may also shard the title list across
// concurrent ProcessPages calls.
func (p *Pipeline) ProcessPages(ctx context.Context, titles []string) error {
	var treated, skipped int
	for _, title := range titles {
		outcome, err := p.processPage(ctx, title)
		if err != nil {
			skipped++
			p.log().Warn("page skipped", "title", title, "reason", err)
			p.record(ctx, title, 0, "skipped", err.Error())
			continue
		}
		if outcome {
			treated++
		}
	}

	if p.deps.Notifier != nil {
		digest := fmt.Sprintf("article history merge run: %d merged, %d skipped of %d pages", treated, skipped, len(titles))
		if err := p.deps.Notifier.PublishDigest(ctx, digest); err != nil {
			p.log().Warn("publish digest", "error", err)
		}
	}
	return nil
}

// processPage reports whether the page was edited; collaborator failures and
// page-scoped merge aborts both surface as errors.
func (p *Pipeline) processPage(ctx context.Context, title string) (bool, error) {
	if p.deps.Repository != nil {
		done, err := p.deps.Repository.AlreadyTreated(ctx, title)
		if err != nil {
			return false, fmt.Errorf("load treated: %w", err)
		}
		if done {
			p.log().Debug("already treated", "title", title)
			return false, nil
		}
	}

	page, err := p.deps.Pages.Fetch(ctx, title)
	if err != nil {
		return false, fmt.Errorf("fetch page: %w", err)
	}

	ec := extractor.Context{
		Title:           title,
		EditCounts:      p.deps.EditCounts,
		Decider:         p.deps.Decider,
		Interactive:     p.deps.Interactive,
		ReviewThreshold: p.deps.ReviewThreshold,
	}

	edits, err := p.deps.Transformer.Transform(ctx, ec, page.Doc)
	if err != nil {
		return false, err
	}

	text, err := p.deps.Pages.Render(ctx, page, edits)
	if err != nil {
		return false, fmt.Errorf("render page: %w", err)
	}

	if p.deps.Persister != nil {
		if err := p.deps.Persister.Submit(ctx, title, page.RevID, text, editSummary); err != nil {
			return false, fmt.Errorf("submit edit: %w", err)
		}
	}

	p.record(ctx, title, page.RevID, "merged", fmt.Sprintf("%d edits", len(edits)))
	p.log().Info("page merged", "title", title, "rev", page.RevID, "edits", len(edits))
	return true, nil
}

func (p *Pipeline) record(ctx context.Context, title string, rev int64, outcome, detail string) {
	if p.deps.Repository == nil {
		return
	}
	err := p.deps.Repository.Record(ctx, ports.RunRecord{
		Title:      title,
		RevID:      rev,
		Outcome:    outcome,
		Detail:     detail,
		RecordedAt: time.Now().UTC(),
	})
	if err != nil {
		p.log().Warn("record run", "title", title, "error", err)
	}
}

func (p *Pipeline) log() *slog.Logger {
	if p.deps.Logger != nil {
		return p.deps.Logger
	}
	return slog.Default()
}
