package ports

import (
	"context"
	"time"

	"ArticleHistoryBot/internal/document"
)

// Page is one fetched talk page: the snapshot the core transforms plus the
// raw HTML the adapter needs when applying the resulting edits.
type Page struct {
	Title string
	RevID int64
	HTML  string
	Doc   document.Document
}

// PageService fetches pages as snapshots and renders edit instructions back
// to wikitext.
type PageService interface {
	Fetch(ctx context.Context, title string) (Page, error)
	Render(ctx context.Context, page Page, edits []document.Edit) (string, error)
}

// EditCounter looks up how many edits an arbitrary page has.
type EditCounter interface {
	EditCount(ctx context.Context, page string) (int, error)
}

// Decider answers a yes/no question, typically by asking a human.
type Decider interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// Persister submits the transformed page as a minor, bot-attributed edit
// conditioned on the base revision being unchanged.
type Persister interface {
	Submit(ctx context.Context, title string, baseRev int64, text, summary string) error
}

// RunRecord is the audit entry persisted per treated page.
type RunRecord struct {
	ID         string
	Title      string
	RevID      int64
	Outcome    string
	Detail     string
	RecordedAt time.Time
}

// RunRepository persists treatment outcomes for deduplication and audit.
type RunRepository interface {
	AlreadyTreated(ctx context.Context, title string) (bool, error)
	Record(ctx context.Context, rec RunRecord) error
}

// Notifier publishes a run digest to an out-of-band channel.
type Notifier interface {
	PublishDigest(ctx context.Context, digest string) error
}

// Scheduler controls when merge runs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
