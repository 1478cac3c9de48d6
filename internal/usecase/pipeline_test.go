package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ArticleHistoryBot/internal/document"
	"ArticleHistoryBot/internal/ports"
)

type fakePages struct {
	pages  map[string]ports.Page
	failed map[string]error
}

func (f *fakePages) Fetch(_ context.Context, title string) (ports.Page, error) {
	if err, ok := f.failed[title]; ok {
		return ports.Page{}, err
	}
	p, ok := f.pages[title]
	if !ok {
		return ports.Page{}, errors.New("unknown page")
	}
	return p, nil
}

func (f *fakePages) Render(_ context.Context, page ports.Page, edits []document.Edit) (string, error) {
	return "rendered:" + page.Title, nil
}

type submission struct {
	title   string
	baseRev int64
	text    string
	summary string
}

type fakePersister struct {
	submitted []submission
}

func (f *fakePersister) Submit(_ context.Context, title string, baseRev int64, text, summary string) error {
	f.submitted = append(f.submitted, submission{title, baseRev, text, summary})
	return nil
}

type fakeRepo struct {
	treated map[string]bool
	records []ports.RunRecord
}

func (f *fakeRepo) AlreadyTreated(_ context.Context, title string) (bool, error) {
	return f.treated[title], nil
}

func (f *fakeRepo) Record(_ context.Context, rec ports.RunRecord) error {
	f.records = append(f.records, rec)
	return nil
}

type fakeNotifier struct {
	digests []string
}

func (f *fakeNotifier) PublishDigest(_ context.Context, digest string) error {
	f.digests = append(f.digests, digest)
	return nil
}

func mergeablePage(title string) ports.Page {
	return ports.Page{
		Title: title,
		RevID: 777,
		Doc: document.Document{Blocks: []document.Block{
			block("Article history"),
			block("On this day", "date1", "January 1, 2020", "oldid1", "12345"),
		}},
	}
}

func TestProcessPagesEndToEnd(t *testing.T) {
	t.Parallel()

	pages := &fakePages{pages: map[string]ports.Page{
		"Talk:Yttrium": mergeablePage("Talk:Yttrium"),
	}}
	persister := &fakePersister{}
	repo := &fakeRepo{treated: map[string]bool{}}
	notifier := &fakeNotifier{}

	p := NewPipeline(PipelineDeps{
		Pages:       pages,
		Persister:   persister,
		Repository:  repo,
		Notifier:    notifier,
		Transformer: newTransformer(),
	})

	require.NoError(t, p.ProcessPages(context.Background(), []string{"Talk:Yttrium"}))

	require.Len(t, persister.submitted, 1)
	sub := persister.submitted[0]
	assert.Equal(t, "Talk:Yttrium", sub.title)
	assert.EqualValues(t, 777, sub.baseRev)
	assert.Equal(t, "rendered:Talk:Yttrium", sub.text)
	assert.Contains(t, sub.summary, "Article history")

	require.Len(t, repo.records, 1)
	assert.Equal(t, "merged", repo.records[0].Outcome)

	require.Len(t, notifier.digests, 1)
	assert.Contains(t, notifier.digests[0], "1 merged, 0 skipped of 1 pages")
}

func TestProcessPagesSkipsFailuresAndContinues(t *testing.T) {
	t.Parallel()

	pages := &fakePages{
		pages: map[string]ports.Page{
			"Talk:Good": mergeablePage("Talk:Good"),
			// No anchor and no aggregate: the transform aborts this page.
			"Talk:Bare": {Title: "Talk:Bare", Doc: document.Document{Blocks: []document.Block{block("Talk header")}}},
		},
		failed: map[string]error{"Talk:Down": errors.New("parsoid unavailable")},
	}
	persister := &fakePersister{}
	repo := &fakeRepo{treated: map[string]bool{}}
	notifier := &fakeNotifier{}

	p := NewPipeline(PipelineDeps{
		Pages:       pages,
		Persister:   persister,
		Repository:  repo,
		Notifier:    notifier,
		Transformer: newTransformer(),
	})

	require.NoError(t, p.ProcessPages(context.Background(), []string{"Talk:Down", "Talk:Bare", "Talk:Good"}))

	// Only the healthy page reaches submission; the failures are recorded.
	require.Len(t, persister.submitted, 1)
	assert.Equal(t, "Talk:Good", persister.submitted[0].title)

	outcomes := map[string]string{}
	for _, rec := range repo.records {
		outcomes[rec.Title] = rec.Outcome
	}
	assert.Equal(t, map[string]string{
		"Talk:Down": "skipped",
		"Talk:Bare": "skipped",
		"Talk:Good": "merged",
	}, outcomes)

	require.Len(t, notifier.digests, 1)
	assert.Contains(t, notifier.digests[0], "1 merged, 2 skipped of 3 pages")
}

func TestProcessPagesDeduplicates(t *testing.T) {
	t.Parallel()

	pages := &fakePages{pages: map[string]ports.Page{
		"Talk:Yttrium": mergeablePage("Talk:Yttrium"),
	}}
	persister := &fakePersister{}
	repo := &fakeRepo{treated: map[string]bool{"Talk:Yttrium": true}}

	p := NewPipeline(PipelineDeps{
		Pages:       pages,
		Persister:   persister,
		Repository:  repo,
		Transformer: newTransformer(),
	})

	require.NoError(t, p.ProcessPages(context.Background(), []string{"Talk:Yttrium"}))
	assert.Empty(t, persister.submitted)
	assert.Empty(t, repo.records)
}
