// Package usecase drives one page's transformation: locate the aggregate,
// fold every recognized milestone template into it, resolve the status, and
// emit the rebuilt block as edit instructions. All failures are page-scoped;
// an abort simply means the caller discards the in-memory edits.
package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ArticleHistoryBot/internal/document"
	"ArticleHistoryBot/internal/extractor"
	"ArticleHistoryBot/internal/history"
)

var (
	// ErrNoAnchor means the page has neither an aggregate nor a block the
	// fresh aggregate could be inserted next to; the page is left untouched.
	ErrNoAnchor = errors.New("no anchor for article history")
	// ErrBotExcluded means the page opted out of automated edits.
	ErrBotExcluded = errors.New("bot excluded")
	// ErrAmbiguousTemplate means more than one aggregate block exists.
	ErrAmbiguousTemplate = errors.New("more than one article history template")
)

// anchorAliases is the allow-list of container blocks a freshly created
// aggregate may be inserted before when the page has none.
var anchorAliases = []string{
	"wikiproject banner shell",
	"wikiprojectbannershell",
	"wikiproject banners",
	"wikiprojectbanners",
	"wpbs",
	"wpb",
	"bannershell",
}

// Transformer merges one page's milestone templates into its aggregate.
// It holds no per-page state and is safe to share across pages.
type Transformer struct {
	registry  *extractor.Registry
	aggregate extractor.AggregateExtractor
	botName   string
}

// NewTransformer wires the extractor registry; botName is what the
// bot-exclusion convention is checked against.
func NewTransformer(registry *extractor.Registry, botName string) *Transformer {
	return &Transformer{registry: registry, botName: botName}
}

// botExcluded implements the {{nobots}}/{{bots}} exclusion convention.
func (t *Transformer) botExcluded(b document.Block) bool {
	switch b.NormalizedName() {
	case "nobots":
		return true
	case "bots":
		allow, _ := b.Get("allow")
		deny, _ := b.Get("deny")
		optout, _ := b.Get("optout")
		return allow == "none" || deny == "all" || optout == "all" ||
			strings.Contains(deny, t.botName)
	}
	return false
}

func isAnchor(b document.Block) bool {
	name := b.NormalizedName()
	for _, a := range anchorAliases {
		if name == a {
			return true
		}
	}
	return false
}

// Transform computes the edit instructions for one page snapshot. On any
// error no edits are returned, so no partial mutation can reach the
// persistence step.
func (t *Transformer) Transform(ctx context.Context, ec extractor.Context, doc document.Document) ([]document.Edit, error) {
	// Locate the aggregate, or the anchor to create one at.
	located := -1
	anchor := -1
	for i, b := range doc.Blocks {
		if extractor.IsAggregate(b.NormalizedName()) {
			if located >= 0 {
				return nil, fmt.Errorf("%w on %s", ErrAmbiguousTemplate, ec.Title)
			}
			located = i
		}
		if anchor < 0 && isAnchor(b) {
			anchor = i
		}
	}
	if located < 0 && anchor < 0 {
		return nil, fmt.Errorf("%w on %s", ErrNoAnchor, ec.Title)
	}

	ah := &history.ArticleHistory{}
	if located >= 0 {
		decoded, err := t.aggregate.Extract(doc.Blocks[located])
		if err != nil {
			return nil, fmt.Errorf("extract aggregate: %w", err)
		}
		ah = decoded
	}

	// Fold every recognized secondary block, in document order. The
	// exclusion convention is checked on each block visited and aborts the
	// whole page.
	var edits []document.Edit
	for i, b := range doc.Blocks {
		if t.botExcluded(b) {
			return nil, fmt.Errorf("%w on %s", ErrBotExcluded, ec.Title)
		}
		if i == located {
			continue
		}
		ext, ok := t.registry.Match(b.NormalizedName())
		if !ok {
			continue
		}
		value, err := ext.Extract(b)
		if err != nil {
			return nil, fmt.Errorf("extract %s: %w", ext.Name(), err)
		}
		if err := ext.Merge(ctx, ec, value, ah); err != nil {
			return nil, fmt.Errorf("merge %s: %w", ext.Name(), err)
		}
		edits = append(edits, document.Edit{Op: document.OpRemove, Index: i})
	}

	if err := ah.SortAndResolve(); err != nil {
		return nil, fmt.Errorf("resolve status: %w", err)
	}

	params := ah.Params()
	if located >= 0 {
		edits = append(edits,
			document.Edit{Op: document.OpRename, Index: located, Name: history.CanonicalTemplateName},
			document.Edit{Op: document.OpReplaceParams, Index: located, Params: params},
		)
	} else {
		edits = append(edits, document.Edit{
			Op:     document.OpInsertBefore,
			Index:  anchor,
			Name:   history.CanonicalTemplateName,
			Params: params,
		})
	}

	return edits, nil
}
