// Package extractor decodes the milestone templates scattered on a talk page
// into typed records and folds them into the ArticleHistory aggregate. The
// extractor set is closed and dispatch order is fixed: the first extractor
// whose alias matches a block consumes it exclusively.
package extractor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ArticleHistoryBot/internal/document"
	"ArticleHistoryBot/internal/history"
	"ArticleHistoryBot/internal/ports"
)

var (
	// ErrUnrecognizedParameter reports a parameter name outside an
	// extractor's schema. Dropping it silently would discard history.
	ErrUnrecognizedParameter = errors.New("unrecognized parameter")
	// ErrDuplicateParameter reports the same key or index written twice
	// within one decode.
	ErrDuplicateParameter = errors.New("duplicate parameter")
	// ErrMissingRequiredField reports a record left incomplete.
	ErrMissingRequiredField = errors.New("missing required field")
	// ErrUndecidable reports a merge that needed an answer no collaborator
	// could give. The merge fails rather than guesses.
	ErrUndecidable = errors.New("cannot decide")
)

// Context carries the per-page data and capabilities merges may use.
type Context struct {
	// Title is the host talk page, e.g. "Talk:Yttrium".
	Title string
	// EditCounts looks up edit counts for arbitrary pages; may be nil.
	EditCounts ports.EditCounter
	// Decider answers yes/no questions when Interactive is set; may be nil.
	Decider     ports.Decider
	Interactive bool
	// ReviewThreshold is the edit count at or above which a peer review
	// counts as substantively reviewed without asking.
	ReviewThreshold int
}

// Extractor decodes one template family and merges the result into the
// aggregate. Extract must reject every parameter its schema does not name.
type Extractor interface {
	Name() string
	// Aliases are literal template names, matched case-insensitively.
	Aliases() []string
	Extract(b document.Block) (any, error)
	Merge(ctx context.Context, ec Context, value any, into *history.ArticleHistory) error
}

// Registry is the fixed, ordered extractor list. It is immutable after
// construction and safe to share across concurrent page transformations.
type Registry struct {
	extractors []Extractor
}

// NewRegistry keeps the given dispatch order.
func NewRegistry(extractors ...Extractor) *Registry {
	return &Registry{extractors: extractors}
}

// Default returns the production extractor set in its fixed order.
func Default() *Registry {
	return NewRegistry(
		&DykExtractor{},
		&ItnExtractor{},
		&OtdExtractor{},
		&GaExtractor{},
		&FailedGaExtractor{},
		&OldPrExtractor{},
	)
}

// Match returns the first extractor recognizing the template name.
func (r *Registry) Match(name string) (Extractor, bool) {
	for _, e := range r.extractors {
		if matchesAlias(e.Aliases(), name) {
			return e, true
		}
	}
	return nil, false
}

func matchesAlias(aliases []string, name string) bool {
	for _, a := range aliases {
		if strings.EqualFold(a, name) {
			return true
		}
	}
	return false
}

// truthyValue interprets a wikitext flag parameter: any non-blank value sets
// the flag.
func truthyValue(v string) bool {
	return strings.TrimSpace(v) != ""
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// blockParams copies a block's parameters into a take-map, trimming values
// and stripping serializer line-break markers.
func blockParams(b document.Block) (map[string]string, error) {
	m := make(map[string]string, len(b.Params))
	for _, p := range b.Params {
		if _, ok := m[p.Key]; ok {
			return nil, errParam(ErrDuplicateParameter, b, p.Key)
		}
		m[p.Key] = strings.TrimSpace(history.StripLineBreak(p.Value))
	}
	return m, nil
}

func take(m map[string]string, key string) (string, bool) {
	v, ok := m[key]
	if ok {
		delete(m, key)
	}
	return v, ok
}

func errParam(kind error, b document.Block, key string) error {
	return fmt.Errorf("%w: %q in {{%s}}", kind, key, b.Name)
}

// rejectLeftovers fails the decode if any parameter went unconsumed.
func rejectLeftovers(m map[string]string, b document.Block) error {
	for key := range m {
		return errParam(ErrUnrecognizedParameter, b, key)
	}
	return nil
}
