package extractor

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"ArticleHistoryBot/internal/dates"
	"ArticleHistoryBot/internal/document"
	"ArticleHistoryBot/internal/history"
)

// AggregateAliases are the names the {{article history}} template goes by on
// talk pages, matched case-insensitively.
var AggregateAliases = []string{
	"article history",
	"article milestones",
	"articlemilestones",
	"articlehistory",
}

// IsAggregate reports whether a normalized template name is the aggregate.
func IsAggregate(name string) bool {
	return matchesAlias(AggregateAliases, name)
}

// AggregateExtractor decodes an {{article history}} block into the canonical
// aggregate. It is not part of the secondary registry: the orchestrator
// invokes it exactly once per page.
type AggregateExtractor struct{}

// family collects the per-index partial records of one numbered parameter
// family ("action1date" -> index 1, field "date").
type family map[int]map[string]string

func (f family) put(b document.Block, prefix string, index int, field, value string) error {
	fields, ok := f[index]
	if !ok {
		fields = map[string]string{}
		f[index] = fields
	}
	if _, dup := fields[field]; dup {
		return errParam(ErrDuplicateParameter, b, fmt.Sprintf("%s%d%s", prefix, index, field))
	}
	fields[field] = value
	return nil
}

// indexes enumerates the family's contiguous run of indexes. Families whose
// first entry is suffix-less start at 0 and skip 1; everything else starts
// at 1. Indexes outside the run are decode failures, never silent drops.
func (f family) indexes(firstUnsuffixed bool) ([]int, error) {
	if len(f) == 0 {
		return nil, nil
	}
	var run []int
	next := 1
	if firstUnsuffixed {
		if _, ok := f[0]; ok {
			run = append(run, 0)
			next = 2
		}
	}
	for {
		if _, ok := f[next]; !ok {
			break
		}
		run = append(run, next)
		next++
	}
	if len(run) != len(f) {
		var stray []int
		for idx := range f {
			stray = append(stray, idx)
		}
		sort.Ints(stray)
		return nil, fmt.Errorf("%w: non-contiguous indexes %v", ErrUnrecognizedParameter, stray)
	}
	return run, nil
}

// splitFamilyKey splits "action12date" into (12, "date") given prefix
// "action". A missing numeric suffix yields index 0.
func splitFamilyKey(key, prefix string) (int, string, error) {
	rest := key[len(prefix):]
	end := 0
	for end < len(rest) && rest[end] >= '0' && rest[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, rest, nil
	}
	n, err := strconv.Atoi(rest[:end])
	if err != nil {
		return 0, "", fmt.Errorf("parse %s index: %w", prefix, err)
	}
	return n, rest[end:], nil
}

// Extract decodes the aggregate block under a strict schema: every parameter
// must belong either to a numbered family or to the fixed set of top-level
// keys.
func (AggregateExtractor) Extract(b document.Block) (*history.ArticleHistory, error) {
	actions := family{}
	fts := family{}
	dyks := family{}
	otds := family{}
	itns := family{}

	ah := &history.ArticleHistory{}
	seen := map[string]bool{}

	for _, p := range b.Params {
		key := strings.TrimSpace(p.Key)
		value := strings.TrimSpace(history.StripLineBreak(p.Value))

		var fam family
		var prefix string
		switch {
		case strings.HasPrefix(key, "action"):
			fam, prefix = actions, "action"
		case strings.HasPrefix(key, "ft"):
			fam, prefix = fts, "ft"
		case strings.HasPrefix(key, "dyk"):
			fam, prefix = dyks, "dyk"
		case strings.HasPrefix(key, "otd"):
			fam, prefix = otds, "otd"
		case strings.HasPrefix(key, "itn"):
			fam, prefix = itns, "itn"
		}
		if fam != nil {
			idx, field, err := splitFamilyKey(key, prefix)
			if err != nil {
				return nil, err
			}
			if err := fam.put(b, prefix, idx, field, value); err != nil {
				return nil, err
			}
			continue
		}

		if seen[key] {
			return nil, errParam(ErrDuplicateParameter, b, key)
		}
		seen[key] = true

		switch key {
		case "currentstatus":
			ah.CurrentStatus = value
		case "maindate":
			d, err := dates.Parse(value)
			if err != nil {
				return nil, fmt.Errorf("maindate: %w", err)
			}
			ah.MainDate = d
		case "maindate2":
			d, err := dates.Parse(value)
			if err != nil {
				return nil, fmt.Errorf("maindate2: %w", err)
			}
			ah.MainDate2 = d
		case "topic":
			ah.Topic = value
		case "four":
			ah.Four = truthyValue(value)
		case "collapse":
			ah.Collapse = truthyValue(value)
		case "small":
			ah.Small = truthyValue(value)
		default:
			return nil, errParam(ErrUnrecognizedParameter, b, key)
		}
	}

	if err := decodeActions(b, actions, ah); err != nil {
		return nil, err
	}
	if err := decodeItns(b, itns, ah); err != nil {
		return nil, err
	}
	if err := decodeDyks(b, dyks, ah); err != nil {
		return nil, err
	}
	if err := decodeOtds(b, otds, ah); err != nil {
		return nil, err
	}
	if err := decodeFeaturedTopics(b, fts, ah); err != nil {
		return nil, err
	}

	return ah, nil
}

func requireDate(b document.Block, fields map[string]string, name string) (dates.Preserved, error) {
	raw, ok := fields["date"]
	if !ok || raw == "" {
		return dates.Preserved{}, fmt.Errorf("%w: %s date in {{%s}}", ErrMissingRequiredField, name, b.Name)
	}
	d, err := dates.Parse(raw)
	if err != nil {
		return dates.Preserved{}, fmt.Errorf("%s: %w", name, err)
	}
	return d, nil
}

func rejectFields(b document.Block, fields map[string]string, name string, allowed ...string) error {
	for field := range fields {
		ok := false
		for _, a := range allowed {
			if field == a {
				ok = true
				break
			}
		}
		if !ok {
			return errParam(ErrUnrecognizedParameter, b, name+field)
		}
	}
	return nil
}

func decodeActions(b document.Block, fam family, ah *history.ArticleHistory) error {
	run, err := fam.indexes(false)
	if err != nil {
		return fmt.Errorf("action: %w", err)
	}
	for _, idx := range run {
		fields := fam[idx]
		if err := rejectFields(b, fields, fmt.Sprintf("action%d", idx), "", "date", "link", "result", "oldid"); err != nil {
			return err
		}
		kindText, ok := fields[""]
		if !ok || kindText == "" {
			return fmt.Errorf("%w: action%d kind in {{%s}}", ErrMissingRequiredField, idx, b.Name)
		}
		kind, err := history.ParseActionKind(kindText)
		if err != nil {
			return fmt.Errorf("action%d: %w", idx, err)
		}
		date, err := requireDate(b, fields, fmt.Sprintf("action%d", idx))
		if err != nil {
			return err
		}
		ah.Actions = append(ah.Actions, history.Action{
			Kind:   kind,
			Date:   date,
			Link:   fields["link"],
			Result: fields["result"],
			OldID:  fields["oldid"],
		})
	}
	return nil
}

func decodeItns(b document.Block, fam family, ah *history.ArticleHistory) error {
	run, err := fam.indexes(true)
	if err != nil {
		return fmt.Errorf("itn: %w", err)
	}
	for _, idx := range run {
		fields := fam[idx]
		if err := rejectFields(b, fields, fmt.Sprintf("itn%d", idx), "date", "link"); err != nil {
			return err
		}
		date, err := requireDate(b, fields, fmt.Sprintf("itn%d", idx))
		if err != nil {
			return err
		}
		ah.Itns = append(ah.Itns, history.Itn{Date: date, Link: fields["link"]})
	}
	return nil
}

func decodeDyks(b document.Block, fam family, ah *history.ArticleHistory) error {
	run, err := fam.indexes(true)
	if err != nil {
		return fmt.Errorf("dyk: %w", err)
	}
	for _, idx := range run {
		fields := fam[idx]
		if err := rejectFields(b, fields, fmt.Sprintf("dyk%d", idx), "date", "entry", "nom", "ignoreerror"); err != nil {
			return err
		}
		date, err := requireDate(b, fields, fmt.Sprintf("dyk%d", idx))
		if err != nil {
			return err
		}
		ah.Dyks = append(ah.Dyks, history.Dyk{
			Date:        date,
			Entry:       fields["entry"],
			Nom:         fields["nom"],
			IgnoreError: truthyValue(fields["ignoreerror"]),
		})
	}
	return nil
}

func decodeOtds(b document.Block, fam family, ah *history.ArticleHistory) error {
	run, err := fam.indexes(true)
	if err != nil {
		return fmt.Errorf("otd: %w", err)
	}
	for _, idx := range run {
		fields := fam[idx]
		if err := rejectFields(b, fields, fmt.Sprintf("otd%d", idx), "date", "oldid", "link"); err != nil {
			return err
		}
		date, err := requireDate(b, fields, fmt.Sprintf("otd%d", idx))
		if err != nil {
			return err
		}
		ah.Otds = append(ah.Otds, history.Otd{Date: date, OldID: fields["oldid"], Link: fields["link"]})
	}
	return nil
}

func decodeFeaturedTopics(b document.Block, fam family, ah *history.ArticleHistory) error {
	run, err := fam.indexes(true)
	if err != nil {
		return fmt.Errorf("ft: %w", err)
	}
	for _, idx := range run {
		fields := fam[idx]
		if err := rejectFields(b, fields, fmt.Sprintf("ft%d", idx), "name", "main"); err != nil {
			return err
		}
		name, ok := fields["name"]
		if !ok || name == "" {
			return fmt.Errorf("%w: ft%d name in {{%s}}", ErrMissingRequiredField, idx, b.Name)
		}
		ah.FeaturedTops = append(ah.FeaturedTops, history.FeaturedTopic{
			Name: name,
			Main: truthyValue(fields["main"]),
		})
	}
	return nil
}
