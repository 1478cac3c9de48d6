package history

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrUnknownActionResult reports an action whose result text is not in
	// the rule table. A status is never guessed for unrecognized text.
	ErrUnknownActionResult = errors.New("unknown action result")
	// ErrAmbiguousStatus reports a multi-token status outside the whitelist.
	ErrAmbiguousStatus = errors.New("multi-status is invalid")
	// ErrStatusMismatch reports a declared status that contradicts the
	// derived one.
	ErrStatusMismatch = errors.New("current status mismatch")
	// ErrTopicConflict reports two templates asserting different topics.
	ErrTopicConflict = errors.New("topic mismatch")
)

// multiStatusWhitelist is the only valid multi-token combinations, most
// recent token first.
var multiStatusWhitelist = []string{"FFA/GA", "FFAC/GA"}

func resultIn(result string, options ...string) bool {
	for _, o := range options {
		if result == o {
			return true
		}
	}
	return false
}

// statusToken maps one action to its optional status token. The table
// mirrors the {{article history}} promotion rules; a kind paired with result
// text outside the table is a hard error rather than a guess.
func statusToken(a Action) (string, error) {
	res := strings.ToLower(a.Result)
	switch a.Kind {
	case KindFAC:
		switch {
		case resultIn(res, "promoted", "pass", "passed"):
			return "FA", nil
		case resultIn(res, "not promoted", "fail", "failed"):
			return "FFAC", nil
		}
	case KindFAR:
		switch {
		case resultIn(res, "kept", "pass", "passed", "keep"):
			return "FA", nil
		case resultIn(res, "demoted", "removed", "remove", "fail", "failed"):
			return "FFA", nil
		}
	case KindRBP:
		// No known mapping for brilliant-prose restorations; refuse.
	case KindBP:
		return "", nil
	case KindFLC:
		switch {
		case resultIn(res, "promoted", "pass", "passed"):
			return "FL", nil
		case resultIn(res, "not promoted", "fail", "failed"):
			return "FFLC", nil
		}
	case KindFLR:
		switch {
		case resultIn(res, "kept", "pass", "passed", "keep"):
			return "FL", nil
		case resultIn(res, "demoted", "removed", "remove", "fail", "failed"):
			return "FFL", nil
		}
	case KindFTC, KindFTR:
		return "", nil
	case KindFPROC:
		switch {
		case resultIn(res, "promoted", "pass", "passed"):
			return "FPO", nil
		case resultIn(res, "not promoted", "fail", "failed"):
			return "FFPOC", nil
		}
	case KindFPOR:
		switch {
		case resultIn(res, "kept", "pass", "passed", "keep"):
			return "FPO", nil
		case resultIn(res, "demoted", "removed", "remove", "fail", "failed"):
			return "FFPO", nil
		}
	case KindGAN:
		switch {
		case resultIn(res, "listed", "promoted", "pass", "passed"):
			return "GA", nil
		case resultIn(res, "not listed", "not promoted", "fail", "failed"):
			return "FGAN", nil
		}
	case KindGAR:
		switch {
		case resultIn(res, "kept", "pass", "passed", "keep"):
			return "GA", nil
		case resultIn(res, "delisted", "fail", "failed"):
			return "DGA", nil
		}
	case KindGTC, KindPR, KindWPR, KindWAR, KindAFD, KindMFD, KindTFD, KindCSD, KindPROD, KindDRV:
		// Administrative and discussion actions carry no promotion state.
		return "", nil
	}
	return "", fmt.Errorf("%w: %s %q", ErrUnknownActionResult, a.Kind, a.Result)
}

func isGATrack(tok string) bool {
	switch tok {
	case "GA", "FGAN", "DGA":
		return true
	}
	return false
}

// deriveStatus computes the canonical status string from actions already
// sorted ascending by date.
func deriveStatus(actions []Action) (string, error) {
	var tokens []string
	for _, a := range actions {
		tok, err := statusToken(a)
		if err != nil {
			return "", err
		}
		if tok != "" {
			tokens = append(tokens, tok)
		}
	}

	// Most recent first from here on.
	for i, j := 0, len(tokens)-1; i < j; i, j = i+1, j-1 {
		tokens[i], tokens[j] = tokens[j], tokens[i]
	}

	// Keep only the most recent good-article-track token. A former FA
	// outranks GA, so FFA and FA also claim the slot.
	kept := tokens[:0]
	foundGA := false
	for _, tok := range tokens {
		switch {
		case isGATrack(tok) && foundGA:
			continue
		case tok == "FFA" || tok == "FA" || isGATrack(tok):
			foundGA = true
		}
		kept = append(kept, tok)
	}
	tokens = kept

	// Keep only the most recent "F"-prefixed token; FGAN is exempt from the
	// cap so a failed nomination can ride along with a featured token.
	kept = tokens[:0]
	foundFA := false
	for _, tok := range tokens {
		switch {
		case tok == "FGAN":
		case strings.HasPrefix(tok, "F") && foundFA:
			continue
		case strings.HasPrefix(tok, "F"):
			foundFA = true
		}
		kept = append(kept, tok)
	}
	tokens = kept

	status := strings.Join(tokens, "/")

	if strings.Contains(status, "/") {
		ok := false
		for _, allowed := range multiStatusWhitelist {
			if status == allowed {
				ok = true
				break
			}
		}
		if !ok {
			return "", fmt.Errorf("%w: %s", ErrAmbiguousStatus, status)
		}
	}

	return status, nil
}

// SortAndResolve sorts the actions ascending by date (stable, so same-day
// actions keep their relative order) and recomputes CurrentStatus. A status
// already declared on the aggregate must match the derived one exactly or be
// one component of a derived multi-token status; anything else fails and the
// declared status is left untouched.
func (ah *ArticleHistory) SortAndResolve() error {
	sort.SliceStable(ah.Actions, func(i, j int) bool {
		return ah.Actions[i].Date.Before(ah.Actions[j].Date)
	})

	status, err := deriveStatus(ah.Actions)
	if err != nil {
		return err
	}

	if orig := ah.CurrentStatus; orig != "" {
		if orig != status &&
			!strings.Contains(status, "/"+orig) &&
			!strings.Contains(status, orig+"/") {
			return fmt.Errorf("%w: %q vs %q", ErrStatusMismatch, orig, status)
		}
	}

	ah.CurrentStatus = status
	return nil
}
