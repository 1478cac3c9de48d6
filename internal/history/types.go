// Package history holds the canonical ArticleHistory aggregate: the typed
// record every scattered milestone template on a talk page is merged into,
// the status-resolution rules, and the serializer that turns the aggregate
// back into an ordered parameter list.
package history

import (
	"fmt"
	"strings"

	"ArticleHistoryBot/internal/dates"
)

// ActionKind is the closed set of recognized historical event codes.
// Input is matched case-insensitively; output always uses the canonical
// uppercase spelling.
type ActionKind string

const (
	KindFAC   ActionKind = "FAC"
	KindFAR   ActionKind = "FAR"
	KindRBP   ActionKind = "RBP"
	KindBP    ActionKind = "BP"
	KindFLC   ActionKind = "FLC"
	KindFLR   ActionKind = "FLR"
	KindFTC   ActionKind = "FTC"
	KindFTR   ActionKind = "FTR"
	KindFPROC ActionKind = "FPROC"
	KindFPOR  ActionKind = "FPOR"
	KindGAN   ActionKind = "GAN"
	KindGAR   ActionKind = "GAR"
	KindGTC   ActionKind = "GTC"
	KindPR    ActionKind = "PR"
	KindWPR   ActionKind = "WPR"
	KindWAR   ActionKind = "WAR"
	KindAFD   ActionKind = "AFD"
	KindMFD   ActionKind = "MFD"
	KindTFD   ActionKind = "TFD"
	KindCSD   ActionKind = "CSD"
	KindPROD  ActionKind = "PROD"
	KindDRV   ActionKind = "DRV"
)

var actionKinds = map[string]ActionKind{}

func init() {
	for _, k := range []ActionKind{
		KindFAC, KindFAR, KindRBP, KindBP, KindFLC, KindFLR, KindFTC, KindFTR,
		KindFPROC, KindFPOR, KindGAN, KindGAR, KindGTC, KindPR, KindWPR,
		KindWAR, KindAFD, KindMFD, KindTFD, KindCSD, KindPROD, KindDRV,
	} {
		actionKinds[strings.ToLower(string(k))] = k
	}
}

// ParseActionKind matches a textual code case-insensitively.
func ParseActionKind(s string) (ActionKind, error) {
	if k, ok := actionKinds[strings.ToLower(strings.TrimSpace(s))]; ok {
		return k, nil
	}
	return "", fmt.Errorf("unknown action kind: %q", s)
}

// Action is one discrete dated event in an article's history.
type Action struct {
	Kind   ActionKind
	Date   dates.Preserved
	Link   string
	Result string
	OldID  string
}

// Dyk records one "did you know" appearance.
type Dyk struct {
	Date        dates.Preserved
	Entry       string
	Nom         string
	IgnoreError bool
}

// Itn records one "in the news" appearance.
type Itn struct {
	Date dates.Preserved
	Link string
}

// Otd records one "on this day" appearance.
type Otd struct {
	Date  dates.Preserved
	OldID string
	Link  string
}

// FeaturedTopic records membership in a featured topic.
type FeaturedTopic struct {
	Name string
	Main bool
}

// ArticleHistory is the canonical aggregate for one page. It is owned by a
// single orchestrator invocation for the duration of one transformation and
// is never shared.
type ArticleHistory struct {
	Actions []Action

	CurrentStatus string
	MainDate      dates.Preserved
	MainDate2     dates.Preserved
	Itns          []Itn
	Dyks          []Dyk
	Otds          []Otd
	Four          bool
	FeaturedTops  []FeaturedTopic
	Topic         string

	Collapse bool
	Small    bool
}

// SetTopic records an asserted topic, failing on a case-insensitive conflict
// with an already-set one. A conflict is never silently overwritten.
func (ah *ArticleHistory) SetTopic(topic string) error {
	if ah.Topic != "" && !strings.EqualFold(ah.Topic, topic) {
		return fmt.Errorf("%w: %q vs %q", ErrTopicConflict, ah.Topic, topic)
	}
	ah.Topic = topic
	return nil
}
